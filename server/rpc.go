package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/lexcodex/hanoibench/harness"
)

// JSON-RPC method names.
const (
	MethodParseMove        = "hanoi/parseMove"
	MethodValidateMove     = "hanoi/validateMove"
	MethodValidateSolution = "hanoi/validateSolution"
	MethodCheck            = "hanoi/check"
)

// RPCHandler answers JSON-RPC 2.0 requests with the Service.
type RPCHandler struct {
	Service *Service
	Logger  *slog.Logger
}

// Handler returns the jsonrpc2 handler.
func (h *RPCHandler) Handler() jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(h.handle)
}

func (h *RPCHandler) service() *Service {
	if h.Service != nil {
		return h.Service
	}
	return &Service{}
}

func (h *RPCHandler) handle(ctx context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	svc := h.service()
	switch req.Method {
	case MethodParseMove:
		var params ParseRequest
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		return svc.ParseMove(params), nil
	case MethodValidateMove:
		var params ValidateMoveRequest
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		return rpcResult(svc.ValidateMove(params))
	case MethodValidateSolution:
		var params ValidateRequest
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		return rpcResult(svc.ValidateSolution(params))
	case MethodCheck:
		var params harness.Attempt
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		record, err := svc.Check(ctx, params)
		if err != nil && !errors.Is(err, ErrBadRequest) {
			h.logger().Error("rpc check failed", "error", err)
		}
		return rpcResult(record, err)
	default:
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not handled: " + req.Method}
	}
}

func (h *RPCHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func decodeParams(req *jsonrpc2.Request, v any) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return nil
}

func rpcResult(result interface{}, err error) (interface{}, error) {
	if err == nil {
		return result, nil
	}
	if errors.Is(err, ErrBadRequest) {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
}

// ServeRPC answers requests on rwc until the peer disconnects or ctx ends.
func ServeRPC(ctx context.Context, rwc io.ReadWriteCloser, h *RPCHandler) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, h.Handler())
	h.logger().Debug("json-rpc connection open")
	select {
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	case <-conn.DisconnectNotify():
		return nil
	}
}
