package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/hanoibench/hanoi"
	"github.com/lexcodex/hanoibench/harness"
	"github.com/lexcodex/hanoibench/persistence"
)

func newTestAPI(t *testing.T) *APIServer {
	t.Helper()
	store, err := persistence.NewFileRunStore(t.TempDir())
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &APIServer{
		Service: &Service{Runner: &harness.Runner{Store: store, Logger: logger}, Runs: store},
		Logger:  logger,
	}
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPIServerParse(t *testing.T) {
	h := newTestAPI(t).Handler()

	rec := do(t, h, http.MethodPost, "/api/parse", ParseRequest{Move: "(2, 0, 1)"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"move":[2,0,1]}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/parse", ParseRequest{Move: "left to right"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":false}`, rec.Body.String())
}

func TestAPIServerValidateMove(t *testing.T) {
	h := newTestAPI(t).Handler()

	rec := do(t, h, http.MethodPost, "/api/validate-move", ValidateMoveRequest{Disks: 3, Move: hanoi.Move{Disk: 1, From: 0, To: 2}})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ValidateMoveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, hanoi.Pegs{{3, 2}, {}, {1}}, resp.State)

	pegs := hanoi.Pegs{{3}, {2}, {1}}
	rec = do(t, h, http.MethodPost, "/api/validate-move", ValidateMoveRequest{Pegs: &pegs, Move: hanoi.Move{Disk: 2, From: 1, To: 2}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, hanoi.RuleSizeOrdering, resp.Rule)
	assert.Equal(t, "Cannot place larger disk 2 on smaller disk 1", resp.Message)
	assert.Equal(t, pegs, resp.State)

	bad := hanoi.Pegs{{1, 2}, {}, {}}
	rec = do(t, h, http.MethodPost, "/api/validate-move", ValidateMoveRequest{Pegs: &bad, Move: hanoi.Move{Disk: 2, From: 0, To: 1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIServerValidate(t *testing.T) {
	h := newTestAPI(t).Handler()

	rec := do(t, h, http.MethodPost, "/api/validate", ValidateRequest{Disks: 2, Moves: []string{"[1,0,1]", "junk", "[2,0,2]", "[1,1,2]"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var analysis hanoi.SolutionAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.True(t, analysis.GoalAchieved)
	assert.Equal(t, 4, analysis.TotalMoves)
	assert.Equal(t, 3, analysis.ValidMoves)
	assert.Equal(t, 1, analysis.InvalidMoves)

	rec = do(t, h, http.MethodPost, "/api/validate", ValidateRequest{Disks: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "disks must be between")
}

func TestAPIServerCheckAndRuns(t *testing.T) {
	h := newTestAPI(t).Handler()

	rec := do(t, h, http.MethodPost, "/api/check", harness.Attempt{ID: "api-1", Disks: 1, Moves: []string{"[1,0,2]"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var record harness.RunRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "api-1", record.ID)
	assert.True(t, record.Accepted)

	rec = do(t, h, http.MethodGet, "/api/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []harness.RunRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)

	rec = do(t, h, http.MethodGet, "/api/runs/api-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/runs/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/check", harness.Attempt{Disks: 2, Strategy: "beam"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIServerRejectsWrongMethodAndBody(t *testing.T) {
	h := newTestAPI(t).Handler()
	rec := do(t, h, http.MethodGet, "/api/validate", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/parse", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIServerWithoutStore(t *testing.T) {
	api := &APIServer{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	rec := do(t, api.Handler(), http.MethodGet, "/api/runs", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
