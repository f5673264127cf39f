package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexcodex/hanoibench/hanoi"
	"github.com/lexcodex/hanoibench/harness"
)

// MaxDisks bounds puzzle size for remote callers.
const MaxDisks = harness.MaxDisks

// ErrBadRequest marks errors caused by the caller's input.
var ErrBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// RunReader is the read side of a run store.
type RunReader interface {
	Load(ctx context.Context, id string) (*harness.RunRecord, bool, error)
	List(ctx context.Context) ([]harness.RunRecord, error)
}

// ParseRequest carries one move string.
type ParseRequest struct {
	Move string `json:"move"`
}

// ParseResponse reports whether the move string parsed.
type ParseResponse struct {
	OK   bool        `json:"ok"`
	Move *hanoi.Move `json:"move,omitempty"`
}

// ValidateMoveRequest asks whether a move is legal from a state. Pegs
// defaults to the initial state; Disks defaults to the disks on Pegs.
type ValidateMoveRequest struct {
	Disks int         `json:"disks,omitempty"`
	Pegs  *hanoi.Pegs `json:"pegs,omitempty"`
	Move  hanoi.Move  `json:"move"`
}

// ValidateMoveResponse returns the decision and the state after the move.
type ValidateMoveResponse struct {
	Valid   bool       `json:"valid"`
	Message string     `json:"message"`
	Rule    hanoi.Rule `json:"rule,omitempty"`
	State   hanoi.Pegs `json:"state"`
	Solved  bool       `json:"solved"`
}

// ValidateRequest is a whole move sequence for a fresh puzzle.
type ValidateRequest struct {
	Disks int      `json:"disks"`
	Moves []string `json:"moves"`
}

// Service implements the operations shared by the HTTP and JSON-RPC
// front ends.
type Service struct {
	Runner *harness.Runner
	Runs   RunReader
}

func checkDisks(n int) error {
	if n < 1 || n > MaxDisks {
		return badRequest("disks must be between 1 and %d, got %d", MaxDisks, n)
	}
	return nil
}

// ParseMove parses a single move string.
func (s *Service) ParseMove(req ParseRequest) ParseResponse {
	m, ok := hanoi.ParseMove(req.Move)
	if !ok {
		return ParseResponse{}
	}
	return ParseResponse{OK: true, Move: &m}
}

// ValidateMove checks one move against a state without keeping it.
func (s *Service) ValidateMove(req ValidateMoveRequest) (ValidateMoveResponse, error) {
	disks := req.Disks
	if disks == 0 && req.Pegs != nil {
		disks = req.Pegs.DiskCount()
	}
	if err := checkDisks(disks); err != nil {
		return ValidateMoveResponse{}, err
	}
	var sim *hanoi.Simulator
	if req.Pegs == nil {
		sim = hanoi.New(disks)
	} else {
		var err error
		if sim, err = hanoi.NewWithPegs(disks, *req.Pegs); err != nil {
			return ValidateMoveResponse{}, badRequest("%v", err)
		}
	}
	rule, _ := hanoi.Check(sim.Pegs(), req.Move)
	ok, msg := sim.ExecuteMove(req.Move.Disk, req.Move.From, req.Move.To)
	return ValidateMoveResponse{
		Valid:   ok,
		Message: msg,
		Rule:    rule,
		State:   sim.Pegs(),
		Solved:  sim.IsSolved(),
	}, nil
}

// ValidateSolution replays moves on a fresh puzzle.
func (s *Service) ValidateSolution(req ValidateRequest) (hanoi.SolutionAnalysis, error) {
	if err := checkDisks(req.Disks); err != nil {
		return hanoi.SolutionAnalysis{}, err
	}
	return hanoi.New(req.Disks).ValidateCompleteSolution(req.Moves), nil
}

// Check evaluates a finished attempt through the runner.
func (s *Service) Check(ctx context.Context, a harness.Attempt) (*harness.RunRecord, error) {
	if err := checkDisks(a.Disks); err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, badRequest("%v", err)
	}
	runner := s.Runner
	if runner == nil {
		runner = &harness.Runner{}
	}
	return runner.Evaluate(ctx, a)
}

// ErrNoRunStore is returned by run lookups when no store is configured.
var ErrNoRunStore = errors.New("run store not configured")

// ListRuns returns stored runs.
func (s *Service) ListRuns(ctx context.Context) ([]harness.RunRecord, error) {
	if s.Runs == nil {
		return nil, ErrNoRunStore
	}
	return s.Runs.List(ctx)
}

// LoadRun returns one stored run.
func (s *Service) LoadRun(ctx context.Context, id string) (*harness.RunRecord, bool, error) {
	if s.Runs == nil {
		return nil, false, ErrNoRunStore
	}
	return s.Runs.Load(ctx, id)
}
