package harness

import (
	"fmt"
	"strings"

	"github.com/lexcodex/hanoibench/hanoi"
)

// Strategy identifies how an attempt was produced.
type Strategy string

const (
	StrategySingle Strategy = "single"
	StrategyHybrid Strategy = "hybrid"
	StrategyMulti  Strategy = "multi"
)

// ParseStrategy normalizes user input; empty means single.
func ParseStrategy(value string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(value))); s {
	case "":
		return StrategySingle, nil
	case StrategySingle, StrategyHybrid, StrategyMulti:
		return s, nil
	default:
		return "", fmt.Errorf("unknown strategy %q", value)
	}
}

// Iterative reports whether the strategy proposes one move per iteration.
func (s Strategy) Iterative() bool {
	return s == StrategyHybrid || s == StrategyMulti
}

// Attempt is a finished solving attempt handed over by the orchestrator.
type Attempt struct {
	ID            string   `json:"id,omitempty" yaml:"id,omitempty"`
	Disks         int      `json:"disks" yaml:"disks"`
	Strategy      Strategy `json:"strategy" yaml:"strategy"`
	Moves         []string `json:"moves" yaml:"moves"`
	Iterations    int      `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	MaxIterations int      `json:"max_iterations,omitempty" yaml:"max_iterations,omitempty"`
}

// MaxDisks bounds the puzzle size of any attempt the checker replays.
const MaxDisks = 32

// Validate rejects attempts the checker cannot replay.
func (a Attempt) Validate() error {
	if a.Disks < 1 || a.Disks > MaxDisks {
		return fmt.Errorf("attempt disks must be between 1 and %d, got %d", MaxDisks, a.Disks)
	}
	if _, err := ParseStrategy(string(a.Strategy)); err != nil {
		return err
	}
	return nil
}

// MaxIterations is the default iteration cap for iterative strategies.
func MaxIterations(disks int) int {
	const limit = 100
	switch {
	case disks < 0:
		return 2
	case disks >= 6:
		return limit
	}
	return min((1<<disks)*2, limit)
}

// FailureDetails explains why an attempt did not reach the goal.
type FailureDetails struct {
	FirstInvalidMoveIndex *int              `json:"first_invalid_move_index"`
	TotalValidMoves       int               `json:"total_valid_moves"`
	TotalInvalidMoves     int               `json:"total_invalid_moves"`
	ErrorSummary          []string          `json:"error_summary"`
	FinalStateReached     hanoi.Pegs        `json:"final_state_reached"`
	GoalStateExpected     hanoi.Pegs        `json:"goal_state_expected"`
	MovesAttempted        int               `json:"moves_attempted"`
	IterationsUsed        *int              `json:"iterations_used,omitempty"`
	MaxIterations         *int              `json:"max_iterations,omitempty"`
	Timeout               *bool             `json:"timeout,omitempty"`
	FirstError            *hanoi.MoveRecord `json:"first_error_details,omitempty"`
}

// Verdict is the deterministic outcome of checking one attempt.
type Verdict struct {
	Solved   bool                   `json:"solved"`
	Failed   bool                   `json:"failed"`
	Timeout  bool                   `json:"timeout"`
	Analysis hanoi.SolutionAnalysis `json:"solution_analysis"`
	Failure  *FailureDetails        `json:"failure_details,omitempty"`
}

const msgNoMoves = "No moves provided"

// Check replays the attempt on a fresh simulator and decides success with
// the same criteria for every strategy.
func Check(a Attempt) Verdict {
	sim := hanoi.New(a.Disks)

	var analysis hanoi.SolutionAnalysis
	if len(a.Moves) > 0 {
		analysis = sim.ValidateCompleteSolution(a.Moves)
	} else {
		analysis = hanoi.SolutionAnalysis{
			FinalState:   sim.Pegs(),
			MoveDetails:  []hanoi.MoveRecord{},
			ErrorSummary: []string{msgNoMoves},
		}
	}

	v := Verdict{
		Solved:   analysis.GoalAchieved,
		Failed:   !analysis.GoalAchieved,
		Analysis: analysis,
	}

	maxIter := a.MaxIterations
	if maxIter <= 0 {
		maxIter = MaxIterations(a.Disks)
	}
	if a.Strategy.Iterative() {
		v.Timeout = a.Iterations >= maxIter && !v.Solved
	}
	if !v.Failed {
		return v
	}

	details := &FailureDetails{
		FirstInvalidMoveIndex: analysis.FirstInvalidMove,
		TotalValidMoves:       analysis.ValidMoves,
		TotalInvalidMoves:     analysis.InvalidMoves,
		ErrorSummary:          analysis.ErrorSummary,
		FinalStateReached:     analysis.FinalState,
		GoalStateExpected:     sim.GoalState(),
		MovesAttempted:        len(a.Moves),
	}
	if a.Strategy.Iterative() {
		iterations, limit, timeout := a.Iterations, maxIter, v.Timeout
		details.IterationsUsed = &iterations
		details.MaxIterations = &limit
		details.Timeout = &timeout
	}
	if record, ok := analysis.FirstError(); ok {
		details.FirstError = &record
	}
	v.Failure = details
	return v
}
