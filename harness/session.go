package harness

import (
	"github.com/lexcodex/hanoibench/hanoi"
)

// StepResult reports what happened to one proposed move.
type StepResult struct {
	Text      string      `json:"move_string"`
	Move      *hanoi.Move `json:"parsed_move,omitempty"`
	Accepted  bool        `json:"accepted"`
	Rule      hanoi.Rule  `json:"rule,omitempty"`
	Message   string      `json:"message"`
	Pegs      hanoi.Pegs  `json:"pegs"`
	Iteration int         `json:"iteration"`
	Solved    bool        `json:"solved"`
	Exhausted bool        `json:"exhausted"`
}

// Session applies proposed moves one at a time for iterative strategies.
// Accepted moves are appended to MovesMade; rejected ones leave the state
// unchanged. Every call consumes one iteration.
type Session struct {
	strategy      Strategy
	sim           *hanoi.Simulator
	movesMade     []string
	iterations    int
	maxIterations int
}

// NewSession starts a puzzle of the given size. A non-positive limit falls
// back to MaxIterations.
func NewSession(disks int, strategy Strategy, limit int) *Session {
	if limit <= 0 {
		limit = MaxIterations(disks)
	}
	return &Session{
		strategy:      strategy,
		sim:           hanoi.New(disks),
		movesMade:     []string{},
		maxIterations: limit,
	}
}

// Pegs returns a copy of the current state.
func (s *Session) Pegs() hanoi.Pegs { return s.sim.Pegs() }

// MovesMade returns a copy of the accepted moves so far.
func (s *Session) MovesMade() []string { return append([]string(nil), s.movesMade...) }

// Iterations returns how many proposals have been applied.
func (s *Session) Iterations() int { return s.iterations }

// Solved reports whether the goal state has been reached.
func (s *Session) Solved() bool { return s.sim.IsSolved() }

// Done reports whether the session should stop asking for moves.
func (s *Session) Done() bool {
	return s.Solved() || s.iterations >= s.maxIterations
}

// Apply parses and executes one proposed move.
func (s *Session) Apply(text string) StepResult {
	s.iterations++
	result := StepResult{Text: text, Iteration: s.iterations}

	move, ok := hanoi.ParseMove(text)
	if !ok {
		result.Message = "Could not parse move format"
	} else {
		result.Move = &move
		if ok, msg := s.sim.ExecuteMove(move.Disk, move.From, move.To); ok {
			result.Accepted = true
			result.Message = msg
			s.movesMade = append(s.movesMade, text)
		} else {
			result.Rule, _ = hanoi.Check(s.sim.Pegs(), move)
			result.Message = msg
		}
	}

	result.Pegs = s.sim.Pegs()
	result.Solved = s.sim.IsSolved()
	result.Exhausted = !result.Solved && s.iterations >= s.maxIterations
	return result
}

// Attempt converts the session into an attempt for the goal checker.
func (s *Session) Attempt() Attempt {
	return Attempt{
		Disks:         s.sim.NumDisks(),
		Strategy:      s.strategy,
		Moves:         s.MovesMade(),
		Iterations:    s.iterations,
		MaxIterations: s.maxIterations,
	}
}
