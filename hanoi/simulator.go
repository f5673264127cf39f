package hanoi

import "fmt"

const (
	msgValidMove = "Valid move"
	msgExecuted  = "Move executed successfully"
)

// Simulator owns the peg state of one puzzle and applies moves to it. A
// Simulator is not safe for concurrent use; give every validation run its
// own instance.
type Simulator struct {
	numDisks  int
	pegs      Pegs
	moveCount int
}

// New returns a simulator with numDisks disks stacked on peg 0.
func New(numDisks int) *Simulator {
	if numDisks < 1 {
		panic(fmt.Sprintf("hanoi: invalid disk count %d", numDisks))
	}
	s := &Simulator{numDisks: numDisks}
	s.Reset()
	return s
}

// NewWithPegs returns a simulator positioned at an arbitrary reachable state.
func NewWithPegs(numDisks int, pegs Pegs) (*Simulator, error) {
	if numDisks < 1 {
		return nil, fmt.Errorf("invalid disk count %d", numDisks)
	}
	if err := pegs.Validate(numDisks); err != nil {
		return nil, err
	}
	return &Simulator{numDisks: numDisks, pegs: pegs.Clone()}, nil
}

// Reset restores the initial state and zeroes the move counter.
func (s *Simulator) Reset() {
	s.pegs = InitialState(s.numDisks)
	s.moveCount = 0
}

// NumDisks returns the disk count the simulator was built for.
func (s *Simulator) NumDisks() int { return s.numDisks }

// MoveCount returns the number of moves executed since the last reset.
func (s *Simulator) MoveCount() int { return s.moveCount }

// Pegs returns a copy of the current state.
func (s *Simulator) Pegs() Pegs { return s.pegs.Clone() }

// GoalState returns the target configuration for this simulator's disk count.
func (s *Simulator) GoalState() Pegs { return GoalState(s.numDisks) }

// ValidateMove reports whether the move is legal in the current state and
// why. It never changes state.
func (s *Simulator) ValidateMove(disk, from, to int) (bool, string) {
	if _, reason := Check(s.pegs, Move{Disk: disk, From: from, To: to}); reason != "" {
		return false, reason
	}
	return true, msgValidMove
}

// ExecuteMove validates the move and applies it when legal. On failure the
// validation reason is returned and state is untouched.
func (s *Simulator) ExecuteMove(disk, from, to int) (bool, string) {
	_, ok, msg := s.execute(Move{Disk: disk, From: from, To: to})
	return ok, msg
}

func (s *Simulator) execute(m Move) (Rule, bool, string) {
	if rule, reason := Check(s.pegs, m); reason != "" {
		return rule, false, reason
	}
	src := s.pegs[m.From]
	top := src[len(src)-1]
	s.pegs[m.From] = src[:len(src)-1]
	s.pegs[m.To] = append(s.pegs[m.To], top)
	s.moveCount++
	return "", true, msgExecuted
}

// IsSolved reports whether the current state equals the goal state exactly.
func (s *Simulator) IsSolved() bool {
	return s.pegs.Equal(s.GoalState())
}
