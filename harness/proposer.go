package harness

import (
	"context"
	"errors"

	"github.com/lexcodex/hanoibench/hanoi"
)

// Proposer suggests the next move given the current pegs and the accepted
// moves so far. Language-model agents live behind this interface.
type Proposer interface {
	Propose(ctx context.Context, pegs hanoi.Pegs, movesSoFar []string) (string, error)
}

// ProposerFunc adapts a function to Proposer.
type ProposerFunc func(ctx context.Context, pegs hanoi.Pegs, movesSoFar []string) (string, error)

// Propose calls f.
func (f ProposerFunc) Propose(ctx context.Context, pegs hanoi.Pegs, movesSoFar []string) (string, error) {
	return f(ctx, pegs, movesSoFar)
}

// CanonicalProposer always proposes the optimal next move.
type CanonicalProposer struct{}

// ErrNothingToPropose is returned once the puzzle is solved.
var ErrNothingToPropose = errors.New("puzzle already solved")

// Propose returns the optimal move for pegs.
func (CanonicalProposer) Propose(ctx context.Context, pegs hanoi.Pegs, _ []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m, ok := hanoi.NextMove(pegs)
	if !ok {
		return "", ErrNothingToPropose
	}
	return m.String(), nil
}

// Play asks the proposer for moves until the session is solved or out of
// iterations. Each step is handed to observe when it is non-nil.
func Play(ctx context.Context, s *Session, p Proposer, observe func(StepResult)) error {
	for !s.Done() {
		text, err := p.Propose(ctx, s.Pegs(), s.MovesMade())
		if err != nil {
			return err
		}
		step := s.Apply(text)
		if observe != nil {
			observe(step)
		}
	}
	return nil
}
