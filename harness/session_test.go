package harness

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/hanoibench/hanoi"
)

func TestSessionApply(t *testing.T) {
	s := NewSession(3, StrategyHybrid, 0)

	step := s.Apply("1 0 2")
	assert.True(t, step.Accepted)
	assert.Equal(t, "Move executed successfully", step.Message)
	assert.Equal(t, 1, step.Iteration)

	step = s.Apply("[1,0,1]")
	assert.False(t, step.Accepted)
	assert.Equal(t, hanoi.RuleTopmostDisk, step.Rule)
	assert.Equal(t, hanoi.Pegs{{3, 2}, {}, {1}}, step.Pegs)

	step = s.Apply("move the disk")
	assert.False(t, step.Accepted)
	assert.Nil(t, step.Move)
	assert.Equal(t, "Could not parse move format", step.Message)

	assert.Equal(t, 3, s.Iterations())
	assert.Equal(t, []string{"1 0 2"}, s.MovesMade())

	a := s.Attempt()
	assert.Equal(t, 3, a.Disks)
	assert.Equal(t, StrategyHybrid, a.Strategy)
	assert.Equal(t, 16, a.MaxIterations)
	assert.Equal(t, 3, a.Iterations)
}

func TestPlayCanonicalSolvesInOptimalIterations(t *testing.T) {
	s := NewSession(4, StrategyMulti, 0)
	var steps []StepResult
	require.NoError(t, Play(context.Background(), s, CanonicalProposer{}, func(r StepResult) {
		steps = append(steps, r)
	}))

	assert.True(t, s.Solved())
	assert.Len(t, steps, hanoi.OptimalMoveCount(4))
	assert.True(t, steps[len(steps)-1].Solved)

	v := Check(s.Attempt())
	assert.True(t, v.Solved)
	assert.False(t, v.Timeout)
}

func TestPlayStopsWhenIterationsRunOut(t *testing.T) {
	s := NewSession(3, StrategyHybrid, 5)
	bad := ProposerFunc(func(context.Context, hanoi.Pegs, []string) (string, error) {
		return "[3,0,2]", nil
	})
	var last StepResult
	require.NoError(t, Play(context.Background(), s, bad, func(r StepResult) { last = r }))

	assert.Equal(t, 5, s.Iterations())
	assert.True(t, last.Exhausted)
	assert.Empty(t, s.MovesMade())

	v := Check(s.Attempt())
	assert.True(t, v.Timeout)
	assert.Equal(t, []string{"No moves provided"}, v.Failure.ErrorSummary)
}

func TestPlayReturnsProposerError(t *testing.T) {
	s := NewSession(2, StrategyHybrid, 0)
	boom := errors.New("model unavailable")
	err := Play(context.Background(), s, ProposerFunc(func(context.Context, hanoi.Pegs, []string) (string, error) {
		return "", boom
	}), nil)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Iterations())
}

func TestCanonicalProposerHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CanonicalProposer{}.Propose(ctx, hanoi.InitialState(3), nil)
	require.ErrorIs(t, err, context.Canceled)

	_, err = CanonicalProposer{}.Propose(context.Background(), hanoi.GoalState(3), nil)
	require.ErrorIs(t, err, ErrNothingToPropose)
}
