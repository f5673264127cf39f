package hanoi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var canonicalThree = []string{"[1,0,2]", "[2,0,1]", "[1,2,1]", "[3,0,2]", "[1,1,0]", "[2,1,2]", "[1,0,2]"}

func TestNewStartsAtInitialState(t *testing.T) {
	sim := New(3)
	require.Equal(t, Pegs{{3, 2, 1}, {}, {}}, sim.Pegs())
	require.Equal(t, 0, sim.MoveCount())
	require.Equal(t, 3, sim.NumDisks())
}

func TestNewRejectsNonPositiveDiskCount(t *testing.T) {
	require.Panics(t, func() { New(0) })
}

func TestGoalStateIndependentOfMutableState(t *testing.T) {
	sim := New(3)
	goal := sim.GoalState()
	ok, _ := sim.ExecuteMove(1, 0, 2)
	require.True(t, ok)
	require.Equal(t, goal, sim.GoalState())
	require.Equal(t, Pegs{{}, {}, {3, 2, 1}}, goal)
}

func TestResetNeverSolvedForPositiveDiskCounts(t *testing.T) {
	for n := 1; n <= 8; n++ {
		sim := New(n)
		sim.Reset()
		assert.False(t, sim.IsSolved(), "n=%d", n)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	sim := New(4)
	sim.ExecuteMove(1, 0, 1)
	sim.Reset()
	once := sim.Pegs()
	sim.Reset()
	require.Equal(t, once, sim.Pegs())
	require.Equal(t, 0, sim.MoveCount())
}

func TestValidateMoveLayers(t *testing.T) {
	cases := []struct {
		name   string
		pegs   Pegs
		move   Move
		rule   Rule
		reason string
	}{
		{
			name:   "peg out of range checked before contents",
			pegs:   Pegs{{}, {1}, {}},
			move:   Move{1, 0, 5},
			rule:   RulePegBounds,
			reason: "Invalid peg indices: from_peg=0, to_peg=5",
		},
		{
			name:   "negative source peg",
			pegs:   Pegs{{1}, {}, {}},
			move:   Move{1, -1, 2},
			rule:   RulePegBounds,
			reason: "Invalid peg indices: from_peg=-1, to_peg=2",
		},
		{
			name:   "empty source",
			pegs:   Pegs{{2, 1}, {}, {}},
			move:   Move{1, 1, 2},
			rule:   RuleSourceNotEmpty,
			reason: "Source peg 1 is empty",
		},
		{
			name:   "buried disk",
			pegs:   Pegs{{3, 2, 1}, {}, {}},
			move:   Move{3, 0, 2},
			rule:   RuleTopmostDisk,
			reason: "Disk 3 is not on top of peg 0. Top disk is 1",
		},
		{
			name:   "unknown disk fails topmost layer",
			pegs:   Pegs{{3, 2, 1}, {}, {}},
			move:   Move{99, 0, 2},
			rule:   RuleTopmostDisk,
			reason: "Disk 99 is not on top of peg 0. Top disk is 1",
		},
		{
			name:   "larger onto smaller",
			pegs:   Pegs{{2}, {1}, {}},
			move:   Move{2, 0, 1},
			rule:   RuleSizeOrdering,
			reason: "Cannot place larger disk 2 on smaller disk 1",
		},
		{
			name:   "same peg",
			pegs:   Pegs{{2, 1}, {}, {}},
			move:   Move{1, 0, 0},
			rule:   RuleSizeOrdering,
			reason: "Disk 1 is already on peg 0",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := tc.pegs.DiskCount()
			sim, err := NewWithPegs(n, tc.pegs)
			require.NoError(t, err)

			ok, reason := sim.ValidateMove(tc.move.Disk, tc.move.From, tc.move.To)
			require.False(t, ok)
			require.Equal(t, tc.reason, reason)

			rule, _ := Check(sim.Pegs(), tc.move)
			require.Equal(t, tc.rule, rule)
			require.Equal(t, tc.pegs, sim.Pegs(), "validation must not mutate state")
		})
	}
}

func TestValidateMoveAcceptsLegalMove(t *testing.T) {
	sim, err := NewWithPegs(2, Pegs{{2}, {}, {1}})
	require.NoError(t, err)
	ok, reason := sim.ValidateMove(2, 0, 1)
	require.True(t, ok)
	require.Equal(t, "Valid move", reason)
	require.Equal(t, 0, sim.MoveCount())
}

func TestExecuteMoveMutatesOnlyWhenValid(t *testing.T) {
	sim := New(2)
	ok, msg := sim.ExecuteMove(2, 0, 1)
	require.False(t, ok)
	require.Equal(t, "Disk 2 is not on top of peg 0. Top disk is 1", msg)
	require.Equal(t, Pegs{{2, 1}, {}, {}}, sim.Pegs())
	require.Equal(t, 0, sim.MoveCount())

	ok, msg = sim.ExecuteMove(1, 0, 1)
	require.True(t, ok)
	require.Equal(t, "Move executed successfully", msg)
	require.Equal(t, Pegs{{2}, {1}, {}}, sim.Pegs())
	require.Equal(t, 1, sim.MoveCount())
}

func TestNewWithPegsRejectsUnreachableState(t *testing.T) {
	_, err := NewWithPegs(2, Pegs{{1, 2}, {}, {}})
	require.Error(t, err)
	_, err = NewWithPegs(3, Pegs{{3, 1}, {}, {}})
	require.Error(t, err)
	_, err = NewWithPegs(2, Pegs{{2, 1}, {1}, {}})
	require.Error(t, err)
}

func TestValidateCompleteSolutionCanonicalThreeDisks(t *testing.T) {
	sim := New(3)
	analysis := sim.ValidateCompleteSolution(canonicalThree)

	require.True(t, analysis.GoalAchieved)
	require.Equal(t, 7, analysis.TotalMoves)
	require.Equal(t, 7, analysis.ValidMoves)
	require.Equal(t, 0, analysis.InvalidMoves)
	require.Nil(t, analysis.FirstInvalidMove)
	require.Equal(t, Pegs{{}, {}, {3, 2, 1}}, analysis.FinalState)
	require.Len(t, analysis.MoveDetails, 7)
	require.Empty(t, analysis.ErrorSummary)
	require.Equal(t, Pegs{{3, 2}, {}, {1}}, analysis.MoveDetails[0].StateAfter)
}

func TestValidateCompleteSolutionCanonicalSolverForManySizes(t *testing.T) {
	for n := 1; n <= 10; n++ {
		analysis := New(n).ValidateCompleteSolution(FormatMoves(Solve(n)))
		assert.True(t, analysis.GoalAchieved, "n=%d", n)
		assert.Equal(t, 0, analysis.InvalidMoves, "n=%d", n)
		assert.Equal(t, analysis.TotalMoves, analysis.ValidMoves, "n=%d", n)
		assert.Equal(t, OptimalMoveCount(n), analysis.TotalMoves, "n=%d", n)
	}
}

func TestValidateCompleteSolutionEmptySequence(t *testing.T) {
	analysis := New(3).ValidateCompleteSolution(nil)
	require.Equal(t, 0, analysis.TotalMoves)
	require.Equal(t, 0, analysis.ValidMoves)
	require.Equal(t, 0, analysis.InvalidMoves)
	require.Nil(t, analysis.FirstInvalidMove)
	require.False(t, analysis.GoalAchieved)
	require.Equal(t, Pegs{{3, 2, 1}, {}, {}}, analysis.FinalState)
	require.NotNil(t, analysis.MoveDetails)
	require.Empty(t, analysis.MoveDetails)
}

func TestValidateCompleteSolutionContinuesPastParseErrors(t *testing.T) {
	moves := []string{"[1,0,2]", "garbage", "[2,0,1]", "[1,2,1]"}
	analysis := New(3).ValidateCompleteSolution(moves)

	require.Len(t, analysis.MoveDetails, 4)
	require.Equal(t, StatusParsingError, analysis.MoveDetails[1].Status)
	require.Nil(t, analysis.MoveDetails[1].Move)
	require.Equal(t, 3, analysis.ValidMoves)
	require.Equal(t, 1, analysis.InvalidMoves)
	require.NotNil(t, analysis.FirstInvalidMove)
	require.Equal(t, 1, *analysis.FirstInvalidMove)
	require.Empty(t, analysis.ErrorSummary)
	require.Equal(t, Pegs{{3}, {2, 1}, {}}, analysis.FinalState)
}

func TestValidateCompleteSolutionFractionalMoveIsAParseError(t *testing.T) {
	moves := []string{"[1,0,2]", "[1.5, 0, 1]", "[2,0,1]"}
	analysis := New(3).ValidateCompleteSolution(moves)

	require.Len(t, analysis.MoveDetails, 3)
	require.Equal(t, StatusParsingError, analysis.MoveDetails[1].Status)
	require.Equal(t, 2, analysis.ValidMoves)
	require.Equal(t, 1, analysis.InvalidMoves)
	require.Empty(t, analysis.ErrorSummary)
}

func TestValidateCompleteSolutionStopsAtFirstViolation(t *testing.T) {
	moves := []string{"[1,0,2]", "[2,0,2]", "[2,0,1]", "[1,2,1]"}
	analysis := New(3).ValidateCompleteSolution(moves)

	require.Equal(t, 4, analysis.TotalMoves)
	require.Len(t, analysis.MoveDetails, 2, "moves after a violation are not replayed")
	require.Equal(t, 1, analysis.ValidMoves)
	require.Equal(t, 1, analysis.InvalidMoves)
	require.Equal(t, 1, *analysis.FirstInvalidMove)
	require.Equal(t, []string{"Move 1: Cannot place larger disk 2 on smaller disk 1"}, analysis.ErrorSummary)
	require.Equal(t, StatusInvalid, analysis.MoveDetails[1].Status)
	require.Equal(t, RuleSizeOrdering, analysis.MoveDetails[1].Rule)
	require.Equal(t, Pegs{{3, 2}, {}, {1}}, analysis.FinalState)
	require.False(t, analysis.GoalAchieved)
}

func TestValidateCompleteSolutionParseErrorThenViolation(t *testing.T) {
	moves := []string{"??", "[3,0,2]", "[1,0,2]"}
	analysis := New(3).ValidateCompleteSolution(moves)

	require.Len(t, analysis.MoveDetails, 2)
	require.Equal(t, 2, analysis.InvalidMoves)
	require.Equal(t, 0, *analysis.FirstInvalidMove)
	require.Len(t, analysis.ErrorSummary, 1)
	record, ok := analysis.FirstError()
	require.True(t, ok)
	require.Equal(t, "??", record.Text)
}

func TestValidateCompleteSolutionResetsFirst(t *testing.T) {
	sim := New(3)
	sim.ExecuteMove(1, 0, 2)
	analysis := sim.ValidateCompleteSolution(canonicalThree)
	require.True(t, analysis.GoalAchieved)
	require.Equal(t, 7, sim.MoveCount())
}

func TestSnapshotsAreIndependent(t *testing.T) {
	analysis := New(3).ValidateCompleteSolution(canonicalThree)
	analysis.FinalState[2][0] = 42
	require.Equal(t, Pegs{{3, 2}, {}, {1}}, analysis.MoveDetails[0].StateAfter)
	require.Equal(t, []int{3, 2, 1}, analysis.MoveDetails[6].StateAfter[2])
}

func TestAnalysisJSONShape(t *testing.T) {
	analysis := New(2).ValidateCompleteSolution([]string{"1 0 1"})
	data, err := json.Marshal(analysis)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Nil(t, decoded["first_invalid_move"])
	require.Equal(t, []any{[]any{2.0}, []any{1.0}, []any{}}, decoded["final_state"])
	details := decoded["move_details"].([]any)
	require.Equal(t, []any{1.0, 0.0, 1.0}, details[0].(map[string]any)["parsed_move"])
}
