package hanoi

import "fmt"

// MoveStatus classifies one entry of a replayed sequence.
type MoveStatus string

const (
	StatusValid        MoveStatus = "valid"
	StatusInvalid      MoveStatus = "invalid"
	StatusParsingError MoveStatus = "parsing_error"
)

const msgUnparseable = "Could not parse move format"

// MoveRecord describes one attempted move and the state right after it.
type MoveRecord struct {
	Index      int        `json:"move_index"`
	Text       string     `json:"move_string"`
	Move       *Move      `json:"parsed_move,omitempty"`
	Status     MoveStatus `json:"status"`
	Message    string     `json:"message"`
	Rule       Rule       `json:"rule,omitempty"`
	StateAfter Pegs       `json:"state_after"`
}

// SolutionAnalysis is the report produced by replaying a full move sequence
// from the initial state.
type SolutionAnalysis struct {
	TotalMoves       int          `json:"total_moves"`
	ValidMoves       int          `json:"valid_moves"`
	InvalidMoves     int          `json:"invalid_moves"`
	FirstInvalidMove *int         `json:"first_invalid_move"`
	FinalState       Pegs         `json:"final_state"`
	GoalAchieved     bool         `json:"goal_achieved"`
	MoveDetails      []MoveRecord `json:"move_details"`
	ErrorSummary     []string     `json:"error_summary"`
}

func (a *SolutionAnalysis) markInvalid(i int) {
	a.InvalidMoves++
	if a.FirstInvalidMove == nil {
		idx := i
		a.FirstInvalidMove = &idx
	}
}

// ValidateCompleteSolution resets the simulator and replays moves in order.
// Unparseable entries are recorded and skipped; the first rule violation
// ends the replay because later states would be meaningless.
func (s *Simulator) ValidateCompleteSolution(moves []string) SolutionAnalysis {
	s.Reset()
	analysis := SolutionAnalysis{
		TotalMoves:   len(moves),
		MoveDetails:  []MoveRecord{},
		ErrorSummary: []string{},
	}

	for i, text := range moves {
		move, ok := ParseMove(text)
		if !ok {
			analysis.MoveDetails = append(analysis.MoveDetails, MoveRecord{
				Index:      i,
				Text:       text,
				Status:     StatusParsingError,
				Message:    msgUnparseable,
				StateAfter: s.pegs.Clone(),
			})
			analysis.markInvalid(i)
			continue
		}

		rule, valid, msg := s.execute(move)
		record := MoveRecord{
			Index:      i,
			Text:       text,
			Move:       &move,
			Status:     StatusValid,
			Message:    msg,
			Rule:       rule,
			StateAfter: s.pegs.Clone(),
		}
		if !valid {
			record.Status = StatusInvalid
		}
		analysis.MoveDetails = append(analysis.MoveDetails, record)

		if valid {
			analysis.ValidMoves++
			continue
		}
		analysis.markInvalid(i)
		analysis.ErrorSummary = append(analysis.ErrorSummary, fmt.Sprintf("Move %d: %s", i, msg))
		break
	}

	analysis.FinalState = s.pegs.Clone()
	analysis.GoalAchieved = s.IsSolved()
	return analysis
}

// FirstError returns the record of the first invalid or unparseable move.
func (a SolutionAnalysis) FirstError() (MoveRecord, bool) {
	if a.FirstInvalidMove == nil {
		return MoveRecord{}, false
	}
	for _, record := range a.MoveDetails {
		if record.Index == *a.FirstInvalidMove {
			return record, true
		}
	}
	return MoveRecord{}, false
}
