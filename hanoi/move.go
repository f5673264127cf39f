package hanoi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Move asks to relocate Disk from peg From to peg To.
type Move struct {
	Disk int `json:"disk"`
	From int `json:"from"`
	To   int `json:"to"`
}

// String returns the canonical text form, e.g. [1, 0, 2].
func (m Move) String() string {
	return fmt.Sprintf("[%d, %d, %d]", m.Disk, m.From, m.To)
}

// MarshalJSON encodes a move as a [disk, from, to] triple.
func (m Move) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{m.Disk, m.From, m.To})
}

// UnmarshalJSON accepts the triple form written by MarshalJSON.
func (m *Move) UnmarshalJSON(data []byte) error {
	var triple [3]int
	if err := json.Unmarshal(data, &triple); err != nil {
		return err
	}
	*m = Move{Disk: triple[0], From: triple[1], To: triple[2]}
	return nil
}

const moveBrackets = "[](){}"

// ParseMove decodes a move written by an upstream proposer. It accepts
// "[1, 0, 2]", "1,0,2" and "1 0 2", optionally wrapped in brackets, braces or
// parentheses and surrounding whitespace. The boolean is false when no
// encoding matched; callers treat that like any other invalid move.
func ParseMove(text string) (Move, bool) {
	cleaned := strings.Trim(strings.TrimSpace(text), moveBrackets)
	for _, attempt := range []func(string) ([]int, bool){
		parseJSONTriple,
		parseCommaTriple,
		parseFieldTriple,
	} {
		if values, ok := attempt(cleaned); ok {
			return Move{Disk: values[0], From: values[1], To: values[2]}, true
		}
	}
	return Move{}, false
}

func parseJSONTriple(cleaned string) ([]int, bool) {
	dec := json.NewDecoder(strings.NewReader("[" + cleaned + "]"))
	dec.UseNumber()
	var raw []any
	if err := dec.Decode(&raw); err != nil || dec.More() {
		return nil, false
	}
	if len(raw) != 3 {
		return nil, false
	}
	values := make([]int, 0, 3)
	for _, item := range raw {
		num, ok := item.(json.Number)
		if !ok {
			return nil, false
		}
		v, ok := integralNumber(num)
		if !ok {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}

// integralNumber accepts JSON numbers with no fractional part, so 2.0 reads as 2.
func integralNumber(num json.Number) (int, bool) {
	if v, err := num.Int64(); err == nil {
		return int(v), true
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func parseCommaTriple(cleaned string) ([]int, bool) {
	parts := strings.Split(cleaned, ",")
	if len(parts) != 3 {
		return nil, false
	}
	return atoiAll(parts)
}

func parseFieldTriple(cleaned string) ([]int, bool) {
	fields := strings.Fields(cleaned)
	if len(fields) != 3 {
		return nil, false
	}
	return atoiAll(fields)
}

func atoiAll(parts []string) ([]int, bool) {
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}

// FormatMoves renders moves in canonical text form.
func FormatMoves(moves []Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}

// ParseMoveList decodes a whole answer such as [[1,0,2],[2,0,1]] into one
// string per move. Anything that is not a JSON array of arrays is reported
// as an error so the caller can fall back to line-oriented input.
func ParseMoveList(data []byte) ([]string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &raw); err != nil {
		return nil, fmt.Errorf("decode move list: %w", err)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var text string
		if err := json.Unmarshal(item, &text); err == nil {
			out = append(out, text)
			continue
		}
		out = append(out, string(bytes.TrimSpace(item)))
	}
	return out, nil
}
