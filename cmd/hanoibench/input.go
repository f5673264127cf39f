package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lexcodex/hanoibench/hanoi"
	"github.com/lexcodex/hanoibench/harness"
)

// readInput returns the contents of path, or stdin for "" and "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// parseMoves accepts a JSON array ([[1,0,2], "2 0 1"]), a YAML list, or one
// move per line. Blank lines and lines starting with # are skipped.
func parseMoves(data []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []string{}, nil
	}
	if trimmed[0] == '[' && isNestedList(trimmed) {
		return hanoi.ParseMoveList(trimmed)
	}
	if bytes.HasPrefix(trimmed, []byte("- ")) {
		var items []any
		if err := yaml.Unmarshal(trimmed, &items); err == nil {
			return yamlMoves(items), nil
		}
	}
	var moves []string
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		moves = append(moves, line)
	}
	return moves, scanner.Err()
}

// isNestedList reports whether data is a JSON array whose items are all
// arrays or strings, as opposed to a single [d, f, t] triple.
func isNestedList(data []byte) bool {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return false
	}
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || (item[0] != '[' && item[0] != '"') {
			return false
		}
	}
	return true
}

func yamlMoves(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case []any:
			parts := make([]string, len(v))
			for i, p := range v {
				parts[i] = fmt.Sprint(p)
			}
			out = append(out, "["+strings.Join(parts, ", ")+"]")
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}

// parseAttempt reads an attempt written as YAML or JSON.
func parseAttempt(data []byte) (harness.Attempt, error) {
	var a harness.Attempt
	if err := yaml.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("decode attempt: %w", err)
	}
	if a.Strategy == "" {
		a.Strategy = harness.StrategySingle
	}
	if err := a.Validate(); err != nil {
		return a, err
	}
	return a, nil
}
