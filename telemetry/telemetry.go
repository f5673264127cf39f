package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/lexcodex/hanoibench/hanoi"
)

// EventType categorizes telemetry events.
type EventType string

const (
	EventRunStart        EventType = "run_start"
	EventMoveValid       EventType = "move_valid"
	EventMoveInvalid     EventType = "move_invalid"
	EventMoveUnparseable EventType = "move_unparseable"
	EventRunFinish       EventType = "run_finish"
)

// Event captures structured telemetry data.
type Event struct {
	Type      EventType      `json:"type"`
	RunID     string         `json:"run_id,omitempty"`
	MoveIndex *int           `json:"move_index,omitempty"`
	Message   string         `json:"message,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Telemetry receives validation events. Sinks must not block the caller for
// long; failures are logged, never returned.
type Telemetry interface {
	Emit(event Event)
}

// MultiplexTelemetry broadcasts events to multiple sinks.
type MultiplexTelemetry struct {
	Sinks []Telemetry
}

// Emit forwards the event to all registered sinks.
func (m MultiplexTelemetry) Emit(event Event) {
	for _, s := range m.Sinks {
		if s != nil {
			s.Emit(event)
		}
	}
}

// Nop discards events.
type Nop struct{}

// Emit does nothing.
func (Nop) Emit(Event) {}

// JSONFileTelemetry writes events as newline-delimited JSON to a file.
// This allows external tools to tail and process the stream in real-time.
type JSONFileTelemetry struct {
	path string
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewJSONFileTelemetry opens (or creates) the log file.
func NewJSONFileTelemetry(path string) (*JSONFileTelemetry, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONFileTelemetry{
		path: path,
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

// Emit writes the JSON record.
func (j *JSONFileTelemetry) Emit(event Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.enc != nil {
		_ = j.enc.Encode(event)
	}
}

// Close releases the file handle.
func (j *JSONFileTelemetry) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file, j.enc = nil, nil
	return err
}

// LoggerTelemetry writes events to a structured logger at debug level, and
// invalid moves at warn level.
type LoggerTelemetry struct {
	Logger *slog.Logger
}

// Emit logs the event.
func (t LoggerTelemetry) Emit(event Event) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelDebug
	if event.Type == EventMoveInvalid {
		level = slog.LevelWarn
	}
	attrs := []any{"type", string(event.Type), "run_id", event.RunID}
	if event.MoveIndex != nil {
		attrs = append(attrs, "move_index", *event.MoveIndex)
	}
	if len(event.Metadata) > 0 {
		attrs = append(attrs, "meta", event.Metadata)
	}
	logger.Log(context.Background(), level, event.Message, attrs...)
}

// EmitAnalysis replays an analysis into per-move events.
func EmitAnalysis(t Telemetry, runID string, analysis hanoi.SolutionAnalysis) {
	if t == nil {
		return
	}
	for _, record := range analysis.MoveDetails {
		idx := record.Index
		event := Event{
			RunID:     runID,
			MoveIndex: &idx,
			Message:   record.Message,
			Timestamp: time.Now().UTC(),
			Metadata:  map[string]any{"move": record.Text},
		}
		switch record.Status {
		case hanoi.StatusValid:
			event.Type = EventMoveValid
		case hanoi.StatusInvalid:
			event.Type = EventMoveInvalid
			event.Metadata["rule"] = string(record.Rule)
		default:
			event.Type = EventMoveUnparseable
		}
		t.Emit(event)
	}
}
