package harness

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/lexcodex/hanoibench/acceptance"
	"github.com/lexcodex/hanoibench/hanoi"
	"github.com/lexcodex/hanoibench/telemetry"
)

const instrumentationName = "github.com/lexcodex/hanoibench/harness"

// RunRecord is a checked attempt as it is stored and published.
type RunRecord struct {
	ID        string    `json:"id"`
	Attempt   Attempt   `json:"attempt"`
	Verdict   Verdict   `json:"verdict"`
	Accepted  bool      `json:"accepted"`
	Criterion string    `json:"criterion,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists run records.
type Store interface {
	Save(ctx context.Context, record *RunRecord) error
}

// Runner checks attempts and fans the outcome out to the configured
// collaborators. Every field is optional. Runner is safe for concurrent use
// as long as its collaborators are.
type Runner struct {
	Store     Store
	Telemetry telemetry.Telemetry
	Criterion *acceptance.Criterion
	Tracer    trace.Tracer
	Meter     metric.Meter
	Logger    *slog.Logger
	Now       func() time.Time

	once    sync.Once
	runs    metric.Int64Counter
	moves   metric.Int64Counter
	initErr error
}

func (r *Runner) init() {
	if r.Tracer == nil {
		r.Tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}
	if r.Meter == nil {
		r.Meter = metricnoop.NewMeterProvider().Meter(instrumentationName)
	}
	if r.Telemetry == nil {
		r.Telemetry = telemetry.Nop{}
	}
	if r.Logger == nil {
		r.Logger = slog.Default()
	}
	if r.Now == nil {
		r.Now = time.Now
	}
	if r.Criterion == nil {
		r.Criterion = acceptance.MustCompile(acceptance.DefaultExpression)
	}
	r.runs, r.initErr = r.Meter.Int64Counter("hanoi.runs",
		metric.WithDescription("Attempts checked"),
		metric.WithUnit("1"))
	if r.initErr != nil {
		return
	}
	r.moves, r.initErr = r.Meter.Int64Counter("hanoi.moves",
		metric.WithDescription("Moves replayed"),
		metric.WithUnit("1"))
}

// Evaluate checks the attempt, applies the acceptance criterion, emits
// telemetry and stores the record.
func (r *Runner) Evaluate(ctx context.Context, a Attempt) (*RunRecord, error) {
	r.once.Do(r.init)
	if r.initErr != nil {
		return nil, fmt.Errorf("init metrics: %w", r.initErr)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if a.Strategy == "" {
		a.Strategy = StrategySingle
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	ctx, span := r.Tracer.Start(ctx, "hanoi.evaluate", trace.WithAttributes(
		attribute.String("hanoi.run_id", a.ID),
		attribute.Int("hanoi.disks", a.Disks),
		attribute.String("hanoi.strategy", string(a.Strategy)),
		attribute.Int("hanoi.moves", len(a.Moves)),
	))
	defer span.End()

	logger := r.Logger.With("run_id", a.ID, "disks", a.Disks, "strategy", a.Strategy)
	r.Telemetry.Emit(telemetry.Event{
		Type:      telemetry.EventRunStart,
		RunID:     a.ID,
		Timestamp: r.Now().UTC(),
		Metadata:  map[string]any{"disks": a.Disks, "strategy": string(a.Strategy), "moves": len(a.Moves)},
	})

	verdict := Check(a)
	telemetry.EmitAnalysis(r.Telemetry, a.ID, verdict.Analysis)

	accepted, err := r.Criterion.Evaluate(factsFor(a, verdict))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "acceptance")
		return nil, err
	}

	record := &RunRecord{
		ID:        a.ID,
		Attempt:   a,
		Verdict:   verdict,
		Accepted:  accepted,
		Criterion: r.Criterion.Expression(),
		CreatedAt: r.Now().UTC(),
	}

	span.SetAttributes(
		attribute.Bool("hanoi.solved", verdict.Solved),
		attribute.Bool("hanoi.accepted", accepted),
		attribute.Int("hanoi.valid_moves", verdict.Analysis.ValidMoves),
		attribute.Int("hanoi.invalid_moves", verdict.Analysis.InvalidMoves),
	)
	metricAttrs := metric.WithAttributes(
		attribute.String("strategy", string(a.Strategy)),
		attribute.Bool("solved", verdict.Solved),
	)
	r.runs.Add(ctx, 1, metricAttrs)
	r.moves.Add(ctx, int64(len(verdict.Analysis.MoveDetails)), metricAttrs)

	r.Telemetry.Emit(telemetry.Event{
		Type:      telemetry.EventRunFinish,
		RunID:     a.ID,
		Message:   outcome(verdict),
		Timestamp: r.Now().UTC(),
		Metadata: map[string]any{
			"accepted":      accepted,
			"valid_moves":   verdict.Analysis.ValidMoves,
			"invalid_moves": verdict.Analysis.InvalidMoves,
		},
	})

	if r.Store != nil {
		if err := r.Store.Save(ctx, record); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "store")
			return nil, fmt.Errorf("save run %s: %w", a.ID, err)
		}
	}
	span.SetStatus(codes.Ok, "")
	logger.Info("attempt checked", "solved", verdict.Solved, "accepted", accepted,
		"valid_moves", verdict.Analysis.ValidMoves, "invalid_moves", verdict.Analysis.InvalidMoves)
	return record, nil
}

func factsFor(a Attempt, v Verdict) acceptance.Facts {
	return acceptance.Facts{
		Solved:       v.Solved,
		GoalAchieved: v.Analysis.GoalAchieved,
		Timeout:      v.Timeout,
		TotalMoves:   v.Analysis.TotalMoves,
		ValidMoves:   v.Analysis.ValidMoves,
		InvalidMoves: v.Analysis.InvalidMoves,
		Disks:        a.Disks,
		OptimalMoves: hanoi.OptimalMoveCount(a.Disks),
		Iterations:   a.Iterations,
		Strategy:     string(a.Strategy),
	}
}

func outcome(v Verdict) string {
	switch {
	case v.Solved:
		return "solved"
	case v.Timeout:
		return "timeout"
	default:
		return "failed"
	}
}
