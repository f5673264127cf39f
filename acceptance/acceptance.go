package acceptance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
)

// DefaultExpression accepts exactly the attempts that reached the goal.
const DefaultExpression = "goal_achieved"

// ErrNotBool is returned when an expression evaluates to a non-bool value.
var ErrNotBool = errors.New("acceptance expression did not return a bool")

// Facts are the values an acceptance expression can refer to.
type Facts struct {
	Solved       bool
	GoalAchieved bool
	Timeout      bool
	TotalMoves   int
	ValidMoves   int
	InvalidMoves int
	Disks        int
	OptimalMoves int
	Iterations   int
	Strategy     string
}

func (f Facts) activation() map[string]any {
	return map[string]any{
		"solved":        f.Solved,
		"goal_achieved": f.GoalAchieved,
		"timeout":       f.Timeout,
		"total_moves":   int64(f.TotalMoves),
		"valid_moves":   int64(f.ValidMoves),
		"invalid_moves": int64(f.InvalidMoves),
		"disks":         int64(f.Disks),
		"optimal_moves": int64(f.OptimalMoves),
		"iterations":    int64(f.Iterations),
		"strategy":      f.Strategy,
	}
}

// Criterion is a compiled CEL expression deciding whether a run counts as
// accepted, e.g. "goal_achieved && total_moves == optimal_moves".
type Criterion struct {
	expr string
	prg  cel.Program
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("solved", cel.BoolType),
		cel.Variable("goal_achieved", cel.BoolType),
		cel.Variable("timeout", cel.BoolType),
		cel.Variable("total_moves", cel.IntType),
		cel.Variable("valid_moves", cel.IntType),
		cel.Variable("invalid_moves", cel.IntType),
		cel.Variable("disks", cel.IntType),
		cel.Variable("optimal_moves", cel.IntType),
		cel.Variable("iterations", cel.IntType),
		cel.Variable("strategy", cel.StringType),
	)
}

// Compile parses and type-checks expr. An empty expression means
// DefaultExpression.
func Compile(expr string) (*Criterion, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		expr = DefaultExpression
	}
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("acceptance env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Criterion{expr: expr, prg: prg}, nil
}

// MustCompile is Compile for expressions known at build time.
func MustCompile(expr string) *Criterion {
	c, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return c
}

// Expression returns the source text.
func (c *Criterion) Expression() string { return c.expr }

// Evaluate runs the expression against facts.
func (c *Criterion) Evaluate(f Facts) (bool, error) {
	out, _, err := c.prg.Eval(f.activation())
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", c.expr, err)
	}
	accepted, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%q: %w", c.expr, ErrNotBool)
	}
	return accepted, nil
}
