// Package expr implements a small statement language over the object model,
// used to drive proxies from the command line and from config files.
package expr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/polisai/oxy/pkg/object"
)

var (
	// ErrSyntax indicates the source could not be parsed.
	ErrSyntax = errors.New("syntax error")
	// ErrUnknownIdentifier indicates a referenced name is not bound in scope.
	ErrUnknownIdentifier = errors.New("name error")
	// ErrTimeout indicates evaluation exceeded its deadline or was cancelled.
	ErrTimeout = errors.New("evaluation timeout")
)

// Evaluation outcomes reported to a Recorder.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeSyntax  = "syntax"
	OutcomeTimeout = "timeout"
)

const tracerName = "github.com/polisai/oxy/pkg/expr"

// Recorder receives one observation per evaluation.
type Recorder interface {
	ObserveEvaluation(outcome string, elapsed time.Duration)
}

// Options control evaluator behaviour.
type Options struct {
	Timeout time.Duration
	Tracer  trace.Tracer
	Metrics Recorder
}

// Evaluator parses and runs programs against a Scope.
type Evaluator struct {
	timeout time.Duration
	tracer  trace.Tracer
	metrics Recorder
}

// Program is a parsed sequence of statements.
type Program struct {
	source string
	stmts  []statement
}

// Source returns the text the program was parsed from.
func (p *Program) Source() string { return p.source }

// Len is the number of statements.
func (p *Program) Len() int { return len(p.stmts) }

// NewEvaluator constructs an Evaluator applying sane defaults.
func NewEvaluator(opts Options) *Evaluator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Millisecond
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Evaluator{timeout: timeout, tracer: tracer, metrics: opts.Metrics}
}

// Timeout is the per-evaluation deadline.
func (e *Evaluator) Timeout() time.Duration { return e.timeout }

// Parse compiles source without running it.
func (e *Evaluator) Parse(source string) (*Program, error) {
	return parse(context.Background(), source)
}

func parse(ctx context.Context, source string) (*Program, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: empty program", ErrSyntax)
	}
	stmts, err := newParser(ctx, newLexer(source)).parseProgram()
	if err != nil {
		return nil, err
	}
	return &Program{source: source, stmts: stmts}, nil
}

// Evaluate parses and runs source in scope, returning the value of the last
// statement when it is an expression, else None.
func (e *Evaluator) Evaluate(ctx context.Context, source string, scope *Scope) (object.Object, error) {
	prog, err := parse(ctx, source)
	if err != nil {
		e.observe(outcomeOf(err), 0)
		return nil, err
	}
	return e.Run(ctx, prog, scope)
}

// Run executes a parsed program. Statements before a failing one keep their
// effects on scope.
func (e *Evaluator) Run(ctx context.Context, prog *Program, scope *Scope) (result object.Object, err error) {
	if scope == nil {
		return nil, fmt.Errorf("%w: scope is required", ErrSyntax)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	ctx, span := e.tracer.Start(ctx, "expr.run", trace.WithAttributes(
		attribute.Int("oxy.expr.statements", len(prog.stmts)),
	))
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		outcome := outcomeOf(err)
		span.SetAttributes(attribute.String("oxy.expr.outcome", outcome))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		e.observe(outcome, elapsed)
	}()

	result = object.None
	for _, stmt := range prog.stmts {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		v, err := stmt.exec(ctx, scope)
		if err != nil {
			return nil, err
		}
		if v == nil {
			v = object.None
		}
		result = v
	}
	return result, nil
}

func (e *Evaluator) observe(outcome string, elapsed time.Duration) {
	if e.metrics != nil {
		e.metrics.ObserveEvaluation(outcome, elapsed)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrTimeout):
		return OutcomeTimeout
	case errors.Is(err, ErrSyntax):
		return OutcomeSyntax
	}
	return OutcomeError
}
