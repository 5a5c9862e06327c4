package policy

import (
	"context"
	"errors"
	"fmt"
)

// Action defines the outcome of a policy evaluation.
type Action string

const (
	// ActionAllow lets the result through.
	ActionAllow Action = "allow"
	// ActionBlock rejects the result.
	ActionBlock Action = "block"
)

// ErrBlocked is returned by Enforce when a policy blocks a result.
var ErrBlocked = errors.New("result blocked by policy")

// Decision captures the result of a policy evaluation.
type Decision struct {
	Action   Action
	Reason   string
	Metadata map[string]string
}

// Input describes one evaluation result.
type Input struct {
	RunID      string
	Source     string
	ResultType string
	// Result is the result converted to plain Go values.
	Result any
	Vars   []string
}

// Filter evaluates a policy decision for a given input.
type Filter interface {
	Evaluate(ctx context.Context, input Input) (Decision, error)
}

// Enforce evaluates f and turns a block decision into an error wrapping
// ErrBlocked. A nil filter allows everything.
func Enforce(ctx context.Context, f Filter, input Input) (Decision, error) {
	if f == nil {
		return Decision{Action: ActionAllow, Metadata: map[string]string{}}, nil
	}
	dec, err := f.Evaluate(ctx, input)
	if err != nil {
		return Decision{}, err
	}
	if dec.Action == ActionBlock {
		if dec.Reason == "" {
			return dec, ErrBlocked
		}
		return dec, fmt.Errorf("%w: %s", ErrBlocked, dec.Reason)
	}
	return dec, nil
}
