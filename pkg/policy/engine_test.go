package policy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gateModule = `package oxy

decision := {"action": "block", "reason": "negative result"} if {
	input.result_type == "int"
	input.result < 0
}

decision := {"action": "allow", "metadata": {"kind": input.result_type}} if {
	not blocked
}

blocked if {
	input.result_type == "int"
	input.result < 0
}
`

func newEngine(t *testing.T, entry string, modules map[string]string) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), EngineOptions{Entrypoint: entry, Modules: modules})
	require.NoError(t, err)
	return engine
}

func TestEngine_Evaluate(t *testing.T) {
	engine := newEngine(t, "oxy/decision", map[string]string{"gate.rego": gateModule})

	tests := []struct {
		name     string
		input    Input
		expected Decision
	}{
		{
			name:  "allowed with metadata",
			input: Input{ResultType: "int", Result: int64(3)},
			expected: Decision{
				Action:   ActionAllow,
				Metadata: map[string]string{"kind": "int"},
			},
		},
		{
			name:  "blocked with reason",
			input: Input{ResultType: "int", Result: int64(-1)},
			expected: Decision{
				Action:   ActionBlock,
				Reason:   "negative result",
				Metadata: map[string]string{},
			},
		},
		{
			name:  "structured result",
			input: Input{ResultType: "dict", Result: map[string]any{"a": []any{int64(1)}}},
			expected: Decision{
				Action:   ActionAllow,
				Metadata: map[string]string{"kind": "dict"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := engine.Evaluate(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, dec)
		})
	}
}

func TestEngine_BooleanAndUndefined(t *testing.T) {
	engine := newEngine(t, "/oxy/allow/", map[string]string{"allow.rego": `package oxy

allow if input.source != "secret"
`})
	assert.Equal(t, "oxy/allow", engine.Entrypoint())

	dec, err := engine.Evaluate(context.Background(), Input{Source: "1 + 1"})
	require.NoError(t, err)
	assert.Equal(t, ActionAllow, dec.Action)

	dec, err = engine.Evaluate(context.Background(), Input{Source: "secret"})
	require.NoError(t, err)
	assert.Equal(t, ActionAllow, dec.Action, "undefined decisions allow")

	engine = newEngine(t, "oxy/allow", map[string]string{"allow.rego": `package oxy

default allow := false

allow if count(input.vars) < 2
`})
	dec, err = engine.Evaluate(context.Background(), Input{Vars: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, ActionBlock, dec.Action)
}

func TestNewEngine_Errors(t *testing.T) {
	_, err := NewEngine(context.Background(), EngineOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one rego module")

	_, err = NewEngine(context.Background(), EngineOptions{Modules: map[string]string{"bad.rego": "package"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `parse rego module "bad.rego"`)
}

func TestEngine_BadDecision(t *testing.T) {
	engine := newEngine(t, "oxy/decision", map[string]string{"d.rego": `package oxy

decision := {"action": "redact"}
`})
	_, err := engine.Evaluate(context.Background(), Input{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown action "redact"`)

	engine = newEngine(t, "oxy/decision", map[string]string{"d.rego": `package oxy

decision := 42
`})
	_, err = engine.Evaluate(context.Background(), Input{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected result type")
}

func TestLoadEngine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gate.rego")
	require.NoError(t, os.WriteFile(path, []byte(gateModule), 0o600))

	engine, err := LoadEngine(context.Background(), "oxy/decision", []string{path}, nil)
	require.NoError(t, err)
	dec, err := engine.Evaluate(context.Background(), Input{ResultType: "int", Result: int64(-5)})
	require.NoError(t, err)
	assert.Equal(t, ActionBlock, dec.Action)

	_, err = LoadEngine(context.Background(), "", []string{filepath.Join(dir, "missing.rego")}, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type staticFilter struct {
	dec Decision
	err error
}

func (f staticFilter) Evaluate(context.Context, Input) (Decision, error) { return f.dec, f.err }

func TestEnforce(t *testing.T) {
	dec, err := Enforce(context.Background(), nil, Input{})
	require.NoError(t, err)
	assert.Equal(t, ActionAllow, dec.Action)

	_, err = Enforce(context.Background(), staticFilter{dec: Decision{Action: ActionBlock, Reason: "nope"}}, Input{})
	require.ErrorIs(t, err, ErrBlocked)
	assert.EqualError(t, err, "result blocked by policy: nope")

	_, err = Enforce(context.Background(), staticFilter{dec: Decision{Action: ActionBlock}}, Input{})
	assert.Equal(t, ErrBlocked, err)

	boom := errors.New("boom")
	_, err = Enforce(context.Background(), staticFilter{err: boom}, Input{})
	assert.ErrorIs(t, err, boom)
}
