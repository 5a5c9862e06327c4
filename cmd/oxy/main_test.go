package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/polisai/oxy/pkg/config"
	"github.com/polisai/oxy/pkg/object"
	"github.com/polisai/oxy/pkg/proxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestEvalCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "single expression",
			args:     []string{"eval", "1 + 2 * 3"},
			expected: "7\n",
		},
		{
			name:     "shared scope across arguments",
			args:     []string{"eval", "x = [3, 1, 2]", "sorted(x)"},
			expected: "None\n[1, 2, 3]\n",
		},
		{
			name:     "proxy repr is the target repr",
			args:     []string{"eval", "proxy('hi')"},
			expected: "'hi'\n",
		},
		{
			name:     "json output unwraps proxy",
			args:     []string{"eval", "-o", "json", "proxy({'a': [1, 2]})"},
			expected: "{\n  \"a\": [\n    1,\n    2\n  ]\n}\n",
		},
		{
			name:     "yaml output",
			args:     []string{"eval", "--output", "yaml", "{'b': True}"},
			expected: "b: true\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestEvalCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		errText string
	}{
		{name: "syntax", args: []string{"eval", "1 +"}, errText: "syntax error"},
		{name: "unknown name", args: []string{"eval", "missing"}, errText: "name error"},
		{name: "unbound proxy", args: []string{"eval", "unbound() + 1"}, errText: "__target__"},
		{name: "bad output", args: []string{"eval", "-o", "xml", "1"}, errText: "unknown output format"},
		{name: "no args", args: []string{"eval"}, errText: "requires at least 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestEvalCommand_ConfigVars(t *testing.T) {
	path := writeFile(t, "oxy.yaml", `
vars:
  name: world
  nums: [1, 2, 3]
`)

	out, _, err := execute(t, "", "eval", "-c", path, "'hello ' + name", "len(nums)")
	require.NoError(t, err)
	assert.Equal(t, "'hello world'\n3\n", out)

	out, _, err = execute(t, "", "eval", "-c", path, "--proxy", "isinstance(nums, proxy)", "nums[0] + 10")
	require.NoError(t, err)
	assert.Equal(t, "True\n11\n", out)
}

func TestEvalCommand_PolicyGate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gate.rego"), []byte(`package oxy

decision := {"action": "block", "reason": "strings are not allowed"} if input.result_type == "str"
`), 0o600))
	path := filepath.Join(dir, "oxy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policy:\n  modules: [gate.rego]\n"), 0o600))

	out, _, err := execute(t, "", "eval", "-c", path, "1 + 1")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	_, _, err = execute(t, "", "eval", "-c", path, "'s' * 2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "result blocked by policy: strings are not allowed")
}

func TestRunCommand(t *testing.T) {
	script := writeFile(t, "prog.oxy", "a = 2\nb = a ** 10\nb // 3")

	out, _, err := execute(t, "", "run", script)
	require.NoError(t, err)
	assert.Equal(t, "341\n", out)

	out, _, err = execute(t, "x = 1; x += 4; x", "run", "-")
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)

	out, _, err = execute(t, "y = 1", "run", "-")
	require.NoError(t, err)
	assert.Empty(t, out, "None results are not printed")

	_, _, err = execute(t, "", "run", filepath.Join(t.TempDir(), "absent.oxy"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read script")
}

func TestLogging(t *testing.T) {
	_, errOut, err := execute(t, "", "eval", "--log-level", "debug", "1")
	require.NoError(t, err)
	assert.Contains(t, errOut, `"msg":"Evaluation complete"`)
	assert.Contains(t, errOut, `"run_id"`)

	_, errOut, err = execute(t, "", "eval", "1")
	require.NoError(t, err)
	assert.Empty(t, errOut, "info level hides debug records")
}

func TestParseCLIConfig(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"-c", "oxy.toml", "-l", "warn", "--pretty", "--timeout", "25ms", "--proxy",
	}))

	cli, err := parseCLIConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, &CLIConfig{
		ConfigPath: "oxy.toml",
		LogLevel:   "warn",
		Pretty:     true,
		Timeout:    25 * time.Millisecond,
		Output:     outputRepr,
		WrapVars:   true,
	}, cli)

	cfg := config.Default()
	applyFlags(cmd, cli, cfg)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Pretty)
	assert.Equal(t, 25*time.Millisecond, cfg.Evaluator.Timeout.Std())
	assert.Empty(t, cfg.Metrics.Address, "unset flags leave config alone")
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, proxy.New(object.Str("x")), outputJSON))
	assert.Equal(t, "\"x\"\n", buf.String())

	buf.Reset()
	err := printResult(&buf, proxy.Unbound(), outputJSON)
	require.ErrorIs(t, err, proxy.ErrUnbound)
}

func TestWatchCommand_RequiresConfig(t *testing.T) {
	_, _, err := execute(t, "", "watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--config")
}

func TestApp_Apply(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetContext(context.Background())
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.ParseFlags(nil))
	a, err := setup(cmd)
	require.NoError(t, err)
	defer a.close()

	cfg := config.Default()
	cfg.Vars = map[string]any{"n": 6}
	cfg.Script = "n * 7"

	var out bytes.Buffer
	a.apply(context.Background(), &out, config.Snapshot{Generation: 1, Config: cfg})
	assert.Equal(t, "42\n", out.String())

	out.Reset()
	cfg.Script = "n +"
	a.apply(context.Background(), &out, config.Snapshot{Generation: 2, Config: cfg})
	assert.Empty(t, out.String(), "script errors are logged, not printed")
}
