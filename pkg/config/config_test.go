package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polisai/oxy/pkg/object"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "oxy.yaml",
			content: `
logging:
  level: DEBUG
  pretty: true
evaluator:
  timeout: 25ms
metrics:
  address: ":9464"
telemetry:
  otlp_endpoint: "localhost:4317"
  insecure: true
vars:
  limit: 3
  names: [a, b]
script: "limit + 1"
`,
		},
		{
			name: "json",
			file: "oxy.json",
			content: `{
  "logging": {"level": "debug", "pretty": true},
  "evaluator": {"timeout": "25ms"},
  "metrics": {"address": ":9464"},
  "telemetry": {"otlp_endpoint": "localhost:4317", "insecure": true},
  "vars": {"limit": 3, "names": ["a", "b"]},
  "script": "limit + 1"
}`,
		},
		{
			name: "json without extension falls back",
			file: "oxy.conf",
			content: `{"logging": {"level": "debug", "pretty": true}, "evaluator": {"timeout": "25ms"},
"metrics": {"address": ":9464"}, "telemetry": {"otlp_endpoint": "localhost:4317", "insecure": true},
"vars": {"limit": 3, "names": ["a", "b"]}, "script": "limit + 1"}`,
		},
		{
			name: "toml",
			file: "oxy.toml",
			content: `
script = "limit + 1"

[logging]
level = "debug"
pretty = true

[evaluator]
timeout = "25ms"

[metrics]
address = ":9464"

[telemetry]
otlp_endpoint = "localhost:4317"
insecure = true

[vars]
limit = 3
names = ["a", "b"]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, "debug", cfg.Logging.Level)
			assert.True(t, cfg.Logging.Pretty)
			assert.Equal(t, 25*time.Millisecond, cfg.Evaluator.Timeout.Std())
			assert.Equal(t, ":9464", cfg.Metrics.Address)
			assert.Equal(t, DefaultMetricsPath, cfg.Metrics.Path)
			assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
			assert.True(t, cfg.Telemetry.Insecure)
			assert.Equal(t, DefaultServiceName, cfg.Telemetry.ServiceName)
			assert.Equal(t, "limit + 1", cfg.Script)

			vars, err := cfg.ScopeVars(nil)
			require.NoError(t, err)
			eq, err := object.Equal(vars["limit"], object.Int(3))
			require.NoError(t, err)
			assert.True(t, eq)
			r, err := object.Repr(vars["names"])
			require.NoError(t, err)
			assert.Equal(t, "['a', 'b']", r)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultEvalTimeout, cfg.Evaluator.Timeout.Std())
	assert.Empty(t, cfg.Metrics.Address)
	assert.Empty(t, cfg.Vars)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OXY_LOG_LEVEL", "warn")
	t.Setenv("OXY_LOG_PRETTY", "true")
	t.Setenv("OXY_EVAL_TIMEOUT", "50")
	t.Setenv("OXY_METRICS_ADDR", "127.0.0.1:9000")
	t.Setenv("OXY_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("OXY_OTLP_INSECURE", "true")

	cfg, err := Load(writeFile(t, "oxy.yaml", "logging:\n  level: error\n"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Pretty)
	assert.Equal(t, 50*time.Millisecond, cfg.Evaluator.Timeout.Std(), "bare integers are milliseconds")
	assert.Equal(t, "127.0.0.1:9000", cfg.Metrics.Address)
	assert.Equal(t, "collector:4317", cfg.Telemetry.OTLPEndpoint)
	assert.True(t, cfg.Telemetry.Insecure)

	t.Setenv("OXY_EVAL_TIMEOUT", "2s")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Evaluator.Timeout.Std())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{name: "bad level", file: "a.yaml", content: "logging:\n  level: loud\n", want: "invalid log level"},
		{name: "bad duration", file: "a.yaml", content: "evaluator:\n  timeout: soon\n", want: "invalid duration"},
		{name: "negative timeout", file: "a.yaml", content: "evaluator:\n  timeout: -1s\n", want: "timeout must be positive"},
		{name: "bad metrics path", file: "a.yaml", content: "metrics:\n  path: metrics\n", want: "must start with /"},
		{name: "bad var name", file: "a.yaml", content: "vars:\n  1x: 2\n", want: "not a valid identifier"},
		{name: "unparseable", file: "a.yaml", content: "logging: [\n", want: "failed to parse"},
		{name: "bad toml", file: "a.toml", content: "logging = = 1\n", want: "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Policy(t *testing.T) {
	path := writeFile(t, "oxy.yaml", `
policy:
  entrypoint: /gate/decision/
  modules:
    - rules/gate.rego
    - /etc/oxy/base.rego
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Policy.Enabled())
	assert.Equal(t, "gate/decision", cfg.Policy.Entrypoint)
	assert.Equal(t, []string{
		filepath.Join(filepath.Dir(path), "rules", "gate.rego"),
		"/etc/oxy/base.rego",
	}, cfg.Policy.Modules)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Policy.Enabled())
	assert.Equal(t, DefaultEntrypoint, cfg.Policy.Entrypoint)

	_, err = Load(writeFile(t, "oxy.yaml", "policy:\n  modules: ['']\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "modules[0] is empty")
}

func TestScopeVars_Wrap(t *testing.T) {
	cfg := Default()
	cfg.Vars = map[string]any{"a": 1, "b": "x"}

	var wrapped []string
	vars, err := cfg.ScopeVars(func(o object.Object) object.Object {
		wrapped = append(wrapped, object.TypeName(o))
		return object.NewList(o)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "str"}, wrapped, "wrapped in name order")
	assert.IsType(t, &object.List{}, vars["a"])
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte(" 1m30s ")))
	assert.Equal(t, 90*time.Second, d.Std())
	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))
}
