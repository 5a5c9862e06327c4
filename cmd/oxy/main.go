package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/polisai/oxy/pkg/config"
	"github.com/polisai/oxy/pkg/expr"
	"github.com/polisai/oxy/pkg/logging"
	"github.com/polisai/oxy/pkg/object"
	"github.com/polisai/oxy/pkg/policy"
	"github.com/polisai/oxy/pkg/proxy"
	"github.com/polisai/oxy/pkg/telemetry"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gopkg.in/yaml.v3"
)

const tracerName = "github.com/polisai/oxy/cmd/oxy"

// Output formats for evaluation results.
const (
	outputRepr = "repr"
	outputJSON = "json"
	outputYAML = "yaml"
)

// CLIConfig holds the flags shared by every subcommand.
type CLIConfig struct {
	ConfigPath  string
	LogLevel    string
	Pretty      bool
	Timeout     time.Duration
	MetricsAddr string
	Output      string
	WrapVars    bool
}

// app is the wired runtime for one command invocation.
type app struct {
	cfg       *config.Config
	cli       *CLIConfig
	logger    *slog.Logger
	metrics   *telemetry.Metrics
	evaluator *expr.Evaluator
	gate      policy.Filter
	shutdown  func(context.Context) error
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "oxy",
		Short: "Evaluate expressions over transparent object proxies",
		Long: `oxy evaluates small Python-style programs against a scope of
variables. Values can be wrapped in transparent proxies that forward every
operation to their target, and the scope can be loaded from a YAML, JSON or
TOML configuration file and re-evaluated whenever that file changes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to configuration file (YAML, JSON or TOML)")
	flags.StringP("log-level", "l", "", "Log level (debug, info, warn, error)")
	flags.Bool("pretty", false, "Human readable log output")
	flags.Duration("timeout", 0, "Evaluation timeout per program")
	flags.String("metrics-addr", "", "Address to serve Prometheus metrics on (watch only)")
	flags.StringP("output", "o", outputRepr, "Result format (repr, json, yaml)")
	flags.Bool("proxy", false, "Wrap configured variables in proxies")

	rootCmd.AddCommand(newEvalCmd(), newRunCmd(), newWatchCmd())
	return rootCmd
}

func newEvalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <expression>...",
		Short: "Evaluate expressions in one shared scope",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			scope, err := a.scope(a.cfg)
			if err != nil {
				return err
			}
			for _, source := range args {
				result, err := a.run(cmd.Context(), source, scope)
				if err != nil {
					return err
				}
				if err := printResult(cmd.OutOrStdout(), result, a.cli.Output); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file|->",
		Short: "Run a program from a file or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			source, err := readSource(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			scope, err := a.scope(a.cfg)
			if err != nil {
				return err
			}
			result, err := a.run(cmd.Context(), source, scope)
			if err != nil {
				return err
			}
			if result == object.None {
				return nil
			}
			return printResult(cmd.OutOrStdout(), result, a.cli.Output)
		},
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-run the configured script whenever the config file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if a.cli.ConfigPath == "" {
				return errors.New("watch requires --config")
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigChan)
			go func() {
				select {
				case sig := <-sigChan:
					a.logger.Info("Received signal, shutting down", "signal", sig.String())
					cancel()
				case <-ctx.Done():
				}
			}()

			return a.watch(ctx, cmd.OutOrStdout())
		},
	}
}

// parseCLIConfig reads the persistent flags.
func parseCLIConfig(cmd *cobra.Command) (*CLIConfig, error) {
	flags := cmd.Flags()
	cli := &CLIConfig{}
	var err error

	if cli.ConfigPath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cli.LogLevel, err = flags.GetString("log-level"); err != nil {
		return nil, err
	}
	if cli.Pretty, err = flags.GetBool("pretty"); err != nil {
		return nil, err
	}
	if cli.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cli.MetricsAddr, err = flags.GetString("metrics-addr"); err != nil {
		return nil, err
	}
	if cli.Output, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cli.WrapVars, err = flags.GetBool("proxy"); err != nil {
		return nil, err
	}

	switch cli.Output {
	case outputRepr, outputJSON, outputYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q", cli.Output)
	}
	if cli.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative, got %s", cli.Timeout)
	}
	return cli, nil
}

// applyFlags lets explicitly set flags win over the loaded config.
func applyFlags(cmd *cobra.Command, cli *CLIConfig, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = cli.LogLevel
	}
	if flags.Changed("pretty") {
		cfg.Logging.Pretty = cli.Pretty
	}
	if flags.Changed("timeout") {
		cfg.Evaluator.Timeout = config.Duration(cli.Timeout)
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Address = cli.MetricsAddr
	}
}

func setup(cmd *cobra.Command) (*app, error) {
	cli, err := parseCLIConfig(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(cli.ConfigPath)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cli, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
		Output: cmd.ErrOrStderr(),
	})
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
		cmd.SetContext(ctx)
	}
	shutdown, err := telemetry.SetupProvider(ctx, telemetry.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Environment: cfg.Telemetry.Environment,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     cfg.Telemetry.Headers,
	})
	if err != nil {
		return nil, err
	}

	gate, err := loadGate(ctx, cfg, logger)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	metrics := telemetry.NewMetrics()
	return &app{
		cfg:     cfg,
		cli:     cli,
		logger:  logger,
		metrics: metrics,
		evaluator: expr.NewEvaluator(expr.Options{
			Timeout: cfg.Evaluator.Timeout.Std(),
			Metrics: metrics,
		}),
		gate:     gate,
		shutdown: shutdown,
	}, nil
}

// loadGate builds the policy engine when modules are configured.
func loadGate(ctx context.Context, cfg *config.Config, logger *slog.Logger) (policy.Filter, error) {
	if !cfg.Policy.Enabled() {
		return nil, nil
	}
	engine, err := policy.LoadEngine(ctx, cfg.Policy.Entrypoint, cfg.Policy.Modules, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("Policy loaded", "entrypoint", engine.Entrypoint(), "modules", len(cfg.Policy.Modules))
	return engine, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn("Telemetry shutdown failed", "error", err)
	}
}

// scope builds the evaluation scope from the configured variables.
func (a *app) scope(cfg *config.Config) (*expr.Scope, error) {
	var wrap func(object.Object) object.Object
	if a.cli.WrapVars {
		wrap = func(o object.Object) object.Object { return proxy.New(o) }
	}
	vars, err := cfg.ScopeVars(wrap)
	if err != nil {
		return nil, err
	}
	a.metrics.SetScopeVars(len(vars))
	return expr.NewScope(vars), nil
}

// run evaluates one program under its own run id and span.
func (a *app) run(ctx context.Context, source string, scope *expr.Scope) (object.Object, error) {
	runID := uuid.NewString()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "oxy.run")
	defer span.End()
	span.SetAttributes(attribute.String("oxy.run.id", runID))

	logger := a.logger.With("run_id", runID)
	start := time.Now()
	result, err := a.evaluator.Evaluate(ctx, source, scope)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Debug("Evaluation failed", "error", err, "elapsed", time.Since(start))
		return nil, err
	}

	typeName := object.TypeName(result)
	if err := a.enforce(ctx, runID, source, result, scope); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Debug("Result rejected", "error", err)
		return nil, err
	}
	telemetry.RecordRunEvent(span, runID, typeName)
	logger.Debug("Evaluation complete", "result_type", typeName, "elapsed", time.Since(start))
	return result, nil
}

func (a *app) enforce(ctx context.Context, runID, source string, result object.Object, scope *expr.Scope) error {
	if a.gate == nil {
		return nil
	}
	input := policy.Input{
		RunID:      runID,
		Source:     source,
		ResultType: object.TypeName(result),
		Vars:       scope.Names(),
	}
	// An unbound proxy has no plain form; the policy sees a null result.
	if target, err := proxy.Unwrap(result); err == nil {
		native, err := object.ToNative(target)
		if err != nil {
			return err
		}
		input.Result = native
		input.ResultType = object.TypeName(target)
	}
	_, err := policy.Enforce(ctx, a.gate, input)
	return err
}

func (a *app) watch(ctx context.Context, out io.Writer) error {
	provider, err := config.NewFileConfigProvider(a.cli.ConfigPath, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Close(); err != nil {
			a.logger.Warn("Closing config watcher failed", "error", err)
		}
	}()

	if a.cfg.Metrics.Address != "" {
		srv := a.metrics.Server(a.cfg.Metrics.Address, a.cfg.Metrics.Path)
		go func() {
			a.logger.Info("Serving metrics", "addr", srv.Addr, "path", a.cfg.Metrics.Path)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	provider.OnReload(func(err error) {
		if err != nil {
			a.metrics.RecordConfigReload("error")
			return
		}
		a.metrics.RecordConfigReload("success")
	})

	updates := provider.Subscribe()
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Watch stopped")
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			a.apply(ctx, out, snap)
		}
	}
}

// apply runs the script of one snapshot. Failures are logged, never fatal,
// so a broken edit does not stop the watcher.
func (a *app) apply(ctx context.Context, out io.Writer, snap config.Snapshot) {
	logger := a.logger.With("generation", snap.Generation, "path", snap.Path)

	gate, err := loadGate(ctx, snap.Config, a.logger)
	if err != nil {
		logger.Error("Loading policy failed, keeping previous policy", "error", err)
	} else {
		a.gate = gate
	}

	if strings.TrimSpace(snap.Config.Script) == "" {
		logger.Info("Config loaded, no script to run")
		return
	}
	scope, err := a.scope(snap.Config)
	if err != nil {
		logger.Error("Building scope failed", "error", err)
		return
	}
	result, err := a.run(ctx, snap.Config.Script, scope)
	if err != nil {
		logger.Error("Script failed", "error", err)
		return
	}
	if err := printResult(out, result, a.cli.Output); err != nil {
		logger.Error("Printing result failed", "error", err)
	}
}

func readSource(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	//nolint:gosec // Script path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read script %s: %w", path, err)
	}
	return string(data), nil
}

// printResult writes result in the requested format. A top-level proxy is
// unwrapped first for the structured formats.
func printResult(w io.Writer, result object.Object, format string) error {
	if format == outputRepr {
		s, err := object.Repr(result)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, s)
		return err
	}

	target, err := proxy.Unwrap(result)
	if err != nil {
		return err
	}
	native, err := object.ToNative(target)
	if err != nil {
		return err
	}

	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(native)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(native); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}
