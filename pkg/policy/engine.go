package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

// EngineOptions control OPA engine construction.
type EngineOptions struct {
	// Entrypoint is the decision path, e.g. "oxy/decision".
	Entrypoint string
	// Modules maps module names to Rego source.
	Modules map[string]string
	Logger  *slog.Logger
}

// Engine evaluates policy decisions using an embedded OPA instance.
type Engine struct {
	moduleOrder   []string
	parsedModules map[string]*ast.Module
	entrypoint    string
	logger        *slog.Logger

	mu       sync.RWMutex
	prepared *rego.PreparedEvalQuery
}

const defaultEntrypoint = "oxy/decision"

// NewEngine parses the modules and prepares the entrypoint query.
func NewEngine(ctx context.Context, opts EngineOptions) (*Engine, error) {
	entry := strings.Trim(strings.TrimSpace(opts.Entrypoint), "/")
	if entry == "" {
		entry = defaultEntrypoint
	}
	if len(opts.Modules) == 0 {
		return nil, errors.New("policy engine requires at least one rego module")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	moduleOrder := make([]string, 0, len(opts.Modules))
	for name := range opts.Modules {
		moduleOrder = append(moduleOrder, name)
	}
	sort.Strings(moduleOrder)

	parsedModules := make(map[string]*ast.Module, len(opts.Modules))
	for _, name := range moduleOrder {
		module, err := ast.ParseModuleWithOpts(name, opts.Modules[name], ast.ParserOptions{RegoVersion: ast.RegoV1})
		if err != nil {
			return nil, fmt.Errorf("parse rego module %q: %w", name, err)
		}
		parsedModules[name] = module
	}

	engine := &Engine{
		moduleOrder:   moduleOrder,
		parsedModules: parsedModules,
		entrypoint:    entry,
		logger:        logger,
	}

	// Prepare eagerly to surface compile errors at load time.
	if _, err := engine.getPreparedQuery(ctx); err != nil {
		return nil, fmt.Errorf("compile rego modules: %w", err)
	}
	return engine, nil
}

// LoadEngine reads the Rego modules at paths and builds an Engine.
func LoadEngine(ctx context.Context, entrypoint string, paths []string, logger *slog.Logger) (*Engine, error) {
	modules := make(map[string]string, len(paths))
	for _, path := range paths {
		//nolint:gosec // Policy paths come from the operator's config
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read policy module: %w", err)
		}
		modules[filepath.Base(path)+":"+path] = string(src)
	}
	return NewEngine(ctx, EngineOptions{Entrypoint: entrypoint, Modules: modules, Logger: logger})
}

// Entrypoint returns the decision path.
func (e *Engine) Entrypoint() string { return e.entrypoint }

// Evaluate executes the policy against input and converts the result. An
// undefined decision allows; a boolean decision maps true to allow.
func (e *Engine) Evaluate(ctx context.Context, input Input) (Decision, error) {
	prepared, err := e.getPreparedQuery(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("prepare query: %w", err)
	}

	vars := input.Vars
	if vars == nil {
		vars = []string{}
	}
	payload := map[string]any{
		"run_id":      input.RunID,
		"source":      input.Source,
		"result_type": input.ResultType,
		"result":      input.Result,
		"vars":        vars,
	}

	e.logger.Debug("Evaluating policy", "entrypoint", e.entrypoint, "run_id", input.RunID)
	results, err := prepared.Eval(ctx, rego.EvalInput(payload))
	if err != nil {
		return Decision{}, fmt.Errorf("opa decision: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{Action: ActionAllow, Metadata: map[string]string{}}, nil
	}

	switch v := results[0].Expressions[0].Value.(type) {
	case bool:
		if v {
			return Decision{Action: ActionAllow, Metadata: map[string]string{}}, nil
		}
		return Decision{Action: ActionBlock, Metadata: map[string]string{}}, nil
	case map[string]any:
		action, err := parseAction(v["action"])
		if err != nil {
			return Decision{}, err
		}
		reason, _ := v["reason"].(string)
		return Decision{Action: action, Reason: reason, Metadata: parseMetadata(v["metadata"])}, nil
	default:
		return Decision{}, fmt.Errorf("opa decision: unexpected result type %T", v)
	}
}

func (e *Engine) getPreparedQuery(ctx context.Context) (*rego.PreparedEvalQuery, error) {
	e.mu.RLock()
	if e.prepared != nil {
		defer e.mu.RUnlock()
		return e.prepared, nil
	}
	e.mu.RUnlock()

	opts := make([]func(*rego.Rego), 0, len(e.parsedModules)+1)
	opts = append(opts, rego.Query("data."+strings.ReplaceAll(e.entrypoint, "/", ".")))
	for _, name := range e.moduleOrder {
		opts = append(opts, rego.ParsedModule(e.parsedModules[name]))
	}

	prepared, err := rego.New(opts...).PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.prepared == nil {
		e.prepared = &prepared
	}
	return e.prepared, nil
}

func parseAction(value any) (Action, error) {
	if value == nil {
		return ActionAllow, nil
	}
	text, ok := value.(string)
	if !ok {
		return Action(""), fmt.Errorf("opa decision: action must be string, got %T", value)
	}
	switch Action(strings.ToLower(text)) {
	case ActionAllow:
		return ActionAllow, nil
	case ActionBlock:
		return ActionBlock, nil
	default:
		return Action(""), fmt.Errorf("opa decision: unknown action %q", text)
	}
}

func parseMetadata(value any) map[string]string {
	typed, ok := value.(map[string]any)
	if !ok {
		return map[string]string{}
	}
	result := make(map[string]string, len(typed))
	for key, raw := range typed {
		if str, ok := raw.(string); ok {
			result[key] = str
		}
	}
	return result
}
