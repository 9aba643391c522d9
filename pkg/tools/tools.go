package tools

import (
	"context"
	"encoding/json"
	"fmt"

	loggerpkg "github.com/minhyannv/weather-chat-go/pkg/logger"
	"github.com/openai/openai-go"
	"github.com/xeipuuv/gojsonschema"
)

type tool interface {
	definition() openai.ChatCompletionToolParam
	execute(ctx context.Context, args json.RawMessage) (any, error)
	name() string
}

type Context struct {
	Verbose bool
	Ctx     context.Context
	Logger  loggerpkg.Logger
}

func (c Context) debugf(format string, args ...any) {
	loggerpkg.Debugf(c.Verbose, c.Logger, format, args...)
}

// Registry holds registered tools and handles execution.
type Registry struct {
	registry map[string]tool
	schemas  map[string]*gojsonschema.Schema
	ctx      Context
	params   []openai.ChatCompletionToolParam
}

// Result is the decoded output of one tool call.
type Result struct {
	Tool   string
	Output any
}

// New builds a registry with the weather tool backed by resolver.
func New(ctx Context, resolver Resolver) (*Registry, error) {
	if ctx.Logger == nil {
		ctx.Logger = loggerpkg.NopLogger{}
	}
	if ctx.Ctx == nil {
		ctx.Ctx = context.Background()
	}
	if resolver == nil {
		return nil, fmt.Errorf("weather resolver is required")
	}
	t := &Registry{
		registry: make(map[string]tool),
		schemas:  make(map[string]*gojsonschema.Schema),
		ctx:      ctx,
	}

	if err := t.register(&weatherTool{ctx: ctx, resolver: resolver}); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Registry) register(toolImpl tool) error {
	def := toolImpl.definition()
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(map[string]any(def.Function.Parameters)))
	if err != nil {
		return fmt.Errorf("compile schema for %s: %w", toolImpl.name(), err)
	}
	t.registry[toolImpl.name()] = toolImpl
	t.schemas[toolImpl.name()] = schema
	t.params = append(t.params, def)
	t.ctx.debugf("[verbose] registered tool: %s", toolImpl.name())
	return nil
}

func (t *Registry) Definitions() []openai.ChatCompletionToolParam {
	return t.params
}

// Execute decodes and validates the call's arguments, then runs the tool.
// Argument and lookup problems are returned as errors so the caller can abort the round.
func (t *Registry) Execute(call openai.ChatCompletionMessageToolCall) (Result, error) {
	select {
	case <-t.ctx.Ctx.Done():
		return Result{}, t.ctx.Ctx.Err()
	default:
	}

	toolImpl, ok := t.registry[call.Function.Name]
	if !ok {
		return Result{}, fmt.Errorf("unknown tool: %s", call.Function.Name)
	}

	args := json.RawMessage(call.Function.Arguments)
	if err := t.validateArgs(call.Function.Name, args); err != nil {
		return Result{}, err
	}
	t.ctx.debugf("[verbose] executing tool %s(id=%s) args=%s", call.Function.Name, call.ID, call.Function.Arguments)

	output, err := toolImpl.execute(t.ctx.Ctx, args)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", call.Function.Name, err)
	}
	return Result{Tool: call.Function.Name, Output: output}, nil
}

func (t *Registry) validateArgs(toolName string, args json.RawMessage) error {
	if !json.Valid(args) {
		return fmt.Errorf("decode %s arguments: invalid JSON %q", toolName, string(args))
	}
	result, err := t.schemas[toolName].Validate(gojsonschema.NewBytesLoader(args))
	if err != nil {
		return fmt.Errorf("validate %s arguments: %w", toolName, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return &ValidationError{Tool: toolName, Detail: fmt.Sprintf("%v", errs)}
	}
	return nil
}

// ValidationError reports tool arguments that do not match the tool's schema.
type ValidationError struct {
	Tool   string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, e.Detail)
}
