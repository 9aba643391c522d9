package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/google/uuid"
	configpkg "github.com/minhyannv/weather-chat-go/pkg/config"
	loggerpkg "github.com/minhyannv/weather-chat-go/pkg/logger"
	"github.com/minhyannv/weather-chat-go/pkg/prompt"
	"github.com/minhyannv/weather-chat-go/pkg/tools"
	"github.com/minhyannv/weather-chat-go/pkg/weather"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

// AgentLoop holds the conversation state for one session.
type AgentLoop struct {
	config       configpkg.Config
	client       openai.Client
	tools        *tools.Registry
	SystemPrompt string
	transcript   []Turn
	sessionID    string

	ctx     context.Context
	logger  loggerpkg.Logger
	verbose bool
}

// Reply is the outcome of one successful round.
type Reply struct {
	// Content is what was appended to the transcript as the assistant turn.
	Content string
	// Display is what the caller prints: the reply text, or the tool result
	// as indented JSON.
	Display string
	// Tool names the tool that produced the reply, empty for plain text.
	Tool string
}

// New initializes an AgentLoop with the provided context, config, and dependencies.
func New(ctx context.Context, cfg configpkg.Config, opts ...AgentOption) (*AgentLoop, error) {
	cfg = configpkg.Normalize(cfg)
	deps := agentDeps{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}
	if err := configpkg.Validate(cfg); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sessionID := uuid.NewString()
	log := loggerpkg.With(deps.logger, map[string]any{"session": sessionID[:8]})
	loggerpkg.Debug(cfg.Verbose, log, "agent_loop init", map[string]any{
		"model":       cfg.ChatModel(),
		"base_url":    cfg.BaseURL,
		"azure":       cfg.IsAzure(),
		"max_tokens":  cfg.MaxTokens,
		"weather_url": cfg.WeatherBaseURL,
	})

	systemPrompt := prompt.BuildSystemPrompt(cfg.SystemPrompt)

	client, err := newOpenAIClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create chat client: %w", err)
	}

	resolver := deps.resolver
	if resolver == nil {
		resolver = weather.NewClient(
			weather.WithBaseURL(cfg.WeatherBaseURL),
			weather.WithAPIKey(cfg.WeatherAPIKey),
			weather.WithEnvFile(cfg.EnvFile),
			weather.WithTimeout(cfg.WeatherTimeout),
			weather.WithLogger(log, cfg.Verbose),
		)
	}

	registeredTools, err := tools.New(tools.Context{
		Verbose: cfg.Verbose,
		Ctx:     ctx,
		Logger:  log,
	}, resolver)
	if err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}

	return &AgentLoop{
		config:       cfg,
		client:       client,
		tools:        registeredTools,
		SystemPrompt: systemPrompt,
		transcript:   []Turn{{Role: RoleSystem, Content: systemPrompt}},
		sessionID:    sessionID,

		ctx:     ctx,
		logger:  log,
		verbose: cfg.Verbose,
	}, nil
}

func newOpenAIClient(cfg configpkg.Config) (openai.Client, error) {
	// Rounds fail fast; the SDK would otherwise retry 5xx and 429 responses.
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.IsAzure() {
		opts = append(opts, azure.WithEndpoint(cfg.AzureEndpoint, cfg.AzureAPIVersion))
		if cfg.AzureUseIdentity {
			cred, err := azidentity.NewDefaultAzureCredential(nil)
			if err != nil {
				return openai.Client{}, fmt.Errorf("azure credential: %w", err)
			}
			opts = append(opts, azure.WithTokenCredential(cred))
		} else {
			opts = append(opts, azure.WithAPIKey(cfg.ChatAPIKey()))
		}
		return openai.NewClient(opts...), nil
	}

	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if key := cfg.ChatAPIKey(); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	return openai.NewClient(opts...), nil
}

// runOnce performs one model completion request.
func (a *AgentLoop) runOnce(params openai.ChatCompletionNewParams) (openai.ChatCompletionMessage, error) {
	a.debugf("[verbose] round: sending request with %d message(s)", len(params.Messages))
	completion, err := a.client.Chat.Completions.New(a.ctx, params)
	if err != nil {
		return openai.ChatCompletionMessage{}, err
	}
	if len(completion.Choices) == 0 {
		return openai.ChatCompletionMessage{}, errors.New("empty completion choices")
	}
	a.debugf("[verbose] round: finish_reason=%s tool_calls=%d", completion.Choices[0].FinishReason, len(completion.Choices[0].Message.ToolCalls))
	return completion.Choices[0].Message, nil
}

// Run processes one user input and appends at most one assistant turn.
// On failure the user turn stays in the transcript and no assistant turn is
// added; the returned error is a *RoundError.
func (a *AgentLoop) Run(userInput string) (Reply, error) {
	a.transcript = append(a.transcript, Turn{Role: RoleUser, Content: userInput})

	reply, err := a.runRound()
	if err != nil {
		loggerpkg.Warn(a.logger, "round failed", map[string]any{"error": err.Error()})
		return Reply{}, &RoundError{Err: err, Hint: configHint(a.config)}
	}

	a.transcript = append(a.transcript, Turn{Role: RoleAssistant, Content: reply.Content})
	return reply, nil
}

func (a *AgentLoop) runRound() (Reply, error) {
	messages, err := toOpenAIMessages(a.transcript)
	if err != nil {
		return Reply{}, err
	}

	message, err := a.runOnce(a.newChatParams(messages))
	if err != nil {
		return Reply{}, err
	}

	if len(message.ToolCalls) == 0 {
		return Reply{Content: message.Content, Display: message.Content}, nil
	}

	// Only the first tool call is honored.
	call := message.ToolCalls[0]
	if len(message.ToolCalls) > 1 {
		a.debugf("[verbose] round: ignoring %d extra tool call(s)", len(message.ToolCalls)-1)
	}
	result, err := a.tools.Execute(call)
	if err != nil {
		return Reply{}, err
	}

	compact, err := json.Marshal(result.Output)
	if err != nil {
		return Reply{}, fmt.Errorf("encode %s result: %w", result.Tool, err)
	}
	pretty, err := json.MarshalIndent(result.Output, "", "  ")
	if err != nil {
		return Reply{}, fmt.Errorf("encode %s result: %w", result.Tool, err)
	}
	return Reply{Content: string(compact), Display: string(pretty), Tool: result.Tool}, nil
}

// Transcript returns a copy of the conversation so far.
func (a *AgentLoop) Transcript() []Turn {
	out := make([]Turn, len(a.transcript))
	copy(out, a.transcript)
	return out
}

// SessionID identifies this conversation in log output.
func (a *AgentLoop) SessionID() string {
	return a.sessionID
}

// Config returns the normalized configuration the loop runs with.
func (a *AgentLoop) Config() configpkg.Config {
	return a.config
}

// IsSentinel reports whether input ends the session.
func IsSentinel(input string) bool {
	return strings.EqualFold(strings.TrimSpace(input), "end")
}

func (a *AgentLoop) debugf(format string, args ...any) {
	loggerpkg.Debugf(a.verbose, a.logger, format, args...)
}

func (a *AgentLoop) newChatParams(messages []openai.ChatCompletionMessageParamUnion) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(a.config.ChatModel()),
		Messages:  messages,
		Tools:     a.tools.Definitions(),
		MaxTokens: openai.Int(a.config.MaxTokens),
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("auto"),
		},
	}
}
