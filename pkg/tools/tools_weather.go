package tools

import (
	"context"
	"encoding/json"

	"github.com/minhyannv/weather-chat-go/pkg/prompt"
	"github.com/minhyannv/weather-chat-go/pkg/weather"
	"github.com/openai/openai-go"
)

// Resolver turns a location string into a weather record.
type Resolver interface {
	Lookup(ctx context.Context, location string) weather.Record
}

type weatherTool struct {
	ctx      Context
	resolver Resolver
}

func (t *weatherTool) name() string {
	return prompt.WeatherToolName
}

func (t *weatherTool) definition() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        prompt.WeatherToolName,
			Description: openai.String(prompt.WeatherToolDescription),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"location": map[string]any{
						"type":        "string",
						"description": prompt.LocationParamDescription,
					},
				},
				"required": []string{"location"},
			},
		},
	}
}

func (t *weatherTool) execute(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Location string `json:"location"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		t.ctx.debugf("[verbose] %s: failed to parse arguments: %v", prompt.WeatherToolName, err)
		return nil, err
	}
	t.ctx.debugf("[verbose] %s: location=%q", prompt.WeatherToolName, in.Location)

	return t.resolver.Lookup(ctx, in.Location), nil
}
