package agent

import (
	"fmt"

	"github.com/openai/openai-go"
)

// Role is the role of a transcript turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged entry in the transcript.
type Turn struct {
	Role    Role
	Content string
}

func toOpenAIMessages(turns []Turn) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for i, turn := range turns {
		switch turn.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(turn.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(turn.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(turn.Content))
		default:
			return nil, fmt.Errorf("invalid message role at index %d: %q", i, turn.Role)
		}
	}
	return out, nil
}
