package agent

import (
	"fmt"

	configpkg "github.com/minhyannv/weather-chat-go/pkg/config"
)

// RoundError is returned when a chat round aborts. Hint names the settings
// most likely to be wrong.
type RoundError struct {
	Err  error
	Hint string
}

func (e *RoundError) Error() string {
	return e.Err.Error()
}

func (e *RoundError) Unwrap() error {
	return e.Err
}

// Diagnostic formats the message printed to the user for a failed round.
func (e *RoundError) Diagnostic() string {
	if e.Hint == "" {
		return fmt.Sprintf("Error: %v.", e.Err)
	}
	return fmt.Sprintf("Error: %v. %s", e.Err, e.Hint)
}

func configHint(cfg configpkg.Config) string {
	if cfg.IsAzure() {
		return fmt.Sprintf("Verify AZURE_OPENAI_API_KEY and WEATHER_API_KEY in %s, deployment '%s' in Azure Portal, and endpoint.",
			cfg.EnvFile, cfg.ChatModel())
	}
	return fmt.Sprintf("Verify OPENAI_API_KEY and WEATHER_API_KEY in %s, model '%s', and base URL.",
		cfg.EnvFile, cfg.ChatModel())
}
