// Command weather-chat is an interactive weather assistant backed by an
// OpenAI-compatible chat model and weatherapi.com.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/minhyannv/weather-chat-go/pkg/agent"
	loggerpkg "github.com/minhyannv/weather-chat-go/pkg/logger"
)

// main is the program entry point.
func main() {
	config, err := parseCLIConfig(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	appLogger := loggerpkg.NewWriterLogger(os.Stderr)
	app, err := agent.New(context.Background(), config, agent.WithLogger(appLogger))
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	running := app.Config()
	loggerpkg.Debug(running.Verbose, appLogger, "session started", map[string]any{
		"session": app.SessionID(),
		"model":   running.ChatModel(),
		"azure":   running.IsAzure(),
	})

	if err := runREPL(app, replOptions{
		Verbose: running.Verbose,
		Logger:  appLogger,
	}, os.Stdin, os.Stdout); err != nil {
		loggerpkg.Error(appLogger, "session aborted", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
