package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minhyannv/weather-chat-go/pkg/agent"
	loggerpkg "github.com/minhyannv/weather-chat-go/pkg/logger"
)

const (
	inputPrompt   = "Message (end to stop): "
	endedMessage  = "Ended."
	maxInputBytes = 1024 * 1024
)

// chatRunner is the part of agent.AgentLoop the REPL drives.
type chatRunner interface {
	Run(userInput string) (agent.Reply, error)
}

// replOptions configures REPL behavior.
type replOptions struct {
	Verbose bool
	Logger  loggerpkg.Logger
}

// runREPL reads one message per line until the sentinel or EOF.
func runREPL(app chatRunner, opts replOptions, in io.Reader, out io.Writer) error {
	if app == nil {
		return fmt.Errorf("agent loop is required")
	}
	if in == nil {
		return fmt.Errorf("input reader is required")
	}
	if out == nil {
		out = io.Discard
	}

	loggerpkg.Debug(opts.Verbose, opts.Logger, "repl start", nil)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxInputBytes)

	for {
		_, _ = fmt.Fprint(out, inputPrompt)
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			break
		}

		line := scanner.Text()
		if agent.IsSentinel(line) {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		reply, err := app.Run(line)
		if err != nil {
			var roundErr *agent.RoundError
			if errors.As(err, &roundErr) {
				_, _ = fmt.Fprintln(out, roundErr.Diagnostic())
			} else {
				_, _ = fmt.Fprintf(out, "Error: %v.\n", err)
			}
			continue
		}

		_, _ = fmt.Fprintln(out, reply.Display)
	}

	_, _ = fmt.Fprintln(out, endedMessage)
	loggerpkg.Debug(opts.Verbose, opts.Logger, "repl end", nil)

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
