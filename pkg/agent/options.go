package agent

import (
	loggerpkg "github.com/minhyannv/weather-chat-go/pkg/logger"
	"github.com/minhyannv/weather-chat-go/pkg/tools"
)

// AgentOption configures optional runtime dependencies for AgentLoop.
type AgentOption func(*agentDeps)

type agentDeps struct {
	logger   loggerpkg.Logger
	resolver tools.Resolver
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) AgentOption {
	return func(d *agentDeps) {
		d.logger = l
	}
}

// WithResolver replaces the weatherapi.com client built from config.
func WithResolver(r tools.Resolver) AgentOption {
	return func(d *agentDeps) {
		d.resolver = r
	}
}
