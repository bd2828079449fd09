package api

import (
	"context"
	"time"

	"github.com/linesmerrill/wepass-api/access"
)

// QueryTimeout is the default timeout for database queries
const QueryTimeout = 10 * time.Second

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}

type agentKey struct{}

// WithAgent stores the authenticated caller on the context
func WithAgent(ctx context.Context, agent access.Agent) context.Context {
	return context.WithValue(ctx, agentKey{}, agent)
}

// AgentFromContext returns the caller stored by the auth middleware
func AgentFromContext(ctx context.Context) (access.Agent, bool) {
	agent, ok := ctx.Value(agentKey{}).(access.Agent)
	return agent, ok
}
