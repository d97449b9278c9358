// Package agenthost manages headless agent subprocesses. A host starts one
// run per agent conversation, identified by an opaque run token, and fans
// out the run's output, error, and completion topics to subscribers.
package agenthost

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrUnknownRun is returned for operations against a token the host
	// is not tracking (never started, or already exited).
	ErrUnknownRun = errors.New("agenthost: unknown run token")
	// ErrHostUnavailable is returned by every operation when no agent
	// binary was found at construction time.
	ErrHostUnavailable = errors.New("agenthost: agent binary unavailable")
)

// RunToken identifies one agent run. Tokens are opaque and unique per start.
type RunToken string

// RunStatus is the externally visible state of a run.
type RunStatus string

// StatusRunning is the only live status; exited runs are forgotten and
// report no status at all.
const StatusRunning RunStatus = "running"

// StartSpec describes one agent run to launch.
type StartSpec struct {
	// AgentID is the roster member id the run acts as.
	AgentID string
	// AgentName is the member's display name, given to the agent binary.
	AgentName string
	// WorkDir is the directory the subprocess runs in.
	WorkDir string
	// Model optionally overrides the agent's default model.
	Model string
	// SystemPrompt optionally seeds the agent's system prompt.
	SystemPrompt string
	// DefaultTask describes the agent's standing task in the agents
	// config. Empty falls back to a name-based description.
	DefaultTask string
	// SkipPermissions launches the agent without permission prompts.
	SkipPermissions bool
}

// Host is the process-host contract. Implementations are safe for
// concurrent use.
type Host interface {
	// Start launches a run and returns its token.
	Start(ctx context.Context, spec StartSpec) (RunToken, error)
	// Send delivers message content to a running agent's stdin.
	Send(token RunToken, content string) error
	// Stop terminates a run. It reports whether a live run was stopped;
	// an unknown token is a clean false, not an error.
	Stop(token RunToken) bool
	// Status returns the run's status, or false for unknown tokens.
	Status(token RunToken) (RunStatus, bool)

	// SubscribeOutput registers a callback for each stdout line.
	SubscribeOutput(token RunToken, fn func(line string)) (Subscription, error)
	// SubscribeError registers a callback for each stderr line.
	SubscribeError(token RunToken, fn func(line string)) (Subscription, error)
	// SubscribeComplete registers a callback fired once when the run
	// exits; success is true only for a clean, unstopped exit.
	SubscribeComplete(token RunToken, fn func(success bool)) (Subscription, error)
}

// Subscription detaches one registered callback. Cancel is idempotent.
type Subscription struct {
	once   *sync.Once
	remove func()
}

// NewSubscription wraps a removal function in an idempotent Subscription.
// Exposed so alternative Host implementations can build subscriptions.
func NewSubscription(remove func()) Subscription {
	return Subscription{once: &sync.Once{}, remove: remove}
}

// Cancel removes the callback. Safe to call multiple times and on the
// zero value.
func (s Subscription) Cancel() {
	if s.once == nil || s.remove == nil {
		return
	}
	s.once.Do(s.remove)
}
