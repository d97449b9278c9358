// Package session manages one agent conversation's process lifecycle:
// start/send/kill/status against the process host, output/error/completion
// fanout to registered callbacks, and leak-free teardown.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"roster/internal/agenthost"
	"roster/internal/log"
	"roster/internal/pubsub"
	"roster/internal/tracing"
)

var (
	// ErrAlreadyRunning is returned by Start when a run is live or a
	// start is already in flight. Kill first, then retry.
	ErrAlreadyRunning = errors.New("session: agent already running")
	// ErrNotRunning is returned by Send against an idle session.
	ErrNotRunning = errors.New("session: agent not running")
)

var tracer = otel.Tracer("roster/session")

// Target identifies the agent a session talks to.
type Target struct {
	AgentID         string
	AgentName       string
	WorkDir         string
	Model           string // the agent's default model
	SystemPrompt    string
	DefaultTask     string
	SkipPermissions bool
}

// Session is the lifecycle manager for one conversation target.
// States: idle (no token) -> starting -> running (token held, three host
// subscriptions live) -> idle. The run token is set by exactly one
// successful Start and cleared by exactly one of completion, Kill, Destroy.
type Session struct {
	host   agenthost.Host
	target Target

	mu       sync.Mutex
	starting bool
	token    agenthost.RunToken // empty when idle
	subs     []agenthost.Subscription

	output   *pubsub.Observers[string]
	errs     *pubsub.Observers[string]
	complete *pubsub.Observers[bool]
}

// New creates an idle session for the target.
func New(host agenthost.Host, target Target) *Session {
	return &Session{
		host:     host,
		target:   target,
		output:   pubsub.NewObservers[string](),
		errs:     pubsub.NewObservers[string](),
		complete: pubsub.NewObservers[bool](),
	}
}

// Target returns the session's conversation target.
func (s *Session) Target() Target { return s.target }

// Running reports whether a run token is currently held.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// Start launches the agent run and registers the output, error, and
// completion subscriptions. A non-empty model overrides the target's
// default for this run only. A concurrent Start is rejected by state check
// before the host call, never by holding the lock across it.
func (s *Session) Start(ctx context.Context, model string) error {
	if model == "" {
		model = s.target.Model
	}
	ctx, span := tracer.Start(ctx, tracing.SpanSessionStart, trace.WithAttributes(
		tracing.AttrAgentID.String(s.target.AgentID),
		tracing.AttrModel.String(model),
	))
	defer span.End()

	s.mu.Lock()
	if s.starting || s.token != "" {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.starting = true
	s.mu.Unlock()

	token, err := s.host.Start(ctx, agenthost.StartSpec{
		AgentID:         s.target.AgentID,
		AgentName:       s.target.AgentName,
		WorkDir:         s.target.WorkDir,
		Model:           model,
		SystemPrompt:    s.target.SystemPrompt,
		DefaultTask:     s.target.DefaultTask,
		SkipPermissions: s.target.SkipPermissions,
	})
	if err != nil {
		s.mu.Lock()
		s.starting = false
		s.mu.Unlock()
		return fmt.Errorf("failed to start agent %s: %w", s.target.AgentID, err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	subs, err := s.subscribe(token)
	if err != nil {
		// Run is live but unobservable; stop it and report the failure.
		_ = s.host.Stop(token)
		s.mu.Lock()
		s.token = ""
		s.starting = false
		s.mu.Unlock()
		return fmt.Errorf("failed to subscribe to run %s: %w", token, err)
	}

	s.mu.Lock()
	if s.token != token {
		// Completion fired between subscribing and bookkeeping.
		s.starting = false
		s.mu.Unlock()
		for _, sub := range subs {
			sub.Cancel()
		}
		return nil
	}
	s.subs = subs
	s.starting = false
	s.mu.Unlock()

	span.SetAttributes(tracing.AttrRunID.String(string(token)))
	log.Info(log.CatSession, "session started",
		"agent", s.target.AgentID, "token", token)
	return nil
}

// subscribe registers the three per-run subscriptions with the host.
func (s *Session) subscribe(token agenthost.RunToken) ([]agenthost.Subscription, error) {
	outSub, err := s.host.SubscribeOutput(token, func(line string) {
		s.output.Notify(line)
	})
	if err != nil {
		return nil, err
	}
	errSub, err := s.host.SubscribeError(token, func(line string) {
		s.errs.Notify(line)
	})
	if err != nil {
		outSub.Cancel()
		return nil, err
	}
	compSub, err := s.host.SubscribeComplete(token, func(success bool) {
		s.handleComplete(token, success)
	})
	if err != nil {
		outSub.Cancel()
		errSub.Cancel()
		return nil, err
	}
	return []agenthost.Subscription{outSub, errSub, compSub}, nil
}

// handleComplete is the self-closing transition: teardown the subscriptions,
// reset to idle, then notify completion observers. Only the completion of
// the current run counts; a late event from a killed run is ignored.
func (s *Session) handleComplete(token agenthost.RunToken, success bool) {
	s.mu.Lock()
	if s.token != token {
		s.mu.Unlock()
		return
	}
	subs := s.subs
	s.subs = nil
	s.token = ""
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}

	log.Info(log.CatSession, "agent run completed",
		"agent", s.target.AgentID, "token", token, "success", success)
	s.complete.Notify(success)
}

// Send forwards message content to the running agent.
func (s *Session) Send(ctx context.Context, content string) error {
	_, span := tracer.Start(ctx, tracing.SpanSessionSend, trace.WithAttributes(
		tracing.AttrAgentID.String(s.target.AgentID),
	))
	defer span.End()

	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return ErrNotRunning
	}

	if err := s.host.Send(token, content); err != nil {
		return fmt.Errorf("failed to send to agent %s: %w", s.target.AgentID, err)
	}
	return nil
}

// Kill requests termination of the current run. Idle sessions report false
// without error, so repeated kills are a clean no-op. Local bookkeeping is
// cleared before the host call, so it is gone even when the host reports
// nothing was stopped.
func (s *Session) Kill(ctx context.Context) bool {
	_, span := tracer.Start(ctx, tracing.SpanSessionKill, trace.WithAttributes(
		tracing.AttrAgentID.String(s.target.AgentID),
	))
	defer span.End()

	s.mu.Lock()
	token := s.token
	subs := s.subs
	s.token = ""
	s.subs = nil
	s.starting = false
	s.mu.Unlock()

	if token == "" {
		return false
	}
	for _, sub := range subs {
		sub.Cancel()
	}

	stopped := s.host.Stop(token)
	log.Info(log.CatSession, "session killed",
		"agent", s.target.AgentID, "token", token, "stopped", stopped)
	return stopped
}

// Status queries the host for the current run's status. Idle sessions and
// host lookup misses both report no status; status is advisory and never
// surfaces an error.
func (s *Session) Status() (agenthost.RunStatus, bool) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return "", false
	}
	return s.host.Status(token)
}

// Destroy disposes the session: best-effort kill with errors logged only,
// then unconditional teardown of subscriptions and every registered
// callback. After Destroy nothing registered on this session fires again.
func (s *Session) Destroy() {
	s.mu.Lock()
	token := s.token
	subs := s.subs
	s.token = ""
	s.subs = nil
	s.starting = false
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	if token != "" {
		stopped := s.host.Stop(token)
		if !stopped {
			log.Warn(log.CatSession, "destroy found no live run to stop",
				"agent", s.target.AgentID, "token", token)
		}
	}

	s.output.Clear()
	s.errs.Clear()
	s.complete.Clear()
	log.Debug(log.CatSession, "session destroyed", "agent", s.target.AgentID)
}

// OnOutput registers an output-line callback, invoked in registration order.
func (s *Session) OnOutput(fn func(line string)) pubsub.Handle {
	return s.output.Add(fn)
}

// OnError registers an error-line callback.
func (s *Session) OnError(fn func(line string)) pubsub.Handle {
	return s.errs.Add(fn)
}

// OnComplete registers a completion callback.
func (s *Session) OnComplete(fn func(success bool)) pubsub.Handle {
	return s.complete.Add(fn)
}

// RemoveOutput unregisters an output callback. Unknown handles are a no-op.
func (s *Session) RemoveOutput(h pubsub.Handle) bool { return s.output.Remove(h) }

// RemoveError unregisters an error callback.
func (s *Session) RemoveError(h pubsub.Handle) bool { return s.errs.Remove(h) }

// RemoveComplete unregisters a completion callback.
func (s *Session) RemoveComplete(h pubsub.Handle) bool { return s.complete.Remove(h) }

// subscriptionCount reports live host subscriptions plus registered
// callbacks, for teardown verification.
func (s *Session) subscriptionCount() int {
	s.mu.Lock()
	n := len(s.subs)
	s.mu.Unlock()
	return n + s.output.Len() + s.errs.Len() + s.complete.Len()
}
