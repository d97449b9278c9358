package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"roster/internal/log"
	"roster/internal/pubsub"
	"roster/internal/roster"
	"roster/internal/session"
	"roster/internal/store"
)

// AgentEventKind classifies host events bridged into the update loop.
type AgentEventKind int

const (
	EventOutput AgentEventKind = iota
	EventError
	EventComplete
)

// AgentEvent is the payload carried from session callbacks to the UI.
type AgentEvent struct {
	AgentID string
	Kind    AgentEventKind
	Line    string
	Success bool
}

// Services owns the side-effectful collaborators shared by the gate and the
// update loop: the session manager, the message store, and the event bridge.
// It implements composer.MentionDispatcher and composer.MessageSender.
type Services struct {
	manager   *session.Manager
	store     *store.Store
	team      *roster.Roster
	broker    *pubsub.Broker[AgentEvent]
	workDir   string
	skipPerms bool

	mu     sync.Mutex
	active roster.Member
	wired  map[string]bool // agents whose session callbacks are registered
}

// NewServices wires the shared collaborators. store may be nil when history
// persistence is disabled. skipPerms launches every run without permission
// prompts.
func NewServices(manager *session.Manager, st *store.Store, team *roster.Roster, workDir string, skipPerms bool) *Services {
	return &Services{
		manager:   manager,
		store:     st,
		team:      team,
		broker:    pubsub.NewBroker[AgentEvent](),
		workDir:   workDir,
		skipPerms: skipPerms,
		wired:     make(map[string]bool),
	}
}

// Broker exposes the event bridge for the update loop's listener.
func (s *Services) Broker() *pubsub.Broker[AgentEvent] { return s.broker }

// Active returns the member the composer currently talks to.
func (s *Services) Active() roster.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActive switches the conversation target.
func (s *Services) SetActive(member roster.Member) {
	s.mu.Lock()
	s.active = member
	s.mu.Unlock()
}

// Send implements composer.MessageSender: it ensures the active agent's run
// is live, persists the user message, and forwards the text.
func (s *Services) Send(ctx context.Context, text, modelID string) error {
	member := s.Active()
	if member.ID == "" {
		return fmt.Errorf("no active agent")
	}

	sess := s.open(member)
	if !sess.Running() {
		if err := sess.Start(ctx, modelID); err != nil {
			return err
		}
	}
	if err := sess.Send(ctx, text); err != nil {
		return err
	}

	s.saveMessage(member.ID, store.RoleUser, text)
	return nil
}

// DispatchMention implements composer.MentionDispatcher: a bare "@name"
// message switches the conversation to that member and ensures their run is
// live.
func (s *Services) DispatchMention(ctx context.Context, raw string) error {
	member, ok := s.MemberForMention(raw)
	if !ok {
		return fmt.Errorf("unknown agent mention %q", raw)
	}

	s.SetActive(member)
	sess := s.open(member)
	if sess.Running() {
		return nil
	}
	return sess.Start(ctx, "")
}

// MemberForMention resolves "@name" against member names and nicknames.
func (s *Services) MemberForMention(raw string) (roster.Member, bool) {
	name := strings.TrimPrefix(strings.TrimSpace(raw), "@")
	for _, m := range s.team.Members() {
		if m.Name == name || (m.Nickname != "" && m.Nickname == name) {
			return m, true
		}
	}
	return roster.Member{}, false
}

// Session returns the live session for a member, if one was opened.
func (s *Services) Session(agentID string) (*session.Session, bool) {
	return s.manager.Get(agentID)
}

// open returns the member's session, creating it and wiring its callbacks
// into the broker on first use. The target carries the member's default
// model; per-run overrides are passed to Start instead.
func (s *Services) open(member roster.Member) *session.Session {
	sess := s.manager.Open(session.Target{
		AgentID:         member.ID,
		AgentName:       member.Name,
		WorkDir:         s.workDir,
		Model:           member.Model,
		SystemPrompt:    member.SystemPrompt,
		DefaultTask:     member.DefaultTask,
		SkipPermissions: s.skipPerms,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wired[member.ID] {
		return sess
	}
	s.wired[member.ID] = true

	id := member.ID
	sess.OnOutput(func(line string) {
		s.broker.Publish(pubsub.UpdatedEvent, AgentEvent{AgentID: id, Kind: EventOutput, Line: line})
	})
	sess.OnError(func(line string) {
		s.broker.Publish(pubsub.UpdatedEvent, AgentEvent{AgentID: id, Kind: EventError, Line: line})
	})
	sess.OnComplete(func(success bool) {
		s.broker.Publish(pubsub.UpdatedEvent, AgentEvent{AgentID: id, Kind: EventComplete, Success: success})
	})
	return sess
}

func (s *Services) saveMessage(agentID string, role store.Role, content string) {
	if s.store == nil {
		return
	}
	if _, err := s.store.SaveMessage(store.Message{
		AgentID: agentID,
		Role:    role,
		Content: content,
	}); err != nil {
		log.Warn(log.CatStore, "failed to persist message", "agent", agentID, "error", err)
	}
}

// SaveAgentMessage persists an agent reply; called from the update loop.
func (s *Services) SaveAgentMessage(agentID, content string) {
	s.saveMessage(agentID, store.RoleAgent, content)
}

// History loads the persisted transcript for an agent.
func (s *Services) History(agentID string, limit int) []store.Message {
	if s.store == nil {
		return nil
	}
	msgs, err := s.store.MessagesForAgent(agentID, limit)
	if err != nil {
		log.Warn(log.CatStore, "failed to load history", "agent", agentID, "error", err)
		return nil
	}
	return msgs
}

// ClearHistory deletes the persisted transcript for an agent.
func (s *Services) ClearHistory(agentID string) {
	if s.store == nil {
		return
	}
	if _, err := s.store.DeleteForAgent(agentID); err != nil {
		log.Warn(log.CatStore, "failed to clear history", "agent", agentID, "error", err)
	}
}

// Shutdown tears down every session and the event bridge.
func (s *Services) Shutdown() {
	s.manager.CloseAll()
	s.broker.Close()
}
