// Package app contains the root application model: the transcript viewport,
// the composer, agent switching, and the bridge from host events into the
// update loop.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"roster/internal/agenthost"
	"roster/internal/catalog"
	"roster/internal/composer"
	"roster/internal/config"
	"roster/internal/fileindex"
	"roster/internal/keys"
	"roster/internal/log"
	"roster/internal/pubsub"
	"roster/internal/roster"
	"roster/internal/store"
	"roster/internal/ui/composerview"
	"roster/internal/ui/styles"
	"roster/internal/ui/transcript"
)

// historyLimit bounds how much persisted transcript is loaded per agent.
const historyLimit = 200

// Model is the root application state.
type Model struct {
	cfg        config.Config
	configPath string
	team       *roster.Roster
	services   *Services
	files      *fileindex.Index

	keys     keys.KeyMap
	composer composerview.Model
	viewport viewport.Model
	renderer *transcript.Renderer
	entries  []transcript.Message

	listener *pubsub.ContinuousListener[AgentEvent]
	ctx      context.Context
	cancel   context.CancelFunc

	depthID string
	modelID string

	width   int
	height  int
	running bool
	ready   bool
}

// New creates the root model. configPath may be empty when no config file
// exists; selector changes are then not persisted.
func New(cfg config.Config, configPath string, team *roster.Roster, services *Services, files *fileindex.Index) Model {
	ctx, cancel := context.WithCancel(context.Background())

	gate := composer.NewGate(services, services)
	comp := composerview.New(composerview.Config{
		Roster:        team,
		Files:         files,
		Gate:          gate,
		AgentContext:  "team", // one roster per run; any non-empty scope enables mentions
		BasePath:      cfg.BasePath,
		DepthID:       cfg.Composer.Depth,
		ModelID:       cfg.Composer.Model,
		ExpandedLines: cfg.UI.ExpandedLines,
	}).Focus()

	m := Model{
		cfg:        cfg,
		configPath: configPath,
		team:       team,
		services:   services,
		files:      files,
		keys:       keys.DefaultKeyMap(),
		composer:   comp,
		viewport:   viewport.New(0, 0),
		listener:   pubsub.NewContinuousListener(ctx, services.Broker()),
		ctx:        ctx,
		cancel:     cancel,
		depthID:    cfg.Composer.Depth,
		modelID:    cfg.Composer.Model,
	}

	if members := team.Members(); len(members) > 0 {
		services.SetActive(members[0])
		m.entries = transcript.FromStore(
			services.History(members[0].ID, historyLimit), members[0].Name)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.listener.Listen()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case pubsub.Event[AgentEvent]:
		next := m.handleAgentEvent(msg.Payload)
		return next, next.listener.Listen()

	case composerview.SubmittedMsg:
		return m.handleSubmitted(msg), nil

	case composerview.CommandMsg:
		return m.handleCommand(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.NextAgent):
		return m.nextAgent(), nil

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		// The composer consumes these only while its picker is open.
		if !m.composer.PickerOpen() {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	m.services.Shutdown()
	if m.files != nil {
		m.files.Stop()
	}
	return m, tea.Quit
}

// nextAgent cycles the conversation target through the roster.
func (m Model) nextAgent() Model {
	members := m.team.Members()
	if len(members) < 2 {
		return m
	}
	active := m.services.Active()
	for i, member := range members {
		if member.ID == active.ID {
			return m.switchAgent(members[(i+1)%len(members)])
		}
	}
	return m.switchAgent(members[0])
}

func (m Model) switchAgent(member roster.Member) Model {
	m.services.SetActive(member)
	m.entries = transcript.FromStore(
		m.services.History(member.ID, historyLimit), member.Name)
	if sess, ok := m.services.Session(member.ID); ok {
		m.running = sess.Running()
	} else {
		m.running = false
	}
	return m.rerender()
}

// handleAgentEvent folds one bridged host event into the transcript. Events
// for inactive agents are persisted but not displayed.
func (m Model) handleAgentEvent(ev AgentEvent) Model {
	active := m.services.Active()

	switch ev.Kind {
	case EventOutput:
		parsed, ok := agenthost.ParseStreamLine(ev.Line)
		if !ok {
			return m
		}
		switch parsed.Type {
		case agenthost.StreamAssistant:
			m.services.SaveAgentMessage(ev.AgentID, parsed.Text)
			if ev.AgentID == active.ID {
				m.entries = append(m.entries, transcript.Message{
					Role:      store.RoleAgent,
					AgentName: active.Name,
					Content:   parsed.Text,
					Timestamp: time.Now(),
				})
				return m.rerender()
			}
		case agenthost.StreamResult:
			if parsed.IsError && ev.AgentID == active.ID {
				return m.systemNotice(fmt.Sprintf("run failed: %s", parsed.Text))
			}
		}

	case EventError:
		log.Warn(log.CatSession, "agent stderr", "agent", ev.AgentID, "line", ev.Line)

	case EventComplete:
		if ev.AgentID == active.ID {
			m.running = false
			if ev.Success {
				return m.systemNotice("agent run completed")
			}
			return m.systemNotice("agent run ended with an error")
		}
	}
	return m
}

func (m Model) handleSubmitted(msg composerview.SubmittedMsg) Model {
	switch msg.Outcome {
	case composer.OutcomeDispatched:
		if member, ok := m.services.MemberForMention(msg.Text); ok {
			m = m.switchAgent(member)
			m.running = true
			return m.systemNotice("now talking to " + member.DisplayName())
		}
		return m

	case composer.OutcomeSent:
		if msg.Err != nil {
			return m.systemNotice("send failed: " + msg.Err.Error())
		}
		m.running = true
		m.entries = append(m.entries, transcript.Message{
			Role:      store.RoleUser,
			Content:   msg.Text,
			Timestamp: time.Now(),
		})
		return m.rerender()
	}
	return m
}

func (m Model) handleCommand(msg composerview.CommandMsg) Model {
	active := m.services.Active()

	switch msg.Command.Name {
	case "clear":
		m.services.ClearHistory(active.ID)
		m.entries = nil
		return m.rerender()

	case "kill":
		if sess, ok := m.services.Session(active.ID); ok && sess.Kill(m.ctx) {
			m.running = false
			return m.systemNotice("agent run killed")
		}
		return m.systemNotice("nothing to kill")

	case "status":
		if sess, ok := m.services.Session(active.ID); ok {
			if status, running := sess.Status(); running {
				return m.systemNotice("status: " + string(status))
			}
		}
		return m.systemNotice("status: idle")

	case "model":
		if _, ok := catalog.ModelByID(msg.Args); !ok {
			return m.systemNotice("unknown model: " + msg.Args)
		}
		m.modelID = msg.Args
		m.composer = m.composer.SetSelection(m.depthID, m.modelID)
		m.persistSelection()
		return m.systemNotice("model set to " + msg.Args)

	case "depth":
		if _, ok := catalog.DepthModeByID(msg.Args); !ok {
			return m.systemNotice("unknown depth: " + msg.Args)
		}
		m.depthID = msg.Args
		m.composer = m.composer.SetSelection(m.depthID, m.modelID)
		m.persistSelection()
		return m.systemNotice("depth set to " + msg.Args)

	case "help":
		var lines []string
		for _, c := range catalog.Commands() {
			lines = append(lines, fmt.Sprintf("/%-8s %s", c.Name, c.Description))
		}
		return m.systemNotice(strings.Join(lines, "\n"))
	}
	return m
}

func (m *Model) persistSelection() {
	if m.configPath == "" {
		return
	}
	err := config.SaveComposerDefaults(m.configPath, config.ComposerConfig{
		Depth: m.depthID,
		Model: m.modelID,
	})
	if err != nil {
		log.Warn(log.CatConfig, "failed to persist composer defaults", "error", err)
	}
}

func (m Model) systemNotice(text string) Model {
	m.entries = append(m.entries, transcript.Message{
		Role:      store.RoleSystem,
		Content:   text,
		Timestamp: time.Now(),
	})
	return m.rerender()
}

func (m Model) resize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.composer = m.composer.SetWidth(msg.Width)

	renderer, err := transcript.NewRenderer(
		msg.Width-2, m.cfg.UI.MarkdownStyle, m.cfg.UI.ShowTimestamps)
	if err == nil {
		m.renderer = renderer
	}

	m.viewport = viewport.New(msg.Width, m.transcriptHeight())
	m.ready = true
	return m.rerender()
}

// transcriptHeight is what's left after the header, composer, and footer.
func (m Model) transcriptHeight() int {
	composerHeight := lipgloss.Height(m.composer.View())
	h := m.height - composerHeight - 2
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) rerender() Model {
	if m.renderer == nil {
		return m
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.Height = m.transcriptHeight()
	m.viewport.SetContent(m.renderer.Render(m.entries))
	if atBottom {
		m.viewport.GotoBottom()
	}
	return m
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.viewport.View(),
		m.composer.View(),
		m.footerView(),
	))
}

func (m Model) headerView() string {
	active := m.services.Active()
	name := active.DisplayName()
	if name == "" {
		name = "no agent"
	}
	state := "idle"
	if m.running {
		state = "running"
	}
	header := styles.AgentLabelStyle.Render(name) +
		styles.HelpStyle.Render(fmt.Sprintf("  %s · %s · depth %s",
			state, m.modelLabel(), m.depthLabel()))
	return header
}

func (m Model) modelLabel() string {
	if mdl, ok := catalog.ModelByID(m.modelID); ok {
		return mdl.Label
	}
	return "default model"
}

func (m Model) depthLabel() string {
	if mode, ok := catalog.DepthModeByID(m.depthID); ok {
		return mode.Label
	}
	return "auto"
}

func (m Model) footerView() string {
	parts := []string{"@ mention", "/ command"}
	for _, b := range m.keys.FooterHelp() {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return styles.HelpStyle.Render(strings.Join(parts, " · "))
}
