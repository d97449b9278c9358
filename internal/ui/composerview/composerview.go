// Package composerview is the Bubble Tea model around the composition core:
// it routes keystrokes through the buffer's single edit entry point, tracks
// the picker state machine, feeds the candidate list, applies resolvers on
// selection, and submits through the gate.
package composerview

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"roster/internal/catalog"
	"roster/internal/composer"
	"roster/internal/fileindex"
	"roster/internal/roster"
	"roster/internal/ui/picker"
	"roster/internal/ui/styles"
)

// candidate list bounds
const (
	maxFileCandidates = 8
	defaultCollapsed  = 3
	defaultExpanded   = 10
)

// SubmittedMsg reports what the gate did with an Enter press. Err is set
// only on the normal-send path; dispatch failures are policy-logged and the
// message counts as sent.
type SubmittedMsg struct {
	Text    string // Trimmed text as it left the composer
	Outcome composer.Outcome
	Err     error
}

// CommandMsg is emitted when a submitted buffer is a known slash command.
// The app model decides what the command does.
type CommandMsg struct {
	Command catalog.Command
	Args    string
}

// Config wires the composer's collaborators.
type Config struct {
	Roster *roster.Roster
	Files  *fileindex.Index // nil disables the file-reference picker
	Gate   composer.Gate

	// AgentContext enables the mention picker; BasePath enables the
	// file-reference picker and anchors attachment resolution.
	AgentContext string
	BasePath     string

	// DepthID and ModelID are the current selector choices.
	DepthID string
	ModelID string

	// ExpandedLines is the composer height when expanded. Zero uses the
	// default.
	ExpandedLines int
}

// Model holds the composer state.
type Model struct {
	cfg       Config
	buffer    composer.Buffer
	tracker   composer.Tracker
	state     composer.State
	pick      picker.Model
	extractor composer.Extractor

	focused  bool
	disabled bool
	expanded bool
	width    int
}

// New creates a composer view with an empty buffer.
func New(cfg Config) Model {
	if cfg.ExpandedLines <= 0 {
		cfg.ExpandedLines = defaultExpanded
	}
	return Model{
		cfg:    cfg,
		buffer: composer.NewBuffer(""),
		tracker: composer.NewTracker(composer.Context{
			AgentContext: cfg.AgentContext,
			BasePath:     cfg.BasePath,
		}),
		state:     composer.Closed,
		pick:      picker.New(""),
		extractor: composer.NewExtractor(cfg.BasePath),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Text returns the raw buffer text.
func (m Model) Text() string { return m.buffer.Text() }

// Buffer returns a copy of the composition buffer.
func (m Model) Buffer() composer.Buffer { return m.buffer }

// PickerOpen reports whether a candidate picker is active.
func (m Model) PickerOpen() bool { return m.state.Open() }

// PickerState returns the current picker state.
func (m Model) PickerState() composer.State { return m.state }

// Expanded reports whether the tall composition view is active.
func (m Model) Expanded() bool { return m.expanded }

// Focus gives the composer keyboard focus.
func (m Model) Focus() Model {
	m.focused = true
	return m
}

// Blur removes keyboard focus.
func (m Model) Blur() Model {
	m.focused = false
	return m
}

// Focused reports whether the composer has keyboard focus.
func (m Model) Focused() bool { return m.focused }

// SetDisabled externally disables submission, e.g. while the conversation
// target is being torn down. Editing stays live.
func (m Model) SetDisabled(disabled bool) Model {
	m.disabled = disabled
	return m
}

// SetWidth sets the rendered width.
func (m Model) SetWidth(width int) Model {
	m.width = width
	return m
}

// SetSelection updates the depth and model selector choices.
func (m Model) SetSelection(depthID, modelID string) Model {
	m.cfg.DepthID = depthID
	m.cfg.ModelID = modelID
	return m
}

// CompositionStart reports that IME composition began. Submit is suppressed
// until one edit tick after CompositionEnd.
func (m Model) CompositionStart() Model {
	return m.applyEdit(composer.Edit{Kind: composer.EditCompositionStart})
}

// CompositionEnd reports that IME composition finished.
func (m Model) CompositionEnd() Model {
	return m.applyEdit(composer.Edit{Kind: composer.EditCompositionEnd})
}

// Attachments returns the descriptors currently derivable from the buffer.
func (m Model) Attachments() []composer.Attachment {
	return m.extractor.Extract(m.buffer.Text())
}

// RemoveAttachment deletes the attachment's span text from the buffer.
func (m Model) RemoveAttachment(att composer.Attachment) Model {
	text := m.extractor.Remove(m.buffer.Text(), att)
	return m.applyEdit(composer.Edit{Kind: composer.EditClear}).
		applyEdit(composer.InsertText(text))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.state.Open() {
			var cmd tea.Cmd
			m.pick, cmd = m.pick.Update(msg)
			return m, cmd
		}

	case picker.ChosenMsg:
		return m.choose(msg.Item), nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.state.Open() && m.pick.Len() > 0 {
			item, _ := m.pick.Selected()
			return m.choose(item), nil
		}
		return m.submit()

	case "shift+enter", "alt+enter":
		return m.applyEdit(composer.InsertText("\n")), nil

	case "esc":
		if m.state.Open() {
			return m.closePicker(), nil
		}
		if m.expanded {
			m.expanded = false
		}
		return m, nil

	case "ctrl+e":
		m.expanded = !m.expanded
		return m, nil

	case "up", "ctrl+p":
		if m.state.Open() {
			m.pick = m.pick.MoveUp()
		}
		return m, nil

	case "down", "ctrl+n":
		if m.state.Open() {
			m.pick = m.pick.MoveDown()
		}
		return m, nil

	case "tab":
		if m.state.Open() && m.pick.Len() > 0 {
			item, _ := m.pick.Selected()
			return m.choose(item), nil
		}
		return m, nil

	case "backspace":
		return m.applyEdit(composer.Edit{Kind: composer.EditBackspace}), nil

	case "delete":
		return m.applyEdit(composer.Edit{Kind: composer.EditDeleteForward}), nil

	case "left":
		return m.setCursor(m.buffer.Cursor() - 1), nil

	case "right":
		return m.setCursor(m.buffer.Cursor() + 1), nil

	case "home":
		return m.setCursor(0), nil

	case "end":
		return m.setCursor(m.buffer.Len()), nil

	case "ctrl+u":
		return m.applyEdit(composer.Edit{Kind: composer.EditClear}), nil
	}

	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			return m.applyEdit(composer.InsertRune(msg.Runes[0])), nil
		}
		// Pasted or IME-committed text arrives as one multi-rune edit.
		return m.applyEdit(composer.InsertText(string(msg.Runes))), nil
	case tea.KeySpace:
		return m.applyEdit(composer.InsertRune(' ')), nil
	}
	return m, nil
}

// applyEdit is the single serialization point: one atomic buffer transition
// and one picker transition per keystroke, then a candidate refresh.
func (m Model) applyEdit(e composer.Edit) Model {
	m.buffer = m.buffer.Apply(e)
	m.state = m.tracker.Track(m.state, m.buffer, e)
	return m.refreshCandidates()
}

func (m Model) setCursor(to int) Model {
	return m.applyEdit(composer.Edit{Kind: composer.EditSetCursor, Cursor: to})
}

func (m Model) closePicker() Model {
	m.state = composer.Closed
	m.pick = m.pick.SetItems(nil)
	return m
}

// refreshCandidates rebuilds the picker list for the live query.
func (m Model) refreshCandidates() Model {
	switch m.state.Kind {
	case composer.KindMention:
		members := m.cfg.Roster.Match(m.state.Query)
		items := make([]picker.Item, 0, len(members))
		for _, member := range members {
			item := picker.Item{Label: member.Name, Value: member.ID}
			if member.Nickname != "" {
				item.Detail = "@" + member.Nickname
			}
			items = append(items, item)
		}
		m.pick = picker.New("Agents").SetItems(items).SetBoxWidth(m.pickerWidth())

	case composer.KindFileRef:
		var items []picker.Item
		if m.cfg.Files != nil {
			paths, err := m.cfg.Files.Match(m.state.Query, maxFileCandidates)
			if err == nil {
				for _, p := range paths {
					items = append(items, picker.Item{Label: p, Value: p})
				}
			}
		}
		m.pick = picker.New("Files").SetItems(items).SetBoxWidth(m.pickerWidth())

	case composer.KindCommand:
		var items []picker.Item
		for _, c := range catalog.Commands() {
			if strings.HasPrefix(c.Name, m.state.Query) {
				items = append(items, picker.Item{
					Label:  "/" + c.Name,
					Value:  c.Name,
					Detail: c.Description,
				})
			}
		}
		m.pick = picker.New("Commands").SetItems(items).SetBoxWidth(m.pickerWidth())

	default:
		m.pick = m.pick.SetItems(nil)
	}
	return m
}

// choose applies the matching resolver for the selected candidate.
func (m Model) choose(item picker.Item) Model {
	switch m.state.Kind {
	case composer.KindMention:
		member, ok := m.cfg.Roster.ByID(item.Value)
		if !ok {
			return m.closePicker()
		}
		m.buffer, m.state = composer.ResolveMention(m.buffer, m.state, composer.MentionItem{
			Name:     member.Name,
			Nickname: member.Nickname,
		})

	case composer.KindFileRef:
		abs := item.Value
		if m.cfg.Files != nil {
			abs = m.cfg.Files.Resolve(item.Value)
		}
		m.buffer, m.state = composer.ResolveFileRef(m.buffer, m.state, abs, m.cfg.BasePath)

	case composer.KindCommand:
		cmd, ok := catalog.CommandByName(item.Value)
		if !ok {
			return m.closePicker()
		}
		m.buffer, m.state = composer.ResolveCommand(m.buffer, m.state, composer.CommandItem{
			Name:        cmd.Name,
			Description: cmd.Description,
			AcceptsArgs: cmd.AcceptsArgs,
		})
	}
	m.pick = m.pick.SetItems(nil)
	return m
}

// submit runs the Enter policy: known slash commands are handed to the app,
// everything else goes through the gate.
func (m Model) submit() (Model, tea.Cmd) {
	// Composition suppression applies to commands the same as to sends.
	if m.buffer.Composing() || m.buffer.JustComposed() || m.disabled {
		if m.buffer.JustComposed() {
			// Consume the post-composition tick.
			m.buffer = m.buffer.Apply(composer.Edit{Kind: composer.EditSetCursor, Cursor: m.buffer.Cursor()})
		}
		return m, nil
	}

	trimmed := strings.TrimSpace(m.buffer.Text())
	if name, args, ok := splitCommand(trimmed); ok {
		if cmd, known := catalog.CommandByName(name); known {
			m = m.applyEdit(composer.Edit{Kind: composer.EditClear})
			return m, func() tea.Msg { return CommandMsg{Command: cmd, Args: args} }
		}
	}

	buf, outcome, err := m.cfg.Gate.Submit(context.Background(), composer.SubmitRequest{
		Buffer:   m.buffer,
		Picker:   m.state,
		Disabled: m.disabled,
		DepthID:  m.cfg.DepthID,
		ModelID:  m.cfg.ModelID,
	})
	m.buffer = buf
	if outcome == composer.OutcomeSuppressed && err == nil {
		return m, nil
	}
	m = m.closePicker()
	return m, func() tea.Msg {
		return SubmittedMsg{Text: trimmed, Outcome: outcome, Err: err}
	}
}

// splitCommand parses "/name rest" into its parts.
func splitCommand(trimmed string) (name, args string, ok bool) {
	if !strings.HasPrefix(trimmed, "/") {
		return "", "", false
	}
	body := strings.TrimPrefix(trimmed, "/")
	if body == "" {
		return "", "", false
	}
	name, args, _ = strings.Cut(body, " ")
	return name, strings.TrimSpace(args), true
}

// View renders the picker (when open), the input frame, and the attachment
// chips.
func (m Model) View() string {
	var sections []string

	if m.state.Open() && m.pick.Len() > 0 {
		sections = append(sections, m.pick.View())
	}

	sections = append(sections, m.renderInput())

	if atts := m.Attachments(); len(atts) > 0 {
		var chips []string
		for _, att := range atts {
			chips = append(chips, "⎘ "+att.ResolvedPath)
		}
		sections = append(sections, styles.AttachmentStyle.Render(strings.Join(chips, "  ")))
	}

	return strings.Join(sections, "\n")
}

func (m Model) renderInput() string {
	inner := m.width - 4
	if inner < 10 {
		inner = 10
	}

	var content string
	if m.buffer.Len() == 0 && !m.focused {
		content = lipgloss.NewStyle().
			Foreground(styles.TextPlaceholderColor).
			Render("Message  (@ mention, / command)")
	} else {
		content = m.renderTextWithCursor()
	}

	wrapped := wordwrap.String(content, inner)
	lines := strings.Split(wrapped, "\n")
	visible := defaultCollapsed
	if m.expanded {
		visible = m.cfg.ExpandedLines
	}
	if len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}

	frame := styles.ComposerStyle
	if m.focused {
		frame = styles.ComposerFocusedStyle
	}
	return frame.Width(inner + 2).Render(strings.Join(lines, "\n"))
}

func (m Model) renderTextWithCursor() string {
	text := m.buffer.Text()
	if !m.focused {
		return text
	}
	runes := []rune(text)
	cur := m.buffer.Cursor()
	cursorStyle := lipgloss.NewStyle().Reverse(true)
	if cur >= len(runes) {
		return text + cursorStyle.Render(" ")
	}
	under := string(runes[cur])
	if under == "\n" {
		under = " \n"
	}
	return string(runes[:cur]) + cursorStyle.Render(under) + string(runes[cur+1:])
}

func (m Model) pickerWidth() int {
	if m.width > 12 {
		return m.width - 6
	}
	return 40
}
