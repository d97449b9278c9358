// Package transcript renders the conversation history: user messages, agent
// markdown output, and system notices, wrapped to the viewport width.
package transcript

import (
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"roster/internal/store"
	"roster/internal/ui/styles"
)

// noMarginStyle removes glamour's document margins so agent output lines up
// with the role labels.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Message is one transcript entry.
type Message struct {
	Role      store.Role
	AgentName string // Label for agent messages; falls back to "Agent"
	Content   string
	Timestamp time.Time
}

// FromStore converts persisted messages for rendering.
func FromStore(msgs []store.Message, agentName string) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, Message{
			Role:      m.Role,
			AgentName: agentName,
			Content:   m.Content,
			Timestamp: m.CreatedAt,
		})
	}
	return out
}

// Renderer renders transcript entries at a fixed wrap width.
type Renderer struct {
	markdown       *glamour.TermRenderer
	width          int
	showTimestamps bool
}

// NewRenderer creates a renderer for the given width. markdownStyle is a
// glamour style name ("dark", "light"); empty selects auto detection.
func NewRenderer(width int, markdownStyle string, showTimestamps bool) (*Renderer, error) {
	opts := []glamour.TermRendererOption{
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	}
	if markdownStyle == "" {
		opts = append([]glamour.TermRendererOption{glamour.WithAutoStyle()}, opts...)
	} else {
		opts = append([]glamour.TermRendererOption{glamour.WithStandardStyle(markdownStyle)}, opts...)
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return &Renderer{markdown: r, width: width, showTimestamps: showTimestamps}, nil
}

// Width returns the configured wrap width.
func (r *Renderer) Width() int { return r.width }

// Render renders the full transcript as one string.
func (r *Renderer) Render(msgs []Message) string {
	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.renderMessage(msg))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) renderMessage(msg Message) string {
	label := r.roleLabel(msg)

	var body string
	switch msg.Role {
	case store.RoleAgent:
		// Agent output is markdown.
		rendered, err := r.markdown.Render(msg.Content)
		if err != nil {
			body = wordwrap.String(msg.Content, r.width)
		} else {
			body = strings.TrimRight(rendered, "\n")
		}
	default:
		body = wordwrap.String(msg.Content, r.width)
	}

	return label + "\n" + body + "\n"
}

func (r *Renderer) roleLabel(msg Message) string {
	var label string
	switch msg.Role {
	case store.RoleUser:
		label = styles.UserLabelStyle.Render("You")
	case store.RoleAgent:
		name := msg.AgentName
		if name == "" {
			name = "Agent"
		}
		label = styles.AgentLabelStyle.Render(name)
	default:
		label = styles.SystemLabelStyle.Render("System")
	}

	if r.showTimestamps && !msg.Timestamp.IsZero() {
		ts := msg.Timestamp.Local().Format("15:04")
		pad := r.width - runewidth.StringWidth(ts) - labelWidth(msg)
		if pad < 1 {
			pad = 1
		}
		label += strings.Repeat(" ", pad) + styles.TimestampStyle.Render(ts)
	}
	return label
}

func labelWidth(msg Message) int {
	switch msg.Role {
	case store.RoleUser:
		return runewidth.StringWidth("You")
	case store.RoleAgent:
		name := msg.AgentName
		if name == "" {
			name = "Agent"
		}
		return runewidth.StringWidth(name)
	default:
		return runewidth.StringWidth("System")
	}
}
