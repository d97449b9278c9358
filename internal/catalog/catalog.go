// Package catalog holds the fixed lookup tables referenced by id throughout
// the app: reasoning depth modes, selectable models, and member icon names.
// All tables are process-wide immutable configuration loaded once.
package catalog

import "fmt"

// DepthMode is a reasoning-depth selection appended to outgoing messages.
type DepthMode struct {
	ID     string // Stable identifier, e.g. "think_hard"
	Label  string // Display label for the selector
	Phrase string // Suffix phrase signaled to the agent; empty for the default
}

// depthModes is ordered from shallowest to deepest.
var depthModes = []DepthMode{
	{ID: "auto", Label: "Auto", Phrase: ""},
	{ID: "think", Label: "Think", Phrase: "think"},
	{ID: "think_hard", Label: "Think Hard", Phrase: "think hard"},
	{ID: "think_harder", Label: "Think Harder", Phrase: "think harder"},
	{ID: "ultrathink", Label: "Ultrathink", Phrase: "ultrathink"},
}

// DefaultDepthMode is the depth selection that adds no phrase.
const DefaultDepthMode = "auto"

// DepthModes returns the ordered depth mode table.
func DepthModes() []DepthMode {
	out := make([]DepthMode, len(depthModes))
	copy(out, depthModes)
	return out
}

// DepthModeByID looks up a depth mode by id.
func DepthModeByID(id string) (DepthMode, bool) {
	for _, m := range depthModes {
		if m.ID == id {
			return m, true
		}
	}
	return DepthMode{}, false
}

// IsDefaultDepth reports whether id selects the default (phrase-free) depth.
func IsDefaultDepth(id string) bool {
	return id == "" || id == DefaultDepthMode
}

// ApplyDepth appends the reasoning-depth phrase to trimmed message text.
// The default depth returns the text unchanged.
func ApplyDepth(text, depthID string) string {
	if IsDefaultDepth(depthID) {
		return text
	}
	mode, ok := DepthModeByID(depthID)
	if !ok || mode.Phrase == "" {
		return text
	}
	return fmt.Sprintf("%s.\n\n%s.", text, mode.Phrase)
}

// Model is a selectable agent model.
type Model struct {
	ID    string // Identifier passed through to the process host
	Label string // Display label for the selector
}

var models = []Model{
	{ID: "sonnet", Label: "Sonnet"},
	{ID: "opus", Label: "Opus"},
	{ID: "haiku", Label: "Haiku"},
}

// Models returns the ordered model table.
func Models() []Model {
	out := make([]Model, len(models))
	copy(out, models)
	return out
}

// ModelByID looks up a model by id.
func ModelByID(id string) (Model, bool) {
	for _, m := range models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// Command is a slash command offered by the composer's command picker.
type Command struct {
	Name        string // Typed after the slash, e.g. "clear"
	Description string // One-line description for the picker
	AcceptsArgs bool   // Whether trailing text after the name is meaningful
}

var commands = []Command{
	{Name: "clear", Description: "Clear the conversation transcript"},
	{Name: "depth", Description: "Set the reasoning depth", AcceptsArgs: true},
	{Name: "help", Description: "List available commands"},
	{Name: "kill", Description: "Stop the running agent"},
	{Name: "model", Description: "Override the agent model", AcceptsArgs: true},
	{Name: "status", Description: "Show the agent run status"},
}

// Commands returns the ordered command table.
func Commands() []Command {
	out := make([]Command, len(commands))
	copy(out, commands)
	return out
}

// CommandByName looks up a command by name.
func CommandByName(name string) (Command, bool) {
	for _, c := range commands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// MemberIcons is the fixed set of icon names assignable to team members.
// Referenced by name from the roster file; rendering is up to the UI.
var MemberIcons = []string{
	"bot", "rocket", "wrench", "book", "flask",
	"shield", "compass", "bolt", "leaf", "gem",
}

// ValidMemberIcon reports whether name is in the icon set.
func ValidMemberIcon(name string) bool {
	for _, n := range MemberIcons {
		if n == name {
			return true
		}
	}
	return false
}
