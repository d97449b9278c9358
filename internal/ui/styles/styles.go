// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#CCCCCC"} // Main text
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#BBBBBB"} // Agent names, metadata
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"} // Hints, timestamps, footers
	TextPlaceholderColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#777777"} // Composer placeholder

	// Borders
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"} // Unfocused borders
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#3498DB"} // Focused composer border

	// Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Selection indicator color (used for ">" prefix in picker lists)
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}

	// Overlays
	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#3498DB"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#696969"}

	// Chat roles
	RoleUserColor   = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#89B4FA"}
	RoleAgentColor  = lipgloss.AdaptiveColor{Light: "#179299", Dark: "#94E2D5"}
	RoleSystemColor = lipgloss.AdaptiveColor{Light: "#9CA0B0", Dark: "#6C7086"}

	// Selection indicator style (">" prefix in picker lists)
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	// Composer input frame
	ComposerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderDefaultColor).
			Padding(0, 1)

	ComposerFocusedStyle = ComposerStyle.
				BorderForeground(BorderFocusColor)

	// Attachment chips shown under the composer
	AttachmentStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			PaddingLeft(1)

	// Muted footer help line
	HelpStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	// Error line rendered in the transcript
	ErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)

	// Role labels in the transcript
	UserLabelStyle   = lipgloss.NewStyle().Bold(true).Foreground(RoleUserColor)
	AgentLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(RoleAgentColor)
	SystemLabelStyle = lipgloss.NewStyle().Foreground(RoleSystemColor)

	// Timestamp suffix on transcript messages
	TimestampStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
)
