package composer

import (
	"path/filepath"
	"strings"

	"roster/internal/log"
)

// MentionItem is a selectable mention target.
type MentionItem struct {
	Name     string // Primary display name
	Nickname string // Preferred over Name when present
}

// canonical returns the mention's canonical text: nickname if present else
// primary name, quoted only when it contains whitespace.
func (m MentionItem) canonical() string {
	name := m.Name
	if m.Nickname != "" {
		name = m.Nickname
	}
	return quoteIfSpaced(name)
}

// CommandItem is a selectable command.
type CommandItem struct {
	Name        string // Fully-qualified form, without the leading slash
	Description string
	// AcceptsArgs marks commands taking free arguments; selection leaves
	// the cursor positioned for argument entry instead of submitting.
	AcceptsArgs bool
}

// ResolveMention replaces the active mention span with the item's canonical
// text and closes the picker.
func ResolveMention(buf Buffer, st State, item MentionItem) (Buffer, State) {
	return resolveSpan(buf, st, KindMention, item.canonical())
}

// ResolveCommand replaces the active command span with the command's
// fully-qualified form and closes the picker.
func ResolveCommand(buf Buffer, st State, item CommandItem) (Buffer, State) {
	return resolveSpan(buf, st, KindCommand, item.Name)
}

// ResolveFileRef replaces the active file-reference span with the selected
// path, relativized against basePath when the absolute path is under it.
func ResolveFileRef(buf Buffer, st State, absPath, basePath string) (Buffer, State) {
	return resolveSpan(buf, st, KindFileRef, quoteIfSpaced(relativize(absPath, basePath)))
}

// resolveSpan performs the shared replacement contract: the span
// [triggerOffset, cursor) becomes trigger + canonical + trailing space, the
// cursor lands after the trailing space, and the picker closes. A trigger
// offset that no longer lines up with the buffer (desynchronization) makes
// the call a logged no-op that still closes the picker; it never panics.
func resolveSpan(buf Buffer, st State, want Kind, canonical string) (Buffer, State) {
	if st.Kind != want {
		log.Warn(log.CatComposer, "resolve against wrong picker kind",
			"want", want, "got", st.Kind)
		return buf, Closed
	}

	off := st.TriggerOffset
	trigger := st.Kind.trigger()
	if off < 0 || off >= buf.Len() || buf.RuneAt(off) != trigger || off >= buf.Cursor() {
		log.Warn(log.CatComposer, "picker desynchronized from buffer, dropping selection",
			"kind", st.Kind, "triggerOffset", off, "cursor", buf.Cursor(), "len", buf.Len())
		return buf, Closed
	}

	runes := []rune(buf.Text())
	repl := []rune(string(trigger) + canonical + " ")

	out := make([]rune, 0, len(runes)-(buf.Cursor()-off)+len(repl))
	out = append(out, runes[:off]...)
	out = append(out, repl...)
	out = append(out, runes[buf.Cursor():]...)

	// Cursor: triggerOffset + trigger + canonical + trailing space.
	cursor := off + 1 + len([]rune(canonical)) + 1

	return buf.withText(out, cursor), Closed
}

// relativize returns path relative to base when base prefixes it,
// otherwise the absolute path unchanged.
func relativize(path, base string) string {
	if base == "" {
		return path
	}
	base = strings.TrimSuffix(base, string(filepath.Separator))
	prefix := base + string(filepath.Separator)
	if strings.HasPrefix(path, prefix) {
		return strings.TrimPrefix(path, prefix)
	}
	return path
}

// quoteIfSpaced wraps text in quotes only when it contains whitespace.
func quoteIfSpaced(text string) string {
	if strings.ContainsFunc(text, isBoundary) {
		return `"` + text + `"`
	}
	return text
}
