// Package composer implements the composition core of the chat input:
// the edit buffer, the trigger/query picker state machine, selection
// resolution, attachment extraction, and the submission gate.
package composer

import "unicode"

// EditKind identifies a single buffer mutation.
type EditKind int

const (
	// EditInsert inserts runes at the cursor.
	EditInsert EditKind = iota
	// EditBackspace deletes the rune before the cursor.
	EditBackspace
	// EditDeleteForward deletes the rune at the cursor.
	EditDeleteForward
	// EditSetCursor relocates the cursor without changing text.
	EditSetCursor
	// EditCompositionStart marks the beginning of IME composition.
	EditCompositionStart
	// EditCompositionEnd marks the end of IME composition.
	EditCompositionEnd
	// EditClear empties the buffer.
	EditClear
)

// Edit is one atomic buffer mutation. Exactly one edit is applied per
// keystroke, and each is fully processed before the next.
type Edit struct {
	Kind   EditKind
	Runes  []rune // EditInsert payload
	Cursor int    // EditSetCursor target (rune offset)
}

// InsertRune builds an insert edit for a single typed rune.
func InsertRune(r rune) Edit {
	return Edit{Kind: EditInsert, Runes: []rune{r}}
}

// InsertText builds an insert edit for pasted or programmatic text.
func InsertText(s string) Edit {
	return Edit{Kind: EditInsert, Runes: []rune(s)}
}

// Buffer is the composition buffer: full text, cursor offset (in runes),
// and the IME composing flag. Value semantics; Apply returns the new buffer.
type Buffer struct {
	text   []rune
	cursor int

	composing    bool
	justComposed bool // set for the one edit tick following composition end
}

// NewBuffer creates a buffer with the given text and the cursor at its end.
func NewBuffer(text string) Buffer {
	runes := []rune(text)
	return Buffer{text: runes, cursor: len(runes)}
}

// Text returns the full buffer text.
func (b Buffer) Text() string { return string(b.text) }

// Cursor returns the cursor rune offset.
func (b Buffer) Cursor() int { return b.cursor }

// Len returns the buffer length in runes.
func (b Buffer) Len() int { return len(b.text) }

// Composing reports whether IME composition is active.
func (b Buffer) Composing() bool { return b.composing }

// JustComposed reports whether the previous edit ended IME composition.
// Submission is suppressed on this tick as well.
func (b Buffer) JustComposed() bool { return b.justComposed }

// RuneAt returns the rune at offset, or 0 if out of range.
func (b Buffer) RuneAt(offset int) rune {
	if offset < 0 || offset >= len(b.text) {
		return 0
	}
	return b.text[offset]
}

// Slice returns the text between two rune offsets, clamped to bounds.
func (b Buffer) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(b.text) {
		end = len(b.text)
	}
	if start >= end {
		return ""
	}
	return string(b.text[start:end])
}

// Apply performs one edit and returns the resulting buffer.
// This is the single mutation entry point; all callers route edits here.
func (b Buffer) Apply(e Edit) Buffer {
	b.justComposed = false

	switch e.Kind {
	case EditInsert:
		if len(e.Runes) == 0 {
			return b
		}
		out := make([]rune, 0, len(b.text)+len(e.Runes))
		out = append(out, b.text[:b.cursor]...)
		out = append(out, e.Runes...)
		out = append(out, b.text[b.cursor:]...)
		b.text = out
		b.cursor += len(e.Runes)

	case EditBackspace:
		if b.cursor > 0 {
			out := make([]rune, 0, len(b.text)-1)
			out = append(out, b.text[:b.cursor-1]...)
			out = append(out, b.text[b.cursor:]...)
			b.text = out
			b.cursor--
		}

	case EditDeleteForward:
		if b.cursor < len(b.text) {
			out := make([]rune, 0, len(b.text)-1)
			out = append(out, b.text[:b.cursor]...)
			out = append(out, b.text[b.cursor+1:]...)
			b.text = out
		}

	case EditSetCursor:
		c := e.Cursor
		if c < 0 {
			c = 0
		}
		if c > len(b.text) {
			c = len(b.text)
		}
		b.cursor = c

	case EditCompositionStart:
		b.composing = true

	case EditCompositionEnd:
		b.composing = false
		b.justComposed = true

	case EditClear:
		b.text = nil
		b.cursor = 0
	}

	return b
}

// withText replaces the buffer contents wholesale. Used by resolvers, which
// own the cursor math for their replacement span.
func (b Buffer) withText(text []rune, cursor int) Buffer {
	b.text = text
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(text) {
		cursor = len(text)
	}
	b.cursor = cursor
	return b
}

// isBoundary reports whether r terminates a trigger scan (whitespace/newline).
func isBoundary(r rune) bool {
	return unicode.IsSpace(r)
}
