package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMention_ReplacesSpanAndCloses(t *testing.T) {
	buf := NewBuffer("hello @J")
	st := State{Kind: KindMention, TriggerOffset: 6, Query: "J"}

	got, next := ResolveMention(buf, st, MentionItem{Name: "James"})

	assert.Equal(t, "hello @James ", got.Text())
	assert.Equal(t, 13, got.Cursor(), "cursor lands after the trailing space")
	assert.Equal(t, Closed, next)
}

func TestResolveMention_NicknamePreferred(t *testing.T) {
	buf := NewBuffer("@Jam")
	st := State{Kind: KindMention, TriggerOffset: 0, Query: "Jam"}

	got, _ := ResolveMention(buf, st, MentionItem{Name: "James Holden", Nickname: "Jim"})

	assert.Equal(t, "@Jim ", got.Text())
}

func TestResolveMention_SpacedNameQuoted(t *testing.T) {
	buf := NewBuffer("@An")
	st := State{Kind: KindMention, TriggerOffset: 0, Query: "An"}

	got, _ := ResolveMention(buf, st, MentionItem{Name: "Ana Lima"})

	assert.Equal(t, `@"Ana Lima" `, got.Text())
	assert.Equal(t, got.Len(), got.Cursor())
}

func TestResolveMention_PreservesSurroundingText(t *testing.T) {
	buf := NewBuffer("see @J x")
	buf = buf.Apply(Edit{Kind: EditSetCursor, Cursor: 6})
	st := State{Kind: KindMention, TriggerOffset: 4, Query: "J"}

	got, _ := ResolveMention(buf, st, MentionItem{Name: "James"})

	assert.Equal(t, "see @James  x", got.Text())
	assert.Equal(t, 11, got.Cursor())
}

func TestResolveCommand_FullyQualifiedForm(t *testing.T) {
	buf := NewBuffer("/rev")
	st := State{Kind: KindCommand, TriggerOffset: 0, Query: "rev"}

	got, next := ResolveCommand(buf, st, CommandItem{Name: "review"})

	assert.Equal(t, "/review ", got.Text())
	assert.Equal(t, 8, got.Cursor())
	assert.Equal(t, Closed, next)
}

func TestResolveFileRef_RelativizesUnderBase(t *testing.T) {
	buf := NewBuffer("@sho")
	st := State{Kind: KindFileRef, TriggerOffset: 0, Query: "sho"}

	got, _ := ResolveFileRef(buf, st, "/proj/img/shot.png", "/proj")

	assert.Equal(t, "@img/shot.png ", got.Text())
}

func TestResolveFileRef_OutsideBaseStaysAbsolute(t *testing.T) {
	buf := NewBuffer("@sho")
	st := State{Kind: KindFileRef, TriggerOffset: 0, Query: "sho"}

	got, _ := ResolveFileRef(buf, st, "/tmp/shot.png", "/proj")

	assert.Equal(t, "@/tmp/shot.png ", got.Text())
}

func TestResolveFileRef_SpacedPathQuoted(t *testing.T) {
	buf := NewBuffer("@a")
	st := State{Kind: KindFileRef, TriggerOffset: 0, Query: "a"}

	got, _ := ResolveFileRef(buf, st, "/proj/a b.png", "/proj")

	assert.Equal(t, `@"a b.png" `, got.Text())
}

func TestResolve_WrongKindIsNoOp(t *testing.T) {
	buf := NewBuffer("/rev")
	st := State{Kind: KindCommand, TriggerOffset: 0, Query: "rev"}

	got, next := ResolveMention(buf, st, MentionItem{Name: "James"})

	assert.Equal(t, buf.Text(), got.Text(), "buffer untouched on kind mismatch")
	assert.Equal(t, Closed, next)
}

func TestResolve_DesyncedStateIsNoOp(t *testing.T) {
	tests := []struct {
		name string
		buf  Buffer
		st   State
	}{
		{
			name: "trigger offset past end",
			buf:  NewBuffer("@J"),
			st:   State{Kind: KindMention, TriggerOffset: 9},
		},
		{
			name: "offset points at non-trigger rune",
			buf:  NewBuffer("xJ"),
			st:   State{Kind: KindMention, TriggerOffset: 0},
		},
		{
			name: "cursor before trigger",
			buf:  NewBuffer("x @J").Apply(Edit{Kind: EditSetCursor, Cursor: 1}),
			st:   State{Kind: KindMention, TriggerOffset: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, next := ResolveMention(tt.buf, tt.st, MentionItem{Name: "James"})

			require.Equal(t, tt.buf.Text(), got.Text())
			assert.Equal(t, tt.buf.Cursor(), got.Cursor())
			assert.Equal(t, Closed, next, "a desynced selection still closes the picker")
		})
	}
}
