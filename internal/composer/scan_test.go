package composer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestScanSpans_LiteralOnly(t *testing.T) {
	spans := ScanSpans("plain text, no mentions")

	require.Len(t, spans, 1)
	assert.Equal(t, SpanLiteral, spans[0].Kind)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, 23, spans[0].End)
}

func TestScanSpans_UnquotedMention(t *testing.T) {
	spans := ScanSpans("check @img.png out")

	require.Len(t, spans, 3)
	m := spans[1]
	assert.Equal(t, SpanUnquotedMention, m.Kind)
	assert.Equal(t, 6, m.Start)
	assert.Equal(t, 14, m.End)
	assert.Equal(t, "img.png", m.Body)
}

func TestScanSpans_QuotedMentionKeepsInteriorWhitespace(t *testing.T) {
	spans := ScanSpans(`check @"/tmp/a b.png" out`)

	require.Len(t, spans, 3)
	m := spans[1]
	assert.Equal(t, SpanQuotedMention, m.Kind)
	assert.Equal(t, "/tmp/a b.png", m.Body)
	assert.Equal(t, 6, m.Start)
	assert.Equal(t, 21, m.End)
}

func TestScanSpans_UnterminatedQuoteIsLiteral(t *testing.T) {
	spans := ScanSpans(`see @"never closed`)

	require.Len(t, spans, 1)
	assert.Equal(t, SpanLiteral, spans[0].Kind)
}

func TestScanSpans_BareTriggerIsLiteral(t *testing.T) {
	for _, text := range []string{"@", "lunch @ noon", "a@ b"} {
		spans := ScanSpans(text)
		for _, s := range spans {
			assert.Equalf(t, SpanLiteral, s.Kind, "text %q", text)
		}
	}
}

func TestScanSpans_AdjacentMentions(t *testing.T) {
	spans := ScanSpans("@a@b")

	require.Len(t, spans, 2)
	assert.Equal(t, "a", spans[0].Body)
	assert.Equal(t, "b", spans[1].Body)
}

func TestScanSpans_QuotedInteriorNeverRematches(t *testing.T) {
	spans := ScanSpans(`@"one @two three"`)

	require.Len(t, spans, 1)
	assert.Equal(t, SpanQuotedMention, spans[0].Kind)
	assert.Equal(t, "one @two three", spans[0].Body)
}

// TestScanSpans_CoversTextExactly checks that the spans of any input are
// ordered, non-overlapping, and reassemble the input byte for byte.
func TestScanSpans_CoversTextExactly(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(t, "len")
		var sb strings.Builder
		for i := 0; i < n; i++ {
			sb.WriteRune(rapid.SampledFrom([]rune(`a b@"./`)).Draw(t, "rune"))
		}
		text := sb.String()
		runes := []rune(text)

		var rebuilt strings.Builder
		prev := 0
		for _, s := range ScanSpans(text) {
			if s.Start != prev {
				t.Fatalf("span starts at %d, expected %d", s.Start, prev)
			}
			if s.End <= s.Start || s.End > len(runes) {
				t.Fatalf("bad span bounds [%d,%d) for len %d", s.Start, s.End, len(runes))
			}
			rebuilt.WriteString(string(runes[s.Start:s.End]))
			prev = s.End
		}
		rebuilt.WriteString(string(runes[prev:]))

		if rebuilt.String() != text {
			t.Fatalf("spans of %q rebuild to %q", text, rebuilt.String())
		}
	})
}
