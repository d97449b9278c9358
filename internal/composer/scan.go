package composer

// SpanKind classifies a tokenized region of the buffer.
type SpanKind int

const (
	// SpanLiteral is plain text.
	SpanLiteral SpanKind = iota
	// SpanQuotedMention is trigger + quote + body + quote. The body may
	// contain anything except a double quote, including whitespace and
	// inline data-scheme payloads.
	SpanQuotedMention
	// SpanUnquotedMention is trigger + a maximal run of non-whitespace,
	// non-trigger characters.
	SpanUnquotedMention
)

// Span is a tokenized region. Start/End are rune offsets into the scanned
// text; Body is the mention content without trigger or quotes.
type Span struct {
	Kind  SpanKind
	Start int
	End   int
	Body  string
}

// Mention reports whether the span is a quoted or unquoted mention.
func (s Span) Mention() bool {
	return s.Kind == SpanQuotedMention || s.Kind == SpanUnquotedMention
}

// ScanSpans tokenizes text into literal and mention spans in one pass.
// Quoted mentions consume their interior, so tokens inside quotes are never
// re-matched. Insertion and removal operate on these spans rather than on
// reconstructed patterns, which avoids metacharacter escaping entirely.
func ScanSpans(text string) []Span {
	runes := []rune(text)
	var spans []Span
	litStart := 0

	flushLiteral := func(end int) {
		if end > litStart {
			spans = append(spans, Span{
				Kind:  SpanLiteral,
				Start: litStart,
				End:   end,
				Body:  string(runes[litStart:end]),
			})
		}
	}

	i := 0
	for i < len(runes) {
		if runes[i] != MentionTrigger {
			i++
			continue
		}

		// Quoted form: @"body".
		if i+1 < len(runes) && runes[i+1] == '"' {
			close := -1
			for j := i + 2; j < len(runes); j++ {
				if runes[j] == '"' {
					close = j
					break
				}
			}
			if close >= 0 {
				flushLiteral(i)
				spans = append(spans, Span{
					Kind:  SpanQuotedMention,
					Start: i,
					End:   close + 1,
					Body:  string(runes[i+2 : close]),
				})
				i = close + 1
				litStart = i
				continue
			}
			// Unterminated quote: the trigger stays literal.
			i++
			continue
		}

		// Unquoted form: @ followed by at least one token character.
		end := i + 1
		for end < len(runes) && !isBoundary(runes[end]) && runes[end] != MentionTrigger {
			end++
		}
		if end == i+1 {
			// Bare trigger with no token: literal.
			i++
			continue
		}

		flushLiteral(i)
		spans = append(spans, Span{
			Kind:  SpanUnquotedMention,
			Start: i,
			End:   end,
			Body:  string(runes[i+1 : end]),
		})
		i = end
		litStart = i
	}
	flushLiteral(len(runes))

	return spans
}
