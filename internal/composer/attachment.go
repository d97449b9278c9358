package composer

import (
	"path/filepath"
	"strings"
)

// dataURIPrefix marks an inline data-scheme payload; image payloads carry
// the literal image scheme prefix.
const (
	dataURIPrefix      = "data:"
	dataURIImagePrefix = "data:image/"
)

// imageExtensions is the fixed allow-list of recognized image extensions.
var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".svg":  {},
	".webp": {},
	".ico":  {},
	".bmp":  {},
}

// Attachment describes one image reference embedded in the buffer.
// Attachments are derived, never stored: recompute from the buffer on demand.
type Attachment struct {
	// ResolvedPath is the absolute path, or the full data URI payload.
	ResolvedPath string
	// IsDataURI reports that ResolvedPath is an inline data URI.
	IsDataURI bool
	// IsImage reports a recognized image extension or image data scheme.
	IsImage bool
}

// Extractor scans buffer text for image attachments. Pure: the same text
// always yields the same ordered list.
type Extractor struct {
	basePath string
}

// NewExtractor creates an extractor resolving relative paths against basePath.
func NewExtractor(basePath string) Extractor {
	return Extractor{basePath: basePath}
}

// Extract returns the deduplicated, ordered image attachments in text.
// Quoted mentions are matched before their interiors can re-match, candidates
// are classified (data URI / relative path / absolute path), filtered to
// images, and deduplicated by resolved path in first-seen order.
func (e Extractor) Extract(text string) []Attachment {
	var out []Attachment
	seen := make(map[string]struct{})

	for _, span := range ScanSpans(text) {
		if !span.Mention() {
			continue
		}
		att, ok := e.classify(span)
		if !ok || !att.IsImage {
			continue
		}
		if _, dup := seen[att.ResolvedPath]; dup {
			continue
		}
		seen[att.ResolvedPath] = struct{}{}
		out = append(out, att)
	}
	return out
}

// classify resolves a mention body into an attachment candidate.
func (e Extractor) classify(span Span) (Attachment, bool) {
	body := span.Body
	if body == "" {
		return Attachment{}, false
	}

	if strings.HasPrefix(body, dataURIPrefix) {
		// Data URIs are only recognized in quoted form; an unquoted data
		// URI would have been truncated at the first whitespace anyway,
		// but the quoted requirement keeps removal exact.
		if span.Kind != SpanQuotedMention {
			return Attachment{}, false
		}
		return Attachment{
			ResolvedPath: body,
			IsDataURI:    true,
			IsImage:      strings.HasPrefix(body, dataURIImagePrefix),
		}, true
	}

	resolved := body
	if !filepath.IsAbs(body) {
		if e.basePath == "" {
			return Attachment{}, false
		}
		resolved = filepath.Join(e.basePath, body)
	}

	return Attachment{
		ResolvedPath: resolved,
		IsImage:      isImagePath(resolved),
	}, true
}

// Remove deletes every token in text that resolves to the attachment,
// covering all four insertion forms (quoted/unquoted x absolute/relative).
// Data URIs are removed only via exact match of their quoted form.
// Operating on scanned spans makes literal paths safe without escaping.
func (e Extractor) Remove(text string, att Attachment) string {
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	last := 0
	for _, span := range ScanSpans(text) {
		if !span.Mention() || !e.matches(span, att) {
			continue
		}
		b.WriteString(string(runes[last:span.Start]))
		last = span.End
	}
	b.WriteString(string(runes[last:]))

	return b.String()
}

// matches reports whether a mention span resolves to the attachment.
func (e Extractor) matches(span Span, att Attachment) bool {
	if att.IsDataURI {
		return span.Kind == SpanQuotedMention && span.Body == att.ResolvedPath
	}
	cand, ok := e.classify(span)
	return ok && !cand.IsDataURI && cand.ResolvedPath == att.ResolvedPath
}

// isImagePath reports whether the path carries a recognized image extension.
func isImagePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := imageExtensions[ext]
	return ok
}
