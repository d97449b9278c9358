package composer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestExtract_QuotedPathWithSpaces(t *testing.T) {
	ex := NewExtractor("/proj")
	atts := ex.Extract(`check @"/tmp/a b.png" out`)

	require.Len(t, atts, 1)
	assert.Equal(t, "/tmp/a b.png", atts[0].ResolvedPath)
	assert.True(t, atts[0].IsImage)
	assert.False(t, atts[0].IsDataURI)
}

func TestExtract_DeduplicatesByResolvedPath(t *testing.T) {
	ex := NewExtractor("/proj")

	// Quoted and unquoted forms of the same file, plus a relative form
	// resolving to the same absolute path.
	atts := ex.Extract(`@/proj/x.png @"/proj/x.png" @x.png`)

	require.Len(t, atts, 1)
	assert.Equal(t, "/proj/x.png", atts[0].ResolvedPath)
}

func TestExtract_RelativeResolvesAgainstBasePath(t *testing.T) {
	ex := NewExtractor("/proj")
	atts := ex.Extract("@img/shot.png")

	require.Len(t, atts, 1)
	assert.Equal(t, "/proj/img/shot.png", atts[0].ResolvedPath)
}

func TestExtract_RelativeWithoutBasePathIsSkipped(t *testing.T) {
	ex := NewExtractor("")
	atts := ex.Extract("@img/shot.png @/abs/shot.png")

	require.Len(t, atts, 1, "only the absolute path survives without a base")
	assert.Equal(t, "/abs/shot.png", atts[0].ResolvedPath)
}

func TestExtract_NonImagesFiltered(t *testing.T) {
	ex := NewExtractor("/proj")
	atts := ex.Extract("@notes.txt @James @/proj/a.go")

	assert.Empty(t, atts)
}

func TestExtract_ExtensionMatchIsCaseInsensitive(t *testing.T) {
	ex := NewExtractor("/proj")
	atts := ex.Extract("@/shots/Crash.PNG")

	require.Len(t, atts, 1)
	assert.True(t, atts[0].IsImage)
}

func TestExtract_DataURIRequiresQuotedForm(t *testing.T) {
	ex := NewExtractor("/proj")

	quoted := ex.Extract(`@"data:image/png;base64,AAA"`)
	require.Len(t, quoted, 1)
	assert.True(t, quoted[0].IsDataURI)
	assert.True(t, quoted[0].IsImage)
	assert.Equal(t, "data:image/png;base64,AAA", quoted[0].ResolvedPath)

	unquoted := ex.Extract("@data:image/png;base64,AAA")
	assert.Empty(t, unquoted)
}

func TestExtract_NonImageDataURIFiltered(t *testing.T) {
	ex := NewExtractor("/proj")
	atts := ex.Extract(`@"data:text/plain;base64,AAA"`)

	assert.Empty(t, atts)
}

func TestRemove_AllInsertionForms(t *testing.T) {
	ex := NewExtractor("/proj")
	text := `a @/proj/x.png b @"/proj/x.png" c @x.png d @"x.png" e`

	atts := ex.Extract(text)
	require.Len(t, atts, 1)

	got := ex.Remove(text, atts[0])
	assert.Equal(t, "a  b  c  d  e", got,
		"every form resolving to the attachment is deleted, surrounding text intact")
}

func TestRemove_LeavesOtherAttachments(t *testing.T) {
	ex := NewExtractor("/proj")
	text := "@a.png @b.png"

	atts := ex.Extract(text)
	require.Len(t, atts, 2)

	got := ex.Remove(text, atts[0])
	assert.Equal(t, " @b.png", got)
}

func TestRemove_DataURIExactQuotedMatchOnly(t *testing.T) {
	ex := NewExtractor("/proj")
	text := `@"data:image/png;base64,AAA" @"data:image/png;base64,BBB"`

	atts := ex.Extract(text)
	require.Len(t, atts, 2)

	got := ex.Remove(text, atts[0])
	assert.Equal(t, ` @"data:image/png;base64,BBB"`, got)
}

func TestRemove_PathWithMetacharacters(t *testing.T) {
	ex := NewExtractor("/proj")
	text := `@"/tmp/a (1) [final].png" tail`

	atts := ex.Extract(text)
	require.Len(t, atts, 1)

	got := ex.Remove(text, atts[0])
	assert.Equal(t, " tail", got)
}

// imageMentionGen yields mention tokens in all four insertion forms plus
// noise words, for assembling random buffers.
func bufferTokenGen() *rapid.Generator[string] {
	names := rapid.SampledFrom([]string{"x.png", "a b.png", "deep/shot.jpg"})
	return rapid.Custom(func(t *rapid.T) string {
		name := names.Draw(t, "name")
		switch rapid.IntRange(0, 4).Draw(t, "form") {
		case 0:
			return "@" + quoteIfSpaced(name)
		case 1:
			return `@"` + name + `"`
		case 2:
			return "@" + quoteIfSpaced("/proj/"+name)
		case 3:
			return `@"/proj/` + name + `"`
		default:
			return rapid.SampledFrom([]string{"fix", "the", "bug", "@James"}).Draw(t, "word")
		}
	})
}

// TestExtractor_RemoveEliminatesAttachment checks the core removal property:
// after removing an extracted attachment, re-extraction no longer yields it,
// and attachments with other resolved paths survive.
func TestExtractor_RemoveEliminatesAttachment(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ex := NewExtractor("/proj")
		tokens := rapid.SliceOfN(bufferTokenGen(), 1, 8).Draw(t, "tokens")
		text := strings.Join(tokens, " ")

		atts := ex.Extract(text)
		if len(atts) == 0 {
			t.Skip("no attachments in this buffer")
		}
		target := atts[rapid.IntRange(0, len(atts)-1).Draw(t, "pick")]

		removed := ex.Remove(text, target)
		rest := ex.Extract(removed)

		survivors := make(map[string]struct{})
		for _, a := range rest {
			if a.ResolvedPath == target.ResolvedPath {
				t.Fatalf("attachment %q still extracted from %q", target.ResolvedPath, removed)
			}
			survivors[a.ResolvedPath] = struct{}{}
		}
		for _, a := range atts {
			if a.ResolvedPath == target.ResolvedPath {
				continue
			}
			if _, ok := survivors[a.ResolvedPath]; !ok {
				t.Fatalf("removal of %q also dropped %q", target.ResolvedPath, a.ResolvedPath)
			}
		}
	})
}

// TestExtract_Deterministic checks extraction is pure and duplicate-free.
func TestExtract_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ex := NewExtractor("/proj")
		tokens := rapid.SliceOfN(bufferTokenGen(), 0, 8).Draw(t, "tokens")
		text := strings.Join(tokens, " ")

		first := ex.Extract(text)
		second := ex.Extract(text)
		require.Equal(t, first, second)

		seen := make(map[string]struct{})
		for _, a := range first {
			if _, dup := seen[a.ResolvedPath]; dup {
				t.Fatalf("duplicate resolved path %q", a.ResolvedPath)
			}
			seen[a.ResolvedPath] = struct{}{}
		}
	})
}
