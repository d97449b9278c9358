package fileindex

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, base string, rel string) {
	t.Helper()
	path := filepath.Join(base, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
}

func newTestIndex(t *testing.T, cfg Config) *Index {
	t.Helper()
	ix, err := New(cfg)
	require.NoError(t, err)
	return ix
}

func TestIndex_FilesSortedRelative(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "b.txt")
	writeFile(t, base, "a/shot.png")
	writeFile(t, base, "a/code.go")

	ix := newTestIndex(t, Config{BasePath: base})

	files, err := ix.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"a/code.go", "a/shot.png", "b.txt"}, files)
}

func TestIndex_SkipsHiddenEntries(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "visible.txt")
	writeFile(t, base, ".git/objects/blob")
	writeFile(t, base, ".hidden")

	ix := newTestIndex(t, Config{BasePath: base})

	files, err := ix.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"visible.txt"}, files)
}

func TestIndex_MaxFilesBoundsListing(t *testing.T) {
	base := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		writeFile(t, base, name)
	}

	ix := newTestIndex(t, Config{BasePath: base, MaxFiles: 2})

	files, err := ix.Files()
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestIndex_CachesUntilInvalidated(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "a.txt")

	ix := newTestIndex(t, Config{BasePath: base, TTL: time.Hour})

	files, err := ix.Files()
	require.NoError(t, err)
	require.Len(t, files, 1)

	writeFile(t, base, "b.txt")

	cached, err := ix.Files()
	require.NoError(t, err)
	assert.Len(t, cached, 1, "listing served from cache within TTL")

	ix.Invalidate()

	fresh, err := ix.Files()
	require.NoError(t, err)
	assert.Len(t, fresh, 2, "invalidation forces a rescan")
}

func TestIndex_MatchCaseInsensitiveSubstring(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "src/Parser.go")
	writeFile(t, base, "docs/parse.md")
	writeFile(t, base, "readme.txt")

	ix := newTestIndex(t, Config{BasePath: base})

	got, err := ix.Match("pars", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/parse.md", "src/Parser.go"}, got)

	limited, err := ix.Match("pars", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	all, err := ix.Match("", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3, "empty query matches everything")
}

func TestIndex_Resolve(t *testing.T) {
	ix := newTestIndex(t, Config{BasePath: "/proj"})
	assert.Equal(t, "/proj/a/b.png", ix.Resolve("a/b.png"))
}

func TestIndex_StartStop(t *testing.T) {
	base := t.TempDir()
	ix := newTestIndex(t, Config{BasePath: base})

	require.NoError(t, ix.Start())
	require.NoError(t, ix.Stop())
}

func TestNew_RequiresBasePath(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
