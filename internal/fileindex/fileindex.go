// Package fileindex maintains the file listing behind the file-reference
// picker: a TTL-cached scan of the base path, invalidated early when the
// file system reports changes.
package fileindex

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	gocache "github.com/patrickmn/go-cache"

	"roster/internal/log"
)

const (
	cacheKey        = "files"
	cleanupInterval = 5 * time.Minute
	debounceDur     = 500 * time.Millisecond
)

// Config holds index settings.
type Config struct {
	// BasePath is the directory scanned for files.
	BasePath string
	// TTL caps how long a cached listing is served without a rescan.
	TTL time.Duration
	// MaxFiles bounds the listing; the scan stops once reached.
	MaxFiles int
}

// Index is the cached file listing. Safe for concurrent use.
type Index struct {
	basePath string
	maxFiles int
	ttl      time.Duration

	cache     *gocache.Cache
	fsWatcher *fsnotify.Watcher
	done      chan struct{}
}

// New creates an index over the base path. Call Start to enable
// change-driven invalidation; without it the TTL alone bounds staleness.
func New(cfg Config) (*Index, error) {
	if cfg.BasePath == "" {
		return nil, fmt.Errorf("fileindex: empty base path")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	maxFiles := cfg.MaxFiles
	if maxFiles <= 0 {
		maxFiles = 5000
	}
	return &Index{
		basePath: cfg.BasePath,
		maxFiles: maxFiles,
		ttl:      ttl,
		cache:    gocache.New(ttl, cleanupInterval),
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching the base path for changes. Subdirectories found by
// the next scan are added to the watch set as they are discovered.
func (ix *Index) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fileindex: creating watcher: %w", err)
	}
	if err := fsw.Add(ix.basePath); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("fileindex: watching %s: %w", ix.basePath, err)
	}
	ix.fsWatcher = fsw
	go ix.loop()
	return nil
}

// Stop terminates the watcher. The index remains usable with TTL-only
// invalidation.
func (ix *Index) Stop() error {
	close(ix.done)
	if ix.fsWatcher != nil {
		return ix.fsWatcher.Close()
	}
	return nil
}

// Files returns the relative paths under the base path, sorted. The
// listing is cached until the TTL expires or a change invalidates it.
func (ix *Index) Files() ([]string, error) {
	if cached, ok := ix.cache.Get(cacheKey); ok {
		if files, ok := cached.([]string); ok {
			return files, nil
		}
	}

	files, err := ix.scan()
	if err != nil {
		return nil, err
	}
	ix.cache.Set(cacheKey, files, ix.ttl)
	return files, nil
}

// Match returns up to limit files whose relative path contains the query,
// case-insensitive, preserving listing order.
func (ix *Index) Match(query string, limit int) ([]string, error) {
	files, err := ix.Files()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = len(files)
	}

	q := strings.ToLower(query)
	var out []string
	for _, f := range files {
		if q == "" || strings.Contains(strings.ToLower(f), q) {
			out = append(out, f)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// Resolve returns the absolute path of a listed relative path.
func (ix *Index) Resolve(rel string) string {
	return filepath.Join(ix.basePath, rel)
}

// Invalidate drops the cached listing; the next Files call rescans.
func (ix *Index) Invalidate() {
	ix.cache.Delete(cacheKey)
}

// scan walks the base path collecting relative file paths. Hidden
// directories and their contents are skipped.
func (ix *Index) scan() ([]string, error) {
	var files []string

	err := filepath.WalkDir(ix.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			log.Debug(log.CatIndex, "scan skipping entry", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != ix.basePath && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			if ix.fsWatcher != nil && path != ix.basePath {
				_ = ix.fsWatcher.Add(path)
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		rel, err := filepath.Rel(ix.basePath, path)
		if err != nil {
			return nil
		}
		files = append(files, rel)
		if len(files) >= ix.maxFiles {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fileindex: scanning %s: %w", ix.basePath, err)
	}

	sort.Strings(files)
	log.Debug(log.CatIndex, "scan complete", "files", len(files))
	return files, nil
}

// loop debounces change events into cache invalidations.
func (ix *Index) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-ix.fsWatcher.Events:
			if !ok {
				return
			}
			if !isRelevantEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceDur)
				pending = true
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceDur)
				pending = true
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				ix.Invalidate()
				pending = false
			}

		case _, ok := <-ix.fsWatcher.Errors:
			if !ok {
				return
			}

		case <-ix.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent reports whether the event can change the listing.
func isRelevantEvent(event fsnotify.Event) bool {
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Write)
}
