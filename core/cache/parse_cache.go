package cache

import (
	"os"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tristendillon/pypack/core/logger"
	"github.com/tristendillon/pypack/core/models"
	"github.com/tristendillon/pypack/core/pyast"
)

// DefaultSize bounds how many parsed files a watch session keeps around.
const DefaultSize = 4096

type cachedParse struct {
	modTime time.Time
	size    int64
	refs    []models.ModuleRef
}

// ParseCache memoizes import extraction across repeated walks of the same
// project, as happens in watch mode. Entries are validated against file
// mtime and size, so a stale hit requires an unchanged stat. The cache is
// owned by one watch session; plain pack runs never allocate one.
type ParseCache struct {
	entries *lru.Cache[string, cachedParse]
	hits    atomic.Int64
	misses  atomic.Int64
}

func NewParseCache(size int) (*ParseCache, error) {
	entries, err := lru.New[string, cachedParse](size)
	if err != nil {
		return nil, err
	}
	return &ParseCache{entries: entries}, nil
}

// Extract is a walker.ParseFunc. It serves cached import refs when the file
// is unchanged and falls back to a real parse otherwise. Parse failures are
// not cached; the caller's warning policy should fire on every run.
func (pc *ParseCache) Extract(path string) ([]models.ModuleRef, error) {
	info, err := os.Stat(path)
	if err == nil {
		if entry, ok := pc.entries.Get(path); ok {
			if entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
				pc.hits.Add(1)
				logger.Debug("ParseCache: Hit for %s", path)
				return entry.refs, nil
			}
			pc.entries.Remove(path)
		}
	}

	pc.misses.Add(1)
	refs, err := pyast.ExtractImports(path)
	if err != nil {
		return nil, err
	}

	if info != nil {
		pc.entries.Add(path, cachedParse{
			modTime: info.ModTime(),
			size:    info.Size(),
			refs:    refs,
		})
	}
	return refs, nil
}

// Invalidate drops the entry for a single file.
func (pc *ParseCache) Invalidate(path string) {
	if pc.entries.Remove(path) {
		logger.Debug("ParseCache: Invalidated %s", path)
	}
}

// Purge drops everything.
func (pc *ParseCache) Purge() {
	pc.entries.Purge()
	logger.Debug("ParseCache: Cleared all entries")
}

// Stats returns hit and miss counts for the session.
func (pc *ParseCache) Stats() (hits, misses int64) {
	return pc.hits.Load(), pc.misses.Load()
}
