package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tristendillon/pypack/core/logger"
	"github.com/tristendillon/pypack/core/models"
	"github.com/tristendillon/pypack/core/pyast"
	"github.com/tristendillon/pypack/core/resolver"
)

// ParseFunc extracts the import references of one source file. The watcher
// swaps in a caching implementation; plain pack runs use pyast directly.
type ParseFunc func(path string) ([]models.ModuleRef, error)

// Result is everything one walk produces: the dependency closure, the
// top-level names of imports that turned out not to be local, and the
// recoverable anomalies hit along the way.
type Result struct {
	Set       *models.DependencySet
	Externals []string
	Warnings  []models.Warning
}

// DependencyWalker builds the transitive closure of local files reachable
// from an entry script. All state lives in the walk itself; a walker can be
// reused across invocations.
type DependencyWalker struct {
	Root     string
	Resolver *resolver.Resolver
	Parse    ParseFunc

	// DataExtensions, when non-empty, makes the walk also collect data
	// files (configs, fixtures) with these extensions from the directory
	// of every resolved module. They are packaged verbatim, never parsed.
	DataExtensions []string
}

func New(projectRoot string) *DependencyWalker {
	root := filepath.Clean(projectRoot)
	return &DependencyWalker{
		Root:     root,
		Resolver: resolver.New(root),
		Parse:    pyast.ExtractImports,
	}
}

// Walk returns the full dependency set for entryPath. The entry script is
// always a member, even when it imports nothing. A parse failure on the
// entry script aborts the walk; on any other file it is recorded as a
// warning, the file stays in the set, and its own imports go unexplored.
func (w *DependencyWalker) Walk(entryPath string) (*Result, error) {
	entry, err := filepath.Abs(entryPath)
	if err != nil {
		return nil, fmt.Errorf("cannot normalize entry path: %w", err)
	}

	result := &Result{Set: models.NewDependencySet()}
	visited := make(map[string]bool)
	frontier := []string{entry}
	result.Set.Add(entry, models.SourceModule)

	localTops := make(map[string]bool)
	externalTops := make(map[string]bool)
	scannedDirs := make(map[string]bool)
	w.collectDataFiles(filepath.Dir(entry), scannedDirs, result.Set)

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		refs, err := w.Parse(current)
		if err != nil {
			var parseErr *pyast.ParseError
			if current == entry {
				if errors.As(err, &parseErr) {
					return nil, fmt.Errorf("entry script cannot be parsed: %w", err)
				}
				return nil, err
			}
			result.Warnings = append(result.Warnings, models.Warning{
				Kind:   models.ParseFailureWarning,
				Path:   current,
				Detail: err.Error(),
			})
			logger.Warn("Skipping imports of %s: %v", current, err)
			continue
		}

		logger.Debug("Extracted %d import refs from %s", len(refs), current)

		for _, ref := range refs {
			resolved, err := w.Resolver.Resolve(ref, current)
			if err != nil {
				var invalid *resolver.InvalidRelativeImportError
				if !errors.As(err, &invalid) {
					return nil, err
				}
				result.Warnings = append(result.Warnings, models.Warning{
					Kind:   models.InvalidRelativeImportWarning,
					Path:   current,
					Detail: err.Error(),
				})
				logger.Warn("Excluding import: %v", err)
				continue
			}

			if resolved == nil {
				if !ref.Relative() {
					externalTops[ref.TopLevel()] = true
				}
				continue
			}

			if !ref.Relative() {
				localTops[ref.TopLevel()] = true
			}
			for _, mod := range resolved {
				if result.Set.Add(mod.AbsPath, models.SourceModule) {
					frontier = append(frontier, mod.AbsPath)
					logger.Debug("Resolved %s -> %s", ref, mod.AbsPath)
					w.collectDataFiles(filepath.Dir(mod.AbsPath), scannedDirs, result.Set)
				}
			}
		}
	}

	// A name like "pkg.helper" that resolved nowhere still starts with a
	// top level that may be local; only names whose top level never
	// resolved count as external.
	for top := range externalTops {
		if !localTops[top] {
			result.Externals = append(result.Externals, top)
		}
	}
	sort.Strings(result.Externals)

	logger.Debug("Walk complete: %d files, %d external imports, %d warnings",
		result.Set.Len(), len(result.Externals), len(result.Warnings))
	return result, nil
}

// collectDataFiles walks dir for files matching DataExtensions and adds them
// to the set as data files. Directories outside the project root (an entry
// script can live anywhere) and already-scanned directories are skipped.
func (w *DependencyWalker) collectDataFiles(dir string, scanned map[string]bool, set *models.DependencySet) {
	if len(w.DataExtensions) == 0 || scanned[dir] {
		return
	}
	scanned[dir] = true

	rel, err := filepath.Rel(w.Root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		for _, want := range w.DataExtensions {
			if ext == want {
				if set.Add(path, models.DataFile) {
					logger.Debug("Collected data file: %s", path)
				}
				break
			}
		}
		return nil
	})
	if err != nil {
		logger.Debug("Data scan of %s failed: %v", dir, err)
	}
}
