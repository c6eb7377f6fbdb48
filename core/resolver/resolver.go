package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tristendillon/pypack/core/logger"
	"github.com/tristendillon/pypack/core/models"
)

const (
	sourceExt = ".py"
	initFile  = "__init__.py"
)

// InvalidRelativeImportError reports a relative import whose leading dots
// climb past the project root. Code like that could not execute either, so
// it is surfaced rather than silently treated as external.
type InvalidRelativeImportError struct {
	Ref      models.ModuleRef
	Importer string
}

func (e *InvalidRelativeImportError) Error() string {
	return fmt.Sprintf("relative import %q in %s escapes the project root", e.Ref, e.Importer)
}

// Resolver maps module references to files under a single project root. It
// holds no state beyond the root, so one instance is safe to reuse across a
// whole walk.
type Resolver struct {
	root string // normalized absolute project root
}

func New(projectRoot string) *Resolver {
	return &Resolver{root: filepath.Clean(projectRoot)}
}

// Resolve maps ref, imported from importerPath, to the local files that
// satisfy it: the module file itself plus any ancestor package initializers
// a dotted name passes through. A nil slice with a nil error means the
// reference is not local (standard library, third party, or simply absent)
// and is excluded without complaint. The only error condition is a relative
// import that escapes the project root.
func (r *Resolver) Resolve(ref models.ModuleRef, importerPath string) ([]models.ResolvedModule, error) {
	base, err := r.baseDir(ref, importerPath)
	if err != nil {
		return nil, err
	}

	candidate := base
	var resolved []models.ResolvedModule

	segments := ref.Segments()
	for i, seg := range segments {
		candidate = filepath.Join(candidate, seg)

		if i == len(segments)-1 {
			break
		}
		// Ancestor packages are loaded before anything imported through
		// them, so their initializers ship too. A missing initializer is a
		// namespace package, which needs no file of its own.
		init := filepath.Join(candidate, initFile)
		if r.isLocalFile(init) {
			resolved = append(resolved, models.ResolvedModule{Ref: ref, AbsPath: init})
		}
	}

	target, ok := r.resolveCandidate(candidate)
	if !ok {
		logger.Debug("Not a local module: %s (tried %s)", ref, candidate)
		return nil, nil
	}

	return append(resolved, models.ResolvedModule{Ref: ref, AbsPath: target}), nil
}

// baseDir computes the directory the ref's first segment is joined onto.
// Absolute imports anchor at the project root; a relative import with N dots
// anchors at the importer's directory climbed N-1 levels.
func (r *Resolver) baseDir(ref models.ModuleRef, importerPath string) (string, error) {
	if !ref.Relative() {
		return r.root, nil
	}

	dir := filepath.Dir(filepath.Clean(importerPath))
	for i := 1; i < ref.Dots; i++ {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &InvalidRelativeImportError{Ref: ref, Importer: importerPath}
		}
		dir = parent
	}
	if !r.contains(dir) {
		return "", &InvalidRelativeImportError{Ref: ref, Importer: importerPath}
	}
	return dir, nil
}

// resolveCandidate tries the module form "<candidate>.py", then the package
// form "<candidate>/__init__.py". First match wins.
func (r *Resolver) resolveCandidate(candidate string) (string, bool) {
	asFile := candidate + sourceExt
	if r.isLocalFile(asFile) {
		return asFile, true
	}

	asPackage := filepath.Join(candidate, initFile)
	if r.isLocalFile(asPackage) {
		return asPackage, true
	}

	return "", false
}

// isLocalFile reports whether path is a regular file under the project root.
func (r *Resolver) isLocalFile(path string) bool {
	if !r.contains(path) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (r *Resolver) contains(path string) bool {
	rel, err := filepath.Rel(r.root, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
