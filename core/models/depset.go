package models

import "sort"

// FileKind distinguishes traversable source modules from data files that are
// packaged verbatim.
type FileKind int

const (
	SourceModule FileKind = iota
	DataFile
)

// DependencySet is the deduplicated collection of local files needed to run
// the entry script. Membership is keyed by normalized absolute path; insertion
// order is irrelevant.
type DependencySet struct {
	files map[string]FileKind
}

func NewDependencySet() *DependencySet {
	return &DependencySet{
		files: make(map[string]FileKind),
	}
}

// Add inserts a path, returning true if it was not already present. A path
// already present as a SourceModule is never downgraded to DataFile.
func (ds *DependencySet) Add(absPath string, kind FileKind) bool {
	existing, ok := ds.files[absPath]
	if ok {
		if existing == DataFile && kind == SourceModule {
			ds.files[absPath] = SourceModule
		}
		return false
	}
	ds.files[absPath] = kind
	return true
}

// Contains reports membership by absolute path.
func (ds *DependencySet) Contains(absPath string) bool {
	_, ok := ds.files[absPath]
	return ok
}

// Len returns the number of files in the set.
func (ds *DependencySet) Len() int {
	return len(ds.files)
}

// Paths returns all member paths in sorted order for deterministic output.
func (ds *DependencySet) Paths() []string {
	paths := make([]string, 0, len(ds.files))
	for p := range ds.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Kind returns the recorded kind for a member path.
func (ds *DependencySet) Kind(absPath string) (FileKind, bool) {
	kind, ok := ds.files[absPath]
	return kind, ok
}
