package models

import "strings"

// ModuleRef is an unresolved import name as it appears in source text.
// Dots carries the leading-dot count of a relative import ("from .. import x"
// has Dots == 2); absolute imports have Dots == 0.
type ModuleRef struct {
	Dots int
	Name string // Dotted module path: "pkg.helper". May be empty for "from . import x".
}

// Relative reports whether the reference uses relative-import notation.
func (r ModuleRef) Relative() bool {
	return r.Dots > 0
}

// TopLevel returns the first dotted segment: "pkg" for "pkg.helper".
func (r ModuleRef) TopLevel() string {
	if i := strings.Index(r.Name, "."); i >= 0 {
		return r.Name[:i]
	}
	return r.Name
}

// Segments splits the dotted name into path segments.
func (r ModuleRef) Segments() []string {
	if r.Name == "" {
		return nil
	}
	return strings.Split(r.Name, ".")
}

func (r ModuleRef) String() string {
	return strings.Repeat(".", r.Dots) + r.Name
}

// ResolvedModule is a ModuleRef mapped to a concrete file under the project
// root, identified by its normalized absolute path.
type ResolvedModule struct {
	Ref     ModuleRef
	AbsPath string
}
