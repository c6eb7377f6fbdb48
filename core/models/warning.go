package models

import "fmt"

// WarningKind classifies recoverable anomalies recorded during a walk.
type WarningKind int

const (
	ParseFailureWarning WarningKind = iota
	InvalidRelativeImportWarning
)

func (k WarningKind) String() string {
	switch k {
	case ParseFailureWarning:
		return "parse-failure"
	case InvalidRelativeImportWarning:
		return "invalid-relative-import"
	default:
		return "unknown"
	}
}

// Warning records a recoverable anomaly: the file it occurred in and what
// went wrong. Warnings never change the process exit code.
type Warning struct {
	Kind   WarningKind
	Path   string
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s: %s", w.Kind, w.Path, w.Detail)
}
