package packager

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tristendillon/pypack/core/logger"
	"github.com/tristendillon/pypack/core/models"
)

const requirementsFile = "requirements.txt"

// Packager writes a dependency set to an output location, mirroring each
// file's path relative to the project root. Existing output content is
// overwritten; a write failure aborts without rolling back what was already
// copied.
type Packager struct {
	projectRoot string
	outputPath  string
	archive     bool
}

func New(projectRoot, outputPath string, archive bool) *Packager {
	return &Packager{
		projectRoot: filepath.Clean(projectRoot),
		outputPath:  outputPath,
		archive:     archive,
	}
}

// OutputPath returns the effective destination, including the archive
// extension when archive mode is on.
func (p *Packager) OutputPath() string {
	if p.archive {
		return archiveName(p.outputPath)
	}
	return p.outputPath
}

// Package writes every file in the set to the destination. The externals
// listing, when non-empty, is emitted alongside as requirements.txt so the
// deployer knows which third-party names the package still needs.
func (p *Packager) Package(set *models.DependencySet, externals []string) error {
	if p.archive {
		return p.writeArchive(set, externals)
	}
	return p.copyTree(set, externals)
}

func (p *Packager) copyTree(set *models.DependencySet, externals []string) error {
	modules, dataFiles := 0, 0

	for _, src := range set.Paths() {
		target := filepath.Join(p.outputPath, p.relPath(src))
		if err := copyFile(src, target); err != nil {
			return fmt.Errorf("failed to copy %s: %w", src, err)
		}
		logger.Debug("Copied: %s -> %s", src, target)

		if kind, _ := set.Kind(src); kind == models.DataFile {
			dataFiles++
		} else {
			modules++
		}
	}

	if len(externals) > 0 {
		target := filepath.Join(p.outputPath, requirementsFile)
		if err := os.WriteFile(target, requirementsContent(externals), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", requirementsFile, err)
		}
		logger.Info("Wrote %s with %d external imports", requirementsFile, len(externals))
	}

	logger.Info("Copied %d module files and %d data files to %s", modules, dataFiles, p.outputPath)
	return nil
}

// relPath maps an absolute source path to its location inside the output.
// Only the entry script may legitimately sit outside the project root; it
// lands at the output root under its own name.
func (p *Packager) relPath(src string) string {
	rel, err := filepath.Rel(p.projectRoot, src)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(src)
	}
	return rel
}

func copyFile(src, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create target directory: %w", err)
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func requirementsContent(externals []string) []byte {
	var b strings.Builder
	for _, name := range externals {
		b.WriteString(name)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
