package packager

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/tristendillon/pypack/core/logger"
	"github.com/tristendillon/pypack/core/models"
)

const archiveExt = ".tar.gz"

func archiveName(outputPath string) string {
	if strings.HasSuffix(outputPath, archiveExt) {
		return outputPath
	}
	return outputPath + archiveExt
}

// writeArchive produces a tar.gz with the same relative layout the copy
// tree would have.
func (p *Packager) writeArchive(set *models.DependencySet, externals []string) error {
	target := archiveName(p.outputPath)

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", target, err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	count := 0
	for _, src := range set.Paths() {
		if err := p.addFile(tw, src); err != nil {
			tw.Close()
			gz.Close()
			return fmt.Errorf("failed to archive %s: %w", src, err)
		}
		count++
	}

	if len(externals) > 0 {
		content := requirementsContent(externals)
		hdr := &tar.Header{
			Name:    requirementsFile,
			Mode:    0644,
			Size:    int64(len(content)),
			ModTime: time.Now(),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			tw.Close()
			gz.Close()
			return fmt.Errorf("failed to archive %s: %w", requirementsFile, err)
		}
		if _, err := tw.Write(content); err != nil {
			tw.Close()
			gz.Close()
			return fmt.Errorf("failed to archive %s: %w", requirementsFile, err)
		}
	}

	if err := tw.Close(); err != nil {
		gz.Close()
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	logger.Info("Archived %d files to %s", count, target)
	return nil
}

func (p *Packager) addFile(tw *tar.Writer, src string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = filepath.ToSlash(p.relPath(src))

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	_, err = io.Copy(tw, in)
	return err
}
