package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"syscall"
)

// ArchiveFile moves a published article into archiveDir. It reports whether
// the move succeeded; failures are logged and never fatal.
func ArchiveFile(path, archiveDir string) bool {
	if err := moveToArchive(path, archiveDir); err != nil {
		log.Printf("  ✗ %v", err)
		return false
	}
	log.Printf("  ✓ Archived: %s", filepath.Base(path))
	return true
}

func moveToArchive(path, archiveDir string) error {
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return &ArchiveError{Path: path, Err: fmt.Errorf("creating archive directory: %w", err)}
	}

	destination := filepath.Join(archiveDir, filepath.Base(path))
	err := os.Rename(path, destination)
	if err == nil {
		return nil
	}

	// Rename cannot cross filesystems, e.g. a mounted CI workspace.
	if errors.Is(err, syscall.EXDEV) {
		if err := copyAndRemove(path, destination); err != nil {
			return &ArchiveError{Path: path, Err: err}
		}
		return nil
	}

	return &ArchiveError{Path: path, Err: err}
}

func copyAndRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	in.Close()
	return os.Remove(src)
}
