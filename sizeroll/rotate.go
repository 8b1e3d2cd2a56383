package sizeroll

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"golift.io/rollerr/compressor"
)

// Rotate runs the renumber plan for one rotation: wait out in-flight
// compressions, shift every kept backup down one ordinal, and move the
// just-closed active file into slot 1. Returns the path the closed file
// ended up at, empty when Backups is zero.
func (l *Layout) Rotate(fileName string) (string, error) {
	// A backup slot must settle before a rename reuses its name.
	l.Compress.WaitAll()

	if l.Backups == 0 {
		// Nothing is kept. Drop the closed file and start over.
		if err := l.Remove(fileName); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("discarding rotated file: %w", err)
		}

		return "", nil
	}

	logFiles, err := l.getAllLogFiles(fileName)
	if err != nil {
		return "", fmt.Errorf("reading log directory: %w", err)
	}

	sort.Sort(sort.Reverse(logFiles))

	// Highest ordinal first, so every destination slot is free or expired
	// by the time its source renames into it.
	for idx, filePath := range logFiles.Files {
		ordinal := logFiles.ordinals[idx]
		if ordinal >= l.Backups {
			continue // falls off the end; the next shift overwrites it.
		}

		newPath := l.backupName(fileName, ordinal+1) + logFiles.exts[idx]
		if err := l.replace(filePath, newPath); err != nil {
			return "", err
		}

		if logFiles.exts[idx] == "" {
			l.compress(newPath)
		}
	}

	newFile := l.backupName(fileName, 1)
	if err := l.replace(fileName, newFile); err != nil {
		return "", err
	}

	l.compress(newFile)

	return newFile, nil
}

// replace moves src over dst, deleting anything already there. A missing
// dst is the normal case, not an error.
func (l *Layout) replace(src, dst string) error {
	if err := l.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clearing backup slot %s: %w", dst, err)
	}

	if err := l.Rename(src, dst); err != nil {
		return fmt.Errorf("error rotating file: %w", err)
	}

	return nil
}

// compress queues background compression for a fresh backup, when enabled.
func (l *Layout) compress(path string) {
	if l.Compress == nil {
		return
	}

	l.Compress.Background(path, func(report *compressor.Report) {
		compressor.Log(report, l.Logf)
	})
}
