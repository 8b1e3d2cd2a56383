// Package sizeroll rotates a log file once it grows past a byte threshold,
// renaming backups with an incrementing integer in the name. Backup ordinal 1
// is always the most recently rotated file: on every rotation the existing
// backups shift down one slot (1 becomes 2, 2 becomes 3, and so on) and
// ordinals at or past the keep limit fall off the end.
//
// By default rotated log files are named: service.log.1. Set KeepExt to get
// service.1.log instead.
package sizeroll

import (
	"path/filepath"
	"strconv"
	"strings"

	"golift.io/rollerr/compressor"
	"golift.io/rollerr/filer"
)

// Joiner is the string between the file name and the backup ordinal.
const Joiner = "."

// Layout defines how integer-stamped backup logs have their file names
// decided, and how many of them survive a rotation. Backups is a hard cap:
// ordinal Backups+1 is never created. A Backups of zero keeps nothing; each
// rotation discards the closed file outright.
type Layout struct {
	ArchiveDir string // Location where rotated backup logs are moved to.
	MaxBytes   int64  // Size threshold that triggers a rotation. Zero never rolls.
	Backups    int    // How many numbered backups to keep.
	KeepExt    bool   // Put the ordinal before the file extension.
	// Compress squeezes every fresh backup in the background when set.
	Compress *compressor.Compressor
	// Logf receives compression reports. nil means the standard logger.
	Logf func(msg string, v ...any)
	// PostRotate runs after each rotation with the active and new paths.
	PostRotate func(fileName, newFile string)
	filer.Filer
}

// ShouldRoll reports whether a file of the given size is due for rotation.
// The check runs against the size before a write, not after it, so a chunk
// may carry the file past MaxBytes and only the next write triggers the roll.
func (l *Layout) ShouldRoll(size int64) bool {
	return l.MaxBytes > 0 && size >= l.MaxBytes
}

// ActiveName returns the name writes land in, which for integer backups is
// always the configured file name itself.
func (l *Layout) ActiveName(fileName string) string {
	return fileName
}

// Dirs checks our config and returns the folders for the rollerr library to create.
func (l *Layout) Dirs(fileName string) ([]string, error) {
	if l.Filer == nil {
		l.Filer = filer.Default()
	}

	if l.Backups < 0 {
		l.Backups = 0
	}

	switch fpath := filepath.Dir(fileName); {
	case l.ArchiveDir == "" || fpath == l.ArchiveDir:
		return []string{fpath}, nil
	default:
		return []string{fpath, l.ArchiveDir}, nil
	}
}

// Post satisfies the rollerr.Policy interface.
func (l *Layout) Post(fileName, newFile string) {
	if l.PostRotate != nil {
		l.PostRotate(fileName, newFile)
	}
}

// getArchiveDir returns the archive directory if one is set,
// otherwise the directory the log file is in.
func (l *Layout) getArchiveDir(fileName string) string {
	if l.ArchiveDir != "" {
		return l.ArchiveDir
	}

	return filepath.Dir(fileName)
}

// backupName builds the path of an ordinal backup. The compressed suffix, if
// any, is appended by the caller.
func (l *Layout) backupName(fileName string, ordinal int) string {
	base := filepath.Base(fileName)
	name := base + Joiner + strconv.Itoa(ordinal)

	if ext := filepath.Ext(base); l.KeepExt && ext != "" {
		name = strings.TrimSuffix(base, ext) + Joiner + strconv.Itoa(ordinal) + ext
	}

	return filepath.Join(l.getArchiveDir(fileName), name)
}

// parseOrdinal extracts the backup number from a directory entry name.
// Entries that do not carry a positive integer in the ordinal position are
// not ours and report ok false. The returned ext is the compressed suffix
// the entry carries, empty for a plain file.
func (l *Layout) parseOrdinal(name, base string) (ordinal int, ext string, ok bool) {
	trimmed, ext := stripCompressed(name, l.Compress.Ext())

	var token string

	if fileExt := filepath.Ext(base); l.KeepExt && fileExt != "" {
		// service.1.log: the token sits between the stem and the extension.
		rest, found := strings.CutPrefix(trimmed, strings.TrimSuffix(base, fileExt)+Joiner)
		if !found || !strings.HasSuffix(rest, fileExt) {
			return 0, "", false
		}

		token = strings.TrimSuffix(rest, fileExt)
	} else {
		// service.log.1: the token is everything past the full base name.
		rest, found := strings.CutPrefix(trimmed, base+Joiner)
		if !found {
			return 0, "", false
		}

		if idx := strings.LastIndex(rest, Joiner); idx >= 0 {
			rest = rest[idx+1:]
		}

		token = rest
	}

	ordinal, err := strconv.Atoi(token)
	if err != nil || ordinal < 1 {
		return 0, "", false
	}

	return ordinal, ext, true
}

// stripCompressed takes a known compressed suffix off a file name. The gzip
// suffix is always recognized, so backups from an earlier compressed setup
// still renumber correctly after compression is turned off.
func stripCompressed(name, codecExt string) (string, string) {
	for _, ext := range []string{codecExt, compressor.SuffixGZ} {
		if ext != "" && strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext), ext
		}
	}

	return name, ""
}

// getAllLogFiles finds all the backup log files carrying our name and an ordinal.
func (l *Layout) getAllLogFiles(fileName string) (*backupFiles, error) {
	var (
		dir  = l.getArchiveDir(fileName)
		base = filepath.Base(fileName)
		list = &backupFiles{}
	)

	files, err := l.ReadDir(dir)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	for _, file := range files {
		name := file.Name()
		if name == base {
			continue // the active file is not a backup.
		}

		if ordinal, ext, ok := l.parseOrdinal(name, base); ok {
			list.add(filepath.Join(dir, name), ordinal, ext)
		}
	}

	return list, nil
}
