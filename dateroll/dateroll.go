// Package dateroll rotates a log file when the calendar period in its date
// pattern rolls over, naming backups with the label of the period they hold.
// A file written through a ".yyyy-MM-dd" pattern on 2026-08-25 becomes
// service.log.2026-08-25 once the first write of the 26th arrives.
//
// The package tracks the label of the period being written. The label
// advances the moment a roll is detected, so one clock jump rotates exactly
// once no matter how many writes follow in the new period.
package dateroll

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"golift.io/rollerr/compressor"
	"golift.io/rollerr/filer"
	"golift.io/rollerr/pruner"
)

// Layout decides how date-stamped log files have their names decided, which
// period boundary triggers rotation, and how long rotated files survive.
type Layout struct {
	ArchiveDir string // Location where rotated backup logs are moved to.
	Pattern    string // Date pattern for backup labels. Default: DefaultPattern.
	// AlwaysInclude puts the current label in the active file's own name.
	// Rotation then closes one labeled file and opens the next; nothing is
	// ever renamed.
	AlwaysInclude bool
	KeepExt       bool          // Insert the label before the file extension.
	MaxAge        time.Duration // Retention window for rotated files. Zero keeps all.
	UseUTC        bool          // Compute labels in UTC instead of local time.
	// Compress squeezes each rotated-out file in the background when set.
	Compress *compressor.Compressor
	// Logf receives compression reports and retention skips. nil means the
	// standard logger for reports, discard for skips.
	Logf func(msg string, v ...any)
	// PostRotate runs after each rotation with the active and new paths.
	PostRotate func(fileName, newFile string)
	// Now overrides the clock. Tests set this; nil means time.Now.
	Now func() time.Time
	filer.Filer

	layout    string // Pattern translated to a Go time layout.
	lastLabel string // Label of the period currently being written.
	prevLabel string // Label the next Rotate applies, set by ShouldRoll.
}

// ShouldRoll reports whether the clock left the period the current file
// belongs to. The size argument is ignored; only the calendar matters here.
// On a period change the tracked label advances immediately, so the answer
// flips back to false for every write after the one that triggers the roll.
func (l *Layout) ShouldRoll(_ int64) bool {
	label := l.format(l.now())
	if label == l.lastLabel {
		return false
	}

	l.prevLabel, l.lastLabel = l.lastLabel, label

	return true
}

// ActiveName returns the file writes land in. In AlwaysInclude mode that
// name carries the current period's label; otherwise it is the configured
// name itself.
func (l *Layout) ActiveName(fileName string) string {
	if !l.AlwaysInclude {
		return fileName
	}

	return l.labeledName(fileName, l.lastLabel)
}

// Rotate finalizes the file of the period that just ended: in the default
// mode the closed file is renamed to its period label, in AlwaysInclude mode
// it already carries it. Either way the finalized file is queued for
// compression and the retention window is enforced. Returns the path of the
// finalized file, or empty when nothing was finalized. One period has one
// label, so forcing a second rotation inside the same period replaces that
// period's backup.
func (l *Layout) Rotate(fileName string) (string, error) {
	// A backup label must settle before a rename reuses its name.
	l.Compress.WaitAll()

	// ShouldRoll leaves the closed period's label behind for us. A forced
	// rotation inside one period has no closed period, so the current
	// label applies instead.
	label, rolled := l.prevLabel, l.prevLabel != ""
	l.prevLabel = ""

	if label == "" {
		label = l.lastLabel
	}

	newFile, err := l.finalize(fileName, label, rolled)
	if err != nil {
		return "", err
	}

	l.prune(fileName)

	return newFile, nil
}

func (l *Layout) finalize(fileName, label string, rolled bool) (string, error) {
	newFile := l.labeledName(fileName, label)

	if l.AlwaysInclude {
		// Nothing to rename. A forced rotation inside one period reopens
		// the same file, so only a real period change finalizes anything.
		if !rolled {
			return "", nil
		}

		if _, err := l.Stat(newFile); err != nil {
			return "", nil // the closed period never got a write.
		}

		l.compress(newFile)

		return newFile, nil
	}

	if err := l.Remove(newFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("clearing backup label %s: %w", newFile, err)
	}

	if err := l.Rename(fileName, newFile); err != nil {
		return "", fmt.Errorf("error rotating log: %w", err)
	}

	l.compress(newFile)

	return newFile, nil
}

// Dirs checks our config, translates the date pattern, seeds the period
// label, and returns the folders for the rollerr library to create. The
// label comes from an existing file's modification time, so an app restarted
// after midnight still rotates yesterday's leftover bytes into yesterday's
// label on the first write.
func (l *Layout) Dirs(fileName string) ([]string, error) {
	if l.Filer == nil {
		l.Filer = filer.Default()
	}

	if l.Pattern == "" {
		l.Pattern = DefaultPattern
	}

	l.layout = TranslatePattern(l.Pattern)

	seed := l.now()
	if stat, err := l.Stat(fileName); err == nil {
		seed = stat.ModTime()

		if l.UseUTC {
			seed = seed.UTC()
		}
	}

	l.lastLabel = l.format(seed)

	switch fpath := filepath.Dir(fileName); {
	case l.AlwaysInclude, l.ArchiveDir == "", fpath == l.ArchiveDir:
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

// labeledName builds the path of the file holding one period's bytes.
func (l *Layout) labeledName(fileName, label string) string {
	dir := filepath.Dir(fileName)
	if !l.AlwaysInclude && l.ArchiveDir != "" {
		dir = l.ArchiveDir
	}

	base := filepath.Base(fileName)
	name := base + label

	if ext := filepath.Ext(base); l.KeepExt && ext != "" {
		name = strings.TrimSuffix(base, ext) + label + ext
	}

	return filepath.Join(dir, name)
}

// prune enforces the retention window on rotated files. Best effort: the
// rotation that called us already succeeded.
func (l *Layout) prune(fileName string) {
	if l.MaxAge <= 0 {
		return
	}

	var (
		dir  = filepath.Dir(fileName)
		base = filepath.Base(fileName)
	)

	if !l.AlwaysInclude && l.ArchiveDir != "" {
		dir = l.ArchiveDir
	}

	prefix := base
	if ext := filepath.Ext(base); l.KeepExt && ext != "" {
		prefix = strings.TrimSuffix(base, ext) + "."
	}

	scrub := &pruner.Pruner{
		Filer:  l.Filer,
		Dir:    dir,
		Prefix: prefix,
		MaxAge: l.MaxAge,
		Logf:   l.Logf,
		Now:    l.Now,
	}
	scrub.Prune(l.ActiveName(fileName))
}

// compress queues background compression for a finalized file, when enabled.
func (l *Layout) compress(path string) {
	if l.Compress == nil {
		return
	}

	l.Compress.Background(path, func(report *compressor.Report) {
		compressor.Log(report, l.Logf)
	})
}

// now returns the current policy time, honoring the clock override and the
// UTC setting.
func (l *Layout) now() time.Time {
	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}

	if l.UseUTC {
		now = now.UTC()
	}

	return now
}

// format renders a label for the given instant.
func (l *Layout) format(t time.Time) string {
	if l.layout == "" {
		l.layout = TranslatePattern(DefaultPattern)
	}

	return t.Format(l.layout)
}
