// Package pruner enforces a retention window on rotated log files. It backs
// the daysToKeep setting: after a rotation, backups whose modification time
// fell out of the window get deleted. The active log file is never touched.
package pruner

import (
	"path/filepath"
	"strings"
	"time"

	"golift.io/rollerr/filer"
)

// Day is the unit daysToKeep settings are multiplied by.
const Day = 24 * time.Hour

// Pruner deletes rotated log files once they outlive MaxAge. Every problem
// along the way is reported to Logf and skipped; a Pruner never fails the
// rotation that invoked it.
type Pruner struct {
	filer.Filer

	Dir    string        // Directory holding the rotated files.
	Prefix string        // Candidate files must start with this.
	MaxAge time.Duration // Files modified longer ago than this are removed.
	// Logf receives scan and delete failures. nil discards them.
	Logf func(msg string, v ...any)
	// Now overrides the clock. Tests set this; nil means time.Now.
	Now func() time.Time
}

// Prune deletes every file in Dir that matches Prefix and was last modified
// before the retention cutoff. The activeFile is skipped no matter how old
// it is. Returns the number of files removed.
func (p *Pruner) Prune(activeFile string) int {
	if p.MaxAge <= 0 {
		return 0
	}

	if p.Filer == nil {
		p.Filer = filer.Default()
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	files, err := p.ReadDir(p.Dir)
	if err != nil {
		p.logf("retention scan of %s failed: %v", p.Dir, err)

		return 0
	}

	var (
		cutoff  = now().Add(-p.MaxAge)
		removed int
	)

	for _, file := range files {
		name := file.Name()
		if file.IsDir() || !strings.HasPrefix(name, p.Prefix) {
			continue
		}

		path := filepath.Join(p.Dir, name)
		if path == activeFile || name == filepath.Base(activeFile) {
			continue // never the live log.
		}

		if !file.ModTime().Before(cutoff) {
			continue
		}

		if err := p.Remove(path); err != nil {
			p.logf("retention delete of %s failed: %v", path, err)

			continue
		}

		removed++
	}

	return removed
}

func (p *Pruner) logf(msg string, v ...any) {
	if p.Logf != nil {
		p.Logf(msg, v...)
	}
}
