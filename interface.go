package rollerr

//go:generate mockgen -destination=mocks/policy.go -package=mocks golift.io/rollerr Policy

import "time"

// Policy decides when the active log file is replaced and what happens to it
// afterward. Two working policies ship with this library: sizeroll renumbers
// integer backups, dateroll stamps backups with a date label. Use those
// directly, or provide your own.
type Policy interface {
	// ShouldRoll is consulted before every write with the number of bytes
	// already in the active file. Returning true runs the full rotation
	// pipeline before the pending chunk is written.
	ShouldRoll(size int64) bool

	// Rotate relocates the just-closed active file and applies any backup
	// bookkeeping (renumbering, labeling, pruning). It is called after the
	// active handle is closed and before a fresh file is opened. The
	// returned path names the newest backup, or "" when this rotation
	// produced none.
	Rotate(fileName string) (newFile string, err error)

	// ActiveName maps the configured path to the path writes actually
	// target. Every policy except dateroll's always-include-pattern mode
	// returns fileName unchanged.
	ActiveName(fileName string) string

	// Dirs is called once on startup. It validates the policy's settings
	// and returns the directories the roller must create.
	Dirs(fileName string) (dirPaths []string, err error)

	// Post is called after a rotation finishes and the new active file is
	// open. It blocks the write path, so long work belongs in a go routine.
	Post(fileName, newFile string)
}

// RotateInfo describes one completed rotation.
type RotateInfo struct {
	// Path is the configured log file path.
	Path string
	// NewFile is the backup produced by this rotation, "" if none.
	NewFile string
	// Size is the byte count of the file that was rotated out.
	Size int64
	// Forced is true for rotations requested through Roller.Rotate.
	Forced bool
	// When the rotation completed.
	When time.Time
}

// Observer receives roller lifecycle events. Every method may be called from
// the roller's worker go routine; implementations must not call back into the
// roller. Embed NopObserver and override what you need.
type Observer interface {
	// OnRotate fires after each completed rotation.
	OnRotate(info RotateInfo)
	// OnError fires for every surfaced error, including those also
	// delivered on the Errors channel.
	OnError(err error)
	// OnClose fires exactly once, after the roller has fully closed.
	OnClose()
	// Debugf receives free-form diagnostic traces.
	Debugf(format string, v ...interface{})
}

// NopObserver ignores every event. It is the default observer and a
// convenient embed for partial implementations.
type NopObserver struct{}

func (NopObserver) OnRotate(RotateInfo)           {}
func (NopObserver) OnError(error)                 {}
func (NopObserver) OnClose()                      {}
func (NopObserver) Debugf(string, ...interface{}) {}

var _ Observer = NopObserver{}
