package rollerr

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golift.io/rollerr/compressor"
	"golift.io/rollerr/dateroll"
	"golift.io/rollerr/filer"
	"golift.io/rollerr/pruner"
	"golift.io/rollerr/sizeroll"
)

// queueDepth is how many requests may sit in the worker queue before senders
// block. Write callers block on the reply anyway; this mostly pads Enqueue.
const queueDepth = 64

// errorDepth is the Errors channel buffer.
const errorDepth = 16

// Roller is what you get in return for providing a Config. Use this to set
// log output. You must obtain a Roller by calling one of the New() procedures.
type Roller struct {
	config *Config  // incoming configuration.
	policy Policy   // decides when and how the log file rotates.
	obs    Observer // receives lifecycle events.

	filer.Filer // overridable file system procedures.

	queue   chan *request // incoming requests passed across go routines.
	done    chan struct{} // closed first; unblocks senders during shutdown.
	stopped chan struct{} // closed last; the worker go routine is gone.
	errs    chan error    // failures nobody was waiting on.

	mu      sync.RWMutex   // guards closed against late senders.
	closed  bool           // set once a close request reaches the worker.
	senders sync.WaitGroup // callers currently inside send().

	// The fields below belong to the worker go routine alone.
	file       *os.File // the active open file.
	activePath string   // where writes are landing right now.
	size       int64    // the size of the active open file.
	failure    error    // sticky open failure; every later op returns it.

	// Counters are atomic so Stats can snapshot them from any go routine.
	writes    atomic.Int64
	bytes     atomic.Int64
	rotations atomic.Int64
	errCount  atomic.Int64
	queued    atomic.Int64
}

// opKind numbers the request types the worker understands.
type opKind uint8

const (
	opWrite opKind = iota
	opFlush
	opRotate
	opClose
)

// request travels from callers to the worker go routine.
type request struct {
	kind  opKind
	data  []byte
	reply chan *resp // buffered; nil when nobody waits for the outcome.
}

// resp is used to send responses back across our go routines.
type resp struct {
	size int64
	err  error
}

// New takes in your configuration and returns a Roller you can use with
// log.SetOutput(). The returned roller handles rotation, backup bookkeeping,
// and dispatching post-actions like compression. Configuration and file
// open problems are returned here, before the first write can trip on them.
func New(config *Config) (*Roller, error) {
	return newRoller(config, false)
}

// NewMust takes in your configuration and returns a Roller you can use with
// log.SetOutput(). A file system problem during startup does not fail
// construction: the roller starts in its failed state and the error arrives
// on the Errors channel instead. Configuration mistakes still panic.
func NewMust(config *Config) *Roller {
	roller, err := newRoller(config, true)
	if err != nil {
		panic(err)
	}

	return roller
}

func newRoller(config *Config, must bool) (*Roller, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	obs := config.Observer
	if obs == nil {
		obs = NopObserver{}
	}

	files := config.Filer
	if files == nil {
		files = filer.Default()
	}

	roller := &Roller{
		config:  config,
		policy:  policyFromConfig(config),
		obs:     obs,
		Filer:   files,
		queue:   make(chan *request, queueDepth),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		errs:    make(chan error, errorDepth),
	}

	if err := roller.initialize(); err != nil {
		if !must {
			return nil, err
		}

		roller.fail(err)
	}

	go roller.processQueue()

	return roller, nil
}

// policyFromConfig builds the rotation policy the config describes. A set
// DatePattern selects date-labeled backups; anything else gets integer
// ordinals, including a zero MaxBytes which simply never rolls on its own.
func policyFromConfig(config *Config) Policy {
	if config.Policy != nil {
		return config.Policy
	}

	var squash *compressor.Compressor
	if config.Compress {
		squash = compressor.New(nil)
	}

	// Without an observer, compression and retention traces fall through to
	// the standard logger, which usually means the log file itself.
	var logf func(msg string, v ...any)
	if config.Observer != nil {
		logf = config.Observer.Debugf
	}

	if config.DatePattern != "" {
		return &dateroll.Layout{
			ArchiveDir:    config.ArchiveDir,
			Pattern:       config.DatePattern,
			AlwaysInclude: config.AlwaysIncludePattern,
			KeepExt:       config.KeepFileExt,
			MaxAge:        time.Duration(config.DaysToKeep) * pruner.Day,
			UseUTC:        config.UseUTC,
			Compress:      squash,
			Logf:          logf,
			Filer:         config.Filer,
		}
	}

	return &sizeroll.Layout{
		ArchiveDir: config.ArchiveDir,
		MaxBytes:   int64(config.MaxBytes),
		Backups:    config.backups(),
		KeepExt:    config.KeepFileExt,
		Compress:   squash,
		Logf:       logf,
		Filer:      config.Filer,
	}
}

// initialize validates the policy, creates its directories, and opens the
// log file, so problems surface before the first write.
func (l *Roller) initialize() error {
	dirs, err := l.policy.Dirs(l.config.Filename)
	if err != nil {
		return fmt.Errorf("validating rotation policy: %w", err)
	}

	for _, dir := range dirs {
		if err := l.MkdirAll(dir, l.config.DirMode); err != nil {
			return &OpenError{Path: dir, Err: err}
		}
	}

	return l.openFile()
}

// processQueue runs in a go routine and reads the incoming request channel.
// Writes, flushes, forced rotations, and shutdown all pass through here, one
// at a time, which is what makes byte order across rotations total.
// Everything except specific background actions (compression?) happens in
// this one go routine.
func (l *Roller) processQueue() {
	for req := range l.queue {
		switch req.kind {
		case opWrite:
			l.handleWrite(req)
		case opFlush:
			req.reply <- &resp{err: l.flush()}
		case opRotate:
			size, err := l.rotate(true)
			req.reply <- &resp{size: size, err: err}
		case opClose:
			l.shutdown(req)

			return
		}
	}
}

// openFile opens the file writes land in, creating missing directories and
// seeding the size counter from whatever bytes are already there. In
// truncate mode the counter starts at zero.
func (l *Roller) openFile() error {
	fpath := l.policy.ActiveName(l.config.Filename)

	if err := l.MkdirAll(filepath.Dir(fpath), l.config.DirMode); err != nil {
		return &OpenError{Path: fpath, Err: err}
	}

	flags := l.config.openFlags()
	l.size = 0

	if info, err := l.Stat(fpath); err == nil && flags&os.O_APPEND != 0 {
		l.size = info.Size()
	}

	file, err := l.OpenFile(fpath, flags, l.config.FileMode)
	if err != nil {
		return &OpenError{Path: fpath, Err: err}
	}

	l.file, l.activePath = file, fpath

	return nil
}

// Write sends one chunk through the roller and waits for it to land in the
// log file. This satisfies the io.Writer interface so a *Roller can be
// handed straight to log.SetOutput(). Chunks are written whole, in arrival
// order, across any rotation that happens between them.
func (l *Roller) Write(b []byte) (int, error) {
	l.queued.Add(int64(len(b)))

	req := &request{kind: opWrite, data: b, reply: make(chan *resp, 1)}
	if err := l.send(req); err != nil {
		l.queued.Add(-int64(len(b)))

		return 0, err
	}

	reply := <-req.reply

	return int(reply.size), reply.err
}

// Enqueue queues one chunk and returns without waiting for the write. The
// chunk is copied, so the caller may reuse b immediately. The returned hint
// is true while the backlog is healthy; false means more than MaxQueueBytes
// are waiting (or the roller is closed) and the caller should ease off.
// Accepted chunks are never dropped, and their write errors show up on the
// Errors channel instead of a return value.
func (l *Roller) Enqueue(b []byte) bool {
	data := make([]byte, len(b))
	copy(data, b)

	backlog := l.queued.Add(int64(len(data)))

	if err := l.send(&request{kind: opWrite, data: data}); err != nil {
		l.queued.Add(-int64(len(data)))

		return false
	}

	return backlog <= int64(l.config.MaxQueueBytes)
}

// handleWrite dispatches one queued chunk and routes the outcome: a waiting
// caller gets a reply, fire-and-forget write failures go to Errors.
func (l *Roller) handleWrite(req *request) {
	size, err := l.write(req.data)
	l.queued.Add(-int64(len(req.data)))

	if req.reply != nil {
		req.reply <- &resp{int64(size), err}

		return
	}

	var werr *WriteError
	if errors.As(err, &werr) {
		l.emit(werr)
	}
}

// write appends one chunk to the log file after everything checks out - from
// a channel message. The policy is consulted with the current file size, so
// a chunk may carry the file past the threshold and only the next write
// triggers the roll.
func (l *Roller) write(b []byte) (int, error) {
	if l.failure != nil {
		return 0, l.failure
	}

	if l.file == nil {
		if err := l.openFile(); err != nil {
			l.fail(err)

			return 0, err
		}
	}

	if l.policy.ShouldRoll(l.size) {
		if _, err := l.rotate(false); err != nil {
			return 0, err
		}
	}

	size, err := l.file.Write(b)
	l.size += int64(size)
	l.writes.Add(1)
	l.bytes.Add(int64(size))

	if err != nil {
		werr := &WriteError{Path: l.activePath, Err: err}
		l.errCount.Add(1)
		l.obs.OnError(werr)

		return size, werr
	}

	return size, nil
}

// Flush blocks until every chunk queued before it is written, then forces
// the file's buffers to stable storage.
func (l *Roller) Flush() error {
	req := &request{kind: opFlush, reply: make(chan *resp, 1)}
	if err := l.send(req); err != nil {
		return err
	}

	return (<-req.reply).err
}

// flush pushes buffered bytes to stable storage - from a channel message.
func (l *Roller) flush() error {
	if l.failure != nil {
		return l.failure
	}

	if l.file == nil {
		return nil
	}

	if err := l.file.Sync(); err != nil {
		werr := &WriteError{Path: l.activePath, Err: err}
		l.errCount.Add(1)
		l.obs.OnError(werr)

		return werr
	}

	return nil
}

// Rotate forces the log to rotate immediately. Returns the size of the rotated log.
func (l *Roller) Rotate() (int64, error) {
	req := &request{kind: opRotate, reply: make(chan *resp, 1)}
	if err := l.send(req); err != nil {
		return 0, err
	}

	reply := <-req.reply

	return reply.size, reply.err
}

// rotate runs the rotation pipeline - from a channel message. The steps are
// strictly ordered: close the active handle, let the policy relocate the
// file, reopen a fresh one. A failure in the first two steps leaves the
// handle closed and the next write reopens and retries; a failed reopen is
// the one thing this library cannot work around, so it parks the roller in
// its failed state. The policy's Post hook fires on the way out, once the
// new file is open.
func (l *Roller) rotate(forced bool) (int64, error) {
	if l.failure != nil {
		return 0, l.failure
	}

	size := l.size

	if err := l.close(); err != nil {
		rerr := &RotationError{Step: "close", Err: err}
		l.report(rerr)

		return size, rerr
	}

	newFile, err := l.policy.Rotate(l.config.Filename)
	if newFile != "" {
		defer l.policy.Post(l.config.Filename, newFile)
	}

	if err != nil {
		rerr := &RotationError{Step: "rotate", Err: err}
		l.report(rerr)

		return size, rerr
	}

	if err := l.openFile(); err != nil {
		l.fail(err)

		return size, err
	}

	l.rotations.Add(1)
	l.obs.OnRotate(RotateInfo{
		Path:    l.config.Filename,
		NewFile: newFile,
		Size:    size,
		Forced:  forced,
		When:    time.Now(),
	})

	return size, nil
}

// Close writes everything still queued, closes the active log file, and
// stops the worker go routine. Further operations return ErrClosed.
func (l *Roller) Close() error {
	return l.CloseWith(nil)
}

// CloseWith is Close with a final chunk. The chunk goes through the same
// pipeline as any other write, so it waits its turn behind the queue and may
// itself trigger one last rotation before the file closes.
func (l *Roller) CloseWith(final []byte) error {
	req := &request{kind: opClose, data: final, reply: make(chan *resp, 1)}
	if err := l.send(req); err != nil {
		return err
	}

	return (<-req.reply).err
}

// close closes the active log file - from a channel message.
func (l *Roller) close() error {
	if l.file == nil {
		return nil
	}

	err := l.file.Close()
	l.file = nil

	if err != nil {
		return fmt.Errorf("closing log file %s: %w", l.activePath, err)
	}

	return nil
}

// shutdown winds the worker down - from a channel message. The final chunk,
// if one was provided, is written first and may still trigger a rotation.
// Anything that slipped into the queue behind the close request is refused
// with ErrClosed.
func (l *Roller) shutdown(req *request) {
	var closeErr error

	if req.data != nil {
		if _, err := l.write(req.data); err != nil {
			closeErr = err
		}
	}

	if err := l.close(); err != nil && closeErr == nil {
		closeErr = err
	}

	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	close(l.done)
	l.senders.Wait()

	for {
		select {
		case late := <-l.queue:
			l.refuse(late)
		default:
			l.obs.OnClose()
			close(l.stopped)
			req.reply <- &resp{err: closeErr}

			return
		}
	}
}

// refuse answers a request that arrived behind the close request with
// ErrClosed. Queued-byte accounting is unwound so Stats stays truthful.
func (l *Roller) refuse(req *request) {
	if req.kind == opWrite {
		l.queued.Add(-int64(len(req.data)))
	}

	if req.reply != nil {
		req.reply <- &resp{err: ErrClosed}
	}
}

// send hands one request to the worker go routine. Senders register in a
// wait group under the read lock, so shutdown can wait for every caller
// that saw the roller open, then sweep the queue they may have filled.
func (l *Roller) send(req *request) error {
	l.mu.RLock()

	if l.closed {
		l.mu.RUnlock()

		return ErrClosed
	}

	l.senders.Add(1)
	l.mu.RUnlock()

	defer l.senders.Done()

	select {
	case l.queue <- req:
		return nil
	case <-l.done:
		return ErrClosed
	}
}

// fail parks the roller in its failed state. Opening the log file is the one
// thing this library cannot work around, so the error sticks and every
// later operation returns it.
func (l *Roller) fail(err error) {
	l.failure = err
	l.report(err)
}

// report counts an error, hands it to the observer, and offers it to the
// Errors channel.
func (l *Roller) report(err error) {
	l.errCount.Add(1)
	l.obs.OnError(err)
	l.emit(err)
}

// emit offers an error to the Errors channel without ever blocking the
// worker. When nobody reads the channel and the buffer fills, the error is
// dropped; the counters still record it.
func (l *Roller) emit(err error) {
	select {
	case l.errs <- err:
	default:
	}
}

// Errors delivers failures that have no caller waiting on them: rotation
// problems, open failures, and bad writes queued with Enqueue. The channel
// is never closed. Drain it from one place, or ignore it entirely.
func (l *Roller) Errors() <-chan error {
	return l.errs
}

// Done is closed once the roller has fully shut down and the worker go
// routine has exited. Useful for gating program exit on the final write.
func (l *Roller) Done() <-chan struct{} {
	return l.stopped
}

// Stats is a point-in-time snapshot of the roller's counters.
type Stats struct {
	Writes    int64 // chunks handed to the OS, failed attempts included.
	Bytes     int64 // bytes confirmed written to the active file.
	Rotations int64 // completed rotations, forced ones included.
	Errors    int64 // errors of every kind, surfaced anywhere.
	Queued    int64 // bytes accepted but not yet written.
}

// Stats returns a snapshot of the roller's counters. Safe to call from any
// go routine at any time.
func (l *Roller) Stats() Stats {
	return Stats{
		Writes:    l.writes.Load(),
		Bytes:     l.bytes.Load(),
		Rotations: l.rotations.Load(),
		Errors:    l.errCount.Load(),
		Queued:    l.queued.Load(),
	}
}

// Both bundled layouts must satisfy the Policy interface.
var (
	_ Policy = (*sizeroll.Layout)(nil)
	_ Policy = (*dateroll.Layout)(nil)
)

// Our interface must satify an io.WriteCloser.
var _ io.WriteCloser = (*Roller)(nil)
