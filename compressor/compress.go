// Package compressor shrinks finished log files after rotation. A Compressor
// tracks every file it is working on, so rotation policies can wait for a
// backup slot to settle before renaming over it.
package compressor

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"golift.io/rollerr/filer"
)

// Report contains a report of the compression operation.
// Always check for Error to make sure the New* data is valid.
type Report struct {
	OldFile string
	NewFile string
	OldSize int64
	NewSize int64
	Elapsed time.Duration
	Error   error
}

// Compressor runs compressions and remembers which files are in flight. The
// zero value compresses with gzip using os-backed file procedures.
type Compressor struct {
	Codec Codec       // nil means Gzip at the default level.
	Filer filer.Filer // nil means the os-backed default.

	mu       sync.Mutex
	inflight map[string]chan struct{}
}

// New returns a Compressor using the provided codec. Pass nil for gzip.
func New(codec Codec) *Compressor {
	return &Compressor{Codec: codec}
}

// Ext returns the suffix the configured codec appends to compressed files.
// Safe on a nil Compressor, which reports the gzip suffix.
func (c *Compressor) Ext() string {
	if c == nil || c.Codec == nil {
		return SuffixGZ
	}

	return c.Codec.Ext()
}

// Compress encodes a file and returns a report. Blocks until finished, and
// until any earlier run against the same file finishes.
func (c *Compressor) Compress(fileName string) (*Report, error) {
	prev, done := c.enqueue(fileName)
	defer c.release(fileName, done)

	if prev != nil {
		<-prev
	}

	return c.run(fileName)
}

// Background runs a file compression in the background. The file is claimed
// before Background returns, so a Wait or WaitAll that starts afterward
// blocks until this run finishes. Runs against the same file execute in the
// order they were queued. A report is sent to the provided callback
// function, if any, when compression finishes.
func (c *Compressor) Background(fileName string, callback func(report *Report)) {
	prev, done := c.enqueue(fileName)

	go func() {
		defer c.release(fileName, done)

		if prev != nil {
			<-prev
		}

		report, _ := c.run(fileName)

		if callback != nil {
			callback(report)
		}
	}()
}

// Wait blocks until the in-flight compression of fileName finishes. Returns
// immediately when nothing is running for that file. Safe on nil.
func (c *Compressor) Wait(fileName string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	done, ok := c.inflight[fileName]
	c.mu.Unlock()

	if ok {
		<-done
	}
}

// WaitAll blocks until every in-flight compression finishes. Safe on nil.
func (c *Compressor) WaitAll() {
	if c == nil {
		return
	}

	c.mu.Lock()
	pending := make([]chan struct{}, 0, len(c.inflight))

	for _, done := range c.inflight {
		pending = append(pending, done)
	}
	c.mu.Unlock()

	for _, done := range pending {
		<-done
	}
}

// enqueue chains a new run onto fileName. The returned prev channel, when
// not nil, is the run already holding the file; the caller must wait on it
// before touching the file. The map always holds the newest link, so waiters
// observe the whole chain.
func (c *Compressor) enqueue(fileName string) (prev, done chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight == nil {
		c.inflight = make(map[string]chan struct{})
	}

	prev = c.inflight[fileName]
	done = make(chan struct{})
	c.inflight[fileName] = done

	return prev, done
}

func (c *Compressor) release(fileName string, done chan struct{}) {
	c.mu.Lock()
	// A later run may have replaced our link already.
	if c.inflight[fileName] == done {
		delete(c.inflight, fileName)
	}
	c.mu.Unlock()
	close(done)
}

// run produces the report for one compression. The caller holds the claim.
func (c *Compressor) run(fileName string) (*Report, error) {
	codec, files := c.Codec, c.Filer
	if codec == nil {
		codec = Gzip{}
	}

	if files == nil {
		files = filer.Default()
	}

	report := &Report{
		OldFile: fileName,
		NewFile: fileName + codec.Ext(),
		OldSize: 0,
		NewSize: 0,
		Error:   nil,
		Elapsed: 0,
	}

	oldFile, err := files.Stat(report.OldFile)
	if report.Error = err; report.Error != nil {
		return report, fmt.Errorf("stating old file: %w", report.Error)
	}

	report.OldSize = oldFile.Size()
	start := time.Now()
	report.NewSize, report.Error = encode(codec, files, report.OldFile, report.NewFile, oldFile.Mode())
	report.Elapsed = time.Since(start)

	if report.Error != nil {
		return report, fmt.Errorf("compressor error: %w", report.Error)
	}

	return report, nil
}

// Log sends a report to a custom procedure.
func Log(report *Report, printf func(msg string, fmt ...any)) {
	if printf == nil {
		printf = log.Printf
	}

	const kilobyte = 1024

	if report.Error != nil {
		printf("Compression Error after %v: %v", report.Elapsed.Round(time.Second), report.Error)
	} else {
		printf("Compression Finished in %v: %s/%dkB -> %s/%dkB", report.Elapsed.Round(time.Second),
			report.OldFile, report.OldSize/kilobyte, report.NewFile, report.NewSize/kilobyte)
	}
}

// encode does the "hard" work: open the old file, open the new file, wrap it
// in the codec's encoder, copy everything across, close all open handles, and
// lastly delete one of the two files. The old file is removed only after the
// encoder closed cleanly; any failure removes the partial new file instead,
// so a crash mid-compression never leaves both files gone.
func encode(codec Codec, files filer.Filer, oldFile, newFile string, mode os.FileMode) (size int64, err error) {
	var src, dst *os.File

	defer func() { // First, so it executes last.
		if err != nil {
			_ = files.Remove(newFile)
		} else {
			_ = files.Remove(oldFile)
		}
	}()

	src, err = files.OpenFile(oldFile, os.O_RDONLY, 0)
	if err != nil {
		return 0, fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	dst, err = files.OpenFile(newFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return 0, fmt.Errorf("opening compressed file: %w", err)
	}

	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", newFile, cerr)
		}
		// Set size of new file.
		if fileStat, serr := files.Stat(newFile); serr == nil {
			size = fileStat.Size()
		}
	}()

	encoder, err := codec.NewWriter(dst)
	if err != nil {
		return 0, err
	}

	defer func() {
		if cerr := encoder.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("finalizing %s: %w", newFile, cerr)
		}
	}()

	size, err = io.Copy(encoder, src)
	if err != nil {
		return size, fmt.Errorf("%s -> %s: %w", oldFile, newFile, err)
	}

	return size, nil
}
