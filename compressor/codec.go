package compressor

import (
	"fmt"
	"io"
	"reflect"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
)

// SuffixGZ is appended to a fileName to make the new gzip file name.
const SuffixGZ = ".gz"

// SuffixSZ is appended to a fileName to make the new snappy file name.
const SuffixSZ = ".sz"

// Codec turns a plain byte stream into a compressed one. Implementations
// must produce a complete stream once Close returns nil.
type Codec interface {
	// Ext returns the suffix for files this codec writes, with the dot.
	Ext() string
	// NewWriter wraps w with an encoder. Closing the encoder flushes and
	// finalizes the stream; it does not close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)
}

// Gzip encodes with the gzip format. The zero value compresses at
// gzip.DefaultCompression; set Level to change it. Out-of-range levels
// fall back to the default.
type Gzip struct {
	Level int
}

// Ext returns ".gz".
func (g Gzip) Ext() string { return SuffixGZ }

// NewWriter returns a gzip encoder wrapping w.
func (g Gzip) NewWriter(w io.Writer) (io.WriteCloser, error) {
	level := g.Level
	if level == 0 || level < gzip.HuffmanOnly || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}

	encoder, err := gzip.NewWriterLevel(w, level)
	if err != nil {
		return nil, fmt.Errorf("creating gzip writer: %w", err)
	}

	encoder.Comment = reflect.TypeOf(g).PkgPath()

	return encoder, nil
}

// Snappy encodes with the framed snappy format. Faster than gzip with a
// lower compression ratio.
type Snappy struct{}

// Ext returns ".sz".
func (s Snappy) Ext() string { return SuffixSZ }

// NewWriter returns a framed snappy encoder wrapping w.
func (s Snappy) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return snappy.NewBufferedWriter(w), nil
}
