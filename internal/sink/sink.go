package sink

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/GriffinCanCode/trace2json/internal/types"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/multierr"
)

// Stdout is the output name for standard output
const Stdout = "-"

// Compression names an output compression
type Compression string

const (
	CompressionAuto Compression = "auto"
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Options configures a Sink
type Options struct {
	Format      Format
	Compression Compression
	Pretty      bool
	// Stdout replaces os.Stdout for the "-" output.
	Stdout io.Writer
}

// Sink writes emitted trees as a sequence of independent values
type Sink struct {
	name    string
	buf     *bufio.Writer
	enc     encoder
	closers []io.Closer // closed in order after the buffer is flushed
	written int
	closed  bool
}

// Open creates the output at path ("-" for stdout)
func Open(path string, opts Options) (*Sink, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	var (
		out     io.Writer
		closers []io.Closer
	)
	if path == Stdout {
		out = opts.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create output: %w", err)
		}
		out = f
		closers = append(closers, f)
	}

	s, err := newSink(path, out, opts)
	if err != nil {
		for _, c := range closers {
			err = multierr.Append(err, c.Close())
		}
		return nil, err
	}
	s.closers = append(s.closers, closers...)
	return s, nil
}

// New creates a sink over w. Closing the sink does not close w.
func New(w io.Writer, opts Options) (*Sink, error) {
	return newSink("writer", w, opts)
}

func newSink(name string, out io.Writer, opts Options) (*Sink, error) {
	s := &Sink{name: name}

	switch resolveCompression(opts.Compression, name) {
	case CompressionGzip:
		gz := gzip.NewWriter(out)
		s.closers = append(s.closers, gz)
		out = gz
	case CompressionZstd:
		zw, err := zstd.NewWriter(out)
		if err != nil {
			return nil, fmt.Errorf("zstd output: %w", err)
		}
		s.closers = append(s.closers, zw)
		out = zw
	case CompressionNone:
	default:
		return nil, fmt.Errorf("unknown output compression %q", opts.Compression)
	}

	s.buf = bufio.NewWriterSize(out, 64*1024)
	enc, err := newEncoder(opts.Format, s.buf, opts.Pretty)
	if err != nil {
		return nil, err
	}
	s.enc = enc
	return s, nil
}

// resolveCompression maps "auto" to a compression picked from the file
// extension.
func resolveCompression(c Compression, name string) Compression {
	if c != CompressionAuto && c != "" {
		return c
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// Write encodes trees in order
func (s *Sink) Write(trees []*types.TraceTree) error {
	if s.closed {
		return fmt.Errorf("write to closed sink %s", s.name)
	}
	for _, tree := range trees {
		if err := s.enc.Encode(tree); err != nil {
			return err
		}
		s.written++
	}
	return nil
}

// Written returns the number of trees written
func (s *Sink) Written() int {
	return s.written
}

// Close flushes buffered output and closes the compressor and file.
// Every layer is closed even when an earlier one fails.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.buf.Flush()
	for _, c := range s.closers {
		err = multierr.Append(err, c.Close())
	}
	if err != nil {
		return fmt.Errorf("close output %s: %w", s.name, err)
	}
	return nil
}
