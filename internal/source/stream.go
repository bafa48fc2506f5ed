package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/saintfish/chardet"
	"go.uber.org/multierr"
)

// ErrUnsupportedEncoding is returned for inputs that are not ASCII-compatible
var ErrUnsupportedEncoding = errors.New("unsupported input encoding")

// sniffSize is the amount of data inspected to detect compression and charset
const sniffSize = 3072

// Compression names a detected stream compression
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// stream is one opened input with its decompression layers
type stream struct {
	name        string
	reader      io.Reader
	compression Compression
	charset     string
	closers     []io.Closer // innermost last
}

func (s *stream) Close() error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.closers[i].Close())
	}
	s.closers = nil
	return err
}

// openStream opens name (or stdin) and layers decompression and charset
// checks over it.
func openStream(name string, stdin io.Reader) (_ *stream, err error) {
	s := &stream{name: name, compression: CompressionNone}
	defer func() {
		if err != nil {
			err = multierr.Append(err, s.Close())
		}
	}()

	var raw io.Reader
	if name == Stdin {
		raw = stdin
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, f)
		raw = f
	}

	buffered := bufio.NewReaderSize(raw, 64*1024)
	head, err := peek(buffered)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	var plain io.Reader = buffered
	mtype := mimetype.Detect(head)
	switch {
	case mtype.Is("application/gzip"):
		gz, err := gzip.NewReader(buffered)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", name, err)
		}
		s.closers = append(s.closers, gz)
		s.compression = CompressionGzip
		plain = gz
	case mtype.Is("application/zstd"):
		dec, err := zstd.NewReader(buffered)
		if err != nil {
			return nil, fmt.Errorf("zstd %s: %w", name, err)
		}
		rc := dec.IOReadCloser()
		s.closers = append(s.closers, rc)
		s.compression = CompressionZstd
		plain = rc
	}

	text := bufio.NewReaderSize(plain, 64*1024)
	head, err = peek(text)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", name, err)
	}
	if len(head) > 0 {
		if best, derr := chardet.NewTextDetector().DetectBest(head); derr == nil {
			s.charset = best.Charset
			if strings.HasPrefix(best.Charset, "UTF-16") || strings.HasPrefix(best.Charset, "UTF-32") {
				return nil, fmt.Errorf("%s is %s: %w", name, best.Charset, ErrUnsupportedEncoding)
			}
		}
	}

	s.reader = text
	return s, nil
}

// peek returns up to sniffSize bytes without consuming them. A short
// input is not an error.
func peek(r *bufio.Reader) ([]byte, error) {
	head, err := r.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}
	return head, nil
}
