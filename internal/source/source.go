package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/GriffinCanCode/trace2json/internal/domain/calllog"
	"github.com/GriffinCanCode/trace2json/internal/types"
	"go.uber.org/zap"
)

// Options configures a Source
type Options struct {
	// Pattern selects files inside directory inputs, e.g. "*.log*".
	Pattern string
	// Stdin replaces os.Stdin for the "-" input.
	Stdin  io.Reader
	Logger *zap.Logger
}

// Source reads call records from a sequence of files as one stream.
// Files are opened lazily, one at a time.
type Source struct {
	files   []string
	next    int
	current *stream
	reader  *calllog.Reader
	records int

	stdin  io.Reader
	logger *zap.Logger
}

// Open expands inputs and prepares a Source over them. No file is opened
// until the first call to Next.
func Open(ctx context.Context, inputs []string, opts Options) (*Source, error) {
	if len(inputs) == 0 {
		inputs = []string{Stdin}
	}
	if opts.Pattern == "" {
		opts.Pattern = "*"
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	files, err := Expand(ctx, inputs, opts.Pattern)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("inputs expanded", zap.Strings("files", files))
	return &Source{
		files:  files,
		stdin:  opts.Stdin,
		logger: opts.Logger,
	}, nil
}

// Files returns the expanded input list
func (s *Source) Files() []string {
	return s.files
}

// Records returns the number of records read across all files
func (s *Source) Records() int {
	return s.records
}

// Next returns the next record, or io.EOF after the last file
func (s *Source) Next() (types.CallRecord, error) {
	for {
		if s.current == nil {
			if s.next >= len(s.files) {
				return types.CallRecord{}, io.EOF
			}
			if err := s.openNext(); err != nil {
				return types.CallRecord{}, err
			}
		}

		rec, err := s.reader.Next()
		if err == nil {
			s.records++
			return rec, nil
		}
		if !errors.Is(err, io.EOF) {
			return types.CallRecord{}, fmt.Errorf("%s: %w", s.current.name, err)
		}

		s.logger.Debug("input finished",
			zap.String("file", s.current.name),
			zap.Int("records", s.reader.Records()),
		)
		if err := s.closeCurrent(); err != nil {
			return types.CallRecord{}, err
		}
	}
}

func (s *Source) openNext() error {
	name := s.files[s.next]
	s.next++

	st, err := openStream(name, s.stdin)
	if err != nil {
		return err
	}

	s.logger.Debug("input opened",
		zap.String("file", name),
		zap.String("compression", string(st.compression)),
		zap.String("charset", st.charset),
	)
	s.current = st
	s.reader = calllog.NewReader(st.reader)
	return nil
}

func (s *Source) closeCurrent() error {
	if s.current == nil {
		return nil
	}
	err := s.current.Close()
	s.current = nil
	s.reader = nil
	if err != nil {
		return fmt.Errorf("close input: %w", err)
	}
	return nil
}

// Close releases the file being read, if any. Safe to call repeatedly.
func (s *Source) Close() error {
	return s.closeCurrent()
}
