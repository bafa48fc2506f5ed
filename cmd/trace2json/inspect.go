package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/GriffinCanCode/trace2json/internal/inspect"
	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type inspectPayload struct {
	Traces       int            `json:"traces"`
	Spans        int            `json:"spans"`
	MaxDepth     int            `json:"max_depth"`
	Services     map[string]int `json:"services"`
	DuplicateIDs []string       `json:"duplicate_ids,omitempty"`
}

func newInspectCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Summarize converted JSON output",
		Long: `Inspect reads compact JSON output (one document per line) from a file or
stdin ("-", the default). Files ending in .gz or .zst are decompressed.
Output written with --pretty or --format msgpack cannot be inspected.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "-"
			if len(args) == 1 {
				name = args[0]
			}

			r, closeInput, err := openOutput(name, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer closeInput()

			report, err := inspect.Scan(r)
			if errors.Is(err, inspect.ErrInvalidDocument) {
				return fmt.Errorf("inspect %s: %w (want compact JSON, one document per line)", name, err)
			}
			if err != nil {
				return fmt.Errorf("inspect %s: %w", name, err)
			}
			a.logger.Debug("inspected", zap.String("file", name), zap.Int("traces", report.Traces))

			out := cmd.OutOrStdout()
			if asJSON {
				return renderInspectJSON(out, report)
			}
			renderInspectPretty(out, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

// openOutput opens a converter output, decompressing by extension
func openOutput(name string, stdin io.Reader) (io.Reader, func(), error) {
	if name == "-" {
		return stdin, func() {}, nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("gzip %s: %w", name, err)
		}
		return gz, func() { gz.Close(); f.Close() }, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("zstd %s: %w", name, err)
		}
		return zr, func() { zr.Close(); f.Close() }, nil
	}
	return f, func() { f.Close() }, nil
}

func renderInspectJSON(w io.Writer, report inspect.Report) error {
	data, err := sonic.MarshalIndent(inspectPayload{
		Traces:       report.Traces,
		Spans:        report.Spans,
		MaxDepth:     report.MaxDepth,
		Services:     report.Services,
		DuplicateIDs: report.DuplicateIDs,
	}, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func renderInspectPretty(w io.Writer, report inspect.Report) {
	fmt.Fprintf(w, "traces:    %d\n", report.Traces)
	fmt.Fprintf(w, "spans:     %d\n", report.Spans)
	fmt.Fprintf(w, "max depth: %d\n", report.MaxDepth)
	if len(report.DuplicateIDs) > 0 {
		fmt.Fprintf(w, "duplicate trace ids: %s\n", strings.Join(report.DuplicateIDs, ", "))
	}
	fmt.Fprintln(w, "services:")
	for _, name := range report.ServiceNames() {
		label := name
		if label == "" {
			label = "(none)"
		}
		fmt.Fprintf(w, "  %-20s %d\n", label, report.Services[name])
	}
}
