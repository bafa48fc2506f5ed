// Package source turns input paths into a single stream of call records.
//
// Inputs:
//   - "-": standard input
//   - a glob, expanded with doublestar ("logs/**/*.log")
//   - a directory, walked with fastwalk for files matching a pattern
//   - a plain file
//
// Each file is sniffed before reading: gzip and zstd streams are
// decompressed transparently, and UTF-16/UTF-32 text is rejected with
// ErrUnsupportedEncoding since the call log format is ASCII.
//
// Example Usage:
//
//	src, err := source.Open(ctx, []string{"logs/"}, source.Options{Pattern: "*.log*"})
//	if err != nil {
//		return err
//	}
//	defer src.Close()
//	rec, err := src.Next()
package source
