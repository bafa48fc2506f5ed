// Package sink writes finished call trees.
//
// Trees are written as a sequence of independent top-level values, never
// wrapped in an array:
//   - json: one compact document per line (sonic); Pretty indents each
//     document, still newline-separated
//   - msgpack: self-delimiting MessagePack values with the JSON field names
//
// Output may be gzip or zstd compressed; "auto" picks from the file
// extension (.gz, .zst).
//
// Example Usage:
//
//	out, err := sink.Open("traces.json.gz", sink.Options{Format: sink.FormatJSON})
//	if err != nil {
//		return err
//	}
//	defer out.Close()
//	err = out.Write(trees)
package sink
