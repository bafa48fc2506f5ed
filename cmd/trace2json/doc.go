// Package main is the trace2json command.
//
// trace2json reads call logs and writes one JSON document per assembled
// trace.
//
// Configuration:
//   - Environment variables (TRACE2JSON_*)
//   - Optional YAML or TOML file (--config)
//   - CLI flags (override both)
//
// Usage:
//
//	# Plain and compressed logs from a directory, to a gzip file
//	trace2json convert -o traces.json.gz logs/
//
//	# stdin to stdout, waiting one minute past each root before emitting
//	cat calls.log | trace2json convert --readiness-lag 1m
//
//	# Summarize previous output
//	trace2json inspect traces.json.gz
//
// Signals:
//   - SIGINT, SIGTERM: stop reading and close outputs
//
// Logs go to stderr. The exit status is 1 on any error.
package main
