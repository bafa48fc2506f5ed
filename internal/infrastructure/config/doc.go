// Package config loads trace2json configuration.
//
// Sources, later ones winning:
//   - Struct defaults (envconfig "default" tags)
//   - Environment variables (TRACE2JSON_*)
//   - A YAML or TOML file passed with --config
//   - Command-line flags
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err == nil && path != "" {
//		err = config.LoadFile(path, cfg)
//	}
//	if err == nil {
//		err = cfg.Validate()
//	}
package config
