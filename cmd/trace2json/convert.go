package main

import (
	"fmt"
	"time"

	"github.com/GriffinCanCode/trace2json/internal/infrastructure/config"
	"github.com/GriffinCanCode/trace2json/internal/infrastructure/logging"
	"github.com/GriffinCanCode/trace2json/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type convertFlags struct {
	configFile   string
	output       string
	format       string
	compression  string
	pretty       bool
	readinessLag time.Duration
	pattern      string
	metricsFile  string
	logLevel     string
	logDev       bool
}

func newConvertCmd(a *app) *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert [inputs...]",
		Short: "Convert call logs to JSON traces",
		Long: `Convert reads call records from files, directories or stdin ("-", the default)
and writes every assembled trace to the output. Inputs ending in .gz or .zst,
or sniffed as such, are decompressed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.configFile)
			if err != nil {
				return err
			}
			flags.apply(cmd.Flags(), cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.New(loggerConfig(cfg))
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			a.logger = logger

			runner := pipeline.NewRunner(cfg, logger,
				pipeline.WithStdio(cmd.InOrStdin(), cmd.OutOrStdout()))
			_, err = runner.Convert(cmd.Context(), args)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configFile, "config", "", "YAML or TOML config file")
	f.StringVarP(&flags.output, "output", "o", "-", `output file ("-" for stdout)`)
	f.StringVar(&flags.format, "format", "json", "output format (json|msgpack)")
	f.StringVar(&flags.compression, "compression", "auto", "output compression (auto|none|gzip|zstd)")
	f.BoolVar(&flags.pretty, "pretty", false, "indent JSON output")
	f.DurationVar(&flags.readinessLag, "readiness-lag", 0, "emit a trace only once the watermark is this far past its root")
	f.StringVar(&flags.pattern, "pattern", "*.log*", "file pattern inside directory inputs")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format")
	f.StringVar(&flags.logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	f.BoolVar(&flags.logDev, "log-dev", false, "human readable logs")
	return cmd
}

// loadConfig reads the environment, then overlays the optional file
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// loggerConfig starts from the production or development preset and
// applies the configured level
func loggerConfig(cfg *config.Config) logging.Config {
	lc := logging.DefaultConfig()
	if cfg.Logging.Development {
		lc = logging.DevelopmentConfig()
	}
	lc.Level = cfg.Logging.Level
	return lc
}

// apply copies explicitly set flags over cfg
func (c *convertFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}
	set("output", func() { cfg.Output.Path = c.output })
	set("format", func() { cfg.Output.Format = c.format })
	set("compression", func() { cfg.Output.Compression = c.compression })
	set("pretty", func() { cfg.Output.Pretty = c.pretty })
	set("readiness-lag", func() { cfg.Window.ReadinessLag = config.Duration(c.readinessLag) })
	set("pattern", func() { cfg.Input.Pattern = c.pattern })
	set("metrics-file", func() { cfg.Metrics.File = c.metricsFile })
	set("log-level", func() { cfg.Logging.Level = c.logLevel })
	set("log-dev", func() { cfg.Logging.Development = c.logDev })
}
