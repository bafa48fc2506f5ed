package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/trace2json/internal/infrastructure/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Set with -ldflags "-X main.version=..."
var (
	version   = "dev"
	gitCommit = ""
	buildDate = ""
)

// app carries state shared by subcommands
type app struct {
	logger *logging.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "trace2json",
		Short:         "Assemble call logs into JSON call trees",
		Long:          `trace2json groups call records by trace id, links every span to its caller and writes each finished trace as a JSON document.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(newConvertCmd(a))
	root.AddCommand(newInspectCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

func main() {
	a := &app{logger: logging.NewDefault()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(a).ExecuteContext(ctx)
	stop()

	if err != nil {
		a.logger.Error("command failed", zap.Error(err))
		a.logger.Close()
		os.Exit(1)
	}
	a.logger.Close()
}
