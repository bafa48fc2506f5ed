package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show build information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "trace2json %s\n", version)
			if !full {
				return
			}
			if gitCommit != "" {
				fmt.Fprintf(out, "commit: %s\n", gitCommit)
			}
			if buildDate != "" {
				fmt.Fprintf(out, "built:  %s\n", buildDate)
			}
			fmt.Fprintf(out, "go:     %s\n", runtime.Version())
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "include commit, build date and Go version")
	return cmd
}
