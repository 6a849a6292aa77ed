// Package main provides the CLI entry point for xltable-go.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ukaji3/xltable-go/internal/config"
	"github.com/ukaji3/xltable-go/internal/logging"
	"github.com/ukaji3/xltable-go/pkg/xltable"
)

// cli holds the flags shared by every command.
type cli struct {
	cfg        config.Config
	logLevel   string
	logFormat  string
	dateLayout string
	appendOnly bool
	logger     zerolog.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}
	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	c := &cli{cfg: cfg, logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "xltable",
		Short: "Read and edit Excel worksheets as tables",
		Long: `xltable-go projects the worksheets of an xlsx file into tables of resolved
values, reads and writes single cells by address, and outputs JSON.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.logger = logging.SetupWriter(cmd.ErrOrStderr(), c.logLevel, c.logFormat)
			if c.cfg.EnvFileLoaded {
				c.logger.Debug().Msg("loaded environment variables from .env file")
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.logLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error, disabled")
	flags.StringVar(&c.logFormat, "log-format", cfg.LogFormat, "Log format: console or json")
	flags.StringVar(&c.dateLayout, "date-layout", cfg.DateLayout, "Go time layout for date cells (default: 2006/1/2 15:04:05)")
	flags.BoolVar(&c.appendOnly, "append-only", cfg.AppendOnly, "Append new rows and cells instead of inserting them in order")

	rootCmd.AddCommand(
		newDumpCmd(c),
		newGetCmd(c),
		newSetCmd(c),
		newDeleteSheetCmd(c),
		newDescribeCmd(c),
	)
	return rootCmd
}

func (c *cli) options(writable bool) xltable.Options {
	return xltable.Options{
		Writable:   writable,
		DateLayout: c.dateLayout,
		AppendOnly: c.appendOnly,
		Logger:     &c.logger,
	}
}
