package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	logJSON  bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ellabb",
		Short:         "Didactic electrical-circuit network-resolution engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit structured JSON logs instead of console output")

	cmd.AddCommand(newSimulateCmd())
	cmd.AddCommand(newMeasureCmd())
	cmd.AddCommand(newSavesCmd())
	return cmd
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if logJSON {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return logger.Level(level)
}
