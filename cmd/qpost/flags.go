package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/quantforge/qpost/internal/logger"
)

var (
	graphPath string
	logLevel  string
	logFormat string
)

func commonGraphFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "graph",
			Aliases:     []string{"g"},
			Usage:       "path to traced simfile JSON",
			Destination: &graphPath,
		},
	}
}

func commonLogFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, text, json)",
			Value:       "pretty",
			Destination: &logFormat,
		},
	}
}

// buildLogger constructs the process logger from the log flags.
func buildLogger() logger.Logger {
	level := logger.ParseLevel(logLevel)
	switch logFormat {
	case "json":
		return logger.JSON(os.Stderr, level)
	case "text":
		return logger.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	default:
		return logger.Pretty(os.Stderr, level)
	}
}
