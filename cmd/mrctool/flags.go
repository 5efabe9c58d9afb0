package main

import (
	"os"

	"github.com/urfave/cli/v3"

	"github.com/emtools/mrcio/internal/logger"
	"github.com/emtools/mrcio/pkg/mrc"
)

var (
	logLevel  string
	logFormat string
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "warn",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (text, json)",
			Value:       "text",
			Destination: &logFormat,
		},
	}
}

func newLogger() logger.Logger {
	level := logger.ParseLevel(logLevel)
	if logFormat == "json" {
		return logger.JSON(os.Stderr, level)
	}
	return logger.Text(os.Stderr, level)
}

// newCodec binds the configured logger into a codec so format diagnostics
// surface through the same channel as tool logging.
func newCodec(log logger.Logger) *mrc.Codec {
	return &mrc.Codec{Log: log.Slog()}
}
