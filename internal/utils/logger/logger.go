// Package logger provides a global logger for the application
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// Options carries the level overrides parsed from the command line.
type Options struct {
	Environment string
	Debug       bool
	Trace       bool
	Info        bool
	// Out defaults to stderr.
	Out io.Writer
}

// Level resolves the effective log level. Flags win over the environment,
// and debug wins over trace which wins over info.
func (o Options) Level() zerolog.Level {
	switch {
	case o.Debug:
		return zerolog.DebugLevel
	case o.Trace:
		return zerolog.TraceLevel
	case o.Info:
		return zerolog.InfoLevel
	}
	switch environmentOf(o) {
	case "dev", "test":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

func environmentOf(o Options) string {
	environment := strings.ToLower(o.Environment)
	if environment == "" {
		environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	}
	if environment == "" {
		environment = "prod"
	}
	return environment
}

// Init sets up the global zerolog logger with console output and tags every
// record with a fresh run_id, which it returns.
// Example usage:
//
//	runID := logger.Init(logger.Options{Debug: debugFlag}) <- inside the cobra PersistentPreRun
func Init(o Options) string {
	out := o.Out
	if out == nil {
		out = os.Stderr
	}
	runID := uuid.NewString()

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).
		With().
		Timestamp().
		Caller().
		Str("run_id", runID).
		Logger()

	environment := environmentOf(o)
	switch environment {
	case "dev", "test", "prod":
	default:
		log.Warn().Str("environment", environment).Msg("Unknown environment - defaulting to production log level (info and above)")
	}

	level := o.Level()
	zerolog.SetGlobalLevel(level)
	log.Debug().Str("environment", environment).Str("level", level.String()).Msg("logger initialised")
	return runID
}
