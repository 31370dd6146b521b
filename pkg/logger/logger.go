// Package logger wraps a process-wide zerolog logger. Request handlers carry
// a derived logger on the context; everything else logs through Get or
// Component.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "orderflow"

// log is silent until Init.
var log zerolog.Logger

type ctxKey struct{}

// Init configures the global logger. Development environments get a
// colourised console writer; anything else writes JSON lines to stdout.
func Init(env string, logLevel string) {
	var output io.Writer = os.Stdout
	if isDevelopment(env) {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}
	setup(output, logLevel)
}

func setup(output io.Writer, logLevel string) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(logLevel)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log = zerolog.New(output).
		With().
		Timestamp().
		Str("service", serviceName).
		Caller().
		Logger()
}

func isDevelopment(env string) bool {
	switch strings.ToLower(env) {
	case "", "dev", "development", "local":
		return true
	}
	return false
}

// Get returns the global logger
func Get() *zerolog.Logger {
	return &log
}

// Component returns a child of the global logger tagged with name, for
// background workers that have no request context.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// WithContext returns the logger stored on ctx, or the global one.
func WithContext(ctx context.Context) *zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
		return l
	}
	return &log
}

func NewContext(ctx context.Context, l *zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

func WithRequestID(requestID string) zerolog.Logger {
	return log.With().Str("request_id", requestID).Logger()
}

func WithUserID(l zerolog.Logger, userID string) zerolog.Logger {
	return l.With().Str("user_id", userID).Logger()
}

func Info() *zerolog.Event {
	return log.Info()
}

// DBQuery logs one statement at debug level.
func DBQuery(query string, duration time.Duration, err error) {
	event := log.Debug().
		Str("query", strings.Join(strings.Fields(query), " ")).
		Dur("duration_ms", duration)

	if err != nil {
		event.Err(err).Msg("DB Query Failed")
		return
	}
	event.Msg("DB Query")
}

func ServiceStart(name, version, port string) {
	log.Info().
		Str("name", name).
		Str("version", version).
		Str("port", port).
		Msg("Service Started")
}

func ServiceStop(name string) {
	log.Info().
		Str("name", name).
		Msg("Service Stopped")
}
