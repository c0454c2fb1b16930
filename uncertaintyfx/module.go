// Package uncertaintyfx wires fault injection into an fx application: it
// parses the environment, builds the configured behaviour tree and provides
// the resulting [uncertainty.Middleware] for other components to wrap their
// handlers with.
package uncertaintyfx

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abarto/uncertainty"
	"github.com/abarto/uncertainty/profile"
)

// Module provides the environment, a logger, the root behaviour and the
// fault-injection middleware.
var Module = fx.Module("uncertainty",
	fx.Provide(
		ParseEnv,
		NewLogger,
		NewRoot,
		NewMiddleware,
	),
)

// NewLogger creates a zap logger configured from the environment, with JSON
// encoding and ISO 8601 timestamps.
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.LogLevel)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// NewRoot builds the root behaviour from the configured profile. An empty
// profile yields a nil root, which the middleware treats as pass-through.
func NewRoot(env Environment) (uncertainty.Behaviour, error) {
	if env.Profile == "" {
		return nil, nil
	}

	root, err := profile.ParseString(env.Profile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse fault profile")
	}

	return root, nil
}

// NewMiddleware builds the fault-injection middleware around the root
// behaviour.
func NewMiddleware(root uncertainty.Behaviour, logs *zap.Logger) uncertainty.Middleware {
	return uncertainty.NewMiddleware(root, uncertainty.WithLogger(logs.Named("uncertainty")))
}

// Instrument wraps a handler chain with OpenTelemetry HTTP instrumentation
// so injected faults show up in traces like real ones.
func Instrument(h http.Handler, env Environment) http.Handler {
	return otelhttp.NewHandler(h, env.ServiceName)
}
