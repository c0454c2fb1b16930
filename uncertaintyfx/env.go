package uncertaintyfx

import (
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment holds the environment variables that configure fault
// injection. The profile is resolved once at startup; there is no runtime
// reconfiguration.
type Environment struct {
	// Profile is the JSON fault profile. Empty means no fault injection:
	// every request passes through unchanged.
	Profile string `env:"UNCERTAINTY_PROFILE"`
	// ServiceName names the service in traces.
	ServiceName string `env:"UNCERTAINTY_SERVICE_NAME" envDefault:"uncertainty"`
	// LogLevel controls the logger (debug, info, warn, error).
	LogLevel zapcore.Level `env:"UNCERTAINTY_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv parses the environment variables into an Environment.
func ParseEnv() (Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return e, errors.Wrap(err, "failed to parse environment")
	}

	return e, nil
}
