package uncertaintyfx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zapcore"

	"github.com/abarto/uncertainty"
	"github.com/abarto/uncertainty/uncertaintyfx"
)

func TestParseEnvDefaults(t *testing.T) {
	env, err := uncertaintyfx.ParseEnv()
	require.NoError(t, err)
	require.Empty(t, env.Profile)
	require.Equal(t, "uncertainty", env.ServiceName)
	require.Equal(t, zapcore.InfoLevel, env.LogLevel)
}

func TestParseEnvValues(t *testing.T) {
	t.Setenv("UNCERTAINTY_PROFILE", `{"kind": "pass"}`)
	t.Setenv("UNCERTAINTY_SERVICE_NAME", "checkout")
	t.Setenv("UNCERTAINTY_LOG_LEVEL", "debug")

	env, err := uncertaintyfx.ParseEnv()
	require.NoError(t, err)
	require.Equal(t, `{"kind": "pass"}`, env.Profile)
	require.Equal(t, "checkout", env.ServiceName)
	require.Equal(t, zapcore.DebugLevel, env.LogLevel)
}

func TestNewRoot(t *testing.T) {
	root, err := uncertaintyfx.NewRoot(uncertaintyfx.Environment{})
	require.NoError(t, err)
	require.Nil(t, root, "empty profile means pass-through")

	root, err = uncertaintyfx.NewRoot(uncertaintyfx.Environment{
		Profile: `{"kind": "server_error", "body": "injected"}`,
	})
	require.NoError(t, err)
	require.NotNil(t, root)

	_, err = uncertaintyfx.NewRoot(uncertaintyfx.Environment{Profile: `{"kind": "explode"}`})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse fault profile")
}

func TestModuleProvidesMiddleware(t *testing.T) {
	t.Setenv("UNCERTAINTY_PROFILE", `{
	  "kind": "conditional",
	  "predicate": {"kind": "path_matches", "pattern": "/broken"},
	  "behaviour": {"kind": "server_error", "body": "injected"}
	}`)

	var mw uncertainty.Middleware

	app := fxtest.New(t, uncertaintyfx.Module, fx.Populate(&mw))
	app.RequireStart()
	defer app.RequireStop()

	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("intact"))
	})
	handler := mw(upstream)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/broken/thing", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "injected", rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fine", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "intact", rec.Body.String())
}

func TestInstrument(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	wrapped := uncertaintyfx.Instrument(inner, uncertaintyfx.Environment{ServiceName: "checkout"})
	require.NotNil(t, wrapped)

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}
