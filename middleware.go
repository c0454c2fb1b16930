package uncertainty

import (
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Middleware for injecting faults into a standard library handler chain.
type Middleware func(http.Handler) http.Handler

// Option configures the middleware.
type Option func(*middlewareConfig)

type middlewareConfig struct {
	logs *zap.Logger
}

// WithLogger sets the logger used for unhandled evaluation errors and
// per-request debug logging. The default discards everything.
func WithLogger(logs *zap.Logger) Option {
	return func(c *middlewareConfig) { c.logs = logs }
}

// NewMiddleware returns middleware that evaluates the root behaviour once
// per request, with the wrapped handler as the continuation. The root is
// fixed for the lifetime of the middleware; a nil root means no fault
// injection is configured and requests pass through unchanged.
//
// Errors surfaced by evaluation (a failing response constructor, a negative
// delay) are not translated: they are logged and rendered as a plain 500,
// mirroring how unhandled handler errors are treated elsewhere in the stack.
func NewMiddleware(root Behaviour, opts ...Option) Middleware {
	cfg := middlewareConfig{logs: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(inner http.Handler) http.Handler {
		if root == nil {
			return inner
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next := Continuation(func(r *http.Request) (*Response, error) {
				capture := newResponseCapture()
				inner.ServeHTTP(capture, r)

				return capture.response(), nil
			})

			resp, err := root.Evaluate(next, r)
			if err != nil {
				cfg.logs.Error("unhandled behaviour evaluation error", zap.Error(err))
				http.Error(w,
					http.StatusText(http.StatusInternalServerError),
					http.StatusInternalServerError)

				return
			}

			cfg.logs.Debug("evaluated behaviour tree",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", resp.StatusCode),
				zap.Bool("streaming", resp.Streaming()))

			if err := writeResponse(w, resp); err != nil {
				// The status line is already out; all that is left is to
				// stop writing and leave the transfer truncated.
				cfg.logs.Error("write response", zap.Error(err))
			}
		})
	}
}

func writeResponse(w http.ResponseWriter, resp *Response) error {
	for key, vals := range resp.Header {
		for _, v := range vals {
			w.Header().Add(key, v)
		}
	}

	w.WriteHeader(resp.StatusCode)

	if !resp.Streaming() {
		_, err := w.Write(resp.Body)
		return errors.Wrap(err, "write body")
	}

	flusher, _ := w.(http.Flusher)

	for {
		chunk, err := resp.Stream().Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return errors.Wrap(err, "pull body chunk")
		}

		if _, err := w.Write(chunk); err != nil {
			return errors.Wrap(err, "write body chunk")
		}

		if flusher != nil {
			flusher.Flush()
		}
	}
}
