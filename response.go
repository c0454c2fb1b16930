package uncertainty

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// Response is the value produced by behaviour evaluation. It carries either
// a fully materialized body or, for incrementally produced bodies, a lazy
// chunk stream. The middleware adapter converts between this type and the
// standard library's response writer.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	stream ChunkStream
}

// ResponseOption configures a response at construction time.
type ResponseOption func(*Response)

// WithBody sets the response body.
func WithBody(body string) ResponseOption {
	return func(r *Response) { r.Body = []byte(body) }
}

// WithHeader adds a header value.
func WithHeader(key, value string) ResponseOption {
	return func(r *Response) { r.Header.Add(key, value) }
}

// WithContentType sets the Content-Type header.
func WithContentType(ct string) ResponseOption {
	return func(r *Response) { r.Header.Set("Content-Type", ct) }
}

// NewResponse creates a response with the given status code.
func NewResponse(status int, opts ...ResponseOption) *Response {
	resp := &Response{
		StatusCode: status,
		Header:     make(http.Header),
	}

	for _, opt := range opts {
		opt(resp)
	}

	return resp
}

// Streaming reports whether the body is produced incrementally.
func (r *Response) Streaming() bool { return r.stream != nil }

// Stream returns the lazy chunk sequence, or nil for materialized bodies.
func (r *Response) Stream() ChunkStream { return r.stream }

// SetStream replaces the chunk sequence. The previous stream is not drained;
// the caller owns handing over a stream that continues where it left off.
func (r *Response) SetStream(s ChunkStream) { r.stream = s }

// ChunkStream is a lazy, finite, non-restartable sequence of body chunks.
// Next returns io.EOF once the sequence is exhausted; any other error
// terminates the stream abnormally.
type ChunkStream interface {
	Next() ([]byte, error)
}

// ChunkStreamFunc allows casting a function to an implementation of [ChunkStream].
type ChunkStreamFunc func() ([]byte, error)

// Next implements the [ChunkStream] interface.
func (f ChunkStreamFunc) Next() ([]byte, error) { return f() }

// Chunks builds a stream backed by a fixed slice of chunks.
func Chunks(chunks ...[]byte) ChunkStream {
	i := 0

	return ChunkStreamFunc(func() ([]byte, error) {
		if i >= len(chunks) {
			return nil, io.EOF
		}

		chunk := chunks[i]
		i++

		return chunk, nil
	})
}

// DrainStream reads a stream to exhaustion and returns the chunks in order.
func DrainStream(s ChunkStream) ([][]byte, error) {
	var chunks [][]byte

	for {
		chunk, err := s.Next()
		if errors.Is(err, io.EOF) {
			return chunks, nil
		}

		if err != nil {
			return chunks, err
		}

		chunks = append(chunks, chunk)
	}
}

// Fixed returns a behaviour that ignores the continuation entirely and
// responds with a freshly constructed response on every evaluation. The
// constructor is bound at configuration time.
func Fixed(construct func() (*Response, error)) Behaviour {
	return BehaviourFunc(func(_ Continuation, _ *http.Request) (*Response, error) {
		return construct()
	})
}

// OK responds 200 with the given body.
func OK(body string, opts ...ResponseOption) Behaviour {
	return fixedStatus(http.StatusOK, body, opts...)
}

// BadRequest responds 400 with the given body.
func BadRequest(body string, opts ...ResponseOption) Behaviour {
	return fixedStatus(http.StatusBadRequest, body, opts...)
}

// Forbidden responds 403 with the given body.
func Forbidden(body string, opts ...ResponseOption) Behaviour {
	return fixedStatus(http.StatusForbidden, body, opts...)
}

// NotFound responds 404 with the given body.
func NotFound(body string, opts ...ResponseOption) Behaviour {
	return fixedStatus(http.StatusNotFound, body, opts...)
}

// ServerError responds 500 with the given body.
func ServerError(body string, opts ...ResponseOption) Behaviour {
	return fixedStatus(http.StatusInternalServerError, body, opts...)
}

// NotAllowed responds 405, advertising the permitted methods in the
// Allow header.
func NotAllowed(allowed ...string) Behaviour {
	return Fixed(func() (*Response, error) {
		resp := NewResponse(http.StatusMethodNotAllowed)
		resp.Header.Set("Allow", strings.Join(allowed, ", "))

		return resp, nil
	})
}

// Status responds with an arbitrary status code.
func Status(code int, opts ...ResponseOption) Behaviour {
	return Fixed(func() (*Response, error) {
		return NewResponse(code, opts...), nil
	})
}

// JSON responds 200 with data serialized as a JSON body. The data is bound
// at configuration time but serialized per evaluation; serialization
// failures propagate to the dispatcher's caller.
func JSON(data any, opts ...ResponseOption) Behaviour {
	return Fixed(func() (*Response, error) {
		body, err := json.Marshal(data)
		if err != nil {
			return nil, errors.Wrap(err, "serialize json response body")
		}

		resp := NewResponse(http.StatusOK, append([]ResponseOption{
			WithContentType("application/json"),
		}, opts...)...)
		resp.Body = body

		return resp, nil
	})
}

func fixedStatus(status int, body string, opts ...ResponseOption) Behaviour {
	return Fixed(func() (*Response, error) {
		return NewResponse(status, append([]ResponseOption{WithBody(body)}, opts...)...), nil
	})
}
