package uncertainty

import (
	"bytes"
	"net/http"
)

// responseCapture buffers everything the inner handler writes so the
// behaviour tree can inspect and replace the response before any bytes
// reach the client. A handler that flushes is producing its body
// incrementally: each flush delimits one chunk and marks the captured
// response as streaming.
type responseCapture struct {
	header      http.Header
	status      int
	wroteHeader bool

	buf       bytes.Buffer
	chunks    [][]byte
	streaming bool
}

func newResponseCapture() *responseCapture {
	return &responseCapture{header: make(http.Header)}
}

func (c *responseCapture) Header() http.Header { return c.header }

func (c *responseCapture) WriteHeader(status int) {
	if c.wroteHeader {
		return
	}

	c.status = status
	c.wroteHeader = true
}

func (c *responseCapture) Write(p []byte) (int, error) {
	c.WriteHeader(http.StatusOK)
	return c.buf.Write(p)
}

// Flush implements http.Flusher. No bytes leave the capture; flushing only
// records the chunk boundary.
func (c *responseCapture) Flush() {
	c.WriteHeader(http.StatusOK)
	c.streaming = true
	c.cutChunk()
}

func (c *responseCapture) cutChunk() {
	if c.buf.Len() == 0 {
		return
	}

	chunk := make([]byte, c.buf.Len())
	copy(chunk, c.buf.Bytes())
	c.chunks = append(c.chunks, chunk)
	c.buf.Reset()
}

// response converts the captured writes into a Response value.
func (c *responseCapture) response() *Response {
	if !c.wroteHeader {
		c.status = http.StatusOK
	}

	resp := &Response{
		StatusCode: c.status,
		Header:     c.header,
	}

	if c.streaming {
		c.cutChunk()
		resp.SetStream(Chunks(c.chunks...))

		return resp
	}

	resp.Body = c.buf.Bytes()

	return resp
}
