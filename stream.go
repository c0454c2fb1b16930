package uncertainty

import (
	"io"
	"math/rand/v2"
	"net/http"
	"time"
)

// MutateStream wraps the continuation's response and, when its body is
// produced incrementally, replaces the chunk sequence with the transformed
// one. Responses with materialized bodies pass through untouched. The
// transform receives the upstream sequence and must visit each of its chunks
// at most once, in order.
func MutateStream(transform func(ChunkStream) ChunkStream) Behaviour {
	return BehaviourFunc(func(next Continuation, r *http.Request) (*Response, error) {
		resp, err := next(r)
		if err != nil {
			return nil, err
		}

		if resp.Streaming() {
			resp.SetStream(transform(resp.Stream()))
		}

		return resp, nil
	})
}

// Slowdown sleeps for the given duration before yielding each chunk of a
// streamed body, simulating a slow transfer. Chunk contents and order are
// preserved.
func Slowdown(d time.Duration) Behaviour {
	return MutateStream(func(upstream ChunkStream) ChunkStream {
		return ChunkStreamFunc(func() ([]byte, error) {
			time.Sleep(d)
			return upstream.Next()
		})
	})
}

// RandomStop truncates a streamed body: before each chunk it draws a fresh
// uniform value and, if the draw is below the given probability, ends the
// sequence immediately with no further chunks and no trailing error chunk.
// Whether the client observes a clean end of body or a truncated transfer
// depends on the transport.
func RandomStop(probability float64) Behaviour {
	return MutateStream(func(upstream ChunkStream) ChunkStream {
		stopped := false

		return ChunkStreamFunc(func() ([]byte, error) {
			if stopped || rand.Float64() < probability {
				stopped = true
				return nil, io.EOF
			}

			return upstream.Next()
		})
	})
}
