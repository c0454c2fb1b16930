package uncertainty

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
)

// DelayRequest wraps a behaviour with a blocking pause BEFORE the inner
// behaviour is evaluated. The calling goroutine sleeps for the full
// duration; there is no cancellation once the pause begins.
func DelayRequest(inner Behaviour, d time.Duration) Behaviour {
	return BehaviourFunc(func(next Continuation, r *http.Request) (*Response, error) {
		if d < 0 {
			return nil, errors.Newf("negative request delay: %s", d)
		}

		time.Sleep(d)

		return inner.Evaluate(next, r)
	})
}

// DelayResponse wraps a behaviour with a blocking pause AFTER the inner
// behaviour has been evaluated, delaying the already-computed result.
func DelayResponse(inner Behaviour, d time.Duration) Behaviour {
	return BehaviourFunc(func(next Continuation, r *http.Request) (*Response, error) {
		if d < 0 {
			return nil, errors.Newf("negative response delay: %s", d)
		}

		resp, err := inner.Evaluate(next, r)
		if err != nil {
			return nil, err
		}

		time.Sleep(d)

		return resp, nil
	})
}
