package uncertainty

import "net/http"

// Continuation produces the response the stack would have returned without
// fault injection. Behaviours receive it as a parameter and decide whether
// to invoke it; no behaviour invokes it more than once per evaluation.
type Continuation func(*http.Request) (*Response, error)

// Behaviour decides how the response for a request is produced. The zero
// of the taxonomy is [PassThrough], which just defers to the continuation;
// every other behaviour either synthesizes a response, wraps another
// behaviour, or mutates what the continuation returned.
//
// A behaviour tree is assembled once at configuration time and is read-only
// afterwards, so a single tree is safe to share across concurrent requests.
type Behaviour interface {
	Evaluate(next Continuation, r *http.Request) (*Response, error)
}

// BehaviourFunc allows casting a function to an implementation of [Behaviour].
type BehaviourFunc func(Continuation, *http.Request) (*Response, error)

// Evaluate implements the [Behaviour] interface.
func (f BehaviourFunc) Evaluate(next Continuation, r *http.Request) (*Response, error) {
	return f(next, r)
}

// PassThrough returns the identity behaviour: it invokes the continuation
// exactly once and returns its result verbatim. It is the implicit fallback
// wherever a behaviour is optional.
func PassThrough() Behaviour {
	return BehaviourFunc(func(next Continuation, r *http.Request) (*Response, error) {
		return next(r)
	})
}

// Evaluate runs the root behaviour for a single request. A nil root means
// no fault injection is configured and is defined to pass through unchanged.
func Evaluate(root Behaviour, next Continuation, r *http.Request) (*Response, error) {
	if root == nil {
		return next(r)
	}

	return root.Evaluate(next, r)
}
