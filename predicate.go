package uncertainty

import (
	"net/http"
	"regexp"

	"github.com/cockroachdb/errors"
)

// Predicate is a boolean test over a request, used to gate behaviours. It
// receives the continuation for symmetry with [Behaviour] but none of the
// built-in predicates invoke it. Predicates are pure: they never mutate the
// request and evaluating one twice on the same request yields the same
// result.
type Predicate interface {
	Evaluate(next Continuation, r *http.Request) bool
}

// PredicateFunc allows casting a function to an implementation of [Predicate].
type PredicateFunc func(Continuation, *http.Request) bool

// Evaluate implements the [Predicate] interface.
func (f PredicateFunc) Evaluate(next Continuation, r *http.Request) bool {
	return f(next, r)
}

// Always returns a predicate that holds for every request.
func Always() Predicate {
	return PredicateFunc(func(Continuation, *http.Request) bool { return true })
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return PredicateFunc(func(next Continuation, r *http.Request) bool {
		return !p.Evaluate(next, r)
	})
}

// And is the conjunction of the given predicates, evaluated left to right.
// Evaluation stops at the first predicate that does not hold.
func And(ps ...Predicate) Predicate {
	return PredicateFunc(func(next Continuation, r *http.Request) bool {
		for _, p := range ps {
			if !p.Evaluate(next, r) {
				return false
			}
		}

		return true
	})
}

// Or is the disjunction of the given predicates, evaluated left to right.
// Evaluation stops at the first predicate that holds.
func Or(ps ...Predicate) Predicate {
	return PredicateFunc(func(next Continuation, r *http.Request) bool {
		for _, p := range ps {
			if p.Evaluate(next, r) {
				return true
			}
		}

		return false
	})
}

// IsMethod holds when the request method equals the given method exactly.
// Comparison is case-sensitive, matching the uppercase HTTP verb convention.
func IsMethod(method string) Predicate {
	return PredicateFunc(func(_ Continuation, r *http.Request) bool {
		return r.Method == method
	})
}

// Convenience predicates for the common HTTP verbs.
var (
	IsGet    = IsMethod(http.MethodGet)
	IsPost   = IsMethod(http.MethodPost)
	IsPut    = IsMethod(http.MethodPut)
	IsDelete = IsMethod(http.MethodDelete)
)

// HasParameter holds when the named key is present in either the query
// string or the form body, regardless of the request method. The form body
// is parsed lazily on first use.
func HasParameter(name string) Predicate {
	return PredicateFunc(func(_ Continuation, r *http.Request) bool {
		if r.URL.Query().Has(name) {
			return true
		}

		if r.PostForm == nil {
			_ = r.ParseForm() // an unparseable body just means no form parameters
		}

		return r.PostForm.Has(name)
	})
}

// PathMatches holds when the request path matches the given regular
// expression anchored at the start of the path: an expression matching /a
// also matches /a/b. An invalid expression is a configuration error.
func PathMatches(expr string) (Predicate, error) {
	re, err := regexp.Compile(`\A(?:` + expr + `)`)
	if err != nil {
		return nil, errors.Wrapf(err, "compile path expression %q", expr)
	}

	return PredicateFunc(func(_ Continuation, r *http.Request) bool {
		return re.MatchString(r.URL.Path)
	}), nil
}

// MustPathMatches is a convenience variant of [PathMatches] that panics if
// the expression does not compile.
func MustPathMatches(expr string) Predicate {
	p, err := PathMatches(expr)
	if err != nil {
		panic("uncertainty: " + err.Error())
	}

	return p
}

// IsAuthenticated holds when an authenticated identity is attached to the
// request. A request without an identity never holds.
func IsAuthenticated() Predicate {
	return PredicateFunc(func(_ Continuation, r *http.Request) bool {
		id, ok := IdentityFrom(r.Context())
		return ok && id.Authenticated
	})
}

// IsUser holds when the identity attached to the request carries the given
// username. A request without an identity never holds.
func IsUser(username string) Predicate {
	return PredicateFunc(func(_ Continuation, r *http.Request) bool {
		id, ok := IdentityFrom(r.Context())
		return ok && id.Username == username
	})
}
