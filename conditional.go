package uncertainty

import "net/http"

// Conditional evaluates then when the predicate holds and passes through
// otherwise.
func Conditional(p Predicate, then Behaviour) Behaviour {
	return ConditionalElse(p, then, PassThrough())
}

// ConditionalElse evaluates then when the predicate holds and otherwise
// the alternative. The predicate is evaluated once; only the selected branch
// is evaluated. A nil alternative defaults to passing through.
func ConditionalElse(p Predicate, then, otherwise Behaviour) Behaviour {
	if otherwise == nil {
		otherwise = PassThrough()
	}

	return BehaviourFunc(func(next Continuation, r *http.Request) (*Response, error) {
		if p.Evaluate(next, r) {
			return then.Evaluate(next, r)
		}

		return otherwise.Evaluate(next, r)
	})
}

// PredicateCase pairs a predicate with the behaviour it selects. Build
// cases with [Case].
type PredicateCase struct {
	predicate Predicate
	behaviour Behaviour
}

// Case pairs a predicate with a behaviour for [MultiConditional].
func Case(p Predicate, b Behaviour) PredicateCase {
	return PredicateCase{predicate: p, behaviour: b}
}

// MultiConditional scans the cases in order and evaluates the behaviour of
// the first predicate that holds; the remaining cases are not consulted. A
// nil fallback defaults to passing through.
func MultiConditional(cases []PredicateCase, fallback Behaviour) Behaviour {
	if fallback == nil {
		fallback = PassThrough()
	}

	return BehaviourFunc(func(next Continuation, r *http.Request) (*Response, error) {
		for _, c := range cases {
			if c.predicate.Evaluate(next, r) {
				return c.behaviour.Evaluate(next, r)
			}
		}

		return fallback.Evaluate(next, r)
	})
}
