package uncertainty

import (
	"math/rand/v2"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Entry pairs a behaviour with an optional proportion of the requests that
// should exhibit it. Build entries with [Weighted] and [Unweighted].
type Entry struct {
	behaviour  Behaviour
	proportion float64
	weighted   bool
}

// Weighted assigns an explicit proportion (0..1) of requests to a behaviour.
func Weighted(b Behaviour, proportion float64) Entry {
	return Entry{behaviour: b, proportion: proportion, weighted: true}
}

// Unweighted lets a behaviour share the probability mass left over by the
// weighted entries evenly with the other unweighted entries.
func Unweighted(b Behaviour) Entry {
	return Entry{behaviour: b}
}

// randomChoice selects among behaviours via a cumulative distribution that
// is fixed at construction time. Evaluation only reads it, so one value is
// safe to share across concurrent requests.
type randomChoice struct {
	cdf  []cdfEntry
	rand func() float64
}

type cdfEntry struct {
	behaviour Behaviour
	bound     float64
}

// RandomChoice builds a behaviour that randomly selects among the entries,
// in the proportions given. Unweighted entries split the mass not claimed by
// weighted ones. The proportions are validated eagerly: a weighted sum above
// one, or a sum of exactly one alongside unweighted entries (which would
// starve them), is a configuration error.
func RandomChoice(entries ...Entry) (Behaviour, error) {
	weighted := lo.Filter(entries, func(e Entry, _ int) bool { return e.weighted })
	unweighted := lo.Filter(entries, func(e Entry, _ int) bool { return !e.weighted })

	total := lo.SumBy(weighted, func(e Entry) float64 { return e.proportion })
	if total > 1 || (total == 1 && len(unweighted) > 0) {
		return nil, errors.Newf("behaviour proportions sum to %v, leaving no room for %d unweighted entries",
			total, len(unweighted))
	}

	if len(unweighted) > 0 {
		share := (1 - total) / float64(len(unweighted))
		for _, e := range unweighted {
			weighted = append(weighted, Weighted(e.behaviour, share))
		}
	}

	cdf := make([]cdfEntry, 0, len(weighted))
	sum := 0.0

	for _, e := range weighted {
		sum += e.proportion
		cdf = append(cdf, cdfEntry{behaviour: e.behaviour, bound: sum})
	}

	return &randomChoice{cdf: cdf, rand: rand.Float64}, nil
}

// MustRandomChoice is a convenience variant of [RandomChoice] that panics on
// invalid proportions.
func MustRandomChoice(entries ...Entry) Behaviour {
	b, err := RandomChoice(entries...)
	if err != nil {
		panic("uncertainty: " + err.Error())
	}

	return b
}

// Evaluate draws one uniform value in [0,1) and selects the first entry
// whose cumulative bound is strictly greater than the draw. A draw beyond
// every bound, possible through floating-point slack when the proportions
// sum to slightly under one, falls back to passing through.
func (c *randomChoice) Evaluate(next Continuation, r *http.Request) (*Response, error) {
	x := c.rand()

	for _, e := range c.cdf {
		if x < e.bound {
			return e.behaviour.Evaluate(next, r)
		}
	}

	return next(r)
}
