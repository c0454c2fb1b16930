package uncertainty_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abarto/uncertainty"
)

// recordingPredicate returns a predicate with a fixed result that counts
// how often it was evaluated.
func recordingPredicate(result bool) (uncertainty.Predicate, *int) {
	calls := 0

	return uncertainty.PredicateFunc(func(uncertainty.Continuation, *http.Request) bool {
		calls++
		return result
	}), &calls
}

func TestIsMethod(t *testing.T) {
	post := httptest.NewRequest(http.MethodPost, "/", nil)
	get := httptest.NewRequest(http.MethodGet, "/", nil)

	require.True(t, uncertainty.IsMethod("POST").Evaluate(nil, post))
	require.False(t, uncertainty.IsMethod("POST").Evaluate(nil, get))

	// comparison is exact and case-sensitive
	require.False(t, uncertainty.IsMethod("post").Evaluate(nil, post))

	require.True(t, uncertainty.IsGet.Evaluate(nil, get))
	require.True(t, uncertainty.IsPost.Evaluate(nil, post))
	require.False(t, uncertainty.IsPut.Evaluate(nil, get))
	require.False(t, uncertainty.IsDelete.Evaluate(nil, get))
}

func TestHasParameter(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?x=1", nil)
		require.True(t, uncertainty.HasParameter("x").Evaluate(nil, req))
		require.False(t, uncertainty.HasParameter("y").Evaluate(nil, req))
	})

	t.Run("form body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x=1"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		require.True(t, uncertainty.HasParameter("x").Evaluate(nil, req))
		require.False(t, uncertainty.HasParameter("y").Evaluate(nil, req))
	})

	t.Run("query on a post request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/?x=1", nil)
		require.True(t, uncertainty.HasParameter("x").Evaluate(nil, req))
	})

	t.Run("no body at all", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		require.False(t, uncertainty.HasParameter("x").Evaluate(nil, req))
	})
}

func TestPathMatches(t *testing.T) {
	p, err := uncertainty.PathMatches("/api")
	require.NoError(t, err)

	// the match is anchored at the start but not the end
	require.True(t, p.Evaluate(nil, httptest.NewRequest(http.MethodGet, "/api", nil)))
	require.True(t, p.Evaluate(nil, httptest.NewRequest(http.MethodGet, "/api/items", nil)))
	require.False(t, p.Evaluate(nil, httptest.NewRequest(http.MethodGet, "/v2/api", nil)))

	alt, err := uncertainty.PathMatches("/a|/b")
	require.NoError(t, err)
	require.True(t, alt.Evaluate(nil, httptest.NewRequest(http.MethodGet, "/b", nil)))
	require.False(t, alt.Evaluate(nil, httptest.NewRequest(http.MethodGet, "/c", nil)))
}

func TestPathMatchesInvalidExpression(t *testing.T) {
	_, err := uncertainty.PathMatches("(")
	require.Error(t, err)

	require.Panics(t, func() { uncertainty.MustPathMatches("(") })
	require.NotPanics(t, func() { uncertainty.MustPathMatches("/api") })
}

func TestIdentityPredicates(t *testing.T) {
	anonymous := httptest.NewRequest(http.MethodGet, "/", nil)

	authed := httptest.NewRequest(http.MethodGet, "/", nil)
	authed = authed.WithContext(uncertainty.WithIdentity(authed.Context(),
		uncertainty.Identity{Username: "ada", Authenticated: true}))

	unauthed := httptest.NewRequest(http.MethodGet, "/", nil)
	unauthed = unauthed.WithContext(uncertainty.WithIdentity(unauthed.Context(),
		uncertainty.Identity{Username: "ada"}))

	require.False(t, uncertainty.IsAuthenticated().Evaluate(nil, anonymous))
	require.True(t, uncertainty.IsAuthenticated().Evaluate(nil, authed))
	require.False(t, uncertainty.IsAuthenticated().Evaluate(nil, unauthed))

	require.False(t, uncertainty.IsUser("ada").Evaluate(nil, anonymous))
	require.True(t, uncertainty.IsUser("ada").Evaluate(nil, authed))
	require.False(t, uncertainty.IsUser("bob").Evaluate(nil, authed))
}

func TestAndShortCircuits(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	left, leftCalls := recordingPredicate(false)
	right, rightCalls := recordingPredicate(true)

	require.False(t, uncertainty.And(left, right).Evaluate(nil, req))
	require.Equal(t, 1, *leftCalls)
	require.Zero(t, *rightCalls)

	both, _ := recordingPredicate(true)
	require.True(t, uncertainty.And(both, both).Evaluate(nil, req))
}

func TestOrShortCircuits(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	left, leftCalls := recordingPredicate(true)
	right, rightCalls := recordingPredicate(false)

	require.True(t, uncertainty.Or(left, right).Evaluate(nil, req))
	require.Equal(t, 1, *leftCalls)
	require.Zero(t, *rightCalls)

	neither, _ := recordingPredicate(false)
	require.False(t, uncertainty.Or(neither, neither).Evaluate(nil, req))
}

func TestNotAlwaysEvaluatesOperand(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	inner, calls := recordingPredicate(true)
	require.False(t, uncertainty.Not(inner).Evaluate(nil, req))
	require.Equal(t, 1, *calls)

	require.True(t, uncertainty.Always().Evaluate(nil, req))
	require.False(t, uncertainty.Not(uncertainty.Always()).Evaluate(nil, req))
}
