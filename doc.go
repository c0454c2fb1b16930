// Package uncertainty provides fault-injection middleware for HTTP servers.
//
// # Overview
//
// uncertainty lets an operator declare, with a small combinator vocabulary,
// how a server should misbehave for resilience testing: delayed responses,
// synthetic error statuses, slowed or truncated streams, probabilistic
// outages. Two kinds of nodes compose into a tree that is assembled once at
// startup and evaluated once per request:
//
//   - [Behaviour]: decides how the response is produced. The baseline,
//     [PassThrough], defers to the continuation (the response the stack
//     would produce anyway); other behaviours synthesize responses, wrap
//     other behaviours, or mutate streamed bodies.
//   - [Predicate]: a boolean test over the request, used to gate behaviours
//     via [Conditional] and [MultiConditional].
//
// A minimal example that fails thirty percent of POST requests:
//
//	root := uncertainty.MustRandomChoice(
//	    uncertainty.Weighted(uncertainty.Conditional(uncertainty.IsPost, uncertainty.ServerError("")), 0.3),
//	    uncertainty.Unweighted(uncertainty.PassThrough()),
//	)
//
//	handler := uncertainty.NewMiddleware(root)(mux)
//
// # Behaviours
//
// Response leaves never invoke the continuation: [OK], [BadRequest],
// [Forbidden], [NotAllowed], [NotFound], [ServerError], [Status] and [JSON]
// all construct a fresh synthetic response per request from arguments bound
// at configuration time. [Fixed] generalizes them to any constructor.
//
// Wrapping behaviours compose: [DelayRequest] and [DelayResponse] add a
// blocking pause before or after their inner behaviour; [RandomChoice]
// selects among weighted entries by a single uniform draw against a
// cumulative distribution fixed at construction; [Conditional],
// [ConditionalElse] and [MultiConditional] branch on predicates, evaluating
// only the selected branch.
//
// Stream mutators apply when the continuation's response body is produced
// incrementally: [Slowdown] sleeps before each chunk and [RandomStop]
// truncates the stream with a per-chunk probability. Materialized bodies
// pass through such behaviours untouched.
//
// # Predicates
//
// Leaves test request properties: [IsMethod] (with [IsGet], [IsPost],
// [IsPut], [IsDelete] for the common verbs), [HasParameter] across query
// and form parameters, [PathMatches] anchored at the start of the path,
// and [IsAuthenticated] / [IsUser] against the [Identity] attached to the
// request context by upstream authentication middleware. Composition is by
// named functions: [And], [Or] (short-circuiting, left to right) and [Not].
//
// # Middleware
//
// [NewMiddleware] adapts a behaviour tree to the standard library's
// middleware shape, func(http.Handler) http.Handler. The wrapped handler
// becomes the continuation: its writes are captured into a buffer so the
// tree can discard or replace them, and handlers that flush are captured as
// streaming responses with flush-delimited chunks. A nil root behaviour
// passes every request through unchanged.
//
// Configuration mistakes (proportions that cannot be satisfied, path
// expressions that do not compile) surface as errors at construction time.
// Errors from evaluation itself are not translated or retried: the
// middleware logs them and renders a plain 500. Fault injection is about
// producing deliberate synthetic failures, not about resilience to real
// ones.
//
// # Declarative profiles
//
// The [github.com/abarto/uncertainty/profile] package builds behaviour
// trees from a JSON document, and
// [github.com/abarto/uncertainty/uncertaintyfx] wires profile, logger and
// middleware into an fx application from environment variables.
package uncertainty
