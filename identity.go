package uncertainty

import "context"

// Identity describes who issued a request, as established by upstream
// authentication middleware. The identity predicates read it from the
// request context and treat its absence as a normal negative result.
type Identity struct {
	Username      string
	Authenticated bool
}

// ctxKey type scopes context values to this package.
type ctxKey string

const identityKey ctxKey = "identity"

// WithIdentity attaches an identity to a context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the identity attached to the context, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
