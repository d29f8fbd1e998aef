package auth

import (
	"context"

	"connectrpc.com/authn"
)

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return authn.SetInfo(ctx, p)
}

// PrincipalFrom returns the principal stored by WithPrincipal.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := authn.GetInfo(ctx).(Principal)
	return p, ok
}
