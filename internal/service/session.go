package service

import "context"

type userKey struct{}

// WithUser returns a copy of ctx carrying the authenticated user id.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFrom returns the authenticated user id stored in ctx.
func UserFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userKey{}).(string)
	return userID, ok && userID != ""
}

func requireUser(ctx context.Context) (string, error) {
	userID, ok := UserFrom(ctx)
	if !ok {
		return "", ErrAuthenticationRequired
	}
	return userID, nil
}
