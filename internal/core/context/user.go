// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"agroshop/internal/core/id"
)

// UserContext describes the authenticated actor of a request.
// Absence of a UserContext means the request is anonymous (guest).
//
// Domain services never read this from context themselves: the HTTP layer
// extracts it once and passes it down as an explicit parameter.
type UserContext struct {
	UserID    id.ID
	Email     string
	Name      string
	Roles     []string
	SessionID string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context, or nil for anonymous requests.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or the nil ID.
func GetUserID(ctx context.Context) id.ID {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return id.Nil()
}

// HasRole checks if user has specific role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
