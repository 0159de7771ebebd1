package auth

import (
	"context"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleUser
}

// Identity is the authenticated caller a request acts on behalf of.
type Identity struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the identity sees the global record set.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanBulkUpdate mirrors the route guard on bulk updates.
func (i Identity) CanBulkUpdate() bool {
	return i.Role == RoleAdmin || i.Role == RoleManager
}

// CanAccess reports whether the identity may read or mutate an item owned by ownerID.
func (i Identity) CanAccess(ownerID string) bool {
	return i.IsAdmin() || (i.UserID != "" && i.UserID == ownerID)
}

type ctxKey string

const identityKey ctxKey = "identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns false when no authenticated identity is attached.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}
