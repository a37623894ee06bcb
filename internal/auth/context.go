package auth

import "context"

type contextKey string

const contextKeyIdentity contextKey = "auth.identity"

// Identity is the authenticated caller: a member of the association with a
// role and, for bureau members, the post they hold.
type Identity struct {
	MemberID string
	Role     Role
	Subject  string
	Bureau   string
}

// WithIdentity stores the caller identity in context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, id)
}

// IdentityFromContext extracts the caller identity, zero when unauthenticated.
func IdentityFromContext(ctx context.Context) Identity {
	if ctx == nil {
		return Identity{}
	}
	if id, ok := ctx.Value(contextKeyIdentity).(Identity); ok {
		return id
	}
	return Identity{}
}

// MemberIDFromContext extracts the authenticated member id from context.
func MemberIDFromContext(ctx context.Context) string {
	return IdentityFromContext(ctx).MemberID
}

// RoleFromContext extracts role from context.
func RoleFromContext(ctx context.Context) Role {
	return IdentityFromContext(ctx).Role
}

// SubjectFromContext extracts subject from context.
func SubjectFromContext(ctx context.Context) string {
	return IdentityFromContext(ctx).Subject
}

// BureauFromContext extracts the caller's bureau post, empty for ordinary
// members.
func BureauFromContext(ctx context.Context) string {
	return IdentityFromContext(ctx).Bureau
}
