package rbac

import (
	"context"
	"net/http"
)

type roleKey struct{}

// WithRole stores the caller's role for the guards below.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey{}).(string)
	return role
}

// Require enforces a single permission under DefaultPolicy.
func Require(perm string) func(http.Handler) http.Handler {
	return DefaultPolicy.Guard(perm)
}

// RequireAny lets the request through when the role has any of perms.
func RequireAny(perms ...string) func(http.Handler) http.Handler {
	return DefaultPolicy.Guard(perms...)
}

// Guard answers 403 unless the role in the request context holds one of
// perms under p.
func (p Policy) Guard(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" || !p.Allows(role, perms...) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
