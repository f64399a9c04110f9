package auth

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/prepgrid/prepgrid/internal/rbac"
)

// AttachRoleFromDB makes the users table authoritative for the caller's
// role, falling back to the token claim for subjects the table does not
// know (pre-seeded admin tokens in dev).
func AttachRoleFromDB(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := SubjectFromContext(ctx)

			var role string
			err := db.QueryRowContext(ctx,
				`SELECT role FROM users WHERE id=$1 OR username=$1`, sub).Scan(&role)
			switch {
			case err == nil && role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
			case errors.Is(err, sql.ErrNoRows):
				next.ServeHTTP(w, r) // keep whatever the token claimed
			default:
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
