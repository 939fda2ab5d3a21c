package user

import (
	"net/http"

	"ShopCore/pkg/kit"
)

// RequireAdmin guards a route with the role lookup: the caller passes its
// user id as the `id` query parameter and must resolve to an admin user.
func RequireAdmin(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.URL.Query().Get("id")
			if id == "" {
				kit.WriteErr(w, r, kit.Unauthorized("Unauthorized: Admin privileges required."))
				return
			}

			u, ok, err := store.Get(r.Context(), id)
			if err != nil {
				kit.WriteErr(w, r, err)
				return
			}
			if !ok {
				kit.WriteErr(w, r, kit.Unauthorized("Unauthorized: Admin access only."))
				return
			}
			if u.Role != RoleAdmin {
				kit.WriteErr(w, r, kit.Unauthorized("Unauthorized: Admin privileges required."))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
