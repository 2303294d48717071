package httpapi

import (
	"context"
	"net/http"

	"kaizen-backend-go/internal/db"
	"kaizen-backend-go/internal/models"
	"kaizen-backend-go/internal/services"
)

type contextKey string

const ctxUser contextKey = "user"

// WithAuth resolves the bearer token to an active user and stores it on the
// request context. Any failure stops the chain.
func (s *Server) WithAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := services.BearerToken(r.Header.Get("Authorization"))
		if !ok {
			writeServiceError(w, r, services.ErrUnauthenticated("not authenticated"))
			return
		}
		var user *models.User
		err := s.Store.Session(r.Context(), func(q db.Queryer) error {
			var err error
			user, err = services.ResolvePrincipal(r.Context(), q, s.Tokens, token)
			return err
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func CurrentUser(r *http.Request) *models.User {
	if value, ok := r.Context().Value(ctxUser).(*models.User); ok {
		return value
	}
	return nil
}

// RequireAdmin must run after WithAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := services.RequireAdmin(CurrentUser(r)); err != nil {
			writeServiceError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
