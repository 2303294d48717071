package services

import (
	"context"
	"strings"

	"kaizen-backend-go/internal/db"
	"kaizen-backend-go/internal/models"
)

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// ResolvePrincipal verifies the token and loads the active user it names.
func ResolvePrincipal(ctx context.Context, q db.Queryer, tokens TokenService, token string) (*models.User, error) {
	claims, err := tokens.ParseToken(token)
	if err != nil {
		return nil, err
	}
	user, err := GetUser(ctx, q, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated("could not validate credentials")
	}
	if !user.IsActive {
		return nil, ErrForbidden("user is inactive")
	}
	return user, nil
}

// RequireAdmin gates the admin surface on is_admin.
func RequireAdmin(user *models.User) error {
	if user == nil || !user.IsAdmin {
		return ErrForbidden("insufficient role")
	}
	return nil
}

// Authenticate checks login credentials. It returns nil, nil when the user
// is unknown or the password does not match.
func Authenticate(ctx context.Context, q db.Queryer, tokens TokenService, login, password string) (*models.User, error) {
	user, err := FindUserByLogin(ctx, q, login)
	if err != nil || user == nil {
		return nil, err
	}
	if !tokens.VerifyPassword(password, user.HashedPassword) {
		return nil, nil
	}
	return user, nil
}
