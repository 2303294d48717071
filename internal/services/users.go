package services

import (
	"context"
	"strings"
	"time"

	"kaizen-backend-go/internal/db"
	"kaizen-backend-go/internal/models"

	"github.com/google/uuid"
)

const userColumns = `id, email, username, hashed_password, full_name, is_active, is_admin, is_superuser, created_at, updated_at, last_login`

// FindUserByLogin matches login against username or email.
func FindUserByLogin(ctx context.Context, q db.Queryer, login string) (*models.User, error) {
	var user models.User
	err := q.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1 ORDER BY (username = $1) DESC LIMIT 1`, strings.TrimSpace(login))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, db.Classify(err)
	}
	return &user, nil
}

func GetUser(ctx context.Context, q db.Queryer, userID string) (*models.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, nil
	}
	var user models.User
	if err := q.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID); err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, db.Classify(err)
	}
	return &user, nil
}

func SetLastLogin(ctx context.Context, q db.Queryer, userID string) error {
	_, err := q.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, time.Now().UTC(), userID)
	return db.Classify(err)
}

func ListUsers(ctx context.Context, q db.Queryer, skip, limit int) ([]models.User, error) {
	users := []models.User{}
	err := q.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC OFFSET $1 LIMIT $2`, skip, limit)
	return users, db.Classify(err)
}

type NewUser struct {
	Email          string
	Username       string
	HashedPassword string
	FullName       *string
	IsAdmin        bool
	IsSuperuser    bool
}

// CreateUser inserts an active user after checking username/email
// uniqueness so the caller gets a readable message.
func CreateUser(ctx context.Context, q db.Queryer, input NewUser) (*models.User, error) {
	var exists bool
	if err := q.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)`, input.Username, input.Email); err != nil {
		return nil, db.Classify(err)
	}
	if exists {
		return nil, ErrBadRequest("username or email already registered")
	}
	user := models.User{
		ID:             uuid.NewString(),
		Email:          input.Email,
		Username:       input.Username,
		HashedPassword: input.HashedPassword,
		FullName:       input.FullName,
		IsActive:       true,
		IsAdmin:        input.IsAdmin,
		IsSuperuser:    input.IsSuperuser,
		CreatedAt:      time.Now().UTC(),
	}
	_, err := q.ExecContext(ctx, `
INSERT INTO users (id, email, username, hashed_password, full_name, is_active, is_admin, is_superuser, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, user.ID, user.Email, user.Username, user.HashedPassword, user.FullName, user.IsActive, user.IsAdmin, user.IsSuperuser, user.CreatedAt)
	if err != nil {
		return nil, db.Classify(err)
	}
	return &user, nil
}

// UserChanges carries optional updates; nil fields are left untouched.
type UserChanges struct {
	Email          *string
	FullName       *string
	IsActive       *bool
	IsAdmin        *bool
	HashedPassword *string
}

func UpdateUser(ctx context.Context, q db.Queryer, user *models.User, changes UserChanges) error {
	if changes.Email != nil && *changes.Email != user.Email {
		var taken bool
		if err := q.GetContext(ctx, &taken, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`, *changes.Email, user.ID); err != nil {
			return db.Classify(err)
		}
		if taken {
			return ErrBadRequest("email already registered")
		}
		user.Email = *changes.Email
	}
	if changes.FullName != nil {
		user.FullName = changes.FullName
	}
	if changes.IsActive != nil {
		user.IsActive = *changes.IsActive
	}
	if changes.IsAdmin != nil {
		user.IsAdmin = *changes.IsAdmin
	}
	if changes.HashedPassword != nil {
		user.HashedPassword = *changes.HashedPassword
	}
	now := time.Now().UTC()
	user.UpdatedAt = &now
	_, err := q.ExecContext(ctx, `
UPDATE users
SET email = $2, full_name = $3, is_active = $4, is_admin = $5, hashed_password = $6, updated_at = $7
WHERE id = $1
`, user.ID, user.Email, user.FullName, user.IsActive, user.IsAdmin, user.HashedPassword, now)
	return db.Classify(err)
}

func DeleteUser(ctx context.Context, q db.Queryer, userID string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	return db.Classify(err)
}
