package httpapi

import "kaizen-backend-go/internal/models"

// UserDTO never carries the password digest.
type UserDTO struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Username    string  `json:"username"`
	FullName    *string `json:"full_name"`
	IsActive    bool    `json:"is_active"`
	IsAdmin     bool    `json:"is_admin"`
	IsSuperuser bool    `json:"is_superuser"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
	LastLogin   *string `json:"last_login"`
}

func buildUserDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		FullName:    user.FullName,
		IsActive:    user.IsActive,
		IsAdmin:     user.IsAdmin,
		IsSuperuser: user.IsSuperuser,
		CreatedAt:   formatTime(user.CreatedAt),
		UpdatedAt:   formatTimePtr(user.UpdatedAt),
		LastLogin:   formatTimePtr(user.LastLogin),
	}
}
