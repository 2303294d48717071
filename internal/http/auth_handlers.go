package httpapi

import (
	"mime"
	"net/http"
	"strings"

	"kaizen-backend-go/internal/db"
	"kaizen-backend-go/internal/models"
	"kaizen-backend-go/internal/services"

	"github.com/jmoiron/sqlx"
)

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=255"`
	Password string `json:"password" form:"password" validate:"required,max=128"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type MeUpdateRequest struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`

	// CurrentPassword must accompany a password change.
	CurrentPassword *string `json:"current_password" validate:"required_with=Password"`
}

// Login accepts a JSON body or an OAuth2 password form.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLogin(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var user *models.User
	err = s.Store.Session(r.Context(), func(q db.Queryer) error {
		var err error
		user, err = services.Authenticate(r.Context(), q, s.Tokens, req.Username, req.Password)
		if err != nil || user == nil {
			return err
		}
		if !user.IsActive {
			return services.ErrForbidden("user is inactive")
		}
		return services.SetLastLogin(r.Context(), q, user.ID)
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if user == nil {
		writeServiceError(w, r, services.ErrUnauthenticated("incorrect username or password"))
		return
	}
	token, _, err := s.Tokens.CreateAccessToken(user.ID, user.Username, user.Email, 0)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   services.TokenTypeBearer,
		ExpiresIn:   int(s.Tokens.AccessTTL.Seconds()),
	})
}

func decodeLogin(r *http.Request) (LoginRequest, error) {
	var req LoginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return req, services.ErrBadRequest("invalid form body")
		}
		req.Username = strings.TrimSpace(r.PostForm.Get("username"))
		req.Password = r.PostForm.Get("password")
		return req, validateStruct(&req)
	}
	if err := decodeJSON(r, &req); err != nil {
		return req, err
	}
	req.Username = strings.TrimSpace(req.Username)
	return req, nil
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, buildUserDTO(CurrentUser(r)))
}

func (s *Server) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req MeUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	user := *CurrentUser(r)
	changes := services.UserChanges{Email: req.Email, FullName: req.FullName}
	if req.Password != nil {
		if !s.Tokens.VerifyPassword(*req.CurrentPassword, user.HashedPassword) {
			writeServiceError(w, r, services.ErrValidation(map[string]string{"current_password": "incorrect password"}))
			return
		}
		hashed, err := s.Tokens.HashPassword(*req.Password)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		changes.HashedPassword = &hashed
	}
	err := s.Store.Tx(r.Context(), func(tx *sqlx.Tx) error {
		return services.UpdateUser(r.Context(), tx, &user, changes)
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildUserDTO(&user))
}

// Register creates a user on behalf of an admin.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req UserCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	user, err := s.createUser(r, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, buildUserDTO(user))
}
