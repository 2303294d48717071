package httpapi

import (
	"net/http"

	"kaizen-backend-go/internal/db"
	"kaizen-backend-go/internal/models"
	"kaizen-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

type UserCreateRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Username string  `json:"username" validate:"required,min=3,max=100"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	IsAdmin  bool    `json:"is_admin"`
}

type UserUpdateRequest struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
	IsActive *bool   `json:"is_active"`
	IsAdmin  *bool   `json:"is_admin"`
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := newQueryReader(r.URL.Query())
	skip := params.intParam("skip", 0, 0, 0)
	limit := params.intParam("limit", 100, 1, 1000)
	if err := params.err(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	var users []models.User
	err := s.Store.Session(r.Context(), func(q db.Queryer) error {
		var err error
		users, err = services.ListUsers(r.Context(), q, skip, limit)
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items := make([]UserDTO, 0, len(users))
	for i := range users {
		items = append(items, buildUserDTO(&users[i]))
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	var user *models.User
	err := s.Store.Session(r.Context(), func(q db.Queryer) error {
		var err error
		user, err = loadUser(r, q)
		return err
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildUserDTO(user))
}

func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
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

// createUser is shared by the admin users surface and /auth/register. Any
// admin may create another admin; changing the flag later needs a superuser.
func (s *Server) createUser(r *http.Request, req UserCreateRequest) (*models.User, error) {
	hashed, err := s.Tokens.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	var user *models.User
	err = s.Store.Tx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		user, err = services.CreateUser(r.Context(), tx, services.NewUser{
			Email:          req.Email,
			Username:       req.Username,
			HashedPassword: hashed,
			FullName:       req.FullName,
			IsAdmin:        req.IsAdmin,
		})
		return err
	})
	return user, err
}

func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UserUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if req.IsAdmin != nil && !CurrentUser(r).IsSuperuser {
		writeServiceError(w, r, services.ErrForbidden("only a superuser can change admin rights"))
		return
	}
	changes := services.UserChanges{
		Email:    req.Email,
		FullName: req.FullName,
		IsActive: req.IsActive,
		IsAdmin:  req.IsAdmin,
	}
	if req.Password != nil {
		hashed, err := s.Tokens.HashPassword(*req.Password)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		changes.HashedPassword = &hashed
	}
	var user *models.User
	err := s.Store.Tx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		user, err = loadUser(r, tx)
		if err != nil {
			return err
		}
		return services.UpdateUser(r.Context(), tx, user, changes)
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildUserDTO(user))
}

func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == CurrentUser(r).ID {
		writeServiceError(w, r, services.ErrBadRequest("cannot delete your own account"))
		return
	}
	err := s.Store.Tx(r.Context(), func(tx *sqlx.Tx) error {
		user, err := loadUser(r, tx)
		if err != nil {
			return err
		}
		return services.DeleteUser(r.Context(), tx, user.ID)
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func loadUser(r *http.Request, q db.Queryer) (*models.User, error) {
	user, err := services.GetUser(r.Context(), q, chi.URLParam(r, "userId"))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, services.ErrNotFound("user")
	}
	return user, nil
}
