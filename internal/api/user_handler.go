package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"queryforge/internal/core"
)

// UserHandler is plain field-level CRUD over the user repository. The user
// identifier comes from the external identity provider; signup binds profile
// data to it.
type UserHandler struct {
	userRepo core.UserRepository
}

func NewUserHandler(userRepo core.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

func (h *UserHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.Signup)
	r.Get("/me", h.Me)
	r.Put("/me", h.UpdateMe)
	return r
}

type signupRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		respondError(w, fmt.Errorf("%w: a valid email is required", core.ErrInvalidArgument))
		return
	}

	userID := UserID(r)
	if _, err := h.userRepo.GetByID(userID); err == nil {
		respondError(w, fmt.Errorf("user %w", core.ErrAlreadyExists))
		return
	}
	if _, err := h.userRepo.GetByEmail(email); err == nil {
		respondError(w, fmt.Errorf("a user with this email %w", core.ErrAlreadyExists))
		return
	}

	user := &core.User{
		ID:              userID,
		Email:           email,
		Name:            strings.TrimSpace(req.Name),
		Role:            core.RoleUser,
		ThemePreference: "system",
		CreatedAt:       time.Now().UTC(),
	}
	if err := h.userRepo.Create(user); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userRepo.GetByID(UserID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type userUpdateRequest struct {
	Name            *string `json:"name"`
	ThemePreference *string `json:"theme_preference"`
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req userUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.userRepo.GetByID(UserID(r))
	if err != nil {
		respondError(w, err)
		return
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.ThemePreference != nil {
		switch *req.ThemePreference {
		case "light", "dark", "system":
			user.ThemePreference = *req.ThemePreference
		default:
			respondError(w, fmt.Errorf("%w: theme must be light, dark or system", core.ErrInvalidArgument))
			return
		}
	}

	now := time.Now().UTC()
	user.UpdatedAt = &now
	if err := h.userRepo.Update(user); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
