package handler

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/kkkatsube/picc/internal/entities"
	"github.com/kkkatsube/picc/internal/repository/storage"
)

type authResponse struct {
	Token string        `json:"token"`
	User  entities.User `json:"user"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost())
	if err != nil {
		storageError(w, err)
		return
	}

	user, err := h.storage.CreateUser(r.Context(), req.Name, req.Email, string(hash))
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			writeFieldErrors(w, http.StatusUnprocessableEntity,
				fieldError("email", "has already been taken"))
			return
		}
		storageError(w, err)
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		storageError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.storage.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		storageError(w, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		storageError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		if err := h.sessions.Revoke(r.Context(), token); err != nil {
			storageError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.storage.GetUser(r.Context(), userID(r))
	if err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) bcryptCost() int {
	if h.cfg != nil && h.cfg.Auth.BcryptCost > 0 {
		return h.cfg.Auth.BcryptCost
	}
	return bcrypt.DefaultCost
}
