package handlers

import (
	"errors"
	"net/http"

	"budget/internal/auth"
	"budget/internal/db"
	"budget/internal/logging"
	"budget/internal/middleware"
	"budget/internal/models"
	"budget/internal/store"
	"budget/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.Required("email", req.Email, "password", req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	email := validator.NormalizeEmail(req.Email)
	if err := validator.ValidateEmail(email); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	exists, err := h.users.EmailExists(r.Context(), email)
	if err != nil {
		respondFailure(w, r, err, "user", "registration")
		return
	}
	if exists {
		respondError(w, http.StatusConflict, "email already registered")
		return
	}
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to secure password")
		return
	}
	var user models.User
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		user, err = h.users.Create(r.Context(), tx, uuid.NewString(), email, passwordHash)
		return err
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			respondError(w, http.StatusConflict, "email already registered")
			return
		}
		respondFailure(w, r, err, "user", "registration")
		return
	}
	h.respondWithToken(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.Required("email", req.Email, "password", req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.users.GetByEmail(r.Context(), validator.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondFailure(w, r, err, "user", "login")
		return
	}
	ok, legacy := auth.CheckPassword(user.PasswordHash, req.Password)
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if legacy {
		h.upgradePassword(r, user.ID, req.Password)
	}
	h.respondWithToken(w, http.StatusOK, user)
}

// upgradePassword replaces a legacy tagged password with a bcrypt hash.
// Failure leaves the legacy value in place and does not block login.
func (h *Handler) upgradePassword(r *http.Request, userID, password string) {
	logger := logging.FromContext(r.Context())
	hashed, err := auth.HashPassword(password)
	if err == nil {
		err = h.users.UpdatePasswordHash(r.Context(), userID, hashed)
	}
	if err != nil {
		logger.WarnContext(r.Context(), "legacy password upgrade failed", "user_id", userID, "error", err)
		return
	}
	logger.InfoContext(r.Context(), "upgraded legacy password", "user_id", userID)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, status int, user models.User) {
	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondData(w, status, authResponse{User: user.Public(), Token: token})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondFailure(w, r, err, "user", "load user")
		return
	}
	respondData(w, http.StatusOK, user.Public())
}
