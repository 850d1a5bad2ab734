package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"juiceshop/internal/models"

	"github.com/rs/zerolog"
)

type AuthHandler struct {
	store  *Store
	tokens *TokenService
	logger zerolog.Logger
}

func NewAuthHandler(store *Store, tokens *TokenService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates the account and immediately issues a token: a
// successful registration is a logged-in session. Self-registration is
// always a USER; only admins create admins, through the users endpoint.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Name, email, and password are required")
		return
	}

	user, err := h.store.CreateUser(models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     string(models.RoleUser),
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			respondWithError(w, http.StatusConflict, "email_taken", "Email is already registered")
			return
		}
		h.logger.Error().Err(err).Msg("Registration failed")
		respondWithError(w, http.StatusInternalServerError, "registration_failed", "Failed to create user")
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "token_generation_failed", "Failed to generate token")
		return
	}

	h.logger.Info().Int("user_id", user.ID).Str("email", user.Email).Msg("User registered")
	respondWithJSON(w, http.StatusCreated, models.AuthResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	user, err := h.store.Authenticate(req.Email, req.Password)
	if err != nil {
		h.logger.Warn().Str("email", req.Email).Msg("Login failed")
		respondWithError(w, http.StatusUnauthorized, "authentication_failed", "Invalid email or password")
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "token_generation_failed", "Failed to generate token")
		return
	}

	h.logger.Info().Int("user_id", user.ID).Str("email", user.Email).Msg("User logged in")
	respondWithJSON(w, http.StatusOK, models.AuthResponse{Token: token, User: user})
}
