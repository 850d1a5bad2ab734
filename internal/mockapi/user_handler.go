package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"juiceshop/internal/models"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	store  *Store
	logger zerolog.Logger
}

func NewUserHandler(store *Store, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		store:  store,
		logger: logger,
	}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.store.Users())
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_id", "User id must be a number")
		return
	}

	user, err := h.store.User(id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "user_not_found", "User not found")
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.UserByEmail(mux.Vars(r)["email"])
	if err != nil {
		respondWithError(w, http.StatusNotFound, "user_not_found", "User not found")
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

// Profile returns the user behind the bearer token.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	user, err := h.store.User(userID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "user_not_found", "User not found")
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

// Create is the admin path for creating users; unlike self-registration
// it may assign the ADMIN role.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.User
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if input.Name == "" || input.Email == "" || input.Password == "" {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Name, email, and password are required")
		return
	}

	user, err := h.store.CreateUser(input)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			respondWithError(w, http.StatusConflict, "email_taken", "Email is already registered")
			return
		}
		h.logger.Error().Err(err).Msg("User creation failed")
		respondWithError(w, http.StatusInternalServerError, "creation_failed", "Failed to create user")
		return
	}

	respondWithJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_id", "User id must be a number")
		return
	}

	var input models.User
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	user, err := h.store.UpdateUser(id, input)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "user_not_found", "User not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "update_failed", "Failed to update user")
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_id", "User id must be a number")
		return
	}

	if err := h.store.DeleteUser(id); err != nil {
		respondWithError(w, http.StatusNotFound, "user_not_found", "User not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
