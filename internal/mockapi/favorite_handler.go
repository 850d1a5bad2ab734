package mockapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type FavoriteHandler struct {
	store  *Store
	logger zerolog.Logger
}

func NewFavoriteHandler(store *Store, logger zerolog.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		store:  store,
		logger: logger,
	}
}

func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}
	respondWithJSON(w, http.StatusOK, h.store.FavoriteProducts(userID))
}

func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	productID, err := strconv.Atoi(mux.Vars(r)["productId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_id", "Product id must be a number")
		return
	}

	if err := h.store.AddFavorite(userID, productID); err != nil {
		respondWithError(w, http.StatusNotFound, "product_not_found", "Product not found")
		return
	}

	h.logger.Debug().Int("user_id", userID).Int("product_id", productID).Msg("Favorite added")
	respondWithJSON(w, http.StatusOK, h.store.FavoriteProducts(userID))
}

func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	productID, err := strconv.Atoi(mux.Vars(r)["productId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_id", "Product id must be a number")
		return
	}

	if err := h.store.RemoveFavorite(userID, productID); err != nil {
		respondWithError(w, http.StatusNotFound, "favorite_not_found", "Product is not in favorites")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
