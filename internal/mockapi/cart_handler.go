package mockapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"juiceshop/internal/models"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type CartHandler struct {
	store  *Store
	logger zerolog.Logger
}

func NewCartHandler(store *Store, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		store:  store,
		logger: logger,
	}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}
	respondWithJSON(w, http.StatusOK, h.store.CartLines(userID))
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if err := h.store.AddToCart(userID, req.ProductID, req.Quantity); err != nil {
		respondWithError(w, http.StatusNotFound, "product_not_found", "Product not found")
		return
	}

	h.logger.Debug().Int("user_id", userID).Int("product_id", req.ProductID).Msg("Cart line added")
	respondWithJSON(w, http.StatusOK, h.store.CartLines(userID))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
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

	var req models.UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if err := h.store.SetCartQuantity(userID, productID, req.Quantity); err != nil {
		respondWithError(w, http.StatusNotFound, "line_not_found", "Product is not in the cart")
		return
	}
	respondWithJSON(w, http.StatusOK, h.store.CartLines(userID))
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
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

	if err := h.store.RemoveFromCart(userID, productID); err != nil {
		respondWithError(w, http.StatusNotFound, "line_not_found", "Product is not in the cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	h.store.ClearCart(userID)
	w.WriteHeader(http.StatusNoContent)
}
