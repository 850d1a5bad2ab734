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

type ProductHandler struct {
	store  *Store
	logger zerolog.Logger
}

func NewProductHandler(store *Store, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		store:  store,
		logger: logger,
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.store.Products())
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_id", "Product id must be a number")
		return
	}

	product, err := h.store.Product(id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "product_not_found", "Product not found")
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	respondWithJSON(w, http.StatusOK, h.store.SearchProducts(name))
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if input.Name == "" || input.Price < 0 || input.Stock < 0 {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Name is required; price and stock must not be negative")
		return
	}

	product := h.store.CreateProduct(input)
	h.logger.Info().Int("product_id", product.ID).Str("name", product.Name).Msg("Product created")
	respondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_id", "Product id must be a number")
		return
	}

	var input models.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if input.Price < 0 || input.Stock < 0 {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Price and stock must not be negative")
		return
	}

	product, err := h.store.UpdateProduct(id, input)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "product_not_found", "Product not found")
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_id", "Product id must be a number")
		return
	}

	if err := h.store.DeleteProduct(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "product_not_found", "Product not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "delete_failed", "Failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
