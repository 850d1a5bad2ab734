package mockapi

import (
	"net/http"

	"juiceshop/internal/models"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// NewHandler builds a seeded mock backend ready to serve.
func NewHandler(jwtSecret string, logger zerolog.Logger) (http.Handler, *Store, error) {
	store := NewStore()
	if err := store.Seed(); err != nil {
		return nil, nil, err
	}
	tokens := NewTokenService(jwtSecret, logger)
	return NewRouter(store, tokens, logger), store, nil
}

func NewRouter(store *Store, tokens *TokenService, logger zerolog.Logger) *mux.Router {
	authHandler := NewAuthHandler(store, tokens, logger)
	productHandler := NewProductHandler(store, logger)
	userHandler := NewUserHandler(store, logger)
	cartHandler := NewCartHandler(store, logger)
	favoriteHandler := NewFavoriteHandler(store, logger)

	r := mux.NewRouter()

	rateLimiter := NewRateLimiter(rate.Limit(100), 200)

	r.Use(Recovery(logger))
	r.Use(RequestLogging(logger))
	r.Use(CORS())
	r.Use(rateLimiter.Middleware())

	api := r.PathPrefix("/api").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", authHandler.Register).Methods("POST")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")

	// Product reads are public; mutations are admin-only.
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return Authentication(tokens, logger)(RequireRole(string(models.RoleAdmin))(h))
	}

	products := api.PathPrefix("/products").Subrouter()
	products.HandleFunc("", productHandler.List).Methods("GET")
	products.Handle("", adminOnly(productHandler.Create)).Methods("POST")
	products.HandleFunc("/search", productHandler.Search).Methods("GET")
	products.HandleFunc("/{id:[0-9]+}", productHandler.Get).Methods("GET")
	products.Handle("/{id:[0-9]+}", adminOnly(productHandler.Update)).Methods("PUT")
	products.Handle("/{id:[0-9]+}", adminOnly(productHandler.Delete)).Methods("DELETE")

	requireAdmin := RequireRole(string(models.RoleAdmin))

	users := api.PathPrefix("/users").Subrouter()
	users.Use(Authentication(tokens, logger))
	users.Handle("", requireAdmin(http.HandlerFunc(userHandler.List))).Methods("GET")
	users.Handle("", requireAdmin(http.HandlerFunc(userHandler.Create))).Methods("POST")
	users.HandleFunc("/profile", userHandler.Profile).Methods("GET")
	users.HandleFunc("/favorites", favoriteHandler.List).Methods("GET")
	users.HandleFunc("/favorites/{productId:[0-9]+}", favoriteHandler.Add).Methods("POST")
	users.HandleFunc("/favorites/{productId:[0-9]+}", favoriteHandler.Remove).Methods("DELETE")
	users.HandleFunc("/email/{email}", userHandler.GetByEmail).Methods("GET")
	users.HandleFunc("/{id:[0-9]+}", userHandler.Get).Methods("GET")
	users.Handle("/{id:[0-9]+}", requireAdmin(http.HandlerFunc(userHandler.Update))).Methods("PUT")
	users.Handle("/{id:[0-9]+}", requireAdmin(http.HandlerFunc(userHandler.Delete))).Methods("DELETE")

	cart := api.PathPrefix("/cart").Subrouter()
	cart.Use(Authentication(tokens, logger))
	cart.HandleFunc("", cartHandler.Get).Methods("GET")
	cart.HandleFunc("", cartHandler.Add).Methods("POST")
	cart.HandleFunc("", cartHandler.Clear).Methods("DELETE")
	cart.HandleFunc("/{productId:[0-9]+}", cartHandler.UpdateQuantity).Methods("PUT")
	cart.HandleFunc("/{productId:[0-9]+}", cartHandler.Remove).Methods("DELETE")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}
