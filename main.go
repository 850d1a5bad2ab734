package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"juiceshop/internal/api"
	"juiceshop/internal/config"
	"juiceshop/internal/logger"
	"juiceshop/internal/mockapi"
	"juiceshop/internal/session"
	"juiceshop/internal/store"

	"github.com/rs/zerolog"
)

func main() {
	cfg := config.LoadConfig()

	log := logger.InitLogger()
	log.Info().Msg("Starting juiceshop dev server")

	handler, _, err := mockapi.NewHandler(cfg.JWTSecret, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build mock backend")
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		log.Info().Msgf("Mock API listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	if os.Getenv("DEMO") == "1" {
		time.Sleep(200 * time.Millisecond)
		runDemo(cfg, log)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Server stopped")
}

// runDemo drives the storefront layer through a full session against the
// local mock backend: restore or login, browse, cart round-trip, favorite
// toggle, logout.
func runDemo(cfg config.Config, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := api.NewClient(cfg.APIBaseURL, log)
	cart := store.NewCart(client, log)
	favorites := store.NewFavorites(client, log)
	products := store.NewProducts(client, log)
	sessions := session.NewManager(client, session.NewFileStorage(cfg.SessionFile), cart, favorites, log)

	if !sessions.Restore(ctx) {
		if _, err := sessions.Login(ctx, "juan@example.com", "secret123"); err != nil {
			log.Error().Err(err).Msg("Demo login failed")
			return
		}
	}
	log.Info().Str("email", sessions.CurrentUser().Email).Msg("Demo session active")

	if err := products.FetchAll(ctx); err != nil {
		log.Error().Err(err).Msg("Demo product fetch failed")
		return
	}
	log.Info().Int("count", len(products.Products())).Msg("Catalog loaded")

	if err := products.Search(ctx, "mango"); err == nil {
		log.Info().Int("count", len(products.Products())).Str("term", products.SearchTerm()).Msg("Search results")
	}

	catalog := products.Products()
	if len(catalog) > 0 {
		first := catalog[0]
		if err := cart.AddItem(ctx, first); err != nil {
			log.Error().Err(err).Msg("Demo cart add failed")
		}
		if err := cart.IncrementQuantity(ctx, first.ID); err != nil {
			log.Error().Err(err).Msg("Demo quantity bump failed")
		}
		log.Info().
			Int("total_items", cart.TotalItems()).
			Float64("total_price", cart.TotalPrice()).
			Msg("Cart state")

		if err := favorites.Add(ctx, first.ID); err != nil {
			log.Error().Err(err).Msg("Demo favorite add failed")
		}
		log.Info().Bool("is_favorite", favorites.IsFavorite(first.ID)).Msg("Favorite state")
	}

	sessions.Logout()
	log.Info().Int("cart_items", cart.TotalItems()).Int("favorites", len(favorites.Products())).Msg("Demo finished")
}
