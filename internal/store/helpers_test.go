package store

import (
	"context"
	"net/http/httptest"
	"testing"

	"juiceshop/internal/api"
	"juiceshop/internal/mockapi"
	"juiceshop/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testBackend struct {
	client  *api.Client
	backend *mockapi.Store
	server  *httptest.Server
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()

	log := zerolog.Nop()
	handler, backend, err := mockapi.NewHandler("test-secret", log)
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &testBackend{
		client:  api.NewClient(server.URL+"/api", log),
		backend: backend,
		server:  server,
	}
}

// login authenticates one of the seeded accounts and installs the token
// on the client.
func (tb *testBackend) login(t *testing.T, email string) models.User {
	t.Helper()

	var resp models.AuthResponse
	err := tb.client.Post(context.Background(), "/auth/login", models.LoginRequest{
		Email:    email,
		Password: "secret123",
	}, &resp)
	require.NoError(t, err)

	tb.client.SetToken(resp.Token)
	return resp.User
}
