package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"juiceshop/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()

	handler, store, err := NewHandler("test-secret", zerolog.Nop())
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, store
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func loginToken(t *testing.T, server *httptest.Server, email string) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, server.URL+"/api/auth/login", "", models.LoginRequest{
		Email:    email,
		Password: "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var auth models.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&auth))
	return auth.Token
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/auth/login", "", models.LoginRequest{
		Email:    "juan@example.com",
		Password: "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "authentication_failed", body.Error)
}

func TestRegisterIssuesTokenAndForcesUserRole(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/auth/register", "", models.RegisterRequest{
		Name:     "Nina Vega",
		Email:    "nina@example.com",
		Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var auth models.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&auth))
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, string(models.RoleUser), auth.Role)
	assert.Empty(t, auth.Password)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/auth/register", "", models.RegisterRequest{
		Name:     "Impostor",
		Email:    "juan@example.com",
		Password: "secret123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestProductMutationsAreAdminGated(t *testing.T) {
	server, _ := newTestServer(t)
	input := models.ProductInput{Name: "Kiwi Juice", Price: 3.49, Stock: 10}

	resp := doJSON(t, http.MethodPost, server.URL+"/api/products", "", input)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	userToken := loginToken(t, server, "juan@example.com")
	resp = doJSON(t, http.MethodPost, server.URL+"/api/products", userToken, input)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	adminToken := loginToken(t, server, "maria@example.com")
	resp = doJSON(t, http.MethodPost, server.URL+"/api/products", adminToken, input)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, 9, created.ID, "ids are assigned by the server")
}

func TestProductReadsArePublic(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/products")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	assert.Len(t, products, 8)
}

func TestProductSearchMatchesSubstring(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/products/search?name=juice")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	require.NotEmpty(t, products)
	for _, p := range products {
		assert.Contains(t, p.Name, "Juice")
	}
}

func TestUserListRequiresAdmin(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	userToken := loginToken(t, server, "juan@example.com")
	resp = doJSON(t, http.MethodGet, server.URL+"/api/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	adminToken := loginToken(t, server, "maria@example.com")
	resp = doJSON(t, http.MethodGet, server.URL+"/api/users", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var users []models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	assert.Len(t, users, 5)
	for _, u := range users {
		assert.Empty(t, u.Password, "hashes must never leave the backend")
	}
}

func TestProfileReflectsBearerToken(t *testing.T) {
	server, _ := newTestServer(t)
	token := loginToken(t, server, "carlos@example.com")

	resp := doJSON(t, http.MethodGet, server.URL+"/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, "carlos@example.com", user.Email)
}

func TestDeletedProductDisappearsFromCartsAndFavorites(t *testing.T) {
	server, store := newTestServer(t)

	user, err := store.UserByEmail("juan@example.com")
	require.NoError(t, err)
	require.NoError(t, store.AddToCart(user.ID, 1, 2))
	require.NoError(t, store.AddFavorite(user.ID, 1))

	adminToken := loginToken(t, server, "maria@example.com")
	resp := doJSON(t, http.MethodDelete, server.URL+"/api/products/1", adminToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.Empty(t, store.CartLines(user.ID))
	assert.Empty(t, store.FavoriteProducts(user.ID))
}

func TestCartEndpointsRequireAuth(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/cart", "not-a-valid-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUserLookupByEmail(t *testing.T) {
	server, _ := newTestServer(t)
	token := loginToken(t, server, "juan@example.com")

	resp := doJSON(t, http.MethodGet, server.URL+"/api/users/email/ana@example.com", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, "Ana Martinez", user.Name)
}
