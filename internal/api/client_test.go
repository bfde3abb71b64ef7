package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steve-ongera/amazon/internal/apitest"
	"github.com/steve-ongera/amazon/internal/credstore"
	"github.com/steve-ongera/amazon/internal/domain"
	apperrors "github.com/steve-ongera/amazon/pkg/errors"
	"github.com/steve-ongera/amazon/pkg/httpclient"
	"github.com/steve-ongera/amazon/pkg/logger"
)

func newTestClient(t *testing.T, srv *apitest.Server) (*Client, credstore.Store, *navRecorder) {
	t.Helper()
	creds := credstore.NewMemory()
	nav := &navRecorder{}
	log := logger.NewWithWriter("api-test", "error", testWriter{t})
	c := New(srv.URL, httpclient.New(httpclient.Config{MaxRetries: 0}), creds, nav, log)
	return c, creds, nav
}

type navRecorder struct {
	paths []string
}

func (n *navRecorder) Navigate(path string) { n.paths = append(n.paths, path) }

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func loggedIn(t *testing.T, creds credstore.Store) {
	t.Helper()
	err := creds.Save(context.Background(), domain.TokenPair{
		Access:  apitest.ValidAccess,
		Refresh: apitest.ValidRefresh,
	})
	require.NoError(t, err)
}

func TestClient_AttachesBearerToken(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	c, creds, _ := newTestClient(t, srv)
	loggedIn(t, creds)

	profile, err := c.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", profile.Email)
}

func TestClient_AnonymousRequestOmitsBearer(t *testing.T) {
	srv := apitest.New()
	srv.SeedProduct("Samsung TV", 45000)
	defer srv.Close()

	c, _, _ := newTestClient(t, srv)

	page, err := c.ListProducts(context.Background(), ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
}

func TestClient_RefreshesOnceOn401(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	c, creds, _ := newTestClient(t, srv)

	// Valid refresh token, but an access token the server no longer accepts.
	err := creds.Save(context.Background(), domain.TokenPair{
		Access:  "stale-access",
		Refresh: apitest.ValidRefresh,
	})
	require.NoError(t, err)

	profile, err := c.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", profile.Email)
	assert.Equal(t, 1, srv.RefreshCalls)

	// The rotated access token is persisted alongside the untouched refresh token.
	pair, err := creds.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, apitest.NewAccess, pair.Access)
	assert.Equal(t, apitest.ValidRefresh, pair.Refresh)
}

func TestClient_RefreshFailureClearsCredsAndNavigatesToLogin(t *testing.T) {
	srv := apitest.New()
	srv.RefreshFails = true
	defer srv.Close()

	c, creds, nav := newTestClient(t, srv)

	err := creds.Save(context.Background(), domain.TokenPair{
		Access:  "stale-access",
		Refresh: apitest.ValidRefresh,
	})
	require.NoError(t, err)

	_, err = c.GetProfile(context.Background())
	require.Error(t, err)

	// The caller sees the original request's failure, not the refresh failure.
	var apiErr *apperrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	pair, loadErr := creds.Load(context.Background())
	require.NoError(t, loadErr)
	assert.Empty(t, pair.Access)
	assert.Empty(t, pair.Refresh)
	assert.Equal(t, []string{LoginPath}, nav.paths)
}

func TestClient_NoRefreshTokenMeansSessionExpired(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	c, creds, _ := newTestClient(t, srv)

	err := creds.Save(context.Background(), domain.TokenPair{Access: "stale-access"})
	require.NoError(t, err)

	_, err = c.GetProfile(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
	assert.Equal(t, 0, srv.RefreshCalls)
}

func TestClient_RefreshHappensAtMostOncePerRequest(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	c, creds, _ := newTestClient(t, srv)

	// Refresh succeeds, but the rotated token is rejected too, so the retried
	// request gets another 401. That 401 must surface, not trigger more refreshes.
	srv.AcceptedAccess = map[string]bool{}
	err := creds.Save(context.Background(), domain.TokenPair{
		Access:  "stale-access",
		Refresh: apitest.ValidRefresh,
	})
	require.NoError(t, err)

	_, err = c.GetProfile(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, 1, srv.RefreshCalls)
}

func TestClient_Login(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	c, _, _ := newTestClient(t, srv)

	result, err := c.Login(context.Background(), LoginInput{
		Email:    "john@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, apitest.ValidAccess, result.Access)
	assert.Equal(t, apitest.ValidRefresh, result.Refresh)
	assert.Equal(t, "John", result.User.FirstName)

	pair := result.TokenPair()
	assert.Equal(t, apitest.ValidAccess, pair.Access)
}

func TestClient_LoginBadCredentials(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	c, _, _ := newTestClient(t, srv)

	_, err := c.Login(context.Background(), LoginInput{
		Email:    "john@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", apperrors.UserMessage(err, "fallback"))
}

func TestClient_CartRoundTrip(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("USB Cable", 500)
	defer srv.Close()

	c, creds, _ := newTestClient(t, srv)
	loggedIn(t, creds)

	ctx := context.Background()

	cart, err := c.AddCartItem(ctx, AddCartItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.ItemCount)
	assert.InDelta(t, 1000, cart.TotalKES, 0.001)

	cart, err = c.UpdateCartItem(ctx, cart.Items[0].ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.ItemCount)
	assert.InDelta(t, 2500, cart.TotalKES, 0.001)

	cart, err = c.ClearCart(ctx)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestClient_WishlistRoundTrip(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Wireless Mouse", 1500)
	defer srv.Close()

	c, creds, _ := newTestClient(t, srv)
	loggedIn(t, creds)

	ctx := context.Background()

	entry, err := c.AddToWishlist(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, entry.Product.ID)

	entries, err := c.GetWishlist(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, c.RemoveFromWishlist(ctx, entry.ID))

	entries, err = c.GetWishlist(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClient_NotFoundIsTyped(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	c, _, _ := newTestClient(t, srv)

	_, err := c.GetProduct(context.Background(), "no-such-product")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
