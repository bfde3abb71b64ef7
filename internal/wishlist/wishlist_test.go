package wishlist

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steve-ongera/amazon/internal/api"
	"github.com/steve-ongera/amazon/internal/apitest"
	"github.com/steve-ongera/amazon/internal/credstore"
	"github.com/steve-ongera/amazon/internal/domain"
	"github.com/steve-ongera/amazon/internal/notify"
	"github.com/steve-ongera/amazon/internal/session"
	apperrors "github.com/steve-ongera/amazon/pkg/errors"
	"github.com/steve-ongera/amazon/pkg/httpclient"
	"github.com/steve-ongera/amazon/pkg/logger"
)

type fixture struct {
	sync    *Synchronizer
	session *session.Store
	nav     *navRecorder
}

type navRecorder struct {
	paths []string
}

func (n *navRecorder) Navigate(path string) { n.paths = append(n.paths, path) }

func newFixture(t *testing.T, srv *apitest.Server, authenticated bool) *fixture {
	t.Helper()
	log := logger.NewWithWriter("wishlist-test", "error", io.Discard)
	creds := credstore.NewMemory()
	client := api.New(srv.URL, httpclient.New(httpclient.Config{}), creds, api.NopNavigator, log)
	sess := session.NewStore(client, creds, log)
	if authenticated {
		require.NoError(t, sess.Login(context.Background(),
			domain.UserProfile{ID: 1, Email: "john@example.com"},
			domain.TokenPair{Access: apitest.ValidAccess, Refresh: apitest.ValidRefresh}))
	}
	nav := &navRecorder{}
	notifier := notify.NewChannel(log)
	t.Cleanup(notifier.Close)
	return &fixture{
		sync:    NewSynchronizer(client, sess, nav, notifier, log),
		session: sess,
		nav:     nav,
	}
}

func TestToggle_AnonymousRedirectsToLogin(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Headphones", 4500)
	defer srv.Close()

	f := newFixture(t, srv, false)

	err := f.sync.Toggle(context.Background(), product)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, []string{api.LoginPath}, f.nav.paths)
	assert.Equal(t, 0, f.sync.Count())
}

func TestToggle_AddsThenRemoves(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Headphones", 4500)
	defer srv.Close()

	f := newFixture(t, srv, true)
	ctx := context.Background()

	require.NoError(t, f.sync.Toggle(ctx, product))
	assert.True(t, f.sync.IsWishlisted(product.ID))
	assert.Equal(t, 1, f.sync.Count())
	assert.Len(t, srv.Wishlist, 1)

	require.NoError(t, f.sync.Toggle(ctx, product))
	assert.False(t, f.sync.IsWishlisted(product.ID))
	assert.Equal(t, 0, f.sync.Count())
	assert.Empty(t, srv.Wishlist)
}

func TestIsWishlisted_ByIDAndSlug(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Gaming Laptop", 120000)
	srv.SeedWishlistEntry(product)
	defer srv.Close()

	f := newFixture(t, srv, true)
	unsubscribe := f.sync.Subscribe(context.Background(), func([]domain.WishlistEntry) {})
	defer unsubscribe()

	assert.True(t, f.sync.IsWishlisted(product.ID))
	assert.True(t, f.sync.IsWishlisted("gaming-laptop"))
	assert.False(t, f.sync.IsWishlisted("other-laptop"))
	assert.False(t, f.sync.IsWishlisted(product.ID+1))
}

func TestSubscribe_HydratesOnceForAuthenticatedUser(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Monitor", 22000)
	srv.SeedWishlistEntry(product)
	defer srv.Close()

	f := newFixture(t, srv, true)
	ctx := context.Background()

	var first []domain.WishlistEntry
	unsub1 := f.sync.Subscribe(ctx, func(entries []domain.WishlistEntry) { first = entries })
	defer unsub1()
	require.Len(t, first, 1)

	// A second subscriber reuses the cache instead of re-fetching.
	srv.Wishlist = nil
	var second []domain.WishlistEntry
	unsub2 := f.sync.Subscribe(ctx, func(entries []domain.WishlistEntry) { second = entries })
	defer unsub2()
	assert.Len(t, second, 1)
}

func TestSubscribe_AnonymousDoesNotHydrate(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Monitor", 22000)
	srv.SeedWishlistEntry(product)
	defer srv.Close()

	f := newFixture(t, srv, false)

	var seen []domain.WishlistEntry
	unsubscribe := f.sync.Subscribe(context.Background(), func(entries []domain.WishlistEntry) { seen = entries })
	defer unsubscribe()

	assert.Empty(t, seen)
}

func TestToggle_BroadcastsToSubscribers(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Speaker", 6800)
	defer srv.Close()

	f := newFixture(t, srv, true)
	ctx := context.Background()

	calls := 0
	var last []domain.WishlistEntry
	unsubscribe := f.sync.Subscribe(ctx, func(entries []domain.WishlistEntry) {
		calls++
		last = entries
	})

	require.NoError(t, f.sync.Toggle(ctx, product))
	assert.Len(t, last, 1)

	unsubscribe()
	before := calls
	require.NoError(t, f.sync.Toggle(ctx, product))
	assert.Equal(t, before, calls)
}

func TestUnsubscribe_DetachesOnlyTheCaller(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Tablet", 30000)
	other := srv.SeedProduct("Stylus", 2500)
	defer srv.Close()

	f := newFixture(t, srv, true)
	ctx := context.Background()

	firstCalls, secondCalls := 0, 0
	unsubFirst := f.sync.Subscribe(ctx, func([]domain.WishlistEntry) { firstCalls++ })
	defer unsubFirst()
	unsubSecond := f.sync.Subscribe(ctx, func([]domain.WishlistEntry) { secondCalls++ })

	require.NoError(t, f.sync.Toggle(ctx, product))
	assert.Equal(t, 2, firstCalls)
	assert.Equal(t, 2, secondCalls)

	// Dropping the second subscriber must not silence the first.
	unsubSecond()
	require.NoError(t, f.sync.Toggle(ctx, other))
	assert.Equal(t, 3, firstCalls)
	assert.Equal(t, 2, secondCalls)
}

func TestLogout_ClearsCacheAndRehydratesNextSession(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Camera", 54000)
	srv.SeedWishlistEntry(product)
	defer srv.Close()

	f := newFixture(t, srv, true)
	ctx := context.Background()

	unsubscribe := f.sync.Subscribe(ctx, func([]domain.WishlistEntry) {})
	defer unsubscribe()
	require.Equal(t, 1, f.sync.Count())

	require.NoError(t, f.session.Logout(ctx))
	assert.Equal(t, 0, f.sync.Count())
	assert.False(t, f.sync.IsWishlisted(product.ID))
}
