// Package wishlist keeps a single client-wide cache of the user's wishlist,
// hydrated lazily on first interest and kept in sync through an event bus so
// every view reflects a toggle immediately.
package wishlist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/asaskevich/EventBus"

	"github.com/steve-ongera/amazon/internal/api"
	"github.com/steve-ongera/amazon/internal/domain"
	"github.com/steve-ongera/amazon/internal/notify"
	"github.com/steve-ongera/amazon/internal/session"
	apperrors "github.com/steve-ongera/amazon/pkg/errors"
)

const topicChanged = "wishlist:changed"

// Subscriber receives the full entry set after every change.
type Subscriber func(entries []domain.WishlistEntry)

// Synchronizer is the shared wishlist cache. All mutations are serialized;
// concurrent toggles cannot interleave their read-check-write sequences.
type Synchronizer struct {
	api      *api.Client
	session  *session.Store
	nav      api.Navigator
	notifier *notify.Channel
	bus      EventBus.Bus
	logger   *slog.Logger

	mu       sync.Mutex
	entries  []domain.WishlistEntry
	hydrated bool
	topics   map[int]string
	nextSub  int
}

// NewSynchronizer creates the wishlist cache and registers its teardown on
// session logout.
func NewSynchronizer(client *api.Client, sess *session.Store, nav api.Navigator, notifier *notify.Channel, log *slog.Logger) *Synchronizer {
	if nav == nil {
		nav = api.NopNavigator
	}
	s := &Synchronizer{
		api:      client,
		session:  sess,
		nav:      nav,
		notifier: notifier,
		bus:      EventBus.New(),
		logger:   log,
		topics:   map[int]string{},
	}
	sess.OnLogout(s.Clear)
	return s
}

// Subscribe registers a subscriber and returns a function that removes it.
// The first authenticated subscriber triggers hydration from the server; the
// subscriber is immediately called with the current entry set either way.
//
// Each subscriber gets its own bus topic. The bus matches handlers by code
// pointer on removal, and every handler closure here shares one pointer, so a
// shared topic would detach the wrong subscriber.
func (s *Synchronizer) Subscribe(ctx context.Context, fn Subscriber) func() {
	handler := func(entries []domain.WishlistEntry) { fn(entries) }

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	topic := fmt.Sprintf("%s:%d", topicChanged, id)
	s.topics[id] = topic
	s.mu.Unlock()
	_ = s.bus.Subscribe(topic, handler)

	s.hydrateIfNeeded(ctx)
	fn(s.Entries())

	return func() {
		s.mu.Lock()
		delete(s.topics, id)
		s.mu.Unlock()
		_ = s.bus.Unsubscribe(topic, handler)
	}
}

// hydrateIfNeeded fetches the wishlist once per session. A failed fetch stays
// un-hydrated so the next subscriber retries.
func (s *Synchronizer) hydrateIfNeeded(ctx context.Context) {
	if !s.session.IsAuthenticated() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hydrated {
		return
	}

	entries, err := s.api.GetWishlist(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "wishlist hydration failed",
			slog.String("error", err.Error()),
		)
		return
	}
	s.entries = entries
	s.hydrated = true
}

// Toggle adds the product to the wishlist if absent and removes it if present.
// Anonymous users are sent to the login entry point instead. Every successful
// change is broadcast to all subscribers.
func (s *Synchronizer) Toggle(ctx context.Context, product domain.Product) error {
	if !s.session.IsAuthenticated() {
		s.nav.Navigate(api.LoginPath)
		return apperrors.Unauthorized("Sign in to save items to your wishlist.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.MatchesProduct(product.ID) {
			if err := s.api.RemoveFromWishlist(ctx, e.ID); err != nil {
				s.notifier.Error(apperrors.UserMessage(err, "Could not update wishlist."))
				return err
			}
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.publishLocked()
			s.notifier.Info("Removed from wishlist.")
			return nil
		}
	}

	entry, err := s.api.AddToWishlist(ctx, product.ID)
	if err != nil {
		s.notifier.Error(apperrors.UserMessage(err, "Could not update wishlist."))
		return err
	}
	s.entries = append(s.entries, *entry)
	s.publishLocked()
	s.notifier.Success("Added to wishlist.")
	return nil
}

// IsWishlisted reports whether a product is in the wishlist. ref may be a
// product ID or a slug.
func (s *Synchronizer) IsWishlisted(ref any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.MatchesProduct(ref) {
			return true
		}
	}
	return false
}

// Entries returns a copy of the current entry set.
func (s *Synchronizer) Entries() []domain.WishlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.WishlistEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Count returns the number of wishlist entries.
func (s *Synchronizer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear drops the cache and broadcasts the empty set. The next authenticated
// subscriber re-hydrates from the server.
func (s *Synchronizer) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.hydrated = false
	s.publishLocked()
	s.mu.Unlock()
}

// publishLocked broadcasts a snapshot to every registered subscriber topic.
// Handlers run synchronously but receive a copy, so they can safely call back
// into the synchronizer only after Publish returns to their own goroutine.
func (s *Synchronizer) publishLocked() {
	snapshot := make([]domain.WishlistEntry, len(s.entries))
	copy(snapshot, s.entries)
	for _, topic := range s.topics {
		s.bus.Publish(topic, snapshot)
	}
}
