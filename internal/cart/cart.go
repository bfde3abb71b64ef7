// Package cart caches the server-side shopping cart. The server owns the cart:
// every mutation sends a command and replaces the local snapshot wholesale
// with the server's response. Totals are never recomputed locally.
package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/steve-ongera/amazon/internal/api"
	"github.com/steve-ongera/amazon/internal/domain"
	"github.com/steve-ongera/amazon/internal/notify"
	apperrors "github.com/steve-ongera/amazon/pkg/errors"
)

// Store is the client-side cart cache. Safe for concurrent use.
type Store struct {
	api      *api.Client
	notifier *notify.Channel
	logger   *slog.Logger

	mu   sync.RWMutex
	cart *domain.Cart
}

// NewStore creates a cart store with no snapshot loaded.
func NewStore(client *api.Client, notifier *notify.Channel, log *slog.Logger) *Store {
	return &Store{api: client, notifier: notifier, logger: log}
}

// Fetch loads the current cart from the server. Failures are logged and
// swallowed so a flaky fetch never blanks a cart the user can already see;
// the last known snapshot is retained.
func (s *Store) Fetch(ctx context.Context) {
	cart, err := s.api.GetCart(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "cart fetch failed, keeping last snapshot",
			slog.String("error", err.Error()),
		)
		return
	}
	s.replace(cart)
}

// AddItem adds a product to the cart and reports whether it succeeded. Both
// outcomes surface as a notification; failures use the server's message when
// it has one.
func (s *Store) AddItem(ctx context.Context, input api.AddCartItemInput) bool {
	if input.Quantity < 1 {
		s.notifier.Error("Quantity must be at least 1.")
		return false
	}

	cart, err := s.api.AddCartItem(ctx, input)
	if err != nil {
		s.logger.WarnContext(ctx, "add to cart failed",
			slog.Int64("product_id", input.ProductID),
			slog.String("error", err.Error()),
		)
		s.notifier.Error(apperrors.UserMessage(err, "Could not add item to cart."))
		return false
	}

	s.replace(cart)
	s.notifier.Success("Item added to cart.")
	return true
}

// UpdateItem changes a line's quantity. The server decides what a quantity of
// zero means; whatever cart shape it returns becomes the new snapshot.
func (s *Store) UpdateItem(ctx context.Context, itemID int64, quantity int) error {
	cart, err := s.api.UpdateCartItem(ctx, itemID, quantity)
	if err != nil {
		s.notifier.Error(apperrors.UserMessage(err, "Could not update cart."))
		return fmt.Errorf("update cart item %d: %w", itemID, err)
	}
	s.replace(cart)
	return nil
}

// RemoveItem deletes a line from the cart.
func (s *Store) RemoveItem(ctx context.Context, itemID int64) error {
	cart, err := s.api.RemoveCartItem(ctx, itemID)
	if err != nil {
		s.notifier.Error(apperrors.UserMessage(err, "Could not remove item."))
		return fmt.Errorf("remove cart item %d: %w", itemID, err)
	}
	s.replace(cart)
	s.notifier.Info("Item removed from cart.")
	return nil
}

// Clear empties the cart without user-facing noise; checkout uses it after a
// successful order when the server has already consumed the cart.
func (s *Store) Clear(ctx context.Context) error {
	cart, err := s.api.ClearCart(ctx)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.replace(cart)
	return nil
}

// Drop discards the local snapshot without contacting the server.
func (s *Store) Drop() {
	s.mu.Lock()
	s.cart = nil
	s.mu.Unlock()
}

// Cart returns the last known snapshot, or nil before the first fetch.
func (s *Store) Cart() *domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

// ItemCount returns the cart badge count, zero when no snapshot is loaded.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cart == nil {
		return 0
	}
	return s.cart.ItemCount
}

func (s *Store) replace(cart *domain.Cart) {
	s.mu.Lock()
	s.cart = cart
	s.mu.Unlock()
}
