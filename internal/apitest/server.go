// Package apitest provides an in-process fake of the storefront REST API for
// package tests. State is seedable and inspectable; handlers mimic the real
// backend's response shapes, including its error bodies.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/steve-ongera/amazon/internal/domain"
	"github.com/steve-ongera/amazon/pkg/httputil"
	"github.com/steve-ongera/amazon/pkg/slug"
)

// Default credentials accepted by the fake API.
const (
	ValidAccess  = "test-access-token"
	ValidRefresh = "test-refresh-token"
	NewAccess    = "rotated-access-token"
)

// Server is a fake storefront API.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	// User is returned by the profile endpoint for authenticated requests.
	User domain.UserProfile

	// AcceptedAccess lists bearer tokens treated as authenticated.
	AcceptedAccess map[string]bool

	// RefreshFails makes the refresh endpoint reject the refresh token.
	RefreshFails bool

	// RefreshCalls counts hits on the refresh endpoint.
	RefreshCalls int

	// ExpireFirstAccess makes every token not in AcceptedAccess get a 401,
	// which is also the default; the flag exists for readability at call sites.
	ExpireFirstAccess bool

	// Cart state. Mutations recompute ItemCount and TotalKES the way the
	// real backend would.
	Cart domain.Cart

	// CartAddError, when set, makes add_item fail with this message.
	CartAddError string

	// Wishlist state.
	Wishlist []domain.WishlistEntry

	// Products seeds the catalogue.
	Products []domain.Product

	// Orders holds created orders by ID.
	Orders map[int64]*domain.Order

	// OrderCreateError, when set, makes order creation fail with this message.
	OrderCreateError string

	// StkPushError, when set, makes the STK push endpoint fail with this message.
	StkPushError string

	// PaymentStatuses is the sequence of payment_status values returned by
	// successive status polls; the last value repeats once exhausted.
	PaymentStatuses []string

	// StatusCalls counts hits on the payment status endpoint.
	StatusCalls int

	// Coupons maps code to the discount descriptor returned on validation.
	Coupons map[string]domain.CouponResult

	// Counties and Stations seed the geography endpoints.
	Counties []domain.County
	Stations []domain.PickupStation

	nextID int64
}

// New starts a fake storefront API with sensible defaults.
func New() *Server {
	s := &Server{
		User: domain.UserProfile{
			ID:        1,
			Email:     "john@example.com",
			FirstName: "John",
			LastName:  "Kamau",
		},
		AcceptedAccess: map[string]bool{ValidAccess: true, NewAccess: true},
		Cart:           domain.Cart{ID: 1, Currency: "KES", Items: []domain.CartItem{}},
		Orders:         map[int64]*domain.Order{},
		Coupons:        map[string]domain.CouponResult{},
		nextID:         100,
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

// SeedProduct adds a product to the catalogue, generating its slug from the name.
func (s *Server) SeedProduct(name string, priceKES float64) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p := domain.Product{
		ID:       s.nextID,
		Name:     name,
		Slug:     slug.Generate(name),
		PriceKES: priceKES,
		Stock:    10,
	}
	s.Products = append(s.Products, p)
	return p
}

// SeedCartItem adds a line directly to the server cart.
func (s *Server) SeedCartItem(product domain.Product, quantity int) domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	item := domain.CartItem{
		ID:          s.nextID,
		Product:     product.Snapshot(),
		Quantity:    quantity,
		SubtotalKES: product.PriceKES * float64(quantity),
		AddedAt:     time.Now().UTC(),
	}
	s.Cart.Items = append(s.Cart.Items, item)
	s.recalcCartLocked()
	return item
}

// SeedWishlistEntry adds an entry directly to the server wishlist.
func (s *Server) SeedWishlistEntry(product domain.Product) domain.WishlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e := domain.WishlistEntry{ID: s.nextID, Product: product.Snapshot(), AddedAt: time.Now().UTC()}
	s.Wishlist = append(s.Wishlist, e)
	return e
}

func (s *Server) recalcCartLocked() {
	count := 0
	var total float64
	for _, it := range s.Cart.Items {
		count += it.Quantity
		total += it.SubtotalKES
	}
	s.Cart.ItemCount = count
	s.Cart.TotalKES = total
	s.Cart.UpdatedAt = time.Now().UTC()
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	r.Post("/auth/refresh/", s.handleRefresh)
	r.Post("/auth/login/", s.handleLogin)
	r.Get("/auth/profile/", s.authed(s.handleProfile))

	r.Get("/products/", s.handleListProducts)
	r.Get("/products/{slug}/", s.handleGetProduct)

	r.Get("/cart/", s.authed(s.handleGetCart))
	r.Post("/cart/add_item/", s.authed(s.handleAddItem))
	r.Patch("/cart/update_item/", s.authed(s.handleUpdateItem))
	r.Post("/cart/remove_item/", s.authed(s.handleRemoveItem))
	r.Post("/cart/clear/", s.authed(s.handleClearCart))

	r.Get("/wishlist/", s.authed(s.handleGetWishlist))
	r.Post("/wishlist/", s.authed(s.handleAddWishlist))
	r.Delete("/wishlist/{id}/", s.authed(s.handleRemoveWishlist))

	r.Post("/orders/", s.authed(s.handleCreateOrder))
	r.Get("/orders/{id}/", s.authed(s.handleGetOrder))

	r.Post("/payments/mpesa/stk-push/", s.authed(s.handleStkPush))
	r.Get("/payments/mpesa/status/{id}/", s.authed(s.handleMpesaStatus))
	r.Post("/payments/paypal/create/", s.authed(s.handlePaypalCreate))

	r.Post("/coupons/validate/", s.authed(s.handleValidateCoupon))

	r.Get("/counties/", s.handleListCounties)
	r.Get("/pickup-stations/", s.handleListStations)

	return r
}

// authed rejects requests whose bearer token is not in AcceptedAccess.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		ok := token != "" && s.AcceptedAccess[token]
		s.mu.Unlock()
		if !ok {
			httputil.WriteDetail(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.RefreshCalls++
	fails := s.RefreshFails
	s.mu.Unlock()

	var body struct {
		Refresh string `json:"refresh"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	if fails || body.Refresh != ValidRefresh {
		httputil.WriteDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"access": NewAccess})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	user := s.User
	s.mu.Unlock()

	if body.Email != user.Email || body.Password != "secret123" {
		httputil.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"user":    user,
		"access":  ValidAccess,
		"refresh": ValidRefresh,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	user := s.User
	s.mu.Unlock()
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := s.Products
	if q := r.URL.Query().Get("search"); q != "" {
		var filtered []domain.Product
		for _, p := range s.Products {
			if strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) {
				filtered = append(filtered, p)
			}
		}
		results = filtered
	}
	if results == nil {
		results = []domain.Product{}
	}
	httputil.WritePage(w, results, len(results), "", "")
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	want := chi.URLParam(r, "slug")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.Products {
		if p.Slug == want {
			httputil.WriteJSON(w, http.StatusOK, p)
			return
		}
	}
	httputil.WriteDetail(w, http.StatusNotFound, "Not found.")
}

func (s *Server) handleGetCart(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	httputil.WriteJSON(w, http.StatusOK, s.Cart)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID int64 `json:"product_id"`
		Quantity  int   `json:"quantity"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CartAddError != "" {
		httputil.WriteError(w, http.StatusBadRequest, s.CartAddError)
		return
	}

	var product *domain.Product
	for i := range s.Products {
		if s.Products[i].ID == body.ProductID {
			product = &s.Products[i]
			break
		}
	}
	if product == nil {
		httputil.WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	// Merge with an existing line for the same product.
	merged := false
	for i := range s.Cart.Items {
		if s.Cart.Items[i].Product.ID == body.ProductID {
			s.Cart.Items[i].Quantity += body.Quantity
			s.Cart.Items[i].SubtotalKES = product.PriceKES * float64(s.Cart.Items[i].Quantity)
			merged = true
			break
		}
	}
	if !merged {
		s.nextID++
		s.Cart.Items = append(s.Cart.Items, domain.CartItem{
			ID:          s.nextID,
			Product:     product.Snapshot(),
			Quantity:    body.Quantity,
			SubtotalKES: product.PriceKES * float64(body.Quantity),
			AddedAt:     time.Now().UTC(),
		})
	}
	s.recalcCartLocked()
	httputil.WriteJSON(w, http.StatusCreated, s.Cart)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ItemID   int64 `json:"item_id"`
		Quantity int   `json:"quantity"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.Cart.Items {
		if s.Cart.Items[i].ID == body.ItemID {
			if body.Quantity <= 0 {
				s.Cart.Items = append(s.Cart.Items[:i], s.Cart.Items[i+1:]...)
			} else {
				unit := s.Cart.Items[i].Product.PriceKES
				s.Cart.Items[i].Quantity = body.Quantity
				s.Cart.Items[i].SubtotalKES = unit * float64(body.Quantity)
			}
			s.recalcCartLocked()
			httputil.WriteJSON(w, http.StatusOK, s.Cart)
			return
		}
	}
	httputil.WriteError(w, http.StatusNotFound, "Item not found")
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ItemID int64 `json:"item_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.Cart.Items {
		if s.Cart.Items[i].ID == body.ItemID {
			s.Cart.Items = append(s.Cart.Items[:i], s.Cart.Items[i+1:]...)
			s.recalcCartLocked()
			httputil.WriteJSON(w, http.StatusOK, s.Cart)
			return
		}
	}
	httputil.WriteError(w, http.StatusNotFound, "Item not found")
}

func (s *Server) handleClearCart(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cart.Items = []domain.CartItem{}
	s.recalcCartLocked()
	httputil.WriteJSON(w, http.StatusOK, s.Cart)
}

func (s *Server) handleGetWishlist(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := s.Wishlist
	if results == nil {
		results = []domain.WishlistEntry{}
	}
	httputil.WritePage(w, results, len(results), "", "")
}

func (s *Server) handleAddWishlist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID int64 `json:"product_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.Wishlist {
		if e.Product.ID == body.ProductID {
			// At most one entry per product.
			httputil.WriteJSON(w, http.StatusOK, e)
			return
		}
	}

	var product *domain.Product
	for i := range s.Products {
		if s.Products[i].ID == body.ProductID {
			product = &s.Products[i]
			break
		}
	}
	if product == nil {
		httputil.WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	s.nextID++
	entry := domain.WishlistEntry{ID: s.nextID, Product: product.Snapshot(), AddedAt: time.Now().UTC()}
	s.Wishlist = append(s.Wishlist, entry)
	httputil.WriteJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleRemoveWishlist(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.Wishlist {
		if e.ID == id {
			s.Wishlist = append(s.Wishlist[:i], s.Wishlist[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	httputil.WriteDetail(w, http.StatusNotFound, "Not found.")
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.OrderCreateError != "" {
		httputil.WriteError(w, http.StatusBadRequest, s.OrderCreateError)
		return
	}
	if len(s.Cart.Items) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, "Your cart is empty.")
		return
	}

	s.nextID++
	order := &domain.Order{
		ID:            s.nextID,
		OrderNumber:   "ORD-" + strconv.FormatInt(s.nextID, 10),
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		Currency:      "KES",
		Subtotal:      s.Cart.TotalKES,
		CreatedAt:     time.Now().UTC(),
	}
	if m, ok := body["payment_method"].(string); ok {
		order.PaymentMethod = m
	}
	for _, it := range s.Cart.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID: it.ID, Product: it.Product, Variant: it.Variant,
			Quantity: it.Quantity, SubtotalKES: it.SubtotalKES,
		})
	}
	s.Orders[order.ID] = order

	// Ordering consumes the cart server-side.
	s.Cart.Items = []domain.CartItem{}
	s.recalcCartLocked()

	httputil.WriteJSON(w, http.StatusCreated, order)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.Orders[id]
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "Order not found.")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, order)
}

func (s *Server) handleStkPush(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OrderID int64  `json:"order_id"`
		Phone   string `json:"phone"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.StkPushError != "" {
		httputil.WriteError(w, http.StatusBadGateway, s.StkPushError)
		return
	}
	if _, ok := s.Orders[body.OrderID]; !ok {
		httputil.WriteError(w, http.StatusNotFound, "Order not found.")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, domain.STKPushResult{
		CheckoutRequestID: "ws_CO_" + strconv.FormatInt(body.OrderID, 10),
		CustomerMessage:   "Success. Request accepted for processing",
	})
}

func (s *Server) handleMpesaStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()

	status := domain.PaymentStatusPending
	if len(s.PaymentStatuses) > 0 {
		idx := s.StatusCalls
		if idx >= len(s.PaymentStatuses) {
			idx = len(s.PaymentStatuses) - 1
		}
		status = s.PaymentStatuses[idx]
	}
	s.StatusCalls++

	if order, ok := s.Orders[id]; ok {
		order.PaymentStatus = status
	}
	httputil.WriteJSON(w, http.StatusOK, domain.PaymentStatusResult{OrderID: id, PaymentStatus: status})
}

func (s *Server) handlePaypalCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OrderID int64 `json:"order_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	httputil.WriteJSON(w, http.StatusOK, domain.PaypalOrderResult{
		PaypalOrderID: "PP-" + strconv.FormatInt(body.OrderID, 10),
		ApprovalURL:   "https://paypal.example.com/approve/PP-" + strconv.FormatInt(body.OrderID, 10),
	})
}

func (s *Server) handleValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.Coupons[body.Code]
	if !ok {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid coupon code.")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleListCounties(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := s.Counties
	if results == nil {
		results = []domain.County{}
	}
	httputil.WritePage(w, results, len(results), "", "")
}

func (s *Server) handleListStations(w http.ResponseWriter, r *http.Request) {
	county := r.URL.Query().Get("county")

	s.mu.Lock()
	defer s.mu.Unlock()

	results := []domain.PickupStation{}
	for _, st := range s.Stations {
		if county == "" || st.CountySlug == county {
			results = append(results, st)
		}
	}
	httputil.WritePage(w, results, len(results), "", "")
}

