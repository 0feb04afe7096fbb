// Package service ties the backend client to the category filter and the
// cart and session stores.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"furnistore/storefront/internal/cart"
	"furnistore/storefront/internal/catalog"
	"furnistore/storefront/internal/client"
	"furnistore/storefront/internal/domain"
	"furnistore/storefront/internal/session"

	"golang.org/x/sync/errgroup"

	log "github.com/sirupsen/logrus"
)

const (
	defaultFeaturedLimit = 6
	minContactMessage    = 5
)

var contactEmailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w{2,}$`)

type Service struct {
	client        client.StorefrontClient
	tree          *catalog.Tree
	cart          *cart.Store
	session       *session.Store
	featuredLimit int

	mu       sync.RWMutex
	products []domain.Product
	loaded   bool
	path     catalog.Path
	notice   string

	generation atomic.Uint64
}

func NewService(
	client client.StorefrontClient,
	tree *catalog.Tree,
	cart *cart.Store,
	session *session.Store,
	featuredLimit int,
) *Service {
	if featuredLimit <= 0 {
		featuredLimit = defaultFeaturedLimit
	}
	return &Service{
		client:        client,
		tree:          tree,
		cart:          cart,
		session:       session,
		featuredLimit: featuredLimit,
	}
}

func (s *Service) Tree() *catalog.Tree     { return s.tree }
func (s *Service) Cart() *cart.Store       { return s.cart }
func (s *Service) Session() *session.Store { return s.session }

// Refresh reloads the catalog. When the fetch fails the last list stays in
// place and a notice is recorded; an error is returned only if there is no
// list to fall back to. A response that lands after a newer Refresh started
// is dropped.
func (s *Service) Refresh(ctx context.Context) error {
	gen := s.generation.Add(1)

	products, err := s.client.GetProducts(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation.Load() {
		log.Debugf("Dropping superseded catalog response (generation %d)", gen)
		return nil
	}

	if err != nil {
		failure := actionError(err, msgLoadProducts)
		s.notice = failure.Message
		if !s.loaded {
			return failure
		}
		log.Warnf("⚠️ Catalog refresh failed, keeping %d cached products: %v", len(s.products), err)
		return nil
	}

	s.products = products
	s.loaded = true
	s.notice = ""
	log.Infof("📦 Loaded %d products", len(products))
	return nil
}

// Select changes the category selection and returns the products now visible.
// An unknown path is kept as is and shows nothing.
func (s *Service) Select(path catalog.Path) []domain.Product {
	s.mu.Lock()
	s.path = append(catalog.Path(nil), path...)
	s.mu.Unlock()

	return s.Visible()
}

func (s *Service) Path() catalog.Path {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(catalog.Path(nil), s.path...)
}

// Visible applies the current selection to the cached catalog.
func (s *Service) Visible() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.Filter(s.tree, s.products, s.path)
}

// Products returns every cached non-archived product.
func (s *Service) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Available(s.products)
}

// Notice is the last message worth showing about catalog loading, empty once
// a refresh succeeds.
func (s *Service) Notice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notice
}

// Product fetches a single product. Archived products are reported as
// unavailable.
func (s *Service) Product(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.client.GetProduct(ctx, id)
	if err != nil {
		var fetchErr *client.FetchError
		if errors.As(err, &fetchErr) && fetchErr.StatusCode == http.StatusNotFound {
			return nil, ErrProductUnavailable
		}
		return nil, actionError(err, msgLoadProduct)
	}
	if product.Archived {
		return nil, ErrProductUnavailable
	}
	return product, nil
}

// AddToCart puts one unit of the product in the cart, using the cached
// catalog when it has the product.
func (s *Service) AddToCart(ctx context.Context, id int64) (domain.CartItem, error) {
	product, ok := s.cached(id)
	if !ok {
		fetched, err := s.Product(ctx, id)
		if err != nil {
			return domain.CartItem{}, err
		}
		product = *fetched
	}

	s.cart.Add(product.Ref())
	log.Infof("🛒 Added %q to cart", product.Title)

	for _, item := range s.cart.Items() {
		if item.ProductID == id {
			return item, nil
		}
	}
	return domain.CartItem{}, fmt.Errorf("product %d missing from cart after add", id)
}

func (s *Service) cached(id int64) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			if p.Archived {
				return domain.Product{}, false
			}
			return p, true
		}
	}
	return domain.Product{}, false
}

type Dashboard struct {
	Featured []domain.Product
	Orders   []domain.Order // nil when nobody is logged in or orders failed to load
	// OrdersErr is set when the order history could not be loaded; the
	// featured products are still returned.
	OrdersErr error
}

// Dashboard loads the home page products and, for a logged-in shopper, their
// order history at the same time. Only a failure to load the featured
// products fails the call.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		dashboard Dashboard
		current   = s.session.Current()
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		featured, err := s.client.GetFeatured(gctx, s.featuredLimit)
		if err != nil {
			return actionError(err, msgLoadProducts)
		}
		dashboard.Featured = domain.Available(featured)
		return nil
	})

	if current.LoggedIn() {
		g.Go(func() error {
			orders, err := s.client.GetCustomerOrders(gctx, current.Token)
			if err != nil {
				log.Warnf("⚠️ Failed to load order history: %v", err)
				dashboard.OrdersErr = actionError(err, msgLoadOrders)
				return nil
			}
			dashboard.Orders = orders
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dashboard, nil
}

// Orders returns the logged-in shopper's order history.
func (s *Service) Orders(ctx context.Context) ([]domain.Order, error) {
	current := s.session.Current()
	if !current.LoggedIn() {
		return nil, ErrNotLoggedIn
	}

	orders, err := s.client.GetCustomerOrders(ctx, current.Token)
	if err != nil {
		return nil, actionError(err, msgLoadOrders)
	}
	return orders, nil
}

// Checkout places an order for the whole cart. The cart is cleared only after
// the backend accepts the order.
func (s *Service) Checkout(ctx context.Context, info domain.ShippingInfo) (*domain.Order, error) {
	current := s.session.Current()
	if !current.LoggedIn() {
		return nil, ErrNotLoggedIn
	}

	items := s.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	if missing := info.Missing(); len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	order, err := s.client.PlaceOrder(ctx, current.Token, domain.OrderRequest{
		Items:        domain.OrderLines(items),
		ShippingInfo: info,
	})
	if err != nil {
		log.Errorf("❌ Failed to place order: %v", err)
		return nil, actionError(err, msgPlaceOrder)
	}

	s.cart.Clear()
	log.Infof("✅ Order %d placed", order.ID)
	return order, nil
}

// Contact sends a message through the contact form.
func (s *Service) Contact(ctx context.Context, name, email, message string) error {
	msg := domain.ContactMessage{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Message: strings.TrimSpace(message),
	}

	var invalid []string
	if msg.Name == "" {
		invalid = append(invalid, "name")
	}
	if !contactEmailPattern.MatchString(msg.Email) {
		invalid = append(invalid, "email")
	}
	if utf8.RuneCountInString(msg.Message) < minContactMessage {
		invalid = append(invalid, "message")
	}
	if len(invalid) > 0 {
		return &ActionError{Message: msgCorrectFields, Err: &MissingFieldsError{Fields: invalid}}
	}

	if err := s.client.Contact(ctx, msg); err != nil {
		return actionError(err, msgContact)
	}
	log.Infof("✉️ Contact message sent for %s", msg.Email)
	return nil
}

// SubscribeNewsletter signs email up for the newsletter.
func (s *Service) SubscribeNewsletter(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ActionError{Message: "Please enter your email"}
	}

	err := s.client.Subscribe(ctx, email)
	if err == nil {
		return nil
	}

	var fetchErr *client.FetchError
	if errors.As(err, &fetchErr) {
		switch {
		case fetchErr.IsNetwork():
			return &ActionError{Message: msgNetwork, Err: err}
		case fetchErr.StatusCode == http.StatusBadRequest || fetchErr.StatusCode == http.StatusConflict:
			message := fetchErr.Message
			if message == "" {
				message = "Already subscribed"
			}
			return &ActionError{Message: message, Err: err}
		}
	}
	return &ActionError{Message: msgSubscribe, Err: err}
}
