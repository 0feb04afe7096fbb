// Package cart keeps the shopper's line items and mirrors them to storage
// after every change.
package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"furnistore/storefront/internal/domain"
	"furnistore/storefront/internal/storage"

	log "github.com/sirupsen/logrus"
)

// StorageKey is where the cart is persisted.
const StorageKey = "cart"

const defaultPersistTimeout = 5 * time.Second

type Listener func(items []domain.CartItem)

type Store struct {
	mu      sync.Mutex
	items   []domain.CartItem
	storage storage.Storage
	timeout time.Duration

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

// NewStore loads the persisted cart. A missing or unreadable value yields an
// empty cart rather than an error.
func NewStore(ctx context.Context, st storage.Storage, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultPersistTimeout
	}
	s := &Store{
		storage:   st,
		timeout:   timeout,
		listeners: make(map[int]Listener),
	}
	s.items = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []domain.CartItem {
	raw, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warnf("⚠️ Could not read saved cart, starting empty: %v", err)
		}
		return []domain.CartItem{}
	}

	items, err := Decode(raw)
	if err != nil {
		log.Warnf("⚠️ Saved cart is corrupt, starting empty: %v", err)
		return []domain.CartItem{}
	}
	return items
}

// Add puts one unit of the product in the cart. The price is captured now and
// never refreshed.
func (s *Store) Add(ref domain.ProductRef) {
	s.mutate(func(items []domain.CartItem) []domain.CartItem {
		for i := range items {
			if items[i].ProductID == ref.ID {
				items[i].Quantity++
				return items
			}
		}
		return append(items, domain.CartItem{
			ProductID: ref.ID,
			Title:     ref.Title,
			Price:     ref.Price,
			Quantity:  1,
			ImageURL:  ref.ImageURL,
		})
	})
}

// Remove drops the product's line. Unknown ids are ignored.
func (s *Store) Remove(productID int64) {
	s.mutate(func(items []domain.CartItem) []domain.CartItem {
		return removeLine(items, productID)
	})
}

// SetQuantity overwrites a line's quantity; zero or less removes the line.
// Products not in the cart are ignored.
func (s *Store) SetQuantity(productID int64, quantity int) {
	s.mutate(func(items []domain.CartItem) []domain.CartItem {
		if quantity <= 0 {
			return removeLine(items, productID)
		}
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity = quantity
			}
		}
		return items
	})
}

func (s *Store) Clear() {
	s.mutate(func([]domain.CartItem) []domain.CartItem {
		return []domain.CartItem{}
	})
}

// Items returns a copy of the current lines in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.items)
}

func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, item := range s.items {
		total += item.Subtotal()
	}
	return total
}

// Count is the number of units across all lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned func unregisters it.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) mutate(fn func(items []domain.CartItem) []domain.CartItem) {
	s.mu.Lock()
	s.items = fn(snapshot(s.items))
	items := snapshot(s.items)
	s.persist(items)
	s.mu.Unlock()

	s.notify(items)
}

// persist runs under s.mu so writes reach storage in mutation order.
func (s *Store) persist(items []domain.CartItem) {
	raw, err := Encode(items)
	if err != nil {
		log.Errorf("❌ Failed to encode cart: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.storage.Set(ctx, StorageKey, raw); err != nil {
		log.Warnf("⚠️ Failed to save cart, keeping it in memory only: %v", err)
	}
}

func (s *Store) notify(items []domain.CartItem) {
	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(snapshot(items))
	}
}

func removeLine(items []domain.CartItem, productID int64) []domain.CartItem {
	out := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}

func snapshot(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}
