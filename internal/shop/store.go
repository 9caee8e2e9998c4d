// Package shop implements the storefront's central state store: the single
// source of truth the UI reads, and the only component allowed to touch the
// two persistence adapters.
//
// Remote-synced collections (products, gallery, settings, orders) live in the
// shared document store; the Store keeps a read-through cache per collection
// that is written exclusively by that collection's subscription callback.
// UI-triggered writes always go through the remote driver and show up in the
// cache only once the store confirms them. The cart and the admin-session
// flag are the exception: they are device-local, written synchronously, and
// never leave the device except as a snapshot inside a placed order.
package shop

import (
	"context"
	"fmt"
	"sync"

	"github.com/gtera/thiwa/app/models"
	"github.com/gtera/thiwa/internal/localstore"
	"github.com/gtera/thiwa/internal/remote"
	"github.com/gtera/thiwa/pkg/event"
	"github.com/gtera/thiwa/pkg/logger"
	"github.com/gtera/thiwa/pkg/metrics"
)

// Local persistence keys, kept byte-compatible with the web storefront.
const (
	keyCart    = "thiwa_cart"
	keyIsAdmin = "thiwa_isAdmin"
)

// Event topics fired after a confirmed collection change or a cart mutation.
// Payload is the fresh snapshot (a copy callers may keep).
const (
	EventProducts = "shop.products.updated"
	EventGallery  = "shop.gallery.updated"
	EventSettings = "shop.settings.updated"
	EventOrders   = "shop.orders.updated"
	EventCart     = "shop.cart.updated"
)

// Notifier is the outbound side-channel invoked after an order is persisted.
// It is best-effort: the store ignores anything that goes wrong inside it.
type Notifier interface {
	OrderPlaced(order models.Order)
}

// Store is the shop state store. Construct with New, wire the adapters, then
// Start it. All methods are safe for concurrent use.
type Store struct {
	remote   remote.Driver
	local    localstore.Store
	notifier Notifier

	// mu serialises cache writes; subscription callbacks are the only
	// writers for remote collections, cart ops for the local ones.
	mu sync.RWMutex

	products []models.Product
	gallery  []models.GalleryImage
	orders   []models.Order
	settings models.Settings
	cart     []models.CartItem
	isAdmin  bool

	// ids of the settings singletons, learned from the subscription.
	adminDocID   string
	paymentDocID string

	seedMu sync.Mutex
	seeded map[remote.Collection]bool

	unsubs  []remote.Unsubscribe
	started bool
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier attaches the order notification side-channel.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// New builds a Store around the given adapters. Nothing is loaded or
// subscribed until Start.
func New(r remote.Driver, l localstore.Store, opts ...Option) *Store {
	s := &Store{
		remote: r,
		local:  l,
		seeded: make(map[remote.Collection]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start restores device-local state and subscribes to all four remote
// collections. The initial snapshot for each collection is delivered before
// Start returns (the drivers fire the first callback synchronously).
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("shop: store already started")
	}
	s.started = true

	s.cart = nil
	s.local.Load(keyCart, &s.cart)
	s.cart = normalizeCart(s.cart)

	s.isAdmin = false
	s.local.Load(keyIsAdmin, &s.isAdmin)
	s.mu.Unlock()

	subs := []struct {
		col Collection
		fn  func([]remote.Document)
	}{
		{remote.Products, s.onProducts},
		{remote.Gallery, s.onGallery},
		{remote.Settings, s.onSettings},
		{remote.Orders, s.onOrders},
	}
	for _, sub := range subs {
		unsub, err := s.remote.Subscribe(ctx, sub.col, sub.fn)
		if err != nil {
			s.Close()
			return fmt.Errorf("shop: subscribe %s: %w", sub.col, err)
		}
		s.mu.Lock()
		s.unsubs = append(s.unsubs, unsub)
		s.mu.Unlock()
	}
	return nil
}

// Collection aliases the remote collection name type for callers that only
// import this package.
type Collection = remote.Collection

// Close releases every subscription handle. Idempotent.
func (s *Store) Close() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.started = false
	s.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
}

// ── Subscription callbacks ────────────────────────────────────────────────────

func (s *Store) onProducts(docs []remote.Document) {
	items := decodeAll[models.Product](remote.Products, docs)

	s.mu.Lock()
	s.products = items
	snapshot := append([]models.Product(nil), items...)
	s.mu.Unlock()

	metrics.RecordSnapshot(string(remote.Products), len(docs))
	s.maybeSeed(remote.Products, len(docs))
	event.Fire(EventProducts, snapshot)
}

func (s *Store) onGallery(docs []remote.Document) {
	items := decodeAll[models.GalleryImage](remote.Gallery, docs)

	s.mu.Lock()
	s.gallery = items
	snapshot := append([]models.GalleryImage(nil), items...)
	s.mu.Unlock()

	metrics.RecordSnapshot(string(remote.Gallery), len(docs))
	s.maybeSeed(remote.Gallery, len(docs))
	event.Fire(EventGallery, snapshot)
}

func (s *Store) onOrders(docs []remote.Document) {
	items := decodeAll[models.Order](remote.Orders, docs)

	s.mu.Lock()
	s.orders = items
	snapshot := append([]models.Order(nil), items...)
	s.mu.Unlock()

	// Orders are never seeded; an empty shop has no orders.
	metrics.RecordSnapshot(string(remote.Orders), len(docs))
	event.Fire(EventOrders, snapshot)
}

// settingsDoc is the wire shape of the two settings singletons, told apart by
// their key field.
type settingsDoc struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Text     string `json:"text,omitempty"`
}

func (s *Store) onSettings(docs []remote.Document) {
	var settings models.Settings
	var adminID, paymentID string

	for _, doc := range docs {
		var sd settingsDoc
		if err := remote.Decode(doc, &sd); err != nil {
			logger.Warn("shop: skipping bad settings document", "id", doc.ID, "error", err)
			continue
		}
		switch sd.Key {
		case "admin":
			settings.Admin = models.AdminCredentials{Username: sd.Username, Password: sd.Password}
			adminID = doc.ID
		case "payment":
			settings.Payment = models.PaymentInstructions{Text: sd.Text}
			paymentID = doc.ID
		}
	}

	s.mu.Lock()
	s.settings = settings
	s.adminDocID = adminID
	s.paymentDocID = paymentID
	s.mu.Unlock()

	metrics.RecordSnapshot(string(remote.Settings), len(docs))
	s.maybeSeed(remote.Settings, len(docs))
	// Credentials stay out of the event payload; only the public half goes out.
	event.Fire(EventSettings, settings.Payment)
}

// decodeAll unmarshals a snapshot, dropping documents that fail to decode.
// A bad document in the shared store must not take the whole collection down.
func decodeAll[T any](col remote.Collection, docs []remote.Document) []T {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := remote.Decode(doc, &v); err != nil {
			logger.Warn("shop: skipping bad document", "collection", col, "id", doc.ID, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out
}

// ── Read accessors ────────────────────────────────────────────────────────────

// Products returns a copy of the cached catalogue.
func (s *Store) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.products...)
}

// Product looks up one catalogue entry by id.
func (s *Store) Product(id string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// Gallery returns a copy of the cached gallery.
func (s *Store) Gallery() []models.GalleryImage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.GalleryImage(nil), s.gallery...)
}

// Orders returns a copy of the cached orders, newest first.
func (s *Store) Orders() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneOrders(s.orders)
}

// PaymentInstructions returns the checkout bank-transfer text.
func (s *Store) PaymentInstructions() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Payment.Text
}

// ── Catalogue mutations ───────────────────────────────────────────────────────
// These forward to the remote driver. The local cache catches up through the
// subscription, so callers must not expect the change to be visible on return.

// AddProduct inserts a catalogue entry and returns its assigned id.
func (s *Store) AddProduct(ctx context.Context, p models.Product) (string, error) {
	if p.Name == "" {
		return "", &ValidationError{Fields: map[string]string{"name": "name is required"}}
	}
	if p.Price < 0 {
		return "", &ValidationError{Fields: map[string]string{"price": "price must not be negative"}}
	}
	p.ID = ""
	return s.remote.Create(ctx, remote.Products, p)
}

// UpdateProduct merges fields into an existing catalogue entry.
func (s *Store) UpdateProduct(ctx context.Context, id string, fields map[string]any) error {
	return s.remote.Update(ctx, remote.Products, id, fields)
}

// RemoveProduct deletes a catalogue entry. Unknown ids are a no-op.
func (s *Store) RemoveProduct(ctx context.Context, id string) error {
	return s.remote.Delete(ctx, remote.Products, id)
}

// AddGalleryImage appends a gallery image and returns its assigned id.
func (s *Store) AddGalleryImage(ctx context.Context, image string) (string, error) {
	if image == "" {
		return "", &ValidationError{Fields: map[string]string{"image": "image is required"}}
	}
	return s.remote.Create(ctx, remote.Gallery, models.GalleryImage{Image: image})
}

// RemoveGalleryImage deletes a gallery image. Unknown ids are a no-op.
func (s *Store) RemoveGalleryImage(ctx context.Context, id string) error {
	return s.remote.Delete(ctx, remote.Gallery, id)
}
