package shop

import (
	"github.com/gtera/thiwa/app/models"
	"github.com/gtera/thiwa/pkg/collection"
	"github.com/gtera/thiwa/pkg/event"
	"github.com/gtera/thiwa/pkg/logger"
	"github.com/gtera/thiwa/pkg/metrics"
)

// Cart returns a deep copy of the current cart.
func (s *Store) Cart() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneCart(s.cart)
}

// CartTotal is the sum of price × quantity over the cart.
func (s *Store) CartTotal() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collection.Reduce(s.cart, 0, func(sum int, it models.CartItem) int {
		return sum + it.LineTotal()
	})
}

// AddToCart puts a product in the cart. Cart-line identity is the product id
// alone: adding a product already in the cart increments its quantity even
// when the size differs, in which case the new size and design overwrite the
// line's previous ones. That size-blind identity matches the web storefront
// and is kept on purpose.
func (s *Store) AddToCart(p models.Product, size models.Size, design *models.CustomDesign) error {
	if !size.Valid() {
		return &ValidationError{Fields: map[string]string{"size": "unknown size label"}}
	}
	if p.ID == "" {
		return &ValidationError{Fields: map[string]string{"product": "product id is required"}}
	}

	s.mu.Lock()
	found := false
	for i := range s.cart {
		if s.cart[i].ID == p.ID {
			s.cart[i].Quantity++
			if size != "" {
				s.cart[i].Size = size
			}
			if design != nil {
				d := *design
				s.cart[i].Design = &d
			}
			found = true
			break
		}
	}
	if !found {
		item := models.CartItem{Product: p, Quantity: 1, Size: size}
		if design != nil {
			d := *design
			item.Design = &d
		}
		s.cart = append(s.cart, item)
	}
	s.persistCartLocked()
	snapshot := models.CloneCart(s.cart)
	s.mu.Unlock()

	event.Fire(EventCart, snapshot)
	return nil
}

// RemoveFromCart drops the line whose product id matches. Absent ids are a
// no-op.
func (s *Store) RemoveFromCart(id string) {
	s.mu.Lock()
	s.cart = collection.Reject(s.cart, func(it models.CartItem) bool {
		return it.ID == id
	})
	s.persistCartLocked()
	snapshot := models.CloneCart(s.cart)
	s.mu.Unlock()

	event.Fire(EventCart, snapshot)
}

// ClearCart empties the cart unconditionally.
func (s *Store) ClearCart() {
	s.mu.Lock()
	s.clearCartLocked()
	s.mu.Unlock()

	event.Fire(EventCart, []models.CartItem{})
}

func (s *Store) clearCartLocked() {
	s.cart = nil
	s.persistCartLocked()
}

// persistCartLocked writes the cart through to device storage. A write
// failure only loses durability, not the in-memory cart, so it is logged
// rather than surfaced.
func (s *Store) persistCartLocked() {
	if err := s.local.Save(keyCart, s.cart); err != nil {
		logger.Error("shop: persist cart", "error", err)
	}
	units := collection.Reduce(s.cart, 0, func(sum int, it models.CartItem) int {
		return sum + it.Quantity
	})
	metrics.CartItems.Set(float64(units))
}

// normalizeCart repairs values loaded from disk: quantities below one become
// one, lines without a product id are dropped, and duplicate lines for the
// same product are folded together.
func normalizeCart(items []models.CartItem) []models.CartItem {
	var out []models.CartItem
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		merged := false
		for i := range out {
			if out[i].ID == it.ID {
				out[i].Quantity += it.Quantity
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, it)
		}
	}
	return out
}
