package shop

import (
	"context"
	"time"

	"github.com/gtera/thiwa/app/models"
	"github.com/gtera/thiwa/internal/remote"
	"github.com/gtera/thiwa/pkg/event"
	"github.com/gtera/thiwa/pkg/logger"
	"github.com/gtera/thiwa/pkg/metrics"
	"github.com/gtera/thiwa/pkg/validate"
)

// PlaceOrder turns the current cart into a persisted Pending order.
//
// The flow is strict about ordering: validation happens before any remote
// call, the item snapshot is a deep copy taken before the write, and the
// cart is cleared only after the remote store has confirmed the order. A
// remote failure therefore leaves the cart intact so the customer can retry.
// The notification side-channel runs after the order is safe and can never
// fail it.
func (s *Store) PlaceOrder(ctx context.Context, info models.CustomerInfo, method models.PaymentMethod) (models.Order, error) {
	if errs := validate.Struct(&info); validate.HasErrors(errs) {
		return models.Order{}, &ValidationError{Fields: errs}
	}
	if !method.Valid() {
		return models.Order{}, &ValidationError{Fields: map[string]string{
			"paymentMethod": "must be bank-transfer or online",
		}}
	}

	s.mu.RLock()
	items := models.CloneCart(s.cart)
	s.mu.RUnlock()

	if len(items) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	order := models.Order{
		Date:          time.Now().UTC(),
		Status:        models.OrderPending,
		Items:         items,
		CustomerInfo:  info,
		PaymentMethod: method,
	}
	order.Total = order.ComputeTotal()

	id, err := s.remote.Create(ctx, remote.Orders, order)
	if err != nil {
		// Not recorded: keep the cart so the caller can surface the failure
		// and resubmit.
		return models.Order{}, err
	}
	order.ID = id

	s.mu.Lock()
	s.clearCartLocked()
	s.mu.Unlock()
	event.Fire(EventCart, []models.CartItem{})

	metrics.OrdersPlaced.WithLabelValues(string(method)).Inc()

	if s.notifier != nil {
		// Best-effort hand-off; a panicking notifier must not undo the order.
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("shop: notifier panicked", "error", r)
				}
			}()
			s.notifier.OrderPlaced(order.Clone())
		}()
	}

	return order, nil
}
