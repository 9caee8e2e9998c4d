package shop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtera/thiwa/app/models"
)

var testCustomer = models.CustomerInfo{
	Name:    "Nimal Perera",
	Phone:   "0771234567",
	Address: "12 Galle Road, Colombo",
}

type captureNotifier struct {
	orders []models.Order
}

func (n *captureNotifier) OrderPlaced(o models.Order) { n.orders = append(n.orders, o) }

type panicNotifier struct{}

func (panicNotifier) OrderPlaced(models.Order) { panic("boom") }

func TestPlaceOrderHappyPath(t *testing.T) {
	s, _, _ := newTestStore(t)
	require.NoError(t, s.AddToCart(testProduct("p1", 2500), models.SizeM, nil))
	require.NoError(t, s.AddToCart(testProduct("p1", 2500), models.SizeM, nil))
	require.NoError(t, s.AddToCart(testProduct("p2", 3000), models.SizeS, nil))

	order, err := s.PlaceOrder(context.Background(), testCustomer, models.PaymentBankTransfer)
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, 8000, order.Total)
	assert.Equal(t, order.Total, order.ComputeTotal())
	assert.Equal(t, testCustomer, order.CustomerInfo)
	assert.False(t, order.Date.IsZero())

	// Checkout empties the cart only after the order is confirmed.
	assert.Empty(t, s.Cart())

	orders := s.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	s, _, _ := newTestStore(t)

	_, err := s.PlaceOrder(context.Background(), testCustomer, models.PaymentOnline)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, s.Orders())
}

func TestPlaceOrderValidatesBeforeAnyWrite(t *testing.T) {
	s, _, _ := newTestStore(t)
	require.NoError(t, s.AddToCart(testProduct("p1", 2500), models.SizeM, nil))

	incomplete := testCustomer
	incomplete.Address = ""
	_, err := s.PlaceOrder(context.Background(), incomplete, models.PaymentBankTransfer)
	require.True(t, IsValidation(err))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "address")

	// Nothing was written and the cart is untouched.
	assert.Empty(t, s.Orders())
	assert.Len(t, s.Cart(), 1)
}

func TestPlaceOrderRejectsUnknownPaymentMethod(t *testing.T) {
	s, _, _ := newTestStore(t)
	require.NoError(t, s.AddToCart(testProduct("p1", 2500), models.SizeM, nil))

	_, err := s.PlaceOrder(context.Background(), testCustomer, "cheque")
	assert.True(t, IsValidation(err))
	assert.Len(t, s.Cart(), 1)
}

func TestPlaceOrderRemoteFailureKeepsCart(t *testing.T) {
	s, driver, _ := newTestStore(t)
	require.NoError(t, s.AddToCart(testProduct("p1", 2500), models.SizeM, nil))

	driver.SetUnavailable(true)
	_, err := s.PlaceOrder(context.Background(), testCustomer, models.PaymentBankTransfer)
	require.Error(t, err)

	// The customer can retry once the store is back.
	assert.Len(t, s.Cart(), 1)
	driver.SetUnavailable(false)

	_, err = s.PlaceOrder(context.Background(), testCustomer, models.PaymentBankTransfer)
	require.NoError(t, err)
	assert.Empty(t, s.Cart())
}

func TestOrderSnapshotIsImmutable(t *testing.T) {
	s, _, _ := newTestStore(t)

	id, err := s.AddProduct(context.Background(), models.Product{Name: "Snapshot Tee", Price: 2500})
	require.NoError(t, err)
	p, ok := s.Product(id)
	require.True(t, ok)

	require.NoError(t, s.AddToCart(p, models.SizeM, nil))
	order, err := s.PlaceOrder(context.Background(), testCustomer, models.PaymentOnline)
	require.NoError(t, err)

	// A later catalogue price change must not reach the placed order.
	require.NoError(t, s.UpdateProduct(context.Background(), id, map[string]any{"price": 9999}))

	orders := s.Orders()
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, 2500, orders[0].Items[0].Price)
	assert.Equal(t, 2500, order.Items[0].Price)
}

func TestOrdersNewestFirst(t *testing.T) {
	s, _, _ := newTestStore(t)

	require.NoError(t, s.AddToCart(testProduct("p1", 2500), models.SizeM, nil))
	first, err := s.PlaceOrder(context.Background(), testCustomer, models.PaymentBankTransfer)
	require.NoError(t, err)

	require.NoError(t, s.AddToCart(testProduct("p2", 3000), models.SizeM, nil))
	second, err := s.PlaceOrder(context.Background(), testCustomer, models.PaymentOnline)
	require.NoError(t, err)

	orders := s.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}

func TestNotifierReceivesOrderCopy(t *testing.T) {
	n := &captureNotifier{}
	s, _, _ := newTestStore(t, WithNotifier(n))

	require.NoError(t, s.AddToCart(testProduct("p1", 2500), models.SizeM, nil))
	order, err := s.PlaceOrder(context.Background(), testCustomer, models.PaymentBankTransfer)
	require.NoError(t, err)

	require.Len(t, n.orders, 1)
	assert.Equal(t, order.ID, n.orders[0].ID)

	// Mutating the delivered copy must not leak back into the store.
	n.orders[0].Items[0].Price = 1
	assert.Equal(t, 2500, s.Orders()[0].Items[0].Price)
}

func TestPanickingNotifierDoesNotFailOrder(t *testing.T) {
	s, _, _ := newTestStore(t, WithNotifier(panicNotifier{}))

	require.NoError(t, s.AddToCart(testProduct("p1", 2500), models.SizeM, nil))
	order, err := s.PlaceOrder(context.Background(), testCustomer, models.PaymentOnline)
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Empty(t, s.Cart())
}
