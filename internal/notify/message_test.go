package notify

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtera/thiwa/app/models"
)

func sampleOrder() models.Order {
	return models.Order{
		ID:     "ord-1",
		Date:   time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		Status: models.OrderPending,
		Items: []models.CartItem{
			{Product: models.Product{ID: "p1", Name: "Abstract Art Tee", Price: 2800}, Quantity: 2, Size: models.SizeM},
			{Product: models.Product{ID: "p2", Name: "Flora Design White", Price: 2600}, Quantity: 1},
		},
		CustomerInfo: models.CustomerInfo{
			Name:    "Nimal Perera",
			Phone:   "0771234567",
			Address: "12 Galle Road, Colombo",
		},
		PaymentMethod: models.PaymentBankTransfer,
	}
}

func TestFormatOrderMessage(t *testing.T) {
	msg := FormatOrderMessage(sampleOrder())

	assert.Contains(t, msg, "*NEW ORDER - GTΞRA*")
	assert.Contains(t, msg, "*Order Date:* 14/03/2025, 09:30")
	assert.Contains(t, msg, "*Payment Method:* Bank Transfer")
	assert.Contains(t, msg, "*Total Amount:* LKR 8,200")
	assert.Contains(t, msg, "• Abstract Art Tee [Size: M]\n    Qty: 2 × LKR 2800 = LKR 5600")
	// No size chosen: no size suffix on the line.
	assert.Contains(t, msg, "• Flora Design White\n    Qty: 1 × LKR 2600 = LKR 2600")
	assert.Contains(t, msg, "*Customer Name:* Nimal Perera")
	assert.Contains(t, msg, "*Contact:* 0771234567")
	assert.Contains(t, msg, "*Address:* 12 Galle Road, Colombo")
	assert.Contains(t, msg, "Awaiting Payment Confirmation")
}

func TestFormatOrderMessageOnlinePayment(t *testing.T) {
	order := sampleOrder()
	order.PaymentMethod = models.PaymentOnline

	msg := FormatOrderMessage(order)
	assert.Contains(t, msg, "*Payment Method:* Online Payment")
	assert.Contains(t, msg, "Payment Successful")
}

func TestGroupDigits(t *testing.T) {
	assert.Equal(t, "0", groupDigits(0))
	assert.Equal(t, "999", groupDigits(999))
	assert.Equal(t, "2,500", groupDigits(2500))
	assert.Equal(t, "1,234,567", groupDigits(1234567))
	assert.Equal(t, "-8,000", groupDigits(-8000))
}

func TestWhatsAppLinks(t *testing.T) {
	links := WhatsAppLinks([]string{"94726444214", "+94773274491", " ", ""}, "hello order")

	require.Len(t, links, 2)
	assert.True(t, strings.HasPrefix(links[0], "https://wa.me/94726444214?text="))
	// The plus prefix is stripped; wa.me wants bare digits.
	assert.True(t, strings.HasPrefix(links[1], "https://wa.me/94773274491?text="))

	u, err := url.Parse(links[0])
	require.NoError(t, err)
	assert.Equal(t, "hello order", u.Query().Get("text"))
}

func TestLinksCarryFullMessage(t *testing.T) {
	n := &Notifier{admins: []string{"94726444214"}}
	links := n.Links(sampleOrder())

	require.Len(t, links, 1)
	u, err := url.Parse(links[0])
	require.NoError(t, err)
	assert.Contains(t, u.Query().Get("text"), "NEW ORDER - GTΞRA")
}
