package notify

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gtera/thiwa/app/models"
)

const divider = "━━━━━━━━━━━━━━━━━━━━━"

// FormatOrderMessage renders the admin-facing WhatsApp message for an order.
// The layout (emoji, dividers, per-item lines) is the one admins already
// receive from the web storefront, so both fronts produce identical messages.
func FormatOrderMessage(order models.Order) string {
	var b strings.Builder

	b.WriteString("🛍️ *NEW ORDER - GTΞRA* 🛍️\n\n")
	b.WriteString(divider + "\n\n")
	fmt.Fprintf(&b, "📅 *Order Date:* %s\n", order.Date.Format("02/01/2006, 15:04"))
	fmt.Fprintf(&b, "💳 *Payment Method:* %s\n", paymentLabel(order.PaymentMethod))
	fmt.Fprintf(&b, "💰 *Total Amount:* LKR %s\n\n", groupDigits(order.ComputeTotal()))
	b.WriteString(divider + "\n\n")
	b.WriteString("📦 *ORDER DETAILS:*\n\n")

	lines := make([]string, 0, len(order.Items))
	for _, it := range order.Items {
		lines = append(lines, itemLine(it))
	}
	b.WriteString(strings.Join(lines, "\n\n"))
	b.WriteString("\n\n" + divider + "\n\n")

	if order.CustomerInfo.Name != "" {
		fmt.Fprintf(&b, "👤 *Customer Name:* %s\n", order.CustomerInfo.Name)
	}
	if order.CustomerInfo.Phone != "" {
		fmt.Fprintf(&b, "📞 *Contact:* %s\n", order.CustomerInfo.Phone)
	}
	if order.CustomerInfo.Address != "" {
		fmt.Fprintf(&b, "📍 *Address:* %s\n\n", order.CustomerInfo.Address)
	} else {
		b.WriteString("\n")
	}

	b.WriteString(divider + "\n\n")
	fmt.Fprintf(&b, "✅ *Status:* %s\n\n", statusLabel(order.PaymentMethod))
	b.WriteString("_Check Admin Dashboard for full order management._")

	return b.String()
}

func itemLine(it models.CartItem) string {
	qty := it.Quantity
	if qty < 1 {
		qty = 1
	}
	size := ""
	if it.Size != "" {
		size = fmt.Sprintf(" [Size: %s]", it.Size)
	}
	return fmt.Sprintf("  • %s%s\n    Qty: %d × LKR %d = LKR %d",
		it.Name, size, qty, it.Price, it.Price*qty)
}

func paymentLabel(m models.PaymentMethod) string {
	if m == models.PaymentOnline {
		return "Online Payment"
	}
	return "Bank Transfer"
}

func statusLabel(m models.PaymentMethod) string {
	if m == models.PaymentOnline {
		return "Payment Successful ✅"
	}
	return "Awaiting Payment Confirmation ⏳"
}

// groupDigits inserts thousands separators: 12500 -> "12,500".
func groupDigits(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s
}

// WhatsAppLinks builds one wa.me deep link per admin number, each carrying
// the full order message URL-encoded. The storefront UI opens these so the
// chat lands in the admins' WhatsApp.
func WhatsAppLinks(admins []string, message string) []string {
	links := make([]string, 0, len(admins))
	encoded := url.QueryEscape(message)
	for _, number := range admins {
		number = strings.TrimSpace(strings.TrimPrefix(number, "+"))
		if number == "" {
			continue
		}
		links = append(links, fmt.Sprintf("https://wa.me/%s?text=%s", number, encoded))
	}
	return links
}
