// Package models defines the storefront's document types as they are stored
// in the remote collections and the on-device store.
package models

import "time"

// Size is a garment size label.
type Size string

const (
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	Size2XL Size = "2XL"
)

// Sizes lists every valid size label in display order.
var Sizes = []Size{SizeS, SizeM, SizeL, SizeXL, Size2XL}

// Valid reports whether s is one of the known size labels.
// The empty size is valid: it means "no size chosen".
func (s Size) Valid() bool {
	if s == "" {
		return true
	}
	for _, v := range Sizes {
		if s == v {
			return true
		}
	}
	return false
}

// Product is one catalogue entry. Price is in minor currency units (whole
// LKR for this deployment). Image is a URL or a data-URI payload.
type Product struct {
	ID          string `json:"id" bson:"_id,omitempty"`
	Name        string `json:"name" bson:"name" validate:"required,max=255"`
	Price       int    `json:"price" bson:"price" validate:"required,gte=0"`
	Image       string `json:"image" bson:"image"`
	Description string `json:"description" bson:"description"`
	Category    string `json:"category" bson:"category"`
}

// GalleryImage is a single showcase image. Append and remove only.
type GalleryImage struct {
	ID    string `json:"id" bson:"_id,omitempty"`
	Image string `json:"image" bson:"image" validate:"required"`
}

// CustomDesign carries the t-shirt designer payload attached to a cart line:
// per-side artwork, text and its styling.
type CustomDesign struct {
	FrontImage string `json:"frontImage,omitempty" bson:"frontImage,omitempty"`
	BackImage  string `json:"backImage,omitempty" bson:"backImage,omitempty"`
	FrontText  string `json:"frontText,omitempty" bson:"frontText,omitempty"`
	BackText   string `json:"backText,omitempty" bson:"backText,omitempty"`
	Color      string `json:"color,omitempty" bson:"color,omitempty"`
	Font       string `json:"font,omitempty" bson:"font,omitempty"`
}

// CartItem is a product plus purchase details. Cart identity is the product
// id alone; Quantity is always >= 1.
type CartItem struct {
	Product  `bson:",inline"`
	Quantity int           `json:"quantity" bson:"quantity"`
	Size     Size          `json:"size,omitempty" bson:"size,omitempty"`
	Design   *CustomDesign `json:"design,omitempty" bson:"design,omitempty"`
}

// LineTotal is price × quantity for this line.
func (i CartItem) LineTotal() int {
	qty := i.Quantity
	if qty < 1 {
		qty = 1
	}
	return i.Price * qty
}

// Clone returns a deep copy of the item. Order snapshots must not share
// memory with the live cart.
func (i CartItem) Clone() CartItem {
	out := i
	if i.Design != nil {
		d := *i.Design
		out.Design = &d
	}
	return out
}

// CloneCart deep-copies a whole cart.
func CloneCart(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	for n, it := range items {
		out[n] = it.Clone()
	}
	return out
}

// CustomerInfo is the contact record captured at checkout. All fields are
// required; orders with any field missing are rejected before any remote call.
type CustomerInfo struct {
	Name    string `json:"name" bson:"name" validate:"required"`
	Phone   string `json:"phone" bson:"phone" validate:"required"`
	Address string `json:"address" bson:"address" validate:"required"`
}

// PaymentMethod tags how the customer chose to pay.
type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "bank-transfer"
	PaymentOnline       PaymentMethod = "online"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentBankTransfer || m == PaymentOnline
}

// OrderStatus is the order lifecycle state. The storefront only ever writes
// Pending; the remaining statuses exist for external admin tooling.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderConfirmed OrderStatus = "Confirmed"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

// Order is a placed order as persisted in the orders collection. Items are a
// point-in-time snapshot of the cart: later catalogue or cart edits never
// touch a placed order.
type Order struct {
	ID            string        `json:"id" bson:"_id,omitempty"`
	Date          time.Time     `json:"date" bson:"date"`
	Status        OrderStatus   `json:"status" bson:"status"`
	Items         []CartItem    `json:"items" bson:"items"`
	CustomerInfo  CustomerInfo  `json:"customerInfo" bson:"customerInfo"`
	PaymentMethod PaymentMethod `json:"paymentMethod" bson:"paymentMethod"`
	Total         int           `json:"total" bson:"total"`
}

// ComputeTotal sums price × quantity over the item snapshot. The stored Total
// field is informational only; readers recompute to avoid drift.
func (o Order) ComputeTotal() int {
	total := 0
	for _, it := range o.Items {
		total += it.LineTotal()
	}
	return total
}

// Clone deep-copies an order, including its item snapshot.
func (o Order) Clone() Order {
	out := o
	out.Items = CloneCart(o.Items)
	return out
}

// CloneOrders deep-copies a slice of orders.
func CloneOrders(orders []Order) []Order {
	if orders == nil {
		return nil
	}
	out := make([]Order, len(orders))
	for n, o := range orders {
		out[n] = o.Clone()
	}
	return out
}

// AdminCredentials is the settings/admin singleton. The comparison is a
// plaintext equality check; see the login flow for the documented trade-off.
type AdminCredentials struct {
	Username string `json:"username" bson:"username" validate:"required"`
	Password string `json:"password" bson:"password" validate:"required"`
}

// PaymentInstructions is the settings/payment singleton shown at checkout on
// the bank-transfer path.
type PaymentInstructions struct {
	Text string `json:"text" bson:"text"`
}

// Settings bundles both singletons as the shop store caches them.
type Settings struct {
	Admin   AdminCredentials    `json:"admin"`
	Payment PaymentInstructions `json:"payment"`
}
