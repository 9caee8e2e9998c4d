package controllers

import (
	"errors"
	"net/http"

	"github.com/gtera/thiwa/app/models"
	"github.com/gtera/thiwa/internal/notify"
	"github.com/gtera/thiwa/internal/shop"
	"github.com/gtera/thiwa/pkg/auth"
	"github.com/gtera/thiwa/pkg/ctx"
	"github.com/gtera/thiwa/pkg/logger"
	"github.com/gtera/thiwa/pkg/resource"
)

// ShopController serves the public storefront API: catalogue, gallery, cart,
// checkout, and the admin login that mints API tokens.
type ShopController struct {
	store    *shop.Store
	notifier *notify.Notifier
}

func NewShopController(store *shop.Store, notifier *notify.Notifier) *ShopController {
	return &ShopController{store: store, notifier: notifier}
}

// respondShopError maps state-store errors onto the JSON envelope.
func respondShopError(c *ctx.Context, err error) {
	var verr *shop.ValidationError
	switch {
	case errors.As(err, &verr):
		c.ValidationError(verr.Fields)
	case errors.Is(err, shop.ErrEmptyCart):
		c.Error(http.StatusBadRequest, "cart is empty")
	case errors.Is(err, shop.ErrInvalidCredentials):
		c.Unauthorized("invalid credentials")
	default:
		logger.Error("http: shop operation failed", "error", err)
		c.Error(http.StatusBadGateway, "store temporarily unavailable, please retry")
	}
}

// ─── Catalogue ────────────────────────────────────────────────────────────────

// ProductResource shapes one catalogue entry for API output.
type ProductResource struct{ resource.Base }

func (ProductResource) ToArray(v interface{}) resource.Map {
	m, _ := v.(map[string]interface{})
	return resource.Map{
		"id":          m["id"],
		"name":        m["name"],
		"price":       m["price"],
		"image":       m["image"],
		"description": m["description"],
		"category":    m["category"],
	}
}

func (sc *ShopController) Products(c *ctx.Context) {
	resource.CollectionOf(&ProductResource{}, sc.store.Products()).Respond(c.W)
}

func (sc *ShopController) Product(c *ctx.Context) {
	p, ok := sc.store.Product(c.Param("id"))
	if !ok {
		c.NotFound("product not found")
		return
	}
	c.Success(p)
}

func (sc *ShopController) Gallery(c *ctx.Context) {
	c.Success(sc.store.Gallery())
}

func (sc *ShopController) PaymentInstructions(c *ctx.Context) {
	c.Success(map[string]string{"text": sc.store.PaymentInstructions()})
}

// ─── Cart ─────────────────────────────────────────────────────────────────────

func (sc *ShopController) Cart(c *ctx.Context) {
	c.Success(map[string]any{
		"items": sc.store.Cart(),
		"total": sc.store.CartTotal(),
	})
}

type addToCartInput struct {
	ProductID string               `json:"productId" validate:"required"`
	Size      models.Size          `json:"size"`
	Design    *models.CustomDesign `json:"design"`
}

func (sc *ShopController) AddToCart(c *ctx.Context) {
	var in addToCartInput
	if !c.BindJSON(&in) {
		return
	}

	p, ok := sc.store.Product(in.ProductID)
	if !ok {
		c.NotFound("product not found")
		return
	}
	if err := sc.store.AddToCart(p, in.Size, in.Design); err != nil {
		respondShopError(c, err)
		return
	}
	sc.Cart(c)
}

func (sc *ShopController) RemoveFromCart(c *ctx.Context) {
	sc.store.RemoveFromCart(c.Param("id"))
	sc.Cart(c)
}

func (sc *ShopController) ClearCart(c *ctx.Context) {
	sc.store.ClearCart()
	sc.Cart(c)
}

// ─── Checkout ─────────────────────────────────────────────────────────────────

type checkoutInput struct {
	Customer      models.CustomerInfo  `json:"customer"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

// Checkout places the order and returns it along with one wa.me link per
// admin so the UI can open the notification chats. Bank-transfer orders also
// carry the deposit instructions the customer needs next.
func (sc *ShopController) Checkout(c *ctx.Context) {
	var in checkoutInput
	if !c.BindJSON(&in) {
		return
	}

	order, err := sc.store.PlaceOrder(c.Context(), in.Customer, in.PaymentMethod)
	if err != nil {
		respondShopError(c, err)
		return
	}

	body := map[string]any{
		"order":    order,
		"whatsapp": sc.notifier.Links(order),
	}
	if order.PaymentMethod == models.PaymentBankTransfer {
		body["paymentInstructions"] = sc.store.PaymentInstructions()
	}
	c.Created(body)
}

// ─── Admin session ────────────────────────────────────────────────────────────

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates against the shared admin credentials and mints the
// bearer tokens for the admin API.
func (sc *ShopController) Login(c *ctx.Context) {
	var in loginInput
	if !c.BindJSON(&in) {
		return
	}

	if err := sc.store.LoginAdmin(in.Username, in.Password); err != nil {
		respondShopError(c, err)
		return
	}

	token, err := auth.GenerateToken(in.Username)
	if err != nil {
		c.Error(http.StatusInternalServerError, "could not issue token")
		return
	}
	refresh, err := auth.GenerateRefreshToken(in.Username)
	if err != nil {
		c.Error(http.StatusInternalServerError, "could not issue token")
		return
	}

	c.Success(map[string]string{
		"token":        token,
		"refreshToken": refresh,
	})
}

func (sc *ShopController) Logout(c *ctx.Context) {
	sc.store.LogoutAdmin()
	c.Success(map[string]bool{"isAdmin": false})
}

func (sc *ShopController) Session(c *ctx.Context) {
	c.Success(map[string]bool{"isAdmin": sc.store.IsAdmin()})
}
