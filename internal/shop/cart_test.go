package shop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtera/thiwa/app/models"
	"github.com/gtera/thiwa/internal/localstore"
	"github.com/gtera/thiwa/internal/remote"
)

func TestAddToCartAggregatesByProductID(t *testing.T) {
	s, _, _ := newTestStore(t)

	p1 := testProduct("p1", 2500)
	p2 := testProduct("p2", 3000)

	require.NoError(t, s.AddToCart(p1, models.SizeM, nil))
	require.NoError(t, s.AddToCart(p1, models.SizeL, nil))
	require.NoError(t, s.AddToCart(p2, models.SizeS, nil))

	cart := s.Cart()
	require.Len(t, cart, 2)
	assert.Equal(t, "p1", cart[0].ID)
	assert.Equal(t, 2, cart[0].Quantity)
	// Same product, different size: still one line, last size wins.
	assert.Equal(t, models.SizeL, cart[0].Size)
	assert.Equal(t, 1, cart[1].Quantity)
}

func TestAddToCartKeepsDesignFromLastAdd(t *testing.T) {
	s, _, _ := newTestStore(t)
	p := testProduct("p1", 2500)

	require.NoError(t, s.AddToCart(p, models.SizeM, &models.CustomDesign{FrontText: "first"}))
	require.NoError(t, s.AddToCart(p, models.SizeM, &models.CustomDesign{FrontText: "second"}))

	cart := s.Cart()
	require.Len(t, cart, 1)
	require.NotNil(t, cart[0].Design)
	assert.Equal(t, "second", cart[0].Design.FrontText)
}

func TestAddToCartValidation(t *testing.T) {
	s, _, _ := newTestStore(t)

	err := s.AddToCart(testProduct("p1", 2500), "XS", nil)
	assert.True(t, IsValidation(err))

	err = s.AddToCart(testProduct("", 2500), models.SizeM, nil)
	assert.True(t, IsValidation(err))

	assert.Empty(t, s.Cart())
}

func TestCartTotal(t *testing.T) {
	s, _, _ := newTestStore(t)

	require.NoError(t, s.AddToCart(testProduct("p1", 2500), models.SizeM, nil))
	require.NoError(t, s.AddToCart(testProduct("p1", 2500), models.SizeM, nil))
	require.NoError(t, s.AddToCart(testProduct("p2", 3000), models.SizeS, nil))

	assert.Equal(t, 8000, s.CartTotal())
}

func TestRemoveFromCart(t *testing.T) {
	s, _, _ := newTestStore(t)
	require.NoError(t, s.AddToCart(testProduct("p1", 2500), models.SizeM, nil))

	s.RemoveFromCart("p1")
	assert.Empty(t, s.Cart())

	// Unknown ids are a no-op.
	s.RemoveFromCart("nope")
	assert.Empty(t, s.Cart())
}

func TestClearCart(t *testing.T) {
	s, _, _ := newTestStore(t)
	require.NoError(t, s.AddToCart(testProduct("p1", 2500), models.SizeM, nil))
	require.NoError(t, s.AddToCart(testProduct("p2", 3000), models.SizeM, nil))

	s.ClearCart()
	assert.Empty(t, s.Cart())
	assert.Equal(t, 0, s.CartTotal())
}

func TestCartReturnsDeepCopy(t *testing.T) {
	s, _, _ := newTestStore(t)
	require.NoError(t, s.AddToCart(testProduct("p1", 2500), models.SizeM, &models.CustomDesign{FrontText: "mine"}))

	cart := s.Cart()
	cart[0].Quantity = 99
	cart[0].Design.FrontText = "tampered"

	fresh := s.Cart()
	assert.Equal(t, 1, fresh[0].Quantity)
	assert.Equal(t, "mine", fresh[0].Design.FrontText)
}

func TestCartSurvivesRestart(t *testing.T) {
	driver := remote.NewMemoryDriver()
	local := localstore.NewMemStore()

	s := New(driver, local)
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.AddToCart(testProduct("p1", 2500), models.SizeM, nil))
	require.NoError(t, s.AddToCart(testProduct("p1", 2500), models.SizeM, nil))
	s.Close()

	// Same device storage, fresh process.
	s2 := New(driver, local)
	require.NoError(t, s2.Start(context.Background()))
	t.Cleanup(s2.Close)

	cart := s2.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].Quantity)
}

func TestCorruptCartFallsBackToEmpty(t *testing.T) {
	driver := remote.NewMemoryDriver()
	local := localstore.NewMemStore()
	require.NoError(t, local.Save(keyCart, "definitely not a cart"))

	s := New(driver, local)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Close)

	assert.Empty(t, s.Cart())
}

func TestNormalizeCart(t *testing.T) {
	in := []models.CartItem{
		{Product: testProduct("p1", 2500), Quantity: 0},
		{Product: testProduct("", 100), Quantity: 3},
		{Product: testProduct("p1", 2500), Quantity: 2},
		{Product: testProduct("p2", 3000), Quantity: 1},
	}

	out := normalizeCart(in)
	require.Len(t, out, 2)
	assert.Equal(t, "p1", out[0].ID)
	assert.Equal(t, 3, out[0].Quantity) // 0 clamped to 1, then folded with 2
	assert.Equal(t, "p2", out[1].ID)
}
