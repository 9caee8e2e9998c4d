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

// newTestStore wires a started Store around the in-process fakes. The remote
// driver starts empty, so the default seed runs during Start.
func newTestStore(t *testing.T, opts ...Option) (*Store, *remote.MemoryDriver, *localstore.MemStore) {
	t.Helper()
	driver := remote.NewMemoryDriver()
	local := localstore.NewMemStore()
	s := New(driver, local, opts...)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Close)
	return s, driver, local
}

func testProduct(id string, price int) models.Product {
	return models.Product{ID: id, Name: "Tee " + id, Price: price, Category: "Men"}
}

func TestStartSeedsEmptyStore(t *testing.T) {
	s, _, _ := newTestStore(t)

	assert.Len(t, s.Products(), len(defaultProducts))
	assert.Len(t, s.Gallery(), len(defaultGallery))
	assert.Equal(t, defaultPaymentInstructions, s.PaymentInstructions())

	// The seeded admin credentials must be usable straight away.
	require.NoError(t, s.LoginAdmin(defaultAdminCredentials.Username, defaultAdminCredentials.Password))
	assert.True(t, s.IsAdmin())
}

func TestStartSkipsSeedWhenPopulated(t *testing.T) {
	driver := remote.NewMemoryDriver()
	_, err := driver.Create(context.Background(), remote.Products, testProduct("", 1200))
	require.NoError(t, err)

	s := New(driver, localstore.NewMemStore())
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Close)

	products := s.Products()
	require.Len(t, products, 1)
	assert.Equal(t, 1200, products[0].Price)
}

func TestStartTwiceFails(t *testing.T) {
	s, _, _ := newTestStore(t)
	assert.Error(t, s.Start(context.Background()))
}

func TestCloseReleasesSubscriptions(t *testing.T) {
	driver := remote.NewMemoryDriver()
	s := New(driver, localstore.NewMemStore())
	require.NoError(t, s.Start(context.Background()))

	for _, col := range remote.Collections {
		require.Equal(t, 1, driver.SubscriberCount(col), col)
	}

	s.Close()
	for _, col := range remote.Collections {
		assert.Equal(t, 0, driver.SubscriberCount(col), col)
	}

	// Idempotent.
	s.Close()
}

func TestCatalogueChangesArriveThroughSubscription(t *testing.T) {
	s, _, _ := newTestStore(t)
	before := len(s.Products())

	id, err := s.AddProduct(context.Background(), models.Product{Name: "Limited Run", Price: 3500})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// MemoryDriver delivers snapshots synchronously, so the cache is fresh.
	p, ok := s.Product(id)
	require.True(t, ok)
	assert.Equal(t, "Limited Run", p.Name)
	assert.Len(t, s.Products(), before+1)

	require.NoError(t, s.UpdateProduct(context.Background(), id, map[string]any{"price": 3900}))
	p, _ = s.Product(id)
	assert.Equal(t, 3900, p.Price)

	require.NoError(t, s.RemoveProduct(context.Background(), id))
	_, ok = s.Product(id)
	assert.False(t, ok)
}

func TestAddProductRejectsInvalidInput(t *testing.T) {
	s, _, _ := newTestStore(t)

	_, err := s.AddProduct(context.Background(), models.Product{Price: 100})
	assert.True(t, IsValidation(err))

	_, err = s.AddProduct(context.Background(), models.Product{Name: "x", Price: -1})
	assert.True(t, IsValidation(err))
}

func TestBadDocumentIsSkippedNotFatal(t *testing.T) {
	s, driver, _ := newTestStore(t)
	before := len(s.Products())

	_, err := driver.Create(context.Background(), remote.Products,
		map[string]any{"name": "broken", "price": "not-a-number"})
	require.NoError(t, err)

	// The malformed document is dropped; the rest of the catalogue survives.
	assert.Len(t, s.Products(), before)
}

func TestUpdatePaymentInstructionsRoundTrips(t *testing.T) {
	s, _, _ := newTestStore(t)

	require.NoError(t, s.UpdatePaymentInstructions(context.Background(), "Pay at the counter."))
	assert.Equal(t, "Pay at the counter.", s.PaymentInstructions())
}

func TestGalleryMutations(t *testing.T) {
	s, _, _ := newTestStore(t)
	before := len(s.Gallery())

	id, err := s.AddGalleryImage(context.Background(), "https://example.com/shot.jpg")
	require.NoError(t, err)
	assert.Len(t, s.Gallery(), before+1)

	_, err = s.AddGalleryImage(context.Background(), "")
	assert.True(t, IsValidation(err))

	require.NoError(t, s.RemoveGalleryImage(context.Background(), id))
	assert.Len(t, s.Gallery(), before)
}
