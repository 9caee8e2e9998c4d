package shop

import (
	"context"
	"time"

	"github.com/gtera/thiwa/app/models"
	"github.com/gtera/thiwa/internal/remote"
	"github.com/gtera/thiwa/pkg/logger"
)

// defaultProducts is the starter catalogue a brand-new shop boots with.
var defaultProducts = []models.Product{
	{
		Name:        "Custom DTF Vibes T-Shirt",
		Price:       2500,
		Image:       "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80",
		Description: "High quality DTF printed t-shirt with custom vibes design.",
		Category:    "Men",
	},
	{
		Name:        "Abstract Art Tee",
		Price:       2800,
		Image:       "https://images.unsplash.com/photo-1503341455253-b2e72333dbdb?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80",
		Description: "Modern abstract art specific for creative souls.",
		Category:    "Unisex",
	},
	{
		Name:        "Urban Streetwear Black",
		Price:       3000,
		Image:       "https://images.unsplash.com/photo-1583743814966-8936f5b7be1a?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80",
		Description: "Premium cotton streetwear essential.",
		Category:    "Men",
	},
	{
		Name:        "Flora Design White",
		Price:       2600,
		Image:       "https://images.unsplash.com/photo-1554568218-0f1715e72254?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80",
		Description: "Elegant floral design for casual wear.",
		Category:    "Women",
	},
}

var defaultGallery = []models.GalleryImage{
	{Image: "https://images.unsplash.com/photo-1576566582149-434ee41cfa01?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
	{Image: "https://images.unsplash.com/photo-1527719327859-c6ce80353573?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
	{Image: "https://images.unsplash.com/photo-1551799517-eb8f03cb5e6a?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
}

const defaultPaymentInstructions = `Please deposit the total amount to the following bank account:
Bank: Commercial Bank
Account Name: GTERA
Account Number: 1234567890
Branch: Colombo

Send a screenshot of the receipt to our WhatsApp: +94 77 123 4567`

var defaultAdminCredentials = models.AdminCredentials{
	Username: "admin",
	Password: "password123",
}

// maybeSeed kicks off the one-shot default seed when a collection's first
// snapshot comes back empty. Seeding is best-effort and not transactional:
// two fresh clients racing through first load can both insert the defaults,
// and that duplicate risk is accepted rather than papered over with a
// locking scheme the shared store cannot offer.
func (s *Store) maybeSeed(col remote.Collection, docCount int) {
	if docCount > 0 || col == remote.Orders {
		return
	}

	s.seedMu.Lock()
	if s.seeded[col] {
		s.seedMu.Unlock()
		return
	}
	s.seeded[col] = true
	s.seedMu.Unlock()

	if err := s.SeedDefaults(context.Background(), col); err != nil {
		logger.Error("shop: seed defaults", "collection", col, "error", err)
	}
}

// SeedDefaults writes the default documents for one collection. The CLI seed
// command also calls it directly to (re)populate a fresh store.
func (s *Store) SeedDefaults(ctx context.Context, col remote.Collection) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch col {
	case remote.Products:
		for _, p := range defaultProducts {
			if _, err := s.remote.Create(ctx, remote.Products, p); err != nil {
				return err
			}
		}
	case remote.Gallery:
		for _, g := range defaultGallery {
			if _, err := s.remote.Create(ctx, remote.Gallery, g); err != nil {
				return err
			}
		}
	case remote.Settings:
		admin := map[string]any{
			"key":      "admin",
			"username": defaultAdminCredentials.Username,
			"password": defaultAdminCredentials.Password,
		}
		if _, err := s.remote.Create(ctx, remote.Settings, admin); err != nil {
			return err
		}
		payment := map[string]any{"key": "payment", "text": defaultPaymentInstructions}
		if _, err := s.remote.Create(ctx, remote.Settings, payment); err != nil {
			return err
		}
	}

	logger.Info("shop: seeded defaults", "collection", col)
	return nil
}
