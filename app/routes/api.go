package routes

import (
	"github.com/gtera/thiwa/app/controllers"
	"github.com/gtera/thiwa/pkg/ctx"
	"github.com/gtera/thiwa/pkg/middleware"
	"github.com/gtera/thiwa/pkg/router"
)

// RegisterAPI mounts the storefront routes. Everything under /api/admin
// (except login and the session probe) requires a bearer token.
func RegisterAPI(
	r *router.Router,
	shopCtl *controllers.ShopController,
	adminCtl *controllers.AdminController,
	realtimeCtl *controllers.RealtimeController,
	graphqlCtl *controllers.GraphQLController,
) {
	api := r.Group("/api")

	// Public storefront.
	api.Get("/products", "products.index", ctx.Wrap(shopCtl.Products))
	api.Get("/products/{id}", "products.show", ctx.Wrap(shopCtl.Product))
	api.Get("/gallery", "gallery.index", ctx.Wrap(shopCtl.Gallery))
	api.Get("/settings/payment", "settings.payment", ctx.Wrap(shopCtl.PaymentInstructions))

	// Device-local cart.
	api.Get("/cart", "cart.show", ctx.Wrap(shopCtl.Cart))
	api.Post("/cart", "cart.add", ctx.Wrap(shopCtl.AddToCart))
	api.Delete("/cart", "cart.clear", ctx.Wrap(shopCtl.ClearCart))
	api.Delete("/cart/{id}", "cart.remove", ctx.Wrap(shopCtl.RemoveFromCart))
	api.Post("/checkout", "checkout", ctx.Wrap(shopCtl.Checkout))

	// Admin session.
	api.Post("/admin/login", "admin.login", ctx.Wrap(shopCtl.Login))
	api.Get("/admin/session", "admin.session", ctx.Wrap(shopCtl.Session))

	admin := api.Group("/admin", middleware.AdminMiddleware)
	admin.Post("/logout", "admin.logout", ctx.Wrap(shopCtl.Logout))

	admin.Post("/products", "admin.products.create", ctx.Wrap(adminCtl.CreateProduct))
	admin.Put("/products/{id}", "admin.products.update", ctx.Wrap(adminCtl.UpdateProduct))
	admin.Delete("/products/{id}", "admin.products.delete", ctx.Wrap(adminCtl.DeleteProduct))

	admin.Post("/gallery", "admin.gallery.create", ctx.Wrap(adminCtl.AddGalleryImage))
	admin.Delete("/gallery/{id}", "admin.gallery.delete", ctx.Wrap(adminCtl.DeleteGalleryImage))

	admin.Get("/orders", "admin.orders", ctx.Wrap(adminCtl.Orders))
	admin.Get("/report", "admin.report", ctx.Wrap(adminCtl.Report))
	admin.Get("/report/revenue", "admin.revenue", ctx.Wrap(adminCtl.Revenue))

	admin.Post("/settings/payment", "admin.settings.payment", ctx.Wrap(adminCtl.UpdatePaymentInstructions))
	admin.Post("/settings/credentials", "admin.settings.credentials", ctx.Wrap(adminCtl.UpdateCredentials))

	admin.Post("/uploads", "admin.uploads", ctx.Wrap(adminCtl.Upload))

	// Push + query surfaces.
	r.Get("/events", "events.stream", ctx.Wrap(realtimeCtl.Events))
	r.Get("/ws", "events.socket", ctx.Wrap(realtimeCtl.Socket))
	r.Post("/graphql", "graphql", ctx.Wrap(graphqlCtl.Query))
}
