// Package kernel assembles the HTTP surface of the storefront gateway:
// global middleware, the metrics endpoint, and the API routes bound to
// their controllers.
package kernel

import (
	"net/http"
	"time"

	"github.com/gtera/thiwa/app/controllers"
	"github.com/gtera/thiwa/app/routes"
	"github.com/gtera/thiwa/internal/archive"
	"github.com/gtera/thiwa/internal/notify"
	"github.com/gtera/thiwa/internal/shop"
	"github.com/gtera/thiwa/pkg/metrics"
	"github.com/gtera/thiwa/pkg/middleware"
	"github.com/gtera/thiwa/pkg/reqid"
	"github.com/gtera/thiwa/pkg/router"
)

// Deps carries the long-lived services the controllers need. The archive is
// optional; without it the report endpoints answer 500 and everything else
// still works.
type Deps struct {
	Store    *shop.Store
	Archive  *archive.Archive
	Notifier *notify.Notifier
}

// NewHandler builds the full HTTP handler. The router is returned alongside
// it so callers can print the named route table.
func NewHandler(deps Deps) (http.Handler, *router.Router, error) {
	r := NewRouter()

	shopCtl := controllers.NewShopController(deps.Store, deps.Notifier)
	adminCtl := controllers.NewAdminController(deps.Store, deps.Archive)
	realtimeCtl := controllers.NewRealtimeController()

	graphqlCtl, err := controllers.NewGraphQLController(deps.Store)
	if err != nil {
		return nil, nil, err
	}

	routes.RegisterAPI(r, shopCtl, adminCtl, realtimeCtl, graphqlCtl)

	return r.Handler(), r, nil
}

// NewRouter returns a router carrying the global middleware stack, outermost
// to innermost:
//
//	1. Prometheus metrics  (outermost for accurate total latency)
//	2. Recovery            (catches panics before they kill the goroutine)
//	3. Request ID          (inject unique ID before anything logs)
//	4. Logger              (logs request_id from context)
//	5. CORS
//	6. Rate limiter
func NewRouter() *router.Router {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(200, time.Minute))

	// Prometheus scrape endpoint, mounted outside the named route table.
	r.HandleFunc("/metrics", metrics.Handler())

	return r
}
