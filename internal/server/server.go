// Package server boots the storefront gateway: adapters first, then the
// state store, then the HTTP listener. One process serves one device.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gtera/thiwa/config"
	"github.com/gtera/thiwa/internal/archive"
	"github.com/gtera/thiwa/internal/kernel"
	"github.com/gtera/thiwa/internal/localstore"
	"github.com/gtera/thiwa/internal/notify"
	"github.com/gtera/thiwa/internal/remote"
	"github.com/gtera/thiwa/internal/shop"
	"github.com/gtera/thiwa/pkg/cache"
	"github.com/gtera/thiwa/pkg/database"
	"github.com/gtera/thiwa/pkg/logger"
	"github.com/gtera/thiwa/pkg/metrics"
	"github.com/gtera/thiwa/pkg/notification"
	"github.com/gtera/thiwa/pkg/queue"
	"github.com/gtera/thiwa/pkg/schedule"
	"github.com/gtera/thiwa/pkg/storage"
)

const (
	queueWorkers    = 4
	shutdownTimeout = 10 * time.Second
)

// Start boots everything and blocks until SIGINT/SIGTERM, then drains the
// HTTP server and closes the adapters in reverse boot order.
func Start() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("server: load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage.Connect()
	notification.SetSlackWebhook(config.Get("SLACK_WEBHOOK", ""))

	// Redis backs the report cache and the notification queue. Without it
	// the cache no-ops and the queue falls back to the in-process driver.
	if err := cache.Connect(); err != nil {
		logger.Warn("server: redis unavailable, caching disabled", "error", err)
	} else {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}

	// The relational archive mirrors placed orders for admin reporting.
	// The storefront itself runs fine without it.
	var arch *archive.Archive
	if err := database.Connect(); err != nil {
		logger.Warn("server: archive database unavailable", "error", err)
	} else {
		queue.UseDB(database.DB)
		a, err := archive.New(database.DB)
		if err != nil {
			logger.Warn("server: archive migration failed", "error", err)
		} else {
			arch = a
			arch.Listen()
		}
	}

	notify.RegisterJobs()
	queue.StartWorkers(ctx, queueWorkers)

	driver, err := newRemoteDriver()
	if err != nil {
		return fmt.Errorf("server: remote driver: %w", err)
	}

	local, err := localstore.NewFileStore(config.DataDir())
	if err != nil {
		return fmt.Errorf("server: local store: %w", err)
	}

	notifier := notify.New()
	store := shop.New(driver, local, shop.WithNotifier(notifier))
	if err := store.Start(ctx); err != nil {
		return fmt.Errorf("server: start store: %w", err)
	}
	defer store.Close()

	// Nightly reconciliation: re-mirror the full live order list so the
	// archive self-heals after any missed event (e.g. the DB was down).
	if arch != nil {
		schedule.Daily().Name("archive.mirror").WithoutOverlapping().Run(func() {
			if err := arch.Mirror(store.Orders()); err != nil {
				logger.Error("server: archive mirror failed", "error", err)
			}
		})
	}

	// Gauges are also set on every snapshot; this keeps them honest across
	// scrape gaps and quiet periods.
	schedule.EveryMinute().Name("shop.gauges").Run(func() {
		metrics.CatalogueSize.WithLabelValues("products").Set(float64(len(store.Products())))
		metrics.CatalogueSize.WithLabelValues("gallery").Set(float64(len(store.Gallery())))
		metrics.CatalogueSize.WithLabelValues("orders").Set(float64(len(store.Orders())))
	})
	schedule.Start(ctx)

	handler, _, err := kernel.NewHandler(kernel.Deps{
		Store:    store,
		Archive:  arch,
		Notifier: notifier,
	})
	if err != nil {
		return fmt.Errorf("server: build handler: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server: shutdown incomplete", "error", err)
	}

	if err := driver.Close(shutdownCtx); err != nil {
		logger.Warn("server: close remote driver", "error", err)
	}
	logger.Close()
	return nil
}

// newRemoteDriver selects the collection-sync backend from REMOTE_DRIVER.
func newRemoteDriver() (remote.Driver, error) {
	switch config.RemoteDriver() {
	case "memory":
		logger.Warn("server: using in-memory remote driver, state is not shared")
		return remote.NewMemoryDriver(), nil
	default:
		return remote.NewMongoDriver(config.MongoURI(), config.MongoDB())
	}
}
