package controllers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gtera/thiwa/internal/kernel"
	"github.com/gtera/thiwa/internal/localstore"
	"github.com/gtera/thiwa/internal/notify"
	"github.com/gtera/thiwa/internal/remote"
	"github.com/gtera/thiwa/internal/shop"
	"github.com/gtera/thiwa/pkg/testkit"
)

// newAPIHandler boots a full gateway over in-memory adapters. Starting
// against an empty driver seeds the default catalogue and settings, so the
// scenarios can count on the stock data and the default admin credentials.
func newAPIHandler(t *testing.T) http.Handler {
	t.Helper()

	store := shop.New(remote.NewMemoryDriver(), localstore.NewMemStore())
	require.NoError(t, store.Start(context.Background()))
	t.Cleanup(store.Close)

	handler, _, err := kernel.NewHandler(kernel.Deps{
		Store:    store,
		Notifier: notify.New(),
	})
	require.NoError(t, err)
	return handler
}

// TestAPIScenarios runs the JSON scenarios in testdata/ against one gateway
// instance. Files run in name order; the numeric prefixes sequence the
// stateful steps (login before the session probe).
func TestAPIScenarios(t *testing.T) {
	handler := newAPIHandler(t)
	testkit.RunDir(t, handler, "testdata")
}
