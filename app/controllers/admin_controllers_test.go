package controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtera/thiwa/app/controllers"
	"github.com/gtera/thiwa/internal/localstore"
	"github.com/gtera/thiwa/internal/remote"
	"github.com/gtera/thiwa/internal/shop"
	"github.com/gtera/thiwa/pkg/ctx"
)

// The gateway boots without the relational archive when no database is
// configured; the report endpoints must answer 503 instead of panicking.
func TestArchiveEndpointsWithoutDatabase(t *testing.T) {
	store := shop.New(remote.NewMemoryDriver(), localstore.NewMemStore())
	ac := controllers.NewAdminController(store, nil)

	cases := []struct {
		name    string
		handler func(*ctx.Context)
		message string
	}{
		{"report", ac.Report, "report unavailable"},
		{"revenue", ac.Revenue, "revenue unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/"+tc.name, nil)
			rec := httptest.NewRecorder()
			ctx.Wrap(tc.handler)(rec, req)

			require.Equal(t, http.StatusServiceUnavailable, rec.Code)
			var body struct {
				Status  int    `json:"status"`
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, http.StatusServiceUnavailable, body.Status)
			assert.Equal(t, tc.message, body.Message)
		})
	}
}
