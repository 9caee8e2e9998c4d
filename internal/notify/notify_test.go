package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderAlertChannels(t *testing.T) {
	a := &orderAlert{job: orderAlertJob{Webhook: "https://x", Slack: "https://y"}}
	assert.Equal(t, []string{"webhook", "slack"}, a.Via())

	a = &orderAlert{job: orderAlertJob{Webhook: "https://x"}}
	assert.Equal(t, []string{"webhook"}, a.Via())

	a = &orderAlert{}
	assert.Empty(t, a.Via())
}

func TestOrderAlertJobPostsWebhook(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	job := orderAlertJob{Order: sampleOrder(), Webhook: srv.URL}
	require.NoError(t, job.Handle())

	assert.Equal(t, "order.placed", got["event"])
	assert.Contains(t, got["message"], "NEW ORDER - GTΞRA")
	order, ok := got["order"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ord-1", order["id"])
}

func TestOrderAlertJobReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	job := orderAlertJob{Order: sampleOrder(), Webhook: srv.URL}
	assert.Error(t, job.Handle())
}

func TestOrderPlacedNoChannelsIsNoOp(t *testing.T) {
	n := &Notifier{admins: []string{"94726444214"}}
	// Must not panic or queue anything when no outbound channel is set.
	n.OrderPlaced(sampleOrder())
}
