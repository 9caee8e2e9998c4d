package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMongoHandlerBuildsDocument(t *testing.T) {
	h := &MongoHandler{queue: make(chan LogDocument, 4)}

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "order placed", 0)
	r.AddAttrs(
		slog.String("request_id", "req-1"),
		slog.String("order", "ord-1"),
		slog.Int("total", 7400),
	)
	require.NoError(t, h.Handle(context.Background(), r))

	doc := <-h.queue
	assert.Equal(t, "INFO", doc.Level)
	assert.Equal(t, "order placed", doc.Msg)
	assert.Equal(t, "req-1", doc.RequestID)
	assert.Equal(t, "ord-1", doc.Attrs["order"])
	assert.NotContains(t, doc.Attrs, "request_id")
}

func TestMongoHandlerGroupsPrefixAttrKeys(t *testing.T) {
	h := &MongoHandler{queue: make(chan LogDocument, 4)}
	grouped := h.WithGroup("checkout").WithAttrs([]slog.Attr{slog.String("method", "bank-transfer")})

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "payment", 0)
	require.NoError(t, grouped.Handle(context.Background(), r))

	// WithGroup/WithAttrs share the parent's queue.
	doc := <-h.queue
	assert.Equal(t, "bank-transfer", doc.Attrs["checkout.method"])
}

func TestMongoHandlerDropsWhenQueueFull(t *testing.T) {
	h := &MongoHandler{queue: make(chan LogDocument, 1)}
	h.queue <- LogDocument{Msg: "first"}

	r := slog.NewRecord(time.Now(), slog.LevelWarn, "second", 0)
	done := make(chan struct{})
	go func() {
		_ = h.Handle(context.Background(), r)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Handle blocked on a full queue")
	}

	assert.Equal(t, "first", (<-h.queue).Msg)
	assert.Empty(t, h.queue)
}

func TestMultiHandlerDuplicatesRecords(t *testing.T) {
	var a, b bytes.Buffer
	log := slog.New(NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewTextHandler(&b, nil),
	))

	log.Info("order placed", "id", "ord-1")

	assert.Contains(t, a.String(), "order placed")
	assert.Contains(t, b.String(), "id=ord-1")
	assert.Contains(t, b.String(), "order placed")
}
