package remote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	d := NewMemoryDriver()
	ctx := context.Background()

	_, err := d.Create(ctx, Products, map[string]any{"name": "Tee", "price": 2500})
	require.NoError(t, err)

	var got []Document
	unsub, err := d.Subscribe(ctx, Products, func(docs []Document) { got = docs })
	require.NoError(t, err)
	defer unsub()

	require.Len(t, got, 1)
	var p struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Price int    `json:"price"`
	}
	require.NoError(t, Decode(got[0], &p))
	assert.Equal(t, "Tee", p.Name)
	assert.Equal(t, 2500, p.Price)
	assert.NotEmpty(t, p.ID)
}

func TestCreateNotifiesEverySubscriber(t *testing.T) {
	d := NewMemoryDriver()
	ctx := context.Background()

	calls1, calls2 := 0, 0
	u1, err := d.Subscribe(ctx, Gallery, func([]Document) { calls1++ })
	require.NoError(t, err)
	defer u1()
	u2, err := d.Subscribe(ctx, Gallery, func([]Document) { calls2++ })
	require.NoError(t, err)
	defer u2()

	_, err = d.Create(ctx, Gallery, map[string]any{"image": "a.jpg"})
	require.NoError(t, err)

	// One initial delivery plus one change delivery each.
	assert.Equal(t, 2, calls1)
	assert.Equal(t, 2, calls2)
}

func TestUpdateMergesFields(t *testing.T) {
	d := NewMemoryDriver()
	ctx := context.Background()

	id, err := d.Create(ctx, Products, map[string]any{"name": "Tee", "price": 2500})
	require.NoError(t, err)

	require.NoError(t, d.Update(ctx, Products, id, map[string]any{"price": 2800}))

	var snap []Document
	unsub, err := d.Subscribe(ctx, Products, func(docs []Document) { snap = docs })
	require.NoError(t, err)
	defer unsub()

	var p struct {
		Name  string `json:"name"`
		Price int    `json:"price"`
	}
	require.NoError(t, Decode(snap[0], &p))
	assert.Equal(t, "Tee", p.Name)
	assert.Equal(t, 2800, p.Price)
}

func TestUpdateUnknownIDIsNotFound(t *testing.T) {
	d := NewMemoryDriver()
	err := d.Update(context.Background(), Products, "nope", map[string]any{"price": 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	d := NewMemoryDriver()
	ctx := context.Background()

	id, err := d.Create(ctx, Gallery, map[string]any{"image": "a.jpg"})
	require.NoError(t, err)

	assert.NoError(t, d.Delete(ctx, Gallery, id))
	assert.NoError(t, d.Delete(ctx, Gallery, id))
	assert.NoError(t, d.Delete(ctx, Gallery, "never-existed"))
}

func TestUnsubscribeReleasesHandle(t *testing.T) {
	d := NewMemoryDriver()
	ctx := context.Background()

	unsub, err := d.Subscribe(ctx, Orders, func([]Document) {})
	require.NoError(t, err)
	assert.Equal(t, 1, d.SubscriberCount(Orders))

	unsub()
	unsub() // second release is a no-op
	assert.Equal(t, 0, d.SubscriberCount(Orders))
}

func TestOrdersDeliveredNewestFirst(t *testing.T) {
	d := NewMemoryDriver()
	ctx := context.Background()

	old := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	mid := old.Add(time.Hour)
	newest := old.Add(2 * time.Hour)

	for _, ts := range []time.Time{mid, newest, old} {
		_, err := d.Create(ctx, Orders, map[string]any{"date": ts, "status": "Pending"})
		require.NoError(t, err)
	}

	var snap []Document
	unsub, err := d.Subscribe(ctx, Orders, func(docs []Document) { snap = docs })
	require.NoError(t, err)
	defer unsub()

	require.Len(t, snap, 3)
	var dates []time.Time
	for _, doc := range snap {
		var o struct {
			Date time.Time `json:"date"`
		}
		require.NoError(t, Decode(doc, &o))
		dates = append(dates, o.Date)
	}
	assert.True(t, dates[0].Equal(newest))
	assert.True(t, dates[1].Equal(mid))
	assert.True(t, dates[2].Equal(old))
}

func TestUnavailableStoreFailsWrites(t *testing.T) {
	d := NewMemoryDriver()
	ctx := context.Background()
	d.SetUnavailable(true)

	_, err := d.Create(ctx, Products, map[string]any{"name": "Tee"})
	assert.Error(t, err)

	d.SetUnavailable(false)
	_, err = d.Create(ctx, Products, map[string]any{"name": "Tee"})
	assert.NoError(t, err)
}
