package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryDriver is an in-process document store. It backs development runs
// and every test that needs a remote fake: writes are synchronous, snapshots
// are delivered inline, and the subscriber count is observable so teardown
// leaks show up in tests.
type MemoryDriver struct {
	mu      sync.Mutex
	cols    map[Collection]map[string]map[string]any
	subs    map[Collection]map[int]func([]Document)
	nextSub int
	nextID  atomic.Int64

	// unavailable simulates a transport outage: every mutation fails.
	unavailable bool
}

// NewMemoryDriver creates an empty in-process store.
func NewMemoryDriver() *MemoryDriver {
	d := &MemoryDriver{
		cols: make(map[Collection]map[string]map[string]any),
		subs: make(map[Collection]map[int]func([]Document)),
	}
	for _, c := range Collections {
		d.cols[c] = make(map[string]map[string]any)
		d.subs[c] = make(map[int]func([]Document))
	}
	d.nextID.Store(time.Now().UnixMilli())
	return d
}

// SetUnavailable toggles simulated transport failure for mutations.
func (d *MemoryDriver) SetUnavailable(down bool) {
	d.mu.Lock()
	d.unavailable = down
	d.mu.Unlock()
}

// SubscriberCount reports the number of live subscriptions on col.
func (d *MemoryDriver) SubscriberCount(col Collection) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs[col])
}

func (d *MemoryDriver) Subscribe(_ context.Context, col Collection, fn func([]Document)) (Unsubscribe, error) {
	if fn == nil {
		return nil, fmt.Errorf("remote/memory: nil subscriber for %s", col)
	}

	d.mu.Lock()
	id := d.nextSub
	d.nextSub++
	d.subs[col][id] = fn
	snap := d.snapshotLocked(col)
	d.mu.Unlock()

	// Initial delivery fires immediately with the current state.
	fn(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.subs[col], id)
			d.mu.Unlock()
		})
	}, nil
}

func (d *MemoryDriver) Create(_ context.Context, col Collection, doc any) (string, error) {
	body, err := toMap(doc)
	if err != nil {
		return "", fmt.Errorf("remote/memory: create %s: %w", col, err)
	}

	d.mu.Lock()
	if d.unavailable {
		d.mu.Unlock()
		return "", fmt.Errorf("remote/memory: create %s: store unavailable", col)
	}
	id := fmt.Sprintf("%d", d.nextID.Add(1))
	delete(body, "id")
	d.cols[col][id] = body
	subs, snap := d.fanoutLocked(col)
	d.mu.Unlock()

	notify(subs, snap)
	return id, nil
}

func (d *MemoryDriver) Update(_ context.Context, col Collection, id string, fields map[string]any) error {
	d.mu.Lock()
	if d.unavailable {
		d.mu.Unlock()
		return fmt.Errorf("remote/memory: update %s/%s: store unavailable", col, id)
	}
	doc, ok := d.cols[col][id]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("remote/memory: update %s/%s: %w", col, id, ErrNotFound)
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		doc[k] = v
	}
	subs, snap := d.fanoutLocked(col)
	d.mu.Unlock()

	notify(subs, snap)
	return nil
}

func (d *MemoryDriver) Delete(_ context.Context, col Collection, id string) error {
	d.mu.Lock()
	if d.unavailable {
		d.mu.Unlock()
		return fmt.Errorf("remote/memory: delete %s/%s: store unavailable", col, id)
	}
	if _, ok := d.cols[col][id]; !ok {
		// Idempotent: deleting an unknown id is not an error.
		d.mu.Unlock()
		return nil
	}
	delete(d.cols[col], id)
	subs, snap := d.fanoutLocked(col)
	d.mu.Unlock()

	notify(subs, snap)
	return nil
}

func (d *MemoryDriver) Close(context.Context) error {
	d.mu.Lock()
	for _, c := range Collections {
		d.subs[c] = make(map[int]func([]Document))
	}
	d.mu.Unlock()
	return nil
}

// fanoutLocked copies the subscriber list and snapshot so delivery can run
// outside the lock.
func (d *MemoryDriver) fanoutLocked(col Collection) ([]func([]Document), []Document) {
	subs := make([]func([]Document), 0, len(d.subs[col]))
	for _, fn := range d.subs[col] {
		subs = append(subs, fn)
	}
	return subs, d.snapshotLocked(col)
}

func (d *MemoryDriver) snapshotLocked(col Collection) []Document {
	out := make([]Document, 0, len(d.cols[col]))
	for id, body := range d.cols[col] {
		copied := make(map[string]any, len(body)+1)
		for k, v := range body {
			copied[k] = v
		}
		raw, err := mergeID(id, copied)
		if err != nil {
			continue
		}
		out = append(out, Document{ID: id, Data: raw})
	}

	if col == Orders {
		sortOrdersDesc(out)
	} else {
		// Stable order keeps snapshots deterministic for callers and tests.
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}
	return out
}

func notify(subs []func([]Document), snap []Document) {
	for _, fn := range subs {
		fn(snap)
	}
}

// sortOrdersDesc honours the orders-collection guarantee: newest first.
func sortOrdersDesc(docs []Document) {
	type dated struct {
		Date time.Time `json:"date"`
	}
	key := func(doc Document) time.Time {
		var v dated
		_ = json.Unmarshal(doc.Data, &v)
		return v.Date
	}
	sort.SliceStable(docs, func(i, j int) bool { return key(docs[i]).After(key(docs[j])) })
}

func toMap(doc any) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return body, nil
}
