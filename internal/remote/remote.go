// Package remote defines the contract for the hosted document store the
// storefront syncs against, plus the drivers that implement it.
//
// Two drivers are available out of the box:
//   - "mongo": MongoDB-backed shared store (production)
//   - "memory": in-process store for development and tests
//
// The shop store is the only consumer. It subscribes to whole-collection
// snapshots and forwards every mutation here; it never treats its own cache
// as authoritative for writes.
package remote

import (
	"context"
	"encoding/json"
	"errors"
)

// Collection names the four logical document sets in the shared store.
type Collection string

const (
	Products Collection = "products"
	Gallery  Collection = "gallery"
	Settings Collection = "settings"
	Orders   Collection = "orders"
)

// Collections lists every collection the storefront consumes.
var Collections = []Collection{Products, Gallery, Settings, Orders}

// ErrNotFound is returned by Update when the target document does not exist.
// Delete is idempotent and never returns it.
var ErrNotFound = errors.New("remote: document not found")

// Document is one record in a collection. Data is the JSON body with the
// store-assigned "id" field already merged in, so callers can unmarshal it
// straight into a model.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Unsubscribe releases a subscription. Safe to call more than once.
type Unsubscribe func()

// Driver is the remote document store backend.
//
// Subscribe registers fn for collection col. fn is invoked with the full
// current document set immediately and again after every confirmed change.
// The orders collection is always delivered sorted by date descending.
// Concurrent subscriptions to the same collection are independent.
//
// Create inserts doc and returns the store-assigned identifier. Update
// merges fields into an existing document and fails with ErrNotFound when
// the id is unknown. Delete removes a document and is a no-op for unknown
// ids. Transport and availability failures are returned wrapped; none of
// the operations retries on its own.
type Driver interface {
	Subscribe(ctx context.Context, col Collection, fn func([]Document)) (Unsubscribe, error)
	Create(ctx context.Context, col Collection, doc any) (string, error)
	Update(ctx context.Context, col Collection, id string, fields map[string]any) error
	Delete(ctx context.Context, col Collection, id string) error
	Close(ctx context.Context) error
}

// Decode unmarshals a document body into dest.
func Decode(doc Document, dest any) error {
	return json.Unmarshal(doc.Data, dest)
}

// mergeID returns the JSON encoding of body with "id" set to id. Drivers use
// it to build Document.Data from their native record shape.
func mergeID(id string, body map[string]any) (json.RawMessage, error) {
	body["id"] = id
	return json.Marshal(body)
}
