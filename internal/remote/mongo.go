package remote

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gtera/thiwa/config"
	"github.com/gtera/thiwa/pkg/logger"
)

const (
	mongoOpTimeout = 10 * time.Second
	mongoConnectTO = 5 * time.Second
)

// MongoDriver syncs the four storefront collections against a shared MongoDB
// database. Subscriptions prefer change streams (replica sets); standalone
// servers fall back to interval polling. Either way subscribers always
// receive the full current document set, never deltas.
type MongoDriver struct {
	client *mongo.Client
	db     *mongo.Database
	poll   time.Duration

	mu     sync.Mutex
	cancel []context.CancelFunc
}

// NewMongoDriver connects to uri/db and verifies the connection with a ping.
func NewMongoDriver(uri, db string) (*MongoDriver, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(mongoConnectTO).
		SetServerSelectionTimeout(mongoConnectTO).
		SetMaxPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("remote/mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("remote/mongo: ping: %w", err)
	}

	poll := 2 * time.Second
	if ms, err := strconv.Atoi(config.Get("SYNC_POLL_MS", "2000")); err == nil && ms > 0 {
		poll = time.Duration(ms) * time.Millisecond
	}

	return &MongoDriver{
		client: client,
		db:     client.Database(db),
		poll:   poll,
	}, nil
}

func (d *MongoDriver) Subscribe(ctx context.Context, col Collection, fn func([]Document)) (Unsubscribe, error) {
	if fn == nil {
		return nil, fmt.Errorf("remote/mongo: nil subscriber for %s", col)
	}

	snap, err := d.fetchAll(ctx, col)
	if err != nil {
		return nil, err
	}
	fn(snap)

	subCtx, cancel := context.WithCancel(context.Background())
	d.mu.Lock()
	d.cancel = append(d.cancel, cancel)
	d.mu.Unlock()

	go d.watch(subCtx, col, fn, snap)

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

// watch pushes a fresh snapshot to fn whenever the collection changes.
// last carries the previously delivered snapshot so polling can suppress
// no-op deliveries.
func (d *MongoDriver) watch(ctx context.Context, col Collection, fn func([]Document), last []Document) {
	stream, err := d.db.Collection(string(col)).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		logger.Warn("remote/mongo: change streams unavailable, polling",
			"collection", col, "interval", d.poll.String(), "error", err)
		d.pollLoop(ctx, col, fn, last)
		return
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		snap, err := d.fetchAll(ctx, col)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("remote/mongo: refetch after change", "collection", col, "error", err)
			continue
		}
		fn(snap)
	}
}

func (d *MongoDriver) pollLoop(ctx context.Context, col Collection, fn func([]Document), last []Document) {
	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := d.fetchAll(ctx, col)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				continue
			}
			if snapshotsEqual(last, snap) {
				continue
			}
			last = snap
			fn(snap)
		}
	}
}

func (d *MongoDriver) Create(ctx context.Context, col Collection, doc any) (string, error) {
	body, err := toMap(doc)
	if err != nil {
		return "", fmt.Errorf("remote/mongo: create %s: %w", col, err)
	}
	delete(body, "id")

	opCtx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	res, err := d.db.Collection(string(col)).InsertOne(opCtx, body)
	if err != nil {
		return "", fmt.Errorf("remote/mongo: create %s: %w", col, err)
	}
	return idString(res.InsertedID), nil
}

func (d *MongoDriver) Update(ctx context.Context, col Collection, id string, fields map[string]any) error {
	opCtx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	delete(fields, "id")
	res, err := d.db.Collection(string(col)).UpdateOne(opCtx,
		bson.M{"_id": idFilter(id)}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("remote/mongo: update %s/%s: %w", col, id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("remote/mongo: update %s/%s: %w", col, id, ErrNotFound)
	}
	return nil
}

func (d *MongoDriver) Delete(ctx context.Context, col Collection, id string) error {
	opCtx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	// Zero deletions is fine: delete is idempotent by contract.
	_, err := d.db.Collection(string(col)).DeleteOne(opCtx, bson.M{"_id": idFilter(id)})
	if err != nil {
		return fmt.Errorf("remote/mongo: delete %s/%s: %w", col, id, err)
	}
	return nil
}

// Close stops every live subscription and disconnects.
func (d *MongoDriver) Close(ctx context.Context) error {
	d.mu.Lock()
	for _, cancel := range d.cancel {
		cancel()
	}
	d.cancel = nil
	d.mu.Unlock()
	return d.client.Disconnect(ctx)
}

func (d *MongoDriver) fetchAll(ctx context.Context, col Collection) ([]Document, error) {
	opCtx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	findOpts := options.Find()
	if col == Orders {
		// Dates are stored as RFC 3339 UTC strings, so a lexicographic sort
		// is a chronological one.
		findOpts.SetSort(bson.D{{Key: "date", Value: -1}})
	}

	cur, err := d.db.Collection(string(col)).Find(opCtx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("remote/mongo: fetch %s: %w", col, err)
	}
	defer cur.Close(opCtx)

	var out []Document
	for cur.Next(opCtx) {
		var row bson.M
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("remote/mongo: decode %s: %w", col, err)
		}
		id := idString(row["_id"])
		delete(row, "_id")

		body := make(map[string]any, len(row))
		for k, v := range row {
			body[k] = v
		}
		raw, err := mergeID(id, body)
		if err != nil {
			return nil, fmt.Errorf("remote/mongo: encode %s/%s: %w", col, id, err)
		}
		out = append(out, Document{ID: id, Data: raw})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("remote/mongo: cursor %s: %w", col, err)
	}
	return out, nil
}

func snapshotsEqual(a, b []Document) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || !bytes.Equal(a[i].Data, b[i].Data) {
			return false
		}
	}
	return true
}

// idString renders a Mongo _id as the string identifier the rest of the app
// uses. ObjectIDs become their hex form; anything else keeps its fmt shape.
func idString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprintf("%v", v)
	}
}

// idFilter maps a string identifier back to the native _id value.
func idFilter(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}
