package controllers

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gtera/thiwa/internal/shop"
	"github.com/gtera/thiwa/pkg/ctx"
	"github.com/gtera/thiwa/pkg/event"
	"github.com/gtera/thiwa/pkg/logger"
	"github.com/gtera/thiwa/pkg/sse"
	"github.com/gtera/thiwa/pkg/ws"
)

// sseHeartbeat keeps idle proxies from reaping the connection.
const sseHeartbeat = 25 * time.Second

type pushMessage struct {
	topic string
	data  json.RawMessage
}

// RealtimeController pushes confirmed state changes to the UI over SSE and
// WebSocket. It bridges the in-process event topics the state store fires;
// clients get the same snapshots the store caches, never raw driver data.
type RealtimeController struct {
	hub *ws.Hub

	mu      sync.Mutex
	streams map[chan pushMessage]struct{}
}

func NewRealtimeController() *RealtimeController {
	rc := &RealtimeController{
		hub:     ws.NewHub(),
		streams: make(map[chan pushMessage]struct{}),
	}
	go rc.hub.Run()

	topics := []string{
		shop.EventProducts,
		shop.EventGallery,
		shop.EventSettings,
		shop.EventOrders,
		shop.EventCart,
	}
	for _, topic := range topics {
		topic := topic
		event.Listen(topic, func(payload interface{}) {
			rc.publish(topic, payload)
		})
	}
	return rc
}

func (rc *RealtimeController) publish(topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("realtime: drop unmarshalable payload", "topic", topic, "error", err)
		return
	}

	envelope, _ := json.Marshal(map[string]any{"event": topic, "data": json.RawMessage(data)})
	select {
	case rc.hub.Broadcast <- envelope:
	default:
		// Hub backlog full; the next snapshot supersedes this one anyway.
	}

	msg := pushMessage{topic: topic, data: data}
	rc.mu.Lock()
	for ch := range rc.streams {
		select {
		case ch <- msg:
		default:
		}
	}
	rc.mu.Unlock()
}

// Events streams state changes as named SSE events until the client leaves.
func (rc *RealtimeController) Events(c *ctx.Context) {
	stream := sse.New(c.W, c.R)
	if stream == nil {
		return
	}

	ch := make(chan pushMessage, 16)
	rc.mu.Lock()
	rc.streams[ch] = struct{}{}
	rc.mu.Unlock()
	defer func() {
		rc.mu.Lock()
		delete(rc.streams, ch)
		rc.mu.Unlock()
	}()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case msg := <-ch:
			if err := stream.Send(msg.topic, msg.data); err != nil {
				return
			}
		case <-heartbeat.C:
			stream.Comment("keepalive")
		case <-c.Context().Done():
			return
		}
		if stream.IsClosed() {
			return
		}
	}
}

// Socket upgrades to a WebSocket fed by the same broadcast stream.
func (rc *RealtimeController) Socket(c *ctx.Context) {
	ws.Upgrade(c.W, c.R, rc.hub)
}
