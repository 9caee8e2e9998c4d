// Package notification provides a multi-channel outbound message dispatcher.
//
// Define a Notification:
//
//	type OrderAlert struct { Ref string }
//	func (n *OrderAlert) Via() []string { return []string{"slack", "webhook"} }
//	func (n *OrderAlert) ToSlack() notification.SlackData {
//	    return notification.SlackData{Text: "New order " + n.Ref}
//	}
//	func (n *OrderAlert) ToWebhook() notification.WebhookData {
//	    return notification.WebhookData{URL: url, Payload: n}
//	}
//
// Send:
//
//	notification.Send(&OrderAlert{Ref: "1024"})
package notification

import (
	"fmt"
	"time"

	"github.com/gtera/thiwa/pkg/http"
	"github.com/gtera/thiwa/pkg/logger"
	"github.com/gtera/thiwa/pkg/workerpool"
)

// ------------------- Channel data structs -------------------

// SlackData carries a Slack message payload.
type SlackData struct {
	WebhookURL  string // override default if set
	Text        string
	Attachments []SlackAttachment
}

// SlackAttachment is a single Slack message attachment block.
type SlackAttachment struct {
	Color  string `json:"color,omitempty"` // "good" | "warning" | "danger"
	Title  string `json:"title,omitempty"`
	Text   string `json:"text,omitempty"`
	Footer string `json:"footer,omitempty"`
}

// WebhookData carries an arbitrary JSON payload to POST to a URL.
type WebhookData struct {
	URL     string
	Payload interface{}
	Headers map[string]string
}

// ------------------- Notification interface -------------------

// Notification is the interface every notification must satisfy.
type Notification interface {
	// Via returns the list of channel names: "slack", "webhook".
	Via() []string
}

// Slackable can be implemented to support the Slack channel.
type Slackable interface {
	ToSlack() SlackData
}

// Webhookable can be implemented to support the webhook channel.
type Webhookable interface {
	ToWebhook() WebhookData
}

// ------------------- Global config -------------------

var defaultSlackWebhook string

// SetSlackWebhook sets the default Slack incoming webhook URL.
func SetSlackWebhook(url string) { defaultSlackWebhook = url }

// ------------------- Send -------------------

// Send dispatches the notification through all channels returned by Via().
func Send(n Notification) []error {
	var errs []error
	for _, channel := range n.Via() {
		if err := dispatch(channel, n); err != nil {
			logger.Error("notification: channel failed",
				"channel", channel, "error", err)
			errs = append(errs, err)
		}
	}
	return errs
}

// asyncPool bounds concurrent background sends so a burst of notifications
// cannot spawn unbounded goroutines against slow endpoints.
var asyncPool = workerpool.New(8)

// SendAsync dispatches the notification through the bounded background pool.
// When the pool is saturated the notification is dropped with a log line.
func SendAsync(n Notification) {
	err := asyncPool.Submit(func() {
		if errs := Send(n); len(errs) > 0 {
			for _, e := range errs {
				logger.Error("notification: async error", "error", e)
			}
		}
	})
	if err != nil {
		logger.Error("notification: async send rejected", "error", err)
	}
}

func dispatch(channel string, n Notification) error {
	switch channel {
	case "slack":
		s, ok := n.(Slackable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Slackable", n)
		}
		return sendSlack(s.ToSlack())

	case "webhook":
		wh, ok := n.(Webhookable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Webhookable", n)
		}
		return sendWebhook(wh.ToWebhook())

	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

// ------------------- Slack channel -------------------

type slackPayload struct {
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

func sendSlack(d SlackData) error {
	url := d.WebhookURL
	if url == "" {
		url = defaultSlackWebhook
	}
	if url == "" {
		return fmt.Errorf("notification: slack webhook URL not configured")
	}

	payload := slackPayload{
		Text:        d.Text,
		Attachments: d.Attachments,
	}

	resp, err := http.Post(url).
		Body(payload).
		Timeout(5 * time.Second).
		Retry(2, time.Second).
		Send()
	if err != nil {
		return fmt.Errorf("notification: slack post: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification: slack returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// ------------------- Webhook channel -------------------

func sendWebhook(d WebhookData) error {
	if d.URL == "" {
		return fmt.Errorf("notification: webhook URL is empty")
	}

	resp, err := http.Post(d.URL).
		Headers(d.Headers).
		Body(d.Payload).
		Timeout(10 * time.Second).
		Retry(2, time.Second).
		Send()
	if err != nil {
		return fmt.Errorf("notification: webhook send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification: webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
