// Package notify turns placed orders into outbound admin alerts: wa.me deep
// links surfaced to the UI, plus webhook and Slack deliveries pushed through
// the background queue so checkout latency never depends on a third party.
package notify

import (
	"github.com/gtera/thiwa/app/models"
	"github.com/gtera/thiwa/config"
	"github.com/gtera/thiwa/pkg/logger"
	"github.com/gtera/thiwa/pkg/metrics"
	"github.com/gtera/thiwa/pkg/notification"
	"github.com/gtera/thiwa/pkg/queue"
)

// Notifier fans a placed order out to the configured channels. It satisfies
// the state store's notification hook.
type Notifier struct {
	admins  []string
	webhook string
	slack   string
}

// New reads the channel configuration once. Empty settings disable their
// channel; an all-empty Notifier still produces WhatsApp links.
func New() *Notifier {
	return &Notifier{
		admins:  config.WhatsAppAdmins(),
		webhook: config.NotifyWebhook(),
		slack:   config.Get("SLACK_WEBHOOK", ""),
	}
}

// RegisterJobs makes the queue able to revive serialized alert jobs.
// Call once at boot before workers start.
func RegisterJobs() {
	queue.Register("notify.orderAlertJob", func() queue.Job { return &orderAlertJob{} })
}

// Links returns the wa.me deep links for an order, one per admin number.
func (n *Notifier) Links(order models.Order) []string {
	return WhatsAppLinks(n.admins, FormatOrderMessage(order))
}

// OrderPlaced queues the webhook/Slack deliveries for a confirmed order.
func (n *Notifier) OrderPlaced(order models.Order) {
	if n.webhook == "" && n.slack == "" {
		return
	}
	job := orderAlertJob{Order: order, Webhook: n.webhook, Slack: n.slack}
	if err := queue.Dispatch(job); err != nil {
		logger.Error("notify: queue dispatch failed, sending inline", "error", err)
		if err := job.Handle(); err != nil {
			logger.Error("notify: inline send failed", "order", order.ID, "error", err)
		}
	}
}

// orderAlertJob is the queued unit of work. It serializes the full order so
// a worker can run it without access to the state store.
type orderAlertJob struct {
	Order   models.Order `json:"order"`
	Webhook string       `json:"webhook,omitempty"`
	Slack   string       `json:"slack,omitempty"`
}

func (j orderAlertJob) Handle() error {
	alert := &orderAlert{job: j, message: FormatOrderMessage(j.Order)}

	errs := notification.Send(alert)
	for _, ch := range alert.Via() {
		status := "success"
		if len(errs) > 0 {
			status = "failed"
		}
		metrics.NotificationsSent.WithLabelValues(ch, status).Inc()
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// orderAlert adapts a job to the notification dispatcher's channel contracts.
type orderAlert struct {
	job     orderAlertJob
	message string
}

func (a *orderAlert) Via() []string {
	var via []string
	if a.job.Webhook != "" {
		via = append(via, "webhook")
	}
	if a.job.Slack != "" {
		via = append(via, "slack")
	}
	return via
}

func (a *orderAlert) ToWebhook() notification.WebhookData {
	return notification.WebhookData{
		URL: a.job.Webhook,
		Payload: map[string]any{
			"event":   "order.placed",
			"order":   a.job.Order,
			"message": a.message,
		},
	}
}

func (a *orderAlert) ToSlack() notification.SlackData {
	return notification.SlackData{
		WebhookURL: a.job.Slack,
		Text:       a.message,
	}
}
