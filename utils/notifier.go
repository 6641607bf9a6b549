package utils

import (
	"coursemanager/config"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// Webhook event names
const (
	EventCourseCompleted = "course.completed"
	EventQuizSubmitted   = "quiz.submitted"
	EventAttendanceSweep = "attendance.swept"
)

var webhookClient = resty.New().
	SetTimeout(5*time.Second).
	SetRetryCount(2).
	SetRetryWaitTime(500*time.Millisecond).
	SetHeader("Content-Type", "application/json")

type webhookPayload struct {
	Event      string      `json:"event"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// NotifyWebhook posts an event to WEBHOOK_URL in the background. It is a no-op when unset.
func NotifyWebhook(event string, data interface{}) {
	cfg := config.AppConfig
	if cfg == nil || cfg.WebhookURL == "" {
		return
	}
	payload := webhookPayload{Event: event, OccurredAt: time.Now().UTC(), Data: data}

	go func(url string) {
		resp, err := webhookClient.R().SetBody(payload).Post(url)
		if err != nil {
			log.Printf("[WEBHOOK] %s delivery failed: %v", event, err)
			return
		}
		if resp.IsError() {
			log.Printf("[WEBHOOK] %s delivery rejected: status %d", event, resp.StatusCode())
		}
	}(cfg.WebhookURL)
}
