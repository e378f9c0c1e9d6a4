// internal/notify/models.go
package notify

// Channels a review alert can go out on.
const (
	ChannelEmail   = "email"
	ChannelSNS     = "sns"
	ChannelWebhook = "webhook"
)

// Per-channel delivery statuses.
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Result records one alert run. Channels maps every known channel to its
// status, disabled ones included.
type Result struct {
	AlertID  string            `json:"alertId"`
	SentAt   string            `json:"sentAt"` // ISO 8601
	Channels map[string]string `json:"channels"`
}

// Delivered reports whether at least one channel accepted the alert.
func (r *Result) Delivered() bool {
	for _, status := range r.Channels {
		if status == StatusSent {
			return true
		}
	}
	return false
}

// webhookPayload is the JSON body posted to the review webhook.
type webhookPayload struct {
	AlertID         string  `json:"alert_id"`
	QuoteID         string  `json:"quote_id"`
	Location        string  `json:"location"`
	TotalPrice      float64 `json:"total_price"`
	Currency        string  `json:"currency"`
	ConfidenceScore float64 `json:"confidence_score"`
	SuspiciousInput bool    `json:"suspicious_input"`
	Subject         string  `json:"subject"`
	Message         string  `json:"message"`
	SentAt          string  `json:"sent_at"`
}
