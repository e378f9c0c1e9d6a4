// internal/notify/config.go
package notify

import (
	"time"

	"renoquote/internal/common/config"
)

type Config struct {
	EmailEnabled   bool
	SNSEnabled     bool
	WebhookEnabled bool

	FromEmail string
	ToEmails  []string
	TopicARN  string

	WebhookURL        string
	WebhookTimeout    time.Duration
	WebhookMaxRetries int

	AWSRegion string
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:      "eu-west-1",
		Timeout:        30 * time.Second,
		WebhookTimeout: 10 * time.Second,
	}
}

// FromConfig maps the application notify section onto the package config,
// filling unset timeouts and region from LoadConfig defaults.
func FromConfig(nc config.NotifyConfig) *Config {
	cfg := LoadConfig()

	cfg.EmailEnabled = nc.Email.Enabled
	cfg.FromEmail = nc.Email.FromEmail
	cfg.ToEmails = nc.Email.ToEmails

	cfg.SNSEnabled = nc.SNS.Enabled
	cfg.TopicARN = nc.SNS.TopicARN

	cfg.WebhookEnabled = nc.Webhook.Enabled
	cfg.WebhookURL = nc.Webhook.URL
	cfg.WebhookMaxRetries = nc.Webhook.MaxRetries
	if nc.Webhook.Timeout > 0 {
		cfg.WebhookTimeout = config.GetDuration(nc.Webhook.Timeout)
	}

	if nc.AWS.Region != "" {
		cfg.AWSRegion = nc.AWS.Region
	}

	return cfg
}
