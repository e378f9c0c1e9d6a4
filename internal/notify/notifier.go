// internal/notify/notifier.go

// Package notify delivers review alerts for quotes that need a human look
// before going out. Delivery is best effort on every configured channel;
// failures are logged and counted, never surfaced to the quote run.
package notify

import (
	"context"
	"encoding/json"
	"time"

	awsclient "renoquote/internal/common/aws"
	apperrors "renoquote/internal/common/errors"
	httpclient "renoquote/internal/common/http"
	"renoquote/internal/common/logger"
	"renoquote/internal/common/metrics"
	"renoquote/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Notifier struct {
	config    *Config
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
	webhook   *httpclient.Client
}

func New(cfg *Config, log logger.Logger) (*Notifier, error) {
	n := &Notifier{
		config: cfg,
		logger: log.Named("notify"),
	}

	ctx := context.Background()
	if cfg.EmailEnabled {
		sesClient, err := awsclient.NewSESClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, apperrors.NewNotifyError(ChannelEmail, err)
		}
		n.sesClient = sesClient
	}
	if cfg.SNSEnabled {
		snsClient, err := awsclient.NewSNSClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, apperrors.NewNotifyError(ChannelSNS, err)
		}
		n.snsClient = snsClient
	}
	if cfg.WebhookEnabled {
		n.webhook = httpclient.NewClientWithRetries(cfg.WebhookTimeout, cfg.WebhookMaxRetries)
	}

	return n, nil
}

// SendReviewAlert fans the alert out to every enabled channel and reports
// per-channel status. It never returns an error; a quote run must not fail
// because a notification could not be delivered.
func (n *Notifier) SendReviewAlert(ctx context.Context, q *models.Quote) *Result {
	result := &Result{
		AlertID: uuid.New().String(),
		SentAt:  time.Now().UTC().Format(time.RFC3339),
		Channels: map[string]string{
			ChannelEmail:   StatusDisabled,
			ChannelSNS:     StatusDisabled,
			ChannelWebhook: StatusDisabled,
		},
	}
	if q == nil {
		n.logger.Warn("review alert requested without a quote", nil)
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, n.config.Timeout)
	defer cancel()

	data := alertData(q)
	subject := renderTemplate(subjectTemplate, data)
	body := renderTemplate(bodyTemplate, data)

	if n.config.EmailEnabled {
		result.Channels[ChannelEmail] = n.attempt(ChannelEmail, q.QuoteID, func() error {
			return n.sendEmail(ctx, subject, body)
		})
	}
	if n.config.SNSEnabled {
		result.Channels[ChannelSNS] = n.attempt(ChannelSNS, q.QuoteID, func() error {
			return n.publishSNS(ctx, subject, body)
		})
	}
	if n.config.WebhookEnabled {
		result.Channels[ChannelWebhook] = n.attempt(ChannelWebhook, q.QuoteID, func() error {
			return n.postWebhook(ctx, q, result, subject, body)
		})
	}

	n.logger.Info("review alert processed", map[string]interface{}{
		"alertId":  result.AlertID,
		"quoteId":  q.QuoteID,
		"channels": result.Channels,
	})
	return result
}

// attempt runs one channel delivery and translates the outcome into a status.
func (n *Notifier) attempt(channel, quoteID string, send func() error) string {
	if err := send(); err != nil {
		n.logger.WithError(err).Error("review alert delivery failed", map[string]interface{}{
			"channel": channel,
			"quoteId": quoteID,
		})
		metrics.NotificationsSent.WithLabelValues(channel, StatusFailed).Inc()
		return StatusFailed
	}
	metrics.NotificationsSent.WithLabelValues(channel, StatusSent).Inc()
	return StatusSent
}

func (n *Notifier) sendEmail(ctx context.Context, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: n.config.ToEmails,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.FromEmail),
	})
	return err
}

func (n *Notifier) publishSNS(ctx context.Context, subject, body string) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.config.TopicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
	})
	return err
}

func (n *Notifier) postWebhook(ctx context.Context, q *models.Quote, result *Result, subject, body string) error {
	payload := webhookPayload{
		AlertID:         result.AlertID,
		QuoteID:         q.QuoteID,
		Location:        q.Client.Location,
		TotalPrice:      q.Summary.TotalPrice,
		Currency:        q.Currency,
		ConfidenceScore: q.Summary.ConfidenceScore,
		SuspiciousInput: q.Summary.SuspiciousInput,
		Subject:         subject,
		Message:         body,
		SentAt:          result.SentAt,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return n.webhook.PostJSON(ctx, n.config.WebhookURL, raw)
}
