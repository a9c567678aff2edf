// Package webhook delivers registration notifications to the fixed external
// endpoint, strictly best-effort: delivery failure never fails a registration.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tallerhub/backend/config"
	"github.com/tallerhub/backend/internal/models"
	"github.com/tallerhub/backend/pkg/queue"
)

// HeaderSource identifies this system to the webhook collaborator.
const HeaderSource = "X-Webhook-Source"

// RegistrantFetcher loads the full registrant row for the payload.
type RegistrantFetcher interface {
	GetRegistrantByID(ctx context.Context, id int64) (*models.Registrant, error)
}

// TallerFetcher loads the full taller row for the payload.
type TallerFetcher interface {
	GetByID(ctx context.Context, id int64) (*models.Taller, error)
}

// DeadLetterer receives payloads whose inline delivery attempts were exhausted.
type DeadLetterer interface {
	EnqueueWebhookDelivery(ctx context.Context, payload queue.WebhookDeliveryPayload) error
}

// Payload is the notification body POSTed to the webhook endpoint.
type Payload struct {
	RegistrationID int64              `json:"registration_id"`
	RegisteredAt   time.Time          `json:"registered_at"`
	Registrant     *models.Registrant `json:"registrant"`
	Taller         *models.Taller     `json:"workshop"`
	Origin         string             `json:"origin"`
}

// Notifier assembles and delivers registration notifications.
type Notifier struct {
	registrants RegistrantFetcher
	talleres    TallerFetcher
	client      *http.Client
	cfg         config.WebhookConfig
	dlq         DeadLetterer // may be nil
	sleep       SleepFunc
	now         func() time.Time
	logger      *zap.Logger
}

// NewNotifier creates a webhook notifier. dlq may be nil to disable
// dead-lettering.
func NewNotifier(registrants RegistrantFetcher, talleres TallerFetcher, cfg config.WebhookConfig, dlq DeadLetterer, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		registrants: registrants,
		talleres:    talleres,
		client:      &http.Client{},
		cfg:         cfg,
		dlq:         dlq,
		sleep:       sleepContext,
		now:         time.Now,
		logger:      logger,
	}
}

// Notify fetches the persisted registrant and taller rows, builds the payload
// and delivers it with bounded retries. It never returns an error: by the time
// it runs, the registration has already succeeded, so every failure here is
// logged and swallowed.
func (n *Notifier) Notify(ctx context.Context, registrationID, registrantID, tallerID int64) {
	if n.cfg.URL == "" {
		n.logger.Debug("webhook disabled, skipping notification",
			zap.Int64("registration_id", registrationID))
		return
	}

	registrant, err := n.registrants.GetRegistrantByID(ctx, registrantID)
	if err != nil {
		n.logger.Error("webhook aborted: fetch registrant failed",
			zap.Error(err), zap.Int64("registration_id", registrationID))
		return
	}
	taller, err := n.talleres.GetByID(ctx, tallerID)
	if err != nil {
		n.logger.Error("webhook aborted: fetch taller failed",
			zap.Error(err), zap.Int64("registration_id", registrationID))
		return
	}

	payload := Payload{
		RegistrationID: registrationID,
		RegisteredAt:   n.now().UTC(),
		Registrant:     registrant,
		Taller:         taller,
		Origin:         "web",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("webhook aborted: marshal payload failed", zap.Error(err))
		return
	}

	out := Retry(ctx, n.cfg.MaxAttempts, n.cfg.RetryDelay, n.sleep, func(ctx context.Context) error {
		return n.Deliver(ctx, body)
	})
	if out.Success {
		n.logger.Info("webhook delivered",
			zap.Int64("registration_id", registrationID),
			zap.Int("attempts", out.Attempts))
		return
	}

	n.logger.Warn("webhook delivery exhausted",
		zap.Int64("registration_id", registrationID),
		zap.Int("attempts", out.Attempts),
		zap.Error(out.LastErr))
	if n.dlq != nil {
		if err := n.dlq.EnqueueWebhookDelivery(ctx, queue.WebhookDeliveryPayload{
			RegistrationID: registrationID,
			Body:           body,
		}); err != nil {
			n.logger.Error("webhook dead-letter enqueue failed", zap.Error(err))
		}
	}
}

// Deliver performs one POST attempt bounded by the per-attempt timeout.
// Success is strictly a 2xx response status.
func (n *Notifier) Deliver(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, n.cfg.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", n.cfg.UserAgent)
	req.Header.Set(HeaderSource, n.cfg.SourceID)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}
