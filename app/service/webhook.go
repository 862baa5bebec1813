package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/entity"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/events"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/factory"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/repository"
)

const (
	maxErrorLength     = 1024
	maxSignatureLength = 256
)

type WebhookInput struct {
	Body      []byte
	Signature string
	RequestID string
}

// paymentRef identifies a payment inside a webhook notification.
type paymentRef struct {
	ChainID      int64  `json:"chainId"`
	TxHash       string `json:"txHash"`
	PaymentIndex int64  `json:"paymentIndex"`
}

func (r paymentRef) valid() bool {
	return r.ChainID > 0 && strings.TrimSpace(r.TxHash) != ""
}

func (r paymentRef) key() string {
	return fmt.Sprintf("%d:%s:%d", r.ChainID, strings.ToLower(strings.TrimSpace(r.TxHash)), r.PaymentIndex)
}

// HandleWebhook verifies a notification and returns the payload exactly as received.
// Verification failures come back as *signature.VerificationError.
func (s *BookingService) HandleWebhook(ctx context.Context, in WebhookInput) (json.RawMessage, error) {
	logger := factory.LoggerWithRequestContext(s.logger, ctx)
	signatureHeader := strings.TrimSpace(in.Signature)

	payload, err := s.verifier.VerifiedJSON(in.Body, signatureHeader)
	if err != nil {
		logger.WithError(err).Warn("webhook rejected")
		s.persistRejectedDelivery(ctx, in, err.Error())
		return nil, err
	}

	var ref paymentRef
	if err := json.Unmarshal(payload, &ref); err != nil {
		logger.WithError(err).Warn("webhook payload carries no payment reference")
	}

	now := s.now().UTC()
	delivery := &entity.WebhookDelivery{
		RequestID:   in.RequestID,
		Signature:   signatureHeader,
		PayloadJSON: string(payload),
		Status:      entity.WebhookDeliveryStatusProcessed,
		CreatedAt:   now,
	}
	if ref.valid() {
		chainID, txHash, index := ref.ChainID, strings.ToLower(strings.TrimSpace(ref.TxHash)), ref.PaymentIndex
		delivery.ChainID = &chainID
		delivery.TxHash = &txHash
		delivery.PaymentIndex = &index
		logger = logger.WithFields(logrus.Fields{
			"chain_id":      chainID,
			"tx_hash":       txHash,
			"payment_index": index,
		})
	}

	marked := false
	if ref.valid() && s.guard != nil {
		first, err := s.guard.MarkFirstDelivery(ctx, ref.key())
		if err != nil {
			logger.WithError(err).Warn("delivery guard unavailable")
		} else if !first {
			delivery.Status = entity.WebhookDeliveryStatusDuplicate
		}
		marked = err == nil && first
	}

	if s.deliveries != nil {
		if err := s.deliveries.Create(ctx, delivery); err != nil {
			if !errors.Is(err, repository.ErrWebhookDeliveryExists) {
				// the indexer retries on 500; the retry must not look like a redelivery
				if marked {
					if releaseErr := s.guard.ReleaseDelivery(ctx, ref.key()); releaseErr != nil {
						logger.WithError(releaseErr).Error("failed to release delivery guard")
					}
				}
				return nil, err
			}
			delivery.Status = entity.WebhookDeliveryStatusDuplicate
		}
	}

	if delivery.Status == entity.WebhookDeliveryStatusDuplicate {
		logger.Info("duplicate webhook acknowledged")
		return payload, nil
	}

	logger.Info("webhook verified")

	if ref.valid() && s.publisher != nil {
		event := events.NewPaymentSettled(in.RequestID, ref.ChainID, *delivery.TxHash, ref.PaymentIndex, payload)
		if err := s.publisher.PublishPaymentSettled(ctx, event); err != nil {
			logger.WithError(err).Error("failed to publish payment settled event")
		}
	}

	return payload, nil
}

func (s *BookingService) persistRejectedDelivery(ctx context.Context, in WebhookInput, reason string) {
	if s.deliveries == nil {
		return
	}

	reason = truncate(strings.TrimSpace(reason), maxErrorLength)
	if reason == "" {
		reason = "webhook rejected"
	}
	err := s.deliveries.Create(ctx, &entity.WebhookDelivery{
		RequestID:   in.RequestID,
		Signature:   truncate(strings.TrimSpace(in.Signature), maxSignatureLength),
		PayloadJSON: string(in.Body),
		Status:      entity.WebhookDeliveryStatusRejected,
		Error:       &reason,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		factory.LoggerWithRequestContext(s.logger, ctx).WithError(err).Error("failed to record rejected webhook")
	}
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}

