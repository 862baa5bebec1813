package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const TypePaymentSettled = "payment.settled"

// PaymentSettled is published once per verified, first-seen webhook delivery.
type PaymentSettled struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	Version    int             `json:"version"`
	OccurredAt time.Time       `json:"occurred_at"`
	RequestID  string          `json:"request_id"`
	ChainID    int64           `json:"chain_id"`
	TxHash     string          `json:"tx_hash"`
	Index      int64           `json:"payment_index"`
	Payload    json.RawMessage `json:"payload"`
}

func NewPaymentSettled(requestID string, chainID int64, txHash string, index int64, payload json.RawMessage) PaymentSettled {
	return PaymentSettled{
		EventID:    uuid.NewString(),
		Type:       TypePaymentSettled,
		Version:    1,
		OccurredAt: time.Now().UTC(),
		RequestID:  requestID,
		ChainID:    chainID,
		TxHash:     txHash,
		Index:      index,
		Payload:    payload,
	}
}

func (e PaymentSettled) Key() string {
	return fmt.Sprintf("%d:%s:%d", e.ChainID, e.TxHash, e.Index)
}

type Producer struct {
	writer *kafka.Writer
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
		topic: topic,
	}
}

func (p *Producer) PublishPaymentSettled(ctx context.Context, event PaymentSettled) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.Key()),
		Value: data,
		Time:  event.OccurredAt,
	}); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
