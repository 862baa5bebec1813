package entity

import "time"

const (
	WebhookDeliveryStatusProcessed int32 = 10
	WebhookDeliveryStatusDuplicate int32 = 15
	WebhookDeliveryStatusRejected  int32 = 20
)

type WebhookDelivery struct {
	ID uint64

	RequestID string

	ChainID      *int64
	TxHash       *string
	PaymentIndex *int64

	Signature   string
	PayloadJSON string
	Status      int32
	Error       *string

	CreatedAt time.Time
}
