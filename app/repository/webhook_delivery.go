package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/vibast-solutions/ms-go-bike-bookings/app/entity"
)

// WebhookDeliveryRepository is an append-only audit log of indexer webhooks.
// Bookings are never read from it.
type WebhookDeliveryRepository struct {
	db DBTX
}

func NewWebhookDeliveryRepository(db DBTX) *WebhookDeliveryRepository {
	return &WebhookDeliveryRepository{db: db}
}

func (r *WebhookDeliveryRepository) Create(ctx context.Context, delivery *entity.WebhookDelivery) error {
	query := `
		INSERT INTO webhook_deliveries (
			request_id, chain_id, tx_hash, payment_index, signature, payload_json, status, error, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		delivery.RequestID,
		nullableInt64Value(delivery.ChainID),
		nullableStringValue(delivery.TxHash),
		nullableInt64Value(delivery.PaymentIndex),
		delivery.Signature,
		delivery.PayloadJSON,
		delivery.Status,
		nullableStringValue(delivery.Error),
		delivery.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrWebhookDeliveryExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	delivery.ID = uint64(id)

	return nil
}

func (r *WebhookDeliveryRepository) ListByTxHash(ctx context.Context, txHash string, limit int32) ([]*entity.WebhookDelivery, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, request_id, chain_id, tx_hash, payment_index, signature, payload_json, status, error, created_at
		FROM webhook_deliveries
		WHERE tx_hash = ?
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, strings.ToLower(strings.TrimSpace(txHash)), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.WebhookDelivery, 0)
	for rows.Next() {
		item := &entity.WebhookDelivery{}
		if err := scanWebhookDelivery(rows, item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWebhookDelivery(row rowScanner, item *entity.WebhookDelivery) error {
	var (
		chainID      sql.NullInt64
		txHash       sql.NullString
		paymentIndex sql.NullInt64
		errText      sql.NullString
	)

	if err := row.Scan(
		&item.ID,
		&item.RequestID,
		&chainID,
		&txHash,
		&paymentIndex,
		&item.Signature,
		&item.PayloadJSON,
		&item.Status,
		&errText,
		&item.CreatedAt,
	); err != nil {
		return err
	}

	item.ChainID = int64PtrFromNull(chainID)
	item.TxHash = stringPtrFromNull(txHash)
	item.PaymentIndex = int64PtrFromNull(paymentIndex)
	item.Error = stringPtrFromNull(errText)

	return nil
}
