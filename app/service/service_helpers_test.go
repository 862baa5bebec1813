package service

import (
	"context"
	"time"

	"github.com/vibast-solutions/ms-go-bike-bookings/app/booking"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/entity"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/events"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/indexer"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/signature"
	"github.com/vibast-solutions/ms-go-bike-bookings/config"
)

const testReceiver = "bikes.eth"

type fakeFeed struct {
	listFn    func(ctx context.Context, query indexer.Query) ([]entity.PaymentRecord, error)
	getFn     func(ctx context.Context, txHash string, chainID int64) (*entity.PaymentRecord, error)
	lastQuery indexer.Query
	listCalls int
}

func (f *fakeFeed) ListPayments(ctx context.Context, query indexer.Query) ([]entity.PaymentRecord, error) {
	f.listCalls++
	f.lastQuery = query
	if f.listFn != nil {
		return f.listFn(ctx, query)
	}
	return []entity.PaymentRecord{}, nil
}

func (f *fakeFeed) GetPayment(ctx context.Context, txHash string, chainID int64) (*entity.PaymentRecord, error) {
	if f.getFn != nil {
		return f.getFn(ctx, txHash, chainID)
	}
	return nil, nil
}

type fakeProbe struct {
	trusted bool
	calls   int
}

func (p *fakeProbe) IsTrustedNetwork(context.Context) bool {
	p.calls++
	return p.trusted
}

type fakeDeliveryRepo struct {
	createFn func(ctx context.Context, delivery *entity.WebhookDelivery) error
	listFn   func(ctx context.Context, txHash string, limit int32) ([]*entity.WebhookDelivery, error)
	created  []*entity.WebhookDelivery
}

func (r *fakeDeliveryRepo) ListByTxHash(ctx context.Context, txHash string, limit int32) ([]*entity.WebhookDelivery, error) {
	if r.listFn != nil {
		return r.listFn(ctx, txHash, limit)
	}
	return []*entity.WebhookDelivery{}, nil
}

func (r *fakeDeliveryRepo) Create(ctx context.Context, delivery *entity.WebhookDelivery) error {
	if r.createFn != nil {
		if err := r.createFn(ctx, delivery); err != nil {
			return err
		}
	}
	copyItem := *delivery
	r.created = append(r.created, &copyItem)
	return nil
}

type fakeGuard struct {
	seen map[string]bool
	err  error
}

func (g *fakeGuard) MarkFirstDelivery(_ context.Context, key string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	if g.seen[key] {
		return false, nil
	}
	g.seen[key] = true
	return true, nil
}

func (g *fakeGuard) ReleaseDelivery(_ context.Context, key string) error {
	delete(g.seen, key)
	return nil
}

type fakePublisher struct {
	err       error
	published []events.PaymentSettled
}

func (p *fakePublisher) PublishPaymentSettled(_ context.Context, event events.PaymentSettled) error {
	p.published = append(p.published, event)
	return p.err
}

func testBookingConfig() config.BookingConfig {
	return config.BookingConfig{
		Currency:        "USDC",
		InvoiceCurrency: "USD",
		FullPrice:       15,
		DiscountPrice:   5,
		DiscountTag:     "vpn",
		HistoryPageSize: 200,
		RedirectURL:     "https://bikes.example/done",
	}
}

func newTestService(feed *fakeFeed, probe *fakeProbe, signer string) *BookingService {
	cfg := testBookingConfig()
	svc := NewBookingService(
		feed,
		probe,
		booking.NewReconciler(booking.NewPricePolicy(cfg.Currency, cfg.FullPrice, cfg.DiscountPrice)),
		booking.DefaultCatalog(15),
		signature.NewVerifier(signer),
		cfg,
		config.YodlConfig{Receiver: testReceiver, OriginURL: "https://yodl.me"},
	)
	svc.now = func() time.Time { return time.Date(2025, 5, 20, 15, 4, 0, 0, time.UTC) }
	return svc
}

func record(hash, memo, symbol, amount, timestamp string) entity.PaymentRecord {
	return entity.PaymentRecord{
		ChainID:             8453,
		TxHash:              hash,
		Memo:                memo,
		TokenOutSymbol:      symbol,
		TokenOutAmountGross: amount,
		BlockTimestamp:      timestamp,
	}
}

func txHashes(items []entity.PaymentRecord) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.TxHash)
	}
	return out
}
