package service

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/booking"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/entity"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/events"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/factory"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/indexer"
	"github.com/vibast-solutions/ms-go-bike-bookings/config"
)

const (
	defaultPageSize     = 200
	deliveryLookupLimit = int32(20)
)

type paymentFeed interface {
	ListPayments(ctx context.Context, query indexer.Query) ([]entity.PaymentRecord, error)
	GetPayment(ctx context.Context, txHash string, chainID int64) (*entity.PaymentRecord, error)
}

type networkProbe interface {
	IsTrustedNetwork(ctx context.Context) bool
}

type webhookVerifier interface {
	VerifiedJSON(body []byte, signatureHex string) (json.RawMessage, error)
}

type deliveryRepository interface {
	Create(ctx context.Context, delivery *entity.WebhookDelivery) error
	ListByTxHash(ctx context.Context, txHash string, limit int32) ([]*entity.WebhookDelivery, error)
}

type deliveryGuard interface {
	MarkFirstDelivery(ctx context.Context, key string) (bool, error)
	ReleaseDelivery(ctx context.Context, key string) error
}

type eventPublisher interface {
	PublishPaymentSettled(ctx context.Context, event events.PaymentSettled) error
}

type BookingService struct {
	feed       paymentFeed
	probe      networkProbe
	reconciler *booking.Reconciler
	catalog    *booking.Catalog
	verifier   webhookVerifier

	deliveries deliveryRepository
	guard      deliveryGuard
	publisher  eventPublisher

	bookingCfg config.BookingConfig
	yodlCfg    config.YodlConfig
	logger     logrus.FieldLogger
	now        func() time.Time
}

func NewBookingService(
	feed paymentFeed,
	probe networkProbe,
	reconciler *booking.Reconciler,
	catalog *booking.Catalog,
	verifier webhookVerifier,
	bookingCfg config.BookingConfig,
	yodlCfg config.YodlConfig,
) *BookingService {
	return &BookingService{
		feed:       feed,
		probe:      probe,
		reconciler: reconciler,
		catalog:    catalog,
		verifier:   verifier,
		bookingCfg: bookingCfg,
		yodlCfg:    yodlCfg,
		logger:     factory.NewModuleLogger("booking-service"),
		now:        time.Now,
	}
}

// WithDeliveryRepository enables the webhook delivery audit log.
func (s *BookingService) WithDeliveryRepository(repo deliveryRepository) *BookingService {
	s.deliveries = repo
	return s
}

// WithDeliveryGuard enables duplicate webhook detection.
func (s *BookingService) WithDeliveryGuard(guard deliveryGuard) *BookingService {
	s.guard = guard
	return s
}

// WithEventPublisher enables payment.settled events.
func (s *BookingService) WithEventPublisher(publisher eventPublisher) *BookingService {
	s.publisher = publisher
	return s
}

type SlotAvailability struct {
	Offer  booking.Offer
	Booked bool
}

type Availability struct {
	Date     string
	Slots    []SlotAvailability
	Degraded bool
}

type HistoryQuery struct {
	Tab    string
	Sender string
}

type History struct {
	Today string
	// Tab is empty when every bucket was requested.
	Tab      booking.Tab
	Buckets  booking.Buckets
	Degraded bool
}

type Transaction struct {
	Payment entity.PaymentRecord
	Memo    booking.Memo
	Glyph   string
	Valid   bool
	// WebhookDeliveries counts accepted webhooks for the payment; zero without an audit log.
	WebhookDeliveries int
}

type PaymentRequest struct {
	AddressOrEns string
	Amount       decimal.Decimal
	Currency     string
	Memo         string
	RedirectURL  string
	CheckoutURL  string
	Discounted   bool
}

func (s *BookingService) Catalog() *booking.Catalog {
	return s.catalog
}

func (s *BookingService) Today() string {
	return booking.Today(s.now())
}

func (s *BookingService) Availability(ctx context.Context, date string) (*Availability, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = s.Today()
	}
	if !booking.IsDate(date) {
		return nil, ErrInvalidRequest
	}

	result := &Availability{Date: date}
	offers := s.catalog.Offers(date)

	payments, err := s.feed.ListPayments(ctx, s.receiverQuery(""))
	if err != nil {
		factory.LoggerWithRequestContext(s.logger, ctx).WithError(err).Warn("payment feed unavailable, serving slots without bookings")
		result.Degraded = true
		payments = nil
	}

	ledger := s.reconciler.Ledger(payments)
	result.Slots = make([]SlotAvailability, 0, len(offers))
	for _, offer := range offers {
		result.Slots = append(result.Slots, SlotAvailability{
			Offer:  offer,
			Booked: ledger.IsSlotBooked(offer.Date, offer.Slot.ID),
		})
	}

	return result, nil
}

func (s *BookingService) History(ctx context.Context, query HistoryQuery) (*History, error) {
	result := &History{Today: s.Today()}

	if raw := strings.TrimSpace(query.Tab); raw != "" {
		tab, ok := booking.ParseTab(strings.ToLower(raw))
		if !ok {
			return nil, ErrInvalidRequest
		}
		result.Tab = tab
	}

	sender := strings.TrimSpace(query.Sender)
	if sender != "" && !common.IsHexAddress(sender) {
		return nil, ErrInvalidRequest
	}

	payments, err := s.feed.ListPayments(ctx, s.receiverQuery(sender))
	if err != nil {
		factory.LoggerWithRequestContext(s.logger, ctx).WithError(err).Warn("payment feed unavailable, serving empty history")
		result.Degraded = true
		payments = nil
	}

	result.Buckets = s.reconciler.Classify(payments, result.Today)
	return result, nil
}

func (s *BookingService) GetTransaction(ctx context.Context, txHash string, chainID int64) (*Transaction, error) {
	txHash = strings.TrimSpace(txHash)
	if txHash == "" || chainID <= 0 {
		return nil, ErrInvalidRequest
	}

	payment, err := s.feed.GetPayment(ctx, txHash, chainID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	memo := booking.ParseMemo(payment.Memo)
	return &Transaction{
		Payment:           *payment,
		Memo:              memo,
		Glyph:             s.catalog.Glyph(memo.SlotID),
		Valid:             s.reconciler.Policy().IsValidPayment(*payment),
		WebhookDeliveries: s.countDeliveries(ctx, *payment),
	}, nil
}

func (s *BookingService) countDeliveries(ctx context.Context, payment entity.PaymentRecord) int {
	if s.deliveries == nil {
		return 0
	}

	items, err := s.deliveries.ListByTxHash(ctx, payment.TxHash, deliveryLookupLimit)
	if err != nil {
		factory.LoggerWithRequestContext(s.logger, ctx).WithError(err).Warn("failed to read webhook deliveries")
		return 0
	}

	count := 0
	for _, item := range items {
		if item.Status == entity.WebhookDeliveryStatusRejected {
			continue
		}
		if item.ChainID != nil && *item.ChainID != payment.ChainID {
			continue
		}
		count++
	}
	return count
}

// CreatePaymentRequest builds the request handed to the payment app. Requests
// from the trusted network get the discount tag in the memo and pay the
// discount price.
func (s *BookingService) CreatePaymentRequest(ctx context.Context, date, slotID string) (*PaymentRequest, error) {
	date = strings.TrimSpace(date)
	slotID = strings.TrimSpace(slotID)
	if date == "" {
		date = s.Today()
	}
	if slotID == "" || !booking.IsDate(date) || date < s.Today() {
		return nil, ErrInvalidRequest
	}

	slot, ok := s.catalog.Lookup(slotID)
	if !ok {
		return nil, ErrSlotNotFound
	}

	payments, err := s.feed.ListPayments(ctx, s.receiverQuery(""))
	if err != nil {
		return nil, err
	}
	if s.reconciler.Ledger(payments).IsSlotBooked(date, slot.ID) {
		return nil, ErrSlotUnavailable
	}

	request := &PaymentRequest{
		AddressOrEns: s.yodlCfg.Receiver,
		Amount:       decimal.NewFromInt(slot.Amount),
		Currency:     s.bookingCfg.InvoiceCurrency,
		Memo:         booking.BuildMemo(date, slot.ID, ""),
		RedirectURL:  s.bookingCfg.RedirectURL,
	}
	if s.probe != nil && s.bookingCfg.DiscountTag != "" && s.probe.IsTrustedNetwork(ctx) {
		request.Amount = decimal.NewFromFloat(s.bookingCfg.DiscountPrice)
		request.Memo = booking.BuildMemo(date, slot.ID, s.bookingCfg.DiscountTag)
		request.Discounted = true
	}
	request.CheckoutURL = s.checkoutURL(request)

	factory.LoggerWithRequestContext(s.logger, ctx).WithFields(logrus.Fields{
		"memo":       request.Memo,
		"amount":     request.Amount.String(),
		"discounted": request.Discounted,
	}).Info("payment request created")

	return request, nil
}

func (s *BookingService) receiverQuery(sender string) indexer.Query {
	perPage := s.bookingCfg.HistoryPageSize
	if perPage <= 0 {
		perPage = defaultPageSize
	}
	return indexer.Query{
		PerPage:  perPage,
		Sender:   sender,
		Receiver: s.yodlCfg.Receiver,
	}
}

func (s *BookingService) checkoutURL(request *PaymentRequest) string {
	origin := strings.TrimRight(strings.TrimSpace(s.yodlCfg.OriginURL), "/")
	if origin == "" {
		return ""
	}

	values := url.Values{}
	values.Set("amount", request.Amount.String())
	values.Set("currency", request.Currency)
	values.Set("memo", request.Memo)
	if request.RedirectURL != "" {
		values.Set("redirectUrl", request.RedirectURL)
	}
	return origin + "/" + url.PathEscape(request.AddressOrEns) + "?" + values.Encode()
}
