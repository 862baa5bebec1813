package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/booking"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/entity"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/indexer"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/service"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/signature"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/types"
	"github.com/vibast-solutions/ms-go-bike-bookings/config"
)

type controllerFeed struct {
	listFn func(ctx context.Context, query indexer.Query) ([]entity.PaymentRecord, error)
	getFn  func(ctx context.Context, txHash string, chainID int64) (*entity.PaymentRecord, error)
}

func (f *controllerFeed) ListPayments(ctx context.Context, query indexer.Query) ([]entity.PaymentRecord, error) {
	if f.listFn != nil {
		return f.listFn(ctx, query)
	}
	return []entity.PaymentRecord{}, nil
}

func (f *controllerFeed) GetPayment(ctx context.Context, txHash string, chainID int64) (*entity.PaymentRecord, error) {
	if f.getFn != nil {
		return f.getFn(ctx, txHash, chainID)
	}
	return nil, nil
}

type controllerProbe struct {
	trusted bool
}

func (p *controllerProbe) IsTrustedNetwork(context.Context) bool {
	return p.trusted
}

type controllerDeliveryRepo struct {
	createFn func(ctx context.Context, delivery *entity.WebhookDelivery) error
}

func (r *controllerDeliveryRepo) ListByTxHash(context.Context, string, int32) ([]*entity.WebhookDelivery, error) {
	return []*entity.WebhookDelivery{}, nil
}

func (r *controllerDeliveryRepo) Create(ctx context.Context, delivery *entity.WebhookDelivery) error {
	if r.createFn != nil {
		return r.createFn(ctx, delivery)
	}
	return nil
}

func today() string {
	return booking.Today(time.Now())
}

func newTestController(feed *controllerFeed, signer string) *BookingController {
	cfg := config.BookingConfig{
		Currency:        "USDC",
		InvoiceCurrency: "USD",
		FullPrice:       15,
		DiscountPrice:   5,
		DiscountTag:     "vpn",
		HistoryPageSize: 200,
	}
	svc := service.NewBookingService(
		feed,
		&controllerProbe{},
		booking.NewReconciler(booking.NewPricePolicy(cfg.Currency, cfg.FullPrice, cfg.DiscountPrice)),
		booking.DefaultCatalog(15),
		signature.NewVerifier(signer),
		cfg,
		config.YodlConfig{Receiver: "bikes.eth", OriginURL: "https://yodl.me"},
	)
	return NewBookingController(svc)
}

func performRequest(t *testing.T, handler echo.HandlerFunc, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body types.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestHealth(t *testing.T) {
	ctrl := newTestController(&controllerFeed{}, "")
	rec := performRequest(t, ctrl.Health, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestAvailability(t *testing.T) {
	day := today()
	feed := &controllerFeed{listFn: func(context.Context, indexer.Query) ([]entity.PaymentRecord, error) {
		return []entity.PaymentRecord{{TxHash: "0x01", Memo: day + "_2", TokenOutSymbol: "USDC", TokenOutAmountGross: "15"}}, nil
	}}
	ctrl := newTestController(feed, "")

	rec := performRequest(t, ctrl.Availability, http.MethodGet, "/slots", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body types.AvailabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Date != day || len(body.Slots) != 9 {
		t.Fatalf("unexpected availability: %+v", body)
	}
	if !body.Slots[1].Booked || body.Slots[0].Booked {
		t.Fatalf("expected only slot 2 booked: %+v %+v", body.Slots[0], body.Slots[1])
	}

	rec = performRequest(t, ctrl.Availability, http.MethodGet, "/slots?date=tomorrow", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed date, got %d", rec.Code)
	}
}

func TestHistory(t *testing.T) {
	feed := &controllerFeed{listFn: func(context.Context, indexer.Query) ([]entity.PaymentRecord, error) {
		return []entity.PaymentRecord{{TxHash: "0x05", Memo: "notadate", TokenOutSymbol: "USDC", TokenOutAmountGross: "15"}}, nil
	}}
	ctrl := newTestController(feed, "")

	rec := performRequest(t, ctrl.History, http.MethodGet, "/history", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var all types.HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(all.Invalid) != 1 || len(all.Recent) != 0 {
		t.Fatalf("unexpected history: %+v", all)
	}

	rec = performRequest(t, ctrl.History, http.MethodGet, "/history?tab=invalid", "", nil)
	var tab types.HistoryTabResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tab); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if tab.Tab != "invalid" || len(tab.Payments) != 1 || tab.Payments[0].SlotId != booking.UnknownSlot {
		t.Fatalf("unexpected tab history: %+v", tab)
	}

	rec = performRequest(t, ctrl.History, http.MethodGet, "/history?tab=archived", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown tab, got %d", rec.Code)
	}
}

func TestTransaction(t *testing.T) {
	feed := &controllerFeed{getFn: func(_ context.Context, txHash string, _ int64) (*entity.PaymentRecord, error) {
		if txHash != "0xabc" {
			return nil, nil
		}
		return &entity.PaymentRecord{TxHash: "0xabc", Memo: "2025-05-20_1", TokenOutSymbol: "USDC", TokenOutAmountGross: "15"}, nil
	}}
	ctrl := newTestController(feed, "")

	rec := performRequest(t, ctrl.Transaction, http.MethodGet, "/tx?txHash=0xabc&chainId=8453", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body types.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Valid || body.Payment.Emoji != "🚴" {
		t.Fatalf("unexpected transaction: %+v", body.Payment)
	}

	rec = performRequest(t, ctrl.Transaction, http.MethodGet, "/tx?txHash=0xdef&chainId=8453", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = performRequest(t, ctrl.Transaction, http.MethodGet, "/tx?txHash=0xabc", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without chainId, got %d", rec.Code)
	}
}

func TestTransactionFeedFailure(t *testing.T) {
	feed := &controllerFeed{getFn: func(context.Context, string, int64) (*entity.PaymentRecord, error) {
		return nil, errors.New("indexer down")
	}}
	ctrl := newTestController(feed, "")

	rec := performRequest(t, ctrl.Transaction, http.MethodGet, "/tx?txHash=0xabc&chainId=1", "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestCreatePaymentRequest(t *testing.T) {
	day := today()
	feed := &controllerFeed{listFn: func(context.Context, indexer.Query) ([]entity.PaymentRecord, error) {
		return []entity.PaymentRecord{{TxHash: "0x01", Memo: day + "_2", TokenOutSymbol: "USDC", TokenOutAmountGross: "15"}}, nil
	}}
	ctrl := newTestController(feed, "")

	rec := performRequest(t, ctrl.CreatePaymentRequest, http.MethodPost, "/payments", `{"date":"`+day+`","slotId":"1"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var body types.PaymentRequestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Memo != day+"_1" || body.Amount != "15" || body.Currency != "USD" || body.AddressOrEns != "bikes.eth" {
		t.Fatalf("unexpected payment request: %+v", body)
	}

	rec = performRequest(t, ctrl.CreatePaymentRequest, http.MethodPost, "/payments", `{"date":"`+day+`","slotId":"2"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for booked slot, got %d", rec.Code)
	}

	rec = performRequest(t, ctrl.CreatePaymentRequest, http.MethodPost, "/payments", `{"date":"`+day+`","slotId":"99"}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown slot, got %d", rec.Code)
	}

	rec = performRequest(t, ctrl.CreatePaymentRequest, http.MethodPost, "/payments", `{"date":"`+day+`"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without slotId, got %d", rec.Code)
	}
}

func TestWebhook(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer := crypto.PubkeyToAddress(key.PublicKey).Hex()
	payload := `{"txHash":"0xabc","chainId":8453,"paymentIndex":0}`
	sig, err := signature.Sign(key, []byte(payload))
	if err != nil {
		t.Fatalf("sign payload: %v", err)
	}

	ctrl := newTestController(&controllerFeed{}, signer)

	rec := performRequest(t, ctrl.Webhook, http.MethodPost, "/webhook", payload, map[string]string{signature.SignatureHeader: sig})
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "{}" {
		t.Fatalf("expected 200 {}, got %d %s", rec.Code, rec.Body.String())
	}

	rec = performRequest(t, ctrl.Webhook, http.MethodPost, "/webhook", payload, nil)
	if rec.Code != http.StatusBadRequest || decodeError(t, rec) != "Missing or invalid signature" {
		t.Fatalf("expected missing signature 400, got %d %s", rec.Code, rec.Body.String())
	}

	tampered := strings.Replace(payload, "0xabc", "0xdef", 1)
	rec = performRequest(t, ctrl.Webhook, http.MethodPost, "/webhook", tampered, map[string]string{signature.SignatureHeader: sig})
	if rec.Code != http.StatusBadRequest || decodeError(t, rec) != "Signature verification failed" {
		t.Fatalf("expected mismatch 400, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestWebhookSignerNotConfigured(t *testing.T) {
	ctrl := newTestController(&controllerFeed{}, "")

	rec := performRequest(t, ctrl.Webhook, http.MethodPost, "/webhook", `{"txHash":"0xabc"}`, map[string]string{signature.SignatureHeader: "0x00"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != signature.ErrSignerNotConfigured.Error() {
		t.Fatalf("unexpected error message: %s", msg)
	}
}

func TestWebhookSystemFailure(t *testing.T) {
	key, _ := crypto.GenerateKey()
	payload := `{"txHash":"0xabc","chainId":1}`
	sig, _ := signature.Sign(key, []byte(payload))

	ctrl := newTestController(&controllerFeed{}, crypto.PubkeyToAddress(key.PublicKey).Hex())
	ctrl.bookingService.WithDeliveryRepository(&controllerDeliveryRepo{createFn: func(context.Context, *entity.WebhookDelivery) error {
		return errors.New("db down")
	}})

	rec := performRequest(t, ctrl.Webhook, http.MethodPost, "/webhook", payload, map[string]string{signature.SignatureHeader: sig})
	if rec.Code != http.StatusInternalServerError || decodeError(t, rec) != "SystemFailure" {
		t.Fatalf("expected SystemFailure 500, got %d %s", rec.Code, rec.Body.String())
	}
}
