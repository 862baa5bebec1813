//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-bike-bookings/app/entity"
)

// The service under test must run with YODL_INDEXER_URL pointing at this mock.
const bookingsIndexerMockAddr = "0.0.0.0:38085"

type indexerMock struct {
	mu       sync.Mutex
	payments []entity.PaymentRecord
}

func (m *indexerMock) setPayments(items []entity.PaymentRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = items
}

func (m *indexerMock) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	items := append([]entity.PaymentRecord(nil), m.payments...)
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if hash := strings.TrimPrefix(r.URL.Path, "/api/v1/payments/"); hash != r.URL.Path && hash != "" {
		for _, item := range items {
			if strings.EqualFold(item.TxHash, hash) {
				_ = json.NewEncoder(w).Encode(map[string]interface{}{"payment": item})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
		return
	}

	if r.URL.Path != "/api/v1/payments" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	sender := strings.ToLower(r.URL.Query().Get("sender"))
	filtered := make([]entity.PaymentRecord, 0, len(items))
	for _, item := range items {
		if sender != "" && strings.ToLower(item.SenderAddress) != sender {
			continue
		}
		filtered = append(filtered, item)
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"payments": filtered})
}

func startIndexerMock(t *testing.T) *indexerMock {
	t.Helper()

	addr := strings.TrimSpace(os.Getenv("BOOKINGS_INDEXER_MOCK_ADDR"))
	if addr == "" {
		addr = bookingsIndexerMockAddr
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		t.Fatalf("indexer mock listen failed: %v", err)
	}

	mock := &indexerMock{}
	srv := &http.Server{Handler: mock, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(lis) }()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	return mock
}
