package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/entity"
)

func testPolicy() PricePolicy {
	return NewPricePolicy("USDC", 15, 5)
}

func TestIsValidPayment(t *testing.T) {
	policy := testPolicy()

	cases := []struct {
		name   string
		memo   string
		symbol string
		amount string
		valid  bool
	}{
		{name: "full price", memo: "2025-05-20_3", symbol: "USDC", amount: "15", valid: true},
		{name: "full price with decimals", memo: "2025-05-20_3", symbol: "USDC", amount: "15.000001", valid: true},
		{name: "full price underpaid", memo: "2025-05-20_3", symbol: "USDC", amount: "14.99", valid: false},
		{name: "discounted", memo: "2025-05-20_3_vpn", symbol: "USDC", amount: "5", valid: true},
		{name: "discount underpaid", memo: "2025-05-20_3_vpn", symbol: "USDC", amount: "3", valid: false},
		{name: "wrong token", memo: "2025-05-20_3", symbol: "USDT", amount: "100", valid: false},
		{name: "unparsable amount", memo: "2025-05-20_3", symbol: "USDC", amount: "lots", valid: false},
		{name: "malformed memo still judged on amount", memo: "notadate", symbol: "USDC", amount: "20", valid: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payment := entity.PaymentRecord{Memo: tc.memo, TokenOutSymbol: tc.symbol, TokenOutAmountGross: tc.amount}
			assert.Equal(t, tc.valid, policy.IsValidPayment(payment))
		})
	}
}
