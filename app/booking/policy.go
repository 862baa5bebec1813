package booking

import (
	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/entity"
)

// PricePolicy decides whether a settled payment is worth a booking. The settled
// token amount is authoritative; the invoice amount is never consulted.
type PricePolicy struct {
	Currency        string
	FullMinimum     decimal.Decimal
	DiscountMinimum decimal.Decimal
}

func NewPricePolicy(currency string, fullMinimum, discountMinimum float64) PricePolicy {
	return PricePolicy{
		Currency:        currency,
		FullMinimum:     decimal.NewFromFloat(fullMinimum),
		DiscountMinimum: decimal.NewFromFloat(discountMinimum),
	}
}

func (p PricePolicy) IsValidPayment(payment entity.PaymentRecord) bool {
	if payment.TokenOutSymbol != p.Currency {
		return false
	}

	settled, err := decimal.NewFromString(payment.TokenOutAmountGross)
	if err != nil {
		return false
	}

	if ParseMemo(payment.Memo).HasDiscount() {
		return settled.GreaterThanOrEqual(p.DiscountMinimum)
	}
	return settled.GreaterThanOrEqual(p.FullMinimum)
}
