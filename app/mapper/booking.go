package mapper

import (
	"github.com/vibast-solutions/ms-go-bike-bookings/app/booking"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/entity"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/service"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/types"
)

type glyphs interface {
	Glyph(id string) string
}

func AvailabilityToResponse(item *service.Availability) *types.AvailabilityResponse {
	if item == nil {
		return nil
	}

	slots := make([]*types.Slot, 0, len(item.Slots))
	for _, slot := range item.Slots {
		slots = append(slots, &types.Slot{
			Id:     slot.Offer.ID,
			SlotId: slot.Offer.Slot.ID,
			Date:   slot.Offer.Date,
			Amount: slot.Offer.Slot.Amount,
			Emoji:  slot.Offer.Slot.Glyph,
			Booked: slot.Booked,
		})
	}

	return &types.AvailabilityResponse{
		Date:     item.Date,
		Slots:    slots,
		Degraded: item.Degraded,
	}
}

func HistoryToResponse(item *service.History, catalog glyphs) *types.HistoryResponse {
	if item == nil {
		return nil
	}

	return &types.HistoryResponse{
		Today:    item.Today,
		Recent:   PaymentsToResponse(item.Buckets.Recent, catalog),
		Upcoming: PaymentsToResponse(item.Buckets.Upcoming, catalog),
		Past:     PaymentsToResponse(item.Buckets.Past, catalog),
		Invalid:  PaymentsToResponse(item.Buckets.Invalid, catalog),
		Degraded: item.Degraded,
	}
}

func HistoryTabToResponse(item *service.History, catalog glyphs) *types.HistoryTabResponse {
	if item == nil {
		return nil
	}

	return &types.HistoryTabResponse{
		Today:    item.Today,
		Tab:      string(item.Tab),
		Payments: PaymentsToResponse(item.Buckets.Tab(item.Tab), catalog),
		Degraded: item.Degraded,
	}
}

func TransactionToResponse(item *service.Transaction) *types.TransactionResponse {
	if item == nil {
		return nil
	}

	payment := paymentToResponse(item.Payment, item.Memo)
	payment.Emoji = item.Glyph
	return &types.TransactionResponse{
		Payment:           payment,
		Valid:             item.Valid,
		WebhookDeliveries: item.WebhookDeliveries,
	}
}

func PaymentRequestToResponse(item *service.PaymentRequest) *types.PaymentRequestResponse {
	if item == nil {
		return nil
	}

	return &types.PaymentRequestResponse{
		AddressOrEns: item.AddressOrEns,
		Amount:       item.Amount.String(),
		Currency:     item.Currency,
		Memo:         item.Memo,
		RedirectUrl:  item.RedirectURL,
		CheckoutUrl:  item.CheckoutURL,
		Discounted:   item.Discounted,
	}
}

func PaymentsToResponse(items []entity.PaymentRecord, catalog glyphs) []*types.Payment {
	result := make([]*types.Payment, 0, len(items))
	for _, item := range items {
		memo := booking.ParseMemo(item.Memo)
		payment := paymentToResponse(item, memo)
		if catalog != nil {
			payment.Emoji = catalog.Glyph(memo.SlotID)
		}
		result = append(result, payment)
	}
	return result
}

func paymentToResponse(item entity.PaymentRecord, memo booking.Memo) *types.Payment {
	payment := &types.Payment{
		ChainId:                item.ChainID,
		TxHash:                 item.TxHash,
		PaymentIndex:           item.PaymentIndex,
		BlockTimestamp:         item.BlockTimestamp,
		TokenOutSymbol:         item.TokenOutSymbol,
		TokenOutAmountGross:    item.TokenOutAmountGross,
		InvoiceCurrency:        item.InvoiceCurrency,
		InvoiceAmount:          item.InvoiceAmount,
		ReceiverAddress:        item.ReceiverAddress,
		ReceiverEnsPrimaryName: item.ReceiverEnsPrimaryName,
		SenderAddress:          item.SenderAddress,
		SenderEnsPrimaryName:   item.SenderEnsPrimaryName,
		SenderDisplayName:      item.SenderDisplayName(),
		Memo:                   item.Memo,
		SlotId:                 memo.SlotLabel(),
		DiscountTag:            memo.DiscountTag,
		Emoji:                  booking.UnknownGlyph,
	}
	if memo.WellFormed {
		payment.BookingDate = memo.Date
	}
	return payment
}
