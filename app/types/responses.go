package types

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type EmptyResponse struct{}

type Slot struct {
	Id     string `json:"id"`
	SlotId string `json:"slotId"`
	Date   string `json:"date"`
	Amount int64  `json:"amount"`
	Emoji  string `json:"emoji"`
	Booked bool   `json:"booked"`
}

type AvailabilityResponse struct {
	Date     string  `json:"date"`
	Slots    []*Slot `json:"slots"`
	Degraded bool    `json:"degraded,omitempty"`
}

type Payment struct {
	ChainId                int64  `json:"chainId"`
	TxHash                 string `json:"txHash"`
	PaymentIndex           int64  `json:"paymentIndex"`
	BlockTimestamp         string `json:"blockTimestamp"`
	TokenOutSymbol         string `json:"tokenOutSymbol"`
	TokenOutAmountGross    string `json:"tokenOutAmountGross"`
	InvoiceCurrency        string `json:"invoiceCurrency,omitempty"`
	InvoiceAmount          string `json:"invoiceAmount,omitempty"`
	ReceiverAddress        string `json:"receiverAddress,omitempty"`
	ReceiverEnsPrimaryName string `json:"receiverEnsPrimaryName,omitempty"`
	SenderAddress          string `json:"senderAddress"`
	SenderEnsPrimaryName   string `json:"senderEnsPrimaryName,omitempty"`
	SenderDisplayName      string `json:"senderDisplayName"`
	Memo                   string `json:"memo"`
	BookingDate            string `json:"bookingDate,omitempty"`
	SlotId                 string `json:"slotId"`
	DiscountTag            string `json:"discountTag,omitempty"`
	Emoji                  string `json:"emoji"`
}

type HistoryResponse struct {
	Today    string     `json:"today"`
	Recent   []*Payment `json:"recent"`
	Upcoming []*Payment `json:"upcoming"`
	Past     []*Payment `json:"past"`
	Invalid  []*Payment `json:"invalid"`
	Degraded bool       `json:"degraded,omitempty"`
}

type HistoryTabResponse struct {
	Today    string     `json:"today"`
	Tab      string     `json:"tab"`
	Payments []*Payment `json:"payments"`
	Degraded bool       `json:"degraded,omitempty"`
}

type TransactionResponse struct {
	Payment           *Payment `json:"payment"`
	Valid             bool     `json:"valid"`
	WebhookDeliveries int      `json:"webhookDeliveries"`
}

type PaymentRequestResponse struct {
	AddressOrEns string `json:"addressOrEns"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	Memo         string `json:"memo"`
	RedirectUrl  string `json:"redirectUrl,omitempty"`
	CheckoutUrl  string `json:"checkoutUrl,omitempty"`
	Discounted   bool   `json:"discounted"`
}
