package entity

// PaymentRecord is a settled payment as served by the Yodl indexer.
type PaymentRecord struct {
	ChainID      int64  `json:"chainId"`
	TxHash       string `json:"txHash"`
	PaymentIndex int64  `json:"paymentIndex"`

	BlockTimestamp string `json:"blockTimestamp"`

	TokenOutSymbol      string `json:"tokenOutSymbol"`
	TokenOutAddress     string `json:"tokenOutAddress"`
	TokenOutAmountGross string `json:"tokenOutAmountGross"`

	ReceiverAddress        string `json:"receiverAddress"`
	ReceiverEnsPrimaryName string `json:"receiverEnsPrimaryName"`

	InvoiceCurrency string `json:"invoiceCurrency"`
	InvoiceAmount   string `json:"invoiceAmount"`

	SenderAddress        string `json:"senderAddress"`
	SenderEnsPrimaryName string `json:"senderEnsPrimaryName"`

	Memo string `json:"memo"`
}

// SenderDisplayName prefers the ENS primary name and falls back to a truncated address.
func (p PaymentRecord) SenderDisplayName() string {
	if p.SenderEnsPrimaryName != "" {
		return p.SenderEnsPrimaryName
	}
	return TruncateAddress(p.SenderAddress)
}

// TruncateAddress shortens 0x-prefixed addresses to 0x1234…abcd.
func TruncateAddress(address string) string {
	if len(address) < 12 || address[:2] != "0x" {
		return address
	}
	return address[:6] + "…" + address[len(address)-4:]
}
