package booking

import (
	"strings"
	"time"
)

const (
	memoSeparator = "_"
	dateLayout    = "2006-01-02"

	// UnknownSlot is shown when a memo carries no slot segment.
	UnknownSlot = "N/A"
)

// Memo is the decomposed form of a payment memo: "<date>_<slotId>[_<discountTag>]".
type Memo struct {
	Raw         string
	Date        string
	SlotID      string
	DiscountTag string
	WellFormed  bool
}

// ParseMemo never fails. Memos that do not carry a calendar date and a slot id
// come back with WellFormed unset.
func ParseMemo(raw string) Memo {
	parts := strings.Split(raw, memoSeparator)
	memo := Memo{Raw: raw, Date: parts[0]}
	if len(parts) > 1 {
		memo.SlotID = parts[1]
	}
	if len(parts) > 2 {
		memo.DiscountTag = strings.Join(parts[2:], memoSeparator)
	}
	memo.WellFormed = len(parts) >= 2 && IsDate(memo.Date)
	return memo
}

// Key returns the booking key date_slotId.
func (m Memo) Key() string {
	return BookingKey(m.Date, m.SlotID)
}

func (m Memo) HasDiscount() bool {
	return m.DiscountTag != ""
}

func (m Memo) SlotLabel() string {
	if m.SlotID == "" {
		return UnknownSlot
	}
	return m.SlotID
}

// BuildMemo is the inverse of ParseMemo.
func BuildMemo(date, slotID, discountTag string) string {
	memo := BookingKey(date, slotID)
	if discountTag != "" {
		memo += memoSeparator + discountTag
	}
	return memo
}

func BookingKey(date, slotID string) string {
	return date + memoSeparator + slotID
}

func IsDate(value string) bool {
	_, err := time.Parse(dateLayout, value)
	return err == nil
}

// Today formats now as a UTC YYYY-MM-DD string. ISO dates order lexicographically,
// so booking dates are compared against it as plain strings.
func Today(now time.Time) string {
	return now.UTC().Format(dateLayout)
}
