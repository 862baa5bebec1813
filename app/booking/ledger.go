package booking

import "github.com/vibast-solutions/ms-go-bike-bookings/app/entity"

// Ledger is the set of bookings derived from a payment list. Only well-formed,
// valid payments are recorded, so a booked slot always has a paid booking behind it.
type Ledger struct {
	keys     []string
	bookings map[string][]entity.PaymentRecord
}

func (l *Ledger) IsSlotBooked(date, slotID string) bool {
	return len(l.bookings[BookingKey(date, slotID)]) > 0
}

func (l *Ledger) Bookings(date, slotID string) []entity.PaymentRecord {
	return l.bookings[BookingKey(date, slotID)]
}

func (l *Ledger) Len() int {
	return len(l.keys)
}

// Conflict is a booking key paid for more than once.
type Conflict struct {
	Key      string
	Payments []entity.PaymentRecord
}

// Conflicts lists double-booked keys in first-seen order. Nothing here refunds or
// picks a winner.
func (l *Ledger) Conflicts() []Conflict {
	conflicts := make([]Conflict, 0)
	for _, key := range l.keys {
		if payments := l.bookings[key]; len(payments) > 1 {
			conflicts = append(conflicts, Conflict{Key: key, Payments: payments})
		}
	}
	return conflicts
}
