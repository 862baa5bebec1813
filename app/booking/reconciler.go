package booking

import (
	"sort"
	"strconv"
	"time"

	"github.com/vibast-solutions/ms-go-bike-bookings/app/entity"
)

type Tab string

const (
	TabRecent   Tab = "recent"
	TabUpcoming Tab = "upcoming"
	TabPast     Tab = "past"
	TabInvalid  Tab = "invalid"
)

func ParseTab(raw string) (Tab, bool) {
	switch Tab(raw) {
	case TabRecent, TabUpcoming, TabPast, TabInvalid:
		return Tab(raw), true
	default:
		return "", false
	}
}

// Buckets groups payments for the history view. Upcoming, Past and Invalid
// partition the input; Recent is Upcoming and Past together, newest settlement first.
type Buckets struct {
	Recent   []entity.PaymentRecord
	Upcoming []entity.PaymentRecord
	Past     []entity.PaymentRecord
	Invalid  []entity.PaymentRecord
}

func (b Buckets) Tab(tab Tab) []entity.PaymentRecord {
	switch tab {
	case TabUpcoming:
		return b.Upcoming
	case TabPast:
		return b.Past
	case TabInvalid:
		return b.Invalid
	default:
		return b.Recent
	}
}

type Reconciler struct {
	policy PricePolicy
}

func NewReconciler(policy PricePolicy) *Reconciler {
	return &Reconciler{policy: policy}
}

func (r *Reconciler) Policy() PricePolicy {
	return r.policy
}

// IsBooking reports whether a payment counts as a real booking: a well-formed
// memo and a settlement that passes the price policy.
func (r *Reconciler) IsBooking(payment entity.PaymentRecord) bool {
	return ParseMemo(payment.Memo).WellFormed && r.policy.IsValidPayment(payment)
}

// Classify is a pure function of its inputs; the input slice is not modified.
func (r *Reconciler) Classify(payments []entity.PaymentRecord, today string) Buckets {
	buckets := Buckets{
		Recent:   []entity.PaymentRecord{},
		Upcoming: []entity.PaymentRecord{},
		Past:     []entity.PaymentRecord{},
		Invalid:  []entity.PaymentRecord{},
	}

	for _, payment := range payments {
		if !r.IsBooking(payment) {
			buckets.Invalid = append(buckets.Invalid, payment)
			continue
		}

		buckets.Recent = append(buckets.Recent, payment)
		if ParseMemo(payment.Memo).Date >= today {
			buckets.Upcoming = append(buckets.Upcoming, payment)
		} else {
			buckets.Past = append(buckets.Past, payment)
		}
	}

	sortBySettlementDesc(buckets.Recent)
	sortBySettlementDesc(buckets.Invalid)
	sortByBookingDate(buckets.Upcoming, true)
	sortByBookingDate(buckets.Past, false)

	return buckets
}

// Ledger indexes the bookings found in payments.
func (r *Reconciler) Ledger(payments []entity.PaymentRecord) *Ledger {
	ledger := &Ledger{bookings: map[string][]entity.PaymentRecord{}}
	for _, payment := range payments {
		if !r.IsBooking(payment) {
			continue
		}
		key := ParseMemo(payment.Memo).Key()
		if _, ok := ledger.bookings[key]; !ok {
			ledger.keys = append(ledger.keys, key)
		}
		ledger.bookings[key] = append(ledger.bookings[key], payment)
	}
	return ledger
}

func sortBySettlementDesc(items []entity.PaymentRecord) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, okI := parseTimestamp(items[i].BlockTimestamp)
		tj, okJ := parseTimestamp(items[j].BlockTimestamp)
		switch {
		case okI && okJ:
			return ti.After(tj)
		default:
			return okI && !okJ
		}
	})
}

func sortByBookingDate(items []entity.PaymentRecord, ascending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		mi := ParseMemo(items[i].Memo)
		mj := ParseMemo(items[j].Memo)
		if mi.Date != mj.Date {
			if ascending {
				return mi.Date < mj.Date
			}
			return mi.Date > mj.Date
		}
		return slotLess(mi.SlotID, mj.SlotID)
	})
}

// slotLess orders numeric slot ids numerically, ahead of any non-numeric ones.
func slotLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

func parseTimestamp(value string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
