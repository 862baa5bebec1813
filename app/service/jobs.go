package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// RunConflictScanBatch reports booking keys paid for more than once. Conflicts
// are only logged; nothing is refunded or cancelled.
func (s *BookingService) RunConflictScanBatch(ctx context.Context) error {
	payments, err := s.feed.ListPayments(ctx, s.receiverQuery(""))
	if err != nil {
		return err
	}

	ledger := s.reconciler.Ledger(payments)
	conflicts := ledger.Conflicts()
	for _, conflict := range conflicts {
		hashes := make([]string, 0, len(conflict.Payments))
		for _, payment := range conflict.Payments {
			hashes = append(hashes, payment.TxHash)
		}
		s.logger.WithFields(logrus.Fields{
			"booking_key": conflict.Key,
			"payments":    len(conflict.Payments),
			"tx_hashes":   strings.Join(hashes, ","),
		}).Warn("slot booked more than once")
	}

	s.logger.WithFields(logrus.Fields{
		"bookings":  ledger.Len(),
		"conflicts": len(conflicts),
	}).Info("conflict scan finished")

	return nil
}
