package jobs

import (
	"context"

	"github.com/ratulDIU/RentoVerse/internal/logger"
)

// SweepEscrow expires bookings past a deadline: first the approved-but-unpaid
// ones, then the confirmed-but-unvisited ones. Each tick re-scans by
// predicate, so a booking whose transition failed last time is picked up
// again on the next tick.
func (jr *JobRunner) SweepEscrow() {
	jr.runWithRecovery("SweepEscrow", func() {
		ctx := context.Background()

		unpaid, err := jr.bookingSvc.ExpireUnpaidBookings(ctx)
		if err != nil {
			logger.Error("Unpaid sweep failed", "error", err)
		}

		noVisit, err := jr.bookingSvc.ExpireNoVisitBookings(ctx)
		if err != nil {
			logger.Error("No-visit sweep failed", "error", err)
		}

		if unpaid > 0 || noVisit > 0 {
			logger.Info("Escrow sweep expired bookings", "unpaid", unpaid, "no_visit", noVisit)
		}
	})
}
