package commands

//go:generate mockgen -source=expiry.go -destination=../../../tests/mock/commands/expiry.go -package=commandsmock

import (
	"context"
	"log/slog"
	"time"

	"cinebooking/internal/domain/booking"
	"cinebooking/internal/infra"
	"cinebooking/internal/pkg/clock"
	"cinebooking/internal/pkg/errs"
	"cinebooking/internal/usecase/shared"

	"github.com/google/uuid"
)

const defaultSweepBatchSize = 200

type SweepReport struct {
	Scanned        int
	Cancelled      int
	SeatsReleased  int
	ReleaseSkipped int
	Failed         int
}

type ExpiryCommands interface {
	// SweepExpired cancels PENDING bookings past their deadline and frees their seats.
	SweepExpired(ctx context.Context) (SweepReport, error)
}

type expiryUseCaseImpl struct {
	uow       shared.UnitOfWork
	clock     clock.Clock
	publisher shared.EventPublisher
	batchSize int
}

func NewExpiryUseCase(uow shared.UnitOfWork, clk clock.Clock, publisher shared.EventPublisher, batchSize int) ExpiryCommands {
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &expiryUseCaseImpl{uow: uow, clock: clk, publisher: publisher, batchSize: batchSize}
}

type expiryOutcome struct {
	cancelled      *booking.Booking
	released       int
	releaseSkipped bool
}

// SweepExpired handles every booking in its own transaction, so one bad record
// only counts as a failure and the rest of the cycle still goes through.
// Batches are read until one comes back short. Bookings that failed stay
// PENDING, so each later read widens its limit by the failures seen so far and
// the cycle stops once a read brings nothing new.
// Vouchers are left alone: a redemption stays spent when the hold lapses.
func (uc *expiryUseCaseImpl) SweepExpired(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	now := uc.clock.Now()
	attempted := make(map[uuid.UUID]struct{})
	failed := 0

	for {
		limit := uc.batchSize + failed
		expired, err := uc.uow.Reads().ExpiredPendingBookings(ctx, now, limit)
		if err != nil {
			return report, errs.Wrap(err, "list expired bookings")
		}

		fresh := 0
		for _, candidate := range expired {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			if _, seen := attempted[candidate.ID()]; seen {
				continue
			}
			attempted[candidate.ID()] = struct{}{}
			fresh++
			report.Scanned++

			outcome, err := uc.expire(ctx, candidate.ID(), now)
			if err != nil {
				failed++
				report.Failed++
				slog.Error("failed to expire booking",
					"booking_id", candidate.ID().String(),
					"error", err.Error())
				continue
			}
			if outcome.cancelled == nil {
				continue
			}

			report.Cancelled++
			report.SeatsReleased += outcome.released
			if outcome.releaseSkipped {
				report.ReleaseSkipped++
			}
			publishBookingEvent(ctx, uc.publisher, shared.EventBookingExpired, outcome.cancelled, now)
		}

		if len(expired) < limit || fresh == 0 {
			break
		}
	}

	if report.Scanned > 0 {
		slog.Info("expiry sweep finished",
			"scanned", report.Scanned,
			"cancelled", report.Cancelled,
			"seats_released", report.SeatsReleased,
			"release_skipped", report.ReleaseSkipped,
			"failed", report.Failed)
	}
	return report, nil
}

// expire re-reads the booking inside the transaction. One that was paid or
// cancelled since the scan is left as it is.
func (uc *expiryUseCaseImpl) expire(ctx context.Context, id uuid.UUID, now time.Time) (expiryOutcome, error) {
	var outcome expiryOutcome

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		outcome = expiryOutcome{}

		b, err := tx.Bookings().FindByID(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return err
		}
		if !b.IsExpired(now) {
			return nil
		}

		if err := b.Cancel(now); err != nil {
			return err
		}
		if err := tx.Bookings().Save(ctx, b); err != nil {
			return err
		}
		outcome.cancelled = b

		st, err := tx.Showtimes().FindByID(ctx, b.ShowtimeID())
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				slog.Warn("showtime gone, skipping seat release",
					"booking_id", b.ID().String(),
					"showtime_id", b.ShowtimeID().String())
				outcome.releaseSkipped = true
				return nil
			}
			return err
		}
		outcome.released = st.Release(b.Seats(), b.ID(), now)
		if outcome.released == 0 {
			return nil
		}
		return tx.Showtimes().Save(ctx, st)
	})
	if err != nil {
		return expiryOutcome{}, err
	}
	return outcome, nil
}
