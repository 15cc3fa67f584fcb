package scheduling

import (
	"context"
	"time"

	appointmentRepo "kinecare/database/repository/appointment"
)

// SlotAllocator decides admissibility of a requested timestamp. Slots are
// global across practitioners: the clinic has one treatment room, so an
// occupied instant is occupied for everyone.
//
// Conflict detection compares timestamps for exact equality only;
// durations never enter into it.
type SlotAllocator struct {
	Repo appointmentRepo.Repository
}

// CheckDateInFuture rejects any timestamp at or before the current instant.
// Applied on creation and on every reschedule.
func (a SlotAllocator) CheckDateInFuture(date, now time.Time) error {
	if !date.After(now) {
		return ErrPastDate
	}
	return nil
}

// CheckSlotAvailable reports whether the exact timestamp is free of
// non-cancelled appointments. When rescheduling, excludeID skips the
// appointment's own row.
//
// This is a read-then-decide check; it does not reserve the slot. The
// write that follows is protected by the storage-level unique constraint
// on active slots, so two concurrent bookers cannot both succeed.
func (a SlotAllocator) CheckSlotAvailable(ctx context.Context, date time.Time, excludeID string) error {
	existing, err := a.Repo.FindActiveByDate(ctx, date, excludeID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrSlotConflict
	}
	return nil
}
