package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"kinecare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaim_AssignsExactlyOnePractitioner(t *testing.T) {
	env := newTestEnv()
	appt := env.book(72 * time.Hour)

	claimed, err := env.svc.Claim(context.Background(), appt.ID, doctorActor)
	require.NoError(t, err)
	require.NotNil(t, claimed.PractitionerID)
	assert.Equal(t, testDoctor.ID, *claimed.PractitionerID)
	assert.Equal(t, models.StatusPending, claimed.Status)

	_, err = env.svc.Claim(context.Background(), appt.ID, doctor2Actor)
	assert.ErrorIs(t, err, ErrAlreadyAssigned)
}

func TestClaim_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	env := newTestEnv()
	appt := env.book(72 * time.Hour)

	actors := []Actor{doctorActor, doctor2Actor}
	var wg sync.WaitGroup
	errs := make([]error, len(actors))
	for i, actor := range actors {
		wg.Add(1)
		go func(i int, actor Actor) {
			defer wg.Done()
			_, errs[i] = env.svc.Claim(context.Background(), appt.ID, actor)
		}(i, actor)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyAssigned)
		}
	}
	assert.Equal(t, 1, won)
}

func TestClaim_RejectsNonPendingAndNonPractitioners(t *testing.T) {
	env := newTestEnv()

	cancelled := env.book(72 * time.Hour)
	_, err := env.svc.Cancel(context.Background(), cancelled.ID, "", patientActor)
	require.NoError(t, err)
	_, err = env.svc.Claim(context.Background(), cancelled.ID, doctorActor)
	assert.ErrorIs(t, err, ErrNotPending)

	open := env.book(73 * time.Hour)
	for _, actor := range []Actor{patientActor, adminActor, {Role: models.RoleGuest}} {
		_, err = env.svc.Claim(context.Background(), open.ID, actor)
		assert.ErrorIs(t, err, ErrForbidden)
	}

	_, err = env.svc.Claim(context.Background(), "missing", doctorActor)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirm(t *testing.T) {
	env := newTestEnv()
	appt := env.bookClaimed(72 * time.Hour)

	confirmed, err := env.svc.Confirm(context.Background(), appt.ID, doctorActor)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)
	assert.Contains(t, env.notifier.types(), models.EventAppointmentConfirmed)

	// Already confirmed; a second confirm is illegal.
	_, err = env.svc.Confirm(context.Background(), appt.ID, doctorActor)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestConfirm_OnlyAssignedPractitionerOrAdmin(t *testing.T) {
	env := newTestEnv()
	appt := env.bookClaimed(72 * time.Hour)

	_, err := env.svc.Confirm(context.Background(), appt.ID, doctor2Actor)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.Confirm(context.Background(), appt.ID, patientActor)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.Confirm(context.Background(), appt.ID, adminActor)
	assert.NoError(t, err)
}

func TestReject_RecordsReason(t *testing.T) {
	env := newTestEnv()
	appt := env.bookClaimed(72 * time.Hour)

	rejected, err := env.svc.Reject(context.Background(), appt.ID, "fully booked that week", doctorActor)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)
	assert.Equal(t, "fully booked that week", rejected.CancellationReason)
	assert.Contains(t, env.notifier.types(), models.EventAppointmentRejected)
}

func TestCancel_PatientInsideWindowIsDenied(t *testing.T) {
	env := newTestEnv()
	appt := env.bookConfirmed(24 * time.Hour)

	_, err := env.svc.Cancel(context.Background(), appt.ID, "", patientActor)
	var schedErr *Error
	require.True(t, errors.As(err, &schedErr))
	assert.Equal(t, KindWindowClosed, schedErr.Kind)
	assert.InDelta(t, 24.0, schedErr.HoursRemaining, 0.001)

	// Staff cancel the same appointment regardless of timing, and the
	// patient is still told about it.
	cancelled, err := env.svc.Cancel(context.Background(), appt.ID, "practitioner ill", doctorActor)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Contains(t, env.notifier.types(), models.EventAppointmentCancelled)
}

func TestCancel_OwnershipEnforced(t *testing.T) {
	env := newTestEnv()
	appt := env.bookConfirmed(72 * time.Hour)

	stranger := Actor{Role: models.RolePatient, ID: "patient-2"}
	_, err := env.svc.Cancel(context.Background(), appt.ID, "", stranger)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.Cancel(context.Background(), appt.ID, "", doctor2Actor)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancel_TerminalIsIllegal(t *testing.T) {
	env := newTestEnv()
	appt := env.book(72 * time.Hour)

	_, err := env.svc.Cancel(context.Background(), appt.ID, "", patientActor)
	require.NoError(t, err)

	_, err = env.svc.Cancel(context.Background(), appt.ID, "", patientActor)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestUpdate_PatientRescheduleNeedsReapproval(t *testing.T) {
	env := newTestEnv()
	appt := env.bookConfirmed(96 * time.Hour)
	newDate := env.in(120 * time.Hour)

	updated, err := env.svc.Update(context.Background(), appt.ID, UpdateRequest{
		Date:   &newDate,
		Reason: "work trip",
	}, patientActor)
	require.NoError(t, err)

	assert.Equal(t, models.StatusAwaitingReconfirmation, updated.Status)
	assert.True(t, updated.Date.Equal(newDate))
	require.Len(t, updated.ModificationHistory, 1)
	rec := updated.ModificationHistory[0]
	assert.Equal(t, testPatient.ID, rec.ModifiedBy)
	assert.True(t, rec.PreviousDate.Equal(appt.Date))
	assert.True(t, rec.NewDate.Equal(newDate))
	assert.Equal(t, "work trip", rec.Reason)
	assert.Contains(t, env.notifier.types(), models.EventAppointmentMoved)
}

func TestUpdate_StaffRescheduleKeepsStatus(t *testing.T) {
	env := newTestEnv()
	appt := env.bookConfirmed(96 * time.Hour)
	newDate := env.in(120 * time.Hour)

	updated, err := env.svc.Update(context.Background(), appt.ID, UpdateRequest{Date: &newDate}, doctorActor)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
	assert.True(t, updated.Date.Equal(newDate))
}

func TestUpdate_DateChecksApply(t *testing.T) {
	env := newTestEnv()
	appt := env.bookConfirmed(96 * time.Hour)
	other := env.book(120 * time.Hour)

	past := env.in(-time.Hour)
	_, err := env.svc.Update(context.Background(), appt.ID, UpdateRequest{Date: &past}, patientActor)
	assert.ErrorIs(t, err, ErrPastDate)

	taken := other.Date
	_, err = env.svc.Update(context.Background(), appt.ID, UpdateRequest{Date: &taken}, patientActor)
	assert.ErrorIs(t, err, ErrSlotConflict)

	// Re-submitting the current date is not a date change and records
	// no history.
	same := appt.Date
	updated, err := env.svc.Update(context.Background(), appt.ID, UpdateRequest{Date: &same}, patientActor)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
	assert.Empty(t, updated.ModificationHistory)
}

func TestUpdate_PatientInsideWindowIsDenied(t *testing.T) {
	env := newTestEnv()
	appt := env.bookConfirmed(24 * time.Hour)
	newDate := env.in(120 * time.Hour)

	_, err := env.svc.Update(context.Background(), appt.ID, UpdateRequest{Date: &newDate}, patientActor)
	var schedErr *Error
	require.True(t, errors.As(err, &schedErr))
	assert.Equal(t, KindWindowClosed, schedErr.Kind)

	// Staff are not subject to the window.
	updated, err := env.svc.Update(context.Background(), appt.ID, UpdateRequest{Date: &newDate}, adminActor)
	require.NoError(t, err)
	assert.True(t, updated.Date.Equal(newDate))
}

func TestUpdate_NonDateEditsSkipTable(t *testing.T) {
	env := newTestEnv()
	appt := env.bookConfirmed(72 * time.Hour)

	// There is no table entry for a plain edit; outside the window the
	// fields change without touching status or history.
	notes := "please prepare ultrasound"
	updated, err := env.svc.Update(context.Background(), appt.ID, UpdateRequest{Notes: &notes}, patientActor)
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
	assert.Empty(t, updated.ModificationHistory)
}

func TestUpdate_NonDateEditInsideWindowIsDenied(t *testing.T) {
	env := newTestEnv()
	appt := env.bookConfirmed(24 * time.Hour)

	// The window guards every patient edit, not just reschedules.
	notes := "forgot to mention the knee"
	_, err := env.svc.Update(context.Background(), appt.ID, UpdateRequest{Notes: &notes}, patientActor)
	var schedErr *Error
	require.True(t, errors.As(err, &schedErr))
	assert.Equal(t, KindWindowClosed, schedErr.Kind)
	assert.InDelta(t, 24.0, schedErr.HoursRemaining, 0.001)

	// Staff edit the same appointment freely.
	updated, err := env.svc.Update(context.Background(), appt.ID, UpdateRequest{Notes: &notes}, doctorActor)
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
}

func TestUpdate_TerminalIsIllegal(t *testing.T) {
	env := newTestEnv()
	appt := env.book(72 * time.Hour)
	_, err := env.svc.Cancel(context.Background(), appt.ID, "", patientActor)
	require.NoError(t, err)

	notes := "late note"
	_, err = env.svc.Update(context.Background(), appt.ID, UpdateRequest{Notes: &notes}, patientActor)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestMarkPaid_CompletesAppointment(t *testing.T) {
	env := newTestEnv()
	appt := env.bookConfirmed(72 * time.Hour)

	done, err := env.svc.MarkPaid(context.Background(), appt.ID, doctorActor)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, done.Status)
	assert.Equal(t, models.PaymentPaid, done.PaymentStatus)

	// Done appointments still hold their slot; only cancellation frees it.
	_, err = env.svc.Create(context.Background(), CreateRequest{Service: physio(), Date: appt.Date}, patientActor)
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestMarkPaid_RequiresConfirmedAndStaff(t *testing.T) {
	env := newTestEnv()
	pending := env.bookClaimed(72 * time.Hour)

	_, err := env.svc.MarkPaid(context.Background(), pending.ID, doctorActor)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	confirmed := env.bookConfirmed(96 * time.Hour)
	_, err = env.svc.MarkPaid(context.Background(), confirmed.ID, patientActor)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAssignPractitioner(t *testing.T) {
	env := newTestEnv()
	appt := env.book(72 * time.Hour)

	assigned, err := env.svc.AssignPractitioner(context.Background(), appt.ID, testDoctor.ID, adminActor)
	require.NoError(t, err)
	require.NotNil(t, assigned.PractitionerID)
	assert.Equal(t, testDoctor.ID, *assigned.PractitionerID)
	assert.Equal(t, models.StatusPending, assigned.Status)

	_, err = env.svc.AssignPractitioner(context.Background(), appt.ID, testDoctor.ID, doctorActor)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.AssignPractitioner(context.Background(), appt.ID, testPatient.ID, adminActor)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, kind)
}

func TestOverride(t *testing.T) {
	env := newTestEnv()
	appt := env.bookConfirmed(72 * time.Hour)

	done := models.StatusDone
	overridden, err := env.svc.Override(context.Background(), appt.ID, OverrideRequest{Status: &done}, adminActor)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, overridden.Status)

	// Overrides bypass the table: even a terminal appointment may be
	// reopened by an admin.
	pending := models.StatusPending
	reopened, err := env.svc.Override(context.Background(), appt.ID, OverrideRequest{Status: &pending}, adminActor)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reopened.Status)
}

func TestOverride_SlotAllocatorStillApplies(t *testing.T) {
	env := newTestEnv()
	appt := env.bookConfirmed(72 * time.Hour)
	other := env.book(96 * time.Hour)

	taken := other.Date
	_, err := env.svc.Override(context.Background(), appt.ID, OverrideRequest{Date: &taken}, adminActor)
	assert.ErrorIs(t, err, ErrSlotConflict)

	past := env.in(-time.Hour)
	_, err = env.svc.Override(context.Background(), appt.ID, OverrideRequest{Date: &past}, adminActor)
	assert.ErrorIs(t, err, ErrPastDate)
}

func TestOverride_ValidatesInput(t *testing.T) {
	env := newTestEnv()
	appt := env.book(72 * time.Hour)

	_, err := env.svc.Override(context.Background(), appt.ID, OverrideRequest{}, adminActor)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidInput, kind)

	bogus := models.AppointmentStatus("archived")
	_, err = env.svc.Override(context.Background(), appt.ID, OverrideRequest{Status: &bogus}, adminActor)
	kind, ok = KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidInput, kind)

	status := models.StatusDone
	_, err = env.svc.Override(context.Background(), appt.ID, OverrideRequest{Status: &status}, doctorActor)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPurge(t *testing.T) {
	env := newTestEnv()
	appt := env.book(72 * time.Hour)

	err := env.svc.Purge(context.Background(), appt.ID, doctorActor)
	assert.ErrorIs(t, err, ErrForbidden)

	err = env.svc.Purge(context.Background(), appt.ID, adminActor)
	require.NoError(t, err)

	_, err = env.svc.GetByID(context.Background(), appt.ID, adminActor)
	assert.ErrorIs(t, err, ErrNotFound)

	err = env.svc.Purge(context.Background(), appt.ID, adminActor)
	assert.ErrorIs(t, err, ErrNotFound)
}
