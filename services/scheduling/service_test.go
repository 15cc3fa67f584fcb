package scheduling

import (
	"context"
	"testing"
	"time"

	"kinecare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetByID_Ownership(t *testing.T) {
	env := newTestEnv()
	appt := env.bookClaimed(72 * time.Hour)

	for _, actor := range []Actor{patientActor, doctorActor, adminActor} {
		_, err := env.svc.GetByID(context.Background(), appt.ID, actor)
		assert.NoError(t, err)
	}

	_, err := env.svc.GetByID(context.Background(), appt.ID, doctor2Actor)
	assert.ErrorIs(t, err, ErrForbidden)

	stranger := Actor{Role: models.RolePatient, ID: "patient-2"}
	_, err = env.svc.GetByID(context.Background(), appt.ID, stranger)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.GetByID(context.Background(), appt.ID, Actor{Role: models.RoleGuest})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestList_PractitionerSeesOnlyOwnCalendar(t *testing.T) {
	env := newTestEnv()
	mine := env.bookClaimed(72 * time.Hour)
	env.book(96 * time.Hour)

	appts, total, err := env.svc.List(context.Background(), ListFilter{}, doctorActor)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, appts, 1)
	assert.Equal(t, mine.ID, appts[0].ID)

	// The filter cannot widen a practitioner's view to a colleague's.
	appts, _, err = env.svc.List(context.Background(), ListFilter{PractitionerID: testDoctor2.ID}, doctorActor)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, mine.ID, appts[0].ID)

	_, total, err = env.svc.List(context.Background(), ListFilter{}, adminActor)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestListForUser_SelfOrAdminOnly(t *testing.T) {
	env := newTestEnv()
	env.book(72 * time.Hour)

	appts, err := env.svc.ListForUser(context.Background(), testPatient.ID, ListFilter{}, patientActor)
	require.NoError(t, err)
	assert.Len(t, appts, 1)

	appts, err = env.svc.ListForUser(context.Background(), testPatient.ID, ListFilter{}, adminActor)
	require.NoError(t, err)
	assert.Len(t, appts, 1)

	_, err = env.svc.ListForUser(context.Background(), testPatient.ID, ListFilter{}, doctorActor)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListForUser_AdminSeesPractitionerCalendar(t *testing.T) {
	env := newTestEnv()
	claimed := env.bookClaimed(72 * time.Hour)
	env.book(96 * time.Hour)

	// The filter follows the target account's role, not the requester's.
	appts, err := env.svc.ListForUser(context.Background(), testDoctor.ID, ListFilter{}, adminActor)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, claimed.ID, appts[0].ID)

	// A practitioner's own view returns the same set.
	appts, err = env.svc.ListForUser(context.Background(), testDoctor.ID, ListFilter{}, doctorActor)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, claimed.ID, appts[0].ID)
}

func TestAvailableForClaim(t *testing.T) {
	env := newTestEnv()
	open := env.book(72 * time.Hour)
	env.bookClaimed(96 * time.Hour)

	appts, err := env.svc.AvailableForClaim(context.Background(), doctorActor)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, open.ID, appts[0].ID)

	_, err = env.svc.AvailableForClaim(context.Background(), patientActor)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBookedSlots_OmitsCancelled(t *testing.T) {
	env := newTestEnv()
	kept := env.book(72 * time.Hour)
	dropped := env.book(96 * time.Hour)
	_, err := env.svc.Cancel(context.Background(), dropped.ID, "", patientActor)
	require.NoError(t, err)

	slots, err := env.svc.BookedSlots(context.Background(), env.clock.now, env.in(200*time.Hour))
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.True(t, slots[0].Date.Equal(kept.Date))
}
