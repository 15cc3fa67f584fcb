package scheduling

import (
	"context"
	"sync"
	"testing"
	"time"

	"kinecare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_PatientBooksOwnAppointment(t *testing.T) {
	env := newTestEnv()

	appt, err := env.svc.Create(context.Background(), CreateRequest{
		Service: physio(),
		Date:    env.in(72 * time.Hour),
		Notes:   "lower back pain",
	}, patientActor)
	require.NoError(t, err)

	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, models.StatusPending, appt.Status)
	assert.Equal(t, models.PaymentUnpaid, appt.PaymentStatus)
	require.NotNil(t, appt.PatientID)
	assert.Equal(t, testPatient.ID, *appt.PatientID)
	assert.Nil(t, appt.PractitionerID)
	assert.Equal(t, defaultDurationMinutes, appt.DurationMinutes)
}

func TestCreate_RejectsMissingServiceOrDate(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.Create(context.Background(), CreateRequest{
		Date: env.in(72 * time.Hour),
	}, patientActor)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidInput, kind)

	_, err = env.svc.Create(context.Background(), CreateRequest{
		Service: physio(),
	}, patientActor)
	kind, ok = KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidInput, kind)
}

func TestCreate_RejectsPastAndPresentDates(t *testing.T) {
	env := newTestEnv()

	for _, date := range []time.Time{env.in(-time.Hour), env.clock.now} {
		_, err := env.svc.Create(context.Background(), CreateRequest{
			Service: physio(),
			Date:    date,
		}, patientActor)
		assert.ErrorIs(t, err, ErrPastDate)
	}
}

func TestCreate_RejectsOccupiedSlot(t *testing.T) {
	env := newTestEnv()
	slot := env.in(72 * time.Hour)

	_, err := env.svc.Create(context.Background(), CreateRequest{Service: physio(), Date: slot}, patientActor)
	require.NoError(t, err)

	// The slot is global: a different booker and even a different
	// practitioner preference still conflict on the same timestamp.
	_, err = env.svc.Create(context.Background(), CreateRequest{
		Service:        physio(),
		Date:           slot,
		PractitionerID: testDoctor.ID,
		GuestInfo:      &models.GuestInfo{Name: "Walk In", Phone: "+212600000099"},
	}, Actor{Role: models.RoleGuest})
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestCreate_ConcurrentBookersGetOneSlot(t *testing.T) {
	env := newTestEnv()
	slot := env.in(72 * time.Hour)

	const bookers = 16
	var wg sync.WaitGroup
	errs := make([]error, bookers)
	for i := 0; i < bookers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.Create(context.Background(), CreateRequest{
				Service: physio(),
				Date:    slot,
			}, patientActor)
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrSlotConflict)
		}
	}
	assert.Equal(t, 1, won)
}

func TestCreate_CancelledSlotFreesUp(t *testing.T) {
	env := newTestEnv()
	slot := env.in(96 * time.Hour)

	first, err := env.svc.Create(context.Background(), CreateRequest{Service: physio(), Date: slot}, patientActor)
	require.NoError(t, err)

	_, err = env.svc.Cancel(context.Background(), first.ID, "can no longer make it", patientActor)
	require.NoError(t, err)

	_, err = env.svc.Create(context.Background(), CreateRequest{Service: physio(), Date: slot}, patientActor)
	assert.NoError(t, err)
}

func TestCreate_GuestRequiresContactDetails(t *testing.T) {
	env := newTestEnv()
	guest := Actor{Role: models.RoleGuest}

	cases := []struct {
		name string
		info *models.GuestInfo
	}{
		{"no info", nil},
		{"missing phone", &models.GuestInfo{Name: "Walk In"}},
		{"missing name", &models.GuestInfo{Phone: "+212600000099"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Create(context.Background(), CreateRequest{
				Service:   physio(),
				Date:      env.in(72 * time.Hour),
				GuestInfo: tc.info,
			}, guest)
			kind, ok := KindOf(err)
			require.True(t, ok)
			assert.Equal(t, KindInvalidInput, kind)
		})
	}

	appt, err := env.svc.Create(context.Background(), CreateRequest{
		Service:   physio(),
		Date:      env.in(72 * time.Hour),
		GuestInfo: &models.GuestInfo{Name: "Walk In", Phone: "+212600000099"},
	}, guest)
	require.NoError(t, err)
	assert.Nil(t, appt.PatientID)
	require.NotNil(t, appt.GuestInfo)
	assert.Equal(t, "Walk In", appt.GuestInfo.Name)
}

func TestCreate_AdminBooksOnBehalfOfPatient(t *testing.T) {
	env := newTestEnv()

	appt, err := env.svc.Create(context.Background(), CreateRequest{
		Service:   physio(),
		Date:      env.in(72 * time.Hour),
		PatientID: testPatient.ID,
	}, adminActor)
	require.NoError(t, err)
	require.NotNil(t, appt.PatientID)
	assert.Equal(t, testPatient.ID, *appt.PatientID)

	_, err = env.svc.Create(context.Background(), CreateRequest{
		Service:   physio(),
		Date:      env.in(73 * time.Hour),
		PatientID: "nobody",
	}, adminActor)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, kind)
}

func TestCreate_PreselectedPractitionerMustBeOne(t *testing.T) {
	env := newTestEnv()

	appt, err := env.svc.Create(context.Background(), CreateRequest{
		Service:        physio(),
		Date:           env.in(72 * time.Hour),
		PractitionerID: testDoctor.ID,
	}, patientActor)
	require.NoError(t, err)
	require.NotNil(t, appt.PractitionerID)
	assert.Equal(t, testDoctor.ID, *appt.PractitionerID)
	// Pre-assignment alone does not advance the status.
	assert.Equal(t, models.StatusPending, appt.Status)

	for _, id := range []string{"nobody", testPatient.ID} {
		_, err = env.svc.Create(context.Background(), CreateRequest{
			Service:        physio(),
			Date:           env.in(74 * time.Hour),
			PractitionerID: id,
		}, patientActor)
		kind, ok := KindOf(err)
		require.True(t, ok)
		assert.Equal(t, KindNotFound, kind)
	}
}

func TestCreate_NotifiesOnlyWhenPractitionerAssigned(t *testing.T) {
	env := newTestEnv()

	env.book(72 * time.Hour)
	assert.Empty(t, env.notifier.types())

	_, err := env.svc.Create(context.Background(), CreateRequest{
		Service:        physio(),
		Date:           env.in(73 * time.Hour),
		PractitionerID: testDoctor.ID,
	}, patientActor)
	require.NoError(t, err)
	assert.Equal(t, []models.AppointmentEventType{models.EventAppointmentCreated}, env.notifier.types())
}
