package scheduling

import (
	"errors"
	"testing"
	"time"

	"kinecare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeModification(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *models.Appointment {
		return &models.Appointment{Date: now.Add(d)}
	}

	cases := []struct {
		name           string
		appt           *models.Appointment
		role           models.Role
		allowed        bool
		hoursRemaining float64
	}{
		{name: "patient well outside window", appt: at(72 * time.Hour), role: models.RolePatient, allowed: true},
		{name: "patient exactly at 48h", appt: at(48 * time.Hour), role: models.RolePatient, allowed: true},
		{name: "patient just inside window", appt: at(47*time.Hour + 30*time.Minute), role: models.RolePatient, allowed: false, hoursRemaining: 47.5},
		{name: "patient one hour before", appt: at(time.Hour), role: models.RolePatient, allowed: false, hoursRemaining: 1.0},
		{name: "patient after the fact", appt: at(-2 * time.Hour), role: models.RolePatient, allowed: false, hoursRemaining: -2.0},
		{name: "guest treated like patient", appt: at(time.Hour), role: models.RoleGuest, allowed: false, hoursRemaining: 1.0},
		{name: "practitioner bypasses guard", appt: at(time.Hour), role: models.RolePractitioner, allowed: true},
		{name: "admin bypasses guard", appt: at(-time.Hour), role: models.RoleAdmin, allowed: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := AuthorizeModification(tc.appt, tc.role, now)
			if tc.allowed {
				assert.NoError(t, err)
				return
			}
			var schedErr *Error
			require.True(t, errors.As(err, &schedErr))
			assert.Equal(t, KindWindowClosed, schedErr.Kind)
			assert.InDelta(t, tc.hoursRemaining, schedErr.HoursRemaining, 0.001)
		})
	}
}

func TestAuthorizeModification_RoundsToOneDecimal(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	appt := &models.Appointment{Date: now.Add(10*time.Hour + 10*time.Minute)}

	err := AuthorizeModification(appt, models.RolePatient, now)
	var schedErr *Error
	require.True(t, errors.As(err, &schedErr))
	assert.InDelta(t, 10.2, schedErr.HoursRemaining, 0.001)
}
