package notification

import (
	"fmt"
	"time"

	"kinecare/models"
)

const dateLayout = "Monday, 2 January 2006 at 15:04"

// content is the rendered text of one notification.
type content struct {
	subject string
	body    string
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func serviceName(appt *models.Appointment) string {
	name := appt.Service.Primary
	if appt.Subservice != "" {
		name = fmt.Sprintf("%s (%s)", name, appt.Subservice)
	}
	return name
}

// patientContent renders the patient-facing message for an event.
func patientContent(event models.AppointmentEvent) content {
	appt := event.Appointment
	when := formatDate(appt.Date)
	svc := serviceName(appt)

	switch event.Type {
	case models.EventAppointmentCreated:
		return content{
			subject: "Your appointment request has been received",
			body: fmt.Sprintf("We have received your booking for %s on %s. You will be notified once a practitioner confirms it.",
				svc, when),
		}
	case models.EventAppointmentConfirmed:
		return content{
			subject: "Your appointment is confirmed",
			body:    fmt.Sprintf("Your appointment for %s on %s has been confirmed. See you then!", svc, when),
		}
	case models.EventAppointmentRejected:
		body := fmt.Sprintf("Unfortunately your appointment for %s on %s could not be accommodated.", svc, when)
		if appt.CancellationReason != "" {
			body = fmt.Sprintf("%s Reason: %s.", body, appt.CancellationReason)
		}
		return content{subject: "Your appointment could not be accommodated", body: body}
	case models.EventAppointmentCancelled:
		body := fmt.Sprintf("Your appointment for %s on %s has been cancelled.", svc, when)
		if appt.CancellationReason != "" {
			body = fmt.Sprintf("%s Reason: %s.", body, appt.CancellationReason)
		}
		return content{subject: "Your appointment has been cancelled", body: body}
	case models.EventAppointmentMoved:
		return content{
			subject: "Your appointment has been rescheduled",
			body: fmt.Sprintf("Your appointment for %s has been moved to %s. If you requested this change, the new time awaits your practitioner's confirmation.",
				svc, when),
		}
	case models.EventAppointmentReminder:
		return content{
			subject: "Appointment reminder",
			body:    fmt.Sprintf("This is a reminder of your appointment for %s on %s.", svc, when),
		}
	default:
		return content{
			subject: "Appointment update",
			body:    fmt.Sprintf("Your appointment for %s on %s has been updated.", svc, when),
		}
	}
}

// practitionerContent renders the practitioner-facing message.
func practitionerContent(event models.AppointmentEvent) content {
	appt := event.Appointment
	when := formatDate(appt.Date)
	svc := serviceName(appt)

	who := "a patient"
	if event.Patient != nil && event.Patient.Name != "" {
		who = event.Patient.Name
	}

	switch event.Type {
	case models.EventAppointmentCreated:
		return content{
			subject: "New appointment assigned to you",
			body:    fmt.Sprintf("%s booked %s on %s. Please confirm or reject the appointment.", who, svc, when),
		}
	case models.EventAppointmentCancelled:
		return content{
			subject: "An appointment was cancelled",
			body:    fmt.Sprintf("The appointment with %s for %s on %s has been cancelled.", who, svc, when),
		}
	case models.EventAppointmentMoved:
		return content{
			subject: "An appointment was rescheduled",
			body:    fmt.Sprintf("The appointment with %s for %s was moved to %s and may need your reconfirmation.", who, svc, when),
		}
	case models.EventAppointmentReminder:
		return content{
			subject: "Upcoming appointment",
			body:    fmt.Sprintf("Reminder: %s, %s on %s.", who, svc, when),
		}
	default:
		return content{
			subject: "Appointment update",
			body:    fmt.Sprintf("The appointment with %s for %s on %s has been updated.", who, svc, when),
		}
	}
}
