package scheduling

import "fmt"

// Kind discriminates scheduling failures so the transport layer can map
// each one to a distinct user-facing message. All of these are expected,
// recoverable conditions; only storage failures propagate as plain errors.
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindPastDate          Kind = "past_date"
	KindSlotConflict      Kind = "slot_conflict"
	KindNotFound          Kind = "not_found"
	KindIllegalTransition Kind = "illegal_transition"
	KindForbidden         Kind = "forbidden"
	KindWindowClosed      Kind = "modification_window_closed"
	KindAlreadyAssigned   Kind = "already_assigned"
	KindNotPending        Kind = "not_pending"
)

// Error is a scheduling failure with a machine-readable kind.
type Error struct {
	Kind    Kind
	Message string
	// HoursRemaining is set on modification-window denials, rounded to
	// one decimal for display.
	HoursRemaining float64
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches errors of the same kind, so errors.Is(err, ErrSlotConflict)
// works regardless of the message carried.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrPastDate          = &Error{Kind: KindPastDate, Message: "cannot book appointments in the past"}
	ErrSlotConflict      = &Error{Kind: KindSlotConflict, Message: "this time slot is already booked, please choose another time"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "appointment not found"}
	ErrIllegalTransition = &Error{Kind: KindIllegalTransition, Message: "this status change is not allowed from the current state"}
	ErrForbidden         = &Error{Kind: KindForbidden, Message: "access denied to this appointment"}
	ErrAlreadyAssigned   = &Error{Kind: KindAlreadyAssigned, Message: "this appointment is already assigned to another practitioner"}
	ErrNotPending        = &Error{Kind: KindNotPending, Message: "only pending appointments can be taken"}
)

// NewInvalidInput reports a malformed booking or transition request.
func NewInvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

// NewNotFound reports a missing referenced entity (appointment,
// practitioner or patient).
func NewNotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// NewWindowClosed reports a modification-window denial carrying the
// remaining lead time in hours.
func NewWindowClosed(hoursRemaining float64) *Error {
	return &Error{
		Kind:           KindWindowClosed,
		Message:        fmt.Sprintf("cannot modify an appointment less than 48 hours in advance (%.1f hours remaining)", hoursRemaining),
		HoursRemaining: hoursRemaining,
	}
}

// KindOf extracts the scheduling kind from err, if it carries one.
func KindOf(err error) (Kind, bool) {
	if e, ok := err.(*Error); ok {
		return e.Kind, true
	}
	return "", false
}
