package models

import "time"

// ContactStatus is the triage state of a contact-form submission.
type ContactStatus string

const (
	ContactNew      ContactStatus = "new"
	ContactRead     ContactStatus = "read"
	ContactReplied  ContactStatus = "replied"
	ContactArchived ContactStatus = "archived"
)

// Contact is a message submitted through the public contact form.
type Contact struct {
	ID      string        `bson:"id" json:"id"`
	Name    string        `bson:"name" json:"name"`
	Email   string        `bson:"email" json:"email"`
	Phone   string        `bson:"phone,omitempty" json:"phone,omitempty"`
	Subject string        `bson:"subject" json:"subject"`
	Message string        `bson:"message" json:"message"`
	Status  ContactStatus `bson:"status" json:"status"`
	Notes   string        `bson:"notes,omitempty" json:"notes,omitempty"`

	RepliedAt *time.Time `bson:"repliedAt,omitempty" json:"repliedAt,omitempty"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}
