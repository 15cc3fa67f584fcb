package models

import "time"

// Service is a catalog entry describing a treatment offered by the clinic.
// The scheduling core treats service labels as opaque; this catalog only
// feeds the booking forms.
type Service struct {
	ID              string   `bson:"id" json:"id"`
	Name            string   `bson:"name" json:"name"`
	Description     string   `bson:"description" json:"description"`
	Subservices     []string `bson:"subservices,omitempty" json:"subservices,omitempty"`
	Price           float64  `bson:"price" json:"price"`
	DurationMinutes int      `bson:"durationMinutes" json:"durationMinutes"`
	Icon            string   `bson:"icon,omitempty" json:"icon,omitempty"`
	IsActive        bool     `bson:"isActive" json:"isActive"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
