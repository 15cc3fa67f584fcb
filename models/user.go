package models

import "time"

// Role is the authorization role attached to a request actor.
type Role string

const (
	RoleGuest        Role = "guest"
	RolePatient      Role = "patient"
	RolePractitioner Role = "practitioner"
	RoleAdmin        Role = "admin"
)

// Staff reports whether the role bypasses patient-facing policy checks.
func (r Role) Staff() bool {
	return r == RolePractitioner || r == RoleAdmin
}

// User represents a registered account: patient, practitioner or admin.
// Phone is the primary identifier; email is optional.
type User struct {
	ID           string `bson:"id" json:"id"`
	Name         string `bson:"name" json:"name"`
	Email        string `bson:"email,omitempty" json:"email,omitempty"`
	Phone        string `bson:"phone" json:"phone"`
	PasswordHash string `bson:"passwordHash" json:"-"`
	Role         Role   `bson:"role" json:"role"`

	// Practitioner profile fields.
	Specialty string `bson:"specialty,omitempty" json:"specialty,omitempty"`
	Bio       string `bson:"bio,omitempty" json:"bio,omitempty"`
	AvatarURL string `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`

	IsActive bool `bson:"isActive" json:"isActive"`

	RefreshTokenHash string `bson:"refreshTokenHash,omitempty" json:"-"`
	FCMToken         string `bson:"fcmToken,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Party returns the contact snapshot used in notification events.
func (u *User) Party() *PartyInfo {
	if u == nil {
		return nil
	}
	return &PartyInfo{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
	}
}

// PractitionerProfile is the public directory projection of a practitioner.
type PractitionerProfile struct {
	ID        string `bson:"id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Specialty string `bson:"specialty,omitempty" json:"specialty,omitempty"`
	Bio       string `bson:"bio,omitempty" json:"bio,omitempty"`
	AvatarURL string `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
}
