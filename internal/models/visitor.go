package models

import "time"

// Visitor represents an anonymous browser identified by its visitor cookie.
// A visitor is created on first contact and updated in place afterwards; it is never deleted.
type Visitor struct {
	// ID is the surrogate primary key returned to clients as visitor_id
	ID uint `gorm:"primaryKey" json:"id"`

	// CookieID is the opaque token stored in the visitor_id cookie
	// - uniqueIndex: one token maps to at most one visitor
	CookieID string `gorm:"uniqueIndex;size:64;not null" json:"cookie_id"`

	// IPHash is the hex SHA-256 of the client IP at last contact
	IPHash string `gorm:"size:64;not null" json:"ip_hash"`

	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	LastSeenAt time.Time `gorm:"index;not null" json:"last_seen_at"`

	// Coarse geolocation, nil when the lookup yielded nothing
	CountryCode *string `gorm:"size:8;index" json:"country_code"`
	Region      *string `gorm:"size:128" json:"region"`
	City        *string `gorm:"size:128" json:"city"`
}

// ApplyLocation overwrites the geolocation fields with loc.
// A nil loc leaves the visitor untouched.
func (v *Visitor) ApplyLocation(loc *Location) {
	if loc == nil {
		return
	}
	v.CountryCode = loc.CountryCode
	v.Region = loc.Region
	v.City = loc.City
}
