package models

import "time"

// Session is a contiguous span of activity of one visitor, extended by heartbeats.
// Sessions are only ever deactivated by the session monitor.
type Session struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// VisitorID and IsActive share a composite index for the active-session lookup
	VisitorID uint `gorm:"index:idx_sessions_visitor_active,priority:1;not null" json:"visitor_id"`

	StartTime     time.Time `gorm:"not null" json:"start_time"`
	LastHeartbeat time.Time `gorm:"index;not null" json:"last_heartbeat"`
	ActionCount   int       `gorm:"not null" json:"action_count"`
	IsActive      bool      `gorm:"index:idx_sessions_visitor_active,priority:2;not null" json:"is_active"`
}
