package models

import "time"

// CountryCount is the number of visitors seen from one country.
type CountryCount struct {
	CountryCode string `json:"country_code"`
	Visitors    int64  `json:"visitors"`
}

// StatsSnapshot is the aggregate served on GET /.
type StatsSnapshot struct {
	TotalVisitors        int64          `json:"total_visitors"`
	VisitorsLast24h      int64          `json:"visitors_last_24h"`
	TotalSessions        int64          `json:"total_sessions"`
	ActiveSessions       int64          `json:"active_sessions"`
	TotalActions         int64          `json:"total_actions"`
	AvgActionsPerSession float64        `json:"avg_actions_per_session"`
	TopCountries         []CountryCount `json:"top_countries"`
	GeneratedAt          time.Time      `json:"generated_at"`
}
