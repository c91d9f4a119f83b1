package models

// Location is a coarse, IP-derived position. Every field is optional.
type Location struct {
	CountryCode *string `json:"country_code"`
	Region      *string `json:"region"`
	City        *string `json:"city"`
}
