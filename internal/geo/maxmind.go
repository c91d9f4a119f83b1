package geo

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"github.com/axellelanca/visitorpulse/internal/models"
)

// cityReader is the part of *geoip2.Reader used by MaxMindResolver.
type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

// MaxMindResolver looks IPs up in a local GeoLite2/GeoIP2 City database.
type MaxMindResolver struct {
	reader cityReader
}

// OpenMaxMindResolver opens the .mmdb file at path.
func OpenMaxMindResolver(path string) (*MaxMindResolver, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database %s: %w", path, err)
	}
	return &MaxMindResolver{reader: reader}, nil
}

func (r *MaxMindResolver) Resolve(_ context.Context, ip string) *models.Location {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil
	}

	record, err := r.reader.City(parsed)
	if err != nil {
		return nil
	}

	loc := &models.Location{
		CountryCode: nonEmpty(record.Country.IsoCode),
		City:        nonEmpty(record.City.Names["en"]),
	}
	if len(record.Subdivisions) > 0 {
		loc.Region = nonEmpty(record.Subdivisions[0].Names["en"])
	}
	if loc.CountryCode == nil && loc.Region == nil && loc.City == nil {
		// Private and reserved ranges resolve to an empty record
		return nil
	}
	return loc
}

func (r *MaxMindResolver) Close() error {
	return r.reader.Close()
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
