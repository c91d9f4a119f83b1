// Package geo resolves a client IP to a coarse location on a best-effort basis.
//
// A Resolver never reports failure to its caller: every problem (transport,
// status, payload, missing database entry) collapses into a nil *models.Location.
package geo

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/axellelanca/visitorpulse/internal/config"
	"github.com/axellelanca/visitorpulse/internal/models"
)

// Resolver looks up the coarse location of an IP. A nil result means "no location".
type Resolver interface {
	Resolve(ctx context.Context, ip string) *models.Location
}

// Noop never finds a location.
type Noop struct{}

func (Noop) Resolve(context.Context, string) *models.Location { return nil }

// Chain asks each resolver in order and returns the first location found.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, ip string) *models.Location {
	for _, r := range c {
		if ctx.Err() != nil {
			return nil
		}
		if loc := r.Resolve(ctx, ip); loc != nil {
			return loc
		}
	}
	return nil
}

// Closer is implemented by resolvers holding resources, such as an open mmdb file.
type Closer interface {
	Close() error
}

// New builds the resolver chain described by cfg.Geo.Providers.
// The returned close function releases every resolver that holds resources.
func New(cfg *config.Config) (Resolver, func(), error) {
	var chain Chain
	var closers []Closer

	for _, name := range cfg.Geo.Providers {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "ipapi", "http":
			timeout := time.Duration(cfg.Geo.TimeoutSeconds) * time.Second
			chain = append(chain, NewHTTPResolver(cfg.Geo.BaseURL, timeout))
		case "maxmind", "mmdb":
			r, err := OpenMaxMindResolver(cfg.Geo.MMDBPath)
			if err != nil {
				for _, c := range closers {
					c.Close()
				}
				return nil, nil, err
			}
			chain = append(chain, r)
			closers = append(closers, r)
		case "none", "":
		default:
			return nil, nil, fmt.Errorf("unknown geo provider %q", name)
		}
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				log.Printf("[GEO] Error closing resolver: %v", err)
			}
		}
	}

	switch len(chain) {
	case 0:
		return Noop{}, closeAll, nil
	case 1:
		return chain[0], closeAll, nil
	default:
		return chain, closeAll, nil
	}
}
