package geo

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/axellelanca/visitorpulse/internal/models"
)

// HTTPResolver queries an ipapi.co compatible service: GET {baseURL}/{ip}/json/.
type HTTPResolver struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPResolver creates a resolver whose lookups never take longer than timeout.
func NewHTTPResolver(baseURL string, timeout time.Duration) *HTTPResolver {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPResolver{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Resolve returns nil on transport errors, non-2xx statuses, undecodable bodies
// and bodies carrying an "error" key.
func (r *HTTPResolver) Resolve(ctx context.Context, ip string) *models.Location {
	loc, err := r.lookup(ctx, ip)
	if err != nil {
		log.Printf("[GEO] Lookup skipped: %v", err)
		return nil
	}
	return loc
}

func (r *HTTPResolver) lookup(ctx context.Context, ip string) (*models.Location, error) {
	endpoint := fmt.Sprintf("%s/%s/json/", r.baseURL, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}
	if _, ok := data["error"]; ok {
		return nil, fmt.Errorf("service reported an error: %v", data["reason"])
	}

	return &models.Location{
		CountryCode: stringField(data, "country_code"),
		Region:      stringField(data, "region"),
		City:        stringField(data, "city"),
	}, nil
}

// stringField returns the string stored under key, or nil when it is absent or not a string.
func stringField(data map[string]any, key string) *string {
	s, ok := data[key].(string)
	if !ok {
		return nil
	}
	return &s
}
