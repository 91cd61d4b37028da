package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/realestate-agents/lead_wizard/internal/api"
)

// DefaultNominatimURL is the public OpenStreetMap search service.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

var digitsOnly = regexp.MustCompile(`^\d+$`)

// Nominatim queries an OpenStreetMap Nominatim search endpoint restricted to
// US results within a single state.
type Nominatim struct {
	baseURL   string
	state     string
	stateCode string
	userAgent string
	client    *http.Client
}

// NominatimOptions configures a Nominatim provider.
type NominatimOptions struct {
	BaseURL   string
	State     string
	StateCode string
	UserAgent string
	Client    *http.Client
}

// NewNominatim builds a Nominatim provider.
func NewNominatim(opts NominatimOptions) *Nominatim {
	n := &Nominatim{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		state:     opts.State,
		stateCode: opts.StateCode,
		userAgent: opts.UserAgent,
		client:    opts.Client,
	}
	if n.baseURL == "" {
		n.baseURL = DefaultNominatimURL
	}
	if n.state == "" {
		n.state = "Washington"
	}
	if n.stateCode == "" {
		n.stateCode = "WA"
	}
	if n.userAgent == "" {
		n.userAgent = "lead-wizard/1.0"
	}
	if n.client == nil {
		n.client = &http.Client{Timeout: 10 * time.Second}
	}
	return n
}

type nominatimPlace struct {
	DisplayName string `json:"display_name"`
}

// Search implements Provider.
func (n *Nominatim) Search(ctx context.Context, query string) ([]api.Location, error) {
	params := url.Values{
		"q":            {query + "," + n.state},
		"format":       {"json"},
		"countrycodes": {"us"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("nominatim status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}

	out := make([]api.Location, 0, len(raw))
	for _, item := range raw {
		var place nominatimPlace
		if err := json.Unmarshal(item, &place); err != nil {
			continue
		}
		if !strings.Contains(place.DisplayName, "United States") {
			continue
		}
		out = append(out, api.Location{Description: n.FormatDisplayName(place.DisplayName), Raw: item})
	}
	return out, nil
}

// FormatDisplayName shortens a Nominatim display name to
// "<street>, <city>, <state code>". The street joins the first two parts and
// the city is the first later part that is not the state, the country, a
// county or a postcode.
func (n *Nominatim) FormatDisplayName(display string) string {
	parts := strings.Split(display, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	street := parts[0]
	if len(parts) > 1 && parts[0] != "" && parts[1] != "" {
		street = parts[0] + " " + parts[1]
	}

	state := strings.ToLower(n.state)
	var city string
	for i := 2; i < len(parts); i++ {
		val := strings.ToLower(parts[i])
		if strings.Contains(val, state) || strings.Contains(val, "united states") ||
			strings.Contains(val, "county") || digitsOnly.MatchString(val) {
			continue
		}
		city = parts[i]
		break
	}

	return fmt.Sprintf("%s, %s, %s", street, city, n.stateCode)
}
