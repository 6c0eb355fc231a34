// Package geocode wraps the reverse-geocoding collaborator. Lookups are
// opportunistic: any failure degrades to a sentinel string so a clock-in is
// never blocked by the maps API.
package geocode

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"fleet_ledger_backend/pkg/utils"
)

// LocationUnavailable is stored on the attendance record when the lookup
// cannot produce an address.
const LocationUnavailable = "location unavailable"

// Resolver resolves coordinates to a human-readable address.
type Resolver interface {
	ResolveAddress(lat, lon float64) string
}

// Client calls the Google geocoding API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a geocoding client. An empty API key yields a client that
// always reports LocationUnavailable.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    "https://maps.googleapis.com/maps/api/geocode/json",
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

// ResolveAddress looks up the formatted address for the coordinates.
func (c *Client) ResolveAddress(lat, lon float64) string {
	if c.apiKey == "" {
		return LocationUnavailable
	}

	reqURL := fmt.Sprintf("%s?latlng=%s&key=%s",
		c.baseURL,
		url.QueryEscape(fmt.Sprintf("%f,%f", lat, lon)),
		url.QueryEscape(c.apiKey),
	)

	resp, err := c.httpClient.Get(reqURL)
	if err != nil {
		utils.LogWarn("Geocode lookup failed", map[string]interface{}{"error": err.Error()})
		return LocationUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		utils.LogWarn("Geocode lookup returned non-OK status", map[string]interface{}{"status": resp.StatusCode})
		return LocationUnavailable
	}

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		utils.LogWarn("Geocode response decode failed", map[string]interface{}{"error": err.Error()})
		return LocationUnavailable
	}

	if decoded.Status != "OK" || len(decoded.Results) == 0 {
		return LocationUnavailable
	}
	return decoded.Results[0].FormattedAddress
}
