// Package weather answers "what's the weather" questions using free public
// APIs: OpenStreetMap Nominatim for geocoding and the US National Weather
// Service for forecasts.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org"
	defaultNWSURL       = "https://api.weather.gov"
	defaultUserAgent    = "juliejulie-voice-assistant (github.com/juliejulie/juliejulie)"
)

// Client geocodes a spoken location and fetches its current forecast period.
type Client struct {
	http         *http.Client
	nominatimURL string
	nwsURL       string
	userAgent    string
}

type Option func(*Client)

// WithBaseURLs overrides the public API endpoints.
func WithBaseURLs(nominatim, nws string) Option {
	return func(c *Client) {
		if nominatim != "" {
			c.nominatimURL = strings.TrimRight(nominatim, "/")
		}
		if nws != "" {
			c.nwsURL = strings.TrimRight(nws, "/")
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		http:         &http.Client{Timeout: 10 * time.Second},
		nominatimURL: defaultNominatimURL,
		nwsURL:       defaultNWSURL,
		userAgent:    defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type pointsResponse struct {
	Properties struct {
		Forecast string `json:"forecast"`
	} `json:"properties"`
}

type forecastResponse struct {
	Properties struct {
		Periods []forecastPeriod `json:"periods"`
	} `json:"properties"`
}

type forecastPeriod struct {
	Name             string `json:"name"`
	Temperature      int    `json:"temperature"`
	TemperatureUnit  string `json:"temperatureUnit"`
	ShortForecast    string `json:"shortForecast"`
	DetailedForecast string `json:"detailedForecast"`
}

// Summary returns a single spoken-ready sentence for the location's current
// forecast period. Any failure along the chain is returned; callers fall back
// to opening a weather page instead.
func (c *Client) Summary(ctx context.Context, location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", fmt.Errorf("no location given")
	}

	lat, lon, err := c.geocode(ctx, location)
	if err != nil {
		return "", fmt.Errorf("geocode %q: %w", location, err)
	}

	forecastURL, err := c.forecastURL(ctx, lat, lon)
	if err != nil {
		return "", fmt.Errorf("forecast grid for %q: %w", location, err)
	}

	period, err := c.currentPeriod(ctx, forecastURL)
	if err != nil {
		return "", fmt.Errorf("forecast for %q: %w", location, err)
	}

	if period.DetailedForecast != "" {
		return fmt.Sprintf("%s in %s: %s", period.Name, location, period.DetailedForecast), nil
	}
	return fmt.Sprintf("%s in %s: %s, %d degrees %s.",
		period.Name, location, period.ShortForecast, period.Temperature, period.TemperatureUnit), nil
}

func (c *Client) geocode(ctx context.Context, location string) (lat, lon float64, err error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", c.nominatimURL, url.QueryEscape(location))

	var places []place
	if err := c.getJSON(ctx, endpoint, &places); err != nil {
		return 0, 0, err
	}
	if len(places) == 0 {
		return 0, 0, fmt.Errorf("location not found")
	}
	lat, err = strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse latitude %q: %w", places[0].Lat, err)
	}
	lon, err = strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse longitude %q: %w", places[0].Lon, err)
	}
	return lat, lon, nil
}

func (c *Client) forecastURL(ctx context.Context, lat, lon float64) (string, error) {
	endpoint := fmt.Sprintf("%s/points/%.4f,%.4f", c.nwsURL, lat, lon)

	var points pointsResponse
	if err := c.getJSON(ctx, endpoint, &points); err != nil {
		return "", err
	}
	if points.Properties.Forecast == "" {
		return "", fmt.Errorf("no forecast grid for point")
	}
	return points.Properties.Forecast, nil
}

func (c *Client) currentPeriod(ctx context.Context, forecastURL string) (forecastPeriod, error) {
	var forecast forecastResponse
	if err := c.getJSON(ctx, forecastURL, &forecast); err != nil {
		return forecastPeriod{}, err
	}
	if len(forecast.Properties.Periods) == 0 {
		return forecastPeriod{}, fmt.Errorf("forecast has no periods")
	}
	return forecast.Properties.Periods[0], nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	// Nominatim's usage policy requires an identifying user agent.
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d from %s", res.StatusCode, endpoint)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// FallbackURL is the page opened when the forecast chain fails; the spoken
// answer degrades but the user still gets their weather.
func FallbackURL(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return "https://wttr.in"
	}
	return "https://wttr.in/" + url.PathEscape(location)
}
