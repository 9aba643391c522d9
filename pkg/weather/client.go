// Package weather resolves free-text locations to current conditions using
// the weatherapi.com current-conditions endpoint.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	loggerpkg "github.com/minhyannv/weather-chat-go/pkg/logger"
)

const (
	DefaultBaseURL = "https://api.weatherapi.com/v1"
	DefaultEnvFile = "azureopenai.env"

	maxResponseBytes int64 = 1024 * 1024
)

// Error messages surfaced inside error records.
const (
	msgInvalidLocation = "Invalid location"
	msgInvalidResponse = "Invalid response from Weather API"
)

// Client looks up current weather. The zero value is not usable; use NewClient.
type Client struct {
	baseURL    string
	apiKey     string
	envFile    string
	httpClient *http.Client
	logger     loggerpkg.Logger
	verbose    bool
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (without the /current.json suffix).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if s := strings.TrimRight(strings.TrimSpace(baseURL), "/"); s != "" {
			c.baseURL = s
		}
	}
}

// WithAPIKey sets the weatherapi.com key. An empty key is allowed and reported per lookup.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithEnvFile names the env file mentioned when the key is missing.
func WithEnvFile(name string) Option {
	return func(c *Client) {
		if s := strings.TrimSpace(name); s != "" {
			c.envFile = s
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithLogger injects a logger; verbose enables debug lines.
func WithLogger(l loggerpkg.Logger, verbose bool) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
		c.verbose = verbose
	}
}

// NewClient builds a Client with defaults applied before opts.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		envFile:    DefaultEnvFile,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     loggerpkg.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// currentResponse mirrors the fields read from /current.json. Pointers let a
// missing key be told apart from a zero value.
type currentResponse struct {
	Location *struct {
		Name    *string  `json:"name"`
		Region  *string  `json:"region"`
		Country *string  `json:"country"`
		Lat     *float64 `json:"lat"`
		Lon     *float64 `json:"lon"`
	} `json:"location"`
	Current *struct {
		Condition *struct {
			Text *string `json:"text"`
		} `json:"condition"`
		TempC *float64 `json:"temp_c"`
	} `json:"current"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Lookup resolves location to a Record. Failures come back as error records;
// Lookup never returns a Go error.
func (c *Client) Lookup(ctx context.Context, location string) Record {
	if strings.TrimSpace(location) == "" {
		return errorRecord(msgInvalidLocation)
	}
	if c.apiKey == "" {
		return errorRecord(fmt.Sprintf("Missing WEATHER_API_KEY in %s", c.envFile))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	query := url.Values{}
	query.Set("key", c.apiKey)
	query.Set("q", location)
	query.Set("aqi", "no")
	endpoint := c.baseURL + "/current.json?" + query.Encode()

	loggerpkg.Debug(c.verbose, c.logger, "weather lookup", map[string]any{
		"location": location,
		"base_url": c.baseURL,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errorRecord(fmt.Sprintf("Weather API request failed: %v", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		loggerpkg.Debug(c.verbose, c.logger, "weather request failed", map[string]any{"location": location})
		return errorRecord(fmt.Sprintf("Weather API request failed: %v", redactKey(err, c.apiKey)))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errorRecord(fmt.Sprintf("Weather API request failed: %v", err))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		loggerpkg.Debug(c.verbose, c.logger, "weather http error", map[string]any{
			"status": resp.StatusCode,
		})
		return errorRecord(httpErrorMessage(resp.StatusCode, body))
	}

	record, ok := decodeCurrent(body)
	if !ok {
		loggerpkg.Debug(c.verbose, c.logger, "weather response invalid", map[string]any{
			"bytes": len(body),
		})
		return errorRecord(msgInvalidResponse)
	}
	loggerpkg.Debug(c.verbose, c.logger, "weather lookup ok", record)
	return record
}

func decodeCurrent(body []byte) (Record, bool) {
	var payload currentResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Record{}, false
	}
	loc, cur := payload.Location, payload.Current
	if loc == nil || cur == nil || cur.Condition == nil {
		return Record{}, false
	}
	if loc.Name == nil || loc.Region == nil || loc.Country == nil || loc.Lat == nil || loc.Lon == nil {
		return Record{}, false
	}
	if cur.Condition.Text == nil || cur.TempC == nil {
		return Record{}, false
	}
	return Record{
		Location: *loc.Name,
		Region:   *loc.Region,
		Country:  *loc.Country,
		Lat:      *loc.Lat,
		Lon:      *loc.Lon,
		Weather:  *cur.Condition.Text,
		TempC:    *cur.TempC,
	}, true
}

func httpErrorMessage(status int, body []byte) string {
	msg := fmt.Sprintf("Weather API HTTP error: %d %s", status, http.StatusText(status))
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		msg += ": " + apiErr.Error.Message
	}
	return msg
}

// redactKey strips the API key from transport errors, which embed the request URL.
func redactKey(err error, key string) string {
	text := err.Error()
	if key == "" {
		return text
	}
	text = strings.ReplaceAll(text, url.QueryEscape(key), "REDACTED")
	return strings.ReplaceAll(text, key, "REDACTED")
}
