package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const londonBody = `{
	"location": {"name": "London", "region": "City of London, Greater London", "country": "United Kingdom", "lat": 51.52, "lon": -0.11, "tz_id": "Europe/London"},
	"current": {"temp_c": 14.3, "condition": {"text": "Partly cloudy", "code": 1003}, "humidity": 72}
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestLookupSuccessCopiesFields(t *testing.T) {
	srv, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/current.json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "no", r.URL.Query().Get("aqi"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(londonBody))
	})

	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("test-key"))
	got := c.Lookup(context.Background(), "London")

	require.True(t, got.OK(), "unexpected error record: %s", got.Error)
	assert.Equal(t, Record{
		Location: "London",
		Region:   "City of London, Greater London",
		Country:  "United Kingdom",
		Lat:      51.52,
		Lon:      -0.11,
		Weather:  "Partly cloudy",
		TempC:    14.3,
	}, got)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestLookupPreservesCommasAndSpaces(t *testing.T) {
	inputs := []string{"London, UK", "New York, NY, United States", "51.5074,-0.1278", "São Paulo"}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			var gotQuery string
			srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query().Get("q")
				_, _ = w.Write([]byte(londonBody))
			})

			rec := NewClient(WithBaseURL(srv.URL), WithAPIKey("k")).Lookup(context.Background(), input)
			require.True(t, rec.OK())
			assert.Equal(t, input, gotQuery)
		})
	}
}

func TestLookupEmptyLocationSkipsNetwork(t *testing.T) {
	srv, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(londonBody))
	})
	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("k"))

	for _, input := range []string{"", " ", "\t\n  "} {
		rec := c.Lookup(context.Background(), input)
		assert.Equal(t, Record{Error: "Invalid location"}, rec)
	}
	assert.EqualValues(t, 0, atomic.LoadInt32(calls))
}

func TestLookupMissingKeyIsReportedPerCall(t *testing.T) {
	srv, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(londonBody))
	})
	c := NewClient(WithBaseURL(srv.URL), WithEnvFile(".env"))

	rec := c.Lookup(context.Background(), "London")
	assert.Equal(t, "Missing WEATHER_API_KEY in .env", rec.Error)
	assert.EqualValues(t, 0, atomic.LoadInt32(calls))
}

func TestLookupHTTPErrorBecomesRecord(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"bad request with api message", http.StatusBadRequest, `{"error":{"code":1006,"message":"No matching location found."}}`, "Weather API HTTP error: 400 Bad Request: No matching location found."},
		{"forbidden", http.StatusForbidden, `nope`, "Weather API HTTP error: 403 Forbidden"},
		{"server error", http.StatusInternalServerError, ``, "Weather API HTTP error: 500 Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			var rec Record
			require.NotPanics(t, func() {
				rec = NewClient(WithBaseURL(srv.URL), WithAPIKey("k")).Lookup(context.Background(), "Atlantis")
			})
			assert.False(t, rec.OK())
			assert.Equal(t, tc.want, rec.Error)
		})
	}
}

func TestLookupMalformedResponse(t *testing.T) {
	bodies := map[string]string{
		"not json":        `<html>`,
		"missing current": `{"location":{"name":"London","region":"","country":"UK","lat":1,"lon":2}}`,
		"missing temp":    `{"location":{"name":"London","region":"","country":"UK","lat":1,"lon":2},"current":{"condition":{"text":"Sunny"}}}`,
		"wrong type":      `{"location":{"name":"London","region":"","country":"UK","lat":"north","lon":2},"current":{"temp_c":1,"condition":{"text":"Sunny"}}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			rec := NewClient(WithBaseURL(srv.URL), WithAPIKey("k")).Lookup(context.Background(), "London")
			assert.Equal(t, Record{Error: "Invalid response from Weather API"}, rec)
		})
	}
}

func TestLookupTransportErrorRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	rec := NewClient(WithBaseURL(baseURL), WithAPIKey("secret-key")).Lookup(context.Background(), "London")
	require.False(t, rec.OK())
	assert.Contains(t, rec.Error, "Weather API request failed:")
	assert.NotContains(t, rec.Error, "secret-key")
}

func TestRecordJSONShapes(t *testing.T) {
	ok, err := json.Marshal(Record{Location: "Quito", Country: "Ecuador", Lat: 0, Lon: -78.5, Weather: "Rain", TempC: 0})
	require.NoError(t, err)
	assert.JSONEq(t, `{"location":"Quito","region":"","country":"Ecuador","lat":0,"lon":-78.5,"weather":"Rain","temp_c":0}`, string(ok))

	bad, err := json.Marshal(Record{Location: "ignored", Error: "Invalid location"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Invalid location"}`, string(bad))

	var back Record
	require.NoError(t, json.Unmarshal(bad, &back))
	assert.Equal(t, Record{Error: "Invalid location"}, back)

	require.NoError(t, json.Unmarshal(ok, &back))
	assert.Equal(t, "Quito", back.Location)
	assert.True(t, back.OK())
}
