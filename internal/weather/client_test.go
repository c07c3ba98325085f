package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func staticKey(key string) KeySource {
	return func() (string, error) { return key, nil }
}

func TestClientCurrentHappyPath(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = map[string]string{
			"q":     r.URL.Query().Get("q"),
			"appid": r.URL.Query().Get("appid"),
			"units": r.URL.Query().Get("units"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Buenos Aires","timezone":-10800,"main":{"temp":21.5,"humidity":64},"weather":[{"description":"scattered clouds"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "metric", staticKey("k-123"), srv.Client(), nil)
	data, err := c.Current(context.Background(), "Buenos Aires")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotQuery["q"] != "Buenos Aires" || gotQuery["appid"] != "k-123" || gotQuery["units"] != "metric" {
		t.Fatalf("unexpected query: %+v", gotQuery)
	}
	if data.Temperature != 21.5 || data.Humidity != 64 || data.Description != "scattered clouds" {
		t.Fatalf("unexpected data: %+v", data)
	}
	if data.Location != "Buenos Aires" || data.Units != "metric" || data.UTCOffset != -10800 {
		t.Fatalf("unexpected location/units: %+v", data)
	}
}

func TestClientCurrentNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "metric", staticKey("k"), srv.Client(), nil)
	_, err := c.Current(context.Background(), "Atlantis")
	if !errors.Is(err, ErrWeatherUnavailable) {
		t.Fatalf("expected ErrWeatherUnavailable, got %v", err)
	}
}

func TestClientCurrentMissingConditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"main":{"temp":1,"humidity":2},"weather":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", staticKey("k"), srv.Client(), nil)
	if _, err := c.Current(context.Background(), "Oslo"); !errors.Is(err, ErrWeatherUnavailable) {
		t.Fatalf("expected ErrWeatherUnavailable, got %v", err)
	}
}

func TestClientCurrentMissingKeySkipsUpstream(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	t.Setenv("WEATHER_API_KEY", "")
	c := NewClient(srv.URL, "metric", KeyFromEnv, srv.Client(), nil)
	if _, err := c.Current(context.Background(), "Lima"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if called {
		t.Fatalf("expected no upstream call without api key")
	}
}

func TestKeyFromEnvReadsAtCallTime(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "")
	if _, err := KeyFromEnv(); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	t.Setenv("WEATHER_API_KEY", "later")
	key, err := KeyFromEnv()
	if err != nil || key != "later" {
		t.Fatalf("expected key read at call time, got %q err=%v", key, err)
	}
}
