package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMeteorClient_Showers(t *testing.T) {
	payload := `{"status":"ok","result":[
		{"name":"Geminids","peak_date":"2025-12-14T07:00:00Z","zhr":150,"description":"Strong annual shower"},
		{"name":"Unknown","zhr":5}
	]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("api_key") != "KEY" {
			t.Errorf("api_key = %q", q.Get("api_key"))
		}
		if q.Get("start_date") == "" || q.Get("end_date") == "" {
			t.Error("missing date window params")
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := NewMeteorClient("KEY", WithBaseURL(srv.URL))
	events, err := c.Showers(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Showers: %v", err)
	}
	// The row without any peak date is dropped.
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.Body != "Meteor Shower" {
		t.Errorf("body = %q", ev.Body)
	}
	if ev.Peak != "2025-12-14T07:00:00Z" {
		t.Errorf("peak = %q", ev.Peak)
	}
	if ev.Highlights["name"] != "Geminids" {
		t.Errorf("name highlight = %v", ev.Highlights["name"])
	}
	if ev.Highlights["zhr"] != float64(150) {
		t.Errorf("zhr highlight = %v", ev.Highlights["zhr"])
	}
}

func TestMeteorClient_Fireballs(t *testing.T) {
	payload := `{"status":"ok","result":[
		{"sighting_date":"2025-11-20T03:12:00Z","brightness":-8.1,"trajectory":"NE to SW"}
	]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := NewMeteorClient("KEY", WithBaseURL(srv.URL))
	events, err := c.Fireballs(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Fireballs: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Body != "Fireball" || events[0].Type != "Fireball Sighting" {
		t.Errorf("event = %+v", events[0])
	}
	if events[0].Highlights["trajectory"] != "NE to SW" {
		t.Errorf("trajectory = %v", events[0].Highlights["trajectory"])
	}
}

func TestMeteorClient_NoKeyNoCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("disabled client must not send requests")
	}))
	defer srv.Close()

	c := NewMeteorClient("", WithBaseURL(srv.URL))
	if events, err := c.Showers(context.Background(), time.Time{}, time.Time{}); err != nil || events != nil {
		t.Errorf("Showers = %v, %v", events, err)
	}
	if events, err := c.Fireballs(context.Background(), time.Time{}, time.Time{}); err != nil || events != nil {
		t.Errorf("Fireballs = %v, %v", events, err)
	}
}

func TestMeteorClient_ForbiddenSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewMeteorClient("BAD", WithBaseURL(srv.URL))
	_, err := c.Showers(context.Background(), time.Time{}, time.Time{})
	if !IsForbidden(err) {
		t.Errorf("err = %v, want forbidden", err)
	}
}
