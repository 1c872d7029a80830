package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/crosscheck-ai/dissent/internal/domain"
	"go.uber.org/zap"
)

type capturedEvent struct {
	method      string
	auth        string
	contentType string
	event       Event
}

func sinkServer(t *testing.T, status int) (*httptest.Server, chan capturedEvent) {
	t.Helper()
	received := make(chan capturedEvent, 16)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Errorf("decode event: %v", err)
		}
		received <- capturedEvent{
			method:      r.Method,
			auth:        r.Header.Get("Authorization"),
			contentType: r.Header.Get("Content-Type"),
			event:       event,
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, received
}

func TestRecord_SendsEvent(t *testing.T) {
	server, received := sinkServer(t, http.StatusOK)
	client := NewClient(server.URL, "sink-key", zap.NewNop())

	client.Record(DiscoveryEvent(domain.DiscoveryParams{
		Topic:     "statins",
		Domain:    "medicine",
		Depth:     domain.DepthAcademic,
		MaxClaims: 18,
	}, 4, 1500*time.Millisecond))
	client.Close()

	select {
	case got := <-received:
		if got.method != http.MethodPost {
			t.Errorf("method = %s", got.method)
		}
		if got.auth != "Bearer sink-key" {
			t.Errorf("authorization = %q", got.auth)
		}
		if got.contentType != "application/json" {
			t.Errorf("content type = %q", got.contentType)
		}
		if got.event.Name != "discovery" {
			t.Errorf("event name = %q", got.event.Name)
		}
		if got.event.ID == "" {
			t.Error("event ID not filled in")
		}
		if got.event.OccurredAt.IsZero() {
			t.Error("event timestamp not filled in")
		}
		if got.event.Properties["topic"] != "statins" {
			t.Errorf("topic property = %v", got.event.Properties["topic"])
		}
		if got.event.Properties["conflict_count"] != float64(4) {
			t.Errorf("conflict_count property = %v", got.event.Properties["conflict_count"])
		}
		if got.event.Properties["elapsed_ms"] != float64(1500) {
			t.Errorf("elapsed_ms property = %v", got.event.Properties["elapsed_ms"])
		}
	default:
		t.Fatal("sink never received the event")
	}
}

func TestRecord_DisabledWithoutFullConfig(t *testing.T) {
	server, received := sinkServer(t, http.StatusOK)

	tests := []struct {
		name     string
		endpoint string
		apiKey   string
	}{
		{"no endpoint", "", "sink-key"},
		{"no api key", server.URL, ""},
		{"neither", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.endpoint, tt.apiKey, zap.NewNop())
			if client.Enabled() {
				t.Fatal("client should be disabled")
			}
			client.Record(AttributionEvent(domain.FoundViaDirectory, ""))
			client.Close()
			select {
			case got := <-received:
				t.Fatalf("disabled client sent event %q", got.event.Name)
			default:
			}
		})
	}
}

func TestRecord_NilClientIsSafe(t *testing.T) {
	var client *Client
	if client.Enabled() {
		t.Fatal("nil client reports enabled")
	}
	client.Record(AttributionEvent(domain.FoundViaLink, ""))
	client.Close()
}

func TestRecord_SinkFailureIsSwallowed(t *testing.T) {
	server, received := sinkServer(t, http.StatusInternalServerError)
	client := NewClient(server.URL, "sink-key", zap.NewNop())

	client.Record(AttributionEvent(domain.FoundViaChatGPT, "widget gallery"))
	client.Close()

	select {
	case <-received:
	default:
		t.Fatal("sink never received the event")
	}
}

func TestRecord_CloseDrainsInFlightEvents(t *testing.T) {
	var mu sync.Mutex
	count := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		count++
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "sink-key", zap.NewNop())
	for i := 0; i < 10; i++ {
		client.Record(AttributionEvent(domain.FoundViaOther, ""))
	}
	client.Close()

	mu.Lock()
	defer mu.Unlock()
	if count != 10 {
		t.Errorf("sink received %d events, want 10", count)
	}
}

func TestDiscoveryFailureEvent_CarriesErrorKind(t *testing.T) {
	event := DiscoveryFailureEvent(domain.DefaultDiscoveryParams("sleep"), "upstream", 200*time.Millisecond)
	if event.Name != "discovery_failed" {
		t.Errorf("event name = %q", event.Name)
	}
	if event.Properties["error_kind"] != "upstream" {
		t.Errorf("error_kind = %v", event.Properties["error_kind"])
	}
}

func TestAttributionEvent_OmitsEmptyNote(t *testing.T) {
	event := AttributionEvent(domain.FoundViaFriend, "")
	if event.Name != "attribution" {
		t.Errorf("event name = %q", event.Name)
	}
	if event.Properties["found_via"] != "friend" {
		t.Errorf("found_via = %v", event.Properties["found_via"])
	}
	if _, ok := event.Properties["note"]; ok {
		t.Error("empty note should be omitted")
	}
}
