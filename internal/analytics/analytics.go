// Package analytics ships usage events to an external sink. Delivery is
// best effort by contract: a failed or slow sink must never fail, slow
// down, or partially complete a discovery run, so every error ends at a
// log line inside this package.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/crosscheck-ai/dissent/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sendTimeout = 10 * time.Second

// Error describes one failed event delivery. It is logged and dropped,
// never returned to callers of Record.
type Error struct {
	Event  string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analytics event %q: %v", e.Event, e.Err)
	}
	return fmt.Sprintf("analytics event %q: sink returned status %d", e.Event, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Event is one usage record. Properties carry the per-event payload so
// the sink schema can evolve without new wire types.
type Event struct {
	ID         string         `json:"event_id"`
	Name       string         `json:"event"`
	OccurredAt time.Time      `json:"occurred_at"`
	Properties map[string]any `json:"properties,omitempty"`
}

// DiscoveryEvent records a completed discovery run.
func DiscoveryEvent(params domain.DiscoveryParams, conflictCount int, elapsed time.Duration) Event {
	return Event{
		Name: "discovery",
		Properties: map[string]any{
			"topic":          params.Topic,
			"domain":         params.Domain,
			"depth":          string(params.Depth),
			"max_claims":     params.MaxClaims,
			"conflict_count": conflictCount,
			"elapsed_ms":     elapsed.Milliseconds(),
		},
	}
}

// DiscoveryFailureEvent records a run that aborted, with the failure
// kind so the sink can separate upstream outages from bad output.
func DiscoveryFailureEvent(params domain.DiscoveryParams, kind string, elapsed time.Duration) Event {
	return Event{
		Name: "discovery_failed",
		Properties: map[string]any{
			"topic":      params.Topic,
			"domain":     params.Domain,
			"depth":      string(params.Depth),
			"max_claims": params.MaxClaims,
			"error_kind": kind,
			"elapsed_ms": elapsed.Milliseconds(),
		},
	}
}

// AttributionEvent records how a user says they found the service.
func AttributionEvent(foundVia domain.FoundVia, note string) Event {
	props := map[string]any{"found_via": string(foundVia)}
	if note != "" {
		props["note"] = note
	}
	return Event{Name: "attribution", Properties: props}
}

// Client posts events to the configured sink from background
// goroutines. A client built without both an endpoint and an API key is
// disabled: Record returns immediately and nothing leaves the process.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger

	wg sync.WaitGroup
}

func NewClient(endpoint, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: sendTimeout},
		logger:     logger,
	}
}

// Enabled reports whether events will actually be sent.
func (c *Client) Enabled() bool {
	return c != nil && c.endpoint != "" && c.apiKey != ""
}

// Record ships the event in the background and returns immediately.
// The event ID and timestamp are filled in when absent.
func (c *Client) Record(event Event) {
	if !c.Enabled() {
		return
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.send(event); err != nil {
			c.logger.Debug("analytics event dropped", zap.String("event", event.Name), zap.Error(err))
		}
	}()
}

func (c *Client) send(event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return &Error{Event: event.Name, Err: fmt.Errorf("marshal event: %w", err)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return &Error{Event: event.Name, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Event: event.Name, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return &Error{Event: event.Name, Status: resp.StatusCode}
	}
	return nil
}

// Close waits for in-flight events to finish. Call it on shutdown only;
// Record never blocks on it.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.wg.Wait()
}
