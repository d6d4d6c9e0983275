// Package api implements the backend HTTP client: the fallback data path,
// the events list pull, and the sync trigger. Subpage endpoints only
// understand single-event scopes; the "all" scope never reaches them.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/eventhubx/eventhubx/internal/record"
)

// Client talks to the EventHubX backend API.
type Client struct {
	base string
	http *http.Client
}

// New creates a Client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: baseURL,
		http: &http.Client{Timeout: timeout},
	}
}

// subpageResponse is the backend envelope for subpage payloads.
type subpageResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// FetchSubpage retrieves the payload for one (event, entity type) pair from
// the backend. Non-2xx responses, malformed JSON, and non-array data all
// return an error; the gateway decides how failures degrade.
func (c *Client) FetchSubpage(ctx context.Context, eventID string, entityType record.EntityType) ([]record.Record, error) {
	endpoint := fmt.Sprintf("%s/subpages/%s/%s",
		c.base, url.PathEscape(eventID), url.PathEscape(string(entityType)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch subpage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch subpage: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var envelope subpageResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil, fmt.Errorf("response has no data payload")
	}

	records, err := record.DecodeList(envelope.Data)
	if err != nil {
		return nil, fmt.Errorf("decode data payload: %w", err)
	}
	return records, nil
}

// FetchEvents retrieves the full event list from the backend. The sync
// command mirrors the result into the events table; nothing else reads the
// events list over HTTP.
func (c *Client) FetchEvents(ctx context.Context) ([]record.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/events", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch events: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var envelope subpageResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil, fmt.Errorf("response has no data payload")
	}

	records, err := record.DecodeList(envelope.Data)
	if err != nil {
		return nil, fmt.Errorf("decode data payload: %w", err)
	}
	return records, nil
}

// TriggerSync asks the backend to enqueue an upstream synchronization for
// one (event, entity type) pair. The backend acknowledges immediately;
// completion is observed by re-fetching after a fixed delay.
func (c *Client) TriggerSync(ctx context.Context, eventID string, entityType record.EntityType) error {
	endpoint := fmt.Sprintf("%s/sync/%s/%s",
		c.base, url.PathEscape(eventID), url.PathEscape(string(entityType)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("trigger sync: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("trigger sync: unexpected status %d", resp.StatusCode)
	}
	return nil
}
