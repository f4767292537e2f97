package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const snapshotEvent = "status.snapshot"

// HTTPMirror relays snapshots to a Pusher compatible broadcast API
// (Sockudo, Soketi).
type HTTPMirror struct {
	BaseURL    string
	APIKey     string
	Channel    string
	HTTPClient *http.Client
}

func NewHTTPMirror(baseURL, apiKey, channel string) *HTTPMirror {
	return &HTTPMirror{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Channel: channel,
		HTTPClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (h *HTTPMirror) Publish(ctx context.Context, payload []byte) error {
	if h.BaseURL == "" {
		return nil // Not configured
	}

	url := fmt.Sprintf("%s/api/v1/broadcast", h.BaseURL)

	body := map[string]interface{}{
		"channel": h.Channel,
		"event":   snapshotEvent,
		"data":    json.RawMessage(payload),
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if h.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", h.APIKey))
		req.Header.Set("X-App-Key", h.APIKey)
	}

	resp, err := h.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("http mirror failed with status: %d", resp.StatusCode)
	}

	return nil
}

func (h *HTTPMirror) Close() error {
	h.HTTPClient.CloseIdleConnections()
	return nil
}
