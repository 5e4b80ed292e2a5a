package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/tend/pkg/domain"
	"github.com/gorilla/websocket"
)

// Client talks to a running tend server.
type Client struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer
}

// NewClient creates a Client for baseURL (e.g. "http://localhost:8080").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		dialer:  websocket.DefaultDialer,
	}
}

// Servers fetches the current servers status.
func (c *Client) Servers(ctx context.Context) (domain.ServerStatus, error) {
	var status domain.ServerStatus
	err := c.do(ctx, http.MethodGet, "/servers", nil, &status)
	return status, err
}

// SetServers sets the online servers counter.
func (c *Client) SetServers(ctx context.Context, online int) (domain.ServerStatus, error) {
	var status domain.ServerStatus
	err := c.do(ctx, http.MethodPut, "/servers", map[string]int{"online": online}, &status)
	return status, err
}

// WatchServers calls fn with the current status and after every change,
// until ctx is done or the connection drops.
func (c *Client) WatchServers(ctx context.Context, fn func(domain.ServerStatus)) error {
	url := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws/servers"
	conn, _, err := c.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var status domain.ServerStatus
		if err := conn.ReadJSON(&status); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("watch interrupted: %w", err)
		}
		fn(status)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, apiErr.Error)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
