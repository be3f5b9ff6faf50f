// Package sessionserver implements the outbound HTTPS attestation call to
// a Mojang-style session server, kept isolated from internal/session so
// the connection state machine doesn't carry an HTTP client dependency
// it only needs in online mode.
package sessionserver

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultEndpoint is the vanilla Mojang hasJoined endpoint.
const DefaultEndpoint = "https://sessionserver.mojang.com/session/minecraft/hasJoined"

// Client calls the session server's hasJoined endpoint to attest that a
// client who claims to be username actually authenticated with the
// account that produced serverIDHash.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

// New returns a Client targeting endpoint (DefaultEndpoint if empty) with
// a bounded request timeout.
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: 5 * time.Second},
	}
}

// HasJoined performs the GET and reports success on any 2xx response
// with a non-empty body.
func (c *Client) HasJoined(username, serverIDHash string) (bool, error) {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return false, fmt.Errorf("sessionserver: parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("username", username)
	q.Set("serverId", serverIDHash)
	u.RawQuery = q.Encode()

	resp, err := c.HTTP.Get(u.String())
	if err != nil {
		return false, fmt.Errorf("sessionserver: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("sessionserver: read body: %w", err)
	}
	return len(body) > 0, nil
}
