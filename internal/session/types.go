// Package session implements the per-connection state machine: handshake
// demultiplex, the status sub-loop, the login pipeline (encryption,
// session-server attestation, whitelist decision), and the handoff into
// play relay.
package session

import (
	"mc-reverse-proxy/internal/backend"
	"mc-reverse-proxy/internal/cipher"
	"mc-reverse-proxy/internal/motd"
	"mc-reverse-proxy/internal/whitelist"
)

// OnlineStatus gates whether the encryption subprotocol runs at all.
type OnlineStatus int

const (
	OnlineStatusOnline OnlineStatus = iota
	OnlineStatusOffline
)

// AuthMethod gates the session-server attestation call, and only matters
// when OnlineStatus is Online.
type AuthMethod int

const (
	AuthSessionServer AuthMethod = iota
	AuthNone
)

// SessionServerClient abstracts the outbound Mojang-style hasJoined
// attestation call; the concrete HTTPS implementation lives in
// internal/sessionserver so this package stays free of a network client
// dependency it doesn't otherwise need.
type SessionServerClient interface {
	HasJoined(username, serverIDHash string) (bool, error)
}

// EventSink receives session lifecycle notifications for operator
// tooling (metrics counters, the admin live feed). Every call site checks
// info.Events != nil before invoking it, so a nil EventSink is never
// invoked directly; Fanout is how more than one sink is wired in.
type EventSink interface {
	ConnectionAccepted(listenerName, remoteAddr string)
	LoginResult(listenerName, name string, allowed bool, reason string)
	// BytesRelayed reports the total bytes moved in each direction once
	// play relay for a connection ends: clientToBackend is client->backend,
	// backendToClient is backend->client.
	BytesRelayed(listenerName string, clientToBackend, backendToClient int64)
	ConnectionClosed(listenerName, remoteAddr string)
}

// Fanout broadcasts every event to each sink in order.
type Fanout []EventSink

func (f Fanout) ConnectionAccepted(listenerName, remoteAddr string) {
	for _, s := range f {
		s.ConnectionAccepted(listenerName, remoteAddr)
	}
}

func (f Fanout) LoginResult(listenerName, name string, allowed bool, reason string) {
	for _, s := range f {
		s.LoginResult(listenerName, name, allowed, reason)
	}
}

func (f Fanout) BytesRelayed(listenerName string, clientToBackend, backendToClient int64) {
	for _, s := range f {
		s.BytesRelayed(listenerName, clientToBackend, backendToClient)
	}
}

func (f Fanout) ConnectionClosed(listenerName, remoteAddr string) {
	for _, s := range f {
		s.ConnectionClosed(listenerName, remoteAddr)
	}
}

// ProxyInfo is the per-listener configuration and shared state, immutable
// for the lifetime of any one connection.
type ProxyInfo struct {
	Name string

	Backend backend.Target

	OnlineStatus OnlineStatus
	AuthMethod   AuthMethod
	SessionAuth  SessionServerClient

	Whitelist whitelist.Policy
	Keys      *cipher.KeyPair

	MOTD        *motd.Cache
	FaviconPath string

	Events EventSink
}
