// Package backend dials the single configured backend game server
// on demand: a fresh connection per status probe and another per login
// replay, each one a throwaway leg rather than a shared long-lived
// connection. The proxy never holds a connection to the backend outside
// of an in-flight probe, replay, or play relay.
package backend

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"mc-reverse-proxy/internal/framing"
	"mc-reverse-proxy/internal/protocol"
)

// dialTimeout bounds every on-demand dial; a slow or hung backend must
// not block a client's status/login flow indefinitely.
const dialTimeout = 5 * time.Second

// health is shared, mutable reachability bookkeeping for a Target. A
// Target value is copied freely across call sites (it's stored by value
// in ProxyInfo and passed by value into every method), so health is a
// pointer the copies share, letting ProbeStatus/LoginReplay/Dial attempts
// from any copy agree on the backend's last known state. Trimmed to the
// fields a single fixed backend (no pool, no RTT-based selection) needs.
type health struct {
	mu            sync.Mutex
	healthy       bool
	failCount     int
	successCount  int
	lastError     error
	lastCheckTime time.Time
}

func (h *health) record(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastCheckTime = time.Now()
	h.lastError = err
	if err == nil {
		h.healthy = true
		h.successCount++
	} else {
		h.healthy = false
		h.failCount++
	}
}

// Snapshot is a point-in-time copy of a Target's reachability state.
type Snapshot struct {
	Healthy       bool
	FailCount     int
	SuccessCount  int
	LastError     error
	LastCheckTime time.Time
}

func (h *health) snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Snapshot{
		Healthy:       h.healthy,
		FailCount:     h.failCount,
		SuccessCount:  h.successCount,
		LastError:     h.lastError,
		LastCheckTime: h.lastCheckTime,
	}
}

// Target is the single backend a listener forwards to.
type Target struct {
	Addr string
	Port uint16

	health *health
}

// New returns a Target with reachability bookkeeping enabled. Targets
// built as a bare struct literal (common in tests) still dial correctly;
// they simply report Healthy() as the zero Snapshot's healthy=false
// until New is used.
func New(addr string, port uint16) Target {
	return Target{Addr: addr, Port: port, health: &health{healthy: true}}
}

// Healthy reports the most recent dial's outcome. Safe to call from any
// copy of a Target produced by New.
func (t Target) Healthy() Snapshot {
	if t.health == nil {
		return Snapshot{}
	}
	return t.health.snapshot()
}

func (t Target) hostPort() string {
	return net.JoinHostPort(t.Addr, fmt.Sprintf("%d", t.Port))
}

// Dial opens a fresh framed connection to the backend. Errors are
// wrapped with the backend address for the caller to treat as
// BackendUnreachable.
func (t Target) Dial(ctx context.Context) (*framing.Conn, error) {
	var d net.Dialer
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	conn, err := d.DialContext(dialCtx, "tcp", t.hostPort())
	if t.health != nil {
		t.health.record(err)
	}
	if err != nil {
		return nil, fmt.Errorf("backend: dial %s: %w", t.hostPort(), err)
	}
	return framing.New(conn), nil
}

// StatusResult is the subset of the backend's status JSON the proxy
// needs: everything else passes through untouched in the raw document.
type StatusResult struct {
	RawJSON string
}

// ProbeStatus opens a throwaway connection, performs the status
// handshake, and returns the backend's raw StatusResponse JSON. Any
// failure here is meant to be swallowed by the caller in favor of a
// synthetic "backend down" response.
func (t Target) ProbeStatus(ctx context.Context) (StatusResult, error) {
	conn, err := t.Dial(ctx)
	if err != nil {
		return StatusResult{}, err
	}
	defer conn.Close()

	hs := protocol.Handshake{
		ProtocolVersion: protocol.VersionProtocol,
		ServerAddress:   t.Addr,
		ServerPort:      t.Port,
		NextState:       1,
	}
	if err := writePacket(conn, hs); err != nil {
		return StatusResult{}, err
	}
	if err := writePacket(conn, protocol.StatusRequest{}); err != nil {
		return StatusResult{}, err
	}

	payload, err := conn.ReadFrame()
	if err != nil {
		return StatusResult{}, fmt.Errorf("backend: read status response: %w", err)
	}
	body, err := protocol.Expect(payload, protocol.IDStatusResponseCB)
	if err != nil {
		return StatusResult{}, err
	}
	resp, err := protocol.DecodeStatusResponse(body)
	if err != nil {
		return StatusResult{}, err
	}
	return StatusResult{RawJSON: resp.JSON}, nil
}

// LoginSession is the backend leg established by LoginReplay, still open
// and ready to enter play relay once the client's LoginSuccess mirror
// has been sent.
type LoginSession struct {
	Conn    *framing.Conn
	Success protocol.LoginSuccess
}

// LoginReplay opens a fresh connection to the backend, performs a login
// handshake using the client's name/uuid, and reads back the backend's
// LoginSuccess. The proxy never contacts an external identity service for
// this step — it trusts the backend's own answer.
func (t Target) LoginReplay(ctx context.Context, name string, hasUUID bool, id uuid.UUID) (*LoginSession, error) {
	conn, err := t.Dial(ctx)
	if err != nil {
		return nil, err
	}

	hs := protocol.Handshake{
		ProtocolVersion: protocol.VersionProtocol,
		ServerAddress:   t.Addr,
		ServerPort:      t.Port,
		NextState:       2,
	}
	if err := writePacket(conn, hs); err != nil {
		conn.Close()
		return nil, err
	}
	start := protocol.LoginStart{Name: name, HasUUID: hasUUID, UUID: id}
	if err := writePacket(conn, start); err != nil {
		conn.Close()
		return nil, err
	}

	payload, err := conn.ReadFrame()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("backend: read login success: %w", err)
	}
	body, err := protocol.Expect(payload, protocol.IDLoginSuccessCB)
	if err != nil {
		conn.Close()
		return nil, err
	}
	success, err := protocol.DecodeLoginSuccess(body)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &LoginSession{Conn: conn, Success: success}, nil
}

type encoder interface {
	Encode() ([]byte, error)
}

func writePacket(conn *framing.Conn, p encoder) error {
	payload, err := p.Encode()
	if err != nil {
		return err
	}
	return conn.WriteFrame(payload)
}
