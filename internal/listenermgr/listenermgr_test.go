package listenermgr

import (
	"context"
	"net"
	"testing"
	"time"

	"mc-reverse-proxy/internal/backend"
	"mc-reverse-proxy/internal/motd"
	"mc-reverse-proxy/internal/session"
	"mc-reverse-proxy/internal/whitelist"
)

func testInfo() *session.ProxyInfo {
	return &session.ProxyInfo{
		Name:         "test",
		Backend:      backend.Target{Addr: "127.0.0.1", Port: 1},
		OnlineStatus: session.OnlineStatusOffline,
		Whitelist:    whitelist.Open{},
		MOTD:         motd.NewCache("/nonexistent/motd.json"),
	}
}

func TestManagerStartAcceptsConnections(t *testing.T) {
	const addr = "127.0.0.1:18970"
	m := New("test", addr, testInfo())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := m.Status().State; got != "listening" {
		t.Fatalf("got state %q", got)
	}

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if m.Status().ConnectionsTotal >= 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := m.Status().ConnectionsTotal; got < 1 {
		t.Fatalf("expected at least 1 accepted connection, got %d", got)
	}

	m.Stop()
	if got := m.Status().State; got != "stopped" {
		t.Fatalf("got state %q after Stop", got)
	}

	// Stop is idempotent.
	m.Stop()

	if _, err := net.DialTimeout("tcp", addr, 200*time.Millisecond); err == nil {
		t.Fatalf("expected dial to fail after Stop")
	}
}

func TestManagerStartFailsOnBadAddr(t *testing.T) {
	m := New("test", "not-an-address", testInfo())
	if err := m.Start(context.Background()); err == nil {
		t.Fatalf("expected error for invalid listen address")
	}
	if got := m.Status().State; got != "failed" {
		t.Fatalf("got state %q", got)
	}
}
