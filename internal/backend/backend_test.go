package backend

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"

	"mc-reverse-proxy/internal/framing"
	"mc-reverse-proxy/internal/protocol"
)

func startFakeBackend(t *testing.T, handle func(conn *framing.Conn)) Target {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		handle(framing.New(conn))
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return Target{Addr: "127.0.0.1", Port: uint16(addr.Port)}
}

func TestProbeStatusReturnsBackendJSON(t *testing.T) {
	target := startFakeBackend(t, func(conn *framing.Conn) {
		defer conn.Close()
		if _, err := conn.ReadFrame(); err != nil { // handshake
			return
		}
		if _, err := conn.ReadFrame(); err != nil { // status request
			return
		}
		resp, _ := protocol.StatusResponse{JSON: `{"players":{"online":3}}`}.Encode()
		conn.WriteFrame(resp)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := target.ProbeStatus(ctx)
	if err != nil {
		t.Fatalf("ProbeStatus: %v", err)
	}
	if result.RawJSON != `{"players":{"online":3}}` {
		t.Fatalf("got %q", result.RawJSON)
	}
}

func TestLoginReplaySendsHandshakeAndLoginStart(t *testing.T) {
	id := uuid.New()
	target := startFakeBackend(t, func(conn *framing.Conn) {
		defer conn.Close()

		hsFrame, err := conn.ReadFrame()
		if err != nil {
			return
		}
		hsBody, err := protocol.Expect(hsFrame, protocol.IDHandshake)
		if err != nil {
			return
		}
		hs, err := protocol.DecodeHandshake(hsBody)
		if err != nil || hs.NextState != 2 {
			return
		}

		lsFrame, err := conn.ReadFrame()
		if err != nil {
			return
		}
		lsBody, err := protocol.Expect(lsFrame, protocol.IDLoginStartSB)
		if err != nil {
			return
		}
		ls, err := protocol.DecodeLoginStart(lsBody)
		if err != nil || ls.Name != "Steve" {
			return
		}

		success := protocol.LoginSuccess{UUID: id, Username: "Steve"}
		frame, _ := success.Encode()
		conn.WriteFrame(frame)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	session, err := target.LoginReplay(ctx, "Steve", true, id)
	if err != nil {
		t.Fatalf("LoginReplay: %v", err)
	}
	defer session.Conn.Close()
	if session.Success.Username != "Steve" || session.Success.UUID != id {
		t.Fatalf("got %+v", session.Success)
	}
}
