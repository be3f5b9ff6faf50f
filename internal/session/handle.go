package session

import (
	"context"
	"encoding/json"
	"log"
	"net"

	"mc-reverse-proxy/internal/framing"
	"mc-reverse-proxy/internal/protocol"
)

// legacyPingByte is the pre-framing legacy ping trigger.
const legacyPingByte = 0xFE

type encodable interface {
	Encode() ([]byte, error)
}

func writePacket(conn *framing.Conn, p encodable) error {
	payload, err := p.Encode()
	if err != nil {
		return err
	}
	return conn.WriteFrame(payload)
}

func chatText(s string) string {
	b, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: s})
	if err != nil {
		// s is always a Go string; json.Marshal of a struct{Text string}
		// cannot fail, but fall back to a syntactically valid component.
		return `{"text":""}`
	}
	return string(b)
}

func sendDisconnect(conn *framing.Conn, reason string) {
	if err := writePacket(conn, protocol.Disconnect{Reason: chatText(reason)}); err != nil {
		log.Printf("session: failed to send disconnect: %v", err)
	}
}

// HandleConnection runs the full PreHandshake -> {LegacyStatus, Status,
// Login -> Play} state machine for one accepted client connection. It
// owns raw for the connection's lifetime and closes it on every exit
// path except the handoff into play relay, which owns the split halves
// instead.
func HandleConnection(ctx context.Context, raw net.Conn, info *ProxyInfo) {
	remote := raw.RemoteAddr().String()
	if info.Events != nil {
		info.Events.ConnectionAccepted(info.Name, remote)
	}
	defer func() {
		if info.Events != nil {
			info.Events.ConnectionClosed(info.Name, remote)
		}
	}()

	conn := framing.New(raw)

	first, err := conn.PeekByte()
	if err != nil {
		conn.Close()
		return
	}
	if first == legacyPingByte {
		if err := respondLegacyStatus(conn); err != nil {
			log.Printf("session[%s]: legacy status error: %v", info.Name, err)
		}
		conn.Close()
		return
	}

	payload, err := conn.ReadFrame()
	if err != nil {
		conn.Close()
		return
	}
	body, err := protocol.Expect(payload, protocol.IDHandshake)
	if err != nil {
		conn.Close()
		return
	}
	hs, err := protocol.DecodeHandshake(body)
	if err != nil {
		conn.Close()
		return
	}

	switch hs.NextState {
	case 1:
		handleStatus(ctx, conn, info)
		conn.Close()
	case 2:
		// handleLogin owns conn's lifetime past this point: on success it
		// splits conn into the play relay, which closes both halves; on
		// any other exit it closes conn itself.
		handleLogin(ctx, conn, info, hs)
	default:
		conn.Close()
	}
}
