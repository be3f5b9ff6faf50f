package session

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"mc-reverse-proxy/internal/cipher"
	"mc-reverse-proxy/internal/framing"
	"mc-reverse-proxy/internal/protocol"
	"mc-reverse-proxy/internal/relay"
	"mc-reverse-proxy/internal/whitelist"
)

// handleLogin drives the login phase end to end. It always closes conn
// itself except on the final success path, where ownership passes to the
// play relay via Split.
func handleLogin(ctx context.Context, conn *framing.Conn, info *ProxyInfo, hs protocol.Handshake) {
	switch {
	case hs.ProtocolVersion < protocol.VersionProtocol:
		sendDisconnect(conn, fmt.Sprintf("Client Error: Outdated Version (I'm on %s)", protocol.VersionName))
		conn.Close()
		return
	case hs.ProtocolVersion > protocol.VersionProtocol:
		sendDisconnect(conn, fmt.Sprintf("Client Error: Future Version (I'm on %s)", protocol.VersionName))
		conn.Close()
		return
	}

	payload, err := conn.ReadFrame()
	if err != nil {
		conn.Close()
		return
	}
	body, err := protocol.Expect(payload, protocol.IDLoginStartSB)
	if err != nil {
		conn.Close()
		return
	}
	start, err := protocol.DecodeLoginStart(body)
	if err != nil {
		conn.Close()
		return
	}

	if info.OnlineStatus == OnlineStatusOnline {
		if _, err := runEncryption(conn, info, start.Name); err != nil {
			log.Printf("session[%s]: encryption handshake failed for %q: %v", info.Name, start.Name, err)
			sendDisconnect(conn, authenticationFailedText)
			conn.Close()
			return
		}
	}

	player := whitelist.Player{Name: start.Name, HasUUID: start.HasUUID, UUID: start.UUID}
	decision := info.Whitelist.Check(player)
	if info.Events != nil {
		info.Events.LoginResult(info.Name, start.Name, decision.Allowed, decision.Reason)
	}
	if !decision.Allowed {
		sendDisconnect(conn, decision.Reason)
		conn.Close()
		return
	}

	backendSession, err := info.Backend.LoginReplay(ctx, start.Name, start.HasUUID, start.UUID)
	if err != nil {
		log.Printf("session[%s]: backend login failed: %v", info.Name, err)
		sendDisconnect(conn, backendDownDisconnectText)
		conn.Close()
		return
	}

	if err := writePacket(conn, backendSession.Success); err != nil {
		conn.Close()
		backendSession.Conn.Close()
		return
	}

	clientRead, clientWrite := conn.Split()
	backendRead, backendWrite := backendSession.Conn.Split()
	counts := relay.Play(clientRead, clientWrite, backendRead, backendWrite)
	if info.Events != nil {
		info.Events.BytesRelayed(info.Name, counts.ToBackend, counts.ToClient)
	}
}

// runEncryption drives the encryption subprotocol on the client leg:
// issue EncryptionRequest, validate the verify token round-trip, install
// the AES/CFB8 cipher, and (if configured) attest with the session
// server. Returns the shared secret on success.
func runEncryption(conn *framing.Conn, info *ProxyInfo, name string) ([]byte, error) {
	token, err := cipher.GenerateVerifyToken()
	if err != nil {
		return nil, err
	}

	req := protocol.EncryptionRequest{
		ServerID:    "",
		PublicKey:   info.Keys.PublicDER,
		VerifyToken: token,
	}
	if err := writePacket(conn, req); err != nil {
		return nil, err
	}

	payload, err := conn.ReadFrame()
	if err != nil {
		return nil, err
	}
	body, err := protocol.Expect(payload, protocol.IDEncryptionResponseSB)
	if err != nil {
		return nil, err
	}
	resp, err := protocol.DecodeEncryptionResponse(body)
	if err != nil {
		return nil, err
	}

	sharedSecret, err := info.Keys.DecryptPKCS1v15(resp.EncryptedSharedSecret)
	if err != nil {
		return nil, fmt.Errorf("decrypt shared secret: %w", err)
	}
	gotToken, err := info.Keys.DecryptPKCS1v15(resp.EncryptedVerifyToken)
	if err != nil {
		return nil, fmt.Errorf("decrypt verify token: %w", err)
	}
	if !bytes.Equal(gotToken, token) {
		return nil, fmt.Errorf("encryption mismatch: verify token does not match")
	}

	encrypt, decrypt, err := cipher.NewClientCipherPair(sharedSecret)
	if err != nil {
		return nil, err
	}
	conn.InstallCipher(encrypt, decrypt)

	if info.AuthMethod == AuthSessionServer && info.SessionAuth != nil {
		hash := cipher.ServerIDHash("", sharedSecret, info.Keys.PublicDER)
		ok, err := info.SessionAuth.HasJoined(name, hash)
		if err != nil || !ok {
			return nil, fmt.Errorf("session server attestation failed for %q", name)
		}
	}

	return sharedSecret, nil
}
