package protocol

import (
	"testing"

	"github.com/google/uuid"
)

func TestHandshakeRoundTrip(t *testing.T) {
	h := Handshake{ProtocolVersion: VersionProtocol, ServerAddress: "play.example.com", ServerPort: 25565, NextState: 2}
	frame, err := h.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	body, err := Expect(frame, IDHandshake)
	if err != nil {
		t.Fatalf("expect: %v", err)
	}
	got, err := DecodeHandshake(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, h)
	}
}

func TestLoginStartRoundTrip(t *testing.T) {
	id := uuid.New()
	cases := []LoginStart{
		{Name: "Steve", HasUUID: false},
		{Name: "Alex", HasUUID: true, UUID: id},
	}
	for _, l := range cases {
		frame, err := l.Encode()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		body, err := Expect(frame, IDLoginStartSB)
		if err != nil {
			t.Fatalf("expect: %v", err)
		}
		got, err := DecodeLoginStart(body)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Name != l.Name || got.HasUUID != l.HasUUID {
			t.Fatalf("round trip mismatch: got %+v want %+v", got, l)
		}
		if l.HasUUID && got.UUID != l.UUID {
			t.Fatalf("uuid mismatch: got %v want %v", got.UUID, l.UUID)
		}
	}
}

func TestLoginSuccessRoundTrip(t *testing.T) {
	l := LoginSuccess{
		UUID:     uuid.New(),
		Username: "Notch",
		Properties: []Property{
			{Name: "textures", Value: "base64blob", HasSignature: true, Signature: "sig"},
			{Name: "plain", Value: "v", HasSignature: false},
		},
	}
	frame, err := l.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	body, err := Expect(frame, IDLoginSuccessCB)
	if err != nil {
		t.Fatalf("expect: %v", err)
	}
	got, err := DecodeLoginSuccess(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.UUID != l.UUID || got.Username != l.Username || len(got.Properties) != len(l.Properties) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, l)
	}
	for i := range got.Properties {
		if got.Properties[i] != l.Properties[i] {
			t.Fatalf("property %d mismatch: got %+v want %+v", i, got.Properties[i], l.Properties[i])
		}
	}
}

func TestExpectWrongID(t *testing.T) {
	frame, _ := StatusRequest{}.Encode()
	if _, err := Expect(frame, IDStatusPingSB); err != ErrInvalidPacket {
		t.Fatalf("expected ErrInvalidPacket, got %v", err)
	}
}

func TestStatusPingPongRoundTrip(t *testing.T) {
	ping := StatusPing{Payload: 123456789}
	frame, err := ping.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	body, err := Expect(frame, IDStatusPingSB)
	if err != nil {
		t.Fatalf("expect: %v", err)
	}
	got, err := DecodeStatusPing(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Payload != ping.Payload {
		t.Fatalf("payload mismatch: got %d want %d", got.Payload, ping.Payload)
	}
}
