package protocol

import "github.com/google/uuid"

// Phase identifies which packet-id namespace applies to a connection.
type Phase int

const (
	PhaseHandshake Phase = iota
	PhaseStatus
	PhaseLogin
	PhasePlay
)

// Direction distinguishes client->server from server->client packets;
// each has its own id namespace per phase.
type Direction int

const (
	Serverbound Direction = iota
	Clientbound
)

// Packet ids. Play phase ids are never interpreted by the proxy.
const (
	IDHandshake = 0

	IDStatusRequestSB = 0
	IDStatusPingSB    = 1
	IDStatusResponseCB = 0
	IDStatusPongCB    = 1

	IDLoginStartSB         = 0
	IDEncryptionResponseSB = 1
	IDDisconnectCB         = 0
	IDEncryptionRequestCB  = 1
	IDLoginSuccessCB       = 2
)

// SplitID extracts the leading VarInt packet id from a frame payload,
// returning the id and the remaining field bytes.
func SplitID(payload []byte) (id int32, rest []byte, err error) {
	d := NewDecoder(payload)
	id = d.VarInt()
	if err = d.Err(); err != nil {
		return 0, nil, err
	}
	return id, payload[len(payload)-d.r.Len():], nil
}

// Expect splits the leading id off payload and verifies it matches want,
// returning the remaining field bytes. Used by dispatch-by-id call sites
// that already know which single packet they're expecting.
func Expect(payload []byte, want int32) ([]byte, error) {
	got, rest, err := SplitID(payload)
	if err != nil {
		return nil, err
	}
	if got != want {
		return nil, ErrInvalidPacket
	}
	return rest, nil
}

func encodeWithID(id int32, fields *Encoder) ([]byte, error) {
	body, err := fields.Bytes()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+1)
	out = PutVarInt(out, id)
	out = append(out, body...)
	return out, nil
}

// Handshake is the single handshake-phase serverbound packet.
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       int32
}

// Encode serializes the handshake packet, id included.
func (h Handshake) Encode() ([]byte, error) {
	e := NewEncoder().VarInt(h.ProtocolVersion).String(h.ServerAddress).U16(h.ServerPort).VarInt(h.NextState)
	return encodeWithID(IDHandshake, e)
}

// DecodeHandshake parses the field body of a handshake packet (id already
// stripped).
func DecodeHandshake(body []byte) (Handshake, error) {
	d := NewDecoder(body)
	h := Handshake{
		ProtocolVersion: d.VarInt(),
		ServerAddress:   d.String(),
		ServerPort:      d.U16(),
		NextState:       d.VarInt(),
	}
	return h, d.Err()
}

// StatusRequest is the status-phase serverbound id 0 packet (no fields).
type StatusRequest struct{}

// Encode serializes the status request.
func (StatusRequest) Encode() ([]byte, error) {
	return encodeWithID(IDStatusRequestSB, NewEncoder())
}

// StatusPing is the status-phase serverbound ping, echoed as StatusPong.
type StatusPing struct{ Payload int64 }

// Encode serializes the ping packet.
func (p StatusPing) Encode() ([]byte, error) {
	return encodeWithID(IDStatusPingSB, NewEncoder().I64(p.Payload))
}

// DecodeStatusPing parses a ping field body.
func DecodeStatusPing(body []byte) (StatusPing, error) {
	d := NewDecoder(body)
	p := StatusPing{Payload: d.I64()}
	return p, d.Err()
}

// StatusResponse carries the status JSON document as a single string.
type StatusResponse struct{ JSON string }

// Encode serializes the status response.
func (r StatusResponse) Encode() ([]byte, error) {
	return encodeWithID(IDStatusResponseCB, NewEncoder().String(r.JSON))
}

// DecodeStatusResponse parses a status response field body.
func DecodeStatusResponse(body []byte) (StatusResponse, error) {
	d := NewDecoder(body)
	r := StatusResponse{JSON: d.String()}
	return r, d.Err()
}

// StatusPong mirrors StatusPing's payload back to the client.
type StatusPong struct{ Payload int64 }

// Encode serializes the pong packet.
func (p StatusPong) Encode() ([]byte, error) {
	return encodeWithID(IDStatusPongCB, NewEncoder().I64(p.Payload))
}

// LoginStart begins the login sequence with a display name and an
// optional client-supplied UUID.
type LoginStart struct {
	Name    string
	HasUUID bool
	UUID    uuid.UUID
}

// Encode serializes the login-start packet.
func (l LoginStart) Encode() ([]byte, error) {
	e := NewEncoder().String(l.Name).Bool(l.HasUUID)
	if l.HasUUID {
		e = e.UUID(l.UUID)
	}
	return encodeWithID(IDLoginStartSB, e)
}

// DecodeLoginStart parses a login-start field body.
func DecodeLoginStart(body []byte) (LoginStart, error) {
	d := NewDecoder(body)
	l := LoginStart{Name: d.String(), HasUUID: d.Bool()}
	if l.HasUUID {
		l.UUID = d.UUID()
	}
	return l, d.Err()
}

// EncryptionRequest is sent by the proxy to begin the encryption
// handshake, carrying the DER-encoded RSA public key and a verify token.
type EncryptionRequest struct {
	ServerID    string
	PublicKey   []byte
	VerifyToken []byte
}

// Encode serializes the encryption-request packet.
func (r EncryptionRequest) Encode() ([]byte, error) {
	e := NewEncoder().String(r.ServerID).RawBytes(r.PublicKey).RawBytes(r.VerifyToken)
	return encodeWithID(IDEncryptionRequestCB, e)
}

// DecodeEncryptionRequest parses an encryption-request field body.
func DecodeEncryptionRequest(body []byte) (EncryptionRequest, error) {
	d := NewDecoder(body)
	r := EncryptionRequest{
		ServerID:    d.String(),
		PublicKey:   d.Bytes(),
		VerifyToken: d.Bytes(),
	}
	return r, d.Err()
}

// EncryptionResponse carries the client's RSA-encrypted shared secret and
// verify token.
type EncryptionResponse struct {
	EncryptedSharedSecret []byte
	EncryptedVerifyToken  []byte
}

// Encode serializes the encryption-response packet.
func (r EncryptionResponse) Encode() ([]byte, error) {
	e := NewEncoder().RawBytes(r.EncryptedSharedSecret).RawBytes(r.EncryptedVerifyToken)
	return encodeWithID(IDEncryptionResponseSB, e)
}

// DecodeEncryptionResponse parses an encryption-response field body.
func DecodeEncryptionResponse(body []byte) (EncryptionResponse, error) {
	d := NewDecoder(body)
	r := EncryptionResponse{
		EncryptedSharedSecret: d.Bytes(),
		EncryptedVerifyToken:  d.Bytes(),
	}
	return r, d.Err()
}

// Disconnect carries a JSON chat component explaining why the connection
// is being closed.
type Disconnect struct{ Reason string }

// Encode serializes the disconnect packet.
func (d Disconnect) Encode() ([]byte, error) {
	return encodeWithID(IDDisconnectCB, NewEncoder().String(d.Reason))
}

// DecodeDisconnect parses a disconnect field body.
func DecodeDisconnect(body []byte) (Disconnect, error) {
	dec := NewDecoder(body)
	out := Disconnect{Reason: dec.String()}
	return out, dec.Err()
}

// Property is a single login-success property entry (e.g. "textures").
type Property struct {
	Name         string
	Value        string
	HasSignature bool
	Signature    string
}

// LoginSuccess finalizes login, handing the client its authoritative
// UUID, username, and property set as assigned by the backend.
type LoginSuccess struct {
	UUID       uuid.UUID
	Username   string
	Properties []Property
}

// Encode serializes the login-success packet.
func (l LoginSuccess) Encode() ([]byte, error) {
	e := NewEncoder().UUID(l.UUID).String(l.Username).VarInt(int32(len(l.Properties)))
	for _, p := range l.Properties {
		e = e.String(p.Name).String(p.Value).Bool(p.HasSignature)
		if p.HasSignature {
			e = e.String(p.Signature)
		}
	}
	return encodeWithID(IDLoginSuccessCB, e)
}

// DecodeLoginSuccess parses a login-success field body.
func DecodeLoginSuccess(body []byte) (LoginSuccess, error) {
	d := NewDecoder(body)
	l := LoginSuccess{UUID: d.UUID(), Username: d.String()}
	count := d.VarInt()
	for i := int32(0); i < count && d.Err() == nil; i++ {
		p := Property{Name: d.String(), Value: d.String(), HasSignature: d.Bool()}
		if p.HasSignature {
			p.Signature = d.String()
		}
		l.Properties = append(l.Properties, p)
	}
	return l, d.Err()
}
