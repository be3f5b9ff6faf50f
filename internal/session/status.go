package session

import (
	"context"
	"encoding/json"
	"unicode/utf16"

	"mc-reverse-proxy/internal/framing"
	"mc-reverse-proxy/internal/motd"
	"mc-reverse-proxy/internal/protocol"
)

type statusVersion struct {
	Name     string `json:"name"`
	Protocol int32  `json:"protocol"`
}

type statusDescription struct {
	Text string `json:"text"`
}

type statusPlayers struct {
	Max    int64           `json:"max"`
	Online int64           `json:"online"`
	Sample json.RawMessage `json:"sample,omitempty"`
}

type statusResponseData struct {
	Version            statusVersion     `json:"version"`
	Description        statusDescription `json:"description"`
	Players            statusPlayers     `json:"players"`
	Favicon            string            `json:"favicon,omitempty"`
	EnforcesSecureChat bool              `json:"enforcesSecureChat"`
	PreviewsChat       bool              `json:"previewsChat"`
}

type upstreamStatus struct {
	Players struct {
		Online int64           `json:"online"`
		Sample json.RawMessage `json:"sample,omitempty"`
	} `json:"players"`
}

// handleStatus serves StatusResponse JSON, echoes Pong, and terminates
// on ping or any unrecognized packet.
func handleStatus(ctx context.Context, conn *framing.Conn, info *ProxyInfo) {
	for {
		payload, err := conn.ReadFrame()
		if err != nil {
			return
		}
		id, body, err := protocol.SplitID(payload)
		if err != nil {
			return
		}
		switch id {
		case protocol.IDStatusRequestSB:
			resp := buildStatusResponse(ctx, info)
			if err := writePacket(conn, resp); err != nil {
				return
			}
		case protocol.IDStatusPingSB:
			ping, err := protocol.DecodeStatusPing(body)
			if err != nil {
				return
			}
			writePacket(conn, protocol.StatusPong{Payload: ping.Payload})
			return
		default:
			return
		}
	}
}

func buildStatusResponse(ctx context.Context, info *ProxyInfo) protocol.StatusResponse {
	favicon := motd.Favicon(info.FaviconPath)

	result, err := info.Backend.ProbeStatus(ctx)
	if err == nil {
		var up upstreamStatus
		if jsonErr := json.Unmarshal([]byte(result.RawJSON), &up); jsonErr == nil {
			data := statusResponseData{
				Version: statusVersion{Name: protocol.VersionName, Protocol: protocol.VersionProtocol},
				Players: statusPlayers{Max: -13, Online: up.Players.Online, Sample: up.Players.Sample},
				Favicon: favicon,
			}
			data.Description.Text = info.MOTD.Text()
			if b, marshalErr := json.Marshal(data); marshalErr == nil {
				return protocol.StatusResponse{JSON: string(b)}
			}
		}
	}

	down := statusResponseData{
		Version: statusVersion{Name: "Old", Protocol: 0},
		Players: statusPlayers{Max: 0, Online: 0},
		Favicon: favicon,
	}
	down.Description.Text = backendDownPingText
	b, _ := json.Marshal(down)
	return protocol.StatusResponse{JSON: string(b)}
}

// legacyString is the literal pre-framing ping payload: version is the
// advertised protocol version string, the rest is fixed.
func legacyString() string {
	return "§1\x00127\x00" + protocol.VersionName + "\x00YTD Proxy§0§10"
}

// respondLegacyStatus implements the 0xFE legacy ping response: a single
// 0xFF byte, then a u16 true UTF-16 code-unit count, then that many
// UTF-16BE code units.
func respondLegacyStatus(conn *framing.Conn) error {
	units := utf16.Encode([]rune(legacyString()))

	out := make([]byte, 0, 3+2*len(units))
	out = append(out, 0xFF)
	out = append(out, byte(len(units)>>8), byte(len(units)))
	for _, u := range units {
		out = append(out, byte(u>>8), byte(u))
	}
	return conn.WriteRaw(out)
}
