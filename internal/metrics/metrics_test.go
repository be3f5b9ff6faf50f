package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecorderHandlerOutput(t *testing.T) {
	r := New()
	r.ConnectionAccepted("survival", "1.2.3.4:5")
	r.ConnectionAccepted("survival", "1.2.3.4:6")
	r.ConnectionClosed("survival", "1.2.3.4:5")
	r.LoginResult("survival", "Steve", true, "")
	r.LoginResult("survival", "Eve", false, "not whitelisted")
	r.BytesRelayed("survival", 100, 250)
	r.BytesRelayed("survival", 50, 25)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	r.handler(w, req)

	body := w.Body.String()
	cases := []string{
		`mcproxy_connections_accepted_total{listener="survival"} 2`,
		`mcproxy_connections_closed_total{listener="survival"} 1`,
		`mcproxy_logins_allowed_total{listener="survival"} 1`,
		`mcproxy_logins_denied_total{listener="survival"} 1`,
		`mcproxy_relay_bytes_to_backend_total{listener="survival"} 150`,
		`mcproxy_relay_bytes_to_client_total{listener="survival"} 275`,
	}
	for _, want := range cases {
		if !strings.Contains(body, want) {
			t.Fatalf("output missing %q; got:\n%s", want, body)
		}
	}
}
