// Package metrics is a hand-rolled Prometheus text exporter, matching the
// teacher's own metrics.go rather than pulling in client_golang: a
// mutex-guarded set of counter maps and a /metrics HTTP handler
// that formats them directly.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// Recorder tracks proxy-relevant counters: connections accepted, logins
// allowed and denied, connections closed, and relay bytes moved in each
// direction, labeled per listener only; the denial reason is not
// recorded. It implements session.EventSink by structural typing.
type Recorder struct {
	mu sync.Mutex

	connectionsAccepted map[string]int64
	connectionsClosed   map[string]int64
	loginsAllowed       map[string]int64
	loginsDenied        map[string]int64
	bytesToBackend      map[string]int64
	bytesToClient       map[string]int64
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{
		connectionsAccepted: map[string]int64{},
		connectionsClosed:   map[string]int64{},
		loginsAllowed:       map[string]int64{},
		loginsDenied:        map[string]int64{},
		bytesToBackend:      map[string]int64{},
		bytesToClient:       map[string]int64{},
	}
}

// ConnectionAccepted implements session.EventSink.
func (r *Recorder) ConnectionAccepted(listenerName, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectionsAccepted[listenerName]++
}

// ConnectionClosed implements session.EventSink.
func (r *Recorder) ConnectionClosed(listenerName, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectionsClosed[listenerName]++
}

// LoginResult implements session.EventSink.
func (r *Recorder) LoginResult(listenerName, _ string, allowed bool, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if allowed {
		r.loginsAllowed[listenerName]++
	} else {
		r.loginsDenied[listenerName]++
	}
}

// BytesRelayed implements session.EventSink.
func (r *Recorder) BytesRelayed(listenerName string, clientToBackend, backendToClient int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bytesToBackend[listenerName] += clientToBackend
	r.bytesToClient[listenerName] += backendToClient
}

// StartServer runs a /metrics HTTP server until ctx is cancelled.
func (r *Recorder) StartServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", r.handler)
	srv := &http.Server{Addr: addr, Handler: mux}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (r *Recorder) handler(w http.ResponseWriter, _ *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	writeCounterVec(&b, "mcproxy_connections_accepted_total", r.connectionsAccepted)
	writeCounterVec(&b, "mcproxy_connections_closed_total", r.connectionsClosed)
	writeCounterVec(&b, "mcproxy_logins_allowed_total", r.loginsAllowed)
	writeCounterVec(&b, "mcproxy_logins_denied_total", r.loginsDenied)
	writeCounterVec(&b, "mcproxy_relay_bytes_to_backend_total", r.bytesToBackend)
	writeCounterVec(&b, "mcproxy_relay_bytes_to_client_total", r.bytesToClient)
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.Write([]byte(b.String()))
}

func writeCounterVec(b *strings.Builder, name string, vec map[string]int64) {
	fmt.Fprintf(b, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(vec))
	for k := range vec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "%s{listener=%q} %d\n", name, k, vec[k])
	}
}
