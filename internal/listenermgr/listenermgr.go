// Package listenermgr owns the accept loop and lifecycle for a single
// configured listener: start, stop, and a live status snapshot. Each
// instance owns one inbound listening socket and fans accepted
// connections out into internal/session.
package listenermgr

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"mc-reverse-proxy/internal/session"
)

// Status is a point-in-time snapshot of a listener's lifecycle state.
type Status struct {
	Name              string
	State             string // "stopped" | "listening" | "failed"
	Addr              string
	StartTime         time.Time
	ConnectionsActive int64
	ConnectionsTotal  int64
	BytesUp           int64 // client -> backend, summed across every closed play relay
	BytesDown         int64 // backend -> client, summed across every closed play relay
	LastError         error
}

// Manager runs the accept loop for one ProxyInfo/listen address pair.
type Manager struct {
	name string
	addr string
	info *session.ProxyInfo

	mu     sync.RWMutex
	status Status

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New returns a Manager for the given listen address, not yet started. It
// wraps info.Events so the listener's own byte totals stay in sync with
// whatever other sinks (metrics, admin feed) the caller already wired in.
func New(name, addr string, info *session.ProxyInfo) *Manager {
	m := &Manager{
		name: name,
		addr: addr,
		info: info,
		status: Status{
			Name:  name,
			State: "stopped",
			Addr:  addr,
		},
	}
	info.Events = &byteTrackingSink{inner: info.Events, m: m}
	return m
}

// byteTrackingSink forwards every event to the original sink unchanged
// and additionally folds BytesRelayed totals into the owning Manager's
// status snapshot.
type byteTrackingSink struct {
	inner session.EventSink
	m     *Manager
}

func (s *byteTrackingSink) ConnectionAccepted(listenerName, remoteAddr string) {
	if s.inner != nil {
		s.inner.ConnectionAccepted(listenerName, remoteAddr)
	}
}

func (s *byteTrackingSink) LoginResult(listenerName, name string, allowed bool, reason string) {
	if s.inner != nil {
		s.inner.LoginResult(listenerName, name, allowed, reason)
	}
}

func (s *byteTrackingSink) BytesRelayed(listenerName string, clientToBackend, backendToClient int64) {
	s.m.mu.Lock()
	s.m.status.BytesUp += clientToBackend
	s.m.status.BytesDown += backendToClient
	s.m.mu.Unlock()
	if s.inner != nil {
		s.inner.BytesRelayed(listenerName, clientToBackend, backendToClient)
	}
}

func (s *byteTrackingSink) ConnectionClosed(listenerName, remoteAddr string) {
	if s.inner != nil {
		s.inner.ConnectionClosed(listenerName, remoteAddr)
	}
}

// Start opens the listening socket and begins accepting connections in
// the background. It returns once the socket is bound; accept failures
// afterward are logged and retried, never panicking the caller.
func (m *Manager) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", m.addr)
	if err != nil {
		m.mu.Lock()
		m.status.State = "failed"
		m.status.LastError = err
		m.mu.Unlock()
		return fmt.Errorf("listenermgr[%s]: listen %s: %w", m.name, m.addr, err)
	}

	m.mu.Lock()
	m.status.State = "listening"
	m.status.StartTime = time.Now()
	m.status.LastError = nil
	m.mu.Unlock()

	m.stopChan = make(chan struct{})
	m.wg.Add(1)
	go m.acceptLoop(ctx, ln)
	return nil
}

func (m *Manager) acceptLoop(ctx context.Context, ln net.Listener) {
	defer m.wg.Done()
	defer ln.Close()

	go func() {
		select {
		case <-m.stopChan:
			ln.Close()
		case <-ctx.Done():
			ln.Close()
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-m.stopChan:
				return
			case <-ctx.Done():
				return
			default:
			}
			log.Printf("listenermgr[%s]: accept error: %v", m.name, err)
			time.Sleep(100 * time.Millisecond)
			continue
		}

		m.mu.Lock()
		m.status.ConnectionsActive++
		m.status.ConnectionsTotal++
		m.mu.Unlock()

		go func() {
			defer func() {
				m.mu.Lock()
				m.status.ConnectionsActive--
				m.mu.Unlock()
			}()
			session.HandleConnection(ctx, conn, m.info)
		}()
	}
}

// Stop closes the listening socket; in-flight connections finish on
// their own.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.status.State != "listening" {
		m.mu.Unlock()
		return
	}
	m.status.State = "stopped"
	m.mu.Unlock()

	close(m.stopChan)
	m.wg.Wait()
}

// Status returns a copy of the current lifecycle snapshot.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}
