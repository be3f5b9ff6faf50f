// Command mc-reverse-proxy runs one or more Minecraft-protocol-aware
// reverse proxy listeners from a YAML config file.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"mc-reverse-proxy/internal/backend"
	"mc-reverse-proxy/internal/cipher"
	"mc-reverse-proxy/internal/config"
	"mc-reverse-proxy/internal/listenermgr"
	"mc-reverse-proxy/internal/metrics"
	"mc-reverse-proxy/internal/motd"
	"mc-reverse-proxy/internal/sessionserver"

	adminpkg "mc-reverse-proxy/internal/admin"
	sessionpkg "mc-reverse-proxy/internal/session"
	whitelistpkg "mc-reverse-proxy/internal/whitelist"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "c", "config.yaml", "config path")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorder := metrics.New()
	hub := adminpkg.NewHub()
	sink := sessionpkg.Fanout{recorder, hub}

	if cfg.Metrics.Enable {
		go func() {
			if err := recorder.StartServer(ctx, cfg.Metrics.Addr); err != nil {
				log.Printf("metrics server stopped: %v", err)
			}
		}()
		log.Printf("metrics listening on %s", cfg.Metrics.Addr)
	}

	if cfg.Admin.Enable {
		mux := http.NewServeMux()
		mux.Handle("/events", hub)
		srv := &http.Server{Addr: cfg.Admin.Addr, Handler: mux}
		go func() {
			<-ctx.Done()
			srv.Close()
		}()
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("admin server stopped: %v", err)
			}
		}()
		log.Printf("admin feed listening on %s/events", cfg.Admin.Addr)
	}

	managers := make([]*listenermgr.Manager, 0, len(cfg.Listeners))
	for _, lc := range cfg.Listeners {
		info, err := buildProxyInfo(lc, sink)
		if err != nil {
			log.Fatalf("listener %q: %v", lc.Name, err)
		}

		m := listenermgr.New(lc.Name, lc.ListenAddr, info)
		if err := m.Start(ctx); err != nil {
			log.Fatalf("listener %q: %v", lc.Name, err)
		}
		log.Printf("listener %q: %s -> %s", lc.Name, lc.ListenAddr, lc.BackendHostPort())
		managers = append(managers, m)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Printf("shutting down...")
	cancel()
	for _, m := range managers {
		m.Stop()
	}
}

func buildProxyInfo(lc config.ListenerConfig, sink sessionpkg.EventSink) (*sessionpkg.ProxyInfo, error) {
	keys, err := cipher.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	var wl whitelistpkg.Policy
	if lc.Whitelist == "file" {
		wl = whitelistpkg.NewFileBacked(lc.WhitelistPath)
	} else {
		wl = whitelistpkg.Open{}
	}

	onlineStatus := sessionpkg.OnlineStatusOffline
	authMethod := sessionpkg.AuthNone
	var sessionAuth sessionpkg.SessionServerClient
	if lc.OnlineStatus == "online" {
		onlineStatus = sessionpkg.OnlineStatusOnline
		if lc.Auth == "session_server" {
			authMethod = sessionpkg.AuthSessionServer
			sessionAuth = sessionserver.New(lc.SessionServerURL)
		}
	}

	return &sessionpkg.ProxyInfo{
		Name:         lc.Name,
		Backend:      backend.New(lc.BackendAddr, lc.BackendPort),
		OnlineStatus: onlineStatus,
		AuthMethod:   authMethod,
		SessionAuth:  sessionAuth,
		Whitelist:    wl,
		Keys:         keys,
		MOTD:         motd.NewCache(lc.MOTDPath),
		FaviconPath:  lc.FaviconPath,
		Events:       sink,
	}, nil
}
