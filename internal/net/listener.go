// Package net implements the network listener: HTTP routing for the
// websocket upgrade and health endpoints, generalizing the teacher's
// server.Server (server/server.go), which mounted "/" and "/ws" on the
// default mux directly. A gorilla/mux router replaces that default mux so
// routes stay explicit and independently testable.
package net

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"arenasrv/internal/log"
	"arenasrv/internal/session"
)

// Listener accepts websocket connections and wires each one into a
// session.Manager for the simulation to pick up on its next tick.
type Listener struct {
	addr     string
	sessions *session.Manager
	router   *mux.Router
	server   *http.Server
}

// NewListener builds a Listener bound to addr that feeds newly accepted
// connections into sessions.
func NewListener(addr string, sessions *session.Manager) *Listener {
	l := &Listener{
		addr:     addr,
		sessions: sessions,
		router:   mux.NewRouter(),
	}
	l.router.HandleFunc("/ws", l.serveWebsocket)
	l.router.HandleFunc("/health", l.serveHealth)
	l.server = &http.Server{Addr: addr, Handler: l.router}
	return l
}

// serveHealth always returns 200 OK with an empty body.
func (l *Listener) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ListenAndServe blocks, serving until the listener is shut down or a fatal
// bind error occurs.
func (l *Listener) ListenAndServe() error {
	log.Infof("net: listening on %s", l.addr)
	return l.server.ListenAndServe()
}

// Shutdown gracefully stops accepting connections.
func (l *Listener) Shutdown(ctx context.Context) error {
	return l.server.Shutdown(ctx)
}
