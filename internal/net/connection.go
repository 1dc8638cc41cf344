package net

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"arenasrv/internal/log"
	"arenasrv/internal/protocol"
	"arenasrv/internal/session"
)

// Timing constants mirror the teacher's server/server.go websocket loop,
// generalized to this protocol's 30-second heartbeat cadence.
const (
	writeWait        = 1 * time.Second
	pongWait         = 30 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	closeGracePeriod = 5 * time.Second
)

var upgrader = websocket.Upgrader{}

// serveWebsocket upgrades the connection and, on success, hands it to the
// session layer: a fresh session is queued for the simulation to spawn, and
// three cooperating goroutines (reader, writer, pinger) service it until
// disconnect: one reader task and one writer task per session.
func (l *Listener) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("net: upgrade failed: %v", err)
		return
	}

	sess := session.New()
	if !l.sessions.RequestJoin(sess) {
		_ = ws.Close()
		return
	}

	l.serviceConnection(sess, ws)
}

// serviceConnection runs until the connection is torn down for any reason,
// then closes the socket. It never touches world or session-manager state
// directly: all simulation-visible effects flow through sess's queues and
// atomics.
func (l *Listener) serviceConnection(sess *session.Session, ws *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ws.SetReadLimit(protocol.MaxFrameSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		sess.Touch()
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.readLoop(gctx, sess, ws) })
	g.Go(func() error { return l.writeLoop(gctx, sess, ws) })
	g.Go(func() error { return l.pingLoop(gctx, sess, ws) })

	// readLoop blocks inside ws.ReadMessage with no direct view of gctx;
	// forcing the read deadline to expire is what actually unblocks it once
	// the writer or pinger decides the connection is done.
	go func() {
		<-gctx.Done()
		_ = ws.SetReadDeadline(time.Now())
	}()

	if err := g.Wait(); err != nil {
		log.Debugf("net: session %s closed: %v", sess.CorrelationID, err)
	}
	if sess.TerminationReason() == "" {
		sess.Terminate(session.ReasonTransportClosed)
	}
	l.closeWebsocket(ws)
}

// readLoop blocks on ReadMessage, translating recognized frames into
// session commands and discarding unrecognized ones without closing the
// connection, except oversized frames, which terminate the session as a
// protocol violation — the size cutoff is enforced upstream by
// ws.SetReadLimit.
func (l *Listener) readLoop(ctx context.Context, sess *session.Session, ws *websocket.Conn) error {
	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			if isClosure(err) {
				return nil
			}
			if errors.Is(err, websocket.ErrReadLimit) {
				sess.Terminate(session.ReasonProtocolViolation)
			}
			return err
		}

		cmd, err := protocol.ParseCommand(frame)
		if err != nil {
			log.Debugf("net: session %s malformed frame: %v", sess.CorrelationID, err)
			continue
		}

		sess.Touch()
		sess.Commands.Push(cmd)

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// writeLoop drains the session's outbound sink and writes each message as a
// text frame.
func (l *Listener) writeLoop(ctx context.Context, sess *session.Session, ws *websocket.Conn) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sess.Outbound.Receive():
			if !ok {
				return nil
			}
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}
			if err := ws.WriteJSON(msg); err != nil {
				return err
			}
		}
	}
}

// pingLoop sends periodic control pings, following the same pattern as the
// teacher's server/server.go publishEleUpdates ping/pong handling.
func (l *Listener) pingLoop(ctx context.Context, sess *session.Session, ws *websocket.Conn) error {
	ticks := channerics.NewTicker(ctx.Done(), pingPeriod)
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
			if sess.Expired(time.Now()) {
				sess.Terminate(session.ReasonHeartbeatTimeout)
				return nil
			}
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

func (l *Listener) closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	_ = ws.Close()
}

func isClosure(err error) bool {
	return err != nil && websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
