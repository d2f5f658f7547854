// Package server exposes the backend session manager over HTTP: one
// websocket endpoint carrying the aeon event channels, and a health check.
package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"sketchbook/internal/aeon"
	"sketchbook/internal/session"
	"sketchbook/internal/transport"
)

const (
	bridgeWSWriteWait = 10 * time.Second
	bridgeWSPongWait  = 60 * time.Second
	bridgeWSPingEvery = (bridgeWSPongWait * 9) / 10
)

var bridgeWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// BridgeHandler serves the websocket side of the event bridge. Each
// connection owns one session: created on the hello handshake, dropped when
// the connection closes.
type BridgeHandler struct {
	manager *session.Manager
}

func NewBridgeHandler(manager *session.Manager) *BridgeHandler {
	return &BridgeHandler{manager: manager}
}

func (h *BridgeHandler) HandleBridgeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := bridgeWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(bridgeWSPongWait)); err != nil {
		log.Printf("bridge ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(bridgeWSPongWait))
	})

	// Handshake: the first frame must be a hello; the reply assigns the
	// session id embedded in everything the client sends afterwards.
	var hello transport.Frame
	if err := conn.ReadJSON(&hello); err != nil {
		return
	}
	if hello.Kind != transport.KindHello {
		log.Printf("bridge ws: expected hello, got %q", hello.Kind)
		return
	}
	sessionID := h.manager.Create()
	defer h.manager.Close(sessionID)

	writeCh := make(chan transport.Frame, 32)
	closed := make(chan struct{})
	defer close(closed)
	go func() {
		ticker := time.NewTicker(bridgeWSPingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-closed:
				return
			case frame := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(bridgeWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(frame); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(bridgeWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	pushBridgeWS(writeCh, transport.Frame{Kind: transport.KindSession, Session: sessionID})
	log.Printf("bridge ws: session %s connected", sessionID)

	for {
		var frame transport.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			log.Printf("bridge ws: session %s disconnected: %v", sessionID, err)
			return
		}
		if err := conn.SetReadDeadline(time.Now().Add(bridgeWSPongWait)); err != nil {
			return
		}

		var changes []aeon.Event
		var performErr error
		switch frame.Kind {
		case transport.KindAction:
			changes, performErr = h.manager.Perform(aeon.UserAction{
				Session: frame.Session,
				Events:  frame.Events,
			})
		case transport.KindRefresh:
			changes, performErr = h.manager.Refresh(aeon.RefreshRequest{
				Session: frame.Session,
				Path:    frame.Path,
			})
		default:
			log.Printf("bridge ws: unexpected frame %q from session %s", frame.Kind, sessionID)
			continue
		}

		if performErr != nil {
			log.Printf("bridge ws: session %s: %v", sessionID, performErr)
			pushBridgeWS(writeCh, transport.Frame{
				Kind:   transport.KindState,
				Events: []aeon.Event{transport.ErrorEvent(performErr.Error())},
			})
			continue
		}
		if len(changes) > 0 {
			pushBridgeWS(writeCh, transport.Frame{
				Kind:   transport.KindState,
				Events: changes,
			})
		}
	}
}

func pushBridgeWS(writeCh chan<- transport.Frame, frame transport.Frame) {
	select {
	case writeCh <- frame:
	default:
		log.Printf("bridge ws: write queue full, dropping %s frame", frame.Kind)
	}
}
