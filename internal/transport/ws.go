package transport

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"sketchbook/internal/aeon"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10

	writeQueueSize = 32
)

// WS is the websocket client transport. Dial performs the session handshake
// before returning, so the caller can construct the bridge with Session()
// immediately. Outbound frames go through a buffered queue serviced by a
// writer goroutine; inbound state batches are delivered on the reader
// goroutine through the subscribed receiver.
type WS struct {
	conn    *websocket.Conn
	session string
	writeCh chan Frame
	done    chan struct{}
	receive func(events []aeon.Event)
}

// Dial connects to a backend at url (ws:// or wss://), performs the
// handshake, and starts the writer and reader goroutines.
func Dial(ctx context.Context, url string) (*WS, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}

	if err := conn.WriteJSON(Frame{Kind: KindHello}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sending hello: %w", err)
	}
	var reply Frame
	if err := conn.ReadJSON(&reply); err != nil {
		conn.Close()
		return nil, fmt.Errorf("reading handshake reply: %w", err)
	}
	if reply.Kind != KindSession || reply.Session == "" {
		conn.Close()
		return nil, fmt.Errorf("unexpected handshake reply %q", reply.Kind)
	}

	t := &WS{
		conn:    conn,
		session: reply.Session,
		writeCh: make(chan Frame, writeQueueSize),
		done:    make(chan struct{}),
	}
	go t.writeLoop()
	go t.readLoop()
	return t, nil
}

// Session returns the identifier assigned by the backend handshake.
func (t *WS) Session() string {
	return t.session
}

// Subscribe installs the receiver for inbound state batches. Must be called
// before the first state frame is expected, i.e. before any action or
// refresh is sent.
func (t *WS) Subscribe(receive func(events []aeon.Event)) {
	t.receive = receive
}

// SendAction enqueues one user action frame.
func (t *WS) SendAction(action aeon.UserAction) error {
	return t.enqueue(Frame{
		Kind:    KindAction,
		Session: action.Session,
		Events:  action.Events,
	})
}

// SendRefresh enqueues one refresh request frame.
func (t *WS) SendRefresh(refresh aeon.RefreshRequest) error {
	return t.enqueue(Frame{
		Kind:    KindRefresh,
		Session: refresh.Session,
		Path:    refresh.Path,
	})
}

// Close tears the connection down; pending queued frames are dropped.
func (t *WS) Close() error {
	select {
	case <-t.done:
		return nil
	default:
	}
	close(t.done)
	return t.conn.Close()
}

func (t *WS) enqueue(frame Frame) error {
	select {
	case <-t.done:
		return fmt.Errorf("transport closed")
	case t.writeCh <- frame:
		return nil
	default:
		return fmt.Errorf("transport write queue full")
	}
}

func (t *WS) writeLoop() {
	ticker := time.NewTicker(wsPingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case frame := <-t.writeCh:
			if err := t.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}
			if err := t.conn.WriteJSON(frame); err != nil {
				log.Printf("transport: write failed: %v", err)
				return
			}
		case <-ticker.C:
			if err := t.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}
			if err := t.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (t *WS) readLoop() {
	if err := t.conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		return
	}
	t.conn.SetPongHandler(func(string) error {
		return t.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		var frame Frame
		if err := t.conn.ReadJSON(&frame); err != nil {
			select {
			case <-t.done:
			default:
				log.Printf("transport: connection lost: %v", err)
			}
			return
		}
		if err := t.conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
			return
		}
		if frame.Kind != KindState {
			log.Printf("transport: unexpected frame %q ignored", frame.Kind)
			continue
		}
		if t.receive != nil {
			t.receive(frame.Events)
		}
	}
}
