package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/tiggercwh/go-dejavu/analysis"
	"github.com/tiggercwh/go-dejavu/gameModel"
	"github.com/tiggercwh/go-dejavu/protocol"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	readLimit    = 1 << 16
	sendBuffer   = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// For dev, allow all origins, same as the REST API's CORS policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// subscriber owns the write side of one websocket. Only writePump writes.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
	done chan struct{}
}

func newSubscriber(conn *websocket.Conn) *subscriber {
	return &subscriber{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// offer queues b without blocking. It reports false when the buffer is full.
func (s *subscriber) offer(b []byte) bool {
	select {
	case <-s.done:
		return true
	default:
	}
	select {
	case s.send <- b:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()
	for {
		select {
		case b := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (gs *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s, exists := gs.getGame(mux.Vars(r)["gameID"])
	if !exists {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		gs.logger.Printf("game %s: upgrade: %v", s.id, err)
		return
	}

	sub := newSubscriber(conn)
	s.subscribe(sub)
	go sub.writePump()
	defer s.unsubscribe(sub)

	if b, err := protocol.Encode(protocol.MsgState, s.gameState()); err == nil {
		sub.offer(b)
	}

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				gs.logger.Printf("game %s: read: %v", s.id, err)
			}
			return
		}
		s.touch()
		if reason := gs.dispatch(s, msg); reason != "" {
			if b, err := protocol.Encode(protocol.MsgError, gameModel.ErrorPayload{Message: reason}); err == nil {
				sub.offer(b)
			}
		}
	}
}

// dispatch applies one client envelope to the board. Accepted actions reach
// every subscriber through the controller listener; the returned reason is
// only for the sender and is empty on success.
func (gs *GameServer) dispatch(s *session, msg []byte) string {
	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		return err.Error()
	}
	switch env.T {
	case protocol.MsgAdd:
		req, err := protocol.DecodePayload[gameModel.AddPointRequest](env)
		if err != nil {
			return err.Error()
		}
		if _, ok := s.ctrl.AddPoint(req.X, req.Y); !ok {
			return msgAddRejected
		}
	case protocol.MsgRemove:
		req, err := protocol.DecodePayload[gameModel.RemovePointRequest](env)
		if err != nil {
			return err.Error()
		}
		if !s.ctrl.RemovePoint(req.ID) {
			return msgRemoveRejected
		}
	case protocol.MsgEndgame:
		if !endgame(s) {
			return msgEndgameRejected
		}
	case protocol.MsgUndo:
		if !s.ctrl.Undo() {
			return msgUndoRejected
		}
	case protocol.MsgReset:
		if !s.ctrl.Reset() {
			return msgResetRejected
		}
	case protocol.MsgMode:
		req, err := protocol.DecodePayload[gameModel.ModeRequest](env)
		if err != nil {
			return err.Error()
		}
		mode, err := analysis.ParseMode(req.Mode)
		if err != nil {
			return err.Error()
		}
		if !s.ctrl.SetMode(mode) {
			return msgModeRejected
		}
	default:
		return "unknown message type " + env.T
	}
	return ""
}
