// Package hub implements the connection hub (SPEC_FULL §4.5): an
// in-process registry of live WebSocket connections grouped by room
// and by player within room, with fan-out and targeted send.
package hub

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Conn wraps a *websocket.Conn with its own write mutex. gorilla's
// Conn is not safe for concurrent writes from multiple goroutines;
// every send through the hub takes this lock, so a player's own
// dispatcher loop and a concurrent broadcast can never race on the
// same socket.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

// NewConn wraps ws for hub registration.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

func (c *Conn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

// Hub is the process-local room_code -> player_id -> connection set
// registry described by SPEC_FULL §4.5. The zero value is not usable;
// construct with New.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[string]map[*Conn]struct{}
}

// New constructs an empty Hub.
func New() *Hub {
	return &Hub{rooms: make(map[string]map[string]map[*Conn]struct{})}
}

// Connect registers conn under room and player.
func (h *Hub) Connect(conn *Conn, room, player string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	players, ok := h.rooms[room]
	if !ok {
		players = make(map[string]map[*Conn]struct{})
		h.rooms[room] = players
	}
	conns, ok := players[player]
	if !ok {
		conns = make(map[*Conn]struct{})
		players[player] = conns
	}
	conns[conn] = struct{}{}
}

// Disconnect removes conn from room. If player is empty, conn is
// removed from every player bucket in that room.
func (h *Hub) Disconnect(conn *Conn, room, player string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	players, ok := h.rooms[room]
	if !ok {
		return
	}

	if player != "" {
		if conns, ok := players[player]; ok {
			delete(conns, conn)
			if len(conns) == 0 {
				delete(players, player)
			}
		}
	} else {
		for p, conns := range players {
			delete(conns, conn)
			if len(conns) == 0 {
				delete(players, p)
			}
		}
	}

	if len(players) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast sends event to every connection registered in room.
// The target list is snapshotted under the lock, then sent outside
// it; any send error silently disconnects that connection from the
// room (SPEC_FULL §4.5).
func (h *Hub) Broadcast(room string, event any) {
	targets := h.snapshotRoom(room)
	for _, t := range targets {
		if err := t.conn.writeJSON(event); err != nil {
			h.Disconnect(t.conn, room, t.player)
		}
	}
}

// SendToPlayer sends event only to player's connections in room,
// with the same snapshot-then-send-outside-lock and silent-
// disconnect-on-error semantics as Broadcast.
func (h *Hub) SendToPlayer(room, player string, event any) {
	h.mu.Lock()
	var conns []*Conn
	if players, ok := h.rooms[room]; ok {
		if cs, ok := players[player]; ok {
			for c := range cs {
				conns = append(conns, c)
			}
		}
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.writeJSON(event); err != nil {
			h.Disconnect(conn, room, player)
		}
	}
}

type target struct {
	conn   *Conn
	player string
}

func (h *Hub) snapshotRoom(room string) []target {
	h.mu.Lock()
	defer h.mu.Unlock()

	players, ok := h.rooms[room]
	if !ok {
		return nil
	}
	targets := make([]target, 0)
	for player, conns := range players {
		for c := range conns {
			targets = append(targets, target{conn: c, player: player})
		}
	}
	return targets
}
