// Package ws implements the WebSocket dispatcher (SPEC_FULL §4.6):
// per-connection event loop, typed JSON frame routing, and disconnect
// propagation.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tienlen/internal/app"
	"tienlen/internal/domain"
	"tienlen/internal/hub"
	"tienlen/internal/ports"
)

// Upgrader is shared across connections; no origin checking is
// performed here, matching the "accept unconditionally" rule in
// SPEC_FULL §4.6 (CORS/origin policy is external-collaborator scope
// per §1).
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// inFrame is a client -> server event.
type inFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// outFrame is a server -> client event.
type outFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func errorFrame(message string) outFrame {
	return outFrame{Type: "error", Payload: map[string]string{"message": message}}
}

// Dispatcher wires the connection hub to the room/game services.
type Dispatcher struct {
	Hub   *hub.Hub
	Rooms *app.RoomService
	Games *app.GameService
	Store ports.Store
	Log   *zap.Logger
}

// connState is the per-connection state the spec calls
// (current_room?, current_player?).
type connState struct {
	room   string
	player string
}

// Serve runs one connection's event loop until it disconnects.
func (d *Dispatcher) Serve(ctx context.Context, ws *websocket.Conn) {
	conn := hub.NewConn(ws)
	state := &connState{}

	defer func() {
		if state.room != "" {
			d.Hub.Disconnect(conn, state.room, state.player)
			if state.player != "" {
				d.broadcastRoomUpdate(ctx, state.room)
			}
		}
	}()

	for {
		var frame inFrame
		if err := ws.ReadJSON(&frame); err != nil {
			return
		}

		if err := d.dispatch(ctx, conn, state, frame); err != nil {
			_ = ws.WriteJSON(errorFrame(err.Error()))
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, conn *hub.Conn, state *connState, frame inFrame) error {
	switch frame.Type {
	case "room:join":
		return d.handleRoomJoin(ctx, conn, state, frame.Payload)
	case "room:leave":
		return d.handleRoomLeave(ctx, conn, state, frame.Payload)
	case "room:sync":
		return d.handleRoomSync(ctx, conn, state, frame.Payload)
	case "game:start":
		return d.handleGameStart(ctx, state, frame.Payload)
	case "turn:play":
		return d.handleTurnPlay(ctx, state, frame.Payload)
	case "turn:pass":
		return d.handleTurnPass(ctx, state, frame.Payload)
	default:
		return errors.New("unknown event type: " + frame.Type)
	}
}

type roomJoinPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"player_id"`
}

func (d *Dispatcher) handleRoomJoin(ctx context.Context, conn *hub.Conn, state *connState, raw json.RawMessage) error {
	var p roomJoinPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}

	room, err := d.Store.GetRoom(ctx, p.Code)
	if err != nil {
		return err
	}
	if room == nil {
		return app.ErrRoomNotFound
	}
	if !isRosterMember(room, p.PlayerID) {
		return app.ErrPlayerNotFound
	}

	d.Hub.Connect(conn, p.Code, p.PlayerID)
	state.room = p.Code
	state.player = p.PlayerID

	d.broadcastRoomUpdate(ctx, p.Code)

	gameState, err := d.Store.GetGameState(ctx, p.Code)
	if err != nil {
		return err
	}
	if gameState != nil && gameState.Status == domain.GamePlaying {
		hands, err := d.Store.GetHands(ctx, p.Code)
		if err != nil {
			return err
		}
		d.Hub.SendToPlayer(p.Code, p.PlayerID, outFrame{
			Type:    "game:start",
			Payload: app.GameStartedPayload{State: gameState, Hand: hands[p.PlayerID]},
		})
	}
	return nil
}

type roomLeavePayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"player_id"`
}

func (d *Dispatcher) handleRoomLeave(ctx context.Context, conn *hub.Conn, state *connState, raw json.RawMessage) error {
	var p roomLeavePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}

	if _, err := d.Rooms.LeaveRoom(ctx, p.Code, p.PlayerID); err != nil {
		return err
	}
	d.Hub.Disconnect(conn, p.Code, p.PlayerID)
	state.room = ""
	state.player = ""

	d.broadcastRoomUpdate(ctx, p.Code)
	return nil
}

func (d *Dispatcher) handleRoomSync(ctx context.Context, conn *hub.Conn, state *connState, raw json.RawMessage) error {
	var p roomJoinPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}

	room, err := d.Store.GetRoom(ctx, p.Code)
	if err != nil {
		return err
	}
	if room == nil {
		return app.ErrRoomNotFound
	}

	d.Hub.SendToPlayer(p.Code, p.PlayerID, outFrame{Type: "room:update", Payload: room})

	gameState, err := d.Store.GetGameState(ctx, p.Code)
	if err != nil {
		return err
	}
	if gameState != nil && gameState.Status == domain.GamePlaying {
		hands, err := d.Store.GetHands(ctx, p.Code)
		if err != nil {
			return err
		}
		d.Hub.SendToPlayer(p.Code, p.PlayerID, outFrame{
			Type:    "game:start",
			Payload: app.GameStartedPayload{State: gameState, Hand: hands[p.PlayerID]},
		})
	}
	return nil
}

type gameStartPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"player_id"`
}

func (d *Dispatcher) handleGameStart(ctx context.Context, state *connState, raw json.RawMessage) error {
	var p gameStartPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}

	room, err := d.Store.GetRoom(ctx, p.Code)
	if err != nil {
		return err
	}
	if room == nil {
		return app.ErrRoomNotFound
	}
	if room.HostID != p.PlayerID {
		return app.ErrNotHost
	}

	events, err := d.Games.StartGame(ctx, p.Code, 0)
	if err != nil {
		return err
	}
	d.emit(p.Code, events)
	return nil
}

type turnPlayPayload struct {
	Code     string        `json:"code"`
	PlayerID string        `json:"player_id"`
	Cards    []domain.Card `json:"cards"`
}

func (d *Dispatcher) handleTurnPlay(ctx context.Context, state *connState, raw json.RawMessage) error {
	var p turnPlayPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}

	events, err := d.Games.PlayTurn(ctx, p.Code, p.PlayerID, p.Cards)
	if err != nil {
		return err
	}
	d.emit(p.Code, events)
	d.broadcastRoomUpdate(ctx, p.Code) // hand_count/score changed

	if gameEnded(events) {
		if _, nextEvents, err := d.Games.MaybeStartNextGame(ctx, p.Code); err != nil {
			d.Log.Warn("maybe_start_next_game failed", zap.String("code", p.Code), zap.Error(err))
		} else {
			d.emit(p.Code, nextEvents)
			d.broadcastRoomUpdate(ctx, p.Code) // series reset or next deal changed room status
		}
	}
	return nil
}

func gameEnded(events []app.Event) bool {
	for _, e := range events {
		if e.Kind == app.EventGameEnded {
			return true
		}
	}
	return false
}

type turnPassPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"player_id"`
}

func (d *Dispatcher) handleTurnPass(ctx context.Context, state *connState, raw json.RawMessage) error {
	var p turnPassPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}

	events, err := d.Games.PassTurn(ctx, p.Code, p.PlayerID)
	if err != nil {
		return err
	}
	d.emit(p.Code, events)
	return nil
}

// emit fans each app.Event out over the hub: targeted if Recipients
// is set, broadcast otherwise. Each event becomes exactly one frame:
// game:end is sent only for a game_ended event, and pig_chopped is
// sent under its own kind as the frame type.
func (d *Dispatcher) emit(code string, events []app.Event) {
	for _, e := range events {
		frame := eventToFrame(e)
		if len(e.Recipients) > 0 {
			for _, r := range e.Recipients {
				d.Hub.SendToPlayer(code, r, frame)
			}
			continue
		}
		d.Hub.Broadcast(code, frame)
	}
}

func eventToFrame(e app.Event) outFrame {
	switch e.Kind {
	case app.EventGameStarted:
		return outFrame{Type: "game:start", Payload: e.Payload}
	case app.EventCardPlayed:
		return outFrame{Type: "turn:play", Payload: e.Payload}
	case app.EventTurnPassed:
		return outFrame{Type: "turn:pass", Payload: e.Payload}
	case app.EventGameEnded:
		return outFrame{Type: "game:end", Payload: e.Payload}
	default:
		return outFrame{Type: string(e.Kind), Payload: e.Payload}
	}
}

func (d *Dispatcher) broadcastRoomUpdate(ctx context.Context, code string) {
	room, err := d.Store.GetRoom(ctx, code)
	if err != nil {
		d.Log.Warn("room:update lookup failed", zap.String("code", code), zap.Error(err))
		return
	}
	if room == nil {
		return
	}
	d.Hub.Broadcast(code, outFrame{Type: "room:update", Payload: room})
}

func isRosterMember(room *domain.Room, playerID string) bool {
	for _, p := range room.Players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}
