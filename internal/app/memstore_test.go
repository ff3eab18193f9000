package app

import (
	"context"

	"tienlen/internal/domain"
)

// memStore is an in-memory ports.Store fake used only by this
// package's tests; it does not model TTLs.
type memStore struct {
	users map[string]*domain.User
	rooms map[string]*domain.Room
	states map[string]*domain.GameState
	hands  map[string]map[string]domain.Hand
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[string]*domain.User{},
		rooms:  map[string]*domain.Room{},
		states: map[string]*domain.GameState{},
		hands:  map[string]map[string]domain.Hand{},
	}
}

func cloneRoom(r *domain.Room) *domain.Room {
	out := *r
	out.Players = append([]domain.Player(nil), r.Players...)
	return &out
}

func (m *memStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) SaveUser(ctx context.Context, u *domain.User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) CreateRoom(ctx context.Context, room *domain.Room) error {
	m.rooms[room.Code] = cloneRoom(room)
	return nil
}

func (m *memStore) GetRoom(ctx context.Context, code string) (*domain.Room, error) {
	r, ok := m.rooms[code]
	if !ok {
		return nil, nil
	}
	return cloneRoom(r), nil
}

func (m *memStore) SaveRoomMeta(ctx context.Context, room *domain.Room) error {
	existing := m.rooms[room.Code]
	cp := cloneRoom(room)
	if existing != nil {
		cp.Players = existing.Players
	}
	m.rooms[room.Code] = cp
	return nil
}

func (m *memStore) DeleteRoom(ctx context.Context, code string) error {
	delete(m.rooms, code)
	delete(m.states, code)
	delete(m.hands, code)
	return nil
}

func (m *memStore) GetPlayers(ctx context.Context, code string) ([]domain.Player, error) {
	r, ok := m.rooms[code]
	if !ok {
		return nil, nil
	}
	return append([]domain.Player(nil), r.Players...), nil
}

func (m *memStore) SavePlayers(ctx context.Context, code string, players []domain.Player) error {
	r, ok := m.rooms[code]
	if !ok {
		return ErrRoomNotFound
	}
	r.Players = append([]domain.Player(nil), players...)
	return nil
}

func (m *memStore) RemovePlayer(ctx context.Context, code, playerID string) error {
	r, ok := m.rooms[code]
	if !ok {
		return ErrRoomNotFound
	}
	out := make([]domain.Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.ID != playerID {
			out = append(out, p)
		}
	}
	r.Players = out
	return nil
}

func (m *memStore) GetGameState(ctx context.Context, code string) (*domain.GameState, error) {
	s, ok := m.states[code]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) SaveGameState(ctx context.Context, code string, state *domain.GameState) error {
	cp := *state
	m.states[code] = &cp
	return nil
}

func (m *memStore) DeleteGameState(ctx context.Context, code string) error {
	delete(m.states, code)
	return nil
}

func (m *memStore) GetHands(ctx context.Context, code string) (map[string]domain.Hand, error) {
	out := map[string]domain.Hand{}
	for id, h := range m.hands[code] {
		out[id] = append(domain.Hand(nil), h...)
	}
	return out, nil
}

func (m *memStore) SaveHands(ctx context.Context, code string, hands map[string]domain.Hand) error {
	stored := map[string]domain.Hand{}
	for id, h := range hands {
		stored[id] = append(domain.Hand(nil), h...)
	}
	m.hands[code] = stored
	return nil
}

func (m *memStore) SaveHand(ctx context.Context, code, playerID string, hand domain.Hand) error {
	if m.hands[code] == nil {
		m.hands[code] = map[string]domain.Hand{}
	}
	m.hands[code][playerID] = append(domain.Hand(nil), hand...)
	return nil
}

func (m *memStore) DeleteHands(ctx context.Context, code string) error {
	delete(m.hands, code)
	return nil
}

func (m *memStore) SaveGameStart(ctx context.Context, code string, room *domain.Room, state *domain.GameState, hands map[string]domain.Hand) error {
	m.rooms[code] = cloneRoom(room)
	if err := m.SaveGameState(ctx, code, state); err != nil {
		return err
	}
	return m.SaveHands(ctx, code, hands)
}

func (m *memStore) SavePlayTurn(ctx context.Context, code string, room *domain.Room, state *domain.GameState, playerID string, hand domain.Hand) error {
	m.rooms[code] = cloneRoom(room)
	if err := m.SaveGameState(ctx, code, state); err != nil {
		return err
	}
	return m.SaveHand(ctx, code, playerID, hand)
}

func (m *memStore) ResetSeries(ctx context.Context, code string, room *domain.Room) error {
	m.rooms[code] = cloneRoom(room)
	delete(m.states, code)
	delete(m.hands, code)
	return nil
}
