package app

import (
	"context"
	"crypto/sha256"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"tienlen/internal/domain"
	"tienlen/internal/ports"
)

// roomCodeAlphabet is the 32-symbol confusable-free alphabet: no I,
// O, 0, 1 (SPEC_FULL §6).
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const roomCodeLength = 6

const maxCodeGenerationAttempts = 32

const defaultMaxPlayers = 4

// minMaxPlayers and maxMaxPlayers bound the max_players field
// (spec.md §field max_players ∈ 2..4).
const (
	minMaxPlayers = 2
	maxMaxPlayers = 4
)

// RoomService implements room CRUD (SPEC_FULL §4.3): create, join,
// leave, host migration, password gate.
type RoomService struct {
	store           ports.Store
	maxGamesDefault int
}

// NewRoomService builds a RoomService. maxGamesDefault seeds a new
// room's series length (SPEC_FULL §6 MAX_GAMES_DEFAULT) when the
// caller does not specify one.
func NewRoomService(store ports.Store, maxGamesDefault int) *RoomService {
	if maxGamesDefault <= 0 {
		maxGamesDefault = 1
	}
	return &RoomService{store: store, maxGamesDefault: maxGamesDefault}
}

// CreateRoom creates a room owned by userID, seating the creator at
// seat 0 as host.
func (r *RoomService) CreateRoom(ctx context.Context, userID string, maxPlayers int, password string) (*domain.Room, string, error) {
	user, err := r.store.GetUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrUserNotFound
	}

	if maxPlayers == 0 {
		maxPlayers = defaultMaxPlayers
	}
	if maxPlayers < minMaxPlayers || maxPlayers > maxMaxPlayers {
		return nil, "", ErrInvalidMaxPlayers
	}

	code, err := r.generateUniqueCode(ctx)
	if err != nil {
		return nil, "", err
	}

	playerID := uuid.NewString()
	host := domain.Player{
		ID:     playerID,
		Name:   user.Name,
		Seat:   0,
		IsHost: true,
		Status: domain.PlayerActive,
	}

	room := &domain.Room{
		ID:         uuid.NewString(),
		Code:       code,
		HostID:     playerID,
		Status:     domain.RoomWaiting,
		MaxPlayers: maxPlayers,
		MaxGames:   r.maxGamesDefault,
		Players:    []domain.Player{host},
		CreatedAt:  time.Now().UTC(),
	}
	if password != "" {
		room.PasswordHash = hashPassword(password)
	}

	if err := r.store.CreateRoom(ctx, room); err != nil {
		return nil, "", err
	}
	return room, playerID, nil
}

// JoinRoom seats userID into room code at its lowest free seat.
func (r *RoomService) JoinRoom(ctx context.Context, code, userID, password string) (*domain.Room, string, error) {
	room, err := r.store.GetRoom(ctx, code)
	if err != nil {
		return nil, "", err
	}
	if room == nil {
		return nil, "", ErrRoomNotFound
	}

	user, err := r.store.GetUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrUserNotFound
	}

	if room.PasswordHash != "" && hashPassword(password) != room.PasswordHash {
		return nil, "", ErrInvalidPassword
	}
	if len(room.Players) >= room.MaxPlayers {
		return nil, "", ErrRoomFull
	}

	seat := domain.LowestFreeSeat(room.Players, room.MaxPlayers)
	playerID := uuid.NewString()
	player := domain.Player{
		ID:     playerID,
		Name:   user.Name,
		Seat:   seat,
		Status: domain.PlayerActive,
	}
	room.Players = append(room.Players, player)

	user.LastJoinedAt = time.Now().UTC()

	if err := r.store.SavePlayers(ctx, code, room.Players); err != nil {
		return nil, "", err
	}
	if err := r.store.SaveUser(ctx, user); err != nil {
		return nil, "", err
	}
	return room, playerID, nil
}

// LeaveRoom removes playerID from room code. If the roster empties,
// the room is deleted entirely; otherwise a departing host's seat is
// migrated to the lowest-seat remaining player (SPEC_FULL §4.3, S6).
func (r *RoomService) LeaveRoom(ctx context.Context, code, playerID string) (*domain.Room, error) {
	room, err := r.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	wasHost := room.HostID == playerID
	remaining := make([]domain.Player, 0, len(room.Players))
	for _, p := range room.Players {
		if p.ID != playerID {
			remaining = append(remaining, p)
		}
	}
	room.Players = remaining

	if len(room.Players) == 0 {
		if err := r.store.DeleteRoom(ctx, code); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := r.store.RemovePlayer(ctx, code, playerID); err != nil {
		return nil, err
	}

	if wasHost {
		promoteLowestSeat(room)
		if err := r.store.SavePlayers(ctx, code, room.Players); err != nil {
			return nil, err
		}
		if err := r.store.SaveRoomMeta(ctx, room); err != nil {
			return nil, err
		}
	}

	return room, nil
}

func promoteLowestSeat(room *domain.Room) {
	lowest := 0
	for i := 1; i < len(room.Players); i++ {
		if room.Players[i].Seat < room.Players[lowest].Seat {
			lowest = i
		}
	}
	room.Players[lowest].IsHost = true
	room.HostID = room.Players[lowest].ID
}

func (r *RoomService) generateUniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeGenerationAttempts; i++ {
		code := randomRoomCode()
		existing, err := r.store.GetRoom(ctx, code)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", errCodeSpaceExhausted
}

func randomRoomCode() string {
	buf := make([]byte, roomCodeLength)
	idx := make([]byte, roomCodeLength)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		idx[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
	}
	return string(idx)
}

// hashPassword is deliberately unsalted SHA-256, matching the room
// password scheme this store must remain wire-compatible with
// (SPEC_FULL §4.3, §9).
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
