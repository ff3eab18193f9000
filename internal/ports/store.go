// Package ports declares the interfaces the app layer depends on but
// does not implement: the key-value store adapter. Concrete
// implementations live in internal/store.
package ports

import (
	"context"

	"tienlen/internal/domain"
)

// Store is the typed read/write surface over the key-value store
// described by the room session controller's key layout:
// room:{code}:meta, room:{code}:players, room:{code}:state,
// room:{code}:hands, rooms:active, and user:{id}.
//
// Implementations own TTL refresh and batch atomicity; callers only
// need know that a single method call is internally consistent.
type Store interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	SaveUser(ctx context.Context, u *domain.User) error

	CreateRoom(ctx context.Context, room *domain.Room) error
	GetRoom(ctx context.Context, code string) (*domain.Room, error)
	SaveRoomMeta(ctx context.Context, room *domain.Room) error
	DeleteRoom(ctx context.Context, code string) error

	GetPlayers(ctx context.Context, code string) ([]domain.Player, error)
	SavePlayers(ctx context.Context, code string, players []domain.Player) error
	RemovePlayer(ctx context.Context, code, playerID string) error

	GetGameState(ctx context.Context, code string) (*domain.GameState, error)
	SaveGameState(ctx context.Context, code string, state *domain.GameState) error
	DeleteGameState(ctx context.Context, code string) error

	GetHands(ctx context.Context, code string) (map[string]domain.Hand, error)
	SaveHands(ctx context.Context, code string, hands map[string]domain.Hand) error
	SaveHand(ctx context.Context, code, playerID string, hand domain.Hand) error
	DeleteHands(ctx context.Context, code string) error

	// SaveGameStart persists the result of start_game — state, the
	// incremented games_played on room meta, and every dealt hand —
	// as a single pipelined batch, per the store-adapter's atomicity
	// contract (SPEC_FULL §4.2).
	SaveGameStart(ctx context.Context, code string, room *domain.Room, state *domain.GameState, hands map[string]domain.Hand) error

	// SavePlayTurn persists the three writes a play_turn produces —
	// the actor's hand, the new game state, and the actor's updated
	// hand_count on the room roster — as one batch.
	SavePlayTurn(ctx context.Context, code string, room *domain.Room, state *domain.GameState, playerID string, hand domain.Hand) error

	// ResetSeries clears a finished series back to waiting: persists
	// room as given (the caller has already set status, zeroed
	// games_played and cleared is_ready) and deletes state and hands keys.
	ResetSeries(ctx context.Context, code string, room *domain.Room) error
}
