// Package store implements the key-value store adapter (SPEC_FULL
// §4.2) against Redis, via github.com/redis/go-redis/v9.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tienlen/internal/domain"
)

const (
	roomTTL = 24 * time.Hour
	userTTL = 7 * 24 * time.Hour

	activeRoomsKey = "rooms:active"
)

func roomMetaKey(code string) string    { return fmt.Sprintf("room:%s:meta", code) }
func roomPlayersKey(code string) string { return fmt.Sprintf("room:%s:players", code) }
func roomStateKey(code string) string   { return fmt.Sprintf("room:%s:state", code) }
func roomHandsKey(code string) string   { return fmt.Sprintf("room:%s:hands", code) }
func userKey(id string) string          { return fmt.Sprintf("user:%s", id) }

// RedisStore implements ports.Store against a single *redis.Client.
type RedisStore struct {
	rdb *redis.Client
}

// New dials Redis using url (e.g. "redis://localhost:6379/0").
func New(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisStore{rdb: redis.NewClient(opts)}, nil
}

func (s *RedisStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	raw, err := s.rdb.Get(ctx, userKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *RedisStore) SaveUser(ctx context.Context, u *domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, userKey(u.ID), raw, userTTL).Err()
}

func (s *RedisStore) CreateRoom(ctx context.Context, room *domain.Room) error {
	metaRaw, err := json.Marshal(room)
	if err != nil {
		return err
	}
	playersRaw, err := marshalPlayers(room.Players)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, roomMetaKey(room.Code), metaRaw, roomTTL)
		pipe.HSet(ctx, roomPlayersKey(room.Code), playersRaw)
		pipe.Expire(ctx, roomPlayersKey(room.Code), roomTTL)
		pipe.SAdd(ctx, activeRoomsKey, room.Code)
		return nil
	})
	return err
}

func (s *RedisStore) GetRoom(ctx context.Context, code string) (*domain.Room, error) {
	metaRaw, err := s.rdb.Get(ctx, roomMetaKey(code)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var room domain.Room
	if err := json.Unmarshal([]byte(metaRaw), &room); err != nil {
		return nil, err
	}
	players, err := s.GetPlayers(ctx, code)
	if err != nil {
		return nil, err
	}
	room.Players = players
	return &room, nil
}

func (s *RedisStore) SaveRoomMeta(ctx context.Context, room *domain.Room) error {
	raw, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, roomMetaKey(room.Code), raw, roomTTL).Err()
}

func (s *RedisStore) DeleteRoom(ctx context.Context, code string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, roomMetaKey(code), roomPlayersKey(code), roomStateKey(code), roomHandsKey(code))
		pipe.SRem(ctx, activeRoomsKey, code)
		return nil
	})
	return err
}

func (s *RedisStore) GetPlayers(ctx context.Context, code string) ([]domain.Player, error) {
	raw, err := s.rdb.HGetAll(ctx, roomPlayersKey(code)).Result()
	if err != nil {
		return nil, err
	}
	players := make([]domain.Player, 0, len(raw))
	for _, v := range raw {
		var p domain.Player
		if err := json.Unmarshal([]byte(v), &p); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

func (s *RedisStore) SavePlayers(ctx context.Context, code string, players []domain.Player) error {
	raw, err := marshalPlayers(players)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, roomPlayersKey(code), raw)
		pipe.Expire(ctx, roomPlayersKey(code), roomTTL)
		return nil
	})
	return err
}

func (s *RedisStore) RemovePlayer(ctx context.Context, code, playerID string) error {
	return s.rdb.HDel(ctx, roomPlayersKey(code), playerID).Err()
}

func (s *RedisStore) GetGameState(ctx context.Context, code string) (*domain.GameState, error) {
	raw, err := s.rdb.Get(ctx, roomStateKey(code)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state domain.GameState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *RedisStore) SaveGameState(ctx context.Context, code string, state *domain.GameState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, roomStateKey(code), raw, roomTTL).Err()
}

func (s *RedisStore) DeleteGameState(ctx context.Context, code string) error {
	return s.rdb.Del(ctx, roomStateKey(code)).Err()
}

func (s *RedisStore) GetHands(ctx context.Context, code string) (map[string]domain.Hand, error) {
	raw, err := s.rdb.HGetAll(ctx, roomHandsKey(code)).Result()
	if err != nil {
		return nil, err
	}
	hands := make(map[string]domain.Hand, len(raw))
	for playerID, v := range raw {
		var h domain.Hand
		if err := json.Unmarshal([]byte(v), &h); err != nil {
			return nil, err
		}
		hands[playerID] = h
	}
	return hands, nil
}

func (s *RedisStore) SaveHands(ctx context.Context, code string, hands map[string]domain.Hand) error {
	raw, err := marshalHands(hands)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, roomHandsKey(code), raw)
		pipe.Expire(ctx, roomHandsKey(code), roomTTL)
		return nil
	})
	return err
}

func (s *RedisStore) SaveHand(ctx context.Context, code, playerID string, hand domain.Hand) error {
	raw, err := json.Marshal(hand)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, roomHandsKey(code), playerID, raw)
		pipe.Expire(ctx, roomHandsKey(code), roomTTL)
		return nil
	})
	return err
}

func (s *RedisStore) DeleteHands(ctx context.Context, code string) error {
	return s.rdb.Del(ctx, roomHandsKey(code)).Err()
}

// SaveGameStart persists state + incremented games_played + every
// dealt hand as one pipelined batch (SPEC_FULL §4.2, §5).
func (s *RedisStore) SaveGameStart(ctx context.Context, code string, room *domain.Room, state *domain.GameState, hands map[string]domain.Hand) error {
	metaRaw, err := json.Marshal(room)
	if err != nil {
		return err
	}
	stateRaw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	handsRaw, err := marshalHands(hands)
	if err != nil {
		return err
	}
	playersRaw, err := marshalPlayers(room.Players)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, roomMetaKey(code), metaRaw, roomTTL)
		pipe.Set(ctx, roomStateKey(code), stateRaw, roomTTL)
		if len(handsRaw) > 0 {
			pipe.HSet(ctx, roomHandsKey(code), handsRaw)
			pipe.Expire(ctx, roomHandsKey(code), roomTTL)
		}
		if len(playersRaw) > 0 {
			pipe.HSet(ctx, roomPlayersKey(code), playersRaw)
			pipe.Expire(ctx, roomPlayersKey(code), roomTTL)
		}
		return nil
	})
	return err
}

// SavePlayTurn persists the hand, game state, and roster hand_count
// mutations of a single play_turn as one pipelined batch.
func (s *RedisStore) SavePlayTurn(ctx context.Context, code string, room *domain.Room, state *domain.GameState, playerID string, hand domain.Hand) error {
	stateRaw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	handRaw, err := json.Marshal(hand)
	if err != nil {
		return err
	}
	playersRaw, err := marshalPlayers(room.Players)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, roomStateKey(code), stateRaw, roomTTL)
		pipe.HSet(ctx, roomHandsKey(code), playerID, handRaw)
		pipe.Expire(ctx, roomHandsKey(code), roomTTL)
		if len(playersRaw) > 0 {
			pipe.HSet(ctx, roomPlayersKey(code), playersRaw)
			pipe.Expire(ctx, roomPlayersKey(code), roomTTL)
		}
		return nil
	})
	return err
}

// ResetSeries clears a finished series back to waiting (SPEC_FULL
// §4.4, "maybe_start_next_game" series-over path).
func (s *RedisStore) ResetSeries(ctx context.Context, code string, room *domain.Room) error {
	metaRaw, err := json.Marshal(room)
	if err != nil {
		return err
	}
	playersRaw, err := marshalPlayers(room.Players)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, roomMetaKey(code), metaRaw, roomTTL)
		if len(playersRaw) > 0 {
			pipe.HSet(ctx, roomPlayersKey(code), playersRaw)
			pipe.Expire(ctx, roomPlayersKey(code), roomTTL)
		}
		pipe.Del(ctx, roomStateKey(code), roomHandsKey(code))
		return nil
	})
	return err
}

func marshalPlayers(players []domain.Player) (map[string]any, error) {
	out := make(map[string]any, len(players))
	for _, p := range players {
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		out[p.ID] = raw
	}
	return out, nil
}

func marshalHands(hands map[string]domain.Hand) (map[string]any, error) {
	out := make(map[string]any, len(hands))
	for playerID, h := range hands {
		raw, err := json.Marshal(h)
		if err != nil {
			return nil, err
		}
		out[playerID] = raw
	}
	return out, nil
}
