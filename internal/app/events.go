package app

import "tienlen/internal/domain"

// EventKind identifies an emitted domain event for hub dispatch.
type EventKind string

const (
	EventCardPlayed  EventKind = "card_played"
	EventPigChopped  EventKind = "pig_chopped"
	EventTurnPassed  EventKind = "turn_passed"
	EventGameEnded   EventKind = "game_ended"
	EventGameStarted EventKind = "game_started"
)

// Event is a domain event with optional targeted recipients. Empty
// Recipients means broadcast to the whole room.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player ids; empty means broadcast
}

// GameStartedPayload is sent once per player, privately: each
// recipient's Hand is their own and only their own.
type GameStartedPayload struct {
	State *domain.GameState
	Hand  domain.Hand
}

// PigChoppedPayload documents a chop-scoring mutation (§4.4.1).
type PigChoppedPayload struct {
	WinnerID    string
	LoserID     string
	Delta       int
	ChoppedType domain.ComboType
}

type CardPlayedPayload struct {
	PlayerID string
	Cards    []domain.Card
	State    *domain.GameState
}

type TurnPassedPayload struct {
	PlayerID string
	State    *domain.GameState
}

type GameEndedPayload struct {
	State         *domain.GameState
	FinishOrder   []string
	ScoreDeltas   map[string]int
}
