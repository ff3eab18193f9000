package app

import "errors"

// Not-found errors.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrUserNotFound = errors.New("user not found")
	ErrGameNotStarted = errors.New("game not started")
	ErrHandNotFound = errors.New("hand not found")
	ErrPlayerNotFound = errors.New("player not found")
)

// Authorization errors.
var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrNotHost         = errors.New("only the host may do that")
)

// Conflict errors.
var (
	ErrRoomFull     = errors.New("room is full")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrGameFinished = errors.New("game already finished")
)

// Rule errors (beyond the domain package's own InvalidCombo/IllegalMove/IllegalPass).
var (
	ErrCardsNotInHand     = errors.New("played cards are not in hand")
	ErrMustLeadThreeSpades = errors.New("first play of the series must include the 3 of spades")
	ErrNotEnoughPlayers   = errors.New("not enough players to start a game")
)

// Validation errors (spec §7 ValidationError: a request field is out
// of its documented range).
var (
	ErrInvalidMaxPlayers = errors.New("max_players must be between 2 and 4")
)

var errCodeSpaceExhausted = errors.New("could not generate a unique room code")
