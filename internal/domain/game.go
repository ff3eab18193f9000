package domain

// GameStatus is the lifecycle stage of a single game within a series.
type GameStatus string

const (
	GameWaiting  GameStatus = "waiting"
	GamePlaying  GameStatus = "playing"
	GameFinished GameStatus = "finished"
)

// Hand is a per-player secret multiset of cards. Never broadcast;
// sent only to its owner.
type Hand []Card

// GameState is the authoritative state of one game in progress.
// PlayersOrder is fixed for the life of the game: ascending by seat
// at deal time. CurrentTurn and LastPlay.ByPlayerID are player ids.
type GameState struct {
	RoomID            string     `json:"room_id"`
	Status            GameStatus `json:"status"`
	PlayersOrder      []string   `json:"players_order"`
	CurrentTurn       string     `json:"current_turn"`
	LastPlay          *LastPlay  `json:"last_play,omitempty"`
	PassCount         int        `json:"pass_count"`
	WinnerID          string     `json:"winner_id,omitempty"`
	FirstGame         bool       `json:"first_game"`
	FirstTurnRequired bool       `json:"first_turn_required"`
}

// NextPlayer returns the player id that follows playerID in circular
// rotation over playersOrder, ignoring status: a disconnected seat
// remains in rotation (see the connection hub's disconnect policy).
func NextPlayer(playersOrder []string, playerID string) string {
	n := len(playersOrder)
	if n == 0 {
		return ""
	}
	for i, id := range playersOrder {
		if id == playerID {
			return playersOrder[(i+1)%n]
		}
	}
	return playersOrder[0]
}

// DealHands deals deck (already shuffled by the caller) round-robin to
// playersOrder, at most cardsPerPlayer cards each; any remainder is
// left undealt (discarded face-down), matching standard 4-player play
// exactly dividing the 52-card deck and smaller tables leaving cards
// undealt.
func DealHands(playersOrder []string, deck []Card, cardsPerPlayer int) map[string]Hand {
	hands := make(map[string]Hand, len(playersOrder))
	for _, id := range playersOrder {
		hands[id] = make(Hand, 0, cardsPerPlayer)
	}

	i := 0
	for _, c := range deck {
		if i >= len(playersOrder)*cardsPerPlayer {
			break
		}
		playerID := playersOrder[i%len(playersOrder)]
		if len(hands[playerID]) >= cardsPerPlayer {
			i++
			continue
		}
		hands[playerID] = append(hands[playerID], c)
		i++
	}
	return hands
}

// FindStartPlayer returns the holder of the 3 of spades, or
// playersOrder[0] if nobody was dealt it (possible only at table
// sizes smaller than 4, per the deal policy).
func FindStartPlayer(playersOrder []string, hands map[string]Hand) string {
	for _, id := range playersOrder {
		for _, c := range hands[id] {
			if IsThreeOfSpades(c) {
				return id
			}
		}
	}
	return playersOrder[0]
}
