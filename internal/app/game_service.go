package app

import (
	"context"
	"math/rand/v2"
	"sort"

	"tienlen/internal/domain"
	"tienlen/internal/ports"
)

// CardsPerPlayer is the deal size per the source's deal policy: a
// 4-player game exactly divides the 52-card deck; smaller tables
// leave cards undealt face-down (SPEC_FULL §9).
const CardsPerPlayer = 13

// GameService implements the game state machine (SPEC_FULL §4.4):
// dealing, turns, passing, series scoring. It consumes the rule
// engine (package domain) and the store adapter (ports.Store).
type GameService struct {
	store ports.Store
	rng   *rand.Rand
}

// NewGameService builds a GameService. Passing a seeded rng makes
// deals deterministic for tests; production wiring uses a PCG source
// seeded from the current time.
func NewGameService(store ports.Store, rng *rand.Rand) *GameService {
	return &GameService{store: store, rng: rng}
}

// StartGame deals a fresh game into room code and persists it
// (SPEC_FULL §4.4 start_game). maxGames, if >= 1, updates the room's
// series length before dealing.
func (g *GameService) StartGame(ctx context.Context, code string, maxGames int) ([]Event, error) {
	room, err := g.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if len(room.Players) < MinPlayersToStartGame {
		return nil, ErrNotEnoughPlayers
	}

	if maxGames >= 1 {
		room.MaxGames = maxGames
	}
	room.Status = domain.RoomInGame

	playersOrder := playersOrderBySeat(room.Players)

	deck := domain.NewDeck()
	g.shuffle(deck)
	hands := domain.DealHands(playersOrder, deck, CardsPerPlayer)

	startPlayer := domain.FindStartPlayer(playersOrder, hands)
	firstGame := room.GamesPlayed == 0

	state := &domain.GameState{
		RoomID:            room.ID,
		Status:            domain.GamePlaying,
		PlayersOrder:      playersOrder,
		CurrentTurn:       startPlayer,
		PassCount:         0,
		FirstGame:         firstGame,
		FirstTurnRequired: firstGame,
	}

	room.GamesPlayed++
	for i := range room.Players {
		room.Players[i].HandCount = len(hands[room.Players[i].ID])
	}

	if err := g.store.SaveGameStart(ctx, code, room, state, hands); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(playersOrder))
	for _, playerID := range playersOrder {
		events = append(events, Event{
			Kind:       EventGameStarted,
			Payload:    GameStartedPayload{State: state, Hand: hands[playerID]},
			Recipients: []string{playerID},
		})
	}
	return events, nil
}

// PlayTurn validates and applies a play (SPEC_FULL §4.4 play_turn).
func (g *GameService) PlayTurn(ctx context.Context, code, playerID string, cards []domain.Card) ([]Event, error) {
	room, err := g.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	state, err := g.store.GetGameState(ctx, code)
	if err != nil {
		return nil, err
	}
	if state == nil || state.Status == domain.GameWaiting {
		return nil, ErrGameNotStarted
	}
	if state.Status == domain.GameFinished {
		return nil, ErrGameFinished
	}
	if state.CurrentTurn != playerID {
		return nil, ErrNotYourTurn
	}

	hands, err := g.store.GetHands(ctx, code)
	if err != nil {
		return nil, err
	}
	hand, ok := hands[playerID]
	if !ok {
		return nil, ErrHandNotFound
	}
	if !domain.HandContains(hand, cards) {
		return nil, ErrCardsNotInHand
	}

	if state.FirstTurnRequired && !containsThreeOfSpades(cards) {
		return nil, ErrMustLeadThreeSpades
	}

	candidate, err := domain.EvaluateCombo(cards)
	if err != nil {
		return nil, err
	}

	outgoingLastPlay := state.LastPlay
	newLastPlay, err := domain.ValidateMove(domain.Move{Type: "play", Cards: cards, ByPlayerID: playerID}, outgoingLastPlay)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, 2)

	if outgoingLastPlay != nil {
		lastCombo, err := domain.EvaluateCombo(outgoingLastPlay.Cards)
		if err != nil {
			return nil, err
		}
		if delta := computeChopDelta(candidate, lastCombo, outgoingLastPlay.Cards); delta != 0 {
			applyScoreDelta(room.Players, playerID, outgoingLastPlay.ByPlayerID, delta)
			events = append(events, Event{
				Kind: EventPigChopped,
				Payload: PigChoppedPayload{
					WinnerID:    playerID,
					LoserID:     outgoingLastPlay.ByPlayerID,
					Delta:       delta,
					ChoppedType: lastCombo.Type,
				},
			})
		}
	}

	newHand := domain.RemoveCards(hand, cards)
	hands[playerID] = newHand

	state.LastPlay = newLastPlay
	state.PassCount = 0
	state.FirstTurnRequired = false
	state.CurrentTurn = domain.NextPlayer(state.PlayersOrder, playerID)

	for i := range room.Players {
		if room.Players[i].ID == playerID {
			room.Players[i].HandCount = len(newHand)
		}
	}

	var finishOrder []string
	var scoreDeltas map[string]int
	if len(newHand) == 0 {
		state.Status = domain.GameFinished
		state.WinnerID = playerID
		handCounts := handCountsByID(hands)
		scoreDeltas = applyEndGameScoring(room.Players, handCounts)
		finishOrder = finishOrderFrom(room.Players, handCounts)
	}

	if err := g.store.SavePlayTurn(ctx, code, room, state, playerID, newHand); err != nil {
		return nil, err
	}

	events = append(events, Event{
		Kind:    EventCardPlayed,
		Payload: CardPlayedPayload{PlayerID: playerID, Cards: cards, State: state},
	})

	if state.Status == domain.GameFinished {
		events = append(events, Event{
			Kind: EventGameEnded,
			Payload: GameEndedPayload{
				State:       state,
				FinishOrder: finishOrder,
				ScoreDeltas: scoreDeltas,
			},
		})
	}

	return events, nil
}

// PassTurn applies a pass, including trick-reset bookkeeping
// (SPEC_FULL §4.4 pass_turn).
func (g *GameService) PassTurn(ctx context.Context, code, playerID string) ([]Event, error) {
	state, err := g.store.GetGameState(ctx, code)
	if err != nil {
		return nil, err
	}
	if state == nil || state.Status != domain.GamePlaying {
		return nil, ErrGameNotStarted
	}
	if state.CurrentTurn != playerID {
		return nil, ErrNotYourTurn
	}
	if state.LastPlay == nil {
		return nil, domain.ErrIllegalPass
	}

	state.PassCount++
	if state.PassCount >= len(state.PlayersOrder)-1 {
		state.PassCount = 0
		state.CurrentTurn = state.LastPlay.ByPlayerID
		state.LastPlay = nil
	} else {
		state.CurrentTurn = domain.NextPlayer(state.PlayersOrder, playerID)
	}

	if err := g.store.SaveGameState(ctx, code, state); err != nil {
		return nil, err
	}

	return []Event{{
		Kind:    EventTurnPassed,
		Payload: TurnPassedPayload{PlayerID: playerID, State: state},
	}}, nil
}

// MaybeStartNextGame implements the series lifecycle invoked after a
// game_end (SPEC_FULL §4.4 maybe_start_next_game). It returns
// seriesOver=true when games_played has reached max_games, in which
// case the room has already been reset to waiting.
func (g *GameService) MaybeStartNextGame(ctx context.Context, code string) (seriesOver bool, events []Event, err error) {
	room, err := g.store.GetRoom(ctx, code)
	if err != nil {
		return false, nil, err
	}
	if room == nil {
		return false, nil, ErrRoomNotFound
	}

	if room.GamesPlayed >= room.MaxGames {
		room.Status = domain.RoomWaiting
		room.GamesPlayed = 0
		for i := range room.Players {
			room.Players[i].IsReady = false
		}
		if err := g.store.ResetSeries(ctx, code, room); err != nil {
			return false, nil, err
		}
		return true, nil, nil
	}

	startEvents, err := g.StartGame(ctx, code, 0)
	if err != nil {
		return false, nil, err
	}
	return false, startEvents, nil
}

func (g *GameService) shuffle(deck []domain.Card) {
	g.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
}

func playersOrderBySeat(players []domain.Player) []string {
	sorted := make([]domain.Player, len(players))
	copy(sorted, players)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seat < sorted[j].Seat })
	order := make([]string, len(sorted))
	for i, p := range sorted {
		order[i] = p.ID
	}
	return order
}

func containsThreeOfSpades(cards []domain.Card) bool {
	for _, c := range cards {
		if domain.IsThreeOfSpades(c) {
			return true
		}
	}
	return false
}

func handCountsByID(hands map[string]domain.Hand) map[string]int {
	counts := make(map[string]int, len(hands))
	for id, h := range hands {
		counts[id] = len(h)
	}
	return counts
}

// --- Chop scoring (SPEC_FULL §4.4.1) ---

func computeChopDelta(candidate, last domain.Combo, lastCards []domain.Card) int {
	isLastSingleTwo := last.Type == domain.Single && last.Rank == domain.RankTwo
	isLastPairTwo := last.Type == domain.Pair && last.Rank == domain.RankTwo

	if isLastSingleTwo && candidate.Type != domain.Single {
		return twoPenalty(lastCards[0].Suit)
	}
	if isLastPairTwo && candidate.Type != domain.Pair {
		delta := 0
		for _, c := range lastCards {
			delta += twoPenalty(c.Suit)
		}
		return delta
	}
	if candidate.Type == domain.ConsecutivePairs && candidate.Length == 4 {
		switch {
		case last.Type == domain.FourKind:
			return 2
		case last.Type == domain.ConsecutivePairs && last.Length == 3:
			return 2
		case last.Type == domain.ConsecutivePairs && last.Length == 4 && candidate.Rank > last.Rank:
			return 4
		}
	}
	return 0
}

func twoPenalty(s domain.Suit) int {
	if s == domain.Spades || s == domain.Clubs {
		return 1
	}
	return 2
}

func applyScoreDelta(players []domain.Player, winnerID, loserID string, delta int) {
	for i := range players {
		switch players[i].ID {
		case winnerID:
			players[i].Score += delta
		case loserID:
			players[i].Score -= delta
		}
	}
}

// --- End-of-hand placement scoring (SPEC_FULL §4.4.2) ---

func placementTable(n int) []int {
	switch n {
	case 2:
		return []int{2, -2}
	case 3:
		return []int{2, 1, -1}
	case 4:
		return []int{2, 1, -1, -2}
	default:
		return nil
	}
}

func applyEndGameScoring(players []domain.Player, handCounts map[string]int) map[string]int {
	ordered := make([]domain.Player, len(players))
	copy(ordered, players)
	sort.Slice(ordered, func(i, j int) bool {
		ci, cj := handCounts[ordered[i].ID], handCounts[ordered[j].ID]
		if ci != cj {
			return ci < cj
		}
		return ordered[i].Seat < ordered[j].Seat
	})

	table := placementTable(len(ordered))
	deltas := make(map[string]int, len(ordered))
	for i, p := range ordered {
		if i >= len(table) {
			break
		}
		deltas[p.ID] = table[i]
	}

	for i := range players {
		players[i].Score += deltas[players[i].ID]
	}
	return deltas
}

func finishOrderFrom(players []domain.Player, handCounts map[string]int) []string {
	ordered := make([]domain.Player, len(players))
	copy(ordered, players)
	sort.Slice(ordered, func(i, j int) bool {
		ci, cj := handCounts[ordered[i].ID], handCounts[ordered[j].ID]
		if ci != cj {
			return ci < cj
		}
		return ordered[i].Seat < ordered[j].Seat
	})
	order := make([]string, len(ordered))
	for i, p := range ordered {
		order[i] = p.ID
	}
	return order
}
