package domain

import "testing"

func c(rank int, suit Suit) Card { return Card{Rank: rank, Suit: suit} }

func TestEvaluateCombo(t *testing.T) {
	tests := []struct {
		name    string
		cards   []Card
		want    Combo
		wantErr bool
	}{
		{
			name:  "single carries suit",
			cards: []Card{c(8, Hearts)},
			want:  Combo{Type: Single, Rank: 8, Length: 1, Suit: Hearts},
		},
		{
			name:  "pair",
			cards: []Card{c(9, Spades), c(9, Clubs)},
			want:  Combo{Type: Pair, Rank: 9, Length: 2},
		},
		{
			name:  "triple",
			cards: []Card{c(5, Spades), c(5, Clubs), c(5, Diamonds)},
			want:  Combo{Type: Triple, Rank: 5, Length: 3},
		},
		{
			name:  "four_kind",
			cards: []Card{c(6, Spades), c(6, Clubs), c(6, Diamonds), c(6, Hearts)},
			want:  Combo{Type: FourKind, Rank: 6, Length: 4},
		},
		{
			name:  "straight",
			cards: []Card{c(3, Spades), c(4, Clubs), c(5, Diamonds)},
			want:  Combo{Type: Straight, Rank: 5, Length: 3},
		},
		{
			name:    "straight rejects rank 15",
			cards:   []Card{c(13, Spades), c(14, Clubs), c(15, Diamonds)},
			wantErr: true,
		},
		{
			name:  "consecutive_pairs",
			cards: []Card{c(3, Spades), c(3, Clubs), c(4, Spades), c(4, Clubs), c(5, Spades), c(5, Clubs)},
			want:  Combo{Type: ConsecutivePairs, Rank: 5, Length: 3},
		},
		{
			name:    "consecutive_pairs rejects rank 15",
			cards:   []Card{c(13, Spades), c(13, Clubs), c(14, Spades), c(14, Clubs), c(15, Spades), c(15, Clubs)},
			wantErr: true,
		},
		{
			name:    "empty is invalid",
			cards:   nil,
			wantErr: true,
		},
		{
			name:    "mismatched set is invalid",
			cards:   []Card{c(3, Spades), c(5, Clubs)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateCombo(tt.cards)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got combo %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCanBeat_SuitOrderForEqualRankSingles(t *testing.T) {
	tests := []struct {
		candidate, last Suit
		want            bool
	}{
		{Spades, Clubs, false},
		{Clubs, Spades, true},
		{Diamonds, Clubs, true},
		{Hearts, Diamonds, true},
		{Spades, Hearts, false},
	}
	for _, tt := range tests {
		candidate := Combo{Type: Single, Rank: 9, Suit: tt.candidate}
		last := Combo{Type: Single, Rank: 9, Suit: tt.last}
		if got := CanBeat(candidate, last); got != tt.want {
			t.Errorf("CanBeat(%s over %s) = %v, want %v", tt.candidate, tt.last, got, tt.want)
		}
	}
}

func TestCanBeat_SequenceLengthMismatch(t *testing.T) {
	candidate := Combo{Type: Straight, Rank: 10, Length: 4}
	last := Combo{Type: Straight, Rank: 6, Length: 3}
	if CanBeat(candidate, last) {
		t.Fatal("straights of different length must not beat one another")
	}
}

func TestValidateMove_SpecialDominanceMatrix(t *testing.T) {
	tests := []struct {
		name      string
		candidate []Card
		lastType  ComboType
		lastCards []Card
		wantOK    bool
	}{
		{
			name:      "four_kind beats single 2",
			candidate: []Card{c(6, Spades), c(6, Clubs), c(6, Diamonds), c(6, Hearts)},
			lastCards: []Card{c(15, Hearts)},
			wantOK:    true,
		},
		{
			name:      "four_kind beats pair of 2s",
			candidate: []Card{c(6, Spades), c(6, Clubs), c(6, Diamonds), c(6, Hearts)},
			lastCards: []Card{c(15, Spades), c(15, Clubs)},
			wantOK:    true,
		},
		{
			name:      "consecutive_pairs length 4 beats single 2",
			candidate: []Card{c(3, Spades), c(3, Clubs), c(4, Spades), c(4, Clubs), c(5, Spades), c(5, Clubs), c(6, Spades), c(6, Clubs)},
			lastCards: []Card{c(15, Hearts)},
			wantOK:    true,
		},
		{
			name:      "consecutive_pairs length 3 beats single 2",
			candidate: []Card{c(3, Spades), c(3, Clubs), c(4, Spades), c(4, Clubs), c(5, Spades), c(5, Clubs)},
			lastCards: []Card{c(15, Hearts)},
			wantOK:    true,
		},
		{
			name:      "consecutive_pairs length 3 does not beat pair of 2s",
			candidate: []Card{c(3, Spades), c(3, Clubs), c(4, Spades), c(4, Clubs), c(5, Spades), c(5, Clubs)},
			lastCards: []Card{c(15, Spades), c(15, Clubs)},
			wantOK:    false,
		},
		{
			name:      "consecutive_pairs length 4 beats four_kind",
			candidate: []Card{c(3, Spades), c(3, Clubs), c(4, Spades), c(4, Clubs), c(5, Spades), c(5, Clubs), c(6, Spades), c(6, Clubs)},
			lastCards: []Card{c(9, Spades), c(9, Clubs), c(9, Diamonds), c(9, Hearts)},
			wantOK:    true,
		},
		{
			name:      "consecutive_pairs length 4 upgrades over length 3 when rank higher",
			candidate: []Card{c(4, Spades), c(4, Clubs), c(5, Spades), c(5, Clubs), c(6, Spades), c(6, Clubs), c(7, Spades), c(7, Clubs)},
			lastCards: []Card{c(3, Spades), c(3, Clubs), c(4, Spades), c(4, Clubs), c(5, Spades), c(5, Clubs)},
			wantOK:    true,
		},
		{
			name:      "plain triple never beats single 2",
			candidate: []Card{c(6, Spades), c(6, Clubs), c(6, Diamonds)},
			lastCards: []Card{c(15, Hearts)},
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lastCombo, err := EvaluateCombo(tt.lastCards)
			if err != nil {
				t.Fatalf("bad fixture: %v", err)
			}
			last := &LastPlay{Type: lastCombo.Type, Cards: tt.lastCards, ByPlayerID: "p1"}
			_, err = ValidateMove(Move{Type: "play", Cards: tt.candidate, ByPlayerID: "p2"}, last)
			if tt.wantOK && err != nil {
				t.Fatalf("expected move to succeed, got %v", err)
			}
			if !tt.wantOK && err == nil {
				t.Fatal("expected move to fail, got nil error")
			}
		})
	}
}

func TestValidateMove_PassRequiresLastPlay(t *testing.T) {
	if _, err := ValidateMove(Move{Type: "pass", ByPlayerID: "p1"}, nil); err != ErrIllegalPass {
		t.Fatalf("got %v, want ErrIllegalPass", err)
	}

	last := &LastPlay{Type: Single, Cards: []Card{c(8, Hearts)}, ByPlayerID: "p2"}
	if result, err := ValidateMove(Move{Type: "pass", ByPlayerID: "p1"}, last); err != nil || result != nil {
		t.Fatalf("got (%v, %v), want (nil, nil)", result, err)
	}
}
