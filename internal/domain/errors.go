package domain

import "errors"

// Rule-engine errors. These are the only errors evaluate_combo,
// can_beat, and validate_move can return.
var (
	ErrInvalidCombo = errors.New("invalid combo")
	ErrIllegalMove  = errors.New("illegal move: does not beat last play")
	ErrIllegalPass  = errors.New("illegal pass: no last play to pass on")
)
