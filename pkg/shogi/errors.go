package shogi

import "errors"

var (
	ErrInvalidLayout        = errors.New("invalid layout")
	ErrOutOfBounds          = errors.New("coordinate out of bounds")
	ErrInvalidMovementTable = errors.New("invalid movement table")
	ErrIllegalMove          = errors.New("illegal move")
	ErrInvalidMove          = errors.New("invalid move notation")
	ErrInvalidSFEN          = errors.New("invalid sfen")
)
