package shogi

import (
	"fmt"
	"strings"
)

// Hand counts captured pieces by type. Only unpromoted types are stored.
type Hand [numPieceTypes]int

func NewHand(counts map[PieceType]int) Hand {
	var h Hand
	for t, n := range counts {
		if t > NoPiece && t < numPieceTypes {
			h[t] = n
		}
	}
	return h
}

func (h Hand) Count(t PieceType) int {
	if t <= NoPiece || t >= numPieceTypes {
		return 0
	}
	return h[t]
}

func (h *Hand) Add(t PieceType, n int) {
	if t <= NoPiece || t >= numPieceTypes {
		return
	}
	h[t] += n
}

func (h Hand) Empty() bool {
	for _, t := range HandOrder {
		if h[t] > 0 {
			return false
		}
	}
	return true
}

var standardLayout = [][]string{
	{"l", "n", "s", "g", "k", "g", "s", "n", "l"},
	{"", "r", "", "", "", "", "", "b", ""},
	{"p", "p", "p", "p", "p", "p", "p", "p", "p"},
	{"", "", "", "", "", "", "", "", ""},
	{"", "", "", "", "", "", "", "", ""},
	{"", "", "", "", "", "", "", "", ""},
	{"P", "P", "P", "P", "P", "P", "P", "P", "P"},
	{"", "B", "", "", "", "", "", "R", ""},
	{"L", "N", "S", "G", "K", "G", "S", "N", "L"},
}

// Board is a height x width grid addressed by (x, y), both 1-based. x is
// the file counted from the right edge of the layout (traditional
// numbering) and y is the rank counted from the top.
type Board struct {
	width  int
	height int
	cells  []Piece
	hands  [2]Hand
}

// NewBoard builds a board from rows of cell codes as seen from Black: the
// first row is rank 1 and the first column is the highest file. Blank,
// " " and "." are empty cells.
func NewBoard(layout [][]string, black, white Hand) (*Board, error) {
	if len(layout) == 0 || len(layout[0]) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrInvalidLayout)
	}
	b := newEmptyBoard(len(layout[0]), len(layout))
	for r, row := range layout {
		if len(row) != b.width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidLayout, r+1, len(row), b.width)
		}
		for c, code := range row {
			code = strings.TrimSpace(code)
			if code == "" || code == "." {
				continue
			}
			piece, err := ParsePiece(code)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: %v", ErrInvalidLayout, r+1, err)
			}
			b.cells[r*b.width+c] = piece
		}
	}
	for _, hand := range []Hand{black, white} {
		for _, t := range HandOrder {
			if hand[t] < 0 {
				return nil, fmt.Errorf("%w: negative hand count for %c", ErrInvalidLayout, t.Letter())
			}
		}
		if hand[King] != 0 {
			return nil, fmt.Errorf("%w: king in hand", ErrInvalidLayout)
		}
	}
	b.hands[Black] = black
	b.hands[White] = white
	return b, nil
}

// NewStandardBoard returns the 9x9 starting layout with empty hands.
func NewStandardBoard() *Board {
	b, err := NewBoard(standardLayout, Hand{}, Hand{})
	if err != nil {
		panic(err)
	}
	return b
}

func newEmptyBoard(width, height int) *Board {
	return &Board{
		width:  width,
		height: height,
		cells:  make([]Piece, width*height),
	}
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

func (b *Board) inBounds(x, y int) bool {
	return x >= 1 && x <= b.width && y >= 1 && y <= b.height
}

func (b *Board) index(x, y int) int {
	return (y-1)*b.width + (b.width - x)
}

// Get returns the piece at (x, y); empty cells hold the zero Piece.
func (b *Board) Get(x, y int) (Piece, error) {
	if !b.inBounds(x, y) {
		return Piece{}, fmt.Errorf("%w: (%d,%d) on %dx%d board", ErrOutOfBounds, x, y, b.width, b.height)
	}
	return b.cells[b.index(x, y)], nil
}

func (b *Board) Set(x, y int, piece Piece) error {
	if !b.inBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d) on %dx%d board", ErrOutOfBounds, x, y, b.width, b.height)
	}
	b.cells[b.index(x, y)] = piece
	return nil
}

// at and put skip the bounds check; callers have already validated x and y.
func (b *Board) at(x, y int) Piece {
	return b.cells[b.index(x, y)]
}

func (b *Board) put(x, y int, piece Piece) {
	b.cells[b.index(x, y)] = piece
}

func (b *Board) mustGet(x, y int) Piece {
	piece, err := b.Get(x, y)
	if err != nil {
		panic(err)
	}
	return piece
}

func (b *Board) mustSet(x, y int, piece Piece) {
	if err := b.Set(x, y, piece); err != nil {
		panic(err)
	}
}

func (b *Board) Hand(c Color) Hand {
	return b.hands[c]
}

func (b *Board) SetHand(c Color, h Hand) {
	b.hands[c] = h
}

// ForEach visits every cell file by file (x = 1..width), rank by rank
// within a file.
func (b *Board) ForEach(fn func(piece Piece, x, y int)) {
	for x := 1; x <= b.width; x++ {
		for y := 1; y <= b.height; y++ {
			fn(b.at(x, y), x, y)
		}
	}
}

// Some visits cells in ForEach order and stops at the first true result.
func (b *Board) Some(fn func(piece Piece, x, y int) bool) bool {
	for x := 1; x <= b.width; x++ {
		for y := 1; y <= b.height; y++ {
			if fn(b.at(x, y), x, y) {
				return true
			}
		}
	}
	return false
}

// IndexOf finds the first cell, in ForEach order, holding piece.
func (b *Board) IndexOf(piece Piece) (int, int, bool) {
	fx, fy := 0, 0
	found := b.Some(func(p Piece, x, y int) bool {
		if !p.Empty() && p == piece {
			fx, fy = x, y
			return true
		}
		return false
	})
	return fx, fy, found
}

// FileHasPawn reports whether file x holds an unpromoted pawn of color c.
func (b *Board) FileHasPawn(x int, c Color) bool {
	pawn := Piece{Type: Pawn, Color: c}
	for y := 1; y <= b.height; y++ {
		if b.at(x, y) == pawn {
			return true
		}
	}
	return false
}

// Reverse rotates the grid by 180 degrees, flips every piece's color and
// swaps the hands. Applying it twice restores the board.
func (b *Board) Reverse() *Board {
	for i, j := 0, len(b.cells)-1; i < j; i, j = i+1, j-1 {
		b.cells[i], b.cells[j] = b.cells[j], b.cells[i]
	}
	for i := range b.cells {
		b.cells[i] = b.cells[i].Reverse()
	}
	b.hands[Black], b.hands[White] = b.hands[White], b.hands[Black]
	return b
}

func (b *Board) Clone() *Board {
	clone := &Board{
		width:  b.width,
		height: b.height,
		cells:  make([]Piece, len(b.cells)),
		hands:  b.hands,
	}
	copy(clone.cells, b.cells)
	return clone
}

func (b *Board) Equal(other *Board) bool {
	if b.width != other.width || b.height != other.height || b.hands != other.hands {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Layout returns the cell codes in NewBoard order.
func (b *Board) Layout() [][]string {
	rows := make([][]string, b.height)
	for y := 1; y <= b.height; y++ {
		row := make([]string, b.width)
		for c := 0; c < b.width; c++ {
			row[c] = b.cells[(y-1)*b.width+c].String()
		}
		rows[y-1] = row
	}
	return rows
}
