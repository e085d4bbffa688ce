package shogi

import "fmt"

// Position is a board, its movement table and the side to move.
//
// Offsets in the table are written from Black's point of view; White uses
// them rotated by 180 degrees, so a single table serves both sides without
// turning the board around between plies.
type Position struct {
	board *Board
	table MovementTable
	turn  Color
}

// NewPosition wraps board with turn to move. A nil table selects
// DefaultMovementTable for the board's dimensions; any other table is
// validated and used as given, without deriving promotions.
func NewPosition(board *Board, turn Color, table MovementTable) (*Position, error) {
	if board == nil {
		return nil, fmt.Errorf("%w: nil board", ErrInvalidLayout)
	}
	if table == nil {
		table = DefaultMovementTable(board.width, board.height)
	} else if err := table.Validate(); err != nil {
		return nil, err
	}
	return &Position{board: board, table: table, turn: turn}, nil
}

// NewStandardPosition returns the standard starting position, Black to move.
func NewStandardPosition() *Position {
	b := NewStandardBoard()
	return &Position{board: b, table: DefaultMovementTable(b.width, b.height), turn: Black}
}

// Board exposes the underlying board for read access.
func (p *Position) Board() *Board { return p.board }

func (p *Position) Table() MovementTable { return p.table }

func (p *Position) Turn() Color { return p.turn }

// Clone deep-copies the board. The movement table is shared and must not
// be modified afterwards.
func (p *Position) Clone() *Position {
	return &Position{board: p.board.Clone(), table: p.table, turn: p.turn}
}

// Reverse hands the move to the other side.
func (p *Position) Reverse() *Position {
	p.turn = p.turn.Opponent()
	return p
}

// Mirror returns the same position seen from the other side: the board is
// rotated with colors and hands swapped, and the turn passes to the
// relabeled mover. Legal moves correspond one to one.
func (p *Position) Mirror() *Position {
	return &Position{board: p.board.Clone().Reverse(), table: p.table, turn: p.turn.Opponent()}
}

func (p *Position) promotionDepth() int {
	return p.board.height / 3
}

func (p *Position) inZone(c Color, y int) bool {
	if c == Black {
		return y <= p.promotionDepth()
	}
	return y > p.board.height-p.promotionDepth()
}

// farRank counts ranks from the far edge for c: 1 is the last rank.
func (p *Position) farRank(c Color, y int) int {
	if c == Black {
		return y
	}
	return p.board.height + 1 - y
}

// deadEnd reports whether a piece of kind k would have no move left on
// rank y.
func (p *Position) deadEnd(k Kind, c Color, y int) bool {
	if k.Promoted {
		return false
	}
	switch k.Type {
	case Pawn, Lance:
		return p.farRank(c, y) == 1
	case Knight:
		return p.farRank(c, y) <= 2
	default:
		return false
	}
}

// IsAttacked reports whether the piece on (fromX, fromY) reaches (toX, toY):
// the offset is in its table and, for sliding pieces, every cell strictly
// between the two squares is empty. Occupancy of the target is ignored.
func (p *Position) IsAttacked(fromX, fromY, toX, toY int) bool {
	if !p.board.inBounds(fromX, fromY) || !p.board.inBounds(toX, toY) {
		return false
	}
	piece := p.board.at(fromX, fromY)
	if piece.Empty() {
		return false
	}
	return p.attacks(piece, fromX, fromY, toX, toY)
}

func (p *Position) attacks(piece Piece, fromX, fromY, toX, toY int) bool {
	dx, dy := toX-fromX, toY-fromY
	if !p.table.reaches(piece.Kind(), Offset{DX: dx, DY: dy}.forColor(piece.Color)) {
		return false
	}
	if !piece.Type.sliding() {
		return true
	}
	// Validate guarantees sliding offsets are straight or diagonal.
	n := max(abs(dx), abs(dy))
	sx, sy := dx/n, dy/n
	for k := 1; k < n; k++ {
		if !p.board.at(fromX+k*sx, fromY+k*sy).Empty() {
			return false
		}
	}
	return true
}

// SquareAttacked reports whether any piece of color by reaches (x, y).
func (p *Position) SquareAttacked(x, y int, by Color) bool {
	if !p.board.inBounds(x, y) {
		return false
	}
	return p.board.Some(func(piece Piece, px, py int) bool {
		return !piece.Empty() && piece.Color == by && p.attacks(piece, px, py, x, y)
	})
}

// InCheck reports whether c's king is attacked. A side without a king is
// never in check.
func (p *Position) InCheck(c Color) bool {
	x, y, ok := p.board.IndexOf(Piece{Type: King, Color: c})
	if !ok {
		return false
	}
	return p.SquareAttacked(x, y, c.Opponent())
}

// IsWin reports whether the side to move attacks the opponent's king.
func (p *Position) IsWin() bool {
	return p.InCheck(p.turn.Opponent())
}

// CanMove reports whether m is legal for the side to move.
func (p *Position) CanMove(m Move) bool {
	b := p.board
	if !b.inBounds(m.ToX, m.ToY) {
		return false
	}
	mover := p.turn
	target := b.at(m.ToX, m.ToY)

	if m.IsDrop() {
		if m.Kind.Promoted || m.Kind.Type <= NoPiece || m.Kind.Type >= King {
			return false
		}
		if b.hands[mover][m.Kind.Type] <= 0 || !target.Empty() {
			return false
		}
		if m.Kind.Type == Pawn && b.FileHasPawn(m.ToX, mover) {
			return false
		}
	} else {
		if !b.inBounds(m.FromX, m.FromY) {
			return false
		}
		piece := b.at(m.FromX, m.FromY)
		if piece.Empty() || piece.Color != mover {
			return false
		}
		if m.Kind != piece.Kind() {
			promoted := piece.Promote(p.table)
			if promoted == piece || m.Kind != promoted.Kind() {
				return false
			}
			if !p.inZone(mover, m.FromY) && !p.inZone(mover, m.ToY) {
				return false
			}
		}
		if !target.Empty() && target.Color == mover {
			return false
		}
		if !p.attacks(piece, m.FromX, m.FromY, m.ToX, m.ToY) {
			return false
		}
	}

	if p.deadEnd(m.Kind, mover, m.ToY) {
		return false
	}

	next := p.Clone().ApplyMove(m)
	if next.InCheck(mover) {
		return false
	}
	// A pawn drop may give check but not mate.
	if m.IsDrop() && m.Kind.Type == Pawn && next.InCheck(mover.Opponent()) {
		if !next.Reverse().hasMoves() {
			return false
		}
	}
	return true
}

// ApplyMove plays m without checking legality and without passing the
// turn, so calls chain as p.ApplyMove(m).Reverse(). Captured pieces go to
// the mover's hand demoted. m must lie on the board; moves from Moves or
// accepted by CanMove always do.
func (p *Position) ApplyMove(m Move) *Position {
	b := p.board
	mover := p.turn
	if m.IsDrop() {
		b.mustSet(m.ToX, m.ToY, NewPiece(m.Kind, mover))
		b.hands[mover][m.Kind.Type]--
		return p
	}
	piece := b.mustGet(m.FromX, m.FromY)
	target := b.mustGet(m.ToX, m.ToY)
	if !target.Empty() {
		b.hands[mover].Add(target.Demote().Type, 1)
	}
	kind := m.Kind
	if kind.Type == NoPiece {
		kind = piece.Kind()
	}
	b.put(m.ToX, m.ToY, NewPiece(kind, piece.Color))
	b.put(m.FromX, m.FromY, Piece{})
	return p
}

// Play checks m, applies it and passes the turn.
func (p *Position) Play(m Move) error {
	if !p.CanMove(m) {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	p.ApplyMove(m).Reverse()
	return nil
}

// Moves lists every legal move for the side to move. Cells are visited in
// Board.ForEach order; an empty cell yields drops in HandOrder, a piece of
// the mover yields its table offsets in order, the promoting variant
// before the plain one.
func (p *Position) Moves() []Move {
	var moves []Move
	p.generate(func(m Move) bool {
		moves = append(moves, m)
		return true
	})
	return moves
}

func (p *Position) hasMoves() bool {
	found := false
	p.generate(func(Move) bool {
		found = true
		return false
	})
	return found
}

// generate feeds legal moves to yield until it returns false.
func (p *Position) generate(yield func(Move) bool) {
	b := p.board
	mover := p.turn
	hand := b.hands[mover]
	b.Some(func(piece Piece, x, y int) bool {
		if piece.Empty() {
			for _, t := range HandOrder {
				if hand[t] <= 0 {
					continue
				}
				m := Drop(Kind{Type: t}, x, y)
				if p.CanMove(m) && !yield(m) {
					return true
				}
			}
			return false
		}
		if piece.Color != mover {
			return false
		}
		promoted := piece.Promote(p.table)
		canPromote := promoted != piece
		for _, o := range p.table[piece.Kind()] {
			d := o.forColor(mover)
			toX, toY := x+d.DX, y+d.DY
			if canPromote && (p.inZone(mover, toY) || p.inZone(mover, y)) {
				m := Move{FromX: x, FromY: y, ToX: toX, ToY: toY, Kind: promoted.Kind()}
				if p.CanMove(m) && !yield(m) {
					return true
				}
			}
			m := Move{FromX: x, FromY: y, ToX: toX, ToY: toY, Kind: piece.Kind()}
			if p.CanMove(m) && !yield(m) {
				return true
			}
		}
		return false
	})
}

// IsCheckmate reports whether the side to move is in check with no legal
// move.
func (p *Position) IsCheckmate() bool {
	return p.InCheck(p.turn) && !p.hasMoves()
}

// IsStalemate reports whether the side to move has no legal move while not
// in check.
func (p *Position) IsStalemate() bool {
	return !p.InCheck(p.turn) && !p.hasMoves()
}

// RandSource is satisfied by *math/rand.Rand.
type RandSource interface {
	Intn(n int) int
}

// Random plays a uniformly chosen legal move without passing the turn.
// It reports false on a terminal position.
func (p *Position) Random(r RandSource) (Move, bool) {
	moves := p.Moves()
	if len(moves) == 0 {
		return Move{}, false
	}
	m := moves[r.Intn(len(moves))]
	p.ApplyMove(m)
	return m, true
}

func (p *Position) String() string {
	return p.SFEN(1)
}
