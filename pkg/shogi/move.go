package shogi

import (
	"fmt"
	"strings"
)

// Move is the (fromX, fromY, toX, toY, kind) tuple. A drop has both from
// coordinates zero. Kind is the piece as it stands after the move, so a
// promoting move carries the promoted kind.
type Move struct {
	FromX int
	FromY int
	ToX   int
	ToY   int
	Kind  Kind
}

func Drop(k Kind, x, y int) Move {
	return Move{ToX: x, ToY: y, Kind: k}
}

func (m Move) IsDrop() bool {
	return m.FromX == 0 && m.FromY == 0
}

// String is a board-independent form: "P*5e" for drops and "8h2b=+B" for
// board moves.
func (m Move) String() string {
	if m.IsDrop() {
		return fmt.Sprintf("%c*%s", m.Kind.Type.Letter(), formatSquare(m.ToX, m.ToY))
	}
	return fmt.Sprintf("%s%s=%s", formatSquare(m.FromX, m.FromY), formatSquare(m.ToX, m.ToY), m.Kind)
}

// USI renders m in USI notation, adding '+' when the move promotes the
// piece currently on the origin square.
func (p *Position) USI(m Move) string {
	if m.IsDrop() {
		return fmt.Sprintf("%c*%s", m.Kind.Type.Letter(), formatSquare(m.ToX, m.ToY))
	}
	usi := formatSquare(m.FromX, m.FromY) + formatSquare(m.ToX, m.ToY)
	if piece, err := p.board.Get(m.FromX, m.FromY); err == nil && m.Kind.Promoted && !piece.Promoted {
		usi += "+"
	}
	return usi
}

// ParseUSI reads a USI move and resolves the moving kind from the board.
// The result is not checked for legality.
func (p *Position) ParseUSI(text string) (Move, error) {
	if strings.Contains(text, "*") {
		parts := strings.SplitN(text, "*", 2)
		if len(parts[0]) != 1 {
			return Move{}, fmt.Errorf("%w: invalid drop %q", ErrInvalidMove, text)
		}
		t, ok := pieceTypeFromLetter(strings.ToUpper(parts[0])[0])
		if !ok || t == King {
			return Move{}, fmt.Errorf("%w: invalid drop piece %q", ErrInvalidMove, text)
		}
		x, y, rest, err := parseSquare(parts[1])
		if err != nil || rest != "" {
			return Move{}, fmt.Errorf("%w: invalid drop square %q", ErrInvalidMove, text)
		}
		return Drop(Kind{Type: t}, x, y), nil
	}

	fromX, fromY, rest, err := parseSquare(text)
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q: %v", ErrInvalidMove, text, err)
	}
	toX, toY, rest, err := parseSquare(rest)
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q: %v", ErrInvalidMove, text, err)
	}
	promote := false
	switch rest {
	case "":
	case "+":
		promote = true
	default:
		return Move{}, fmt.Errorf("%w: invalid promotion marker in %q", ErrInvalidMove, text)
	}

	piece, err := p.board.Get(fromX, fromY)
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q: %v", ErrInvalidMove, text, err)
	}
	if piece.Empty() {
		return Move{}, fmt.Errorf("%w: no piece at %s", ErrInvalidMove, formatSquare(fromX, fromY))
	}
	kind := piece.Kind()
	if promote {
		promoted := piece.Promote(p.table)
		if promoted == piece {
			return Move{}, fmt.Errorf("%w: %s cannot promote", ErrInvalidMove, piece)
		}
		kind = promoted.Kind()
	}
	return Move{FromX: fromX, FromY: fromY, ToX: toX, ToY: toY, Kind: kind}, nil
}

// PlayUSI parses, checks and plays a USI move, then passes the turn.
func (p *Position) PlayUSI(text string) error {
	m, err := p.ParseUSI(text)
	if err != nil {
		return err
	}
	return p.Play(m)
}

// formatSquare writes the file number followed by the rank letter.
func formatSquare(x, y int) string {
	return fmt.Sprintf("%d%c", x, rankToLetter(y))
}

func rankToLetter(rank int) byte {
	if rank < 1 || rank > 26 {
		return '?'
	}
	return byte('a' + rank - 1)
}

// parseSquare consumes one square (digits then a rank letter) from the
// front of text.
func parseSquare(text string) (int, int, string, error) {
	i := 0
	file := 0
	for i < len(text) && text[i] >= '0' && text[i] <= '9' {
		file = file*10 + int(text[i]-'0')
		i++
	}
	if i == 0 || file == 0 {
		return 0, 0, "", fmt.Errorf("missing file in %q", text)
	}
	if i >= len(text) || text[i] < 'a' || text[i] > 'z' {
		return 0, 0, "", fmt.Errorf("missing rank in %q", text)
	}
	rank := int(text[i]-'a') + 1
	return file, rank, text[i+1:], nil
}
