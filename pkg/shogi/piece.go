package shogi

import (
	"fmt"
	"strings"
)

type Color int

const (
	Black Color = iota
	White
)

func (c Color) Opponent() Color {
	if c == Black {
		return White
	}
	return Black
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

type PieceType int8

const (
	NoPiece PieceType = iota
	Pawn
	Lance
	Knight
	Silver
	Gold
	Bishop
	Rook
	King

	numPieceTypes
)

// HandOrder is the iteration order of hand types, used for drops and SFEN.
var HandOrder = []PieceType{Pawn, Lance, Knight, Silver, Gold, Bishop, Rook}

var pieceLetters = [numPieceTypes]byte{
	NoPiece: '.',
	Pawn:    'P',
	Lance:   'L',
	Knight:  'N',
	Silver:  'S',
	Gold:    'G',
	Bishop:  'B',
	Rook:    'R',
	King:    'K',
}

// Letter returns the uppercase SFEN letter of the type.
func (t PieceType) Letter() byte {
	if t < 0 || t >= numPieceTypes {
		return '?'
	}
	return pieceLetters[t]
}

// Promotable reports whether the type has a promoted form at all.
// King and Gold never promote.
func (t PieceType) Promotable() bool {
	switch t {
	case Pawn, Lance, Knight, Silver, Bishop, Rook:
		return true
	default:
		return false
	}
}

// sliding types are blocked by pieces standing between origin and target.
func (t PieceType) sliding() bool {
	return t == Lance || t == Bishop || t == Rook
}

func pieceTypeFromLetter(r byte) (PieceType, bool) {
	switch r {
	case 'P':
		return Pawn, true
	case 'L':
		return Lance, true
	case 'N':
		return Knight, true
	case 'S':
		return Silver, true
	case 'G':
		return Gold, true
	case 'B':
		return Bishop, true
	case 'R':
		return Rook, true
	case 'K':
		return King, true
	default:
		return NoPiece, false
	}
}

// Kind identifies a row of the movement table: a base type plus promotion.
type Kind struct {
	Type     PieceType
	Promoted bool
}

func (k Kind) String() string {
	if k.Promoted {
		return "+" + string(k.Type.Letter())
	}
	return string(k.Type.Letter())
}

func parseKind(code string) (Kind, error) {
	promoted := strings.HasPrefix(code, "+")
	body := strings.TrimPrefix(code, "+")
	if len(body) != 1 {
		return Kind{}, fmt.Errorf("unknown piece code %q", code)
	}
	t, ok := pieceTypeFromLetter(body[0])
	if !ok {
		return Kind{}, fmt.Errorf("unknown piece code %q", code)
	}
	if promoted && !t.Promotable() {
		return Kind{}, fmt.Errorf("piece %q cannot be promoted", code)
	}
	return Kind{Type: t, Promoted: promoted}, nil
}

// Piece is a tagged piece value. The zero Piece is an empty cell.
type Piece struct {
	Type     PieceType
	Promoted bool
	Color    Color
}

func NewPiece(k Kind, c Color) Piece {
	return Piece{Type: k.Type, Promoted: k.Promoted, Color: c}
}

// ParsePiece reads the single-letter notation: uppercase is Black, lowercase
// is White and a leading '+' marks promotion.
func ParsePiece(code string) (Piece, error) {
	promoted := strings.HasPrefix(code, "+")
	body := strings.TrimPrefix(code, "+")
	if len(body) != 1 {
		return Piece{}, fmt.Errorf("unknown piece code %q", code)
	}
	color := Black
	letter := body[0]
	if letter >= 'a' && letter <= 'z' {
		color = White
		letter -= 'a' - 'A'
	}
	t, ok := pieceTypeFromLetter(letter)
	if !ok {
		return Piece{}, fmt.Errorf("unknown piece code %q", code)
	}
	if promoted && !t.Promotable() {
		return Piece{}, fmt.Errorf("piece %q cannot be promoted", code)
	}
	return Piece{Type: t, Promoted: promoted, Color: color}, nil
}

func (p Piece) Empty() bool {
	return p.Type == NoPiece
}

func (p Piece) Kind() Kind {
	return Kind{Type: p.Type, Promoted: p.Promoted}
}

// Promote returns the promoted piece when table knows the promoted kind,
// and p unchanged otherwise.
func (p Piece) Promote(table MovementTable) Piece {
	if p.Promoted || !p.Type.Promotable() {
		return p
	}
	promoted := p
	promoted.Promoted = true
	if _, ok := table[promoted.Kind()]; !ok {
		return p
	}
	return promoted
}

func (p Piece) Demote() Piece {
	p.Promoted = false
	return p
}

func (p Piece) Reverse() Piece {
	if p.Empty() {
		return p
	}
	p.Color = p.Color.Opponent()
	return p
}

func (p Piece) Equals(other Piece) bool {
	return p == other
}

// Matches compares p against a piece code such as "P", "k" or "+b".
func (p Piece) Matches(code string) bool {
	other, err := ParsePiece(code)
	if err != nil {
		return false
	}
	return p == other
}

func (p Piece) String() string {
	if p.Empty() {
		return ""
	}
	text := string(p.Type.Letter())
	if p.Color == White {
		text = strings.ToLower(text)
	}
	if p.Promoted {
		text = "+" + text
	}
	return text
}
