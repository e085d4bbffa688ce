package shogi

import (
	"fmt"
	"strconv"
	"strings"
)

const StandardSFEN = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

var sfenHandOrder = []PieceType{Rook, Bishop, Gold, Silver, Knight, Lance, Pawn}

// ParseSFEN reads a position in SFEN. Boards of any rectangular size are
// accepted; empty runs may use several digits. The position gets the
// default movement table for its dimensions.
func ParseSFEN(sfen string) (*Position, error) {
	fields := strings.Fields(sfen)
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSFEN, sfen)
	}
	layout, err := parseBoardSFEN(fields[0])
	if err != nil {
		return nil, err
	}
	var turn Color
	switch fields[1] {
	case "b":
		turn = Black
	case "w":
		turn = White
	default:
		return nil, fmt.Errorf("%w: unknown side %q", ErrInvalidSFEN, fields[1])
	}
	black, white, err := parseHandsSFEN(fields[2])
	if err != nil {
		return nil, err
	}
	board, err := NewBoard(layout, black, white)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSFEN, err)
	}
	return NewPosition(board, turn, nil)
}

func parseBoardSFEN(board string) ([][]string, error) {
	ranks := strings.Split(board, "/")
	layout := make([][]string, 0, len(ranks))
	for rankIndex, rankText := range ranks {
		var row []string
		empty := 0
		promoted := false
		for i := 0; i < len(rankText); i++ {
			r := rankText[i]
			if r >= '0' && r <= '9' {
				if promoted {
					return nil, fmt.Errorf("%w: promotion marker before empty squares in rank %d", ErrInvalidSFEN, rankIndex+1)
				}
				empty = empty*10 + int(r-'0')
				continue
			}
			for ; empty > 0; empty-- {
				row = append(row, "")
			}
			if r == '+' {
				if promoted {
					return nil, fmt.Errorf("%w: double promotion marker in rank %d", ErrInvalidSFEN, rankIndex+1)
				}
				promoted = true
				continue
			}
			code := string(r)
			if promoted {
				code = "+" + code
				promoted = false
			}
			if _, err := ParsePiece(code); err != nil {
				return nil, fmt.Errorf("%w: rank %d: %v", ErrInvalidSFEN, rankIndex+1, err)
			}
			row = append(row, code)
		}
		if promoted {
			return nil, fmt.Errorf("%w: dangling promotion marker in rank %d", ErrInvalidSFEN, rankIndex+1)
		}
		for ; empty > 0; empty-- {
			row = append(row, "")
		}
		if len(layout) > 0 && len(row) != len(layout[0]) {
			return nil, fmt.Errorf("%w: rank %d has %d files, want %d", ErrInvalidSFEN, rankIndex+1, len(row), len(layout[0]))
		}
		layout = append(layout, row)
	}
	return layout, nil
}

func parseHandsSFEN(hand string) (Hand, Hand, error) {
	var black, white Hand
	if hand == "-" {
		return black, white, nil
	}
	count := 0
	for i := 0; i < len(hand); i++ {
		r := hand[i]
		if r >= '0' && r <= '9' {
			count = count*10 + int(r-'0')
			continue
		}
		if count == 0 {
			count = 1
		}
		target := &black
		if r >= 'a' && r <= 'z' {
			target = &white
			r -= 'a' - 'A'
		}
		t, ok := pieceTypeFromLetter(r)
		if !ok || t == King {
			return Hand{}, Hand{}, fmt.Errorf("%w: unknown hand piece %c", ErrInvalidSFEN, hand[i])
		}
		target.Add(t, count)
		count = 0
	}
	if count != 0 {
		return Hand{}, Hand{}, fmt.Errorf("%w: trailing hand count", ErrInvalidSFEN)
	}
	return black, white, nil
}

// SFEN renders the position; moveNumber fills the last field.
func (p *Position) SFEN(moveNumber int) string {
	turn := "b"
	if p.turn == White {
		turn = "w"
	}
	hand := buildHands(p.board.hands[Black], p.board.hands[White])
	if hand == "" {
		hand = "-"
	}
	return fmt.Sprintf("%s %s %s %d", p.board.sfenRanks(), turn, hand, moveNumber)
}

func (b *Board) sfenRanks() string {
	rows := make([]string, 0, b.height)
	for y := 1; y <= b.height; y++ {
		var sb strings.Builder
		empty := 0
		for x := b.width; x >= 1; x-- {
			piece := b.at(x, y)
			if piece.Empty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		rows = append(rows, sb.String())
	}
	return strings.Join(rows, "/")
}

// String renders the board part of an SFEN.
func (b *Board) String() string {
	return b.sfenRanks()
}

func buildHands(black, white Hand) string {
	var sb strings.Builder
	for _, hand := range []struct {
		counts Hand
		lower  bool
	}{{black, false}, {white, true}} {
		for _, t := range sfenHandOrder {
			count := hand.counts[t]
			if count <= 0 {
				continue
			}
			if count > 1 {
				sb.WriteString(strconv.Itoa(count))
			}
			letter := t.Letter()
			if hand.lower {
				letter += 'a' - 'A'
			}
			sb.WriteByte(letter)
		}
	}
	return sb.String()
}
