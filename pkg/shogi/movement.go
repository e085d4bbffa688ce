package shogi

import (
	"fmt"
	"sort"
)

// Offset is a relative move in Black's frame: negative DY points toward rank 1.
// White applies the same offsets rotated by 180 degrees.
type Offset struct {
	DX int
	DY int
}

// MovementTable maps a piece kind to its ordered move offsets. Sliding
// pieces list every (direction, distance) pair individually.
type MovementTable map[Kind][]Offset

var (
	goldOffsets = []Offset{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {0, 1}}
	kingOffsets = []Offset{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}

	orthogonalSteps = []Offset{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}
	diagonalSteps   = []Offset{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
)

// BaseMovementTable builds the unpromoted tables for a width x height board.
func BaseMovementTable(width, height int) MovementTable {
	lance := make([]Offset, 0, height)
	for y := 1; y < height; y++ {
		lance = append(lance, Offset{0, -y})
	}

	bishop := make([]Offset, 0, 4*min(width, height))
	for d := 1; d < min(width, height); d++ {
		bishop = append(bishop, Offset{-d, -d}, Offset{d, -d}, Offset{-d, d}, Offset{d, d})
	}

	rook := make([]Offset, 0, 2*(width+height))
	for y := 1; y < height; y++ {
		rook = append(rook, Offset{0, -y}, Offset{0, y})
	}
	for x := 1; x < width; x++ {
		rook = append(rook, Offset{-x, 0}, Offset{x, 0})
	}

	return MovementTable{
		{Type: Pawn}:   {{0, -1}},
		{Type: Lance}:  lance,
		{Type: Knight}: {{-1, -2}, {1, -2}},
		{Type: Silver}: {{-1, -1}, {0, -1}, {1, -1}, {-1, 1}, {1, 1}},
		{Type: Gold}:   append([]Offset(nil), goldOffsets...),
		{Type: Bishop}: bishop,
		{Type: Rook}:   rook,
		{Type: King}:   append([]Offset(nil), kingOffsets...),
	}
}

// DefaultMovementTable is the standard table including promoted pieces.
func DefaultMovementTable(width, height int) MovementTable {
	return BaseMovementTable(width, height).WithPromotions()
}

// WithPromotions returns a copy of t with promoted entries derived from the
// base entries: promoted P, L, N and S move like Gold, the promoted Bishop
// adds the orthogonal steps and the promoted Rook adds the diagonal steps.
// Entries already present are kept as they are.
func (t MovementTable) WithPromotions() MovementTable {
	out := t.Clone()
	derive := func(target Kind, source Kind, extra []Offset) {
		if _, ok := out[target]; ok {
			return
		}
		base, ok := t[source]
		if !ok {
			return
		}
		out[target] = appendUnique(append([]Offset(nil), base...), extra...)
	}
	for _, pt := range []PieceType{Pawn, Lance, Knight, Silver} {
		derive(Kind{Type: pt, Promoted: true}, Kind{Type: Gold}, nil)
	}
	derive(Kind{Type: Bishop, Promoted: true}, Kind{Type: Bishop}, orthogonalSteps)
	derive(Kind{Type: Rook, Promoted: true}, Kind{Type: Rook}, diagonalSteps)
	return out
}

func (t MovementTable) Clone() MovementTable {
	out := make(MovementTable, len(t))
	for kind, offsets := range t {
		out[kind] = append([]Offset(nil), offsets...)
	}
	return out
}

func (t MovementTable) reaches(k Kind, d Offset) bool {
	for _, o := range t[k] {
		if o == d {
			return true
		}
	}
	return false
}

// Validate checks the preconditions the attack test relies on: sliding
// kinds only hold straight or diagonal offsets, and nothing promotes King
// or Gold.
func (t MovementTable) Validate() error {
	for _, kind := range t.kinds() {
		if kind.Type <= NoPiece || kind.Type >= numPieceTypes {
			return fmt.Errorf("%w: unknown piece type %d", ErrInvalidMovementTable, kind.Type)
		}
		if kind.Promoted && !kind.Type.Promotable() {
			return fmt.Errorf("%w: %s cannot be promoted", ErrInvalidMovementTable, kind)
		}
		for _, o := range t[kind] {
			if o.DX == 0 && o.DY == 0 {
				return fmt.Errorf("%w: %s has a zero offset", ErrInvalidMovementTable, kind)
			}
			if kind.Type.sliding() && !o.collinear() {
				return fmt.Errorf("%w: %s offset (%d,%d) is not on a line", ErrInvalidMovementTable, kind, o.DX, o.DY)
			}
		}
	}
	return nil
}

// ParseMovementTable reads a custom table keyed by piece code ("P", "+P").
// Promoted entries are not derived; call WithPromotions to opt in.
func ParseMovementTable(spec map[string][][2]int) (MovementTable, error) {
	table := make(MovementTable, len(spec))
	for code, pairs := range spec {
		kind, err := parseKind(code)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMovementTable, err)
		}
		offsets := make([]Offset, 0, len(pairs))
		for _, pair := range pairs {
			offsets = append(offsets, Offset{DX: pair[0], DY: pair[1]})
		}
		table[kind] = offsets
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

func (t MovementTable) kinds() []Kind {
	kinds := make([]Kind, 0, len(t))
	for kind := range t {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if kinds[i].Type != kinds[j].Type {
			return kinds[i].Type < kinds[j].Type
		}
		return !kinds[i].Promoted && kinds[j].Promoted
	})
	return kinds
}

func (o Offset) collinear() bool {
	return o.DX == 0 || o.DY == 0 || abs(o.DX) == abs(o.DY)
}

// forColor converts between Black's frame and the frame of c.
func (o Offset) forColor(c Color) Offset {
	if c == White {
		return Offset{DX: -o.DX, DY: -o.DY}
	}
	return o
}

func appendUnique(dst []Offset, extra ...Offset) []Offset {
	for _, o := range extra {
		dup := false
		for _, have := range dst {
			if have == o {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, o)
		}
	}
	return dst
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
