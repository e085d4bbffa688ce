package shogi_test

import (
	"errors"
	"reflect"
	"testing"

	"shogi/pkg/shogi"
)

func TestDefaultMovementTable(t *testing.T) {
	table := shogi.DefaultMovementTable(9, 9)
	if len(table) != 14 {
		t.Fatalf("table has %d kinds, want 14", len(table))
	}
	gold := table[shogi.Kind{Type: shogi.Gold}]
	for _, pt := range []shogi.PieceType{shogi.Pawn, shogi.Lance, shogi.Knight, shogi.Silver} {
		got := table[shogi.Kind{Type: pt, Promoted: true}]
		if !reflect.DeepEqual(got, gold) {
			t.Fatalf("promoted %c moves %v, want gold %v", pt.Letter(), got, gold)
		}
	}
	counts := map[shogi.Kind]int{
		{Type: shogi.Lance}:                  8,
		{Type: shogi.Bishop}:                 32,
		{Type: shogi.Rook}:                   32,
		{Type: shogi.Bishop, Promoted: true}: 36,
		{Type: shogi.Rook, Promoted: true}:   36,
		{Type: shogi.King}:                   8,
	}
	for kind, want := range counts {
		if got := len(table[kind]); got != want {
			t.Fatalf("%v has %d offsets, want %d", kind, got, want)
		}
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}
}

func TestWithPromotionsKeepsExplicitEntries(t *testing.T) {
	table, err := shogi.ParseMovementTable(map[string][][2]int{
		"P":  {{0, -1}},
		"G":  {{0, -1}, {0, 1}},
		"+P": {{1, 0}},
	})
	if err != nil {
		t.Fatalf("ParseMovementTable: %v", err)
	}
	full := table.WithPromotions()
	if got := full[shogi.Kind{Type: shogi.Pawn, Promoted: true}]; !reflect.DeepEqual(got, []shogi.Offset{{DX: 1, DY: 0}}) {
		t.Fatalf("explicit +P entry overwritten: %v", got)
	}
	if _, ok := full[shogi.Kind{Type: shogi.Silver, Promoted: true}]; !ok {
		t.Fatalf("+S not derived from gold")
	}
	if _, ok := full[shogi.Kind{Type: shogi.Rook, Promoted: true}]; ok {
		t.Fatalf("+R derived without a rook entry")
	}
	if _, ok := table[shogi.Kind{Type: shogi.Silver, Promoted: true}]; ok {
		t.Fatalf("WithPromotions modified its receiver")
	}
}

func TestMovementTableValidate(t *testing.T) {
	tests := []struct {
		name string
		spec map[string][][2]int
	}{
		{"knight jump on rook", map[string][][2]int{"R": {{1, 2}}}},
		{"bent lance", map[string][][2]int{"L": {{0, -1}, {1, -3}}}},
		{"zero offset", map[string][][2]int{"G": {{0, 0}}}},
		{"promoted king", map[string][][2]int{"+K": {{0, -1}}}},
		{"promoted gold", map[string][][2]int{"+G": {{0, -1}}}},
		{"unknown code", map[string][][2]int{"Q": {{0, -1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := shogi.ParseMovementTable(tt.spec)
			if !errors.Is(err, shogi.ErrInvalidMovementTable) {
				t.Fatalf("got %v, want ErrInvalidMovementTable", err)
			}
		})
	}
}

func TestNewPositionRejectsInvalidTable(t *testing.T) {
	table := shogi.DefaultMovementTable(9, 9)
	table[shogi.Kind{Type: shogi.Bishop}] = append(table[shogi.Kind{Type: shogi.Bishop}], shogi.Offset{DX: 2, DY: 1})
	_, err := shogi.NewPosition(shogi.NewStandardBoard(), shogi.Black, table)
	if !errors.Is(err, shogi.ErrInvalidMovementTable) {
		t.Fatalf("got %v, want ErrInvalidMovementTable", err)
	}
}

func TestCustomMovementTable(t *testing.T) {
	table, err := shogi.ParseMovementTable(map[string][][2]int{
		"K": {{0, -1}},
	})
	if err != nil {
		t.Fatalf("ParseMovementTable: %v", err)
	}
	board, err := shogi.NewBoard([][]string{
		{"", "", ""},
		{"", "K", ""},
		{"", "", "k"},
	}, shogi.Hand{}, shogi.Hand{})
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	pos, err := shogi.NewPosition(board, shogi.Black, table)
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	moves := pos.Moves()
	want := []shogi.Move{{FromX: 2, FromY: 2, ToX: 2, ToY: 1, Kind: shogi.Kind{Type: shogi.King}}}
	if !reflect.DeepEqual(moves, want) {
		t.Fatalf("Moves() = %v, want %v", moves, want)
	}

	// White's king steps toward rank 3 and falls off the board.
	pos.Reverse()
	if n := len(pos.Moves()); n != 0 {
		t.Fatalf("white has %d moves, want 0", n)
	}
	if !pos.IsStalemate() {
		t.Fatalf("white should be stalemated")
	}
}
