package shogi_test

import (
	"errors"
	"reflect"
	"testing"

	"shogi/pkg/shogi"
)

func mustPiece(t *testing.T, code string) shogi.Piece {
	t.Helper()
	p, err := shogi.ParsePiece(code)
	if err != nil {
		t.Fatalf("ParsePiece(%q): %v", code, err)
	}
	return p
}

func TestNewBoardRejects(t *testing.T) {
	tests := []struct {
		name   string
		layout [][]string
		black  shogi.Hand
	}{
		{"empty", nil, shogi.Hand{}},
		{"empty row", [][]string{{}}, shogi.Hand{}},
		{"ragged", [][]string{{"", ""}, {""}}, shogi.Hand{}},
		{"bad code", [][]string{{"Q"}}, shogi.Hand{}},
		{"negative hand", [][]string{{"K"}}, shogi.NewHand(map[shogi.PieceType]int{shogi.Pawn: -1})},
		{"king in hand", [][]string{{"K"}}, shogi.NewHand(map[shogi.PieceType]int{shogi.King: 1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := shogi.NewBoard(tt.layout, tt.black, shogi.Hand{})
			if !errors.Is(err, shogi.ErrInvalidLayout) {
				t.Fatalf("got %v, want ErrInvalidLayout", err)
			}
		})
	}
}

func TestStandardBoardCoordinates(t *testing.T) {
	b := shogi.NewStandardBoard()
	if b.Width() != 9 || b.Height() != 9 {
		t.Fatalf("size %dx%d", b.Width(), b.Height())
	}
	tests := []struct {
		x, y int
		code string
	}{
		{5, 9, "K"},
		{5, 1, "k"},
		{8, 8, "B"},
		{2, 8, "R"},
		{8, 2, "r"},
		{2, 2, "b"},
		{1, 9, "L"},
		{9, 1, "l"},
		{7, 7, "P"},
		{3, 3, "p"},
	}
	for _, tt := range tests {
		got, err := b.Get(tt.x, tt.y)
		if err != nil {
			t.Fatalf("Get(%d,%d): %v", tt.x, tt.y, err)
		}
		if !got.Matches(tt.code) {
			t.Fatalf("Get(%d,%d) = %v, want %s", tt.x, tt.y, got, tt.code)
		}
	}
	if p, _ := b.Get(5, 5); !p.Empty() {
		t.Fatalf("center is %v, want empty", p)
	}
}

func TestBoardBounds(t *testing.T) {
	b := shogi.NewStandardBoard()
	for _, sq := range [][2]int{{0, 1}, {10, 1}, {1, 0}, {1, 10}, {-3, -3}} {
		if _, err := b.Get(sq[0], sq[1]); !errors.Is(err, shogi.ErrOutOfBounds) {
			t.Fatalf("Get(%d,%d) = %v, want ErrOutOfBounds", sq[0], sq[1], err)
		}
		if err := b.Set(sq[0], sq[1], mustPiece(t, "P")); !errors.Is(err, shogi.ErrOutOfBounds) {
			t.Fatalf("Set(%d,%d) = %v, want ErrOutOfBounds", sq[0], sq[1], err)
		}
	}
	if err := b.Set(5, 5, mustPiece(t, "+r")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := b.Get(5, 5); !got.Matches("+r") {
		t.Fatalf("Get after Set = %v", got)
	}
}

func TestBoardLayoutRoundTrip(t *testing.T) {
	b := shogi.NewStandardBoard()
	again, err := shogi.NewBoard(b.Layout(), b.Hand(shogi.Black), b.Hand(shogi.White))
	if err != nil {
		t.Fatalf("NewBoard(Layout()): %v", err)
	}
	if !again.Equal(b) {
		t.Fatalf("layout round trip changed the board")
	}
}

func TestBoardReverse(t *testing.T) {
	b, err := shogi.NewBoard([][]string{
		{"", "k", ""},
		{"", "", "+P"},
		{"S", "K", ""},
	}, shogi.NewHand(map[shogi.PieceType]int{shogi.Gold: 2}), shogi.Hand{})
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	r := b.Clone().Reverse()
	want := [][]string{
		{"", "k", "s"},
		{"+p", "", ""},
		{"", "K", ""},
	}
	if got := r.Layout(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Reverse layout = %v, want %v", got, want)
	}
	if r.Hand(shogi.White).Count(shogi.Gold) != 2 || !r.Hand(shogi.Black).Empty() {
		t.Fatalf("hands not swapped: black %v white %v", r.Hand(shogi.Black), r.Hand(shogi.White))
	}
	if !r.Reverse().Equal(b) {
		t.Fatalf("double Reverse did not restore the board")
	}
}

func TestBoardCloneIsolation(t *testing.T) {
	b := shogi.NewStandardBoard()
	c := b.Clone()
	if err := c.Set(5, 5, mustPiece(t, "G")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	c.SetHand(shogi.Black, shogi.NewHand(map[shogi.PieceType]int{shogi.Pawn: 3}))
	if p, _ := b.Get(5, 5); !p.Empty() {
		t.Fatalf("clone write leaked into original")
	}
	if !b.Hand(shogi.Black).Empty() {
		t.Fatalf("clone hand leaked into original")
	}
	if b.Equal(c) {
		t.Fatalf("modified clone still equal")
	}
}

func TestBoardForEachOrder(t *testing.T) {
	b, err := shogi.NewBoard([][]string{{"", ""}, {"", ""}, {"", ""}}, shogi.Hand{}, shogi.Hand{})
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	var got [][2]int
	b.ForEach(func(_ shogi.Piece, x, y int) {
		got = append(got, [2]int{x, y})
	})
	want := [][2]int{{1, 1}, {1, 2}, {1, 3}, {2, 1}, {2, 2}, {2, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ForEach order = %v, want %v", got, want)
	}

	visited := 0
	stopped := b.Some(func(_ shogi.Piece, x, y int) bool {
		visited++
		return x == 1 && y == 2
	})
	if !stopped || visited != 2 {
		t.Fatalf("Some stopped=%v after %d cells", stopped, visited)
	}
}

func TestBoardIndexOf(t *testing.T) {
	b := shogi.NewStandardBoard()
	x, y, ok := b.IndexOf(mustPiece(t, "K"))
	if !ok || x != 5 || y != 9 {
		t.Fatalf("black king at (%d,%d) ok=%v", x, y, ok)
	}
	// Visiting file 1 first finds the lance on 1a before 9a.
	x, y, ok = b.IndexOf(mustPiece(t, "l"))
	if !ok || x != 1 || y != 1 {
		t.Fatalf("white lance at (%d,%d) ok=%v", x, y, ok)
	}
	if _, _, ok := b.IndexOf(mustPiece(t, "+R")); ok {
		t.Fatalf("found a dragon on the starting board")
	}
	if !b.FileHasPawn(5, shogi.Black) || !b.FileHasPawn(5, shogi.White) {
		t.Fatalf("file 5 pawns not found")
	}
}
