package shogi_test

import (
	"testing"

	"shogi/pkg/shogi"
)

func TestParsePiece(t *testing.T) {
	tests := []struct {
		code string
		want shogi.Piece
	}{
		{"P", shogi.Piece{Type: shogi.Pawn, Color: shogi.Black}},
		{"k", shogi.Piece{Type: shogi.King, Color: shogi.White}},
		{"+b", shogi.Piece{Type: shogi.Bishop, Promoted: true, Color: shogi.White}},
		{"+S", shogi.Piece{Type: shogi.Silver, Promoted: true, Color: shogi.Black}},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := shogi.ParsePiece(tt.code)
			if err != nil {
				t.Fatalf("ParsePiece(%q): %v", tt.code, err)
			}
			if got != tt.want {
				t.Fatalf("ParsePiece(%q) = %+v, want %+v", tt.code, got, tt.want)
			}
			if got.String() != tt.code {
				t.Fatalf("String() = %q, want %q", got.String(), tt.code)
			}
			if !got.Matches(tt.code) {
				t.Fatalf("%v does not match its own code", got)
			}
		})
	}
}

func TestParsePieceRejects(t *testing.T) {
	for _, code := range []string{"", "X", "PP", "+K", "+g", "++P", "+"} {
		if _, err := shogi.ParsePiece(code); err == nil {
			t.Fatalf("ParsePiece(%q) succeeded", code)
		}
	}
}

func TestPromoteDemote(t *testing.T) {
	table := shogi.DefaultMovementTable(9, 9)
	for _, pt := range []shogi.PieceType{shogi.Pawn, shogi.Lance, shogi.Knight, shogi.Silver, shogi.Bishop, shogi.Rook} {
		p := shogi.Piece{Type: pt, Color: shogi.White}
		promoted := p.Promote(table)
		if !promoted.Promoted || promoted.Type != pt || promoted.Color != shogi.White {
			t.Fatalf("Promote(%v) = %+v", p, promoted)
		}
		if promoted.Promote(table) != promoted {
			t.Fatalf("promoting %v twice changed it", p)
		}
		if promoted.Demote() != p {
			t.Fatalf("Demote(Promote(%v)) = %+v", p, promoted.Demote())
		}
	}
	for _, pt := range []shogi.PieceType{shogi.Gold, shogi.King} {
		p := shogi.Piece{Type: pt}
		if p.Promote(table) != p {
			t.Fatalf("%v should not promote", p)
		}
	}

	base := shogi.BaseMovementTable(9, 9)
	pawn := shogi.Piece{Type: shogi.Pawn}
	if pawn.Promote(base) != pawn {
		t.Fatalf("pawn promoted without a promoted table entry")
	}
}

func TestPieceReverse(t *testing.T) {
	p := shogi.Piece{Type: shogi.Rook, Promoted: true, Color: shogi.Black}
	r := p.Reverse()
	if r.Color != shogi.White || r.Type != shogi.Rook || !r.Promoted {
		t.Fatalf("Reverse() = %+v", r)
	}
	if r.Reverse() != p {
		t.Fatalf("double Reverse changed the piece")
	}
	var empty shogi.Piece
	if !empty.Reverse().Empty() {
		t.Fatalf("reversed empty cell is not empty")
	}
	if p.Equals(r) {
		t.Fatalf("pieces of different colors compare equal")
	}
}
