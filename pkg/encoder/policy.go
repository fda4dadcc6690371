package encoder

import (
	"fmt"

	"github.com/mcfarljm/dlchess-go/pkg/board"
)

// PolicyShape is the output policy tensor's shape: 73 move-type planes over an 8x8
// from-square grid.
var PolicyShape = [3]int{73, 8, 8}

const (
	knightBasePlane         = 56
	underpromotionBasePlane = knightBasePlane + 8 // 64
)

// knightDeltas lists the 8 knight jump offsets in the plane order the original
// AlphaZero encoding uses, indexed by plane - knightBasePlane.
var knightDeltas = [8]int{17, 10, -6, -15, -17, -10, 6, 15}

// Coord identifies a cell in the (73,8,8) policy tensor.
type Coord struct {
	Plane, Rank, File int
}

// DecodeLegalMoves maps every legal move in pos to its policy-tensor coordinate. The
// mapping is injective: distinct legal moves always land on distinct coordinates.
func (e Encoder) DecodeLegalMoves(pos *board.Position) (map[board.Move]Coord, error) {
	orient := e.orientsBoard() && pos.Side() == board.Black

	out := make(map[board.Move]Coord)
	for _, m := range pos.LegalMoves() {
		coord, err := moveCoord(pos, m, orient)
		if err != nil {
			return nil, err
		}
		out[m] = coord
	}
	return out, nil
}

func moveCoord(pos *board.Position, m board.Move, orient bool) (Coord, error) {
	from := orientSquare(m.From, orient)
	to := orientSquare(m.To, orient)
	delta := int(to) - int(from)

	var plane int
	if pos.PieceAt(m.From).Kind() == board.Knight {
		p, ok := knightPlane(delta)
		if !ok {
			return Coord{}, fmt.Errorf("encoder: invalid knight move delta %v", delta)
		}
		plane = p
	} else {
		direction, amount, err := slideDirection(delta, from.Rank() == to.Rank())
		if err != nil {
			return Coord{}, err
		}
		plane = direction*7 + amount - 1

		if m.IsPromotion() && m.Promotion != board.Queen {
			plane = underpromotionPlane(direction, m.Promotion)
		}
	}

	return Coord{Plane: plane, Rank: int(from.Rank()), File: int(from.File())}, nil
}

func knightPlane(delta int) (int, bool) {
	for i, d := range knightDeltas {
		if d == delta {
			return knightBasePlane + i, true
		}
	}
	return 0, false
}

// slideDirection classifies a queen-style move delta (sq = file + 8*rank, so moving
// one square north adds 8, one NE adds 9, one NW adds 7, one east adds 1) into one of
// 8 directions {N,S,NE,SW,NW,SE,E,W} plus the number of squares travelled. sameRank
// tells a 7-square east/west move apart from a one-square NW/SE move, which share a delta.
func slideDirection(delta int, sameRank bool) (direction, amount int, err error) {
	switch {
	case sameRank && delta != 0:
		if delta > 0 {
			return 6, delta, nil
		}
		return 7, -delta, nil
	case delta%8 == 0 && delta != 0:
		if delta > 0 {
			return 0, delta / 8, nil
		}
		return 1, -delta / 8, nil
	case delta%9 == 0 && delta != 0:
		if delta > 0 {
			return 2, delta / 9, nil
		}
		return 3, -delta / 9, nil
	case delta%7 == 0 && delta != 0:
		if delta > 0 {
			return 4, delta / 7, nil
		}
		return 5, -delta / 7, nil
	default:
		return 0, 0, fmt.Errorf("encoder: invalid slide delta %v", delta)
	}
}

// underpromotionPlane picks one of the 9 underpromotion planes: 3 directions
// (forward, the two diagonals) x 3 pieces (N,B,R), queen promotions are not
// underpromotions and use the regular sliding planes instead.
func underpromotionPlane(direction int, promo board.Kind) int {
	base := underpromotionBasePlane
	switch direction {
	case 0, 1:
		base += 0
	case 2, 3:
		base += 3
	default: // 4, 5
		base += 6
	}
	switch promo {
	case board.Knight:
		return base
	case board.Bishop:
		return base + 1
	default: // Rook
		return base + 2
	}
}
