// Package fen contains utilities for reading and writing positions in FEN notation.
package fen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcfarljm/dlchess-go/pkg/board"
)

const (
	Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Decode returns a new position from a FEN description. The halfmove clock and fullmove
// number fields are optional and default to 0 and 1 respectively, to tolerate the
// truncated FENs some tools and opening books emit.
//
// Example:
//
//	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
func Decode(zt *board.ZobristTable, fen string) (*board.Position, error) {
	parts := strings.Fields(strings.TrimSpace(fen))
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid number of fields in FEN: %q", fen)
	}

	// (1) Piece placement (from white's perspective). Each rank is described, starting
	// with rank 8 and ending with rank 1; within each rank, the contents of each square
	// are described from file a through file h.

	var placements []board.Placement

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("invalid number of ranks in FEN: %q", fen)
	}
	for i, rankStr := range ranks {
		r := board.Rank(7 - i)
		f := board.ZeroFile
		for _, c := range rankStr {
			switch {
			case c >= '1' && c <= '8':
				f += board.File(c - '0')
			default:
				piece, ok := board.ParsePiece(c)
				if !ok || f >= board.NumFiles {
					return nil, fmt.Errorf("invalid piece %q in FEN: %q", c, fen)
				}
				placements = append(placements, board.Placement{Square: board.NewSquare(f, r), Piece: piece})
				f++
			}
		}
		if f != board.NumFiles {
			return nil, fmt.Errorf("invalid number of squares in rank %q of FEN: %q", rankStr, fen)
		}
	}

	// (2) Active color. "w" means white moves next, "b" means black.

	active, ok := parseColor(parts[1])
	if !ok {
		return nil, fmt.Errorf("invalid active color in FEN: %q", fen)
	}

	// (3) Castling availability. If neither side can castle, this is "-". Otherwise,
	// this has one or more letters: "K"/"Q"/"k"/"q".

	castling, ok := parseCastling(parts[2])
	if !ok {
		return nil, fmt.Errorf("invalid castling in FEN: %q", fen)
	}

	// (4) En passant target square in algebraic notation, or "-" if none.

	ep := board.NoSquare
	if parts[3] != "-" {
		sq, err := board.ParseSquareStr(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant in FEN: %q: %w", fen, err)
		}
		ep = sq
	}

	// (5) Halfmove clock and (6) fullmove number. Both optional; missing means 0 and 1.

	fifty := 0
	if len(parts) > 4 {
		n, err := strconv.Atoi(parts[4])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid halfmove clock in FEN: %q", fen)
		}
		fifty = n
	}

	fullmoves := 1
	if len(parts) > 5 {
		n, err := strconv.Atoi(parts[5])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid fullmove number in FEN: %q", fen)
		}
		fullmoves = n
	}

	return board.NewPosition(zt, placements, active, castling, ep, fifty, fullmoves)
}

// Encode encodes the position in FEN notation.
func Encode(pos *board.Position) string {
	var sb strings.Builder
	for r := int(board.Rank8); r >= int(board.Rank1); r-- {
		blanks := 0
		for f := board.ZeroFile; f < board.NumFiles; f++ {
			piece := pos.PieceAt(board.NewSquare(f, board.Rank(r)))
			if piece == board.NoPiece {
				blanks++
				continue
			}
			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteString(piece.String())
		}
		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if r != int(board.Rank1) {
			sb.WriteString("/")
		}
	}

	ep := "-"
	if sq, ok := pos.EnPassant(); ok {
		ep = sq.String()
	}

	return fmt.Sprintf("%v %v %v %v %v %v", sb.String(), printColor(pos.Side()), printCastling(pos.Castling()), ep, pos.Fifty(), pos.FullMoves())
}

func parseCastling(str string) (board.Castling, bool) {
	var ret board.Castling

	if str == "-" {
		return ret, true
	}
	for _, r := range []rune(str) {
		switch r {
		case 'K':
			ret |= board.WhiteKingSideCastle
		case 'Q':
			ret |= board.WhiteQueenSideCastle
		case 'k':
			ret |= board.BlackKingSideCastle
		case 'q':
			ret |= board.BlackQueenSideCastle
		default:
			return 0, false
		}
	}
	return ret, true
}

func printCastling(c board.Castling) string {
	return c.String()
}

func parseColor(str string) (board.Color, bool) {
	switch str {
	case "w", "W":
		return board.White, true
	case "b", "B":
		return board.Black, true
	default:
		return 0, false
	}
}

func printColor(c board.Color) string {
	if c == board.White {
		return "w"
	}
	return "b"
}
