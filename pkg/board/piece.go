package board

// Piece is a colored chess piece, or NoPiece for an empty square. 4 bits.
//
// The ordering (all white pieces, then all black, pawn..king within each)
// is load-bearing: Zobrist keys and the encoder's piece planes are both
// indexed directly by Piece, and NoPiece's position at the end gives the
// Zobrist table a 13th slot used to key en-passant squares (see zobrist.go).
type Piece uint8

const (
	WP Piece = iota
	WN
	WB
	WR
	WQ
	WK
	BP
	BN
	BB
	BR
	BQ
	BK
	NoPiece
)

// NumPieces excludes NoPiece.
const NumPieces = 12

// Kind is a piece type without color: Pawn, Knight, Bishop, Rook, Queen, King.
type Kind uint8

const (
	Pawn Kind = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

// NewPiece combines a color and kind into a colored piece.
func NewPiece(c Color, k Kind) Piece {
	if c == Black {
		return Piece(int(k) + int(BP))
	}
	return Piece(k)
}

// Color returns the piece's color. It does not check for NoPiece, which reports Black.
func (p Piece) Color() Color {
	if p < BP {
		return White
	}
	return Black
}

// Kind returns the piece's type, irrespective of color. It does not check
// for NoPiece, which yields Kind(6), not a valid Kind.
func (p Piece) Kind() Kind {
	if p >= BP {
		return Kind(p - BP)
	}
	return Kind(p)
}

// IsValid reports whether p is a real piece (not NoPiece).
func (p Piece) IsValid() bool {
	return p < NoPiece
}

func ParsePiece(r rune) (Piece, bool) {
	switch r {
	case 'P':
		return WP, true
	case 'N':
		return WN, true
	case 'B':
		return WB, true
	case 'R':
		return WR, true
	case 'Q':
		return WQ, true
	case 'K':
		return WK, true
	case 'p':
		return BP, true
	case 'n':
		return BN, true
	case 'b':
		return BB, true
	case 'r':
		return BR, true
	case 'q':
		return BQ, true
	case 'k':
		return BK, true
	default:
		return NoPiece, false
	}
}

func (p Piece) String() string {
	switch p {
	case WP:
		return "P"
	case WN:
		return "N"
	case WB:
		return "B"
	case WR:
		return "R"
	case WQ:
		return "Q"
	case WK:
		return "K"
	case BP:
		return "p"
	case BN:
		return "n"
	case BB:
		return "b"
	case BR:
		return "r"
	case BQ:
		return "q"
	case BK:
		return "k"
	default:
		return "."
	}
}

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "p"
	case Knight:
		return "n"
	case Bishop:
		return "b"
	case Rook:
		return "r"
	case Queen:
		return "q"
	case King:
		return "k"
	default:
		return "?"
	}
}
