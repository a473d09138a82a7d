package rules

import (
	"strings"

	"github.com/corentings/chess/v2"
)

// Color is the side to move.
type Color = chess.Color

const (
	White = chess.White
	Black = chess.Black
)

// Promotion hints accepted by Apply.
const (
	PromoteQueen  = "q"
	PromoteRook   = "r"
	PromoteBishop = "b"
	PromoteKnight = "n"
)

// Move is a legal move in the current position.
type Move struct {
	From    string `json:"from"`
	To      string `json:"to"`
	SAN     string `json:"san"`
	Capture bool   `json:"capture"`
	Promo   string `json:"promo,omitempty"`
}

// Engine is the set of rule queries and commands the controller and the
// move strategies rely on. Illegal moves are reported as ok == false.
type Engine interface {
	LegalMoves(square string) []Move
	Apply(from, to, promotion string) (fen string, ok bool)
	FEN() string
	IsGameOver() bool
	IsCheckmate() bool
	IsDraw() bool
	IsStalemate() bool
	IsInsufficientMaterial() bool
	IsRepetition() bool
	IsFiftyMoveRule() bool
	SideToMove() Color
	History() []string
}

// Game wraps a chess.Game and records SAN history as moves are pushed.
type Game struct {
	g       *chess.Game
	history []string
}

// NewGame returns a game in the standard starting position.
func NewGame() *Game {
	return &Game{g: chess.NewGame()}
}

// FromFEN returns a game starting from the given position.
func FromFEN(fen string) (*Game, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, err
	}
	return &Game{g: chess.NewGame(opt)}, nil
}

// LegalMoves lists the legal moves starting on square, or every legal move
// when square is empty. A finished game has none.
func (r *Game) LegalMoves(square string) []Move {
	if r.IsGameOver() {
		return nil
	}
	var from chess.Square
	if square != "" {
		sq, ok := parseSquare(square)
		if !ok {
			return nil
		}
		from = sq
	}
	pos := r.g.Position()
	valid := r.g.ValidMoves()
	out := make([]Move, 0, len(valid))
	for i := range valid {
		m := &valid[i]
		if square != "" && m.S1() != from {
			continue
		}
		san := chess.AlgebraicNotation{}.Encode(pos, m)
		out = append(out, Move{
			From:    m.S1().String(),
			To:      m.S2().String(),
			SAN:     san,
			Capture: strings.Contains(san, "x"),
			Promo:   promoString(m.Promo()),
		})
	}
	return out
}

// Apply plays from→to. The promotion hint is only consulted when the move
// is a promotion; an empty hint promotes to a queen.
func (r *Game) Apply(from, to, promotion string) (string, bool) {
	if r.IsGameOver() {
		return "", false
	}
	s1, ok := parseSquare(from)
	if !ok {
		return "", false
	}
	s2, ok := parseSquare(to)
	if !ok {
		return "", false
	}
	want := promoPiece(promotion)
	pos := r.g.Position()
	valid := r.g.ValidMoves()
	for i := range valid {
		m := &valid[i]
		if m.S1() != s1 || m.S2() != s2 {
			continue
		}
		if m.Promo() != chess.NoPieceType && m.Promo() != want {
			continue
		}
		san := chess.AlgebraicNotation{}.Encode(pos, m)
		uci := chess.UCINotation{}.Encode(pos, m)
		if err := r.g.PushNotationMove(uci, chess.UCINotation{}, nil); err != nil {
			return "", false
		}
		r.history = append(r.history, san)
		r.claimDraws()
		return r.FEN(), true
	}
	return "", false
}

// claimDraws ends the game on draws the library only makes claimable.
func (r *Game) claimDraws() {
	if r.g.Outcome() != chess.NoOutcome {
		return
	}
	for _, m := range r.g.EligibleDraws() {
		switch m {
		case chess.ThreefoldRepetition, chess.FiftyMoveRule:
			if err := r.g.Draw(m); err == nil {
				return
			}
		}
	}
}

// Resign records a resignation by color.
func (r *Game) Resign(color Color) {
	if r.IsGameOver() {
		return
	}
	r.g.Resign(color)
}

func (r *Game) FEN() string { return r.g.Position().String() }

func (r *Game) SideToMove() Color { return r.g.Position().Turn() }

func (r *Game) IsGameOver() bool { return r.g.Outcome() != chess.NoOutcome }

func (r *Game) IsCheckmate() bool { return r.g.Method() == chess.Checkmate }

func (r *Game) IsDraw() bool { return r.g.Outcome() == chess.Draw }

func (r *Game) IsStalemate() bool { return r.g.Method() == chess.Stalemate }

// IsInsufficientMaterial reports whether neither side has mating material,
// whatever the game's recorded end method is.
func (r *Game) IsInsufficientMaterial() bool {
	var knights int
	bishops := [2]int{}
	for sq, p := range r.g.Position().Board().SquareMap() {
		switch p.Type() {
		case chess.King:
		case chess.Knight:
			knights++
		case chess.Bishop:
			bishops[(int(sq.File())+int(sq.Rank()))%2]++
		default:
			return false
		}
	}
	minors := knights + bishops[0] + bishops[1]
	switch {
	case minors <= 1:
		return true
	case knights == 0:
		return bishops[0] == 0 || bishops[1] == 0
	}
	return false
}

func (r *Game) IsRepetition() bool {
	m := r.g.Method()
	return m == chess.ThreefoldRepetition || m == chess.FivefoldRepetition
}

func (r *Game) IsFiftyMoveRule() bool {
	m := r.g.Method()
	return m == chess.FiftyMoveRule || m == chess.SeventyFiveMoveRule
}

// History returns a copy of the SAN move list.
func (r *Game) History() []string {
	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}

// Outcome is the PGN result: "*", "1-0", "0-1" or "1/2-1/2".
func (r *Game) Outcome() string { return r.g.Outcome().String() }

// Method names how the game ended, empty while it is running.
func (r *Game) Method() string {
	if !r.IsGameOver() {
		return ""
	}
	return r.g.Method().String()
}

// PGN exports the game.
func (r *Game) PGN() string { return r.g.String() }

// PieceAt returns the FEN letter of the piece on square ("" when empty).
func (r *Game) PieceAt(square string) string {
	sq, ok := parseSquare(square)
	if !ok {
		return ""
	}
	p := r.g.Position().Board().Piece(sq)
	if p == chess.NoPiece {
		return ""
	}
	letter := p.Type().String()
	if p.Color() == chess.White {
		return strings.ToUpper(letter)
	}
	return letter
}

// parseSquare converts "e4" to a board square.
func parseSquare(s string) (chess.Square, bool) {
	if len(s) != 2 {
		return chess.NoSquare, false
	}
	f, rk := s[0], s[1]
	if f < 'a' || f > 'h' || rk < '1' || rk > '8' {
		return chess.NoSquare, false
	}
	return chess.Square(int(rk-'1')*8 + int(f-'a')), true
}

func promoString(p chess.PieceType) string {
	switch p {
	case chess.Queen:
		return PromoteQueen
	case chess.Rook:
		return PromoteRook
	case chess.Bishop:
		return PromoteBishop
	case chess.Knight:
		return PromoteKnight
	}
	return ""
}

func promoPiece(s string) chess.PieceType {
	switch strings.ToLower(s) {
	case PromoteRook:
		return chess.Rook
	case PromoteBishop:
		return chess.Bishop
	case PromoteKnight:
		return chess.Knight
	}
	return chess.Queen
}
