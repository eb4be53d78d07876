package pgn

type TokenKind int

const (
	TokenHeader TokenKind = iota
	TokenMove
	TokenNAG
	TokenComment
	TokenVariationOpen
	TokenVariationClose
	TokenOutcome
)

func (k TokenKind) String() string {
	switch k {
	case TokenHeader:
		return "header"
	case TokenMove:
		return "move"
	case TokenNAG:
		return "nag"
	case TokenComment:
		return "comment"
	case TokenVariationOpen:
		return "open"
	case TokenVariationClose:
		return "close"
	case TokenOutcome:
		return "outcome"
	}
	return "unknown"
}

// Token is one lexical unit of a PGN game. Headers carry their tag in Key.
type Token struct {
	Kind  TokenKind
	Key   string
	Value string
}

// Tokenizer turns PGN text into tokens. Move numbers are not tokens.
type Tokenizer interface {
	Tokenize(text string) ([]Token, error)
}
