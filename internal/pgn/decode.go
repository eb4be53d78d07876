package pgn

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"opening_tree/internal/domain/chess"
	"opening_tree/internal/domain/tree"
	errs "opening_tree/internal/errors"
	"opening_tree/internal/rules"
	"opening_tree/internal/usecase/moves"
)

type Codec struct {
	engine    rules.Engine
	tokenizer Tokenizer
	log       *zap.SugaredLogger
}

// NewCodec builds a codec; a nil tokenizer means the default Lexer.
func NewCodec(engine rules.Engine, tokenizer Tokenizer, log *zap.SugaredLogger) *Codec {
	if tokenizer == nil {
		tokenizer = Lexer{}
	}
	return &Codec{engine: engine, tokenizer: tokenizer, log: log}
}

// Parse tokenizes and decodes a single game. Only tokenizer failures are
// returned; bad moves and markup are skipped.
func (c *Codec) Parse(text string) (*tree.State, error) {
	toks, err := c.tokenizer.Tokenize(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidPGN, err)
	}
	return c.Decode(toks), nil
}

// ParseGames decodes every game in a multi-game file.
func (c *Codec) ParseGames(text string) ([]*tree.State, error) {
	toks, err := c.tokenizer.Tokenize(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidPGN, err)
	}
	var games []*tree.State
	for _, g := range splitGames(toks) {
		games = append(games, c.Decode(g))
	}
	return games, nil
}

// splitGames cuts after each top-level outcome and before a header that
// follows movetext.
func splitGames(toks []Token) [][]Token {
	var games [][]Token
	start, depth, body := 0, 0, false
	for i, t := range toks {
		switch t.Kind {
		case TokenHeader:
			if body && i > start {
				games = append(games, toks[start:i])
				start, depth, body = i, 0, false
			}
		case TokenVariationOpen:
			depth++
			body = true
		case TokenVariationClose:
			if depth > 0 {
				depth--
			}
		case TokenOutcome:
			if depth == 0 {
				games = append(games, toks[start:i+1])
				start, body = i+1, false
			}
		default:
			body = true
		}
	}
	if start < len(toks) {
		games = append(games, toks[start:])
	}
	return games
}

// frame is one line being decoded. node is the last node created on the
// line, before is the position just before node's move: the seed for a
// variation that branches off at node.
type frame struct {
	node    *tree.Node
	parent  *tree.Node
	pos     rules.Position
	before  rules.Position
	fresh   bool
	pending []string
}

// Decode builds a tree from tokens. One live position is advanced along each
// line; variations start from a clone of the position before the move they
// replace. Nested variations use an explicit stack.
func (c *Codec) Decode(toks []Token) *tree.State {
	headers := tree.DefaultHeaders()
	i := 0
	for ; i < len(toks) && toks[i].Kind == TokenHeader; i++ {
		applyHeader(&headers, toks[i])
	}

	fen := c.engine.DefaultFEN()
	if headers.FEN != "" {
		fen = headers.FEN
	}
	pos, err := c.engine.Position(fen)
	if err != nil {
		c.log.Warnf("bad FEN header %q, using the standard start: %v", fen, err)
		fen = c.engine.DefaultFEN()
		headers.FEN = ""
		if pos, err = c.engine.Position(fen); err != nil {
			c.log.Errorf("rules engine rejected the default position: %v", err)
			st := tree.New(fen)
			st.Headers = headers
			return st
		}
	}
	if fen == c.engine.DefaultFEN() {
		headers.FEN = ""
	}

	root := tree.NewRoot(fen)
	cur := frame{node: root, pos: pos}
	var stack []frame

	for ; i < len(toks); i++ {
		tok := toks[i]
		switch tok.Kind {
		case TokenMove:
			if cur.pos == nil {
				continue
			}
			before := cur.pos.Clone()
			n, err := moves.Step(cur.pos, cur.node, tok.Value)
			if err != nil {
				c.log.Debugf("skipping move %q: %v", tok.Value, err)
				continue
			}
			for _, raw := range cur.pending {
				applyComment(n, parseComment(raw))
			}
			cur.node.Children = append(cur.node.Children, n)
			cur = frame{node: n, parent: cur.node, pos: cur.pos, before: before}

		case TokenVariationOpen:
			stack = append(stack, cur)
			if cur.parent == nil {
				cur = frame{fresh: true}
				continue
			}
			cur = frame{node: cur.parent, pos: cur.before.Clone(), fresh: true}

		case TokenVariationClose:
			if len(stack) == 0 {
				continue
			}
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]

		case TokenComment:
			if cur.fresh {
				cur.pending = append(cur.pending, tok.Value)
				continue
			}
			if cur.node != nil {
				applyComment(cur.node, parseComment(tok.Value))
			}

		case TokenNAG:
			a, ok := tree.ParseAnnotation(tok.Value)
			if !ok || cur.fresh || cur.node == nil || cur.node == root {
				continue
			}
			cur.node.Annotations = tree.SortAnnotations(append(cur.node.Annotations, a))

		case TokenOutcome:
			if len(stack) == 0 && (headers.Result == "" || headers.Result == chess.ResultUnknown) {
				headers.Result = tok.Value
			}
		}
	}

	return &tree.State{
		Root:     root,
		Position: tree.Path{},
		Headers:  headers,
	}
}

func applyComment(n *tree.Node, cm commentMarkup) {
	if cm.Score != nil {
		n.Score = cm.Score
	}
	if cm.Clock != nil {
		n.Clock = cm.Clock
	}
	n.Shapes = append(n.Shapes, cm.Shapes...)
	if cm.Text != "" {
		if n.Comment != "" {
			n.Comment += " " + cm.Text
		} else {
			n.Comment = cm.Text
		}
	}
}

func applyHeader(h *tree.Headers, tok Token) {
	v := tok.Value
	switch tok.Key {
	case "Event":
		h.Event = v
	case "Site":
		h.Site = v
	case "Date":
		h.Date = v
	case "Round":
		h.Round = v
	case "White":
		h.White = v
	case "Black":
		h.Black = v
	case "Result":
		h.Result = v
	case "FEN":
		h.FEN = v
	case "SetUp":
	case "Orientation":
		if strings.EqualFold(v, string(chess.Black)) {
			h.Orientation = chess.Black
		} else {
			h.Orientation = chess.White
		}
	case "Start":
		if p, err := tree.ParsePath(v); err == nil {
			h.Start = p
		}
	default:
		if h.Extra == nil {
			h.Extra = make(map[string]string)
		}
		h.Extra[tok.Key] = v
	}
}
