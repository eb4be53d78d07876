package pgn

import (
	"sort"
	"strconv"
	"strings"

	"opening_tree/internal/domain/chess"
	"opening_tree/internal/domain/tree"
)

type EncodeOptions struct {
	Headers     bool
	Variations  bool
	Annotations bool
	Comments    bool
	// Markups writes [%eval], [%clk], [%csl] and [%cal] into comments.
	Markups bool
	// NumericGlyphs writes every annotation as $n instead of a symbol.
	NumericGlyphs bool
}

func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		Headers:     true,
		Variations:  true,
		Annotations: true,
		Comments:    true,
		Markups:     true,
	}
}

// movetext accumulates tokens separated by single spaces.
type movetext struct {
	sb  *strings.Builder
	sep bool
}

func (w *movetext) token(t string) {
	if w.sep {
		w.sb.WriteByte(' ')
	}
	w.sb.WriteString(t)
	w.sep = true
}

func (w *movetext) open() {
	if w.sep {
		w.sb.WriteByte(' ')
	}
	w.sb.WriteByte('(')
	w.sep = false
}

func (w *movetext) close() {
	w.sb.WriteByte(')')
	w.sep = true
}

// Encode writes s as PGN. The tree is walked iteratively and text goes into
// a single builder, so cost is linear in the output.
func Encode(s *tree.State, opts EncodeOptions) string {
	var sb strings.Builder
	if opts.Headers {
		writeHeaders(&sb, s.Headers)
	}
	w := movetext{sb: &sb}

	needNumber := true
	skip := 0
	tree.WalkEvents(s.Root, func(e tree.Event) bool {
		switch e.Kind {
		case tree.EventOpen:
			if skip > 0 || !opts.Variations {
				skip++
				return true
			}
			w.open()
			needNumber = true
		case tree.EventClose:
			if skip > 0 {
				skip--
				return true
			}
			w.close()
			needNumber = true
		case tree.EventNode:
			if skip > 0 {
				return true
			}
			n := e.Node
			if !n.IsRoot() {
				writeMove(&w, n, needNumber, opts)
				needNumber = false
			}
			if c := formatComment(n, opts.Markups, opts.Comments); c != "" {
				w.token(c)
			}
		}
		return true
	})

	result := s.Headers.Result
	if result == "" {
		result = chess.ResultUnknown
	}
	w.token(result)
	return sb.String()
}

func writeMove(w *movetext, n *tree.Node, needNumber bool, opts EncodeOptions) {
	moved := chess.TurnFromFEN(n.FEN).Other()
	number := moveNumber(n, moved)
	if moved == chess.White {
		w.token(strconv.Itoa(number) + ".")
	} else if needNumber {
		w.token(strconv.Itoa(number) + "...")
	}

	san := n.SAN
	var glyphs []string
	if opts.Annotations {
		for _, a := range n.Annotations {
			switch {
			case opts.NumericGlyphs:
				glyphs = append(glyphs, "$"+strconv.Itoa(a.NAG()))
			case a.IsMoveQuality():
				san += string(a)
			default:
				glyphs = append(glyphs, string(a))
			}
		}
	}
	w.token(san)
	for _, g := range glyphs {
		w.token(g)
	}
}

// moveNumber reads the fullmove counter of the position after the move,
// falling back to the ply count when the FEN has no counter.
func moveNumber(n *tree.Node, moved chess.Color) int {
	fields := strings.Fields(n.FEN)
	if len(fields) >= 6 {
		if full, err := strconv.Atoi(fields[5]); err == nil {
			if moved == chess.Black {
				full--
			}
			if full > 0 {
				return full
			}
		}
	}
	return (n.HalfMoves + 1) / 2
}

var rosterTags = []string{"Event", "Site", "Date", "Round", "White", "Black", "Result"}

func writeHeaders(sb *strings.Builder, h tree.Headers) {
	values := map[string]string{
		"Event":  h.Event,
		"Site":   h.Site,
		"Date":   h.Date,
		"Round":  h.Round,
		"White":  h.White,
		"Black":  h.Black,
		"Result": h.Result,
	}
	defaults := tree.DefaultHeaders()
	fallback := map[string]string{
		"Event":  defaults.Event,
		"Site":   defaults.Site,
		"Date":   defaults.Date,
		"Round":  defaults.Round,
		"White":  defaults.White,
		"Black":  defaults.Black,
		"Result": defaults.Result,
	}
	for _, tag := range rosterTags {
		v := values[tag]
		if v == "" {
			v = fallback[tag]
		}
		writeTag(sb, tag, v)
	}
	if h.FEN != "" {
		writeTag(sb, "SetUp", "1")
		writeTag(sb, "FEN", h.FEN)
	}
	if h.Orientation == chess.Black {
		writeTag(sb, "Orientation", string(chess.Black))
	}
	if len(h.Start) > 0 {
		writeTag(sb, "Start", h.Start.String())
	}
	keys := make([]string, 0, len(h.Extra))
	for k := range h.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeTag(sb, k, h.Extra[k])
	}
	sb.WriteByte('\n')
}

var tagEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func writeTag(sb *strings.Builder, key, value string) {
	sb.WriteByte('[')
	sb.WriteString(key)
	sb.WriteString(` "`)
	sb.WriteString(tagEscaper.Replace(value))
	sb.WriteString("\"]\n")
}
