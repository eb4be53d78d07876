package pgn

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"opening_tree/internal/domain/tree"
)

var markupRe = regexp.MustCompile(`\[%(eval|clk|csl|cal)\s+([^\]]*)\]`)

// commentMarkup is what one PGN comment carries besides free text.
type commentMarkup struct {
	Score  *tree.Score
	Clock  *time.Duration
	Shapes []tree.Shape
	Text   string
}

func parseComment(raw string) commentMarkup {
	var cm commentMarkup
	rest := markupRe.ReplaceAllStringFunc(raw, func(m string) string {
		sub := markupRe.FindStringSubmatch(m)
		arg := strings.TrimSpace(sub[2])
		switch sub[1] {
		case "eval":
			if s, ok := parseEval(arg); ok {
				cm.Score = s
			}
		case "clk":
			if d, ok := parseClock(arg); ok {
				cm.Clock = &d
			}
		case "csl", "cal":
			cm.Shapes = append(cm.Shapes, parseShapes(arg)...)
		}
		return " "
	})
	cm.Text = strings.Join(strings.Fields(rest), " ")
	return cm
}

func parseEval(arg string) (*tree.Score, bool) {
	depth := 0
	if i := strings.IndexByte(arg, ','); i >= 0 {
		depth, _ = strconv.Atoi(strings.TrimSpace(arg[i+1:]))
		arg = strings.TrimSpace(arg[:i])
	}
	if strings.HasPrefix(arg, "#") {
		n, err := strconv.Atoi(arg[1:])
		if err != nil {
			return nil, false
		}
		s := tree.MateScore(n)
		s.Depth = depth
		return s, true
	}
	f, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return nil, false
	}
	s := tree.CPScore(int(math.Round(f * 100)))
	s.Depth = depth
	return s, true
}

func formatEval(s *tree.Score) string {
	var v string
	if s.Mate != nil {
		v = fmt.Sprintf("#%d", *s.Mate)
	} else if s.CP != nil {
		v = strconv.FormatFloat(float64(*s.CP)/100, 'f', 2, 64)
	} else {
		return ""
	}
	if s.Depth > 0 {
		v += "," + strconv.Itoa(s.Depth)
	}
	return v
}

// parseClock reads H:MM:SS with optional fractional seconds.
func parseClock(arg string) (time.Duration, bool) {
	parts := strings.Split(arg, ":")
	if len(parts) > 3 {
		return 0, false
	}
	var total float64
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || f < 0 {
			return 0, false
		}
		total = total*60 + f
	}
	return time.Duration(math.Round(total*1000)) * time.Millisecond, true
}

func formatClock(d time.Duration) string {
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	out := fmt.Sprintf("%d:%02d:%02d", h, m, s)
	if frac := (d % time.Second) / (100 * time.Millisecond); frac > 0 {
		out += "." + strconv.Itoa(int(frac))
	}
	return out
}

var brushByLetter = map[byte]tree.Brush{
	'G': tree.BrushGreen,
	'R': tree.BrushRed,
	'Y': tree.BrushYellow,
	'B': tree.BrushBlue,
}

var letterByBrush = map[tree.Brush]string{
	tree.BrushGreen:  "G",
	tree.BrushRed:    "R",
	tree.BrushYellow: "Y",
	tree.BrushBlue:   "B",
}

func parseShapes(arg string) []tree.Shape {
	var shapes []tree.Shape
	for _, item := range strings.Split(arg, ",") {
		item = strings.TrimSpace(item)
		if len(item) != 3 && len(item) != 5 {
			continue
		}
		brush, ok := brushByLetter[item[0]]
		if !ok {
			continue
		}
		sh := tree.Shape{Orig: item[1:3], Brush: brush}
		if len(item) == 5 {
			sh.Dest = item[3:5]
		}
		shapes = append(shapes, sh)
	}
	return shapes
}

func formatShapes(shapes []tree.Shape) (squares, arrows string) {
	var sq, ar []string
	for _, sh := range shapes {
		letter, ok := letterByBrush[sh.Brush]
		if !ok {
			letter = "G"
		}
		if sh.IsArrow() {
			ar = append(ar, letter+sh.Orig+sh.Dest)
		} else {
			sq = append(sq, letter+sh.Orig)
		}
	}
	return strings.Join(sq, ","), strings.Join(ar, ",")
}

// formatComment bundles markup and text in a fixed order: eval, clock,
// squares, arrows, text. Empty when there is nothing to write.
func formatComment(n *tree.Node, markups, text bool) string {
	var parts []string
	if markups {
		if n.Score != nil {
			if v := formatEval(n.Score); v != "" {
				parts = append(parts, "[%eval "+v+"]")
			}
		}
		if n.Clock != nil {
			parts = append(parts, "[%clk "+formatClock(*n.Clock)+"]")
		}
		squares, arrows := formatShapes(n.Shapes)
		if squares != "" {
			parts = append(parts, "[%csl "+squares+"]")
		}
		if arrows != "" {
			parts = append(parts, "[%cal "+arrows+"]")
		}
	}
	if text && n.Comment != "" {
		parts = append(parts, strings.ReplaceAll(n.Comment, "}", ")"))
	}
	if len(parts) == 0 {
		return ""
	}
	return "{" + strings.Join(parts, " ") + "}"
}
