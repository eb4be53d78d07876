package tree

import (
	"sort"
	"strconv"
	"strings"
)

// Annotation is a symbolic move or position annotation ("!", "±", ...).
type Annotation string

const (
	Good        Annotation = "!"
	Mistake     Annotation = "?"
	Brilliant   Annotation = "!!"
	Blunder     Annotation = "??"
	Interesting Annotation = "!?"
	Dubious     Annotation = "?!"
	Forced      Annotation = "□"
	Equal       Annotation = "="
	Unclear     Annotation = "∞"
	WhiteSlight Annotation = "⩲"
	BlackSlight Annotation = "⩱"
	WhiteBetter Annotation = "±"
	BlackBetter Annotation = "∓"
	WhiteWins   Annotation = "+-"
	BlackWins   Annotation = "-+"
	Zugzwang    Annotation = "⨀"
	Development Annotation = "⟳"
	Initiative  Annotation = "→"
	Attack      Annotation = "↑"
	Counterplay Annotation = "⇆"
	Novelty     Annotation = "N"
)

// nag numbers, the canonical sort key
var annotationNAG = map[Annotation]int{
	Good:        1,
	Mistake:     2,
	Brilliant:   3,
	Blunder:     4,
	Interesting: 5,
	Dubious:     6,
	Forced:      7,
	Equal:       10,
	Unclear:     13,
	WhiteSlight: 14,
	BlackSlight: 15,
	WhiteBetter: 16,
	BlackBetter: 17,
	WhiteWins:   18,
	BlackWins:   19,
	Zugzwang:    22,
	Development: 32,
	Initiative:  36,
	Attack:      40,
	Counterplay: 132,
	Novelty:     146,
}

var nagAnnotation = func() map[int]Annotation {
	m := make(map[int]Annotation, len(annotationNAG))
	for a, n := range annotationNAG {
		m[n] = a
	}
	// PGN aliases for the same symbols
	m[11] = Equal
	m[12] = Equal
	m[23] = Zugzwang
	m[33] = Development
	m[37] = Initiative
	m[41] = Attack
	m[133] = Counterplay
	return m
}()

// NAG returns the numeric annotation glyph for a, or 0 when unknown.
func (a Annotation) NAG() int {
	return annotationNAG[a]
}

// IsMoveQuality reports the six mutually exclusive move-quality glyphs.
func (a Annotation) IsMoveQuality() bool {
	n := a.NAG()
	return n >= 1 && n <= 6
}

func (a Annotation) Valid() bool {
	_, ok := annotationNAG[a]
	return ok
}

// ParseAnnotation maps "$n" or a literal symbol to an annotation.
func ParseAnnotation(s string) (Annotation, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "$") {
		n, err := strconv.Atoi(s[1:])
		if err != nil {
			return "", false
		}
		a, ok := nagAnnotation[n]
		return a, ok
	}
	a := Annotation(s)
	if a.Valid() {
		return a, true
	}
	return "", false
}

// SortAnnotations orders annotations by NAG number and drops duplicates.
func SortAnnotations(as []Annotation) []Annotation {
	if len(as) == 0 {
		return as
	}
	out := append([]Annotation(nil), as...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].NAG() < out[j].NAG() })
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}
