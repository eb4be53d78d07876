package pgn

import (
	"fmt"
	"strings"

	"opening_tree/internal/domain/tree"
)

// Lexer is the default Tokenizer for export-format PGN.
type Lexer struct{}

func (Lexer) Tokenize(text string) ([]Token, error) {
	var toks []Token
	lineStart := true
	i := 0
	for i < len(text) {
		c := text[i]
		switch c {
		case '\n':
			lineStart = true
			i++
			continue
		case ' ', '\t', '\r', '\f', '\v':
			i++
			continue
		}

		switch {
		case c == '%' && lineStart:
			i = skipLine(text, i)
		case c == ';':
			end := skipLine(text, i)
			toks = append(toks, Token{Kind: TokenComment, Value: strings.TrimSpace(text[i+1 : end])})
			i = end
		case c == '{':
			j := strings.IndexByte(text[i+1:], '}')
			if j < 0 {
				return nil, fmt.Errorf("unterminated comment at offset %d", i)
			}
			toks = append(toks, Token{Kind: TokenComment, Value: text[i+1 : i+1+j]})
			i += j + 2
		case c == '[':
			tok, next, err := readHeader(text, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next
		case c == '(':
			toks = append(toks, Token{Kind: TokenVariationOpen})
			i++
		case c == ')':
			toks = append(toks, Token{Kind: TokenVariationClose})
			i++
		case c == '*':
			toks = append(toks, Token{Kind: TokenOutcome, Value: "*"})
			i++
		case c == '$':
			j := i + 1
			for j < len(text) && text[j] >= '0' && text[j] <= '9' {
				j++
			}
			if j > i+1 {
				toks = append(toks, Token{Kind: TokenNAG, Value: text[i:j]})
			}
			i = j
		default:
			j := i
			for j < len(text) && !isDelimiter(text[j]) {
				j++
			}
			if j == i {
				// stray delimiter such as ']' or '}'
				j++
			} else {
				toks = appendWord(toks, text[i:j])
			}
			i = j
		}
		lineStart = false
	}
	return toks, nil
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', '\v', '{', '}', '(', ')', '[', ']', ';', '$':
		return true
	}
	return false
}

func skipLine(text string, i int) int {
	j := strings.IndexByte(text[i:], '\n')
	if j < 0 {
		return len(text)
	}
	return i + j
}

func readHeader(text string, i int) (Token, int, error) {
	j := i + 1
	for j < len(text) && text[j] == ' ' {
		j++
	}
	k := j
	for k < len(text) && !isDelimiter(text[k]) && text[k] != '"' {
		k++
	}
	key := text[j:k]
	for k < len(text) && text[k] == ' ' {
		k++
	}
	if key == "" || k >= len(text) || text[k] != '"' {
		return Token{}, 0, fmt.Errorf("malformed header at offset %d", i)
	}
	var val strings.Builder
	k++
	for ; k < len(text) && text[k] != '"'; k++ {
		if text[k] == '\\' && k+1 < len(text) {
			k++
		}
		val.WriteByte(text[k])
	}
	if k >= len(text) {
		return Token{}, 0, fmt.Errorf("unterminated header at offset %d", i)
	}
	end := strings.IndexByte(text[k:], ']')
	if end < 0 {
		return Token{}, 0, fmt.Errorf("unterminated header at offset %d", i)
	}
	return Token{Kind: TokenHeader, Key: key, Value: val.String()}, k + end + 1, nil
}

func appendWord(toks []Token, word string) []Token {
	switch word {
	case "1-0", "0-1", "1/2-1/2":
		return append(toks, Token{Kind: TokenOutcome, Value: word})
	case "½-½":
		return append(toks, Token{Kind: TokenOutcome, Value: "1/2-1/2"})
	}

	if strings.HasPrefix(word, "0-0") {
		word = strings.ReplaceAll(word, "0", "O")
	}

	// move numbers: "12." "12..." or glued "1.e4"
	d := 0
	for d < len(word) && word[d] >= '0' && word[d] <= '9' {
		d++
	}
	if d > 0 {
		dots := d
		for dots < len(word) && word[dots] == '.' {
			dots++
		}
		if dots == len(word) || dots > d {
			word = word[dots:]
		}
		if word == "" {
			return toks
		}
	}
	for len(word) > 0 && word[0] == '.' {
		word = word[1:]
	}
	if word == "" {
		return toks
	}

	if _, ok := tree.ParseAnnotation(word); ok && !strings.ContainsAny(word[:1], "abcdefghKQRBO") {
		return append(toks, Token{Kind: TokenNAG, Value: word})
	}

	move := strings.TrimRight(word, "!?")
	suffix := word[len(move):]
	if move != "" {
		toks = append(toks, Token{Kind: TokenMove, Value: move})
	}
	if suffix != "" {
		toks = append(toks, Token{Kind: TokenNAG, Value: suffix})
	}
	return toks
}
