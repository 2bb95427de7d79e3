package ram

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TOKEN_LABEL    = TokenKind(0) // label
	TOKEN_MNEMONIC = TokenKind(1) // mnemonic
	TOKEN_MARKER   = TokenKind(2) // marker
	TOKEN_VALUE    = TokenKind(3) // value
	TOKEN_COMMENT  = TokenKind(4) // comment
	TOKEN_EOL      = TokenKind(5) // eol
)

var tokenNames = [...]string{"label", "mnemonic", "marker", "value", "comment", "eol"}

func (kind TokenKind) String() string {
	if kind < 0 || int(kind) >= len(tokenNames) {
		return fmt.Sprintf("TokenKind(%d)", int(kind))
	}
	return tokenNames[kind]
}

// Token is one lexical element of a source line.
type Token struct {
	Kind TokenKind
	Text string
}

// Tokenize splits a single line of source text into tokens.
//
// A semicolon starts a comment running to the end of the line and ends
// the scan. A word ending in ':' declares a label, with the colon
// stripped. The first word that is not a label declaration is the
// mnemonic; every later word is an operand value. A '=' or '*' sitting
// where a new word would begin stands alone as an addressing marker.
// The token list always ends with a TOKEN_EOL.
func Tokenize(line string) (tokens []Token) {
	var word strings.Builder
	var sawMnemonic bool

	flush := func() {
		if word.Len() == 0 {
			return
		}
		text := word.String()
		word.Reset()

		switch {
		case strings.HasSuffix(text, ":"):
			tokens = append(tokens, Token{Kind: TOKEN_LABEL, Text: text[:len(text)-1]})
		case !sawMnemonic:
			sawMnemonic = true
			tokens = append(tokens, Token{Kind: TOKEN_MNEMONIC, Text: text})
		default:
			tokens = append(tokens, Token{Kind: TOKEN_VALUE, Text: text})
		}
	}

scan:
	for n, c := range line {
		switch {
		case c == ';':
			tokens = append(tokens, Token{Kind: TOKEN_COMMENT, Text: line[n+1:]})
			break scan
		case c == '=' || c == '*':
			if word.Len() == 0 {
				tokens = append(tokens, Token{Kind: TOKEN_MARKER, Text: string(c)})
			} else {
				word.WriteRune(c)
			}
		case unicode.IsSpace(c):
			flush()
		default:
			word.WriteRune(c)
		}
	}

	flush()
	tokens = append(tokens, Token{Kind: TOKEN_EOL})
	return tokens
}
