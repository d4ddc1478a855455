package dot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode"

	"github.com/pplang/pplang/token"
)

// Scanner tokenizes DOT language source code into a stream of tokens.
type Scanner struct {
	r         *bufio.Reader
	cur       rune
	curLine   int
	curColumn int
	next      rune
	eof       bool
	err       error
}

// NewScanner creates a new scanner that reads DOT source code from r. Returns an error if the
// scanner cannot be initialized.
func NewScanner(r io.Reader) (*Scanner, error) {
	scanner := Scanner{
		r:       bufio.NewReader(r),
		curLine: 1,
	}

	// 2 readRune calls are needed to fill the cur and next runes
	if err := scanner.readRune(); err != nil {
		return nil, err
	}
	if err := scanner.readRune(); err != nil {
		return nil, err
	}
	scanner.curColumn = 1

	return &scanner, nil
}

const (
	maxUnquotedStringLen   = 16347 // adjusted https://gitlab.com/graphviz/graphviz/-/issues/1261 to be zero based
	unquotedStringStartErr = "unquoted identifiers must start with a letter or underscore, and can only contain letters, digits, and underscores"
	unquotedStringErr      = "unquoted identifiers can only contain letters, digits, and underscores"
	unquotedStringNulErr   = "illegal character NUL: unquoted identifiers can only contain letters, digits, and underscores"
)

// Next advances the scanner's position by one token and returns it. The scanner stops trying to
// tokenize more tokens on the first error it encounters. A token of type [token.EOF] is returned
// once the underlying reader is exhausted and the peek rune has been consumed.
func (sc *Scanner) Next() (token.Token, error) {
	var tok token.Token
	var err error

	sc.skipWhitespace()
	if sc.err != nil {
		return tok, sc.err
	}
	if sc.isEOF() {
		tok.Type = token.EOF
		return tok, nil
	}

	switch sc.cur {
	case '{':
		tok = sc.tokenizeRuneAs(token.LeftBrace)
	case '}':
		tok = sc.tokenizeRuneAs(token.RightBrace)
	case '[':
		tok = sc.tokenizeRuneAs(token.LeftBracket)
	case ']':
		tok = sc.tokenizeRuneAs(token.RightBracket)
	case ':':
		tok = sc.tokenizeRuneAs(token.Colon)
	case ',':
		tok = sc.tokenizeRuneAs(token.Comma)
	case ';':
		tok = sc.tokenizeRuneAs(token.Semicolon)
	case '=':
		tok = sc.tokenizeRuneAs(token.Equal)
	case '#', '/':
		tok, err = sc.tokenizeComment()
	default:
		switch {
		case isEdgeOperator(sc.cur, sc.next):
			tok, err = sc.tokenizeEdgeOperator()
		case isStartOfIdentifier(sc.cur):
			tok, err = sc.tokenizeIdentifier()
			// tokenizeIdentifier already advances past its token, so return directly instead of
			// falling through to the trailing readRune below.
			if err != nil {
				sc.err = err
			}
			return tok, err
		default:
			err = sc.error(unquotedStringStartErr)
			pos := sc.pos()
			tok = token.Token{Type: token.ERROR, Literal: string(sc.cur), Error: err.Error(), Start: pos, End: pos}
		}
	}

	if err != nil {
		sc.err = err
		return tok, err
	}

	if err := sc.readRune(); err != nil {
		return tok, err
	}
	return tok, nil
}

func (sc *Scanner) pos() token.Position {
	return token.Position{Line: sc.curLine, Column: sc.curColumn}
}

// readRune reads one rune and advances the scanner's position markers depending on the rune read.
func (sc *Scanner) readRune() error {
	if sc.isDone() {
		return sc.err
	}

	r, _, err := sc.r.ReadRune()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			sc.err = fmt.Errorf("failed to read rune: %w", err)
			return sc.err
		}
		sc.eof = true
	}

	if sc.cur == '\n' {
		sc.curLine++
		sc.curColumn = 1
	} else if sc.cur != 0 {
		sc.curColumn++
	}
	sc.cur = sc.next
	sc.next = r
	return nil
}

func (sc *Scanner) skipWhitespace() {
	for isWhitespace(sc.cur) {
		if err := sc.readRune(); err != nil {
			return
		}
	}
}

// isWhitespace reports whether the rune is considered whitespace. It excludes non-breaking
// whitespace \240, which [unicode.IsSpace] considers whitespace.
func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

func (sc *Scanner) hasNext() bool {
	return !sc.eof || sc.cur != 0
}

func (sc *Scanner) isDone() bool {
	return sc.isEOF() || sc.err != nil
}

func (sc *Scanner) isEOF() bool {
	return !sc.hasNext()
}

func (sc *Scanner) tokenizeRuneAs(kind token.Kind) token.Token {
	pos := sc.pos()
	return token.Token{Type: kind, Literal: string(sc.cur), Start: pos, End: pos}
}

func (sc *Scanner) tokenizeComment() (token.Token, error) {
	var tok token.Token
	var err error
	var comment []rune
	var hasClosingMarker bool

	if sc.cur == '/' && sc.hasNext() && sc.next != '/' && sc.next != '*' {
		pos := sc.pos()
		e := sc.error("missing '/' for single-line or a '*' for a multi-line comment")
		return token.Token{Type: token.ERROR, Literal: string(sc.cur), Error: e.Error(), Start: pos, End: pos}, e
	}

	start := sc.pos()
	var end token.Position
	isMultiLine := sc.cur == '/' && sc.hasNext() && sc.next == '*'
	for ; sc.hasNext() && err == nil && (isMultiLine || sc.cur != '\n'); err = sc.readRune() {
		end = sc.pos()
		comment = append(comment, sc.cur)

		if isMultiLine && sc.cur == '*' && sc.hasNext() && sc.next == '/' {
			hasClosingMarker = true
			comment = append(comment, sc.next)
			err = sc.readRune() // consume the '/' of the closing marker
			end = sc.pos()
			break
		}
	}

	if isMultiLine && !hasClosingMarker {
		pos := sc.pos()
		e := sc.error("missing closing marker '*/' for multi-line comment")
		return token.Token{Type: token.ERROR, Literal: string(sc.cur), Error: e.Error(), Start: pos, End: pos}, e
	}
	if err != nil {
		return tok, err
	}

	return token.Token{Type: token.Comment, Literal: string(comment), Start: start, End: end}, nil
}

func isEdgeOperator(first, second rune) bool {
	return first == '-' && (second == '>' || second == '-')
}

func (sc *Scanner) tokenizeEdgeOperator() (token.Token, error) {
	start := sc.pos()
	if err := sc.readRune(); err != nil {
		var tok token.Token
		return tok, err
	}

	end := sc.pos()
	if sc.cur == '-' {
		return token.Token{Type: token.UndirectedEdge, Literal: token.UndirectedEdge.String(), Start: start, End: end}, nil
	}
	return token.Token{Type: token.DirectedEdge, Literal: token.DirectedEdge.String(), Start: start, End: end}, nil
}

func isStartOfIdentifier(r rune) bool {
	return isStartOfUnquotedString(r) || isStartOfNumeral(r) || isStartOfQuotedString(r)
}

func isStartOfUnquotedString(r rune) bool {
	return r == '_' || isAlphabetic(r)
}

// isAlphabetic reports whether the rune is part of the allowed alphabetic characters of an
// [unquoted identifier].
//
// The Graphviz spec mentions \200-\377 which refers to UTF-8 bytes with the high bit set. In
// practice, this means any UTF-8 encoded character (rune >= 0x80) is accepted.
//
// [unquoted identifier]: https://graphviz.org/doc/info/lang.html#ids
func isAlphabetic(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '\200')
}

func isStartOfNumeral(r rune) bool {
	return r == '-' || r == '.' || unicode.IsDigit(r)
}

func isStartOfQuotedString(r rune) bool {
	return r == '"'
}

func (sc *Scanner) tokenizeIdentifier() (token.Token, error) {
	switch {
	case isStartOfUnquotedString(sc.cur):
		return sc.tokenizeUnquotedString()
	case isStartOfNumeral(sc.cur):
		return sc.tokenizeNumeral()
	case isStartOfQuotedString(sc.cur):
		return sc.tokenizeQuotedString()
	}

	var tok token.Token
	return tok, sc.error("invalid token")
}

func (sc *Scanner) error(reason string) error {
	pos := sc.pos()
	if sc.cur == 0 {
		return fmt.Errorf("%d:%d: %s", pos.Line, pos.Column, reason)
	}
	return fmt.Errorf("%d:%d: illegal character %#U: %s", pos.Line, pos.Column, sc.cur, reason)
}

// tokenizeUnquotedString considers the current rune(s) as an identifier that might be a DOT
// keyword.
func (sc *Scanner) tokenizeUnquotedString() (token.Token, error) {
	var tok token.Token
	var err error
	var id []rune
	start := sc.pos()
	var end token.Position

	for ; sc.hasNext() && err == nil && !isUnquotedStringSeparator(sc.cur); err = sc.readRune() {
		end = sc.pos()
		if !isLegalInUnquotedString(sc.cur) {
			pos := sc.pos()
			if sc.cur == 0 {
				e := sc.error(unquotedStringNulErr)
				return token.Token{Type: token.ERROR, Literal: string(sc.cur), Error: e.Error(), Start: pos, End: pos}, e
			}
			e := sc.error(unquotedStringErr)
			return token.Token{Type: token.ERROR, Literal: string(sc.cur), Error: e.Error(), Start: pos, End: pos}, e
		}
		id = append(id, sc.cur)
	}
	if err != nil {
		return tok, err
	}

	literal := string(id)
	return token.Token{Type: token.Lookup(literal), Literal: literal, Start: start, End: end}, nil
}

// isUnquotedStringSeparator reports whether the rune separates tokens.
func isUnquotedStringSeparator(r rune) bool {
	return isTerminal(r) || isWhitespace(r) || r == '-' || r == '/' || r == '#' || r == '"'
}

// isTerminal reports whether the rune is a single-rune terminal token of the DOT language. Edge
// operators are not considered since they are two runes.
func isTerminal(r rune) bool {
	switch r {
	case '{', '}', '[', ']', ':', ';', '=', ',':
		return true
	}
	return false
}

func isLegalInUnquotedString(r rune) bool {
	return isStartOfUnquotedString(r) || unicode.IsDigit(r)
}

func (sc *Scanner) tokenizeNumeral() (token.Token, error) {
	var tok token.Token
	var err error
	var id []rune
	var hasDigit, hasDot bool
	start := sc.pos()
	var end token.Position

	for pos := 0; sc.hasNext() && err == nil && !sc.isNumeralSeparator(); err, pos = sc.readRune(), pos+1 {
		end = sc.pos()
		if sc.cur == '-' && pos != 0 {
			e := sc.error("a numeral can only be prefixed with a `-`")
			return token.Token{Type: token.ERROR, Literal: string(sc.cur), Error: e.Error(), Start: end, End: end}, e
		}
		if sc.cur == '.' && hasDot {
			e := sc.error("a numeral can only have one `.` that is at least preceded or followed by digits")
			return token.Token{Type: token.ERROR, Literal: string(sc.cur), Error: e.Error(), Start: end, End: end}, e
		}
		if sc.cur != '-' && sc.cur != '.' && !unicode.IsDigit(sc.cur) {
			e := sc.error("a numeral can optionally lead with a `-`, has to have at least one digit before or after a `.` which must only be followed by digits")
			return token.Token{Type: token.ERROR, Literal: string(sc.cur), Error: e.Error(), Start: end, End: end}, e
		}

		if sc.cur == '.' {
			hasDot = true
		} else if unicode.IsDigit(sc.cur) {
			hasDigit = true
		}
		id = append(id, sc.cur)
	}

	if !hasDigit {
		pos := sc.pos()
		e := sc.error("a numeral must have at least one digit")
		return token.Token{Type: token.ERROR, Literal: string(sc.cur), Error: e.Error(), Start: pos, End: pos}, e
	}
	if err != nil {
		return tok, err
	}

	return token.Token{Type: token.ID, Literal: string(id), Start: start, End: end}, nil
}

func (sc *Scanner) isNumeralSeparator() bool {
	return isTerminal(sc.cur) || isWhitespace(sc.cur) || isEdgeOperator(sc.cur, sc.next)
}

func (sc *Scanner) tokenizeQuotedString() (token.Token, error) {
	var tok token.Token
	var err error
	var id []rune
	var hasClosingQuote bool
	start := sc.pos()
	var end token.Position

	for pos, prev := 0, rune(0); sc.hasNext() && err == nil; err, pos = sc.readRune(), pos+1 {
		end = sc.pos()
		id = append(id, sc.cur)

		if pos != 0 && sc.cur == '"' && prev != '\\' { // a non-escaped quote after pos 0 closes the string
			hasClosingQuote = true
			err = sc.readRune() // consume the closing quote
			break
		}
		if pos > maxUnquotedStringLen {
			e := sc.error(fmt.Sprintf("potentially missing closing quote, found none after max %d characters", maxUnquotedStringLen+1))
			return token.Token{Type: token.ERROR, Literal: string(sc.cur), Error: e.Error(), Start: end, End: end}, e
		}
		prev = sc.cur
	}

	if !hasClosingQuote {
		pos := sc.pos()
		e := sc.error("missing closing quote")
		return token.Token{Type: token.ERROR, Literal: string(sc.cur), Error: e.Error(), Start: pos, End: pos}, e
	}
	if err != nil {
		return tok, err
	}

	return token.Token{Type: token.ID, Literal: string(id), Start: start, End: end}, nil
}
