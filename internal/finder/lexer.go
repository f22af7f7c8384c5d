package finder

import "strings"

// Lexer tokenizes operation text.
type Lexer struct {
	input string
	pos   int  // current position in input
	ch    byte // current character under examination
}

// NewLexer creates a new lexer for the input string.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Pos: l.pos}

	switch l.ch {
	case '(':
		tok.Type = TokenLParen
		tok.Literal = "("
	case ')':
		tok.Type = TokenRParen
		tok.Literal = ")"
	case ',':
		tok.Type = TokenComma
		tok.Literal = ","
	case '=':
		tok.Type = TokenEq
		tok.Literal = "="
	case '!':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok.Type = TokenNeq
			tok.Literal = "!="
		case '~':
			l.readChar()
			tok.Type = TokenNotContains
			tok.Literal = "!~"
		default:
			tok.Type = TokenIllegal
			tok.Literal = string(l.ch)
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type = TokenLte
			tok.Literal = "<="
		} else {
			tok.Type = TokenLt
			tok.Literal = "<"
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type = TokenGte
			tok.Literal = ">="
		} else {
			tok.Type = TokenGt
			tok.Literal = ">"
		}
	case '~':
		tok.Type = TokenContains
		tok.Literal = "~"
	case '"', '\'':
		tok.Type = TokenString
		tok.Literal = l.readString(l.ch)
		return tok
	case 0:
		tok.Type = TokenEOF
		tok.Literal = ""
		return tok
	default:
		switch {
		case isLetter(l.ch):
			tok.Literal = l.readIdentifier()
			tok.Type = LookupKeyword(tok.Literal)
			return tok
		case isDigit(l.ch) || (l.ch == '-' && isDigit(l.peekChar())):
			tok.Literal = l.readNumber()
			tok.Type = TokenNumber
			return tok
		default:
			tok.Type = TokenIllegal
			tok.Literal = string(l.ch)
		}
	}

	l.readChar()
	return tok
}

func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.pos]
	}
	l.pos++
}

func (l *Lexer) peekChar() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readIdentifier reads letters, digits, underscores and hyphens.
func (l *Lexer) readIdentifier() string {
	start := l.pos - 1
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '-' {
		l.readChar()
	}
	return l.input[start : l.pos-1]
}

// readString reads a quoted string (supports both " and '). A backslash
// escapes a quote or another backslash; any other backslash is kept.
func (l *Lexer) readString(quote byte) string {
	l.readChar() // skip opening quote
	var sb strings.Builder
	for l.ch != quote && l.ch != 0 {
		if l.ch == '\\' && isEscapable(l.peekChar()) {
			l.readChar()
		}
		sb.WriteByte(l.ch)
		l.readChar()
	}
	if l.ch == quote {
		l.readChar() // skip closing quote
	}
	return sb.String()
}

// offset is the index in input of the character under examination.
func (l *Lexer) offset() int {
	return min(l.pos-1, len(l.input))
}

// readNumber reads integers, relative offsets (-7d, -24h, -3m) and ISO dates
// (2024-01-15, 2024-01-15T10:00:00Z).
func (l *Lexer) readNumber() string {
	start := l.pos - 1
	negative := l.ch == '-'
	if negative {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}

	if !negative && l.ch == '-' && isDigit(l.peekChar()) {
		for isDigit(l.ch) || l.ch == '-' || l.ch == ':' || l.ch == 'T' || l.ch == 'Z' {
			l.readChar()
		}
		return l.input[start : l.pos-1]
	}

	if l.ch == 'd' || l.ch == 'D' || l.ch == 'h' || l.ch == 'H' || l.ch == 'm' || l.ch == 'M' {
		l.readChar()
	}
	return l.input[start : l.pos-1]
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isEscapable(c byte) bool {
	return c == '\\' || c == '"' || c == '\''
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
