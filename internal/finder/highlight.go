package finder

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Highlight applies syntax highlighting to operation text.
// Empty strings return empty strings. Invalid or partial input is
// highlighted for its valid portions.
func Highlight(input string) string {
	if input == "" {
		return ""
	}

	lexer := NewLexer(input)
	var result strings.Builder
	lastPos := 0

	// Identifiers after a comparison operator or inside "in (" are values,
	// not attribute names.
	inValueList := false
	afterOperator := false
	prevToken := TokenEOF

	for {
		tok := lexer.NextToken()
		if tok.Type == TokenEOF {
			break
		}

		if tok.Type == TokenLParen && prevToken == TokenIn {
			inValueList = true
		} else if tok.Type == TokenRParen && inValueList {
			inValueList = false
		}

		switch tok.Type {
		case TokenEq, TokenNeq, TokenLt, TokenGt, TokenLte, TokenGte,
			TokenContains, TokenNotContains:
			afterOperator = true
		case TokenAnd, TokenOr, TokenNot, TokenOrder:
			afterOperator = false
		}

		// Lexer positions are one past the token start
		tokenPos := tok.Pos - 1

		if tokenPos > lastPos {
			result.WriteString(input[lastPos:tokenPos])
		}

		var tokenLen int
		switch {
		case tok.Type == TokenString:
			// The literal drops quotes and escapes; render the original span.
			endPos := lexer.offset()
			tokenLen = endPos - tokenPos
			result.WriteString(styleToken(Token{Type: tok.Type, Literal: input[tokenPos:endPos]}))
		case tok.Type == TokenIdent && (inValueList || afterOperator):
			tokenLen = len(tok.Literal)
			result.WriteString(tok.Literal)
			afterOperator = false
		default:
			tokenLen = len(tok.Literal)
			result.WriteString(styleToken(tok))
		}

		lastPos = tokenPos + tokenLen
		prevToken = tok.Type
	}

	if lastPos < len(input) {
		result.WriteString(input[lastPos:])
	}

	return result.String()
}

func styleToken(tok Token) string {
	return tokenStyle(tok.Type).Render(tok.Literal)
}

func tokenStyle(t TokenType) lipgloss.Style {
	switch t {
	case TokenAnd, TokenOr, TokenNot, TokenIn, TokenAll,
		TokenOrder, TokenBy, TokenAsc, TokenDesc:
		return KeywordStyle

	case TokenEq, TokenNeq, TokenLt, TokenGt,
		TokenLte, TokenGte, TokenContains, TokenNotContains:
		return OperatorStyle

	case TokenLParen, TokenRParen:
		return ParenStyle
	case TokenComma:
		return CommaStyle

	case TokenString:
		return StringStyle
	case TokenNumber, TokenTrue, TokenFalse:
		return LiteralStyle

	case TokenIdent:
		return FieldStyle

	default:
		return DefaultStyle
	}
}

// IsOperationText reports whether input looks like operation text rather
// than a plain name search.
func IsOperationText(input string) bool {
	indicators := []string{
		" = ", " != ", " < ", " > ", " <= ", " >= ",
		" ~ ", " !~ ",
		" and ", " AND ", " And ",
		" or ", " OR ", " Or ",
		" in ", " IN ", " In ",
		" not ", " NOT ", " Not ",
		"order by", "ORDER BY", "Order By",
	}

	for _, indicator := range indicators {
		if strings.Contains(input, indicator) {
			return true
		}
	}

	trimmed := strings.ToLower(strings.TrimSpace(input))
	return trimmed == "all" || strings.HasPrefix(trimmed, "not ")
}
