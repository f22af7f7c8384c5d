package finder

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses operation tokens into an AST.
type Parser struct {
	lexer   *Lexer
	current Token
	peek    Token
}

// NewParser creates a parser for the input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	// Prime the parser with two tokens
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses operation text such as
//
//	parent_id = 3 and status in (active, inactive) order by name desc
func Parse(input string) (*Query, error) {
	return NewParser(input).Parse()
}

// ParseOperation parses text that must not carry an ORDER BY clause.
// Empty input yields All().
func ParseOperation(input string) (Operation, error) {
	q, err := Parse(input)
	if err != nil {
		return nil, err
	}
	if len(q.OrderBy) > 0 {
		return nil, fmt.Errorf("unexpected order by clause in operation %q", input)
	}
	if q.Filter == nil {
		return All(), nil
	}
	return q.Filter, nil
}

// ParseOrderBy parses a bare ORDER BY term list such as "name desc, id".
func ParseOrderBy(input string) ([]OrderTerm, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	p := NewParser(input)
	terms, err := p.parseOrderTerms()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenEOF {
		return nil, fmt.Errorf("unexpected token %q at position %d", p.current.Literal, p.current.Pos)
	}
	return terms, nil
}

// Parse parses the input and returns the Query AST.
func (p *Parser) Parse() (*Query, error) {
	query := &Query{}

	if p.current.Type != TokenOrder && p.current.Type != TokenEOF {
		op, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		query.Filter = op
	}

	if p.current.Type == TokenOrder {
		orderBy, err := p.parseOrderBy()
		if err != nil {
			return nil, err
		}
		query.OrderBy = orderBy
	}

	if p.current.Type != TokenEOF {
		return nil, fmt.Errorf("unexpected token %q at position %d", p.current.Literal, p.current.Pos)
	}

	return query, nil
}

func (p *Parser) nextToken() {
	p.current = p.peek
	p.peek = p.lexer.NextToken()
}

// parseExpression parses OR-separated terms.
// expression = term { "or" term }
func (p *Parser) parseExpression() (Operation, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.current.Type == TokenOr {
		p.nextToken()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryOperation{Left: left, Op: TokenOr, Right: right}
	}

	return left, nil
}

// parseTerm parses AND-separated factors.
// term = factor { "and" factor }
func (p *Parser) parseTerm() (Operation, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for p.current.Type == TokenAnd {
		p.nextToken()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &BinaryOperation{Left: left, Op: TokenAnd, Right: right}
	}

	return left, nil
}

// parseFactor parses NOT, ALL, parenthesized expressions, or comparisons.
// factor = "not" factor | "all" | "(" expression ")" | comparison
func (p *Parser) parseFactor() (Operation, error) {
	switch p.current.Type {
	case TokenNot:
		p.nextToken()
		op, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &NotOperation{Operation: op}, nil

	case TokenAll:
		p.nextToken()
		return &AllOperation{}, nil

	case TokenLParen:
		p.nextToken()
		op, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.current.Type != TokenRParen {
			return nil, fmt.Errorf("expected ')' at position %d, got %q", p.current.Pos, p.current.Literal)
		}
		p.nextToken()
		return op, nil

	default:
		return p.parseComparison()
	}
}

// parseComparison parses attribute comparisons.
// comparison = attr op value | attr "in" "(" values ")" | attr "not" "in" "(" values ")"
func (p *Parser) parseComparison() (Operation, error) {
	if p.current.Type != TokenIdent {
		return nil, fmt.Errorf("expected attribute name at position %d, got %q", p.current.Pos, p.current.Literal)
	}
	attr := p.current.Literal
	p.nextToken()

	if p.current.Type == TokenNot && p.peek.Type == TokenIn {
		p.nextToken() // NOT
		p.nextToken() // IN
		return p.parseIn(attr, true)
	}

	if p.current.Type == TokenIn {
		p.nextToken()
		return p.parseIn(attr, false)
	}

	if !p.current.Type.IsComparisonOp() {
		return nil, fmt.Errorf("expected operator at position %d, got %q", p.current.Pos, p.current.Literal)
	}
	op := p.current.Type
	p.nextToken()

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	return &CompareOperation{Attribute: attr, Op: op, Value: value}, nil
}

func (p *Parser) parseIn(attr string, not bool) (Operation, error) {
	if p.current.Type != TokenLParen {
		return nil, fmt.Errorf("expected '(' at position %d, got %q", p.current.Pos, p.current.Literal)
	}
	p.nextToken()

	var values []Value
	for {
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, value)

		if p.current.Type == TokenComma {
			p.nextToken()
			continue
		}
		break
	}

	if p.current.Type != TokenRParen {
		return nil, fmt.Errorf("expected ')' at position %d, got %q", p.current.Pos, p.current.Literal)
	}
	p.nextToken()

	return &InOperation{Attribute: attr, Values: values, Not: not}, nil
}

func (p *Parser) parseValue() (Value, error) {
	var v Value

	switch p.current.Type {
	case TokenString:
		v = Value{Type: ValueString, Raw: p.current.Literal, String: p.current.Literal}
	case TokenNumber:
		parsed, err := parseNumberValue(p.current.Literal)
		if err != nil {
			return v, fmt.Errorf("%w at position %d", err, p.current.Pos)
		}
		v = parsed
	case TokenTrue:
		v = Value{Type: ValueBool, Raw: p.current.Literal, Bool: true}
	case TokenFalse:
		v = Value{Type: ValueBool, Raw: p.current.Literal, Bool: false}
	case TokenIdent:
		v = parseIdentValue(p.current.Literal)
	default:
		return v, fmt.Errorf("expected value at position %d, got %q", p.current.Pos, p.current.Literal)
	}

	p.nextToken()
	return v, nil
}

// parseNumberValue parses integers, relative offsets and ISO dates.
func parseNumberValue(literal string) (Value, error) {
	if len(literal) > 1 {
		suffix := literal[len(literal)-1]
		switch suffix {
		case 'd', 'D', 'h', 'H', 'm', 'M':
			return Value{Type: ValueDate, Raw: literal, String: literal}, nil
		}
	}

	if strings.IndexByte(literal[1:], '-') >= 0 {
		return Value{Type: ValueDate, Raw: literal, String: literal}, nil
	}

	n, err := strconv.ParseInt(literal, 10, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid number %q", literal)
	}
	return Value{Type: ValueInt, Raw: literal, Int: n}, nil
}

// parseIdentValue parses an unquoted identifier used as a value.
func parseIdentValue(literal string) Value {
	switch strings.ToLower(literal) {
	case "today":
		return Value{Type: ValueDate, Raw: literal, String: "today"}
	case "yesterday":
		return Value{Type: ValueDate, Raw: literal, String: "yesterday"}
	}
	return Value{Type: ValueString, Raw: literal, String: literal}
}

func (p *Parser) parseOrderBy() ([]OrderTerm, error) {
	if p.current.Type != TokenOrder {
		return nil, fmt.Errorf("expected 'order' at position %d", p.current.Pos)
	}
	p.nextToken()

	if p.current.Type != TokenBy {
		return nil, fmt.Errorf("expected 'by' at position %d, got %q", p.current.Pos, p.current.Literal)
	}
	p.nextToken()

	return p.parseOrderTerms()
}

func (p *Parser) parseOrderTerms() ([]OrderTerm, error) {
	var terms []OrderTerm
	for {
		if p.current.Type != TokenIdent {
			return nil, fmt.Errorf("expected attribute name at position %d, got %q", p.current.Pos, p.current.Literal)
		}
		term := OrderTerm{Attribute: p.current.Literal}
		p.nextToken()

		switch p.current.Type {
		case TokenAsc:
			p.nextToken()
		case TokenDesc:
			term.Desc = true
			p.nextToken()
		}

		terms = append(terms, term)

		if p.current.Type == TokenComma {
			p.nextToken()
			continue
		}
		break
	}

	return terms, nil
}
