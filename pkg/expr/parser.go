package expr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/polisai/oxy/pkg/object"
)

// binaryLevels lists the binary operator tiers from loosest to tightest.
// Power binds tighter than unary minus and is handled separately.
var binaryLevels = [][]string{
	{"|"},
	{"^"},
	{"&"},
	{"<<", ">>"},
	{"+", "-"},
	{"*", "/", "//", "%"},
}

var unaryOps = map[string]object.UnaryOperator{
	"-": object.OpNeg,
	"+": object.OpPos,
	"~": object.OpInvert,
}

var compareOps = map[string]object.CompareOp{
	"<":  object.CmpLt,
	"<=": object.CmpLe,
	"==": object.CmpEq,
	"!=": object.CmpNe,
	">":  object.CmpGt,
	">=": object.CmpGe,
}

type parser struct {
	ctx  context.Context
	lex  *lexer
	cur  token
	peek token
}

func newParser(ctx context.Context, lex *lexer) *parser {
	p := &parser{ctx: ctx, lex: lex}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *parser) nextToken() {
	p.cur = p.peek
	p.peek = p.lex.nextToken()
}

func (p *parser) parseProgram() ([]statement, error) {
	var stmts []statement
	for {
		for p.cur.typ == tokenNewline {
			p.nextToken()
		}
		if p.cur.typ == tokenEOF {
			return stmts, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if p.cur.typ != tokenNewline {
			if err := p.expect(tokenEOF); err != nil {
				return nil, err
			}
		}
	}
}

func (p *parser) parseStatement() (statement, error) {
	if err := checkContext(p.ctx); err != nil {
		return nil, err
	}

	if p.cur.typ == tokenDel {
		p.nextToken()
		n, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		t, err := asTarget(n, "delete")
		if err != nil {
			return nil, err
		}
		return &delStmt{target: t}, nil
	}

	n, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	switch p.cur.typ {
	case tokenAssign:
		t, err := asTarget(n, "assign to")
		if err != nil {
			return nil, err
		}
		p.nextToken()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &assignStmt{target: t, value: value}, nil
	case tokenAugAssign:
		op, ok := object.LookupOperator(strings.TrimSuffix(p.cur.literal, "="))
		if !ok {
			return nil, fmt.Errorf("%w: unsupported operator %q", ErrSyntax, p.cur.literal)
		}
		t, err := asTarget(n, "assign to")
		if err != nil {
			return nil, err
		}
		p.nextToken()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &augAssignStmt{target: t, op: op, value: value}, nil
	}
	return &exprStmt{expr: n}, nil
}

func asTarget(n node, verb string) (target, error) {
	switch n.(type) {
	case *nameExpr, *attrExpr, *indexExpr:
		return n.(target), nil
	}
	return nil, fmt.Errorf("%w: cannot %s expression", ErrSyntax, verb)
}

func (p *parser) parseExpression() (node, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.cur.typ == tokenOr {
		p.nextToken()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &logicalExpr{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.cur.typ == tokenAnd {
		p.nextToken()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &logicalExpr{and: true, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (node, error) {
	if p.cur.typ == tokenNot {
		p.nextToken()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &notExpr{operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}

	var steps []compareStep
	for {
		step, ok := p.compareOperator()
		if !ok {
			break
		}
		right, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		step.right = right
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		return left, nil
	}
	return &compareExpr{left: left, steps: steps}, nil
}

// compareOperator consumes a comparison operator if one is next.
func (p *parser) compareOperator() (compareStep, bool) {
	switch p.cur.typ {
	case tokenOp:
		op, ok := compareOps[p.cur.literal]
		if !ok {
			return compareStep{}, false
		}
		p.nextToken()
		return compareStep{kind: compareRich, op: op}, true
	case tokenIn:
		p.nextToken()
		return compareStep{kind: compareIn}, true
	case tokenNot:
		if p.peek.typ != tokenIn {
			return compareStep{}, false
		}
		p.nextToken()
		p.nextToken()
		return compareStep{kind: compareNotIn}, true
	case tokenIs:
		p.nextToken()
		if p.cur.typ == tokenNot {
			p.nextToken()
			return compareStep{kind: compareIsNot}, true
		}
		return compareStep{kind: compareIs}, true
	}
	return compareStep{}, false
}

func (p *parser) parseBinary(level int) (node, error) {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}

	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}

	for p.cur.typ == tokenOp && containsSymbol(binaryLevels[level], p.cur.literal) {
		op, ok := object.LookupOperator(p.cur.literal)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported binary operator %q", ErrSyntax, p.cur.literal)
		}
		p.nextToken()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: op, left: left, right: right}
	}
	return left, nil
}

func containsSymbol(symbols []string, s string) bool {
	for _, sym := range symbols {
		if sym == s {
			return true
		}
	}
	return false
}

func (p *parser) parseUnary() (node, error) {
	if p.cur.typ == tokenOp {
		if op, ok := unaryOps[p.cur.literal]; ok {
			p.nextToken()
			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return &unaryExpr{op: op, operand: operand}, nil
		}
	}
	return p.parsePower()
}

// parsePower is right associative and binds tighter than a unary on its left:
// -2 ** 2 is -(2 ** 2), 2 ** -1 is 2 ** (-1).
func (p *parser) parsePower() (node, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.cur.typ != tokenOp || p.cur.literal != "**" {
		return base, nil
	}
	p.nextToken()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &binaryExpr{op: object.OpPow, left: base, right: exp}, nil
}

func (p *parser) parsePostfix() (node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.cur.typ {
		case tokenLParen:
			p.nextToken()
			n, err = p.parseCall(n)
		case tokenDot:
			p.nextToken()
			if err := p.expect(tokenIdentifier); err != nil {
				return nil, err
			}
			n = &attrExpr{obj: n, name: p.cur.literal}
			p.nextToken()
		case tokenLBracket:
			p.nextToken()
			n, err = p.parseSubscript(n)
		default:
			return n, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseCall(fn node) (node, error) {
	call := &callExpr{fn: fn}
	for p.cur.typ != tokenRParen {
		if p.cur.typ == tokenIdentifier && p.peek.typ == tokenAssign {
			name := p.cur.literal
			p.nextToken()
			p.nextToken()
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			call.kwargs = append(call.kwargs, keywordArg{name: name, value: value})
		} else {
			if len(call.kwargs) > 0 {
				return nil, fmt.Errorf("%w: positional argument follows keyword argument", ErrSyntax)
			}
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			call.args = append(call.args, arg)
		}
		if p.cur.typ != tokenComma {
			break
		}
		p.nextToken()
	}
	if err := p.expect(tokenRParen); err != nil {
		return nil, err
	}
	p.nextToken()
	return call, nil
}

func (p *parser) parseSubscript(obj node) (node, error) {
	key, err := p.parseSliceItem()
	if err != nil {
		return nil, err
	}
	if p.cur.typ == tokenComma {
		items := []node{key}
		for p.cur.typ == tokenComma {
			p.nextToken()
			if p.cur.typ == tokenRBracket {
				break
			}
			item, err := p.parseSliceItem()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		key = &tupleExpr{items: items}
	}
	if err := p.expect(tokenRBracket); err != nil {
		return nil, err
	}
	p.nextToken()
	return &indexExpr{obj: obj, key: key}, nil
}

// parseSliceItem parses either a plain expression or lo:hi:step with any
// part omitted.
func (p *parser) parseSliceItem() (node, error) {
	var parts [3]node
	optional := func() (node, error) {
		switch p.cur.typ {
		case tokenColon, tokenRBracket, tokenComma:
			return nil, nil
		}
		return p.parseExpression()
	}

	first, err := optional()
	if err != nil {
		return nil, err
	}
	if p.cur.typ != tokenColon {
		if first == nil {
			return nil, fmt.Errorf("%w: expected subscript, got %s", ErrSyntax, p.cur)
		}
		return first, nil
	}
	parts[0] = first
	for i := 1; i < 3 && p.cur.typ == tokenColon; i++ {
		p.nextToken()
		if parts[i], err = optional(); err != nil {
			return nil, err
		}
	}
	return &sliceExpr{start: parts[0], stop: parts[1], step: parts[2]}, nil
}

func (p *parser) parsePrimary() (node, error) {
	if err := checkContext(p.ctx); err != nil {
		return nil, err
	}

	tok := p.cur
	switch tok.typ {
	case tokenIdentifier:
		p.nextToken()
		return &nameExpr{name: tok.literal}, nil
	case tokenInt:
		p.nextToken()
		value, err := parseInt(tok.literal)
		if err != nil {
			return nil, err
		}
		return &literalExpr{value: value}, nil
	case tokenFloat:
		p.nextToken()
		value, err := strconv.ParseFloat(strings.ReplaceAll(tok.literal, "_", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid number %q", ErrSyntax, tok.literal)
		}
		return &literalExpr{value: object.Float(value)}, nil
	case tokenString:
		p.nextToken()
		return &literalExpr{value: object.Str(tok.literal)}, nil
	case tokenTrue:
		p.nextToken()
		return &literalExpr{value: object.True}, nil
	case tokenFalse:
		p.nextToken()
		return &literalExpr{value: object.False}, nil
	case tokenNone:
		p.nextToken()
		return &literalExpr{value: object.None}, nil
	case tokenLParen:
		p.nextToken()
		items, trailing, err := p.parseItems(tokenRParen)
		if err != nil {
			return nil, err
		}
		if len(items) == 1 && !trailing {
			return items[0], nil
		}
		return &tupleExpr{items: items}, nil
	case tokenLBracket:
		p.nextToken()
		items, _, err := p.parseItems(tokenRBracket)
		if err != nil {
			return nil, err
		}
		return &listExpr{items: items}, nil
	case tokenLBrace:
		p.nextToken()
		return p.parseDict()
	case tokenIllegal:
		return nil, fmt.Errorf("%w: %s at position %d", ErrSyntax, tok.literal, tok.pos)
	default:
		return nil, fmt.Errorf("%w: unexpected %s at position %d", ErrSyntax, tok, tok.pos)
	}
}

// parseItems reads a comma separated list up to the closing token and
// reports whether a trailing comma was present.
func (p *parser) parseItems(closing tokenType) ([]node, bool, error) {
	var items []node
	trailing := false
	for p.cur.typ != closing {
		item, err := p.parseExpression()
		if err != nil {
			return nil, false, err
		}
		items = append(items, item)
		trailing = false
		if p.cur.typ != tokenComma {
			break
		}
		trailing = true
		p.nextToken()
	}
	if err := p.expect(closing); err != nil {
		return nil, false, err
	}
	p.nextToken()
	return items, trailing, nil
}

func (p *parser) parseDict() (node, error) {
	d := &dictExpr{}
	for p.cur.typ != tokenRBrace {
		key, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokenColon); err != nil {
			return nil, err
		}
		p.nextToken()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		d.keys = append(d.keys, key)
		d.values = append(d.values, value)
		if p.cur.typ != tokenComma {
			break
		}
		p.nextToken()
	}
	if err := p.expect(tokenRBrace); err != nil {
		return nil, err
	}
	p.nextToken()
	return d, nil
}

func parseInt(literal string) (object.Object, error) {
	digits := strings.ReplaceAll(literal, "_", "")
	base := 10
	if len(digits) > 1 && digits[0] == '0' && strings.ContainsRune("xXoObB", rune(digits[1])) {
		base = 0
	}
	value, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid integer literal %q", ErrSyntax, literal)
	}
	return object.Int(value), nil
}

func (p *parser) expect(expected tokenType) error {
	if p.cur.typ == tokenIllegal {
		return fmt.Errorf("%w: %s at position %d", ErrSyntax, p.cur.literal, p.cur.pos)
	}
	if p.cur.typ != expected {
		return fmt.Errorf("%w: expected %s, got %s at position %d", ErrSyntax, expected, p.cur, p.cur.pos)
	}
	return nil
}
