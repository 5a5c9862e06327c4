package expr

import (
	"fmt"
	"strings"
)

type tokenType int

type token struct {
	typ     tokenType
	literal string
	pos     int
}

const (
	tokenIllegal tokenType = iota
	tokenEOF
	tokenNewline
	tokenIdentifier
	tokenInt
	tokenFloat
	tokenString
	tokenTrue
	tokenFalse
	tokenNone
	tokenAnd
	tokenOr
	tokenNot
	tokenIn
	tokenIs
	tokenDel
	tokenOp
	tokenAssign
	tokenAugAssign
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
	tokenLBrace
	tokenRBrace
	tokenComma
	tokenColon
	tokenDot
)

func (t tokenType) String() string {
	switch t {
	case tokenIllegal:
		return "illegal"
	case tokenEOF:
		return "eof"
	case tokenNewline:
		return "newline"
	case tokenIdentifier:
		return "identifier"
	case tokenInt, tokenFloat:
		return "number"
	case tokenString:
		return "string"
	case tokenTrue:
		return "True"
	case tokenFalse:
		return "False"
	case tokenNone:
		return "None"
	case tokenAnd:
		return "and"
	case tokenOr:
		return "or"
	case tokenNot:
		return "not"
	case tokenIn:
		return "in"
	case tokenIs:
		return "is"
	case tokenDel:
		return "del"
	case tokenOp:
		return "operator"
	case tokenAssign:
		return "="
	case tokenAugAssign:
		return "augmented assignment"
	case tokenLParen:
		return "("
	case tokenRParen:
		return ")"
	case tokenLBracket:
		return "["
	case tokenRBracket:
		return "]"
	case tokenLBrace:
		return "{"
	case tokenRBrace:
		return "}"
	case tokenComma:
		return ","
	case tokenColon:
		return ":"
	case tokenDot:
		return "."
	default:
		return "unknown"
	}
}

func (t token) String() string {
	switch t.typ {
	case tokenEOF, tokenNewline:
		return t.typ.String()
	case tokenString:
		return fmt.Sprintf("string %q", t.literal)
	}
	return fmt.Sprintf("%q", t.literal)
}

var keywords = map[string]tokenType{
	"True":  tokenTrue,
	"False": tokenFalse,
	"None":  tokenNone,
	"and":   tokenAnd,
	"or":    tokenOr,
	"not":   tokenNot,
	"in":    tokenIn,
	"is":    tokenIs,
	"del":   tokenDel,
}

// operators lists punctuation longest first so that scanning is greedy.
var operators = []string{
	"**=", "//=", "<<=", ">>=",
	"**", "//", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"+", "-", "*", "/", "%", "&", "|", "^", "~", "<", ">", "!", "=",
}

type lexer struct {
	input  string
	length int
	pos    int
	depth  int
}

func newLexer(input string) *lexer {
	return &lexer{input: input, length: len(input)}
}

func (l *lexer) nextToken() token {
	l.skipWhitespace()
	if l.pos >= l.length {
		return token{typ: tokenEOF, pos: l.pos}
	}

	start := l.pos
	ch := l.input[l.pos]

	switch ch {
	case '\n', ';':
		l.pos++
		return token{typ: tokenNewline, literal: string(ch), pos: start}
	case '(':
		return l.bracket(tokenLParen, 1)
	case '[':
		return l.bracket(tokenLBracket, 1)
	case '{':
		return l.bracket(tokenLBrace, 1)
	case ')':
		return l.bracket(tokenRParen, -1)
	case ']':
		return l.bracket(tokenRBracket, -1)
	case '}':
		return l.bracket(tokenRBrace, -1)
	case ',':
		l.pos++
		return token{typ: tokenComma, literal: ",", pos: start}
	case ':':
		l.pos++
		return token{typ: tokenColon, literal: ":", pos: start}
	case '.':
		if !isDigit(l.peek()) {
			l.pos++
			return token{typ: tokenDot, literal: ".", pos: start}
		}
	case '\'', '"':
		return l.scanString()
	}

	if isDigit(ch) || ch == '.' {
		return l.scanNumber()
	}

	if isIdentifierStart(ch) {
		return l.scanIdentifier()
	}

	for _, op := range operators {
		if strings.HasPrefix(l.input[l.pos:], op) {
			l.pos += len(op)
			return operatorToken(op, start)
		}
	}

	l.pos++
	return token{typ: tokenIllegal, literal: string(ch), pos: start}
}

func (l *lexer) bracket(typ tokenType, nesting int) token {
	start := l.pos
	l.pos++
	l.depth = max(l.depth+nesting, 0)
	return token{typ: typ, literal: l.input[start:l.pos], pos: start}
}

func operatorToken(op string, pos int) token {
	switch op {
	case "=":
		return token{typ: tokenAssign, literal: op, pos: pos}
	case "&&":
		return token{typ: tokenAnd, literal: op, pos: pos}
	case "||":
		return token{typ: tokenOr, literal: op, pos: pos}
	case "!":
		return token{typ: tokenNot, literal: op, pos: pos}
	case "<=", ">=", "==", "!=":
		return token{typ: tokenOp, literal: op, pos: pos}
	}
	if strings.HasSuffix(op, "=") {
		return token{typ: tokenAugAssign, literal: op, pos: pos}
	}
	return token{typ: tokenOp, literal: op, pos: pos}
}

// skipWhitespace also skips comments and, inside brackets, line breaks.
func (l *lexer) skipWhitespace() {
	for l.pos < l.length {
		switch l.input[l.pos] {
		case ' ', '\t', '\r':
			l.pos++
		case '\n':
			if l.depth == 0 {
				return
			}
			l.pos++
		case '\\':
			if l.peek() != '\n' {
				return
			}
			l.pos += 2
		case '#':
			for l.pos < l.length && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) peek() byte {
	if l.pos+1 >= l.length {
		return 0
	}
	return l.input[l.pos+1]
}

func (l *lexer) advance() byte {
	if l.pos >= l.length {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	return ch
}

func (l *lexer) scanNumber() token {
	start := l.pos

	if l.input[l.pos] == '0' && strings.ContainsRune("xXoObB", rune(l.peek())) {
		l.pos += 2
		for l.pos < l.length && (isHexDigit(l.input[l.pos]) || l.input[l.pos] == '_') {
			l.pos++
		}
		return token{typ: tokenInt, literal: l.input[start:l.pos], pos: start}
	}

	typ := tokenInt
	digits := func() {
		for l.pos < l.length && (isDigit(l.input[l.pos]) || l.input[l.pos] == '_') {
			l.pos++
		}
	}
	digits()
	if l.pos < l.length && l.input[l.pos] == '.' {
		typ = tokenFloat
		l.pos++
		digits()
	}
	if l.pos < l.length && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		next := l.pos + 1
		if next < l.length && (l.input[next] == '+' || l.input[next] == '-') {
			next++
		}
		if next < l.length && isDigit(l.input[next]) {
			typ = tokenFloat
			l.pos = next
			digits()
		}
	}

	return token{typ: typ, literal: l.input[start:l.pos], pos: start}
}

func (l *lexer) scanIdentifier() token {
	start := l.pos
	for l.pos < l.length && isIdentifierPart(l.input[l.pos]) {
		l.pos++
	}
	literal := l.input[start:l.pos]
	if typ, ok := keywords[literal]; ok {
		return token{typ: typ, literal: literal, pos: start}
	}
	return token{typ: tokenIdentifier, literal: literal, pos: start}
}

func (l *lexer) scanString() token {
	start := l.pos
	quote := l.advance()
	var builder strings.Builder
	escaped := false

	for l.pos < l.length {
		ch := l.advance()
		if escaped {
			switch ch {
			case 'n':
				builder.WriteByte('\n')
			case 't':
				builder.WriteByte('\t')
			case 'r':
				builder.WriteByte('\r')
			case '0':
				builder.WriteByte(0)
			default:
				builder.WriteByte(ch)
			}
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == quote {
			return token{typ: tokenString, literal: builder.String(), pos: start}
		}
		if ch == '\n' {
			break
		}
		builder.WriteByte(ch)
	}

	return token{typ: tokenIllegal, literal: "unterminated string", pos: start}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentifierStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentifierPart(ch byte) bool {
	return isIdentifierStart(ch) || isDigit(ch)
}
