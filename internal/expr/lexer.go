package expr

import (
	"strings"
)

// Lexer 词法分析器，将表达式源码转换为 Token 序列
type Lexer struct {
	source  string
	start   int // 当前 Token 的起始位置
	current int // 当前扫描位置
	tokens  []Token
	errors  []*CompileError
}

// NewLexer 创建词法分析器
func NewLexer(source string) *Lexer {
	return &Lexer{
		source: source,
		tokens: make([]Token, 0, len(source)/3+4),
	}
}

// ScanTokens 扫描全部 Token，最后一个总是 EOF
func (l *Lexer) ScanTokens() []Token {
	for {
		l.skipWhitespace()
		if l.isAtEnd() {
			break
		}
		l.start = l.current
		l.scanToken()
	}
	l.tokens = append(l.tokens, Token{Type: EOF, Pos: l.current})
	return l.tokens
}

// Errors 返回词法错误
func (l *Lexer) Errors() []*CompileError {
	return l.errors
}

func (l *Lexer) scanToken() {
	c := l.advance()
	switch c {
	case '+':
		l.addToken(PLUS)
	case '-':
		l.addToken(MINUS)
	case '*':
		l.addToken(STAR)
	case '/':
		l.addToken(SLASH)
	case '%':
		l.addToken(PERCENT)
	case '=':
		l.addToken(ASSIGN)
	case '(':
		l.addToken(LPAREN)
	case ')':
		l.addToken(RPAREN)
	case '[':
		l.addToken(LBRACKET)
	case ']':
		l.addToken(RBRACKET)
	case ',':
		l.addToken(COMMA)
	case ';':
		l.addToken(SEMICOLON)
	case '"':
		l.scanString()
	case '.':
		if isDigit(l.peek()) {
			l.scanNumber()
		} else {
			l.addToken(DOT)
		}
	default:
		switch {
		case isDigit(c):
			l.scanNumber()
		case isIdentStart(c):
			l.scanIdentifier()
		default:
			l.errorf(l.start, "unexpected character %q", c)
			l.addToken(ILLEGAL)
		}
	}
}

func (l *Lexer) scanIdentifier() {
	for !l.isAtEnd() && isIdentPart(l.peek()) {
		l.current++
	}
	text := l.source[l.start:l.current]
	if kw, ok := keywords[text]; ok {
		l.addToken(kw)
		return
	}
	l.addToken(IDENT)
}

// scanNumber 扫描数字字面量：十进制、0x 十六进制、小数与指数，以及 L/F/D 后缀
func (l *Lexer) scanNumber() {
	if l.source[l.start] == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		l.current++
		for !l.isAtEnd() && isHexDigit(l.peek()) {
			l.current++
		}
		if l.current-l.start <= 2 {
			l.errorf(l.start, "malformed hex literal")
		}
		l.finishInteger()
		return
	}

	isFloat := l.source[l.start] == '.'
	for !l.isAtEnd() && isDigit(l.peek()) {
		l.current++
	}
	if !isFloat && l.peek() == '.' {
		isFloat = true
		l.current++
		for !l.isAtEnd() && isDigit(l.peek()) {
			l.current++
		}
	}
	if p := l.peek(); p == 'e' || p == 'E' {
		isFloat = true
		l.current++
		if p := l.peek(); p == '+' || p == '-' {
			l.current++
		}
		if !isDigit(l.peek()) {
			l.errorf(l.start, "malformed exponent")
		}
		for !l.isAtEnd() && isDigit(l.peek()) {
			l.current++
		}
	}

	switch l.peek() {
	case 'f', 'F':
		l.current++
		l.addTokenLiteral(FLOAT, l.source[l.start:l.current-1])
	case 'd', 'D':
		l.current++
		l.addTokenLiteral(DOUBLE, l.source[l.start:l.current-1])
	default:
		if isFloat {
			l.addToken(DOUBLE)
			return
		}
		l.finishInteger()
	}
}

func (l *Lexer) finishInteger() {
	if p := l.peek(); p == 'l' || p == 'L' {
		l.current++
		l.addTokenLiteral(LONG, l.source[l.start:l.current-1])
		return
	}
	l.addToken(INT)
}

// scanString 扫描字符串字面量并处理转义
func (l *Lexer) scanString() {
	var sb strings.Builder
	for !l.isAtEnd() && l.peek() != '"' {
		c := l.advance()
		if c == '\n' {
			l.errorf(l.start, "unterminated string literal")
			l.addToken(ILLEGAL)
			return
		}
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		if l.isAtEnd() {
			break
		}
		switch e := l.advance(); e {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case '0':
			sb.WriteByte(0)
		case '"', '\'', '\\':
			sb.WriteByte(e)
		default:
			l.errorf(l.current-2, "illegal escape sequence \\%c", e)
		}
	}
	if l.isAtEnd() {
		l.errorf(l.start, "unterminated string literal")
		l.addToken(ILLEGAL)
		return
	}
	l.current++ // 结束引号
	l.addTokenLiteral(STRING, sb.String())
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.current++
		default:
			return
		}
	}
}

func (l *Lexer) addToken(t TokenType) {
	l.addTokenLiteral(t, l.source[l.start:l.current])
}

func (l *Lexer) addTokenLiteral(t TokenType, lit string) {
	l.tokens = append(l.tokens, Token{Type: t, Literal: lit, Pos: l.start})
}

func (l *Lexer) errorf(pos int, format string, args ...interface{}) {
	l.errors = append(l.errors, errorf(pos, format, args...))
}

func (l *Lexer) advance() byte {
	c := l.source[l.current]
	l.current++
	return c
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
