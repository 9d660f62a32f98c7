package expr

import (
	"math"
	"strconv"
	"strings"
)

// modifierWords 字段声明允许的修饰符
var modifierWords = map[string]bool{
	"public":    true,
	"protected": true,
	"private":   true,
	"static":    true,
	"final":     true,
	"transient": true,
	"volatile":  true,
}

// Parser 语法分析器
//
// 语法:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/" | "%") unary }
//	unary   = "-" unary | primary
//	primary = literal | "(" expr ")" | "new" qualified "(" ")"
type Parser struct {
	tokens  []Token
	current int
}

// Parse 解析一个完整的表达式
func Parse(src string) (Node, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.check(EOF) {
		return nil, p.unexpected()
	}
	return n, nil
}

// ParseFieldDecl 解析字段声明，例如 `public static long total = 3 + 4L;`
func ParseFieldDecl(src string) (*FieldDecl, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}

	decl := &FieldDecl{}
	for p.check(IDENT) && modifierWords[p.peek().Literal] {
		decl.Modifiers = append(decl.Modifiers, p.advance().Literal)
	}

	typeName, ok := p.parseQualified()
	if !ok {
		return nil, p.notField()
	}
	for p.match(LBRACKET) {
		if !p.match(RBRACKET) {
			return nil, p.unexpected()
		}
		typeName += "[]"
	}
	decl.Type = typeName

	if !p.check(IDENT) {
		return nil, p.notField()
	}
	decl.Name = p.advance().Literal

	if p.check(LPAREN) {
		return nil, p.notField()
	}

	if p.match(ASSIGN) {
		init, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		decl.Init = init
	}
	p.match(SEMICOLON)
	if !p.check(EOF) {
		return nil, p.unexpected()
	}
	return decl, nil
}

func newParser(src string) (*Parser, error) {
	l := NewLexer(src)
	tokens := l.ScanTokens()
	if errs := l.Errors(); len(errs) > 0 {
		return nil, errs[0]
	}
	return &Parser{tokens: tokens}, nil
}

func (p *Parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.check(PLUS) || p.check(MINUS) {
		op := p.advance().Type
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, X: left, Y: right}
	}
	return left, nil
}

func (p *Parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.check(STAR) || p.check(SLASH) || p.check(PERCENT) {
		op := p.advance().Type
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, X: left, Y: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Node, error) {
	if !p.check(MINUS) {
		return p.parsePrimary()
	}
	minus := p.advance()

	// 负号直接作用于数字字面量时折叠，使 -2147483648 这样的边界值合法
	switch p.peek().Type {
	case INT, LONG, FLOAT, DOUBLE:
		return p.parseNumber(p.advance(), minus.Pos, true)
	}

	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &Unary{At: minus.Pos, Op: MINUS, X: x}, nil
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.peek()
	switch tok.Type {
	case INT, LONG, FLOAT, DOUBLE:
		p.advance()
		return p.parseNumber(tok, tok.Pos, false)
	case STRING:
		p.advance()
		return &StringLit{At: tok.Pos, Value: tok.Literal}, nil
	case TRUE, FALSE:
		p.advance()
		return &BoolLit{At: tok.Pos, Value: tok.Type == TRUE}, nil
	case NULL:
		p.advance()
		return &NullLit{At: tok.Pos}, nil
	case LPAREN:
		p.advance()
		n, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.match(RPAREN) {
			return nil, p.unexpected()
		}
		return n, nil
	case NEW:
		p.advance()
		name, ok := p.parseQualified()
		if !ok {
			return nil, p.unexpected()
		}
		if !p.match(LPAREN) || !p.match(RPAREN) {
			return nil, errorf(p.peek().Pos, "only no-argument constructors are supported")
		}
		return &NewObject{At: tok.Pos, Class: name}, nil
	}
	return nil, p.unexpected()
}

// parseNumber 将数字 Token 转换为字面量节点，neg 表示前面有负号
func (p *Parser) parseNumber(tok Token, at int, neg bool) (Node, error) {
	text := strings.ToLower(tok.Literal)
	sign := ""
	if neg {
		sign = "-"
	}

	switch tok.Type {
	case INT:
		v, err := parseInteger(text, neg, 32)
		if err != nil {
			return nil, errorf(tok.Pos, "integer number too large: %s%s", sign, tok.Literal)
		}
		return &IntLit{At: at, Value: int32(v)}, nil
	case LONG:
		v, err := parseInteger(text, neg, 64)
		if err != nil {
			return nil, errorf(tok.Pos, "long number too large: %s%s", sign, tok.Literal)
		}
		return &LongLit{At: at, Value: v}, nil
	case FLOAT:
		v, err := strconv.ParseFloat(sign+text, 32)
		if err != nil {
			return nil, errorf(tok.Pos, "malformed float literal: %s", tok.Literal)
		}
		return &FloatLit{At: at, Value: float32(v)}, nil
	default:
		v, err := strconv.ParseFloat(sign+text, 64)
		if err != nil {
			return nil, errorf(tok.Pos, "malformed double literal: %s", tok.Literal)
		}
		return &DoubleLit{At: at, Value: v}, nil
	}
}

// parseInteger 按 Java 规则解析整数：十进制受有符号范围约束，
// 十六进制可以写满全部位（0xFFFFFFFF 即 -1）
func parseInteger(text string, neg bool, bits int) (int64, error) {
	if strings.HasPrefix(text, "0x") {
		u, err := strconv.ParseUint(text[2:], 16, bits)
		if err != nil {
			return 0, err
		}
		v := int64(u)
		if bits == 32 {
			v = int64(int32(uint32(u)))
		}
		if neg {
			v = -v
		}
		return v, nil
	}

	u, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, err
	}
	limit := uint64(math.MaxInt64)
	if bits == 32 {
		limit = math.MaxInt32
	}
	if neg {
		limit++
	}
	if u > limit {
		return 0, strconv.ErrRange
	}
	if neg {
		return -int64(u), nil
	}
	return int64(u), nil
}

// parseQualified 解析 a.b.C 形式的限定名
func (p *Parser) parseQualified() (string, bool) {
	if !p.check(IDENT) {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString(p.advance().Literal)
	for p.check(DOT) && p.peekAt(1).Type == IDENT {
		p.advance()
		sb.WriteByte('.')
		sb.WriteString(p.advance().Literal)
	}
	return sb.String(), true
}

func (p *Parser) unexpected() *CompileError {
	tok := p.peek()
	if tok.Type == EOF {
		return errorf(tok.Pos, "unexpected end of input")
	}
	return errorf(tok.Pos, "unexpected %s %q", tok.Type, tok.Literal)
}

func (p *Parser) notField() *CompileError {
	return &CompileError{Pos: p.peek().Pos, Message: ErrNotField.Error(), Err: ErrNotField}
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) peekAt(n int) Token {
	if p.current+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+n]
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.current]
	if tok.Type != EOF {
		p.current++
	}
	return tok
}

func (p *Parser) check(t TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}
