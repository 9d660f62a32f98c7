// Package expr 实现字段初始化表达式的解析、类型检查与字节码生成
package expr

import "fmt"

// TokenType 表示 Token 的类型
type TokenType int

const (
	ILLEGAL TokenType = iota // 非法字符
	EOF                      // 输入结束

	// 字面量
	IDENT  // 标识符
	INT    // 整数字面量
	LONG   // long 字面量 (1L)
	FLOAT  // float 字面量 (1.5f)
	DOUBLE // double 字面量 (1.5)
	STRING // 字符串字面量

	// 运算符与分隔符
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	PERCENT   // %
	ASSIGN    // =
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	DOT       // .
	COMMA     // ,
	SEMICOLON // ;

	// 关键字
	NEW   // new
	NULL  // null
	TRUE  // true
	FALSE // false
)

var tokenNames = map[TokenType]string{
	ILLEGAL:   "ILLEGAL",
	EOF:       "EOF",
	IDENT:     "identifier",
	INT:       "int literal",
	LONG:      "long literal",
	FLOAT:     "float literal",
	DOUBLE:    "double literal",
	STRING:    "string literal",
	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	PERCENT:   "%",
	ASSIGN:    "=",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACKET:  "[",
	RBRACKET:  "]",
	DOT:       ".",
	COMMA:     ",",
	SEMICOLON: ";",
	NEW:       "new",
	NULL:      "null",
	TRUE:      "true",
	FALSE:     "false",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var keywords = map[string]TokenType{
	"new":   NEW,
	"null":  NULL,
	"true":  TRUE,
	"false": FALSE,
}

// Token 词法单元
type Token struct {
	Type    TokenType
	Literal string // 原始文本；字符串字面量为转义后的值
	Pos     int    // 起始字节偏移
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Type, t.Literal, t.Pos)
}
