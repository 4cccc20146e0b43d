package parser

import "fmt"

// Token types produced by the Lexer.  GraphQL keywords are contextual so they
// are all lexed as NAME and recognized by the parser.
const (
	eof = iota
	NAME
	STRING
	BLOCK_STRING
	INT
	FLOAT
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	COLON
	BANG
	EQUALS
	AT
	PIPE
	AMP
	LT
	GT
	SPREAD
	DOLLAR
	ILLEGAL
)

var tokenNames = map[int]string{
	eof:          "end of input",
	NAME:         "NAME",
	STRING:       "STRING",
	BLOCK_STRING: "BLOCK_STRING",
	INT:          "INT",
	FLOAT:        "FLOAT",
	LBRACE:       "'{'",
	RBRACE:       "'}'",
	LPAREN:       "'('",
	RPAREN:       "')'",
	LBRACKET:     "'['",
	RBRACKET:     "']'",
	COLON:        "':'",
	BANG:         "'!'",
	EQUALS:       "'='",
	AT:           "'@'",
	PIPE:         "'|'",
	AMP:          "'&'",
	LT:           "'<'",
	GT:           "'>'",
	SPREAD:       "'...'",
	DOLLAR:       "'$'",
	ILLEGAL:      "ILLEGAL",
}

// TokenString returns a printable name for a token type.
func TokenString(tok int) string {
	if name, ok := tokenNames[tok]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", tok)
}
