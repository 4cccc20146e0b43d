package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/panyam/graphqxl/decl"
)

// SymType is the semantic value of a lexed token.
type SymType struct {
	text string // value of the token (unquoted for strings)
	loc  decl.Location
}

// Lexer structure
type Lexer struct {
	lookaheadRunes  []rune
	lookaheadWidths []int
	reader          *bufio.Reader
	buf             bytes.Buffer // Temporary buffer for scanned text
	pos             int          // Current byte offset from the beginning of the input
	lastError       error
	sourceName      string

	// Position tracking for the current token
	tokenStartPos  int
	tokenStartLine int
	tokenStartCol  int
	tokenText      string // Raw text of the current token

	// Current line and column (rune-based) in the input
	line int
	col  int
}

// NewLexer creates a new lexer instance.  sourceName is recorded on every
// location produced.
func NewLexer(r io.Reader, sourceName string) *Lexer {
	return &Lexer{
		reader:     bufio.NewReader(r),
		sourceName: sourceName,
		line:       1,
		col:        1,
	}
}

// Error records an error at the start of the current token.
func (l *Lexer) Error(s string) error {
	l.lastError = &SyntaxError{Loc: l.tokenLocation(), Near: l.tokenText, Msg: s}
	return l.lastError
}

// LastError returns the last error recorded by the lexer or the parser.
func (l *Lexer) LastError() error {
	return l.lastError
}

// Pos returns the start byte offset of the most recently lexed token.
func (l *Lexer) Pos() int {
	return l.tokenStartPos
}

// End returns the end byte offset after lexing the most recent token.
func (l *Lexer) End() int {
	return l.pos
}

// Text returns the raw text of the most recently lexed token.
func (l *Lexer) Text() string {
	return l.tokenText
}

func (l *Lexer) tokenLocation() decl.Location {
	return decl.Location{
		File: l.sourceName,
		Pos:  l.tokenStartPos,
		End:  l.pos,
		Line: l.tokenStartLine,
		Col:  l.tokenStartCol,
	}
}

// --- Rune Reading Helpers (with line/col tracking) ---
func (l *Lexer) read() (r rune, width int) {
	if l.peek() == eof {
		return eof, 0
	}
	r, width = l.lookaheadRunes[0], l.lookaheadWidths[0]
	l.lookaheadRunes, l.lookaheadWidths = l.lookaheadRunes[1:], l.lookaheadWidths[1:]
	l.updatePosition(r, width)
	return r, width
}

func (l *Lexer) updatePosition(r rune, width int) {
	l.pos += width
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) peekN(nthchar int) rune {
	l.ensureLookAhead(nthchar + 1)
	if nthchar >= len(l.lookaheadRunes) {
		return eof
	}
	return l.lookaheadRunes[nthchar]
}

func (l *Lexer) peek() rune {
	if len(l.lookaheadRunes) == 0 {
		r, width, err := l.reader.ReadRune()
		if err != nil {
			return eof
		}
		l.lookaheadRunes = []rune{r}
		l.lookaheadWidths = []int{width}
	}
	return l.lookaheadRunes[0]
}

func (l *Lexer) ensureLookAhead(numchars int) int {
	for len(l.lookaheadRunes) < numchars {
		r, width, err := l.reader.ReadRune()
		if err != nil {
			break
		}
		l.lookaheadRunes = append(l.lookaheadRunes, r)
		l.lookaheadWidths = append(l.lookaheadWidths, width)
	}
	return len(l.lookaheadRunes)
}

// hasPrefix checks the lookahead for prefix, consuming it on a match if asked.
func (l *Lexer) hasPrefix(prefix string, consume bool) bool {
	runes := []rune(prefix)
	if l.ensureLookAhead(len(runes)) < len(runes) {
		return false
	}
	for i, r := range runes {
		if l.lookaheadRunes[i] != r {
			return false
		}
	}
	if consume {
		for range runes {
			l.read()
		}
	}
	return true
}

func (l *Lexer) readTill(stop rune) (foundeof bool) {
	for {
		r := l.peek()
		if r == eof {
			return true
		}
		if r == stop {
			return false
		}
		l.read()
	}
}

// --- Scanning Functions ---

// skipWhitespace skips spaces, commas, BOMs and '#' comments.  Commas are
// insignificant in GraphQL.
func (l *Lexer) skipWhitespace() (foundeof bool) {
	for {
		r := l.peek()
		switch {
		case r == eof:
			return true
		case unicode.IsSpace(r) || r == ',' || r == '\uFEFF':
			l.read()
		case r == '#':
			l.readTill('\n')
		default:
			return false
		}
	}
}

func isNameStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isNameContinue(r rune) bool {
	return isNameStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (l *Lexer) scanName() string {
	l.buf.Reset()
	for r := l.peek(); r != eof && isNameContinue(r); r = l.peek() {
		l.read()
		l.buf.WriteRune(r)
	}
	return l.buf.String()
}

func (l *Lexer) scanDigits() {
	for r := l.peek(); isDigit(r); r = l.peek() {
		l.read()
		l.buf.WriteRune(r)
	}
}

func (l *Lexer) scanNumber() (tok int, text string, err error) {
	l.buf.Reset()
	tok = INT
	if l.peek() == '-' {
		l.read()
		l.buf.WriteRune('-')
	}
	if !isDigit(l.peek()) {
		return ILLEGAL, l.buf.String(), l.Error("expected digit")
	}
	l.scanDigits()
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		tok = FLOAT
		l.read()
		l.buf.WriteRune('.')
		l.scanDigits()
	}
	if r := l.peek(); r == 'e' || r == 'E' {
		tok = FLOAT
		l.read()
		l.buf.WriteRune(r)
		if s := l.peek(); s == '+' || s == '-' {
			l.read()
			l.buf.WriteRune(s)
		}
		if !isDigit(l.peek()) {
			return ILLEGAL, l.buf.String(), l.Error("invalid exponent in number")
		}
		l.scanDigits()
	}
	if isNameStart(l.peek()) {
		return ILLEGAL, l.buf.String(), l.Error("invalid character after number")
	}
	return tok, l.buf.String(), nil
}

func (l *Lexer) scanString() (string, error) {
	l.buf.Reset()
	l.read() // opening quote
	for {
		r, _ := l.read()
		switch r {
		case eof, '\n':
			return "", l.Error("unterminated string literal")
		case '"':
			return l.buf.String(), nil
		case '\\':
			esc, _ := l.read()
			switch esc {
			case 'n':
				l.buf.WriteRune('\n')
			case 't':
				l.buf.WriteRune('\t')
			case 'r':
				l.buf.WriteRune('\r')
			case 'b':
				l.buf.WriteRune('\b')
			case 'f':
				l.buf.WriteRune('\f')
			case '\\', '"', '/':
				l.buf.WriteRune(esc)
			case 'u':
				var hex strings.Builder
				for range 4 {
					h, _ := l.read()
					hex.WriteRune(h)
				}
				code, err := strconv.ParseUint(hex.String(), 16, 32)
				if err != nil {
					return "", l.Error(fmt.Sprintf("invalid unicode escape \\u%s", hex.String()))
				}
				l.buf.WriteRune(rune(code))
			case eof:
				return "", l.Error("unterminated string literal after escape")
			default:
				return "", l.Error(fmt.Sprintf("invalid escape sequence \\%c", esc))
			}
		default:
			l.buf.WriteRune(r)
		}
	}
}

func (l *Lexer) scanBlockString() (string, error) {
	l.buf.Reset()
	l.hasPrefix(`"""`, true)
	for {
		if l.peek() == eof {
			return "", l.Error("unterminated block string")
		}
		if l.hasPrefix(`\"""`, true) {
			l.buf.WriteString(`"""`)
			continue
		}
		if l.hasPrefix(`"""`, true) {
			return blockStringValue(l.buf.String()), nil
		}
		r, _ := l.read()
		l.buf.WriteRune(r)
	}
}

// blockStringValue strips the common indentation and the leading and
// trailing blank lines of a block string.
func blockStringValue(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	common := -1
	for i, line := range lines {
		if i == 0 {
			continue
		}
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if common < 0 || indent < common {
			common = indent
		}
	}
	if common > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= common {
				lines[i] = lines[i][common:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " \t")
			}
		}
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// Lex scans the next token, filling lval and returning the token type.
func (l *Lexer) Lex(lval *SymType) int {
	foundeof := l.skipWhitespace()

	l.tokenStartPos = l.pos
	l.tokenStartLine = l.line
	l.tokenStartCol = l.col
	l.tokenText = ""
	defer func() { lval.loc = l.tokenLocation() }()

	if foundeof {
		lval.text = ""
		return eof
	}

	r := l.peek()
	switch {
	case isNameStart(r):
		lval.text = l.scanName()
		l.tokenText = lval.text
		return NAME
	case isDigit(r) || r == '-':
		tok, text, _ := l.scanNumber()
		lval.text = text
		l.tokenText = text
		return tok
	case l.hasPrefix(`"""`, false):
		content, err := l.scanBlockString()
		if err != nil {
			return ILLEGAL
		}
		lval.text = content
		l.tokenText = `"""`
		return BLOCK_STRING
	case r == '"':
		content, err := l.scanString()
		if err != nil {
			return ILLEGAL
		}
		lval.text = content
		l.tokenText = strconv.Quote(content)
		return STRING
	case l.hasPrefix("...", true):
		lval.text = "..."
		l.tokenText = lval.text
		return SPREAD
	}

	punct := map[rune]int{
		'{': LBRACE,
		'}': RBRACE,
		'(': LPAREN,
		')': RPAREN,
		'[': LBRACKET,
		']': RBRACKET,
		':': COLON,
		'!': BANG,
		'=': EQUALS,
		'@': AT,
		'|': PIPE,
		'&': AMP,
		'<': LT,
		'>': GT,
		'$': DOLLAR,
	}
	l.read()
	l.tokenText = string(r)
	lval.text = l.tokenText
	if tok, ok := punct[r]; ok {
		return tok
	}
	l.Error(fmt.Sprintf("unexpected character '%c'", r))
	return ILLEGAL
}
