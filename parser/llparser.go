package parser

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
	"github.com/panyam/graphqxl/decl"
)

type Node = decl.Node
type Location = decl.Location

// LLParser is a recursive descent parser over the Lexer's token stream.  It
// builds a decl.Node tree rooted at a KindSpec node whose children are the
// top level declarations followed by a single KindEOI node.
type LLParser struct {
	lexer            *Lexer
	peekedTokenValue *SymType
	peekedToken      int
	lastEnd          int
}

func NewLLParser(lexer *Lexer) *LLParser {
	return &LLParser{lexer: lexer, peekedToken: -1}
}

// Parse reads the whole document.
func (p *LLParser) Parse() (*Node, error) {
	root := decl.NewNode(decl.KindSpec, Location{File: p.lexer.sourceName, Line: 1, Col: 1})
	for {
		peekedToken := p.PeekToken()
		if peekedToken == eof {
			root.Add(decl.NewLeaf(decl.KindEOI, "", p.peekedTokenValue.loc))
			root.Loc.End = p.peekedTokenValue.loc.End
			return root, nil
		}
		node, err := p.ParseDefinition()
		if err != nil {
			return nil, err
		}
		root.Add(node)
	}
}

func (p *LLParser) Errorf(format string, args ...any) error {
	if p.peekedToken == ILLEGAL && p.lexer.lastError != nil {
		return p.lexer.lastError
	}
	return p.lexer.Error(fmt.Sprintf(format, args...))
}

func (p *LLParser) Advance() int {
	p.PeekToken()
	last := p.peekedToken
	p.lastEnd = p.peekedTokenValue.loc.End
	p.peekedTokenValue = nil
	p.peekedToken = -1
	return last
}

func (p *LLParser) PeekToken() int {
	if p.peekedTokenValue == nil {
		p.peekedTokenValue = &SymType{}
		p.peekedToken = p.lexer.Lex(p.peekedTokenValue)
	}
	return p.peekedToken
}

// PeekKeyword returns true if the next token is the NAME kw.
func (p *LLParser) PeekKeyword(kw string) bool {
	return p.PeekToken() == NAME && p.peekedTokenValue.text == kw
}

// Expect checks if the current peeked token is one of the expected tokens.
// It does NOT advance.
func (p *LLParser) Expect(tokensIn ...int) (foundToken int, err error) {
	peekedToken := p.PeekToken()
	for _, tok := range tokensIn {
		if tok == peekedToken {
			return tok, nil
		}
	}
	if len(tokensIn) == 1 {
		return -1, p.Errorf("expected %s, found: %s", TokenString(tokensIn[0]), TokenString(peekedToken))
	}
	expectedStrings := gfn.Map(tokensIn, func(t int) string { return TokenString(t) })
	return -1, p.Errorf("expected one of: [%s], found: %s", strings.Join(expectedStrings, ", "), TokenString(peekedToken))
}

// AdvanceIf expects one of the given tokens and advances if found.
func (p *LLParser) AdvanceIf(tokensIn ...int) (foundToken int, tokenValue *SymType, err error) {
	if _, err = p.Expect(tokensIn...); err != nil {
		return -1, nil, err
	}
	foundToken = p.peekedToken
	tokenValue = p.peekedTokenValue
	p.Advance()
	return
}

// ExpectKeyword consumes the NAME kw or fails.
func (p *LLParser) ExpectKeyword(kw string) (*SymType, error) {
	if !p.PeekKeyword(kw) {
		return nil, p.Errorf("expected '%s', found: %s", kw, TokenString(p.PeekToken()))
	}
	val := p.peekedTokenValue
	p.Advance()
	return val, nil
}

// span returns a location from start up to the end of the last consumed token.
func (p *LLParser) span(start Location) Location {
	start.End = p.lastEnd
	return start
}

func (p *LLParser) ParseName() (*Node, error) {
	_, val, err := p.AdvanceIf(NAME)
	if err != nil {
		return nil, err
	}
	return decl.NewLeaf(decl.KindName, val.text, val.loc), nil
}

func (p *LLParser) parseDescription() *Node {
	if tok := p.PeekToken(); tok == STRING || tok == BLOCK_STRING {
		val := p.peekedTokenValue
		p.Advance()
		return decl.NewLeaf(decl.KindDescription, val.text, val.loc)
	}
	return nil
}

// ParseDefinition parses one top level declaration.
//
//	Definition := Import | Description? (TypeDef | InputDef | ...) | "extend" Extension
func (p *LLParser) ParseDefinition() (*Node, error) {
	if p.PeekToken() == ILLEGAL {
		return nil, p.Errorf("invalid token")
	}
	start := p.peekedTokenValue.loc
	desc := p.parseDescription()
	if _, err := p.Expect(NAME); err != nil {
		return nil, err
	}
	keyword := p.peekedTokenValue.text
	if desc != nil && (keyword == "import" || keyword == "extend") {
		return nil, p.Errorf("descriptions are not allowed on '%s'", keyword)
	}
	switch keyword {
	case "import":
		return p.ParseImport(start)
	case "extend":
		p.Advance()
		return p.ParseExtension(start)
	case "type":
		return p.parseObjectLike(start, desc, decl.KindTypeDef, decl.KindGenericTypeDef)
	case "input":
		return p.parseObjectLike(start, desc, decl.KindInputDef, decl.KindGenericInputDef)
	case "interface":
		return p.parseObjectLike(start, desc, decl.KindInterfaceDef, decl.KindInvalid)
	case "enum":
		return p.parseEnum(start, desc, decl.KindEnumDef)
	case "scalar":
		return p.parseScalar(start, desc, decl.KindScalarDef)
	case "union":
		return p.parseUnion(start, desc, decl.KindUnionDef)
	case "directive":
		return p.ParseDirectiveDef(start, desc)
	case "schema":
		return p.parseSchema(start, desc, decl.KindSchemaDef)
	}
	return nil, p.Errorf("expected one of: [import, type, input, enum, interface, scalar, union, directive, schema, extend], found: %s", keyword)
}

// ParseImport parses an import statement.
//
//	Import := "import" STRING
func (p *LLParser) ParseImport(start Location) (*Node, error) {
	if _, err := p.ExpectKeyword("import"); err != nil {
		return nil, err
	}
	_, val, err := p.AdvanceIf(STRING)
	if err != nil {
		return nil, err
	}
	target := decl.NewLeaf(decl.KindStringValue, val.text, val.loc)
	return decl.NewNode(decl.KindImport, p.span(start), target), nil
}

// ParseExtension parses what follows "extend".
func (p *LLParser) ParseExtension(start Location) (*Node, error) {
	if _, err := p.Expect(NAME); err != nil {
		return nil, err
	}
	switch p.peekedTokenValue.text {
	case "type":
		return p.parseObjectLike(start, nil, decl.KindTypeExt, decl.KindInvalid)
	case "input":
		return p.parseObjectLike(start, nil, decl.KindInputExt, decl.KindInvalid)
	case "interface":
		return p.parseObjectLike(start, nil, decl.KindInterfaceExt, decl.KindInvalid)
	case "enum":
		return p.parseEnum(start, nil, decl.KindEnumExt)
	case "scalar":
		return p.parseScalar(start, nil, decl.KindScalarExt)
	case "union":
		return p.parseUnion(start, nil, decl.KindUnionExt)
	case "schema":
		return p.parseSchema(start, nil, decl.KindSchemaExt)
	}
	return nil, p.Errorf("expected one of: [type, input, enum, interface, scalar, union, schema] after 'extend', found: %s", p.peekedTokenValue.text)
}

// parseObjectLike handles type, input and interface declarations:
//
//	"type" Name GenericParams? Implements? Directives* Body?
//	"type" Name "=" NamedType<Args> Directives*
func (p *LLParser) parseObjectLike(start Location, desc *Node, kind, genericKind decl.Kind) (*Node, error) {
	p.Advance() // keyword
	name, err := p.ParseName()
	if err != nil {
		return nil, err
	}
	out := decl.NewNode(kind, start).Add(desc, name)

	if genericKind != decl.KindInvalid && p.PeekToken() == EQUALS {
		p.Advance()
		base, err := p.parseNamedType()
		if err != nil {
			return nil, err
		}
		if !base.Has(decl.KindGenericArgs) {
			return nil, p.Errorf("expected '<' with type arguments for %s", base.Text)
		}
		out.Kind = genericKind
		out.Add(base)
		if err = p.parseDirectives(out); err != nil {
			return nil, err
		}
		out.Loc = p.span(start)
		return out, nil
	}

	if p.PeekToken() == LT {
		if kind.IsExtension() {
			return nil, p.Errorf("extensions cannot declare generic parameters")
		}
		params, err := p.parseGenericParams()
		if err != nil {
			return nil, err
		}
		out.Add(params)
	}
	if kind != decl.KindInputDef && kind != decl.KindInputExt && p.PeekKeyword("implements") {
		impl, err := p.parseImplements()
		if err != nil {
			return nil, err
		}
		out.Add(impl)
	}
	if err = p.parseDirectives(out); err != nil {
		return nil, err
	}
	if p.PeekToken() == LBRACE {
		isInput := kind == decl.KindInputDef || kind == decl.KindInputExt
		if err = p.parseBlockBody(out, isInput); err != nil {
			return nil, err
		}
	}
	out.Loc = p.span(start)
	return out, nil
}

func (p *LLParser) parseGenericParams() (*Node, error) {
	_, lt, err := p.AdvanceIf(LT)
	if err != nil {
		return nil, err
	}
	out := decl.NewNode(decl.KindGenericParams, lt.loc)
	for p.PeekToken() != GT {
		name, err := p.ParseName()
		if err != nil {
			return nil, err
		}
		out.Add(name)
	}
	p.Advance()
	if len(out.Children) == 0 {
		return nil, p.Errorf("generic parameter list cannot be empty")
	}
	out.Loc = p.span(out.Loc)
	return out, nil
}

// parseImplements parses: "implements" "&"? Name ("&" Name)*
func (p *LLParser) parseImplements() (*Node, error) {
	kw, _ := p.ExpectKeyword("implements")
	out := decl.NewNode(decl.KindImplements, kw.loc)
	if p.PeekToken() == AMP {
		p.Advance()
	}
	for {
		name, err := p.ParseName()
		if err != nil {
			return nil, err
		}
		out.Add(name)
		if p.PeekToken() != AMP {
			break
		}
		p.Advance()
	}
	out.Loc = p.span(out.Loc)
	return out, nil
}

// parseBlockBody parses "{" (Spread | Field)* "}" into out.
func (p *LLParser) parseBlockBody(out *Node, inputValues bool) error {
	if _, _, err := p.AdvanceIf(LBRACE); err != nil {
		return err
	}
	for {
		switch p.PeekToken() {
		case RBRACE:
			p.Advance()
			return nil
		case eof:
			return p.Errorf("unexpected end of input in body of %s", out.Kind)
		case SPREAD:
			_, val, _ := p.AdvanceIf(SPREAD)
			target, err := p.parseNamedType()
			if err != nil {
				return err
			}
			out.Add(decl.NewNode(decl.KindSpread, p.span(val.loc), target))
		default:
			var field *Node
			var err error
			if inputValues {
				field, err = p.parseInputValue()
			} else {
				field, err = p.parseField()
			}
			if err != nil {
				return err
			}
			out.Add(field)
		}
	}
}

// parseField parses: Description? Name ArgumentsDef? ":" Type Directives*
func (p *LLParser) parseField() (*Node, error) {
	start := p.PeekTokenLoc()
	desc := p.parseDescription()
	name, err := p.ParseName()
	if err != nil {
		return nil, err
	}
	out := decl.NewNode(decl.KindField, start).Add(desc, name)
	if p.PeekToken() == LPAREN {
		args, err := p.parseArgumentsDef()
		if err != nil {
			return nil, err
		}
		out.Add(args)
	}
	if _, _, err = p.AdvanceIf(COLON); err != nil {
		return nil, err
	}
	typ, err := p.parseTypeRef()
	if err != nil {
		return nil, err
	}
	out.Add(typ)
	if err = p.parseDirectives(out); err != nil {
		return nil, err
	}
	out.Loc = p.span(start)
	return out, nil
}

// parseInputValue parses: Description? Name ":" Type DefaultValue? Directives*
func (p *LLParser) parseInputValue() (*Node, error) {
	start := p.PeekTokenLoc()
	desc := p.parseDescription()
	name, err := p.ParseName()
	if err != nil {
		return nil, err
	}
	out := decl.NewNode(decl.KindInputValue, start).Add(desc, name)
	if _, _, err = p.AdvanceIf(COLON); err != nil {
		return nil, err
	}
	typ, err := p.parseTypeRef()
	if err != nil {
		return nil, err
	}
	out.Add(typ)
	if p.PeekToken() == EQUALS {
		_, eq, _ := p.AdvanceIf(EQUALS)
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out.Add(decl.NewNode(decl.KindDefaultValue, p.span(eq.loc), val))
	}
	if err = p.parseDirectives(out); err != nil {
		return nil, err
	}
	out.Loc = p.span(start)
	return out, nil
}

// PeekTokenLoc returns the location of the next token without consuming it.
func (p *LLParser) PeekTokenLoc() Location {
	p.PeekToken()
	return p.peekedTokenValue.loc
}

func (p *LLParser) parseArgumentsDef() (*Node, error) {
	_, lp, err := p.AdvanceIf(LPAREN)
	if err != nil {
		return nil, err
	}
	out := decl.NewNode(decl.KindArgumentsDef, lp.loc)
	for p.PeekToken() != RPAREN {
		if p.PeekToken() == eof {
			return nil, p.Errorf("unexpected end of input in argument list")
		}
		iv, err := p.parseInputValue()
		if err != nil {
			return nil, err
		}
		out.Add(iv)
	}
	p.Advance()
	out.Loc = p.span(out.Loc)
	return out, nil
}

// parseTypeRef parses: (NamedType | "[" Type "]") "!"?
func (p *LLParser) parseTypeRef() (out *Node, err error) {
	start := p.PeekTokenLoc()
	if p.PeekToken() == LBRACKET {
		p.Advance()
		inner, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		if _, _, err = p.AdvanceIf(RBRACKET); err != nil {
			return nil, err
		}
		out = decl.NewNode(decl.KindListType, p.span(start), inner)
	} else if out, err = p.parseNamedType(); err != nil {
		return nil, err
	}
	if p.PeekToken() == BANG {
		p.Advance()
		out = decl.NewNode(decl.KindNonNullType, p.span(start), out)
	}
	return out, nil
}

// parseNamedType parses: Name ("<" Type+ ">")?
func (p *LLParser) parseNamedType() (*Node, error) {
	_, val, err := p.AdvanceIf(NAME)
	if err != nil {
		return nil, err
	}
	out := decl.NewLeaf(decl.KindNamedType, val.text, val.loc)
	if p.PeekToken() == LT {
		_, lt, _ := p.AdvanceIf(LT)
		args := decl.NewNode(decl.KindGenericArgs, lt.loc)
		for p.PeekToken() != GT {
			if p.PeekToken() == eof {
				return nil, p.Errorf("unexpected end of input in type arguments of %s", val.text)
			}
			arg, err := p.parseTypeRef()
			if err != nil {
				return nil, err
			}
			args.Add(arg)
		}
		p.Advance()
		if len(args.Children) == 0 {
			return nil, p.Errorf("type argument list of %s cannot be empty", val.text)
		}
		args.Loc = p.span(args.Loc)
		out.Add(args)
		out.Loc = p.span(val.loc)
	}
	return out, nil
}

// parseDirectives appends every "@name(args)" that follows to out.
func (p *LLParser) parseDirectives(out *Node) error {
	for p.PeekToken() == AT {
		_, at, _ := p.AdvanceIf(AT)
		_, name, err := p.AdvanceIf(NAME)
		if err != nil {
			return err
		}
		dir := decl.NewLeaf(decl.KindDirective, name.text, at.loc)
		if p.PeekToken() == LPAREN {
			p.Advance()
			for p.PeekToken() != RPAREN {
				argName, err := p.ParseName()
				if err != nil {
					return err
				}
				if _, _, err = p.AdvanceIf(COLON); err != nil {
					return err
				}
				val, err := p.parseValue()
				if err != nil {
					return err
				}
				arg := decl.NewNode(decl.KindArgument, p.span(argName.Loc), val)
				arg.Text = argName.Text
				dir.Add(arg)
			}
			p.Advance()
		}
		dir.Loc = p.span(at.loc)
		out.Add(dir)
	}
	return nil
}

// parseValue parses a constant or variable value.
func (p *LLParser) parseValue() (*Node, error) {
	tok := p.PeekToken()
	val := p.peekedTokenValue
	switch tok {
	case DOLLAR:
		p.Advance()
		name, err := p.ParseName()
		if err != nil {
			return nil, err
		}
		return decl.NewLeaf(decl.KindVariable, name.Text, p.span(val.loc)), nil
	case INT:
		p.Advance()
		return decl.NewLeaf(decl.KindIntValue, val.text, val.loc), nil
	case FLOAT:
		p.Advance()
		return decl.NewLeaf(decl.KindFloatValue, val.text, val.loc), nil
	case STRING, BLOCK_STRING:
		p.Advance()
		return decl.NewLeaf(decl.KindStringValue, val.text, val.loc), nil
	case NAME:
		p.Advance()
		switch val.text {
		case "true", "false":
			return decl.NewLeaf(decl.KindBooleanValue, val.text, val.loc), nil
		case "null":
			return decl.NewLeaf(decl.KindNullValue, val.text, val.loc), nil
		}
		return decl.NewLeaf(decl.KindEnumLiteral, val.text, val.loc), nil
	case LBRACKET:
		p.Advance()
		out := decl.NewNode(decl.KindListValue, val.loc)
		for p.PeekToken() != RBRACKET {
			if p.PeekToken() == eof {
				return nil, p.Errorf("unexpected end of input in list value")
			}
			item, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			out.Add(item)
		}
		p.Advance()
		out.Loc = p.span(val.loc)
		return out, nil
	case LBRACE:
		p.Advance()
		out := decl.NewNode(decl.KindObjectValue, val.loc)
		for p.PeekToken() != RBRACE {
			name, err := p.ParseName()
			if err != nil {
				return nil, err
			}
			if _, _, err = p.AdvanceIf(COLON); err != nil {
				return nil, err
			}
			fv, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			field := decl.NewNode(decl.KindObjectField, p.span(name.Loc), fv)
			field.Text = name.Text
			out.Add(field)
		}
		p.Advance()
		out.Loc = p.span(val.loc)
		return out, nil
	}
	return nil, p.Errorf("expected a value, found: %s", TokenString(tok))
}

// parseEnum parses: "enum" Name Directives* ("{" EnumValue* "}")?
func (p *LLParser) parseEnum(start Location, desc *Node, kind decl.Kind) (*Node, error) {
	p.Advance()
	name, err := p.ParseName()
	if err != nil {
		return nil, err
	}
	out := decl.NewNode(kind, start).Add(desc, name)
	if err = p.parseDirectives(out); err != nil {
		return nil, err
	}
	if p.PeekToken() == LBRACE {
		p.Advance()
		for p.PeekToken() != RBRACE {
			if p.PeekToken() == eof {
				return nil, p.Errorf("unexpected end of input in enum %s", name.Text)
			}
			vstart := p.PeekTokenLoc()
			vdesc := p.parseDescription()
			vname, err := p.ParseName()
			if err != nil {
				return nil, err
			}
			switch vname.Text {
			case "true", "false", "null":
				return nil, p.Errorf("enum value cannot be named %s", vname.Text)
			}
			value := decl.NewNode(decl.KindEnumValue, vstart).Add(vdesc, vname)
			if err = p.parseDirectives(value); err != nil {
				return nil, err
			}
			value.Loc = p.span(vstart)
			out.Add(value)
		}
		p.Advance()
	}
	out.Loc = p.span(start)
	return out, nil
}

// parseScalar parses: "scalar" Name Directives*
func (p *LLParser) parseScalar(start Location, desc *Node, kind decl.Kind) (*Node, error) {
	p.Advance()
	name, err := p.ParseName()
	if err != nil {
		return nil, err
	}
	out := decl.NewNode(kind, start).Add(desc, name)
	if err = p.parseDirectives(out); err != nil {
		return nil, err
	}
	out.Loc = p.span(start)
	return out, nil
}

// parseUnion parses: "union" Name Directives* ("=" "|"? Name ("|" Name)*)?
func (p *LLParser) parseUnion(start Location, desc *Node, kind decl.Kind) (*Node, error) {
	p.Advance()
	name, err := p.ParseName()
	if err != nil {
		return nil, err
	}
	out := decl.NewNode(kind, start).Add(desc, name)
	if err = p.parseDirectives(out); err != nil {
		return nil, err
	}
	if p.PeekToken() == EQUALS {
		_, eq, _ := p.AdvanceIf(EQUALS)
		members := decl.NewNode(decl.KindUnionMembers, eq.loc)
		if p.PeekToken() == PIPE {
			p.Advance()
		}
		for {
			member, err := p.ParseName()
			if err != nil {
				return nil, err
			}
			members.Add(member)
			if p.PeekToken() != PIPE {
				break
			}
			p.Advance()
		}
		members.Loc = p.span(eq.loc)
		out.Add(members)
	}
	out.Loc = p.span(start)
	return out, nil
}

// ParseDirectiveDef parses:
//
//	"directive" "@" Name ArgumentsDef? "repeatable"? "on" "|"? Location ("|" Location)*
func (p *LLParser) ParseDirectiveDef(start Location, desc *Node) (*Node, error) {
	p.Advance()
	if _, _, err := p.AdvanceIf(AT); err != nil {
		return nil, err
	}
	name, err := p.ParseName()
	if err != nil {
		return nil, err
	}
	out := decl.NewNode(decl.KindDirectiveDef, start).Add(desc, name)
	if p.PeekToken() == LPAREN {
		args, err := p.parseArgumentsDef()
		if err != nil {
			return nil, err
		}
		out.Add(args)
	}
	if p.PeekKeyword("repeatable") {
		val := p.peekedTokenValue
		p.Advance()
		out.Add(decl.NewLeaf(decl.KindRepeatable, val.text, val.loc))
	}
	on, err := p.ExpectKeyword("on")
	if err != nil {
		return nil, err
	}
	locations := decl.NewNode(decl.KindDirectiveLocations, on.loc)
	if p.PeekToken() == PIPE {
		p.Advance()
	}
	for {
		loc, err := p.ParseName()
		if err != nil {
			return nil, err
		}
		if !validDirectiveLocations[loc.Text] {
			return nil, p.Errorf("unknown directive location %s", loc.Text)
		}
		locations.Add(loc)
		if p.PeekToken() != PIPE {
			break
		}
		p.Advance()
	}
	locations.Loc = p.span(on.loc)
	out.Add(locations)
	out.Loc = p.span(start)
	return out, nil
}

var validDirectiveLocations = map[string]bool{
	"QUERY": true, "MUTATION": true, "SUBSCRIPTION": true, "FIELD": true,
	"FRAGMENT_DEFINITION": true, "FRAGMENT_SPREAD": true, "INLINE_FRAGMENT": true,
	"VARIABLE_DEFINITION": true, "SCHEMA": true, "SCALAR": true, "OBJECT": true,
	"FIELD_DEFINITION": true, "ARGUMENT_DEFINITION": true, "INTERFACE": true,
	"UNION": true, "ENUM": true, "ENUM_VALUE": true, "INPUT_OBJECT": true,
	"INPUT_FIELD_DEFINITION": true,
}

// parseSchema parses: "schema" Directives* ("{" (Name ":" Name)* "}")?
func (p *LLParser) parseSchema(start Location, desc *Node, kind decl.Kind) (*Node, error) {
	p.Advance()
	out := decl.NewNode(kind, start).Add(desc)
	if err := p.parseDirectives(out); err != nil {
		return nil, err
	}
	if p.PeekToken() == LBRACE {
		p.Advance()
		for p.PeekToken() != RBRACE {
			if p.PeekToken() == eof {
				return nil, p.Errorf("unexpected end of input in schema")
			}
			op, err := p.ParseName()
			if err != nil {
				return nil, err
			}
			if _, _, err = p.AdvanceIf(COLON); err != nil {
				return nil, err
			}
			typ, err := p.ParseName()
			if err != nil {
				return nil, err
			}
			out.Add(decl.NewNode(decl.KindOperationType, p.span(op.Loc), op, typ))
		}
		p.Advance()
	} else if kind == decl.KindSchemaDef {
		return nil, p.Errorf("expected '{' after schema")
	}
	out.Loc = p.span(start)
	return out, nil
}
