package decl

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// --- Positions ---

// Location identifies a span of source text within a document.
// Pos and End are byte offsets, Line and Col are 1-based (Col counts runes).
type Location struct {
	File string
	Pos  int
	End  int
	Line int
	Col  int
}

// LineColStr renders just the line and column of the location.
func (l Location) LineColStr() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Col)
}

func (l Location) String() string {
	if l.File == "" {
		return l.LineColStr()
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// WithFile returns a copy of the location attributed to another file.
func (l Location) WithFile(file string) Location {
	l.File = file
	return l
}

// Identifier is a declared name plus where it was declared.
// Only Name takes part in namespace identity.
type Identifier struct {
	Name string
	Loc  Location
}

func (i Identifier) String() string { return i.Name }

// NewIdentifier creates an identifier with no source location.
func NewIdentifier(name string) Identifier {
	return Identifier{Name: name}
}

// --- Syntax tree ---

// Kind is the grammar rule a syntax Node was produced by.
type Kind int

const (
	KindInvalid Kind = iota
	KindSpec
	KindEOI

	// Top level declarations
	KindImport
	KindSchemaDef
	KindSchemaExt
	KindTypeDef
	KindTypeExt
	KindGenericTypeDef
	KindInputDef
	KindInputExt
	KindGenericInputDef
	KindEnumDef
	KindEnumExt
	KindInterfaceDef
	KindInterfaceExt
	KindScalarDef
	KindScalarExt
	KindUnionDef
	KindUnionExt
	KindDirectiveDef

	// Building blocks
	KindName
	KindDescription
	KindGenericParams
	KindImplements
	KindDirective
	KindArgument
	KindArgumentsDef
	KindInputValue
	KindField
	KindSpread
	KindEnumValue
	KindUnionMembers
	KindRepeatable
	KindDirectiveLocations
	KindOperationType
	KindNamedType
	KindListType
	KindNonNullType
	KindGenericArgs
	KindDefaultValue

	// Values
	KindVariable
	KindIntValue
	KindFloatValue
	KindStringValue
	KindBooleanValue
	KindNullValue
	KindEnumLiteral
	KindListValue
	KindObjectValue
	KindObjectField
)

var kindNames = map[Kind]string{
	KindInvalid:            "invalid",
	KindSpec:               "spec",
	KindEOI:                "EOI",
	KindImport:             "import",
	KindSchemaDef:          "schema_def",
	KindSchemaExt:          "schema_ext",
	KindTypeDef:            "type_def",
	KindTypeExt:            "type_ext",
	KindGenericTypeDef:     "generic_type_def",
	KindInputDef:           "input_def",
	KindInputExt:           "input_ext",
	KindGenericInputDef:    "generic_input_def",
	KindEnumDef:            "enum_def",
	KindEnumExt:            "enum_ext",
	KindInterfaceDef:       "interface_def",
	KindInterfaceExt:       "interface_ext",
	KindScalarDef:          "scalar_def",
	KindScalarExt:          "scalar_ext",
	KindUnionDef:           "union_def",
	KindUnionExt:           "union_ext",
	KindDirectiveDef:       "directive_def",
	KindName:               "name",
	KindDescription:        "description",
	KindGenericParams:      "generic_params",
	KindImplements:         "implements",
	KindDirective:          "directive",
	KindArgument:           "argument",
	KindArgumentsDef:       "arguments_def",
	KindInputValue:         "input_value",
	KindField:              "field",
	KindSpread:             "spread",
	KindEnumValue:          "enum_value",
	KindUnionMembers:       "union_members",
	KindRepeatable:         "repeatable",
	KindDirectiveLocations: "directive_locations",
	KindOperationType:      "operation_type",
	KindNamedType:          "named_type",
	KindListType:           "list_type",
	KindNonNullType:        "non_null_type",
	KindGenericArgs:        "generic_args",
	KindDefaultValue:       "default_value",
	KindVariable:           "variable",
	KindIntValue:           "int_value",
	KindFloatValue:         "float_value",
	KindStringValue:        "string_value",
	KindBooleanValue:       "boolean_value",
	KindNullValue:          "null_value",
	KindEnumLiteral:        "enum_literal",
	KindListValue:          "list_value",
	KindObjectValue:        "object_value",
	KindObjectField:        "object_field",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsExtension returns true for the "extend ..." variants of a declaration.
func (k Kind) IsExtension() bool {
	switch k {
	case KindSchemaExt, KindTypeExt, KindInputExt, KindEnumExt, KindInterfaceExt, KindScalarExt, KindUnionExt:
		return true
	}
	return false
}

// Node is a concrete syntax tree node produced by the grammar engine.
// Leaves carry their text (names, literal values), inner nodes carry children
// in source order.
type Node struct {
	Kind     Kind
	Text     string
	Loc      Location
	Children []*Node
}

func NewNode(kind Kind, loc Location, children ...*Node) *Node {
	return &Node{Kind: kind, Loc: loc, Children: children}
}

func NewLeaf(kind Kind, text string, loc Location) *Node {
	return &Node{Kind: kind, Text: text, Loc: loc}
}

// Add appends children, ignoring nils so optional parts can be passed directly.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// Child returns the first direct child of the given kind.
func (n *Node) Child(kind Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// ChildrenOf returns all direct children of the given kind.
func (n *Node) ChildrenOf(kind Kind) (out []*Node) {
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return
}

// Has returns true if a direct child of the kind exists.
func (n *Node) Has(kind Kind) bool {
	return n.Child(kind) != nil
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if len(n.Children) == 0 {
		if n.Text == "" {
			return n.Kind.String()
		}
		return fmt.Sprintf("%s(%s)", n.Kind, n.Text)
	}
	head := n.Kind.String()
	if n.Text != "" {
		head = fmt.Sprintf("%s(%s)", n.Kind, n.Text)
	}
	children := gfn.Map(n.Children, func(c *Node) string { return c.String() })
	return fmt.Sprintf("%s[%s]", head, strings.Join(children, " "))
}
