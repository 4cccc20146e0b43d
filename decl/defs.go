package decl

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// BlockKind tells which block style declaration a BlockDef came from.
type BlockKind int

const (
	BlockType BlockKind = iota
	BlockInput
	BlockEnum
	BlockInterface
)

func (b BlockKind) String() string {
	switch b {
	case BlockType:
		return "type"
	case BlockInput:
		return "input"
	case BlockEnum:
		return "enum"
	case BlockInterface:
		return "interface"
	}
	return fmt.Sprintf("BlockKind(%d)", int(b))
}

// ValueKind classifies a constant value.
type ValueKind int

const (
	ValueInt ValueKind = iota
	ValueFloat
	ValueString
	ValueBoolean
	ValueNull
	ValueEnum
	ValueVariable
	ValueList
	ValueObject
)

// Value is a literal appearing in directive arguments and default values.
type Value struct {
	Kind   ValueKind
	Raw    string // scalar text (unquoted for strings)
	List   []*Value
	Fields []*ObjectField
	Loc    Location
}

type ObjectField struct {
	Name  Identifier
	Value *Value
}

func (v *Value) String() string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case ValueString:
		return fmt.Sprintf("%q", v.Raw)
	case ValueVariable:
		return "$" + v.Raw
	case ValueList:
		return "[" + strings.Join(gfn.Map(v.List, func(e *Value) string { return e.String() }), ", ") + "]"
	case ValueObject:
		fields := gfn.Map(v.Fields, func(f *ObjectField) string { return f.Name.Name + ": " + f.Value.String() })
		return "{" + strings.Join(fields, ", ") + "}"
	}
	return v.Raw
}

// TypeRefKind distinguishes named, list and non-null type references.
type TypeRefKind int

const (
	TypeNamed TypeRefKind = iota
	TypeList
	TypeNonNull
)

// TypeRef is a reference to a type, e.g. [Page<User>!]!
type TypeRef struct {
	Kind        TypeRefKind
	Name        Identifier // for TypeNamed
	GenericArgs []*TypeRef // for TypeNamed, e.g. Page<User>
	Of          *TypeRef   // for TypeList and TypeNonNull
	Loc         Location
}

func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeList:
		return "[" + t.Of.String() + "]"
	case TypeNonNull:
		return t.Of.String() + "!"
	}
	if len(t.GenericArgs) == 0 {
		return t.Name.Name
	}
	args := gfn.Map(t.GenericArgs, func(a *TypeRef) string { return a.String() })
	return t.Name.Name + "<" + strings.Join(args, ", ") + ">"
}

// Directive is an applied directive such as @deprecated(reason: "x").
type Directive struct {
	Name Identifier
	Args []*Argument
	Loc  Location
}

type Argument struct {
	Name  Identifier
	Value *Value
}

// Field is a field of a type/interface, an input value of an input or of an
// argument list, or an enum value (in which case Type is nil).
type Field struct {
	Description string
	Name        Identifier
	Args        []*Field
	Type        *TypeRef
	Default     *Value
	Directives  []*Directive
	Loc         Location
}

// BlockEntry is one item in a block body: either a field or a spread of
// another block ("...Base").
type BlockEntry struct {
	Field  *Field
	Spread *TypeRef
}

// BlockDef holds types, inputs, enums and interfaces and their extensions.
type BlockDef struct {
	Kind        BlockKind
	Name        Identifier
	Description string
	Generic     []Identifier
	Implements  []Identifier
	Directives  []*Directive
	Entries     []*BlockEntry
	Extension   bool
	Loc         Location
}

// Fields returns the plain fields, skipping spreads.
func (b *BlockDef) Fields() (out []*Field) {
	for _, e := range b.Entries {
		if e.Field != nil {
			out = append(out, e.Field)
		}
	}
	return
}

// GenericBlockDef is an instantiation alias: type Foo = Page<User>
type GenericBlockDef struct {
	Kind        BlockKind
	Name        Identifier
	Description string
	Base        *TypeRef
	Directives  []*Directive
	Loc         Location
}

type Scalar struct {
	Name        Identifier
	Description string
	Directives  []*Directive
	Extension   bool
	Loc         Location
}

type Union struct {
	Name        Identifier
	Description string
	Directives  []*Directive
	Members     []Identifier
	Extension   bool
	Loc         Location
}

type DirectiveDef struct {
	Name        Identifier
	Description string
	Args        []*Field
	Repeatable  bool
	Locations   []Identifier
	Loc         Location
}

// OperationType binds a root operation (query, mutation, subscription) to a type.
type OperationType struct {
	Operation Identifier
	Type      Identifier
}

type Schema struct {
	Description string
	Directives  []*Directive
	Operations  []*OperationType
	Extension   bool
	Loc         Location
}

// Operation returns the type bound to the named root operation.
func (s *Schema) Operation(op string) (Identifier, bool) {
	for _, o := range s.Operations {
		if o.Operation.Name == op {
			return o.Type, true
		}
	}
	return Identifier{}, false
}

// Import is an "import" statement.
type Import struct {
	FileName string
	Loc      Location
}
