package loader

import (
	"fmt"

	gfn "github.com/panyam/goutils/fn"
	"github.com/panyam/graphqxl/decl"
)

// Category is the namespace a definition is filed under.
type Category int

const (
	CategoryType Category = iota
	CategoryGenericType
	CategoryInput
	CategoryGenericInput
	CategoryEnum
	CategoryInterface
	CategoryScalar
	CategoryUnion
	CategoryDirective
	CategorySchema
)

// String returns the kind name used in diagnostics.  Generic categories share
// the name of their plain sibling since they share its namespace.
func (c Category) String() string {
	switch c {
	case CategoryType, CategoryGenericType:
		return "type"
	case CategoryInput, CategoryGenericInput:
		return "input"
	case CategoryEnum:
		return "enum"
	case CategoryInterface:
		return "interface"
	case CategoryScalar:
		return "scalar"
	case CategoryUnion:
		return "union"
	case CategoryDirective:
		return "directive"
	case CategorySchema:
		return "schema"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Label is a unique name per category, e.g. "generic_type".
func (c Category) Label() string {
	switch c {
	case CategoryGenericType:
		return "generic_type"
	case CategoryGenericInput:
		return "generic_input"
	}
	return c.String()
}

// DefTag records that a definition of a category was declared under a name.
// Tags replay declaration order; the bodies live in the Spec maps.  For an
// extension Name holds the storage key, not the name written in the source.
type DefTag struct {
	Category  Category
	Name      decl.Identifier
	Extension bool
}

func (t DefTag) String() string {
	return t.Category.Label() + " " + t.Name.Name
}

// Base returns the name of the definition the tag applies to.  Plain names
// are returned as is, even when they contain ExtendSeparator.
func (t DefTag) Base() string {
	if t.Extension {
		return BaseName(t.Name.Name)
	}
	return t.Name.Name
}

// The top level syntax kinds Spec.Add accepts.
var expectedDeclarations = []string{"type", "input", "enum", "interface", "scalar", "union", "directive", "schema"}

// Spec is the aggregate of every definition reachable from an entry document.
//
// Types/GenericTypes and Inputs/GenericInputs are jointly unique namespaces,
// the other maps are unique on their own.  Extensions are stored under keys
// derived from their base name (see BaseName) and re-keyed whenever a key
// turns out to be taken, so they never collide with any other name.  Order
// holds one tag per accepted definition in declaration order.
type Spec struct {
	Types         map[string]*decl.BlockDef
	GenericTypes  map[string]*decl.GenericBlockDef
	Inputs        map[string]*decl.BlockDef
	GenericInputs map[string]*decl.GenericBlockDef
	Enums         map[string]*decl.BlockDef
	Interfaces    map[string]*decl.BlockDef
	Scalars       map[string]*decl.Scalar
	Unions        map[string]*decl.Union
	Directives    map[string]*decl.DirectiveDef
	Schemas       map[string]*decl.Schema
	Order         []DefTag

	keys KeyGen
}

// NewSpec creates an empty spec.  keys derives extension keys; nil means
// UUIDKeyGen.
func NewSpec(keys KeyGen) *Spec {
	if keys == nil {
		keys = UUIDKeyGen{}
	}
	return &Spec{
		Types:         map[string]*decl.BlockDef{},
		GenericTypes:  map[string]*decl.GenericBlockDef{},
		Inputs:        map[string]*decl.BlockDef{},
		GenericInputs: map[string]*decl.GenericBlockDef{},
		Enums:         map[string]*decl.BlockDef{},
		Interfaces:    map[string]*decl.BlockDef{},
		Scalars:       map[string]*decl.Scalar{},
		Unions:        map[string]*decl.Union{},
		Directives:    map[string]*decl.DirectiveDef{},
		Schemas:       map[string]*decl.Schema{},
		keys:          keys,
	}
}

// Len returns the number of definitions in the spec.
func (s *Spec) Len() int {
	return len(s.Order)
}

// Has returns true if name is taken in the namespace of category.
func (s *Spec) Has(category Category, name string) bool {
	switch category {
	case CategoryType, CategoryGenericType:
		return s.Types[name] != nil || s.GenericTypes[name] != nil
	case CategoryInput, CategoryGenericInput:
		return s.Inputs[name] != nil || s.GenericInputs[name] != nil
	case CategoryEnum:
		return s.Enums[name] != nil
	case CategoryInterface:
		return s.Interfaces[name] != nil
	case CategoryScalar:
		return s.Scalars[name] != nil
	case CategoryUnion:
		return s.Unions[name] != nil
	case CategoryDirective:
		return s.Directives[name] != nil
	case CategorySchema:
		return s.Schemas[name] != nil
	}
	return false
}

// Lookup returns the definition a tag points to.
func (s *Spec) Lookup(tag DefTag) (def any, found bool) {
	name := tag.Name.Name
	switch tag.Category {
	case CategoryType:
		def, found = s.Types[name]
	case CategoryGenericType:
		def, found = s.GenericTypes[name]
	case CategoryInput:
		def, found = s.Inputs[name]
	case CategoryGenericInput:
		def, found = s.GenericInputs[name]
	case CategoryEnum:
		def, found = s.Enums[name]
	case CategoryInterface:
		def, found = s.Interfaces[name]
	case CategoryScalar:
		def, found = s.Scalars[name]
	case CategoryUnion:
		def, found = s.Unions[name]
	case CategoryDirective:
		def, found = s.Directives[name]
	case CategorySchema:
		def, found = s.Schemas[name]
	}
	return
}

// Extensions returns the tags of every extension of base in a category, in
// declaration order.
func (s *Spec) Extensions(category Category, base string) []DefTag {
	return gfn.Filter(s.Order, func(tag DefTag) bool {
		return tag.Category == category && tag.Extension && tag.Base() == base
	})
}

// freshKey derives extension keys for base until one is free in category.
func (s *Spec) freshKey(category Category, base string) string {
	key := s.keys.NextKey(base)
	for s.Has(category, key) {
		key = s.keys.NextKey(base)
	}
	return key
}

// sameNamespace is true when names in a and b share one namespace.
func sameNamespace(a, b Category) bool {
	ns := func(c Category) Category {
		switch c {
		case CategoryGenericType:
			return CategoryType
		case CategoryGenericInput:
			return CategoryInput
		}
		return c
	}
	return ns(a) == ns(b)
}

// yieldExtension moves an extension stored under key to a fresh key, making
// room for a plain declaration that happens to use the same name.  It returns
// false if key is not held by an extension.
func (s *Spec) yieldExtension(category Category, key string) bool {
	i := gfn.IndexOf(s.Order, func(tag DefTag) bool {
		return tag.Extension && tag.Name.Name == key && sameNamespace(tag.Category, category)
	})
	if i < 0 {
		return false
	}
	tag := s.Order[i]
	def, _ := s.Lookup(tag)
	s.remove(tag.Category, key)
	tag.Name.Name = s.freshKey(tag.Category, tag.Base())
	s.store(tag.Category, tag.Name.Name, def)
	s.Order[i] = tag
	return true
}

// store files def under key in the map of category.
func (s *Spec) store(category Category, key string, def any) {
	switch category {
	case CategoryType:
		s.Types[key] = def.(*decl.BlockDef)
	case CategoryGenericType:
		s.GenericTypes[key] = def.(*decl.GenericBlockDef)
	case CategoryInput:
		s.Inputs[key] = def.(*decl.BlockDef)
	case CategoryGenericInput:
		s.GenericInputs[key] = def.(*decl.GenericBlockDef)
	case CategoryEnum:
		s.Enums[key] = def.(*decl.BlockDef)
	case CategoryInterface:
		s.Interfaces[key] = def.(*decl.BlockDef)
	case CategoryScalar:
		s.Scalars[key] = def.(*decl.Scalar)
	case CategoryUnion:
		s.Unions[key] = def.(*decl.Union)
	case CategoryDirective:
		s.Directives[key] = def.(*decl.DirectiveDef)
	case CategorySchema:
		s.Schemas[key] = def.(*decl.Schema)
	}
}

func (s *Spec) remove(category Category, key string) {
	switch category {
	case CategoryType:
		delete(s.Types, key)
	case CategoryGenericType:
		delete(s.GenericTypes, key)
	case CategoryInput:
		delete(s.Inputs, key)
	case CategoryGenericInput:
		delete(s.GenericInputs, key)
	case CategoryEnum:
		delete(s.Enums, key)
	case CategoryInterface:
		delete(s.Interfaces, key)
	case CategoryScalar:
		delete(s.Scalars, key)
	case CategoryUnion:
		delete(s.Unions, key)
	case CategoryDirective:
		delete(s.Directives, key)
	case CategorySchema:
		delete(s.Schemas, key)
	}
}

// declare files a plain declaration after checking its namespace.
func (s *Spec) declare(category Category, id decl.Identifier, loc decl.Location, store func(key string)) error {
	if s.Has(category, id.Name) && !s.yieldExtension(category, id.Name) {
		return &DuplicateDefinitionError{Kind: category.String(), Name: id.Name, Loc: loc}
	}
	store(id.Name)
	s.Order = append(s.Order, DefTag{Category: category, Name: id})
	return nil
}

// extend files an extension under a fresh key derived from its base name.
func (s *Spec) extend(category Category, id decl.Identifier, store func(key string)) {
	id.Name = s.freshKey(category, id.Name)
	store(id.Name)
	s.Order = append(s.Order, DefTag{Category: category, Name: id, Extension: true})
}

// Add parses one top level syntax node of a document and files the result.
// file is the canonical path of the document the node came from.
func (s *Spec) Add(node *decl.Node, file string) error {
	switch node.Kind {
	case decl.KindSchemaDef, decl.KindSchemaExt:
		schema, err := decl.ParseSchema(node, file)
		if err != nil {
			return err
		}
		id := decl.Identifier{Name: "schema", Loc: schema.Loc}
		store := func(key string) { s.Schemas[key] = schema }
		if schema.Extension {
			s.extend(CategorySchema, id, store)
			return nil
		}
		return s.declare(CategorySchema, id, schema.Loc, store)

	case decl.KindTypeDef, decl.KindTypeExt,
		decl.KindInputDef, decl.KindInputExt,
		decl.KindEnumDef, decl.KindEnumExt,
		decl.KindInterfaceDef, decl.KindInterfaceExt:
		block, err := decl.ParseBlockDef(node, file)
		if err != nil {
			return err
		}
		var category Category
		var target map[string]*decl.BlockDef
		switch block.Kind {
		case decl.BlockType:
			category, target = CategoryType, s.Types
		case decl.BlockInput:
			category, target = CategoryInput, s.Inputs
		case decl.BlockEnum:
			category, target = CategoryEnum, s.Enums
		case decl.BlockInterface:
			category, target = CategoryInterface, s.Interfaces
		}
		store := func(key string) { target[key] = block }
		if block.Extension {
			s.extend(category, block.Name, store)
			return nil
		}
		return s.declare(category, block.Name, block.Loc, store)

	case decl.KindGenericTypeDef, decl.KindGenericInputDef:
		generic, err := decl.ParseGenericBlockDef(node, file)
		if err != nil {
			return err
		}
		category, target := CategoryGenericType, s.GenericTypes
		if generic.Kind == decl.BlockInput {
			category, target = CategoryGenericInput, s.GenericInputs
		}
		return s.declare(category, generic.Name, generic.Loc, func(key string) { target[key] = generic })

	case decl.KindScalarDef, decl.KindScalarExt:
		scalar, err := decl.ParseScalar(node, file)
		if err != nil {
			return err
		}
		store := func(key string) { s.Scalars[key] = scalar }
		if scalar.Extension {
			s.extend(CategoryScalar, scalar.Name, store)
			return nil
		}
		return s.declare(CategoryScalar, scalar.Name, scalar.Loc, store)

	case decl.KindUnionDef, decl.KindUnionExt:
		union, err := decl.ParseUnion(node, file)
		if err != nil {
			return err
		}
		store := func(key string) { s.Unions[key] = union }
		if union.Extension {
			s.extend(CategoryUnion, union.Name, store)
			return nil
		}
		return s.declare(CategoryUnion, union.Name, union.Loc, store)

	case decl.KindDirectiveDef:
		directive, err := decl.ParseDirectiveDef(node, file)
		if err != nil {
			return err
		}
		return s.declare(CategoryDirective, directive.Name, directive.Loc, func(key string) { s.Directives[key] = directive })
	}
	return &UnknownDeclarationError{Kind: node.Kind, Expected: expectedDeclarations, Loc: node.Loc.WithFile(file)}
}

// Merge folds incoming into s in incoming's declaration order.  It fails on
// the first name incoming declares that s already has.  Extensions never
// fail: one whose key is taken in s is filed under a fresh key.
//
// Both generic pairs are checked jointly: a name present in either the plain
// or the generic map of s rejects the incoming definition.
func (s *Spec) Merge(incoming *Spec) error {
	for _, tag := range incoming.Order {
		def, _ := incoming.Lookup(tag)
		name := tag.Name.Name
		if s.Has(tag.Category, name) {
			switch {
			case tag.Extension:
				tag.Name.Name = s.freshKey(tag.Category, tag.Base())
			case !s.yieldExtension(tag.Category, name):
				return &DuplicateDefinitionError{Kind: tag.Category.String(), Name: name, Loc: tag.Name.Loc, Merge: true}
			}
		}
		s.store(tag.Category, tag.Name.Name, def)
		s.Order = append(s.Order, tag)
	}
	return nil
}
