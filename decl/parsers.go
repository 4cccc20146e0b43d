package decl

import (
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// The Parse* functions below turn one syntax node into one typed definition.
// file is the canonical path of the owning document and is stamped onto every
// location in the result so errors can be attributed across imports.

func expectKind(node *Node, file string, kinds ...Kind) error {
	if node == nil {
		return Errorf(Location{File: file}, "expected %s, found nothing", kindList(kinds))
	}
	for _, k := range kinds {
		if node.Kind == k {
			return nil
		}
	}
	return Errorf(node.Loc.WithFile(file), "expected %s, found %s", kindList(kinds), node.Kind)
}

func kindList(kinds []Kind) string {
	return strings.Join(gfn.Map(kinds, func(k Kind) string { return k.String() }), " or ")
}

func parseName(node *Node, file string) (Identifier, error) {
	name := node.Child(KindName)
	if name == nil {
		return Identifier{}, Errorf(node.Loc.WithFile(file), "%s is missing a name", node.Kind)
	}
	return Identifier{Name: name.Text, Loc: name.Loc.WithFile(file)}, nil
}

func parseDescription(node *Node) string {
	if d := node.Child(KindDescription); d != nil {
		return d.Text
	}
	return ""
}

func parseNames(node *Node, file string) []Identifier {
	if node == nil {
		return nil
	}
	return gfn.Map(node.ChildrenOf(KindName), func(n *Node) Identifier {
		return Identifier{Name: n.Text, Loc: n.Loc.WithFile(file)}
	})
}

// ParseValue converts a value node.
func ParseValue(node *Node, file string) (*Value, error) {
	v := &Value{Raw: node.Text, Loc: node.Loc.WithFile(file)}
	switch node.Kind {
	case KindIntValue:
		v.Kind = ValueInt
	case KindFloatValue:
		v.Kind = ValueFloat
	case KindStringValue:
		v.Kind = ValueString
	case KindBooleanValue:
		v.Kind = ValueBoolean
	case KindNullValue:
		v.Kind = ValueNull
	case KindEnumLiteral:
		v.Kind = ValueEnum
	case KindVariable:
		v.Kind = ValueVariable
	case KindListValue:
		v.Kind = ValueList
		for _, c := range node.Children {
			item, err := ParseValue(c, file)
			if err != nil {
				return nil, err
			}
			v.List = append(v.List, item)
		}
	case KindObjectValue:
		v.Kind = ValueObject
		for _, c := range node.ChildrenOf(KindObjectField) {
			if len(c.Children) != 1 {
				return nil, Errorf(c.Loc.WithFile(file), "object field %s has no value", c.Text)
			}
			fv, err := ParseValue(c.Children[0], file)
			if err != nil {
				return nil, err
			}
			v.Fields = append(v.Fields, &ObjectField{
				Name:  Identifier{Name: c.Text, Loc: c.Loc.WithFile(file)},
				Value: fv,
			})
		}
	default:
		return nil, Errorf(node.Loc.WithFile(file), "expected a value, found %s", node.Kind)
	}
	return v, nil
}

// ParseTypeRef converts a named, list or non-null type node.
func ParseTypeRef(node *Node, file string) (*TypeRef, error) {
	if err := expectKind(node, file, KindNamedType, KindListType, KindNonNullType); err != nil {
		return nil, err
	}
	t := &TypeRef{Loc: node.Loc.WithFile(file)}
	switch node.Kind {
	case KindNamedType:
		t.Kind = TypeNamed
		t.Name = Identifier{Name: node.Text, Loc: node.Loc.WithFile(file)}
		if args := node.Child(KindGenericArgs); args != nil {
			for _, a := range args.Children {
				arg, err := ParseTypeRef(a, file)
				if err != nil {
					return nil, err
				}
				t.GenericArgs = append(t.GenericArgs, arg)
			}
		}
	case KindListType, KindNonNullType:
		if node.Kind == KindListType {
			t.Kind = TypeList
		} else {
			t.Kind = TypeNonNull
		}
		if len(node.Children) != 1 {
			return nil, Errorf(t.Loc, "%s must wrap exactly one type", node.Kind)
		}
		of, err := ParseTypeRef(node.Children[0], file)
		if err != nil {
			return nil, err
		}
		t.Of = of
	}
	return t, nil
}

func findTypeNode(node *Node) *Node {
	for _, c := range node.Children {
		switch c.Kind {
		case KindNamedType, KindListType, KindNonNullType:
			return c
		}
	}
	return nil
}

// ParseDirectives converts every directive applied directly on node.
func ParseDirectives(node *Node, file string) ([]*Directive, error) {
	var out []*Directive
	for _, d := range node.ChildrenOf(KindDirective) {
		dir := &Directive{
			Name: Identifier{Name: d.Text, Loc: d.Loc.WithFile(file)},
			Loc:  d.Loc.WithFile(file),
		}
		for _, a := range d.ChildrenOf(KindArgument) {
			if len(a.Children) != 1 {
				return nil, Errorf(a.Loc.WithFile(file), "argument %s of @%s has no value", a.Text, d.Text)
			}
			val, err := ParseValue(a.Children[0], file)
			if err != nil {
				return nil, err
			}
			dir.Args = append(dir.Args, &Argument{
				Name:  Identifier{Name: a.Text, Loc: a.Loc.WithFile(file)},
				Value: val,
			})
		}
		out = append(out, dir)
	}
	return out, nil
}

func parseInputValues(node *Node, file string) ([]*Field, error) {
	if node == nil {
		return nil, nil
	}
	var out []*Field
	for _, iv := range node.ChildrenOf(KindInputValue) {
		f, err := parseField(iv, file)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// parseField handles fields, input values and enum values, which differ only
// in which optional children are present.
func parseField(node *Node, file string) (f *Field, err error) {
	f = &Field{Description: parseDescription(node), Loc: node.Loc.WithFile(file)}
	if f.Name, err = parseName(node, file); err != nil {
		return nil, err
	}
	if f.Args, err = parseInputValues(node.Child(KindArgumentsDef), file); err != nil {
		return nil, err
	}
	if tn := findTypeNode(node); tn != nil {
		if f.Type, err = ParseTypeRef(tn, file); err != nil {
			return nil, err
		}
	} else if node.Kind != KindEnumValue {
		return nil, Errorf(f.Loc, "%s %s has no type", node.Kind, f.Name.Name)
	}
	if dv := node.Child(KindDefaultValue); dv != nil {
		if len(dv.Children) != 1 {
			return nil, Errorf(dv.Loc.WithFile(file), "default value of %s is empty", f.Name.Name)
		}
		if f.Default, err = ParseValue(dv.Children[0], file); err != nil {
			return nil, err
		}
	}
	if f.Directives, err = ParseDirectives(node, file); err != nil {
		return nil, err
	}
	return f, nil
}

var blockKinds = map[Kind]BlockKind{
	KindTypeDef:      BlockType,
	KindTypeExt:      BlockType,
	KindInputDef:     BlockInput,
	KindInputExt:     BlockInput,
	KindEnumDef:      BlockEnum,
	KindEnumExt:      BlockEnum,
	KindInterfaceDef: BlockInterface,
	KindInterfaceExt: BlockInterface,
}

// ParseBlockDef parses type, input, enum and interface declarations and their
// extensions.
func ParseBlockDef(node *Node, file string) (out *BlockDef, err error) {
	if err = expectKind(node, file, KindTypeDef, KindTypeExt, KindInputDef, KindInputExt,
		KindEnumDef, KindEnumExt, KindInterfaceDef, KindInterfaceExt); err != nil {
		return nil, err
	}
	out = &BlockDef{
		Kind:        blockKinds[node.Kind],
		Description: parseDescription(node),
		Generic:     parseNames(node.Child(KindGenericParams), file),
		Implements:  parseNames(node.Child(KindImplements), file),
		Extension:   node.Kind.IsExtension(),
		Loc:         node.Loc.WithFile(file),
	}
	if out.Name, err = parseName(node, file); err != nil {
		return nil, err
	}
	if out.Directives, err = ParseDirectives(node, file); err != nil {
		return nil, err
	}
	for _, c := range node.Children {
		switch c.Kind {
		case KindField, KindInputValue, KindEnumValue:
			f, err := parseField(c, file)
			if err != nil {
				return nil, err
			}
			out.Entries = append(out.Entries, &BlockEntry{Field: f})
		case KindSpread:
			if out.Kind == BlockEnum {
				return nil, Errorf(c.Loc.WithFile(file), "enums cannot spread other blocks")
			}
			tn := findTypeNode(c)
			if tn == nil {
				return nil, Errorf(c.Loc.WithFile(file), "spread has no target")
			}
			ref, err := ParseTypeRef(tn, file)
			if err != nil {
				return nil, err
			}
			out.Entries = append(out.Entries, &BlockEntry{Spread: ref})
		}
	}
	return out, nil
}

// ParseGenericBlockDef parses "type Foo = Base<Args>" and its input counterpart.
func ParseGenericBlockDef(node *Node, file string) (out *GenericBlockDef, err error) {
	if err = expectKind(node, file, KindGenericTypeDef, KindGenericInputDef); err != nil {
		return nil, err
	}
	out = &GenericBlockDef{
		Kind:        BlockType,
		Description: parseDescription(node),
		Loc:         node.Loc.WithFile(file),
	}
	if node.Kind == KindGenericInputDef {
		out.Kind = BlockInput
	}
	if out.Name, err = parseName(node, file); err != nil {
		return nil, err
	}
	base := node.Child(KindNamedType)
	if base == nil {
		return nil, Errorf(out.Loc, "generic %s %s has no base", out.Kind, out.Name.Name)
	}
	if out.Base, err = ParseTypeRef(base, file); err != nil {
		return nil, err
	}
	if len(out.Base.GenericArgs) == 0 {
		return nil, Errorf(out.Base.Loc, "generic %s %s must pass type arguments to %s", out.Kind, out.Name.Name, out.Base.Name.Name)
	}
	if out.Directives, err = ParseDirectives(node, file); err != nil {
		return nil, err
	}
	return out, nil
}

func ParseScalar(node *Node, file string) (out *Scalar, err error) {
	if err = expectKind(node, file, KindScalarDef, KindScalarExt); err != nil {
		return nil, err
	}
	out = &Scalar{
		Description: parseDescription(node),
		Extension:   node.Kind == KindScalarExt,
		Loc:         node.Loc.WithFile(file),
	}
	if out.Name, err = parseName(node, file); err != nil {
		return nil, err
	}
	if out.Directives, err = ParseDirectives(node, file); err != nil {
		return nil, err
	}
	return out, nil
}

func ParseUnion(node *Node, file string) (out *Union, err error) {
	if err = expectKind(node, file, KindUnionDef, KindUnionExt); err != nil {
		return nil, err
	}
	out = &Union{
		Description: parseDescription(node),
		Members:     parseNames(node.Child(KindUnionMembers), file),
		Extension:   node.Kind == KindUnionExt,
		Loc:         node.Loc.WithFile(file),
	}
	if out.Name, err = parseName(node, file); err != nil {
		return nil, err
	}
	if out.Directives, err = ParseDirectives(node, file); err != nil {
		return nil, err
	}
	return out, nil
}

func ParseDirectiveDef(node *Node, file string) (out *DirectiveDef, err error) {
	if err = expectKind(node, file, KindDirectiveDef); err != nil {
		return nil, err
	}
	out = &DirectiveDef{
		Description: parseDescription(node),
		Repeatable:  node.Has(KindRepeatable),
		Locations:   parseNames(node.Child(KindDirectiveLocations), file),
		Loc:         node.Loc.WithFile(file),
	}
	if out.Name, err = parseName(node, file); err != nil {
		return nil, err
	}
	if len(out.Locations) == 0 {
		return nil, Errorf(out.Loc, "directive @%s declares no locations", out.Name.Name)
	}
	if out.Args, err = parseInputValues(node.Child(KindArgumentsDef), file); err != nil {
		return nil, err
	}
	return out, nil
}

func ParseSchema(node *Node, file string) (out *Schema, err error) {
	if err = expectKind(node, file, KindSchemaDef, KindSchemaExt); err != nil {
		return nil, err
	}
	out = &Schema{
		Description: parseDescription(node),
		Extension:   node.Kind == KindSchemaExt,
		Loc:         node.Loc.WithFile(file),
	}
	seen := map[string]bool{}
	for _, op := range node.ChildrenOf(KindOperationType) {
		names := parseNames(op, file)
		if len(names) != 2 {
			return nil, Errorf(op.Loc.WithFile(file), "operation type must be written as <operation>: <Type>")
		}
		switch names[0].Name {
		case "query", "mutation", "subscription":
		default:
			return nil, Errorf(names[0].Loc, "unknown root operation %q", names[0].Name)
		}
		if seen[names[0].Name] {
			return nil, Errorf(names[0].Loc, "root operation %s is bound more than once", names[0].Name)
		}
		seen[names[0].Name] = true
		out.Operations = append(out.Operations, &OperationType{Operation: names[0], Type: names[1]})
	}
	if out.Directives, err = ParseDirectives(node, file); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseImport reads an import statement. The file name is returned exactly as
// written, the caller decides on extensions and resolution.
func ParseImport(node *Node, file string) (*Import, error) {
	if err := expectKind(node, file, KindImport); err != nil {
		return nil, err
	}
	target := node.Child(KindStringValue)
	if target == nil || target.Text == "" {
		return nil, Errorf(node.Loc.WithFile(file), "import is missing a file name")
	}
	return &Import{FileName: target.Text, Loc: node.Loc.WithFile(file)}, nil
}
