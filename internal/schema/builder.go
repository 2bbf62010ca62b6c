package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// ScalarConfig carries the host-supplied capabilities of a custom scalar.
type ScalarConfig struct {
	Serialize    SerializeFunc
	ParseValue   ParseValueFunc
	ParseLiteral ParseLiteralFunc
}

// Option customizes a schema built from SDL.
type Option func(*buildOptions)

type buildOptions struct {
	resolvers     map[string]ResolveFunc
	typeResolvers map[string]TypeResolverFunc
	scalars       map[string]ScalarConfig
}

// WithResolver binds a resolver capability to "Type.field".
func WithResolver(coordinate string, fn ResolveFunc) Option {
	return func(o *buildOptions) { o.resolvers[coordinate] = fn }
}

// WithTypeResolver binds the concrete-type resolution capability to an
// interface or union type.
func WithTypeResolver(typeName string, fn TypeResolverFunc) Option {
	return func(o *buildOptions) { o.typeResolvers[typeName] = fn }
}

// WithScalar binds serialize/parse capabilities to a custom scalar declared
// in the SDL.
func WithScalar(name string, cfg ScalarConfig) Option {
	return func(o *buildOptions) { o.scalars[name] = cfg }
}

// Build constructs an executable schema from SDL. Schema definitions are an
// external surface, so the SDL is parsed with the ecosystem parser; the
// resulting definitions are converted into this package's type arena and the
// host capabilities from opts are attached. All construction problems are
// accumulated and reported together.
func Build(sdl string, opts ...Option) (*Schema, error) {
	bo := &buildOptions{
		resolvers:     make(map[string]ResolveFunc),
		typeResolvers: make(map[string]TypeResolverFunc),
		scalars:       make(map[string]ScalarConfig),
	}
	for _, opt := range opts {
		opt(bo)
	}

	doc, err := parser.ParseSchema(&ast.Source{Name: "schema.graphql", Input: sdl})
	if err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}

	s := NewSchema("")
	s.SetQueryType("Query")

	for _, sd := range doc.Schema {
		s.Description = sd.Description
		for _, opType := range sd.OperationTypes {
			switch opType.Operation {
			case ast.Query:
				s.SetQueryType(opType.Type)
			case ast.Mutation:
				s.SetMutationType(opType.Type)
			case ast.Subscription:
				s.SetSubscriptionType(opType.Type)
			}
		}
	}
	if s.MutationType == "" {
		if _, ok := lookupDefinition(doc, "Mutation"); ok {
			s.SetMutationType("Mutation")
		}
	}

	var errs *multierror.Error
	for _, def := range doc.Definitions {
		t, err := buildDefinition(def, bo)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		s.AddType(t)
	}
	for _, def := range doc.Directives {
		s.AddDirective(buildDirectiveDefinition(def))
	}

	linkPossibleTypes(s)

	for coordinate := range bo.resolvers {
		if err := checkResolverCoordinate(s, coordinate); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	if err := Validate(s); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return s, nil
}

func lookupDefinition(doc *ast.SchemaDocument, name string) (*ast.Definition, bool) {
	for _, def := range doc.Definitions {
		if def.Name == name {
			return def, true
		}
	}
	return nil, false
}

func buildDefinition(def *ast.Definition, bo *buildOptions) (*Type, error) {
	switch def.Kind {
	case ast.Object:
		return buildObject(def, bo), nil
	case ast.Interface:
		return buildInterface(def, bo), nil
	case ast.Union:
		return buildUnion(def, bo), nil
	case ast.Enum:
		return buildEnum(def), nil
	case ast.InputObject:
		return buildInput(def), nil
	case ast.Scalar:
		return buildScalar(def, bo)
	default:
		return nil, fmt.Errorf("unsupported definition kind %s for type %q", def.Kind, def.Name)
	}
}

func buildObject(def *ast.Definition, bo *buildOptions) *Type {
	t := NewType(def.Name, TypeKindObject, def.Description)
	for _, iface := range def.Interfaces {
		t.AddInterface(iface)
	}
	for _, fd := range def.Fields {
		t.AddField(buildField(def.Name, fd, bo))
	}
	return t
}

func buildInterface(def *ast.Definition, bo *buildOptions) *Type {
	t := NewType(def.Name, TypeKindInterface, def.Description)
	for _, iface := range def.Interfaces {
		t.AddInterface(iface)
	}
	for _, fd := range def.Fields {
		t.AddField(buildField(def.Name, fd, bo))
	}
	t.ResolveType = bo.typeResolvers[def.Name]
	return t
}

func buildUnion(def *ast.Definition, bo *buildOptions) *Type {
	t := NewType(def.Name, TypeKindUnion, def.Description)
	for _, member := range def.Types {
		t.AddPossibleType(member)
	}
	t.ResolveType = bo.typeResolvers[def.Name]
	return t
}

func buildEnum(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindEnum, def.Description)
	for _, v := range def.EnumValues {
		ev := &EnumValue{Name: v.Name, Description: v.Description}
		applyDeprecation(v.Directives, &ev.IsDeprecated, &ev.DeprecationReason)
		t.AddEnumValue(ev)
	}
	return t
}

func buildInput(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindInputObject, def.Description)
	t.OneOf = def.Directives.ForName("oneOf") != nil
	for _, fd := range def.Fields {
		iv := &InputValue{
			Name:        fd.Name,
			Description: fd.Description,
			Type:        typeRefFromAST(fd.Type),
		}
		if fd.DefaultValue != nil {
			iv.DefaultValue = astValueToGo(fd.DefaultValue)
			iv.HasDefault = true
		}
		applyDeprecation(fd.Directives, &iv.IsDeprecated, &iv.DeprecationReason)
		t.AddInputField(iv)
	}
	return t
}

func buildScalar(def *ast.Definition, bo *buildOptions) (*Type, error) {
	t := NewType(def.Name, TypeKindScalar, def.Description)
	if d := def.Directives.ForName("specifiedBy"); d != nil {
		if arg := d.Arguments.ForName("url"); arg != nil {
			url := arg.Value.Raw
			t.SpecifiedByURL = &url
		}
	}
	cfg, ok := bo.scalars[def.Name]
	if !ok {
		return nil, fmt.Errorf("scalar %q declared in SDL without serialize/parse capabilities; bind them with WithScalar", def.Name)
	}
	t.Serialize = cfg.Serialize
	t.ParseValue = cfg.ParseValue
	t.ParseLiteral = cfg.ParseLiteral
	return t, nil
}

func buildField(typeName string, fd *ast.FieldDefinition, bo *buildOptions) *Field {
	f := &Field{
		Name:        fd.Name,
		Description: fd.Description,
		Type:        typeRefFromAST(fd.Type),
		Resolve:     bo.resolvers[typeName+"."+fd.Name],
	}
	for _, ad := range fd.Arguments {
		iv := &InputValue{
			Name:        ad.Name,
			Description: ad.Description,
			Type:        typeRefFromAST(ad.Type),
		}
		if ad.DefaultValue != nil {
			iv.DefaultValue = astValueToGo(ad.DefaultValue)
			iv.HasDefault = true
		}
		f.Arguments = append(f.Arguments, iv)
	}
	applyDeprecation(fd.Directives, &f.IsDeprecated, &f.DeprecationReason)
	return f
}

func buildDirectiveDefinition(def *ast.DirectiveDefinition) *Directive {
	d := &Directive{
		Name:         def.Name,
		Description:  def.Description,
		IsRepeatable: def.IsRepeatable,
	}
	for _, loc := range def.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, ad := range def.Arguments {
		iv := &InputValue{
			Name:        ad.Name,
			Description: ad.Description,
			Type:        typeRefFromAST(ad.Type),
		}
		if ad.DefaultValue != nil {
			iv.DefaultValue = astValueToGo(ad.DefaultValue)
			iv.HasDefault = true
		}
		d.Arguments = append(d.Arguments, iv)
	}
	return d
}

func applyDeprecation(directives ast.DirectiveList, deprecated *bool, reason *string) {
	d := directives.ForName("deprecated")
	if d == nil {
		return
	}
	*deprecated = true
	*reason = "No longer supported"
	if arg := d.Arguments.ForName("reason"); arg != nil {
		*reason = arg.Value.Raw
	}
}

// linkPossibleTypes records, on each interface, the objects that implement
// it, including through transitive interface inheritance.
func linkPossibleTypes(s *Schema) {
	for _, t := range s.Types {
		if t.Kind != TypeKindObject {
			continue
		}
		seen := map[string]bool{}
		var visit func(names []string)
		visit = func(names []string) {
			for _, name := range names {
				if seen[name] {
					continue
				}
				seen[name] = true
				iface := s.Types[name]
				if iface == nil || iface.Kind != TypeKindInterface {
					continue
				}
				iface.PossibleTypes = append(iface.PossibleTypes, t.Name)
				visit(iface.Interfaces)
			}
		}
		visit(t.Interfaces)
	}
}

func checkResolverCoordinate(s *Schema, coordinate string) error {
	typeName, fieldName, ok := strings.Cut(coordinate, ".")
	if !ok {
		return fmt.Errorf("resolver coordinate %q must have the form Type.field", coordinate)
	}
	t := s.Types[typeName]
	if t == nil {
		return fmt.Errorf("resolver bound to unknown type %q", typeName)
	}
	if t.Field(fieldName) == nil {
		return fmt.Errorf("resolver bound to unknown field %q on type %q", fieldName, typeName)
	}
	return nil
}

func typeRefFromAST(t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return NonNullType(typeRefFromAST(&ast.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	return ListType(typeRefFromAST(t.Elem))
}

func astValueToGo(value *ast.Value) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case ast.IntValue:
		n, _ := strconv.Atoi(value.Raw)
		return n
	case ast.FloatValue:
		f, _ := strconv.ParseFloat(value.Raw, 64)
		return f
	case ast.StringValue, ast.BlockValue, ast.EnumValue:
		return value.Raw
	case ast.BooleanValue:
		return value.Raw == "true"
	case ast.NullValue:
		return nil
	case ast.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = astValueToGo(c.Value)
		}
		return out
	case ast.ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, c := range value.Children {
			m[c.Name] = astValueToGo(c.Value)
		}
		return m
	default:
		return nil
	}
}

// Validate checks the schema invariants: a query root must exist, every type
// reference must resolve within the arena, NonNull must not wrap NonNull,
// and composite/member relationships must be well formed. All violations are
// reported together.
func Validate(s *Schema) error {
	var errs *multierror.Error

	if s.QueryType == "" {
		errs = multierror.Append(errs, fmt.Errorf("schema must declare a query root type"))
	} else if q := s.GetQueryType(); q == nil {
		errs = multierror.Append(errs, fmt.Errorf("query root type %q is not defined", s.QueryType))
	} else if q.Kind != TypeKindObject {
		errs = multierror.Append(errs, fmt.Errorf("query root type %q must be an object type", s.QueryType))
	}
	if s.MutationType != "" {
		if m := s.GetMutationType(); m == nil {
			errs = multierror.Append(errs, fmt.Errorf("mutation root type %q is not defined", s.MutationType))
		} else if m.Kind != TypeKindObject {
			errs = multierror.Append(errs, fmt.Errorf("mutation root type %q must be an object type", s.MutationType))
		}
	}

	for _, t := range s.Types {
		switch t.Kind {
		case TypeKindObject, TypeKindInterface:
			if len(t.Fields) == 0 {
				errs = multierror.Append(errs, fmt.Errorf("type %q must define at least one field", t.Name))
			}
			for _, f := range t.Fields {
				if err := checkTypeRef(s, f.Type, fmt.Sprintf("%s.%s", t.Name, f.Name)); err != nil {
					errs = multierror.Append(errs, err)
				}
				for _, a := range f.Arguments {
					at := fmt.Sprintf("%s.%s(%s:)", t.Name, f.Name, a.Name)
					if err := checkTypeRef(s, a.Type, at); err != nil {
						errs = multierror.Append(errs, err)
					} else if named := s.Types[a.Type.GetNamedType()]; named != nil && !named.IsInput() {
						errs = multierror.Append(errs, fmt.Errorf("%s must be an input type, got %s", at, named.Kind))
					}
				}
			}
			for _, iface := range t.Interfaces {
				it := s.Types[iface]
				if it == nil || it.Kind != TypeKindInterface {
					errs = multierror.Append(errs, fmt.Errorf("type %q implements unknown interface %q", t.Name, iface))
				}
			}
		case TypeKindUnion:
			if len(t.PossibleTypes) == 0 {
				errs = multierror.Append(errs, fmt.Errorf("union %q must have at least one member", t.Name))
			}
			for _, member := range t.PossibleTypes {
				mt := s.Types[member]
				if mt == nil || mt.Kind != TypeKindObject {
					errs = multierror.Append(errs, fmt.Errorf("union %q member %q must be a defined object type", t.Name, member))
				}
			}
		case TypeKindEnum:
			if len(t.EnumValues) == 0 {
				errs = multierror.Append(errs, fmt.Errorf("enum %q must define at least one value", t.Name))
			}
		case TypeKindInputObject:
			for _, f := range t.InputFields {
				if err := checkTypeRef(s, f.Type, fmt.Sprintf("%s.%s", t.Name, f.Name)); err != nil {
					errs = multierror.Append(errs, err)
				}
			}
		}
	}

	return errs.ErrorOrNil()
}

func checkTypeRef(s *Schema, ref *TypeRef, at string) error {
	if ref == nil {
		return fmt.Errorf("%s has no type", at)
	}
	for cur := ref; cur != nil; cur = cur.OfType {
		if cur.Kind == TypeRefKindNonNull && cur.OfType != nil && cur.OfType.Kind == TypeRefKindNonNull {
			return fmt.Errorf("%s: NonNull cannot wrap NonNull", at)
		}
		if cur.Kind == TypeRefKindNamed {
			if s.Types[cur.Named] == nil {
				return fmt.Errorf("%s references undefined type %q", at, cur.Named)
			}
		}
	}
	return nil
}
