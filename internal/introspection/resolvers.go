package introspection

import (
	"context"
	"fmt"
	"sort"

	schema "github.com/quivergql/quiver/internal/schema"
)

// The introspection object types resolve against schema model values. Each
// adapter narrows the untyped source to the expected model type; a mismatch
// means the executor handed us something the meta schema does not produce.

func onSchema(fn func(*schema.Schema, map[string]any) any) schema.ResolveFunc {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		s, ok := source.(*schema.Schema)
		if !ok {
			return nil, fmt.Errorf("introspection: expected *schema.Schema source, got %T", source)
		}
		return fn(s, args), nil
	}
}

// onType handles the dual sourcing of __Type values: named type definitions
// resolve through onNamed, List and NonNull wrappers through onRef. A named
// TypeRef is transparent and delegates to its definition.
func onType(src *schema.Schema, onNamed func(*schema.Type, map[string]any) any, onRef func(*schema.TypeRef, map[string]any) any) schema.ResolveFunc {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		switch v := source.(type) {
		case *schema.Type:
			return onNamed(v, args), nil
		case *schema.TypeRef:
			if v.Kind == schema.TypeRefKindNamed {
				def := src.Types[v.Named]
				if def == nil {
					return nil, fmt.Errorf("introspection: unknown type %q", v.Named)
				}
				return onNamed(def, args), nil
			}
			return onRef(v, args), nil
		default:
			return nil, fmt.Errorf("introspection: expected type source, got %T", source)
		}
	}
}

func onField(fn func(*schema.Field, map[string]any) any) schema.ResolveFunc {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		f, ok := source.(*schema.Field)
		if !ok {
			return nil, fmt.Errorf("introspection: expected *schema.Field source, got %T", source)
		}
		return fn(f, args), nil
	}
}

func onInputValue(fn func(*schema.InputValue) any) schema.ResolveFunc {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		v, ok := source.(*schema.InputValue)
		if !ok {
			return nil, fmt.Errorf("introspection: expected *schema.InputValue source, got %T", source)
		}
		return fn(v), nil
	}
}

func onEnumValue(fn func(*schema.EnumValue) any) schema.ResolveFunc {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		v, ok := source.(*schema.EnumValue)
		if !ok {
			return nil, fmt.Errorf("introspection: expected *schema.EnumValue source, got %T", source)
		}
		return fn(v), nil
	}
}

func onDirective(fn func(*schema.Directive, map[string]any) any) schema.ResolveFunc {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		d, ok := source.(*schema.Directive)
		if !ok {
			return nil, fmt.Errorf("introspection: expected *schema.Directive source, got %T", source)
		}
		return fn(d, args), nil
	}
}

func resolverWithSchema(src *schema.Schema, fn func(*schema.Schema, *schema.Type, map[string]any) any) func(*schema.Type, map[string]any) any {
	return func(t *schema.Type, args map[string]any) any {
		return fn(src, t, args)
	}
}

// wrapperNil is the onRef behavior for fields that only named types carry.
func wrapperNil(tr *schema.TypeRef, args map[string]any) any { return nil }

func resolveRefKind(tr *schema.TypeRef, args map[string]any) any {
	// TypeRefKind values for wrappers coincide with __TypeKind members.
	return string(tr.Kind)
}

func resolveRefOfType(tr *schema.TypeRef, args map[string]any) any {
	return tr.OfType
}

func sortedTypes(s *schema.Schema) []*schema.Type {
	out := make([]*schema.Type, 0, len(s.Types))
	for _, t := range s.Types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedDirectives(s *schema.Schema) []*schema.Directive {
	out := make([]*schema.Directive, 0, len(s.Directives))
	for _, d := range s.Directives {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedLocations(d *schema.Directive) []string {
	locs := make([]string, len(d.Locations))
	copy(locs, d.Locations)
	sort.Strings(locs)
	return locs
}

func resolveTypeFields(t *schema.Type, args map[string]any) any {
	if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
		return nil
	}
	includeDeprecated := boolArg(args, "includeDeprecated")
	out := make([]*schema.Field, 0, len(t.Fields))
	for _, f := range t.Fields {
		if !includeDeprecated && f.IsDeprecated {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func resolveTypeInterfaces(src *schema.Schema, t *schema.Type, args map[string]any) any {
	if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
		return nil
	}
	out := make([]*schema.Type, 0, len(t.Interfaces))
	for _, name := range t.Interfaces {
		if def := src.Types[name]; def != nil {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func resolveTypePossibleTypes(src *schema.Schema, t *schema.Type, args map[string]any) any {
	if t.Kind != schema.TypeKindInterface && t.Kind != schema.TypeKindUnion {
		return nil
	}
	out := make([]*schema.Type, 0, len(t.PossibleTypes))
	for _, name := range src.PossibleTypes(t.Name) {
		if def := src.Types[name]; def != nil {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func resolveTypeEnumValues(t *schema.Type, args map[string]any) any {
	if t.Kind != schema.TypeKindEnum {
		return nil
	}
	includeDeprecated := boolArg(args, "includeDeprecated")
	out := make([]*schema.EnumValue, 0, len(t.EnumValues))
	for _, ev := range t.EnumValues {
		if !includeDeprecated && ev.IsDeprecated {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func resolveTypeInputFields(t *schema.Type, args map[string]any) any {
	if t.Kind != schema.TypeKindInputObject {
		return nil
	}
	includeDeprecated := boolArg(args, "includeDeprecated")
	out := make([]*schema.InputValue, 0, len(t.InputFields))
	for _, iv := range t.InputFields {
		if !includeDeprecated && iv.IsDeprecated {
			continue
		}
		out = append(out, iv)
	}
	return out
}

func filterInputValues(values []*schema.InputValue, args map[string]any) []*schema.InputValue {
	includeDeprecated := boolArg(args, "includeDeprecated")
	out := make([]*schema.InputValue, 0, len(values))
	for _, v := range values {
		if !includeDeprecated && v.IsDeprecated {
			continue
		}
		out = append(out, v)
	}
	return out
}

func deprecationReason(deprecated bool, reason string) any {
	if !deprecated {
		return nil
	}
	if reason == "" {
		return "No longer supported"
	}
	return reason
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func orNilType(t *schema.Type) any {
	if t == nil {
		return nil
	}
	return t
}

func boolArg(args map[string]any, name string) bool {
	if args == nil {
		return false
	}
	b, _ := args[name].(bool)
	return b
}
