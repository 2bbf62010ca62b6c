package executor

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	eventbus "github.com/quivergql/quiver/internal/eventbus"
	events "github.com/quivergql/quiver/internal/events"
	language "github.com/quivergql/quiver/internal/language"
	schema "github.com/quivergql/quiver/internal/schema"
)

// Executor walks validated documents against a schema. It is stateless and
// safe for concurrent use; per-request state lives in executionState.
type Executor struct {
	schema *schema.Schema
	sem    *semaphore.Weighted
}

// Option configures an Executor.
type Option func(*Executor)

// WithMaxConcurrency caps the number of resolver calls running at once.
// Zero means unbounded.
func WithMaxConcurrency(n int64) Option {
	return func(e *Executor) {
		if n > 0 {
			e.sem = semaphore.NewWeighted(n)
		}
	}
}

func NewExecutor(s *schema.Schema, opts ...Option) *Executor {
	e := &Executor{schema: s}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// executionState holds the per-request state shared by the resolver
// goroutines of one execution.
type executionState struct {
	schema         *schema.Schema
	document       *language.Document
	variableValues map[string]any
	ctx            context.Context
	errors         *errorCollector
	sem            *semaphore.Weighted
}

// ExecuteRequest executes one operation of the document and assembles the
// response. Request errors (unknown operation, bad variables) return a
// data-free result; field errors during execution produce a partial result.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.Document,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	operation, err := getOperation(document, operationName)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
	}
	if operation.Operation == language.Subscription {
		return &ExecutionResult{Errors: []GraphQLError{{Message: "subscription operations cannot be executed directly"}}}
	}

	coercedVariableValues, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
	}

	var rootType *schema.Type
	switch operation.Operation {
	case language.Mutation:
		rootType = e.schema.GetMutationType()
	default:
		rootType = e.schema.GetQueryType()
	}
	if rootType == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("schema does not support %s operations", operation.Operation)}}}
	}

	state := &executionState{
		schema:         e.schema,
		document:       document,
		variableValues: coercedVariableValues,
		ctx:            ctx,
		errors:         newErrorCollector(),
		sem:            e.sem,
	}

	// Mutation root fields run in order; everything else is concurrent.
	serial := operation.Operation == language.Mutation
	data, propagate := executeSelectionSet(state, rootType, operation.SelectionSet, initialValue, Path{}, serial)

	result := &ExecutionResult{Errors: state.errors.take(), HasData: true}
	if !propagate {
		result.Data = data
	}
	return result
}

// fieldSlot is the join point for one response key: filled by its resolver
// goroutine, read only after the group joins.
type fieldSlot struct {
	responseKey string
	fieldDef    *schema.Field
	fields      []*language.Field
	value       any
}

// executeSelectionSet resolves the fields that apply to objectType. Sibling
// fields run in their own goroutines unless serial is set; the result map is
// assembled in collection order after all of them join. The second return
// reports a non-null violation that must propagate to the parent.
func executeSelectionSet(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, objectValue any, path Path, serial bool) (*OrderedMap, bool) {
	groupedFields := collectFields(state, objectType, selectionSet)

	slots := make([]fieldSlot, 0, len(groupedFields.orderedFields()))
	for _, cf := range groupedFields.orderedFields() {
		fieldDef := getFieldDefinition(state, objectType, cf.Fields[0].Name)
		if fieldDef == nil {
			// Validation rejects unknown fields; reaching here means the
			// document was executed unvalidated.
			state.errors.add(GraphQLError{
				Message:   fmt.Sprintf("Cannot query field %q on type %q", cf.Fields[0].Name, objectType.Name),
				Locations: fieldLocations(cf.Fields),
				Path:      appendPath(path, cf.ResponseKey),
			})
			continue
		}
		slots = append(slots, fieldSlot{responseKey: cf.ResponseKey, fieldDef: fieldDef, fields: cf.Fields})
	}

	if serial {
		for i := range slots {
			slots[i].value, _ = resolveFieldGroup(state, objectType, objectValue, slots[i].fieldDef, slots[i].fields, appendPath(path, slots[i].responseKey))
		}
	} else {
		var wg sync.WaitGroup
		for i := range slots {
			wg.Add(1)
			go func(slot *fieldSlot) {
				defer wg.Done()
				slot.value, _ = resolveFieldGroup(state, objectType, objectValue, slot.fieldDef, slot.fields, appendPath(path, slot.responseKey))
			}(&slots[i])
		}
		wg.Wait()
	}

	result := NewOrderedMap()
	for i := range slots {
		if slots[i].fieldDef.Type.IsNonNull() && isNullish(slots[i].value) {
			// The violation error is already recorded at the deepest
			// offending position; null bubbles to the nearest nullable
			// ancestor.
			return nil, true
		}
		if isNullish(slots[i].value) {
			result.Set(slots[i].responseKey, nil)
		} else {
			result.Set(slots[i].responseKey, slots[i].value)
		}
	}
	return result, false
}

// resolveFieldGroup resolves and completes one response key. The bool
// reports whether a field error was recorded for this position.
func resolveFieldGroup(state *executionState, objectType *schema.Type, objectValue any, fieldDef *schema.Field, fields []*language.Field, path Path) (any, bool) {
	field := fields[0]

	if field.Name == "__typename" {
		return objectType.Name, false
	}

	argumentValues, err := coerceArgumentValues(state, fieldDef, field.Arguments)
	if err != nil {
		state.errors.add(GraphQLError{Message: err.Error(), Locations: fieldLocations(fields), Path: path})
		return nil, true
	}

	resolvedValue, err := state.resolve(objectType, fieldDef, objectValue, argumentValues, path)
	if err != nil {
		state.errors.add(GraphQLError{Message: err.Error(), Locations: fieldLocations(fields), Path: path})
		return nil, true
	}

	return completeValue(state, fieldDef.Type, fields, resolvedValue, path)
}

// resolve invokes the field's resolver under the concurrency cap, recovering
// panics into errors so one resolver cannot take down the request.
func (state *executionState) resolve(objectType *schema.Type, fieldDef *schema.Field, source any, args map[string]any, path Path) (value any, err error) {
	if state.ctx.Err() != nil {
		return nil, fmt.Errorf("execution aborted: %v", state.ctx.Err())
	}
	if fieldDef.Resolve == nil {
		return defaultResolve(source, fieldDef.Name)
	}

	if state.sem != nil {
		if acqErr := state.sem.Acquire(state.ctx, 1); acqErr != nil {
			return nil, fmt.Errorf("execution aborted: %v", acqErr)
		}
		defer state.sem.Release(1)
	}

	start := time.Now()
	eventbus.Publish(state.ctx, events.ResolveStart{ObjectType: objectType.Name, Field: fieldDef.Name, Path: pathToString(path)})
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("resolver for %s.%s panicked: %v", objectType.Name, fieldDef.Name, r)
		}
		eventbus.Publish(state.ctx, events.ResolveFinish{
			ObjectType: objectType.Name,
			Field:      fieldDef.Name,
			Path:       pathToString(path),
			Err:        err,
			Duration:   time.Since(start),
		})
	}()

	return fieldDef.Resolve(state.ctx, source, args)
}

// defaultResolve reads the field straight off the source value: a map key,
// or an exported struct field matched case-insensitively.
func defaultResolve(source any, fieldName string) (any, error) {
	if source == nil {
		return nil, nil
	}
	if m, ok := source.(map[string]any); ok {
		return m[fieldName], nil
	}

	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, nil
	}
	fv := rv.FieldByNameFunc(func(name string) bool {
		return strings.EqualFold(name, fieldName)
	})
	if !fv.IsValid() || !fv.CanInterface() {
		return nil, nil
	}
	return fv.Interface(), nil
}

// completeValue completes a resolved value against its declared type. The
// bool reports whether a field error was recorded at or below this position;
// a true return always carries a nil value.
func completeValue(state *executionState, fieldType *schema.TypeRef, fields []*language.Field, result any, path Path) (any, bool) {
	if fieldType.IsNonNull() {
		if isNullish(result) {
			state.errors.add(GraphQLError{
				Message:   fmt.Sprintf("Cannot return null for non-nullable field %s", pathToString(path)),
				Locations: fieldLocations(fields),
				Path:      path,
			})
			return nil, true
		}
		completed, errored := completeValue(state, fieldType.Unwrap(), fields, result, path)
		if errored {
			return nil, true
		}
		if isNullish(completed) {
			// Inner completion nulled out without recording; surface the
			// violation here.
			state.errors.add(GraphQLError{
				Message:   fmt.Sprintf("Cannot return null for non-nullable field %s", pathToString(path)),
				Locations: fieldLocations(fields),
				Path:      path,
			})
			return nil, true
		}
		return completed, false
	}

	if isNullish(result) {
		return nil, false
	}

	if fieldType.IsList() {
		return completeListValue(state, fieldType, fields, result, path)
	}

	namedType := fieldType.GetNamedType()
	typeObj := state.schema.Types[namedType]
	if typeObj == nil {
		state.errors.add(GraphQLError{Message: fmt.Sprintf("Unknown type: %s", namedType), Path: path})
		return nil, true
	}

	switch typeObj.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		return completeLeafValue(state, typeObj, fields, result, path)
	case schema.TypeKindObject:
		return completeObjectValue(state, typeObj, fields, result, path)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return completeAbstractValue(state, typeObj, fields, result, path)
	default:
		state.errors.add(GraphQLError{Message: fmt.Sprintf("Cannot complete value of unexpected type kind: %s", typeObj.Kind), Path: path})
		return nil, true
	}
}

// completeListValue completes each element concurrently. A null element
// under a non-null element type nulls the whole list.
func completeListValue(state *executionState, listType *schema.TypeRef, fields []*language.Field, result any, path Path) (any, bool) {
	items, ok := asSlice(result)
	if !ok {
		state.errors.add(GraphQLError{Message: fmt.Sprintf("Expected a list value, got %T", result), Locations: fieldLocations(fields), Path: path})
		return nil, true
	}

	inner := listType.Unwrap()
	completed := make([]any, len(items))
	errored := make([]bool, len(items))

	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			completed[i], errored[i] = completeValue(state, inner, fields, items[i], appendPath(path, i))
		}(i)
	}
	wg.Wait()

	innerNonNull := inner.IsNonNull()
	for i := range completed {
		if errored[i] && innerNonNull {
			return nil, true
		}
		if isNullish(completed[i]) {
			completed[i] = nil
		}
	}
	return completed, false
}

func completeLeafValue(state *executionState, typeObj *schema.Type, fields []*language.Field, result any, path Path) (any, bool) {
	switch typeObj.Kind {
	case schema.TypeKindEnum:
		str, ok := result.(string)
		if !ok || !typeObj.HasEnumValue(str) {
			state.errors.add(GraphQLError{
				Message:   fmt.Sprintf("Enum %s cannot represent value: %v", typeObj.Name, result),
				Locations: fieldLocations(fields),
				Path:      path,
			})
			return nil, true
		}
		return str, false
	default:
		if typeObj.Serialize == nil {
			return result, false
		}
		serialized, err := typeObj.Serialize(result)
		if err != nil {
			state.errors.add(GraphQLError{Message: err.Error(), Locations: fieldLocations(fields), Path: path})
			return nil, true
		}
		return serialized, false
	}
}

func completeObjectValue(state *executionState, objectType *schema.Type, fields []*language.Field, result any, path Path) (any, bool) {
	sub := mergeSelectionSets(fields)
	om, propagate := executeSelectionSet(state, objectType, sub, result, path, false)
	if propagate {
		return nil, true
	}
	return om, false
}

// completeAbstractValue resolves the concrete object type behind an
// interface or union value, then completes it as an object.
func completeAbstractValue(state *executionState, abstractType *schema.Type, fields []*language.Field, result any, path Path) (any, bool) {
	typeName, err := resolveConcreteType(state, abstractType, result)
	if err != nil {
		state.errors.add(GraphQLError{Message: err.Error(), Locations: fieldLocations(fields), Path: path})
		return nil, true
	}
	objectType := state.schema.Types[typeName]
	if objectType == nil || objectType.Kind != schema.TypeKindObject {
		state.errors.add(GraphQLError{
			Message:   fmt.Sprintf("Abstract type %s must resolve to an object type at runtime, got %q", abstractType.Name, typeName),
			Locations: fieldLocations(fields),
			Path:      path,
		})
		return nil, true
	}
	if !state.schema.IsPossibleType(abstractType.Name, typeName) {
		state.errors.add(GraphQLError{
			Message:   fmt.Sprintf("Runtime type %q is not a possible type for %q", typeName, abstractType.Name),
			Locations: fieldLocations(fields),
			Path:      path,
		})
		return nil, true
	}
	return completeObjectValue(state, objectType, fields, result, path)
}

func resolveConcreteType(state *executionState, abstractType *schema.Type, value any) (string, error) {
	if abstractType.ResolveType != nil {
		return abstractType.ResolveType(state.ctx, value)
	}
	// Conventional fallbacks: a __typename entry on map values, or a lone
	// possible type.
	if m, ok := value.(map[string]any); ok {
		if tn, ok := m["__typename"].(string); ok {
			return tn, nil
		}
	}
	if possible := state.schema.PossibleTypes(abstractType.Name); len(possible) == 1 {
		return possible[0], nil
	}
	return "", fmt.Errorf("abstract type %s has no type resolver", abstractType.Name)
}

// getOperation selects the operation to execute. An empty name is allowed
// only when the document holds exactly one operation.
func getOperation(document *language.Document, operationName string) (*language.OperationDefinition, error) {
	if operationName == "" {
		if len(document.Operations) == 1 {
			return document.Operations[0], nil
		}
		return nil, fmt.Errorf("operation name is required when the document defines multiple operations")
	}
	if op := document.Operations.ForName(operationName); op != nil {
		return op, nil
	}
	return nil, fmt.Errorf("operation %q is not defined in the document", operationName)
}

func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	if len(fields) == 1 {
		return fields[0].SelectionSet
	}
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

func fieldLocations(fields []*language.Field) []language.Location {
	locs := make([]language.Location, 0, len(fields))
	for _, f := range fields {
		locs = append(locs, language.Location{Line: f.Position.Line, Column: f.Position.Column})
	}
	return locs
}

func pathToString(path Path) string {
	var b strings.Builder
	for i, elem := range path {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		case int:
			fmt.Fprintf(&b, "[%d]", v)
		}
	}
	return b.String()
}

func asSlice(v any) ([]any, bool) {
	if direct, ok := v.([]any); ok {
		return direct, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// isNullish is true for nil interfaces and typed nils.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
