package export

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComputedFunc derives a named snapshot field as a pure function of the
// entity. The entity is always passed as a pointer to the concrete type.
type ComputedFunc func(entity any) any

// Descriptor describes how one entity type is flattened into a snapshot:
// which struct fields are associations to recurse into, which fields are
// excluded entirely, and which extra fields are computed.
//
// Every exported field that is neither a relation nor omitted is emitted as
// a scalar under its snake_case name.
type Descriptor struct {
	Relations []string
	Omit      []string
	Computed  map[string]ComputedFunc
}

type compiledDescriptor struct {
	relations map[string]bool
	omit      map[string]bool
	computed  map[string]ComputedFunc
}

// Extractor walks entity graphs into serializable snapshots using a static
// per-type descriptor table. The table is immutable after construction;
// association values dispatch on their concrete runtime type, so polymorphic
// relations resolve to the descriptor of whatever variant they hold.
type Extractor struct {
	descriptors map[reflect.Type]compiledDescriptor
}

// NewExtractor builds an extractor from a prototype-to-descriptor table.
// Prototypes are passed as *T; a plain T also works for types whose fields
// are all comparable (map keys must be hashable).
func NewExtractor(table map[any]Descriptor) *Extractor {
	e := &Extractor{descriptors: make(map[reflect.Type]compiledDescriptor, len(table))}
	for proto, d := range table {
		t := reflect.TypeOf(proto)
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		e.descriptors[t] = compile(d)
	}
	return e
}

func compile(d Descriptor) compiledDescriptor {
	cd := compiledDescriptor{
		relations: make(map[string]bool, len(d.Relations)),
		omit:      make(map[string]bool, len(d.Omit)),
		computed:  d.Computed,
	}
	for _, r := range d.Relations {
		cd.relations[r] = true
	}
	for _, o := range d.Omit {
		cd.omit[o] = true
	}
	return cd
}

// Walk flattens one entity into a field-name-to-value mapping per its
// descriptor. Returns nil for nil entities and for types without a
// descriptor; no generic recursion is defined for the latter, callers embed
// such values raw.
func (e *Extractor) Walk(entity any) map[string]any {
	v := reflect.ValueOf(entity)
	if !v.IsValid() {
		return nil
	}
	if v.Kind() != reflect.Ptr {
		pv := reflect.New(v.Type())
		pv.Elem().Set(v)
		v = pv
	}
	if v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil
	}
	d, ok := e.descriptors[v.Elem().Type()]
	if !ok {
		return nil
	}

	out := make(map[string]any)
	e.walkFields(v.Elem(), d, out)
	for name, fn := range d.computed {
		out[name] = fn(v.Interface())
	}
	return out
}

func (e *Extractor) walkFields(v reflect.Value, d compiledDescriptor, out map[string]any) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || d.omit[f.Name] {
			continue
		}
		fv := v.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			// embedded base entity fields surface at the top level
			e.walkFields(fv, d, out)
			continue
		}
		name := snakeCase(f.Name)
		if d.relations[f.Name] {
			out[name] = e.walkRelation(fv)
			continue
		}
		out[name] = scalarValue(fv)
	}
}

// walkRelation resolves a to-one, to-many or polymorphic association.
// Missing relations serialize to nil or an empty list, never an error.
func (e *Extractor) walkRelation(fv reflect.Value) any {
	switch fv.Kind() {
	case reflect.Slice:
		items := make([]any, 0, fv.Len())
		for i := 0; i < fv.Len(); i++ {
			items = append(items, e.relationValue(fv.Index(i).Interface()))
		}
		return items
	case reflect.Ptr, reflect.Interface:
		if fv.IsNil() {
			return nil
		}
		return e.relationValue(fv.Interface())
	case reflect.Struct:
		return e.relationValue(fv.Interface())
	default:
		return scalarValue(fv)
	}
}

// relationValue dispatches on the concrete runtime type of a related entity;
// values without a descriptor are embedded raw.
func (e *Extractor) relationValue(entity any) any {
	if snap := e.Walk(entity); snap != nil {
		return snap
	}
	return entity
}

func scalarValue(fv reflect.Value) any {
	switch val := fv.Interface().(type) {
	case decimal.Decimal:
		return val.String()
	case *decimal.Decimal:
		if val == nil {
			return nil
		}
		return val.String()
	case uuid.UUID:
		return val.String()
	case *uuid.UUID:
		if val == nil {
			return nil
		}
		return val.String()
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.UTC().Format(time.RFC3339)
	}
	if fv.Kind() == reflect.String {
		return fv.String()
	}
	return fv.Interface()
}

// snakeCase converts an exported Go field name to its snake_case snapshot
// key, keeping acronym runs together (SKU -> sku, CCBrand -> cc_brand).
func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			prevLower := i > 0 && runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			prevUpper := i > 0 && runes[i-1] >= 'A' && runes[i-1] <= 'Z'
			if prevLower || (prevUpper && nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// safeSnapshot walks one entity, converting a panic anywhere in the walk
// into an error record carrying the entity identifier. A single bad record
// never aborts a batch export.
func (e *Extractor) safeSnapshot(entity any, number string) (snap map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			snap = map[string]any{
				"error":  fmt.Sprint(r),
				"trace":  string(debug.Stack()),
				"number": number,
			}
		}
	}()
	return e.Walk(entity)
}
