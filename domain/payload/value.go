// Package payload classifies endpoint output and flattens it into
// properties that sit beside a resource's link table.
//
// An endpoint's raw output is wrapped once, when it is produced, into a
// Value whose Kind is one of Sequence, Mapping, Scalar or Opaque. Flatten
// then performs a closed switch on that kind.
package payload

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/artpar/actuate/pkg/hal"
)

// Kind is the shape of a payload.
type Kind int

const (
	// Scalar is a single primitive value (string, number, bool, nil).
	Scalar Kind = iota
	// Sequence is an ordered collection (slice or array).
	Sequence
	// Mapping is a string-keyed mapping.
	Mapping
	// Opaque is any other structured value (structs, pointers to structs,
	// maps with non-string keys).
	Opaque
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	case Opaque:
		return "opaque"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Map is a key-ordered mapping. Endpoints that care about the order of
// their fields return a Map; plain Go maps are ordered by key.
type Map struct {
	hal.Properties
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{Properties: hal.NewProperties(8)}
}

// Put sets key to value and returns the map for chaining.
func (m *Map) Put(key string, value any) *Map {
	m.Set(key, value)
	return m
}

// Value is a classified endpoint payload. The zero Value is a nil Scalar.
type Value struct {
	kind Kind
	raw  any
	m    *Map
}

// Kind returns the payload's shape.
func (v Value) Kind() Kind {
	return v.kind
}

// Raw returns the payload exactly as the endpoint produced it.
func (v Value) Raw() any {
	if v.kind == Mapping && v.raw == nil {
		return v.m
	}
	return v.raw
}

// Entries returns the mapping entries of a Mapping payload, nil otherwise.
func (v Value) Entries() *Map {
	return v.m
}

// OfScalar wraps a primitive value.
func OfScalar(x any) Value {
	return Value{kind: Scalar, raw: x}
}

// OfSequence wraps an ordered collection.
func OfSequence(items []any) Value {
	if items == nil {
		items = []any{}
	}
	return Value{kind: Sequence, raw: items}
}

// OfMapping wraps an ordered mapping.
func OfMapping(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: Mapping, raw: m, m: m}
}

// OfObject wraps a structured value to be converted reflectively.
func OfObject(x any) Value {
	return Value{kind: Opaque, raw: x}
}

// Of classifies an arbitrary Go value.
//
//   - Value is returned as is
//   - *Map and Map are Mappings
//   - slices and arrays (except []byte) are Sequences
//   - maps with string keys are Mappings ordered by key
//   - structs, pointers to structs and maps with other keys are Opaque
//   - everything else, including nil, is a Scalar
func Of(x any) Value {
	switch t := x.(type) {
	case nil:
		return OfScalar(nil)
	case Value:
		return t
	case *Map:
		return OfMapping(t)
	case Map:
		return OfMapping(&t)
	case []byte:
		return OfScalar(t)
	case map[string]any:
		return Value{kind: Mapping, raw: t, m: sortedMap(reflect.ValueOf(t))}
	}

	rv := reflect.ValueOf(x)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return OfScalar(x)
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return Value{kind: Sequence, raw: x}
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return Value{kind: Mapping, raw: x, m: sortedMap(rv)}
		}
		return OfObject(x)
	case reflect.Struct:
		return OfObject(x)
	default:
		return OfScalar(x)
	}
}

func sortedMap(rv reflect.Value) *Map {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	m := &Map{Properties: hal.NewProperties(len(keys))}
	for _, k := range keys {
		m.Set(k.String(), rv.MapIndex(k).Interface())
	}
	return m
}
