package monitor

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
)

const maxDepth = 64

// SerializationError reports a value with no path to JSON.
type SerializationError struct {
	Type string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("monitor: cannot serialize value of type %s", e.Type)
}

// Mapper is implemented by structured payloads with a canonical map form.
type Mapper interface {
	ToMap() map[string]any
}

// Serialize converts v into plain JSON values (maps, slices, strings,
// float64s, bools, nil). Map entries and slice elements that cannot be
// serialized are dropped. Only a top-level value with no JSON form fails.
func Serialize(v any) (any, error) {
	filtered, err := serialize(reflect.ValueOf(v), 0, visited{})
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(filtered)
	if err != nil {
		return nil, &SerializationError{Type: fmt.Sprintf("%T", v)}
	}

	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}

	return out, nil
}

var (
	mapperType    = reflect.TypeFor[Mapper]()
	marshalerType = reflect.TypeFor[json.Marshaler]()
)

// visited holds the references on the current path. A reference met again
// below itself is a cycle.
type visited map[reference]struct{}

type reference struct {
	ptr uintptr
	typ reflect.Type
}

func serialize(rv reflect.Value, depth int, seen visited) (any, error) {
	if !rv.IsValid() {
		return nil, nil
	}

	if depth > maxDepth {
		return nil, &SerializationError{Type: rv.Type().String()}
	}

	if ref, ok := referenceOf(rv); ok {
		if _, cyclic := seen[ref]; cyclic {
			return nil, &SerializationError{Type: rv.Type().String()}
		}
		seen[ref] = struct{}{}
		defer delete(seen, ref)
	}

	if rv.Type().Implements(mapperType) && !isNilPointer(rv) {
		return serialize(reflect.ValueOf(rv.Interface().(Mapper).ToMap()), depth+1, seen)
	}

	if rv.Type().Implements(marshalerType) && !isNilPointer(rv) {
		b, err := json.Marshal(rv.Interface())
		if err != nil {
			return nil, &SerializationError{Type: rv.Type().String()}
		}
		return json.RawMessage(b), nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &SerializationError{Type: rv.Type().String()}
		}
		return f, nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return serialize(rv.Elem(), depth+1, seen)
	case reflect.Map:
		return serializeMap(rv, depth, seen)
	case reflect.Slice, reflect.Array:
		return serializeSlice(rv, depth, seen)
	case reflect.Struct:
		return serializeStruct(rv, depth, seen)
	}

	// chan, func, complex, unsafe pointer
	return nil, &SerializationError{Type: rv.Type().String()}
}

func serializeMap(rv reflect.Value, depth int, seen visited) (any, error) {
	if rv.IsNil() {
		return nil, nil
	}

	out := make(map[string]any, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		key, ok := mapKey(iter.Key())
		if !ok {
			continue
		}

		v, err := serialize(iter.Value(), depth+1, seen)
		if err != nil {
			continue
		}

		out[key] = v
	}

	return out, nil
}

func serializeSlice(rv reflect.Value, depth int, seen visited) (any, error) {
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return nil, nil
	}

	if rv.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		return b, nil
	}

	out := make([]any, 0, rv.Len())

	for i := 0; i < rv.Len(); i++ {
		v, err := serialize(rv.Index(i), depth+1, seen)
		if err != nil {
			continue
		}
		out = append(out, v)
	}

	return out, nil
}

// serializeStruct dumps exported fields under their JSON names.
func serializeStruct(rv reflect.Value, depth int, seen visited) (any, error) {
	rt := rv.Type()
	out := make(map[string]any, rt.NumField())

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		omitEmpty := false

		if tag, ok := field.Tag.Lookup("json"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" && len(parts) == 1 {
				continue
			}
			if len(parts[0]) > 0 {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					omitEmpty = true
				}
			}
		}

		fv := rv.Field(i)
		if omitEmpty && fv.IsZero() {
			continue
		}

		v, err := serialize(fv, depth+1, seen)
		if err != nil {
			continue
		}

		out[name] = v
	}

	return out, nil
}

func mapKey(k reflect.Value) (string, bool) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprint(k.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprint(k.Uint()), true
	}
	return "", false
}

func referenceOf(rv reflect.Value) (reference, bool) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map:
		if rv.IsNil() {
			return reference{}, false
		}
	case reflect.Slice:
		if rv.IsNil() || rv.Len() == 0 {
			return reference{}, false
		}
	default:
		return reference{}, false
	}
	return reference{ptr: rv.Pointer(), typ: rv.Type()}, true
}

func isNilPointer(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
