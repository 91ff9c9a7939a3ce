package deployment

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// Document is an opaque key/value tree, as decoded from a JSON object.
type Document map[string]interface{}

// Copy returns a deep copy. Nested objects come back as map[string]interface{} and
// arrays as []interface{}; scalar leaves are shared since they are immutable.
// Objects with non-string keys, as YAML produces for `8080: http`, are rekeyed
// by the keys' printed form.
func (d Document) Copy() Document {
	if d == nil {
		return nil
	}
	return Document(copyMap(d))
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyKeyedMap(m map[interface{}]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[fmt.Sprint(k)] = copyValue(v)
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch value := v.(type) {
	case Document:
		if value == nil {
			return nil
		}
		return copyMap(value)
	case map[string]interface{}:
		if value == nil {
			return nil
		}
		return copyMap(value)
	case map[interface{}]interface{}:
		if value == nil {
			return nil
		}
		return copyKeyedMap(value)
	case []interface{}:
		if value == nil {
			return nil
		}
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		if value == nil {
			return nil
		}
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = item
		}
		return out
	default:
		return value
	}
}

// canonical returns a stable byte encoding used for equality and hashing, and
// whether it is exact. encoding/json sorts map keys and numbers are normalized so
// that 5, 5.0 and json.Number("5") encode the same. Leaves JSON cannot encode are
// replaced by their type name and the encoding is reported as inexact.
func (d Document) canonical() ([]byte, bool) {
	if d == nil {
		return []byte("null"), true
	}
	tree := normalizeValue(map[string]interface{}(d))
	if data, err := json.Marshal(tree); err == nil {
		return data, true
	}
	data, err := json.Marshal(placeholderValue(tree))
	if err != nil {
		return []byte(fmt.Sprintf("<%T>", tree)), false
	}
	return data, false
}

// equalDocuments compares two config documents structurally.
func equalDocuments(a, b Document) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	ca, exactA := a.canonical()
	cb, exactB := b.canonical()
	if exactA && exactB {
		return string(ca) == string(cb)
	}
	if exactA != exactB {
		return false
	}
	return reflect.DeepEqual(normalizeValue(map[string]interface{}(a)), normalizeValue(map[string]interface{}(b)))
}

// normalizeValue rewrites a tree into plain JSON shapes: string keyed maps,
// []interface{} arrays and int64 or float64 numbers in place of json.Number.
func normalizeValue(v interface{}) interface{} {
	switch value := v.(type) {
	case Document:
		return normalizeValue(map[string]interface{}(value))
	case map[string]interface{}:
		if value == nil {
			return nil
		}
		out := make(map[string]interface{}, len(value))
		for k, item := range value {
			out[k] = normalizeValue(item)
		}
		return out
	case map[interface{}]interface{}:
		if value == nil {
			return nil
		}
		out := make(map[string]interface{}, len(value))
		for k, item := range value {
			out[fmt.Sprint(k)] = normalizeValue(item)
		}
		return out
	case []interface{}:
		if value == nil {
			return nil
		}
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = normalizeValue(item)
		}
		return out
	case []string:
		if value == nil {
			return nil
		}
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = item
		}
		return out
	case json.Number:
		if n, err := value.Int64(); err == nil {
			return n
		}
		if f, err := value.Float64(); err == nil {
			return f
		}
		return value
	default:
		return value
	}
}

// placeholderValue walks a normalized tree and swaps every leaf JSON cannot encode
// for a marker naming its type.
func placeholderValue(v interface{}) interface{} {
	switch value := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, item := range value {
			out[k] = placeholderValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = placeholderValue(item)
		}
		return out
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Sprintf("<float64 %v>", value)
		}
		return value
	case float32:
		if math.IsNaN(float64(value)) || math.IsInf(float64(value), 0) {
			return fmt.Sprintf("<float32 %v>", value)
		}
		return value
	default:
		if _, err := json.Marshal(value); err != nil {
			return fmt.Sprintf("<%T>", value)
		}
		return value
	}
}
