package api

import (
	"maps"
	"reflect"
	"strconv"
)

// State is the dynamically typed key-value bag threaded through the tools of
// a run. Values are scalars (string, bool, numbers), lists ([]any) or maps
// (map[string]any)
type State map[Name]any

// StopKey is the reserved state entry that ends a run when truthy
const StopKey Name = "stop"

// Set creates a new State with the specified name-value pair added
func (s State) Set(name Name, value any) State {
	if s == nil {
		return State{name: value}
	}
	res := maps.Clone(s)
	res[name] = value
	return res
}

// Copy returns a shallow copy of the State. A nil State yields an empty one
func (s State) Copy() State {
	if s == nil {
		return State{}
	}
	return maps.Clone(s)
}

// Clone returns a deep copy of the State, duplicating nested lists and maps
// so that later mutation of the original cannot reach the copy
func (s State) Clone() State {
	res := make(State, len(s))
	for k, v := range s {
		res[k] = cloneValue(v)
	}
	return res
}

// Stopped reports whether the state carries a truthy stop signal
func (s State) Stopped() bool {
	return IsTruthy(s[StopKey])
}

// GetString retrieves a string value from the state, returning defaultValue
// if not found or wrong type
func (s State) GetString(name Name, defaultValue string) string {
	val, ok := s[name]
	if !ok {
		return defaultValue
	}
	str, ok := val.(string)
	if !ok {
		return defaultValue
	}
	return str
}

// GetInt retrieves an integer value from the state, returning defaultValue
// if not found or not convertible. Supports Go integers, float64 (decoded
// JSON numbers) and numeric strings
func (s State) GetInt(name Name, defaultValue int) int {
	val, ok := s[name]
	if !ok {
		return defaultValue
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

// GetStrings retrieves a list of strings from the state. Lists decoded from
// JSON arrive as []any; non-string elements are skipped
func (s State) GetStrings(name Name) []string {
	switch v := s[name].(type) {
	case []string:
		return v
	case []any:
		res := make([]string, 0, len(v))
		for _, e := range v {
			if str, ok := e.(string); ok {
				res = append(res, str)
			}
		}
		return res
	default:
		return nil
	}
}

// IsTruthy reports whether a dynamic value counts as true: nil, false, zero
// numbers, and empty strings, lists and maps are false; all else is true
func IsTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		res := make([]any, len(t))
		for i, e := range t {
			res[i] = cloneValue(e)
		}
		return res
	case []string:
		return append([]string(nil), t...)
	case map[string]any:
		res := make(map[string]any, len(t))
		for k, e := range t {
			res[k] = cloneValue(e)
		}
		return res
	case State:
		return t.Clone()
	default:
		return v
	}
}
