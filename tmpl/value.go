package tmpl

import (
	"fmt"
	"log/slog"
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// stringify converts a data value to the text placed in the tree. Nil is the
// empty string; scalars format without exponent or trailing zeros.
func stringify(v any) string {
	if v == nil {
		return ""
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return s
}

// truthy reports whether v counts as true in a guard. Nil, false, numeric
// zero, NaN, and the empty string are false; everything else is true.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()

		return f != 0 && !math.IsNaN(f)
	case reflect.String:
		return rv.Len() != 0
	case reflect.Bool:
		return rv.Bool()
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Func, reflect.Chan:
		return !rv.IsNil()
	default:
		return true
	}
}

// dataMap normalizes an execution's data object to a flat map. Structs and
// typed maps are decoded with mapstructure.
func dataMap(data any) (map[string]any, error) {
	switch d := data.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return d, nil
	case map[string]string:
		m := make(map[string]any, len(d))
		for k, v := range d {
			m[k] = v
		}

		return m, nil
	}

	var m map[string]any
	if err := mapstructure.Decode(data, &m); err != nil {
		return nil, ErrInvalidData.Wrap(err).With(
			slog.String("type", fmt.Sprintf("%T", data)),
		)
	}

	if m == nil {
		m = map[string]any{}
	}

	return m, nil
}
