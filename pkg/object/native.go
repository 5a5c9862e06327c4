package object

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"
)

// FromNative converts a decoded YAML, JSON or TOML value into an Object.
// Maps become dicts with sorted keys, slices become lists.
func FromNative(v any) (Object, error) {
	switch x := v.(type) {
	case nil:
		return None, nil
	case Object:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return Str(x), nil
	case int:
		return Int(x), nil
	case int64:
		return Int(x), nil
	case float64:
		return Float(x), nil
	case time.Time:
		return Str(x.Format(time.RFC3339Nano)), nil
	case []any:
		items := make([]Object, len(x))
		for i, e := range x {
			o, err := FromNative(e)
			if err != nil {
				return nil, err
			}
			items[i] = o
		}
		return NewList(items...), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, overflowError()
		}
		return Int(u), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return Str(rv.String()), nil
	case reflect.Slice, reflect.Array:
		items := make([]Object, rv.Len())
		for i := range items {
			o, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			items[i] = o
		}
		return NewList(items...), nil
	case reflect.Map:
		type pair struct {
			key   Object
			value Object
			sort  string
		}
		pairs := make([]pair, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, err := FromNative(iter.Key().Interface())
			if err != nil {
				return nil, err
			}
			val, err := FromNative(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, pair{key: k, value: val, sort: fmt.Sprint(iter.Key().Interface())})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].sort < pairs[j].sort })
		d := NewDict()
		for _, p := range pairs {
			if err := d.Set(p.key, p.value); err != nil {
				return nil, err
			}
		}
		return d, nil
	}
	return nil, typeErrorf("cannot convert Go value of type %T", v)
}

// ToNative converts o into plain Go values suitable for JSON or YAML
// encoding. Values without a native form become their repr.
func ToNative(o Object) (any, error) {
	switch v := o.(type) {
	case NoneType:
		return nil, nil
	case Bool:
		return bool(v), nil
	case Int:
		return int64(v), nil
	case Float:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return floatRepr(f), nil
		}
		return f, nil
	case Str:
		return string(v), nil
	case *List:
		return nativeSlice(v.Items)
	case *Tuple:
		return nativeSlice(v.Items)
	case *Dict:
		m := make(map[string]any, len(v.entries))
		for _, e := range v.entries {
			var key string
			if s, ok := e.key.(Str); ok {
				key = string(s)
			} else {
				r, err := Repr(e.key)
				if err != nil {
					return nil, err
				}
				key = r
			}
			val, err := ToNative(e.value)
			if err != nil {
				return nil, err
			}
			m[key] = val
		}
		return m, nil
	}
	return Repr(o)
}

func nativeSlice(items []Object) (any, error) {
	out := make([]any, len(items))
	for i, item := range items {
		v, err := ToNative(item)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
