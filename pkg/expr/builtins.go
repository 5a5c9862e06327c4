package expr

import (
	"errors"
	"fmt"

	"github.com/polisai/oxy/pkg/object"
	"github.com/polisai/oxy/pkg/proxy"
)

var builtins map[string]object.Object

func init() {
	builtins = map[string]object.Object{
		"proxy":   proxy.Class,
		"object":  object.ObjectClass,
		"type":    object.TypeClass,
		"str":     object.StrClass,
		"bool":    object.BoolClass,
		"int":     object.IntClass,
		"float":   object.FloatClass,
		"complex": object.ComplexClass,
		"list":    object.ListClass,
		"tuple":   object.TupleClass,
		"dict":    object.DictClass,
		"slice":   object.SliceClass,
	}

	define("unbound", 0, 0, func(_ []object.Object) (object.Object, error) {
		return proxy.Unbound(), nil
	})
	define("target", 1, 1, func(args []object.Object) (object.Object, error) {
		p, ok := args[0].(*proxy.Proxy)
		if !ok {
			return nil, fmt.Errorf("%w: target() argument must be a proxy, not '%s'", object.ErrType, object.TypeName(args[0]))
		}
		return p.Target()
	})
	define("len", 1, 1, func(args []object.Object) (object.Object, error) {
		n, err := object.Len(args[0])
		return object.Int(n), err
	})
	define("iter", 1, 1, func(args []object.Object) (object.Object, error) {
		return object.Iter(args[0])
	})
	define("next", 1, 2, func(args []object.Object) (object.Object, error) {
		v, err := object.Next(args[0])
		if errors.Is(err, object.ErrStopIteration) && len(args) == 2 {
			return args[1], nil
		}
		return v, err
	})
	define("reversed", 1, 1, func(args []object.Object) (object.Object, error) {
		return object.Reversed(args[0])
	})
	define("repr", 1, 1, func(args []object.Object) (object.Object, error) {
		s, err := object.Repr(args[0])
		return object.Str(s), err
	})
	define("format", 1, 2, func(args []object.Object) (object.Object, error) {
		spec := ""
		if len(args) == 2 {
			s, ok := args[1].(object.Str)
			if !ok {
				return nil, fmt.Errorf("%w: format() argument 2 must be str, not %s", object.ErrType, object.TypeName(args[1]))
			}
			spec = string(s)
		}
		s, err := object.Format(args[0], spec)
		return object.Str(s), err
	})
	define("hash", 1, 1, func(args []object.Object) (object.Object, error) {
		h, err := object.Hash(args[0])
		return object.Int(h), err
	})
	define("id", 1, 1, func(args []object.Object) (object.Object, error) {
		return object.Int(int64(object.ID(args[0]))), nil
	})
	define("round", 1, 2, func(args []object.Object) (object.Object, error) {
		var ndigits object.Object
		if len(args) == 2 && args[1] != object.None {
			ndigits = args[1]
		}
		return object.Round(args[0], ndigits)
	})
	define("abs", 1, 1, func(args []object.Object) (object.Object, error) {
		return object.Unary(object.OpAbs, args[0])
	})
	define("divmod", 2, 2, func(args []object.Object) (object.Object, error) {
		return object.DivMod(args[0], args[1])
	})
	define("pow", 2, 3, func(args []object.Object) (object.Object, error) {
		var mod object.Object
		if len(args) == 3 {
			mod = args[2]
		}
		return object.Pow(args[0], args[1], mod)
	})
	define("isinstance", 2, 2, func(args []object.Object) (object.Object, error) {
		ok, err := object.IsInstance(args[0], args[1])
		return object.Bool(ok), err
	})
	define("issubclass", 2, 2, func(args []object.Object) (object.Object, error) {
		ok, err := object.IsSubclass(args[0], args[1])
		return object.Bool(ok), err
	})
	define("dir", 1, 1, func(args []object.Object) (object.Object, error) {
		names, err := object.Dir(args[0])
		if err != nil {
			return nil, err
		}
		items := make([]object.Object, len(names))
		for i, n := range names {
			items[i] = object.Str(n)
		}
		return object.NewList(items...), nil
	})
	define("getattr", 2, 3, func(args []object.Object) (object.Object, error) {
		name, err := attrName("getattr", args[1])
		if err != nil {
			return nil, err
		}
		v, err := object.GetAttr(args[0], name)
		if err != nil && len(args) == 3 && errors.Is(err, object.ErrAttribute) {
			return args[2], nil
		}
		return v, err
	})
	define("setattr", 3, 3, func(args []object.Object) (object.Object, error) {
		name, err := attrName("setattr", args[1])
		if err != nil {
			return nil, err
		}
		return object.None, object.SetAttr(args[0], name, args[2])
	})
	define("delattr", 2, 2, func(args []object.Object) (object.Object, error) {
		name, err := attrName("delattr", args[1])
		if err != nil {
			return nil, err
		}
		return object.None, object.DelAttr(args[0], name)
	})
	define("hasattr", 2, 2, func(args []object.Object) (object.Object, error) {
		name, err := attrName("hasattr", args[1])
		if err != nil {
			return nil, err
		}
		ok, err := object.HasAttr(args[0], name)
		return object.Bool(ok), err
	})
	define("hex", 1, 1, radix(object.Hex))
	define("oct", 1, 1, radix(object.Oct))
	define("bin", 1, 1, radix(object.Bin))

	builtins["sorted"] = object.NewFunc("sorted", func(args []object.Object, kwargs map[string]object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: sorted expected 1 argument, got %d", object.ErrType, len(args))
		}
		var key object.Object
		reverse := false
		for name, v := range kwargs {
			switch name {
			case "key":
				key = v
			case "reverse":
				r, err := object.Truth(v)
				if err != nil {
					return nil, err
				}
				reverse = r
			default:
				return nil, fmt.Errorf("%w: '%s' is an invalid keyword argument for sorted()", object.ErrType, name)
			}
		}
		items, err := object.Collect(args[0])
		if err != nil {
			return nil, err
		}
		l := object.NewList(items...)
		return l, l.Sort(key, reverse)
	})
}

// define registers a positional-only builtin taking between lo and hi arguments.
func define(name string, lo, hi int, fn func(args []object.Object) (object.Object, error)) {
	builtins[name] = object.NewFunc(name, func(args []object.Object, kwargs map[string]object.Object) (object.Object, error) {
		if len(kwargs) > 0 {
			return nil, fmt.Errorf("%w: %s() takes no keyword arguments", object.ErrType, name)
		}
		if len(args) < lo || len(args) > hi {
			return nil, arityError(name, lo, hi, len(args))
		}
		return fn(args)
	})
}

func arityError(name string, lo, hi, got int) error {
	switch {
	case lo == hi:
		return fmt.Errorf("%w: %s() takes exactly %d argument(s) (%d given)", object.ErrType, name, lo, got)
	case got < lo:
		return fmt.Errorf("%w: %s expected at least %d argument(s), got %d", object.ErrType, name, lo, got)
	}
	return fmt.Errorf("%w: %s expected at most %d argument(s), got %d", object.ErrType, name, hi, got)
}

func attrName(fn string, o object.Object) (string, error) {
	s, ok := o.(object.Str)
	if !ok {
		return "", fmt.Errorf("%w: %s(): attribute name must be string", object.ErrType, fn)
	}
	return string(s), nil
}

func radix(render func(object.Object) (string, error)) func([]object.Object) (object.Object, error) {
	return func(args []object.Object) (object.Object, error) {
		s, err := render(args[0])
		return object.Str(s), err
	}
}
