package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustClass(t testing.TB, name string, dict map[string]Object, bases ...*Class) *Class {
	t.Helper()
	c, err := NewClass(name, bases, dict)
	require.NoError(t, err)
	return c
}

func method(name string, fn func(self Object, args []Object) (Object, error)) *Func {
	return NewFunc(name, func(args []Object, _ map[string]Object) (Object, error) {
		return fn(args[0], args[1:])
	})
}

func classNames(cs []*Class) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func TestClass_MRO(t *testing.T) {
	a := mustClass(t, "A", nil)
	b := mustClass(t, "B", nil, a)
	c := mustClass(t, "C", nil, a)
	d := mustClass(t, "D", nil, b, c)

	assert.Equal(t, []string{"D", "B", "C", "A", "object"}, classNames(d.MRO()))
	assert.True(t, d.IsSubclassOf(a))
	assert.False(t, a.IsSubclassOf(d))

	_, err := NewClass("Bad", []*Class{a, b}, nil)
	assert.ErrorIs(t, err, ErrType)

	mro, err := GetAttr(d, "__mro__")
	require.NoError(t, err)
	n, err := Len(mro)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestClass_AttributeLookup(t *testing.T) {
	base := mustClass(t, "Base", map[string]Object{
		"kind":  Str("base"),
		"greet": method("greet", func(self Object, _ []Object) (Object, error) { return GetAttr(self, "kind") }),
	})
	derived := mustClass(t, "Derived", map[string]Object{"kind": Str("derived")}, base)

	o, err := Call(derived, nil, nil)
	require.NoError(t, err)

	v, err := GetAttr(o, "kind")
	require.NoError(t, err)
	assert.Equal(t, Str("derived"), v)

	g, err := GetAttr(o, "greet")
	require.NoError(t, err)
	assert.IsType(t, &BoundMethod{}, g)
	r, err := Call(g, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Str("derived"), r)

	require.NoError(t, SetAttr(o, "kind", Str("own")))
	v, _ = GetAttr(o, "kind")
	assert.Equal(t, Str("own"), v)
	v, _ = GetAttr(derived, "kind")
	assert.Equal(t, Str("derived"), v)

	unbound, err := GetAttr(base, "greet")
	require.NoError(t, err)
	assert.IsType(t, &Func{}, unbound)

	cls, err := GetAttr(o, "__class__")
	require.NoError(t, err)
	assert.Same(t, derived, cls)

	_, err = GetAttr(o, "missing")
	assert.EqualError(t, err, "attribute error: 'Derived' object has no attribute 'missing'")
	_, err = GetAttr(derived, "missing")
	assert.EqualError(t, err, "attribute error: type object 'Derived' has no attribute 'missing'")

	err = SetAttr(IntClass, "x", Int(1))
	assert.ErrorIs(t, err, ErrType)
	err = SetAttr(Int(1), "x", Int(1))
	assert.ErrorIs(t, err, ErrAttribute)

	names, err := Dir(o)
	require.NoError(t, err)
	assert.Contains(t, names, "greet")
	assert.Contains(t, names, "kind")
	assert.IsNonDecreasing(t, names)
}

func TestClass_InitAndProperty(t *testing.T) {
	point := mustClass(t, "Point", map[string]Object{
		"__init__": method("__init__", func(self Object, args []Object) (Object, error) {
			if err := SetAttr(self, "x", args[0]); err != nil {
				return nil, err
			}
			return None, SetAttr(self, "y", args[1])
		}),
		"sum": &Property{Getter: func(self Object) (Object, error) {
			x, err := GetAttr(self, "x")
			if err != nil {
				return nil, err
			}
			y, err := GetAttr(self, "y")
			if err != nil {
				return nil, err
			}
			return Binary(OpAdd, x, y)
		}},
	})

	p, err := Call(point, ints(2, 3), nil)
	require.NoError(t, err)
	s, err := GetAttr(p, "sum")
	require.NoError(t, err)
	assert.Equal(t, Int(5), s)

	err = SetAttr(p, "sum", Int(1))
	assert.ErrorIs(t, err, ErrAttribute)

	_, err = Call(mustClass(t, "Empty", nil), ints(1), nil)
	assert.EqualError(t, err, "type error: Empty() takes no arguments")
}

func TestInstance_SpecialMethods(t *testing.T) {
	num := func(self Object) (Int, error) {
		v, err := GetAttr(self, "n")
		if err != nil {
			return 0, err
		}
		return v.(Int), nil
	}
	var box *Class
	newBox := func(n Object) (Object, error) { return Call(box, []Object{n}, nil) }
	box = mustClass(t, "Box", map[string]Object{
		"__init__": method("__init__", func(self Object, args []Object) (Object, error) {
			return None, SetAttr(self, "n", args[0])
		}),
		"__repr__": method("__repr__", func(self Object, _ []Object) (Object, error) {
			n, err := num(self)
			if err != nil {
				return nil, err
			}
			return Str("Box(" + n.String() + ")"), nil
		}),
		"__add__": method("__add__", func(self Object, args []Object) (Object, error) {
			n, err := num(self)
			if err != nil {
				return nil, err
			}
			o, ok := args[0].(Int)
			if !ok {
				return NotImplemented, nil
			}
			return newBox(n + o)
		}),
		"__radd__": method("__radd__", func(self Object, args []Object) (Object, error) {
			n, err := num(self)
			if err != nil {
				return nil, err
			}
			return Binary(OpAdd, args[0], n)
		}),
		"__eq__": method("__eq__", func(self Object, args []Object) (Object, error) {
			n, err := num(self)
			if err != nil {
				return nil, err
			}
			eq, err := Equal(n, args[0])
			return Bool(eq), err
		}),
		"__len__": method("__len__", func(self Object, _ []Object) (Object, error) {
			return num(self)
		}),
		"__getitem__": method("__getitem__", func(self Object, args []Object) (Object, error) {
			return Binary(OpMul, args[0], Int(10))
		}),
		"__call__": method("__call__", func(self Object, args []Object) (Object, error) {
			return Int(len(args)), nil
		}),
		"__neg__": method("__neg__", func(self Object, _ []Object) (Object, error) {
			n, err := num(self)
			if err != nil {
				return nil, err
			}
			return newBox(-n)
		}),
	})

	b, err := newBox(Int(2))
	require.NoError(t, err)
	assert.Equal(t, "Box(2)", mustRepr(t, b))

	s, err := ToStr(b)
	require.NoError(t, err)
	assert.Equal(t, "Box(2)", s)

	r, err := Binary(OpAdd, b, Int(3))
	require.NoError(t, err)
	assert.Equal(t, "Box(5)", mustRepr(t, r))

	r, err = Binary(OpAdd, Int(3), b)
	require.NoError(t, err)
	assert.Equal(t, Int(5), r)

	_, err = Binary(OpAdd, b, Str("x"))
	assert.EqualError(t, err, "type error: unsupported operand type(s) for +: 'Box' and 'str'")

	r, err = InPlace(OpAdd, b, Int(1))
	require.NoError(t, err)
	assert.Equal(t, "Box(3)", mustRepr(t, r))

	eq, err := Equal(b, Int(2))
	require.NoError(t, err)
	assert.True(t, eq)
	eq, err = Equal(Int(2), b)
	require.NoError(t, err)
	assert.True(t, eq, "mirrored comparison")

	n, err := Len(b)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	zero, err := newBox(Int(0))
	require.NoError(t, err)
	truth, err := Truth(zero)
	require.NoError(t, err)
	assert.False(t, truth, "truth falls back to __len__")

	item, err := GetItem(b, Int(4))
	require.NoError(t, err)
	assert.Equal(t, Int(40), item)

	c, err := Call(b, ints(1, 2, 3), nil)
	require.NoError(t, err)
	assert.Equal(t, Int(3), c)

	neg, err := Unary(OpNeg, b)
	require.NoError(t, err)
	assert.Equal(t, "Box(-2)", mustRepr(t, neg))

	_, err = Unary(OpInvert, b)
	assert.EqualError(t, err, "type error: bad operand type for unary ~: 'Box'")

	_, err = Hash(b)
	assert.EqualError(t, err, "type error: unhashable type: 'Box'", "__eq__ without __hash__")
}

func TestIsInstanceAndIsSubclass(t *testing.T) {
	a := mustClass(t, "A", nil)
	b := mustClass(t, "B", nil, a)
	o, err := Call(b, nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		fn   func() (bool, error)
		want bool
	}{
		{"instance of own class", func() (bool, error) { return IsInstance(o, b) }, true},
		{"instance of base", func() (bool, error) { return IsInstance(o, a) }, true},
		{"instance of object", func() (bool, error) { return IsInstance(o, ObjectClass) }, true},
		{"instance of unrelated", func() (bool, error) { return IsInstance(o, IntClass) }, false},
		{"instance of tuple", func() (bool, error) { return IsInstance(o, NewTuple(IntClass, a)) }, true},
		{"bool is int", func() (bool, error) { return IsInstance(True, IntClass) }, true},
		{"subclass of base", func() (bool, error) { return IsSubclass(b, a) }, true},
		{"base not subclass", func() (bool, error) { return IsSubclass(a, b) }, false},
		{"class is type instance", func() (bool, error) { return IsInstance(a, TypeClass) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = IsInstance(o, Int(1))
	assert.ErrorIs(t, err, ErrType)
	_, err = IsSubclass(Int(1), a)
	assert.ErrorIs(t, err, ErrType)
}

func TestType_Builtin(t *testing.T) {
	typ, err := Call(TypeClass, []Object{Int(1)}, nil)
	require.NoError(t, err)
	assert.Same(t, IntClass, typ)

	cls, err := Call(TypeClass, []Object{Str("Dyn"), NewTuple(), NewDict()}, nil)
	require.NoError(t, err)
	assert.Equal(t, "<class 'Dyn'>", mustRepr(t, cls))
}
