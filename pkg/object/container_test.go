package object

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func ints(vals ...int64) []Object {
	out := make([]Object, len(vals))
	for i, v := range vals {
		out[i] = Int(v)
	}
	return out
}

func callMethod(t testing.TB, o Object, name string, args ...Object) Object {
	t.Helper()
	m, err := GetAttr(o, name)
	require.NoError(t, err)
	r, err := Call(m, args, nil)
	require.NoError(t, err)
	return r
}

func assertEqualObj(t testing.TB, want, got Object) {
	t.Helper()
	eq, err := Equal(want, got)
	require.NoError(t, err)
	if !eq {
		t.Fatalf("want %s, got %s", mustRepr(t, want), mustRepr(t, got))
	}
}

func TestRepr_Containers(t *testing.T) {
	d := NewDict()
	require.NoError(t, d.Set(Int(1), Str("a")))
	require.NoError(t, d.Set(Str("k"), NewTuple(Int(2))))

	self := NewList(Int(1))
	self.Items = append(self.Items, self)

	tests := []struct {
		v    Object
		want string
	}{
		{Str("it's"), `"it's"`},
		{Str("a\nb"), `'a\nb'`},
		{NewTuple(), "()"},
		{NewTuple(Int(1)), "(1,)"},
		{NewList(Int(1), Str("x")), "[1, 'x']"},
		{d, "{1: 'a', 'k': (2,)}"},
		{self, "[1, [...]]"},
		{NewSlice(Int(1), nil, nil), "slice(1, None, None)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mustRepr(t, tt.v))
	}
}

func TestRepr_Concurrent(t *testing.T) {
	inner := NewList(ints(1, 2)...)
	outer := NewList(inner, NewTuple(inner), inner)
	const want = "[[1, 2], ([1, 2],), [1, 2]]"

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				r, err := Repr(outer)
				if err != nil || r != want {
					results[i] = r
					return
				}
			}
			results[i] = want
		}()
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, want, r)
	}
}

func TestList_Slicing(t *testing.T) {
	l := NewList(ints(0, 1, 2, 3, 4, 5)...)

	tests := []struct {
		start, stop, step Object
		want              []int64
	}{
		{Int(1), Int(3), nil, []int64{1, 2}},
		{nil, nil, Int(-1), []int64{5, 4, 3, 2, 1, 0}},
		{nil, nil, Int(2), []int64{0, 2, 4}},
		{Int(-2), nil, nil, []int64{4, 5}},
		{Int(10), Int(20), nil, []int64{}},
		{Int(4), Int(1), Int(-2), []int64{4, 2}},
	}
	for _, tt := range tests {
		s := NewSlice(tt.start, tt.stop, tt.step)
		got, err := GetItem(l, s)
		require.NoError(t, err, mustRepr(t, s))
		assertEqualObj(t, NewList(ints(tt.want...)...), got)
	}

	_, err := GetItem(l, NewSlice(nil, nil, Int(0)))
	assert.ErrorIs(t, err, ErrValue)
	_, err = GetItem(l, Int(6))
	assert.EqualError(t, err, "index error: list index out of range")
	_, err = GetItem(l, Str("0"))
	assert.ErrorIs(t, err, ErrType)

	require.NoError(t, SetItem(l, NewSlice(nil, nil, Int(2)), NewList(ints(9, 9, 9)...)))
	assertEqualObj(t, NewList(ints(9, 1, 9, 3, 9, 5)...), l)
	err = SetItem(l, NewSlice(nil, nil, Int(2)), NewList(Int(1)))
	assert.ErrorIs(t, err, ErrValue)

	require.NoError(t, DelItem(l, NewSlice(Int(1), nil, Int(2))))
	assertEqualObj(t, NewList(ints(9, 9, 9)...), l)
}

func TestList_Methods(t *testing.T) {
	l := NewList(ints(3, 1, 2)...)

	callMethod(t, l, "append", Int(0))
	callMethod(t, l, "insert", Int(-1), Int(7))
	assertEqualObj(t, NewList(ints(3, 1, 2, 7, 0)...), l)

	assert.Equal(t, Int(0), callMethod(t, l, "pop"))
	assert.Equal(t, Int(3), callMethod(t, l, "pop", Int(0)))
	assert.Equal(t, Int(1), callMethod(t, l, "index", Int(2)))
	assert.Equal(t, Int(1), callMethod(t, l, "count", Int(7)))

	callMethod(t, l, "extend", NewTuple(ints(5, 4)...))
	callMethod(t, l, "sort")
	assertEqualObj(t, NewList(ints(1, 2, 4, 5, 7)...), l)

	sortM, err := GetAttr(l, "sort")
	require.NoError(t, err)
	_, err = Call(sortM, nil, map[string]Object{"reverse": True})
	require.NoError(t, err)
	assertEqualObj(t, NewList(ints(7, 5, 4, 2, 1)...), l)

	neg := NewFunc("neg", func(args []Object, _ map[string]Object) (Object, error) {
		return Unary(OpNeg, args[0])
	})
	_, err = Call(sortM, nil, map[string]Object{"key": neg})
	require.NoError(t, err)
	assertEqualObj(t, NewList(ints(7, 5, 4, 2, 1)...), l)

	m, err := GetAttr(l, "remove")
	require.NoError(t, err)
	_, err = Call(m, ints(42), nil)
	assert.EqualError(t, err, "value error: list.remove(x): x not in list")

	mixed := NewList(Int(1), Str("a"))
	err = mixed.Sort(None, false)
	assert.ErrorIs(t, err, ErrType)

	_, err = Call(sortM, ints(1), nil)
	assert.ErrorIs(t, err, ErrType)
}

func TestList_InPlace(t *testing.T) {
	l := NewList(ints(1)...)
	r, err := InPlace(OpAdd, l, NewTuple(ints(2)...))
	require.NoError(t, err)
	assert.Same(t, l, r)

	r, err = InPlace(OpMul, l, Int(2))
	require.NoError(t, err)
	assert.Same(t, l, r)
	assertEqualObj(t, NewList(ints(1, 2, 1, 2)...), l)

	_, err = Binary(OpAdd, l, NewTuple())
	assert.EqualError(t, err, "type error: unsupported operand type(s) for +: 'list' and 'tuple'")

	_, err = Binary(OpMul, NewList(Int(0)), Int(4_000_000_000))
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = InPlace(OpMul, l, Int(1<<30))
	assert.ErrorIs(t, err, ErrOverflow)
	assertEqualObj(t, NewList(ints(1, 2, 1, 2)...), l)
}

type reflectedConcat struct{}

func (reflectedConcat) Type() *Class { return ObjectClass }

func (reflectedConcat) BinaryOp(Operator, Object) (Object, error) { return NotImplemented, nil }

func (reflectedConcat) ReflectedOp(op Operator, other Object) (Object, error) {
	if op == OpAdd {
		return Str("reflected"), nil
	}
	return NotImplemented, nil
}

func TestList_AddFallsBackToReflected(t *testing.T) {
	got, err := Binary(OpAdd, NewList(Int(1)), reflectedConcat{})
	require.NoError(t, err)
	assert.Equal(t, Str("reflected"), got)
}

func TestSequence_Compare(t *testing.T) {
	lt, err := CompareBool(NewList(ints(1, 2)...), NewList(ints(1, 3)...), CmpLt)
	require.NoError(t, err)
	assert.True(t, lt)

	lt, err = CompareBool(NewTuple(ints(1)...), NewTuple(ints(1, 0)...), CmpLt)
	require.NoError(t, err)
	assert.True(t, lt)

	eq, err := Equal(NewList(ints(1)...), NewTuple(ints(1)...))
	require.NoError(t, err)
	assert.False(t, eq)
}

func TestDict(t *testing.T) {
	d := NewDict()
	require.NoError(t, d.Set(Str("b"), Int(1)))
	require.NoError(t, d.Set(Str("a"), Int(2)))
	require.NoError(t, d.Set(Int(1), Str("int")))
	require.NoError(t, d.Set(Float(1), Str("float")))

	n, err := Len(d)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "1 and 1.0 are the same key")

	v, err := GetItem(d, True)
	require.NoError(t, err)
	assert.Equal(t, Str("float"), v)

	keys, err := Collect(d)
	require.NoError(t, err)
	assert.Equal(t, []Object{Str("b"), Str("a"), Int(1)}, keys, "insertion order")

	_, err = GetItem(d, Str("zz"))
	assert.EqualError(t, err, "key error: 'zz'")

	err = d.Set(NewList(), Int(0))
	assert.EqualError(t, err, "type error: unhashable type: 'list'")

	assert.Equal(t, Int(9), callMethod(t, d, "get", Str("zz"), Int(9)))
	assert.Equal(t, None, callMethod(t, d, "get", Str("zz")))
	assert.Equal(t, Int(1), callMethod(t, d, "pop", Str("b")))
	assert.Equal(t, Int(5), callMethod(t, d, "setdefault", Str("c"), Int(5)))
	assertEqualObj(t, NewList(Str("a"), Int(1), Str("c")), callMethod(t, d, "keys"))
	assertEqualObj(t, NewList(NewTuple(Str("a"), Int(2)), NewTuple(Int(1), Str("float")), NewTuple(Str("c"), Int(5))), callMethod(t, d, "items"))

	other := NewDict()
	require.NoError(t, other.Set(Str("a"), Int(0)))
	merged, err := Binary(OpOr, d, other)
	require.NoError(t, err)
	got, err := GetItem(merged, Str("a"))
	require.NoError(t, err)
	assert.Equal(t, Int(0), got)
	got, err = GetItem(d, Str("a"))
	require.NoError(t, err)
	assert.Equal(t, Int(2), got, "| copies")

	_, err = Hash(d)
	assert.ErrorIs(t, err, ErrType)
}

func TestDict_SizeChangeDuringIteration(t *testing.T) {
	d := NewDict()
	require.NoError(t, d.Set(Int(1), Int(1)))
	it, err := Iter(d)
	require.NoError(t, err)
	require.NoError(t, d.Set(Int(2), Int(2)))
	_, err = Next(it)
	assert.ErrorIs(t, err, ErrValue)
}

func TestDict_Constructor(t *testing.T) {
	d, err := Call(DictClass, []Object{NewList(NewTuple(Str("a"), Int(1)))}, map[string]Object{"b": Int(2)})
	require.NoError(t, err)
	assert.Equal(t, "{'a': 1, 'b': 2}", mustRepr(t, d))
}

func TestStr_Methods(t *testing.T) {
	s := Str("  Hello, World  ")

	assert.Equal(t, Str("Hello, World"), callMethod(t, s, "strip"))
	assert.Equal(t, Str("  HELLO, WORLD  "), callMethod(t, s, "upper"))
	assertEqualObj(t, NewList(Str("a"), Str("b"), Str("")), callMethod(t, Str("a,b,"), "split", Str(",")))
	assertEqualObj(t, NewList(Str("a"), Str("b")), callMethod(t, Str(" a  b "), "split"))
	assert.Equal(t, Str("a-b"), callMethod(t, Str("-"), "join", NewList(Str("a"), Str("b"))))
	assert.Equal(t, Str("xbx"), callMethod(t, Str("aba"), "replace", Str("a"), Str("x")))
	assert.Equal(t, Int(1), callMethod(t, Str("abc"), "find", Str("b")))
	assert.Equal(t, True, callMethod(t, Str("abc"), "startswith", Str("ab")))
	assert.Equal(t, Str("1 'a' ..7"), callMethod(t, Str("{} {!r} {:.>3}"), "format", Int(1), Str("a"), Int(7)))
	assert.Equal(t, Str("b a {}"), callMethod(t, Str("{1} {0} {{}}"), "format", Str("a"), Str("b")))

	item, err := GetItem(Str("héllo"), Int(1))
	require.NoError(t, err)
	assert.Equal(t, Str("é"), item)

	in, err := Contains(Str("hello"), Str("ell"))
	require.NoError(t, err)
	assert.True(t, in)

	rep, err := Binary(OpMul, Int(3), Str("ab"))
	require.NoError(t, err)
	assert.Equal(t, Str("ababab"), rep)

	_, err = Binary(OpAdd, Str("a"), Int(1))
	assert.ErrorIs(t, err, ErrType)
}

func TestNative(t *testing.T) {
	o, err := FromNative(map[string]any{
		"name":  "oxy",
		"count": 3,
		"tags":  []any{"a", 1.5, true, nil},
	})
	require.NoError(t, err)
	assert.Equal(t, "{'count': 3, 'name': 'oxy', 'tags': ['a', 1.5, True, None]}", mustRepr(t, o))

	back, err := ToNative(o)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"count": int64(3),
		"name":  "oxy",
		"tags":  []any{"a", 1.5, true, nil},
	}, back)

	_, err = FromNative(make(chan int))
	assert.ErrorIs(t, err, ErrType)
}

func TestContainerProperties(t *testing.T) {
	// Property 1: a slice matches a naive walk over the resolved indices.
	t.Run("slice indices", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			n := rapid.IntRange(0, 10).Draw(t, "n")
			s := NewSlice(
				Int(rapid.IntRange(-12, 12).Draw(t, "start")),
				Int(rapid.IntRange(-12, 12).Draw(t, "stop")),
				Int(rapid.SampledFrom([]int64{-3, -2, -1, 1, 2, 3}).Draw(t, "step")),
			)
			start, stop, step, err := s.Indices(n)
			require.NoError(t, err)
			for _, i := range sliceRange(start, stop, step) {
				require.GreaterOrEqual(t, i, 0)
				require.Less(t, i, n)
			}
		})
	})

	// Property 2: the dict keeps the last value written per key and the
	// first insertion position.
	t.Run("dict last write wins", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			keys := rapid.SliceOfN(rapid.Int64Range(0, 5), 1, 20).Draw(t, "keys")
			d := NewDict()
			want := map[int64]int{}
			var order []int64
			for i, k := range keys {
				if _, seen := want[k]; !seen {
					order = append(order, k)
				}
				want[k] = i
				require.NoError(t, d.Set(Int(k), Int(i)))
			}
			got := d.Keys()
			require.Len(t, got, len(order))
			for i, k := range order {
				require.Equal(t, Int(k), got[i])
				v, found, err := d.Get(Int(k))
				require.NoError(t, err)
				require.True(t, found)
				require.Equal(t, Int(want[k]), v)
			}
		})
	})
}
