package object

import (
	"errors"
	"math/bits"
	"slices"
	"strings"
)

// Tuple is an immutable sequence.
type Tuple struct {
	Items []Object
}

// NewTuple creates a tuple holding items.
func NewTuple(items ...Object) *Tuple {
	return &Tuple{Items: items}
}

// List is a mutable sequence.
type List struct {
	Items []Object
}

// NewList creates a list holding items.
func NewList(items ...Object) *List {
	if items == nil {
		items = []Object{}
	}
	return &List{Items: items}
}

// Slice selects a range of a sequence. Omitted bounds are None.
type Slice struct {
	Start, Stop, Step Object
}

// NewSlice creates a slice; nil bounds are stored as None.
func NewSlice(start, stop, step Object) *Slice {
	orNone := func(o Object) Object {
		if o == nil {
			return None
		}
		return o
	}
	return &Slice{Start: orNone(start), Stop: orNone(stop), Step: orNone(step)}
}

// ReprGuard tracks the containers one repr call is rendering, so that a
// container holding itself renders as "[...]" instead of recursing.
type ReprGuard struct {
	active map[Object]bool
}

func (g *ReprGuard) enter(o Object) bool {
	if g.active == nil {
		g.active = map[Object]bool{}
	}
	if g.active[o] {
		return false
	}
	g.active[o] = true
	return true
}

func (g *ReprGuard) leave(o Object) { delete(g.active, o) }

// ReprNested is Repr within an enclosing repr call. A nil guard starts a
// new call.
func ReprNested(o Object, g *ReprGuard) (string, error) {
	if g == nil {
		g = &ReprGuard{}
	}
	if n, ok := o.(NestedReprer); ok {
		return n.ReprNested(g)
	}
	return Repr(o)
}

func joinReprs(items []Object, g *ReprGuard) (string, error) {
	parts := make([]string, len(items))
	for i, item := range items {
		r, err := ReprNested(item, g)
		if err != nil {
			return "", err
		}
		parts[i] = r
	}
	return strings.Join(parts, ", "), nil
}

// sequenceIndex resolves key against a sequence of length n, counting
// negative indices from the end.
func sequenceIndex(key Object, n int, what string) (int, error) {
	idx, ok := key.(Indexer)
	if !ok {
		return 0, typeErrorf("%s indices must be integers or slices, not %s", what, TypeName(key))
	}
	i, err := idx.Index()
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i += Int(n)
	}
	if i < 0 || i >= Int(n) {
		return 0, indexErrorf("%s index out of range", what)
	}
	return int(i), nil
}

// Indices resolves the slice against a sequence of the given length, the way
// slice.indices does.
func (s *Slice) Indices(length int) (start, stop, step int, err error) {
	step = 1
	if s.Step != None && s.Step != nil {
		n, err := Index(s.Step)
		if err != nil {
			return 0, 0, 0, err
		}
		if n == 0 {
			return 0, 0, 0, valueErrorf("slice step cannot be zero")
		}
		step = int(n)
	}
	lower, upper := 0, length
	if step < 0 {
		lower, upper = -1, length-1
	}
	bound := func(o Object, dflt int) (int, error) {
		if o == None || o == nil {
			return dflt, nil
		}
		n, err := Index(o)
		if err != nil {
			return 0, err
		}
		i := int(n)
		if i < 0 {
			i += length
			if i < lower {
				i = lower
			}
		} else if i > upper {
			i = upper
		}
		return i, nil
	}
	if step < 0 {
		start, err = bound(s.Start, upper)
		if err == nil {
			stop, err = bound(s.Stop, lower)
		}
	} else {
		start, err = bound(s.Start, lower)
		if err == nil {
			stop, err = bound(s.Stop, upper)
		}
	}
	return start, stop, step, err
}

func sliceRange(start, stop, step int) []int {
	var idx []int
	if step > 0 {
		for i := start; i < stop; i += step {
			idx = append(idx, i)
		}
	} else {
		for i := start; i > stop; i += step {
			idx = append(idx, i)
		}
	}
	return idx
}

func sliceItems(items []Object, s *Slice) ([]Object, error) {
	start, stop, step, err := s.Indices(len(items))
	if err != nil {
		return nil, err
	}
	out := []Object{}
	for _, i := range sliceRange(start, stop, step) {
		out = append(out, items[i])
	}
	return out, nil
}

func (s *Slice) Type() *Class { return SliceClass }

func (s *Slice) Repr() (string, error) {
	parts, err := joinReprs([]Object{s.Start, s.Stop, s.Step}, nil)
	if err != nil {
		return "", err
	}
	return "slice(" + parts + ")", nil
}

func (s *Slice) GetAttr(name string) (Object, error) {
	switch name {
	case "start":
		return s.Start, nil
	case "stop":
		return s.Stop, nil
	case "step":
		return s.Step, nil
	}
	return GenericGetAttr(s, nil, name)
}

func (s *Slice) Compare(op CompareOp, other Object) (Object, error) {
	o, ok := other.(*Slice)
	if !ok {
		return NotImplemented, nil
	}
	return compareSequences(op, []Object{s.Start, s.Stop, s.Step}, []Object{o.Start, o.Stop, o.Step})
}

func (s *Slice) Hash() (int64, error) { return 0, typeErrorf("unhashable type: 'slice'") }

// compareSequences orders a and b lexicographically by their first unequal item.
func compareSequences(op CompareOp, a, b []Object) (Object, error) {
	for i := 0; i < len(a) && i < len(b); i++ {
		if Is(a[i], b[i]) {
			continue
		}
		eq, err := Equal(a[i], b[i])
		if err != nil {
			return nil, err
		}
		if eq {
			continue
		}
		switch op {
		case CmpEq:
			return False, nil
		case CmpNe:
			return True, nil
		}
		return RichCompare(a[i], b[i], op)
	}
	return Bool(op.holds(cmpOrdered(int64(len(a)), int64(len(b))))), nil
}

func containsItem(items []Object, item Object) (bool, error) {
	for _, x := range items {
		if Is(x, item) {
			return true, nil
		}
		eq, err := Equal(x, item)
		if err != nil || eq {
			return eq, err
		}
	}
	return false, nil
}

func indexOf(items []Object, item Object) (int, error) {
	for i, x := range items {
		eq := Is(x, item)
		if !eq {
			var err error
			if eq, err = Equal(x, item); err != nil {
				return -1, err
			}
		}
		if eq {
			return i, nil
		}
	}
	return -1, nil
}

func countOf(items []Object, item Object) (Object, error) {
	n := 0
	for _, x := range items {
		eq := Is(x, item)
		if !eq {
			var err error
			if eq, err = Equal(x, item); err != nil {
				return nil, err
			}
		}
		if eq {
			n++
		}
	}
	return Int(n), nil
}

// maxSequenceLen bounds sequences built by repetition.
const maxSequenceLen = 1 << 24

func repeatItems(items []Object, n Int) ([]Object, error) {
	if n <= 0 || len(items) == 0 {
		return []Object{}, nil
	}
	if int64(n) > maxSequenceLen/int64(len(items)) {
		return nil, overflowErrorf("repeated sequence is too long")
	}
	out := make([]Object, 0, len(items)*int(n))
	for range int(n) {
		out = append(out, items...)
	}
	return out, nil
}

func sequenceIter(name string, items func() []Object) Object {
	i := 0
	return NewIterator(name, func() (Object, bool, error) {
		cur := items()
		if i >= len(cur) {
			return nil, false, nil
		}
		i++
		return cur[i-1], true, nil
	})
}

func (t *Tuple) Type() *Class { return TupleClass }

func (t *Tuple) Repr() (string, error) { return t.ReprNested(&ReprGuard{}) }

func (t *Tuple) ReprNested(g *ReprGuard) (string, error) {
	if !g.enter(t) {
		return "(...)", nil
	}
	defer g.leave(t)
	inner, err := joinReprs(t.Items, g)
	if err != nil {
		return "", err
	}
	if len(t.Items) == 1 {
		return "(" + inner + ",)", nil
	}
	return "(" + inner + ")", nil
}

func (t *Tuple) GetAttr(name string) (Object, error) { return GenericGetAttr(t, nil, name) }

func (t *Tuple) Compare(op CompareOp, other Object) (Object, error) {
	o, ok := other.(*Tuple)
	if !ok {
		return NotImplemented, nil
	}
	return compareSequences(op, t.Items, o.Items)
}

// Hash mixes the item hashes with the xxHash64 round.
func (t *Tuple) Hash() (int64, error) {
	const (
		prime1 = 11400714785074694791
		prime2 = 14029467366897019727
		prime5 = 2870177450012600261
	)
	acc := uint64(prime5)
	for _, item := range t.Items {
		h, err := Hash(item)
		if err != nil {
			return 0, err
		}
		acc += uint64(h) * prime2
		acc = bits.RotateLeft64(acc, 31)
		acc *= prime1
	}
	acc += uint64(len(t.Items)) ^ (prime5 ^ 3527539)
	h := int64(acc >> 1)
	if h == -1 {
		h = -2
	}
	return h, nil
}

func (t *Tuple) Truth() (bool, error) { return len(t.Items) > 0, nil }

func (t *Tuple) Len() (int, error) { return len(t.Items), nil }

func (t *Tuple) GetItem(key Object) (Object, error) {
	if s, ok := key.(*Slice); ok {
		items, err := sliceItems(t.Items, s)
		if err != nil {
			return nil, err
		}
		return NewTuple(items...), nil
	}
	i, err := sequenceIndex(key, len(t.Items), "tuple")
	if err != nil {
		return nil, err
	}
	return t.Items[i], nil
}

func (t *Tuple) Contains(item Object) (bool, error) { return containsItem(t.Items, item) }

func (t *Tuple) Iter() (Object, error) {
	return sequenceIter("tuple_iterator", func() []Object { return t.Items }), nil
}

func (t *Tuple) BinaryOp(op Operator, other Object) (Object, error) {
	switch op {
	case OpAdd:
		if o, ok := other.(*Tuple); ok {
			return NewTuple(slices.Concat(t.Items, o.Items)...), nil
		}
	case OpMul:
		if n, ok := asInt(other); ok {
			items, err := repeatItems(t.Items, n)
			if err != nil {
				return nil, err
			}
			return NewTuple(items...), nil
		}
	}
	return NotImplemented, nil
}

func (t *Tuple) ReflectedOp(op Operator, other Object) (Object, error) {
	if op == OpMul {
		return t.BinaryOp(op, other)
	}
	return NotImplemented, nil
}

func (l *List) Type() *Class { return ListClass }

func (l *List) Repr() (string, error) { return l.ReprNested(&ReprGuard{}) }

func (l *List) ReprNested(g *ReprGuard) (string, error) {
	if !g.enter(l) {
		return "[...]", nil
	}
	defer g.leave(l)
	inner, err := joinReprs(l.Items, g)
	if err != nil {
		return "", err
	}
	return "[" + inner + "]", nil
}

func (l *List) GetAttr(name string) (Object, error) { return GenericGetAttr(l, nil, name) }

func (l *List) Compare(op CompareOp, other Object) (Object, error) {
	o, ok := other.(*List)
	if !ok {
		return NotImplemented, nil
	}
	return compareSequences(op, l.Items, o.Items)
}

func (l *List) Hash() (int64, error) { return 0, typeErrorf("unhashable type: 'list'") }

func (l *List) Truth() (bool, error) { return len(l.Items) > 0, nil }

func (l *List) Len() (int, error) { return len(l.Items), nil }

func (l *List) GetItem(key Object) (Object, error) {
	if s, ok := key.(*Slice); ok {
		items, err := sliceItems(l.Items, s)
		if err != nil {
			return nil, err
		}
		return NewList(items...), nil
	}
	i, err := sequenceIndex(key, len(l.Items), "list")
	if err != nil {
		return nil, err
	}
	return l.Items[i], nil
}

func (l *List) SetItem(key, value Object) error {
	s, ok := key.(*Slice)
	if !ok {
		i, err := sequenceIndex(key, len(l.Items), "list assignment")
		if err != nil {
			return err
		}
		l.Items[i] = value
		return nil
	}
	values, err := Collect(value)
	if err != nil {
		if errors.Is(err, ErrType) {
			return typeErrorf("can only assign an iterable")
		}
		return err
	}
	start, stop, step, err := s.Indices(len(l.Items))
	if err != nil {
		return err
	}
	if step == 1 {
		if stop < start {
			stop = start
		}
		l.Items = slices.Concat(l.Items[:start:start], values, l.Items[stop:])
		return nil
	}
	idx := sliceRange(start, stop, step)
	if len(idx) != len(values) {
		return valueErrorf("attempt to assign sequence of size %d to extended slice of size %d", len(values), len(idx))
	}
	for j, i := range idx {
		l.Items[i] = values[j]
	}
	return nil
}

func (l *List) DelItem(key Object) error {
	s, ok := key.(*Slice)
	if !ok {
		i, err := sequenceIndex(key, len(l.Items), "list assignment")
		if err != nil {
			return err
		}
		l.Items = slices.Delete(l.Items, i, i+1)
		return nil
	}
	start, stop, step, err := s.Indices(len(l.Items))
	if err != nil {
		return err
	}
	drop := make(map[int]bool)
	for _, i := range sliceRange(start, stop, step) {
		drop[i] = true
	}
	kept := make([]Object, 0, len(l.Items)-len(drop))
	for i, item := range l.Items {
		if !drop[i] {
			kept = append(kept, item)
		}
	}
	l.Items = kept
	return nil
}

func (l *List) Contains(item Object) (bool, error) { return containsItem(l.Items, item) }

func (l *List) Iter() (Object, error) {
	return sequenceIter("list_iterator", func() []Object { return l.Items }), nil
}

func (l *List) Reversed() (Object, error) {
	i := len(l.Items)
	return NewIterator("list_reverseiterator", func() (Object, bool, error) {
		if i > len(l.Items) {
			i = len(l.Items)
		}
		if i <= 0 {
			return nil, false, nil
		}
		i--
		return l.Items[i], true, nil
	}), nil
}

func (l *List) BinaryOp(op Operator, other Object) (Object, error) {
	switch op {
	case OpAdd:
		o, ok := other.(*List)
		if !ok {
			return NotImplemented, nil
		}
		return NewList(slices.Concat(l.Items, o.Items)...), nil
	case OpMul:
		if n, ok := asInt(other); ok {
			items, err := repeatItems(l.Items, n)
			if err != nil {
				return nil, err
			}
			return NewList(items...), nil
		}
	}
	return NotImplemented, nil
}

func (l *List) ReflectedOp(op Operator, other Object) (Object, error) {
	if op == OpMul {
		return l.BinaryOp(op, other)
	}
	return NotImplemented, nil
}

// InPlaceOp extends or repeats l in place and returns l itself.
func (l *List) InPlaceOp(op Operator, other Object) (Object, error) {
	switch op {
	case OpAdd:
		items, err := Collect(other)
		if err != nil {
			return nil, err
		}
		l.Items = append(l.Items, items...)
		return l, nil
	case OpMul:
		n, ok := asInt(other)
		if !ok {
			return NotImplemented, nil
		}
		items, err := repeatItems(l.Items, n)
		if err != nil {
			return nil, err
		}
		l.Items = items
		return l, nil
	}
	return NotImplemented, nil
}

// Sort orders l in place, stably, comparing key(item) when key is not None.
func (l *List) Sort(key Object, reverse bool) error {
	keys := slices.Clone(l.Items)
	if key != nil && key != None {
		for i, item := range l.Items {
			k, err := Call(key, []Object{item}, nil)
			if err != nil {
				return err
			}
			keys[i] = k
		}
	}
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	var sortErr error
	slices.SortStableFunc(order, func(a, b int) int {
		if sortErr != nil {
			return 0
		}
		c, err := Cmp(keys[a], keys[b])
		if err != nil {
			sortErr = err
			return 0
		}
		if reverse {
			return -c
		}
		return c
	})
	if sortErr != nil {
		return sortErr
	}
	sorted := make([]Object, len(order))
	for i, j := range order {
		sorted[i] = l.Items[j]
	}
	l.Items = sorted
	return nil
}

func init() {
	defineMethod(TupleClass, "index", 1, 1, func(t *Tuple, args []Object) (Object, error) {
		i, err := indexOf(t.Items, args[0])
		if err != nil {
			return nil, err
		}
		if i < 0 {
			return nil, valueErrorf("tuple.index(x): x not in tuple")
		}
		return Int(i), nil
	})
	defineMethod(TupleClass, "count", 1, 1, func(t *Tuple, args []Object) (Object, error) {
		return countOf(t.Items, args[0])
	})

	defineMethod(ListClass, "append", 1, 1, func(l *List, args []Object) (Object, error) {
		l.Items = append(l.Items, args[0])
		return None, nil
	})
	defineMethod(ListClass, "extend", 1, 1, func(l *List, args []Object) (Object, error) {
		items, err := Collect(args[0])
		if err != nil {
			return nil, err
		}
		l.Items = append(l.Items, items...)
		return None, nil
	})
	defineMethod(ListClass, "insert", 2, 2, func(l *List, args []Object) (Object, error) {
		n, err := Index(args[0])
		if err != nil {
			return nil, err
		}
		i := int(n)
		if i < 0 {
			i = max(i+len(l.Items), 0)
		}
		i = min(i, len(l.Items))
		l.Items = slices.Insert(l.Items, i, args[1])
		return None, nil
	})
	defineMethod(ListClass, "pop", 0, 1, func(l *List, args []Object) (Object, error) {
		if len(l.Items) == 0 {
			return nil, indexErrorf("pop from empty list")
		}
		i := len(l.Items) - 1
		if len(args) > 0 {
			var err error
			if i, err = sequenceIndex(args[0], len(l.Items), "pop"); err != nil {
				return nil, err
			}
		}
		item := l.Items[i]
		l.Items = slices.Delete(l.Items, i, i+1)
		return item, nil
	})
	defineMethod(ListClass, "remove", 1, 1, func(l *List, args []Object) (Object, error) {
		i, err := indexOf(l.Items, args[0])
		if err != nil {
			return nil, err
		}
		if i < 0 {
			return nil, valueErrorf("list.remove(x): x not in list")
		}
		l.Items = slices.Delete(l.Items, i, i+1)
		return None, nil
	})
	defineMethod(ListClass, "index", 1, 1, func(l *List, args []Object) (Object, error) {
		i, err := indexOf(l.Items, args[0])
		if err != nil {
			return nil, err
		}
		if i < 0 {
			r, _ := Repr(args[0])
			return nil, valueErrorf("%s is not in list", r)
		}
		return Int(i), nil
	})
	defineMethod(ListClass, "count", 1, 1, func(l *List, args []Object) (Object, error) {
		return countOf(l.Items, args[0])
	})
	defineMethod(ListClass, "reverse", 0, 0, func(l *List, _ []Object) (Object, error) {
		slices.Reverse(l.Items)
		return None, nil
	})
	defineMethod(ListClass, "clear", 0, 0, func(l *List, _ []Object) (Object, error) {
		l.Items = []Object{}
		return None, nil
	})
	defineMethod(ListClass, "copy", 0, 0, func(l *List, _ []Object) (Object, error) {
		return NewList(slices.Clone(l.Items)...), nil
	})
	ListClass.Dict["sort"] = NewFunc("sort", func(args []Object, kwargs map[string]Object) (Object, error) {
		if len(args) != 1 {
			return nil, typeErrorf("sort() takes no positional arguments")
		}
		l, ok := args[0].(*List)
		if !ok {
			return nil, typeErrorf("descriptor 'sort' for 'list' objects doesn't apply to a '%s' object", TypeName(args[0]))
		}
		var key Object = None
		reverse := false
		for name, v := range kwargs {
			switch name {
			case "key":
				key = v
			case "reverse":
				r, err := Truth(v)
				if err != nil {
					return nil, err
				}
				reverse = r
			default:
				return nil, typeErrorf("'%s' is an invalid keyword argument for sort()", name)
			}
		}
		return None, l.Sort(key, reverse)
	})
}

func newTuple(_ *Class, args []Object, kwargs map[string]Object) (Object, error) {
	if err := checkArity("tuple", args, kwargs, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return NewTuple(), nil
	}
	if t, ok := args[0].(*Tuple); ok {
		return t, nil
	}
	items, err := Collect(args[0])
	if err != nil {
		return nil, err
	}
	return NewTuple(items...), nil
}

func newList(_ *Class, args []Object, kwargs map[string]Object) (Object, error) {
	if err := checkArity("list", args, kwargs, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return NewList(), nil
	}
	items, err := Collect(args[0])
	if err != nil {
		return nil, err
	}
	return NewList(items...), nil
}

func newSlice(_ *Class, args []Object, kwargs map[string]Object) (Object, error) {
	if err := checkArity("slice", args, kwargs, 1, 3); err != nil {
		return nil, err
	}
	switch len(args) {
	case 1:
		return NewSlice(None, args[0], None), nil
	case 2:
		return NewSlice(args[0], args[1], None), nil
	}
	return NewSlice(args[0], args[1], args[2]), nil
}
