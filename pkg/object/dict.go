package object

import (
	"errors"
	"slices"
	"strings"
)

type dictEntry struct {
	key   Object
	value Object
	hash  int64
}

// Dict is a mutable mapping that keeps insertion order. Keys must be hashable.
type Dict struct {
	entries []*dictEntry
	buckets map[int64][]*dictEntry
}

// NewDict creates an empty dict.
func NewDict() *Dict {
	return &Dict{buckets: map[int64][]*dictEntry{}}
}

func (d *Dict) lookup(key Object) (*dictEntry, int64, error) {
	h, err := Hash(key)
	if err != nil {
		return nil, 0, err
	}
	for _, e := range d.buckets[h] {
		if Is(e.key, key) {
			return e, h, nil
		}
		eq, err := Equal(e.key, key)
		if err != nil {
			return nil, 0, err
		}
		if eq {
			return e, h, nil
		}
	}
	return nil, h, nil
}

// Get returns the value stored under key.
func (d *Dict) Get(key Object) (Object, bool, error) {
	e, _, err := d.lookup(key)
	if err != nil || e == nil {
		return nil, false, err
	}
	return e.value, true, nil
}

// Set stores value under key, keeping the original position of an existing key.
func (d *Dict) Set(key, value Object) error {
	e, h, err := d.lookup(key)
	if err != nil {
		return err
	}
	if e != nil {
		e.value = value
		return nil
	}
	e = &dictEntry{key: key, value: value, hash: h}
	d.entries = append(d.entries, e)
	d.buckets[h] = append(d.buckets[h], e)
	return nil
}

// Delete removes key, failing with ErrKey when it is absent.
func (d *Dict) Delete(key Object) error {
	e, h, err := d.lookup(key)
	if err != nil {
		return err
	}
	if e == nil {
		return keyError(key)
	}
	d.removeEntry(e, h)
	return nil
}

func (d *Dict) removeEntry(e *dictEntry, h int64) {
	d.entries = slices.DeleteFunc(d.entries, func(x *dictEntry) bool { return x == e })
	bucket := slices.DeleteFunc(d.buckets[h], func(x *dictEntry) bool { return x == e })
	if len(bucket) == 0 {
		delete(d.buckets, h)
	} else {
		d.buckets[h] = bucket
	}
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []Object {
	keys := make([]Object, len(d.entries))
	for i, e := range d.entries {
		keys[i] = e.key
	}
	return keys
}

// Values returns the values in insertion order.
func (d *Dict) Values() []Object {
	values := make([]Object, len(d.entries))
	for i, e := range d.entries {
		values[i] = e.value
	}
	return values
}

func (d *Dict) items() []Object {
	items := make([]Object, len(d.entries))
	for i, e := range d.entries {
		items[i] = NewTuple(e.key, e.value)
	}
	return items
}

func (d *Dict) copy() *Dict {
	c := NewDict()
	for _, e := range d.entries {
		ce := &dictEntry{key: e.key, value: e.value, hash: e.hash}
		c.entries = append(c.entries, ce)
		c.buckets[e.hash] = append(c.buckets[e.hash], ce)
	}
	return c
}

// update merges other into d. other is a dict, an object with keys() and
// item access, or an iterable of key/value pairs.
func (d *Dict) update(other Object) error {
	if o, ok := other.(*Dict); ok {
		for _, e := range slices.Clone(o.entries) {
			if err := d.Set(e.key, e.value); err != nil {
				return err
			}
		}
		return nil
	}
	if keysFn, err := GetAttr(other, "keys"); err == nil {
		keys, err := Call(keysFn, nil, nil)
		if err != nil {
			return err
		}
		ks, err := Collect(keys)
		if err != nil {
			return err
		}
		for _, k := range ks {
			v, err := GetItem(other, k)
			if err != nil {
				return err
			}
			if err := d.Set(k, v); err != nil {
				return err
			}
		}
		return nil
	} else if !errors.Is(err, ErrAttribute) {
		return err
	}
	pairs, err := Collect(other)
	if err != nil {
		return err
	}
	for i, p := range pairs {
		kv, err := Collect(p)
		if err != nil {
			return typeErrorf("cannot convert dictionary update sequence element #%d to a sequence", i)
		}
		if len(kv) != 2 {
			return valueErrorf("dictionary update sequence element #%d has length %d; 2 is required", i, len(kv))
		}
		if err := d.Set(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dict) Type() *Class { return DictClass }

func (d *Dict) Repr() (string, error) { return d.ReprNested(&ReprGuard{}) }

func (d *Dict) ReprNested(g *ReprGuard) (string, error) {
	if !g.enter(d) {
		return "{...}", nil
	}
	defer g.leave(d)
	parts := make([]string, len(d.entries))
	for i, e := range d.entries {
		k, err := ReprNested(e.key, g)
		if err != nil {
			return "", err
		}
		v, err := ReprNested(e.value, g)
		if err != nil {
			return "", err
		}
		parts[i] = k + ": " + v
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

func (d *Dict) GetAttr(name string) (Object, error) { return GenericGetAttr(d, nil, name) }

func (d *Dict) Compare(op CompareOp, other Object) (Object, error) {
	o, ok := other.(*Dict)
	if !ok || (op != CmpEq && op != CmpNe) {
		return NotImplemented, nil
	}
	eq, err := d.equal(o)
	if err != nil {
		return nil, err
	}
	return Bool(eq == (op == CmpEq)), nil
}

func (d *Dict) equal(o *Dict) (bool, error) {
	if len(d.entries) != len(o.entries) {
		return false, nil
	}
	for _, e := range d.entries {
		v, found, err := o.Get(e.key)
		if err != nil || !found {
			return false, err
		}
		if Is(v, e.value) {
			continue
		}
		eq, err := Equal(e.value, v)
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

func (d *Dict) Hash() (int64, error) { return 0, typeErrorf("unhashable type: 'dict'") }

func (d *Dict) Truth() (bool, error) { return len(d.entries) > 0, nil }

func (d *Dict) Len() (int, error) { return len(d.entries), nil }

func (d *Dict) GetItem(key Object) (Object, error) {
	v, found, err := d.Get(key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, keyError(key)
	}
	return v, nil
}

func (d *Dict) SetItem(key, value Object) error { return d.Set(key, value) }

func (d *Dict) DelItem(key Object) error { return d.Delete(key) }

func (d *Dict) Contains(item Object) (bool, error) {
	_, found, err := d.Get(item)
	return found, err
}

func (d *Dict) Iter() (Object, error) {
	keys := d.Keys()
	size := len(d.entries)
	i := 0
	return NewIterator("dict_keyiterator", func() (Object, bool, error) {
		if len(d.entries) != size {
			return nil, false, valueErrorf("dictionary changed size during iteration")
		}
		if i >= len(keys) {
			return nil, false, nil
		}
		i++
		return keys[i-1], true, nil
	}), nil
}

func (d *Dict) Reversed() (Object, error) {
	keys := d.Keys()
	slices.Reverse(keys)
	return sequenceIter("dict_reversekeyiterator", func() []Object { return keys }), nil
}

func (d *Dict) BinaryOp(op Operator, other Object) (Object, error) {
	o, ok := other.(*Dict)
	if !ok || op != OpOr {
		return NotImplemented, nil
	}
	merged := d.copy()
	if err := merged.update(o); err != nil {
		return nil, err
	}
	return merged, nil
}

func (d *Dict) ReflectedOp(Operator, Object) (Object, error) { return NotImplemented, nil }

// InPlaceOp implements |= and returns d itself.
func (d *Dict) InPlaceOp(op Operator, other Object) (Object, error) {
	if op != OpOr {
		return NotImplemented, nil
	}
	if err := d.update(other); err != nil {
		return nil, err
	}
	return d, nil
}

func init() {
	defineMethod(DictClass, "get", 1, 2, func(d *Dict, args []Object) (Object, error) {
		v, found, err := d.Get(args[0])
		if err != nil {
			return nil, err
		}
		if found {
			return v, nil
		}
		if len(args) > 1 {
			return args[1], nil
		}
		return None, nil
	})
	defineMethod(DictClass, "keys", 0, 0, func(d *Dict, _ []Object) (Object, error) {
		return NewList(d.Keys()...), nil
	})
	defineMethod(DictClass, "values", 0, 0, func(d *Dict, _ []Object) (Object, error) {
		return NewList(d.Values()...), nil
	})
	defineMethod(DictClass, "items", 0, 0, func(d *Dict, _ []Object) (Object, error) {
		return NewList(d.items()...), nil
	})
	defineMethod(DictClass, "pop", 1, 2, func(d *Dict, args []Object) (Object, error) {
		e, h, err := d.lookup(args[0])
		if err != nil {
			return nil, err
		}
		if e == nil {
			if len(args) > 1 {
				return args[1], nil
			}
			return nil, keyError(args[0])
		}
		d.removeEntry(e, h)
		return e.value, nil
	})
	defineMethod(DictClass, "setdefault", 1, 2, func(d *Dict, args []Object) (Object, error) {
		v, found, err := d.Get(args[0])
		if err != nil || found {
			return v, err
		}
		dflt := None
		if len(args) > 1 {
			dflt = args[1]
		}
		return dflt, d.Set(args[0], dflt)
	})
	defineMethod(DictClass, "update", 0, 1, func(d *Dict, args []Object) (Object, error) {
		if len(args) == 0 {
			return None, nil
		}
		return None, d.update(args[0])
	})
	defineMethod(DictClass, "clear", 0, 0, func(d *Dict, _ []Object) (Object, error) {
		d.entries = nil
		d.buckets = map[int64][]*dictEntry{}
		return None, nil
	})
	defineMethod(DictClass, "copy", 0, 0, func(d *Dict, _ []Object) (Object, error) {
		return d.copy(), nil
	})
}

func newDict(_ *Class, args []Object, kwargs map[string]Object) (Object, error) {
	if len(args) > 1 {
		return nil, typeErrorf("dict expected at most 1 argument, got %d", len(args))
	}
	d := NewDict()
	if len(args) == 1 {
		if err := d.update(args[0]); err != nil {
			return nil, err
		}
	}
	for _, k := range sortedDictKeys(kwargs) {
		if err := d.Set(Str(k), kwargs[k]); err != nil {
			return nil, err
		}
	}
	return d, nil
}
