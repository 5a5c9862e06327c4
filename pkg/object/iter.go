package object

import (
	"errors"
	"fmt"
)

// GoIterator adapts a Go function to the iterator protocol. next reports
// false once the sequence is exhausted; after that it is never called again.
type GoIterator struct {
	name string
	next func() (Object, bool, error)
	done bool
}

// NewIterator creates an iterator named name (as shown by repr) over next.
func NewIterator(name string, next func() (Object, bool, error)) *GoIterator {
	return &GoIterator{name: name, next: next}
}

func (it *GoIterator) Type() *Class { return IteratorClass }

func (it *GoIterator) Repr() (string, error) {
	return fmt.Sprintf("<%s object at %#x>", it.name, ID(it)), nil
}

func (it *GoIterator) Iter() (Object, error) { return it, nil }

func (it *GoIterator) Next() (Object, error) {
	if it.done {
		return nil, ErrStopIteration
	}
	v, ok, err := it.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		it.done = true
		return nil, ErrStopIteration
	}
	return v, nil
}

// newSequenceIterator iterates o through GetItem with 0, 1, 2, ... until an
// index or stop error.
func newSequenceIterator(o Object) *GoIterator {
	i := 0
	return NewIterator("iterator", func() (Object, bool, error) {
		v, err := GetItem(o, Int(i))
		if err != nil {
			if errors.Is(err, ErrIndex) || errors.Is(err, ErrStopIteration) {
				return nil, false, nil
			}
			return nil, false, err
		}
		i++
		return v, true, nil
	})
}

// reversedSequence walks o backwards using Len and GetItem.
func reversedSequence(o Object) (Object, error) {
	if _, ok := o.(ItemGetter); !ok {
		return nil, typeErrorf("'%s' object is not reversible", TypeName(o))
	}
	n, err := Len(o)
	if err != nil {
		return nil, typeErrorf("'%s' object is not reversible", TypeName(o))
	}
	i := n
	return NewIterator("reversed", func() (Object, bool, error) {
		if i <= 0 {
			return nil, false, nil
		}
		i--
		v, err := GetItem(o, Int(i))
		if err != nil {
			if errors.Is(err, ErrIndex) {
				return nil, false, nil
			}
			return nil, false, err
		}
		return v, true, nil
	}), nil
}

// ContainsByIteration reports whether iterating o yields a value equal to item.
func ContainsByIteration(o, item Object) (bool, error) {
	found := false
	err := Each(o, func(v Object) (bool, error) {
		if Is(v, item) {
			found = true
			return false, nil
		}
		eq, err := Equal(v, item)
		if err != nil {
			return false, err
		}
		found = eq
		return !eq, nil
	})
	return found, err
}

// Each iterates o, calling fn for every value until fn returns false or an
// error.
func Each(o Object, fn func(Object) (bool, error)) error {
	it, err := Iter(o)
	if err != nil {
		return err
	}
	for {
		v, err := Next(it)
		if errors.Is(err, ErrStopIteration) {
			return nil
		}
		if err != nil {
			return err
		}
		more, err := fn(v)
		if err != nil || !more {
			return err
		}
	}
}

// Collect drains the iteration of o into a slice.
func Collect(o Object) ([]Object, error) {
	switch v := o.(type) {
	case *List:
		return append([]Object(nil), v.Items...), nil
	case *Tuple:
		return append([]Object(nil), v.Items...), nil
	}
	var items []Object
	err := Each(o, func(v Object) (bool, error) {
		items = append(items, v)
		return true, nil
	})
	return items, err
}
