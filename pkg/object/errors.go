package object

import (
	"errors"
	"fmt"
)

var (
	// ErrAttribute indicates a missing, read-only or unbound member.
	ErrAttribute = errors.New("attribute error")
	// ErrType indicates an operation applied to a value of the wrong type.
	ErrType = errors.New("type error")
	// ErrValue indicates a value of the right type but an unusable content.
	ErrValue = errors.New("value error")
	// ErrKey indicates a mapping key that is not present.
	ErrKey = errors.New("key error")
	// ErrIndex indicates a sequence index out of range.
	ErrIndex = errors.New("index error")
	// ErrZeroDivision indicates division or modulo by zero.
	ErrZeroDivision = errors.New("zero division error")
	// ErrOverflow indicates an integer result outside the int64 range.
	ErrOverflow = errors.New("overflow error")
	// ErrStopIteration is returned unwrapped by Next when an iterator is exhausted.
	ErrStopIteration = errors.New("stop iteration")
)

func attributeError(o Object, name string) error {
	if c, ok := o.(*Class); ok {
		return fmt.Errorf("%w: type object '%s' has no attribute '%s'", ErrAttribute, c.Name, name)
	}
	return fmt.Errorf("%w: '%s' object has no attribute '%s'", ErrAttribute, TypeName(o), name)
}

func typeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrType}, args...)...)
}

func valueErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValue}, args...)...)
}

func indexErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrIndex}, args...)...)
}

func keyError(key Object) error {
	r, err := Repr(key)
	if err != nil {
		r = TypeName(key)
	}
	return fmt.Errorf("%w: %s", ErrKey, r)
}

func overflowError() error {
	return fmt.Errorf("%w: integer result does not fit in 64 bits", ErrOverflow)
}

func overflowErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrOverflow}, args...)...)
}

func zeroDivisionError(what string) error {
	return fmt.Errorf("%w: %s", ErrZeroDivision, what)
}
