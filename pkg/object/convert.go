package object

import (
	"strconv"
	"strings"
)

// ToInt converts o to an Int, truncating floats toward zero.
func ToInt(o Object) (Object, error) {
	switch v := o.(type) {
	case IntConverter:
		r, err := v.AsInt()
		if err != nil {
			return nil, err
		}
		if n, ok := asInt(r); ok {
			return n, nil
		}
		return nil, typeErrorf("__int__ returned non-int (type %s)", TypeName(r))
	case Indexer:
		return v.Index()
	}
	return nil, typeErrorf("int() argument must be a string, a bytes-like object or a real number, not '%s'", TypeName(o))
}

// ToFloat converts o to a Float.
func ToFloat(o Object) (Object, error) {
	switch v := o.(type) {
	case FloatConverter:
		r, err := v.AsFloat()
		if err != nil {
			return nil, err
		}
		if f, ok := r.(Float); ok {
			return f, nil
		}
		return nil, typeErrorf("__float__ returned non-float (type %s)", TypeName(r))
	case Indexer:
		n, err := v.Index()
		if err != nil {
			return nil, err
		}
		return Float(n), nil
	}
	return nil, typeErrorf("float() argument must be a string or a real number, not '%s'", TypeName(o))
}

func complexPartOf(o Object, position string) (complex128, error) {
	switch v := o.(type) {
	case ComplexConverter:
		r, err := v.AsComplex()
		if err != nil {
			return 0, err
		}
		c, ok := r.(Complex)
		if !ok {
			return 0, typeErrorf("__complex__ returned non-complex (type %s)", TypeName(r))
		}
		return complex128(c), nil
	case FloatConverter, Indexer:
		f, err := ToFloat(o)
		if err != nil {
			return 0, err
		}
		return complex(float64(f.(Float)), 0), nil
	}
	return 0, typeErrorf("complex() %s argument must be a string or a number, not '%s'", position, TypeName(o))
}

// ToComplex builds re + im*1j; im may be nil.
func ToComplex(reObj, imObj Object) (Object, error) {
	re, err := complexPartOf(reObj, "first")
	if err != nil {
		return nil, err
	}
	if imObj == nil {
		return Complex(re), nil
	}
	im, err := complexPartOf(imObj, "second")
	if err != nil {
		return nil, err
	}
	return Complex(re + im*1i), nil
}

// Index converts o to an Int without loss, as required for sequence indices.
func Index(o Object) (Int, error) {
	i, ok := o.(Indexer)
	if !ok {
		return 0, typeErrorf("'%s' object cannot be interpreted as an integer", TypeName(o))
	}
	return i.Index()
}

// Round rounds o to ndigits decimal places; nil ndigits means omitted.
func Round(o, ndigits Object) (Object, error) {
	r, ok := o.(Rounder)
	if !ok {
		return nil, typeErrorf("type %s doesn't define __round__ method", TypeName(o))
	}
	return r.Round(ndigits)
}

func radix(o Object, base int, prefix string) (string, error) {
	n, err := Index(o)
	if err != nil {
		return "", err
	}
	s := strconv.FormatInt(int64(n), base)
	if neg, ok := strings.CutPrefix(s, "-"); ok {
		return "-" + prefix + neg, nil
	}
	return prefix + s, nil
}

// Hex renders an integer in base 16 with a 0x prefix.
func Hex(o Object) (string, error) { return radix(o, 16, "0x") }

// Oct renders an integer in base 8 with a 0o prefix.
func Oct(o Object) (string, error) { return radix(o, 8, "0o") }

// Bin renders an integer in base 2 with a 0b prefix.
func Bin(o Object) (string, error) { return radix(o, 2, "0b") }
