// Package object implements the dynamic value model that proxies forward to.
//
// Every value is an Object: something with a class. What a value can do is
// expressed through small capability interfaces (AttrGetter, RichComparer,
// BinaryOperand, Iterable, ...). The package-level protocol functions
// (GetAttr, Binary, InPlace, RichCompare, Hash, Iter, Next, IsInstance, ...)
// are the single entry points callers use; they pick the capability a value
// implements and apply the fallback rules of the protocol:
//
//	Binary      left.BinaryOp, then right.ReflectedOp, then a type error
//	InPlace     left.InPlaceOp, then Binary
//	RichCompare left.Compare, then right.Compare with the mirrored operator,
//	            then identity for == and !=
//	Truth       Truther, then Lengther, then true
//	Iter        Iterable, then the indexed sequence protocol
//
// Binary operators are driven by one declarative table (see Operator), so
// the forward, reflected and in-place forms of every operator share the same
// dispatch code.
//
// Errors are package sentinels (ErrAttribute, ErrType, ErrStopIteration, ...)
// wrapped with a message; match them with errors.Is.
package object
