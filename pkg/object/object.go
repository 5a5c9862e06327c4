package object

import (
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Object is any value of the model. Its class drives attribute lookup and
// type-relationship queries.
type Object interface {
	Type() *Class
}

// Attribute access.
type (
	// AttrGetter resolves a member by name.
	AttrGetter interface {
		GetAttr(name string) (Object, error)
	}
	// AttrSetter assigns a member by name.
	AttrSetter interface {
		SetAttr(name string, value Object) error
	}
	// AttrDeleter removes a member by name.
	AttrDeleter interface {
		DelAttr(name string) error
	}
	// Direr enumerates member names.
	Direr interface {
		Dir() ([]string, error)
	}
)

// Descriptors are class members that compute a value when accessed through an
// instance. None is passed as instance for access through the class itself.
type (
	DescriptorGetter interface {
		DescGet(instance, owner Object) (Object, error)
	}
	DescriptorSetter interface {
		DescSet(instance, value Object) error
	}
	DescriptorDeleter interface {
		DescDelete(instance Object) error
	}
)

// Representation.
type (
	Reprer interface {
		Repr() (string, error)
	}
	// NestedReprer renders a value that may contain itself, sharing the
	// guard of the enclosing repr call.
	NestedReprer interface {
		ReprNested(g *ReprGuard) (string, error)
	}
	Strer interface {
		Str() (string, error)
	}
	// Formatter renders the value for a format specification such as "+" or ">8.2f".
	Formatter interface {
		FormatSpec(spec string) (string, error)
	}
)

// RichComparer implements one comparison operator. Returning NotImplemented
// lets the other operand try the mirrored operator.
type RichComparer interface {
	Compare(op CompareOp, other Object) (Object, error)
}

// ThreeWayComparer returns a negative, zero or positive ordering against other.
type ThreeWayComparer interface {
	Cmp(other Object) (int, error)
}

// Hasher returns a hash consistent with the value's equality.
type Hasher interface {
	Hash() (int64, error)
}

// Truther computes the truth value.
type Truther interface {
	Truth() (bool, error)
}

// TypeLike is implemented by values that can stand in the class position of
// instance-of and subclass-of queries.
type TypeLike interface {
	InstanceCheck(instance Object) (bool, error)
	SubclassCheck(candidate Object) (bool, error)
}

// Caller is invoked with positional and keyword arguments.
type Caller interface {
	Call(args []Object, kwargs map[string]Object) (Object, error)
}

// Container protocol.
type (
	Lengther interface {
		Len() (int, error)
	}
	ItemGetter interface {
		GetItem(key Object) (Object, error)
	}
	ItemSetter interface {
		SetItem(key, value Object) error
	}
	ItemDeleter interface {
		DelItem(key Object) error
	}
	Container interface {
		Contains(item Object) (bool, error)
	}
)

// Iteration protocol. Next returns ErrStopIteration, unwrapped, on exhaustion.
type (
	Iterable interface {
		Iter() (Object, error)
	}
	Iterator interface {
		Next() (Object, error)
	}
	Reversible interface {
		Reversed() (Object, error)
	}
)

// Numeric protocol. Binary and in-place methods return NotImplemented for
// operand types they do not handle.
type (
	BinaryOperand interface {
		// BinaryOp computes self op other.
		BinaryOp(op Operator, other Object) (Object, error)
		// ReflectedOp computes other op self.
		ReflectedOp(op Operator, other Object) (Object, error)
	}
	InPlaceOperand interface {
		InPlaceOp(op Operator, other Object) (Object, error)
	}
	UnaryOperand interface {
		UnaryOp(op UnaryOperator) (Object, error)
	}
	TernaryPowerer interface {
		PowMod(exp, mod Object) (Object, error)
	}
	IntConverter interface {
		AsInt() (Object, error)
	}
	FloatConverter interface {
		AsFloat() (Object, error)
	}
	ComplexConverter interface {
		AsComplex() (Object, error)
	}
	Indexer interface {
		Index() (Int, error)
	}
	// Rounder rounds to ndigits decimal places; ndigits is nil when omitted.
	Rounder interface {
		Round(ndigits Object) (Object, error)
	}
)

// NoneType is the type of None.
type NoneType struct{}

// None is the absent value.
var None Object = NoneType{}

func (NoneType) Type() *Class { return NoneClass }
func (NoneType) Repr() (string, error) { return "None", nil }
func (NoneType) Truth() (bool, error) { return false, nil }
func (NoneType) Hash() (int64, error) { return 0x5f3759df, nil }
func (NoneType) String() string { return "None" }

type notImplementedType struct{}

// NotImplemented is returned by binary and comparison methods to hand the
// operation to the other operand.
var NotImplemented Object = notImplementedType{}

func (notImplementedType) Type() *Class { return NotImplementedClass }
func (notImplementedType) Repr() (string, error) { return "NotImplemented", nil }

// TypeName is the class name of o, used in error messages.
func TypeName(o Object) string {
	if o == nil {
		return "nil"
	}
	return o.Type().Name
}

// Is reports whether a and b are the same object.
func Is(a, b Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if !ta.Comparable() {
		return ID(a) == ID(b)
	}
	return a == b
}

// ID returns an identity for o. Reference values are identified by address,
// plain values by their content.
func ID(o Object) uint64 {
	v := reflect.ValueOf(o)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return uint64(v.Pointer())
	}
	return xxhash.Sum64String(fmt.Sprintf("%T:%v", o, o))
}

func defaultRepr(o Object) string {
	return fmt.Sprintf("<%s object at %#x>", TypeName(o), ID(o))
}
