package object

import (
	"errors"
)

// Repr is the developer representation of o.
func Repr(o Object) (string, error) {
	if r, ok := o.(Reprer); ok {
		return r.Repr()
	}
	return defaultRepr(o), nil
}

// ToStr is the readable string form of o, falling back to Repr.
func ToStr(o Object) (string, error) {
	if s, ok := o.(Strer); ok {
		return s.Str()
	}
	return Repr(o)
}

// Format renders o according to a format specification.
func Format(o Object, spec string) (string, error) {
	if f, ok := o.(Formatter); ok {
		return f.FormatSpec(spec)
	}
	if spec != "" {
		return "", typeErrorf("unsupported format string passed to %s.__format__", TypeName(o))
	}
	return ToStr(o)
}

// RichCompare evaluates a op b: a's comparison first, then b's mirrored
// comparison. == and != fall back to identity; ordering fails with ErrType.
func RichCompare(a, b Object, op CompareOp) (Object, error) {
	if c, ok := a.(RichComparer); ok {
		r, err := c.Compare(op, b)
		if err != nil {
			return nil, err
		}
		if r != NotImplemented {
			return r, nil
		}
	}
	if c, ok := b.(RichComparer); ok {
		r, err := c.Compare(op.Mirrored(), a)
		if err != nil {
			return nil, err
		}
		if r != NotImplemented {
			return r, nil
		}
	}
	switch op {
	case CmpEq:
		return Bool(Is(a, b)), nil
	case CmpNe:
		return Bool(!Is(a, b)), nil
	}
	return nil, typeErrorf("'%s' not supported between instances of '%s' and '%s'", op.Symbol(), TypeName(a), TypeName(b))
}

// CompareBool evaluates a op b and takes the truth value of the result.
func CompareBool(a, b Object, op CompareOp) (bool, error) {
	r, err := RichCompare(a, b, op)
	if err != nil {
		return false, err
	}
	return Truth(r)
}

// Equal reports whether a == b.
func Equal(a, b Object) (bool, error) { return CompareBool(a, b, CmpEq) }

// Cmp returns a negative, zero or positive ordering of a against b. Values
// without a three-way comparison are ordered with <.
func Cmp(a, b Object) (int, error) {
	if c, ok := a.(ThreeWayComparer); ok {
		return c.Cmp(b)
	}
	lt, err := CompareBool(a, b, CmpLt)
	if err != nil || lt {
		return -1, err
	}
	gt, err := CompareBool(b, a, CmpLt)
	if err != nil || gt {
		return 1, err
	}
	return 0, nil
}

// Hash returns the hash of o. Values without a Hash method hash by identity.
func Hash(o Object) (int64, error) {
	if h, ok := o.(Hasher); ok {
		return h.Hash()
	}
	return int64(ID(o) >> 4), nil
}

// Truth is the truth value of o: Truth if defined, else non-zero length, else true.
func Truth(o Object) (bool, error) {
	switch v := o.(type) {
	case Truther:
		return v.Truth()
	case Lengther:
		n, err := v.Len()
		return n != 0, err
	}
	return true, nil
}

// Call invokes o.
func Call(o Object, args []Object, kwargs map[string]Object) (Object, error) {
	c, ok := o.(Caller)
	if !ok {
		return nil, typeErrorf("'%s' object is not callable", TypeName(o))
	}
	return c.Call(args, kwargs)
}

// Len returns the length of o.
func Len(o Object) (int, error) {
	l, ok := o.(Lengther)
	if !ok {
		return 0, typeErrorf("object of type '%s' has no len()", TypeName(o))
	}
	return l.Len()
}

// GetItem evaluates o[key].
func GetItem(o, key Object) (Object, error) {
	g, ok := o.(ItemGetter)
	if !ok {
		return nil, typeErrorf("'%s' object is not subscriptable", TypeName(o))
	}
	return g.GetItem(key)
}

// SetItem evaluates o[key] = value.
func SetItem(o, key, value Object) error {
	s, ok := o.(ItemSetter)
	if !ok {
		return typeErrorf("'%s' object does not support item assignment", TypeName(o))
	}
	return s.SetItem(key, value)
}

// DelItem evaluates del o[key].
func DelItem(o, key Object) error {
	d, ok := o.(ItemDeleter)
	if !ok {
		return typeErrorf("'%s' object does not support item deletion", TypeName(o))
	}
	return d.DelItem(key)
}

// Contains evaluates item in container, iterating when there is no Contains.
func Contains(container, item Object) (bool, error) {
	switch c := container.(type) {
	case Container:
		return c.Contains(item)
	case Iterable, ItemGetter:
		return ContainsByIteration(container, item)
	}
	return false, typeErrorf("argument of type '%s' is not iterable", TypeName(container))
}

// Iter returns an iterator over o. Values with GetItem but no Iter are
// iterated by index.
func Iter(o Object) (Object, error) {
	switch v := o.(type) {
	case Iterable:
		it, err := v.Iter()
		if err != nil {
			return nil, err
		}
		if _, ok := it.(Iterator); !ok {
			return nil, typeErrorf("iter() returned non-iterator of type '%s'", TypeName(it))
		}
		return it, nil
	case ItemGetter:
		return newSequenceIterator(o), nil
	}
	return nil, typeErrorf("'%s' object is not iterable", TypeName(o))
}

// Next advances iterator it. Exhaustion is ErrStopIteration, unwrapped.
func Next(it Object) (Object, error) {
	n, ok := it.(Iterator)
	if !ok {
		return nil, typeErrorf("'%s' object is not an iterator", TypeName(it))
	}
	return n.Next()
}

// Reversed returns a reverse iterator over o.
func Reversed(o Object) (Object, error) {
	if r, ok := o.(Reversible); ok {
		return r.Reversed()
	}
	return reversedSequence(o)
}

// Unary applies a unary operator.
func Unary(op UnaryOperator, o Object) (Object, error) {
	u, ok := o.(UnaryOperand)
	if !ok {
		return nil, typeErrorf("bad operand type for %s: '%s'", op.errorSymbol(), TypeName(o))
	}
	return u.UnaryOp(op)
}

// Binary evaluates a op b: a.BinaryOp first, then b.ReflectedOp when the
// operands have different types.
func Binary(op Operator, a, b Object) (Object, error) {
	return binary(op, a, b, op.errorSymbol())
}

func binary(op Operator, a, b Object, symbol string) (Object, error) {
	if x, ok := a.(BinaryOperand); ok {
		r, err := x.BinaryOp(op, b)
		if err != nil {
			return nil, err
		}
		if r != NotImplemented {
			return r, nil
		}
	}
	if y, ok := b.(BinaryOperand); ok && op.HasReflected() && a.Type() != b.Type() {
		r, err := y.ReflectedOp(op, a)
		if err != nil {
			return nil, err
		}
		if r != NotImplemented {
			return r, nil
		}
	}
	return nil, typeErrorf("unsupported operand type(s) for %s: '%s' and '%s'", symbol, TypeName(a), TypeName(b))
}

// InPlace evaluates a op= b and returns the value the left-hand side must be
// rebound to: a.InPlaceOp's result, or the plain binary result.
func InPlace(op Operator, a, b Object) (Object, error) {
	if x, ok := a.(InPlaceOperand); ok && op.HasInPlace() {
		r, err := x.InPlaceOp(op, b)
		if err != nil {
			return nil, err
		}
		if r != NotImplemented {
			return r, nil
		}
	}
	return binary(op, a, b, op.Symbol()+"=")
}

// Pow evaluates pow(base, exp, mod); a nil or None mod is the binary power.
func Pow(base, exp, mod Object) (Object, error) {
	if mod == nil || mod == None {
		return Binary(OpPow, base, exp)
	}
	if p, ok := base.(TernaryPowerer); ok {
		r, err := p.PowMod(exp, mod)
		if err != nil {
			return nil, err
		}
		if r != NotImplemented {
			return r, nil
		}
	}
	if _, ok := toNumber(base); ok {
		if _, ok := toNumber(exp); ok {
			return nil, typeErrorf("pow() 3rd argument not allowed unless all arguments are integers")
		}
	}
	return nil, typeErrorf("unsupported operand type(s) for pow(): '%s', '%s', '%s'", TypeName(base), TypeName(exp), TypeName(mod))
}

// DivMod evaluates divmod(a, b).
func DivMod(a, b Object) (Object, error) { return Binary(OpDivMod, a, b) }

// GetAttr reads member name of o.
func GetAttr(o Object, name string) (Object, error) {
	if g, ok := o.(AttrGetter); ok {
		return g.GetAttr(name)
	}
	return GenericGetAttr(o, nil, name)
}

// SetAttr assigns member name of o.
func SetAttr(o Object, name string, value Object) error {
	if s, ok := o.(AttrSetter); ok {
		return s.SetAttr(name, value)
	}
	return GenericSetAttr(o, nil, name, value)
}

// DelAttr deletes member name of o.
func DelAttr(o Object, name string) error {
	if d, ok := o.(AttrDeleter); ok {
		return d.DelAttr(name)
	}
	return GenericDelAttr(o, nil, name)
}

// HasAttr reports whether reading name succeeds. Errors other than
// ErrAttribute are returned.
func HasAttr(o Object, name string) (bool, error) {
	_, err := GetAttr(o, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrAttribute) {
		return false, nil
	}
	return false, err
}

// Dir lists the member names of o, sorted.
func Dir(o Object) ([]string, error) {
	if d, ok := o.(Direr); ok {
		return d.Dir()
	}
	return o.Type().Dir()
}
