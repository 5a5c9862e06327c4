package object

import (
	"errors"
	"math"
	"math/cmplx"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Float is a double precision number.
type Float float64

// Complex is a pair of double precision numbers.
type Complex complex128

func floatRepr(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func hashFloat(f float64) int64 {
	if math.IsNaN(f) {
		return 0
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		h, _ := Int(int64(f)).Hash()
		return h
	}
	h := int64(xxhash.Sum64(strconv.AppendFloat(nil, f, 'g', -1, 64)) >> 1)
	if h == -1 {
		h = -2
	}
	return h
}

func (f Float) Type() *Class { return FloatClass }

func (f Float) String() string { return floatRepr(float64(f)) }

func (f Float) Repr() (string, error) { return f.String(), nil }

func (f Float) FormatSpec(spec string) (string, error) { return formatFloat(float64(f), spec) }

func (f Float) GetAttr(name string) (Object, error) {
	switch name {
	case "real":
		return f, nil
	case "imag":
		return Float(0), nil
	}
	return GenericGetAttr(f, nil, name)
}

func (f Float) Compare(op CompareOp, other Object) (Object, error) {
	b, ok := toNumber(other)
	if !ok {
		return NotImplemented, nil
	}
	return numericCompare(op, number{kind: kindFloat, f: float64(f)}, b), nil
}

func (f Float) Hash() (int64, error) { return hashFloat(float64(f)), nil }

func (f Float) Truth() (bool, error) { return f != 0, nil }

func (f Float) BinaryOp(op Operator, other Object) (Object, error) {
	b, ok := toNumber(other)
	if !ok {
		return NotImplemented, nil
	}
	return numericBinary(op, number{kind: kindFloat, f: float64(f)}, b)
}

func (f Float) ReflectedOp(op Operator, other Object) (Object, error) {
	a, ok := toNumber(other)
	if !ok {
		return NotImplemented, nil
	}
	return numericBinary(op, a, number{kind: kindFloat, f: float64(f)})
}

func (f Float) UnaryOp(op UnaryOperator) (Object, error) {
	switch op {
	case OpNeg:
		return -f, nil
	case OpPos:
		return f, nil
	case OpAbs:
		return Float(math.Abs(float64(f))), nil
	}
	return nil, typeErrorf("bad operand type for %s: 'float'", op.errorSymbol())
}

// AsInt truncates toward zero.
func (f Float) AsInt() (Object, error) {
	x := float64(f)
	switch {
	case math.IsNaN(x):
		return nil, valueErrorf("cannot convert float NaN to integer")
	case math.IsInf(x, 0):
		return nil, overflowErrorf("cannot convert float infinity to integer")
	}
	t := math.Trunc(x)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return nil, overflowError()
	}
	return Int(int64(t)), nil
}

func (f Float) AsFloat() (Object, error) { return f, nil }

func (f Float) AsComplex() (Object, error) { return Complex(complex(float64(f), 0)), nil }

// Round with ndigits omitted returns the nearest Int, ties to even. With
// ndigits it returns a Float rounded on the exact decimal expansion.
func (f Float) Round(ndigits Object) (Object, error) {
	x := float64(f)
	if ndigits == nil || ndigits == None {
		return Float(math.RoundToEven(x)).AsInt()
	}
	nd, err := Index(ndigits)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(x) || math.IsInf(x, 0) || x == 0 {
		return f, nil
	}
	switch {
	case nd > 323:
		return f, nil
	case nd >= 0:
		r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', int(nd), 64), 64)
		if err != nil {
			return nil, valueErrorf("cannot round %s", floatRepr(x))
		}
		return Float(r), nil
	case nd < -308:
		return Float(math.Copysign(0, x)), nil
	}
	p := math.Pow10(int(-nd))
	return Float(math.RoundToEven(x/p) * p), nil
}

func (c Complex) Type() *Class { return ComplexClass }

func complexPart(f float64) string {
	return strings.TrimSuffix(floatRepr(f), ".0")
}

func (c Complex) String() string {
	re, im := real(c), imag(c)
	if re == 0 && !math.Signbit(re) {
		return complexPart(im) + "j"
	}
	sign := "+"
	if math.Signbit(im) && !math.IsNaN(im) {
		sign = ""
	}
	return "(" + complexPart(re) + sign + complexPart(im) + "j)"
}

func (c Complex) Repr() (string, error) { return c.String(), nil }

func (c Complex) GetAttr(name string) (Object, error) {
	switch name {
	case "real":
		return Float(real(c)), nil
	case "imag":
		return Float(imag(c)), nil
	}
	return GenericGetAttr(c, nil, name)
}

func (c Complex) Compare(op CompareOp, other Object) (Object, error) {
	b, ok := toNumber(other)
	if !ok {
		return NotImplemented, nil
	}
	return numericCompare(op, number{kind: kindComplex, c: complex128(c)}, b), nil
}

func (c Complex) Hash() (int64, error) {
	h := hashFloat(real(c)) + 1000003*hashFloat(imag(c))
	if h == -1 {
		h = -2
	}
	return h, nil
}

func (c Complex) Truth() (bool, error) { return c != 0, nil }

func (c Complex) BinaryOp(op Operator, other Object) (Object, error) {
	b, ok := toNumber(other)
	if !ok {
		return NotImplemented, nil
	}
	return numericBinary(op, number{kind: kindComplex, c: complex128(c)}, b)
}

func (c Complex) ReflectedOp(op Operator, other Object) (Object, error) {
	a, ok := toNumber(other)
	if !ok {
		return NotImplemented, nil
	}
	return numericBinary(op, a, number{kind: kindComplex, c: complex128(c)})
}

func (c Complex) UnaryOp(op UnaryOperator) (Object, error) {
	switch op {
	case OpNeg:
		return -c, nil
	case OpPos:
		return c, nil
	case OpAbs:
		return Float(cmplx.Abs(complex128(c))), nil
	}
	return nil, typeErrorf("bad operand type for %s: 'complex'", op.errorSymbol())
}

func (c Complex) AsComplex() (Object, error) { return c, nil }

func newFloat(_ *Class, args []Object, kwargs map[string]Object) (Object, error) {
	if err := checkArity("float", args, kwargs, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return Float(0), nil
	}
	if s, ok := args[0].(Str); ok {
		return parseFloat(string(s))
	}
	return ToFloat(args[0])
}

func parseFloat(s string) (Object, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	switch strings.TrimLeft(t, "+-") {
	case "inf", "infinity", "nan":
	default:
		if strings.ContainsAny(t, "xp") {
			return nil, valueErrorf("could not convert string to float: %s", quoteStr(s))
		}
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, valueErrorf("could not convert string to float: %s", quoteStr(s))
	}
	return Float(f), nil
}

func newComplex(_ *Class, args []Object, kwargs map[string]Object) (Object, error) {
	if err := checkArity("complex", args, kwargs, 0, 2); err != nil {
		return nil, err
	}
	switch len(args) {
	case 0:
		return Complex(0), nil
	case 1:
		if s, ok := args[0].(Str); ok {
			t := strings.TrimSpace(strings.Trim(strings.TrimSpace(string(s)), "()"))
			c, err := strconv.ParseComplex(strings.ReplaceAll(strings.ReplaceAll(t, "j", "i"), "J", "i"), 128)
			if err != nil {
				return nil, valueErrorf("complex() arg is a malformed string")
			}
			return Complex(c), nil
		}
		return ToComplex(args[0], nil)
	}
	return ToComplex(args[0], args[1])
}
