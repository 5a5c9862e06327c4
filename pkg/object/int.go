package object

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Int is a 64-bit integer. Results that do not fit fail with ErrOverflow.
type Int int64

// Bool is a truth value; in arithmetic it behaves as the integers 0 and 1.
type Bool bool

// True and False are the two Bool values.
const (
	True  = Bool(true)
	False = Bool(false)
)

func asInt(o Object) (Int, bool) {
	switch v := o.(type) {
	case Int:
		return v, true
	case Bool:
		return v.int(), true
	}
	return 0, false
}

func (i Int) Type() *Class { return IntClass }

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

func (i Int) Repr() (string, error) { return i.String(), nil }

func (i Int) FormatSpec(spec string) (string, error) { return formatInt(i, spec) }

func (i Int) Compare(op CompareOp, other Object) (Object, error) {
	b, ok := toNumber(other)
	if !ok {
		return NotImplemented, nil
	}
	return numericCompare(op, number{kind: kindInt, i: int64(i)}, b), nil
}

func (i Int) Hash() (int64, error) {
	if i == -1 {
		return -2, nil
	}
	return int64(i), nil
}

func (i Int) Truth() (bool, error) { return i != 0, nil }

func (i Int) BinaryOp(op Operator, other Object) (Object, error) {
	b, ok := toNumber(other)
	if !ok {
		return NotImplemented, nil
	}
	return numericBinary(op, number{kind: kindInt, i: int64(i)}, b)
}

func (i Int) ReflectedOp(op Operator, other Object) (Object, error) {
	a, ok := toNumber(other)
	if !ok {
		return NotImplemented, nil
	}
	return numericBinary(op, a, number{kind: kindInt, i: int64(i)})
}

func (i Int) UnaryOp(op UnaryOperator) (Object, error) {
	switch op {
	case OpNeg:
		if i == math.MinInt64 {
			return nil, overflowError()
		}
		return -i, nil
	case OpPos:
		return i, nil
	case OpInvert:
		return ^i, nil
	case OpAbs:
		if i == math.MinInt64 {
			return nil, overflowError()
		}
		if i < 0 {
			return -i, nil
		}
		return i, nil
	}
	return nil, typeErrorf("bad operand type for %s: 'int'", op.errorSymbol())
}

// PowMod computes i**exp % mod; a negative exponent uses the modular inverse.
func (i Int) PowMod(exp, mod Object) (Object, error) {
	e, ok := asInt(exp)
	if !ok {
		return NotImplemented, nil
	}
	m, ok := asInt(mod)
	if !ok {
		return NotImplemented, nil
	}
	if m == 0 {
		return nil, valueErrorf("pow() 3rd argument cannot be 0")
	}
	z := new(big.Int).Exp(big.NewInt(int64(i)), big.NewInt(int64(e)), big.NewInt(int64(m)))
	if z == nil {
		return nil, valueErrorf("base is not invertible for the given modulus")
	}
	r := z.Int64()
	if m < 0 && r != 0 {
		r += int64(m)
	}
	return Int(r), nil
}

func (i Int) AsInt() (Object, error) { return i, nil }

func (i Int) AsFloat() (Object, error) { return Float(i), nil }

func (i Int) AsComplex() (Object, error) { return Complex(complex(float64(i), 0)), nil }

func (i Int) Index() (Int, error) { return i, nil }

// Round rounds half to even at 10**-ndigits; non-negative ndigits return i.
func (i Int) Round(ndigits Object) (Object, error) {
	if ndigits == nil || ndigits == None {
		return i, nil
	}
	nd, err := Index(ndigits)
	if err != nil {
		return nil, err
	}
	if nd >= 0 {
		return i, nil
	}
	if nd < -18 {
		return Int(0), nil
	}
	p := int64(math.Pow10(int(-nd)))
	q, r := floorDivInt(int64(i), p), modInt(int64(i), p)
	if twice := 2 * r; twice > p || (twice == p && q%2 != 0) {
		q++
	}
	return checkedInt(new(big.Int).Mul(big.NewInt(q), big.NewInt(p)))
}

func (b Bool) Type() *Class { return BoolClass }

func (b Bool) int() Int {
	if b {
		return 1
	}
	return 0
}

func (b Bool) String() string {
	if b {
		return "True"
	}
	return "False"
}

func (b Bool) Repr() (string, error) { return b.String(), nil }

func (b Bool) FormatSpec(spec string) (string, error) {
	if spec == "" {
		return b.String(), nil
	}
	return formatInt(b.int(), spec)
}

func (b Bool) Compare(op CompareOp, other Object) (Object, error) { return b.int().Compare(op, other) }

func (b Bool) Hash() (int64, error) { return b.int().Hash() }

func (b Bool) Truth() (bool, error) { return bool(b), nil }

func (b Bool) BinaryOp(op Operator, other Object) (Object, error) {
	if o, ok := other.(Bool); ok {
		switch op {
		case OpAnd:
			return b && o, nil
		case OpOr:
			return b || o, nil
		case OpXor:
			return Bool(b != o), nil
		}
	}
	return b.int().BinaryOp(op, other)
}

func (b Bool) ReflectedOp(op Operator, other Object) (Object, error) {
	return b.int().ReflectedOp(op, other)
}

func (b Bool) UnaryOp(op UnaryOperator) (Object, error) { return b.int().UnaryOp(op) }

func (b Bool) PowMod(exp, mod Object) (Object, error) { return b.int().PowMod(exp, mod) }

func (b Bool) AsInt() (Object, error) { return b.int(), nil }

func (b Bool) AsFloat() (Object, error) { return Float(b.int()), nil }

func (b Bool) AsComplex() (Object, error) { return b.int().AsComplex() }

func (b Bool) Index() (Int, error) { return b.int(), nil }

func (b Bool) Round(ndigits Object) (Object, error) { return b.int().Round(ndigits) }

func checkedInt(z *big.Int) (Object, error) {
	if !z.IsInt64() {
		return nil, overflowError()
	}
	return Int(z.Int64()), nil
}

func floorDivInt(x, y int64) int64 {
	q := x / y
	if x%y != 0 && (x < 0) != (y < 0) {
		q--
	}
	return q
}

func modInt(x, y int64) int64 {
	m := x % y
	if m != 0 && (m < 0) != (y < 0) {
		m += y
	}
	return m
}

func intBinary(op Operator, x, y int64) (Object, error) {
	switch op {
	case OpAdd:
		return checkedInt(new(big.Int).Add(big.NewInt(x), big.NewInt(y)))
	case OpSub:
		return checkedInt(new(big.Int).Sub(big.NewInt(x), big.NewInt(y)))
	case OpMul:
		return checkedInt(new(big.Int).Mul(big.NewInt(x), big.NewInt(y)))
	case OpTrueDiv:
		if y == 0 {
			return nil, zeroDivisionError("division by zero")
		}
		return Float(float64(x) / float64(y)), nil
	case OpFloorDiv:
		if y == 0 {
			return nil, zeroDivisionError("integer division or modulo by zero")
		}
		if x == math.MinInt64 && y == -1 {
			return nil, overflowError()
		}
		return Int(floorDivInt(x, y)), nil
	case OpMod:
		if y == 0 {
			return nil, zeroDivisionError("integer modulo by zero")
		}
		if y == -1 {
			return Int(0), nil
		}
		return Int(modInt(x, y)), nil
	case OpDivMod:
		if y == 0 {
			return nil, zeroDivisionError("integer division or modulo by zero")
		}
		if x == math.MinInt64 && y == -1 {
			return nil, overflowError()
		}
		return NewTuple(Int(floorDivInt(x, y)), Int(modInt(x, y))), nil
	case OpPow:
		if y < 0 {
			if x == 0 {
				return nil, zeroDivisionError("0.0 cannot be raised to a negative power")
			}
			return Float(math.Pow(float64(x), float64(y))), nil
		}
		if (x > 1 || x < -1) && y > 63 {
			return nil, overflowError()
		}
		return checkedInt(new(big.Int).Exp(big.NewInt(x), big.NewInt(y), nil))
	case OpLShift:
		if y < 0 {
			return nil, valueErrorf("negative shift count")
		}
		if x == 0 {
			return Int(0), nil
		}
		if y > 63 {
			return nil, overflowError()
		}
		return checkedInt(new(big.Int).Lsh(big.NewInt(x), uint(y)))
	case OpRShift:
		if y < 0 {
			return nil, valueErrorf("negative shift count")
		}
		if y > 63 {
			if x < 0 {
				return Int(-1), nil
			}
			return Int(0), nil
		}
		return Int(x >> uint(y)), nil
	case OpAnd:
		return Int(x & y), nil
	case OpOr:
		return Int(x | y), nil
	case OpXor:
		return Int(x ^ y), nil
	}
	return NotImplemented, nil
}

func newInt(_ *Class, args []Object, kwargs map[string]Object) (Object, error) {
	if err := checkArity("int", args, kwargs, 0, 2); err != nil {
		return nil, err
	}
	switch len(args) {
	case 0:
		return Int(0), nil
	case 1:
		if s, ok := args[0].(Str); ok {
			return parseInt(string(s), 10)
		}
		return ToInt(args[0])
	}
	s, ok := args[0].(Str)
	if !ok {
		return nil, typeErrorf("int() can't convert non-string with explicit base")
	}
	base, err := Index(args[1])
	if err != nil {
		return nil, err
	}
	if base != 0 && (base < 2 || base > 36) {
		return nil, valueErrorf("int() base must be >= 2 and <= 36, or 0")
	}
	return parseInt(string(s), int(base))
}

func parseInt(s string, base int) (Object, error) {
	t := strings.TrimSpace(s)
	if base == 16 || base == 8 || base == 2 {
		prefix := map[int]string{16: "0x", 8: "0o", 2: "0b"}[base]
		unsigned := strings.TrimLeft(t, "+-")
		if strings.HasPrefix(strings.ToLower(unsigned), prefix) {
			t = t[:len(t)-len(unsigned)] + unsigned[2:]
		}
	}
	n, err := strconv.ParseInt(t, base, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, overflowError()
		}
		return nil, valueErrorf("invalid literal for int() with base %d: %s", base, quoteStr(s))
	}
	return Int(n), nil
}

func newBool(_ *Class, args []Object, kwargs map[string]Object) (Object, error) {
	if err := checkArity("bool", args, kwargs, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return False, nil
	}
	t, err := Truth(args[0])
	return Bool(t), err
}
