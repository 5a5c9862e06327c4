package object

import (
	"math"
	"math/cmplx"
)

type numKind int

const (
	kindInt numKind = iota
	kindFloat
	kindComplex
)

// number is an operand of the numeric tower, widened on demand.
type number struct {
	kind numKind
	i    int64
	f    float64
	c    complex128
}

func toNumber(o Object) (number, bool) {
	switch v := o.(type) {
	case Int:
		return number{kind: kindInt, i: int64(v)}, true
	case Bool:
		return number{kind: kindInt, i: int64(v.int())}, true
	case Float:
		return number{kind: kindFloat, f: float64(v)}, true
	case Complex:
		return number{kind: kindComplex, c: complex128(v)}, true
	}
	return number{}, false
}

func (n number) float() float64 {
	if n.kind == kindInt {
		return float64(n.i)
	}
	return n.f
}

func (n number) complex() complex128 {
	if n.kind == kindComplex {
		return n.c
	}
	return complex(n.float(), 0)
}

func numericBinary(op Operator, a, b number) (Object, error) {
	switch max(a.kind, b.kind) {
	case kindInt:
		return intBinary(op, a.i, b.i)
	case kindFloat:
		return floatBinary(op, a.float(), b.float())
	default:
		return complexBinary(op, a.complex(), b.complex())
	}
}

func numericCompare(op CompareOp, a, b number) Object {
	if a.kind == kindComplex || b.kind == kindComplex {
		if op != CmpEq && op != CmpNe {
			return NotImplemented
		}
		return Bool((a.complex() == b.complex()) == (op == CmpEq))
	}
	if a.kind == kindInt && b.kind == kindInt {
		return Bool(op.holds(cmpOrdered(a.i, b.i)))
	}
	x, y := a.float(), b.float()
	if math.IsNaN(x) || math.IsNaN(y) {
		return Bool(op == CmpNe)
	}
	return Bool(op.holds(cmpOrdered(x, y)))
}

func cmpOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// floatDivMod follows floored division: the remainder takes the sign of y.
func floatDivMod(x, y float64) (float64, float64) {
	mod := math.Mod(x, y)
	div := (x - mod) / y
	if mod != 0 {
		if (y < 0) != (mod < 0) {
			mod += y
			div -= 1
		}
	} else {
		mod = math.Copysign(0, y)
	}
	var floor float64
	if div != 0 {
		floor = math.Floor(div)
		if div-floor > 0.5 {
			floor += 1
		}
	} else {
		floor = math.Copysign(0, x/y)
	}
	return floor, mod
}

func floatBinary(op Operator, x, y float64) (Object, error) {
	switch op {
	case OpAdd:
		return Float(x + y), nil
	case OpSub:
		return Float(x - y), nil
	case OpMul:
		return Float(x * y), nil
	case OpTrueDiv:
		if y == 0 {
			return nil, zeroDivisionError("float division by zero")
		}
		return Float(x / y), nil
	case OpFloorDiv:
		if y == 0 {
			return nil, zeroDivisionError("float floor division by zero")
		}
		d, _ := floatDivMod(x, y)
		return Float(d), nil
	case OpMod:
		if y == 0 {
			return nil, zeroDivisionError("float modulo")
		}
		_, m := floatDivMod(x, y)
		return Float(m), nil
	case OpDivMod:
		if y == 0 {
			return nil, zeroDivisionError("float divmod()")
		}
		d, m := floatDivMod(x, y)
		return NewTuple(Float(d), Float(m)), nil
	case OpPow:
		if x == 0 && y < 0 {
			return nil, zeroDivisionError("0.0 cannot be raised to a negative power")
		}
		if x < 0 && y != math.Trunc(y) {
			return Complex(cmplx.Pow(complex(x, 0), complex(y, 0))), nil
		}
		return Float(math.Pow(x, y)), nil
	}
	return NotImplemented, nil
}

func complexBinary(op Operator, x, y complex128) (Object, error) {
	switch op {
	case OpAdd:
		return Complex(x + y), nil
	case OpSub:
		return Complex(x - y), nil
	case OpMul:
		return Complex(x * y), nil
	case OpTrueDiv:
		if y == 0 {
			return nil, zeroDivisionError("complex division by zero")
		}
		return Complex(x / y), nil
	case OpPow:
		if x == 0 && (real(y) < 0 || imag(y) != 0) {
			return nil, zeroDivisionError("0.0 to a negative or complex power")
		}
		if y == 0 {
			return Complex(1), nil
		}
		return Complex(cmplx.Pow(x, y)), nil
	}
	return NotImplemented, nil
}
