package object

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func mustRepr(t testing.TB, o Object) string {
	t.Helper()
	s, err := Repr(o)
	require.NoError(t, err)
	return s
}

func TestRepr_Numbers(t *testing.T) {
	tests := []struct {
		v    Object
		want string
	}{
		{Int(0), "0"},
		{Int(-12), "-12"},
		{True, "True"},
		{False, "False"},
		{Float(1), "1.0"},
		{Float(0.1), "0.1"},
		{Float(-2.5), "-2.5"},
		{Float(1e16), "1e+16"},
		{Float(1.5e-5), "1.5e-05"},
		{Float(math.Inf(1)), "inf"},
		{Float(math.NaN()), "nan"},
		{Complex(complex(1, 2)), "(1+2j)"},
		{Complex(complex(1, -2)), "(1-2j)"},
		{Complex(complex(0, 2)), "2j"},
		{Complex(complex(1.5, 0)), "(1.5+0j)"},
		{None, "None"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mustRepr(t, tt.v))
	}
}

func TestBinary_Int(t *testing.T) {
	tests := []struct {
		op   Operator
		a, b int64
		want Object
	}{
		{OpAdd, 2, 3, Int(5)},
		{OpSub, 2, 3, Int(-1)},
		{OpMul, -4, 3, Int(-12)},
		{OpTrueDiv, 7, 2, Float(3.5)},
		{OpFloorDiv, 7, 2, Int(3)},
		{OpFloorDiv, -7, 2, Int(-4)},
		{OpFloorDiv, 7, -2, Int(-4)},
		{OpMod, -7, 2, Int(1)},
		{OpMod, 7, -2, Int(-1)},
		{OpDivMod, -7, 2, NewTuple(Int(-4), Int(1))},
		{OpPow, 2, 10, Int(1024)},
		{OpPow, 2, -1, Float(0.5)},
		{OpLShift, 1, 62, Int(1 << 62)},
		{OpRShift, -8, 1, Int(-4)},
		{OpRShift, -8, 100, Int(-1)},
		{OpAnd, 6, 3, Int(2)},
		{OpOr, 6, 3, Int(7)},
		{OpXor, 6, 3, Int(5)},
	}
	for _, tt := range tests {
		got, err := Binary(tt.op, Int(tt.a), Int(tt.b))
		require.NoError(t, err, "%d %s %d", tt.a, tt.op, tt.b)
		assert.Equal(t, tt.want, got, "%d %s %d", tt.a, tt.op, tt.b)
	}
}

func TestBinary_Bool(t *testing.T) {
	tests := []struct {
		op   Operator
		a, b Object
		want Object
	}{
		{OpAnd, True, False, False},
		{OpOr, True, False, True},
		{OpXor, True, False, True},
		{OpXor, True, True, False},
		{OpXor, True, Int(3), Int(2)},
		{OpAdd, True, True, Int(2)},
	}
	for _, tt := range tests {
		got, err := Binary(tt.op, tt.a, tt.b)
		require.NoError(t, err, "%s %s %s", mustRepr(t, tt.a), tt.op, mustRepr(t, tt.b))
		assert.Equal(t, tt.want, got, "%s %s %s", mustRepr(t, tt.a), tt.op, mustRepr(t, tt.b))
	}
}

func TestBinary_Errors(t *testing.T) {
	tests := []struct {
		name   string
		op     Operator
		a, b   Object
		target error
		msg    string
	}{
		{"div zero", OpTrueDiv, Int(1), Int(0), ErrZeroDivision, "zero division error: division by zero"},
		{"floordiv zero", OpFloorDiv, Int(1), Int(0), ErrZeroDivision, ""},
		{"float mod zero", OpMod, Float(1), Float(0), ErrZeroDivision, ""},
		{"add overflow", OpAdd, Int(math.MaxInt64), Int(1), ErrOverflow, ""},
		{"pow overflow", OpPow, Int(3), Int(64), ErrOverflow, ""},
		{"negative shift", OpLShift, Int(1), Int(-1), ErrValue, ""},
		{"mixed types", OpAdd, Int(1), Str("a"), ErrType, "type error: unsupported operand type(s) for +: 'int' and 'str'"},
		{"pow symbol", OpPow, Str("a"), Int(1), ErrType, "type error: unsupported operand type(s) for ** or pow(): 'str' and 'int'"},
		{"complex floordiv", OpFloorDiv, Complex(1), Complex(1), ErrType, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Binary(tt.op, tt.a, tt.b)
			require.ErrorIs(t, err, tt.target)
			if tt.msg != "" {
				assert.EqualError(t, err, tt.msg)
			}
		})
	}
}

func TestInPlace_SymbolInError(t *testing.T) {
	_, err := InPlace(OpAdd, Int(1), NewList())
	assert.EqualError(t, err, "type error: unsupported operand type(s) for +=: 'int' and 'list'")
}

func TestBinary_MixedNumeric(t *testing.T) {
	got, err := Binary(OpAdd, Int(1), Float(0.5))
	require.NoError(t, err)
	assert.Equal(t, Float(1.5), got)

	got, err = Binary(OpMul, True, Int(3))
	require.NoError(t, err)
	assert.Equal(t, Int(3), got)

	got, err = Binary(OpAdd, Complex(complex(1, 1)), Int(1))
	require.NoError(t, err)
	assert.Equal(t, Complex(complex(2, 1)), got)

	got, err = Binary(OpFloorDiv, Float(-7), Int(2))
	require.NoError(t, err)
	assert.Equal(t, Float(-4), got)
}

func TestCompare_Numbers(t *testing.T) {
	eq, err := Equal(Int(1), Float(1))
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = Equal(True, Int(1))
	require.NoError(t, err)
	assert.True(t, eq)

	nan := Float(math.NaN())
	eq, err = Equal(nan, nan)
	require.NoError(t, err)
	assert.False(t, eq)

	lt, err := CompareBool(Int(2), Float(2.5), CmpLt)
	require.NoError(t, err)
	assert.True(t, lt)

	_, err = RichCompare(Complex(1), Complex(2), CmpLt)
	assert.ErrorIs(t, err, ErrType)

	_, err = RichCompare(Int(1), Str("1"), CmpLt)
	assert.EqualError(t, err, "type error: '<' not supported between instances of 'int' and 'str'")

	eq, err = Equal(Int(1), Str("1"))
	require.NoError(t, err)
	assert.False(t, eq)
}

func TestHash_Numbers(t *testing.T) {
	h := func(o Object) int64 {
		t.Helper()
		v, err := Hash(o)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, int64(-2), h(Int(-1)))
	assert.Equal(t, h(Int(3)), h(Float(3)))
	assert.Equal(t, h(Int(1)), h(True))
	assert.Equal(t, h(Int(2)), h(Complex(2)))
}

func TestConversions(t *testing.T) {
	call := func(cls *Class, args ...Object) (Object, error) {
		return Call(cls, args, nil)
	}

	v, err := call(IntClass, Str(" 42 "))
	require.NoError(t, err)
	assert.Equal(t, Int(42), v)

	v, err = call(IntClass, Str("ff"), Int(16))
	require.NoError(t, err)
	assert.Equal(t, Int(255), v)

	v, err = call(IntClass, Str("0x1f"), Int(0))
	require.NoError(t, err)
	assert.Equal(t, Int(31), v)

	_, err = call(IntClass, Str("1.5"))
	assert.EqualError(t, err, "value error: invalid literal for int() with base 10: '1.5'")

	v, err = call(IntClass, Float(-3.9))
	require.NoError(t, err)
	assert.Equal(t, Int(-3), v)

	_, err = call(IntClass, Float(math.Inf(1)))
	assert.ErrorIs(t, err, ErrOverflow)

	v, err = call(FloatClass, Str("inf"))
	require.NoError(t, err)
	assert.True(t, math.IsInf(float64(v.(Float)), 1))

	v, err = call(ComplexClass, Str("1-2j"))
	require.NoError(t, err)
	assert.Equal(t, Complex(complex(1, -2)), v)

	v, err = call(BoolClass, NewList())
	require.NoError(t, err)
	assert.Equal(t, False, v)

	hex, err := Hex(Int(-255))
	require.NoError(t, err)
	assert.Equal(t, "-0xff", hex)
	bin, err := Bin(Int(5))
	require.NoError(t, err)
	assert.Equal(t, "0b101", bin)
	_, err = Hex(Float(1))
	assert.ErrorIs(t, err, ErrType)
}

func TestRound(t *testing.T) {
	tests := []struct {
		v, nd Object
		want  Object
	}{
		{Float(2.675), Int(2), Float(2.67)},
		{Float(2.5), nil, Int(2)},
		{Float(3.5), nil, Int(4)},
		{Float(-0.5), nil, Int(0)},
		{Float(1234.5), Int(-2), Float(1200)},
		{Int(1250), Int(-2), Int(1200)},
		{Int(1350), Int(-2), Int(1400)},
		{Int(7), Int(3), Int(7)},
	}
	for _, tt := range tests {
		got, err := Round(tt.v, tt.nd)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := Round(Str("x"), nil)
	assert.ErrorIs(t, err, ErrType)
}

func TestPow_Modular(t *testing.T) {
	got, err := Pow(Int(3), Int(4), Int(5))
	require.NoError(t, err)
	assert.Equal(t, Int(1), got)

	got, err = Pow(Int(-3), Int(3), Int(5))
	require.NoError(t, err)
	assert.Equal(t, Int(3), got)

	_, err = Pow(Int(2), Int(3), Int(0))
	assert.ErrorIs(t, err, ErrValue)

	_, err = Pow(Float(2), Int(3), Int(5))
	assert.ErrorIs(t, err, ErrType)
}

func TestFormat_Numbers(t *testing.T) {
	tests := []struct {
		v    Object
		spec string
		want string
	}{
		{Int(12), "+", "+12"},
		{Int(12), ">5", "   12"},
		{Int(12), "<5", "12   "},
		{Int(12), "^6", "  12  "},
		{Int(-12), "=6", "-   12"},
		{Int(255), "#x", "0xff"},
		{Int(255), "08b", "11111111"},
		{Int(1234567), ",", "1,234,567"},
		{Int(1234567), "_d", "1_234_567"},
		{Int(65), "c", "A"},
		{Float(3.14159), ".2f", "3.14"},
		{Float(0.25), ".1%", "25.0%"},
		{Float(1234.5), ",.1f", "1,234.5"},
		{Float(12345.678), ".3e", "1.235e+04"},
		{Float(2), "", "2.0"},
		{Float(-1.5), "+.1f", "-1.5"},
		{Int(3), ".1f", "3.0"},
		{Str("ab"), "*^6", "**ab**"},
		{Str("abcdef"), ".3", "abc"},
	}
	for _, tt := range tests {
		got, err := Format(tt.v, tt.spec)
		require.NoError(t, err, "%s:%s", mustRepr(t, tt.v), tt.spec)
		assert.Equal(t, tt.want, got, "%s:%s", mustRepr(t, tt.v), tt.spec)
	}

	_, err := Format(Int(1), ".2d")
	assert.ErrorIs(t, err, ErrValue)
	_, err = Format(Str("a"), "d")
	assert.ErrorIs(t, err, ErrValue)
}

func TestNumberProperties(t *testing.T) {
	// Property 1: floor division and modulo reconstruct the dividend and the
	// remainder takes the sign of the divisor.
	t.Run("divmod identity", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			a := rapid.Int64Range(-1e9, 1e9).Draw(t, "a")
			b := rapid.Int64Range(-1e6, 1e6).Filter(func(v int64) bool { return v != 0 }).Draw(t, "b")

			r, err := DivMod(Int(a), Int(b))
			require.NoError(t, err)
			q, m := r.(*Tuple).Items[0].(Int), r.(*Tuple).Items[1].(Int)
			require.Equal(t, a, int64(q)*b+int64(m))
			if m != 0 {
				require.Equal(t, b < 0, m < 0)
			}
		})
	})

	// Property 2: equal numbers hash equally across int and float.
	t.Run("hash across kinds", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			v := rapid.Int64Range(-1<<52, 1<<52).Draw(t, "v")
			hi, err := Hash(Int(v))
			require.NoError(t, err)
			hf, err := Hash(Float(v))
			require.NoError(t, err)
			require.Equal(t, hi, hf)
		})
	})

	// Property 3: int() parses whatever repr() renders.
	t.Run("repr parses back", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			v := Int(rapid.Int64().Draw(t, "v"))
			r, err := Repr(v)
			require.NoError(t, err)
			got, err := Call(IntClass, []Object{Str(r)}, nil)
			require.NoError(t, err)
			require.Equal(t, v, got)
		})
	})
}
