package object

// Operator identifies a binary arithmetic or bitwise operator.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpTrueDiv
	OpFloorDiv
	OpMod
	OpDivMod
	OpPow
	OpLShift
	OpRShift
	OpAnd
	OpOr
	OpXor
	numOperators
)

type operatorInfo struct {
	name      string // method stem: add -> __add__, __radd__, __iadd__
	symbol    string
	reflected bool
	inPlace   bool
}

// operators is the single source of truth for the binary operator family.
// Everything that dispatches, forwards or parses an operator reads this table.
var operators = [numOperators]operatorInfo{
	OpAdd:      {name: "add", symbol: "+", reflected: true, inPlace: true},
	OpSub:      {name: "sub", symbol: "-", reflected: true, inPlace: true},
	OpMul:      {name: "mul", symbol: "*", reflected: true, inPlace: true},
	OpTrueDiv:  {name: "truediv", symbol: "/", reflected: true, inPlace: true},
	OpFloorDiv: {name: "floordiv", symbol: "//", reflected: true, inPlace: true},
	OpMod:      {name: "mod", symbol: "%", reflected: true, inPlace: true},
	OpDivMod:   {name: "divmod", symbol: "divmod()", reflected: true},
	OpPow:      {name: "pow", symbol: "**", reflected: true, inPlace: true},
	OpLShift:   {name: "lshift", symbol: "<<", reflected: true, inPlace: true},
	OpRShift:   {name: "rshift", symbol: ">>", reflected: true, inPlace: true},
	OpAnd:      {name: "and", symbol: "&", reflected: true, inPlace: true},
	OpOr:       {name: "or", symbol: "|", reflected: true, inPlace: true},
	OpXor:      {name: "xor", symbol: "^", reflected: true, inPlace: true},
}

// Operators lists every binary operator in table order.
func Operators() []Operator {
	ops := make([]Operator, 0, numOperators)
	for op := Operator(0); op < numOperators; op++ {
		ops = append(ops, op)
	}
	return ops
}

// LookupOperator finds the operator spelled by symbol, e.g. "//" or "**".
func LookupOperator(symbol string) (Operator, bool) {
	for op, info := range operators {
		if info.symbol == symbol {
			return Operator(op), true
		}
	}
	return 0, false
}

func (op Operator) valid() bool { return op >= 0 && op < numOperators }

// Name is the method stem, e.g. "floordiv".
func (op Operator) Name() string {
	if !op.valid() {
		return "invalid"
	}
	return operators[op].name
}

// Symbol is the operator as written in source, e.g. "//".
func (op Operator) Symbol() string {
	if !op.valid() {
		return "?"
	}
	return operators[op].symbol
}

// HasReflected reports whether op has an other-op-self form.
func (op Operator) HasReflected() bool { return op.valid() && operators[op].reflected }

// HasInPlace reports whether op has a mutating op= form.
func (op Operator) HasInPlace() bool { return op.valid() && operators[op].inPlace }

// Method is the forward special method name, e.g. "__add__".
func (op Operator) Method() string { return "__" + op.Name() + "__" }

// ReflectedMethod is the reflected special method name, e.g. "__radd__".
func (op Operator) ReflectedMethod() string { return "__r" + op.Name() + "__" }

// InPlaceMethod is the in-place special method name, e.g. "__iadd__".
func (op Operator) InPlaceMethod() string { return "__i" + op.Name() + "__" }

func (op Operator) String() string { return op.Symbol() }

func (op Operator) errorSymbol() string {
	if op == OpPow {
		return "** or pow()"
	}
	return op.Symbol()
}

// UnaryOperator identifies a unary arithmetic operator.
type UnaryOperator int

const (
	OpNeg UnaryOperator = iota
	OpPos
	OpInvert
	OpAbs
	numUnaryOperators
)

var unaryOperators = [numUnaryOperators]struct {
	name   string
	symbol string
}{
	OpNeg:    {name: "neg", symbol: "-"},
	OpPos:    {name: "pos", symbol: "+"},
	OpInvert: {name: "invert", symbol: "~"},
	OpAbs:    {name: "abs", symbol: "abs()"},
}

// UnaryOperators lists every unary operator in table order.
func UnaryOperators() []UnaryOperator {
	ops := make([]UnaryOperator, 0, numUnaryOperators)
	for op := UnaryOperator(0); op < numUnaryOperators; op++ {
		ops = append(ops, op)
	}
	return ops
}

func (op UnaryOperator) valid() bool { return op >= 0 && op < numUnaryOperators }

// Name is the method stem, e.g. "invert".
func (op UnaryOperator) Name() string {
	if !op.valid() {
		return "invalid"
	}
	return unaryOperators[op].name
}

// Symbol is the operator as written in source.
func (op UnaryOperator) Symbol() string {
	if !op.valid() {
		return "?"
	}
	return unaryOperators[op].symbol
}

// Method is the special method name, e.g. "__neg__".
func (op UnaryOperator) Method() string { return "__" + op.Name() + "__" }

func (op UnaryOperator) String() string { return op.Symbol() }

func (op UnaryOperator) errorSymbol() string {
	if op == OpAbs {
		return "abs()"
	}
	return "unary " + op.Symbol()
}

// CompareOp identifies a rich comparison operator.
type CompareOp int

const (
	CmpLt CompareOp = iota
	CmpLe
	CmpEq
	CmpNe
	CmpGt
	CmpGe
	numCompareOps
)

var compareOps = [numCompareOps]struct {
	name     string
	symbol   string
	mirrored CompareOp
}{
	CmpLt: {name: "lt", symbol: "<", mirrored: CmpGt},
	CmpLe: {name: "le", symbol: "<=", mirrored: CmpGe},
	CmpEq: {name: "eq", symbol: "==", mirrored: CmpEq},
	CmpNe: {name: "ne", symbol: "!=", mirrored: CmpNe},
	CmpGt: {name: "gt", symbol: ">", mirrored: CmpLt},
	CmpGe: {name: "ge", symbol: ">=", mirrored: CmpLe},
}

// CompareOps lists every comparison operator in table order.
func CompareOps() []CompareOp {
	ops := make([]CompareOp, 0, numCompareOps)
	for op := CompareOp(0); op < numCompareOps; op++ {
		ops = append(ops, op)
	}
	return ops
}

func (op CompareOp) valid() bool { return op >= 0 && op < numCompareOps }

// Symbol is the operator as written in source.
func (op CompareOp) Symbol() string {
	if !op.valid() {
		return "?"
	}
	return compareOps[op].symbol
}

// Mirrored is the operator to apply with the operands swapped.
func (op CompareOp) Mirrored() CompareOp {
	if !op.valid() {
		return op
	}
	return compareOps[op].mirrored
}

// Method is the special method name, e.g. "__le__".
func (op CompareOp) Method() string {
	if !op.valid() {
		return "__invalid__"
	}
	return "__" + compareOps[op].name + "__"
}

func (op CompareOp) String() string { return op.Symbol() }

// holds reports whether an ordering result c (-1, 0, 1) satisfies op.
func (op CompareOp) holds(c int) bool {
	switch op {
	case CmpLt:
		return c < 0
	case CmpLe:
		return c <= 0
	case CmpEq:
		return c == 0
	case CmpNe:
		return c != 0
	case CmpGt:
		return c > 0
	case CmpGe:
		return c >= 0
	}
	return false
}
