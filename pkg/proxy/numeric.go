package proxy

import "github.com/polisai/oxy/pkg/object"

// BinaryOp evaluates target op other.
func (p *Proxy) BinaryOp(op object.Operator, other object.Object) (object.Object, error) {
	t, err := p.Target()
	if err != nil {
		return nil, err
	}
	return object.Binary(op, t, other)
}

// ReflectedOp evaluates other op target.
func (p *Proxy) ReflectedOp(op object.Operator, other object.Object) (object.Object, error) {
	t, err := p.Target()
	if err != nil {
		return nil, err
	}
	return object.Binary(op, other, t)
}

// InPlaceOp evaluates target op= other, rebinds the target to the result and
// returns p itself.
func (p *Proxy) InPlaceOp(op object.Operator, other object.Object) (object.Object, error) {
	if !op.HasInPlace() {
		return object.NotImplemented, nil
	}
	t, err := p.Target()
	if err != nil {
		return nil, err
	}
	r, err := object.InPlace(op, t, other)
	if err != nil {
		return nil, err
	}
	p.Bind(r)
	return p, nil
}

func (p *Proxy) UnaryOp(op object.UnaryOperator) (object.Object, error) {
	t, err := p.Target()
	if err != nil {
		return nil, err
	}
	return object.Unary(op, t)
}

// PowMod evaluates pow(target, exp, mod) with exp and mod unwrapped.
func (p *Proxy) PowMod(exp, mod object.Object) (object.Object, error) {
	t, err := p.Target()
	if err != nil {
		return nil, err
	}
	e, err := Unwrap(exp)
	if err != nil {
		return nil, err
	}
	m, err := Unwrap(mod)
	if err != nil {
		return nil, err
	}
	return object.Pow(t, e, m)
}

// convert applies a built-in class to the target, so that int(Proxy("10"))
// parses like int("10").
func (p *Proxy) convert(cls *object.Class) (object.Object, error) {
	t, err := p.Target()
	if err != nil {
		return nil, err
	}
	return object.Call(cls, []object.Object{t}, nil)
}

func (p *Proxy) AsInt() (object.Object, error) { return p.convert(object.IntClass) }

func (p *Proxy) AsFloat() (object.Object, error) { return p.convert(object.FloatClass) }

func (p *Proxy) AsComplex() (object.Object, error) { return p.convert(object.ComplexClass) }

func (p *Proxy) Index() (object.Int, error) {
	t, err := p.Target()
	if err != nil {
		return 0, err
	}
	return object.Index(t)
}

// Round rounds the target; a nil ndigits stays omitted.
func (p *Proxy) Round(ndigits object.Object) (object.Object, error) {
	t, err := p.Target()
	if err != nil {
		return nil, err
	}
	return object.Round(t, ndigits)
}
