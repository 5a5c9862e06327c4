package proxy

import "github.com/polisai/oxy/pkg/object"

func (p *Proxy) Repr() (string, error) {
	t, err := p.Target()
	if err != nil {
		return "", err
	}
	return object.Repr(t)
}

// ReprNested keeps the enclosing repr guard, so a container reached through
// a proxy still renders as "[...]" when it contains itself.
func (p *Proxy) ReprNested(g *object.ReprGuard) (string, error) {
	t, err := p.Target()
	if err != nil {
		return "", err
	}
	return object.ReprNested(t, g)
}

func (p *Proxy) Str() (string, error) {
	t, err := p.Target()
	if err != nil {
		return "", err
	}
	return object.ToStr(t)
}

func (p *Proxy) FormatSpec(spec string) (string, error) {
	t, err := p.Target()
	if err != nil {
		return "", err
	}
	return object.Format(t, spec)
}

// Compare evaluates target op other with other passed through as is.
func (p *Proxy) Compare(op object.CompareOp, other object.Object) (object.Object, error) {
	t, err := p.Target()
	if err != nil {
		return nil, err
	}
	return object.RichCompare(t, other, op)
}

// Cmp orders the target against other, unwrapping other first.
func (p *Proxy) Cmp(other object.Object) (int, error) {
	t, err := p.Target()
	if err != nil {
		return 0, err
	}
	o, err := Unwrap(other)
	if err != nil {
		return 0, err
	}
	return object.Cmp(t, o)
}

func (p *Proxy) Hash() (int64, error) {
	t, err := p.Target()
	if err != nil {
		return 0, err
	}
	return object.Hash(t)
}

func (p *Proxy) Truth() (bool, error) {
	t, err := p.Target()
	if err != nil {
		return false, err
	}
	return object.Truth(t)
}

// InstanceCheck answers instance-of against the target.
func (p *Proxy) InstanceCheck(instance object.Object) (bool, error) {
	t, err := p.Target()
	if err != nil {
		return false, err
	}
	return object.IsInstance(instance, t)
}

// SubclassCheck answers subclass-of against the target. The candidate is
// unwrapped first; the query needs a concrete class in that position.
func (p *Proxy) SubclassCheck(candidate object.Object) (bool, error) {
	c, err := Unwrap(candidate)
	if err != nil {
		return false, err
	}
	t, err := p.Target()
	if err != nil {
		return false, err
	}
	return object.IsSubclass(c, t)
}

func (p *Proxy) Call(args []object.Object, kwargs map[string]object.Object) (object.Object, error) {
	t, err := p.Target()
	if err != nil {
		return nil, err
	}
	return object.Call(t, args, kwargs)
}

func (p *Proxy) Len() (int, error) {
	t, err := p.Target()
	if err != nil {
		return 0, err
	}
	return object.Len(t)
}

func (p *Proxy) GetItem(key object.Object) (object.Object, error) {
	t, err := p.Target()
	if err != nil {
		return nil, err
	}
	return object.GetItem(t, key)
}

func (p *Proxy) SetItem(key, value object.Object) error {
	t, err := p.Target()
	if err != nil {
		return err
	}
	return object.SetItem(t, key, value)
}

func (p *Proxy) DelItem(key object.Object) error {
	t, err := p.Target()
	if err != nil {
		return err
	}
	return object.DelItem(t, key)
}

func (p *Proxy) Contains(item object.Object) (bool, error) {
	t, err := p.Target()
	if err != nil {
		return false, err
	}
	return object.Contains(t, item)
}

// Iter returns the target's iterator wrapped in a new proxy.
func (p *Proxy) Iter() (object.Object, error) {
	t, err := p.Target()
	if err != nil {
		return nil, err
	}
	it, err := object.Iter(t)
	if err != nil {
		return nil, err
	}
	return New(it), nil
}

// Next advances the target. Exhaustion is the target's own ErrStopIteration.
func (p *Proxy) Next() (object.Object, error) {
	t, err := p.Target()
	if err != nil {
		return nil, err
	}
	return object.Next(t)
}

// Reversed returns the target's reverse iterator wrapped in a new proxy.
func (p *Proxy) Reversed() (object.Object, error) {
	t, err := p.Target()
	if err != nil {
		return nil, err
	}
	it, err := object.Reversed(t)
	if err != nil {
		return nil, err
	}
	return New(it), nil
}
