package proxy

import (
	"fmt"
	"slices"

	"github.com/polisai/oxy/pkg/object"
)

// SlotName is the reserved member holding the target.
const SlotName = "__target__"

// ErrUnbound is returned by every forwarded operation on a proxy without a
// target. It matches object.ErrAttribute, since binding is itself a member.
var ErrUnbound = fmt.Errorf("%w: 'ObjectProxy' object has no attribute '%s'", object.ErrAttribute, SlotName)

// Class is the class of every Proxy. Calling it with one argument builds a
// bound proxy and with none an unbound one.
var Class = object.NewBuiltinClass("ObjectProxy", construct)

func construct(_ *object.Class, args []object.Object, kwargs map[string]object.Object) (object.Object, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%w: ObjectProxy() takes no keyword arguments", object.ErrType)
	}
	switch len(args) {
	case 0:
		return Unbound(), nil
	case 1:
		return New(args[0]), nil
	}
	return nil, fmt.Errorf("%w: ObjectProxy() takes at most 1 argument (%d given)", object.ErrType, len(args))
}

// Proxy forwards every operation to its target.
type Proxy struct {
	target object.Object
}

// New returns a proxy bound to target. A nil target leaves it unbound.
func New(target object.Object) *Proxy {
	return &Proxy{target: target}
}

// Unbound returns a proxy with no target.
func Unbound() *Proxy {
	return &Proxy{}
}

// Target returns the bound target.
func (p *Proxy) Target() (object.Object, error) {
	if p.target == nil {
		return nil, ErrUnbound
	}
	return p.target, nil
}

// Bind replaces the target.
func (p *Proxy) Bind(target object.Object) { p.target = target }

// Unbind clears the target. It fails when the proxy is already unbound.
func (p *Proxy) Unbind() error {
	if p.target == nil {
		return ErrUnbound
	}
	p.target = nil
	return nil
}

// IsBound reports whether the proxy has a target.
func (p *Proxy) IsBound() bool { return p.target != nil }

// Unwrap follows proxies down to the first non-proxy value.
func Unwrap(o object.Object) (object.Object, error) {
	for {
		p, ok := o.(*Proxy)
		if !ok {
			return o, nil
		}
		t, err := p.Target()
		if err != nil {
			return nil, err
		}
		o = t
	}
}

func (p *Proxy) Type() *object.Class { return Class }

func (p *Proxy) GetAttr(name string) (object.Object, error) {
	t, err := p.Target()
	if err != nil || name == SlotName {
		return t, err
	}
	return object.GetAttr(t, name)
}

func (p *Proxy) SetAttr(name string, value object.Object) error {
	if name == SlotName {
		p.Bind(value)
		return nil
	}
	t, err := p.Target()
	if err != nil {
		return err
	}
	return object.SetAttr(t, name, value)
}

func (p *Proxy) DelAttr(name string) error {
	if name == SlotName {
		return p.Unbind()
	}
	t, err := p.Target()
	if err != nil {
		return err
	}
	return object.DelAttr(t, name)
}

// Dir lists the target's member names plus SlotName.
func (p *Proxy) Dir() ([]string, error) {
	t, err := p.Target()
	if err != nil {
		return nil, err
	}
	names, err := object.Dir(t)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(names, SlotName) {
		names = append(slices.Clone(names), SlotName)
		slices.Sort(names)
	}
	return names, nil
}

func (p *Proxy) DescGet(instance, owner object.Object) (object.Object, error) {
	t, err := p.Target()
	if err != nil {
		return nil, err
	}
	return object.DescGet(t, instance, owner)
}

func (p *Proxy) DescSet(instance, value object.Object) error {
	t, err := p.Target()
	if err != nil {
		return err
	}
	return object.DescSet(t, instance, value)
}

func (p *Proxy) DescDelete(instance object.Object) error {
	t, err := p.Target()
	if err != nil {
		return err
	}
	return object.DescDelete(t, instance)
}
