package object

import "fmt"

// Func is a callable implemented in Go. Placed in a class dictionary it binds
// to instances, receiving the instance as its first argument.
type Func struct {
	Name string
	Fn   func(args []Object, kwargs map[string]Object) (Object, error)
}

// NewFunc wraps fn as a callable object.
func NewFunc(name string, fn func(args []Object, kwargs map[string]Object) (Object, error)) *Func {
	return &Func{Name: name, Fn: fn}
}

func (f *Func) Type() *Class { return FuncClass }

func (f *Func) Repr() (string, error) { return fmt.Sprintf("<function %s>", f.Name), nil }

func (f *Func) Hash() (int64, error) { return int64(ID(f) >> 4), nil }

func (f *Func) Call(args []Object, kwargs map[string]Object) (Object, error) {
	r, err := f.Fn(args, kwargs)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return None, nil
	}
	return r, nil
}

func (f *Func) GetAttr(name string) (Object, error) {
	if name == "__name__" {
		return Str(f.Name), nil
	}
	return GenericGetAttr(f, nil, name)
}

// DescGet binds f to instance; access through the class returns f itself.
func (f *Func) DescGet(instance, _ Object) (Object, error) {
	if instance == nil || instance == None {
		return f, nil
	}
	return &BoundMethod{Self: instance, Func: f}, nil
}

// BoundMethod is a function bound to the instance it was read from.
type BoundMethod struct {
	Self Object
	Func Object
}

func (m *BoundMethod) Type() *Class { return MethodClass }

func (m *BoundMethod) Repr() (string, error) {
	self, err := Repr(m.Self)
	if err != nil {
		return "", err
	}
	name := "?"
	if f, ok := m.Func.(*Func); ok {
		name = f.Name
	}
	return fmt.Sprintf("<bound method %s of %s>", name, self), nil
}

func (m *BoundMethod) Call(args []Object, kwargs map[string]Object) (Object, error) {
	full := make([]Object, 0, len(args)+1)
	full = append(full, m.Self)
	full = append(full, args...)
	return Call(m.Func, full, kwargs)
}

func (m *BoundMethod) Compare(op CompareOp, other Object) (Object, error) {
	o, ok := other.(*BoundMethod)
	if !ok || (op != CmpEq && op != CmpNe) {
		return NotImplemented, nil
	}
	same := Is(m.Self, o.Self) && Is(m.Func, o.Func)
	return Bool(same == (op == CmpEq)), nil
}

func (m *BoundMethod) Hash() (int64, error) {
	return int64((ID(m.Self) ^ ID(m.Func)) >> 4), nil
}

// Property is a data descriptor built from accessor functions. A nil
// accessor makes the corresponding operation fail with ErrAttribute.
type Property struct {
	Getter  func(instance Object) (Object, error)
	Setter  func(instance, value Object) error
	Deleter func(instance Object) error
}

func (p *Property) Type() *Class { return PropertyClass }

func (p *Property) DescGet(instance, _ Object) (Object, error) {
	if instance == nil || instance == None {
		return p, nil
	}
	if p.Getter == nil {
		return nil, fmt.Errorf("%w: property of '%s' object has no getter", ErrAttribute, TypeName(instance))
	}
	return p.Getter(instance)
}

func (p *Property) DescSet(instance, value Object) error {
	if p.Setter == nil {
		return fmt.Errorf("%w: property of '%s' object has no setter", ErrAttribute, TypeName(instance))
	}
	return p.Setter(instance, value)
}

func (p *Property) DescDelete(instance Object) error {
	if p.Deleter == nil {
		return fmt.Errorf("%w: property of '%s' object has no deleter", ErrAttribute, TypeName(instance))
	}
	return p.Deleter(instance)
}

// DescGet computes the value of descriptor desc accessed through instance.
// Values that are not Go descriptors are asked for a __get__ member.
func DescGet(desc, instance, owner Object) (Object, error) {
	if d, ok := desc.(DescriptorGetter); ok {
		return d.DescGet(instance, owner)
	}
	return callDescriptorMember(desc, "__get__", instance, owner)
}

// DescSet assigns through descriptor desc on instance.
func DescSet(desc, instance, value Object) error {
	if d, ok := desc.(DescriptorSetter); ok {
		return d.DescSet(instance, value)
	}
	_, err := callDescriptorMember(desc, "__set__", instance, value)
	return err
}

// DescDelete deletes through descriptor desc on instance.
func DescDelete(desc, instance Object) error {
	if d, ok := desc.(DescriptorDeleter); ok {
		return d.DescDelete(instance)
	}
	_, err := callDescriptorMember(desc, "__delete__", instance)
	return err
}

func callDescriptorMember(desc Object, name string, args ...Object) (Object, error) {
	m, err := GetAttr(desc, name)
	if err != nil {
		return nil, err
	}
	return Call(m, args, nil)
}

func checkArity(name string, args []Object, kwargs map[string]Object, lo, hi int) error {
	if len(kwargs) > 0 {
		return typeErrorf("%s() takes no keyword arguments", name)
	}
	if len(args) < lo || (hi >= 0 && len(args) > hi) {
		switch {
		case lo == hi:
			return typeErrorf("%s() takes exactly %d argument(s) (%d given)", name, lo, len(args))
		case hi < 0:
			return typeErrorf("%s() takes at least %d argument(s) (%d given)", name, lo, len(args))
		default:
			return typeErrorf("%s() takes from %d to %d arguments (%d given)", name, lo, hi, len(args))
		}
	}
	return nil
}

// defineMethod installs a Go method on a built-in class. The receiver is
// checked against T and the remaining positional arguments against lo..hi
// (hi < 0 for no upper bound).
func defineMethod[T Object](cls *Class, name string, lo, hi int, fn func(self T, args []Object) (Object, error)) {
	cls.Dict[name] = NewFunc(name, func(args []Object, kwargs map[string]Object) (Object, error) {
		if len(args) == 0 {
			return nil, typeErrorf("descriptor '%s' of '%s' object needs an argument", name, cls.Name)
		}
		self, ok := args[0].(T)
		if !ok {
			return nil, typeErrorf("descriptor '%s' for '%s' objects doesn't apply to a '%s' object", name, cls.Name, TypeName(args[0]))
		}
		if err := checkArity(name, args[1:], kwargs, lo, hi); err != nil {
			return nil, err
		}
		return fn(self, args[1:])
	})
}
