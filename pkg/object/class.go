package object

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Constructor builds the value produced by calling a class.
type Constructor func(cls *Class, args []Object, kwargs map[string]Object) (Object, error)

// Class is a type object: a name, bases, a method resolution order and a
// member dictionary.
type Class struct {
	Name  string
	Bases []*Class
	Dict  map[string]Object

	mro     []*Class
	ctor    Constructor
	builtin bool
}

func builtinClass(name string, bases ...*Class) *Class {
	return &Class{Name: name, Bases: bases, Dict: map[string]Object{}, builtin: true}
}

// Built-in classes.
var (
	ObjectClass         = builtinClass("object")
	TypeClass           = builtinClass("type", ObjectClass)
	NoneClass           = builtinClass("NoneType", ObjectClass)
	NotImplementedClass = builtinClass("NotImplementedType", ObjectClass)
	IntClass            = builtinClass("int", ObjectClass)
	BoolClass           = builtinClass("bool", IntClass)
	FloatClass          = builtinClass("float", ObjectClass)
	ComplexClass        = builtinClass("complex", ObjectClass)
	StrClass            = builtinClass("str", ObjectClass)
	TupleClass          = builtinClass("tuple", ObjectClass)
	ListClass           = builtinClass("list", ObjectClass)
	DictClass           = builtinClass("dict", ObjectClass)
	SliceClass          = builtinClass("slice", ObjectClass)
	FuncClass           = builtinClass("function", ObjectClass)
	MethodClass         = builtinClass("method", ObjectClass)
	PropertyClass       = builtinClass("property", ObjectClass)
	IteratorClass       = builtinClass("iterator", ObjectClass)
)

func init() {
	for _, c := range []*Class{
		ObjectClass, TypeClass, NoneClass, NotImplementedClass, IntClass, BoolClass,
		FloatClass, ComplexClass, StrClass, TupleClass, ListClass, DictClass, SliceClass,
		FuncClass, MethodClass, PropertyClass, IteratorClass,
	} {
		c.mro = mustLinearize(c)
	}
	ObjectClass.ctor = newObject
	TypeClass.ctor = newType
	IntClass.ctor = newInt
	BoolClass.ctor = newBool
	FloatClass.ctor = newFloat
	ComplexClass.ctor = newComplex
	StrClass.ctor = newStr
	TupleClass.ctor = newTuple
	ListClass.ctor = newList
	DictClass.ctor = newDict
	SliceClass.ctor = newSlice
}

// NewClass creates a user class. With no bases the class derives from object.
func NewClass(name string, bases []*Class, dict map[string]Object) (*Class, error) {
	if len(bases) == 0 {
		bases = []*Class{ObjectClass}
	}
	c := &Class{Name: name, Bases: slices.Clone(bases), Dict: make(map[string]Object, len(dict))}
	for k, v := range dict {
		c.Dict[k] = v
	}
	mro, err := linearize(c)
	if err != nil {
		return nil, err
	}
	c.mro = mro
	return c, nil
}

// NewBuiltinClass creates an immutable class whose calls go to ctor. It panics
// if the bases admit no consistent method resolution order.
func NewBuiltinClass(name string, ctor Constructor, bases ...*Class) *Class {
	if len(bases) == 0 {
		bases = []*Class{ObjectClass}
	}
	c := builtinClass(name, bases...)
	c.ctor = ctor
	c.mro = mustLinearize(c)
	return c
}

func mustLinearize(c *Class) []*Class {
	mro, err := linearize(c)
	if err != nil {
		panic(err)
	}
	return mro
}

// linearize computes the C3 method resolution order of c.
func linearize(c *Class) ([]*Class, error) {
	seqs := make([][]*Class, 0, len(c.Bases)+1)
	for _, b := range c.Bases {
		seqs = append(seqs, slices.Clone(b.MRO()))
	}
	seqs = append(seqs, slices.Clone(c.Bases))

	result := []*Class{c}
	for {
		live := seqs[:0]
		for _, s := range seqs {
			if len(s) > 0 {
				live = append(live, s)
			}
		}
		seqs = live
		if len(seqs) == 0 {
			return result, nil
		}

		var head *Class
		for _, s := range seqs {
			candidate := s[0]
			if !inTail(candidate, seqs) {
				head = candidate
				break
			}
		}
		if head == nil {
			names := make([]string, 0, len(c.Bases))
			for _, b := range c.Bases {
				names = append(names, b.Name)
			}
			return nil, typeErrorf("cannot create a consistent method resolution order (MRO) for bases %s", strings.Join(names, ", "))
		}
		result = append(result, head)
		for i, s := range seqs {
			if s[0] == head {
				seqs[i] = s[1:]
			}
		}
	}
}

func inTail(c *Class, seqs [][]*Class) bool {
	for _, s := range seqs {
		if slices.Contains(s[1:], c) {
			return true
		}
	}
	return false
}

// MRO is the method resolution order, starting with c itself.
func (c *Class) MRO() []*Class {
	if c.mro == nil {
		if mro, err := linearize(c); err == nil {
			c.mro = mro
		} else {
			c.mro = []*Class{c}
		}
	}
	return c.mro
}

// IsSubclassOf reports whether other appears in c's method resolution order.
func (c *Class) IsSubclassOf(other *Class) bool {
	return slices.Contains(c.MRO(), other)
}

// Lookup finds name in the dictionaries along the method resolution order.
func (c *Class) Lookup(name string) (Object, bool) {
	for _, k := range c.MRO() {
		if v, ok := k.Dict[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (c *Class) Type() *Class { return TypeClass }

func (c *Class) Repr() (string, error) { return fmt.Sprintf("<class '%s'>", c.Name), nil }

func (c *Class) String() string { return fmt.Sprintf("<class '%s'>", c.Name) }

func (c *Class) Hash() (int64, error) { return int64(ID(c) >> 4), nil }

func (c *Class) GetAttr(name string) (Object, error) {
	switch name {
	case "__name__":
		return Str(c.Name), nil
	case "__bases__":
		items := make([]Object, len(c.Bases))
		for i, b := range c.Bases {
			items[i] = b
		}
		return NewTuple(items...), nil
	case "__mro__":
		mro := c.MRO()
		items := make([]Object, len(mro))
		for i, k := range mro {
			items[i] = k
		}
		return NewTuple(items...), nil
	case "__class__":
		return TypeClass, nil
	}
	if v, ok := c.Lookup(name); ok {
		return bindMember(v, None, c)
	}
	return nil, attributeError(c, name)
}

func (c *Class) SetAttr(name string, value Object) error {
	if c.builtin {
		return typeErrorf("cannot set '%s' attribute of immutable type '%s'", name, c.Name)
	}
	switch name {
	case "__name__", "__bases__", "__mro__", "__class__":
		return fmt.Errorf("%w: attribute '%s' of type '%s' is read-only", ErrAttribute, name, c.Name)
	}
	c.Dict[name] = value
	return nil
}

func (c *Class) DelAttr(name string) error {
	if c.builtin {
		return typeErrorf("cannot delete '%s' attribute of immutable type '%s'", name, c.Name)
	}
	if _, ok := c.Dict[name]; !ok {
		return attributeError(c, name)
	}
	delete(c.Dict, name)
	return nil
}

func (c *Class) Dir() ([]string, error) {
	seen := map[string]bool{"__bases__": true, "__class__": true, "__mro__": true, "__name__": true}
	for _, k := range c.MRO() {
		for name := range k.Dict {
			seen[name] = true
		}
	}
	return sortedKeys(seen), nil
}

// Call constructs a value. User classes create an Instance and run __init__.
func (c *Class) Call(args []Object, kwargs map[string]Object) (Object, error) {
	if c.ctor != nil {
		return c.ctor(c, args, kwargs)
	}
	if c.builtin {
		return nil, typeErrorf("cannot create '%s' instances", c.Name)
	}
	inst := NewInstance(c)
	init, ok := c.Lookup("__init__")
	if !ok {
		if len(args) > 0 || len(kwargs) > 0 {
			return nil, typeErrorf("%s() takes no arguments", c.Name)
		}
		return inst, nil
	}
	bound, err := bindMember(init, inst, c)
	if err != nil {
		return nil, err
	}
	r, err := Call(bound, args, kwargs)
	if err != nil {
		return nil, err
	}
	if r != nil && r != None {
		return nil, typeErrorf("__init__() should return None, not '%s'", TypeName(r))
	}
	return inst, nil
}

// InstanceCheck answers instance-of for this class: the instance's own type
// first, then whatever its __class__ member reports.
func (c *Class) InstanceCheck(instance Object) (bool, error) {
	if instance.Type().IsSubclassOf(c) {
		return true, nil
	}
	attr, err := GetAttr(instance, "__class__")
	if err != nil {
		if errors.Is(err, ErrAttribute) {
			return false, nil
		}
		return false, err
	}
	if k, ok := attr.(*Class); ok && k != instance.Type() {
		return k.IsSubclassOf(c), nil
	}
	return false, nil
}

// SubclassCheck answers subclass-of for this class. A concrete class is
// checked through its MRO; anything else is walked through its __bases__
// member, which never compares the candidate itself with a forwarded class.
func (c *Class) SubclassCheck(candidate Object) (bool, error) {
	if k, ok := candidate.(*Class); ok {
		return k.IsSubclassOf(c), nil
	}
	if _, ok, err := basesOf(candidate); err != nil {
		return false, err
	} else if !ok {
		return false, typeErrorf("issubclass() arg 1 must be a class")
	}
	return abstractIsSubclass(candidate, c)
}

func basesOf(o Object) ([]Object, bool, error) {
	attr, err := GetAttr(o, "__bases__")
	if err != nil {
		if errors.Is(err, ErrAttribute) {
			return nil, false, nil
		}
		return nil, false, err
	}
	t, ok := attr.(*Tuple)
	if !ok {
		return nil, false, nil
	}
	return t.Items, true, nil
}

func abstractIsSubclass(derived, cls Object) (bool, error) {
	for {
		if Is(derived, cls) {
			return true, nil
		}
		bases, _, err := basesOf(derived)
		if err != nil {
			return false, err
		}
		switch len(bases) {
		case 0:
			return false, nil
		case 1:
			derived = bases[0]
			continue
		}
		for _, b := range bases {
			ok, err := abstractIsSubclass(b, cls)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	}
}

// IsInstance reports whether instance is an instance of cls. cls may be a
// class, a tuple of classes, or any TypeLike value.
func IsInstance(instance, cls Object) (bool, error) {
	if k, ok := cls.(*Class); ok && instance.Type() == k {
		return true, nil
	}
	switch t := cls.(type) {
	case *Tuple:
		for _, item := range t.Items {
			ok, err := IsInstance(instance, item)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case TypeLike:
		return t.InstanceCheck(instance)
	}
	return false, typeErrorf("isinstance() arg 2 must be a type, a tuple of types, or a union")
}

// IsSubclass reports whether candidate is a subclass of cls. cls may be a
// class, a tuple of classes, or any TypeLike value.
func IsSubclass(candidate, cls Object) (bool, error) {
	switch t := cls.(type) {
	case *Tuple:
		for _, item := range t.Items {
			ok, err := IsSubclass(candidate, item)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case TypeLike:
		return t.SubclassCheck(candidate)
	}
	return false, typeErrorf("issubclass() arg 2 must be a class, a tuple of classes, or a union")
}

func bindMember(attr, instance Object, owner *Class) (Object, error) {
	if isDescriptor(attr) {
		return DescGet(attr, instance, owner)
	}
	return attr, nil
}

func sortedKeys(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newObject(_ *Class, args []Object, kwargs map[string]Object) (Object, error) {
	if len(args) > 0 || len(kwargs) > 0 {
		return nil, typeErrorf("object() takes no arguments")
	}
	return NewInstance(ObjectClass), nil
}

func newType(_ *Class, args []Object, _ map[string]Object) (Object, error) {
	switch len(args) {
	case 1:
		return args[0].Type(), nil
	case 3:
		name, ok := args[0].(Str)
		if !ok {
			return nil, typeErrorf("type() argument 1 must be str, not %s", TypeName(args[0]))
		}
		baseTuple, ok := args[1].(*Tuple)
		if !ok {
			return nil, typeErrorf("type() argument 2 must be tuple, not %s", TypeName(args[1]))
		}
		bases := make([]*Class, 0, len(baseTuple.Items))
		for _, b := range baseTuple.Items {
			k, ok := b.(*Class)
			if !ok {
				return nil, typeErrorf("type() bases must be classes, not %s", TypeName(b))
			}
			bases = append(bases, k)
		}
		d, ok := args[2].(*Dict)
		if !ok {
			return nil, typeErrorf("type() argument 3 must be dict, not %s", TypeName(args[2]))
		}
		members := make(map[string]Object, len(d.entries))
		for _, e := range d.entries {
			k, ok := e.key.(Str)
			if !ok {
				return nil, typeErrorf("type() dict keys must be str, not %s", TypeName(e.key))
			}
			members[string(k)] = e.value
		}
		return NewClass(string(name), bases, members)
	}
	return nil, typeErrorf("type() takes 1 or 3 arguments")
}
