package object

// Instance is an object of a user class. Its protocols are the special
// methods found on the class (__eq__, __add__, __len__, __iter__, ...).
type Instance struct {
	class *Class
	Dict  map[string]Object
}

// NewInstance creates an empty instance of cls without running __init__.
func NewInstance(cls *Class) *Instance {
	return &Instance{class: cls, Dict: map[string]Object{}}
}

func (i *Instance) Type() *Class { return i.class }

func (i *Instance) GetAttr(name string) (Object, error) {
	if name == "__dict__" {
		d := NewDict()
		for _, k := range sortedDictKeys(i.Dict) {
			if err := d.Set(Str(k), i.Dict[k]); err != nil {
				return nil, err
			}
		}
		return d, nil
	}
	return GenericGetAttr(i, i.Dict, name)
}

func (i *Instance) SetAttr(name string, value Object) error {
	return GenericSetAttr(i, i.Dict, name, value)
}

func (i *Instance) DelAttr(name string) error {
	return GenericDelAttr(i, i.Dict, name)
}

func (i *Instance) Dir() ([]string, error) {
	names, err := i.class.Dir()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(names)+len(i.Dict))
	for _, n := range names {
		seen[n] = true
	}
	for n := range i.Dict {
		seen[n] = true
	}
	return sortedKeys(seen), nil
}

// special looks a special method up on the class, never the instance, and
// binds it to i.
func (i *Instance) special(name string) (Object, bool, error) {
	attr, ok := i.class.Lookup(name)
	if !ok {
		return nil, false, nil
	}
	bound, err := bindMember(attr, i, i.class)
	return bound, true, err
}

func (i *Instance) callSpecial(name string, args ...Object) (Object, bool, error) {
	m, ok, err := i.special(name)
	if !ok || err != nil {
		return nil, ok, err
	}
	r, err := Call(m, args, nil)
	return r, true, err
}

func (i *Instance) Repr() (string, error) {
	r, ok, err := i.callSpecial("__repr__")
	if !ok {
		return defaultRepr(i), nil
	}
	if err != nil {
		return "", err
	}
	s, isStr := r.(Str)
	if !isStr {
		return "", typeErrorf("__repr__ returned non-string (type %s)", TypeName(r))
	}
	return string(s), nil
}

func (i *Instance) Str() (string, error) {
	r, ok, err := i.callSpecial("__str__")
	if !ok {
		return i.Repr()
	}
	if err != nil {
		return "", err
	}
	s, isStr := r.(Str)
	if !isStr {
		return "", typeErrorf("__str__ returned non-string (type %s)", TypeName(r))
	}
	return string(s), nil
}

func (i *Instance) FormatSpec(spec string) (string, error) {
	r, ok, err := i.callSpecial("__format__", Str(spec))
	if !ok {
		if spec != "" {
			return "", typeErrorf("unsupported format string passed to %s.__format__", i.class.Name)
		}
		return i.Str()
	}
	if err != nil {
		return "", err
	}
	s, isStr := r.(Str)
	if !isStr {
		return "", typeErrorf("__format__ must return a str, not %s", TypeName(r))
	}
	return string(s), nil
}

func (i *Instance) Compare(op CompareOp, other Object) (Object, error) {
	r, ok, err := i.callSpecial(op.Method(), other)
	if !ok {
		return NotImplemented, nil
	}
	return r, err
}

func (i *Instance) Hash() (int64, error) {
	r, ok, err := i.callSpecial("__hash__")
	if !ok {
		if _, hasEq := i.class.Lookup("__eq__"); hasEq {
			return 0, typeErrorf("unhashable type: '%s'", i.class.Name)
		}
		return int64(ID(i) >> 4), nil
	}
	if err != nil {
		return 0, err
	}
	n, isInt := r.(Int)
	if !isInt {
		return 0, typeErrorf("__hash__ method should return an integer")
	}
	return n.Hash()
}

func (i *Instance) Truth() (bool, error) {
	r, ok, err := i.callSpecial("__bool__")
	if ok {
		if err != nil {
			return false, err
		}
		b, isBool := r.(Bool)
		if !isBool {
			return false, typeErrorf("__bool__ should return bool, returned %s", TypeName(r))
		}
		return bool(b), nil
	}
	if _, hasLen := i.class.Lookup("__len__"); hasLen {
		n, err := i.Len()
		return n != 0, err
	}
	return true, nil
}

func (i *Instance) Call(args []Object, kwargs map[string]Object) (Object, error) {
	m, ok, err := i.special("__call__")
	if !ok {
		return nil, typeErrorf("'%s' object is not callable", i.class.Name)
	}
	if err != nil {
		return nil, err
	}
	return Call(m, args, kwargs)
}

func (i *Instance) Len() (int, error) {
	r, ok, err := i.callSpecial("__len__")
	if !ok {
		return 0, typeErrorf("object of type '%s' has no len()", i.class.Name)
	}
	if err != nil {
		return 0, err
	}
	n, err := Index(r)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, valueErrorf("__len__() should return >= 0")
	}
	return int(n), nil
}

func (i *Instance) GetItem(key Object) (Object, error) {
	r, ok, err := i.callSpecial("__getitem__", key)
	if !ok {
		return nil, typeErrorf("'%s' object is not subscriptable", i.class.Name)
	}
	return r, err
}

func (i *Instance) SetItem(key, value Object) error {
	_, ok, err := i.callSpecial("__setitem__", key, value)
	if !ok {
		return typeErrorf("'%s' object does not support item assignment", i.class.Name)
	}
	return err
}

func (i *Instance) DelItem(key Object) error {
	_, ok, err := i.callSpecial("__delitem__", key)
	if !ok {
		return typeErrorf("'%s' object does not support item deletion", i.class.Name)
	}
	return err
}

func (i *Instance) Contains(item Object) (bool, error) {
	r, ok, err := i.callSpecial("__contains__", item)
	if !ok {
		return ContainsByIteration(i, item)
	}
	if err != nil {
		return false, err
	}
	return Truth(r)
}

func (i *Instance) Iter() (Object, error) {
	r, ok, err := i.callSpecial("__iter__")
	if !ok {
		if _, hasGetItem := i.class.Lookup("__getitem__"); hasGetItem {
			return newSequenceIterator(i), nil
		}
		return nil, typeErrorf("'%s' object is not iterable", i.class.Name)
	}
	if err != nil {
		return nil, err
	}
	if _, isIter := r.(Iterator); !isIter {
		return nil, typeErrorf("iter() returned non-iterator of type '%s'", TypeName(r))
	}
	return r, nil
}

func (i *Instance) Next() (Object, error) {
	r, ok, err := i.callSpecial("__next__")
	if !ok {
		return nil, typeErrorf("'%s' object is not an iterator", i.class.Name)
	}
	return r, err
}

func (i *Instance) Reversed() (Object, error) {
	r, ok, err := i.callSpecial("__reversed__")
	if !ok {
		return reversedSequence(i)
	}
	return r, err
}

func (i *Instance) BinaryOp(op Operator, other Object) (Object, error) {
	r, ok, err := i.callSpecial(op.Method(), other)
	if !ok {
		return NotImplemented, nil
	}
	return r, err
}

func (i *Instance) ReflectedOp(op Operator, other Object) (Object, error) {
	r, ok, err := i.callSpecial(op.ReflectedMethod(), other)
	if !ok {
		return NotImplemented, nil
	}
	return r, err
}

func (i *Instance) InPlaceOp(op Operator, other Object) (Object, error) {
	if !op.HasInPlace() {
		return NotImplemented, nil
	}
	r, ok, err := i.callSpecial(op.InPlaceMethod(), other)
	if !ok {
		return NotImplemented, nil
	}
	return r, err
}

func (i *Instance) UnaryOp(op UnaryOperator) (Object, error) {
	r, ok, err := i.callSpecial(op.Method())
	if !ok {
		return nil, typeErrorf("bad operand type for %s: '%s'", op.errorSymbol(), i.class.Name)
	}
	return r, err
}

func (i *Instance) PowMod(exp, mod Object) (Object, error) {
	r, ok, err := i.callSpecial("__pow__", exp, mod)
	if !ok {
		return NotImplemented, nil
	}
	return r, err
}

func (i *Instance) AsInt() (Object, error) {
	r, ok, err := i.callSpecial("__int__")
	if !ok {
		if _, hasIndex := i.class.Lookup("__index__"); hasIndex {
			return i.Index()
		}
		return nil, typeErrorf("int() argument must be a string, a bytes-like object or a real number, not '%s'", i.class.Name)
	}
	return r, err
}

func (i *Instance) AsFloat() (Object, error) {
	r, ok, err := i.callSpecial("__float__")
	if !ok {
		return nil, typeErrorf("float() argument must be a string or a real number, not '%s'", i.class.Name)
	}
	return r, err
}

func (i *Instance) AsComplex() (Object, error) {
	r, ok, err := i.callSpecial("__complex__")
	if !ok {
		f, err := i.AsFloat()
		if err != nil {
			return nil, typeErrorf("complex() first argument must be a string or a number, not '%s'", i.class.Name)
		}
		return ToComplex(f, nil)
	}
	return r, err
}

func (i *Instance) Index() (Int, error) {
	r, ok, err := i.callSpecial("__index__")
	if !ok {
		return 0, typeErrorf("'%s' object cannot be interpreted as an integer", i.class.Name)
	}
	if err != nil {
		return 0, err
	}
	n, isInt := asInt(r)
	if !isInt {
		return 0, typeErrorf("__index__ returned non-int (type %s)", TypeName(r))
	}
	return n, nil
}

func (i *Instance) Round(ndigits Object) (Object, error) {
	args := []Object{}
	if ndigits != nil {
		args = append(args, ndigits)
	}
	r, ok, err := i.callSpecial("__round__", args...)
	if !ok {
		return nil, typeErrorf("type %s doesn't define __round__ method", i.class.Name)
	}
	return r, err
}

// GenericGetAttr resolves name on o the default way: data descriptors on the
// class, then dict, then other class members (binding descriptors such as
// functions to o).
func GenericGetAttr(o Object, dict map[string]Object, name string) (Object, error) {
	if name == "__class__" {
		return o.Type(), nil
	}
	cls := o.Type()
	attr, found := cls.Lookup(name)
	if found && isDataDescriptor(attr) && isDescriptor(attr) {
		return DescGet(attr, o, cls)
	}
	if v, ok := dict[name]; ok {
		return v, nil
	}
	if found {
		return bindMember(attr, o, cls)
	}
	return nil, attributeError(o, name)
}

// GenericSetAttr assigns name on o: through a data descriptor on the class
// if there is one, else into dict. A nil dict makes plain members read-only.
func GenericSetAttr(o Object, dict map[string]Object, name string, value Object) error {
	if attr, found := o.Type().Lookup(name); found && isDataDescriptor(attr) {
		return DescSet(attr, o, value)
	}
	if dict == nil {
		return attributeError(o, name)
	}
	if name == "__class__" {
		return typeErrorf("__class__ assignment is not supported")
	}
	dict[name] = value
	return nil
}

// GenericDelAttr removes name from o: through a data descriptor on the class
// if there is one, else from dict.
func GenericDelAttr(o Object, dict map[string]Object, name string) error {
	if attr, found := o.Type().Lookup(name); found && isDataDescriptor(attr) {
		return DescDelete(attr, o)
	}
	if _, ok := dict[name]; !ok {
		return attributeError(o, name)
	}
	delete(dict, name)
	return nil
}

// hasSpecial reports whether o is an instance whose class defines name.
func hasSpecial(o Object, name string) bool {
	inst, ok := o.(*Instance)
	if !ok {
		return false
	}
	_, found := inst.class.Lookup(name)
	return found
}

func isDescriptor(attr Object) bool {
	if _, ok := attr.(DescriptorGetter); ok {
		return true
	}
	return hasSpecial(attr, "__get__")
}

func isDataDescriptor(attr Object) bool {
	switch attr.(type) {
	case DescriptorSetter, DescriptorDeleter:
		return true
	}
	return hasSpecial(attr, "__set__") || hasSpecial(attr, "__delete__")
}

func sortedDictKeys(m map[string]Object) []string {
	set := make(map[string]bool, len(m))
	for k := range m {
		set[k] = true
	}
	return sortedKeys(set)
}
