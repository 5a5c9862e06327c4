package object

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// Str is an immutable text value indexed by code point.
type Str string

// quoteStr renders s as a quoted literal, preferring single quotes.
func quoteStr(s string) string {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteRune(quote)
	for _, r := range s {
		switch {
		case r == quote || r == '\\':
			b.WriteRune('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	b.WriteRune(quote)
	return b.String()
}

func (s Str) Type() *Class { return StrClass }

func (s Str) String() string { return string(s) }

func (s Str) Repr() (string, error) { return quoteStr(string(s)), nil }

func (s Str) Str() (string, error) { return string(s), nil }

func (s Str) FormatSpec(spec string) (string, error) { return formatStr(string(s), spec) }

func (s Str) GetAttr(name string) (Object, error) { return GenericGetAttr(s, nil, name) }

func (s Str) Compare(op CompareOp, other Object) (Object, error) {
	o, ok := other.(Str)
	if !ok {
		return NotImplemented, nil
	}
	return Bool(op.holds(cmpOrdered(string(s), string(o)))), nil
}

func (s Str) Hash() (int64, error) {
	h := int64(xxhash.Sum64String(string(s)) >> 1)
	if h == -1 {
		h = -2
	}
	return h, nil
}

func (s Str) Truth() (bool, error) { return s != "", nil }

func (s Str) Len() (int, error) { return utf8.RuneCountInString(string(s)), nil }

func (s Str) GetItem(key Object) (Object, error) {
	runes := []rune(string(s))
	if sl, ok := key.(*Slice); ok {
		start, stop, step, err := sl.Indices(len(runes))
		if err != nil {
			return nil, err
		}
		var b strings.Builder
		for _, i := range sliceRange(start, stop, step) {
			b.WriteRune(runes[i])
		}
		return Str(b.String()), nil
	}
	i, err := sequenceIndex(key, len(runes), "string")
	if err != nil {
		return nil, err
	}
	return Str(runes[i]), nil
}

func (s Str) Contains(item Object) (bool, error) {
	sub, ok := item.(Str)
	if !ok {
		return false, typeErrorf("'in <string>' requires string as left operand, not %s", TypeName(item))
	}
	return strings.Contains(string(s), string(sub)), nil
}

func (s Str) Iter() (Object, error) {
	runes := []rune(string(s))
	i := 0
	return NewIterator("str_iterator", func() (Object, bool, error) {
		if i >= len(runes) {
			return nil, false, nil
		}
		i++
		return Str(runes[i-1]), true, nil
	}), nil
}

func (s Str) BinaryOp(op Operator, other Object) (Object, error) {
	switch op {
	case OpAdd:
		if o, ok := other.(Str); ok {
			return s + o, nil
		}
	case OpMul:
		if n, ok := asInt(other); ok {
			return s.repeat(n)
		}
	}
	return NotImplemented, nil
}

func (s Str) ReflectedOp(op Operator, other Object) (Object, error) {
	if n, ok := asInt(other); ok && op == OpMul {
		return s.repeat(n)
	}
	return NotImplemented, nil
}

func (s Str) repeat(n Int) (Object, error) {
	if n <= 0 || s == "" {
		return Str(""), nil
	}
	if int64(n) > (1<<40)/int64(len(s)) {
		return nil, overflowErrorf("repeated string is too long")
	}
	return Str(strings.Repeat(string(s), int(n))), nil
}

func strArg(method string, o Object) (string, error) {
	s, ok := o.(Str)
	if !ok {
		return "", typeErrorf("%s() argument must be str, not %s", method, TypeName(o))
	}
	return string(s), nil
}

func optionalStrArg(method string, args []Object, i int) (string, bool, error) {
	if len(args) <= i || args[i] == None {
		return "", false, nil
	}
	s, err := strArg(method, args[i])
	return s, true, err
}

func init() {
	defineMethod(StrClass, "upper", 0, 0, func(s Str, _ []Object) (Object, error) {
		return Str(strings.ToUpper(string(s))), nil
	})
	defineMethod(StrClass, "lower", 0, 0, func(s Str, _ []Object) (Object, error) {
		return Str(strings.ToLower(string(s))), nil
	})
	defineMethod(StrClass, "title", 0, 0, func(s Str, _ []Object) (Object, error) {
		var b strings.Builder
		inWord := false
		for _, r := range string(s) {
			if inWord {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			inWord = unicode.IsLetter(r)
		}
		return Str(b.String()), nil
	})
	for _, m := range []struct {
		name     string
		trim     func(string, string) string
		trimFunc func(string, func(rune) bool) string
	}{
		{"strip", strings.Trim, strings.TrimFunc},
		{"lstrip", strings.TrimLeft, strings.TrimLeftFunc},
		{"rstrip", strings.TrimRight, strings.TrimRightFunc},
	} {
		defineMethod(StrClass, m.name, 0, 1, func(s Str, args []Object) (Object, error) {
			chars, ok, err := optionalStrArg(m.name, args, 0)
			if err != nil {
				return nil, err
			}
			if !ok {
				return Str(m.trimFunc(string(s), unicode.IsSpace)), nil
			}
			return Str(m.trim(string(s), chars)), nil
		})
	}
	defineMethod(StrClass, "split", 0, 2, func(s Str, args []Object) (Object, error) {
		sep, ok, err := optionalStrArg("split", args, 0)
		if err != nil {
			return nil, err
		}
		limit := -1
		if len(args) > 1 {
			n, err := Index(args[1])
			if err != nil {
				return nil, err
			}
			limit = int(n)
		}
		var parts []string
		switch {
		case !ok:
			parts = splitWhitespace(string(s), limit)
		case sep == "":
			return nil, valueErrorf("empty separator")
		case limit < 0:
			parts = strings.Split(string(s), sep)
		default:
			parts = strings.SplitN(string(s), sep, limit+1)
		}
		items := make([]Object, len(parts))
		for i, p := range parts {
			items[i] = Str(p)
		}
		return NewList(items...), nil
	})
	defineMethod(StrClass, "join", 1, 1, func(s Str, args []Object) (Object, error) {
		items, err := Collect(args[0])
		if err != nil {
			return nil, err
		}
		parts := make([]string, len(items))
		for i, item := range items {
			p, ok := item.(Str)
			if !ok {
				return nil, typeErrorf("sequence item %d: expected str instance, %s found", i, TypeName(item))
			}
			parts[i] = string(p)
		}
		return Str(strings.Join(parts, string(s))), nil
	})
	defineMethod(StrClass, "startswith", 1, 1, func(s Str, args []Object) (Object, error) {
		return affixMatch("startswith", s, args[0], strings.HasPrefix)
	})
	defineMethod(StrClass, "endswith", 1, 1, func(s Str, args []Object) (Object, error) {
		return affixMatch("endswith", s, args[0], strings.HasSuffix)
	})
	defineMethod(StrClass, "replace", 2, 3, func(s Str, args []Object) (Object, error) {
		old, err := strArg("replace", args[0])
		if err != nil {
			return nil, err
		}
		repl, err := strArg("replace", args[1])
		if err != nil {
			return nil, err
		}
		n := -1
		if len(args) > 2 {
			c, err := Index(args[2])
			if err != nil {
				return nil, err
			}
			n = int(c)
		}
		return Str(strings.Replace(string(s), old, repl, n)), nil
	})
	defineMethod(StrClass, "find", 1, 1, func(s Str, args []Object) (Object, error) {
		sub, err := strArg("find", args[0])
		if err != nil {
			return nil, err
		}
		i := strings.Index(string(s), sub)
		if i < 0 {
			return Int(-1), nil
		}
		return Int(utf8.RuneCountInString(string(s)[:i])), nil
	})
	defineMethod(StrClass, "count", 1, 1, func(s Str, args []Object) (Object, error) {
		sub, err := strArg("count", args[0])
		if err != nil {
			return nil, err
		}
		if sub == "" {
			return Int(utf8.RuneCountInString(string(s)) + 1), nil
		}
		return Int(strings.Count(string(s), sub)), nil
	})
	defineMethod(StrClass, "format", 0, -1, func(s Str, args []Object) (Object, error) {
		return formatTemplate(string(s), args)
	})
}

func affixMatch(method string, s Str, arg Object, match func(string, string) bool) (Object, error) {
	if t, ok := arg.(*Tuple); ok {
		for _, item := range t.Items {
			a, err := strArg(method, item)
			if err != nil {
				return nil, err
			}
			if match(string(s), a) {
				return True, nil
			}
		}
		return False, nil
	}
	a, err := strArg(method, arg)
	if err != nil {
		return nil, err
	}
	return Bool(match(string(s), a)), nil
}

func splitWhitespace(s string, limit int) []string {
	if limit < 0 {
		return strings.Fields(s)
	}
	var parts []string
	rest := strings.TrimLeftFunc(s, unicode.IsSpace)
	for rest != "" && len(parts) < limit {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			break
		}
		parts = append(parts, rest[:end])
		rest = strings.TrimLeftFunc(rest[end:], unicode.IsSpace)
	}
	if rest != "" {
		parts = append(parts, rest)
	}
	return parts
}

func newStr(_ *Class, args []Object, kwargs map[string]Object) (Object, error) {
	if err := checkArity("str", args, kwargs, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return Str(""), nil
	}
	s, err := ToStr(args[0])
	return Str(s), err
}
