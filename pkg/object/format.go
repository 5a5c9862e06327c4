package object

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// formatSpec is a parsed [[fill]align][sign][#][0][width][,|_][.precision][type].
type formatSpec struct {
	fill      rune
	align     rune
	sign      rune
	alt       bool
	width     int
	group     rune
	precision int
	typ       rune
}

func isAlign(r rune) bool { return r == '<' || r == '>' || r == '^' || r == '=' }

func parseFormatSpec(spec string) (formatSpec, error) {
	fs := formatSpec{fill: ' ', precision: -1}
	r := []rune(spec)
	i := 0
	switch {
	case len(r) >= 2 && isAlign(r[1]):
		fs.fill, fs.align, i = r[0], r[1], 2
	case len(r) >= 1 && isAlign(r[0]):
		fs.align, i = r[0], 1
	}
	if i < len(r) && (r[i] == '+' || r[i] == '-' || r[i] == ' ') {
		fs.sign = r[i]
		i++
	}
	if i < len(r) && r[i] == '#' {
		fs.alt = true
		i++
	}
	if i < len(r) && r[i] == '0' {
		if fs.align == 0 {
			fs.fill, fs.align = '0', '='
		}
		i++
	}
	start := i
	for i < len(r) && r[i] >= '0' && r[i] <= '9' {
		i++
	}
	if i > start {
		w, err := strconv.Atoi(string(r[start:i]))
		if err != nil {
			return fs, valueErrorf("Too many decimal digits in format string")
		}
		fs.width = w
	}
	if i < len(r) && (r[i] == ',' || r[i] == '_') {
		fs.group = r[i]
		i++
	}
	if i < len(r) && r[i] == '.' {
		i++
		start = i
		for i < len(r) && r[i] >= '0' && r[i] <= '9' {
			i++
		}
		if i == start {
			return fs, valueErrorf("Format specifier missing precision")
		}
		p, err := strconv.Atoi(string(r[start:i]))
		if err != nil {
			return fs, valueErrorf("Too many decimal digits in format string")
		}
		fs.precision = p
	}
	if i < len(r) {
		fs.typ = r[i]
		i++
	}
	if i != len(r) {
		return fs, valueErrorf("Invalid format specifier '%s'", spec)
	}
	return fs, nil
}

func (fs formatSpec) pad(prefix, body string, defaultAlign rune) string {
	align := fs.align
	if align == 0 {
		align = defaultAlign
	}
	n := utf8.RuneCountInString(prefix) + utf8.RuneCountInString(body)
	if n >= fs.width {
		return prefix + body
	}
	fill := func(k int) string { return strings.Repeat(string(fs.fill), k) }
	gap := fs.width - n
	switch align {
	case '<':
		return prefix + body + fill(gap)
	case '^':
		return fill(gap/2) + prefix + body + fill(gap-gap/2)
	case '=':
		return prefix + fill(gap) + body
	}
	return fill(gap) + prefix + body
}

func (fs formatSpec) signPrefix(negative bool) string {
	switch {
	case negative:
		return "-"
	case fs.sign == '+':
		return "+"
	case fs.sign == ' ':
		return " "
	}
	return ""
}

func group(digits string, sep rune, every int) string {
	if sep == 0 || len(digits) <= every {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % every
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += every {
		if b.Len() > 0 {
			b.WriteRune(sep)
		}
		b.WriteString(digits[i : i+every])
	}
	return b.String()
}

func formatInt(i Int, spec string) (string, error) {
	fs, err := parseFormatSpec(spec)
	if err != nil {
		return "", err
	}
	switch fs.typ {
	case 'e', 'E', 'f', 'F', 'g', 'G', '%':
		return formatFloat(float64(i), spec)
	case 'c':
		if i < 0 || i > utf8.MaxRune {
			return "", overflowErrorf("%%c arg not in range(0x110000)")
		}
		return fs.pad("", string(rune(i)), '<'), nil
	case 0, 'd', 'n', 'x', 'X', 'o', 'b':
	default:
		return "", valueErrorf("Unknown format code '%c' for object of type 'int'", fs.typ)
	}
	if fs.precision >= 0 {
		return "", valueErrorf("Precision not allowed in integer format specifier")
	}
	mag := uint64(i)
	if i < 0 {
		mag = uint64(-(i + 1)) + 1
	}
	base, prefix, every := 10, "", 3
	switch fs.typ {
	case 'x', 'X':
		base, prefix, every = 16, "0x", 4
	case 'o':
		base, prefix, every = 8, "0o", 4
	case 'b':
		base, prefix, every = 2, "0b", 4
	}
	if fs.group == ',' && base != 10 {
		return "", valueErrorf("Cannot specify ',' with '%c'.", fs.typ)
	}
	digits := group(strconv.FormatUint(mag, base), fs.group, every)
	if fs.typ == 'X' {
		digits = strings.ToUpper(digits)
		prefix = "0X"
	}
	if !fs.alt {
		prefix = ""
	}
	return fs.pad(fs.signPrefix(i < 0)+prefix, digits, '>'), nil
}

func formatFloat(x float64, spec string) (string, error) {
	fs, err := parseFormatSpec(spec)
	if err != nil {
		return "", err
	}
	neg := math.Signbit(x) && !math.IsNaN(x)
	abs := math.Abs(x)
	prec := fs.precision
	var body string
	switch fs.typ {
	case 0:
		if prec < 0 {
			body = floatRepr(abs)
			break
		}
		body = strconv.FormatFloat(abs, 'g', max(prec, 1), 64)
		if !strings.ContainsAny(body, ".eIN") {
			body += ".0"
		}
	case 'f', 'F', '%':
		if prec < 0 {
			prec = 6
		}
		if fs.typ == '%' {
			abs *= 100
		}
		body = strconv.FormatFloat(abs, 'f', prec, 64)
		if fs.alt && prec == 0 {
			body += "."
		}
	case 'e', 'E':
		if prec < 0 {
			prec = 6
		}
		body = strconv.FormatFloat(abs, 'e', prec, 64)
	case 'g', 'G', 'n':
		if prec < 0 {
			prec = 6
		}
		body = strconv.FormatFloat(abs, 'g', max(prec, 1), 64)
	default:
		return "", valueErrorf("Unknown format code '%c' for object of type 'float'", fs.typ)
	}
	switch {
	case math.IsNaN(x):
		body = "nan"
	case math.IsInf(x, 0):
		body = "inf"
	}
	if fs.group != 0 && !math.IsNaN(x) && !math.IsInf(x, 0) {
		intPart, rest := body, ""
		if k := strings.IndexAny(body, ".e"); k >= 0 {
			intPart, rest = body[:k], body[k:]
		}
		body = group(intPart, fs.group, 3) + rest
	}
	switch fs.typ {
	case 'E', 'F', 'G':
		body = strings.ToUpper(body)
	case '%':
		body += "%"
	}
	return fs.pad(fs.signPrefix(neg), body, '>'), nil
}

func formatStr(s, spec string) (string, error) {
	fs, err := parseFormatSpec(spec)
	if err != nil {
		return "", err
	}
	if fs.typ != 0 && fs.typ != 's' {
		return "", valueErrorf("Unknown format code '%c' for object of type 'str'", fs.typ)
	}
	if fs.sign != 0 {
		return "", valueErrorf("Sign not allowed in string format specifier")
	}
	if fs.align == '=' {
		return "", valueErrorf("'=' alignment not allowed in string format specifier")
	}
	if fs.precision >= 0 {
		if r := []rune(s); len(r) > fs.precision {
			s = string(r[:fs.precision])
		}
	}
	return fs.pad("", s, '<'), nil
}

// formatTemplate implements str.format for positional fields:
// {} {0} {!r} {:spec} and {{ }} escapes.
func formatTemplate(tmpl string, args []Object) (Object, error) {
	var b strings.Builder
	auto, manual := 0, false
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c == '}' {
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return nil, valueErrorf("Single '}' encountered in format string")
		}
		if c != '{' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(tmpl) && tmpl[i+1] == '{' {
			b.WriteByte('{')
			i++
			continue
		}
		end := strings.IndexByte(tmpl[i:], '}')
		if end < 0 {
			return nil, valueErrorf("Single '{' encountered in format string")
		}
		field := tmpl[i+1 : i+end]
		i += end
		name, spec, _ := strings.Cut(field, ":")
		name, conv, _ := strings.Cut(name, "!")
		var idx int
		if name == "" {
			if manual {
				return nil, valueErrorf("cannot switch from manual field specification to automatic field numbering")
			}
			idx = auto
			auto++
		} else {
			n, err := strconv.Atoi(name)
			if err != nil {
				return nil, keyError(Str(name))
			}
			if auto > 0 {
				return nil, valueErrorf("cannot switch from automatic field numbering to manual field specification")
			}
			manual, idx = true, n
		}
		if idx >= len(args) {
			return nil, indexErrorf("Replacement index %d out of range for positional args tuple", idx)
		}
		v := args[idx]
		switch conv {
		case "":
		case "r", "s":
			fn := Repr
			if conv == "s" {
				fn = ToStr
			}
			s, err := fn(v)
			if err != nil {
				return nil, err
			}
			v = Str(s)
		default:
			return nil, valueErrorf("Unknown conversion specifier %s", conv)
		}
		s, err := Format(v, spec)
		if err != nil {
			return nil, err
		}
		b.WriteString(s)
	}
	return Str(b.String()), nil
}
