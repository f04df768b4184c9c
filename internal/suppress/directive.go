package suppress

import (
	"sort"
	"strings"
	"unicode"
)

// Annotation is the directive keyword recognised in source text.
const Annotation = "@SuppressWarnings"

// Directive is a parsed suppression line: a set of rule ids plus the
// indentation it is rendered with.
type Directive struct {
	Indent string
	rules  map[string]struct{}
	// tail is the source text after the closing bracket, kept verbatim.
	tail string
}

// NewDirective builds a directive holding rules.
func NewDirective(indent string, rules ...string) Directive {
	d := Directive{Indent: indent, rules: make(map[string]struct{}, len(rules))}
	for _, r := range rules {
		d.Add(r)
	}
	return d
}

// Add inserts rule; duplicates collapse.
func (d *Directive) Add(rule string) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return
	}
	if d.rules == nil {
		d.rules = make(map[string]struct{})
	}
	d.rules[rule] = struct{}{}
}

// Has reports whether rule is present.
func (d Directive) Has(rule string) bool {
	_, ok := d.rules[rule]
	return ok
}

// Rules returns the rule ids in ascending order.
func (d Directive) Rules() []string {
	out := make([]string, 0, len(d.rules))
	for r := range d.rules {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// String renders the canonical form: indent + @SuppressWarnings(['A','B']),
// followed by any code or comment that shared the line.
func (d Directive) String() string {
	var sb strings.Builder
	sb.WriteString(d.Indent)
	sb.WriteString(Annotation)
	sb.WriteString("([")
	for i, r := range d.Rules() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('\'')
		sb.WriteString(r)
		sb.WriteByte('\'')
	}
	sb.WriteString("])")
	sb.WriteString(d.tail)
	return sb.String()
}

// ParseDirective reads a suppression directive from line. The trimmed line
// must start with the annotation, and a list after it must close. Any nesting
// of () and [] around the list works, as do single or double quotes and bare
// identifiers: @SuppressWarnings('A'), @SuppressWarnings(["A", "B"]),
// @SuppressWarnings([A]), @SuppressWarnings(value = ['A']). Text after the
// closing bracket is kept as the tail. The second result is false when line
// holds no directive.
func ParseDirective(line string) (Directive, bool) {
	indent := leadingWhitespace(line)
	body := line[len(indent):]
	if !strings.HasPrefix(body, Annotation) {
		return Directive{}, false
	}
	rest := body[len(Annotation):]
	// @SuppressWarningsFoo is a different annotation
	if rest != "" && isIdentRune(rune(rest[0])) {
		return Directive{}, false
	}

	d := NewDirective(indent)
	list := strings.TrimLeft(rest, " \t")
	if list == "" || (list[0] != '(' && list[0] != '[') {
		// bare annotation without a list
		d.tail = rest
		return d, true
	}
	depth := 0
	for i := 0; i < len(list); {
		c := list[i]
		switch {
		case c == '(' || c == '[':
			depth++
			i++
		case c == ')' || c == ']':
			depth--
			i++
			if depth <= 0 {
				d.tail = list[i:]
				return d, true
			}
		case c == '\'' || c == '"':
			end := strings.IndexByte(list[i+1:], c)
			if end < 0 {
				return Directive{}, false
			}
			d.Add(list[i+1 : i+1+end])
			i += end + 2
		case isIdentRune(rune(c)):
			start := i
			for i < len(list) && isIdentRune(rune(list[i])) {
				i++
			}
			if after, ok := elementValue(list[i:]); ok {
				// value = [...]: имя элемента аннотации, не правило
				i = len(list) - len(after)
				continue
			}
			d.Add(list[start:i])
		default:
			// запятые, пробелы
			i++
		}
	}
	return Directive{}, false
}

// elementValue reports whether s (the text after an identifier) is an
// annotation element assignment and returns what follows the '='.
func elementValue(s string) (string, bool) {
	s = strings.TrimLeft(s, " \t")
	if !strings.HasPrefix(s, "=") || strings.HasPrefix(s, "==") {
		return "", false
	}
	return s[1:], true
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '.' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// leadingWhitespace returns the whitespace run before the first
// non-whitespace character; a blank line yields "".
func leadingWhitespace(line string) string {
	for i, r := range line {
		if !unicode.IsSpace(r) {
			return line[:i]
		}
	}
	return ""
}
