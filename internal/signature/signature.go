// Package signature parses and rewrites the signature line that leads a
// callable's docstring.
//
// Binding generators emit signatures in Python annotation syntax,
// e.g. "resolve(self: Spec, label: Optional[str] = None) -> Spec". The
// routines here correct these for display: the implicit self parameter is
// dropped, constructor signatures lose their "-> None" return, and summary
// renderings are shortened to fit a column limit by stripping annotations
// and eliding trailing parameters.
package signature

import (
	"strings"
)

// Param is a single parameter of a parsed signature.
type Param struct {
	Name       string
	Annotation string
	Default    string
}

// Signature is a parsed signature line.
type Signature struct {
	// Name is the callable's display name as it appeared in the line.
	Name string

	// Prefix is an optional leading annotation such as "static".
	Prefix string

	Params []Param

	// Return is the return annotation, without the "->" arrow.
	Return string

	// Ellipsis marks a summarized signature whose trailing parameters were
	// elided.
	Ellipsis bool
}

// Parse splits a signature line of the form "name(params) -> ret".
// ok is false when the line does not look like a signature.
func Parse(line string) (Signature, bool) {
	line = strings.TrimRight(line, "\r")

	rest := line
	var prefix string
	if strings.HasPrefix(rest, "static ") {
		prefix = "static"
		rest = strings.TrimPrefix(rest, "static ")
	}

	open := strings.IndexByte(rest, '(')
	if open <= 0 {
		return Signature{}, false
	}
	name := rest[:open]
	if strings.ContainsAny(name, " \t") {
		return Signature{}, false
	}

	closeIdx := matchingParen(rest, open)
	if closeIdx < 0 {
		return Signature{}, false
	}

	sig := Signature{Name: name, Prefix: prefix}
	sig.Params = parseParams(rest[open+1 : closeIdx])

	tail := strings.TrimSpace(rest[closeIdx+1:])
	if strings.HasPrefix(tail, "->") {
		sig.Return = strings.TrimSpace(tail[2:])
	} else if tail != "" {
		return Signature{}, false
	}
	return sig, true
}

// matchingParen finds the index of the parenthesis closing the one at open.
func matchingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 && s[i] == ')' {
				return i
			}
		}
	}
	return -1
}

// parseParams splits a parameter list on top-level commas.
func parseParams(s string) []Param {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var params []Param
	depth := 0
	start := 0
	flush := func(end int) {
		raw := strings.TrimSpace(s[start:end])
		if raw != "" {
			params = append(params, parseParam(raw))
		}
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(s))
	return params
}

func parseParam(raw string) Param {
	p := Param{}

	// Split off the default at the top-level "=". Annotated defaults use
	// " = ", bare defaults "=".
	depth := 0
	eq := -1
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '=':
			if depth == 0 && eq < 0 {
				eq = i
			}
		}
	}
	head := raw
	if eq >= 0 {
		head = strings.TrimSpace(raw[:eq])
		p.Default = strings.TrimSpace(raw[eq+1:])
	}

	if colon := topLevelIndex(head, ':'); colon >= 0 {
		p.Name = strings.TrimSpace(head[:colon])
		p.Annotation = strings.TrimSpace(head[colon+1:])
	} else {
		p.Name = head
	}
	return p
}

func topLevelIndex(s string, c byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		default:
			if s[i] == c && depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Render formats the signature with "(" ")" parameter parens.
func (s Signature) Render() string {
	return s.render("(", ")")
}

// RenderSubscript formats the signature as a subscript method, with "[" "]"
// parens.
func (s Signature) RenderSubscript() string {
	return s.render("[", "]")
}

func (s Signature) render(openParen, closeParen string) string {
	var b strings.Builder
	if s.Prefix != "" {
		b.WriteString(s.Prefix)
		b.WriteString(" ")
	}
	b.WriteString(s.Name)
	b.WriteString(openParen)
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.render())
	}
	if s.Ellipsis {
		if len(s.Params) > 0 {
			b.WriteString(", ")
		}
		b.WriteString("...")
	}
	b.WriteString(closeParen)
	if s.Return != "" {
		b.WriteString(" -> ")
		b.WriteString(s.Return)
	}
	return b.String()
}

func (p Param) render() string {
	var b strings.Builder
	b.WriteString(p.Name)
	if p.Annotation != "" {
		b.WriteString(": ")
		b.WriteString(p.Annotation)
	}
	if p.Default != "" {
		if p.Annotation != "" {
			b.WriteString(" = ")
		} else {
			b.WriteString("=")
		}
		b.WriteString(p.Default)
	}
	return b.String()
}

// DropSelf removes a leading self parameter.
func (s *Signature) DropSelf() {
	if len(s.Params) > 0 && s.Params[0].Name == "self" {
		s.Params = s.Params[1:]
	}
}

// CleanInit adjusts an __init__/__new__ signature for display under the
// class name: the self parameter and the return annotation (always None)
// are removed.
func (s *Signature) CleanInit() {
	s.DropSelf()
	s.Return = ""
}

// CleanClassGetitem removes the static prefix from a __class_getitem__
// signature, since it is shown as a subscript constructor under the class
// name.
func (s *Signature) CleanClassGetitem() {
	s.Prefix = ""
}

// Summarize shortens the signature to fit within columnLimit, mutating it in
// place. The self parameter is always removed. Working from the last
// parameter backwards: a parameter without a default first loses its
// annotation; if the signature is still too long the parameter is elided
// entirely and a single trailing ellipsis marks the elision.
func (s *Signature) Summarize(columnLimit int) {
	s.DropSelf()

	mustShorten := func() bool {
		return len(s.Render()) > columnLimit
	}

	for i := len(s.Params) - 1; i >= 0; i-- {
		if !mustShorten() {
			return
		}

		last := &s.Params[i]
		if last.Default == "" {
			last.Annotation = ""
			if !mustShorten() {
				return
			}
		}

		s.Params = s.Params[:i]
		s.Ellipsis = true
	}
}

// NeedsWrap reports whether a rendered signature exceeds the column limit
// and should be displayed with each parameter on its own line.
func NeedsWrap(rendered string, columnLimit int) bool {
	return len(rendered) > columnLimit
}
