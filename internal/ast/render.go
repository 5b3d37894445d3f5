package ast

import "strings"

// reserved lists the characters that force an argument to be quoted.
const reserved = "\"'();,=<>!~ "

func (c *Comparison) String() string {
	var b strings.Builder
	b.WriteString(c.selector)
	b.WriteString(c.op.Symbol())

	if len(c.arguments) == 1 && !c.op.IsMultiValue() {
		b.WriteString(quoteArgument(c.arguments[0]))
		return b.String()
	}

	b.WriteByte('(')
	for i, arg := range c.arguments {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quoteArgument(arg))
	}
	b.WriteByte(')')
	return b.String()
}

func (a *And) String() string {
	return renderLogical(a.children, ";")
}

func (o *Or) String() string {
	return renderLogical(o.children, ",")
}

func renderLogical(children []Node, sep string) string {
	parts := make([]string, len(children))
	for i, child := range children {
		if _, ok := child.(Logical); ok {
			parts[i] = "(" + child.String() + ")"
		} else {
			parts[i] = child.String()
		}
	}
	return strings.Join(parts, sep)
}

// quoteArgument returns arg unchanged when it lexes as an unquoted
// argument, otherwise wraps it in whichever quote it does not contain.
// An argument holding both quote characters has no exact rendering.
func quoteArgument(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, reserved) {
		return arg
	}
	if !strings.Contains(arg, "'") {
		return "'" + arg + "'"
	}
	return `"` + arg + `"`
}
