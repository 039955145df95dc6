package codegen

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"pulse/internal/ast"
)

// element lowers a template element to h(tag, attrs, ...children).
// Capitalized tags are component references and stay unquoted.
func (g *genContext) element(e *ast.Element) string {
	args := []string{g.tag(e.Tag()), g.attributes(e.Opening.Attributes)}
	for _, child := range e.Children {
		switch c := child.(type) {
		case *ast.TextRun:
			args = append(args, quoteText(c.Value))
		case *ast.ExpressionSlot:
			args = append(args, g.operand(c.Expr, ast.PrecAssign))
		case *ast.Element:
			args = append(args, g.element(c))
		default:
			g.warn(child, "unsupported template child %T", child)
		}
	}
	return "h(" + strings.Join(args, ", ") + ")"
}

func (g *genContext) tag(name string) string {
	if isComponentTag(name) {
		return name
	}
	return quoteText(name)
}

func isComponentTag(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func (g *genContext) attributes(attrs []*ast.Attribute) string {
	if len(attrs) == 0 {
		return "null"
	}
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		value := "true"
		if a.Value != nil {
			value = g.operand(a.Value, ast.PrecAssign)
		}
		parts[i] = propertyKey(attributeKey(a)) + ": " + value
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// attributeKey maps @event bindings to the runtime's on<Event> props.
func attributeKey(a *ast.Attribute) string {
	if !a.IsEvent() {
		return a.Name
	}
	event := strings.TrimPrefix(a.Name, "@")
	r, size := utf8.DecodeRuneInString(event)
	return "on" + string(unicode.ToUpper(r)) + event[size:]
}
