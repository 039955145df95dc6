package codegen

import (
	"strings"

	"pulse/internal/ast"
)

// expr lowers e. Unsupported nodes are reported and replaced by undefined
// so the surrounding expression stays well formed.
func (g *genContext) expr(e ast.Expr) string {
	code, ok := g.exprOK(e)
	if !ok {
		return "undefined"
	}
	return code
}

// operand lowers e, parenthesized when it binds looser than min.
func (g *genContext) operand(e ast.Expr, min int) string {
	code := g.expr(e)
	if ast.Precedence(e) < min {
		return "(" + code + ")"
	}
	return code
}

func (g *genContext) exprOK(e ast.Expr) (string, bool) {
	switch e := e.(type) {
	case *ast.Identifier:
		return g.resolve(e.Name), true
	case *ast.Literal:
		return literal(e), true
	case *ast.BinaryExpr:
		return g.binary(e.Op, e.Left, e.Right), true
	case *ast.LogicalExpr:
		return g.binary(e.Op, e.Left, e.Right), true
	case *ast.UnaryExpr:
		operand := g.operand(e.Operand, ast.PrecUnary)
		if (e.Op == "-" || e.Op == "+") && strings.HasPrefix(operand, e.Op) {
			return e.Op + " " + operand, true
		}
		return e.Op + operand, true
	case *ast.AwaitExpr:
		return "await " + g.operand(e.Argument, ast.PrecUnary), true
	case *ast.AssignExpr:
		return g.assignTarget(e.Target) + " " + e.Op + " " + g.operand(e.Value, ast.PrecAssign), true
	case *ast.ConditionalExpr:
		return g.operand(e.Test, ast.PrecOr) + " ? " + g.operand(e.Consequent, ast.PrecAssign) +
			" : " + g.operand(e.Alternate, ast.PrecAssign), true
	case *ast.CallExpr:
		return g.operand(e.Callee, ast.PrecPostfix) + "(" + g.list(e.Args) + ")", true
	case *ast.MemberExpr:
		return g.member(e), true
	case *ast.ArrayExpr:
		return "[" + g.list(e.Elements) + "]", true
	case *ast.ObjectExpr:
		return g.object(e), true
	case *ast.ArrowFunc:
		return g.arrow(e), true
	case *ast.Element:
		return g.element(e), true
	default:
		g.warn(e, "unsupported expression %T", e)
		return "", false
	}
}

func (g *genContext) binary(op string, left, right ast.Expr) string {
	prec := ast.BinaryPrecedence(op)
	return g.operand(left, prec) + " " + op + " " + g.operand(right, prec+1)
}

func (g *genContext) list(items []ast.Expr) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = g.operand(item, ast.PrecAssign)
	}
	return strings.Join(parts, ", ")
}

func literal(e *ast.Literal) string {
	if e.Kind == ast.LitString {
		return ast.QuoteSource(e.Str)
	}
	return e.Raw
}

// resolve maps a bare identifier read to its lowered form.
func (g *genContext) resolve(name string) string {
	if name == "this" {
		return name
	}
	if g.opts.Resolution == ResolveDeclared {
		if g.class == nil || g.isLocal(name) {
			return name
		}
		if g.class.reactive[name] {
			if g.cells {
				return "this." + name
			}
			return "this." + name + ".value"
		}
		if g.class.members[name] {
			return "this." + name
		}
		return name
	}
	if g.inRender && !g.cells {
		return "this." + name + ".value"
	}
	return name
}

func isThis(e ast.Expr) bool {
	id, ok := e.(*ast.Identifier)
	return ok && id.Name == "this"
}

func propertyName(m *ast.MemberExpr) (string, bool) {
	if m.Computed {
		return "", false
	}
	id, ok := m.Property.(*ast.Identifier)
	if !ok {
		return "", false
	}
	return id.Name, true
}

func (g *genContext) member(e *ast.MemberExpr) string {
	obj := g.operand(e.Object, ast.PrecPostfix)
	name, ok := propertyName(e)
	if !ok {
		return obj + "[" + g.expr(e.Property) + "]"
	}
	code := obj + "." + name
	if g.opts.Resolution == ResolveDeclared && !g.cells && isThis(e.Object) && g.isReactive(name) {
		code += ".value"
	}
	return code
}

// assignTarget lowers the left side of an assignment. Writes to
// this.<field> go through the cell's value.
func (g *genContext) assignTarget(target ast.Expr) string {
	if m, ok := target.(*ast.MemberExpr); ok && isThis(m.Object) {
		if name, ok := propertyName(m); ok {
			if g.opts.Resolution == ResolveOptimistic || g.isReactive(name) {
				return "this." + name + ".value"
			}
			return "this." + name
		}
	}
	return g.expr(target)
}

func (g *genContext) object(e *ast.ObjectExpr) string {
	if len(e.Properties) == 0 {
		return "{}"
	}
	parts := make([]string, len(e.Properties))
	for i, p := range e.Properties {
		key := p.Key
		if p.Quoted || !ast.IsIdentName(key) {
			key = ast.QuoteSource(p.Key)
		}
		value := g.operand(p.Value, ast.PrecAssign)
		if p.Shorthand && value == p.Key {
			parts[i] = key
			continue
		}
		parts[i] = key + ": " + value
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (g *genContext) arrow(fn *ast.ArrowFunc) string {
	pop := g.pushLocals(fn.Params)
	defer pop()
	head := "(" + g.params(fn.Params) + ") =>"
	if fn.Async {
		head = "async " + head
	}
	if fn.Body == nil {
		body := g.operand(fn.Expr, ast.PrecAssign)
		if _, ok := fn.Expr.(*ast.ObjectExpr); ok {
			body = "(" + body + ")"
		}
		return head + " " + body
	}
	if len(fn.Body.Stmts) == 0 {
		return head + " {}"
	}
	outer := g.w
	inner := &jsBuilder{indent: outer.indent}
	g.w = inner
	g.block(fn.Body)
	g.w = outer
	return head + " {\n" + inner.String() + outer.pad() + "}"
}
