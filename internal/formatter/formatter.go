package formatter

import (
	"strings"

	"pulse/internal/ast"
	"pulse/internal/parser"
)

// Formatter formats Pulse source code
type Formatter struct {
	indent int
	buf    strings.Builder
}

// New creates a new Formatter
func New() *Formatter {
	return &Formatter{}
}

// Format parses src and returns it in canonical layout. Comments are not
// kept.
func (f *Formatter) Format(src string) (string, error) {
	prog, err := parser.ParseSource(src)
	if err != nil {
		return "", err
	}
	return f.FormatProgram(prog), nil
}

// FormatProgram formats an AST program
func (f *Formatter) FormatProgram(prog *ast.Program) string {
	f.buf.Reset()
	f.indent = 0

	prevDecl := false
	for i, node := range prog.Body {
		_, isImport := node.(*ast.ImportDecl)
		_, isDecl := node.(ast.Decl)
		isDecl = isDecl && !isImport
		if i > 0 && (isDecl || prevDecl) {
			f.buf.WriteString("\n")
		}
		prevDecl = isDecl
		f.formatNode(node)
	}
	return f.buf.String()
}

func (f *Formatter) writeIndent() {
	for i := 0; i < f.indent; i++ {
		f.buf.WriteString("  ")
	}
}

func (f *Formatter) formatNode(node ast.Node) {
	switch n := node.(type) {
	case *ast.ImportDecl:
		f.formatImport(n)
	case *ast.ExportDecl:
		f.formatDecl(n.Decl, true)
	case ast.Decl:
		f.formatDecl(n, false)
	case ast.Stmt:
		f.formatStmt(n)
	}
}

func (f *Formatter) formatImport(imp *ast.ImportDecl) {
	f.buf.WriteString("import ")
	switch {
	case imp.Default != "":
		f.buf.WriteString(imp.Default)
		f.buf.WriteString(" from ")
	case len(imp.Specifiers) > 0:
		f.buf.WriteString("{ ")
		for i, spec := range imp.Specifiers {
			if i > 0 {
				f.buf.WriteString(", ")
			}
			f.buf.WriteString(spec.Name)
			if spec.Alias != "" {
				f.buf.WriteString(" as ")
				f.buf.WriteString(spec.Alias)
			}
		}
		f.buf.WriteString(" } from ")
	}
	f.buf.WriteString("\"")
	f.buf.WriteString(imp.Source)
	f.buf.WriteString("\"\n")
}

func (f *Formatter) formatDecl(decl ast.Decl, export bool) {
	var decorators []*ast.Decorator
	var keyword, name string
	switch d := decl.(type) {
	case *ast.ComponentDecl:
		decorators, keyword, name = d.Decorators, "component", d.Name
	case *ast.StoreDecl:
		decorators, keyword, name = d.Decorators, "store", d.Name
	case *ast.GuardDecl:
		decorators, keyword, name = d.Decorators, "guard", d.Name
	default:
		return
	}
	for _, dec := range decorators {
		f.writeIndent()
		f.formatDecorator(dec)
		f.buf.WriteString("\n")
	}
	f.writeIndent()
	if export {
		f.buf.WriteString("export ")
	}
	f.buf.WriteString(keyword)
	f.buf.WriteString(" ")
	f.buf.WriteString(name)

	switch d := decl.(type) {
	case *ast.ComponentDecl:
		f.formatMembers(d.Members)
	case *ast.StoreDecl:
		f.formatMembers(d.Members)
	case *ast.GuardDecl:
		f.formatParams(d.Params)
		f.buf.WriteString(" ")
		f.formatBlockStmt(d.Body)
		f.buf.WriteString("\n")
	}
}

func (f *Formatter) formatDecorator(d *ast.Decorator) {
	f.buf.WriteString("@")
	f.buf.WriteString(d.Name)
	if len(d.Args) == 0 {
		return
	}
	f.buf.WriteString("(")
	for i, arg := range d.Args {
		if i > 0 {
			f.buf.WriteString(", ")
		}
		f.buf.WriteString(arg.String())
	}
	f.buf.WriteString(")")
}

func (f *Formatter) formatMembers(members []ast.Member) {
	if len(members) == 0 {
		f.buf.WriteString(" {}\n")
		return
	}
	f.buf.WriteString(" {\n")
	f.indent++
	prevBlock := false
	for i, m := range members {
		block := hasBody(m)
		if i > 0 && (block || prevBlock) {
			f.buf.WriteString("\n")
		}
		prevBlock = block
		f.writeIndent()
		f.formatMember(m)
		f.buf.WriteString("\n")
	}
	f.indent--
	f.writeIndent()
	f.buf.WriteString("}\n")
}

func hasBody(m ast.Member) bool {
	switch m.(type) {
	case *ast.StateDecl, *ast.PropDecl:
		return false
	}
	return true
}

func (f *Formatter) formatMember(m ast.Member) {
	switch m := m.(type) {
	case *ast.StateDecl:
		f.formatField("state", m.Name, m.Type, m.Init)
	case *ast.PropDecl:
		f.formatField("prop", m.Name, m.Type, m.Default)
	case *ast.MethodDecl:
		f.formatCallable(m.Async, "method", m.Name, m.Params, m.Body)
	case *ast.ActionDecl:
		f.formatCallable(m.Async, "action", m.Name, m.Params, m.Body)
	case *ast.LifecycleDecl:
		f.formatCallable(m.Async, "lifecycle", m.Phase, m.Params, m.Body)
	case *ast.ComputedDecl:
		f.formatCallable(false, "computed", m.Name, nil, m.Body)
	case *ast.EffectDecl:
		f.buf.WriteString("effect ")
		if len(m.Deps) > 0 {
			f.buf.WriteString("on ")
			for i, dep := range m.Deps {
				if i > 0 {
					f.buf.WriteString(", ")
				}
				f.formatExpr(dep)
			}
			f.buf.WriteString(" ")
		}
		f.formatBlockStmt(m.Body)
	case *ast.RenderDecl:
		f.buf.WriteString("render ")
		f.formatBlockStmt(m.Body)
	}
}

func (f *Formatter) formatField(keyword, name string, typ ast.TypeExpr, init ast.Expr) {
	f.buf.WriteString(keyword)
	f.buf.WriteString(" ")
	f.buf.WriteString(name)
	f.formatType(typ)
	if init != nil {
		f.buf.WriteString(" = ")
		f.formatExpr(init)
	}
}

func (f *Formatter) formatCallable(async bool, keyword, name string, params []*ast.Param, body *ast.BlockStmt) {
	if async {
		f.buf.WriteString("async ")
	}
	f.buf.WriteString(keyword)
	f.buf.WriteString(" ")
	f.buf.WriteString(name)
	f.formatParams(params)
	f.buf.WriteString(" ")
	f.formatBlockStmt(body)
}

func (f *Formatter) formatParams(params []*ast.Param) {
	f.buf.WriteString("(")
	for i, param := range params {
		if i > 0 {
			f.buf.WriteString(", ")
		}
		f.buf.WriteString(param.Name)
		f.formatType(param.Type)
		if param.Default != nil {
			f.buf.WriteString(" = ")
			f.formatExpr(param.Default)
		}
	}
	f.buf.WriteString(")")
}

func (f *Formatter) formatType(t ast.TypeExpr) {
	switch t := t.(type) {
	case *ast.PrimitiveType:
		f.buf.WriteString(": ")
		f.buf.WriteString(t.Name)
	case *ast.NamedType:
		f.buf.WriteString(": ")
		f.buf.WriteString(t.Name)
	}
}

// formatBlockStmt writes a braced block starting at the current position.
// The closing brace is not followed by a newline.
func (f *Formatter) formatBlockStmt(block *ast.BlockStmt) {
	if block == nil || len(block.Stmts) == 0 {
		f.buf.WriteString("{}")
		return
	}
	f.buf.WriteString("{\n")
	f.indent++
	for _, stmt := range block.Stmts {
		f.formatStmt(stmt)
	}
	f.indent--
	f.writeIndent()
	f.buf.WriteString("}")
}

// formatBody writes a branch or loop body, always as a block.
func (f *Formatter) formatBody(stmt ast.Stmt) {
	if block, ok := stmt.(*ast.BlockStmt); ok {
		f.formatBlockStmt(block)
		return
	}
	f.formatBlockStmt(&ast.BlockStmt{Stmts: []ast.Stmt{stmt}})
}

func (f *Formatter) formatStmt(stmt ast.Stmt) {
	f.writeIndent()
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		f.formatExpr(s.Expr)
	case *ast.BlockStmt:
		f.formatBlockStmt(s)
	case *ast.IfStmt:
		f.formatIfStmt(s)
	case *ast.WhileStmt:
		f.buf.WriteString("while (")
		f.formatExpr(s.Cond)
		f.buf.WriteString(") ")
		f.formatBody(s.Body)
	case *ast.ForStmt:
		f.buf.WriteString("for (")
		if s.Init != nil {
			f.formatExpr(s.Init)
		}
		f.buf.WriteString(";")
		if s.Test != nil {
			f.buf.WriteString(" ")
			f.formatExpr(s.Test)
		}
		f.buf.WriteString(";")
		if s.Update != nil {
			f.buf.WriteString(" ")
			f.formatExpr(s.Update)
		}
		f.buf.WriteString(") ")
		f.formatBody(s.Body)
	case *ast.ReturnStmt:
		f.buf.WriteString("return")
		if s.Value != nil {
			f.buf.WriteString(" ")
			f.formatExpr(s.Value)
		}
	case *ast.TryStmt:
		f.buf.WriteString("try ")
		f.formatBlockStmt(s.Block)
		if s.Handler != nil {
			f.buf.WriteString(" catch ")
			if s.Handler.Param != "" {
				f.buf.WriteString("(")
				f.buf.WriteString(s.Handler.Param)
				f.buf.WriteString(") ")
			}
			f.formatBlockStmt(s.Handler.Body)
		}
		if s.Finalizer != nil {
			f.buf.WriteString(" finally ")
			f.formatBlockStmt(s.Finalizer)
		}
	}
	f.buf.WriteString("\n")
}

func (f *Formatter) formatIfStmt(s *ast.IfStmt) {
	f.buf.WriteString("if (")
	f.formatExpr(s.Cond)
	f.buf.WriteString(") ")
	f.formatBody(s.Then)
	switch els := s.Else.(type) {
	case nil:
	case *ast.IfStmt:
		f.buf.WriteString(" else ")
		f.formatIfStmt(els)
	default:
		f.buf.WriteString(" else ")
		f.formatBody(els)
	}
}

func (f *Formatter) formatExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Identifier:
		f.buf.WriteString(e.Name)
	case *ast.Literal:
		f.buf.WriteString(e.Raw)
	case *ast.BinaryExpr:
		f.formatBinaryExpr(e.Op, e.Left, e.Right)
	case *ast.LogicalExpr:
		f.formatBinaryExpr(e.Op, e.Left, e.Right)
	case *ast.UnaryExpr:
		f.buf.WriteString(e.Op)
		if inner, ok := e.Operand.(*ast.UnaryExpr); ok && inner.Op == e.Op && e.Op != "!" {
			f.buf.WriteString(" ")
		}
		f.formatOperand(e.Operand, ast.PrecUnary)
	case *ast.AwaitExpr:
		f.buf.WriteString("await ")
		f.formatOperand(e.Argument, ast.PrecUnary)
	case *ast.AssignExpr:
		f.formatOperand(e.Target, ast.PrecPostfix)
		f.buf.WriteString(" ")
		f.buf.WriteString(e.Op)
		f.buf.WriteString(" ")
		f.formatOperand(e.Value, ast.PrecAssign)
	case *ast.ConditionalExpr:
		f.formatOperand(e.Test, ast.PrecOr)
		f.buf.WriteString(" ? ")
		f.formatOperand(e.Consequent, ast.PrecAssign)
		f.buf.WriteString(" : ")
		f.formatOperand(e.Alternate, ast.PrecConditional)
	case *ast.CallExpr:
		f.formatOperand(e.Callee, ast.PrecPostfix)
		f.buf.WriteString("(")
		f.formatList(e.Args)
		f.buf.WriteString(")")
	case *ast.MemberExpr:
		f.formatOperand(e.Object, ast.PrecPostfix)
		if e.Computed {
			f.buf.WriteString("[")
			f.formatExpr(e.Property)
			f.buf.WriteString("]")
		} else {
			f.buf.WriteString(".")
			f.formatExpr(e.Property)
		}
	case *ast.ArrayExpr:
		f.buf.WriteString("[")
		f.formatList(e.Elements)
		f.buf.WriteString("]")
	case *ast.ObjectExpr:
		f.formatObjectExpr(e)
	case *ast.ArrowFunc:
		f.formatArrowFunc(e)
	case *ast.Element:
		f.formatElement(e)
	}
}

// formatOperand parenthesizes e when it binds looser than min.
func (f *Formatter) formatOperand(e ast.Expr, min int) {
	if ast.Precedence(e) < min {
		f.buf.WriteString("(")
		f.formatExpr(e)
		f.buf.WriteString(")")
		return
	}
	f.formatExpr(e)
}

func (f *Formatter) formatBinaryExpr(op string, left, right ast.Expr) {
	prec := ast.BinaryPrecedence(op)
	f.formatOperand(left, prec)
	f.buf.WriteString(" ")
	f.buf.WriteString(op)
	f.buf.WriteString(" ")
	f.formatOperand(right, prec+1)
}

func (f *Formatter) formatList(items []ast.Expr) {
	for i, item := range items {
		if i > 0 {
			f.buf.WriteString(", ")
		}
		f.formatOperand(item, ast.PrecAssign)
	}
}

func (f *Formatter) formatObjectExpr(e *ast.ObjectExpr) {
	if len(e.Properties) == 0 {
		f.buf.WriteString("{}")
		return
	}
	f.buf.WriteString("{ ")
	for i, prop := range e.Properties {
		if i > 0 {
			f.buf.WriteString(", ")
		}
		if prop.Shorthand {
			f.buf.WriteString(prop.Key)
			continue
		}
		if prop.Quoted {
			f.buf.WriteString(ast.QuoteSource(prop.Key))
		} else {
			f.buf.WriteString(prop.Key)
		}
		f.buf.WriteString(": ")
		f.formatOperand(prop.Value, ast.PrecAssign)
	}
	f.buf.WriteString(" }")
}

func (f *Formatter) formatArrowFunc(e *ast.ArrowFunc) {
	if e.Async {
		f.buf.WriteString("async ")
	}
	f.formatParams(e.Params)
	f.buf.WriteString(" => ")
	if e.Body != nil {
		f.formatBlockStmt(e.Body)
		return
	}
	if _, ok := e.Expr.(*ast.ObjectExpr); ok {
		f.buf.WriteString("(")
		f.formatExpr(e.Expr)
		f.buf.WriteString(")")
		return
	}
	f.formatOperand(e.Expr, ast.PrecAssign)
}

// formatElement writes an element inline when it has no element children,
// and one child per line otherwise.
func (f *Formatter) formatElement(e *ast.Element) {
	f.buf.WriteString("<")
	f.buf.WriteString(e.Opening.Name)
	for _, attr := range e.Opening.Attributes {
		f.buf.WriteString(" ")
		f.buf.WriteString(attr.Name)
		switch v := attr.Value.(type) {
		case nil:
		case *ast.Literal:
			f.buf.WriteString("=")
			if v.Kind == ast.LitString {
				f.buf.WriteString(v.Raw)
			} else {
				f.buf.WriteString("{")
				f.buf.WriteString(v.Raw)
				f.buf.WriteString("}")
			}
		default:
			f.buf.WriteString("={")
			f.formatExpr(v)
			f.buf.WriteString("}")
		}
	}
	if e.Opening.SelfClosing {
		f.buf.WriteString(" />")
		return
	}
	f.buf.WriteString(">")

	nested := false
	for _, child := range e.Children {
		if _, ok := child.(*ast.Element); ok {
			nested = true
			break
		}
	}
	if !nested {
		for i, child := range e.Children {
			if i > 0 {
				f.buf.WriteString(" ")
			}
			f.formatChild(child)
		}
	} else {
		f.buf.WriteString("\n")
		f.indent++
		for _, child := range e.Children {
			f.writeIndent()
			f.formatChild(child)
			f.buf.WriteString("\n")
		}
		f.indent--
		f.writeIndent()
	}
	f.buf.WriteString("</")
	f.buf.WriteString(e.Opening.Name)
	f.buf.WriteString(">")
}

func (f *Formatter) formatChild(child ast.Child) {
	switch c := child.(type) {
	case *ast.TextRun:
		f.buf.WriteString(c.Value)
	case *ast.ExpressionSlot:
		f.buf.WriteString("{")
		f.formatExpr(c.Expr)
		f.buf.WriteString("}")
	case *ast.Element:
		f.formatElement(c)
	}
}
