package codegen

import "pulse/internal/ast"

// block writes the statements of b one level deeper. Braces are the
// caller's.
func (g *genContext) block(b *ast.BlockStmt) {
	g.w.indent++
	if b != nil {
		for _, s := range b.Stmts {
			g.stmt(s)
		}
	}
	g.w.indent--
}

// body writes a branch or loop body, which may be a block or a single
// statement, one level deeper.
func (g *genContext) body(s ast.Stmt) {
	if b, ok := s.(*ast.BlockStmt); ok {
		g.block(b)
		return
	}
	g.w.indent++
	g.stmt(s)
	g.w.indent--
}

func (g *genContext) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		if code, ok := g.exprOK(s.Expr); ok {
			g.w.line(code + ";")
		}
	case *ast.BlockStmt:
		g.w.line("{")
		g.block(s)
		g.w.line("}")
	case *ast.IfStmt:
		g.ifStmt(s, "")
	case *ast.WhileStmt:
		g.w.line("while (" + g.expr(s.Cond) + ") {")
		g.body(s.Body)
		g.w.line("}")
	case *ast.ForStmt:
		head := "for ("
		if s.Init != nil {
			head += g.expr(s.Init)
		}
		head += ";"
		if s.Test != nil {
			head += " " + g.expr(s.Test)
		}
		head += ";"
		if s.Update != nil {
			head += " " + g.expr(s.Update)
		}
		g.w.line(head + ") {")
		g.body(s.Body)
		g.w.line("}")
	case *ast.ReturnStmt:
		if s.Value == nil {
			g.w.line("return;")
			return
		}
		g.w.line("return " + g.expr(s.Value) + ";")
	case *ast.TryStmt:
		g.tryStmt(s)
	default:
		g.warn(s, "unsupported statement %T", s)
	}
}

func (g *genContext) ifStmt(s *ast.IfStmt, prefix string) {
	g.w.line(prefix + "if (" + g.expr(s.Cond) + ") {")
	g.body(s.Then)
	switch els := s.Else.(type) {
	case nil:
		g.w.line("}")
	case *ast.IfStmt:
		g.ifStmt(els, "} else ")
	default:
		g.w.line("} else {")
		g.body(els)
		g.w.line("}")
	}
}

func (g *genContext) tryStmt(s *ast.TryStmt) {
	g.w.line("try {")
	g.block(s.Block)
	if h := s.Handler; h != nil {
		if h.Param == "" {
			g.w.line("} catch {")
			g.block(h.Body)
		} else {
			g.w.line("} catch (" + h.Param + ") {")
			pop := g.pushScope(map[string]bool{h.Param: true})
			g.block(h.Body)
			pop()
		}
	}
	if s.Finalizer != nil {
		g.w.line("} finally {")
		g.block(s.Finalizer)
	}
	g.w.line("}")
}
