package codegen

import (
	"fmt"

	"pulse/internal/ast"
)

func (g *genContext) enterClass(name string) *classScope {
	g.class = &classScope{name: name, reactive: map[string]bool{}, members: map[string]bool{}}
	g.effects = 0
	return g.class
}

func (g *genContext) leaveClass() {
	g.class = nil
	g.locals = nil
}

// component lowers a component to an exported class extending Component,
// followed by its displayName and an optional route registration.
func (g *genContext) component(c *ast.ComponentDecl) {
	g.components++
	g.decoratorComments(c.Decorators, "route")

	scope := g.enterClass(c.Name)
	defer g.leaveClass()
	for _, s := range c.State {
		scope.reactive[s.Name] = true
	}
	for _, cd := range c.Computed {
		scope.reactive[cd.Name] = true
	}
	for _, p := range c.Props {
		scope.members[p.Name] = true
	}
	for _, m := range c.Methods {
		scope.members[m.Name] = true
	}
	for _, l := range c.Lifecycle {
		scope.members[l.Phase] = true
	}

	g.w.line("export class " + c.Name + " extends Component {")
	g.w.indent++
	g.w.line("constructor(props) {")
	g.w.indent++
	g.w.line("super(props);")
	for _, p := range c.Props {
		def := "undefined"
		if p.Default != nil {
			def = g.operand(p.Default, ast.PrecEquality)
		}
		g.w.line(fmt.Sprintf("this.%s = props.%s ?? %s;", p.Name, p.Name, def))
	}
	g.stateFields(c.State)
	g.computedFields(c.Computed)
	for _, e := range c.Effects {
		g.effectField(e)
	}
	g.w.indent--
	g.w.line("}")

	for _, m := range c.Methods {
		g.w.blank()
		g.method(m.Name, m.Params, m.Body, m.Async)
	}
	for _, l := range c.Lifecycle {
		g.w.blank()
		g.method(l.Phase, l.Params, l.Body, l.Async)
	}
	if c.Render != nil {
		g.w.blank()
		g.render(c.Render)
	}
	g.w.indent--
	g.w.line("}")
	g.w.line(fmt.Sprintf("%s.displayName = %s;", c.Name, quoteText(c.Name)))

	if route := ast.FindDecorator(c.Decorators, "route"); route != nil {
		if len(route.Args) == 0 {
			g.warn(route, "route decorator on %s has no path", c.Name)
			return
		}
		g.w.line(fmt.Sprintf("registerRoute(%s, %s);", route.Args[0].String(), c.Name))
	}
}

// store lowers a store to a class extending Store plus exactly one
// instance, exported under the declared name.
func (g *genContext) store(s *ast.StoreDecl) {
	g.stores++
	g.decoratorComments(s.Decorators, "")

	scope := g.enterClass(s.Name)
	defer g.leaveClass()
	for _, st := range s.State {
		scope.reactive[st.Name] = true
	}
	for _, cd := range s.Computed {
		scope.reactive[cd.Name] = true
	}
	for _, a := range s.Actions {
		scope.members[a.Name] = true
	}

	class := s.Name + "Store"
	g.w.line("class " + class + " extends Store {")
	g.w.indent++
	g.w.line("constructor() {")
	g.w.indent++
	g.w.line("super();")
	g.stateFields(s.State)
	g.computedFields(s.Computed)
	g.w.indent--
	g.w.line("}")
	for _, a := range s.Actions {
		g.w.blank()
		g.method(a.Name, a.Params, a.Body, a.Async)
	}
	g.w.indent--
	g.w.line("}")
	g.w.line(fmt.Sprintf("const %s = new %s();", s.Name, class))
	g.w.line(fmt.Sprintf("export { %s };", s.Name))
}

func (g *genContext) stateFields(state []*ast.StateDecl) {
	for _, s := range state {
		init := "undefined"
		if s.Init != nil {
			init = g.expr(s.Init)
		}
		g.w.line(fmt.Sprintf("this.%s = reactive(%s);", s.Name, init))
	}
}

func (g *genContext) computedFields(computed []*ast.ComputedDecl) {
	for _, c := range computed {
		g.w.line(fmt.Sprintf("this.%s = computed(() => {", c.Name))
		g.block(c.Body)
		g.w.line("});")
	}
}

// effectField lowers an effect to this.$effect<N>. Dependencies are passed
// as cells: a bare name becomes this.<name>, never its value.
func (g *genContext) effectField(e *ast.EffectDecl) {
	n := g.effects
	g.effects++
	g.w.line(fmt.Sprintf("this.$effect%d = effect(() => {", n))
	g.block(e.Body)
	g.w.line("}, [" + g.deps(e.Deps) + "]);")
}

func (g *genContext) deps(deps []ast.Expr) string {
	g.cells = true
	defer func() { g.cells = false }()
	out := ""
	for i, d := range deps {
		if i > 0 {
			out += ", "
		}
		if id, ok := d.(*ast.Identifier); ok && id.Name != "this" && !g.isLocal(id.Name) {
			if g.opts.Resolution == ResolveDeclared && !g.isReactive(id.Name) && !g.class.members[id.Name] {
				out += id.Name
			} else {
				out += "this." + id.Name
			}
			continue
		}
		out += g.expr(d)
	}
	return out
}

func (g *genContext) method(name string, params []*ast.Param, body *ast.BlockStmt, async bool) {
	pop := g.pushLocals(params)
	defer pop()
	head := name
	if async {
		head = "async " + name
	}
	g.w.line(head + "(" + g.params(params) + ") {")
	g.block(body)
	g.w.line("}")
}

// render lowers the render block to a method. A trailing expression
// statement becomes the return value.
func (g *genContext) render(r *ast.RenderDecl) {
	g.inRender = true
	defer func() { g.inRender = false }()
	g.w.line("render() {")
	g.w.indent++
	stmts := r.Body.Stmts
	for i, s := range stmts {
		if es, ok := s.(*ast.ExprStmt); ok && i == len(stmts)-1 {
			if code, ok := g.exprOK(es.Expr); ok {
				g.w.line("return " + code + ";")
			}
			continue
		}
		g.stmt(s)
	}
	g.w.indent--
	g.w.line("}")
}

func (g *genContext) params(params []*ast.Param) string {
	out := ""
	for i, p := range params {
		if i > 0 {
			out += ", "
		}
		out += p.Name
		if p.Default != nil {
			out += " = " + g.operand(p.Default, ast.PrecAssign)
		}
	}
	return out
}
