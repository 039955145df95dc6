package parser

import (
	"errors"
	"strings"
	"testing"

	"pulse/internal/ast"
	"pulse/internal/lexer"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := ParseSource(src)
	if err != nil {
		t.Fatalf("ParseSource failed: %v\n%s", err, src)
	}
	return prog
}

func mustFail(t *testing.T, src string) *ParseError {
	t.Helper()
	_, err := ParseSource(src)
	if err == nil {
		t.Fatalf("expected parse error for:\n%s", src)
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	return perr
}

func onlyExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	prog := mustParse(t, src)
	if len(prog.Body) != 1 {
		t.Fatalf("expected one statement, got %d", len(prog.Body))
	}
	stmt, ok := prog.Body[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected expression statement, got %T", prog.Body[0])
	}
	return stmt.Expr
}

func onlyComponent(t *testing.T, src string) *ast.ComponentDecl {
	t.Helper()
	prog := mustParse(t, src)
	if len(prog.Body) != 1 {
		t.Fatalf("expected one declaration, got %d", len(prog.Body))
	}
	c, ok := prog.Body[0].(*ast.ComponentDecl)
	if !ok {
		t.Fatalf("expected component, got %T", prog.Body[0])
	}
	return c
}

func renderElement(t *testing.T, c *ast.ComponentDecl) *ast.Element {
	t.Helper()
	if c.Render == nil || len(c.Render.Body.Stmts) == 0 {
		t.Fatal("component has no render body")
	}
	stmt, ok := c.Render.Body.Stmts[len(c.Render.Body.Stmts)-1].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("render body ends with %T", c.Render.Body.Stmts[0])
	}
	el, ok := stmt.Expr.(*ast.Element)
	if !ok {
		t.Fatalf("render body returns %T", stmt.Expr)
	}
	return el
}

func ident(t *testing.T, e ast.Expr, name string) {
	t.Helper()
	id, ok := e.(*ast.Identifier)
	if !ok || id.Name != name {
		t.Fatalf("expected identifier %s, got %#v", name, e)
	}
}

func TestPrecedence(t *testing.T) {
	bin, ok := onlyExpr(t, "a + b * c").(*ast.BinaryExpr)
	if !ok || bin.Op != "+" {
		t.Fatalf("root should be '+', got %#v", bin)
	}
	ident(t, bin.Left, "a")
	right, ok := bin.Right.(*ast.BinaryExpr)
	if !ok || right.Op != "*" {
		t.Fatalf("right should be '*', got %#v", bin.Right)
	}
	ident(t, right.Left, "b")
	ident(t, right.Right, "c")
}

func TestPrecedenceLadder(t *testing.T) {
	// a || b && c == d < e - f / -g
	or, ok := onlyExpr(t, "a || b && c == d < e - f / -g").(*ast.LogicalExpr)
	if !ok || or.Op != "||" {
		t.Fatalf("root should be ||")
	}
	and := or.Right.(*ast.LogicalExpr)
	if and.Op != "&&" {
		t.Fatalf("expected &&, got %s", and.Op)
	}
	eq := and.Right.(*ast.BinaryExpr)
	if eq.Op != "==" {
		t.Fatalf("expected ==, got %s", eq.Op)
	}
	lt := eq.Right.(*ast.BinaryExpr)
	if lt.Op != "<" {
		t.Fatalf("expected <, got %s", lt.Op)
	}
	sub := lt.Right.(*ast.BinaryExpr)
	if sub.Op != "-" {
		t.Fatalf("expected -, got %s", sub.Op)
	}
	div := sub.Right.(*ast.BinaryExpr)
	if div.Op != "/" {
		t.Fatalf("expected /, got %s", div.Op)
	}
	neg := div.Right.(*ast.UnaryExpr)
	if neg.Op != "-" {
		t.Fatalf("expected unary -, got %s", neg.Op)
	}
}

func TestLeftAssociativeBinary(t *testing.T) {
	bin := onlyExpr(t, "a - b - c").(*ast.BinaryExpr)
	left, ok := bin.Left.(*ast.BinaryExpr)
	if !ok || left.Op != "-" {
		t.Fatalf("a - b - c should group as (a - b) - c")
	}
	ident(t, bin.Right, "c")
}

func TestAssignmentRightAssociative(t *testing.T) {
	assign := onlyExpr(t, "a = b = 1").(*ast.AssignExpr)
	ident(t, assign.Target, "a")
	inner, ok := assign.Value.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected nested assignment, got %T", assign.Value)
	}
	ident(t, inner.Target, "b")
}

func TestAssignmentTargets(t *testing.T) {
	assign := onlyExpr(t, "x = 2").(*ast.AssignExpr)
	ident(t, assign.Target, "x")

	compound := onlyExpr(t, "this.count += 1").(*ast.AssignExpr)
	if compound.Op != "+=" {
		t.Fatalf("op = %s", compound.Op)
	}
	if _, ok := compound.Target.(*ast.MemberExpr); !ok {
		t.Fatalf("target = %T", compound.Target)
	}

	for _, src := range []string{"1 = 2", "f() = 3", "a + b = c", "-x -= 1"} {
		perr := mustFail(t, src)
		if !strings.Contains(perr.Message, "invalid assignment target") {
			t.Fatalf("%s: unexpected error %q", src, perr.Message)
		}
		if perr.Line != 1 {
			t.Fatalf("%s: line = %d", src, perr.Line)
		}
	}
}

func TestTernaryRightAssociative(t *testing.T) {
	cond := onlyExpr(t, "a ? b : c ? d : e").(*ast.ConditionalExpr)
	ident(t, cond.Consequent, "b")
	alt, ok := cond.Alternate.(*ast.ConditionalExpr)
	if !ok {
		t.Fatalf("alternate should be a conditional, got %T", cond.Alternate)
	}
	ident(t, alt.Test, "c")
}

func TestPostfixChain(t *testing.T) {
	call := onlyExpr(t, "items[0].name.trim()").(*ast.CallExpr)
	member := call.Callee.(*ast.MemberExpr)
	ident(t, member.Property, "trim")
	name := member.Object.(*ast.MemberExpr)
	if name.Computed {
		t.Fatal(".name should not be computed")
	}
	index := name.Object.(*ast.MemberExpr)
	if !index.Computed {
		t.Fatal("[0] should be computed")
	}
	ident(t, index.Object, "items")
}

func TestArrowFunctions(t *testing.T) {
	fn := onlyExpr(t, "(a, b: number = 2) => a + b").(*ast.ArrowFunc)
	if len(fn.Params) != 2 || fn.Expr == nil || fn.Body != nil {
		t.Fatalf("unexpected arrow: %#v", fn)
	}
	if fn.Params[1].Default == nil {
		t.Fatal("default value not parsed")
	}
	if _, ok := fn.Params[1].Type.(*ast.PrimitiveType); !ok {
		t.Fatalf("param type = %T", fn.Params[1].Type)
	}

	single := onlyExpr(t, "x => { return x }").(*ast.ArrowFunc)
	if len(single.Params) != 1 || single.Body == nil {
		t.Fatalf("unexpected arrow: %#v", single)
	}

	async := onlyExpr(t, "async () => await load()").(*ast.ArrowFunc)
	if !async.Async {
		t.Fatal("expected async arrow")
	}
	if _, ok := async.Expr.(*ast.AwaitExpr); !ok {
		t.Fatalf("body = %T", async.Expr)
	}

	group := onlyExpr(t, "(a + b) * c").(*ast.BinaryExpr)
	if group.Op != "*" {
		t.Fatalf("parenthesized group lost: %s", group.Op)
	}
}

func TestObjectAndArrayLiterals(t *testing.T) {
	call := onlyExpr(t, `f({ name: "a", "quoted key": 1, short,
  list: [1, 2, 3], })`).(*ast.CallExpr)
	obj := call.Args[0].(*ast.ObjectExpr)
	if len(obj.Properties) != 4 {
		t.Fatalf("got %d properties", len(obj.Properties))
	}
	if !obj.Properties[1].Quoted || obj.Properties[1].Key != "quoted key" {
		t.Fatalf("quoted key: %#v", obj.Properties[1])
	}
	if !obj.Properties[2].Shorthand {
		t.Fatal("short should be shorthand")
	}
	arr := obj.Properties[3].Value.(*ast.ArrayExpr)
	if len(arr.Elements) != 3 {
		t.Fatalf("got %d elements", len(arr.Elements))
	}
}

func TestMemberBucketing(t *testing.T) {
	c := onlyComponent(t, `
component Counter {
  method reset() { count = 0 }
  render { <p>{count}</p> }
  state count: number = 0
  method increment() { count += 1 }
  prop label: string
}
`)
	if len(c.State) != 1 || len(c.Props) != 1 || len(c.Methods) != 2 || c.Render == nil {
		t.Fatalf("buckets: state=%d props=%d methods=%d render=%v", len(c.State), len(c.Props), len(c.Methods), c.Render != nil)
	}
	if len(c.Effects) != 0 || len(c.Computed) != 0 || len(c.Lifecycle) != 0 {
		t.Fatal("unexpected effect/computed/lifecycle members")
	}
	if c.Methods[0].Name != "reset" || c.Methods[1].Name != "increment" {
		t.Fatal("method order not preserved")
	}
	if _, ok := c.Props[0].Type.(*ast.PrimitiveType); !ok {
		t.Fatalf("prop type = %T", c.Props[0].Type)
	}
}

func TestComponentMembers(t *testing.T) {
	c := onlyComponent(t, `
component Profile {
  prop user: User
  state loading = false
  computed title() { return user.name }
  effect on user, loading {
    log(user)
  }
  effect { log("always") }
  async lifecycle mounted() { await load() }
  async method save(force: boolean = false) {
    try {
      await api.save(user)
    } catch (e) {
      loading = false
    } finally {
      done()
    }
  }
}
`)
	if named, ok := c.Props[0].Type.(*ast.NamedType); !ok || named.Name != "User" {
		t.Fatalf("prop type = %#v", c.Props[0].Type)
	}
	if len(c.Effects) != 2 || len(c.Effects[0].Deps) != 2 || len(c.Effects[1].Deps) != 0 {
		t.Fatalf("effects = %#v", c.Effects)
	}
	if len(c.Lifecycle) != 1 || c.Lifecycle[0].Phase != "mounted" || !c.Lifecycle[0].Async {
		t.Fatalf("lifecycle = %#v", c.Lifecycle)
	}
	if !c.Methods[0].Async || len(c.Methods[0].Params) != 1 || c.Methods[0].Params[0].Default == nil {
		t.Fatalf("method = %#v", c.Methods[0])
	}
	try := c.Methods[0].Body.Stmts[0].(*ast.TryStmt)
	if try.Handler == nil || try.Handler.Param != "e" || try.Finalizer == nil {
		t.Fatalf("try = %#v", try)
	}
}

func TestComponentErrors(t *testing.T) {
	perr := mustFail(t, "component A {\n  render { <p/> }\n  render { <p/> }\n}")
	if !strings.Contains(perr.Message, "more than one render") || perr.Line != 3 {
		t.Fatalf("duplicate render: %+v", perr)
	}
	perr = mustFail(t, "component A {\n  action go() {}\n}")
	if !strings.Contains(perr.Message, "only allowed in a store") {
		t.Fatalf("action in component: %+v", perr)
	}
	perr = mustFail(t, "store S {\n  render { <p/> }\n}")
	if !strings.Contains(perr.Message, "render is not allowed in store S") {
		t.Fatalf("render in store: %+v", perr)
	}
	perr = mustFail(t, "component A {\n  computed total(x) { return x }\n}")
	if !strings.Contains(perr.Message, "takes no parameters") {
		t.Fatalf("computed params: %+v", perr)
	}
	perr = mustFail(t, "component A {\n  async state x = 1\n}")
	if !strings.Contains(perr.Message, "async") {
		t.Fatalf("async state: %+v", perr)
	}
}

func TestTypeAnnotations(t *testing.T) {
	c := onlyComponent(t, "component A {\n  state a: string\n  state b: number\n  state c: boolean\n  state d: Todo\n}")
	for i, want := range []string{"string", "number", "boolean"} {
		prim, ok := c.State[i].Type.(*ast.PrimitiveType)
		if !ok || prim.Name != want {
			t.Fatalf("state %d type = %#v", i, c.State[i].Type)
		}
	}
	if named, ok := c.State[3].Type.(*ast.NamedType); !ok || named.Name != "Todo" {
		t.Fatalf("state d type = %#v", c.State[3].Type)
	}
	perr := mustFail(t, "component A {\n  state a: 42\n}")
	if !strings.Contains(perr.Message, "expected type annotation") || perr.Line != 2 {
		t.Fatalf("bad annotation: %+v", perr)
	}
}

func TestStore(t *testing.T) {
	prog := mustParse(t, `
store Cart {
  state items = []
  computed count() { return this.items.length }
  action add(item) { this.items = [item] }
  async action load() { await fetchItems() }
}`)
	s := prog.Body[0].(*ast.StoreDecl)
	if s.Name != "Cart" || len(s.State) != 1 || len(s.Computed) != 1 || len(s.Actions) != 2 {
		t.Fatalf("store = %#v", s)
	}
	if !s.Actions[1].Async {
		t.Fatal("load should be async")
	}
}

func TestDecoratorsAndGuards(t *testing.T) {
	prog := mustParse(t, `
@route("/users/:id")
@cache({ ttl: 60, keys: ["a", "b"] })
export component UserPage {
  render { <div/> }
}

@priority(1)
guard RequireAuth(to, from) {
  return session.valid
}
`)
	if len(prog.Body) != 2 {
		t.Fatalf("got %d top-level nodes", len(prog.Body))
	}
	// decorators written before export attach to the component
	c := prog.Body[0].(*ast.ExportDecl).Decl.(*ast.ComponentDecl)
	if len(c.Decorators) != 2 || c.Decorators[0].Name != "route" {
		t.Fatalf("decorators = %#v", c.Decorators)
	}
	if c.Decorators[0].Args[0].Str != "/users/:id" {
		t.Fatalf("route arg = %#v", c.Decorators[0].Args[0])
	}
	ttl, ok := c.Decorators[1].Args[0].Get("ttl")
	if !ok || ttl.Num != 60 {
		t.Fatalf("ttl = %#v", ttl)
	}
	g := prog.Body[1].(*ast.GuardDecl)
	if g.Name != "RequireAuth" || len(g.Params) != 2 || len(g.Decorators) != 1 {
		t.Fatalf("guard = %#v", g)
	}

	perr := mustFail(t, "@route(path)\ncomponent A {}")
	if !strings.Contains(perr.Message, "literals") {
		t.Fatalf("non-literal decorator arg: %+v", perr)
	}
}

func TestExportAndImport(t *testing.T) {
	prog := mustParse(t, `import { a, b as c } from "./lib"
import Header from "./header.pulse"
import "./styles.css"
export @route("/") component Home { render { <main/> } }
export store Session { state user = null }
`)
	imp := prog.Body[0].(*ast.ImportDecl)
	if len(imp.Specifiers) != 2 || imp.Specifiers[1].Alias != "c" || imp.Source != "./lib" {
		t.Fatalf("import = %#v", imp)
	}
	if def := prog.Body[1].(*ast.ImportDecl); def.Default != "Header" {
		t.Fatalf("default import = %#v", def)
	}
	if bare := prog.Body[2].(*ast.ImportDecl); bare.Source != "./styles.css" || bare.Default != "" {
		t.Fatalf("bare import = %#v", bare)
	}
	exp := prog.Body[3].(*ast.ExportDecl)
	home := exp.Decl.(*ast.ComponentDecl)
	if ast.FindDecorator(home.Decorators, "route") == nil {
		t.Fatal("route decorator missing")
	}
	if _, ok := prog.Body[4].(*ast.ExportDecl).Decl.(*ast.StoreDecl); !ok {
		t.Fatal("exported store missing")
	}

	perr := mustFail(t, "export x = 1")
	if !strings.Contains(perr.Message, "can be exported") {
		t.Fatalf("export statement: %+v", perr)
	}
}

func TestStatements(t *testing.T) {
	prog := mustParse(t, `
if (a < b) {
  x = 1
} else if (a == b) x = 2
else {
  x = 3
}
while (i < 10) i += 1
for (i = 0; i < n; i += 1) {
  total = total + i
}
for (;;) { stop() }
`)
	if len(prog.Body) != 4 {
		t.Fatalf("got %d statements", len(prog.Body))
	}
	ifs := prog.Body[0].(*ast.IfStmt)
	elseIf, ok := ifs.Else.(*ast.IfStmt)
	if !ok {
		t.Fatalf("else branch = %T", ifs.Else)
	}
	if _, ok := elseIf.Else.(*ast.BlockStmt); !ok {
		t.Fatalf("final else = %T", elseIf.Else)
	}
	loop := prog.Body[2].(*ast.ForStmt)
	if loop.Init == nil || loop.Test == nil || loop.Update == nil {
		t.Fatalf("for clauses missing: %#v", loop)
	}
	empty := prog.Body[3].(*ast.ForStmt)
	if empty.Init != nil || empty.Test != nil || empty.Update != nil {
		t.Fatalf("empty for clauses: %#v", empty)
	}
}

func TestStatementsNeedSeparator(t *testing.T) {
	mustParse(t, "a = 1; b = 2")
	perr := mustFail(t, "a = 1 b = 2")
	if !strings.Contains(perr.Message, "end of statement") {
		t.Fatalf("got %+v", perr)
	}
}

func TestTemplateElement(t *testing.T) {
	c := onlyComponent(t, `
component Greeter {
  prop name = "World"
  render { <div>Hello, {name}</div> }
}`)
	el := renderElement(t, c)
	if el.Tag() != "div" || el.Closing == nil || el.Closing.Name != "div" {
		t.Fatalf("element = %#v", el)
	}
	if len(el.Children) != 2 {
		t.Fatalf("got %d children", len(el.Children))
	}
	text, ok := el.Children[0].(*ast.TextRun)
	if !ok || text.Value != "Hello," {
		t.Fatalf("text child = %#v", el.Children[0])
	}
	slot, ok := el.Children[1].(*ast.ExpressionSlot)
	if !ok {
		t.Fatalf("slot child = %#v", el.Children[1])
	}
	ident(t, slot.Expr, "name")
}

func TestTemplateAttributesAndNesting(t *testing.T) {
	c := onlyComponent(t, `
component Form {
  render {
    <form class="login" data-id={id} novalidate>
      <input type="text" disabled />
      <Button @click={submit} label="Go" />
      Welcome back, dear  user!
    </form>
  }
}`)
	el := renderElement(t, c)
	attrs := el.Opening.Attributes
	if len(attrs) != 3 {
		t.Fatalf("got %d attributes", len(attrs))
	}
	if attrs[0].Name != "class" || attrs[0].Value.(*ast.Literal).Str != "login" {
		t.Fatalf("class attr = %#v", attrs[0])
	}
	if attrs[1].Name != "data-id" {
		t.Fatalf("dashed attr = %#v", attrs[1])
	}
	ident(t, attrs[1].Value, "id")
	if attrs[2].Name != "novalidate" || attrs[2].Value != nil {
		t.Fatalf("flag attr = %#v", attrs[2])
	}
	if len(el.Children) != 3 {
		t.Fatalf("got %d children", len(el.Children))
	}
	input := el.Children[0].(*ast.Element)
	if !input.Opening.SelfClosing || input.Closing != nil {
		t.Fatalf("input should be self-closing")
	}
	if input.Opening.Attributes[0].Name != "type" {
		t.Fatalf("keyword-like attribute name lost: %#v", input.Opening.Attributes[0])
	}
	button := el.Children[1].(*ast.Element)
	if button.Tag() != "Button" || !button.Opening.Attributes[0].IsEvent() || button.Opening.Attributes[0].Name != "@click" {
		t.Fatalf("button = %#v", button.Opening)
	}
	text := el.Children[2].(*ast.TextRun)
	if text.Value != "Welcome back, dear user!" {
		t.Fatalf("text = %q", text.Value)
	}
}

func TestMismatchedClosingTag(t *testing.T) {
	perr := mustFail(t, "component A {\n  render {\n    <div><span>x</div></span>\n  }\n}")
	if !strings.Contains(perr.Message, "span") || !strings.Contains(perr.Message, "div") {
		t.Fatalf("error should name both tags: %q", perr.Message)
	}
	if perr.Line != 3 {
		t.Fatalf("line = %d", perr.Line)
	}
}

func TestMatchedClosingTags(t *testing.T) {
	c := onlyComponent(t, "component A {\n render { <ul><li>a</li><li><b>b</b></li></ul> }\n}")
	var walk func(el *ast.Element)
	count := 0
	walk = func(el *ast.Element) {
		count++
		if el.Closing != nil && el.Closing.Name != el.Opening.Name {
			t.Fatalf("closing %s does not match opening %s", el.Closing.Name, el.Opening.Name)
		}
		for _, child := range el.Children {
			if nested, ok := child.(*ast.Element); ok {
				walk(nested)
			}
		}
	}
	walk(renderElement(t, c))
	if count != 4 {
		t.Fatalf("visited %d elements", count)
	}
}

func TestUnexpectedTokenReportsLine(t *testing.T) {
	perr := mustFail(t, "a = 1\nb = #\n")
	if perr.Line != 2 || perr.Lexeme != "#" {
		t.Fatalf("got %+v", perr)
	}
	if !strings.Contains(perr.Error(), "2:") {
		t.Fatalf("Error() = %q", perr.Error())
	}
}

func TestAbortOnFirstErrorAndResync(t *testing.T) {
	toks, err := lexer.Tokenize("x = )\ncomponent A { render { <p/> } }\ny = (")
	if err != nil {
		t.Fatal(err)
	}
	p := New(toks)
	_, err = p.Parse()
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Line != 1 {
		t.Fatalf("expected first error on line 1, got %v", err)
	}
	pos, ok := p.Resync()
	if !ok || pos.Line != 1 {
		t.Fatalf("resync position = %+v, %v", pos, ok)
	}
}

func TestParseWithoutEOFSentinel(t *testing.T) {
	toks := []lexer.Token{{Kind: lexer.TokenIdent, Lexeme: "x", Pos: lexer.Position{Line: 1, Col: 1}}}
	prog, err := Parse(toks)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Body) != 1 {
		t.Fatalf("got %d statements", len(prog.Body))
	}
}

func TestLexErrorPassesThrough(t *testing.T) {
	_, err := ParseSource("x = 'open")
	var lexErr *lexer.LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *lexer.LexError, got %T", err)
	}
}
