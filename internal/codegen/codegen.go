package codegen

import (
	"fmt"
	"strings"

	"pulse/internal/ast"
)

// DefaultRuntime is the module the generated code imports its runtime from.
const DefaultRuntime = "@pulse/runtime"

// runtimeSymbols is the fixed import list of every generated module.
var runtimeSymbols = []string{
	"Component", "Store", "reactive", "computed", "effect",
	"createStore", "h", "Fragment", "registerRoute",
}

// Resolution selects how identifiers are mapped to reactive cells.
type Resolution int

const (
	// ResolveOptimistic treats every bare identifier inside a render body
	// as a state field and every this.<field> assignment as a state write.
	ResolveOptimistic Resolution = iota
	// ResolveDeclared only unwraps names declared as state or computed on
	// the enclosing component or store. Parameters shadow members.
	ResolveDeclared
)

func (r Resolution) String() string {
	if r == ResolveDeclared {
		return "declared"
	}
	return "optimistic"
}

// ParseResolution accepts "optimistic" or "declared".
func ParseResolution(s string) (Resolution, error) {
	switch s {
	case "", "optimistic":
		return ResolveOptimistic, nil
	case "declared":
		return ResolveDeclared, nil
	}
	return 0, fmt.Errorf("unknown resolution mode %q (want optimistic or declared)", s)
}

type Options struct {
	RuntimeModule string // defaults to DefaultRuntime
	Resolution    Resolution
}

// Warning reports a node the generator could not lower. The node produces
// no output; generation continues.
type Warning struct {
	Message string
	Line    int
	Col     int
}

func (w Warning) String() string {
	return fmt.Sprintf("%d:%d: %s", w.Line, w.Col, w.Message)
}

type Output struct {
	Code       string
	Warnings   []Warning
	Components int
	Stores     int
}

// Generate lowers prog to an ES module. Every call uses fresh state, so
// Generate may run concurrently on different programs.
func Generate(prog *ast.Program, opts Options) *Output {
	if opts.RuntimeModule == "" {
		opts.RuntimeModule = DefaultRuntime
	}
	g := &genContext{opts: opts, w: &jsBuilder{}}
	g.preamble()
	g.program(prog)
	return &Output{
		Code:       g.w.String(),
		Warnings:   g.warnings,
		Components: g.components,
		Stores:     g.stores,
	}
}

// genContext is the state of one Generate call.
type genContext struct {
	opts     Options
	w        *jsBuilder
	warnings []Warning

	class    *classScope
	locals   []map[string]bool
	inRender bool
	cells    bool // lowering effect dependencies: keep cells, never .value

	effects    int
	components int
	stores     int
}

// classScope is the symbol table of the component or store being lowered.
type classScope struct {
	name     string
	reactive map[string]bool // state and computed fields
	members  map[string]bool // props, methods, actions, lifecycle hooks
}

type jsBuilder struct {
	sb     strings.Builder
	indent int
}

func (w *jsBuilder) line(s string) {
	w.sb.WriteString(strings.Repeat("  ", w.indent))
	w.sb.WriteString(s)
	w.sb.WriteString("\n")
}

func (w *jsBuilder) blank() {
	w.sb.WriteString("\n")
}

func (w *jsBuilder) pad() string {
	return strings.Repeat("  ", w.indent)
}

func (w *jsBuilder) String() string {
	return w.sb.String()
}

func (g *genContext) warn(n ast.Node, format string, args ...any) {
	pos := n.GetSpan().Start
	g.warnings = append(g.warnings, Warning{Message: fmt.Sprintf(format, args...), Line: pos.Line, Col: pos.Col})
}

func (g *genContext) preamble() {
	g.w.line(fmt.Sprintf("import { %s } from %s;", strings.Join(runtimeSymbols, ", "), quoteText(g.opts.RuntimeModule)))
}

func (g *genContext) program(prog *ast.Program) {
	prevDecl := true
	for _, node := range prog.Body {
		_, isImport := node.(*ast.ImportDecl)
		_, isDecl := node.(ast.Decl)
		isDecl = isDecl && !isImport
		if isDecl || prevDecl {
			g.w.blank()
		}
		prevDecl = isDecl
		g.topLevel(node)
	}
}

func (g *genContext) topLevel(node ast.Node) {
	switch n := node.(type) {
	case *ast.ImportDecl:
		g.importDecl(n)
	case *ast.ExportDecl:
		g.exportDecl(n)
	case *ast.ComponentDecl:
		g.component(n)
	case *ast.StoreDecl:
		g.store(n)
	case *ast.GuardDecl:
		g.guard(n, false)
	case ast.Stmt:
		g.stmt(n)
	default:
		g.warn(node, "unsupported top-level node %T", node)
	}
}

func (g *genContext) importDecl(d *ast.ImportDecl) {
	src := quoteText(importPath(d.Source))
	switch {
	case d.Default != "":
		g.w.line(fmt.Sprintf("import %s from %s;", d.Default, src))
	case len(d.Specifiers) > 0:
		names := make([]string, len(d.Specifiers))
		for i, spec := range d.Specifiers {
			names[i] = spec.Name
			if spec.Alias != "" {
				names[i] += " as " + spec.Alias
			}
		}
		g.w.line(fmt.Sprintf("import { %s } from %s;", strings.Join(names, ", "), src))
	default:
		g.w.line(fmt.Sprintf("import %s;", src))
	}
}

// importPath points imports of other Pulse units at their compiled output.
func importPath(src string) string {
	if strings.HasSuffix(src, ".pulse") {
		return strings.TrimSuffix(src, ".pulse") + ".js"
	}
	return src
}

// exportDecl lowers export-prefixed declarations. Components and stores
// are always exported, so only guards change.
func (g *genContext) exportDecl(d *ast.ExportDecl) {
	switch inner := d.Decl.(type) {
	case *ast.ComponentDecl:
		g.component(inner)
	case *ast.StoreDecl:
		g.store(inner)
	case *ast.GuardDecl:
		g.guard(inner, true)
	default:
		g.warn(d, "unsupported export of %T", d.Decl)
	}
}

// guard lowers a guard declaration to a plain function.
func (g *genContext) guard(d *ast.GuardDecl, export bool) {
	g.decoratorComments(d.Decorators, "")
	head := "function "
	if export {
		head = "export function "
	}
	pop := g.pushLocals(d.Params)
	defer pop()
	g.w.line(head + d.Name + "(" + g.params(d.Params) + ") {")
	g.block(d.Body)
	g.w.line("}")
}

// decoratorComments writes every decorator except skip as a comment.
func (g *genContext) decoratorComments(decorators []*ast.Decorator, skip string) {
	for _, d := range decorators {
		if d.Name == skip {
			continue
		}
		g.w.line("// " + decoratorString(d))
	}
}

func decoratorString(d *ast.Decorator) string {
	if len(d.Args) == 0 {
		return "@" + d.Name
	}
	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		args[i] = a.String()
	}
	return "@" + d.Name + "(" + strings.Join(args, ", ") + ")"
}

func (g *genContext) pushLocals(params []*ast.Param) func() {
	scope := make(map[string]bool, len(params))
	for _, p := range params {
		scope[p.Name] = true
	}
	return g.pushScope(scope)
}

func (g *genContext) pushScope(scope map[string]bool) func() {
	g.locals = append(g.locals, scope)
	return func() { g.locals = g.locals[:len(g.locals)-1] }
}

func (g *genContext) isLocal(name string) bool {
	for i := len(g.locals) - 1; i >= 0; i-- {
		if g.locals[i][name] {
			return true
		}
	}
	return false
}

func (g *genContext) isReactive(name string) bool {
	return g.class != nil && g.class.reactive[name]
}

// quoteText quotes s as a JS string literal. Backslashes in s are literal.
func quoteText(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func propertyKey(s string) string {
	if ast.IsIdentName(s) {
		return s
	}
	return quoteText(s)
}
