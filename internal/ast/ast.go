package ast

// Node is implemented by every declaration, statement, expression and
// template node.
type Node interface {
	GetSpan() Span
}

type Program struct {
	Body []Node // Decl or Stmt, in source order
	Span Span
}

func (p *Program) GetSpan() Span { return p.Span }

type Decl interface {
	Node
	declNode()
}

type ImportSpecifier struct {
	Name  string
	Alias string // empty when not renamed
	Span  Span
}

// ImportDecl covers `import { a, b as c } from "x"`, `import X from "x"`
// and `import "x"`.
type ImportDecl struct {
	Default    string
	Specifiers []ImportSpecifier
	Source     string
	Span       Span
}

func (*ImportDecl) declNode()       {}
func (d *ImportDecl) GetSpan() Span { return d.Span }

type ExportDecl struct {
	Decl Decl
	Span Span
}

func (*ExportDecl) declNode()       {}
func (d *ExportDecl) GetSpan() Span { return d.Span }

type GuardDecl struct {
	Name       string
	Decorators []*Decorator
	Params     []*Param
	Body       *BlockStmt
	Span       Span
}

func (*GuardDecl) declNode()       {}
func (d *GuardDecl) GetSpan() Span { return d.Span }

type Decorator struct {
	Name string
	Args []Value
	Span Span
}

func (d *Decorator) GetSpan() Span { return d.Span }

// FindDecorator returns the first decorator with the given name.
func FindDecorator(decorators []*Decorator, name string) *Decorator {
	for _, d := range decorators {
		if d.Name == name {
			return d
		}
	}
	return nil
}

type Param struct {
	Name    string
	Type    TypeExpr
	Default Expr
	Span    Span
}

type TypeExpr interface {
	Node
	typeNode()
}

// PrimitiveType is one of string, number or boolean.
type PrimitiveType struct {
	Name string
	Span Span
}

func (*PrimitiveType) typeNode()       {}
func (t *PrimitiveType) GetSpan() Span { return t.Span }

type NamedType struct {
	Name string
	Span Span
}

func (*NamedType) typeNode()       {}
func (t *NamedType) GetSpan() Span { return t.Span }

type Span struct {
	Start Position
	End   Position
}

type Position struct {
	Line int
	Col  int
}
