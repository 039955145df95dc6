package ast

type Expr interface {
	Node
	exprNode()
}

type Identifier struct {
	Name string
	Span Span
}

type LiteralKind int

const (
	LitString LiteralKind = iota
	LitNumber
	LitBool
	LitNull
	LitUndefined
)

// Literal keeps the source lexeme in Raw so strings are re-emitted with
// their original quotes and escapes.
type Literal struct {
	Kind LiteralKind
	Raw  string
	Str  string
	Num  float64
	Bool bool
	Span Span
}

type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
	Span  Span
}

// LogicalExpr is && or ||.
type LogicalExpr struct {
	Op    string
	Left  Expr
	Right Expr
	Span  Span
}

// UnaryExpr is a prefix !, - or +.
type UnaryExpr struct {
	Op      string
	Operand Expr
	Span    Span
}

type AwaitExpr struct {
	Argument Expr
	Span     Span
}

// AssignExpr is =, += or -=.
type AssignExpr struct {
	Op     string
	Target Expr
	Value  Expr
	Span   Span
}

type ConditionalExpr struct {
	Test       Expr
	Consequent Expr
	Alternate  Expr
	Span       Span
}

type CallExpr struct {
	Callee Expr
	Args   []Expr
	Span   Span
}

// MemberExpr is obj.prop when Computed is false (Property is an
// *Identifier) and obj[prop] otherwise.
type MemberExpr struct {
	Object   Expr
	Property Expr
	Computed bool
	Span     Span
}

type ArrayExpr struct {
	Elements []Expr
	Span     Span
}

type ObjectExpr struct {
	Properties []*Property
	Span       Span
}

type Property struct {
	Key       string
	Quoted    bool // key was written as a string literal
	Value     Expr
	Shorthand bool // { name } form
	Span      Span
}

func (p *Property) GetSpan() Span { return p.Span }

// ArrowFunc has either a block Body or a single expression Expr.
type ArrowFunc struct {
	Params []*Param
	Body   *BlockStmt
	Expr   Expr
	Async  bool
	Span   Span
}

func (*Identifier) exprNode()      {}
func (*Literal) exprNode()         {}
func (*BinaryExpr) exprNode()      {}
func (*LogicalExpr) exprNode()     {}
func (*UnaryExpr) exprNode()       {}
func (*AwaitExpr) exprNode()       {}
func (*AssignExpr) exprNode()      {}
func (*ConditionalExpr) exprNode() {}
func (*CallExpr) exprNode()        {}
func (*MemberExpr) exprNode()      {}
func (*ArrayExpr) exprNode()       {}
func (*ObjectExpr) exprNode()      {}
func (*ArrowFunc) exprNode()       {}

func (e *Identifier) GetSpan() Span      { return e.Span }
func (e *Literal) GetSpan() Span         { return e.Span }
func (e *BinaryExpr) GetSpan() Span      { return e.Span }
func (e *LogicalExpr) GetSpan() Span     { return e.Span }
func (e *UnaryExpr) GetSpan() Span       { return e.Span }
func (e *AwaitExpr) GetSpan() Span       { return e.Span }
func (e *AssignExpr) GetSpan() Span      { return e.Span }
func (e *ConditionalExpr) GetSpan() Span { return e.Span }
func (e *CallExpr) GetSpan() Span        { return e.Span }
func (e *MemberExpr) GetSpan() Span      { return e.Span }
func (e *ArrayExpr) GetSpan() Span       { return e.Span }
func (e *ObjectExpr) GetSpan() Span      { return e.Span }
func (e *ArrowFunc) GetSpan() Span       { return e.Span }
