package ast

type Stmt interface {
	Node
	stmtNode()
}

type ExprStmt struct {
	Expr Expr
	Span Span
}

type BlockStmt struct {
	Stmts []Stmt
	Span  Span
}

type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // optional
	Span Span
}

type WhileStmt struct {
	Cond Expr
	Body Stmt
	Span Span
}

// ForStmt is the C-style three-clause loop. Every clause is optional.
type ForStmt struct {
	Init   Expr
	Test   Expr
	Update Expr
	Body   Stmt
	Span   Span
}

type ReturnStmt struct {
	Value Expr // optional
	Span  Span
}

type TryStmt struct {
	Block     *BlockStmt
	Handler   *CatchClause // optional
	Finalizer *BlockStmt   // optional
	Span      Span
}

type CatchClause struct {
	Param string // empty for `catch { }`
	Body  *BlockStmt
	Span  Span
}

func (*ExprStmt) stmtNode()   {}
func (*BlockStmt) stmtNode()  {}
func (*IfStmt) stmtNode()     {}
func (*WhileStmt) stmtNode()  {}
func (*ForStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode() {}
func (*TryStmt) stmtNode()    {}

func (s *ExprStmt) GetSpan() Span    { return s.Span }
func (s *BlockStmt) GetSpan() Span   { return s.Span }
func (s *IfStmt) GetSpan() Span      { return s.Span }
func (s *WhileStmt) GetSpan() Span   { return s.Span }
func (s *ForStmt) GetSpan() Span     { return s.Span }
func (s *ReturnStmt) GetSpan() Span  { return s.Span }
func (s *TryStmt) GetSpan() Span     { return s.Span }
func (c *CatchClause) GetSpan() Span { return c.Span }
