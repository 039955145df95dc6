package ast

// Element is a template element: <Tag attr={expr}>children</Tag>.
// Closing is nil for self-closing elements.
type Element struct {
	Opening  *OpeningTag
	Children []Child
	Closing  *ClosingTag
	Span     Span
}

func (*Element) exprNode()       {}
func (*Element) childNode()      {}
func (e *Element) GetSpan() Span { return e.Span }

// Tag returns the element's tag name.
func (e *Element) Tag() string { return e.Opening.Name }

type OpeningTag struct {
	Name        string
	Attributes  []*Attribute
	SelfClosing bool
	Span        Span
}

func (t *OpeningTag) GetSpan() Span { return t.Span }

type ClosingTag struct {
	Name string
	Span Span
}

func (t *ClosingTag) GetSpan() Span { return t.Span }

// Attribute value is nil for a bare flag, a string *Literal for a quoted
// value and any expression for a {expr} slot. Event bindings keep their
// leading '@' in Name.
type Attribute struct {
	Name  string
	Value Expr
	Span  Span
}

func (a *Attribute) GetSpan() Span { return a.Span }

// IsEvent reports whether the attribute is an @event binding.
func (a *Attribute) IsEvent() bool {
	return len(a.Name) > 1 && a.Name[0] == '@'
}

// Child is an element child: *Element, *ExpressionSlot or *TextRun.
type Child interface {
	Node
	childNode()
}

type ExpressionSlot struct {
	Expr Expr
	Span Span
}

func (*ExpressionSlot) childNode()      {}
func (s *ExpressionSlot) GetSpan() Span { return s.Span }

type TextRun struct {
	Value string
	Span  Span
}

func (*TextRun) childNode()      {}
func (t *TextRun) GetSpan() Span { return t.Span }
