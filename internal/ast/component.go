package ast

import "fmt"

// Member is a declaration inside a component or store body.
type Member interface {
	Node
	memberNode()
}

type StateDecl struct {
	Name string
	Type TypeExpr // optional
	Init Expr     // optional
	Span Span
}

type PropDecl struct {
	Name    string
	Type    TypeExpr // optional
	Default Expr     // optional
	Span    Span
}

type MethodDecl struct {
	Name   string
	Params []*Param
	Body   *BlockStmt
	Async  bool
	Span   Span
}

// ActionDecl is a store method.
type ActionDecl struct {
	Name   string
	Params []*Param
	Body   *BlockStmt
	Async  bool
	Span   Span
}

type EffectDecl struct {
	Deps []Expr
	Body *BlockStmt
	Span Span
}

type ComputedDecl struct {
	Name string
	Body *BlockStmt
	Span Span
}

type RenderDecl struct {
	Body *BlockStmt
	Span Span
}

type LifecycleDecl struct {
	Phase  string
	Params []*Param
	Body   *BlockStmt
	Async  bool
	Span   Span
}

func (*StateDecl) memberNode()     {}
func (*PropDecl) memberNode()      {}
func (*MethodDecl) memberNode()    {}
func (*ActionDecl) memberNode()    {}
func (*EffectDecl) memberNode()    {}
func (*ComputedDecl) memberNode()  {}
func (*RenderDecl) memberNode()    {}
func (*LifecycleDecl) memberNode() {}

func (m *StateDecl) GetSpan() Span     { return m.Span }
func (m *PropDecl) GetSpan() Span      { return m.Span }
func (m *MethodDecl) GetSpan() Span    { return m.Span }
func (m *ActionDecl) GetSpan() Span    { return m.Span }
func (m *EffectDecl) GetSpan() Span    { return m.Span }
func (m *ComputedDecl) GetSpan() Span  { return m.Span }
func (m *RenderDecl) GetSpan() Span    { return m.Span }
func (m *LifecycleDecl) GetSpan() Span { return m.Span }

// ComponentDecl keeps the raw member list and the buckets derived from it.
// The buckets are filled once by NewComponent and never recomputed.
type ComponentDecl struct {
	Name       string
	Decorators []*Decorator
	Members    []Member

	State     []*StateDecl
	Props     []*PropDecl
	Methods   []*MethodDecl
	Effects   []*EffectDecl
	Computed  []*ComputedDecl
	Lifecycle []*LifecycleDecl
	Render    *RenderDecl

	Span Span
}

func (*ComponentDecl) declNode()       {}
func (d *ComponentDecl) GetSpan() Span { return d.Span }

type StoreDecl struct {
	Name       string
	Decorators []*Decorator
	Members    []Member

	State    []*StateDecl
	Computed []*ComputedDecl
	Actions  []*ActionDecl

	Span Span
}

func (*StoreDecl) declNode()       {}
func (d *StoreDecl) GetSpan() Span { return d.Span }

// MemberError reports a member that is not allowed where it was declared.
type MemberError struct {
	Member Member
	Msg    string
}

func (e *MemberError) Error() string { return e.Msg }

// NewComponent classifies members into their buckets. Order is preserved
// within each bucket. Actions and a second render block are rejected.
func NewComponent(name string, decorators []*Decorator, members []Member, span Span) (*ComponentDecl, error) {
	c := &ComponentDecl{Name: name, Decorators: decorators, Members: members, Span: span}
	for _, m := range members {
		switch m := m.(type) {
		case *StateDecl:
			c.State = append(c.State, m)
		case *PropDecl:
			c.Props = append(c.Props, m)
		case *MethodDecl:
			c.Methods = append(c.Methods, m)
		case *EffectDecl:
			c.Effects = append(c.Effects, m)
		case *ComputedDecl:
			c.Computed = append(c.Computed, m)
		case *LifecycleDecl:
			c.Lifecycle = append(c.Lifecycle, m)
		case *RenderDecl:
			if c.Render != nil {
				return nil, &MemberError{Member: m, Msg: fmt.Sprintf("component %s has more than one render block", name)}
			}
			c.Render = m
		case *ActionDecl:
			return nil, &MemberError{Member: m, Msg: fmt.Sprintf("action %s is only allowed in a store", m.Name)}
		default:
			return nil, &MemberError{Member: m, Msg: fmt.Sprintf("unexpected member %T in component %s", m, name)}
		}
	}
	return c, nil
}

// NewStore classifies store members. Stores only hold state, computed
// values and actions.
func NewStore(name string, decorators []*Decorator, members []Member, span Span) (*StoreDecl, error) {
	s := &StoreDecl{Name: name, Decorators: decorators, Members: members, Span: span}
	for _, m := range members {
		switch m := m.(type) {
		case *StateDecl:
			s.State = append(s.State, m)
		case *ComputedDecl:
			s.Computed = append(s.Computed, m)
		case *ActionDecl:
			s.Actions = append(s.Actions, m)
		default:
			return nil, &MemberError{Member: m, Msg: fmt.Sprintf("%s is not allowed in store %s", memberLabel(m), name)}
		}
	}
	return s, nil
}

func memberLabel(m Member) string {
	switch m.(type) {
	case *PropDecl:
		return "prop"
	case *MethodDecl:
		return "method"
	case *EffectDecl:
		return "effect"
	case *RenderDecl:
		return "render"
	case *LifecycleDecl:
		return "lifecycle"
	default:
		return fmt.Sprintf("%T", m)
	}
}
