package ast

import (
	"errors"
	"testing"
)

func TestNewComponentBuckets(t *testing.T) {
	members := []Member{
		&MethodDecl{Name: "a"},
		&RenderDecl{},
		&StateDecl{Name: "count"},
		&MethodDecl{Name: "b"},
		&PropDecl{Name: "label"},
	}
	c, err := NewComponent("Counter", nil, members, Span{})
	if err != nil {
		t.Fatal(err)
	}
	if len(c.State) != 1 || len(c.Props) != 1 || len(c.Methods) != 2 {
		t.Fatalf("buckets: state=%d props=%d methods=%d", len(c.State), len(c.Props), len(c.Methods))
	}
	if c.Render == nil || len(c.Effects) != 0 || len(c.Computed) != 0 || len(c.Lifecycle) != 0 {
		t.Fatalf("unexpected buckets: %+v", c)
	}
	if c.Methods[0].Name != "a" || c.Methods[1].Name != "b" {
		t.Fatalf("method order not preserved: %s, %s", c.Methods[0].Name, c.Methods[1].Name)
	}
	if len(c.Members) != len(members) {
		t.Fatalf("raw members not kept")
	}
}

func TestNewComponentRejectsSecondRender(t *testing.T) {
	second := &RenderDecl{}
	_, err := NewComponent("C", nil, []Member{&RenderDecl{}, second}, Span{})
	var memberErr *MemberError
	if !errors.As(err, &memberErr) {
		t.Fatalf("expected MemberError, got %v", err)
	}
	if memberErr.Member != second {
		t.Fatalf("error should point at the second render block")
	}
}

func TestNewComponentRejectsAction(t *testing.T) {
	if _, err := NewComponent("C", nil, []Member{&ActionDecl{Name: "inc"}}, Span{}); err == nil {
		t.Fatal("expected error for action in component")
	}
}

func TestNewStoreBuckets(t *testing.T) {
	s, err := NewStore("Cart", nil, []Member{
		&StateDecl{Name: "items"},
		&ActionDecl{Name: "add"},
		&ComputedDecl{Name: "total"},
		&ActionDecl{Name: "clear"},
	}, Span{})
	if err != nil {
		t.Fatal(err)
	}
	if len(s.State) != 1 || len(s.Actions) != 2 || len(s.Computed) != 1 {
		t.Fatalf("buckets: state=%d actions=%d computed=%d", len(s.State), len(s.Actions), len(s.Computed))
	}
	if _, err := NewStore("Cart", nil, []Member{&PropDecl{Name: "p"}}, Span{}); err == nil {
		t.Fatal("expected error for prop in store")
	}
}

func TestValueOf(t *testing.T) {
	obj := &ObjectExpr{Properties: []*Property{
		{Key: "path", Value: &Literal{Kind: LitString, Str: "/users"}},
		{Key: "exact", Value: &Literal{Kind: LitBool, Bool: true}},
		{Key: "order", Value: &UnaryExpr{Op: "-", Operand: &Literal{Kind: LitNumber, Num: 2}}},
		{Key: "tags", Value: &ArrayExpr{Elements: []Expr{&Literal{Kind: LitNull}}}},
	}}
	v, err := ValueOf(obj)
	if err != nil {
		t.Fatal(err)
	}
	want := `{ path: "/users", exact: true, order: -2, tags: [null] }`
	if v.String() != want {
		t.Fatalf("got %s, want %s", v.String(), want)
	}
	path, ok := v.Get("path")
	if !ok || path.Str != "/users" {
		t.Fatalf("Get(path) = %+v, %v", path, ok)
	}
	if _, err := ValueOf(&Identifier{Name: "x"}); err == nil {
		t.Fatal("identifiers are not literal values")
	}
}

func TestValueStringKeepsSourceEscapes(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{StringValue(`/say \"hi\"`), `"/say \"hi\""`},
		{StringValue(`it\'s`), `"it\'s"`},
		{StringValue(`a "b"`), `"a \"b\""`},
		{Value{Kind: ValueObject, Fields: []Field{
			{Key: "a-b", Value: NumberValue(1)},
			{Key: "ok", Value: BoolValue(false)},
		}}, `{ "a-b": 1, ok: false }`},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("got %s, want %s", got, tt.want)
		}
	}
}
