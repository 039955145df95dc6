package ast

import (
	"fmt"
	"strconv"
	"strings"
)

type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueBool
	ValueNull
	ValueUndefined
	ValueArray
	ValueObject
)

// Value is a decorator argument. Only literal shapes are representable.
type Value struct {
	Kind   ValueKind
	Str    string
	Num    float64
	Bool   bool
	Items  []Value
	Fields []Field
}

type Field struct {
	Key   string
	Value Value
}

func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

func NumberValue(n float64) Value { return Value{Kind: ValueNumber, Num: n} }

func BoolValue(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// Get returns the field with the given key of an object value.
func (v Value) Get(key string) (Value, bool) {
	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// String renders the value with JS literal syntax. Str holds a string body
// as written in source, so its escapes are kept.
func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		return QuoteSource(v.Str)
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueNull:
		return "null"
	case ValueUndefined:
		return "undefined"
	case ValueArray:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ValueObject:
		if len(v.Fields) == 0 {
			return "{}"
		}
		parts := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			key := f.Key
			if !IsIdentName(key) {
				key = QuoteSource(key)
			}
			parts[i] = key + ": " + f.Value.String()
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	default:
		return fmt.Sprintf("value(%d)", int(v.Kind))
	}
}

// ValueOf reduces a literal-shaped expression to a Value. It fails for
// anything that needs evaluation, except a negated number.
func ValueOf(e Expr) (Value, error) {
	switch e := e.(type) {
	case *Literal:
		switch e.Kind {
		case LitString:
			return StringValue(e.Str), nil
		case LitNumber:
			return NumberValue(e.Num), nil
		case LitBool:
			return BoolValue(e.Bool), nil
		case LitNull:
			return Value{Kind: ValueNull}, nil
		default:
			return Value{Kind: ValueUndefined}, nil
		}
	case *UnaryExpr:
		if lit, ok := e.Operand.(*Literal); ok && lit.Kind == LitNumber && e.Op == "-" {
			return NumberValue(-lit.Num), nil
		}
	case *ArrayExpr:
		items := make([]Value, 0, len(e.Elements))
		for _, el := range e.Elements {
			v, err := ValueOf(el)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return Value{Kind: ValueArray, Items: items}, nil
	case *ObjectExpr:
		fields := make([]Field, 0, len(e.Properties))
		for _, p := range e.Properties {
			v, err := ValueOf(p.Value)
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, Field{Key: p.Key, Value: v})
		}
		return Value{Kind: ValueObject, Fields: fields}, nil
	}
	return Value{}, fmt.Errorf("decorator arguments must be literals, got %s", describe(e))
}

func describe(e Expr) string {
	switch e := e.(type) {
	case *Identifier:
		return "identifier " + e.Name
	case *CallExpr:
		return "call"
	default:
		return "expression"
	}
}
