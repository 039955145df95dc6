// Package verify checks generated modules with an ECMAScript parser.
package verify

import (
	"errors"
	"fmt"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// SyntaxError is a parse failure in generated code.
type SyntaxError struct {
	Message string
	Line    int
	Col     int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("generated code does not parse: %d:%d: %s", e.Line, e.Col, e.Message)
}

// Summary describes the top level of a parsed module.
type Summary struct {
	Imports int
	Exports []string // exported bindings in source order
}

// Module parses code as an ES module.
func Module(code string) (*Summary, error) {
	tree, err := js.Parse(parse.NewInputString(code), js.Options{})
	if err != nil {
		var perr *parse.Error
		if errors.As(err, &perr) {
			return nil, &SyntaxError{Message: perr.Message, Line: perr.Line, Col: perr.Column}
		}
		return nil, err
	}
	sum := &Summary{}
	for _, stmt := range tree.List {
		switch s := stmt.(type) {
		case *js.ImportStmt:
			sum.Imports++
		case *js.ExportStmt:
			sum.Exports = append(sum.Exports, exportNames(s)...)
		}
	}
	return sum, nil
}

func exportNames(s *js.ExportStmt) []string {
	switch d := s.Decl.(type) {
	case *js.ClassDecl:
		if d.Name != nil {
			return []string{string(d.Name.Data)}
		}
	case *js.FuncDecl:
		if d.Name != nil {
			return []string{string(d.Name.Data)}
		}
	}
	var names []string
	for _, alias := range s.List {
		names = append(names, string(alias.Binding))
	}
	return names
}
