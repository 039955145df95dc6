package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pulse/internal/ast"
	"pulse/internal/codegen"
	"pulse/internal/lexer"
	"pulse/internal/optimizer"
	"pulse/internal/parser"
	"pulse/internal/verify"
)

// Version is mixed into build cache keys.
const Version = "pulse/0.3"

type Options struct {
	Codegen codegen.Options
	Verify  bool // parse the generated module before accepting it
}

type Result struct {
	Name     string
	Code     string
	Warnings []codegen.Warning
	Imports  []string // relative .pulse imports as written
}

// Error ties a compilation failure to its source file.
type Error struct {
	File string
	Err  error
}

func (e *Error) Error() string {
	var lexErr *lexer.LexError
	var parseErr *parser.ParseError
	if errors.As(e.Err, &lexErr) || errors.As(e.Err, &parseErr) {
		return e.File + ":" + e.Err.Error()
	}
	return e.File + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CompileSource runs the whole pipeline on one unit.
func CompileSource(name, src string, opts Options) (*Result, error) {
	prog, err := parseSource(name, src)
	if err != nil {
		return nil, err
	}
	return generate(name, prog, opts)
}

func CompileFile(path string, opts Options) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return CompileSource(path, string(src), opts)
}

// CheckFile parses path without generating code.
func CheckFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = parseSource(path, string(src))
	return err
}

func parseSource(name, src string) (*ast.Program, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, &Error{File: name, Err: err}
	}
	prog, err := parser.Parse(toks)
	if err != nil {
		return nil, &Error{File: name, Err: err}
	}
	return prog, nil
}

func generate(name string, prog *ast.Program, opts Options) (*Result, error) {
	prog = optimizer.Default().Optimize(prog)
	out := codegen.Generate(prog, opts.Codegen)
	if opts.Verify {
		if _, err := verify.Module(out.Code); err != nil {
			return nil, &Error{File: name, Err: err}
		}
	}
	return &Result{Name: name, Code: out.Code, Warnings: out.Warnings, Imports: Imports(prog)}, nil
}

// Imports lists the relative imports of other Pulse units in prog.
func Imports(prog *ast.Program) []string {
	var out []string
	for _, node := range prog.Body {
		imp, ok := node.(*ast.ImportDecl)
		if !ok || !strings.HasSuffix(imp.Source, ".pulse") {
			continue
		}
		if strings.HasPrefix(imp.Source, "./") || strings.HasPrefix(imp.Source, "../") {
			out = append(out, imp.Source)
		}
	}
	return out
}

// WriteOutput replaces path with code. The file is written to a temporary
// name and renamed, so readers never see partial output.
func WriteOutput(path, code string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".pulse-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(code); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// OutputPath maps an input file to its .js output. With an empty outDir the
// output sits next to the input; otherwise the input's path below root is
// kept under outDir.
func OutputPath(input, root, outDir string) (string, error) {
	out := strings.TrimSuffix(input, filepath.Ext(input)) + ".js"
	if outDir == "" {
		return out, nil
	}
	rel, err := filepath.Rel(root, out)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the build root %s", input, root)
	}
	return filepath.Join(outDir, rel), nil
}
