package optimizer

import "pulse/internal/ast"

// Pass is one named AST-to-AST transform. A pass may return its input or a
// replacement program; it must not return nil.
type Pass struct {
	Name string
	Run  func(*ast.Program) *ast.Program
}

// Optimizer runs an ordered list of passes between parsing and code
// generation.
type Optimizer struct {
	passes []Pass
}

func New(passes ...Pass) *Optimizer {
	return &Optimizer{passes: passes}
}

// Default returns the standard pipeline. Every pass is currently the
// identity.
func Default() *Optimizer {
	return New(
		Pass{Name: "dead-code-elimination", Run: identity},
		Pass{Name: "constant-inlining", Run: identity},
		Pass{Name: "reactive-batching", Run: identity},
		Pass{Name: "component-bundling", Run: identity},
	)
}

// Optimize threads prog through each pass in order.
func (o *Optimizer) Optimize(prog *ast.Program) *ast.Program {
	for _, pass := range o.passes {
		if next := pass.Run(prog); next != nil {
			prog = next
		}
	}
	return prog
}

// Passes returns the pass names in execution order.
func (o *Optimizer) Passes() []string {
	names := make([]string, len(o.passes))
	for i, pass := range o.passes {
		names[i] = pass.Name
	}
	return names
}

func identity(prog *ast.Program) *ast.Program {
	return prog
}
