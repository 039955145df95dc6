package compiler

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"pulse/internal/ast"
	"pulse/internal/buildcache"
	"pulse/internal/codegen"
)

// Builder compiles a set of units and the Pulse files they import.
type Builder struct {
	Options Options
	Cache   *buildcache.Cache // optional
	Jobs    int               // concurrent units; <= 0 means one per CPU
	Root    string            // base for output paths; defaults to the units' common directory
}

// Report describes one built unit.
type Report struct {
	Path     string
	Output   string
	Cached   bool
	Warnings []codegen.Warning
}

type unit struct {
	path string
	src  string
	prog *ast.Program
	err  error
}

// Build compiles inputs and their relative .pulse imports concurrently and
// writes one .js file per unit. Every unit is attempted; the first error
// is returned along with the reports.
func (b *Builder) Build(ctx context.Context, inputs []string, outDir string) ([]*Report, error) {
	units, err := b.collect(inputs)
	if err != nil {
		return nil, err
	}
	root := b.Root
	if root == "" {
		root = commonDir(units)
	} else if root, err = filepath.Abs(root); err != nil {
		return nil, err
	}
	jobs := b.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	reports := make([]*Report, len(units))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, u := range units {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rep, err := b.buildUnit(ctx, u, root, outDir)
			reports[i] = rep
			return err
		})
	}
	err = g.Wait()
	return reports, err
}

// collect reads and parses every input, following relative .pulse imports
// the way a module loader would. Parse failures are kept on the unit so
// the other units still build.
func (b *Builder) collect(inputs []string) ([]*unit, error) {
	seen := map[string]bool{}
	var units []*unit
	var visit func(path string) error
	visit = func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if seen[abs] {
			return nil
		}
		seen[abs] = true
		src, err := os.ReadFile(abs)
		if err != nil {
			return err
		}
		u := &unit{path: abs, src: string(src)}
		units = append(units, u)
		u.prog, u.err = parseSource(abs, u.src)
		if u.err != nil {
			return nil
		}
		dir := filepath.Dir(abs)
		for _, imp := range Imports(u.prog) {
			if err := visit(filepath.Join(dir, imp)); err != nil {
				return &Error{File: abs, Err: err}
			}
		}
		return nil
	}
	for _, in := range inputs {
		if err := visit(in); err != nil {
			return nil, err
		}
	}
	return units, nil
}

func (b *Builder) buildUnit(ctx context.Context, u *unit, root, outDir string) (*Report, error) {
	rep := &Report{Path: u.path}
	if u.err != nil {
		return rep, u.err
	}
	out, err := OutputPath(u.path, root, outDir)
	if err != nil {
		return rep, err
	}
	rep.Output = out

	key := b.cacheKey(u.src)
	if b.Cache != nil {
		code, ok, err := b.Cache.Get(ctx, key)
		if err != nil {
			return rep, err
		}
		if ok {
			rep.Cached = true
			return rep, WriteOutput(out, code)
		}
	}

	res, err := generate(u.path, u.prog, b.Options)
	if err != nil {
		return rep, err
	}
	rep.Warnings = res.Warnings
	if err := WriteOutput(out, res.Code); err != nil {
		return rep, err
	}
	// units with warnings are recompiled every time so the warnings are
	// reported again
	if b.Cache != nil && len(res.Warnings) == 0 {
		if err := b.Cache.Put(ctx, key, u.path, res.Code); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

func (b *Builder) cacheKey(src string) string {
	o := b.Options
	return buildcache.Key(Version, o.Codegen.RuntimeModule, o.Codegen.Resolution.String(), strconv.FormatBool(o.Verify), src)
}

func commonDir(units []*unit) string {
	if len(units) == 0 {
		return "."
	}
	dir := filepath.Dir(units[0].path)
	for _, u := range units[1:] {
		for !within(dir, u.path) {
			parent := filepath.Dir(dir)
			if parent == dir {
				return dir
			}
			dir = parent
		}
	}
	return dir
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
