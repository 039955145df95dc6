package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"

	"pulse/internal/buildcache"
	"pulse/internal/codegen"
	"pulse/internal/compiler"
	"pulse/internal/formatter"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "build":
		if code := buildCmd(os.Args[2:]); code != 0 {
			os.Exit(code)
		}
	case "check":
		checkCmd(os.Args[2:])
	case "format":
		formatCmd(os.Args[2:])
	case "cache":
		cacheCmd(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  pulse build [-o <dir>] [-cache <file>] [-resolve optimistic|declared] [-runtime <module>] [-verify] [-j <n>] <file.pulse>...")
	fmt.Fprintln(os.Stderr, "  pulse check <file.pulse>...")
	fmt.Fprintln(os.Stderr, "  pulse format [-write] <file.pulse>...")
	fmt.Fprintln(os.Stderr, "  pulse cache -cache <file> [-clear]")
}

// buildCmd returns the exit status instead of exiting so its deferred
// cleanup runs.
func buildCmd(args []string) int {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	out := fs.String("o", "", "output directory (default: next to each input)")
	cachePath := fs.String("cache", "", "build cache database")
	resolve := fs.String("resolve", "optimistic", "identifier resolution in render: optimistic or declared")
	runtimeModule := fs.String("runtime", codegen.DefaultRuntime, "module the runtime symbols are imported from")
	verify := fs.Bool("verify", false, "parse the generated JavaScript before writing it")
	jobs := fs.Int("j", 0, "units compiled in parallel (default: number of CPUs)")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "an input file is required")
		return 1
	}
	resolution, err := codegen.ParseResolution(*resolve)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	b := &compiler.Builder{
		Options: compiler.Options{
			Codegen: codegen.Options{RuntimeModule: *runtimeModule, Resolution: resolution},
			Verify:  *verify,
		},
		Jobs: *jobs,
	}
	if *cachePath != "" {
		cache, err := buildcache.Open(*cachePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer cache.Close()
		b.Cache = cache
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	reports, err := b.Build(ctx, fs.Args(), *out)
	for _, rep := range reports {
		if rep == nil {
			continue
		}
		for _, w := range rep.Warnings {
			fmt.Fprintf(os.Stderr, "%s:%s\n", rep.Path, w)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "an input file is required")
		os.Exit(1)
	}
	failed := false
	for _, file := range fs.Args() {
		if err := compiler.CheckFile(file); err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func formatCmd(args []string) {
	fs := flag.NewFlagSet("format", flag.ExitOnError)
	write := fs.Bool("write", false, "overwrite the files with the formatted source")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "an input file is required")
		os.Exit(1)
	}

	for _, file := range fs.Args() {
		src, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", file, err)
			os.Exit(1)
		}
		formatted, err := formatter.New().Format(string(src))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s:%v\n", file, err)
			os.Exit(1)
		}
		if *write {
			if err := compiler.WriteOutput(file, formatted); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", file, err)
				os.Exit(1)
			}
		} else {
			fmt.Print(formatted)
		}
	}
}

func cacheCmd(args []string) {
	fs := flag.NewFlagSet("cache", flag.ExitOnError)
	cachePath := fs.String("cache", "", "build cache database")
	clearAll := fs.Bool("clear", false, "remove every cached module")
	_ = fs.Parse(args)
	if *cachePath == "" {
		fmt.Fprintln(os.Stderr, "-cache is required")
		os.Exit(1)
	}
	cache, err := buildcache.Open(*cachePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer cache.Close()

	ctx := context.Background()
	if *clearAll {
		if err := cache.Clear(ctx); err != nil {
			fmt.Fprintln(os.Stderr, err)
			cache.Close()
			os.Exit(1)
		}
	}
	s, err := cache.Stats(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cache.Close()
		os.Exit(1)
	}
	fmt.Printf("%s entries, %s, %d source files\n", humanize.Comma(int64(s.Entries)), humanize.Bytes(uint64(s.Bytes)), s.Sources)
}
