// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command mirc is the mir material compiler CLI.
//
// Usage:
//
//	mirc [options] <material.yaml | dir>...
//
// Examples:
//
//	mirc rock.yaml                      # Compile to stdout
//	mirc -o build materials/            # Compile every material to build/<name>.hlsl
//	mirc -dump ir rock.yaml             # Print the scheduled IR
//	mirc -switch UseDetail=false rock.yaml
//	mirc -watch -o build materials/     # Recompile on change
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gogpu/mir"
	"github.com/gogpu/mir/builder"
	"github.com/gogpu/mir/cache"
	"github.com/gogpu/mir/graph"
	"github.com/gogpu/mir/hlsl"
	"github.com/gogpu/mir/internal/dump"
)

var (
	output      = flag.String("o", "", "output directory (default: stdout)")
	dumpMode    = flag.String("dump", "", `print "ir" or "dot" instead of HLSL`)
	shaderModel = flag.String("sm", "5.1", "target shader model")
	ternary     = flag.Bool("ternary", false, "lower every branch to a conditional expression")
	jobs        = flag.Int("j", runtime.GOMAXPROCS(0), "number of materials compiled concurrently")
	watchInputs = flag.Bool("watch", false, "recompile materials when they change")
	verbose     = flag.Bool("v", false, "verbose logging")
	version     = flag.Bool("version", false, "print version")
	switches    = switchFlags{}
)

func init() {
	flag.Var(switches, "switch", "static switch override `name=bool` (repeatable)")
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("mirc version %s\n", mir.Version)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	c, err := newCompiler(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *watchInputs {
		err = c.watch(ctx, args)
	} else {
		err = c.compileInputs(ctx, args)
	}
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: mirc [options] <material.yaml | dir>...\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  mirc rock.yaml                   Compile to stdout\n")
	fmt.Fprintf(os.Stderr, "  mirc -o build materials/         Compile a directory\n")
	fmt.Fprintf(os.Stderr, "  mirc -dump dot rock.yaml         Print the use graph\n")
	fmt.Fprintf(os.Stderr, "  mirc -watch -o build materials/  Recompile on change\n")
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// switchFlags collects -switch name=bool overrides.
type switchFlags map[string]bool

func (s switchFlags) String() string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	for i, name := range names {
		names[i] = name + "=" + strconv.FormatBool(s[name])
	}
	return strings.Join(names, ",")
}

func (s switchFlags) Set(v string) error {
	name, value, ok := strings.Cut(v, "=")
	if !ok || name == "" {
		return fmt.Errorf("want name=bool, got %q", v)
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("switch %s: %w", name, err)
	}
	s[name] = b
	return nil
}

// errReported marks failures already printed per material.
var errReported = errors.New("compilation failed")

type compiler struct {
	opts   builder.Options
	cache  *cache.Cache
	outDir string
	dump   string
	jobs   int
	stdout io.Writer
	stderr io.Writer
	log    *zap.Logger
}

func newCompiler(log *zap.Logger) (*compiler, error) {
	sm, ok := hlsl.ParseShaderModel(*shaderModel)
	if !ok {
		return nil, fmt.Errorf("unknown shader model %q", *shaderModel)
	}
	switch *dumpMode {
	case "", "ir", "dot":
	default:
		return nil, fmt.Errorf("unknown dump mode %q", *dumpMode)
	}

	opts := mir.DefaultOptions()
	opts.HLSL.ShaderModel = sm
	opts.HLSL.TernaryBranches = *ternary
	opts.StaticSwitches = switches
	opts.Logger = log

	// Watch mode recompiles on every save; the cache skips saves that do
	// not change the material.
	results, err := cache.New(1024, opts)
	if err != nil {
		return nil, err
	}
	return &compiler{
		opts:   opts,
		cache:  results,
		outDir: *output,
		dump:   *dumpMode,
		jobs:   *jobs,
		stdout: os.Stdout,
		stderr: os.Stderr,
		log:    log,
	}, nil
}

// expandInputs replaces directories by the material files they contain.
func expandInputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && isMaterialFile(e.Name()) {
				paths = append(paths, filepath.Join(arg, e.Name()))
			}
		}
	}
	return paths, nil
}

func isMaterialFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}

func (c *compiler) compileInputs(ctx context.Context, args []string) error {
	paths, err := expandInputs(args)
	if err != nil {
		return err
	}
	return c.compileFiles(ctx, paths)
}

// compileFiles loads and compiles paths concurrently. Every failure is
// printed to stderr; the result is errReported if any material failed.
func (c *compiler) compileFiles(ctx context.Context, paths []string) error {
	failed := false
	materials := make([]*graph.Material, 0, len(paths))
	for _, path := range paths {
		m, err := graph.Load(path)
		if err != nil {
			fmt.Fprintln(c.stderr, err)
			failed = true
			continue
		}
		materials = append(materials, m)
	}

	results, err := c.cache.BuildAll(ctx, materials, c.jobs)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		failed = true
	}
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintln(c.stderr, r.Err)
			continue
		}
		if err := c.write(r.Result); err != nil {
			return err
		}
	}

	if failed {
		return errReported
	}
	return nil
}

func (c *compiler) write(r *builder.Result) error {
	var text, ext string
	switch c.dump {
	case "ir":
		text, ext = dump.Instructions(r.Module), ".ir"
	case "dot":
		text, ext = dump.UseGraph(r.Module), ".dot"
	default:
		text, ext = mir.FormatHLSL(r), ".hlsl"
	}

	if c.outDir == "" {
		_, err := io.WriteString(c.stdout, text)
		return err
	}
	if err := os.MkdirAll(c.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(c.outDir, r.Module.Name+ext)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	c.log.Info("compiled",
		zap.String("material", r.Module.Name),
		zap.String("output", path),
		zap.Stringer("features", r.Info.UsedFeatures))
	return nil
}
