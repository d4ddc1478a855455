package main

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	dot "github.com/pplang/pplang"
	"github.com/pplang/pplang/dotbuild"
	"github.com/pplang/pplang/internal/udiff"
	"github.com/pplang/pplang/pp"
	"github.com/pplang/pplang/ppconfig"
)

// runOptions carries the resolved configuration and I/O for a single pplangfmt invocation.
type runOptions struct {
	cfg      ppconfig.Configuration
	rng      *pp.Range
	diff     bool
	write    bool
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	colorize bool
}

func runFormat(opts runOptions, args []string) error {
	if len(args) == 0 {
		if opts.write {
			return fmt.Errorf("--write requires at least one file or directory argument")
		}
		src, err := io.ReadAll(opts.stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		return formatOne(opts, "<stdin>", src, opts.stdout)
	}

	var failed bool
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			fmt.Fprintf(opts.stderr, "%s: %v\n", arg, err)
			failed = true
			continue
		}
		if fi.IsDir() {
			if err := walkDir(opts, arg); err != nil {
				fmt.Fprintf(opts.stderr, "%s: %v\n", arg, err)
				failed = true
			}
			continue
		}
		if err := formatPath(opts, arg); err != nil {
			fmt.Fprintf(opts.stderr, "%s: %v\n", arg, err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("formatting failed for one or more inputs")
	}
	return nil
}

func walkDir(opts runOptions, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(d.Name()); ext != ".dot" && ext != ".gv" {
			return nil
		}
		return formatPath(opts, path)
	})
}

func formatPath(opts runOptions, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	if opts.write {
		return formatInPlace(opts, path, src)
	}
	return formatOne(opts, path, src, opts.stdout)
}

func formatOne(opts runOptions, name string, src []byte, w io.Writer) error {
	out, diags, err := format(opts, src)
	if err != nil {
		return err
	}
	reportDiagnostics(opts, name, diags)

	if opts.diff {
		writeColorizedDiff(opts, w, udiff.Unified(name, name, src, []byte(out)))
		return nil
	}
	_, err = io.WriteString(w, out)
	return err
}

// formatInPlace formats path's contents and, unless the result is unchanged, writes it back
// atomically via a sibling temp file and rename, mirroring internal/format.File.
func formatInPlace(opts runOptions, path string, src []byte) error {
	out, diags, err := format(opts, src)
	if err != nil {
		return err
	}
	reportDiagnostics(opts, path, diags)

	if opts.diff {
		writeColorizedDiff(opts, opts.stdout, udiff.Unified(path, path, src, []byte(out)))
	}
	if out == string(src) {
		return nil
	}

	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()
	if err := tmp.Chmod(fi.Mode().Perm()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("setting file mode: %w", err)
	}
	if _, err := io.WriteString(tmp, out); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	success = true
	return nil
}

// format runs the pretty-printing engine over src and returns the formatted text plus any
// diagnostics raised along the way, without writing anywhere. It drives dotbuild/pp directly
// rather than through package printer so diagnostics stay structured for colorized rendering.
func format(opts runOptions, src []byte) (string, []pp.Diagnostic, error) {
	parser, err := dot.NewParser(bytes.NewReader(src))
	if err != nil {
		return "", nil, fmt.Errorf("creating parser: %w", err)
	}
	tree, err := parser.Parse()
	if err != nil {
		return "", nil, fmt.Errorf("parsing: %w", err)
	}
	if errs := parser.Errors(); len(errs) > 0 {
		return "", nil, fmt.Errorf("%d syntax error(s), first: %s", len(errs), errs[0])
	}

	tokens := dotbuild.Build(tree, parser.Comments(), &opts.cfg)

	sink := &pp.CollectingSink{}
	ctx := pp.NewContext(opts.cfg, sink)
	if opts.rng != nil {
		ctx = ctx.WithRange(*opts.rng)
	}

	out, err := pp.PrettyPrint(ctx, tokens)
	if err != nil {
		return "", nil, fmt.Errorf("pretty printing: %w", err)
	}
	return out, sink.Diagnostics, nil
}

func reportDiagnostics(opts runOptions, name string, diags []pp.Diagnostic) {
	for _, d := range diags {
		label := d.Severity.String()
		if opts.colorize {
			c := color.New(color.FgYellow)
			if d.Severity == pp.SeverityError {
				c = color.New(color.FgRed)
			}
			label = c.Sprint(label)
		}
		fmt.Fprintf(opts.stderr, "%s:%d:%d: %s: %s\n", name, d.Line, d.Column, label, d.Message)
	}
}

func writeColorizedDiff(opts runOptions, w io.Writer, d string) {
	if d == "" {
		return
	}
	if !opts.colorize {
		fmt.Fprint(w, d)
		return
	}
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)
	for _, line := range splitKeepEnd(d) {
		switch {
		case strings.HasPrefix(line, "+"):
			green.Fprint(w, line)
		case strings.HasPrefix(line, "-"):
			red.Fprint(w, line)
		case strings.HasPrefix(line, "@@"):
			cyan.Fprint(w, line)
		default:
			fmt.Fprint(w, line)
		}
	}
}

func splitKeepEnd(s string) []string {
	var lines []string
	for len(s) > 0 {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			lines = append(lines, s)
			break
		}
		lines = append(lines, s[:i+1])
		s = s[i+1:]
	}
	return lines
}
