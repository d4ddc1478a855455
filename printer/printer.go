// Package printer formats DOT source by lowering it to a token stream (package dotbuild) and
// running the pretty-printing engine (package pp) over it.
package printer

import (
	"fmt"
	"io"

	dot "github.com/pplang/pplang"
	"github.com/pplang/pplang/dotbuild"
	"github.com/pplang/pplang/pp"
	"github.com/pplang/pplang/ppconfig"
)

// Printer formats DOT source read from r, writing the result to w.
type Printer struct {
	r      io.Reader
	w      io.Writer
	config ppconfig.Configuration
	diagW  io.Writer // receives diagnostics emitted while printing; nil discards them
	rng    *pp.Range
}

// New creates a new printer that reads DOT source from r, formats it per config, and writes the
// formatted output to w. Diagnostics (such as an over-length end-of-line comment) are written to
// diagW, one per line; pass nil to discard them.
func New(r io.Reader, w io.Writer, config ppconfig.Configuration, diagW io.Writer) *Printer {
	return &Printer{r: r, w: w, config: config, diagW: diagW}
}

// WithRange restricts formatting to the given 1-based inclusive line range (spec.md §4.6),
// widened by one line before startLine: tokens originating outside startLine-1 through endLine
// are emitted verbatim. It returns p for chaining.
func (p *Printer) WithRange(startLine, endLine int) *Printer {
	p.rng = &pp.Range{StartLine: startLine, EndLine: endLine}
	return p
}

// Print parses the DOT source, formats it, and writes the result to the writer. It returns an
// error if the source has a syntax error or the token builder violates the engine's contract.
func (p *Printer) Print() error {
	parser, err := dot.NewParser(p.r)
	if err != nil {
		return fmt.Errorf("creating parser: %w", err)
	}

	tree, err := parser.Parse()
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}
	if errs := parser.Errors(); len(errs) > 0 {
		return fmt.Errorf("%d syntax error(s), first: %s", len(errs), errs[0])
	}

	tokens := dotbuild.Build(tree, parser.Comments(), &p.config)

	sink := pp.SinkFunc(func(d pp.Diagnostic) {
		if p.diagW == nil {
			return
		}
		fmt.Fprintf(p.diagW, "%d:%d: %s: %s\n", d.Line, d.Column, d.Severity, d.Message)
	})

	ctx := pp.NewContext(p.config, sink)
	if p.rng != nil {
		ctx = ctx.WithRange(*p.rng)
	}

	out, err := pp.PrettyPrint(ctx, tokens)
	if err != nil {
		return fmt.Errorf("pretty printing: %w", err)
	}

	_, err = io.WriteString(p.w, out)
	return err
}
