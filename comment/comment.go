// Package comment classifies and renders comment trivia for the pretty-printing engine.
// Doc-line comments may be reflowed through Markdown, grounded on [goldmark] for parsing
// and [github.com/muesli/reflow/wordwrap] for column wrapping.
//
// [goldmark]: https://github.com/yuin/goldmark
package comment

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Kind classifies a comment by its fixed prefix.
type Kind int

const (
	Line Kind = iota
	DocLine
	Block
	DocBlock
)

func (k Kind) prefix() string {
	switch k {
	case Line:
		return "//"
	case DocLine:
		return "///"
	case Block:
		return "/*"
	case DocBlock:
		return "/**"
	default:
		return "//"
	}
}

func (k Kind) String() string {
	switch k {
	case Line:
		return "Line"
	case DocLine:
		return "DocLine"
	case Block:
		return "Block"
	case DocBlock:
		return "DocBlock"
	default:
		return "Unknown"
	}
}

// Comment holds the classified text of a comment trivia and its precomputed visual length.
type Comment struct {
	Kind   Kind
	Lines  []string
	Length int
}

// New builds a Comment, precomputing its visual length: the prefix and required inter-line
// separators are charged in addition to the text itself (spec §3).
func New(kind Kind, lines []string) Comment {
	c := Comment{Kind: kind, Lines: lines}
	c.Length = computeLength(kind, lines)
	return c
}

func computeLength(kind Kind, lines []string) int {
	prefix := len([]rune(kind.prefix()))
	var total int
	for i, l := range lines {
		total += prefix + len([]rune(l))
		if i > 0 {
			total++ // inter-line separator
		}
	}
	if kind == Block || kind == DocBlock {
		total += len("*/")
	}
	return total
}

// Options controls rendering behaviour that depends on configuration the comment module
// does not itself own.
type Options struct {
	// LineLength is the configured soft column budget.
	LineLength int
	// CurrentIndentWidth is the visual width of the indentation the comment is rendered
	// under.
	CurrentIndentWidth int
	// ReflowMarkdown enables Markdown-aware reflow of DocLine comments (spec §4.5).
	ReflowMarkdown bool
}

// Render produces the formatted text of c, not including the indentation of its first line
// (the caller has already positioned the cursor there via the printer's write primitive).
// currentIndent is the literal indentation text written after each "\n", at the start of every
// continuation line.
func (c Comment) Render(currentIndent string, opts Options) string {
	switch c.Kind {
	case Line:
		return renderLine(c.Lines, currentIndent, "//")
	case DocLine:
		if opts.ReflowMarkdown {
			return renderDocLineReflowed(c.Lines, currentIndent, opts)
		}
		return renderLine(c.Lines, currentIndent, "///")
	case Block, DocBlock:
		return renderBlock(c.Lines, c.Kind)
	default:
		return renderLine(c.Lines, currentIndent, "//")
	}
}

func renderLine(lines []string, currentIndent, prefix string) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteString("\n")
			b.WriteString(currentIndent)
		}
		b.WriteString(prefix)
		b.WriteString(l)
	}
	return b.String()
}

// renderBlock pastes lines verbatim, exactly as spec'd for Block/DocBlock: the original body
// lines joined with newlines, terminated with "*/". Unlike renderLine, continuation lines are
// not reindented to the printer's current indentation — a Block/DocBlock comment carries its
// own internal whitespace, same as a Verbatim block.
func renderBlock(lines []string, kind Kind) string {
	var b strings.Builder
	b.WriteString(kind.prefix())
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("*/")
	return b.String()
}

func renderDocLineReflowed(lines []string, currentIndent string, opts Options) string {
	body := strings.Join(lines, "\n")
	width := opts.LineLength - opts.CurrentIndentWidth
	if width < 1 {
		width = 1
	}

	reflowed := reflowMarkdown(body, width)
	reflowed = normalizeQuotes(reflowed)

	raw := strings.Split(strings.TrimRight(reflowed, "\n"), "\n")
	out := make([]string, len(raw))
	for i, l := range raw {
		out[i] = strings.TrimRight(l, " \t")
	}

	var b strings.Builder
	for i, l := range out {
		if i > 0 {
			b.WriteString("\n")
			b.WriteString(currentIndent)
		}
		b.WriteString("/// ")
		b.WriteString(l)
	}
	return b.String()
}

// reflowMarkdown parses body as Markdown and re-wraps its textual content to width columns,
// leaving block structure (headings, lists, code fences) intact.
func reflowMarkdown(body string, width int) string {
	src := []byte(body)
	root := goldmark.DefaultParser().Parse(text.NewReader(src))

	var b strings.Builder
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindParagraph, ast.KindTextBlock:
			plain := extractText(n, src)
			ww := wordwrap.NewWriter(width)
			ww.Write([]byte(plain))
			ww.Close()
			b.WriteString(ww.String())
			b.WriteString("\n\n")
			return ast.WalkSkipChildren, nil
		case ast.KindFencedCodeBlock, ast.KindCodeBlock:
			plain := extractText(n, src)
			b.WriteString(plain)
			b.WriteString("\n")
			return ast.WalkSkipChildren, nil
		case ast.KindHeading, ast.KindListItem:
			plain := extractText(n, src)
			b.WriteString(plain)
			b.WriteString("\n")
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimRight(b.String(), "\n")
}

func extractText(n ast.Node, src []byte) string {
	var b strings.Builder
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteString(" ")
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

var quoteReplacer = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
)

func normalizeQuotes(s string) string {
	return quoteReplacer.Replace(s)
}
