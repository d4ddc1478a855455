package pp

import (
	"strings"

	"github.com/pplang/pplang/comment"
	"github.com/pplang/pplang/indent"
	"github.com/pplang/pplang/ptoken"
)

// activeOpenBreak records a fired Break(Open) awaiting its matching Break(Close) (spec.md
// §3 activeOpenBreaks).
type activeOpenBreak struct {
	openLine  int
	didIndent bool
}

// printer is the second pass of the algorithm (spec.md §4.3/§4.4): it consumes tokens in
// order and writes the formatted text, owning all printer state for the duration of one
// PrettyPrint call.
type printer struct {
	ctx     *Context
	tokens  []ptoken.Token
	lengths []int

	buf strings.Builder

	lineNumber              int
	isAtStartOfLine         bool
	consecutiveNewlineCount int
	pendingSpaces           int
	spaceRemaining          int

	indentationStack   indent.Indent
	continuationStack  []bool
	activeOpenBreaks   []activeOpenBreak
	forceBreakStack    []bool
	currentLineIsContinuation bool

	lastBreakKind ptoken.BreakKind
	lastBreak     bool

	// lastOriginLine supports partial-region mode: a synthesised token (SourceLine == 0)
	// maps to the line of the preceding originating token.
	lastOriginLine int
}

func newPrinter(ctx *Context, tokens []ptoken.Token, lengths []int) *printer {
	return &printer{
		ctx:             ctx,
		tokens:          tokens,
		lengths:         lengths,
		lineNumber:      1,
		isAtStartOfLine: true,
		spaceRemaining:  ctx.Config.LineLength,
		lastOriginLine:  1,
	}
}

func (p *printer) run() {
	for i, tok := range p.tokens {
		if !p.inRange(tok) {
			p.emitOriginal(tok)
			continue
		}

		switch tok.Kind {
		case ptoken.KindOpen:
			p.handleOpen(i, tok)
		case ptoken.KindClose:
			p.handleClose(i, tok)
		case ptoken.KindBreak:
			p.handleBreak(i, tok)
		case ptoken.KindSpace:
			p.pendingSpaces += tok.SpaceSize
		case ptoken.KindNewlines:
			p.currentLineIsContinuation = p.lastBreakKind == ptoken.Continue
			p.writeNewlines(tok.Count, tok.Discretionary)
			p.lastBreak = true
		case ptoken.KindSyntax:
			p.handleSyntax(i, tok)
		case ptoken.KindComment:
			p.handleComment(i, tok)
		case ptoken.KindVerbatim:
			p.handleVerbatim(i, tok)
		}
	}

	if len(p.activeOpenBreaks) != 0 {
		fail(len(p.tokens)-1, ptoken.KindBreak, "at least one Break(Open) was not matched by a Break(Close)")
	}
}

func (p *printer) inRange(tok ptoken.Token) bool {
	if p.ctx.Range == nil {
		return true
	}
	line := tok.SourceLine
	if line == 0 {
		line = p.lastOriginLine
	} else {
		p.lastOriginLine = line
	}
	return line >= p.ctx.Range.StartLine-1 && line <= p.ctx.Range.EndLine
}

func (p *printer) emitOriginal(tok ptoken.Token) {
	if tok.Original == "" {
		return
	}
	p.buf.WriteString(tok.Original)
	for _, r := range tok.Original {
		if r == '\n' {
			p.lineNumber++
		}
	}
	p.isAtStartOfLine = strings.HasSuffix(tok.Original, "\n")
	p.pendingSpaces = 0
	p.consecutiveNewlineCount = 0
}

func (p *printer) handleOpen(i int, tok ptoken.Token) {
	forced := false
	if tok.OpenStyle == ptoken.Consistent && (p.lengths[i] > p.spaceRemaining || p.lastBreak) {
		forced = true
	}
	p.forceBreakStack = append(p.forceBreakStack, forced)
}

func (p *printer) handleClose(i int, tok ptoken.Token) {
	if len(p.forceBreakStack) == 0 {
		fail(i, tok.Kind, "unmatched Close: no Open on the force-break stack")
	}
	p.forceBreakStack = p.forceBreakStack[:len(p.forceBreakStack)-1]
}

func (p *printer) handleBreak(i int, tok ptoken.Token) {
	p.lastBreakKind = tok.BreakKind

	mustBreak := false
	if len(p.forceBreakStack) > 0 {
		mustBreak = p.forceBreakStack[len(p.forceBreakStack)-1]
	}

	var isContinuationIfBreakFires bool

	switch tok.BreakKind {
	case ptoken.Open:
		sameLineAsLastOpen := len(p.activeOpenBreaks) > 0 && p.lineNumber == p.activeOpenBreaks[len(p.activeOpenBreaks)-1].openLine
		if sameLineAsLastOpen {
			p.activeOpenBreaks[len(p.activeOpenBreaks)-1].didIndent = false
		} else {
			p.indentationStack = p.indentationStack.Push(p.ctx.Config.Indentation)
			if p.currentLineIsContinuation {
				p.indentationStack = p.indentationStack.Push(p.ctx.Config.Indentation)
			}
		}
		p.continuationStack = append(p.continuationStack, p.currentLineIsContinuation)
		p.activeOpenBreaks = append(p.activeOpenBreaks, activeOpenBreak{openLine: p.lineNumber, didIndent: true})
		p.currentLineIsContinuation = false

	case ptoken.Close:
		if len(p.activeOpenBreaks) == 0 {
			fail(i, tok.Kind, "unmatched Break(Close): no Break(Open) on the active-open stack")
		}
		mo := p.activeOpenBreaks[len(p.activeOpenBreaks)-1]
		p.activeOpenBreaks = p.activeOpenBreaks[:len(p.activeOpenBreaks)-1]

		if mo.didIndent {
			differentLine := p.lineNumber != mo.openLine
			noMoreActives := len(p.activeOpenBreaks) == 0
			nextOuterAlreadyIndented := !noMoreActives && p.activeOpenBreaks[len(p.activeOpenBreaks)-1].didIndent
			if differentLine || noMoreActives || nextOuterAlreadyIndented {
				p.indentationStack = p.indentationStack.Pop()
			} else {
				p.activeOpenBreaks[len(p.activeOpenBreaks)-1].didIndent = true
			}
		}

		var wasContinuation bool
		if len(p.continuationStack) > 0 {
			wasContinuation = p.continuationStack[len(p.continuationStack)-1]
			p.continuationStack = p.continuationStack[:len(p.continuationStack)-1]
		}
		if wasContinuation {
			p.indentationStack = p.indentationStack.Pop()
		}

		if tok.MustBreak {
			mustBreak = p.lineNumber != mo.openLine
		} else if p.spaceRemaining == 0 {
			mustBreak = true
		} else if p.lineNumber != mo.openLine {
			p.currentLineIsContinuation = mo.didIndent
		}

		p.currentLineIsContinuation = p.currentLineIsContinuation || wasContinuation
		isContinuationIfBreakFires = wasContinuation

	case ptoken.Continue:
		isContinuationIfBreakFires = true

	case ptoken.Same:
		// no state change

	case ptoken.Reset:
		mustBreak = p.currentLineIsContinuation
	}

	if p.lengths[i] > p.spaceRemaining || mustBreak {
		p.writeNewlines(1, false)
		p.currentLineIsContinuation = isContinuationIfBreakFires
		p.lastBreak = true
	} else {
		p.pendingSpaces += tok.Size
		if p.isAtStartOfLine {
			p.currentLineIsContinuation = isContinuationIfBreakFires
		}
		p.lastBreak = false
	}
}

func (p *printer) handleSyntax(i int, tok ptoken.Token) {
	if tok.Text == "" {
		return
	}
	p.write(tok.Text)
	p.spaceRemaining -= runeWidth(tok.Text)
	p.lastBreak = false
}

func (p *printer) handleComment(i int, tok ptoken.Token) {
	eff := p.effectiveIndentation()
	rendered := tok.Comment.Render(eff.Render(), comment.Options{
		LineLength:         p.ctx.Config.LineLength,
		CurrentIndentWidth: eff.Width(p.ctx.Config.TabWidth),
		ReflowMarkdown:     p.ctx.Config.ReflowDocComments,
	})
	p.write(rendered)

	if tok.WasEndOfLine && tok.Comment.Length > p.spaceRemaining {
		line := tok.SourceLine
		if line == 0 {
			line = p.lineNumber
		}
		p.ctx.Sink.Diagnose(Diagnostic{
			Severity: SeverityWarning,
			Message:  "end-of-line comment exceeds the line length",
			Line:     line,
		})
	} else {
		p.spaceRemaining -= tok.Comment.Length
	}
	p.lastBreak = false
}

func (p *printer) handleVerbatim(i int, tok ptoken.Token) {
	eff := p.effectiveIndentation()
	p.write(strings.Join(tok.VerbatimBlock.Lines, "\n"+eff.Render()))
	p.consecutiveNewlineCount = 0
	p.spaceRemaining -= p.lengths[i]
}

// effectiveIndentation is the indentation stack plus one unit when the current line is a
// continuation line (spec.md §4.3 "current effective indentation").
func (p *printer) effectiveIndentation() indent.Indent {
	if p.currentLineIsContinuation {
		return p.indentationStack.Push(p.ctx.Config.Indentation)
	}
	return p.indentationStack
}

// write is the first whitespace-bookkeeping primitive (spec.md §4.4).
func (p *printer) write(text string) {
	if text == "" {
		return
	}
	if p.isAtStartOfLine {
		eff := p.effectiveIndentation()
		p.buf.WriteString(eff.Render())
		p.spaceRemaining = p.ctx.Config.LineLength - eff.Width(p.ctx.Config.TabWidth)
		p.isAtStartOfLine = false
	} else if p.pendingSpaces > 0 {
		p.buf.WriteString(strings.Repeat(" ", p.pendingSpaces))
	}
	p.buf.WriteString(text)
	p.consecutiveNewlineCount = 0
	p.pendingSpaces = 0
}

// writeNewlines is the second whitespace-bookkeeping primitive (spec.md §4.4).
func (p *printer) writeNewlines(count int, discretionary bool) {
	cap := p.ctx.Config.MaximumBlankLines + 1
	toWrite := count
	if toWrite > cap {
		toWrite = cap
	}
	toWrite -= p.consecutiveNewlineCount

	if !(toWrite > 0 && (discretionary || p.consecutiveNewlineCount == 0)) {
		return
	}

	p.buf.WriteString(strings.Repeat("\n", toWrite))
	p.lineNumber += toWrite
	p.isAtStartOfLine = true
	p.consecutiveNewlineCount += toWrite
	p.pendingSpaces = 0
}
