// Package ptoken defines the flat token stream that the pretty-printing engine in [pp]
// consumes. A token builder (for DOT, package dotbuild) lowers a syntax tree into a
// []Token; the engine never looks back at the tree.
package ptoken

import "github.com/pplang/pplang/comment"

// Kind identifies which case of the Token tagged union is populated.
type Kind int

const (
	KindSyntax Kind = iota
	KindOpen
	KindClose
	KindBreak
	KindSpace
	KindNewlines
	KindComment
	KindVerbatim
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "Syntax"
	case KindOpen:
		return "Open"
	case KindClose:
		return "Close"
	case KindBreak:
		return "Break"
	case KindSpace:
		return "Space"
	case KindNewlines:
		return "Newlines"
	case KindComment:
		return "Comment"
	case KindVerbatim:
		return "Verbatim"
	default:
		return "Unknown"
	}
}

// Style governs whether a Consistent group breaks all of its breaks or none, versus an
// Inconsistent group where each break decides independently.
type Style int

const (
	Consistent Style = iota
	Inconsistent
)

func (s Style) String() string {
	if s == Consistent {
		return "Consistent"
	}
	return "Inconsistent"
}

// BreakKind is the kind field of a Break token, see package doc and spec §3/§4.3.
type BreakKind int

const (
	// Open pushes indentation when fired; pairs with a matching Close break.
	Open BreakKind = iota
	// Close pops the matching Open break.
	Close
	// Continue marks the subsequent line as a continuation line when fired.
	Continue
	// Same produces a newline at the same indent as the enclosing scope when fired.
	Same
	// Reset clears continuation; it must itself fire if the line is currently a continuation.
	Reset
)

func (k BreakKind) String() string {
	switch k {
	case Open:
		return "Open"
	case Close:
		return "Close"
	case Continue:
		return "Continue"
	case Same:
		return "Same"
	case Reset:
		return "Reset"
	default:
		return "Unknown"
	}
}

// Verbatim is a pre-rendered multi-line block pasted into the output without reflow. Lines
// does not include a trailing newline on the last element.
type Verbatim struct {
	Lines []string
}

// Multiline reports whether the verbatim block spans more than one line, which determines
// how the length scanner charges it (spec §4.2).
func (v Verbatim) Multiline() bool {
	return len(v.Lines) > 1
}

// Width returns the visual width of v's single line. It is only meaningful when !v.Multiline().
func (v Verbatim) Width() int {
	if len(v.Lines) == 0 {
		return 0
	}
	return len([]rune(v.Lines[0]))
}

// Token is a tagged union; exactly the fields relevant to Kind are meaningful. Construct
// values with the New* helpers rather than populating the struct directly so that
// irrelevant fields stay zeroed.
type Token struct {
	Kind Kind

	// Syntax
	Text string

	// Open
	OpenStyle Style

	// Break
	BreakKind            BreakKind
	MustBreak            bool // payload of Close(mustBreak)
	Size                 int  // spaces emitted when the break does not fire
	IgnoresDiscretionary bool

	// Space
	SpaceSize int
	Flexible  bool

	// Newlines
	Count         int
	Discretionary bool

	// Comment
	Comment      comment.Comment
	WasEndOfLine bool

	// Verbatim
	VerbatimBlock Verbatim

	// SourceLine is the 1-based line of origin in the original source, used by the
	// printer's partial-region mode (spec §4.6). Zero means "no origin" (synthesised
	// token); such tokens inherit the preceding originating token's line.
	SourceLine int

	// Original carries the token's pristine leading trivia, raw text, and trailing trivia
	// as written by the user, for verbatim replay when the token falls outside an
	// applicationRange or ahead of a synthesised SourceLine lookup.
	Original string
}

func Syntax(text string) Token {
	return Token{Kind: KindSyntax, Text: text}
}

func OpenToken(style Style) Token {
	return Token{Kind: KindOpen, OpenStyle: style}
}

func CloseToken() Token {
	return Token{Kind: KindClose}
}

func BreakToken(kind BreakKind, size int, ignoresDiscretionary bool) Token {
	return Token{Kind: KindBreak, BreakKind: kind, Size: size, IgnoresDiscretionary: ignoresDiscretionary}
}

// CloseBreak is a convenience constructor for a Break(Close(mustBreak), size, ...) token.
func CloseBreak(mustBreak bool, size int, ignoresDiscretionary bool) Token {
	return Token{Kind: KindBreak, BreakKind: Close, MustBreak: mustBreak, Size: size, IgnoresDiscretionary: ignoresDiscretionary}
}

func SpaceToken(size int, flexible bool) Token {
	return Token{Kind: KindSpace, SpaceSize: size, Flexible: flexible}
}

func NewlinesToken(count int, discretionary bool) Token {
	return Token{Kind: KindNewlines, Count: count, Discretionary: discretionary}
}

func CommentToken(c comment.Comment, wasEndOfLine bool) Token {
	return Token{Kind: KindComment, Comment: c, WasEndOfLine: wasEndOfLine}
}

func VerbatimToken(v Verbatim) Token {
	return Token{Kind: KindVerbatim, VerbatimBlock: v}
}
