package pp_test

import (
	"testing"

	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"

	"github.com/pplang/pplang/comment"
	"github.com/pplang/pplang/indent"
	"github.com/pplang/pplang/pp"
	"github.com/pplang/pplang/ppconfig"
	"github.com/pplang/pplang/ptoken"
)

func baseConfig(lineLength int) ppconfig.Configuration {
	cfg := ppconfig.Default()
	cfg.LineLength = lineLength
	cfg.Indentation = indent.SpacesUnit(2)
	cfg.MaximumBlankLines = 1
	return cfg
}

// A group that fits within the line length stays flat: its Break token enqueues spaces
// instead of firing a newline (spec.md §4.3, scenario 1).
func TestGroupFitsStaysFlat(t *testing.T) {
	tokens := []ptoken.Token{
		ptoken.OpenToken(ptoken.Consistent),
		ptoken.Syntax("a"),
		ptoken.BreakToken(ptoken.Same, 1, false),
		ptoken.Syntax("b"),
		ptoken.CloseToken(),
	}

	ctx := pp.NewContext(baseConfig(20), nil)
	got, err := pp.PrettyPrint(ctx, tokens)

	require.NoErrorf(t, err, "PrettyPrint")
	assert.Equalsf(t, got, "a b", "PrettyPrint")
}

// A consistent group whose content does not fit forces its Break to fire (spec.md §4.3,
// scenario 2).
func TestGroupTooLongWraps(t *testing.T) {
	tokens := []ptoken.Token{
		ptoken.OpenToken(ptoken.Consistent),
		ptoken.Syntax("a"),
		ptoken.BreakToken(ptoken.Same, 1, false),
		ptoken.Syntax("b"),
		ptoken.CloseToken(),
	}

	ctx := pp.NewContext(baseConfig(2), nil)
	got, err := pp.PrettyPrint(ctx, tokens)

	require.NoErrorf(t, err, "PrettyPrint")
	assert.Equalsf(t, got, "a\nb", "PrettyPrint")
}

// Break(Open)/Break(Close) push and pop one indent unit around their body, independently of
// any Open/Close group nesting (spec.md §4.1, §4.3).
func TestOpenCloseBreakIndentsBody(t *testing.T) {
	tokens := []ptoken.Token{
		ptoken.Syntax("if"),
		ptoken.SpaceToken(1, false),
		ptoken.Syntax("x"),
		ptoken.BreakToken(ptoken.Open, 1, false),
		ptoken.Syntax("body"),
		ptoken.CloseBreak(false, 1, false),
		ptoken.Syntax("end"),
	}

	ctx := pp.NewContext(baseConfig(5), nil)
	got, err := pp.PrettyPrint(ctx, tokens)

	require.NoErrorf(t, err, "PrettyPrint")
	assert.Equalsf(t, got, "if x\n  body\nend", "PrettyPrint")
}

// Close(mustBreak=true) forces a break whenever the open fired on a different physical
// line, even if the content would otherwise fit.
func TestCloseMustBreakForcesNewlineAcrossLines(t *testing.T) {
	tokens := []ptoken.Token{
		ptoken.BreakToken(ptoken.Open, 0, false),
		ptoken.NewlinesToken(1, false),
		ptoken.Syntax("x"),
		ptoken.CloseBreak(true, 0, false),
		ptoken.Syntax("y"),
	}

	ctx := pp.NewContext(baseConfig(80), nil)
	got, err := pp.PrettyPrint(ctx, tokens)

	require.NoErrorf(t, err, "PrettyPrint")
	assert.Equalsf(t, got, "\n  x\ny", "PrettyPrint")
}

// No more than maximumBlankLines+1 consecutive newlines survive a discretionary run, even
// when the token builder requests more (spec.md §8 invariant, scenario 5).
func TestDiscretionaryNewlinesAreCapped(t *testing.T) {
	tokens := []ptoken.Token{
		ptoken.Syntax("a"),
		ptoken.NewlinesToken(5, true),
		ptoken.Syntax("b"),
	}

	cfg := baseConfig(80)
	cfg.MaximumBlankLines = 1
	ctx := pp.NewContext(cfg, nil)
	got, err := pp.PrettyPrint(ctx, tokens)

	require.NoErrorf(t, err, "PrettyPrint")
	assert.Equalsf(t, got, "a\n\nb", "PrettyPrint")
}

// A non-discretionary break does not pile an extra newline onto newlines already emitted
// for a preceding discretionary run (spec.md §4.4).
func TestForcedBreakDoesNotPileOntoExistingBlankLines(t *testing.T) {
	tokens := []ptoken.Token{
		ptoken.Syntax("a"),
		ptoken.NewlinesToken(2, true),
		ptoken.BreakToken(ptoken.Same, 0, false),
		ptoken.Syntax("b"),
	}

	cfg := baseConfig(1) // force the Break to want to fire
	ctx := pp.NewContext(cfg, nil)
	got, err := pp.PrettyPrint(ctx, tokens)

	require.NoErrorf(t, err, "PrettyPrint")
	assert.Equalsf(t, got, "a\n\nb", "PrettyPrint")
}

// An end-of-line comment that does not fit in the remaining budget is kept on the same
// line and produces a diagnostic rather than being moved or truncated (spec.md §7, §4.3,
// scenario 6).
func TestEndOfLineCommentTooLongEmitsDiagnostic(t *testing.T) {
	c := comment.New(comment.Line, []string{" a comment that is much too long for this line"})
	tokens := []ptoken.Token{
		ptoken.Syntax("let x = 1"),
		ptoken.CommentToken(c, true),
	}

	sink := &pp.CollectingSink{}
	ctx := pp.NewContext(baseConfig(20), sink)
	got, err := pp.PrettyPrint(ctx, tokens)

	require.NoErrorf(t, err, "PrettyPrint")
	assert.Equalsf(t, got, "let x = 1// a comment that is much too long for this line", "PrettyPrint")
	require.EqualValuesf(t, len(sink.Diagnostics), 1, "Diagnostics")
	assert.Equalsf(t, sink.Diagnostics[0].Message, "end-of-line comment exceeds the line length", "Diagnostics[0].Message")
	assert.Equalsf(t, sink.Diagnostics[0].Severity, pp.SeverityWarning, "Diagnostics[0].Severity")
}

// A free-standing comment (wasEndOfLine=false) that fits never produces a diagnostic.
func TestFreestandingCommentThatFitsHasNoDiagnostic(t *testing.T) {
	c := comment.New(comment.Line, []string{" short"})
	tokens := []ptoken.Token{
		ptoken.CommentToken(c, false),
	}

	sink := &pp.CollectingSink{}
	ctx := pp.NewContext(baseConfig(80), sink)
	_, err := pp.PrettyPrint(ctx, tokens)

	require.NoErrorf(t, err, "PrettyPrint")
	assert.Equalsf(t, len(sink.Diagnostics), 0, "Diagnostics")
}

// An unmatched Close is a structural producer-contract violation: the engine fails loudly
// rather than emitting meaningless output (spec.md §7).
func TestUnmatchedCloseIsAnAssertionError(t *testing.T) {
	tokens := []ptoken.Token{
		ptoken.Syntax("a"),
		ptoken.CloseToken(),
	}

	ctx := pp.NewContext(baseConfig(80), nil)
	_, err := pp.PrettyPrint(ctx, tokens)

	require.NotNilf(t, err, "PrettyPrint should fail on an unmatched Close")
	var ae *pp.AssertionError
	assert.Equalsf(t, errorsAs(err, &ae), true, "error should be an *pp.AssertionError, got %T: %v", err, err)
}

// An Open left unclosed at end of stream is likewise a fatal programmer error.
func TestUnclosedOpenAtEndIsAnAssertionError(t *testing.T) {
	tokens := []ptoken.Token{
		ptoken.OpenToken(ptoken.Consistent),
		ptoken.Syntax("a"),
	}

	ctx := pp.NewContext(baseConfig(80), nil)
	_, err := pp.PrettyPrint(ctx, tokens)

	require.NotNilf(t, err, "PrettyPrint should fail on an unclosed Open")
}

// A Break(Open) left unmatched by a Break(Close) at end of stream is likewise fatal, per
// the resolved Open Question in DESIGN.md (strict, not downgraded to a diagnostic).
func TestUnmatchedOpenBreakAtEndIsAnAssertionError(t *testing.T) {
	tokens := []ptoken.Token{
		ptoken.BreakToken(ptoken.Open, 1, false),
		ptoken.Syntax("a"),
	}

	ctx := pp.NewContext(baseConfig(80), nil)
	_, err := pp.PrettyPrint(ctx, tokens)

	require.NotNilf(t, err, "PrettyPrint should fail on an unmatched Break(Open)")
}

// An empty stream produces an empty string, never an error (spec.md §7).
func TestEmptyStreamProducesEmptyString(t *testing.T) {
	ctx := pp.NewContext(baseConfig(80), nil)
	got, err := pp.PrettyPrint(ctx, nil)

	require.NoErrorf(t, err, "PrettyPrint")
	assert.Equalsf(t, got, "", "PrettyPrint")
}

// No output line ends in whitespace: a Break that does not fire enqueues spaces that are
// only flushed before the next write, never trailing at end of stream.
func TestNoTrailingWhitespaceWhenStreamEndsOnAPendingBreak(t *testing.T) {
	tokens := []ptoken.Token{
		ptoken.Syntax("a"),
		ptoken.BreakToken(ptoken.Same, 4, false),
	}

	ctx := pp.NewContext(baseConfig(80), nil)
	got, err := pp.PrettyPrint(ctx, tokens)

	require.NoErrorf(t, err, "PrettyPrint")
	assert.Equalsf(t, got, "a", "PrettyPrint should not flush a trailing pending break as whitespace")
}

func errorsAs(err error, target **pp.AssertionError) bool {
	ae, ok := err.(*pp.AssertionError)
	if !ok {
		return false
	}
	*target = ae
	return true
}
