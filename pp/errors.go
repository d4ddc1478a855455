package pp

import (
	"fmt"

	"github.com/pplang/pplang/ptoken"
)

// AssertionError reports a structural violation of the token-builder contract (spec.md §7):
// an unmatched Close, an Open left unclosed at end of stream, or an unbalanced
// Break(Open)/Break(Close) stack. These are programmer errors in the token builder, not
// user-facing formatting failures, so the engine aborts rather than guessing.
type AssertionError struct {
	Msg        string
	TokenIndex int
	TokenKind  ptoken.Kind
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("pp: assertion failed at token %d (%s): %s", e.TokenIndex, e.TokenKind, e.Msg)
}

// fail panics with an *AssertionError. PrettyPrint recovers it at the top level and
// converts it back into a returned error; every other call frame is free to let it
// propagate.
func fail(tokenIndex int, kind ptoken.Kind, format string, args ...any) {
	panic(&AssertionError{Msg: fmt.Sprintf(format, args...), TokenIndex: tokenIndex, TokenKind: kind})
}
