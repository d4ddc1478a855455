package pp

import (
	"github.com/pplang/pplang/ppconfig"
	"github.com/pplang/pplang/ptoken"
)

// scanLengths is the first pass of the algorithm (spec.md §4.2): it assigns every token a
// lookahead length used by the printer to decide whether a group fits on the current line.
// It panics with an *AssertionError on a structural violation of the token-builder contract.
func scanLengths(tokens []ptoken.Token, cfg ppconfig.Configuration) []int {
	lengths := make([]int, len(tokens))
	var total int
	var delimIndexStack []int

	closeDanglingBreak := func() {
		if len(delimIndexStack) == 0 {
			return
		}
		top := delimIndexStack[len(delimIndexStack)-1]
		if tokens[top].Kind != ptoken.KindBreak {
			return
		}
		delimIndexStack = delimIndexStack[:len(delimIndexStack)-1]
		lengths[top] += total
	}

	for i, tok := range tokens {
		switch tok.Kind {
		case ptoken.KindSyntax:
			w := runeWidth(tok.Text)
			lengths[i] = w
			total += w

		case ptoken.KindSpace:
			lengths[i] = tok.SpaceSize
			total += tok.SpaceSize

		case ptoken.KindOpen:
			lengths[i] = -total
			delimIndexStack = append(delimIndexStack, i)

		case ptoken.KindClose:
			lengths[i] = 0
			if len(delimIndexStack) == 0 {
				fail(i, tok.Kind, "unmatched Close: no Open on the delimiter stack")
			}
			// A break immediately preceding a close never fires into whitespace trailing
			// the group: resolve it against the close rather than folding it into the
			// group's own length.
			if tokens[delimIndexStack[len(delimIndexStack)-1]].Kind == ptoken.KindBreak {
				breakIdx := delimIndexStack[len(delimIndexStack)-1]
				delimIndexStack = delimIndexStack[:len(delimIndexStack)-1]
				lengths[breakIdx] += total
			}
			if len(delimIndexStack) == 0 {
				fail(i, tok.Kind, "unmatched Close: no Open on the delimiter stack")
			}
			openIdx := delimIndexStack[len(delimIndexStack)-1]
			delimIndexStack = delimIndexStack[:len(delimIndexStack)-1]
			lengths[openIdx] += total

		case ptoken.KindBreak:
			closeDanglingBreak()
			delimIndexStack = append(delimIndexStack, i)
			lengths[i] = -total
			total += tok.Size

		case ptoken.KindNewlines:
			closeDanglingBreak()
			lengths[i] = cfg.LineLength
			total += cfg.LineLength

		case ptoken.KindComment:
			lengths[i] = tok.Comment.Length
			if !tok.WasEndOfLine {
				total += tok.Comment.Length
			}

		case ptoken.KindVerbatim:
			var w int
			if tok.VerbatimBlock.Multiline() {
				w = cfg.LineLength
			} else {
				w = tok.VerbatimBlock.Width()
			}
			lengths[i] = w
			total += w
		}
	}

	closeDanglingBreak()
	if len(delimIndexStack) > 0 {
		top := delimIndexStack[len(delimIndexStack)-1]
		fail(top, tokens[top].Kind, "unresolved Open at end of token stream")
	}

	return lengths
}

func runeWidth(s string) int {
	return len([]rune(s))
}
