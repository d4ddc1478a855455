package pp

import "github.com/pplang/pplang/ptoken"

// PrettyPrint runs the two-pass algorithm over tokens and returns the formatted text.
// Diagnostics (non-fatal style observations) are delivered to ctx.Sink as printing
// proceeds; a structural violation of the token-builder contract is returned as an
// *AssertionError rather than left to corrupt the output (spec.md §7).
func PrettyPrint(ctx *Context, tokens []ptoken.Token) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ae, ok := r.(*AssertionError); ok {
				err = ae
				return
			}
			panic(r)
		}
	}()

	if len(tokens) == 0 {
		return "", nil
	}

	lengths := scanLengths(tokens, ctx.Config)
	p := newPrinter(ctx, tokens, lengths)
	p.run()
	return p.buf.String(), nil
}
