// Package dotbuild lowers a parsed DOT concrete syntax tree into the flat token stream the
// pretty-printing engine consumes (spec.md §4.7). It is the only part of pplang that
// understands DOT grammar; everything downstream of Build works purely in terms of
// ptoken.Token. The translation follows the production-by-production shape of the DOT grammar
// one-for-one, the way printer/printer.go walked the tree before this package existed.
package dotbuild

import (
	"sort"
	"strings"

	dot "github.com/pplang/pplang"
	"github.com/pplang/pplang/comment"
	"github.com/pplang/pplang/ppconfig"
	"github.com/pplang/pplang/ptoken"
	"github.com/pplang/pplang/token"
)

// Build walks tree, a [dot.Tree] of type [dot.KindFile], and produces the token stream for one
// source file. comments are the trivia collected by the parser (dot.Parser.Comments), in
// source order; Build interleaves them by source line since they never appear in tree itself.
func Build(tree *dot.Tree, comments []token.Token, cfg *ppconfig.Configuration) []ptoken.Token {
	b := &builder{cfg: cfg, comments: append([]token.Token(nil), comments...)}
	sort.Slice(b.comments, func(i, j int) bool { return b.comments[i].Start.Line < b.comments[j].Start.Line })

	for i := 0; ; i++ {
		g, ok := dot.TreeAt(tree, dot.KindGraph, i)
		if !ok {
			break
		}
		if i > 0 {
			b.emit(ptoken.NewlinesToken(2, true))
		}
		b.emitCommentsBefore(g.Start.Line)
		b.graph(g)
	}
	b.emitRemainingComments()

	return b.tokens
}

type builder struct {
	cfg      *ppconfig.Configuration
	tokens   []ptoken.Token
	comments []token.Token
	cIdx     int

	// line is the source line attributed to tokens emitted right now (spec.md §4.6's
	// SourceLine), updated as the builder enters each statement/graph/subgraph. Partial-region
	// mode treats a whole statement as in or out of range together; a --range cutting through
	// the middle of a single statement is not supported at finer granularity.
	line int
}

// emit appends tok, stamping its SourceLine from the builder's current position if the caller
// did not already set one.
func (b *builder) emit(tok ptoken.Token) {
	if tok.SourceLine == 0 {
		tok.SourceLine = b.line
	}
	b.tokens = append(b.tokens, tok)
}

func (b *builder) text(s string) {
	if s == "" {
		return
	}
	b.emit(ptoken.Token{Kind: ptoken.KindSyntax, Text: s, Original: s})
}

func (b *builder) space() {
	b.emit(ptoken.Token{Kind: ptoken.KindSpace, SpaceSize: 1, Original: " "})
}

// emitCommentsBefore flushes every pending comment whose source line comes strictly before
// beforeLine, in order, each followed by a forced line break.
func (b *builder) emitCommentsBefore(beforeLine int) {
	for b.cIdx < len(b.comments) && b.comments[b.cIdx].Start.Line < beforeLine {
		b.emitComment(b.comments[b.cIdx])
		b.emit(ptoken.NewlinesToken(1, false))
		b.cIdx++
	}
}

func (b *builder) emitRemainingComments() {
	for b.cIdx < len(b.comments) {
		if b.cIdx > 0 || len(b.tokens) > 0 {
			b.emit(ptoken.NewlinesToken(1, false))
		}
		b.emitComment(b.comments[b.cIdx])
		b.cIdx++
	}
}

// emitComment classifies a scanned comment token into the comment package's vocabulary.
// DOT's shell-style '#' comments have no Line/Block counterpart in that vocabulary, so they are
// carried through verbatim instead of being renormalized into '//' comments.
func (b *builder) emitComment(tok token.Token) {
	b.line = tok.Start.Line
	lit := tok.Literal
	switch {
	case strings.HasPrefix(lit, "///"):
		b.emit(ptoken.CommentToken(comment.New(comment.DocLine, []string{strings.TrimPrefix(lit, "///")}), false))
	case strings.HasPrefix(lit, "//"):
		b.emit(ptoken.CommentToken(comment.New(comment.Line, []string{strings.TrimPrefix(lit, "//")}), false))
	case strings.HasPrefix(lit, "/**") && strings.HasSuffix(lit, "*/"):
		body := strings.TrimSuffix(strings.TrimPrefix(lit, "/**"), "*/")
		b.emit(ptoken.CommentToken(comment.New(comment.DocBlock, strings.Split(body, "\n")), false))
	case strings.HasPrefix(lit, "/*") && strings.HasSuffix(lit, "*/"):
		body := strings.TrimSuffix(strings.TrimPrefix(lit, "/*"), "*/")
		b.emit(ptoken.CommentToken(comment.New(comment.Block, strings.Split(body, "\n")), false))
	default: // '#' comment, or an unterminated block comment recovered by the scanner
		b.emit(ptoken.VerbatimToken(ptoken.Verbatim{Lines: strings.Split(lit, "\n")}))
	}
}

// graph lowers a KindGraph subtree: [ 'strict' ] ( 'graph' | 'digraph' ) [ ID ] '{' stmt_list '}'.
func (b *builder) graph(g *dot.Tree) {
	b.line = g.Start.Line
	if strict, ok := dot.TokenFirst(g, token.Strict); ok {
		b.text(strict.Literal)
		b.space()
	}
	if kw, ok := dot.TokenFirst(g, token.Graph|token.Digraph); ok {
		b.text(kw.Literal)
	}
	if id, ok := dot.TreeFirst(g, dot.KindID); ok {
		b.space()
		b.id(id)
	}
	b.space()
	b.text("{")
	if stmts, ok := dot.TreeFirst(g, dot.KindStmtList); ok {
		b.stmtList(stmts, closingBraceLine(g))
	}
	b.text("}")
}

// stmtList lowers a KindStmtList, one statement per line with blank-line preservation and
// interleaved comments. upperLine is the source line of the block's closing brace, so a
// trailing comment sitting between the last statement and '}' is still picked up.
// RespectsExistingLineBreaks (spec.md §4.6) governs whether a source blank line between two
// statements survives as a blank line here.
func (b *builder) stmtList(list *dot.Tree, upperLine int) {
	type item struct {
		startLine, endLine int
		render             func()
	}

	var items []item
	for _, c := range list.Children {
		tc, ok := c.(dot.TreeChild)
		if !ok || tc.Tree.Type&stmtKinds == 0 {
			continue
		}
		s := tc.Tree
		items = append(items, item{s.Start.Line, s.End.Line, func() {
			b.stmt(s)
			b.text(";")
		}})
	}
	for b.cIdx < len(b.comments) && b.comments[b.cIdx].Start.Line < upperLine {
		c := b.comments[b.cIdx]
		items = append(items, item{c.Start.Line, c.Start.Line, func() { b.emitComment(c) }})
		b.cIdx++
	}
	sort.Slice(items, func(i, j int) bool { return items[i].startLine < items[j].startLine })

	if len(items) == 0 {
		return
	}

	b.line = items[0].startLine
	b.emit(ptoken.BreakToken(ptoken.Open, 0, false))
	prevEnd := -1
	for _, it := range items {
		b.line = it.startLine
		if prevEnd >= 0 && b.cfg.RespectsExistingLineBreaks && it.startLine-prevEnd > 1 {
			b.emit(ptoken.NewlinesToken(2, false))
		} else {
			b.emit(ptoken.NewlinesToken(1, false))
		}
		it.render()
		prevEnd = it.endLine
	}
	b.line = upperLine
	b.emit(ptoken.NewlinesToken(1, false))
	b.emit(ptoken.CloseBreak(false, 0, false))
}

// stmtKinds is every tree kind stmt() dispatches on, i.e. everything a KindStmtList's children
// can be.
const stmtKinds = dot.KindNodeStmt | dot.KindEdgeStmt | dot.KindAttrStmt | dot.KindAttribute |
	dot.KindSubgraph | dot.KindErrorTree

// closingBraceLine returns the source line of t's closing '}', or t.End.Line if the brace was
// never found due to error recovery.
func closingBraceLine(t *dot.Tree) int {
	if tok, ok := dot.TokenFirst(t, token.RightBrace); ok {
		return tok.Start.Line
	}
	return t.End.Line
}

func (b *builder) stmt(s *dot.Tree) {
	b.line = s.Start.Line
	switch s.Type {
	case dot.KindNodeStmt:
		b.nodeStmt(s)
	case dot.KindEdgeStmt:
		b.edgeStmt(s)
	case dot.KindAttrStmt:
		b.attrStmt(s)
	case dot.KindAttribute:
		b.attribute(s)
	case dot.KindSubgraph:
		b.subgraph(s)
	case dot.KindErrorTree:
		// A syntax error recovered by the parser: reproduce the offending token verbatim
		// rather than losing it.
		for _, tok := range tokenChildren(s) {
			b.text(tok.Literal)
		}
	}
}

// nodeStmt lowers node_id [ attr_list ].
func (b *builder) nodeStmt(s *dot.Tree) {
	nodeID, _ := dot.TreeFirst(s, dot.KindNodeID)
	b.nodeID(nodeID)
	if attrs, ok := dot.TreeFirst(s, dot.KindAttrList); ok {
		b.space()
		b.attrList(attrs)
	}
}

// edgeStmt lowers (node_id | subgraph) edgeRHS [ attr_list ]. Each edgeop token already pads
// itself with a leading and trailing space, so operands never add their own.
func (b *builder) edgeStmt(s *dot.Tree) {
	for _, c := range s.Children {
		switch v := c.(type) {
		case dot.TreeChild:
			switch v.Tree.Type {
			case dot.KindNodeID:
				b.nodeID(v.Tree)
			case dot.KindSubgraph:
				b.subgraph(v.Tree)
			case dot.KindAttrList:
				b.space()
				b.attrList(v.Tree)
			}
		case dot.TokenChild:
			if v.Token.Type == token.DirectedEdge || v.Token.Type == token.UndirectedEdge {
				b.space()
				b.text(v.Token.Literal)
				b.space()
			}
		}
	}
}

// attrStmt lowers ( 'graph' | 'node' | 'edge' ) attr_list.
func (b *builder) attrStmt(s *dot.Tree) {
	if kw, ok := dot.TokenFirst(s, token.Graph|token.Node|token.Edge); ok {
		b.text(kw.Literal)
	}
	if attrs, ok := dot.TreeFirst(s, dot.KindAttrList); ok {
		b.space()
		b.attrList(attrs)
	}
}

// attrList lowers one or more bracketed '[' [ a_list ] ']' groups, each its own breakable group
// so a long attribute list wraps independently of its neighbours.
func (b *builder) attrList(list *dot.Tree) {
	first := true
	for _, c := range list.Children {
		tc, ok := c.(dot.TreeChild)
		if !ok {
			continue
		}
		if tc.Tree.Type != dot.KindAList {
			continue
		}
		if !first {
			b.space()
		}
		first = false
		b.emit(ptoken.OpenToken(ptoken.Consistent))
		b.text("[")
		b.emit(ptoken.BreakToken(ptoken.Open, 0, false))
		b.aList(tc.Tree)
		b.emit(ptoken.CloseBreak(false, 0, false))
		b.text("]")
		b.emit(ptoken.CloseToken())
	}
	if first {
		// no a_list present: emit every bracket pair as-is
		for _, tok := range tokenChildren(list) {
			b.text(tok.Literal)
		}
	}
}

// aList lowers ID '=' ID [ ( ';' | ',' ) ] [ a_list ], one attribute per line when the group
// does not fit, comma-separated when flat.
func (b *builder) aList(list *dot.Tree) {
	i := 0
	for _, c := range list.Children {
		tc, ok := c.(dot.TreeChild)
		if !ok || tc.Tree.Type != dot.KindAttribute {
			continue
		}
		if i > 0 {
			b.text(",")
			b.emit(ptoken.BreakToken(ptoken.Same, 1, false))
		}
		b.attribute(tc.Tree)
		i++
	}
}

func (b *builder) attribute(a *dot.Tree) {
	var ids []*dot.Tree
	for _, c := range a.Children {
		if tc, ok := c.(dot.TreeChild); ok && tc.Tree.Type == dot.KindID {
			ids = append(ids, tc.Tree)
		}
	}
	if len(ids) == 0 {
		return
	}
	b.id(ids[0])
	b.text("=")
	if len(ids) > 1 {
		b.id(ids[1])
	}
}

// nodeID lowers ID [ port ].
func (b *builder) nodeID(n *dot.Tree) {
	if n == nil {
		return
	}
	if id, ok := dot.TreeFirst(n, dot.KindID); ok {
		b.id(id)
	}
	if port, ok := dot.TreeFirst(n, dot.KindPort); ok {
		b.port(port)
	}
}

// port lowers ':' ID [ ':' compass_pt ] | ':' compass_pt.
func (b *builder) port(p *dot.Tree) {
	for _, c := range p.Children {
		switch v := c.(type) {
		case dot.TokenChild:
			b.text(v.Token.Literal)
		case dot.TreeChild:
			b.id(v.Tree)
		}
	}
}

// subgraph lowers [ 'subgraph' [ ID ] ] '{' stmt_list '}'.
func (b *builder) subgraph(s *dot.Tree) {
	b.line = s.Start.Line
	if kw, ok := dot.TokenFirst(s, token.Subgraph); ok {
		b.text(kw.Literal)
		b.space()
	}
	if id, ok := dot.TreeFirst(s, dot.KindID); ok {
		b.id(id)
		b.space()
	}
	b.text("{")
	if stmts, ok := dot.TreeFirst(s, dot.KindStmtList); ok {
		b.stmtList(stmts, closingBraceLine(s))
	}
	b.text("}")
}

// id lowers a single ID token. A quoted string literal containing an escaped newline is
// rendered verbatim rather than joined onto one line, since folding it would change the
// rendered label.
func (b *builder) id(idTree *dot.Tree) {
	if tok, ok := dot.TokenFirst(idTree, token.ID); ok {
		if strings.Contains(tok.Literal, "\n") {
			b.emit(ptoken.VerbatimToken(ptoken.Verbatim{Lines: strings.Split(tok.Literal, "\n")}))
			return
		}
		b.text(tok.Literal)
	}
}

// tokenChildren returns every direct token child of t in order, for the spots (attrList's
// bracket-only fallback and KindErrorTree recovery) that need a full ordered run of tokens
// rather than a single lookup by kind — traverse.go's TokenFirst/TokenAt only ever return one match.
func tokenChildren(t *dot.Tree) []token.Token {
	if t == nil {
		return nil
	}
	var out []token.Token
	for _, c := range t.Children {
		if tok, ok := c.(dot.TokenChild); ok {
			out = append(out, tok.Token)
		}
	}
	return out
}
