package dotbuild_test

import (
	"strings"
	"testing"

	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"

	dot "github.com/pplang/pplang"
	"github.com/pplang/pplang/dotbuild"
	"github.com/pplang/pplang/pp"
	"github.com/pplang/pplang/ppconfig"
)

func build(t *testing.T, src string, cfg ppconfig.Configuration) string {
	t.Helper()

	p, err := dot.NewParser(strings.NewReader(src))
	require.NoErrorf(t, err, "NewParser")
	tree, err := p.Parse()
	require.NoErrorf(t, err, "Parse")
	require.EqualValuesf(t, len(p.Errors()), 0, "Parse errors, got %v", p.Errors())

	graphs := tree.Children
	require.EqualValuesf(t, len(graphs) > 0, true, "expected at least one graph")

	tokens := dotbuild.Build(tree, p.Comments(), &cfg)
	ctx := pp.NewContext(cfg, nil)
	got, err := pp.PrettyPrint(ctx, tokens)
	require.NoErrorf(t, err, "PrettyPrint")
	return got
}

func wideConfig() ppconfig.Configuration {
	cfg := ppconfig.Default()
	cfg.LineLength = 80
	return cfg
}

func TestEmptyGraph(t *testing.T) {
	got := build(t, "digraph { }", wideConfig())

	assert.Equalsf(t, got, "digraph {}", "Build+PrettyPrint")
}

func TestSimpleEdge(t *testing.T) {
	got := build(t, "digraph { a -> b }", wideConfig())

	assert.Equalsf(t, got, "digraph {\n  a -> b;\n}", "Build+PrettyPrint")
}

func TestNodeWithAttributes(t *testing.T) {
	got := build(t, `graph { a [color=red, shape=box] }`, wideConfig())

	assert.Equalsf(t, got, "graph {\n  a [color=red, shape=box];\n}", "Build+PrettyPrint")
}

func TestLongAttrListWraps(t *testing.T) {
	cfg := wideConfig()
	cfg.LineLength = 20
	got := build(t, `graph { a [color=red, shape=box, style=filled] }`, cfg)

	assert.Equalsf(t, got,
		"graph {\n  a [\n    color=red,\n    shape=box,\n    style=filled\n  ];\n}",
		"Build+PrettyPrint")
}

func TestBlankLinesBetweenStatementsArePreserved(t *testing.T) {
	got := build(t, "digraph {\n  a;\n\n  b;\n}", wideConfig())

	assert.Equalsf(t, got, "digraph {\n  a;\n\n  b;\n}", "Build+PrettyPrint")
}

func TestDocLineCommentIsKeptAboveStatement(t *testing.T) {
	got := build(t, "digraph {\n  /// keep this node\n  a;\n}", wideConfig())

	assert.Equalsf(t, got, "digraph {\n  /// keep this node\n  a;\n}", "Build+PrettyPrint")
}

func TestHashCommentIsCarriedVerbatim(t *testing.T) {
	got := build(t, "digraph {\n  # legacy note\n  a;\n}", wideConfig())

	assert.Equalsf(t, got, "digraph {\n  # legacy note\n  a;\n}", "Build+PrettyPrint")
}

func TestSubgraphNesting(t *testing.T) {
	got := build(t, "digraph { subgraph cluster_0 { a; b; } }", wideConfig())

	assert.Equalsf(t, got, "digraph {\n  subgraph cluster_0 {\n    a;\n    b;\n  };\n}", "Build+PrettyPrint")
}
