package udiff_test

import (
	"strings"
	"testing"

	"github.com/teleivo/assertive/assert"

	"github.com/pplang/pplang/internal/udiff"
)

func TestUnifiedNoChange(t *testing.T) {
	got := udiff.Unified("a.dot", "b.dot", []byte("graph {}\n"), []byte("graph {}\n"))

	assert.Equalsf(t, got, "", "Unified with identical input")
}

func TestUnifiedSingleLineChange(t *testing.T) {
	a := "graph {\n  A;\n}\n"
	b := "graph {\n  A ;\n}\n"

	got := udiff.Unified("a.dot", "b.dot", []byte(a), []byte(b))

	want := "--- a.dot\n" +
		"+++ b.dot\n" +
		"@@ -1,3 +1,3 @@\n" +
		" graph {\n" +
		"-  A;\n" +
		"+  A ;\n" +
		" }\n"
	assert.Equalsf(t, got, want, "Unified with a single changed line")
}

func TestUnifiedInsertedLine(t *testing.T) {
	a := "graph {\n  A;\n  B;\n}\n"
	b := "graph {\n  A;\n  C;\n  B;\n}\n"

	got := udiff.Unified("a.dot", "b.dot", []byte(a), []byte(b))

	want := "--- a.dot\n" +
		"+++ b.dot\n" +
		"@@ -1,4 +1,5 @@\n" +
		" graph {\n" +
		"   A;\n" +
		"+  C;\n" +
		"   B;\n" +
		" }\n"
	assert.Equalsf(t, got, want, "Unified with an inserted line")
}

func TestUnifiedDistantChangesSplitIntoHunks(t *testing.T) {
	aLines := []string{"graph {", "  A;", "x", "x", "x", "x", "x", "x", "x", "x", "  Z;", "}"}
	bLines := []string{"graph {", "  A2;", "x", "x", "x", "x", "x", "x", "x", "x", "  Z2;", "}"}
	a := strings.Join(aLines, "\n") + "\n"
	b := strings.Join(bLines, "\n") + "\n"

	got := udiff.Unified("a.dot", "b.dot", []byte(a), []byte(b))

	want := "--- a.dot\n" +
		"+++ b.dot\n" +
		"@@ -1,5 +1,5 @@\n" +
		" graph {\n" +
		"-  A;\n" +
		"+  A2;\n" +
		" x\n" +
		" x\n" +
		" x\n" +
		"@@ -8,5 +8,5 @@\n" +
		" x\n" +
		" x\n" +
		" x\n" +
		"-  Z;\n" +
		"+  Z2;\n" +
		" }\n"
	assert.Equalsf(t, got, want, "Unified with two distant changes")
}
