package main

import (
	"bytes"
	"testing"

	"github.com/teleivo/assertive/assert"
)

func TestRootCmdStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(bytes.NewBufferString("digraph{A->B}"))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	assert.NoError(t, err)
	assert.Equalsf(t, stdout.String(), "digraph {\n  A -> B;\n}", "pplangfmt on stdin")
}

func TestRootCmdLineLengthFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(bytes.NewBufferString("graph{A[label=\"blue\"]}"))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--line-length", "40"})

	err := cmd.Execute()

	assert.NoError(t, err)
	assert.Equalsf(t, stdout.String(), "graph {\n  A [label=\"blue\"];\n}", "pplangfmt with --line-length")
}

func TestRootCmdVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"version"})

	err := cmd.Execute()

	assert.NoError(t, err)
	assert.NotEmpty(t, stdout.String())
}
