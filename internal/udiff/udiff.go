// Package udiff renders a line-based unified diff between two byte slices, in the style of
// `diff -u`. It backs pplangfmt's --diff flag.
//
// teleivo/diff (the pack's diff dependency, carried as an indirect requirement already in
// go.mod via github.com/teleivo/assertive) has no observable call site anywhere in the
// retrieved pack to ground an exported API against, so this package implements the rendering
// directly on the standard library instead of guessing at an unverified external signature.
package udiff

import (
	"fmt"
	"strings"
)

// context is the number of unchanged lines kept around each hunk of changes.
const context = 3

// Unified returns a unified diff of a against b, using fromName/toName as the hunk file
// headers. It returns "" if a and b contain the same lines.
func Unified(fromName, toName string, a, b []byte) string {
	aLines := splitLines(string(a))
	bLines := splitLines(string(b))

	ops := diffLines(aLines, bLines)
	hunks := groupHunks(ops)
	if len(hunks) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n", fromName)
	fmt.Fprintf(&sb, "+++ %s\n", toName)
	for _, h := range hunks {
		writeHunk(&sb, h, aLines, bLines)
	}
	return sb.String()
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

type opKind int

const (
	opEqual opKind = iota
	opDelete
	opInsert
)

// op is one step of an edit script turning a into b, line by line.
type op struct {
	kind opKind
	aIdx int // valid for opEqual, opDelete
	bIdx int // valid for opEqual, opInsert
}

// diffLines computes a minimal edit script from a to b via a longest-common-subsequence table,
// the standard construction for line-based text diffs.
func diffLines(a, b []string) []op {
	n, m := len(a), len(b)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				lcs[i][j] = lcs[i+1][j+1] + 1
			case lcs[i+1][j] >= lcs[i][j+1]:
				lcs[i][j] = lcs[i+1][j]
			default:
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var ops []op
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			ops = append(ops, op{kind: opEqual, aIdx: i, bIdx: j})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, op{kind: opDelete, aIdx: i})
			i++
		default:
			ops = append(ops, op{kind: opInsert, bIdx: j})
			j++
		}
	}
	for ; i < n; i++ {
		ops = append(ops, op{kind: opDelete, aIdx: i})
	}
	for ; j < m; j++ {
		ops = append(ops, op{kind: opInsert, bIdx: j})
	}
	return ops
}

type hunk struct {
	ops []op
}

// groupHunks clusters changed ops with context lines of unchanged surroundings, merging
// clusters whose context windows overlap, the same way `diff -u` coalesces nearby changes
// into one hunk.
func groupHunks(ops []op) []hunk {
	var changed []int
	for idx, o := range ops {
		if o.kind != opEqual {
			changed = append(changed, idx)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	var hunks []hunk
	start := max(0, changed[0]-context)
	end := min(len(ops), changed[0]+1+context)
	for _, idx := range changed[1:] {
		lo := max(0, idx-context)
		if lo <= end {
			end = min(len(ops), idx+1+context)
			continue
		}
		hunks = append(hunks, hunk{ops: ops[start:end]})
		start = lo
		end = min(len(ops), idx+1+context)
	}
	hunks = append(hunks, hunk{ops: ops[start:end]})
	return hunks
}

func writeHunk(sb *strings.Builder, h hunk, a, b []string) {
	aStart, bStart := -1, -1
	var aCount, bCount int
	for _, o := range h.ops {
		switch o.kind {
		case opEqual:
			if aStart == -1 {
				aStart = o.aIdx
			}
			if bStart == -1 {
				bStart = o.bIdx
			}
			aCount++
			bCount++
		case opDelete:
			if aStart == -1 {
				aStart = o.aIdx
			}
			aCount++
		case opInsert:
			if bStart == -1 {
				bStart = o.bIdx
			}
			bCount++
		}
	}
	if aStart == -1 {
		aStart = 0
	}
	if bStart == -1 {
		bStart = 0
	}

	fmt.Fprintf(sb, "@@ -%d,%d +%d,%d @@\n", aStart+1, aCount, bStart+1, bCount)
	for _, o := range h.ops {
		switch o.kind {
		case opEqual:
			fmt.Fprintf(sb, " %s\n", a[o.aIdx])
		case opDelete:
			fmt.Fprintf(sb, "-%s\n", a[o.aIdx])
		case opInsert:
			fmt.Fprintf(sb, "+%s\n", b[o.bIdx])
		}
	}
}
