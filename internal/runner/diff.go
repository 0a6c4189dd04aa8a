package runner

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const diffContext = 3

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// UnifiedDiff renders the line diff between before and after in unified
// format with three lines of context. Identical inputs yield "".
func UnifiedDiff(path string, before, after []byte) string {
	if string(before) == string(after) {
		return ""
	}

	lines := diffLines(string(before), string(after))

	var sb strings.Builder

	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", path, path)

	for _, h := range hunks(lines) {
		writeHunk(&sb, lines, h)
	}

	return sb.String()
}

func diffLines(before, after string) []diffLine {
	dmp := diffmatchpatch.New()
	src, dst, lineArray := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(src, dst, false), lineArray)

	var lines []diffLine

	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		for line := range strings.SplitSeq(text, "\n") {
			lines = append(lines, diffLine{op: d.Type, text: line})
		}
	}

	return lines
}

type hunk struct {
	start, end int
}

// hunks groups changed lines, merging groups whose context would overlap.
func hunks(lines []diffLine) []hunk {
	var out []hunk

	for idx, line := range lines {
		if line.op == diffmatchpatch.DiffEqual {
			continue
		}

		start := max(idx-diffContext, 0)
		end := min(idx+diffContext+1, len(lines))

		if n := len(out); n > 0 && start <= out[n-1].end {
			out[n-1].end = max(out[n-1].end, end)

			continue
		}

		out = append(out, hunk{start: start, end: end})
	}

	return out
}

func writeHunk(sb *strings.Builder, lines []diffLine, h hunk) {
	oldStart, newStart := 1, 1

	for _, line := range lines[:h.start] {
		if line.op != diffmatchpatch.DiffInsert {
			oldStart++
		}

		if line.op != diffmatchpatch.DiffDelete {
			newStart++
		}
	}

	oldCount, newCount := 0, 0

	var body strings.Builder

	for _, line := range lines[h.start:h.end] {
		switch line.op {
		case diffmatchpatch.DiffEqual:
			oldCount++
			newCount++

			body.WriteString(" " + line.text + "\n")
		case diffmatchpatch.DiffDelete:
			oldCount++

			body.WriteString("-" + line.text + "\n")
		case diffmatchpatch.DiffInsert:
			newCount++

			body.WriteString("+" + line.text + "\n")
		}
	}

	fmt.Fprintf(sb, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
	sb.WriteString(body.String())
}
