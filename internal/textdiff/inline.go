package textdiff

import (
	"fmt"
	"html"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

func (r *Renderer) inline(a, b []string) string {
	m := difflib.NewMatcher(a, b)
	if onlyEqual(m.GetOpCodes()) {
		return noChanges()
	}
	var sb strings.Builder
	sb.WriteString(`<table class="diff-inline">`)
	sb.WriteString(`<thead><tr><th class="ln">Old</th><th class="ln">New</th><th class="sign"></th><th class="code">Differences</th></tr></thead>`)
	for _, group := range m.GetGroupedOpCodes(r.opt.Context) {
		sb.WriteString("<tbody>")
		writeHunkHeader(&sb, group)
		for _, op := range group {
			switch op.Tag {
			case 'e':
				for i, j := op.I1, op.J1; i < op.I2; i, j = i+1, j+1 {
					writeRow(&sb, "diff-eq", i+1, j+1, " ", html.EscapeString(a[i]))
				}
			case 'd':
				for i := op.I1; i < op.I2; i++ {
					writeRow(&sb, "diff-del", i+1, 0, "-", html.EscapeString(a[i]))
				}
			case 'i':
				for j := op.J1; j < op.J2; j++ {
					writeRow(&sb, "diff-ins", 0, j+1, "+", html.EscapeString(b[j]))
				}
			case 'r':
				writeReplace(&sb, a[op.I1:op.I2], b[op.J1:op.J2], op.I1, op.J1)
			}
		}
		sb.WriteString("</tbody>")
	}
	sb.WriteString("</table>")
	return sb.String()
}

// writeReplace emits removed lines then added lines. When both sides have the
// same number of lines, each pair is highlighted at character level.
func writeReplace(sb *strings.Builder, olds, news []string, oldStart, newStart int) {
	paired := len(olds) == len(news)
	for k, ln := range olds {
		text := html.EscapeString(ln)
		if paired {
			text, _ = charDiff(ln, news[k])
		}
		writeRow(sb, "diff-del", oldStart+k+1, 0, "-", text)
	}
	for k, ln := range news {
		text := html.EscapeString(ln)
		if paired {
			_, text = charDiff(olds[k], ln)
		}
		writeRow(sb, "diff-ins", 0, newStart+k+1, "+", text)
	}
}

// charDiff returns escaped renderings of a and b with differing spans wrapped
// in <del> and <ins>.
func charDiff(a, b string) (string, string) {
	ar := strings.Split(a, "")
	br := strings.Split(b, "")
	m := difflib.NewMatcherWithJunk(ar, br, false, nil)
	var oa, ob strings.Builder
	for _, op := range m.GetOpCodes() {
		left := html.EscapeString(strings.Join(ar[op.I1:op.I2], ""))
		right := html.EscapeString(strings.Join(br[op.J1:op.J2], ""))
		switch op.Tag {
		case 'e':
			oa.WriteString(left)
			ob.WriteString(right)
		case 'd':
			oa.WriteString("<del>" + left + "</del>")
		case 'i':
			ob.WriteString("<ins>" + right + "</ins>")
		case 'r':
			oa.WriteString("<del>" + left + "</del>")
			ob.WriteString("<ins>" + right + "</ins>")
		}
	}
	return oa.String(), ob.String()
}

func writeHunkHeader(sb *strings.Builder, group []difflib.OpCode) {
	first, last := group[0], group[len(group)-1]
	header := fmt.Sprintf("@@ -%s +%s @@",
		hunkRange(first.I1, last.I2), hunkRange(first.J1, last.J2))
	sb.WriteString(`<tr class="diff-hunk"><td class="ln">…</td><td class="ln">…</td><td class="sign"></td><td class="code">`)
	sb.WriteString(header)
	sb.WriteString("</td></tr>")
}

// hunkRange formats a half-open [start, stop) range the way unified diffs do.
func hunkRange(start, stop int) string {
	n := stop - start
	switch {
	case n == 1:
		return fmt.Sprintf("%d", start+1)
	case n == 0:
		return fmt.Sprintf("%d,0", start)
	default:
		return fmt.Sprintf("%d,%d", start+1, n)
	}
}

func writeRow(sb *strings.Builder, class string, oldNo, newNo int, sign, text string) {
	sb.WriteString(`<tr class="`)
	sb.WriteString(class)
	sb.WriteString(`"><td class="ln">`)
	if oldNo > 0 {
		fmt.Fprintf(sb, "%d", oldNo)
	}
	sb.WriteString(`</td><td class="ln">`)
	if newNo > 0 {
		fmt.Fprintf(sb, "%d", newNo)
	}
	sb.WriteString(`</td><td class="sign">`)
	sb.WriteString(sign)
	sb.WriteString(`</td><td class="code">`)
	sb.WriteString(text)
	sb.WriteString("</td></tr>")
}

func onlyEqual(ops []difflib.OpCode) bool {
	for _, op := range ops {
		if op.Tag != 'e' {
			return false
		}
	}
	return true
}

const baseCSS = `
.diff-inline { width: 100%; border-collapse: collapse; font-family: "Courier New", Courier, monospace; font-size: 13px; }
.diff-inline th { background-color: #f1f3f5; color: #495057; font-weight: 600; text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
.diff-inline td { padding: 0 8px; vertical-align: top; white-space: pre-wrap; word-break: break-all; }
.diff-inline td.ln { width: 1%; min-width: 40px; color: #868e96; text-align: right; user-select: none; border-right: 1px solid #eee; }
.diff-inline td.sign { width: 1%; color: #868e96; user-select: none; }
.diff-inline tr.diff-hunk td { background-color: #f1f8ff; color: #6a737d; }
.diff-inline tr.diff-del td { background-color: #ffeef0; }
.diff-inline tr.diff-ins td { background-color: #e6ffed; }
.diff-inline del { background-color: #fdb8c0; text-decoration: none; }
.diff-inline ins { background-color: #acf2bd; text-decoration: none; }
.diff-unified pre { margin: 0; padding: 10px 15px; overflow-x: auto; font-size: 13px; }
.diff-note { padding: 10px 15px; color: #6a737d; font-style: italic; }
`
