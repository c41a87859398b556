// Package textdiff renders line diffs between two texts as HTML fragments.
// Line matching is done by github.com/pmezard/go-difflib/difflib; the unified
// rendering is highlighted with chroma's diff lexer.
package textdiff

import (
	"fmt"
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	difflib "github.com/pmezard/go-difflib/difflib"
)

// Mode selects the rendering.
type Mode int

const (
	// Inline renders one table with old and new line numbers side by side.
	Inline Mode = iota
	// Unified renders classic unified diff text with syntax colouring.
	Unified
)

func (m Mode) String() string {
	switch m {
	case Inline:
		return "inline"
	case Unified:
		return "unified"
	default:
		return "unknown"
	}
}

// ParseMode accepts "inline" or "unified" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inline":
		return Inline, nil
	case "unified":
		return Unified, nil
	}
	return Inline, fmt.Errorf("unknown diff mode %q (want inline or unified)", s)
}

// DefaultContext is the number of unchanged lines kept around each change.
const DefaultContext = 3

// DefaultStyle is the chroma style used for the unified rendering.
const DefaultStyle = "github"

// Options controls rendering.
type Options struct {
	Mode Mode

	// Context controls the number of context lines per hunk. If 0, default to
	// DefaultContext.
	Context int

	// MaxBytes is a guardrail on input size (old+new). When exceeded, a
	// placeholder block is returned instead of a diff. 0 means no limit.
	MaxBytes int

	// Style names the chroma style for Unified mode.
	Style string
}

// Renderer is safe for sequential reuse across files.
type Renderer struct {
	opt       Options
	style     *chroma.Style
	formatter *chromahtml.Formatter
	lexer     chroma.Lexer
}

// New builds a Renderer, filling defaults.
func New(opt Options) *Renderer {
	if opt.Context <= 0 {
		opt.Context = DefaultContext
	}
	if opt.Style == "" {
		opt.Style = DefaultStyle
	}
	lexer := lexers.Get("diff")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return &Renderer{
		opt:       opt,
		style:     styles.Get(opt.Style),
		formatter: chromahtml.New(chromahtml.WithClasses(true), chromahtml.TabWidth(4)),
		lexer:     chroma.Coalesce(lexer),
	}
}

// Options returns the effective options.
func (r *Renderer) Options() Options { return r.opt }

// Render returns an HTML fragment describing oldText -> newText. The names are
// used as ---/+++ headers in Unified mode.
func (r *Renderer) Render(oldName, newName, oldText, newText string) string {
	if r.opt.MaxBytes > 0 && len(oldText)+len(newText) > r.opt.MaxBytes {
		return omitted(r.opt.MaxBytes)
	}
	a := splitLines(oldText)
	b := splitLines(newText)
	if r.opt.Mode == Unified {
		return r.unified(oldName, newName, a, b)
	}
	return r.inline(a, b)
}

// Stylesheet returns the CSS the rendered fragments rely on.
func (r *Renderer) Stylesheet() string {
	var sb strings.Builder
	sb.WriteString(baseCSS)
	if err := r.formatter.WriteCSS(&sb, r.style); err != nil {
		// chroma only fails on writer errors; strings.Builder never does
		return baseCSS
	}
	return sb.String()
}

func (r *Renderer) unified(oldName, newName string, a, b []string) string {
	u := difflib.UnifiedDiff{
		A:        withNewlines(a),
		B:        withNewlines(b),
		FromFile: oldName,
		ToFile:   newName,
		Context:  r.opt.Context,
	}
	text, err := difflib.GetUnifiedDiffString(u)
	if err != nil || text == "" {
		return noChanges()
	}
	it, err := r.lexer.Tokenise(nil, text)
	if err != nil {
		return `<pre class="diff-unified">` + html.EscapeString(text) + "</pre>"
	}
	var sb strings.Builder
	sb.WriteString(`<div class="diff-unified">`)
	if err := r.formatter.Format(&sb, r.style, it); err != nil {
		return `<pre class="diff-unified">` + html.EscapeString(text) + "</pre>"
	}
	sb.WriteString("</div>")
	return sb.String()
}

// splitLines splits s into lines without their terminators. A trailing
// newline does not produce an empty final line.
func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, ln := range lines {
		lines[i] = strings.TrimSuffix(ln, "\n")
	}
	return lines
}

func withNewlines(lines []string) []string {
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = ln + "\n"
	}
	return out
}

func omitted(limit int) string {
	return fmt.Sprintf(`<div class="diff-note diff-omitted">Diff omitted (oversize): combined size exceeds %d bytes.</div>`, limit)
}

func noChanges() string {
	return `<div class="diff-note">No line-level differences (whitespace or encoding only).</div>`
}
