// Package engine compares two resolved directory trees and produces the
// report document.
package engine

import (
	"github.com/pterm/pterm"

	"difftor/internal/changes"
	"difftor/internal/fsindex"
	"difftor/internal/ignore"
	"difftor/internal/report"
	"difftor/internal/textdiff"
)

// Options configures an Engine.
type Options struct {
	Ignore            ignore.Filter
	Index             fsindex.Options
	Diff              textdiff.Options
	NormalizeEncoding bool
	ShowPureRenames   bool
	Title             string

	// Read overrides how file bytes are loaded; nil means os.ReadFile.
	Read changes.ReadFunc
}

// DefaultOptions ignores the default binary extensions, lists pure renames
// and normalizes encodings.
func DefaultOptions() Options {
	return Options{
		Ignore:            ignore.Default(),
		Diff:              textdiff.Options{Mode: textdiff.Inline, Context: textdiff.DefaultContext},
		NormalizeEncoding: true,
		ShowPureRenames:   true,
	}
}

// Engine holds no per-run state and may be reused sequentially.
type Engine struct {
	opt      Options
	renderer *textdiff.Renderer
}

// New builds an Engine.
func New(opt Options) *Engine {
	return &Engine{opt: opt, renderer: textdiff.New(opt.Diff)}
}

// GenerateDiff indexes both trees, classifies every path, pairs renames and
// assembles the report. A missing tree counts as empty.
func (e *Engine) GenerateDiff(oldDir, newDir string) *report.Document {
	cs := e.Changes(oldDir, newDir)
	return report.Assemble(cs, e.renderer, report.Options{
		Title:             e.opt.Title,
		ShowPureRenames:   e.opt.ShowPureRenames,
		NormalizeEncoding: e.opt.NormalizeEncoding,
	})
}

// Changes is GenerateDiff without the rendering step.
func (e *Engine) Changes(oldDir, newDir string) changes.ChangeSet {
	old := fsindex.Build(oldDir, e.opt.Index)
	neu := fsindex.Build(newDir, e.opt.Index)
	pterm.Debug.Printfln("indexed %d old and %d new files", old.Len(), neu.Len())

	cs := changes.Classify(old, neu, e.opt.Ignore, e.opt.Read)
	pterm.Debug.Printfln("both=%d onlyOld=%d onlyNew=%d changed=%d ignored=%d renames=%d",
		len(cs.BothPresent), len(cs.OnlyInOld), len(cs.OnlyInNew),
		len(cs.Changed), len(cs.Ignored), len(cs.Renames))
	return cs
}
