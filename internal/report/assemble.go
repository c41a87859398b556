package report

import (
	"github.com/pterm/pterm"

	"difftor/internal/changes"
	"difftor/internal/textdiff"
	"difftor/internal/textutil"
)

// Options controls assembly.
type Options struct {
	Title string
	// ShowPureRenames lists renames without a diff block in the summary.
	ShowPureRenames bool
	// NormalizeEncoding decodes non-UTF-8 content before diffing.
	NormalizeEncoding bool
}

// Assemble renders every changed file and every modified rename through r,
// in that order, and builds the summary around them.
func Assemble(cs changes.ChangeSet, r *textdiff.Renderer, opt Options) *Document {
	doc := &Document{
		Title:      opt.Title,
		Stylesheet: r.Stylesheet(),
		Removed:    make([]SummaryItem, 0, len(cs.Removed)),
		Added:      make([]SummaryItem, 0, len(cs.Added)),
		Entries:    make([]Entry, 0, len(cs.Changed)+len(cs.Renames)),
	}
	ids := newIDSet()
	decode := rawText
	if opt.NormalizeEncoding {
		decode = textutil.String
	}

	for _, c := range cs.Changed {
		doc.Entries = append(doc.Entries, Entry{
			Label:   c.Path,
			ID:      ids.claim(c.Path),
			OldPath: c.Path,
			NewPath: c.Path,
			HTML:    r.Render("a/"+c.Path, "b/"+c.Path, decode(c.Old), decode(c.New)),
		})
	}
	for _, rn := range cs.Renames {
		if rn.Kind != changes.RenameModified {
			if opt.ShowPureRenames {
				doc.Renamed = append(doc.Renamed, RenameItem{From: rn.From, To: rn.To, Note: rn.Kind.String()})
			}
			continue
		}
		label := rn.Label()
		doc.Entries = append(doc.Entries, Entry{
			Label:   label,
			ID:      ids.claim(label),
			OldPath: rn.From,
			NewPath: rn.To,
			Renamed: true,
			HTML:    r.Render(rn.From, rn.To, decode(rn.Old), decode(rn.New)),
		})
	}

	anchors := anchorIndex(doc.Entries)
	for _, p := range cs.Removed {
		doc.Removed = append(doc.Removed, SummaryItem{Path: p, Anchor: anchors[p]})
	}
	for _, p := range cs.Added {
		doc.Added = append(doc.Added, SummaryItem{Path: p, Anchor: anchors[p]})
	}
	pterm.Debug.Printfln("assembled %d diff entries, %d removed, %d added, %d renamed without diff",
		len(doc.Entries), len(doc.Removed), len(doc.Added), len(doc.Renamed))
	return doc
}

// anchorIndex maps both sides' paths of every entry to its id. The first
// entry naming a path wins.
func anchorIndex(entries []Entry) map[string]string {
	m := make(map[string]string, 2*len(entries))
	for _, e := range entries {
		for _, p := range []string{e.OldPath, e.NewPath} {
			if _, ok := m[p]; !ok {
				m[p] = e.ID
			}
		}
	}
	return m
}

func rawText(b []byte) string { return string(b) }
