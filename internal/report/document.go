// Package report assembles the HTML comparison document from a change set
// and writes it to a uniquely named file.
package report

import (
	"fmt"
	"html"
	"strings"
)

// DefaultTitle is the <title> of a report.
const DefaultTitle = "Difftor"

// SummaryItem is one removed or added path. Anchor is empty when the path
// has no diff entry.
type SummaryItem struct {
	Path   string
	Anchor string
}

// RenameItem is a rename that has no diff block.
type RenameItem struct {
	From string
	To   string
	Note string
}

// Entry is one diff block. HTML is a trusted fragment from the diff renderer;
// everything else is escaped on output.
type Entry struct {
	Label   string
	ID      string
	OldPath string
	NewPath string
	Renamed bool
	HTML    string
}

// Document is an assembled report. It carries no timestamps, so equal inputs
// render to equal bytes.
type Document struct {
	Title      string
	Removed    []SummaryItem
	Added      []SummaryItem
	Renamed    []RenameItem
	Entries    []Entry
	Stylesheet string
}

// Empty reports whether the document lists no differences at all.
func (d *Document) Empty() bool {
	return len(d.Removed) == 0 && len(d.Added) == 0 && len(d.Renamed) == 0 && len(d.Entries) == 0
}

// Render serializes the document: summary, table of contents, diff blocks.
func (d *Document) Render() []byte {
	title := d.Title
	if title == "" {
		title = DefaultTitle
	}
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"UTF-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(title))
	sb.WriteString("<style>\n")
	sb.WriteString(layoutCSS)
	sb.WriteString(d.Stylesheet)
	sb.WriteString("</style>\n</head>\n<body>\n")
	sb.WriteString("<div class=\"container\">\n")
	sb.WriteString("<h1>Folder Diff Comparison</h1>\n")

	d.writeSummary(&sb)
	d.writeTOC(&sb)
	for _, e := range d.Entries {
		writeEntry(&sb, e)
	}
	if d.Empty() {
		sb.WriteString("<p class=\"no-changes\">No differences found.</p>\n")
	}

	sb.WriteString("</div>\n</body>\n</html>\n")
	return []byte(sb.String())
}

func (d *Document) writeSummary(sb *strings.Builder) {
	if len(d.Removed) == 0 && len(d.Added) == 0 && len(d.Renamed) == 0 {
		return
	}
	sb.WriteString("<div class=\"file-summary\">\n")
	writeSummaryList(sb, "removed", "Removed Files", d.Removed)
	writeSummaryList(sb, "added", "Added Files", d.Added)
	if len(d.Renamed) > 0 {
		sb.WriteString("<div class=\"summary-section\">\n")
		fmt.Fprintf(sb, "<h3 class=\"summary-title renamed\">Renamed Files (%d)</h3>\n", len(d.Renamed))
		sb.WriteString("<ul class=\"file-list renamed\">\n")
		for _, r := range d.Renamed {
			fmt.Fprintf(sb, "<li><span class=\"rename-old\">%s</span> → <span class=\"rename-new\">%s</span>",
				html.EscapeString(r.From), html.EscapeString(r.To))
			if r.Note != "" {
				fmt.Fprintf(sb, " <span class=\"rename-note\">(%s)</span>", html.EscapeString(r.Note))
			}
			sb.WriteString("</li>\n")
		}
		sb.WriteString("</ul>\n</div>\n")
	}
	sb.WriteString("</div>\n")
}

func writeSummaryList(sb *strings.Builder, class, title string, items []SummaryItem) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("<div class=\"summary-section\">\n")
	fmt.Fprintf(sb, "<h3 class=\"summary-title %s\">%s (%d)</h3>\n", class, title, len(items))
	fmt.Fprintf(sb, "<ul class=\"file-list %s\">\n", class)
	for _, it := range items {
		if it.Anchor != "" {
			fmt.Fprintf(sb, "<li><a href=\"#%s\">%s</a></li>\n",
				html.EscapeString(it.Anchor), html.EscapeString(it.Path))
			continue
		}
		fmt.Fprintf(sb, "<li>%s</li>\n", html.EscapeString(it.Path))
	}
	sb.WriteString("</ul>\n</div>\n")
}

func (d *Document) writeTOC(sb *strings.Builder) {
	if len(d.Entries) == 0 {
		return
	}
	sb.WriteString("<div class=\"table-of-contents\">\n<h2>Table of Contents</h2>\n<ul>\n")
	for _, e := range d.Entries {
		fmt.Fprintf(sb, "<li><a href=\"#%s\">%s</a></li>\n", html.EscapeString(e.ID), html.EscapeString(e.Label))
	}
	sb.WriteString("</ul>\n</div>\n")
}

func writeEntry(sb *strings.Builder, e Entry) {
	id := html.EscapeString(e.ID)
	if e.Renamed {
		fmt.Fprintf(sb, "<div class=\"file-diff renamed-file\" id=\"%s\">\n", id)
		fmt.Fprintf(sb, "<h2 class=\"file-name\"><span class=\"file-rename-info\"><span class=\"rename-old\">%s</span> → <span class=\"rename-new\">%s</span></span></h2>\n",
			html.EscapeString(e.OldPath), html.EscapeString(e.NewPath))
	} else {
		fmt.Fprintf(sb, "<div class=\"file-diff\" id=\"%s\">\n", id)
		fmt.Fprintf(sb, "<h2 class=\"file-name\">%s</h2>\n", html.EscapeString(e.Label))
	}
	sb.WriteString(e.HTML)
	sb.WriteString("\n</div>\n")
}

const layoutCSS = `body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5; }
.container { max-width: 1400px; margin: 0 auto; background-color: #fff; padding: 20px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
h1 { margin-top: 0; color: #333; border-bottom: 2px solid #ddd; padding-bottom: 10px; }
.file-summary, .table-of-contents { margin-bottom: 40px; border: 1px solid #ddd; border-radius: 4px; background-color: #f8f9fa; }
.summary-section { padding: 15px; }
.summary-section:not(:last-child) { border-bottom: 1px solid #ddd; }
.summary-title { margin: 0 0 10px 0; font-size: 16px; font-weight: 600; }
.summary-title.added, .file-list.added li, .rename-new { color: #155724; }
.summary-title.removed, .file-list.removed li, .rename-old { color: #721c24; }
.summary-title.renamed { color: #856404; }
.file-list, .table-of-contents ul { margin: 0; padding-left: 20px; list-style-type: disc; }
.file-list li, .table-of-contents li { margin: 5px 0; font-family: "Courier New", Courier, monospace; font-size: 13px; }
.file-list a { color: inherit; text-decoration: none; }
.rename-note { color: #6c757d; font-style: italic; }
.table-of-contents { padding: 15px; }
.table-of-contents h2 { margin: 0 0 15px 0; font-size: 18px; color: #333; }
.table-of-contents a { color: #0073aa; text-decoration: none; }
.file-list a:hover, .table-of-contents a:hover { text-decoration: underline; }
.file-diff { margin-bottom: 40px; border: 1px solid #ddd; border-radius: 4px; overflow: hidden; scroll-margin-top: 20px; }
.file-diff.renamed-file { border-left: 4px solid #856404; }
.file-name { background-color: #f8f9fa; padding: 10px 15px; margin: 0; font-size: 16px; border-bottom: 1px solid #ddd; color: #495057; }
.file-rename-info { display: block; font-size: 14px; margin-top: 5px; }
.file-rename-info .rename-old { text-decoration: line-through; }
.file-rename-info .rename-new { font-weight: 600; }
.no-changes { color: #6c757d; }
`
