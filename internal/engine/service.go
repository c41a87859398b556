package engine

import (
	"context"

	"github.com/pterm/pterm"

	"difftor/internal/report"
	"difftor/internal/source"
)

// Resolver turns a source string into a local directory.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (source.Source, error)
}

// Result describes a finished comparison.
type Result struct {
	Path     string
	Entries  int
	Removed  int
	Added    int
	Renamed  int
	Document *report.Document
}

// Service runs a full comparison: resolve both sources, diff, write.
type Service struct {
	Engine   *Engine
	Resolver Resolver
	Writer   *report.Writer
}

// Compare resolves oldRef and newRef one after the other, diffs them and
// writes the report into outDir. Temporary sources are removed before
// Compare returns, whether it succeeds or not.
func (s *Service) Compare(ctx context.Context, oldRef, newRef, outDir string) (*Result, error) {
	oldSrc, err := s.Resolver.Resolve(ctx, oldRef)
	if err != nil {
		return nil, err
	}
	defer cleanup(oldSrc)

	newSrc, err := s.Resolver.Resolve(ctx, newRef)
	if err != nil {
		return nil, err
	}
	defer cleanup(newSrc)

	doc := s.Engine.GenerateDiff(oldSrc.Dir, newSrc.Dir)
	w := s.Writer
	if w == nil {
		w = report.NewWriter()
	}
	path, err := w.Write(outDir, doc)
	if err != nil {
		return nil, err
	}
	return &Result{
		Path:     path,
		Entries:  len(doc.Entries),
		Removed:  len(doc.Removed),
		Added:    len(doc.Added),
		Renamed:  len(doc.Renamed),
		Document: doc,
	}, nil
}

func cleanup(src source.Source) {
	if err := src.Cleanup(); err != nil {
		pterm.Warning.Printfln("remove temporary source %s: %v", src.Dir, err)
	}
}
