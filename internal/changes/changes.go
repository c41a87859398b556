// Package changes computes the change set between two file indexes: set
// partitioning, content comparison and folder-rename recovery.
package changes

import (
	"bytes"
	"os"

	"github.com/pterm/pterm"

	"difftor/internal/fsindex"
	"difftor/internal/ignore"
	"difftor/internal/sortutil"
)

// ReadFunc loads a file's bytes by absolute path.
type ReadFunc func(abs string) ([]byte, error)

// Change is a path present on both sides whose bytes differ.
type Change struct {
	Path   string
	OldAbs string
	NewAbs string
	Old    []byte
	New    []byte
}

// ChangeSet is the outcome of comparing two indexes.
//
// BothPresent, OnlyInOld and OnlyInNew partition the union of both indexes'
// keys. Removed and Added are OnlyInOld and OnlyInNew minus every path that
// took part in a rename. All slices are in lexicographic order.
type ChangeSet struct {
	BothPresent []string
	OnlyInOld   []string
	OnlyInNew   []string

	Changed    []Change
	Ignored    []string
	Unreadable []string

	Renames []Rename
	Removed []string
	Added   []string
}

// Partition splits the keys of old and neu into the three disjoint sets.
func Partition(old, neu *fsindex.FileIndex) (both, onlyOld, onlyNew []string) {
	both = make([]string, 0)
	onlyOld = make([]string, 0)
	onlyNew = make([]string, 0)
	for _, p := range old.Paths() {
		if neu.Has(p) {
			both = append(both, p)
			continue
		}
		onlyOld = append(onlyOld, p)
	}
	for _, p := range neu.Paths() {
		if !old.Has(p) {
			onlyNew = append(onlyNew, p)
		}
	}
	return both, onlyOld, onlyNew
}

// Classify partitions both indexes, compares the content of paths present on
// both sides and pairs folder renames. A nil read uses os.ReadFile.
//
// Ignored paths and byte-identical files never reach Changed. A file that
// cannot be read is listed in Unreadable and left out of the report.
func Classify(old, neu *fsindex.FileIndex, filter ignore.Filter, read ReadFunc) ChangeSet {
	if read == nil {
		read = os.ReadFile
	}
	var cs ChangeSet
	cs.BothPresent, cs.OnlyInOld, cs.OnlyInNew = Partition(old, neu)
	cs.Changed = make([]Change, 0)

	for _, rel := range cs.BothPresent {
		oldAbs, _ := old.Abs(rel)
		newAbs, _ := neu.Abs(rel)
		if filter.Ignored(oldAbs) || filter.Ignored(newAbs) {
			cs.Ignored = append(cs.Ignored, rel)
			continue
		}
		a, b, err := readPair(read, oldAbs, newAbs)
		if err != nil {
			pterm.Warning.Printfln("skipping %s: %v", rel, err)
			cs.Unreadable = append(cs.Unreadable, rel)
			continue
		}
		if bytes.Equal(a, b) {
			continue
		}
		cs.Changed = append(cs.Changed, Change{Path: rel, OldAbs: oldAbs, NewAbs: newAbs, Old: a, New: b})
	}

	cs.Renames = MatchRenames(cs.OnlyInOld, cs.OnlyInNew)
	matchedOld := make(map[string]bool, len(cs.Renames))
	matchedNew := make(map[string]bool, len(cs.Renames))
	for i := range cs.Renames {
		rn := &cs.Renames[i]
		matchedOld[rn.From] = true
		matchedNew[rn.To] = true
		oldAbs, _ := old.Abs(rn.From)
		newAbs, _ := neu.Abs(rn.To)
		resolveRename(rn, oldAbs, newAbs, filter, read)
	}
	cs.Removed = sortutil.Without(cs.OnlyInOld, matchedOld)
	cs.Added = sortutil.Without(cs.OnlyInNew, matchedNew)
	return cs
}

// Renamed returns the renames of the given kind, in match order.
func (cs ChangeSet) Renamed(kind RenameKind) []Rename {
	out := make([]Rename, 0)
	for _, rn := range cs.Renames {
		if rn.Kind == kind {
			out = append(out, rn)
		}
	}
	return out
}

func readPair(read ReadFunc, oldAbs, newAbs string) ([]byte, []byte, error) {
	a, err := read(oldAbs)
	if err != nil {
		return nil, nil, err
	}
	b, err := read(newAbs)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}
