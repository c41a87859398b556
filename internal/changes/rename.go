package changes

import (
	"bytes"

	"github.com/pterm/pterm"

	"difftor/internal/fsindex"
	"difftor/internal/ignore"
)

// RenameKind describes what happened to the content of a renamed file.
type RenameKind int

const (
	// RenameUnchanged pairs byte-identical files.
	RenameUnchanged RenameKind = iota
	// RenameModified pairs files whose content differs; it gets a diff entry.
	RenameModified
	// RenameIgnored pairs files where either side has an ignored extension.
	RenameIgnored
	// RenameUnreadable pairs files where either side failed to read.
	RenameUnreadable
)

func (k RenameKind) String() string {
	switch k {
	case RenameUnchanged:
		return "unchanged"
	case RenameModified:
		return "modified"
	case RenameIgnored:
		return "binary"
	case RenameUnreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// Rename is a removed path paired with an added path that shares everything
// after the first path segment.
type Rename struct {
	From string
	To   string
	Kind RenameKind
	Old  []byte
	New  []byte
}

// Label is the display form "from → to".
func (r Rename) Label() string { return r.From + " → " + r.To }

// MatchRenames pairs onlyOld with onlyNew by the path suffix after the first
// segment. Both inputs must be sorted. For each old path in order the first
// unmatched new path with the same suffix wins; paths at the tree root are
// never eligible. The returned renames carry From and To only and keep the
// order of onlyOld.
func MatchRenames(onlyOld, onlyNew []string) []Rename {
	if len(onlyOld) == 0 || len(onlyNew) == 0 {
		return nil
	}
	bySuffix := make(map[string][]string, len(onlyNew))
	for _, p := range onlyNew {
		suffix, ok := fsindex.TrimFirstSegment(p)
		if !ok {
			continue
		}
		bySuffix[suffix] = append(bySuffix[suffix], p)
	}

	renames := make([]Rename, 0)
	for _, from := range onlyOld {
		suffix, ok := fsindex.TrimFirstSegment(from)
		if !ok {
			continue
		}
		cands := bySuffix[suffix]
		if len(cands) == 0 {
			continue
		}
		if len(cands) == 1 {
			delete(bySuffix, suffix)
		} else {
			bySuffix[suffix] = cands[1:]
		}
		renames = append(renames, Rename{From: from, To: cands[0]})
	}
	return renames
}

func resolveRename(rn *Rename, oldAbs, newAbs string, filter ignore.Filter, read ReadFunc) {
	if filter.Ignored(oldAbs) || filter.Ignored(newAbs) {
		rn.Kind = RenameIgnored
		return
	}
	a, b, err := readPair(read, oldAbs, newAbs)
	if err != nil {
		pterm.Warning.Printfln("rename %s: %v", rn.Label(), err)
		rn.Kind = RenameUnreadable
		return
	}
	if bytes.Equal(a, b) {
		rn.Kind = RenameUnchanged
		return
	}
	rn.Kind = RenameModified
	rn.Old, rn.New = a, b
}
