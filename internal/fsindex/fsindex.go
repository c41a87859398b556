// Package fsindex provides a deterministic directory indexer used by the
// diff engine to snapshot a resolved tree as relative path -> absolute path.
package fsindex

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"difftor/internal/sortutil"
)

// Options tunes which entries make it into an index.
type Options struct {
	// FollowSymlinks indexes symlinks that resolve to regular files under the
	// link's own path. Symlinked directories are never descended. When false,
	// every symlink is skipped.
	FollowSymlinks bool

	// Exclude holds doublestar globs matched against the slash-separated
	// relative path. Invalid patterns are ignored.
	Exclude []string
}

// FileIndex maps posix-style relative paths to absolute paths. It is
// immutable after Build returns.
type FileIndex struct {
	root  string
	paths []string
	abs   map[string]string
}

// Root returns the absolute root the index was built from ("" when the root
// could not be resolved).
func (ix *FileIndex) Root() string { return ix.root }

// Len returns the number of indexed files.
func (ix *FileIndex) Len() int { return len(ix.paths) }

// Paths returns the relative paths in lexicographic order. The slice is a
// copy.
func (ix *FileIndex) Paths() []string {
	out := make([]string, len(ix.paths))
	copy(out, ix.paths)
	return out
}

// Abs returns the absolute path recorded for rel.
func (ix *FileIndex) Abs(rel string) (string, bool) {
	p, ok := ix.abs[rel]
	return p, ok
}

// Has reports whether rel is indexed.
func (ix *FileIndex) Has(rel string) bool {
	_, ok := ix.abs[rel]
	return ok
}

type walkState struct {
	opt     Options
	root    string
	exclude []string
	abs     map[string]string
}

// Build walks root and indexes every regular file beneath it, skipping
// platform metadata (see IsPlatformMetadata) and any Exclude match.
// A root that does not exist or is not a directory yields an empty index.
func Build(root string, opt Options) *FileIndex {
	ix := &FileIndex{abs: map[string]string{}}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return ix
	}
	info, err := os.Stat(rootAbs)
	if err != nil || !info.IsDir() {
		return ix
	}
	if resolved, err := filepath.EvalSymlinks(rootAbs); err == nil {
		rootAbs = resolved
	}
	ix.root = rootAbs

	st := &walkState{opt: opt, root: rootAbs, abs: ix.abs}
	for _, p := range opt.Exclude {
		if doublestar.ValidatePattern(p) {
			st.exclude = append(st.exclude, p)
		}
	}
	_ = filepath.WalkDir(rootAbs, st.visit)

	ix.paths = sortutil.SortedKeys(ix.abs)
	return ix
}

func (ws *walkState) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		if d != nil && d.IsDir() && path != ws.root {
			return filepath.SkipDir
		}
		return nil
	}
	if path == ws.root {
		return nil
	}
	rel, ok := ws.relative(path)
	if !ok {
		return nil
	}
	if d.IsDir() {
		if firstSegment(rel) == MetadataDir {
			return filepath.SkipDir
		}
		return nil
	}
	if IsPlatformMetadata(rel) || ws.excluded(rel) {
		return nil
	}
	return ws.handleFile(path, rel, d)
}

func (ws *walkState) relative(path string) (string, bool) {
	rel, err := filepath.Rel(ws.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") || rel == ".." || rel == "." {
		return "", false
	}
	return rel, true
}

func (ws *walkState) excluded(rel string) bool {
	for _, p := range ws.exclude {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (ws *walkState) handleFile(path, rel string, d fs.DirEntry) error {
	if isSymlink(d) {
		if !ws.opt.FollowSymlinks {
			return nil
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		ws.abs[rel] = path
		return nil
	}
	if !d.Type().IsRegular() {
		return nil
	}
	ws.abs[rel] = path
	return nil
}

// isSymlink reports whether the DirEntry is a symlink (file or directory).
func isSymlink(d fs.DirEntry) bool {
	return d.Type()&fs.ModeSymlink != 0
}
