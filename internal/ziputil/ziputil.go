// Package ziputil extracts zip archives into a directory, dropping platform
// metadata entries and refusing entries that would escape the destination.
package ziputil

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"difftor/internal/fsindex"
)

// ErrUnsafePath is returned for entries whose names cannot be placed inside
// the destination directory.
var ErrUnsafePath = errors.New("unsafe archive entry path")

// Stats summarizes an extraction.
type Stats struct {
	Files   int
	Skipped int
	Bytes   int64
}

// SanitizePath normalizes archive entry paths (forward slashes, no drive, no
// leading '/'), and removes '.' and '..' segments without escaping the root.
// It returns "" when nothing remains.
func SanitizePath(p string) string {
	s := strings.ReplaceAll(p, "\\", "/")
	if len(s) > 1 && s[1] == ':' {
		s = s[2:]
	}
	s = strings.TrimLeft(s, "/")
	parts := strings.Split(s, "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
			continue
		}
		stack = append(stack, part)
	}
	return strings.Join(stack, "/")
}

// Extract unpacks the archive at zipPath into dest, which is created if
// needed. Entries under __MACOSX/ and AppleDouble "._" files are skipped.
// Symlink entries are skipped as well.
func Extract(zipPath, dest string) (Stats, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return Stats{}, fmt.Errorf("open %s: %w", zipPath, err)
	}
	defer zr.Close()
	return ExtractReader(&zr.Reader, dest)
}

// ExtractReader is Extract for an already opened archive.
func ExtractReader(zr *zip.Reader, dest string) (Stats, error) {
	var st Stats
	destAbs, err := filepath.Abs(dest)
	if err != nil {
		return st, err
	}
	if err := os.MkdirAll(destAbs, 0o755); err != nil {
		return st, err
	}
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if fsindex.IsPlatformMetadata(name) {
			st.Skipped++
			continue
		}
		rel := SanitizePath(name)
		if rel == "" {
			st.Skipped++
			continue
		}
		if escapes(name) {
			return st, fmt.Errorf("%w: %q", ErrUnsafePath, f.Name)
		}
		target := filepath.Join(destAbs, filepath.FromSlash(rel))
		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return st, err
			}
		case mode&os.ModeSymlink != 0:
			st.Skipped++
		default:
			n, err := writeEntry(f, target)
			if err != nil {
				return st, fmt.Errorf("extract %s: %w", f.Name, err)
			}
			st.Files++
			st.Bytes += n
		}
	}
	return st, nil
}

func writeEntry(f *zip.File, target string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}
	rc, err := f.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, rc)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// escapes reports whether an entry name is absolute or climbs out of the
// extraction root.
func escapes(name string) bool {
	if strings.HasPrefix(name, "/") || (len(name) > 1 && name[1] == ':') {
		return true
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
