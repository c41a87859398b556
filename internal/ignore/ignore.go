// Package ignore decides which files are excluded from textual diffing
// because their extension marks them as binary (images, archives, fonts,
// office documents).
package ignore

import (
	"path/filepath"
	"strings"
)

// DefaultExtensions lists the binary formats that are never diffed.
var DefaultExtensions = []string{
	"7z", "ai", "avi", "bmp", "doc", "docx", "eot", "flv", "gif", "gz",
	"ico", "jpeg", "jpg", "mov", "mp3", "mp4", "otf", "pdf", "png", "ppt",
	"pptx", "psd", "rar", "sketch", "svg", "tar", "ttf", "webp", "wmv",
	"woff", "woff2", "xls", "xlsx", "zip",
}

// Filter is an immutable set of ignored extensions. The zero value ignores
// nothing.
type Filter struct {
	exts map[string]struct{}
}

// New builds a Filter from extensions given with or without a leading dot,
// in any case. Empty entries are skipped.
func New(exts ...string) Filter {
	m := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = normalize(e)
		if e != "" {
			m[e] = struct{}{}
		}
	}
	return Filter{exts: m}
}

// Default returns a Filter over DefaultExtensions plus any extras.
func Default(extra ...string) Filter {
	all := make([]string, 0, len(DefaultExtensions)+len(extra))
	all = append(all, DefaultExtensions...)
	all = append(all, extra...)
	return New(all...)
}

// Ignored reports whether path's final dot-delimited suffix is in the set.
func (f Filter) Ignored(path string) bool {
	if len(f.exts) == 0 {
		return false
	}
	ext := normalize(filepath.Ext(path))
	if ext == "" {
		return false
	}
	_, ok := f.exts[ext]
	return ok
}

// Len returns the number of distinct extensions in the filter.
func (f Filter) Len() int { return len(f.exts) }

func normalize(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
