// Package source turns user-supplied source strings (URL, local directory or
// local zip archive) into local directory snapshots the diff engine can read.
package source

import (
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Kind classifies a source string.
type Kind int

const (
	KindUnknown Kind = iota
	KindURL
	KindDirectory
	KindArchive
)

func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindDirectory:
		return "directory"
	case KindArchive:
		return "archive"
	default:
		return "unknown"
	}
}

var windowsAbsRe = regexp.MustCompile(`^[A-Za-z]:[\\/]`)

// Classify reports what kind of source path names. URLs are recognized
// syntactically; directories and archives must exist on disk.
func Classify(path string) Kind {
	switch {
	case IsURL(path):
		return KindURL
	case IsLocalDirectory(path):
		return KindDirectory
	case IsLocalArchive(path):
		return KindArchive
	default:
		return KindUnknown
	}
}

// IsURL reports whether s is an absolute http(s) URL with a host.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return true
	}
	return false
}

// IsAbsolutePath recognizes Unix absolute paths as well as Windows drive
// (C:\) and UNC (\\server) forms regardless of the host OS.
func IsAbsolutePath(p string) bool {
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\\`) {
		return true
	}
	return windowsAbsRe.MatchString(p) || filepath.IsAbs(p)
}

// IsLocalDirectory reports whether p is an existing directory.
func IsLocalDirectory(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// IsLocalArchive reports whether p is an existing regular file with a .zip
// extension (any case).
func IsLocalArchive(p string) bool {
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return strings.EqualFold(filepath.Ext(p), ".zip")
}

// NormalizePath trims s, expands a leading "~" to the home directory and
// makes relative local paths absolute. URLs are returned trimmed only.
func NormalizePath(s string) string {
	p := strings.TrimSpace(s)
	if p == "" || IsURL(p) {
		return p
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			p = home + p[1:]
		}
	}
	if !IsAbsolutePath(p) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
	}
	return p
}
