package fsindex

import (
	"path"
	"strings"
)

const (
	// MetadataDir is the folder macOS archivers add next to the real content.
	MetadataDir = "__MACOSX"
	// ResourceForkPrefix marks AppleDouble resource-fork companions.
	ResourceForkPrefix = "._"
)

// IsPlatformMetadata reports whether a slash-separated relative path is
// archive noise: anything under a top-level MetadataDir, or a file whose base
// name starts with ResourceForkPrefix.
func IsPlatformMetadata(rel string) bool {
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return false
	}
	if firstSegment(rel) == MetadataDir {
		return true
	}
	return strings.HasPrefix(path.Base(rel), ResourceForkPrefix)
}

// TrimFirstSegment strips the first slash-delimited segment of rel. ok is
// false for root-level paths, which have no segment to strip.
func TrimFirstSegment(rel string) (rest string, ok bool) {
	i := strings.IndexByte(rel, '/')
	if i < 0 {
		return "", false
	}
	return rel[i+1:], true
}

func firstSegment(rel string) string {
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		return rel[:i]
	}
	return rel
}
