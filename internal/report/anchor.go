package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pterm/pterm"
	"github.com/zeebo/xxh3"
)

var (
	slugReplacer = strings.NewReplacer(
		"\\", "_", "/", "_", " ", "_", ":", "_", ".", "_", "-", "_", "→", "_",
	)
	nonSlugRe = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

// StableID derives the anchor id of a display label:
// "file_" + 128-bit xxh3 of the label in hex + "_" + a sanitized slug.
// The result depends on the label alone.
func StableID(label string) string {
	h := xxh3.HashString128(label)
	return fmt.Sprintf("file_%016x%016x_%s", h.Hi, h.Lo, slug(label))
}

func slug(label string) string {
	return nonSlugRe.ReplaceAllString(slugReplacer.Replace(label), "")
}

// idSet hands out anchor ids that are unique within one document.
type idSet struct {
	used map[string]string // id -> label
}

func newIDSet() *idSet { return &idSet{used: make(map[string]string)} }

// claim returns StableID(label), suffixed with -2, -3, ... if another label
// already took that id.
func (s *idSet) claim(label string) string {
	base := StableID(label)
	id := base
	for n := 2; ; n++ {
		prev, taken := s.used[id]
		if !taken {
			break
		}
		pterm.Warning.Printfln("anchor collision: %q and %q share %s", prev, label, id)
		id = fmt.Sprintf("%s-%d", base, n)
	}
	s.used[id] = label
	return id
}
