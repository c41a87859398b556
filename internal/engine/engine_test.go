package engine

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"difftor/internal/report"
	"difftor/internal/source"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return root
}

func generate(t *testing.T, oldFiles, newFiles map[string]string) *report.Document {
	t.Helper()
	return New(DefaultOptions()).GenerateDiff(writeTree(t, oldFiles), writeTree(t, newFiles))
}

func labels(doc *report.Document) []string {
	out := make([]string, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		out = append(out, e.Label)
	}
	return out
}

func paths(items []report.SummaryItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Path)
	}
	return out
}

func TestIdenticalContentNeverReported(t *testing.T) {
	doc := generate(t,
		map[string]string{"same.txt": "x\n", "a/b/deep.txt": "y\n"},
		map[string]string{"same.txt": "x\n", "a/b/deep.txt": "y\n"},
	)
	assert.True(t, doc.Empty())
	assert.NotContains(t, string(doc.Render()), "same.txt")
}

func TestPureRenameIsListedNotDiffed(t *testing.T) {
	doc := generate(t,
		map[string]string{"a/x.txt": "v1"},
		map[string]string{"b/x.txt": "v1"},
	)
	assert.Empty(t, doc.Entries)
	assert.Empty(t, doc.Removed)
	assert.Empty(t, doc.Added)
	assert.Equal(t, []report.RenameItem{{From: "a/x.txt", To: "b/x.txt", Note: "unchanged"}}, doc.Renamed)
}

func TestPureRenameHiddenWhenDisabled(t *testing.T) {
	opt := DefaultOptions()
	opt.ShowPureRenames = false
	doc := New(opt).GenerateDiff(
		writeTree(t, map[string]string{"a/x.txt": "v1"}),
		writeTree(t, map[string]string{"b/x.txt": "v1"}),
	)
	assert.True(t, doc.Empty())
}

func TestRenameWithEdit(t *testing.T) {
	doc := generate(t,
		map[string]string{"a/x.txt": "v1\n"},
		map[string]string{"b/x.txt": "v2\nextra\n"},
	)
	require.Equal(t, []string{"a/x.txt → b/x.txt"}, labels(doc))
	e := doc.Entries[0]
	assert.True(t, e.Renamed)
	assert.Contains(t, e.HTML, "v1")
	assert.Contains(t, e.HTML, "v2")
	assert.Empty(t, doc.Removed)
	assert.Empty(t, doc.Added)
}

func TestBinaryExclusion(t *testing.T) {
	doc := generate(t,
		map[string]string{"img/logo.png": "old-bytes"},
		map[string]string{"img/logo.png": "new-bytes"},
	)
	assert.True(t, doc.Empty())
	assert.NotContains(t, string(doc.Render()), "logo.png")
}

func TestAddRemoveAccounting(t *testing.T) {
	doc := generate(t,
		map[string]string{"only1.txt": "a"},
		map[string]string{"only2.txt": "b"},
	)
	assert.Equal(t, []string{"only1.txt"}, paths(doc.Removed))
	assert.Equal(t, []string{"only2.txt"}, paths(doc.Added))
	assert.Empty(t, doc.Renamed)
	assert.Empty(t, doc.Entries)
}

func TestSummaryItemsCarryNoAnchor(t *testing.T) {
	doc := generate(t,
		map[string]string{"v1/a.txt": "1\n", "same.txt": "x\n", "gone.txt": "g"},
		map[string]string{"v2/a.txt": "2\n3\n", "same.txt": "y\n", "v2/gone.txt": "n"},
	)
	require.Len(t, doc.Entries, 2)
	require.NotEmpty(t, doc.Removed)
	require.NotEmpty(t, doc.Added)
	for _, it := range append(doc.Removed, doc.Added...) {
		assert.Empty(t, it.Anchor, it.Path)
	}
	out := string(doc.Render())
	assert.Contains(t, out, "<li>gone.txt</li>")
	assert.Contains(t, out, "<li>v2/gone.txt</li>")
}

func TestEntryOrderChangedThenRenamed(t *testing.T) {
	doc := generate(t,
		map[string]string{
			"v1/z.txt":  "old z\n",
			"v1/a.txt":  "old a\n",
			"shared.md": "one\n",
			"common.md": "uno\n",
		},
		map[string]string{
			"v2/z.txt":  "new z\n",
			"v2/a.txt":  "new a\n",
			"shared.md": "two\n",
			"common.md": "dos\n",
		},
	)
	assert.Equal(t, []string{
		"common.md",
		"shared.md",
		"v1/a.txt → v2/a.txt",
		"v1/z.txt → v2/z.txt",
	}, labels(doc))
}

func TestAnchorStabilityAcrossRuns(t *testing.T) {
	oldDir := writeTree(t, map[string]string{"p/a.txt": "1\n", "keep.txt": "k1\n", "gone.txt": "g"})
	newDir := writeTree(t, map[string]string{"q/a.txt": "2\n", "keep.txt": "k2\n", "new.txt": "n"})

	first := New(DefaultOptions()).GenerateDiff(oldDir, newDir)
	second := New(DefaultOptions()).GenerateDiff(oldDir, newDir)

	assert.Equal(t, first.Render(), second.Render())
	idRe := regexp.MustCompile(`^file_[0-9a-f]{32}_`)
	seen := map[string]bool{}
	for i, e := range first.Entries {
		assert.Equal(t, e.ID, second.Entries[i].ID)
		assert.Regexp(t, idRe, e.ID)
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestMissingTreeDegradesToAllAdded(t *testing.T) {
	newDir := writeTree(t, map[string]string{"a.txt": "a", "d/b.txt": "b"})
	doc := New(DefaultOptions()).GenerateDiff(filepath.Join(t.TempDir(), "missing"), newDir)
	assert.Equal(t, []string{"a.txt", "d/b.txt"}, paths(doc.Added))
	assert.Empty(t, doc.Removed)
	assert.Empty(t, doc.Entries)
}

func TestReadFailureExcludesFileOnly(t *testing.T) {
	opt := DefaultOptions()
	opt.Read = func(abs string) ([]byte, error) {
		if strings.HasSuffix(abs, "broken.txt") {
			return nil, errors.New("permission denied")
		}
		return os.ReadFile(abs)
	}
	doc := New(opt).GenerateDiff(
		writeTree(t, map[string]string{"broken.txt": "1", "ok.txt": "1"}),
		writeTree(t, map[string]string{"broken.txt": "2", "ok.txt": "2"}),
	)
	assert.Equal(t, []string{"ok.txt"}, labels(doc))
}

func TestChangesExposesPartition(t *testing.T) {
	cs := New(DefaultOptions()).Changes(
		writeTree(t, map[string]string{"both.txt": "1", "old.txt": "o"}),
		writeTree(t, map[string]string{"both.txt": "1", "new.txt": "n"}),
	)
	assert.Equal(t, []string{"both.txt"}, cs.BothPresent)
	assert.Equal(t, []string{"old.txt"}, cs.OnlyInOld)
	assert.Equal(t, []string{"new.txt"}, cs.OnlyInNew)
	assert.Empty(t, cs.Changed)
}

func writeZipFile(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestServiceCompareWritesReportAndCleansUp(t *testing.T) {
	tmpRoot := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "reports")
	oldZip := writeZipFile(t, map[string]string{"plugin-1.0/main.php": "<?php echo 1;\n"})
	newDir := writeTree(t, map[string]string{"plugin-1.1/main.php": "<?php echo 2;\n"})

	svc := &Service{
		Engine:   New(DefaultOptions()),
		Resolver: &source.Resolver{TempDir: tmpRoot},
	}
	res, err := svc.Compare(context.Background(), oldZip, newDir, outDir)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Entries)
	assert.Equal(t, outDir, filepath.Dir(res.Path))

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "plugin-1.0/main.php → plugin-1.1/main.php")

	entries, err := os.ReadDir(tmpRoot)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary extraction dir must be removed")
	_, err = os.Stat(newDir)
	assert.NoError(t, err, "user directory must be kept")
}

func TestServiceCleansUpWhenSecondResolveFails(t *testing.T) {
	tmpRoot := t.TempDir()
	oldZip := writeZipFile(t, map[string]string{"a/x.txt": "x"})

	svc := &Service{
		Engine:   New(DefaultOptions()),
		Resolver: &source.Resolver{TempDir: tmpRoot},
	}
	_, err := svc.Compare(context.Background(), oldZip, filepath.Join(t.TempDir(), "missing"), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, source.ErrUnsupportedSource))

	entries, err := os.ReadDir(tmpRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestServiceCleansUpWhenWriteFails(t *testing.T) {
	tmpRoot := t.TempDir()
	oldZip := writeZipFile(t, map[string]string{"a/x.txt": "x"})
	newZip := writeZipFile(t, map[string]string{"b/x.txt": "y"})
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	svc := &Service{
		Engine:   New(DefaultOptions()),
		Resolver: &source.Resolver{TempDir: tmpRoot},
	}
	_, err := svc.Compare(context.Background(), oldZip, newZip, filepath.Join(blocker, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write report")

	entries, err := os.ReadDir(tmpRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
