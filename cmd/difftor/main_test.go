package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(pterm.EnableOutput)
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPorcelainPrintsOnlyPath(t *testing.T) {
	oldDir := writeTree(t, map[string]string{"a/x.txt": "v1\n", "keep.txt": "1\n"})
	newDir := writeTree(t, map[string]string{"b/x.txt": "v2\n", "keep.txt": "2\n"})
	outDir := filepath.Join(t.TempDir(), "reports")

	out, err := execute(t, oldDir, newDir, "--porcelain", "-o", outDir)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	path := strings.TrimSpace(out)
	if strings.Contains(path, "\n") {
		t.Fatalf("porcelain output must be a single line, got %q", out)
	}
	if filepath.Dir(path) != outDir || !strings.HasPrefix(filepath.Base(path), "difftor-") {
		t.Fatalf("unexpected report path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	for _, want := range []string{"keep.txt", "a/x.txt → b/x.txt"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("report missing %q", want)
		}
	}
}

func TestUnifiedModeFlag(t *testing.T) {
	oldDir := writeTree(t, map[string]string{"f.txt": "one\n"})
	newDir := writeTree(t, map[string]string{"f.txt": "two\n"})

	out, err := execute(t, oldDir, newDir, "--porcelain", "--mode", "unified", "-o", t.TempDir())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	data, err := os.ReadFile(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), `class="diff-unified"`) {
		t.Fatalf("expected unified rendering")
	}
}

func TestRequiresTwoSources(t *testing.T) {
	if _, err := execute(t, "only-one"); err == nil {
		t.Fatalf("expected error for a single argument")
	}
	if _, err := execute(t); err == nil {
		t.Fatalf("expected error without arguments")
	}
}

func TestUnresolvableSourceFails(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.txt": "a"})
	_, err := execute(t, dir, filepath.Join(t.TempDir(), "missing"), "--porcelain", "-o", t.TempDir())
	if err == nil {
		t.Fatalf("expected resolution error")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Fatalf("error should name the source: %v", err)
	}
}

func TestInvalidModeFails(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, dir, dir, "--mode", "sideways", "--porcelain"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "difftor") {
		t.Fatalf("unexpected version output %q", out)
	}
}
