package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTool prefixes report filenames.
const DefaultTool = "difftor"

const maxNameAttempts = 5

// DefaultOutputDir is <system temp>/difftor.
func DefaultOutputDir() string {
	return filepath.Join(os.TempDir(), DefaultTool)
}

// Writer stores rendered documents as <tool>-<YYYYMMDD-HHMMSS>-<suffix>.html.
// Now and Suffix are replaceable for tests.
type Writer struct {
	Tool   string
	Now    func() time.Time
	Suffix func() string
}

// NewWriter returns a Writer using the wall clock and random uuid suffixes.
func NewWriter() *Writer {
	return &Writer{Tool: DefaultTool, Now: time.Now, Suffix: randomSuffix}
}

// Write renders doc into dir, creating dir if needed, and returns the path of
// the new file. The file appears atomically.
func (w *Writer) Write(dir string, doc *Document) (string, error) {
	if dir == "" {
		dir = DefaultOutputDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	target, err := w.claimName(dir)
	if err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := writeFileAtomic(target, doc.Render()); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("write report: %w", err)
	}
	return target, nil
}

// Filename returns the report filename for the given time and suffix.
func (w *Writer) Filename(t time.Time, suffix string) string {
	tool := w.Tool
	if tool == "" {
		tool = DefaultTool
	}
	return fmt.Sprintf("%s-%s-%s.html", tool, t.Format("20060102-150405"), suffix)
}

// claimName reserves a free report name in dir by creating it empty with
// O_EXCL. The caller replaces the placeholder with the real content.
func (w *Writer) claimName(dir string) (string, error) {
	now, suffix := w.Now, w.Suffix
	if now == nil {
		now = time.Now
	}
	if suffix == nil {
		suffix = randomSuffix
	}
	t := now()
	for i := 0; i < maxNameAttempts; i++ {
		p := filepath.Join(dir, w.Filename(t, suffix()))
		f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(p)
			return "", err
		}
		return p, nil
	}
	return "", errors.New("no free report filename")
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func writeFileAtomic(target string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(target), ".tmp-"+filepath.Base(target)+"-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
