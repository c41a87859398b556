package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"difftor/internal/ziputil"
)

var (
	// ErrUnsupportedSource means the string is neither a URL, an existing
	// directory, nor an existing .zip file.
	ErrUnsupportedSource = errors.New("not a URL, directory or .zip file")
	// ErrEmptyArchive is returned for zero-byte archives and downloads.
	ErrEmptyArchive = errors.New("archive is empty")
	// ErrHTTPStatus is returned when a download answers with a non-200 status.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
)

// ResolutionError reports a source that could not be turned into a directory.
type ResolutionError struct {
	Source string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("prepare source %s: %v", e.Source, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Source is a resolved, fully populated directory tree.
type Source struct {
	Dir       string
	Temporary bool
	Origin    string
	Kind      Kind
}

// Cleanup removes Dir when the resolver created it. It is a no-op for
// user-owned directories and safe to call more than once.
func (s Source) Cleanup() error {
	if !s.Temporary || s.Dir == "" {
		return nil
	}
	return os.RemoveAll(s.Dir)
}

// DefaultTimeout bounds a single download.
const DefaultTimeout = 5 * time.Minute

// Resolver prepares sources. The zero value is usable.
type Resolver struct {
	Client    *http.Client
	TempDir   string        // parent for extraction dirs; "" means os.TempDir()
	Timeout   time.Duration // per download; 0 means DefaultTimeout
	UserAgent string
}

// Resolve turns ref into a local directory.
func (r *Resolver) Resolve(ctx context.Context, ref string) (Source, error) {
	path := NormalizePath(ref)
	kind := Classify(path)
	var (
		src Source
		err error
	)
	switch kind {
	case KindURL:
		src, err = r.download(ctx, path)
	case KindDirectory:
		src = Source{Dir: path}
	case KindArchive:
		src, err = r.extract(path)
	default:
		err = ErrUnsupportedSource
	}
	if err != nil {
		return Source{}, &ResolutionError{Source: ref, Err: err}
	}
	src.Origin = ref
	src.Kind = kind
	pterm.Debug.Printfln("resolved %s (%s) -> %s", ref, kind, src.Dir)
	return src, nil
}

func (r *Resolver) download(ctx context.Context, rawURL string) (Source, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Source{}, err
	}
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Source{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Source{}, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	spool, err := os.CreateTemp(r.TempDir, "difftor_zip_*.zip")
	if err != nil {
		return Source{}, fmt.Errorf("create download file: %w", err)
	}
	defer os.Remove(spool.Name())
	n, err := io.Copy(spool, resp.Body)
	if cerr := spool.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Source{}, fmt.Errorf("download: %w", err)
	}
	pterm.Debug.Printfln("downloaded %s (%s)", rawURL, humanize.Bytes(uint64(n)))
	return r.extract(spool.Name())
}

func (r *Resolver) extract(zipPath string) (Source, error) {
	info, err := os.Stat(zipPath)
	if err != nil {
		return Source{}, err
	}
	if info.Size() == 0 {
		return Source{}, ErrEmptyArchive
	}
	dir, err := os.MkdirTemp(r.TempDir, "difftor_")
	if err != nil {
		return Source{}, fmt.Errorf("create extraction dir: %w", err)
	}
	st, err := ziputil.Extract(zipPath, dir)
	if err != nil {
		_ = os.RemoveAll(dir)
		return Source{}, err
	}
	pterm.Debug.Printfln("extracted %d files (%s), skipped %d metadata entries",
		st.Files, humanize.Bytes(uint64(st.Bytes)), st.Skipped)
	return Source{Dir: dir, Temporary: true}, nil
}
