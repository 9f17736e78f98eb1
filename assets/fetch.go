package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
)

// ProgressFunc is called as an asset downloads. total is -1 when the size isn't known ahead of time.
type ProgressFunc func(loaded, total int64)

// Fetcher retrieves the raw bytes of an asset.
type Fetcher interface {
	Fetch(ctx context.Context, source string, progress ProgressFunc) ([]byte, error)
}

// ErrHTTPStatus is wrapped by HTTPFetcher errors for responses other than 200 OK.
var ErrHTTPStatus = errors.New("unexpected http status")

// HTTPFetcher fetches assets over HTTP(S).
type HTTPFetcher struct {
	Client *http.Client // If nil, http.DefaultClient is used.
}

// Fetch downloads source, reporting progress as the body is read.
func (f *HTTPFetcher) Fetch(ctx context.Context, source string, progress ProgressFunc) ([]byte, error) {

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	return readAll(resp.Body, resp.ContentLength, progress)

}

// FileFetcher loads assets from a file system. Sources are slash-separated paths; a leading "./" or "/" is ignored.
type FileFetcher struct {
	FS fs.FS
}

// NewFileFetcher returns a FileFetcher rooted at the directory given.
func NewFileFetcher(dir string) *FileFetcher {
	return &FileFetcher{FS: os.DirFS(dir)}
}

// Fetch reads source from the FileFetcher's file system.
func (f *FileFetcher) Fetch(ctx context.Context, source string, progress ProgressFunc) ([]byte, error) {

	name := strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(source, "file://")), "/")

	file, err := f.FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	total := int64(-1)
	if info, err := file.Stat(); err == nil {
		total = info.Size()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return readAll(file, total, progress)

}

// SchemeFetcher routes http:// and https:// sources to HTTP, and everything else to File.
type SchemeFetcher struct {
	HTTP Fetcher
	File Fetcher
}

// Fetch retrieves source through the Fetcher matching its scheme.
func (f *SchemeFetcher) Fetch(ctx context.Context, source string, progress ProgressFunc) ([]byte, error) {
	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return f.HTTP.Fetch(ctx, source, progress)
	}
	return f.File.Fetch(ctx, source, progress)
}

const readChunkSize = 32 * 1024

func readAll(r io.Reader, total int64, progress ProgressFunc) ([]byte, error) {

	buf := &bytes.Buffer{}
	if total > 0 {
		buf.Grow(int(total))
	}

	chunk := make([]byte, readChunkSize)
	loaded := int64(0)

	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			loaded += int64(n)
			if progress != nil {
				progress(loaded, total)
			}
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}

}
