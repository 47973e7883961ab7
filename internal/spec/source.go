package spec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// Source identifies a document: a local path, a file:// URI or an
// http(s):// URI.
type Source string

func (s Source) String() string { return string(s) }

// URL returns the location of s. Anything that is not a file, http or
// https URI is a path and becomes an absolute file URL, so "c:spec.yaml"
// and "ab:c.yaml" name files.
func (s Source) URL() (*url.URL, error) {
	if u, err := url.Parse(string(s)); err == nil {
		switch u.Scheme {
		case "file", "http", "https":
			return u, nil
		}
	}
	abs, err := filepath.Abs(string(s))
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
}

// IsRemote reports whether s is fetched over HTTP.
func (s Source) IsRemote() bool {
	u, err := s.URL()
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// Reader fetches raw document bytes and classifies failures.
type Reader struct {
	Client *http.Client
}

// NewReader returns a Reader using client, or http.DefaultClient when nil.
func NewReader(client *http.Client) *Reader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Reader{Client: client}
}

// Read returns the bytes behind src.
func (r *Reader) Read(ctx context.Context, src Source) ([]byte, error) {
	if src == "" {
		return nil, &Error{Kind: ErrEmptySource, Source: src}
	}
	u, err := src.URL()
	if err != nil {
		return nil, &Error{Kind: ErrIO, Source: src, Err: err}
	}
	return r.readURL(ctx, src, u)
}

func (r *Reader) readURL(ctx context.Context, src Source, u *url.URL) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextError(src, err)
	}
	switch u.Scheme {
	case "", "file":
		return readFile(src, filepath.FromSlash(u.Path))
	case "http", "https":
		return r.readHTTP(ctx, src, u)
	default:
		return nil, &Error{Kind: ErrIO, Source: src, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
}

func readFile(src Source, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Kind: ErrNotFound, Source: src, Err: err}
		}
		return nil, &Error{Kind: ErrIO, Source: src, Err: fmt.Errorf("read file: %w", err)}
	}
	return data, nil
}

func (r *Reader) readHTTP(ctx context.Context, src Source, u *url.URL) (data []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{Kind: ErrIO, Source: src, Err: fmt.Errorf("create request: %w", err)}
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, contextError(src, ctx.Err())
		}
		return nil, &Error{Kind: ErrIO, Source: src, Err: fmt.Errorf("fetch: %w", err)}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = &Error{Kind: ErrIO, Source: src, Err: fmt.Errorf("close body: %w", closeErr)}
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		return nil, &Error{Kind: ErrNotFound, Source: src, Err: fmt.Errorf("status %s", resp.Status)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &Error{Kind: ErrIO, Source: src, Err: fmt.Errorf("status %s", resp.Status)}
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, contextError(src, ctx.Err())
		}
		return nil, &Error{Kind: ErrIO, Source: src, Err: fmt.Errorf("read body: %w", err)}
	}
	return data, nil
}

// contextError maps an expired deadline to ErrTimeout. Cancellation is
// not a timeout and stays an ErrIO.
func contextError(src Source, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: ErrTimeout, Source: src, Err: err}
	}
	return &Error{Kind: ErrIO, Source: src, Err: err}
}
