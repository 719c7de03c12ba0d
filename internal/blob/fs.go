package blob

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
)

var _ Store = (*FSStore)(nil)

// FSStore is a Store backed by a local directory, served under a base URL.
type FSStore struct {
	dir     string
	baseURL string
}

// NewFSStore creates an FSStore rooted at dir. Objects are addressed as
// baseURL + "/" + key.
func NewFSStore(dir, baseURL string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create media dir")
	}
	return &FSStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Put writes the object to disk and returns its public URL. Keys must be
// plain file names; path traversal is rejected.
func (s *FSStore) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if key == "" || key != filepath.Base(key) {
		return "", errors.Errorf("invalid blob key %q", key)
	}

	f, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", errors.Wrap(err, "create temp file")
	}
	tmp := f.Name()
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", errors.Wrap(err, "write blob")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", errors.Wrap(err, "close blob")
	}

	// Rename makes the final object visible atomically.
	if err := os.Rename(tmp, filepath.Join(s.dir, key)); err != nil {
		_ = os.Remove(tmp)
		return "", errors.Wrap(err, "publish blob")
	}

	return s.baseURL + "/" + url.PathEscape(key), nil
}
