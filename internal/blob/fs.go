// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package blob

import (
	"context"
	"crypto/rand"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// FSStore keeps blobs on the local filesystem under a base directory and
// resolves references by joining them onto a public base URL. It is the
// default store for development and single-node deployments.
type FSStore struct {
	baseDir string
	baseURL string
}

var _ Store = (*FSStore)(nil)

// NewFSStore creates the base directory if needed.
func NewFSStore(baseDir, baseURL string) (*FSStore, error) {
	if baseDir == "" {
		return nil, oops.Code("BLOB_CONFIG").Errorf("base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, oops.Code("BLOB_IO").With("dir", baseDir).Wrap(err)
	}
	return &FSStore{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Store writes the blob to a freshly named file and returns its reference.
func (s *FSStore) Store(ctx context.Context, r io.Reader, contentType string) (string, error) {
	_ = ctx

	ref := ulid.MustNew(ulid.Now(), rand.Reader).String() + extensionFor(contentType)

	f, err := os.OpenFile(filepath.Join(s.baseDir, ref), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", oops.Code("BLOB_IO").With("ref", ref).Wrap(err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", oops.Code("BLOB_IO").With("ref", ref).Wrap(err)
	}
	if err := f.Close(); err != nil {
		return "", oops.Code("BLOB_IO").With("ref", ref).Wrap(err)
	}
	return ref, nil
}

// Delete removes the file behind the reference. Unknown references are a
// no-op.
func (s *FSStore) Delete(ctx context.Context, ref string) error {
	_ = ctx

	p, err := s.localPath(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return oops.Code("BLOB_IO").With("ref", ref).Wrap(err)
	}
	return nil
}

// Resolve joins the reference onto the configured base URL.
func (s *FSStore) Resolve(ctx context.Context, ref string) (string, error) {
	_ = ctx

	if _, err := s.localPath(ref); err != nil {
		return "", err
	}
	return s.baseURL + "/" + ref, nil
}

// localPath validates the reference and returns its filesystem path.
// References never contain separators, so anything that escapes the base
// directory is rejected.
func (s *FSStore) localPath(ref string) (string, error) {
	if ref == "" || ref != path.Base(ref) || strings.Contains(ref, "..") {
		return "", oops.Code("BLOB_REF").With("ref", ref).Errorf("invalid blob reference")
	}
	return filepath.Join(s.baseDir, ref), nil
}
