// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package blob provides storage for uploaded binary content, currently
// profile images. The auth core only ever sees opaque references; how a
// reference turns into bytes or a URL is this package's business.
package blob

import (
	"context"
	"io"
)

// Store persists blobs and resolves their references to retrievable
// addresses.
type Store interface {
	// Store writes the blob and returns its reference.
	Store(ctx context.Context, r io.Reader, contentType string) (string, error)

	// Delete removes the blob behind the reference. Deleting an unknown
	// reference is not an error.
	Delete(ctx context.Context, ref string) error

	// Resolve returns an address a client can fetch the blob from.
	Resolve(ctx context.Context, ref string) (string, error)
}

// extensionFor maps the content types accepted for profile images to file
// extensions. Unknown types get ".bin" rather than an error; the upload
// validation layer decides what is acceptable, not storage.
func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
