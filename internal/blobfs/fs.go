// Package blobfs stores clip attachments (images, PDFs, office files) as
// content-addressed files under one root directory.
package blobfs

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yiblet/clipvault/internal/store"
)

const (
	ConfigDir      = ".config/clipvault"
	DefaultBlobDir = "blobs"
)

// BlobFS is a filesystem rooted at the attachment directory.
type BlobFS struct {
	root string
}

// New creates a BlobFS.
// If blobPath is empty, uses ~/.config/clipvault/blobs/.
// If blobPath is absolute, uses it directly.
// If blobPath is relative, treats it as a subdirectory of ~/.config/clipvault/.
func New(blobPath string) (*BlobFS, error) {
	var dir string
	if filepath.IsAbs(blobPath) {
		dir = blobPath
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		if blobPath == "" {
			blobPath = DefaultBlobDir
		}
		dir = filepath.Join(homeDir, ConfigDir, blobPath)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &BlobFS{root: dir}, nil
}

// NewWithRoot creates a BlobFS with a custom root (for testing)
func NewWithRoot(root string) *BlobFS {
	return &BlobFS{root: root}
}

// Open implements fs.FS
func (b *BlobFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return os.Open(filepath.Join(b.root, name))
}

// ReadDir implements fs.ReadDirFS
func (b *BlobFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	return os.ReadDir(filepath.Join(b.root, name))
}

// Put writes data under kind/ named by its sha256 and returns the absolute
// path. Writing the same bytes twice yields the same path.
func (b *BlobFS) Put(kind string, data []byte, ext string) (string, error) {
	if kind == "" || !fs.ValidPath(kind) {
		return "", &fs.PathError{Op: "put", Path: kind, Err: fs.ErrInvalid}
	}
	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:16])
	if ext != "" {
		name += "." + strings.TrimPrefix(ext, ".")
	}

	dir := filepath.Join(b.root, kind)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	full := filepath.Join(dir, name)
	if _, err := os.Stat(full); err == nil {
		return full, nil
	}

	tmp, err := os.CreateTemp(dir, ".blob-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return full, nil
}

// Owns reports whether path lies inside the root.
func (b *BlobFS) Owns(path string) bool {
	if path == "" {
		return false
	}
	rel, err := filepath.Rel(b.root, path)
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)
}

// RemoveClip deletes the attachments of c that live inside the root. Files
// elsewhere, such as copied file paths, are never touched. Missing files are
// ignored.
func (b *BlobFS) RemoveClip(c *store.Clip) error {
	var errs []error
	for _, p := range []string{c.ImagePath, c.SVGPath, c.PDFPath, c.OfficePath} {
		if !b.Owns(p) {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// Root returns the root directory path
func (b *BlobFS) Root() string {
	return b.root
}
