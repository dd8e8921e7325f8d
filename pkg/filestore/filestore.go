// Package filestore keeps uploaded files on local disk and derives their
// public URLs.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidPath = errors.New("filestore: invalid path")

// Disk stores blobs under root; a blob stored at "drivers/x.png" is served
// at baseURL + "/drivers/x.png".
type Disk struct {
	root    string
	baseURL string
}

func NewDisk(root, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Disk{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (d *Disk) Root() string { return d.root }

// Store writes r under dir with a random name keeping ext, and returns the
// relative path.
func (d *Disk) Store(dir, ext string, r io.Reader) (string, error) {
	dir = filepath.Clean(dir)
	if dir == "." || strings.HasPrefix(dir, "..") || filepath.IsAbs(dir) {
		return "", ErrInvalidPath
	}
	if err := os.MkdirAll(filepath.Join(d.root, dir), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	rel := filepath.ToSlash(filepath.Join(dir, uuid.NewString()+strings.ToLower(ext)))
	f, err := os.OpenFile(filepath.Join(d.root, rel), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return rel, nil
}

// Delete removes a stored blob; a missing blob is not an error.
func (d *Disk) Delete(rel string) error {
	full, err := d.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (d *Disk) Exists(rel string) bool {
	full, err := d.resolve(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

func (d *Disk) URL(rel string) string {
	return d.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(rel), "/")
}

func (d *Disk) resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", ErrInvalidPath
	}
	return filepath.Join(d.root, clean), nil
}
