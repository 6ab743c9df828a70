package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalDisk is the local-filesystem driver. Files are served back under
// baseURL by the HTTP kernel.
type LocalDisk struct {
	root    string // absolute root directory
	baseURL string // public URL prefix for URL()
}

func NewLocalDisk(root, baseURL string) (*LocalDisk, error) {
	if root == "" {
		root = "storage"
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage/local: resolve %s: %w", root, err)
	}
	return &LocalDisk{root: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root is the directory files are written under.
func (d *LocalDisk) Root() string { return d.root }

// abs resolves path inside root; ".." segments cannot escape it.
func (d *LocalDisk) abs(path string) string {
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	return filepath.Join(d.root, clean)
}

func (d *LocalDisk) Put(_ context.Context, path string, r io.Reader, _ string) error {
	full := d.abs(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("storage/local: create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("storage/local: write %s: %w", path, err)
	}
	return f.Close()
}

func (d *LocalDisk) Exists(_ context.Context, path string) bool {
	_, err := os.Stat(d.abs(path))
	return err == nil
}

func (d *LocalDisk) Delete(_ context.Context, path string) error {
	err := os.Remove(d.abs(path))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage/local: delete %s: %w", path, err)
	}
	return nil
}

func (d *LocalDisk) URL(path string) string {
	return d.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(path), "/")
}
