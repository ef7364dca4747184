// Package storage saves uploaded report photos on local disk or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidName is returned for names that would escape the storage root.
var ErrInvalidName = errors.New("invalid storage name")

// PublicPrefix is the mount point of the static route serving Local files.
const PublicPrefix = "uploads"

// Local writes files below Root.  Returned paths are relative to the static
// mount whatever Root is, e.g. uploads/work_reports/3/<uuid>.jpg.
type Local struct {
	Root string
}

func NewLocal(root string) *Local { return &Local{Root: root} }

// Save creates namespace/name exclusively and copies r into it.  A partial
// file is removed when the copy fails.
func (l *Local) Save(ctx context.Context, namespace, name string, r io.Reader) (string, error) {
	if err := checkName(namespace, name); err != nil {
		return "", err
	}
	dir := filepath.Join(l.Root, filepath.FromSlash(namespace))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	full := filepath.Join(dir, name)
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", full, err)
	}
	_, err = io.Copy(f, readerWithContext(ctx, r))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("write %s: %w", full, err)
	}
	return path.Join(PublicPrefix, namespace, name), nil
}

func checkName(namespace, name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return ErrInvalidName
	}
	for _, part := range strings.Split(namespace, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrInvalidName
		}
	}
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
