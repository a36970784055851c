package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// Local stores files flat under a root directory on the local filesystem.
//
// No locking is done across operations. Two concurrent Saves of the same name
// are settled by O_EXCL: exactly one wins and the others get ErrAlreadyExists.
type Local struct {
	root string
}

// Ensure Local implements Storage
var _ Storage = (*Local)(nil)

// NewLocal creates a Local backend rooted at root and runs Init.
func NewLocal(root string) (*Local, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %q: %w", ErrInit, root, err)
	}
	l := &Local{root: absRoot}
	if err := l.Init(); err != nil {
		return nil, err
	}
	return l, nil
}

// Root returns the absolute root directory.
func (l *Local) Root() string { return l.root }

// Init creates the root directory and its parents. It fails when the path is
// occupied by something that is not a directory.
func (l *Local) Init() error {
	if err := os.MkdirAll(l.root, 0o750); err != nil {
		return fmt.Errorf("%w: %w", ErrInit, err)
	}
	return nil
}

// resolve maps a file name to its path under root. Names must be a single
// path element.
func (l *Local) resolve(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return "", fmt.Errorf("%w %q", ErrInvalidName, name)
	}
	p := filepath.Join(l.root, name)
	rel, err := filepath.Rel(l.root, p)
	if err != nil || rel != name {
		return "", fmt.Errorf("%w %q", ErrInvalidName, name)
	}
	return p, nil
}

// Save streams r into a new file. The destination is created with O_EXCL so
// an existing file is never touched; on any failure the partial file is
// removed.
func (l *Local) Save(ctx context.Context, name string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	dest, err := l.resolve(name)
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, ErrAlreadyExists
		}
		return 0, fmt.Errorf("create %q: %w", name, err)
	}

	n, werr := io.Copy(f, &contextReader{ctx: ctx, r: r})
	cerr := f.Close()

	if werr != nil {
		os.Remove(dest) //nolint:errcheck
		return 0, fmt.Errorf("stream write %q: %w", name, werr)
	}
	if cerr != nil {
		os.Remove(dest) //nolint:errcheck
		return 0, fmt.Errorf("flush %q: %w", name, cerr)
	}

	logrus.WithFields(logrus.Fields{
		"file": name,
		"size": humanize.Bytes(uint64(n)),
	}).Info("stored file")
	return n, nil
}

// Load opens a stored file. Missing, unreadable and directory entries all
// report ErrNotFound.
func (l *Local) Load(ctx context.Context, name string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := l.resolve(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open %q: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %q: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}

	return &Object{
		File: File{
			Name:    name,
			Path:    p,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		},
		ReadSeekCloser: f,
	}, nil
}

// List rescans the root on every call, so the result is always current and
// can be requested again at will. Names come back in ascending byte order
// (os.ReadDir sorts) but callers should not depend on that. Directories are
// skipped. A missing root, e.g. after DeleteAll, lists as empty.
func (l *Local) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(l.root)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not load the files: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Delete removes a file. Absence is reported as (false, nil).
func (l *Local) Delete(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p, err := l.resolve(name)
	if err != nil {
		return false, err
	}

	info, err := os.Lstat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %q: %w", name, err)
	}
	if info.IsDir() {
		return false, nil
	}

	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("remove %q: %w", name, err)
	}

	logrus.WithField("file", name).Info("deleted file")
	return true, nil
}

// DeleteAll removes the root directory tree. Init must run again before the
// next Save.
func (l *Local) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.RemoveAll(l.root); err != nil {
		return fmt.Errorf("remove storage root: %w", err)
	}
	logrus.WithField("root", l.root).Info("cleared storage root")
	return nil
}

// Last returns the greatest name by plain string comparison. This is not the
// most recently written file: "2023-2.png" sorts after "2023-10.png".
func (l *Local) Last(ctx context.Context) (string, bool, error) {
	names, err := l.List(ctx)
	if err != nil {
		return "", false, err
	}
	if len(names) == 0 {
		return "", false, nil
	}
	return slices.Max(names), true, nil
}

// contextReader fails the next Read once ctx is done, so an aborted request
// stops a long copy.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
