// Package storage keeps uploaded files as direct children of a single root
// directory. Swap implementations by changing the concrete type injected at
// startup; handlers only see the Storage interface.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrInit is returned when the root directory cannot be created.
	ErrInit = errors.New("could not initialize folder for upload")

	// ErrAlreadyExists is returned by Save when the name is taken.
	ErrAlreadyExists = errors.New("a file of that name already exists")

	// ErrNotFound is returned when a file does not exist or cannot be read.
	ErrNotFound = errors.New("could not read the file")

	// ErrInvalidName is returned for empty names and names that would resolve
	// outside the root directory.
	ErrInvalidName = errors.New("invalid file name")
)

// File describes a stored file.
type File struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Object is an open stored file. Caller must Close it.
type Object struct {
	File
	io.ReadSeekCloser
}

// Storage is the interface for saving and retrieving files by name.
//
// Any error that does not match one of the sentinels above is an unexpected
// I/O failure.
type Storage interface {
	// Init creates the root directory if it is missing. Idempotent.
	Init() error
	// Save streams r to a new file called name. It never overwrites.
	Save(ctx context.Context, name string, r io.Reader) (int64, error)
	// Load opens the file called name for reading.
	Load(ctx context.Context, name string) (*Object, error)
	// List returns the names of all files directly under the root.
	List(ctx context.Context) ([]string, error)
	// Delete removes the file called name and reports whether it existed.
	Delete(ctx context.Context, name string) (bool, error)
	// DeleteAll removes the root directory and everything in it.
	DeleteAll(ctx context.Context) error
	// Last returns the lexicographically greatest file name, if any.
	Last(ctx context.Context) (string, bool, error)
}
