// Package files exposes the stored files over HTTP: upload, listing,
// download, deletion and a QR code pointing at the last file.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/fileshelf/service/internal/qrcode"
	"github.com/fileshelf/service/internal/storage"
)

// ErrNoFiles is returned when a QR code is requested but nothing is stored.
var ErrNoFiles = errors.New("no files have been uploaded")

// FileInfo is the listing view of a stored file.
type FileInfo struct {
	Name string `json:"filename" example:"report.pdf"`
	URL  string `json:"url"      example:"http://localhost:8080/files/report.pdf"`
}

// QRCode is the payload of GET /qrcode.
type QRCode struct {
	Filename    string `json:"filename"    example:"2024-05-01-photo.png"`
	URL         string `json:"url"         example:"http://localhost:8080/files/2024-05-01-photo.png"`
	ContentType string `json:"contentType" example:"image/png"`
	Image       string `json:"image"       example:"iVBORw0KGgoAAAANSUhEUgAA..."`
}

// Service contains the file operations behind the HTTP handlers.
type Service struct {
	store   storage.Storage
	encoder qrcode.Encoder
	qrSize  int
}

// NewService creates a new files Service. qrSize is the width and height of
// generated QR images in pixels.
func NewService(store storage.Storage, encoder qrcode.Encoder, qrSize int) *Service {
	return &Service{store: store, encoder: encoder, qrSize: qrSize}
}

// Upload stores r under name. It fails with storage.ErrAlreadyExists if the
// name is taken.
func (s *Service) Upload(ctx context.Context, name string, r io.Reader) (int64, error) {
	return s.store.Save(ctx, name, r)
}

// List returns every stored file with its download URL under base.
func (s *Service) List(ctx context.Context, base string) ([]FileInfo, error) {
	names, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	infos := make([]FileInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, FileInfo{Name: name, URL: DownloadURL(base, name)})
	}
	return infos, nil
}

// Open returns the stored file for reading. Caller must Close it.
func (s *Service) Open(ctx context.Context, name string) (*storage.Object, error) {
	return s.store.Load(ctx, name)
}

// Delete removes a file and reports whether it existed.
func (s *Service) Delete(ctx context.Context, name string) (bool, error) {
	return s.store.Delete(ctx, name)
}

// LastFile returns the name of the lexicographically greatest stored file.
// It only matches the latest upload when names are time-ordered.
func (s *Service) LastFile(ctx context.Context) (string, error) {
	name, ok, err := s.store.Last(ctx)
	if err != nil {
		return "", fmt.Errorf("find last file: %w", err)
	}
	if !ok {
		return "", ErrNoFiles
	}
	return name, nil
}

// QRCode renders text as a square PNG of the configured size.
func (s *Service) QRCode(text string) ([]byte, error) {
	return s.encoder.Encode(text, s.qrSize, s.qrSize)
}

// IsNotFound returns true when the error indicates a file was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}

// DownloadURL builds the public URL of a file, e.g.
// "http://localhost:8080/files/report.pdf".
func DownloadURL(base, name string) string {
	return strings.TrimRight(base, "/") + "/files/" + url.PathEscape(name)
}
