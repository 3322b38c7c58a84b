package objectstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/manthysbr/scribe/internal/core/ports"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option/content"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
)

// fileService is the part of afs.Service the store relies on.
type fileService interface {
	Upload(ctx context.Context, URL string, mode os.FileMode, reader io.Reader, options ...storage.Option) error
	DownloadWithURL(ctx context.Context, URL string, options ...storage.Option) ([]byte, error)
}

// Store writes uploads under a base URL using afs, so the same code serves
// mem://, file:// and, with the cloud extensions registered, s3:// or gs://.
type Store struct {
	logger  *slog.Logger
	fs      fileService
	baseURL string
}

var _ ports.ObjectStore = (*Store)(nil)

func New(logger *slog.Logger, baseURL string) *Store {
	return &Store{
		logger:  logger,
		fs:      afs.New(),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *Store) Location(name string) string {
	return url.Join(s.baseURL, name)
}

// Put uploads r under name. A non-empty contentType is stored as object
// metadata by storagers that keep it (s3, gs); local ones ignore it.
func (s *Store) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	location := s.Location(name)

	var options []storage.Option
	if contentType != "" {
		options = append(options, content.NewMeta(content.Type, contentType))
	}
	if err := s.fs.Upload(ctx, location, file.DefaultFileOsMode, r, options...); err != nil {
		return "", fmt.Errorf("upload %s: %w", location, err)
	}
	s.logger.Debug("object stored", "location", location, "content_type", contentType)
	return location, nil
}

func (s *Store) get(ctx context.Context, name string) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(ctx, s.Location(name))
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", name, err)
	}
	return data, nil
}
