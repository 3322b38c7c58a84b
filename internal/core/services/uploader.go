package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/manthysbr/scribe/internal/core/domain"
	"github.com/manthysbr/scribe/internal/core/ports"
	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

var pathSeparators = strings.NewReplacer("/", " ", "\\", " ")

// SanitizeFilename reduces a client supplied name to a safe object key the
// way werkzeug's secure_filename does: NFKD folding to ASCII, path separators
// and whitespace runs become '_', anything outside [A-Za-z0-9_.-] is removed,
// and dots or underscores are trimmed from both ends.
//
//	"../../etc/passwd"  -> "etc_passwd"
//	"räcording #1.wav"  -> "racording_1.wav"
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, norm.NFKD.String(name))
	name = pathSeparators.Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// Uploader stores client media in the object store ahead of dispatch.
type Uploader struct {
	logger *slog.Logger
	store  ports.ObjectStore
}

func NewUploader(logger *slog.Logger, store ports.ObjectStore) *Uploader {
	return &Uploader{logger: logger, store: store}
}

func (u *Uploader) Upload(ctx context.Context, filename, contentType string, r io.Reader) (domain.StoredObject, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		return domain.StoredObject{}, fmt.Errorf("%w: filename is missing", domain.ErrInvalidInput)
	}

	location, err := u.store.Put(ctx, name, contentType, r)
	if err != nil {
		return domain.StoredObject{}, fmt.Errorf("failed to store %s: %w", name, err)
	}

	u.logger.Info("file uploaded", "filename", name, "location", location, "content_type", contentType)
	return domain.StoredObject{
		Filename:    name,
		Location:    location,
		ContentType: contentType,
	}, nil
}

// Reference resolves a previously uploaded filename to its storage reference.
func (u *Uploader) Reference(filename string) string {
	name := SanitizeFilename(filename)
	if name == "" {
		return ""
	}
	return u.store.Location(name)
}
