package objectstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs/option/content"
	"github.com/viant/afs/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type recordingService struct {
	url     string
	data    string
	options []storage.Option
	err     error
}

func (r *recordingService) Upload(_ context.Context, URL string, _ os.FileMode, reader io.Reader, options ...storage.Option) error {
	if r.err != nil {
		return r.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	r.url, r.data, r.options = URL, string(data), options
	return nil
}

func (r *recordingService) DownloadWithURL(_ context.Context, URL string, _ ...storage.Option) ([]byte, error) {
	if URL != r.url {
		return nil, errors.New("not found")
	}
	return []byte(r.data), nil
}

func contentMeta(options []storage.Option) *content.Meta {
	for _, opt := range options {
		if meta, ok := opt.(*content.Meta); ok {
			return meta
		}
	}
	return nil
}

func TestStore_PutAndGet_Memory(t *testing.T) {
	store := New(testLogger(), "mem://localhost/transcribe/")
	ctx := context.Background()

	location, err := store.Put(ctx, "file.wav", "audio/wav", strings.NewReader("RIFF-data"))
	require.NoError(t, err)
	assert.Equal(t, "mem://localhost/transcribe/file.wav", location)

	data, err := store.get(ctx, "file.wav")
	require.NoError(t, err)
	assert.Equal(t, "RIFF-data", string(data))
}

func TestStore_PutAndGet_File(t *testing.T) {
	dir := t.TempDir()
	store := New(testLogger(), "file://"+filepath.ToSlash(dir))
	ctx := context.Background()

	location, err := store.Put(ctx, "talk.mp3", "audio/mpeg", strings.NewReader("ID3"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(location, "/talk.mp3"))

	data, err := store.get(ctx, "talk.mp3")
	require.NoError(t, err)
	assert.Equal(t, "ID3", string(data))
}

func TestStore_PutCarriesContentType(t *testing.T) {
	fs := &recordingService{}
	store := New(testLogger(), "s3://transcribe-ids721")
	store.fs = fs
	ctx := context.Background()

	location, err := store.Put(ctx, "a.wav", "audio/wav", strings.NewReader("RIFF"))
	require.NoError(t, err)
	assert.Equal(t, "s3://transcribe-ids721/a.wav", location)
	assert.Equal(t, location, fs.url)

	meta := contentMeta(fs.options)
	require.NotNil(t, meta, "upload options: %v", fs.options)
	assert.Equal(t, "audio/wav", meta.Values[content.Type])

	_, err = store.Put(ctx, "b.wav", "", strings.NewReader("RIFF"))
	require.NoError(t, err)
	assert.Nil(t, contentMeta(fs.options))
}

func TestStore_PutError(t *testing.T) {
	store := New(testLogger(), "s3://transcribe-ids721")
	store.fs = &recordingService{err: errors.New("access denied")}

	_, err := store.Put(context.Background(), "a.wav", "audio/wav", strings.NewReader("RIFF"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://transcribe-ids721/a.wav")
	assert.Contains(t, err.Error(), "access denied")
}

func TestStore_Location(t *testing.T) {
	store := New(testLogger(), "s3://transcribe-ids721")
	assert.Equal(t, "s3://transcribe-ids721/a.wav", store.Location("a.wav"))
}
