package service_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/riffrent/riffrent-api/internal/config"
	"github.com/riffrent/riffrent-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalService(t *testing.T) service.FileService {
	t.Helper()
	fs, err := service.NewFileService(context.Background(), config.FileStorageConfig{
		UseS3:        false,
		LocalPath:    t.TempDir(),
		LocalBaseURL: "http://localhost:8080/files",
	})
	require.NoError(t, err)
	return fs
}

func TestLocalFileService_UploadDownloadRoundTrip(t *testing.T) {
	fs := newLocalService(t)

	url, key, err := fs.Upload(context.Background(), strings.NewReader("audio-bytes"), "track.mp3", "audio/mpeg", "tracks/abc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/files/tracks/abc/"))
	assert.True(t, strings.HasSuffix(key, ".mp3"))

	reader, err := fs.Download(context.Background(), key)
	require.NoError(t, err)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(body))
}

func TestLocalFileService_KeyFromURL(t *testing.T) {
	fs := newLocalService(t)

	url, key, err := fs.Upload(context.Background(), strings.NewReader("x"), "cert.pdf", "application/pdf", "licenses")
	require.NoError(t, err)

	got, err := fs.KeyFromURL(url)
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = fs.KeyFromURL("https://elsewhere.example.com/files/licenses/x.pdf")
	assert.Error(t, err)
}

func TestLocalFileService_Delete(t *testing.T) {
	fs := newLocalService(t)

	_, key, err := fs.Upload(context.Background(), strings.NewReader("x"), "a.mp3", "audio/mpeg", "tracks")
	require.NoError(t, err)

	require.NoError(t, fs.Delete(context.Background(), key))

	_, err = fs.Download(context.Background(), key)
	assert.Error(t, err)
}
