package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingStorage struct {
	name string
	data []byte
}

func (r *recordingStorage) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	r.name = name
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	r.data = data
	return "/uploads/" + name, nil
}

func pngDataURI(t *testing.T) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestStoreFormImage_DecodesAndNamesByContent(t *testing.T) {
	storage := &recordingStorage{}

	path, err := storeFormImage(context.Background(), storage, pngDataURI(t))
	require.NoError(t, err)
	require.Equal(t, "/uploads/"+storage.name, path)
	require.True(t, strings.HasPrefix(storage.name, "optical_"))
	require.True(t, strings.HasSuffix(storage.name, ".png"))
	require.NotEmpty(t, storage.data)
}

func TestStoreFormImage_PassesThroughStoredPaths(t *testing.T) {
	storage := &recordingStorage{}

	for _, value := range []string{"", "/uploads/optical_abc.png", "https://cdn.example.com/form.png"} {
		path, err := storeFormImage(context.Background(), storage, value)
		require.NoError(t, err)
		require.Equal(t, value, path)
	}
	require.Empty(t, storage.name)
}

func TestStoreFormImage_RejectsBadPayloads(t *testing.T) {
	storage := &recordingStorage{}

	cases := []string{
		"data:image/png;base64",                 // no comma
		"data:image/png;base64,%%%",             // not base64
		"data:image/gif;base64," + base64.StdEncoding.EncodeToString([]byte("GIF89a....")), // disallowed type
		"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("plain text")), // content is not an image
	}
	for _, value := range cases {
		_, err := storeFormImage(context.Background(), storage, value)
		require.ErrorIs(t, err, ErrInvalidFormImage, "payload: %.40s", value)
	}
}
