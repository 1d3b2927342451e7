package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// ErrInvalidFormImage indicates the submitted image payload could not be
// decoded or is not a supported image type.
var ErrInvalidFormImage = errors.New("invalid optical form image")

// FileStorage abstracts where optical form images end up.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

const dataURIPrefix = "data:image/"

var allowedImageTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
}

// storeFormImage persists a base64 data-URI image and returns its stored
// reference. Values that are not data URIs pass through unchanged, so an
// already-stored path survives an update untouched. The generated name embeds
// a content hash to keep concurrent uploads from colliding.
func storeFormImage(ctx context.Context, storage FileStorage, image string) (string, error) {
	image = strings.TrimSpace(image)
	if image == "" || !strings.HasPrefix(image, dataURIPrefix) {
		return image, nil
	}

	comma := strings.Index(image, ",")
	if comma < 0 {
		return "", ErrInvalidFormImage
	}

	data, err := base64.StdEncoding.DecodeString(image[comma+1:])
	if err != nil {
		return "", ErrInvalidFormImage
	}

	detected := mimetype.Detect(data)
	if _, ok := allowedImageTypes[detected.String()]; !ok {
		return "", ErrInvalidFormImage
	}

	digest := sha256.Sum256(data)
	name := fmt.Sprintf("optical_%s_%d%s", hex.EncodeToString(digest[:4]), time.Now().UnixMilli(), detected.Extension())

	return storage.Upload(ctx, name, bytes.NewReader(data))
}
