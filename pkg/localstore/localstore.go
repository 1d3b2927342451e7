package localstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Service implements the FileStorage interface against the local filesystem.
type Service struct {
	dir    string
	logger zerolog.Logger
}

// New constructs a local storage service rooted at dir, creating it if needed.
func New(dir string, logger zerolog.Logger) (*Service, error) {
	if dir == "" {
		return nil, fmt.Errorf("uploads directory must be provided")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	return &Service{
		dir:    dir,
		logger: logger.With().Str("component", "localstore").Logger(),
	}, nil
}

// Upload writes the file to disk and returns the public path it is served from.
func (s *Service) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Reject names that would escape the uploads directory.
	clean := filepath.Base(name)
	if clean == "." || clean == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	target := filepath.Join(s.dir, clean)

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Info().Str("file", clean).Msg("file stored locally")

	return fmt.Sprintf("/uploads/%s", clean), nil
}
