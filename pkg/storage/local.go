package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"ledes.com/labportal/pkg/media"
)

type localStorage struct {
	root string
}

// NewLocalStorage stores images on disk under root, which is served as static files.
func NewLocalStorage(root string) (ImageStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &localStorage{root: root}, nil
}

func (s *localStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (media.ImageRef, error) {
	if err := ctx.Err(); err != nil {
		return media.ImageRef{}, err
	}

	folder = filepath.Clean("/" + folder)[1:]
	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return media.ImageRef{}, fmt.Errorf("failed to create folder %s: %w", folder, err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return media.ImageRef{}, fmt.Errorf("failed to create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		_ = os.Remove(dst.Name())
		return media.ImageRef{}, fmt.Errorf("failed to write image file: %w", err)
	}

	return media.Local(filepath.ToSlash(filepath.Join(folder, name))), nil
}

func (s *localStorage) DeleteImage(ctx context.Context, ref media.ImageRef) error {
	if ref.Kind != media.KindLocal || ref.IsZero() {
		return nil
	}

	path := filepath.Join(s.root, filepath.Clean("/" + ref.Location))
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}
