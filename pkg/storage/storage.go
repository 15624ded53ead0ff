package storage

import (
	"context"
	"io"

	"ledes.com/labportal/pkg/logger"
	"ledes.com/labportal/pkg/media"
)

// ImageStorage defines contract for image storage providers.
type ImageStorage interface {
	// UploadImage stores image from reader under folder and returns its reference.
	UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (media.ImageRef, error)
	// DeleteImage removes a previously stored image. References the provider
	// does not own, such as placeholders, are ignored.
	DeleteImage(ctx context.Context, ref media.ImageRef) error
}

// Put uploads a validated image file under folder.
func Put(ctx context.Context, s ImageStorage, folder string, f *media.File) (media.ImageRef, error) {
	return s.UploadImage(ctx, f.Reader(), folder, "image"+f.Ext())
}

// Discard deletes refs, logging failures instead of returning them. It is
// used for cleanup after the database write already succeeded or failed.
func Discard(ctx context.Context, s ImageStorage, refs ...media.ImageRef) {
	for _, ref := range refs {
		if ref.IsZero() {
			continue
		}
		if err := s.DeleteImage(ctx, ref); err != nil {
			logger.FromContext(ctx).WithError(err).WithField("location", ref.Location).Warn("failed to delete image")
		}
	}
}
