package media

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"ledes.com/labportal/pkg/apperror"
)

const (
	// MaxUploadSize caps every uploaded image.
	MaxUploadSize = 2 << 20

	ThumbnailWidth  = 640
	ThumbnailHeight = 360
)

var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

// File is a validated image upload held in memory.
type File struct {
	Data     []byte
	FileName string
	MIME     string
}

// Ext returns the canonical extension for the detected type.
func (f *File) Ext() string {
	return allowedTypes[f.MIME]
}

// Reader returns a fresh reader over the file contents.
func (f *File) Reader() io.Reader {
	return bytes.NewReader(f.Data)
}

// FromForm reads an optional image field of a multipart request. A missing
// field yields nil without error.
func FromForm(c *gin.Context, field string) (*File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperror.New(http.StatusBadRequest, fmt.Sprintf("Arquivo %s inválido.", field), err)
	}
	return ReadFile(fh, field)
}

// ReadFile loads and validates one uploaded file.
func ReadFile(fh *multipart.FileHeader, field string) (*File, error) {
	if fh.Size > MaxUploadSize {
		return nil, apperror.BadRequest(fmt.Sprintf("Arquivo %s excede o tamanho máximo de 2 MB.", field))
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", field, err)
	}
	defer src.Close()

	return Read(src, fh.Filename, field)
}

// Read validates raw image bytes against the size limit and type allow-list.
func Read(r io.Reader, fileName, field string) (*File, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", field, err)
	}
	if len(data) > MaxUploadSize {
		return nil, apperror.BadRequest(fmt.Sprintf("Arquivo %s excede o tamanho máximo de 2 MB.", field))
	}

	mime := mimetype.Detect(data).String()
	if _, ok := allowedTypes[mime]; !ok {
		return nil, apperror.BadRequest(fmt.Sprintf("Arquivo %s deve ser png, jpg ou jpeg.", field))
	}

	return &File{Data: data, FileName: fileName, MIME: mime}, nil
}

// Thumbnail crops the image to the thumbnail size and encodes it as JPEG.
func Thumbnail(src *File) (*File, error) {
	img, err := imaging.Decode(bytes.NewReader(src.Data))
	if err != nil {
		return nil, apperror.New(http.StatusBadRequest, "Não foi possível processar a imagem de capa.", err)
	}

	thumb := imaging.Fill(img, ThumbnailWidth, ThumbnailHeight, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(jpeg.DefaultQuality)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return &File{Data: buf.Bytes(), FileName: "thumbnail.jpg", MIME: "image/jpeg"}, nil
}
