package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abiosite/abio-api/internal/application"
)

var errNoImage = application.ValidationError("Please upload an image file")

// readImage takes the multipart file under field. The content type is
// sniffed from the bytes; the client-declared type is ignored.
func readImage(c *gin.Context, field string) (application.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return application.Upload{}, errNoImage
		}
		return application.Upload{}, application.Wrap(errNoImage, err)
	}
	if fh.Size > application.MaxImageSize {
		return application.Upload{}, application.ErrImageTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return application.Upload{}, err
	}
	body, err := io.ReadAll(io.LimitReader(f, application.MaxImageSize+1))
	_ = f.Close()
	if err != nil {
		return application.Upload{}, err
	}
	if len(body) > application.MaxImageSize {
		return application.Upload{}, application.ErrImageTooLarge
	}
	return application.Upload{
		Filename:    fh.Filename,
		ContentType: http.DetectContentType(body),
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	}, nil
}
