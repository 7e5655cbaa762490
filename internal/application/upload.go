package application

import (
	"context"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize caps avatar and icon uploads.
const MaxImageSize = 5 << 20

func validateImage(up Upload) error {
	if up.Body == nil {
		return ValidationError("Please upload an image file")
	}
	if up.Size > MaxImageSize {
		return ErrImageTooLarge
	}
	if !strings.HasPrefix(up.ContentType, "image/") {
		return ErrNotAnImage
	}
	return nil
}

// objectName builds <prefix>/<owner>/<uuid><ext>, taking the extension from
// the client filename or, failing that, from the content type.
func objectName(prefix, owner string, up Upload) string {
	ext := strings.ToLower(path.Ext(up.Filename))
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(up.ContentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	return path.Join(prefix, owner, uuid.NewString()+ext)
}

func storeImage(ctx context.Context, storage ObjectStorage, prefix, owner string, up Upload) (string, error) {
	if err := validateImage(up); err != nil {
		return "", err
	}
	if storage == nil {
		return "", ErrUploadFailed
	}
	url, err := storage.Upload(ctx, objectName(prefix, owner, up), up.ContentType, up.Body)
	if err != nil {
		return "", Wrap(ErrUploadFailed, err)
	}
	return url, nil
}
