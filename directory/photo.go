// ABOUTME: Contact photo upload and removal
// ABOUTME: Accepts a URL, a file path or raw bytes; only JPEG, PNG, GIF and BMP are sent
package directory

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/gcard/models"
)

// maxPhotoBytes bounds downloads and file reads.
const maxPhotoBytes = 10 << 20

var photoTypes = []string{"image/jpeg", "image/png", "image/gif", "image/bmp"}

// DetectPhotoType returns the MIME type of data if it is an accepted photo format.
func DetectPhotoType(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	for _, allowed := range photoTypes {
		if mt.Is(allowed) {
			return allowed, nil
		}
	}
	return "", models.NewError(models.CodeUnsupportedMediaType, "detect photo type",
		fmt.Sprintf("%s is not a supported photo type", mt.String()))
}

// SetPhoto loads a photo from a URL or a local file and uploads it.
func (c *Contacts) SetPhoto(ctx context.Context, resourceName, source string) error {
	data, err := c.loadPhoto(ctx, source)
	if err != nil {
		return err
	}
	return c.SetPhotoBytes(ctx, resourceName, data)
}

func (c *Contacts) loadPhoto(ctx context.Context, source string) ([]byte, error) {
	source = strings.TrimSpace(source)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, models.WrapError(models.CodeValidation, "load photo", err)
		}
		resp, err := c.download.Do(req)
		if err != nil {
			return nil, models.WrapError(models.CodeTransport, "download photo", err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &models.Error{Code: models.CodeNotFound, Op: "download photo", Message: source, StatusCode: resp.StatusCode}
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
		if err != nil {
			return nil, models.WrapError(models.CodeTransport, "download photo", err)
		}
		return data, nil
	}

	info, err := os.Stat(source)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()) {
		return nil, models.NewError(models.CodeNotFound, "load photo", "neither a URL nor an existing file: "+source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat photo: %w", err)
	}
	if info.Size() > maxPhotoBytes {
		return nil, models.NewError(models.CodeValidation, "load photo", "photo file is too large")
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	return data, nil
}

// SetPhotoBytes uploads raw image data as the contact photo.
func (c *Contacts) SetPhotoBytes(ctx context.Context, resourceName string, data []byte) error {
	mimeType, err := DetectPhotoType(data)
	if err != nil {
		return err
	}
	req := &people.UpdateContactPhotoRequest{
		PhotoBytes:   base64.StdEncoding.EncodeToString(data),
		PersonFields: string(models.FieldPhotos),
	}
	if _, err := c.svc.People.UpdateContactPhoto(resourceName, req).Context(ctx).Do(); err != nil {
		return classify("update photo "+resourceName, err)
	}
	c.log.WithField("resource", resourceName).WithField("type", mimeType).Info("updated contact photo")
	return nil
}

// DeletePhoto removes the contact photo.
func (c *Contacts) DeletePhoto(ctx context.Context, resourceName string) error {
	if _, err := c.svc.People.DeleteContactPhoto(resourceName).Context(ctx).Do(); err != nil {
		return classify("delete photo "+resourceName, err)
	}
	c.log.WithField("resource", resourceName).Info("deleted contact photo")
	return nil
}
