package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/docecupcake/cupcake-backend/internal/storage"
	"github.com/docecupcake/cupcake-backend/pkg/logger"
	"github.com/nfnt/resize"
)

var (
	ErrImageTooLarge    = errors.New("image exceeds the upload size limit")
	ErrUnsupportedImage = errors.New("unsupported image format")
)

const (
	cupcakeImageFolder = "cupcakes"
	jpegQuality        = 85
)

// AllowedImageTypes are the content types accepted for cupcake images.
var AllowedImageTypes = []string{"image/jpeg", "image/png"}

// ImageStore is where processed images end up. *storage.S3Storage implements it.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
	Presign(ctx context.Context, filename, contentType, folder string) (*storage.PresignedURLResponse, error)
}

type UploadService interface {
	// UploadCupcakeImage scales the image down to the configured width,
	// re-encodes it as JPEG and returns the public URL.
	UploadCupcakeImage(ctx context.Context, filename string, r io.Reader) (string, error)
	PresignCupcakeImage(ctx context.Context, filename, contentType string) (*storage.PresignedURLResponse, error)
}

type uploadService struct {
	store    ImageStore
	maxWidth uint
	maxBytes int64
}

func NewUploadService(store ImageStore, maxWidth uint, maxBytes int64) UploadService {
	return &uploadService{store: store, maxWidth: maxWidth, maxBytes: maxBytes}
}

func (s *uploadService) UploadCupcakeImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(raw)) > s.maxBytes {
		return "", ErrImageTooLarge
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", ErrUnsupportedImage
	}

	if s.maxWidth > 0 && uint(img.Bounds().Dx()) > s.maxWidth {
		img = resize.Resize(s.maxWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	key := storage.NewKey(cupcakeImageFolder, "image.jpg")
	url, err := s.store.Put(ctx, key, "image/jpeg", buf.Bytes())
	if err != nil {
		logger.Error("Failed to store cupcake image", err, map[string]interface{}{
			"filename": filename,
			"key":      key,
		})
		return "", err
	}

	logger.Info("Cupcake image uploaded", map[string]interface{}{
		"filename":      filename,
		"source_format": format,
		"width":         img.Bounds().Dx(),
		"size":          buf.Len(),
		"url":           url,
	})
	return url, nil
}

func (s *uploadService) PresignCupcakeImage(ctx context.Context, filename, contentType string) (*storage.PresignedURLResponse, error) {
	if err := storage.ValidateContentType(contentType, AllowedImageTypes); err != nil {
		return nil, ErrUnsupportedImage
	}
	return s.store.Presign(ctx, filename, contentType, cupcakeImageFolder)
}
