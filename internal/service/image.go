package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/types"
)

// MaxImageSize bounds decoded uploads.
const MaxImageSize = 10 << 20

// The payload may be wrapped across lines by the encoder.
var dataURIPattern = regexp.MustCompile(`(?s)^data:image/([a-zA-Z0-9.+-]+);base64,(.*)$`)

// ImageService validates uploaded recipe images and writes them to the store.
type ImageService struct {
	store storage.ImageStore
}

func NewImageService(store storage.ImageStore) *ImageService {
	return &ImageService{store: store}
}

func (s *ImageService) URL(key string) string {
	return s.store.URL(key)
}

func imageError(msg string) error {
	return types.FieldErrors{"image": {msg}}
}

// Save decodes in into a temporary file, checks that it is a real image and
// stores it under recipes/<uuid>.<ext>. It returns the storage key.
func (s *ImageService) Save(ctx context.Context, in *types.ImageInput) (string, error) {
	tmp, ext, err := spool(in)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	cfg, format, err := image.DecodeConfig(tmp)
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return "", imageError("Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	key := fmt.Sprintf("recipes/%s.%s", uuid.NewString(), ext)
	if err := s.store.Save(ctx, key, tmp, "image/"+format); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	slog.DebugContext(ctx, "stored recipe image", "key", key, "format", format)
	return key, nil
}

// Delete removes a stored image, logging instead of failing.
func (s *ImageService) Delete(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to delete image", "key", key, "error", err)
	}
}

// spool copies the upload into a named temporary file whose extension is
// taken from the data URI subtype or the uploaded file name.
func spool(in *types.ImageInput) (*os.File, string, error) {
	var (
		src io.Reader
		ext string
	)

	switch {
	case in == nil:
		return nil, "", imageError(types.MsgRequired)
	case in.File != nil:
		if in.File.Size > MaxImageSize {
			return nil, "", imageError("Image is too large.")
		}
		f, err := in.File.Open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open upload: %w", err)
		}
		defer f.Close()
		src = f
		ext = strings.TrimPrefix(strings.ToLower(filepath.Ext(in.File.Filename)), ".")
	default:
		m := dataURIPattern.FindStringSubmatch(strings.TrimSpace(in.DataURI))
		if m == nil {
			return nil, "", imageError("Image must be a data:image/<ext>;base64 URI.")
		}
		ext = strings.ToLower(m[1])
		src = base64.NewDecoder(base64.StdEncoding, strings.NewReader(stripSpace(m[2])))
	}

	if ext == "" || strings.ContainsAny(ext, `/\`) {
		return nil, "", imageError("Image file must have an extension.")
	}

	tmp, err := os.CreateTemp("", "recipe-*."+ext)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create temp file: %w", err)
	}

	n, err := io.Copy(tmp, io.LimitReader(src, MaxImageSize+1))
	if err != nil || n > MaxImageSize {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		if err != nil {
			return nil, "", imageError("Image data could not be decoded.")
		}
		return nil, "", imageError("Image is too large.")
	}
	return tmp, ext, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
