package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	// Register the decoders for the supported upload formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"bucketlist/internal/config"
	"bucketlist/internal/middleware"
	"bucketlist/internal/models"
	"bucketlist/internal/repository"
	"bucketlist/internal/storage"

	"github.com/google/uuid"
)

const (
	saltLength   = 16
	saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	saltRetries  = 3
)

// mimeExtensions maps accepted data-URI media types to stored file extensions.
// Anything else is rejected before any bytes are decoded.
var mimeExtensions = map[string]string{
	"image/png":  "png",
	"image/gif":  "gif",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

// PhotoService turns base64 image payloads into publicly reachable objects
// plus a metadata row. All validation happens before the network upload.
type PhotoService struct {
	photoRepo repository.PhotoRepository
	store     storage.ObjectStorage
	cfg       *config.Config
}

// IngestPhotoInput carries one ingestion request.
type IngestPhotoInput struct {
	// ImageData is a "data:<mime>;base64,<payload>" URI.
	ImageData string
	// ItemID links the photo to an item; nil for a standalone upload.
	ItemID *uint
}

// NewPhotoService creates a new photo service.
func NewPhotoService(photoRepo repository.PhotoRepository, store storage.ObjectStorage, cfg *config.Config) *PhotoService {
	return &PhotoService{photoRepo: photoRepo, store: store, cfg: cfg}
}

// Ingest validates, decodes, uploads and persists a single image. A failure
// at any step is terminal: nothing is uploaded before validation completes
// and no metadata row is written if the upload fails.
func (s *PhotoService) Ingest(ctx context.Context, in IngestPhotoInput) (*models.Photo, error) {
	mime, payload, err := splitDataURI(in.ImageData)
	if err != nil {
		middleware.PhotosIngested.WithLabelValues("unsupported_format").Inc()
		return nil, err
	}

	ext, ok := mimeExtensions[mime]
	if !ok {
		middleware.PhotosIngested.WithLabelValues("unsupported_format").Inc()
		return nil, models.NewUnsupportedFormatError(mime)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		middleware.PhotosIngested.WithLabelValues("invalid_encoding").Inc()
		return nil, models.NewInvalidEncodingError(err)
	}

	maxBytes := s.cfg.PhotoMaxUploadSizeMB * 1024 * 1024
	if maxBytes > 0 && len(raw) > maxBytes {
		middleware.PhotosIngested.WithLabelValues("too_large").Inc()
		return nil, models.NewValidationError(fmt.Sprintf("Image exceeds the %dMB upload limit", s.cfg.PhotoMaxUploadSizeMB))
	}

	imgCfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		middleware.PhotosIngested.WithLabelValues("corrupt_image").Inc()
		return nil, models.NewCorruptImageError(err)
	}

	// Spool the decoded bytes to a local temp file; the upload streams from
	// it. The file is removed no matter how the rest of the pipeline ends.
	spoolPath := filepath.Join(os.TempDir(), "photo-"+uuid.New().String()+"."+ext)
	if err := os.WriteFile(spoolPath, raw, 0o600); err != nil {
		middleware.PhotosIngested.WithLabelValues("spool_failed").Inc()
		return nil, models.NewInternalError(err)
	}
	defer func() {
		if rmErr := os.Remove(spoolPath); rmErr != nil {
			middleware.Logger.WarnContext(ctx, "failed to remove photo spool file",
				slog.String("path", spoolPath), slog.String("error", rmErr.Error()))
		}
	}()

	spool, err := os.Open(spoolPath)
	if err != nil {
		middleware.PhotosIngested.WithLabelValues("spool_failed").Inc()
		return nil, models.NewInternalError(err)
	}
	defer spool.Close()

	for attempt := 0; attempt < saltRetries; attempt++ {
		salt, saltErr := newSalt()
		if saltErr != nil {
			return nil, models.NewInternalError(saltErr)
		}

		// Rewind for the retry case: the previous attempt read to EOF.
		if _, err := spool.Seek(0, io.SeekStart); err != nil {
			return nil, models.NewInternalError(err)
		}

		key := salt + "." + ext
		if err := s.store.Put(ctx, key, mime, spool); err != nil {
			middleware.PhotosIngested.WithLabelValues("storage_failed").Inc()
			return nil, models.NewStorageUnavailableError(err)
		}

		photo := &models.Photo{
			BaseURL:   s.cfg.PhotoBaseURL,
			Salt:      salt,
			Extension: ext,
			Width:     imgCfg.Width,
			Height:    imgCfg.Height,
			ItemID:    in.ItemID,
		}
		createErr := s.photoRepo.Create(ctx, photo)
		if createErr == nil {
			middleware.PhotosIngested.WithLabelValues("ok").Inc()
			return photo, nil
		}
		if !errors.Is(createErr, repository.ErrDuplicateKey) {
			middleware.PhotosIngested.WithLabelValues("persist_failed").Inc()
			return nil, createErr
		}
		// Salt collision: retry with a fresh one. The orphaned object is
		// harmless and gets overwritten only by its own key.
	}
	middleware.PhotosIngested.WithLabelValues("persist_failed").Inc()
	return nil, models.NewInternalError(fmt.Errorf("could not persist photo metadata after %d salt attempts", saltRetries))
}

// splitDataURI splits "data:<mime>;base64,<payload>" into mime and payload.
func splitDataURI(uri string) (mime, payload string, err error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", "", models.NewUnsupportedFormatError("missing data URI prefix")
	}
	rest := strings.TrimPrefix(uri, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", "", models.NewUnsupportedFormatError("malformed data URI")
	}
	mime = strings.TrimSuffix(meta, ";base64")
	if mime == meta {
		// Only base64 payloads are accepted.
		return "", "", models.NewUnsupportedFormatError(meta)
	}
	return strings.ToLower(strings.TrimSpace(mime)), payload, nil
}

// newSalt returns a 16-character uppercase alphanumeric object key prefix.
func newSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, saltLength)
	for i, b := range buf {
		out[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}
	return string(out), nil
}
