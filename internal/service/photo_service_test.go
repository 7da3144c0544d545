package service

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"bucketlist/internal/config"
	"bucketlist/internal/models"
	"bucketlist/internal/repository"
	"bucketlist/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var objectKeyRe = regexp.MustCompile(`^[A-Z0-9]{16}\.(png|gif|jpeg|jpg)$`)

func newTestPhotoService(photoRepo *testutil.PhotoRepoStub, store *testutil.ObjectStoreStub) *PhotoService {
	cfg := &config.Config{
		PhotoBaseURL:         "https://photos.example.com",
		PhotoMaxUploadSizeMB: 10,
	}
	return NewPhotoService(photoRepo, store, cfg)
}

func TestIngestPNG(t *testing.T) {
	photoRepo := testutil.NewPhotoRepoStub()
	store := testutil.NewObjectStoreStub()
	svc := newTestPhotoService(photoRepo, store)

	raw := testutil.TinyPNG(t, 12, 7)
	itemID := uint(42)

	photo, err := svc.Ingest(context.Background(), IngestPhotoInput{
		ImageData: testutil.DataURI("image/png", raw),
		ItemID:    &itemID,
	})
	require.NoError(t, err)

	assert.Equal(t, 12, photo.Width)
	assert.Equal(t, 7, photo.Height)
	assert.Equal(t, "png", photo.Extension)
	require.NotNil(t, photo.ItemID)
	assert.Equal(t, itemID, *photo.ItemID)
	assert.Regexp(t, `^[A-Z0-9]{16}$`, photo.Salt)
	assert.Equal(t, "https://photos.example.com/"+photo.Salt+".png", photo.URL())

	require.Len(t, store.Calls, 1)
	assert.True(t, objectKeyRe.MatchString(store.Calls[0].Key), "unexpected object key %q", store.Calls[0].Key)
	assert.Equal(t, "image/png", store.Calls[0].ContentType)
	assert.Equal(t, len(raw), store.Calls[0].Size)
}

func TestIngestAcceptedFormats(t *testing.T) {
	tests := []struct {
		mime    string
		ext     string
		payload func(t testutil.TB) []byte
	}{
		{"image/gif", "gif", func(t testutil.TB) []byte { return testutil.TinyGIF(t, 3, 3) }},
		{"image/jpeg", "jpeg", func(t testutil.TB) []byte { return testutil.TinyJPEG(t, 3, 3) }},
		// image/jpg is a common client quirk and stores as .jpg.
		{"image/jpg", "jpg", func(t testutil.TB) []byte { return testutil.TinyJPEG(t, 3, 3) }},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			photoRepo := testutil.NewPhotoRepoStub()
			store := testutil.NewObjectStoreStub()
			svc := newTestPhotoService(photoRepo, store)

			photo, err := svc.Ingest(context.Background(), IngestPhotoInput{
				ImageData: testutil.DataURI(tt.mime, tt.payload(t)),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.ext, photo.Extension)
			assert.Nil(t, photo.ItemID)
		})
	}
}

func TestIngestRejectsBeforeUpload(t *testing.T) {
	oversized := bytes.Repeat([]byte{0xAB}, 1024*1024+1)

	tests := []struct {
		name     string
		data     string
		wantCode string
	}{
		{"webp", testutil.DataURI("image/webp", testutil.TinyPNG(t, 2, 2)), models.CodeUnsupportedFormat},
		{"bmp", testutil.DataURI("image/bmp", testutil.TinyPNG(t, 2, 2)), models.CodeUnsupportedFormat},
		{"missing data prefix", "image/png;base64,aGVsbG8=", models.CodeUnsupportedFormat},
		{"not base64 encoded", "data:image/png,rawbytes", models.CodeUnsupportedFormat},
		{"bad base64 payload", "data:image/png;base64,!!!not-base64!!!", models.CodeInvalidEncoding},
		{"valid base64 garbage", testutil.DataURI("image/png", []byte("definitely not a png")), models.CodeCorruptImage},
		{"oversized", testutil.DataURI("image/png", oversized), models.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			photoRepo := testutil.NewPhotoRepoStub()
			store := testutil.NewObjectStoreStub()
			svc := NewPhotoService(photoRepo, store, &config.Config{
				PhotoBaseURL:         "https://photos.example.com",
				PhotoMaxUploadSizeMB: 1,
			})

			_, err := svc.Ingest(context.Background(), IngestPhotoInput{ImageData: tt.data})
			assertAppErrorCode(t, err, tt.wantCode)

			// Validation failures must never touch the network or the database.
			assert.Empty(t, store.Calls)
			assert.Zero(t, photoRepo.Count())
		})
	}
}

func TestIngestStorageFailure(t *testing.T) {
	photoRepo := testutil.NewPhotoRepoStub()
	store := testutil.NewObjectStoreStub()
	store.Err = testutil.ErrStorageDown
	svc := newTestPhotoService(photoRepo, store)

	_, err := svc.Ingest(context.Background(), IngestPhotoInput{
		ImageData: testutil.DataURI("image/png", testutil.TinyPNG(t, 2, 2)),
	})
	assertAppErrorCode(t, err, models.CodeStorageUnavailable)

	// No metadata row may exist for an object that never made it to storage.
	assert.Zero(t, photoRepo.Count())
}

func TestIngestSaltCollisionRetries(t *testing.T) {
	photoRepo := testutil.NewPhotoRepoStub()
	photoRepo.CreateErr = repository.ErrDuplicateKey
	store := testutil.NewObjectStoreStub()
	svc := newTestPhotoService(photoRepo, store)

	raw := testutil.TinyPNG(t, 2, 2)
	_, err := svc.Ingest(context.Background(), IngestPhotoInput{
		ImageData: testutil.DataURI("image/png", raw),
	})
	assertAppErrorCode(t, err, models.CodeInternal)

	// Every collision re-uploads under a fresh salt before giving up, and
	// each retry sends the complete payload from the spool file again.
	require.Len(t, store.Calls, saltRetries)
	for _, call := range store.Calls {
		assert.Equal(t, len(raw), call.Size)
	}
	assert.Zero(t, photoRepo.Count())
}
