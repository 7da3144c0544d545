// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
)

// TB is the subset of testing.TB the fixtures need.
type TB interface {
	Helper()
	Fatalf(string, ...any)
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// TinyGIF returns an in-memory GIF byte slice with the requested dimensions.
func TinyGIF(t TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := gif.Encode(buf, img, nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return buf.Bytes()
}

// TinyJPEG returns an in-memory JPEG byte slice with the requested dimensions.
func TinyJPEG(t TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// DataURI wraps raw image bytes in a base64 data URI with the given media type.
func DataURI(mime string, raw []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw)
}
