package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func uploadRequest(t *testing.T, body []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(body); err != nil {
		t.Fatal(err)
	}
	w.Close()

	req := httptest.NewRequest("POST", "/api/uploads/tools", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File["file"][0]
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSaveRoundTrip(t *testing.T) {
	store, err := NewImageStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatal(err)
	}

	name, err := store.Save(uploadRequest(t, encodePNG(t)), "tools")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(name, ".png") {
		t.Errorf("stored name %q should carry the decoded format's extension", name)
	}

	// The stored file must decode back as an image.
	f, err := os.Open(filepath.Join(store.Dir(), "tools", name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, _, err := image.Decode(f); err != nil {
		t.Errorf("stored file does not decode: %v", err)
	}

	if got := store.PublicURL("tools", name); got != "/uploads/tools/"+name {
		t.Errorf("PublicURL = %q", got)
	}
}

func TestSaveRejectsNonImages(t *testing.T) {
	store, err := NewImageStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.Save(uploadRequest(t, []byte("#!/bin/sh\necho hi\n")), "tools"); err != ErrUnsupportedType {
		t.Errorf("script upload: err = %v, want ErrUnsupportedType", err)
	}
	if _, err := store.Save(uploadRequest(t, encodePNG(t)), "nope"); err != ErrUnknownBucket {
		t.Errorf("unknown bucket: err = %v, want ErrUnknownBucket", err)
	}
}

func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		"a.jpg":  "image/jpeg",
		"b.JPEG": "image/jpeg",
		"c.png":  "image/png",
		"d.gif":  "image/gif",
		"e.webp": "application/octet-stream",
	}
	for name, want := range cases {
		if got := ContentTypeFor(name); got != want {
			t.Errorf("ContentTypeFor(%q) = %q, want %q", name, got, want)
		}
	}
}
