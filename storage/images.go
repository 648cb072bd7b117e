// Package storage handles uploaded images for tool photos and avatars:
// sniff the real content type, decode and re-encode (which drops metadata),
// store under a random name, hand back a public URL.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnsupportedType = errors.New("unsupported image type")
var ErrUnknownBucket = errors.New("unknown bucket")

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Buckets the API accepts, matching the original's storage buckets.
var Buckets = map[string]bool{
	"tools":   true,
	"avatars": true,
}

type ImageStore struct {
	baseDir string
	baseURL string
}

// NewImageStore creates the bucket directories under baseDir. baseURL is the
// public prefix the files are served from (e.g. "/uploads").
func NewImageStore(baseDir, baseURL string) (*ImageStore, error) {
	for b := range Buckets {
		if err := os.MkdirAll(filepath.Join(baseDir, b), 0o755); err != nil {
			return nil, fmt.Errorf("create bucket dir %s: %w", b, err)
		}
	}
	return &ImageStore{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *ImageStore) Dir() string { return s.baseDir }

// PublicURL resolves a stored path to the URL clients fetch it from.
func (s *ImageStore) PublicURL(bucket, name string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, bucket, name)
}

// Save validates and stores one uploaded image. The file is decoded and
// re-encoded rather than copied byte-for-byte, so anything that is not a real
// image fails here and EXIF/metadata never reaches disk.
func (s *ImageStore) Save(fileHeader *multipart.FileHeader, bucket string) (string, error) {
	if !Buckets[bucket] {
		return "", ErrUnknownBucket
	}
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	// Sniff the real content type from the first 512 bytes.
	head := make([]byte, 512)
	if _, err := file.Read(head); err != nil && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	if !allowedImageTypes[http.DetectContentType(head)] {
		return "", ErrUnsupportedType
	}

	img, format, err := image.Decode(file)
	if err != nil {
		return "", ErrUnsupportedType
	}

	name, err := randomName()
	if err != nil {
		return "", err
	}
	name += "." + format
	path := filepath.Join(s.baseDir, bucket, name)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()

	switch format {
	case "jpeg":
		err = jpeg.Encode(out, img, nil)
	case "png":
		err = png.Encode(out, img)
	case "gif":
		err = gif.Encode(out, img, nil)
	default:
		err = ErrUnsupportedType
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}
	return name, nil
}

func randomName() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// ContentTypeFor maps a stored filename to the Content-Type it is served
// with.
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
