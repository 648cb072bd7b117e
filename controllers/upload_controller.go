package controllers

import (
	"errors"
	"net/http"

	"toolshed/app"
	"toolshed/storage"

	"github.com/gin-gonic/gin"
)

type UploadController struct{ *Srv }

func NewUploadController(s *Srv) *UploadController { return &UploadController{Srv: s} }

// Uploads larger than this are refused before decoding.
const maxUploadBytes = 10 << 20

// POST /api/uploads/:bucket — multipart "file"; returns the public URL the
// client stores on the tool or profile.
func (uc *UploadController) Upload(c *gin.Context) {
	bucket := c.Param("bucket")
	if !storage.Buckets[bucket] {
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown bucket"})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing file"})
		return
	}
	if fh.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, app.H{"error": "file too large"})
		return
	}

	name, err := uc.Images.Save(fh, bucket)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			c.JSON(http.StatusUnsupportedMediaType, app.H{"error": "Only JPEG, PNG and GIF images are supported"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, app.H{
		"path": name,
		"url":  uc.Images.PublicURL(bucket, name),
	})
}
