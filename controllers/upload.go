package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"mindmemos/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// UploadImage stores a post image under the upload dir and returns the URL
// it will be served from.
func UploadImage() gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Image file is required"})
			return
		}

		maxBytes := int64(config.MaxUploadSizeMB) << 20
		if fileHeader.Size > maxBytes {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Image is too large"})
			return
		}

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !allowedImageExts[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Only png, jpg and webp images are allowed"})
			return
		}

		if err := os.MkdirAll(config.UploadDir, 0o755); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to store image"})
			return
		}

		name := uuid.NewString() + ext
		dst := filepath.Join(config.UploadDir, name)
		if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to store image"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"image_url": "/uploads/" + name})
	}
}
