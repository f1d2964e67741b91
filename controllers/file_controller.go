package controllers

import (
	"fmt"
	"log"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fitflow/gymfit_backend/models"
	"github.com/fitflow/gymfit_backend/services"
	"github.com/fitflow/gymfit_backend/utils"
)

// allowedPrefixes are the only bucket paths the proxy will serve. Anything
// outside them 404s regardless of what the bucket holds.
var allowedPrefixes = []string{"blogs/", "trainers/", "products/", "media/", "docs/"}

// FileController proxies object storage and accepts admin media uploads
type FileController struct {
	storage *services.StorageService
	logger  *log.Logger
}

func NewFileController(storage *services.StorageService) *FileController {
	return &FileController{
		storage: storage,
		logger:  log.New(os.Stdout, "[FILES] ", log.LstdFlags),
	}
}

// ServeFile streams an object from the storage bucket. Keys are immutable
// (uploads are timestamped), so responses carry a far-future cache header.
func (fc *FileController) ServeFile(c echo.Context) error {
	if !fc.storage.Enabled() {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Object storage is not configured",
		})
	}

	key := strings.TrimPrefix(c.Param("*"), "/")
	if key == "" || strings.Contains(key, "..") {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid file path",
		})
	}

	allowed := false
	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(key, prefix) {
			allowed = true
			break
		}
	}
	if !allowed {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "File not found",
		})
	}

	data, err := fc.storage.Download(key)
	if err != nil {
		fc.logger.Printf("Download failed for %s: %v", key, err)
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "File not found",
		})
	}

	contentType := contentTypeForKey(key)
	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if contentType == "application/pdf" {
		c.Response().Header().Set("Content-Disposition", "inline")
	}

	return c.Blob(http.StatusOK, contentType, data)
}

// UploadFile stores an admin-uploaded file in the bucket under the given
// directory and returns its proxy path.
func (fc *FileController) UploadFile(c echo.Context) error {
	if !fc.storage.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Status:  http.StatusServiceUnavailable,
			Message: "Object storage is not configured",
		})
	}

	dir := c.FormValue("directory")
	if dir == "" {
		dir = "media"
	}
	dir = strings.Trim(dir, "/")
	if !isAllowedDir(dir) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unknown upload directory",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "A file is required",
		})
	}

	data, err := readMultipartFile(fileHeader)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Failed to read uploaded file",
		})
	}

	key := fmt.Sprintf("%s/%d_%s", dir, time.Now().UnixNano(), utils.CleanFilename(fileHeader.Filename))
	contentType := contentTypeForKey(key)

	if _, err := fc.storage.Upload(key, contentType, data); err != nil {
		fc.logger.Printf("Upload failed for %s: %v", key, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to store file",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "File uploaded",
		Data:    map[string]interface{}{"path": "/api/files/" + key},
	})
}

// DeleteFile removes an object from the bucket
func (fc *FileController) DeleteFile(c echo.Context) error {
	if !fc.storage.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Status:  http.StatusServiceUnavailable,
			Message: "Object storage is not configured",
		})
	}

	key := strings.TrimPrefix(c.Param("*"), "/")
	if key == "" || strings.Contains(key, "..") {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid file path",
		})
	}

	if err := fc.storage.Delete(key); err != nil {
		fc.logger.Printf("Delete failed for %s: %v", key, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete file",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "File deleted",
	})
}

func isAllowedDir(dir string) bool {
	for _, prefix := range allowedPrefixes {
		if dir+"/" == prefix {
			return true
		}
	}
	return false
}

// contentTypeForKey infers the MIME type from the key's extension
func contentTypeForKey(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	switch ext {
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	default:
		return "application/octet-stream"
	}
}
