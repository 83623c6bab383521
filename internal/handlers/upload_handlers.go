package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"apartment_app_echo/internal/services"
)

type UploadHandler struct {
	uploads *services.UploadService
}

func NewUploadHandler(uploads *services.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Upload stores the multipart "file" field under the folder picked by "type"
func (h *UploadHandler) Upload(c echo.Context) error {
	return h.store(c, "file", c.FormValue("type"))
}

// UploadImage stores the multipart "image" field as a general image
func (h *UploadHandler) UploadImage(c echo.Context) error {
	return h.store(c, "image", "general")
}

func (h *UploadHandler) store(c echo.Context, field, uploadType string) error {
	header, err := c.FormFile(field)
	if err != nil {
		return serviceError(c, services.ErrMissingFile, msgErrUpload)
	}

	contentType := header.Header.Get(echo.HeaderContentType)
	if err := services.ValidateUpload(contentType, header.Size); err != nil {
		return serviceError(c, err, msgErrUpload)
	}

	file, err := header.Open()
	if err != nil {
		return serviceError(c, err, msgErrUpload)
	}
	defer file.Close()

	result, err := h.uploads.Upload(c.Request().Context(), services.UploadInput{
		UserID:      getUintFromContext(c, "userID"),
		Type:        uploadType,
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		return serviceError(c, err, msgErrUpload)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}
