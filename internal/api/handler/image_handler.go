package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

// ImageHandler serves stored package and profile images.
type ImageHandler struct {
	files ports.FileStore
}

func NewImageHandler(files ports.FileStore) *ImageHandler {
	return &ImageHandler{files: files}
}

// Get handles GET /v1/images/:ref.
//
// @Summary      Serve a stored image
// @Tags         images
// @Produce      octet-stream
// @Param        ref  path  string  true  "Image reference"
// @Success      200
// @Failure      404  {object}  map[string]string
// @Router       /v1/images/{ref} [get]
func (h *ImageHandler) Get(c echo.Context) error {
	path, err := h.files.Resolve(c.Request().Context(), c.Param("ref"))
	if err != nil {
		return err
	}
	return c.File(path)
}
