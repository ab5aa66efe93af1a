package handlers

import (
	"bytes"
	_ "embed"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
)

const PlaceholderURL = "/placeholder-image.jpg"

//go:embed assets/placeholder.jpg
var defaultPlaceholder []byte

// PlaceholderHandlers serves the shared fallback image.
type PlaceholderHandlers struct {
	image   []byte
	modTime time.Time
}

// NewPlaceholderHandlers loads the placeholder from path, or uses the built-in
// image when path is empty.
func NewPlaceholderHandlers(path string) (*PlaceholderHandlers, error) {
	if path == "" {
		return &PlaceholderHandlers{image: defaultPlaceholder, modTime: time.Unix(0, 0)}, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat placeholder image: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read placeholder image: %w", err)
	}
	return &PlaceholderHandlers{image: data, modTime: info.ModTime()}, nil
}

// Placeholder godoc
// @Summary      Shared placeholder image
// @Tags         media
// @Produce      jpeg
// @Success      200
// @Router       /placeholder-image.jpg [get]
func (h *PlaceholderHandlers) Placeholder(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "image/jpeg")
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(c.Response(), c.Request(), "placeholder-image.jpg", h.modTime, bytes.NewReader(h.image))
	return nil
}
