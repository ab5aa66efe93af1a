package common

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"marketmedia/internal/models"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey       contextKey = "user_id"
	OwnershipKey    contextKey = "ownership"
	ProductImageKey contextKey = "product_image"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// ParseID parses a positive decimal id. Leading zeros, signs and whitespace are
// rejected so that every id has exactly one accepted spelling.
func ParseID(raw string) (int64, bool) {
	if raw == "" || strings.TrimSpace(raw) != raw || raw[0] == '+' || raw[0] == '-' {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	if strconv.FormatInt(id, 10) != raw {
		return 0, false
	}
	return id, true
}

// ParseUserID parses the subject claim of an access token.
func ParseUserID(sub string) (int64, error) {
	id, ok := ParseID(sub)
	if !ok {
		return 0, fmt.Errorf("invalid user id %q", sub)
	}
	return id, nil
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// WithOwnership returns a copy of ctx carrying a validated ownership value.
func WithOwnership(ctx context.Context, owner models.Ownership) context.Context {
	return context.WithValue(ctx, OwnershipKey, owner)
}

// GetOwnershipFromContext extracts the validated ownership from the request context
func GetOwnershipFromContext(ctx context.Context) (models.Ownership, bool) {
	owner, ok := ctx.Value(OwnershipKey).(models.Ownership)
	return owner, ok
}

// WithProductImage returns a copy of ctx carrying an ownership-validated image row.
func WithProductImage(ctx context.Context, image *models.ProductImage) context.Context {
	return context.WithValue(ctx, ProductImageKey, image)
}

// GetProductImageFromContext extracts the validated image row from the request context
func GetProductImageFromContext(ctx context.Context) (*models.ProductImage, bool) {
	image, ok := ctx.Value(ProductImageKey).(*models.ProductImage)
	return image, ok && image != nil
}
