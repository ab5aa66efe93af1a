package services

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceNotFound covers every reason a public caller may not see an
	// image. Handlers must not distinguish its causes in the response.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrOwnershipMismatch means the claimed ids do not chain together.
	ErrOwnershipMismatch = fmt.Errorf("ownership mismatch: %w", ErrResourceNotFound)
	// ErrImageNotFound means no tier produced a servable file.
	ErrImageNotFound = errors.New("image not found")
	// ErrPathRejected means a stored path cannot be trusted for this owner.
	ErrPathRejected = errors.New("stored path rejected")
	// ErrObjectNotFound is returned by object stores for missing keys.
	ErrObjectNotFound = errors.New("object not found")
)
