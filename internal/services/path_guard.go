package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/gommon/log"
)

// SecuredPath is a stored URL that has been checked against its owner and
// found to exist in the object store.
type SecuredPath struct {
	URL  string
	Key  string
	Info *ObjectInfo
	// Drifted is set when the stored URL was rebuilt under the owner's prefix.
	Drifted bool
	// Untrusted is set when the original, non-canonical path was served.
	Untrusted bool
}

type PathGuard interface {
	Secure(ctx context.Context, stored string, target PathTarget) (*SecuredPath, error)
}

type pathGuard struct {
	store  ObjectStore
	logger *log.Logger
}

func NewPathGuard(store ObjectStore, logger *log.Logger) PathGuard {
	return &pathGuard{store: store, logger: logger}
}

// Secure maps stored onto the canonical location for target and verifies that
// something servable exists there. When the rebuilt location is empty the
// original path is tried as a last resort, confined to the uploads root.
func (g *pathGuard) Secure(ctx context.Context, stored string, target PathTarget) (*SecuredPath, error) {
	canonical, drifted, err := CanonicalizeURL(stored, target)
	if err != nil {
		g.logger.Warnj(log.JSON{"event": "path-rejected", "stored": stored, "store_id": target.StoreID, "product_id": target.ProductID, "error": err.Error()})
		return nil, fmt.Errorf("%w: %v", ErrImageNotFound, err)
	}

	p, _ := ParseCanonicalPath(canonical)
	info, err := g.store.Stat(ctx, p.ObjectKey())
	switch {
	case err == nil:
		if drifted {
			g.logger.Warnj(log.JSON{"event": "path-drift", "stored": stored, "canonical": canonical, "variant": target.Variant.String()})
		}
		return &SecuredPath{URL: canonical, Key: p.ObjectKey(), Info: info, Drifted: drifted}, nil
	case !errors.Is(err, ErrObjectNotFound):
		return nil, err
	case !drifted:
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, canonical)
	}

	return g.secureOriginal(ctx, stored, target)
}

func (g *pathGuard) secureOriginal(ctx context.Context, stored string, target PathTarget) (*SecuredPath, error) {
	key, err := ObjectKeyForURL(stored)
	if err != nil {
		g.logger.Warnj(log.JSON{"event": "path-rejected", "stored": stored, "error": err.Error()})
		return nil, err
	}
	// Ownership is judged on the cleaned key, the same one the store resolves.
	if !target.OwnsKey(key) {
		g.logger.Warnj(log.JSON{
			"event":      "foreign-path",
			"stored":     stored,
			"key":        key,
			"store_id":   target.StoreID,
			"product_id": target.ProductID,
		})
		return nil, fmt.Errorf("%w: %s belongs to another owner", ErrPathRejected, stored)
	}

	info, err := g.store.Stat(ctx, key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, stored)
		}
		if errors.Is(err, ErrPathRejected) {
			g.logger.Warnj(log.JSON{"event": "path-rejected", "stored": stored, "error": err.Error()})
		}
		return nil, err
	}

	g.logger.Warnj(log.JSON{"event": "untrusted-original", "stored": stored, "key": key, "store_id": target.StoreID, "product_id": target.ProductID})
	return &SecuredPath{URL: UploadsURLPrefix + key, Key: key, Info: info, Drifted: true, Untrusted: true}, nil
}
