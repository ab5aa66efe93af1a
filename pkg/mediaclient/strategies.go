package mediaclient

import (
	"strconv"
	"strings"
)

// Strategy rewrites a failed source into the next candidate. It reports false
// when it does not apply to src.
type Strategy func(src string) (string, bool)

// Options configures the rewrite strategies.
type Options struct {
	// Fallback is displayed once every candidate has failed.
	Fallback string
	// Origin is the absolute origin of the media service, e.g.
	// "https://shop.example.com". Strategies that need it are skipped when
	// it is empty.
	Origin string
	// StoreHint is the store that owns the displayed product, when known.
	StoreHint int64
}

const defaultFallback = "/placeholder-image.jpg"

// StrategiesFor returns the ordered rewrites for a source of the given shape.
// Blob and unknown shapes have none and go straight to the fallback.
func StrategiesFor(shape Shape, opts Options) []Strategy {
	switch shape {
	case ShapeAPI:
		return []Strategy{GuessUploadPath(opts.StoreHint), ThumbnailRoute}
	case ShapeUploads:
		return []Strategy{StripLeadingSlash, WithOrigin(opts.Origin)}
	default:
		return nil
	}
}

// GuessUploadPath maps an entity route onto the default upload file of the
// entity. Product routes need the owning store, so the strategy does not
// apply to them without a store hint.
func GuessUploadPath(storeHint int64) Strategy {
	return func(src string) (string, bool) {
		t, ok := parseAPI(src)
		if !ok {
			return "", false
		}
		switch t.kind {
		case "stores":
			return "/uploads/stores/" + t.id + "/main.jpg", true
		case "products":
			if storeHint <= 0 {
				return "", false
			}
			return "/uploads/stores/" + strconv.FormatInt(storeHint, 10) + "/products/" + t.id + "/main.jpg", true
		default:
			return "", false
		}
	}
}

// ThumbnailRoute swaps an entity image route for its thumbnail route.
func ThumbnailRoute(src string) (string, bool) {
	t, ok := parseAPI(src)
	if !ok || t.route == "thumbnail" {
		return "", false
	}
	if t.kind != "products" && t.kind != "stores" {
		return "", false
	}
	return "/api/" + t.kind + "/" + t.id + "/thumbnail", true
}

// StripLeadingSlash turns a root relative uploads path into a document
// relative one.
func StripLeadingSlash(src string) (string, bool) {
	if !strings.HasPrefix(src, "/") || strings.HasPrefix(src, "//") {
		return "", false
	}
	return strings.TrimPrefix(src, "/"), true
}

// WithOrigin pins the uploads path of src to origin.
func WithOrigin(origin string) Strategy {
	origin = strings.TrimRight(origin, "/")
	return func(src string) (string, bool) {
		if origin == "" {
			return "", false
		}
		p := pathOf(src)
		if p == "" {
			return "", false
		}
		rewritten := origin + p
		if rewritten == src {
			return "", false
		}
		return rewritten, true
	}
}
