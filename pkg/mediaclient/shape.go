// Package mediaclient is the client side of the media service: a bounded
// fallback state machine for displaying image URLs and a staging area for
// images attached to an entity before it has been saved.
package mediaclient

import (
	"net/url"
	"strings"
)

// Shape is the kind of image source a URL points at.
type Shape int

const (
	ShapeUnknown Shape = iota
	// ShapeBlob is an in-memory browser or staging reference. It never
	// survives a reload and is not displayed.
	ShapeBlob
	// ShapeAPI is a media service route such as /api/products/19/primary-image.
	ShapeAPI
	// ShapeUploads is a direct file URL under /uploads/.
	ShapeUploads
)

func (s Shape) String() string {
	switch s {
	case ShapeBlob:
		return "blob"
	case ShapeAPI:
		return "api"
	case ShapeUploads:
		return "uploads"
	default:
		return "unknown"
	}
}

// Classify returns the shape of src. Relative paths and absolute URLs on any
// origin are both recognised.
func Classify(src string) Shape {
	src = strings.TrimSpace(src)
	if src == "" {
		return ShapeUnknown
	}
	if strings.HasPrefix(src, "blob:") {
		return ShapeBlob
	}
	p := pathOf(src)
	switch {
	case strings.HasPrefix(p, "/api/"):
		return ShapeAPI
	case strings.HasPrefix(p, "/uploads/"):
		return ShapeUploads
	default:
		return ShapeUnknown
	}
}

// pathOf returns the path of src with a leading slash, or "" when src is an
// absolute URL with a scheme other than http(s).
func pathOf(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return ""
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if u.Scheme == "" && u.Host == "" && !strings.HasPrefix(u.Path, "/") {
		return ""
	}
	return u.Path
}

// apiTarget is the parsed form of an /api/{kind}/{id}/{route} URL.
type apiTarget struct {
	kind  string
	id    string
	route string
}

func parseAPI(src string) (apiTarget, bool) {
	parts := strings.Split(strings.TrimPrefix(pathOf(src), "/api/"), "/")
	if len(parts) < 3 || parts[1] == "" {
		return apiTarget{}, false
	}
	for _, c := range parts[1] {
		if c < '0' || c > '9' {
			return apiTarget{}, false
		}
	}
	return apiTarget{kind: parts[0], id: parts[1], route: strings.Join(parts[2:], "/")}, true
}
