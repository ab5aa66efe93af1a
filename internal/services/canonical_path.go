package services

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
)

const (
	UploadsURLPrefix = "/uploads/"
	ThumbnailPrefix  = "thumb-"
	DefaultFilename  = "main.jpg"
)

// Variant selects the full-size image or its thumbnail.
type Variant int

const (
	VariantFull Variant = iota
	VariantThumbnail
)

func (v Variant) String() string {
	if v == VariantThumbnail {
		return "thumbnail"
	}
	return "full"
}

// CanonicalPath is the parsed form of a tenant-scoped upload URL:
//
//	/uploads/stores/{storeId}/products/{productId}/{filename}
//	/uploads/stores/{storeId}/{filename}
//
// ProductID is zero for store images.
type CanonicalPath struct {
	StoreID   int64
	ProductID int64
	Filename  string
}

// PathTarget is the location an owner's images must live under.
type PathTarget struct {
	StoreID   int64
	ProductID int64
	Variant   Variant
}

// Owns reports whether p lies directly under the target's directory.
func (t PathTarget) Owns(p CanonicalPath) bool {
	return p.StoreID == t.StoreID && p.ProductID == t.ProductID
}

// OwnsKey reports whether an object key is allowed for the target. Keys inside
// a store folder must lie under the target's own directory; product targets
// need their product folder and store targets may not reach into products/.
// Keys outside stores/ are not tenant scoped.
func (t PathTarget) OwnsKey(key string) bool {
	segs := strings.Split(key, "/")
	if len(segs) < 3 || segs[0] != "stores" {
		return true
	}
	if segs[1] != strconv.FormatInt(t.StoreID, 10) {
		return false
	}
	underProducts := segs[2] == "products" && len(segs) > 3
	if t.ProductID == 0 {
		return !underProducts
	}
	return underProducts && len(segs) > 4 && segs[3] == strconv.FormatInt(t.ProductID, 10)
}

// PathFor builds the canonical path for filename, applying the thumbnail
// naming convention when the target is a thumbnail.
func (t PathTarget) PathFor(filename string) CanonicalPath {
	if t.Variant == VariantThumbnail && !strings.HasPrefix(filename, ThumbnailPrefix) {
		filename = ThumbnailPrefix + filename
	}
	return CanonicalPath{StoreID: t.StoreID, ProductID: t.ProductID, Filename: filename}
}

// FormatCanonicalPath renders p as a public URL path.
func FormatCanonicalPath(p CanonicalPath) string {
	if p.ProductID > 0 {
		return fmt.Sprintf("/uploads/stores/%d/products/%d/%s", p.StoreID, p.ProductID, p.Filename)
	}
	return fmt.Sprintf("/uploads/stores/%d/%s", p.StoreID, p.Filename)
}

// ObjectKey is the object store key of p.
func (p CanonicalPath) ObjectKey() string {
	return strings.TrimPrefix(FormatCanonicalPath(p), UploadsURLPrefix)
}

// ParseCanonicalPath parses an exact canonical URL path. Absolute URLs, query
// strings, non-decimal ids and nested filenames are not canonical.
func ParseCanonicalPath(raw string) (CanonicalPath, bool) {
	rest, ok := strings.CutPrefix(raw, UploadsURLPrefix+"stores/")
	if !ok {
		return CanonicalPath{}, false
	}
	segs := strings.Split(rest, "/")

	var p CanonicalPath
	switch len(segs) {
	case 2:
		p.Filename = segs[1]
	case 4:
		if segs[1] != "products" {
			return CanonicalPath{}, false
		}
		productID, ok := parsePositiveID(segs[2])
		if !ok {
			return CanonicalPath{}, false
		}
		p.ProductID = productID
		p.Filename = segs[3]
	default:
		return CanonicalPath{}, false
	}

	storeID, ok := parsePositiveID(segs[0])
	if !ok || !validFilename(p.Filename) {
		return CanonicalPath{}, false
	}
	p.StoreID = storeID
	return p, true
}

// CanonicalizeURL maps a stored URL onto the target's canonical location. A URL
// that already parses as canonical for the target is returned unchanged, so the
// function is idempotent. Otherwise the trailing filename is rebuilt under the
// target and drifted is true.
func CanonicalizeURL(stored string, target PathTarget) (canonical string, drifted bool, err error) {
	if p, ok := ParseCanonicalPath(stored); ok && target.Owns(p) {
		return stored, false, nil
	}
	filename := TrailingFilename(stored)
	if !validFilename(filename) {
		return "", false, fmt.Errorf("%w: no usable filename in %q", ErrPathRejected, stored)
	}
	return FormatCanonicalPath(target.PathFor(filename)), true, nil
}

// TrailingFilename extracts the last path segment of a stored URL, ignoring
// any scheme, host, query or fragment. Backslashes count as separators.
func TrailingFilename(stored string) string {
	p := urlPath(stored)
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	return p
}

// ObjectKeyForURL maps any stored URL onto an object key relative to the
// uploads root. It is used for untrusted, non-canonical originals.
func ObjectKeyForURL(stored string) (string, error) {
	p := strings.TrimLeft(urlPath(stored), "/")
	p = strings.TrimPrefix(p, strings.TrimPrefix(UploadsURLPrefix, "/"))
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: traversal in %q", ErrPathRejected, stored)
		}
	}
	clean := path.Clean("/" + p)
	if clean == "/" {
		return "", fmt.Errorf("%w: empty path in %q", ErrPathRejected, stored)
	}
	return strings.TrimPrefix(clean, "/"), nil
}

// ThumbnailURLFor derives the conventional thumbnail URL of a full-size URL.
func ThumbnailURLFor(imageURL string) string {
	p := urlPath(imageURL)
	dir, file := "", p
	if i := strings.LastIndex(p, "/"); i >= 0 {
		dir, file = p[:i+1], p[i+1:]
	}
	if file == "" || strings.HasPrefix(file, ThumbnailPrefix) {
		return p
	}
	return dir + ThumbnailPrefix + file
}

func urlPath(stored string) string {
	s := strings.ReplaceAll(strings.TrimSpace(stored), "\\", "/")
	if u, err := url.Parse(s); err == nil && (u.Scheme != "" || u.Host != "") {
		return u.Path
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return s
}

func parsePositiveID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 || strconv.FormatInt(id, 10) != s {
		return 0, false
	}
	return id, true
}

func validFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\?#\x00")
}
