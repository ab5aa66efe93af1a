package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCanonicalPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  CanonicalPath
		ok    bool
	}{
		{"product image", "/uploads/stores/9/products/19/a.jpg", CanonicalPath{StoreID: 9, ProductID: 19, Filename: "a.jpg"}, true},
		{"product thumbnail", "/uploads/stores/9/products/19/thumb-a.jpg", CanonicalPath{StoreID: 9, ProductID: 19, Filename: "thumb-a.jpg"}, true},
		{"store image", "/uploads/stores/9/logo.png", CanonicalPath{StoreID: 9, Filename: "logo.png"}, true},
		{"bare filename", "a.jpg", CanonicalPath{}, false},
		{"missing leading slash", "uploads/stores/9/products/19/a.jpg", CanonicalPath{}, false},
		{"absolute url", "http://cdn.example.com/uploads/stores/9/a.jpg", CanonicalPath{}, false},
		{"zero store", "/uploads/stores/0/a.jpg", CanonicalPath{}, false},
		{"leading zero", "/uploads/stores/09/a.jpg", CanonicalPath{}, false},
		{"negative product", "/uploads/stores/9/products/-1/a.jpg", CanonicalPath{}, false},
		{"wrong segment", "/uploads/stores/9/items/19/a.jpg", CanonicalPath{}, false},
		{"traversal filename", "/uploads/stores/9/products/19/..", CanonicalPath{}, false},
		{"nested directory", "/uploads/stores/9/products/19/x/a.jpg", CanonicalPath{}, false},
		{"empty filename", "/uploads/stores/9/", CanonicalPath{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCanonicalPath(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCanonicalPath_RoundTrip(t *testing.T) {
	for _, raw := range []string{
		"/uploads/stores/9/products/19/a.jpg",
		"/uploads/stores/9/products/19/thumb-a.jpg",
		"/uploads/stores/12/banner.webp",
	} {
		p, ok := ParseCanonicalPath(raw)
		require.True(t, ok, raw)
		assert.Equal(t, raw, FormatCanonicalPath(p))
	}
}

func TestCanonicalPath_ObjectKey(t *testing.T) {
	p := CanonicalPath{StoreID: 9, ProductID: 19, Filename: "a.jpg"}
	assert.Equal(t, "stores/9/products/19/a.jpg", p.ObjectKey())
}

func TestCanonicalizeURL(t *testing.T) {
	product := PathTarget{StoreID: 9, ProductID: 19}
	thumb := PathTarget{StoreID: 9, ProductID: 19, Variant: VariantThumbnail}
	store := PathTarget{StoreID: 9}

	tests := []struct {
		name        string
		stored      string
		target      PathTarget
		want        string
		wantDrifted bool
	}{
		{"canonical unchanged", "/uploads/stores/9/products/19/a.jpg", product, "/uploads/stores/9/products/19/a.jpg", false},
		{"bare filename", "a.jpg", product, "/uploads/stores/9/products/19/a.jpg", true},
		{"legacy flat upload", "/uploads/5f1c.jpg", product, "/uploads/stores/9/products/19/5f1c.jpg", true},
		{"absolute url with query", "https://old.example.com/img/a.jpg?v=3", product, "/uploads/stores/9/products/19/a.jpg", true},
		{"windows separators", "uploads\\old\\a.jpg", product, "/uploads/stores/9/products/19/a.jpg", true},
		{"foreign product", "/uploads/stores/9/products/20/a.jpg", product, "/uploads/stores/9/products/19/a.jpg", true},
		{"foreign store", "/uploads/stores/7/products/19/a.jpg", product, "/uploads/stores/9/products/19/a.jpg", true},
		{"thumbnail prefix added", "a.jpg", thumb, "/uploads/stores/9/products/19/thumb-a.jpg", true},
		{"thumbnail prefix kept", "thumb-a.jpg", thumb, "/uploads/stores/9/products/19/thumb-a.jpg", true},
		{"canonical thumbnail unchanged", "/uploads/stores/9/products/19/thumb-a.jpg", thumb, "/uploads/stores/9/products/19/thumb-a.jpg", false},
		{"store image", "logo.png", store, "/uploads/stores/9/logo.png", true},
		{"product path for store target", "/uploads/stores/9/products/19/a.jpg", store, "/uploads/stores/9/a.jpg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, drifted, err := CanonicalizeURL(tt.stored, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDrifted, drifted)
		})
	}
}

func TestCanonicalizeURL_Idempotent(t *testing.T) {
	targets := []PathTarget{
		{StoreID: 9, ProductID: 19},
		{StoreID: 9, ProductID: 19, Variant: VariantThumbnail},
		{StoreID: 9},
	}
	inputs := []string{"a.jpg", "/uploads/x/y/b.png", "https://h/c.gif", "/uploads/stores/3/products/4/d.jpg", "thumb-e.jpg"}

	for _, target := range targets {
		for _, in := range inputs {
			once, _, err := CanonicalizeURL(in, target)
			require.NoError(t, err)
			twice, drifted, err := CanonicalizeURL(once, target)
			require.NoError(t, err)
			assert.Equal(t, once, twice, "input %q", in)
			assert.False(t, drifted, "input %q", in)
		}
	}
}

func TestCanonicalizeURL_NoFilename(t *testing.T) {
	for _, stored := range []string{"", "/", "/uploads/..", "https://example.com/"} {
		_, _, err := CanonicalizeURL(stored, PathTarget{StoreID: 1, ProductID: 2})
		assert.True(t, errors.Is(err, ErrPathRejected), "stored %q", stored)
	}
}

func TestObjectKeyForURL(t *testing.T) {
	tests := []struct {
		stored  string
		want    string
		wantErr bool
	}{
		{"/uploads/legacy/a.jpg", "legacy/a.jpg", false},
		{"uploads/a.jpg", "a.jpg", false},
		{"a.jpg", "a.jpg", false},
		{"https://old.example.com/uploads/x/a.jpg", "x/a.jpg", false},
		{"/uploads/../etc/passwd", "", true},
		{"..\\..\\secret.jpg", "", true},
		{"/uploads/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.stored, func(t *testing.T) {
			got, err := ObjectKeyForURL(tt.stored)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrPathRejected)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathTarget_OwnsKey(t *testing.T) {
	product := PathTarget{StoreID: 9, ProductID: 19}
	store := PathTarget{StoreID: 9}

	tests := []struct {
		name   string
		target PathTarget
		key    string
		want   bool
	}{
		{"own product file", product, "stores/9/products/19/a.jpg", true},
		{"own product nested", product, "stores/9/products/19/old/a.jpg", true},
		{"other product", product, "stores/9/products/20/a.jpg", false},
		{"other store", product, "stores/10/products/19/a.jpg", false},
		{"store level file for product", product, "stores/9/a.jpg", false},
		{"padded store id", product, "stores/09/products/19/a.jpg", false},
		{"own store file", store, "stores/9/logo.png", true},
		{"store into products", store, "stores/9/products/20/a.jpg", false},
		{"other store for store", store, "stores/10/logo.png", false},
		{"outside tenant folders", product, "legacy/a.jpg", true},
		{"file named stores", product, "stores/a.jpg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.target.OwnsKey(tt.key))
		})
	}
}

func TestThumbnailURLFor(t *testing.T) {
	assert.Equal(t, "/uploads/stores/9/products/19/thumb-a.jpg", ThumbnailURLFor("/uploads/stores/9/products/19/a.jpg"))
	assert.Equal(t, "thumb-a.jpg", ThumbnailURLFor("a.jpg"))
	assert.Equal(t, "/x/thumb-a.jpg", ThumbnailURLFor("/x/thumb-a.jpg"))
}
