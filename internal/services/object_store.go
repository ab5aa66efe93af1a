package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"time"

	"marketmedia/internal/common"
)

// ObjectInfo describes a stored image object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ModTime     time.Time
	ContentType string
}

// ObjectStore is the blob store image files live in. Keys are slash separated
// paths relative to the uploads root, e.g. "stores/9/products/19/a.jpg".
type ObjectStore interface {
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
	Open(ctx context.Context, key string) (io.ReadSeekCloser, *ObjectInfo, error)
	Ping(ctx context.Context) error
}

type localObjectStore struct {
	root string
}

// NewLocalObjectStore serves objects from a directory on disk.
func NewLocalObjectStore(root string) ObjectStore {
	return &localObjectStore{root: root}
}

func (s *localObjectStore) resolve(key string) (string, error) {
	full, err := common.SecureJoin(s.root, key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPathRejected, err)
	}
	return full, nil
}

func (s *localObjectStore) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	full, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrObjectNotFound
	}
	return &ObjectInfo{
		Key:         key,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: mime.TypeByExtension(path.Ext(key)),
	}, nil
}

func (s *localObjectStore) Open(ctx context.Context, key string) (io.ReadSeekCloser, *ObjectInfo, error) {
	info, err := s.Stat(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	full, err := s.resolve(key)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrObjectNotFound
		}
		return nil, nil, err
	}
	return f, info, nil
}

func (s *localObjectStore) Ping(ctx context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("uploads root %s is not a directory", s.root)
	}
	return nil
}
