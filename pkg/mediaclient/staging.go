package mediaclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// StagedPrefix marks an image reference that has not been uploaded yet.
const StagedPrefix = "blob:staged/"

// ErrIncompleteImages reports that the parent was saved but some staged
// images failed to upload.
var ErrIncompleteImages = errors.New("images incomplete")

// ErrUnknownRef is returned when a staged reference is not held by the stager.
var ErrUnknownRef = errors.New("unknown staged reference")

// IsStaged reports whether ref is a staged, not yet durable, reference.
func IsStaged(ref string) bool {
	return strings.HasPrefix(ref, StagedPrefix)
}

// ParentKind is the kind of entity images are attached to.
type ParentKind string

const (
	ParentStore   ParentKind = "store"
	ParentProduct ParentKind = "product"
)

// Parent identifies a persisted entity. StoreID is the owning store of a
// product and equals ID for stores.
type Parent struct {
	Kind    ParentKind
	ID      int64
	StoreID int64
}

// StagedFile is a file held in memory until its parent exists.
type StagedFile struct {
	Ref         string
	Name        string
	ContentType string
	Data        []byte
}

// Stager is the image list of an entity that may not have been saved yet.
// Staged files appear in Images next to durable URLs, in insertion order.
type Stager struct {
	mu     sync.Mutex
	images []string
	files  map[string]*StagedFile
}

// NewStager creates a stager seeded with the entity's existing durable URLs.
func NewStager(existing ...string) *Stager {
	s := &Stager{files: make(map[string]*StagedFile)}
	for _, u := range existing {
		if u != "" && !IsStaged(u) {
			s.images = append(s.images, u)
		}
	}
	return s
}

// Stage holds the contents of r and returns its ephemeral reference.
func (s *Stager) Stage(name, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("file %s is empty", name)
	}

	ref := StagedPrefix + uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[ref] = &StagedFile{Ref: ref, Name: name, ContentType: contentType, Data: data}
	s.images = append(s.images, ref)
	return ref, nil
}

// Remove drops an image or staged reference from the list.
func (s *Stager) Remove(ref string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for idx, img := range s.images {
		if img == ref {
			s.images = append(s.images[:idx], s.images[idx+1:]...)
			delete(s.files, ref)
			return true
		}
	}
	return false
}

// Images returns the current list, staged references included.
func (s *Stager) Images() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.images...)
}

// DurableImages returns the list without staged references.
func (s *Stager) DurableImages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.images))
	for _, img := range s.images {
		if !IsStaged(img) {
			out = append(out, img)
		}
	}
	return out
}

// Open returns the contents of a staged file for local preview.
func (s *Stager) Open(ref string) (io.Reader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[ref]
	if !ok {
		return nil, ErrUnknownRef
	}
	return bytes.NewReader(f.Data), nil
}

// Pending returns the staged files in list order.
func (s *Stager) Pending() []StagedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []StagedFile
	for _, img := range s.images {
		if f, ok := s.files[img]; ok {
			out = append(out, *f)
		}
	}
	return out
}

func (s *Stager) replace(ref, durable string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for idx, img := range s.images {
		if img == ref {
			s.images[idx] = durable
			break
		}
	}
	delete(s.files, ref)
}

// Uploader sends one staged file to the upload pipeline and returns its
// durable URL.
type Uploader interface {
	Upload(ctx context.Context, parent Parent, file StagedFile) (string, error)
}

// UploadFailure is one staged file that could not be uploaded.
type UploadFailure struct {
	Ref  string
	Name string
	Err  error
}

// ReconcileResult lists what a reconciliation pass did.
type ReconcileResult struct {
	Uploaded map[string]string
	Failed   []UploadFailure
}

// Err returns ErrIncompleteImages joined with every upload error, or nil.
func (r *ReconcileResult) Err() error {
	if r == nil || len(r.Failed) == 0 {
		return nil
	}
	errs := []error{ErrIncompleteImages}
	for _, f := range r.Failed {
		errs = append(errs, fmt.Errorf("%s: %w", f.Name, f.Err))
	}
	return errors.Join(errs...)
}

// Reconcile uploads each staged file once, in list order, and swaps its
// reference for the durable URL. Failed files keep their staged reference
// and are not retried.
func (s *Stager) Reconcile(ctx context.Context, parent Parent, uploader Uploader) (*ReconcileResult, error) {
	if parent.ID <= 0 {
		return nil, fmt.Errorf("parent %s has no id", parent.Kind)
	}

	result := &ReconcileResult{Uploaded: make(map[string]string)}
	for _, file := range s.Pending() {
		durable, err := uploader.Upload(ctx, parent, file)
		if err == nil && (durable == "" || IsStaged(durable)) {
			err = fmt.Errorf("upload returned unusable url %q", durable)
		}
		if err != nil {
			result.Failed = append(result.Failed, UploadFailure{Ref: file.Ref, Name: file.Name, Err: err})
			continue
		}
		s.replace(file.Ref, durable)
		result.Uploaded[file.Ref] = durable
	}
	return result, result.Err()
}

// Creator persists a new parent entity and later saves its image list.
type Creator interface {
	Create(ctx context.Context) (Parent, error)
	Save(ctx context.Context, parent Parent, images []string) error
}

// SaveParent creates the parent, uploads its staged images and only then
// saves the parent with durable URLs. When some uploads fail the parent is
// still saved and the returned error wraps ErrIncompleteImages.
func SaveParent(ctx context.Context, stager *Stager, creator Creator, uploader Uploader) (Parent, *ReconcileResult, error) {
	parent, err := creator.Create(ctx)
	if err != nil {
		return Parent{}, nil, fmt.Errorf("failed to create parent: %w", err)
	}

	result, reconcileErr := stager.Reconcile(ctx, parent, uploader)
	if result == nil {
		return parent, nil, reconcileErr
	}

	if err := creator.Save(ctx, parent, stager.DurableImages()); err != nil {
		return parent, result, fmt.Errorf("failed to save parent: %w", err)
	}
	return parent, result, reconcileErr
}
