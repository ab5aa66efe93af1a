package mediaclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// MaxAttempts is the number of failed loads after which an image settles on
// its fallback.
const MaxAttempts = 3

// ErrImageUnavailable is returned by loaders when a source cannot be shown.
var ErrImageUnavailable = errors.New("image unavailable")

// State is the displayed source of an image. Once Failed is set the URL is
// the fallback and no further loads are attempted.
type State struct {
	URL     string
	Attempt int
	Failed  bool
}

// Loader fetches a candidate source.
type Loader interface {
	Load(ctx context.Context, src string) error
}

// Image tracks the fallback state of one displayed image.
type Image struct {
	mu         sync.Mutex
	source     string
	shape      Shape
	fallback   string
	strategies []Strategy
	next       int
	state      State
}

// NewImage classifies src. Blob references and unrecognised shapes start
// out settled on the fallback.
func NewImage(src string, opts Options) *Image {
	fallback := opts.Fallback
	if fallback == "" {
		fallback = defaultFallback
	}
	img := &Image{
		source:   src,
		shape:    Classify(src),
		fallback: fallback,
	}
	img.strategies = StrategiesFor(img.shape, opts)

	switch img.shape {
	case ShapeAPI, ShapeUploads:
		img.state = State{URL: src}
	default:
		img.state = State{URL: fallback, Failed: true}
	}
	return img
}

// Shape returns the classification of the original source.
func (i *Image) Shape() Shape {
	return i.shape
}

// State returns a snapshot of the current state.
func (i *Image) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Fail records that failedURL could not be loaded and returns the state with
// the next source to try. Events for a source that is no longer current are
// stale and leave the state untouched.
func (i *Image) Fail(failedURL string) State {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state.Failed || failedURL != i.state.URL {
		return i.state
	}

	i.state.Attempt++
	if i.state.Attempt >= MaxAttempts {
		i.settle()
		return i.state
	}

	for i.next < len(i.strategies) {
		strategy := i.strategies[i.next]
		i.next++
		if rewritten, ok := strategy(i.source); ok && rewritten != i.state.URL {
			i.state.URL = rewritten
			return i.state
		}
	}

	i.settle()
	return i.state
}

func (i *Image) settle() {
	i.state.URL = i.fallback
	i.state.Failed = true
}

// Display loads candidates with loader until one succeeds or the image
// settles on its fallback. It always terminates within MaxAttempts loads.
func (i *Image) Display(ctx context.Context, loader Loader) State {
	for {
		current := i.State()
		if current.Failed {
			return current
		}
		if ctx.Err() != nil {
			i.mu.Lock()
			i.settle()
			i.mu.Unlock()
			continue
		}
		if err := loader.Load(ctx, current.URL); err == nil {
			return current
		}
		i.Fail(current.URL)
	}
}

// HTTPLoader loads candidates over HTTP, resolving relative sources against
// the page URL.
type HTTPLoader struct {
	client *http.Client
	base   *url.URL
}

// NewHTTPLoader creates a loader for a page at pageURL. A nil client uses a
// client with a 10 second timeout.
func NewHTTPLoader(pageURL string, client *http.Client) (*HTTPLoader, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("page url %q is not absolute", pageURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPLoader{client: client, base: base}, nil
}

// Load fetches src and succeeds only for a 2xx image response.
func (l *HTTPLoader) Load(ctx context.Context, src string) error {
	ref, err := url.Parse(src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImageUnavailable, err)
	}
	target := l.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImageUnavailable, err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImageUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned %d", ErrImageUnavailable, target, resp.StatusCode)
	}
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "image/") {
		return fmt.Errorf("%w: %s returned %q", ErrImageUnavailable, target, mediaType)
	}
	return nil
}
