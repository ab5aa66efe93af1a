package services

import (
	"context"
	"errors"

	"marketmedia/internal/models"

	"github.com/labstack/gommon/log"
)

// Tier records which step of the fallback chain produced an image.
type Tier int

const (
	TierPrimary Tier = iota + 1
	TierAny
	TierDefault
	TierSpecific
	TierPlaceholder
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierAny:
		return "any"
	case TierDefault:
		return "default"
	case TierSpecific:
		return "specific"
	default:
		return "placeholder"
	}
}

// Resolution is the outcome of resolving an owner's image. Path is nil only
// for TierPlaceholder.
type Resolution struct {
	Tier    Tier
	ImageID int64
	Path    *SecuredPath
}

func placeholderResolution() *Resolution {
	return &Resolution{Tier: TierPlaceholder}
}

type ImageResolver interface {
	// Resolve walks the fallback chain for a validated owner. A total miss is
	// not an error; it yields TierPlaceholder.
	Resolve(ctx context.Context, src ImageSource, owner models.Ownership, variant Variant) (*Resolution, error)
	// ResolveRecord secures a single, already validated row.
	ResolveRecord(ctx context.Context, src ImageSource, owner models.Ownership, record models.ImageRecord, variant Variant) (*Resolution, error)
}

type imageResolver struct {
	guard  PathGuard
	logger *log.Logger
}

func NewImageResolver(guard PathGuard, logger *log.Logger) ImageResolver {
	return &imageResolver{guard: guard, logger: logger}
}

func (r *imageResolver) Resolve(ctx context.Context, src ImageSource, owner models.Ownership, variant Variant) (*Resolution, error) {
	target := src.CanonicalTarget(owner, variant)

	primaries, err := src.LookupPrimary(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(primaries) > 0 {
		if len(primaries) > 1 {
			r.logger.Debugf("%s %d has %d primary images", src.Kind(), owner.EntityID(), len(primaries))
		}
		return r.firstServable(ctx, src, owner, primaries, target, TierPrimary)
	}

	rows, err := src.LookupAny(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return r.firstServable(ctx, src, owner, rows, target, TierAny)
	}

	secured, err := r.guard.Secure(ctx, src.DefaultFilePath(owner, variant), target)
	if err == nil {
		r.logger.Infof("%s %d %s resolved by default file %s", src.Kind(), owner.EntityID(), variant, secured.URL)
		return &Resolution{Tier: TierDefault, Path: secured}, nil
	}
	if !errors.Is(err, ErrImageNotFound) {
		return nil, err
	}
	r.logTotalMiss(src, owner, variant)
	return placeholderResolution(), nil
}

func (r *imageResolver) firstServable(ctx context.Context, src ImageSource, owner models.Ownership, records []models.ImageRecord, target PathTarget, tier Tier) (*Resolution, error) {
	for _, record := range records {
		secured, err := r.guard.Secure(ctx, candidateURL(record, target.Variant), target)
		if err != nil {
			if errors.Is(err, ErrImageNotFound) || errors.Is(err, ErrPathRejected) {
				continue
			}
			return nil, err
		}
		if !secured.Drifted {
			r.logger.Infof("%s %d %s resolved by %s image %d", src.Kind(), owner.EntityID(), target.Variant, tier, record.ID)
		}
		return &Resolution{Tier: tier, ImageID: record.ID, Path: secured}, nil
	}
	r.logTotalMiss(src, owner, target.Variant)
	return placeholderResolution(), nil
}

func (r *imageResolver) ResolveRecord(ctx context.Context, src ImageSource, owner models.Ownership, record models.ImageRecord, variant Variant) (*Resolution, error) {
	secured, err := r.guard.Secure(ctx, candidateURL(record, variant), src.CanonicalTarget(owner, variant))
	if err != nil {
		if errors.Is(err, ErrImageNotFound) || errors.Is(err, ErrPathRejected) {
			r.logger.Errorj(log.JSON{"event": "total-miss", "kind": string(src.Kind()), "id": owner.EntityID(), "image_id": record.ID, "variant": variant.String()})
			return placeholderResolution(), nil
		}
		return nil, err
	}
	return &Resolution{Tier: TierSpecific, ImageID: record.ID, Path: secured}, nil
}

func (r *imageResolver) logTotalMiss(src ImageSource, owner models.Ownership, variant Variant) {
	r.logger.Errorj(log.JSON{"event": "total-miss", "kind": string(src.Kind()), "id": owner.EntityID(), "variant": variant.String()})
}
