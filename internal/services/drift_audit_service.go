package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketmedia/internal/common"
	"marketmedia/internal/models"
	"marketmedia/internal/repositories"

	"github.com/labstack/gommon/log"
)

const auditPageSize = 500

type DriftStatus string

const (
	DriftCanonical DriftStatus = "canonical"
	DriftRecovered DriftStatus = "drifted"
	DriftUntrusted DriftStatus = "untrusted-original"
	DriftRejected  DriftStatus = "rejected"
	DriftMissing   DriftStatus = "missing"
)

// DriftFinding is one stored URL that is not served from its canonical location.
type DriftFinding struct {
	Kind      string      `json:"kind"`
	ImageID   int64       `json:"image_id"`
	StoreID   int64       `json:"store_id"`
	ProductID int64       `json:"product_id,omitempty"`
	Variant   string      `json:"variant"`
	Stored    string      `json:"stored"`
	Served    string      `json:"served,omitempty"`
	Status    DriftStatus `json:"status"`
}

type DriftReport struct {
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	Scanned    int                 `json:"scanned"`
	Counts     map[DriftStatus]int `json:"counts"`
	Findings   []DriftFinding      `json:"findings"`
}

// Clean reports whether every scanned URL is canonical.
func (r *DriftReport) Clean() bool {
	return r.Scanned == r.Counts[DriftCanonical]
}

// DriftAuditService walks every stored image URL and classifies how the path
// guard would serve it.
type DriftAuditService interface {
	Run(ctx context.Context) (*DriftReport, error)
}

type driftAuditService struct {
	productImageRepo repositories.ProductImageRepository
	storeImageRepo   repositories.StoreImageRepository
	guard            PathGuard
	logger           *log.Logger
}

func NewDriftAuditService(productImageRepo repositories.ProductImageRepository, storeImageRepo repositories.StoreImageRepository, guard PathGuard, logger *log.Logger) DriftAuditService {
	return &driftAuditService{
		productImageRepo: productImageRepo,
		storeImageRepo:   storeImageRepo,
		guard:            guard,
		logger:           logger,
	}
}

func (s *driftAuditService) Run(ctx context.Context) (*DriftReport, error) {
	report := &DriftReport{
		StartedAt: time.Now(),
		Counts:    make(map[DriftStatus]int),
		Findings:  []DriftFinding{},
	}

	if err := s.walk(ctx, report, s.productImageRepo.ListAuditPage); err != nil {
		return nil, fmt.Errorf("product image audit failed: %w", err)
	}
	if err := s.walk(ctx, report, s.storeImageRepo.ListAuditPage); err != nil {
		return nil, fmt.Errorf("store image audit failed: %w", err)
	}

	report.FinishedAt = time.Now()
	s.logger.Infof("drift audit scanned %d urls: %d canonical, %d drifted, %d untrusted, %d rejected, %d missing",
		report.Scanned, report.Counts[DriftCanonical], report.Counts[DriftRecovered], report.Counts[DriftUntrusted],
		report.Counts[DriftRejected], report.Counts[DriftMissing])
	return report, nil
}

type auditPager func(ctx context.Context, afterID int64, limit int) ([]*models.AuditImage, error)

func (s *driftAuditService) walk(ctx context.Context, report *DriftReport, page auditPager) error {
	var afterID int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		images, err := page(ctx, afterID, auditPageSize)
		if err != nil {
			return err
		}
		for _, image := range images {
			if err := s.auditImage(ctx, report, image); err != nil {
				return err
			}
			afterID = image.ID
		}
		if len(images) < auditPageSize {
			return nil
		}
	}
}

func (s *driftAuditService) auditImage(ctx context.Context, report *DriftReport, image *models.AuditImage) error {
	target := PathTarget{StoreID: image.StoreID, ProductID: image.ProductID}
	if err := s.auditURL(ctx, report, image, image.ImageURL, target); err != nil {
		return err
	}
	if thumb := common.SafeString(image.ThumbnailURL); thumb != "" {
		target.Variant = VariantThumbnail
		return s.auditURL(ctx, report, image, thumb, target)
	}
	return nil
}

func (s *driftAuditService) auditURL(ctx context.Context, report *DriftReport, image *models.AuditImage, stored string, target PathTarget) error {
	status, served, err := s.classify(ctx, stored, target)
	if err != nil {
		return err
	}
	report.Scanned++
	report.Counts[status]++
	if status != DriftCanonical {
		report.Findings = append(report.Findings, DriftFinding{
			Kind:      image.Kind,
			ImageID:   image.ID,
			StoreID:   image.StoreID,
			ProductID: image.ProductID,
			Variant:   target.Variant.String(),
			Stored:    stored,
			Served:    served,
			Status:    status,
		})
	}
	return nil
}

func (s *driftAuditService) classify(ctx context.Context, stored string, target PathTarget) (DriftStatus, string, error) {
	secured, err := s.guard.Secure(ctx, stored, target)
	switch {
	case err == nil && secured.Untrusted:
		return DriftUntrusted, secured.URL, nil
	case err == nil && secured.Drifted:
		return DriftRecovered, secured.URL, nil
	case err == nil:
		return DriftCanonical, secured.URL, nil
	case errors.Is(err, ErrPathRejected):
		return DriftRejected, "", nil
	case errors.Is(err, ErrImageNotFound):
		return DriftMissing, "", nil
	}
	return "", "", err
}
