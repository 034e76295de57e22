package parcels

import (
	"context"
	"fmt"
	"strings"

	"quickzone-pickup/internal/models"
)

// ServiceInterface defines the parcels module's business methods.
type ServiceInterface interface {
	ListPickupCandidates(ctx context.Context, driverID string) ([]*models.PickupCandidate, error)
	GetParcel(ctx context.Context, idOrTracking string) (*models.Parcel, error)
	ReleaseHeldParcel(ctx context.Context, parcelID string) error
}

// Service implements the pickup-candidate listing that feeds the
// assignment UI. The filter here is advisory; the missions service
// re-validates eligibility at creation time.
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new parcels service.
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// ListPickupCandidates returns the pending parcels a driver could be
// sent to collect: shipper governorate matching the driver's.
func (s *Service) ListPickupCandidates(ctx context.Context, driverID string) ([]*models.PickupCandidate, error) {
	if driverID == "" {
		return nil, models.ErrValidation
	}
	driver, err := s.repo.FindDriverByID(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("service.ListPickupCandidates driver: %w", err)
	}
	candidates, err := s.repo.ListPickupCandidates(ctx, driver.Governorate)
	if err != nil {
		return nil, fmt.Errorf("service.ListPickupCandidates: %w", err)
	}
	return candidates, nil
}

// GetParcel looks a parcel up by ID, falling back to tracking number so
// the UI can resolve either form of identifier.
func (s *Service) GetParcel(ctx context.Context, idOrTracking string) (*models.Parcel, error) {
	if strings.TrimSpace(idOrTracking) == "" {
		return nil, models.ErrValidation
	}
	p, err := s.repo.FindByID(ctx, idOrTracking)
	if err == nil {
		return p, nil
	}
	p, err = s.repo.FindByTrackingNumber(ctx, idOrTracking)
	if err != nil {
		return nil, fmt.Errorf("service.GetParcel: %w", err)
	}
	return p, nil
}

// ReleaseHeldParcel returns a parcel parked by the manual reassignment
// policy to the pending pool.
func (s *Service) ReleaseHeldParcel(ctx context.Context, parcelID string) error {
	if err := s.repo.ReleaseHeld(ctx, parcelID); err != nil {
		return fmt.Errorf("service.ReleaseHeldParcel: %w", err)
	}
	return nil
}
