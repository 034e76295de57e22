package missions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quickzone-pickup/internal/config"
	"quickzone-pickup/internal/models"
	"quickzone-pickup/pkg/securecode"

	"github.com/google/uuid"
)

// ServiceInterface defines the missions module's business methods.
type ServiceInterface interface {
	CreateMissions(ctx context.Context, createdBy string, req models.CreateMissionRequest) ([]models.MissionGroupResult, error)
	GetMission(ctx context.Context, missionID string) (*models.Mission, error)
	ListMissions(ctx context.Context, filter models.MissionListFilter, page, limit int) ([]*models.Mission, int, error)
	UpdateStatus(ctx context.Context, missionID string, req models.UpdateMissionStatusRequest) (*models.Mission, error)
	SecurityCode(ctx context.Context, missionID string) (string, error)
	CompletionCode(ctx context.Context, missionID string) (string, error)
	DeleteMission(ctx context.Context, missionID string) error
}

// Service implements the mission assignment engine and state machine.
type Service struct {
	repo          RepositoryInterface
	codes         securecode.GeneratorInterface
	releasePolicy string
}

// NewService creates a new missions service. releasePolicy decides where
// a refused mission's parcels go (config.ReleaseAuto or ReleaseManual).
func NewService(repo RepositoryInterface, codes securecode.GeneratorInterface, releasePolicy string) *Service {
	return &Service{
		repo:          repo,
		codes:         codes,
		releasePolicy: releasePolicy,
	}
}

// sameGovernorate applies the geographic eligibility rule: trimmed,
// case-insensitive comparison of the two governorate labels.
func sameGovernorate(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// newMissionNumber draws a fresh candidate mission number. Uniqueness is
// enforced by the database; the service retries on collision.
func newMissionNumber() string {
	return "M-" + strings.ToUpper(uuid.NewString()[:8])
}

// createAttempts bounds the mission-number retry loop.
const createAttempts = 3

// CreateMissions groups the selected parcels by shipper and creates one
// mission per shipper group, each in its own transaction. The returned
// slice has one entry per claimed shipper; a failed group carries its
// error instead of a mission, and never hides behind the other groups'
// success.
func (s *Service) CreateMissions(ctx context.Context, createdBy string, req models.CreateMissionRequest) ([]models.MissionGroupResult, error) {
	if req.DriverID == "" || len(req.ShipperIDs) == 0 || len(req.ParcelIDs) == 0 {
		return nil, models.ErrValidation
	}

	driver, err := s.repo.FindDriverByID(ctx, req.DriverID)
	if err != nil {
		return nil, fmt.Errorf("service.CreateMissions driver: %w", err)
	}

	shippers := make(map[string]*models.ShipperSummary, len(req.ShipperIDs))
	for _, shipperID := range req.ShipperIDs {
		shipper, err := s.repo.FindShipperByID(ctx, shipperID)
		if err != nil {
			return nil, fmt.Errorf("service.CreateMissions shipper %s: %w", shipperID, err)
		}
		shippers[shipperID] = shipper
	}

	parcels, err := s.repo.FindParcelsByIDs(ctx, req.ParcelIDs)
	if err != nil {
		return nil, fmt.Errorf("service.CreateMissions parcels: %w", err)
	}
	if len(parcels) != len(uniqueStrings(req.ParcelIDs)) {
		return nil, models.ErrNotFound
	}

	// Re-validate the UI-level eligibility filter: selections can go
	// stale between listing candidates and submitting the form.
	groups := make(map[string][]*models.Parcel)
	for _, p := range parcels {
		shipper, claimed := shippers[p.ShipperID]
		if !claimed {
			return nil, fmt.Errorf("%w: parcel %s does not belong to a selected shipper", models.ErrValidation, p.TrackingNumber)
		}
		if p.Status != models.ParcelPending {
			return nil, fmt.Errorf("%w: parcel %s is not pending", models.ErrParcelNotEligible, p.TrackingNumber)
		}
		if !sameGovernorate(shipper.Governorate, driver.Governorate) {
			return nil, fmt.Errorf("%w: shipper %s is outside the driver's governorate", models.ErrParcelNotEligible, shipper.ID)
		}
		groups[p.ShipperID] = append(groups[p.ShipperID], p)
	}

	// One mission per shipper with at least one selected parcel, in the
	// order the shippers were claimed.
	var results []models.MissionGroupResult
	for _, shipperID := range req.ShipperIDs {
		group, ok := groups[shipperID]
		if !ok {
			continue
		}
		parcelIDs := make([]string, 0, len(group))
		for _, p := range group {
			parcelIDs = append(parcelIDs, p.ID)
		}
		mission, err := s.createSingleMission(ctx, createdBy, req, shipperID, parcelIDs)
		if err != nil {
			results = append(results, models.MissionGroupResult{ShipperID: shipperID, Error: err.Error()})
			continue
		}
		results = append(results, models.MissionGroupResult{ShipperID: shipperID, Mission: mission})
	}
	return results, nil
}

// createSingleMission runs the per-group transaction, retrying a bounded
// number of times when the generated mission number collides.
func (s *Service) createSingleMission(ctx context.Context, createdBy string, req models.CreateMissionRequest, shipperID string, parcelIDs []string) (*models.Mission, error) {
	for attempt := 0; attempt < createAttempts; attempt++ {
		m := &models.Mission{
			MissionNumber: newMissionNumber(),
			DriverID:      req.DriverID,
			ShipperID:     shipperID,
			CreatedBy:     createdBy,
			Status:        models.MissionPending,
			ScheduledAt:   req.ScheduledAt,
		}
		created, err := s.repo.CreateMission(ctx, m, parcelIDs)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return nil, err
		}
	}
	return nil, models.ErrMissionNumberTaken
}

// GetMission retrieves a mission with its embedded driver, shipper and parcels.
func (s *Service) GetMission(ctx context.Context, missionID string) (*models.Mission, error) {
	m, err := s.repo.FindByID(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("service.GetMission: %w", err)
	}
	return m, nil
}

// ListMissions lists missions with optional filters.
func (s *Service) ListMissions(ctx context.Context, filter models.MissionListFilter, page, limit int) ([]*models.Mission, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, filter, page, limit)
}

// UpdateStatus drives the mission state machine. It verifies the edge is
// legal from the current status, checks the transition's preconditions,
// and applies the status change together with its parcel side effects.
func (s *Service) UpdateStatus(ctx context.Context, missionID string, req models.UpdateMissionStatusRequest) (*models.Mission, error) {
	if !models.ValidMissionStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, req.Status)
	}
	target := models.MissionStatus(req.Status)

	mission, err := s.repo.FindByID(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateStatus: %w", err)
	}
	if !mission.Status.CanTransitionTo(target) {
		return nil, models.ErrIllegalTransition
	}

	var parcelStatus models.ParcelStatus
	switch target {
	case models.MissionToCollect:
		// Driver accepted; parcels were already reserved at creation.
		parcelStatus = ""
	case models.MissionRefused:
		parcelStatus = models.ParcelPending
		if s.releasePolicy == config.ReleaseManual {
			parcelStatus = models.ParcelHeld
		}
	case models.MissionCollected:
		remaining, err := s.repo.CountUnscanned(ctx, missionID)
		if err != nil {
			return nil, fmt.Errorf("service.UpdateStatus count: %w", err)
		}
		if remaining > 0 {
			return nil, models.ErrParcelsUnscanned
		}
		parcelStatus = models.ParcelCollected
	case models.MissionAtWarehouse:
		if mission.CompletionCode == nil || req.Code == "" || req.Code != *mission.CompletionCode {
			return nil, models.ErrCodeMismatch
		}
		parcelStatus = models.ParcelAtWarehouse
	}

	if err := s.repo.TransitionStatus(ctx, missionID, mission.Status, target, parcelStatus); err != nil {
		return nil, fmt.Errorf("service.UpdateStatus transition: %w", err)
	}
	return s.repo.FindByID(ctx, missionID)
}

// SecurityCode returns the mission's security code, generating and
// persisting it on first request. Repeat calls return the same value.
func (s *Service) SecurityCode(ctx context.Context, missionID string) (string, error) {
	mission, err := s.repo.FindByID(ctx, missionID)
	if err != nil {
		return "", fmt.Errorf("service.SecurityCode: %w", err)
	}
	if mission.SecurityCode != nil {
		return *mission.SecurityCode, nil
	}
	code, err := s.codes.Generate()
	if err != nil {
		return "", fmt.Errorf("service.SecurityCode generate: %w", err)
	}
	return s.repo.SetSecurityCode(ctx, missionID, code)
}

// CompletionCode returns the mission's completion code, generating it on
// first request. Issuance is gated on every expected parcel having been
// scanned; before that the caller gets ErrParcelsUnscanned.
func (s *Service) CompletionCode(ctx context.Context, missionID string) (string, error) {
	mission, err := s.repo.FindByID(ctx, missionID)
	if err != nil {
		return "", fmt.Errorf("service.CompletionCode: %w", err)
	}
	remaining, err := s.repo.CountUnscanned(ctx, missionID)
	if err != nil {
		return "", fmt.Errorf("service.CompletionCode count: %w", err)
	}
	if remaining > 0 {
		return "", models.ErrParcelsUnscanned
	}
	if mission.CompletionCode != nil {
		return *mission.CompletionCode, nil
	}
	code, err := s.codes.Generate()
	if err != nil {
		return "", fmt.Errorf("service.CompletionCode generate: %w", err)
	}
	return s.repo.SetCompletionCode(ctx, missionID, code)
}

// DeleteMission removes a mission and its parcel associations. Missing
// missions are treated as already deleted.
func (s *Service) DeleteMission(ctx context.Context, missionID string) error {
	if err := s.repo.Delete(ctx, missionID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("service.DeleteMission: %w", err)
	}
	return nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
