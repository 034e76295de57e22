package scans

import (
	"context"
	"errors"
	"fmt"

	"quickzone-pickup/internal/models"
)

// ServiceInterface defines the scan-reconciliation business methods.
type ServiceInterface interface {
	ScanOne(ctx context.Context, missionID, code string) (*models.ScanBatchResponse, error)
	ScanBatch(ctx context.Context, missionID string, codes []string) (*models.ScanBatchResponse, error)
	WarehouseScan(ctx context.Context, agencyID string, codes []string) (*models.ScanBatchResponse, error)
}

// Service matches physically scanned tracking codes against a mission's
// fixed expected parcel set and classifies each code.
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new scans service.
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// ScanOne reconciles a single scanned code against the mission.
func (s *Service) ScanOne(ctx context.Context, missionID, code string) (*models.ScanBatchResponse, error) {
	return s.ScanBatch(ctx, missionID, []string{code})
}

// ScanBatch reconciles a batch of scanned codes. Duplicates are allowed:
// matching de-duplicates them, so only the first occurrence of a code is
// accepted and later occurrences come back as already_scanned. A code
// outside the expected set is reported and skipped without failing the
// rest of the batch.
func (s *Service) ScanBatch(ctx context.Context, missionID string, codes []string) (*models.ScanBatchResponse, error) {
	status, err := s.repo.MissionStatus(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("service.ScanBatch: %w", err)
	}
	// Parcels are only scanned while the driver is out collecting.
	if status != models.MissionToCollect {
		return nil, models.ErrIllegalTransition
	}

	expected, err := s.repo.ExpectedSet(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("service.ScanBatch expected set: %w", err)
	}

	results := make([]models.ScanResult, 0, len(codes))
	for _, code := range codes {
		if code == "" {
			continue
		}
		result, err := s.classify(ctx, missionID, code, expected)
		if err != nil {
			return nil, fmt.Errorf("service.ScanBatch classify %q: %w", code, err)
		}
		results = append(results, result)
	}

	remaining, err := s.repo.CountUnscanned(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("service.ScanBatch count: %w", err)
	}
	return &models.ScanBatchResponse{
		MissionID: missionID,
		Results:   results,
		Remaining: remaining,
	}, nil
}

func (s *Service) classify(ctx context.Context, missionID, code string, expected map[string]*models.MissionParcel) (models.ScanResult, error) {
	mp, ok := expected[code]
	if !ok {
		// Known parcel outside this mission, or an unknown code entirely.
		parcel, err := s.repo.LookupParcelByCode(ctx, code)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return models.ScanResult{Code: code, Classification: models.ScanUnknown}, nil
			}
			return models.ScanResult{}, err
		}
		return models.ScanResult{Code: code, Classification: models.ScanForeign, ParcelID: parcel.ID}, nil
	}

	marked, err := s.repo.MarkScanned(ctx, missionID, mp.ParcelID)
	if err != nil {
		return models.ScanResult{}, err
	}
	if !marked {
		return models.ScanResult{Code: code, Classification: models.ScanAlreadyScanned, ParcelID: mp.ParcelID}, nil
	}
	return models.ScanResult{Code: code, Classification: models.ScanAccepted, ParcelID: mp.ParcelID}, nil
}

// WarehouseScan is the chef-d'agence hand-off: same matching semantics
// as ScanBatch, scoped to the parcels the receiving agency expects from
// collected missions.
func (s *Service) WarehouseScan(ctx context.Context, agencyID string, codes []string) (*models.ScanBatchResponse, error) {
	expected, err := s.repo.AgencyExpectedSet(ctx, agencyID)
	if err != nil {
		return nil, fmt.Errorf("service.WarehouseScan expected set: %w", err)
	}

	results := make([]models.ScanResult, 0, len(codes))
	for _, code := range codes {
		if code == "" {
			continue
		}
		mp, ok := expected[code]
		if !ok {
			parcel, err := s.repo.LookupParcelByCode(ctx, code)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					results = append(results, models.ScanResult{Code: code, Classification: models.ScanUnknown})
					continue
				}
				return nil, fmt.Errorf("service.WarehouseScan lookup %q: %w", code, err)
			}
			results = append(results, models.ScanResult{Code: code, Classification: models.ScanForeign, ParcelID: parcel.ID})
			continue
		}

		marked, err := s.repo.MarkReceived(ctx, agencyID, mp.ParcelID)
		if err != nil {
			return nil, fmt.Errorf("service.WarehouseScan mark %q: %w", code, err)
		}
		if !marked {
			results = append(results, models.ScanResult{Code: code, Classification: models.ScanAlreadyScanned, ParcelID: mp.ParcelID})
			continue
		}
		results = append(results, models.ScanResult{Code: code, Classification: models.ScanAccepted, ParcelID: mp.ParcelID})
	}

	remaining, err := s.repo.CountUnreceived(ctx, agencyID)
	if err != nil {
		return nil, fmt.Errorf("service.WarehouseScan count: %w", err)
	}
	return &models.ScanBatchResponse{
		AgencyID:  agencyID,
		Results:   results,
		Remaining: remaining,
	}, nil
}
