package parcels

import (
	"context"
	"errors"
	"strings"
	"testing"

	"quickzone-pickup/internal/models"
)

type fakeRepo struct {
	drivers    map[string]*models.DriverSummary
	parcels    map[string]*models.Parcel
	candidates map[string][]*models.PickupCandidate // governorate (lowercased) -> candidates
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		drivers:    make(map[string]*models.DriverSummary),
		parcels:    make(map[string]*models.Parcel),
		candidates: make(map[string][]*models.PickupCandidate),
	}
}

func (f *fakeRepo) FindDriverByID(ctx context.Context, id string) (*models.DriverSummary, error) {
	d, ok := f.drivers[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*models.Parcel, error) {
	p, ok := f.parcels[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) FindByTrackingNumber(ctx context.Context, tracking string) (*models.Parcel, error) {
	for _, p := range f.parcels {
		if p.TrackingNumber == tracking {
			cp := *p
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepo) ListPickupCandidates(ctx context.Context, governorate string) ([]*models.PickupCandidate, error) {
	key := strings.ToLower(strings.TrimSpace(governorate))
	return f.candidates[key], nil
}

func (f *fakeRepo) ReleaseHeld(ctx context.Context, parcelID string) error {
	p, ok := f.parcels[parcelID]
	if !ok || p.Status != models.ParcelHeld {
		return models.ErrNotFound
	}
	p.Status = models.ParcelPending
	return nil
}

func TestListPickupCandidatesUsesDriverGovernorate(t *testing.T) {
	fr := newFakeRepo()
	fr.drivers["D1"] = &models.DriverSummary{ID: "D1", Governorate: "Tunis"}
	fr.candidates["tunis"] = []*models.PickupCandidate{
		{Parcel: models.Parcel{ID: "P1", Status: models.ParcelPending}},
		{Parcel: models.Parcel{ID: "P2", Status: models.ParcelPending}},
	}
	svc := NewService(fr)

	out, err := svc.ListPickupCandidates(context.Background(), "D1")
	if err != nil {
		t.Fatalf("ListPickupCandidates error: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("got %d candidates; want 2", len(out))
	}
}

func TestListPickupCandidatesUnknownDriver(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.ListPickupCandidates(context.Background(), "missing")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}

func TestListPickupCandidatesRequiresDriver(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.ListPickupCandidates(context.Background(), "")
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("err = %v; want ErrValidation", err)
	}
}

func TestGetParcelFallsBackToTrackingNumber(t *testing.T) {
	fr := newFakeRepo()
	fr.parcels["P1"] = &models.Parcel{ID: "P1", TrackingNumber: "QZ-0001", Status: models.ParcelPending}
	svc := NewService(fr)

	byID, err := svc.GetParcel(context.Background(), "P1")
	if err != nil || byID.ID != "P1" {
		t.Fatalf("GetParcel by id = %v, %v", byID, err)
	}
	byTracking, err := svc.GetParcel(context.Background(), "QZ-0001")
	if err != nil || byTracking.ID != "P1" {
		t.Fatalf("GetParcel by tracking = %v, %v", byTracking, err)
	}
	if _, err := svc.GetParcel(context.Background(), "nope"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}

func TestReleaseHeldParcel(t *testing.T) {
	fr := newFakeRepo()
	fr.parcels["P1"] = &models.Parcel{ID: "P1", Status: models.ParcelHeld}
	fr.parcels["P2"] = &models.Parcel{ID: "P2", Status: models.ParcelPending}
	svc := NewService(fr)

	if err := svc.ReleaseHeldParcel(context.Background(), "P1"); err != nil {
		t.Fatalf("ReleaseHeldParcel error: %v", err)
	}
	if fr.parcels["P1"].Status != models.ParcelPending {
		t.Errorf("parcel status = %s; want %s", fr.parcels["P1"].Status, models.ParcelPending)
	}
	// Releasing a parcel that is not held is reported, not ignored.
	if err := svc.ReleaseHeldParcel(context.Background(), "P2"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}
