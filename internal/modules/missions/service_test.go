package missions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"quickzone-pickup/internal/config"
	"quickzone-pickup/internal/models"
)

// fakeRepo simulates the missions repository in memory so the assignment
// engine and state machine can be exercised without a database.
type fakeRepo struct {
	drivers  map[string]*models.DriverSummary
	shippers map[string]*models.ShipperSummary
	parcels  map[string]*models.Parcel
	missions map[string]*models.Mission
	joins    map[string][]*models.MissionParcel

	nextID int
	// failShippers forces CreateMission to fail for the given shipper.
	failShippers map[string]error
	// conflicts makes the next N CreateMission calls report a
	// mission-number collision before succeeding.
	conflicts int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		drivers:      make(map[string]*models.DriverSummary),
		shippers:     make(map[string]*models.ShipperSummary),
		parcels:      make(map[string]*models.Parcel),
		missions:     make(map[string]*models.Mission),
		joins:        make(map[string][]*models.MissionParcel),
		failShippers: make(map[string]error),
	}
}

func (f *fakeRepo) addParcel(id, tracking, shipperID string, status models.ParcelStatus) {
	f.parcels[id] = &models.Parcel{ID: id, TrackingNumber: tracking, ShipperID: shipperID, Status: status}
}

func (f *fakeRepo) FindDriverByID(ctx context.Context, id string) (*models.DriverSummary, error) {
	d, ok := f.drivers[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRepo) FindShipperByID(ctx context.Context, id string) (*models.ShipperSummary, error) {
	s, ok := f.shippers[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) FindParcelsByIDs(ctx context.Context, ids []string) ([]*models.Parcel, error) {
	var out []*models.Parcel
	for _, id := range ids {
		if p, ok := f.parcels[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateMission(ctx context.Context, m *models.Mission, parcelIDs []string) (*models.Mission, error) {
	if err, ok := f.failShippers[m.ShipperID]; ok {
		return nil, err
	}
	if f.conflicts > 0 {
		f.conflicts--
		return nil, models.ErrConflict
	}
	f.nextID++
	m.ID = fmt.Sprintf("mission-%d", f.nextID)
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	cp := *m
	f.missions[m.ID] = &cp

	for _, parcelID := range parcelIDs {
		p, ok := f.parcels[parcelID]
		if !ok || p.Status != models.ParcelPending {
			delete(f.missions, m.ID)
			delete(f.joins, m.ID)
			return nil, models.ErrParcelNotEligible
		}
		f.joins[m.ID] = append(f.joins[m.ID], &models.MissionParcel{
			MissionID:      m.ID,
			ParcelID:       parcelID,
			TrackingNumber: p.TrackingNumber,
			Status:         models.ParcelPending,
		})
		p.Status = models.ParcelToCollect
	}
	return f.FindByID(ctx, m.ID)
}

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*models.Mission, error) {
	m, ok := f.missions[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *m
	for _, mp := range f.joins[id] {
		cp.Parcels = append(cp.Parcels, *mp)
	}
	return &cp, nil
}

func (f *fakeRepo) List(ctx context.Context, filter models.MissionListFilter, page, limit int) ([]*models.Mission, int, error) {
	var out []*models.Mission
	for id, m := range f.missions {
		if filter.DriverID != "" && m.DriverID != filter.DriverID {
			continue
		}
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		cp, _ := f.FindByID(ctx, id)
		out = append(out, cp)
	}
	return out, len(out), nil
}

func (f *fakeRepo) TransitionStatus(ctx context.Context, id string, from, to models.MissionStatus, parcelStatus models.ParcelStatus) error {
	m, ok := f.missions[id]
	if !ok {
		return models.ErrNotFound
	}
	if m.Status != from {
		return models.ErrConflict
	}
	m.Status = to
	if parcelStatus != "" {
		for _, mp := range f.joins[id] {
			mp.Status = parcelStatus
			if p, ok := f.parcels[mp.ParcelID]; ok {
				p.Status = parcelStatus
			}
		}
	}
	return nil
}

func (f *fakeRepo) SetSecurityCode(ctx context.Context, id, code string) (string, error) {
	m, ok := f.missions[id]
	if !ok {
		return "", models.ErrNotFound
	}
	if m.SecurityCode == nil {
		m.SecurityCode = &code
	}
	return *m.SecurityCode, nil
}

func (f *fakeRepo) SetCompletionCode(ctx context.Context, id, code string) (string, error) {
	m, ok := f.missions[id]
	if !ok {
		return "", models.ErrNotFound
	}
	if m.CompletionCode == nil {
		m.CompletionCode = &code
	}
	return *m.CompletionCode, nil
}

func (f *fakeRepo) CountUnscanned(ctx context.Context, id string) (int, error) {
	n := 0
	for _, mp := range f.joins[id] {
		if !mp.Scanned {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	delete(f.missions, id)
	delete(f.joins, id)
	return nil
}

func (f *fakeRepo) markAllScanned(missionID string) {
	for _, mp := range f.joins[missionID] {
		mp.Scanned = true
	}
}

// fakeCodes hands out a deterministic code sequence.
type fakeCodes struct{ n int }

func (f *fakeCodes) Generate() (string, error) {
	f.n++
	return fmt.Sprintf("CODE%02d", f.n), nil
}

// tunisFixture seeds the end-to-end scenario: driver D in Tunis, shipper
// S1 with two pending parcels, shipper S2 with one.
func tunisFixture() *fakeRepo {
	fr := newFakeRepo()
	fr.drivers["D"] = &models.DriverSummary{ID: "D", Name: "Driver", Governorate: "Tunis", AgencyID: "A1"}
	fr.shippers["S1"] = &models.ShipperSummary{ID: "S1", Name: "Shipper One", Governorate: "Tunis", AgencyID: "A1"}
	fr.shippers["S2"] = &models.ShipperSummary{ID: "S2", Name: "Shipper Two", Governorate: "Tunis", AgencyID: "A1"}
	fr.addParcel("P1", "QZ-0001", "S1", models.ParcelPending)
	fr.addParcel("P2", "QZ-0002", "S1", models.ParcelPending)
	fr.addParcel("P3", "QZ-0003", "S2", models.ParcelPending)
	return fr
}

func createRequest() models.CreateMissionRequest {
	return models.CreateMissionRequest{
		DriverID:   "D",
		ShipperIDs: []string{"S1", "S2"},
		ParcelIDs:  []string{"P1", "P2", "P3"},
	}
}

func TestCreateMissionsGroupsByShipper(t *testing.T) {
	fr := tunisFixture()
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)

	results, err := svc.CreateMissions(context.Background(), "agent-1", createRequest())
	if err != nil {
		t.Fatalf("CreateMissions error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results; want 2 (one per shipper)", len(results))
	}

	byShipper := map[string]*models.Mission{}
	for _, res := range results {
		if res.Error != "" {
			t.Fatalf("group %s failed: %s", res.ShipperID, res.Error)
		}
		byShipper[res.ShipperID] = res.Mission
	}

	m1 := byShipper["S1"]
	if m1 == nil || len(m1.Parcels) != 2 {
		t.Fatalf("S1 mission parcels = %v; want P1,P2", m1)
	}
	m2 := byShipper["S2"]
	if m2 == nil || len(m2.Parcels) != 1 || m2.Parcels[0].ParcelID != "P3" {
		t.Fatalf("S2 mission parcels = %v; want exactly P3", m2)
	}

	// No cross-shipper leakage.
	for _, mp := range m1.Parcels {
		if mp.ParcelID == "P3" {
			t.Error("S1 mission contains S2's parcel")
		}
	}

	for _, m := range byShipper {
		if m.Status != models.MissionPending {
			t.Errorf("mission %s status = %s; want %s", m.ID, m.Status, models.MissionPending)
		}
		if !strings.HasPrefix(m.MissionNumber, "M-") {
			t.Errorf("mission number %q missing M- prefix", m.MissionNumber)
		}
	}

	// Parcels are reserved once their mission exists.
	for _, id := range []string{"P1", "P2", "P3"} {
		if fr.parcels[id].Status != models.ParcelToCollect {
			t.Errorf("parcel %s status = %s; want %s", id, fr.parcels[id].Status, models.ParcelToCollect)
		}
	}
}

func TestCreateMissionsRejectsNonPendingParcel(t *testing.T) {
	fr := tunisFixture()
	fr.parcels["P2"].Status = models.ParcelCollected
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)

	_, err := svc.CreateMissions(context.Background(), "agent-1", createRequest())
	if !errors.Is(err, models.ErrParcelNotEligible) {
		t.Fatalf("err = %v; want ErrParcelNotEligible", err)
	}
	if len(fr.missions) != 0 {
		t.Errorf("missions created despite ineligible parcel")
	}
}

func TestCreateMissionsRejectsUnclaimedShipperParcel(t *testing.T) {
	fr := tunisFixture()
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)

	req := createRequest()
	req.ShipperIDs = []string{"S1"} // P3 belongs to S2, which is not claimed
	_, err := svc.CreateMissions(context.Background(), "agent-1", req)
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("err = %v; want ErrValidation", err)
	}
}

func TestCreateMissionsRejectsGovernorateMismatch(t *testing.T) {
	fr := tunisFixture()
	fr.shippers["S2"].Governorate = "Sfax"
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)

	_, err := svc.CreateMissions(context.Background(), "agent-1", createRequest())
	if !errors.Is(err, models.ErrParcelNotEligible) {
		t.Fatalf("err = %v; want ErrParcelNotEligible", err)
	}
}

func TestCreateMissionsGovernorateComparisonIsNormalized(t *testing.T) {
	fr := tunisFixture()
	fr.drivers["D"].Governorate = "  tunis "
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)

	results, err := svc.CreateMissions(context.Background(), "agent-1", createRequest())
	if err != nil {
		t.Fatalf("CreateMissions error: %v", err)
	}
	for _, res := range results {
		if res.Error != "" {
			t.Fatalf("group %s failed: %s", res.ShipperID, res.Error)
		}
	}
}

func TestCreateMissionsMissingParcel(t *testing.T) {
	fr := tunisFixture()
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)

	req := createRequest()
	req.ParcelIDs = append(req.ParcelIDs, "P99")
	_, err := svc.CreateMissions(context.Background(), "agent-1", req)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}

func TestCreateMissionsPartialFailure(t *testing.T) {
	fr := tunisFixture()
	fr.failShippers["S2"] = errors.New("insert failed")
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)

	results, err := svc.CreateMissions(context.Background(), "agent-1", createRequest())
	if err != nil {
		t.Fatalf("CreateMissions error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results; want 2", len(results))
	}

	var okCount, failCount int
	for _, res := range results {
		switch {
		case res.Mission != nil && res.Error == "":
			okCount++
			if res.ShipperID != "S1" {
				t.Errorf("successful group = %s; want S1", res.ShipperID)
			}
		case res.Error != "":
			failCount++
			if res.ShipperID != "S2" {
				t.Errorf("failed group = %s; want S2", res.ShipperID)
			}
		}
	}
	if okCount != 1 || failCount != 1 {
		t.Errorf("ok=%d fail=%d; want exactly one of each", okCount, failCount)
	}
}

func TestCreateMissionsRetriesNumberCollision(t *testing.T) {
	fr := tunisFixture()
	fr.conflicts = 2 // two collisions, third attempt succeeds
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)

	req := createRequest()
	req.ShipperIDs = []string{"S1"}
	req.ParcelIDs = []string{"P1", "P2"}
	results, err := svc.CreateMissions(context.Background(), "agent-1", req)
	if err != nil {
		t.Fatalf("CreateMissions error: %v", err)
	}
	if results[0].Error != "" {
		t.Fatalf("group failed after retryable collisions: %s", results[0].Error)
	}
}

func TestCreateMissionsExhaustedCollisionsFailGroup(t *testing.T) {
	fr := tunisFixture()
	fr.conflicts = createAttempts
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)

	req := createRequest()
	req.ShipperIDs = []string{"S1"}
	req.ParcelIDs = []string{"P1"}
	results, err := svc.CreateMissions(context.Background(), "agent-1", req)
	if err != nil {
		t.Fatalf("CreateMissions error: %v", err)
	}
	if results[0].Error == "" {
		t.Fatal("group succeeded despite exhausted number collisions")
	}
	if !strings.Contains(results[0].Error, models.ErrMissionNumberTaken.Error()) {
		t.Errorf("group error = %q; want mission-number failure", results[0].Error)
	}
}

func TestCreateMissionsEmptyInput(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeCodes{}, config.ReleaseAuto)
	_, err := svc.CreateMissions(context.Background(), "agent-1", models.CreateMissionRequest{})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("err = %v; want ErrValidation", err)
	}
}

// createdMission runs the standard fixture and returns the S1 mission.
func createdMission(t *testing.T, fr *fakeRepo, svc *Service) *models.Mission {
	t.Helper()
	results, err := svc.CreateMissions(context.Background(), "agent-1", createRequest())
	if err != nil {
		t.Fatalf("CreateMissions error: %v", err)
	}
	for _, res := range results {
		if res.ShipperID == "S1" {
			return res.Mission
		}
	}
	t.Fatal("no mission for S1")
	return nil
}

func TestDriverAcceptsMission(t *testing.T) {
	fr := tunisFixture()
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)
	m := createdMission(t, fr, svc)

	updated, err := svc.UpdateStatus(context.Background(), m.ID, models.UpdateMissionStatusRequest{Status: string(models.MissionToCollect)})
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if updated.Status != models.MissionToCollect {
		t.Errorf("status = %s; want %s", updated.Status, models.MissionToCollect)
	}
	// Acceptance has no parcel side effect.
	if fr.parcels["P1"].Status != models.ParcelToCollect {
		t.Errorf("parcel status changed on acceptance: %s", fr.parcels["P1"].Status)
	}
}

func TestIllegalTransitionRejected(t *testing.T) {
	fr := tunisFixture()
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)
	m := createdMission(t, fr, svc)

	// Pending cannot jump straight to Collected or AtWarehouse.
	for _, target := range []models.MissionStatus{models.MissionCollected, models.MissionAtWarehouse} {
		_, err := svc.UpdateStatus(context.Background(), m.ID, models.UpdateMissionStatusRequest{Status: string(target)})
		if !errors.Is(err, models.ErrIllegalTransition) {
			t.Errorf("Pending→%s err = %v; want ErrIllegalTransition", target, err)
		}
	}

	if _, err := svc.UpdateStatus(context.Background(), m.ID, models.UpdateMissionStatusRequest{Status: "Bogus"}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("unknown status err = %v; want ErrValidation", err)
	}
}

func TestRefusalReleasesParcels(t *testing.T) {
	fr := tunisFixture()
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)
	m := createdMission(t, fr, svc)

	updated, err := svc.UpdateStatus(context.Background(), m.ID, models.UpdateMissionStatusRequest{Status: string(models.MissionRefused)})
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if updated.Status != models.MissionRefused {
		t.Fatalf("status = %s; want %s", updated.Status, models.MissionRefused)
	}
	// Auto policy: parcels go straight back to the pending pool and can
	// be picked up by a later assignment call.
	for _, id := range []string{"P1", "P2"} {
		if fr.parcels[id].Status != models.ParcelPending {
			t.Errorf("parcel %s status = %s; want %s", id, fr.parcels[id].Status, models.ParcelPending)
		}
	}

	req := createRequest()
	req.ShipperIDs = []string{"S1"}
	req.ParcelIDs = []string{"P1", "P2"}
	results, err := svc.CreateMissions(context.Background(), "agent-1", req)
	if err != nil {
		t.Fatalf("reassignment after refusal error: %v", err)
	}
	if results[0].Error != "" {
		t.Errorf("reassignment group failed: %s", results[0].Error)
	}
}

func TestRefusalWithManualPolicyHoldsParcels(t *testing.T) {
	fr := tunisFixture()
	svc := NewService(fr, &fakeCodes{}, config.ReleaseManual)
	m := createdMission(t, fr, svc)

	if _, err := svc.UpdateStatus(context.Background(), m.ID, models.UpdateMissionStatusRequest{Status: string(models.MissionRefused)}); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	for _, id := range []string{"P1", "P2"} {
		if fr.parcels[id].Status != models.ParcelHeld {
			t.Errorf("parcel %s status = %s; want %s", id, fr.parcels[id].Status, models.ParcelHeld)
		}
	}
}

func TestCollectedRequiresAllScanned(t *testing.T) {
	fr := tunisFixture()
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)
	m := createdMission(t, fr, svc)
	if _, err := svc.UpdateStatus(context.Background(), m.ID, models.UpdateMissionStatusRequest{Status: string(models.MissionToCollect)}); err != nil {
		t.Fatalf("accept error: %v", err)
	}

	_, err := svc.UpdateStatus(context.Background(), m.ID, models.UpdateMissionStatusRequest{Status: string(models.MissionCollected)})
	if !errors.Is(err, models.ErrParcelsUnscanned) {
		t.Fatalf("err = %v; want ErrParcelsUnscanned", err)
	}

	fr.markAllScanned(m.ID)
	updated, err := svc.UpdateStatus(context.Background(), m.ID, models.UpdateMissionStatusRequest{Status: string(models.MissionCollected)})
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if updated.Status != models.MissionCollected {
		t.Errorf("status = %s; want %s", updated.Status, models.MissionCollected)
	}
	for _, id := range []string{"P1", "P2"} {
		if fr.parcels[id].Status != models.ParcelCollected {
			t.Errorf("parcel %s status = %s; want %s", id, fr.parcels[id].Status, models.ParcelCollected)
		}
	}
}

func TestSecurityCodeIsIdempotent(t *testing.T) {
	fr := tunisFixture()
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)
	m := createdMission(t, fr, svc)

	first, err := svc.SecurityCode(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("SecurityCode error: %v", err)
	}
	second, err := svc.SecurityCode(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("SecurityCode error: %v", err)
	}
	if first == "" || first != second {
		t.Errorf("codes differ across calls: %q vs %q", first, second)
	}
}

func TestCompletionCodeGatedOnScans(t *testing.T) {
	fr := tunisFixture()
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)
	m := createdMission(t, fr, svc)

	if _, err := svc.CompletionCode(context.Background(), m.ID); !errors.Is(err, models.ErrParcelsUnscanned) {
		t.Fatalf("err = %v; want ErrParcelsUnscanned before scanning", err)
	}

	fr.markAllScanned(m.ID)
	first, err := svc.CompletionCode(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("CompletionCode error: %v", err)
	}
	second, err := svc.CompletionCode(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("CompletionCode error: %v", err)
	}
	if first == "" || first != second {
		t.Errorf("completion codes differ across calls: %q vs %q", first, second)
	}
}

func TestWrongCompletionCodeLeavesStateUnchanged(t *testing.T) {
	fr := tunisFixture()
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)
	m := createdMission(t, fr, svc)

	if _, err := svc.UpdateStatus(context.Background(), m.ID, models.UpdateMissionStatusRequest{Status: string(models.MissionToCollect)}); err != nil {
		t.Fatalf("accept error: %v", err)
	}
	fr.markAllScanned(m.ID)
	if _, err := svc.UpdateStatus(context.Background(), m.ID, models.UpdateMissionStatusRequest{Status: string(models.MissionCollected)}); err != nil {
		t.Fatalf("collect error: %v", err)
	}
	code, err := svc.CompletionCode(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("CompletionCode error: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), m.ID, models.UpdateMissionStatusRequest{
		Status: string(models.MissionAtWarehouse),
		Code:   "WRONG1",
	})
	if !errors.Is(err, models.ErrCodeMismatch) {
		t.Fatalf("err = %v; want ErrCodeMismatch", err)
	}
	current, _ := svc.GetMission(context.Background(), m.ID)
	if current.Status != models.MissionCollected {
		t.Fatalf("status moved to %s on a wrong code", current.Status)
	}

	updated, err := svc.UpdateStatus(context.Background(), m.ID, models.UpdateMissionStatusRequest{
		Status: string(models.MissionAtWarehouse),
		Code:   code,
	})
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if updated.Status != models.MissionAtWarehouse {
		t.Errorf("status = %s; want %s", updated.Status, models.MissionAtWarehouse)
	}
	for _, id := range []string{"P1", "P2"} {
		if fr.parcels[id].Status != models.ParcelAtWarehouse {
			t.Errorf("parcel %s status = %s; want %s", id, fr.parcels[id].Status, models.ParcelAtWarehouse)
		}
	}
}

func TestCompletionWithoutIssuedCodeRejected(t *testing.T) {
	fr := tunisFixture()
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)
	m := createdMission(t, fr, svc)

	if _, err := svc.UpdateStatus(context.Background(), m.ID, models.UpdateMissionStatusRequest{Status: string(models.MissionToCollect)}); err != nil {
		t.Fatalf("accept error: %v", err)
	}
	fr.markAllScanned(m.ID)
	if _, err := svc.UpdateStatus(context.Background(), m.ID, models.UpdateMissionStatusRequest{Status: string(models.MissionCollected)}); err != nil {
		t.Fatalf("collect error: %v", err)
	}

	// No completion code was ever issued; any guess must be rejected.
	_, err := svc.UpdateStatus(context.Background(), m.ID, models.UpdateMissionStatusRequest{
		Status: string(models.MissionAtWarehouse),
		Code:   "CODE01",
	})
	if !errors.Is(err, models.ErrCodeMismatch) {
		t.Fatalf("err = %v; want ErrCodeMismatch", err)
	}
}

func TestDeleteMissionIsIdempotent(t *testing.T) {
	fr := tunisFixture()
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)
	m := createdMission(t, fr, svc)

	if err := svc.DeleteMission(context.Background(), m.ID); err != nil {
		t.Fatalf("DeleteMission error: %v", err)
	}
	if _, err := svc.GetMission(context.Background(), m.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("mission still present after delete")
	}
	// Deleting again is treated as already-deleted.
	if err := svc.DeleteMission(context.Background(), m.ID); err != nil {
		t.Fatalf("second DeleteMission error: %v", err)
	}
}

func TestListMissionsFilters(t *testing.T) {
	fr := tunisFixture()
	svc := NewService(fr, &fakeCodes{}, config.ReleaseAuto)
	createdMission(t, fr, svc)

	missions, total, err := svc.ListMissions(context.Background(), models.MissionListFilter{DriverID: "D"}, 1, 20)
	if err != nil {
		t.Fatalf("ListMissions error: %v", err)
	}
	if total != 2 || len(missions) != 2 {
		t.Errorf("driver filter returned %d missions; want 2", total)
	}

	_, total, err = svc.ListMissions(context.Background(), models.MissionListFilter{Status: models.MissionRefused}, 1, 20)
	if err != nil {
		t.Fatalf("ListMissions error: %v", err)
	}
	if total != 0 {
		t.Errorf("refused filter returned %d missions; want 0", total)
	}
}
