package scans

import (
	"context"
	"errors"
	"fmt"

	"quickzone-pickup/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the scans repository.
type RepositoryInterface interface {
	MissionStatus(ctx context.Context, missionID string) (models.MissionStatus, error)

	// ExpectedSet returns the mission's fixed parcel set keyed by
	// tracking number.
	ExpectedSet(ctx context.Context, missionID string) (map[string]*models.MissionParcel, error)

	// MarkScanned flips the parcel's scanned flag. It returns false when
	// the flag was already set, so two concurrent scans of the last
	// remaining parcel cannot both count as the accepting one.
	MarkScanned(ctx context.Context, missionID, parcelID string) (bool, error)

	CountUnscanned(ctx context.Context, missionID string) (int, error)
	LookupParcelByCode(ctx context.Context, code string) (*models.Parcel, error)

	// AgencyExpectedSet returns the parcels the receiving agency expects
	// at hand-off: parcels of collected missions whose driver belongs to
	// the agency and which have not been received yet.
	AgencyExpectedSet(ctx context.Context, agencyID string) (map[string]*models.MissionParcel, error)
	MarkReceived(ctx context.Context, agencyID, parcelID string) (bool, error)
	CountUnreceived(ctx context.Context, agencyID string) (int, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new scans repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

func (r *Repository) MissionStatus(ctx context.Context, missionID string) (models.MissionStatus, error) {
	var status models.MissionStatus
	err := r.db.QueryRow(ctx,
		`SELECT status FROM pickup_missions WHERE id = $1`, missionID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("repository.MissionStatus: %w", err)
	}
	return status, nil
}

func (r *Repository) ExpectedSet(ctx context.Context, missionID string) (map[string]*models.MissionParcel, error) {
	const query = `
		SELECT mp.mission_id, mp.parcel_id, p.tracking_number, mp.status, mp.scanned, mp.scanned_at
		FROM mission_parcels mp
		JOIN parcels p ON p.id = mp.parcel_id
		WHERE mp.mission_id = $1`
	rows, err := r.db.Query(ctx, query, missionID)
	if err != nil {
		return nil, fmt.Errorf("repository.ExpectedSet: %w", err)
	}
	defer rows.Close()

	set := make(map[string]*models.MissionParcel)
	for rows.Next() {
		mp := &models.MissionParcel{}
		if err := rows.Scan(&mp.MissionID, &mp.ParcelID, &mp.TrackingNumber, &mp.Status, &mp.Scanned, &mp.ScannedAt); err != nil {
			return nil, fmt.Errorf("repository.ExpectedSet Scan: %w", err)
		}
		set[mp.TrackingNumber] = mp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ExpectedSet rows: %w", err)
	}
	return set, nil
}

// MarkScanned is a single compare-and-set statement: only the request
// that flips scanned from FALSE wins, whatever the interleaving.
func (r *Repository) MarkScanned(ctx context.Context, missionID, parcelID string) (bool, error) {
	const query = `
		UPDATE mission_parcels
		SET scanned = TRUE, scanned_at = NOW()
		WHERE mission_id = $1 AND parcel_id = $2 AND scanned = FALSE`
	cmd, err := r.db.Exec(ctx, query, missionID, parcelID)
	if err != nil {
		return false, fmt.Errorf("repository.MarkScanned: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *Repository) CountUnscanned(ctx context.Context, missionID string) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM mission_parcels
		WHERE mission_id = $1 AND scanned = FALSE`
	var n int
	if err := r.db.QueryRow(ctx, query, missionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("repository.CountUnscanned: %w", err)
	}
	return n, nil
}

func (r *Repository) LookupParcelByCode(ctx context.Context, code string) (*models.Parcel, error) {
	const query = `
		SELECT id, tracking_number, shipper_id, status, destination, governorate, weight_kg, created_at, updated_at
		FROM parcels
		WHERE tracking_number = $1`
	p := &models.Parcel{}
	err := r.db.QueryRow(ctx, query, code).Scan(
		&p.ID, &p.TrackingNumber, &p.ShipperID, &p.Status,
		&p.Destination, &p.Governorate, &p.WeightKg,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.LookupParcelByCode: %w", err)
	}
	return p, nil
}

const agencyExpectedFrom = `
	FROM mission_parcels mp
	JOIN parcels p ON p.id = mp.parcel_id
	JOIN pickup_missions m ON m.id = mp.mission_id
	JOIN drivers d ON d.id = m.driver_id
	WHERE d.agency_id = $1 AND m.status = $2`

func (r *Repository) AgencyExpectedSet(ctx context.Context, agencyID string) (map[string]*models.MissionParcel, error) {
	query := `
		SELECT mp.mission_id, mp.parcel_id, p.tracking_number, mp.status, mp.received, mp.received_at` +
		agencyExpectedFrom
	rows, err := r.db.Query(ctx, query, agencyID, models.MissionCollected)
	if err != nil {
		return nil, fmt.Errorf("repository.AgencyExpectedSet: %w", err)
	}
	defer rows.Close()

	set := make(map[string]*models.MissionParcel)
	for rows.Next() {
		mp := &models.MissionParcel{}
		if err := rows.Scan(&mp.MissionID, &mp.ParcelID, &mp.TrackingNumber, &mp.Status, &mp.Received, &mp.ReceivedAt); err != nil {
			return nil, fmt.Errorf("repository.AgencyExpectedSet Scan: %w", err)
		}
		set[mp.TrackingNumber] = mp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.AgencyExpectedSet rows: %w", err)
	}
	return set, nil
}

func (r *Repository) MarkReceived(ctx context.Context, agencyID, parcelID string) (bool, error) {
	const query = `
		UPDATE mission_parcels mp
		SET received = TRUE, received_at = NOW()
		FROM pickup_missions m
		JOIN drivers d ON d.id = m.driver_id
		WHERE mp.mission_id = m.id
		  AND mp.parcel_id = $2
		  AND d.agency_id = $1
		  AND mp.received = FALSE`
	cmd, err := r.db.Exec(ctx, query, agencyID, parcelID)
	if err != nil {
		return false, fmt.Errorf("repository.MarkReceived: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *Repository) CountUnreceived(ctx context.Context, agencyID string) (int, error) {
	query := `SELECT COUNT(*)` + agencyExpectedFrom + ` AND mp.received = FALSE`
	var n int
	if err := r.db.QueryRow(ctx, query, agencyID, models.MissionCollected).Scan(&n); err != nil {
		return 0, fmt.Errorf("repository.CountUnreceived: %w", err)
	}
	return n, nil
}
