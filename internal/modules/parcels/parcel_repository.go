package parcels

import (
	"context"
	"errors"
	"fmt"

	"quickzone-pickup/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the parcels repository.
type RepositoryInterface interface {
	FindDriverByID(ctx context.Context, driverID string) (*models.DriverSummary, error)
	FindByID(ctx context.Context, parcelID string) (*models.Parcel, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Parcel, error)

	// ListPickupCandidates returns pending parcels whose shipper sits in
	// the given governorate, joined with the shipper for grouping in the
	// assignment UI.
	ListPickupCandidates(ctx context.Context, governorate string) ([]*models.PickupCandidate, error)

	// ReleaseHeld moves a held parcel back to the pending pool (manual
	// reassignment policy).
	ReleaseHeld(ctx context.Context, parcelID string) error
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new parcels repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const parcelColumns = `id, tracking_number, shipper_id, status, destination, governorate, weight_kg, created_at, updated_at`

func scanParcel(row pgx.Row) (*models.Parcel, error) {
	p := &models.Parcel{}
	err := row.Scan(
		&p.ID, &p.TrackingNumber, &p.ShipperID, &p.Status,
		&p.Destination, &p.Governorate, &p.WeightKg,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan parcel: %w", err)
	}
	return p, nil
}

func (r *Repository) FindDriverByID(ctx context.Context, driverID string) (*models.DriverSummary, error) {
	const query = `
		SELECT id, name, phone, governorate, agency_id
		FROM drivers
		WHERE id = $1`
	d := &models.DriverSummary{}
	err := r.db.QueryRow(ctx, query, driverID).Scan(&d.ID, &d.Name, &d.Phone, &d.Governorate, &d.AgencyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindDriverByID: %w", err)
	}
	return d, nil
}

func (r *Repository) FindByID(ctx context.Context, parcelID string) (*models.Parcel, error) {
	query := fmt.Sprintf(`SELECT %s FROM parcels WHERE id = $1`, parcelColumns)
	p, err := scanParcel(r.db.QueryRow(ctx, query, parcelID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return p, nil
}

func (r *Repository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Parcel, error) {
	query := fmt.Sprintf(`SELECT %s FROM parcels WHERE tracking_number = $1`, parcelColumns)
	p, err := scanParcel(r.db.QueryRow(ctx, query, trackingNumber))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByTrackingNumber: %w", err)
	}
	return p, nil
}

func (r *Repository) ListPickupCandidates(ctx context.Context, governorate string) ([]*models.PickupCandidate, error) {
	const query = `
		SELECT p.id, p.tracking_number, p.shipper_id, p.status, p.destination, p.governorate, p.weight_kg, p.created_at, p.updated_at,
		       s.id, s.name, s.company, s.governorate, s.agency_id
		FROM parcels p
		JOIN shippers s ON s.id = p.shipper_id
		WHERE p.status = $1
		  AND LOWER(TRIM(s.governorate)) = LOWER(TRIM($2))
		ORDER BY s.name, p.created_at`
	rows, err := r.db.Query(ctx, query, models.ParcelPending, governorate)
	if err != nil {
		return nil, fmt.Errorf("repository.ListPickupCandidates: %w", err)
	}
	defer rows.Close()

	var out []*models.PickupCandidate
	for rows.Next() {
		cand := &models.PickupCandidate{}
		if err := rows.Scan(
			&cand.Parcel.ID, &cand.Parcel.TrackingNumber, &cand.Parcel.ShipperID, &cand.Parcel.Status,
			&cand.Parcel.Destination, &cand.Parcel.Governorate, &cand.Parcel.WeightKg,
			&cand.Parcel.CreatedAt, &cand.Parcel.UpdatedAt,
			&cand.Shipper.ID, &cand.Shipper.Name, &cand.Shipper.Company, &cand.Shipper.Governorate, &cand.Shipper.AgencyID,
		); err != nil {
			return nil, fmt.Errorf("repository.ListPickupCandidates Scan: %w", err)
		}
		out = append(out, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListPickupCandidates rows: %w", err)
	}
	return out, nil
}

func (r *Repository) ReleaseHeld(ctx context.Context, parcelID string) error {
	const query = `
		UPDATE parcels
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`
	cmd, err := r.db.Exec(ctx, query, models.ParcelPending, parcelID, models.ParcelHeld)
	if err != nil {
		return fmt.Errorf("repository.ReleaseHeld: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
