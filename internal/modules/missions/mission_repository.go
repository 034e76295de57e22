package missions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quickzone-pickup/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the missions repository.
type RepositoryInterface interface {
	FindDriverByID(ctx context.Context, driverID string) (*models.DriverSummary, error)
	FindShipperByID(ctx context.Context, shipperID string) (*models.ShipperSummary, error)
	FindParcelsByIDs(ctx context.Context, parcelIDs []string) ([]*models.Parcel, error)

	// CreateMission persists the mission, its parcel associations and the
	// parcels' reservation in one transaction. A mission_number collision
	// is reported as models.ErrConflict so the service can retry with a
	// fresh number.
	CreateMission(ctx context.Context, m *models.Mission, parcelIDs []string) (*models.Mission, error)

	FindByID(ctx context.Context, missionID string) (*models.Mission, error)
	List(ctx context.Context, filter models.MissionListFilter, page, limit int) ([]*models.Mission, int, error)

	// TransitionStatus atomically moves the mission from one status to
	// another and, when parcelStatus is non-empty, applies the matching
	// side effect to the mission's parcels. The mission row is locked for
	// the duration; a concurrent transition loses with ErrConflict.
	TransitionStatus(ctx context.Context, missionID string, from, to models.MissionStatus, parcelStatus models.ParcelStatus) error

	// SetSecurityCode / SetCompletionCode store the code only if none is
	// present yet, and always return the stored value. Repeated calls are
	// idempotent even under concurrency.
	SetSecurityCode(ctx context.Context, missionID, code string) (string, error)
	SetCompletionCode(ctx context.Context, missionID, code string) (string, error)

	CountUnscanned(ctx context.Context, missionID string) (int, error)
	Delete(ctx context.Context, missionID string) error
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new missions repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
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

func (r *Repository) FindShipperByID(ctx context.Context, shipperID string) (*models.ShipperSummary, error) {
	const query = `
		SELECT id, name, company, governorate, agency_id
		FROM shippers
		WHERE id = $1`
	s := &models.ShipperSummary{}
	err := r.db.QueryRow(ctx, query, shipperID).Scan(&s.ID, &s.Name, &s.Company, &s.Governorate, &s.AgencyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindShipperByID: %w", err)
	}
	return s, nil
}

func (r *Repository) FindParcelsByIDs(ctx context.Context, parcelIDs []string) ([]*models.Parcel, error) {
	const query = `
		SELECT id, tracking_number, shipper_id, status, destination, governorate, weight_kg, created_at, updated_at
		FROM parcels
		WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, parcelIDs)
	if err != nil {
		return nil, fmt.Errorf("repository.FindParcelsByIDs: %w", err)
	}
	defer rows.Close()

	var parcels []*models.Parcel
	for rows.Next() {
		p := &models.Parcel{}
		if err := rows.Scan(
			&p.ID, &p.TrackingNumber, &p.ShipperID, &p.Status,
			&p.Destination, &p.Governorate, &p.WeightKg,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("repository.FindParcelsByIDs Scan: %w", err)
		}
		parcels = append(parcels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.FindParcelsByIDs rows: %w", err)
	}
	return parcels, nil
}

// CreateMission inserts the mission row, one join row per parcel, and
// reserves the parcels by moving them to 'À enlever', all in one
// transaction. Either everything lands or nothing does.
func (r *Repository) CreateMission(ctx context.Context, m *models.Mission, parcelIDs []string) (*models.Mission, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateMission Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertMission = `
		INSERT INTO pickup_missions (mission_number, driver_id, shipper_id, created_by, status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err = tx.QueryRow(ctx, insertMission,
		m.MissionNumber, m.DriverID, m.ShipperID, m.CreatedBy, m.Status, m.ScheduledAt,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("repository.CreateMission insert: %w", err)
	}

	const insertJoin = `
		INSERT INTO mission_parcels (mission_id, parcel_id, status)
		VALUES ($1, $2, $3)`
	for _, parcelID := range parcelIDs {
		if _, err := tx.Exec(ctx, insertJoin, m.ID, parcelID, models.ParcelPending); err != nil {
			return nil, fmt.Errorf("repository.CreateMission join insert: %w", err)
		}
	}

	// Reserving only pending parcels guards against a selection that went
	// stale between validation and commit.
	const reserveParcels = `
		UPDATE parcels
		SET status = $1, updated_at = NOW()
		WHERE id = ANY($2) AND status = $3`
	cmd, err := tx.Exec(ctx, reserveParcels, models.ParcelToCollect, parcelIDs, models.ParcelPending)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateMission reserve parcels: %w", err)
	}
	if int(cmd.RowsAffected()) != len(parcelIDs) {
		return nil, models.ErrParcelNotEligible
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository.CreateMission Commit: %w", err)
	}
	return r.FindByID(ctx, m.ID)
}

// scanMission scans a mission row (without embedded records).
func scanMission(row pgx.Row) (*models.Mission, error) {
	m := &models.Mission{}
	err := row.Scan(
		&m.ID,
		&m.MissionNumber,
		&m.DriverID,
		&m.ShipperID,
		&m.CreatedBy,
		&m.Status,
		&m.ScheduledAt,
		&m.SecurityCode,
		&m.CompletionCode,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan mission: %w", err)
	}
	return m, nil
}

const missionColumns = `id, mission_number, driver_id, shipper_id, created_by, status, scheduled_at, security_code, completion_code, created_at, updated_at`

// FindByID retrieves a mission with its driver, shipper and parcel list embedded.
func (r *Repository) FindByID(ctx context.Context, missionID string) (*models.Mission, error) {
	query := fmt.Sprintf(`SELECT %s FROM pickup_missions WHERE id = $1`, missionColumns)
	m, err := scanMission(r.db.QueryRow(ctx, query, missionID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}

	if driver, err := r.FindDriverByID(ctx, m.DriverID); err == nil {
		m.Driver = driver
	}
	if shipper, err := r.FindShipperByID(ctx, m.ShipperID); err == nil {
		m.Shipper = shipper
	}

	parcels, err := r.listMissionParcels(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("repository.FindByID parcels: %w", err)
	}
	m.Parcels = parcels
	return m, nil
}

func (r *Repository) listMissionParcels(ctx context.Context, missionID string) ([]models.MissionParcel, error) {
	const query = `
		SELECT mp.mission_id, mp.parcel_id, p.tracking_number, mp.status, mp.scanned, mp.scanned_at
		FROM mission_parcels mp
		JOIN parcels p ON p.id = mp.parcel_id
		WHERE mp.mission_id = $1
		ORDER BY p.tracking_number`
	rows, err := r.db.Query(ctx, query, missionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MissionParcel
	for rows.Next() {
		var mp models.MissionParcel
		if err := rows.Scan(&mp.MissionID, &mp.ParcelID, &mp.TrackingNumber, &mp.Status, &mp.Scanned, &mp.ScannedAt); err != nil {
			return nil, err
		}
		out = append(out, mp)
	}
	return out, rows.Err()
}

// List retrieves missions with optional driver/status filters and pagination.
func (r *Repository) List(ctx context.Context, filter models.MissionListFilter, page, limit int) ([]*models.Mission, int, error) {
	offset := (page - 1) * limit

	conditions := []string{}
	args := []interface{}{}
	if filter.DriverID != "" {
		args = append(args, filter.DriverID)
		conditions = append(conditions, fmt.Sprintf("driver_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM pickup_missions" + where
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.List Count: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		"SELECT %s FROM pickup_missions%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		missionColumns, where, len(args)-1, len(args),
	)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.List Query: %w", err)
	}
	defer rows.Close()

	var missions []*models.Mission
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.List scanMission: %w", err)
		}
		missions = append(missions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository.List rows: %w", err)
	}

	for _, m := range missions {
		if driver, err := r.FindDriverByID(ctx, m.DriverID); err == nil {
			m.Driver = driver
		}
		if shipper, err := r.FindShipperByID(ctx, m.ShipperID); err == nil {
			m.Shipper = shipper
		}
		parcels, err := r.listMissionParcels(ctx, m.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.List parcels: %w", err)
		}
		m.Parcels = parcels
	}

	return missions, total, nil
}

// TransitionStatus locks the mission row, verifies it is still in the
// expected status, then applies the new status and the parcel side
// effects in the same transaction.
func (r *Repository) TransitionStatus(ctx context.Context, missionID string, from, to models.MissionStatus, parcelStatus models.ParcelStatus) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.TransitionStatus Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var current models.MissionStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM pickup_missions WHERE id = $1 FOR UPDATE`,
		missionID,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		return fmt.Errorf("repository.TransitionStatus lock: %w", err)
	}
	if current != from {
		// A concurrent request moved the mission first.
		return models.ErrConflict
	}

	if _, err := tx.Exec(ctx,
		`UPDATE pickup_missions SET status = $1, updated_at = NOW() WHERE id = $2`,
		to, missionID,
	); err != nil {
		return fmt.Errorf("repository.TransitionStatus update mission: %w", err)
	}

	if parcelStatus != "" {
		if _, err := tx.Exec(ctx,
			`UPDATE mission_parcels SET status = $1 WHERE mission_id = $2`,
			parcelStatus, missionID,
		); err != nil {
			return fmt.Errorf("repository.TransitionStatus update join: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE parcels SET status = $1, updated_at = NOW()
			 WHERE id IN (SELECT parcel_id FROM mission_parcels WHERE mission_id = $2)`,
			parcelStatus, missionID,
		); err != nil {
			return fmt.Errorf("repository.TransitionStatus update parcels: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository.TransitionStatus Commit: %w", err)
	}
	return nil
}

// SetSecurityCode stores code unless one exists, then returns whichever
// value is persisted. COALESCE makes concurrent first calls collapse to
// a single stored code.
func (r *Repository) SetSecurityCode(ctx context.Context, missionID, code string) (string, error) {
	const query = `
		UPDATE pickup_missions
		SET security_code = COALESCE(security_code, $2), updated_at = NOW()
		WHERE id = $1
		RETURNING security_code`
	var stored string
	if err := r.db.QueryRow(ctx, query, missionID, code).Scan(&stored); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("repository.SetSecurityCode: %w", err)
	}
	return stored, nil
}

// SetCompletionCode works like SetSecurityCode for the completion code.
func (r *Repository) SetCompletionCode(ctx context.Context, missionID, code string) (string, error) {
	const query = `
		UPDATE pickup_missions
		SET completion_code = COALESCE(completion_code, $2), updated_at = NOW()
		WHERE id = $1
		RETURNING completion_code`
	var stored string
	if err := r.db.QueryRow(ctx, query, missionID, code).Scan(&stored); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("repository.SetCompletionCode: %w", err)
	}
	return stored, nil
}

// CountUnscanned returns how many of the mission's expected parcels have
// not been matched by a scan yet.
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

// Delete removes the mission and its join rows. Parcels still reserved by
// the mission are released back to the pending pool so an administrative
// delete never strands them. Deleting a missing mission is a no-op.
func (r *Repository) Delete(ctx context.Context, missionID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.Delete Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE parcels SET status = $1, updated_at = NOW()
		 WHERE status = $2
		   AND id IN (SELECT parcel_id FROM mission_parcels WHERE mission_id = $3)`,
		models.ParcelPending, models.ParcelToCollect, missionID,
	); err != nil {
		return fmt.Errorf("repository.Delete release parcels: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM mission_parcels WHERE mission_id = $1`, missionID,
	); err != nil {
		return fmt.Errorf("repository.Delete join rows: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM pickup_missions WHERE id = $1`, missionID,
	); err != nil {
		return fmt.Errorf("repository.Delete mission: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository.Delete Commit: %w", err)
	}
	return nil
}
