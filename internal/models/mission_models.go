package models

import "time"

// Mission represents one driver's obligation to collect a set of parcels
// from one shipper on one scheduled occasion.
type Mission struct {
	ID             string           `json:"id"`
	MissionNumber  string           `json:"mission_number"`
	DriverID       string           `json:"driver_id"`
	ShipperID      string           `json:"shipper_id"`
	CreatedBy      string           `json:"created_by"`
	Status         MissionStatus    `json:"status"`
	ScheduledAt    time.Time        `json:"scheduled_at"`
	SecurityCode   *string          `json:"security_code,omitempty"`
	CompletionCode *string          `json:"-"`
	Driver         *DriverSummary   `json:"driver,omitempty"`
	Shipper        *ShipperSummary  `json:"shipper,omitempty"`
	Parcels        []MissionParcel  `json:"parcels,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// MissionParcel is the join record between a mission and one of its
// parcels. Status is the parcel's status within this mission, kept in
// lockstep with (but stored separately from) the parcel's global status.
type MissionParcel struct {
	MissionID      string       `json:"mission_id"`
	ParcelID       string       `json:"parcel_id"`
	TrackingNumber string       `json:"tracking_number"`
	Status         ParcelStatus `json:"status"`
	Scanned        bool         `json:"scanned"`
	ScannedAt      *time.Time   `json:"scanned_at,omitempty"`
	Received       bool         `json:"received,omitempty"`
	ReceivedAt     *time.Time   `json:"received_at,omitempty"`
}

// DriverSummary is the embedded driver shape returned with missions.
type DriverSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	Governorate string `json:"governorate"`
	AgencyID    string `json:"agency_id,omitempty"`
}

// ShipperSummary is the embedded shipper shape returned with missions.
type ShipperSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Company     string `json:"company,omitempty"`
	Governorate string `json:"governorate"`
	AgencyID    string `json:"agency_id,omitempty"`
}

// CreateMissionRequest is the assignment-engine input: one driver, one or
// more shippers, and the selected parcels. Each parcel must belong to one
// of the listed shippers; the engine creates one mission per shipper.
type CreateMissionRequest struct {
	DriverID    string    `json:"driver_id" validate:"required"`
	ShipperIDs  []string  `json:"shipper_ids" validate:"required,min=1,dive,required"`
	ParcelIDs   []string  `json:"parcel_ids" validate:"required,min=1,dive,required"`
	ScheduledAt time.Time `json:"scheduled_at,omitempty"`
}

// MissionGroupResult reports the outcome of one shipper group within a
// single assignment call. A mixed list of successes and failures is the
// normal shape for partial failure; the engine never collapses it into
// a single boolean.
type MissionGroupResult struct {
	ShipperID string   `json:"shipper_id"`
	Mission   *Mission `json:"mission,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// UpdateMissionStatusRequest carries a target status and, for the
// AtWarehouse transition, the completion code.
type UpdateMissionStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Code   string `json:"code,omitempty"`
}

// MissionCodeResponse wraps a security or completion code.
type MissionCodeResponse struct {
	MissionID string `json:"mission_id"`
	Code      string `json:"code"`
}

// MissionListFilter narrows the mission list endpoint.
type MissionListFilter struct {
	DriverID string
	Status   MissionStatus
}
