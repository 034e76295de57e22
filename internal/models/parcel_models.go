package models

import "time"

// Parcel is a shipment unit. Only the fields this core reads are mapped;
// destination metadata is carried opaquely for the UI.
type Parcel struct {
	ID             string       `json:"id"`
	TrackingNumber string       `json:"tracking_number"`
	ShipperID      string       `json:"shipper_id"`
	Status         ParcelStatus `json:"status"`
	Destination    string       `json:"destination,omitempty"`
	Governorate    string       `json:"governorate,omitempty"`
	WeightKg       float64      `json:"weight_kg,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// ScanClassification is the per-code outcome of scan reconciliation.
type ScanClassification string

const (
	// ScanAccepted: the code matched an expected parcel not yet scanned.
	ScanAccepted ScanClassification = "accepted"
	// ScanAlreadyScanned: the code matched an expected parcel that was
	// already marked scanned; the remaining count does not decrease.
	ScanAlreadyScanned ScanClassification = "already_scanned"
	// ScanForeign: the code matched a known parcel outside the mission's
	// expected set; nothing is mutated.
	ScanForeign ScanClassification = "foreign"
	// ScanUnknown: the code matched no known parcel.
	ScanUnknown ScanClassification = "unknown"
)

// ScanRequest submits a single scanned tracking code.
type ScanRequest struct {
	Code string `json:"code" validate:"required"`
}

// ScanBatchRequest submits a batch of scanned tracking codes. Duplicates
// are allowed and de-duplicated before matching.
type ScanBatchRequest struct {
	Codes []string `json:"codes" validate:"required,min=1,dive,required"`
}

// ScanResult classifies one scanned code.
type ScanResult struct {
	Code           string             `json:"code"`
	Classification ScanClassification `json:"classification"`
	ParcelID       string             `json:"parcel_id,omitempty"`
}

// ScanBatchResponse reports per-code classifications plus how many of the
// mission's expected parcels are still unscanned afterwards.
type ScanBatchResponse struct {
	MissionID string       `json:"mission_id,omitempty"`
	AgencyID  string       `json:"agency_id,omitempty"`
	Results   []ScanResult `json:"results"`
	Remaining int          `json:"remaining_unscanned"`
}

// PickupCandidate is a parcel eligible for inclusion in a new mission,
// joined with its shipper so the assignment UI can group by shipper.
type PickupCandidate struct {
	Parcel  Parcel         `json:"parcel"`
	Shipper ShipperSummary `json:"shipper"`
}
