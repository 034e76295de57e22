package models

import "errors"

var ErrNotFound = errors.New("requested resource not found")
var ErrForbidden = errors.New("user does not have permission to access this resource")
var ErrConflict = errors.New("resource conflict, item already exists")
var ErrValidation = errors.New("request failed validation")
var ErrInvalidToken = errors.New("token not found or expired")

// ErrCodeMismatch indicates the supplied completion code does not match
// the code stored for the mission. The mission state is left untouched.
var ErrCodeMismatch = errors.New("completion code does not match")

// ErrIllegalTransition indicates the requested status is not reachable
// from the mission's current status.
var ErrIllegalTransition = errors.New("mission status transition not allowed")

// ErrParcelsUnscanned indicates a completion code was requested (or a
// Collected transition attempted) before every expected parcel was scanned.
var ErrParcelsUnscanned = errors.New("not all expected parcels have been scanned")

// ErrParcelNotEligible indicates a parcel selected for a new mission is
// not in a pending status or does not belong to the claimed shipper.
var ErrParcelNotEligible = errors.New("parcel is not eligible for pickup")

// ErrMissionNumberTaken surfaces a mission number collision that survived
// the bounded retry; the affected shipper group fails rather than reuse
// a colliding number.
var ErrMissionNumberTaken = errors.New("could not allocate a unique mission number")
