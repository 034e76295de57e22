package models

// MissionStatus enumerates the lifecycle states of a pickup mission.
// The stored values are the French labels the operational staff sees;
// only this package should ever spell them out.
type MissionStatus string

const (
	MissionPending     MissionStatus = "En attente"
	MissionToCollect   MissionStatus = "À enlever"
	MissionCollected   MissionStatus = "Enlevé"
	MissionAtWarehouse MissionStatus = "Au dépôt"
	MissionRefused     MissionStatus = "Refusé par livreur"
)

// ParcelStatus enumerates the global states of a parcel. The first four
// move in lockstep with the mission lifecycle; the rest belong to the
// downstream delivery flow and are never set by this service.
type ParcelStatus string

const (
	ParcelPending     ParcelStatus = "En attente"
	ParcelToCollect   ParcelStatus = "À enlever"
	ParcelCollected   ParcelStatus = "Enlevé"
	ParcelAtWarehouse ParcelStatus = "Au dépôt"
	ParcelInTransit   ParcelStatus = "En cours"
	ParcelDelivered   ParcelStatus = "Livré"
	ParcelReturned    ParcelStatus = "Retour"

	// ParcelHeld parks a parcel after a refused mission when the
	// reassignment policy is "manual": it stays out of the pickup
	// candidate pool until staff re-release it.
	ParcelHeld ParcelStatus = "En attente de réaffectation"
)

// Terminal reports whether no further transition is allowed from s.
func (s MissionStatus) Terminal() bool {
	return s == MissionAtWarehouse || s == MissionRefused
}

// CanTransitionTo reports whether the mission state machine allows
// moving from s to target. It only checks the edge; preconditions such
// as "all parcels scanned" or a matching completion code are enforced
// by the missions service.
func (s MissionStatus) CanTransitionTo(target MissionStatus) bool {
	switch target {
	case MissionToCollect:
		return s == MissionPending
	case MissionRefused:
		return s == MissionPending || s == MissionToCollect
	case MissionCollected:
		return s == MissionToCollect
	case MissionAtWarehouse:
		return s == MissionCollected
	default:
		return false
	}
}

// ParcelStatusFor returns the parcel status that accompanies a mission
// status, keeping the two vocabularies synchronized.
func ParcelStatusFor(s MissionStatus) ParcelStatus {
	switch s {
	case MissionCollected:
		return ParcelCollected
	case MissionAtWarehouse:
		return ParcelAtWarehouse
	default:
		return ParcelToCollect
	}
}

// ValidMissionStatus reports whether v is a known mission status value.
func ValidMissionStatus(v string) bool {
	switch MissionStatus(v) {
	case MissionPending, MissionToCollect, MissionCollected, MissionAtWarehouse, MissionRefused:
		return true
	}
	return false
}
