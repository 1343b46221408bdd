package domain

import "time"

// PackageState represents the lifecycle state of a package. The Spanish
// literals are the wire values persisted and returned by the API; they must
// round-trip unchanged.
type PackageState string

const (
	StatePublished PackageState = "Publicado"  // open, no carrier assigned
	StateRequested PackageState = "Proceso"    // sent directly to a specific traveler
	StateSuggested PackageState = "Aceptado"   // a traveler offered to carry it
	StateApproved  PackageState = "Aprobado"   // proprietor confirmed the carrier
	StateShipped   PackageState = "Enviado"    // picked up at origin branch
	StateInTransit PackageState = "Entregado"  // en route to destination branch
	StateReceived  PackageState = "Recibido"   // arrived at destination branch
	StateCompleted PackageState = "Completado" // handed to the receiver
	StateCancelled PackageState = "Cancelado"
)

// validTransitions defines the allowed state machine transitions.
// Cancellation is only reachable while the package has not left the origin
// branch (Publicado, Proceso, Aprobado).
var validTransitions = map[PackageState][]PackageState{
	StatePublished: {StateSuggested, StateCancelled},
	StateRequested: {StateApproved, StatePublished, StateCancelled},
	StateSuggested: {StateApproved},
	StateApproved:  {StateShipped, StateCancelled},
	StateShipped:   {StateInTransit},
	StateInTransit: {StateReceived},
	StateReceived:  {StateCompleted},
}

// CanTransitionTo reports whether a transition from the current state to next is valid.
func (s PackageState) CanTransitionTo(next PackageState) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid reports whether s is one of the known wire values.
func (s PackageState) IsValid() bool {
	switch s {
	case StatePublished, StateRequested, StateSuggested, StateApproved,
		StateShipped, StateInTransit, StateReceived, StateCompleted, StateCancelled:
		return true
	}
	return false
}

// Package is the central aggregate: a parcel a sender (proprietor) wants
// carried to its receiver by a traveler.
type Package struct {
	ID              string       `json:"id" bson:"_id,omitempty"`
	Description     string       `json:"description" bson:"description"`
	Weight          float64      `json:"weight" bson:"weight"`
	Image           string       `json:"image" bson:"image"`
	ReceiverName    string       `json:"receiverName" bson:"receiver_name"`
	ReceiverSurname string       `json:"receiverSurname" bson:"receiver_surname"`
	ReceiverCity    string       `json:"receiverCity" bson:"receiver_city"`
	ReceiverStreet  string       `json:"receiverStreet" bson:"receiver_street"`
	ReceiverPhone   string       `json:"receiverPhone" bson:"receiver_phone"`
	Proprietor      string       `json:"proprietor" bson:"proprietor"`
	Traveler        string       `json:"traveler,omitempty" bson:"traveler,omitempty"`
	State           PackageState `json:"state" bson:"state"`
	CreatedAt       time.Time    `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time    `json:"updatedAt" bson:"updated_at"`
}
