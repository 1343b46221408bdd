package domain

import (
	"regexp"
	"time"
)

// billingTimePattern is the historical HH:mm check. It accepts hours up to 29;
// tightening it would reject stored documents, so the loose form is kept.
var billingTimePattern = regexp.MustCompile(`^[0-2][0-9]:[0-5][0-9]$`)

// ValidBillingTime reports whether v matches the billing time wire format.
func ValidBillingTime(v string) bool {
	return billingTimePattern.MatchString(v)
}

// Travel is a traveler-published upcoming trip with spare carrying capacity.
type Travel struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	Origin          string    `json:"origin" bson:"origin"`
	Destination     string    `json:"destination" bson:"destination"`
	Date            time.Time `json:"date" bson:"date"`
	Airport         string    `json:"airport" bson:"airport"`
	Terminal        string    `json:"terminal" bson:"terminal"`
	Company         string    `json:"company" bson:"company"`
	BillingTime     string    `json:"billingTime" bson:"billing_time"`
	AvailableWeight float64   `json:"availableWeight" bson:"available_weight"`
	Traveler        string    `json:"traveler" bson:"traveler"`
	State           bool      `json:"state" bson:"state"`
	CreatedAt       time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updated_at"`
}
