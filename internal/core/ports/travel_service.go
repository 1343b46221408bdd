package ports

import (
	"context"
	"time"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
)

// TravelInput carries all fields for creating or updating a travel.
type TravelInput struct {
	Origin          string
	Destination     string
	Date            time.Time
	Airport         string
	Terminal        string
	Company         string
	BillingTime     string
	AvailableWeight float64
}

// UpcomingFilter optionally narrows the upcoming-travels listing to a route.
// Both fields must be set together.
type UpcomingFilter struct {
	Origin      string
	Destination string
}

// TravelService defines the travel registry use cases.
type TravelService interface {
	// CreateTravel publishes a trip owned by the caller. Fails with
	// domain.ErrTravelConflict when the caller already has an upcoming travel.
	CreateTravel(ctx context.Context, owner domain.Identity, in TravelInput) (*domain.Travel, error)
	GetTravel(ctx context.Context, id string) (*domain.Travel, error)
	// ListAll is the admin view over every travel.
	ListAll(ctx context.Context) ([]*domain.Travel, error)
	// ListUpcoming returns bookable trips: future, active, spare capacity.
	ListUpcoming(ctx context.Context, filter *UpcomingFilter) ([]*domain.Travel, error)
	// ListByOwner returns the caller's active travels, most recent first.
	ListByOwner(ctx context.Context, owner domain.Identity) ([]*domain.Travel, error)
	// UpdateTravel re-validates the creation invariants except the
	// no-duplicate-upcoming-travel check. Owner only.
	UpdateTravel(ctx context.Context, owner domain.Identity, id string, in TravelInput) error
	// CancelTravel soft-cancels (state=false). Owner only.
	CancelTravel(ctx context.Context, owner domain.Identity, id string) error
	// DeleteTravel hard-deletes. Super-admin only.
	DeleteTravel(ctx context.Context, actor domain.Identity, id string) error
}
