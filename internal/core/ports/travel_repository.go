package ports

import (
	"context"
	"time"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
)

// TravelRepository defines persistence operations for travels.
type TravelRepository interface {
	Create(ctx context.Context, t *domain.Travel) error
	FindByID(ctx context.Context, id string) (*domain.Travel, error)
	// FindAll returns every travel, most recent date first.
	FindAll(ctx context.Context) ([]*domain.Travel, error)
	// FindUpcoming returns active travels with date > now and spare capacity,
	// date ascending, optionally filtered by route.
	FindUpcoming(ctx context.Context, now time.Time, origin, destination string) ([]*domain.Travel, error)
	// FindByTraveler returns the traveler's active travels, most recent date first.
	FindByTraveler(ctx context.Context, travelerID string) ([]*domain.Travel, error)
	// FindActiveUpcoming returns the traveler's current trip: active, date > now,
	// nearest date first. Returns domain.ErrNoActiveTravel when there is none.
	FindActiveUpcoming(ctx context.Context, travelerID string, now time.Time) (*domain.Travel, error)
	// HasUpcoming reports whether the traveler owns any travel with date > now,
	// regardless of its active/cancelled state.
	HasUpcoming(ctx context.Context, travelerID string, now time.Time) (bool, error)
	Update(ctx context.Context, id string, t *domain.Travel) error
	SetState(ctx context.Context, id string, state bool) error
	Delete(ctx context.Context, id string) error
}
