package ports

import (
	"context"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
)

// MatchingService surfaces compatible packages and pending negotiations.
type MatchingService interface {
	// FindMatchesForTraveler returns open packages bound for the destination of
	// the traveler's current trip, excluding the traveler's own packages.
	// Fails with domain.ErrNoActiveTravel when the traveler has no current trip.
	FindMatchesForTraveler(ctx context.Context, traveler domain.Identity) ([]*domain.Package, error)
	// FindAcceptedForProprietor returns the proprietor's Aprobado packages.
	FindAcceptedForProprietor(ctx context.Context, proprietor domain.Identity) ([]*domain.Package, error)
	// FindSuggestedForProprietor returns the proprietor's Aceptado packages
	// awaiting the proprietor's confirmation.
	FindSuggestedForProprietor(ctx context.Context, proprietor domain.Identity) ([]*domain.Package, error)
	// FindRequestsForTraveler returns packages assigned directly to the
	// traveler that are still in Proceso.
	FindRequestsForTraveler(ctx context.Context, traveler domain.Identity) ([]*domain.Package, error)
}
