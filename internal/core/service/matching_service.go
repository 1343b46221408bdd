package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

// MatchingService pairs open packages with travelers' current trips.
type MatchingService struct {
	packages ports.PackageRepository
	travels  ports.TravelRepository
	clock    ports.Clock
	logger   zerolog.Logger
}

func NewMatchingService(packages ports.PackageRepository, travels ports.TravelRepository, clock ports.Clock, logger zerolog.Logger) *MatchingService {
	return &MatchingService{packages: packages, travels: travels, clock: clock, logger: logger}
}

func (s *MatchingService) FindMatchesForTraveler(ctx context.Context, traveler domain.Identity) ([]*domain.Package, error) {
	travel, err := s.travels.FindActiveUpcoming(ctx, traveler.SubjectID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	matches, err := s.packages.Find(ctx, ports.PackageFilter{
		State:         domain.StatePublished,
		ReceiverCity:  travel.Destination,
		NotProprietor: traveler.SubjectID,
	})
	if err != nil {
		return nil, fmt.Errorf("find matches: %w", err)
	}

	s.logger.Debug().
		Str("traveler", traveler.SubjectID).
		Str("destination", travel.Destination).
		Int("matches", len(matches)).
		Msg("matches computed")

	return matches, nil
}

func (s *MatchingService) FindAcceptedForProprietor(ctx context.Context, proprietor domain.Identity) ([]*domain.Package, error) {
	return s.packages.Find(ctx, ports.PackageFilter{
		Proprietor: proprietor.SubjectID,
		State:      domain.StateApproved,
	})
}

func (s *MatchingService) FindSuggestedForProprietor(ctx context.Context, proprietor domain.Identity) ([]*domain.Package, error) {
	return s.packages.Find(ctx, ports.PackageFilter{
		Proprietor: proprietor.SubjectID,
		State:      domain.StateSuggested,
	})
}

func (s *MatchingService) FindRequestsForTraveler(ctx context.Context, traveler domain.Identity) ([]*domain.Package, error) {
	return s.packages.Find(ctx, ports.PackageFilter{
		Traveler: traveler.SubjectID,
		State:    domain.StateRequested,
	})
}
