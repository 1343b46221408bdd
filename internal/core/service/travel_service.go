package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

// TravelService implements the travel registry use cases.
type TravelService struct {
	repo   ports.TravelRepository
	clock  ports.Clock
	logger zerolog.Logger
}

func NewTravelService(repo ports.TravelRepository, clock ports.Clock, logger zerolog.Logger) *TravelService {
	return &TravelService{repo: repo, clock: clock, logger: logger}
}

// validateTravelInput checks the creation/update invariants shared by both paths.
func (s *TravelService) validateTravelInput(in ports.TravelInput) error {
	switch {
	case in.Origin == "", in.Destination == "", in.Date.IsZero(),
		in.Airport == "", in.Terminal == "", in.Company == "", in.BillingTime == "":
		return fmt.Errorf("%w: complete all fields", domain.ErrValidation)
	case in.Origin == in.Destination:
		return fmt.Errorf("%w: origin and destination cannot be the same", domain.ErrValidation)
	case !in.Date.After(s.clock.Now()):
		return fmt.Errorf("%w: date must be in the future", domain.ErrValidation)
	case !domain.ValidBillingTime(in.BillingTime):
		return fmt.Errorf("%w: billing time must match HH:mm", domain.ErrValidation)
	case in.AvailableWeight < 0:
		return fmt.Errorf("%w: available weight cannot be negative", domain.ErrValidation)
	}
	return nil
}

func (s *TravelService) CreateTravel(ctx context.Context, owner domain.Identity, in ports.TravelInput) (*domain.Travel, error) {
	if err := s.validateTravelInput(in); err != nil {
		return nil, err
	}

	// One upcoming travel per traveler, counting cancelled ones too.
	exists, err := s.repo.HasUpcoming(ctx, owner.SubjectID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("create travel: %w", err)
	}
	if exists {
		return nil, domain.ErrTravelConflict
	}

	now := s.clock.Now()
	travel := &domain.Travel{
		Origin:          in.Origin,
		Destination:     in.Destination,
		Date:            in.Date,
		Airport:         in.Airport,
		Terminal:        in.Terminal,
		Company:         in.Company,
		BillingTime:     in.BillingTime,
		AvailableWeight: in.AvailableWeight,
		Traveler:        owner.SubjectID,
		State:           true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, travel); err != nil {
		s.logger.Error().Err(err).Str("traveler", owner.SubjectID).Msg("failed to create travel")
		return nil, err
	}

	s.logger.Info().
		Str("travel_id", travel.ID).
		Str("traveler", owner.SubjectID).
		Str("origin", travel.Origin).
		Str("destination", travel.Destination).
		Msg("travel created")

	return travel, nil
}

func (s *TravelService) GetTravel(ctx context.Context, id string) (*domain.Travel, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TravelService) ListAll(ctx context.Context) ([]*domain.Travel, error) {
	return s.repo.FindAll(ctx)
}

func (s *TravelService) ListUpcoming(ctx context.Context, filter *ports.UpcomingFilter) ([]*domain.Travel, error) {
	origin, destination := "", ""
	if filter != nil {
		if filter.Origin == "" || filter.Destination == "" {
			return nil, fmt.Errorf("%w: route filter requires both origin and destination", domain.ErrValidation)
		}
		origin, destination = filter.Origin, filter.Destination
	}
	return s.repo.FindUpcoming(ctx, s.clock.Now(), origin, destination)
}

func (s *TravelService) ListByOwner(ctx context.Context, owner domain.Identity) ([]*domain.Travel, error) {
	return s.repo.FindByTraveler(ctx, owner.SubjectID)
}

func (s *TravelService) UpdateTravel(ctx context.Context, owner domain.Identity, id string, in ports.TravelInput) error {
	travel, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if travel.Traveler != owner.SubjectID {
		return domain.ErrForbidden
	}
	if err := s.validateTravelInput(in); err != nil {
		return err
	}

	travel.Origin = in.Origin
	travel.Destination = in.Destination
	travel.Date = in.Date
	travel.Airport = in.Airport
	travel.Terminal = in.Terminal
	travel.Company = in.Company
	travel.BillingTime = in.BillingTime
	travel.AvailableWeight = in.AvailableWeight
	travel.UpdatedAt = s.clock.Now()

	return s.repo.Update(ctx, id, travel)
}

func (s *TravelService) CancelTravel(ctx context.Context, owner domain.Identity, id string) error {
	travel, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if travel.Traveler != owner.SubjectID {
		return domain.ErrForbidden
	}

	if err := s.repo.SetState(ctx, id, false); err != nil {
		return err
	}
	s.logger.Info().Str("travel_id", id).Str("traveler", owner.SubjectID).Msg("travel cancelled")
	return nil
}

func (s *TravelService) DeleteTravel(ctx context.Context, actor domain.Identity, id string) error {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
