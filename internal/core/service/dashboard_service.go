package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

// DashboardService builds the read-only staff projections: packages grouped by
// state with the related party expanded to a summary.
type DashboardService struct {
	packages ports.PackageRepository
	users    ports.UserRepository
	logger   zerolog.Logger
}

func NewDashboardService(packages ports.PackageRepository, users ports.UserRepository, logger zerolog.Logger) *DashboardService {
	return &DashboardService{packages: packages, users: users, logger: logger}
}

// party selects which related user a projection expands.
type party int

const (
	partyNone party = iota
	partyProprietor
	partyTraveler
)

func (s *DashboardService) ListApproved(ctx context.Context) ([]*ports.PackageWithParty, error) {
	return s.listByState(ctx, domain.StateApproved, partyProprietor)
}

func (s *DashboardService) ListShipped(ctx context.Context) ([]*ports.PackageWithParty, error) {
	return s.listByState(ctx, domain.StateShipped, partyTraveler)
}

func (s *DashboardService) ListInTransit(ctx context.Context) ([]*ports.PackageWithParty, error) {
	return s.listByState(ctx, domain.StateInTransit, partyTraveler)
}

func (s *DashboardService) ListCompleted(ctx context.Context) ([]*ports.PackageWithParty, error) {
	return s.listByState(ctx, domain.StateCompleted, partyNone)
}

func (s *DashboardService) listByState(ctx context.Context, state domain.PackageState, expand party) ([]*ports.PackageWithParty, error) {
	pkgs, err := s.packages.Find(ctx, ports.PackageFilter{State: state})
	if err != nil {
		return nil, fmt.Errorf("dashboard list %s: %w", state, err)
	}

	out := make([]*ports.PackageWithParty, len(pkgs))
	for i, p := range pkgs {
		out[i] = &ports.PackageWithParty{Package: p}
	}
	if expand == partyNone || len(pkgs) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		switch expand {
		case partyProprietor:
			ids = append(ids, p.Proprietor)
		case partyTraveler:
			if p.Traveler != "" {
				ids = append(ids, p.Traveler)
			}
		}
	}

	summaries, err := s.users.Summaries(ctx, ids)
	if err != nil {
		// The projection is still useful without the expansion.
		s.logger.Warn().Err(err).Str("state", string(state)).Msg("failed to expand user summaries")
		return out, nil
	}

	for i, p := range pkgs {
		switch expand {
		case partyProprietor:
			if sum, ok := summaries[p.Proprietor]; ok {
				cp := sum
				out[i].Proprietor = &cp
			}
		case partyTraveler:
			if sum, ok := summaries[p.Traveler]; ok {
				cp := sum
				out[i].Traveler = &cp
			}
		}
	}
	return out, nil
}
