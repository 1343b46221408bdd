package ports

import (
	"context"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
)

// PackageWithParty is a package with the related user reference expanded to a
// summary record for staff dashboards.
type PackageWithParty struct {
	Package    *domain.Package
	Proprietor *domain.UserSummary
	Traveler   *domain.UserSummary
}

// DashboardService provides the read-only staff projections. Mutations go
// through PackageService.
type DashboardService interface {
	// ListApproved returns Aprobado packages with the proprietor expanded.
	ListApproved(ctx context.Context) ([]*PackageWithParty, error)
	// ListShipped returns Enviado packages with the traveler expanded.
	ListShipped(ctx context.Context) ([]*PackageWithParty, error)
	// ListInTransit returns Entregado packages with the traveler expanded.
	ListInTransit(ctx context.Context) ([]*PackageWithParty, error)
	// ListCompleted returns Completado packages.
	ListCompleted(ctx context.Context) ([]*PackageWithParty, error)
}
