package ports

import (
	"context"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
)

// CreatePackageInput carries all data needed to create a package. The image is
// passed as raw bytes; the service stores it and keeps only the reference.
// When Traveler is set the package is created already targeted at that
// traveler (Proceso); otherwise it is published openly (Publicado).
type CreatePackageInput struct {
	Description     string
	Weight          float64
	ImageData       []byte
	ImageName       string
	ReceiverName    string
	ReceiverSurname string
	ReceiverCity    string
	ReceiverStreet  string
	ReceiverPhone   string
	Traveler        string
}

// UpdatePackageInput carries the proprietor-editable fields. ImageData is
// optional; when empty the stored image is kept.
type UpdatePackageInput struct {
	Description     string
	Weight          float64
	ImageData       []byte
	ImageName       string
	ReceiverName    string
	ReceiverSurname string
	ReceiverCity    string
	ReceiverStreet  string
	ReceiverPhone   string
}

// PackageService defines the package lifecycle use cases. Every state change
// goes through the repository's conditional Transition write; callers losing a
// race observe domain.ErrInvalidTransition and must re-fetch.
type PackageService interface {
	CreatePackage(ctx context.Context, proprietor domain.Identity, in CreatePackageInput) (*domain.Package, error)
	GetPackage(ctx context.Context, id string) (*domain.Package, error)
	// ListAll is the admin view over every package.
	ListAll(ctx context.Context) ([]*domain.Package, error)
	// ListByProprietor returns the caller's packages, cancelled ones excluded.
	ListByProprietor(ctx context.Context, proprietor domain.Identity) ([]*domain.Package, error)
	// UpdatePackage edits package details. Proprietor only, Publicado only.
	UpdatePackage(ctx context.Context, proprietor domain.Identity, id string, in UpdatePackageInput) error

	// Suggest is a traveler's offer to carry an open package. Requires an
	// active upcoming travel to the package's receiver city.
	Suggest(ctx context.Context, traveler domain.Identity, packageID string) (*domain.Package, error)
	// ConfirmSuggestion accepts a traveler's offer. Proprietor only.
	ConfirmSuggestion(ctx context.Context, proprietor domain.Identity, packageID string) (*domain.Package, error)
	// ConfirmRequest approves a direct traveler assignment. Proprietor only.
	ConfirmRequest(ctx context.Context, proprietor domain.Identity, packageID string) (*domain.Package, error)
	// RejectRequest returns a targeted package to the open pool, clearing the
	// carrier. Proprietor only.
	RejectRequest(ctx context.Context, proprietor domain.Identity, packageID string) (*domain.Package, error)
	// Cancel withdraws the package. Proprietor or admin; only before shipping.
	Cancel(ctx context.Context, actor domain.Identity, packageID string) (*domain.Package, error)

	// Shipping pipeline. Staff only; permission tags per stage.
	MarkShipped(ctx context.Context, actor domain.Identity, packageID string) (*domain.Package, error)
	MarkInTransit(ctx context.Context, actor domain.Identity, packageID string) (*domain.Package, error)
	MarkReceived(ctx context.Context, actor domain.Identity, packageID string) (*domain.Package, error)
	MarkCompleted(ctx context.Context, actor domain.Identity, packageID string) (*domain.Package, error)

	// DeletePackage hard-deletes. Super-admin only.
	DeletePackage(ctx context.Context, actor domain.Identity, id string) error
}
