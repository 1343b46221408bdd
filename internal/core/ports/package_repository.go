package ports

import (
	"context"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
)

// PackageFilter carries the query predicates for listing packages. Zero-valued
// fields are not applied. Results are ordered by creation time ascending so
// pagination stays deterministic.
type PackageFilter struct {
	State         domain.PackageState
	Proprietor    string
	Traveler      string
	ReceiverCity  string
	NotProprietor string                // excludes packages owned by this subject
	ExcludeStates []domain.PackageState // excludes packages in any of these states
}

// TransitionUpdate carries the side effects applied atomically with a state change.
type TransitionUpdate struct {
	// SetTraveler assigns the carrier when non-empty.
	SetTraveler string
	// ClearTraveler unsets the carrier (request rejection).
	ClearTraveler bool
}

// PackagePatch holds the proprietor-editable fields. Edits only apply while
// the package is still Publicado.
type PackagePatch struct {
	Description     string
	Weight          float64
	Image           string
	ReceiverName    string
	ReceiverSurname string
	ReceiverCity    string
	ReceiverStreet  string
	ReceiverPhone   string
}

// PackageRepository defines persistence operations for packages.
//
// Transition is the single write path for state changes: a conditional update
// keyed by id that only takes effect when the stored state is one of from.
// Concurrent actors race on that condition; exactly one wins, the rest observe
// domain.ErrInvalidTransition.
type PackageRepository interface {
	Create(ctx context.Context, p *domain.Package) error
	FindByID(ctx context.Context, id string) (*domain.Package, error)
	Find(ctx context.Context, filter PackageFilter) ([]*domain.Package, error)
	// UpdateDetails applies patch only while the package is Publicado.
	UpdateDetails(ctx context.Context, id string, patch PackagePatch) error
	// Transition atomically moves the package from one of from to to, applying
	// upd in the same write. Returns the updated document.
	Transition(ctx context.Context, id string, from []domain.PackageState, to domain.PackageState, upd TransitionUpdate) (*domain.Package, error)
	Delete(ctx context.Context, id string) error
}
