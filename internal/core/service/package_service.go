package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

// PackageService implements the package lifecycle state machine. Every state
// change is a single conditional write; ownership and role checks happen
// before the write, the state precondition is enforced by the write itself.
type PackageService struct {
	packages  ports.PackageRepository
	travels   ports.TravelRepository
	employees ports.EmployeeRepository
	files     ports.FileStore
	audit     ports.AuditSink
	clock     ports.Clock
	logger    zerolog.Logger
}

func NewPackageService(
	packages ports.PackageRepository,
	travels ports.TravelRepository,
	employees ports.EmployeeRepository,
	files ports.FileStore,
	audit ports.AuditSink,
	clock ports.Clock,
	logger zerolog.Logger,
) *PackageService {
	return &PackageService{
		packages:  packages,
		travels:   travels,
		employees: employees,
		files:     files,
		audit:     audit,
		clock:     clock,
		logger:    logger,
	}
}

func validatePackageFields(description string, weight float64, receiverName, receiverSurname, receiverCity, receiverStreet, receiverPhone string) error {
	switch {
	case description == "", receiverName == "", receiverSurname == "",
		receiverCity == "", receiverStreet == "", receiverPhone == "":
		return fmt.Errorf("%w: complete all fields", domain.ErrValidation)
	case weight <= 0:
		return fmt.Errorf("%w: weight must be greater than zero", domain.ErrValidation)
	}
	return nil
}

func (s *PackageService) CreatePackage(ctx context.Context, proprietor domain.Identity, in ports.CreatePackageInput) (*domain.Package, error) {
	if err := validatePackageFields(in.Description, in.Weight, in.ReceiverName, in.ReceiverSurname, in.ReceiverCity, in.ReceiverStreet, in.ReceiverPhone); err != nil {
		return nil, err
	}
	if len(in.ImageData) == 0 {
		return nil, fmt.Errorf("%w: image is required", domain.ErrValidation)
	}
	if in.Traveler == proprietor.SubjectID && in.Traveler != "" {
		return nil, fmt.Errorf("%w: cannot target your own account as traveler", domain.ErrValidation)
	}

	imageRef, err := s.files.Store(ctx, in.ImageData, in.ImageName)
	if err != nil {
		return nil, fmt.Errorf("create package: store image: %w", err)
	}

	now := s.clock.Now()
	pkg := &domain.Package{
		Description:     in.Description,
		Weight:          in.Weight,
		Image:           imageRef,
		ReceiverName:    in.ReceiverName,
		ReceiverSurname: in.ReceiverSurname,
		ReceiverCity:    in.ReceiverCity,
		ReceiverStreet:  in.ReceiverStreet,
		ReceiverPhone:   in.ReceiverPhone,
		Proprietor:      proprietor.SubjectID,
		State:           domain.StatePublished,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.Traveler != "" {
		pkg.State = domain.StateRequested
		pkg.Traveler = in.Traveler
	}

	if err := s.packages.Create(ctx, pkg); err != nil {
		// The record is the source of truth: never leave a stored image that
		// no package references.
		if rmErr := s.files.Remove(ctx, imageRef); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("image", imageRef).Msg("failed to remove orphaned image")
		}
		s.logger.Error().Err(err).Str("proprietor", proprietor.SubjectID).Msg("failed to create package")
		return nil, err
	}

	s.audit.Record(domain.TransitionEvent{
		PackageID: pkg.ID,
		To:        pkg.State,
		Actor:     proprietor.SubjectID,
		Timestamp: now,
	})

	s.logger.Info().
		Str("package_id", pkg.ID).
		Str("proprietor", proprietor.SubjectID).
		Str("state", string(pkg.State)).
		Msg("package created")

	return pkg, nil
}

func (s *PackageService) GetPackage(ctx context.Context, id string) (*domain.Package, error) {
	return s.packages.FindByID(ctx, id)
}

func (s *PackageService) ListAll(ctx context.Context) ([]*domain.Package, error) {
	return s.packages.Find(ctx, ports.PackageFilter{})
}

func (s *PackageService) ListByProprietor(ctx context.Context, proprietor domain.Identity) ([]*domain.Package, error) {
	return s.packages.Find(ctx, ports.PackageFilter{
		Proprietor:    proprietor.SubjectID,
		ExcludeStates: []domain.PackageState{domain.StateCancelled},
	})
}

func (s *PackageService) UpdatePackage(ctx context.Context, proprietor domain.Identity, id string, in ports.UpdatePackageInput) error {
	pkg, err := s.packages.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if pkg.Proprietor != proprietor.SubjectID {
		return domain.ErrForbidden
	}
	if err := validatePackageFields(in.Description, in.Weight, in.ReceiverName, in.ReceiverSurname, in.ReceiverCity, in.ReceiverStreet, in.ReceiverPhone); err != nil {
		return err
	}

	imageRef := pkg.Image
	if len(in.ImageData) > 0 {
		imageRef, err = s.files.Store(ctx, in.ImageData, in.ImageName)
		if err != nil {
			return fmt.Errorf("update package: store image: %w", err)
		}
	}

	patch := ports.PackagePatch{
		Description:     in.Description,
		Weight:          in.Weight,
		Image:           imageRef,
		ReceiverName:    in.ReceiverName,
		ReceiverSurname: in.ReceiverSurname,
		ReceiverCity:    in.ReceiverCity,
		ReceiverStreet:  in.ReceiverStreet,
		ReceiverPhone:   in.ReceiverPhone,
	}

	if err := s.packages.UpdateDetails(ctx, id, patch); err != nil {
		if imageRef != pkg.Image {
			if rmErr := s.files.Remove(ctx, imageRef); rmErr != nil {
				s.logger.Warn().Err(rmErr).Str("image", imageRef).Msg("failed to remove orphaned image")
			}
		}
		return err
	}

	if imageRef != pkg.Image {
		if rmErr := s.files.Remove(ctx, pkg.Image); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("image", pkg.Image).Msg("failed to remove replaced image")
		}
	}
	return nil
}

// Suggest is a traveler's offer to carry an open package. The traveler must
// have a current trip reaching the package's receiver city. Two travelers
// racing on the same package resolve at the conditional write: one wins, the
// other observes ErrInvalidTransition.
func (s *PackageService) Suggest(ctx context.Context, traveler domain.Identity, packageID string) (*domain.Package, error) {
	travel, err := s.travels.FindActiveUpcoming(ctx, traveler.SubjectID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	pkg, err := s.packages.FindByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if pkg.Proprietor == traveler.SubjectID {
		return nil, domain.ErrForbidden
	}
	if travel.Destination != pkg.ReceiverCity {
		return nil, fmt.Errorf("%w: travel does not reach the package destination", domain.ErrValidation)
	}

	return s.transition(ctx, traveler.SubjectID, packageID, pkg.State,
		[]domain.PackageState{domain.StatePublished}, domain.StateSuggested,
		ports.TransitionUpdate{SetTraveler: traveler.SubjectID})
}

func (s *PackageService) ConfirmSuggestion(ctx context.Context, proprietor domain.Identity, packageID string) (*domain.Package, error) {
	pkg, err := s.ownedBy(ctx, proprietor, packageID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, proprietor.SubjectID, packageID, pkg.State,
		[]domain.PackageState{domain.StateSuggested}, domain.StateApproved,
		ports.TransitionUpdate{})
}

func (s *PackageService) ConfirmRequest(ctx context.Context, proprietor domain.Identity, packageID string) (*domain.Package, error) {
	pkg, err := s.ownedBy(ctx, proprietor, packageID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, proprietor.SubjectID, packageID, pkg.State,
		[]domain.PackageState{domain.StateRequested}, domain.StateApproved,
		ports.TransitionUpdate{})
}

func (s *PackageService) RejectRequest(ctx context.Context, proprietor domain.Identity, packageID string) (*domain.Package, error) {
	pkg, err := s.ownedBy(ctx, proprietor, packageID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, proprietor.SubjectID, packageID, pkg.State,
		[]domain.PackageState{domain.StateRequested}, domain.StatePublished,
		ports.TransitionUpdate{ClearTraveler: true})
}

// Cancel withdraws a package before it leaves the origin branch. Cancelling an
// already-cancelled package reports ErrInvalidTransition.
func (s *PackageService) Cancel(ctx context.Context, actor domain.Identity, packageID string) (*domain.Package, error) {
	pkg, err := s.packages.FindByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	isStaff := actor.HasRole(domain.RoleAdmin) || actor.HasRole(domain.RoleSuperAdmin)
	if pkg.Proprietor != actor.SubjectID && !isStaff {
		return nil, domain.ErrForbidden
	}

	return s.transition(ctx, actor.SubjectID, packageID, pkg.State,
		[]domain.PackageState{domain.StatePublished, domain.StateRequested, domain.StateApproved},
		domain.StateCancelled, ports.TransitionUpdate{})
}

func (s *PackageService) MarkShipped(ctx context.Context, actor domain.Identity, packageID string) (*domain.Package, error) {
	if err := s.requireStagePermission(ctx, actor, domain.PermissionShipping); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor.SubjectID, packageID, domain.StateApproved,
		[]domain.PackageState{domain.StateApproved}, domain.StateShipped,
		ports.TransitionUpdate{})
}

func (s *PackageService) MarkInTransit(ctx context.Context, actor domain.Identity, packageID string) (*domain.Package, error) {
	if err := s.requireStagePermission(ctx, actor, ""); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor.SubjectID, packageID, domain.StateShipped,
		[]domain.PackageState{domain.StateShipped}, domain.StateInTransit,
		ports.TransitionUpdate{})
}

func (s *PackageService) MarkReceived(ctx context.Context, actor domain.Identity, packageID string) (*domain.Package, error) {
	if err := s.requireStagePermission(ctx, actor, domain.PermissionReceiving); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor.SubjectID, packageID, domain.StateInTransit,
		[]domain.PackageState{domain.StateInTransit}, domain.StateReceived,
		ports.TransitionUpdate{})
}

func (s *PackageService) MarkCompleted(ctx context.Context, actor domain.Identity, packageID string) (*domain.Package, error) {
	if err := s.requireStagePermission(ctx, actor, domain.PermissionComplete); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor.SubjectID, packageID, domain.StateReceived,
		[]domain.PackageState{domain.StateReceived}, domain.StateCompleted,
		ports.TransitionUpdate{})
}

func (s *PackageService) DeletePackage(ctx context.Context, actor domain.Identity, id string) error {
	if !actor.HasRole(domain.RoleSuperAdmin) {
		return domain.ErrForbidden
	}
	return s.packages.Delete(ctx, id)
}

// ownedBy fetches the package and verifies the caller is its proprietor.
func (s *PackageService) ownedBy(ctx context.Context, actor domain.Identity, packageID string) (*domain.Package, error) {
	pkg, err := s.packages.FindByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if pkg.Proprietor != actor.SubjectID {
		return nil, domain.ErrForbidden
	}
	return pkg, nil
}

// requireStagePermission gates shipping-stage transitions: super-admins pass,
// everybody else needs ADMIN_ROLE, and stages with a named permission tag
// additionally require an employee record carrying it.
func (s *PackageService) requireStagePermission(ctx context.Context, actor domain.Identity, perm string) error {
	if actor.HasRole(domain.RoleSuperAdmin) {
		return nil
	}
	if !actor.HasRole(domain.RoleAdmin) {
		return domain.ErrForbidden
	}
	if perm == "" {
		return nil
	}

	emp, err := s.employees.FindByUser(ctx, actor.SubjectID)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return domain.ErrForbidden
		}
		return fmt.Errorf("stage permission: %w", err)
	}
	if !emp.HasPermission(perm) {
		return domain.ErrForbidden
	}
	return nil
}

// transition performs the conditional state write and records the audit event.
// observed is the state read before the write; the write itself re-checks
// against from, so observed is only used for the audit record.
func (s *PackageService) transition(ctx context.Context, actor, packageID string, observed domain.PackageState, from []domain.PackageState, to domain.PackageState, upd ports.TransitionUpdate) (*domain.Package, error) {
	pkg, err := s.packages.Transition(ctx, packageID, from, to, upd)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			s.logger.Warn().
				Str("package_id", packageID).
				Str("actor", actor).
				Str("observed", string(observed)).
				Str("target", string(to)).
				Msg("transition rejected")
		}
		return nil, err
	}

	s.audit.Record(domain.TransitionEvent{
		PackageID: packageID,
		From:      observed,
		To:        to,
		Actor:     actor,
		Timestamp: s.clock.Now(),
	})

	s.logger.Info().
		Str("package_id", packageID).
		Str("actor", actor).
		Str("from", string(observed)).
		Str("to", string(to)).
		Msg("package transitioned")

	return pkg, nil
}
