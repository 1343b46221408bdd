package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

type packageFixture struct {
	svc      *PackageService
	packages *stubPackageRepo
	travels  *stubTravelRepo
	staff    *stubEmployeeRepo
	files    *stubFileStore
	audit    *stubAuditSink
	clock    *fixedClock
}

func newPackageFixture() *packageFixture {
	f := &packageFixture{
		packages: newStubPackageRepo(),
		travels:  newStubTravelRepo(),
		staff:    newStubEmployeeRepo(),
		files:    &stubFileStore{},
		audit:    &stubAuditSink{},
		clock:    newFixedClock(),
	}
	f.svc = NewPackageService(f.packages, f.travels, f.staff, f.files, f.audit, f.clock, discardLogger)
	return f
}

func minimalPackageInput() ports.CreatePackageInput {
	return ports.CreatePackageInput{
		Description:     "birthday present",
		Weight:          1.5,
		ImageData:       []byte{0xff, 0xd8},
		ImageName:       "box.jpg",
		ReceiverName:    "Ana",
		ReceiverSurname: "Lopez",
		ReceiverCity:    "Madrid",
		ReceiverStreet:  "Gran Via 12",
		ReceiverPhone:   "600111222",
	}
}

func (f *packageFixture) seedPackage(t *testing.T, proprietor string, state domain.PackageState, traveler string) *domain.Package {
	t.Helper()
	pkg := &domain.Package{
		Description:     "seed",
		Weight:          2,
		Image:           "file-0-seed.jpg",
		ReceiverName:    "Ana",
		ReceiverSurname: "Lopez",
		ReceiverCity:    "Madrid",
		ReceiverStreet:  "Gran Via 12",
		ReceiverPhone:   "600111222",
		Proprietor:      proprietor,
		Traveler:        traveler,
		State:           state,
	}
	if err := f.packages.Create(context.Background(), pkg); err != nil {
		t.Fatalf("seed package: %v", err)
	}
	return pkg
}

func (f *packageFixture) seedActiveTravel(t *testing.T, traveler, destination string) {
	t.Helper()
	err := f.travels.Create(context.Background(), &domain.Travel{
		Origin:          "Barcelona",
		Destination:     destination,
		Date:            f.clock.Now().Add(48 * time.Hour),
		Traveler:        traveler,
		State:           true,
		AvailableWeight: 10,
	})
	if err != nil {
		t.Fatalf("seed travel: %v", err)
	}
}

func userIdentity(id string) domain.Identity {
	return domain.NewIdentity(id, []string{domain.RoleUser})
}

func adminIdentity(id string) domain.Identity {
	return domain.NewIdentity(id, []string{domain.RoleAdmin})
}

func superAdminIdentity(id string) domain.Identity {
	return domain.NewIdentity(id, []string{domain.RoleSuperAdmin})
}

func TestCreatePackagePublishesOpenPackage(t *testing.T) {
	f := newPackageFixture()

	pkg, err := f.svc.CreatePackage(context.Background(), userIdentity("sender"), minimalPackageInput())
	if err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}
	if pkg.State != domain.StatePublished {
		t.Errorf("state = %q, want %q", pkg.State, domain.StatePublished)
	}
	if pkg.Proprietor != "sender" {
		t.Errorf("proprietor = %q, want sender", pkg.Proprietor)
	}
	if pkg.Image == "" {
		t.Error("image reference not set")
	}
	if len(f.audit.events) != 1 {
		t.Fatalf("audit events = %d, want 1", len(f.audit.events))
	}
	if ev := f.audit.events[0]; ev.From != "" || ev.To != domain.StatePublished {
		t.Errorf("audit event = %+v, want creation into %q", ev, domain.StatePublished)
	}
}

func TestCreatePackageTargetedAtTraveler(t *testing.T) {
	f := newPackageFixture()

	in := minimalPackageInput()
	in.Traveler = "carrier"
	pkg, err := f.svc.CreatePackage(context.Background(), userIdentity("sender"), in)
	if err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}
	if pkg.State != domain.StateRequested {
		t.Errorf("state = %q, want %q", pkg.State, domain.StateRequested)
	}
	if pkg.Traveler != "carrier" {
		t.Errorf("traveler = %q, want carrier", pkg.Traveler)
	}
}

func TestCreatePackageRejectsSelfAsTraveler(t *testing.T) {
	f := newPackageFixture()

	in := minimalPackageInput()
	in.Traveler = "sender"
	_, err := f.svc.CreatePackage(context.Background(), userIdentity("sender"), in)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestCreatePackageValidation(t *testing.T) {
	f := newPackageFixture()

	cases := []struct {
		name   string
		mutate func(*ports.CreatePackageInput)
	}{
		{"missing description", func(in *ports.CreatePackageInput) { in.Description = "" }},
		{"missing receiver city", func(in *ports.CreatePackageInput) { in.ReceiverCity = "" }},
		{"zero weight", func(in *ports.CreatePackageInput) { in.Weight = 0 }},
		{"negative weight", func(in *ports.CreatePackageInput) { in.Weight = -1 }},
		{"missing image", func(in *ports.CreatePackageInput) { in.ImageData = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := minimalPackageInput()
			tc.mutate(&in)
			if _, err := f.svc.CreatePackage(context.Background(), userIdentity("sender"), in); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreatePackageRemovesImageWhenInsertFails(t *testing.T) {
	f := newPackageFixture()
	f.packages.createErr = errors.New("insert failed")

	_, err := f.svc.CreatePackage(context.Background(), userIdentity("sender"), minimalPackageInput())
	if err == nil {
		t.Fatal("CreatePackage succeeded, want error")
	}
	if len(f.files.stored) != 1 || len(f.files.removed) != 1 {
		t.Fatalf("stored = %d removed = %d, want 1 and 1", len(f.files.stored), len(f.files.removed))
	}
	if f.files.removed[0] != f.files.stored[0] {
		t.Errorf("removed %q, want the stored reference %q", f.files.removed[0], f.files.stored[0])
	}
}

func TestSuggestAssignsTravelerAndRecordsAudit(t *testing.T) {
	f := newPackageFixture()
	f.seedActiveTravel(t, "carrier", "Madrid")
	pkg := f.seedPackage(t, "sender", domain.StatePublished, "")

	got, err := f.svc.Suggest(context.Background(), userIdentity("carrier"), pkg.ID)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if got.State != domain.StateSuggested {
		t.Errorf("state = %q, want %q", got.State, domain.StateSuggested)
	}
	if got.Traveler != "carrier" {
		t.Errorf("traveler = %q, want carrier", got.Traveler)
	}
	if len(f.audit.events) != 1 {
		t.Fatalf("audit events = %d, want 1", len(f.audit.events))
	}
	ev := f.audit.events[0]
	if ev.From != domain.StatePublished || ev.To != domain.StateSuggested || ev.Actor != "carrier" {
		t.Errorf("audit event = %+v", ev)
	}
}

func TestSuggestWithoutActiveTravel(t *testing.T) {
	f := newPackageFixture()
	pkg := f.seedPackage(t, "sender", domain.StatePublished, "")

	_, err := f.svc.Suggest(context.Background(), userIdentity("carrier"), pkg.ID)
	if !errors.Is(err, domain.ErrNoActiveTravel) {
		t.Fatalf("err = %v, want ErrNoActiveTravel", err)
	}
}

func TestSuggestOwnPackageForbidden(t *testing.T) {
	f := newPackageFixture()
	f.seedActiveTravel(t, "sender", "Madrid")
	pkg := f.seedPackage(t, "sender", domain.StatePublished, "")

	_, err := f.svc.Suggest(context.Background(), userIdentity("sender"), pkg.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestSuggestDestinationMismatch(t *testing.T) {
	f := newPackageFixture()
	f.seedActiveTravel(t, "carrier", "Valencia")
	pkg := f.seedPackage(t, "sender", domain.StatePublished, "")

	_, err := f.svc.Suggest(context.Background(), userIdentity("carrier"), pkg.ID)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestSuggestRaceSecondTravelerLoses(t *testing.T) {
	f := newPackageFixture()
	f.seedActiveTravel(t, "fast", "Madrid")
	f.seedActiveTravel(t, "slow", "Madrid")
	pkg := f.seedPackage(t, "sender", domain.StatePublished, "")

	if _, err := f.svc.Suggest(context.Background(), userIdentity("fast"), pkg.ID); err != nil {
		t.Fatalf("first Suggest: %v", err)
	}
	_, err := f.svc.Suggest(context.Background(), userIdentity("slow"), pkg.ID)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("second Suggest err = %v, want ErrInvalidTransition", err)
	}

	stored, _ := f.packages.FindByID(context.Background(), pkg.ID)
	if stored.Traveler != "fast" {
		t.Errorf("traveler = %q, want the race winner", stored.Traveler)
	}
}

func TestConfirmSuggestionApproves(t *testing.T) {
	f := newPackageFixture()
	pkg := f.seedPackage(t, "sender", domain.StateSuggested, "carrier")

	got, err := f.svc.ConfirmSuggestion(context.Background(), userIdentity("sender"), pkg.ID)
	if err != nil {
		t.Fatalf("ConfirmSuggestion: %v", err)
	}
	if got.State != domain.StateApproved {
		t.Errorf("state = %q, want %q", got.State, domain.StateApproved)
	}
}

func TestConfirmSuggestionStrangerForbidden(t *testing.T) {
	f := newPackageFixture()
	pkg := f.seedPackage(t, "sender", domain.StateSuggested, "carrier")

	_, err := f.svc.ConfirmSuggestion(context.Background(), userIdentity("stranger"), pkg.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestConfirmRequestApproves(t *testing.T) {
	f := newPackageFixture()
	pkg := f.seedPackage(t, "sender", domain.StateRequested, "carrier")

	got, err := f.svc.ConfirmRequest(context.Background(), userIdentity("sender"), pkg.ID)
	if err != nil {
		t.Fatalf("ConfirmRequest: %v", err)
	}
	if got.State != domain.StateApproved {
		t.Errorf("state = %q, want %q", got.State, domain.StateApproved)
	}
	if got.Traveler != "carrier" {
		t.Errorf("traveler = %q, want carrier kept", got.Traveler)
	}
}

func TestRejectRequestReturnsToOpenPool(t *testing.T) {
	f := newPackageFixture()
	pkg := f.seedPackage(t, "sender", domain.StateRequested, "carrier")

	got, err := f.svc.RejectRequest(context.Background(), userIdentity("sender"), pkg.ID)
	if err != nil {
		t.Fatalf("RejectRequest: %v", err)
	}
	if got.State != domain.StatePublished {
		t.Errorf("state = %q, want %q", got.State, domain.StatePublished)
	}
	if got.Traveler != "" {
		t.Errorf("traveler = %q, want cleared", got.Traveler)
	}
}

func TestCancelByProprietor(t *testing.T) {
	f := newPackageFixture()
	pkg := f.seedPackage(t, "sender", domain.StateApproved, "carrier")

	got, err := f.svc.Cancel(context.Background(), userIdentity("sender"), pkg.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.State != domain.StateCancelled {
		t.Errorf("state = %q, want %q", got.State, domain.StateCancelled)
	}
}

func TestCancelTwiceRejected(t *testing.T) {
	f := newPackageFixture()
	pkg := f.seedPackage(t, "sender", domain.StatePublished, "")

	if _, err := f.svc.Cancel(context.Background(), userIdentity("sender"), pkg.ID); err != nil {
		t.Fatalf("first Cancel: %v", err)
	}
	_, err := f.svc.Cancel(context.Background(), userIdentity("sender"), pkg.ID)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("second Cancel err = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelStrangerForbiddenStaffAllowed(t *testing.T) {
	f := newPackageFixture()
	pkg := f.seedPackage(t, "sender", domain.StatePublished, "")

	if _, err := f.svc.Cancel(context.Background(), userIdentity("stranger"), pkg.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger Cancel err = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.Cancel(context.Background(), adminIdentity("staff"), pkg.ID); err != nil {
		t.Fatalf("admin Cancel: %v", err)
	}
}

func TestCancelAfterShippingRejected(t *testing.T) {
	f := newPackageFixture()
	pkg := f.seedPackage(t, "sender", domain.StateShipped, "carrier")

	_, err := f.svc.Cancel(context.Background(), userIdentity("sender"), pkg.ID)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestMarkShippedRequiresShippingPermission(t *testing.T) {
	f := newPackageFixture()

	if err := f.staff.Create(context.Background(), &domain.Employee{
		User:        "clerk",
		Local:       "local-1",
		Permissions: []string{domain.PermissionShipping},
	}); err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	if err := f.staff.Create(context.Background(), &domain.Employee{
		User:        "receiver-only",
		Local:       "local-1",
		Permissions: []string{domain.PermissionReceiving},
	}); err != nil {
		t.Fatalf("seed employee: %v", err)
	}

	pkg := f.seedPackage(t, "sender", domain.StateApproved, "carrier")

	if _, err := f.svc.MarkShipped(context.Background(), userIdentity("clerk"), pkg.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-staff err = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.MarkShipped(context.Background(), adminIdentity("receiver-only"), pkg.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("wrong permission err = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.MarkShipped(context.Background(), adminIdentity("nobody"), pkg.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("no employee record err = %v, want ErrForbidden", err)
	}

	got, err := f.svc.MarkShipped(context.Background(), adminIdentity("clerk"), pkg.ID)
	if err != nil {
		t.Fatalf("MarkShipped: %v", err)
	}
	if got.State != domain.StateShipped {
		t.Errorf("state = %q, want %q", got.State, domain.StateShipped)
	}
}

func TestMarkShippedSuperAdminBypassesPermissions(t *testing.T) {
	f := newPackageFixture()
	pkg := f.seedPackage(t, "sender", domain.StateApproved, "carrier")

	got, err := f.svc.MarkShipped(context.Background(), superAdminIdentity("root"), pkg.ID)
	if err != nil {
		t.Fatalf("MarkShipped: %v", err)
	}
	if got.State != domain.StateShipped {
		t.Errorf("state = %q, want %q", got.State, domain.StateShipped)
	}
}

func TestMarkInTransitNeedsOnlyAdminRole(t *testing.T) {
	f := newPackageFixture()
	pkg := f.seedPackage(t, "sender", domain.StateShipped, "carrier")

	got, err := f.svc.MarkInTransit(context.Background(), adminIdentity("staff"), pkg.ID)
	if err != nil {
		t.Fatalf("MarkInTransit: %v", err)
	}
	if got.State != domain.StateInTransit {
		t.Errorf("state = %q, want %q", got.State, domain.StateInTransit)
	}
}

func TestPipelineEnforcesStageOrder(t *testing.T) {
	f := newPackageFixture()
	pkg := f.seedPackage(t, "sender", domain.StateApproved, "carrier")
	root := superAdminIdentity("root")
	ctx := context.Background()

	// Skipping a stage must be rejected by the conditional write.
	if _, err := f.svc.MarkReceived(ctx, root, pkg.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("MarkReceived from %q err = %v, want ErrInvalidTransition", domain.StateApproved, err)
	}

	for _, step := range []struct {
		apply func(context.Context, domain.Identity, string) (*domain.Package, error)
		want  domain.PackageState
	}{
		{f.svc.MarkShipped, domain.StateShipped},
		{f.svc.MarkInTransit, domain.StateInTransit},
		{f.svc.MarkReceived, domain.StateReceived},
		{f.svc.MarkCompleted, domain.StateCompleted},
	} {
		got, err := step.apply(ctx, root, pkg.ID)
		if err != nil {
			t.Fatalf("advance to %q: %v", step.want, err)
		}
		if got.State != step.want {
			t.Fatalf("state = %q, want %q", got.State, step.want)
		}
	}
}

func TestUpdatePackageOnlyWhilePublished(t *testing.T) {
	f := newPackageFixture()
	pkg := f.seedPackage(t, "sender", domain.StateApproved, "carrier")

	in := ports.UpdatePackageInput{
		Description:     "new description",
		Weight:          3,
		ReceiverName:    "Ana",
		ReceiverSurname: "Lopez",
		ReceiverCity:    "Madrid",
		ReceiverStreet:  "Gran Via 12",
		ReceiverPhone:   "600111222",
	}
	err := f.svc.UpdatePackage(context.Background(), userIdentity("sender"), pkg.ID, in)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestUpdatePackageReplacesImage(t *testing.T) {
	f := newPackageFixture()
	pkg := f.seedPackage(t, "sender", domain.StatePublished, "")

	in := ports.UpdatePackageInput{
		Description:     "new description",
		Weight:          3,
		ImageData:       []byte{0x89, 0x50},
		ImageName:       "new.png",
		ReceiverName:    "Ana",
		ReceiverSurname: "Lopez",
		ReceiverCity:    "Madrid",
		ReceiverStreet:  "Gran Via 12",
		ReceiverPhone:   "600111222",
	}
	if err := f.svc.UpdatePackage(context.Background(), userIdentity("sender"), pkg.ID, in); err != nil {
		t.Fatalf("UpdatePackage: %v", err)
	}
	if len(f.files.removed) != 1 || f.files.removed[0] != pkg.Image {
		t.Errorf("removed = %v, want the previous image %q", f.files.removed, pkg.Image)
	}
	stored, _ := f.packages.FindByID(context.Background(), pkg.ID)
	if stored.Image == pkg.Image {
		t.Error("image reference not replaced")
	}
}

func TestListByProprietorExcludesCancelled(t *testing.T) {
	f := newPackageFixture()
	f.seedPackage(t, "sender", domain.StatePublished, "")
	f.seedPackage(t, "sender", domain.StateCancelled, "")
	f.seedPackage(t, "other", domain.StatePublished, "")

	got, err := f.svc.ListByProprietor(context.Background(), userIdentity("sender"))
	if err != nil {
		t.Fatalf("ListByProprietor: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].State != domain.StatePublished {
		t.Errorf("state = %q, want %q", got[0].State, domain.StatePublished)
	}
}

func TestDeletePackageSuperAdminOnly(t *testing.T) {
	f := newPackageFixture()
	pkg := f.seedPackage(t, "sender", domain.StatePublished, "")

	if err := f.svc.DeletePackage(context.Background(), adminIdentity("staff"), pkg.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("admin err = %v, want ErrForbidden", err)
	}
	if err := f.svc.DeletePackage(context.Background(), superAdminIdentity("root"), pkg.ID); err != nil {
		t.Fatalf("super-admin DeletePackage: %v", err)
	}
	if _, err := f.packages.FindByID(context.Background(), pkg.ID); !errors.Is(err, domain.ErrPackageNotFound) {
		t.Errorf("err = %v, want ErrPackageNotFound after delete", err)
	}
}
