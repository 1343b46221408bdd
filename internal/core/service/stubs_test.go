package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// fixedClock returns a settable instant so date invariants are deterministic.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
}

// stubPackageRepo is an in-memory PackageRepository. Transition honours the
// state precondition the same way the conditional Mongo write does, so races
// and stale-state rejections behave like production.
type stubPackageRepo struct {
	store map[string]*domain.Package
	seq   int

	createErr error
}

func newStubPackageRepo() *stubPackageRepo {
	return &stubPackageRepo{store: make(map[string]*domain.Package)}
}

func (r *stubPackageRepo) Create(_ context.Context, p *domain.Package) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	p.ID = fmt.Sprintf("pkg-%d", r.seq)
	cp := *p
	r.store[p.ID] = &cp
	return nil
}

func (r *stubPackageRepo) FindByID(_ context.Context, id string) (*domain.Package, error) {
	p, ok := r.store[id]
	if !ok {
		return nil, domain.ErrPackageNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubPackageRepo) Find(_ context.Context, filter ports.PackageFilter) ([]*domain.Package, error) {
	var out []*domain.Package
	for _, p := range r.store {
		if filter.State != "" && p.State != filter.State {
			continue
		}
		if filter.Proprietor != "" && p.Proprietor != filter.Proprietor {
			continue
		}
		if filter.Traveler != "" && p.Traveler != filter.Traveler {
			continue
		}
		if filter.ReceiverCity != "" && p.ReceiverCity != filter.ReceiverCity {
			continue
		}
		if filter.NotProprietor != "" && p.Proprietor == filter.NotProprietor {
			continue
		}
		excluded := false
		for _, st := range filter.ExcludeStates {
			if p.State == st {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubPackageRepo) UpdateDetails(_ context.Context, id string, patch ports.PackagePatch) error {
	p, ok := r.store[id]
	if !ok {
		return domain.ErrPackageNotFound
	}
	if p.State != domain.StatePublished {
		return domain.ErrInvalidTransition
	}
	p.Description = patch.Description
	p.Weight = patch.Weight
	p.Image = patch.Image
	p.ReceiverName = patch.ReceiverName
	p.ReceiverSurname = patch.ReceiverSurname
	p.ReceiverCity = patch.ReceiverCity
	p.ReceiverStreet = patch.ReceiverStreet
	p.ReceiverPhone = patch.ReceiverPhone
	return nil
}

func (r *stubPackageRepo) Transition(_ context.Context, id string, from []domain.PackageState, to domain.PackageState, upd ports.TransitionUpdate) (*domain.Package, error) {
	p, ok := r.store[id]
	if !ok {
		return nil, domain.ErrPackageNotFound
	}
	matched := false
	for _, f := range from {
		if p.State == f {
			matched = true
			break
		}
	}
	if !matched {
		return nil, domain.ErrInvalidTransition
	}
	p.State = to
	if upd.SetTraveler != "" {
		p.Traveler = upd.SetTraveler
	}
	if upd.ClearTraveler {
		p.Traveler = ""
	}
	cp := *p
	return &cp, nil
}

func (r *stubPackageRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.store[id]; !ok {
		return domain.ErrPackageNotFound
	}
	delete(r.store, id)
	return nil
}

// stubTravelRepo is an in-memory TravelRepository.
type stubTravelRepo struct {
	store map[string]*domain.Travel
	seq   int
}

func newStubTravelRepo() *stubTravelRepo {
	return &stubTravelRepo{store: make(map[string]*domain.Travel)}
}

func (r *stubTravelRepo) Create(_ context.Context, t *domain.Travel) error {
	r.seq++
	t.ID = fmt.Sprintf("travel-%d", r.seq)
	cp := *t
	r.store[t.ID] = &cp
	return nil
}

func (r *stubTravelRepo) FindByID(_ context.Context, id string) (*domain.Travel, error) {
	t, ok := r.store[id]
	if !ok {
		return nil, domain.ErrTravelNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *stubTravelRepo) FindAll(_ context.Context) ([]*domain.Travel, error) {
	var out []*domain.Travel
	for _, t := range r.store {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *stubTravelRepo) FindUpcoming(_ context.Context, now time.Time, origin, destination string) ([]*domain.Travel, error) {
	var out []*domain.Travel
	for _, t := range r.store {
		if !t.State || !t.Date.After(now) || t.AvailableWeight <= 0 {
			continue
		}
		if origin != "" && t.Origin != origin {
			continue
		}
		if destination != "" && t.Destination != destination {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *stubTravelRepo) FindByTraveler(_ context.Context, travelerID string) ([]*domain.Travel, error) {
	var out []*domain.Travel
	for _, t := range r.store {
		if t.Traveler != travelerID || !t.State {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *stubTravelRepo) FindActiveUpcoming(_ context.Context, travelerID string, now time.Time) (*domain.Travel, error) {
	var best *domain.Travel
	for _, t := range r.store {
		if t.Traveler != travelerID || !t.State || !t.Date.After(now) {
			continue
		}
		if best == nil || t.Date.Before(best.Date) {
			best = t
		}
	}
	if best == nil {
		return nil, domain.ErrNoActiveTravel
	}
	cp := *best
	return &cp, nil
}

func (r *stubTravelRepo) HasUpcoming(_ context.Context, travelerID string, now time.Time) (bool, error) {
	for _, t := range r.store {
		if t.Traveler == travelerID && t.Date.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubTravelRepo) Update(_ context.Context, id string, t *domain.Travel) error {
	if _, ok := r.store[id]; !ok {
		return domain.ErrTravelNotFound
	}
	cp := *t
	cp.ID = id
	r.store[id] = &cp
	return nil
}

func (r *stubTravelRepo) SetState(_ context.Context, id string, state bool) error {
	t, ok := r.store[id]
	if !ok {
		return domain.ErrTravelNotFound
	}
	t.State = state
	return nil
}

func (r *stubTravelRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.store[id]; !ok {
		return domain.ErrTravelNotFound
	}
	delete(r.store, id)
	return nil
}

// stubUserRepo is an in-memory UserRepository.
type stubUserRepo struct {
	store map[string]*domain.User
	seq   int

	summariesErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{store: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.store {
		if existing.Username == u.Username || existing.PhoneNumber == u.PhoneNumber {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	cp := *u
	cp.ID = fmt.Sprintf("user-%d", r.seq)
	r.store[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.store {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.store {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) FindRoles(_ context.Context, id string) ([]string, error) {
	u, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return append([]string(nil), u.Roles...), nil
}

func (r *stubUserRepo) Summaries(_ context.Context, ids []string) (map[string]domain.UserSummary, error) {
	if r.summariesErr != nil {
		return nil, r.summariesErr
	}
	out := make(map[string]domain.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := r.store[id]; ok {
			out[id] = domain.UserSummary{
				ID:          u.ID,
				Name:        u.Name,
				Surname:     u.Surname,
				PhoneNumber: u.PhoneNumber,
				Username:    u.Username,
			}
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, u *domain.User) error {
	if _, ok := r.store[id]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *u
	cp.ID = id
	r.store[id] = &cp
	return nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	u, ok := r.store[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// setState flips the soft-delete flag directly; accounts are only
// deactivated out of band, there is no repository operation for it.
func (r *stubUserRepo) setState(id string, state bool) error {
	u, ok := r.store[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.State = state
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.store[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.store, id)
	return nil
}

// stubEmployeeRepo is an in-memory EmployeeRepository keyed by user id.
type stubEmployeeRepo struct {
	store map[string]*domain.Employee
	seq   int
}

func newStubEmployeeRepo() *stubEmployeeRepo {
	return &stubEmployeeRepo{store: make(map[string]*domain.Employee)}
}

func (r *stubEmployeeRepo) Create(_ context.Context, e *domain.Employee) error {
	r.seq++
	e.ID = fmt.Sprintf("emp-%d", r.seq)
	cp := *e
	r.store[e.ID] = &cp
	return nil
}

func (r *stubEmployeeRepo) FindByID(_ context.Context, id string) (*domain.Employee, error) {
	e, ok := r.store[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *stubEmployeeRepo) FindByUser(_ context.Context, userID string) (*domain.Employee, error) {
	for _, e := range r.store {
		if e.User == userID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrEmployeeNotFound
}

func (r *stubEmployeeRepo) FindAll(_ context.Context) ([]*domain.Employee, error) {
	var out []*domain.Employee
	for _, e := range r.store {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubEmployeeRepo) Update(_ context.Context, id string, e *domain.Employee) error {
	if _, ok := r.store[id]; !ok {
		return domain.ErrEmployeeNotFound
	}
	cp := *e
	cp.ID = id
	r.store[id] = &cp
	return nil
}

func (r *stubEmployeeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.store[id]; !ok {
		return domain.ErrEmployeeNotFound
	}
	delete(r.store, id)
	return nil
}

// stubLocalRepo is an in-memory LocalRepository.
type stubLocalRepo struct {
	store map[string]*domain.Local
	seq   int
}

func newStubLocalRepo() *stubLocalRepo {
	return &stubLocalRepo{store: make(map[string]*domain.Local)}
}

func (r *stubLocalRepo) Create(_ context.Context, l *domain.Local) error {
	for _, existing := range r.store {
		if existing.PhoneNumber == l.PhoneNumber {
			return domain.ErrLocalExists
		}
	}
	r.seq++
	l.ID = fmt.Sprintf("local-%d", r.seq)
	cp := *l
	r.store[l.ID] = &cp
	return nil
}

func (r *stubLocalRepo) FindByID(_ context.Context, id string) (*domain.Local, error) {
	l, ok := r.store[id]
	if !ok {
		return nil, domain.ErrLocalNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *stubLocalRepo) FindAll(_ context.Context) ([]*domain.Local, error) {
	var out []*domain.Local
	for _, l := range r.store {
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubLocalRepo) Update(_ context.Context, id string, l *domain.Local) error {
	if _, ok := r.store[id]; !ok {
		return domain.ErrLocalNotFound
	}
	cp := *l
	cp.ID = id
	r.store[id] = &cp
	return nil
}

func (r *stubLocalRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.store[id]; !ok {
		return domain.ErrLocalNotFound
	}
	delete(r.store, id)
	return nil
}

// stubPermissionRepo is an in-memory PermissionRepository.
type stubPermissionRepo struct {
	store map[string]*domain.Permission
	seq   int
}

func newStubPermissionRepo(names ...string) *stubPermissionRepo {
	r := &stubPermissionRepo{store: make(map[string]*domain.Permission)}
	for _, name := range names {
		r.seq++
		id := fmt.Sprintf("perm-%d", r.seq)
		r.store[id] = &domain.Permission{ID: id, Name: name}
	}
	return r
}

func (r *stubPermissionRepo) Create(_ context.Context, p *domain.Permission) error {
	for _, existing := range r.store {
		if existing.Name == p.Name {
			return domain.ErrPermissionExists
		}
	}
	r.seq++
	p.ID = fmt.Sprintf("perm-%d", r.seq)
	cp := *p
	r.store[p.ID] = &cp
	return nil
}

func (r *stubPermissionRepo) FindByID(_ context.Context, id string) (*domain.Permission, error) {
	p, ok := r.store[id]
	if !ok {
		return nil, domain.ErrPermissionNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubPermissionRepo) FindByName(_ context.Context, name string) (*domain.Permission, error) {
	for _, p := range r.store {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPermissionNotFound
}

func (r *stubPermissionRepo) FindAll(_ context.Context) ([]*domain.Permission, error) {
	var out []*domain.Permission
	for _, p := range r.store {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubPermissionRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.store[id]; !ok {
		return domain.ErrPermissionNotFound
	}
	delete(r.store, id)
	return nil
}

// stubFileStore records stored and removed references.
type stubFileStore struct {
	seq     int
	stored  []string
	removed []string

	storeErr error
}

func (f *stubFileStore) Store(_ context.Context, _ []byte, suggestedName string) (string, error) {
	if f.storeErr != nil {
		return "", f.storeErr
	}
	f.seq++
	ref := fmt.Sprintf("file-%d-%s", f.seq, suggestedName)
	f.stored = append(f.stored, ref)
	return ref, nil
}

func (f *stubFileStore) Resolve(_ context.Context, ref string) (string, error) {
	for _, s := range f.stored {
		if s == ref {
			return "/tmp/" + ref, nil
		}
	}
	return "", domain.ErrImageNotFound
}

func (f *stubFileStore) Remove(_ context.Context, ref string) error {
	f.removed = append(f.removed, ref)
	return nil
}

// stubAuditSink captures recorded transition events synchronously.
type stubAuditSink struct {
	events []domain.TransitionEvent
}

func (s *stubAuditSink) Record(ev domain.TransitionEvent) {
	s.events = append(s.events, ev)
}

// stubRoleCache records invalidations.
type stubRoleCache struct {
	entries     map[string][]string
	invalidated []string
}

func newStubRoleCache() *stubRoleCache {
	return &stubRoleCache{entries: make(map[string][]string)}
}

func (c *stubRoleCache) Get(_ context.Context, subjectID string) ([]string, bool, error) {
	roles, ok := c.entries[subjectID]
	return roles, ok, nil
}

func (c *stubRoleCache) Set(_ context.Context, subjectID string, roles []string) error {
	c.entries[subjectID] = roles
	return nil
}

func (c *stubRoleCache) Invalidate(_ context.Context, subjectID string) error {
	c.invalidated = append(c.invalidated, subjectID)
	delete(c.entries, subjectID)
	return nil
}
