package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubPatientRepo struct {
	byID    map[int64]*domain.Patient
	nextID  int64
	findErr error // if set, FindByID returns this error
	failErr error // if set, writes and List return this error
}

func newStubPatientRepo() *stubPatientRepo {
	return &stubPatientRepo{byID: make(map[int64]*domain.Patient)}
}

func (r *stubPatientRepo) Create(_ context.Context, p *domain.Patient) error {
	if r.failErr != nil {
		return r.failErr
	}
	r.nextID++
	p.ID = r.nextID
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubPatientRepo) FindByID(_ context.Context, id int64) (*domain.Patient, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrPatientNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubPatientRepo) List(_ context.Context) ([]*domain.Patient, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	out := make([]*domain.Patient, 0, len(r.byID))
	for _, p := range r.byID {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubPatientRepo) Update(_ context.Context, p *domain.Patient) error {
	if r.failErr != nil {
		return r.failErr
	}
	if _, ok := r.byID[p.ID]; !ok {
		return domain.ErrPatientNotFound
	}
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubPatientRepo) Delete(_ context.Context, id int64) error {
	if r.failErr != nil {
		return r.failErr
	}
	if _, ok := r.byID[id]; !ok {
		return domain.ErrPatientNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubStaffRepo struct {
	byID    map[int64]*domain.Staff
	nextID  int64
	findErr error
}

func newStubStaffRepo() *stubStaffRepo {
	return &stubStaffRepo{byID: make(map[int64]*domain.Staff)}
}

func (r *stubStaffRepo) Create(_ context.Context, s *domain.Staff) error {
	r.nextID++
	s.ID = r.nextID
	clone := *s
	r.byID[s.ID] = &clone
	return nil
}

func (r *stubStaffRepo) FindByID(_ context.Context, id int64) (*domain.Staff, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrStaffNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *stubStaffRepo) List(_ context.Context) ([]*domain.Staff, error) {
	out := make([]*domain.Staff, 0, len(r.byID))
	for _, s := range r.byID {
		clone := *s
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubStaffRepo) Update(_ context.Context, s *domain.Staff) error {
	if _, ok := r.byID[s.ID]; !ok {
		return domain.ErrStaffNotFound
	}
	clone := *s
	r.byID[s.ID] = &clone
	return nil
}

func (r *stubStaffRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrStaffNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubMeetingRepo struct {
	byID      map[int64]*domain.Meeting
	nextID    int64
	createErr error // if set, Create returns this error
	slotErr   error // if set, FindByDoctorAndTime returns this error
	updates   int
}

func newStubMeetingRepo() *stubMeetingRepo {
	return &stubMeetingRepo{byID: make(map[int64]*domain.Meeting)}
}

func (r *stubMeetingRepo) Create(_ context.Context, m *domain.Meeting) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	m.ID = r.nextID
	clone := *m
	r.byID[m.ID] = &clone
	return nil
}

func (r *stubMeetingRepo) FindByID(_ context.Context, id int64) (*domain.Meeting, error) {
	m, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrMeetingNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *stubMeetingRepo) FindByDoctorAndTime(_ context.Context, doctorID int64, at time.Time) (*domain.Meeting, error) {
	if r.slotErr != nil {
		return nil, r.slotErr
	}
	for _, m := range r.byID {
		if m.DoctorID == doctorID && m.AppointmentAt.Equal(at) {
			clone := *m
			return &clone, nil
		}
	}
	return nil, domain.ErrMeetingNotFound
}

func (r *stubMeetingRepo) List(_ context.Context) ([]*domain.Meeting, error) {
	out := make([]*domain.Meeting, 0, len(r.byID))
	for _, m := range r.byID {
		clone := *m
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubMeetingRepo) Update(_ context.Context, m *domain.Meeting) error {
	if _, ok := r.byID[m.ID]; !ok {
		return domain.ErrMeetingNotFound
	}
	r.updates++
	clone := *m
	r.byID[m.ID] = &clone
	return nil
}

func (r *stubMeetingRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrMeetingNotFound
	}
	delete(r.byID, id)
	return nil
}

// recordingLocker remembers which slots were locked and released.
type recordingLocker struct {
	locked   []domain.Slot
	released int
	err      error
}

func (l *recordingLocker) Lock(_ context.Context, slot domain.Slot) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked = append(l.locked, slot)
	return func() { l.released++ }, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

var tenAM = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
