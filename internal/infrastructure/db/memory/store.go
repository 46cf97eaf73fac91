// Package memory is an in-process store used for development and tests. It
// applies the same rules as the database backends: sequential ids, a unique
// (doctor, time) slot per meeting, and cascading deletes.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/qubehealth/appointments-api/internal/core/domain"
	"github.com/qubehealth/appointments-api/internal/core/ports"
)

// Store holds every collection behind a single mutex.
type Store struct {
	mu       sync.RWMutex
	patients map[int64]domain.Patient
	staff    map[int64]domain.Staff
	meetings map[int64]domain.Meeting
	slots    map[domain.Slot]int64

	nextPatient int64
	nextStaff   int64
	nextMeeting int64
}

func NewStore() *Store {
	return &Store{
		patients: make(map[int64]domain.Patient),
		staff:    make(map[int64]domain.Staff),
		meetings: make(map[int64]domain.Meeting),
		slots:    make(map[domain.Slot]int64),
	}
}

func (s *Store) Patients() ports.PatientRepository { return patientRepo{s} }
func (s *Store) Staff() ports.StaffRepository      { return staffRepo{s} }
func (s *Store) Meetings() ports.MeetingRepository { return meetingRepo{s} }

// Ping satisfies the readiness check.
func (s *Store) Ping(context.Context) error { return nil }

// slotOf normalises the time so that equal instants map to the same key.
func slotOf(doctorID int64, at time.Time) domain.Slot {
	return domain.Slot{DoctorID: doctorID, At: at.UTC().Round(0)}
}

// deleteMeetingsLocked removes every meeting for which match returns true.
// Callers hold s.mu.
func (s *Store) deleteMeetingsLocked(match func(domain.Meeting) bool) {
	for id, m := range s.meetings {
		if match(m) {
			delete(s.slots, slotOf(m.DoctorID, m.AppointmentAt))
			delete(s.meetings, id)
		}
	}
}

// --- patients ---

type patientRepo struct{ s *Store }

func (r patientRepo) Create(_ context.Context, p *domain.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextPatient++
	p.ID = r.s.nextPatient
	r.s.patients[p.ID] = *p
	return nil
}

func (r patientRepo) FindByID(_ context.Context, id int64) (*domain.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.patients[id]
	if !ok {
		return nil, domain.ErrPatientNotFound
	}
	return &p, nil
}

func (r patientRepo) List(_ context.Context) ([]*domain.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Patient, 0, len(r.s.patients))
	for _, p := range r.s.patients {
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r patientRepo) Update(_ context.Context, p *domain.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.patients[p.ID]; !ok {
		return domain.ErrPatientNotFound
	}
	r.s.patients[p.ID] = *p
	return nil
}

func (r patientRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.patients[id]; !ok {
		return domain.ErrPatientNotFound
	}
	r.s.deleteMeetingsLocked(func(m domain.Meeting) bool { return m.PatientID == id })
	delete(r.s.patients, id)
	return nil
}

// --- staff ---

type staffRepo struct{ s *Store }

func (r staffRepo) Create(_ context.Context, st *domain.Staff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextStaff++
	st.ID = r.s.nextStaff
	r.s.staff[st.ID] = *st
	return nil
}

func (r staffRepo) FindByID(_ context.Context, id int64) (*domain.Staff, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st, ok := r.s.staff[id]
	if !ok {
		return nil, domain.ErrStaffNotFound
	}
	return &st, nil
}

func (r staffRepo) List(_ context.Context) ([]*domain.Staff, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Staff, 0, len(r.s.staff))
	for _, st := range r.s.staff {
		out = append(out, &st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r staffRepo) Update(_ context.Context, st *domain.Staff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.staff[st.ID]; !ok {
		return domain.ErrStaffNotFound
	}
	r.s.staff[st.ID] = *st
	return nil
}

func (r staffRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.staff[id]; !ok {
		return domain.ErrStaffNotFound
	}
	r.s.deleteMeetingsLocked(func(m domain.Meeting) bool { return m.DoctorID == id })
	delete(r.s.staff, id)
	return nil
}

// --- meetings ---

type meetingRepo struct{ s *Store }

func (r meetingRepo) Create(_ context.Context, m *domain.Meeting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	slot := slotOf(m.DoctorID, m.AppointmentAt)
	if _, taken := r.s.slots[slot]; taken {
		return domain.ErrSlotTaken
	}

	r.s.nextMeeting++
	m.ID = r.s.nextMeeting
	r.s.meetings[m.ID] = *m
	r.s.slots[slot] = m.ID
	return nil
}

func (r meetingRepo) FindByID(_ context.Context, id int64) (*domain.Meeting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.meetings[id]
	if !ok {
		return nil, domain.ErrMeetingNotFound
	}
	return &m, nil
}

func (r meetingRepo) FindByDoctorAndTime(_ context.Context, doctorID int64, at time.Time) (*domain.Meeting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.slots[slotOf(doctorID, at)]
	if !ok {
		return nil, domain.ErrMeetingNotFound
	}
	m := r.s.meetings[id]
	return &m, nil
}

func (r meetingRepo) List(_ context.Context) ([]*domain.Meeting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Meeting, 0, len(r.s.meetings))
	for _, m := range r.s.meetings {
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r meetingRepo) Update(_ context.Context, m *domain.Meeting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	old, ok := r.s.meetings[m.ID]
	if !ok {
		return domain.ErrMeetingNotFound
	}

	slot := slotOf(m.DoctorID, m.AppointmentAt)
	if owner, taken := r.s.slots[slot]; taken && owner != m.ID {
		return domain.ErrSlotTaken
	}

	delete(r.s.slots, slotOf(old.DoctorID, old.AppointmentAt))
	r.s.meetings[m.ID] = *m
	r.s.slots[slot] = m.ID
	return nil
}

func (r meetingRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.meetings[id]
	if !ok {
		return domain.ErrMeetingNotFound
	}
	delete(r.s.slots, slotOf(m.DoctorID, m.AppointmentAt))
	delete(r.s.meetings, id)
	return nil
}
