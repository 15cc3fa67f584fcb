package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"

	appointmentRepo "kinecare/database/repository/appointment"
	userRepo "kinecare/database/repository/user"
	"kinecare/models"
)

// fakeClock pins time for deterministic window checks.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

// fakeNotifier records dispatched events.
type fakeNotifier struct {
	mu     sync.Mutex
	events []models.AppointmentEvent
}

func (n *fakeNotifier) Dispatch(_ context.Context, event models.AppointmentEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *fakeNotifier) types() []models.AppointmentEventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.AppointmentEventType, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

// fakeAppointmentRepo is an in-memory store that mirrors the storage
// contract: a unique constraint on the date of active appointments, and
// conditional updates applied under one lock.
type fakeAppointmentRepo struct {
	mu    sync.Mutex
	docs  map[string]*models.Appointment
	order []string
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{docs: map[string]*models.Appointment{}}
}

func (r *fakeAppointmentRepo) slotHolder(date time.Time, excludeID string) *models.Appointment {
	for _, doc := range r.docs {
		if doc.ID == excludeID {
			continue
		}
		if doc.Active && doc.Date.Equal(date) {
			return doc
		}
	}
	return nil
}

func (r *fakeAppointmentRepo) Insert(_ context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt.Active = appt.Status.HoldsSlot()
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = appt.CreatedAt
	if appt.Active && r.slotHolder(appt.Date, appt.ID) != nil {
		return appointmentRepo.ErrSlotTaken
	}

	copied := *appt
	r.docs[appt.ID] = &copied
	r.order = append(r.order, appt.ID)
	return nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (r *fakeAppointmentRepo) FindActiveByDate(_ context.Context, date time.Time, excludeID string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if doc := r.slotHolder(date, excludeID); doc != nil {
		copied := *doc
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeAppointmentRepo) Find(_ context.Context, f appointmentRepo.Filter) ([]models.Appointment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Appointment
	for _, id := range r.order {
		doc, ok := r.docs[id]
		if !ok {
			continue
		}
		if f.Status != nil && doc.Status != *f.Status {
			continue
		}
		if f.PatientID != "" && (doc.PatientID == nil || *doc.PatientID != f.PatientID) {
			continue
		}
		if f.PractitionerID != "" && (doc.PractitionerID == nil || *doc.PractitionerID != f.PractitionerID) {
			continue
		}
		if f.Unassigned && doc.PractitionerID != nil {
			continue
		}
		if f.From != nil && doc.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && doc.Date.After(*f.To) {
			continue
		}
		out = append(out, *doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, int64(len(out)), nil
}

func (r *fakeAppointmentRepo) BookedSlots(_ context.Context, from, to time.Time) ([]models.BookedSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.BookedSlot
	for _, doc := range r.docs {
		if !doc.Active || doc.Date.Before(from) || doc.Date.After(to) {
			continue
		}
		out = append(out, models.BookedSlot{Date: doc.Date, Status: doc.Status})
	}
	return out, nil
}

func (r *fakeAppointmentRepo) UpdateIf(_ context.Context, id string, expect appointmentRepo.Expect, patch appointmentRepo.Patch) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}

	if len(expect.StatusIn) > 0 {
		matched := false
		for _, st := range expect.StatusIn {
			if doc.Status == st {
				matched = true
				break
			}
		}
		if !matched {
			return nil, appointmentRepo.ErrPreconditionFailed
		}
	}
	if expect.Unassigned && doc.PractitionerID != nil {
		return nil, appointmentRepo.ErrPreconditionFailed
	}

	active := doc.Active
	if patch.Status != nil {
		active = patch.Status.HoldsSlot()
	}
	date := doc.Date
	if patch.Date != nil {
		date = *patch.Date
	}
	if active && r.slotHolder(date, id) != nil {
		return nil, appointmentRepo.ErrSlotTaken
	}

	if patch.Status != nil {
		doc.Status = *patch.Status
	}
	doc.Active = active
	if patch.PaymentStatus != nil {
		doc.PaymentStatus = *patch.PaymentStatus
	}
	if patch.Date != nil {
		doc.Date = *patch.Date
	}
	if patch.PractitionerID != nil {
		doc.PractitionerID = patch.PractitionerID
	}
	if patch.Service != nil {
		doc.Service = *patch.Service
	}
	if patch.Subservice != nil {
		doc.Subservice = *patch.Subservice
	}
	if patch.Notes != nil {
		doc.Notes = *patch.Notes
	}
	if patch.CancellationReason != nil {
		doc.CancellationReason = *patch.CancellationReason
	}
	if patch.AppendHistory != nil {
		doc.ModificationHistory = append(doc.ModificationHistory, *patch.AppendHistory)
	}
	doc.UpdatedAt = time.Now()

	copied := *doc
	return &copied, nil
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[id]; !ok {
		return appointmentRepo.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

// fakeUserRepo serves lookups from a fixed user set.
type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(context.Context, *models.User) error { return nil }

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, userRepo.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByPhone(context.Context, string) (*models.User, error) {
	return nil, userRepo.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, userRepo.ErrNotFound
}

func (r *fakeUserRepo) GetAll(context.Context, models.Role, bool) ([]models.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) Practitioners(context.Context) ([]models.PractitionerProfile, error) {
	return nil, nil
}

func (r *fakeUserRepo) Update(context.Context, *models.User) error { return nil }

func (r *fakeUserRepo) SetRefreshTokenHash(context.Context, string, string) error { return nil }

func (r *fakeUserRepo) Delete(context.Context, string) error { return nil }

// Fixed identities shared by the scheduling tests.
var (
	testPatient = &models.User{ID: "patient-1", Name: "Amina Benali", Phone: "+212600000001", Role: models.RolePatient, IsActive: true}
	testDoctor  = &models.User{ID: "prac-1", Name: "Dr. Youssef Idrissi", Phone: "+212600000002", Role: models.RolePractitioner, IsActive: true}
	testDoctor2 = &models.User{ID: "prac-2", Name: "Dr. Salma Alaoui", Phone: "+212600000003", Role: models.RolePractitioner, IsActive: true}
	testAdmin   = &models.User{ID: "admin-1", Name: "Front Desk", Phone: "+212600000004", Role: models.RoleAdmin, IsActive: true}
)

var (
	patientActor = Actor{Role: models.RolePatient, ID: testPatient.ID}
	doctorActor  = Actor{Role: models.RolePractitioner, ID: testDoctor.ID}
	doctor2Actor = Actor{Role: models.RolePractitioner, ID: testDoctor2.ID}
	adminActor   = Actor{Role: models.RoleAdmin, ID: testAdmin.ID}
)

type testEnv struct {
	svc      *DefaultSchedulingService
	repo     *fakeAppointmentRepo
	notifier *fakeNotifier
	clock    *fakeClock
}

func newTestEnv() *testEnv {
	clock := &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	repo := newFakeAppointmentRepo()
	notifier := &fakeNotifier{}
	svc := &DefaultSchedulingService{
		Repo:     repo,
		Users:    newFakeUserRepo(testPatient, testDoctor, testDoctor2, testAdmin),
		Notifier: notifier,
		Clock:    clock,
	}
	return &testEnv{svc: svc, repo: repo, notifier: notifier, clock: clock}
}

// in returns a timestamp a given duration past the fake clock.
func (e *testEnv) in(d time.Duration) time.Time {
	return e.clock.now.Add(d)
}

func physio() models.ServiceLabel {
	return models.ServiceLabel{Primary: "Physiotherapy", Secondary: "Kinésithérapie"}
}

// book creates a patient appointment at the given offset from now.
func (e *testEnv) book(offset time.Duration) *models.Appointment {
	appt, err := e.svc.Create(context.Background(), CreateRequest{
		Service: physio(),
		Date:    e.in(offset),
	}, patientActor)
	if err != nil {
		panic(err)
	}
	return appt
}

// bookClaimed creates an appointment already assigned to testDoctor.
func (e *testEnv) bookClaimed(offset time.Duration) *models.Appointment {
	appt := e.book(offset)
	claimed, err := e.svc.Claim(context.Background(), appt.ID, doctorActor)
	if err != nil {
		panic(err)
	}
	return claimed
}

// bookConfirmed creates an appointment claimed and confirmed by testDoctor.
func (e *testEnv) bookConfirmed(offset time.Duration) *models.Appointment {
	appt := e.bookClaimed(offset)
	confirmed, err := e.svc.Confirm(context.Background(), appt.ID, doctorActor)
	if err != nil {
		panic(err)
	}
	return confirmed
}
