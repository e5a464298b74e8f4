package booking

import (
	"context"
	"sync"
	"time"
)

// mockStore is an in-memory Store for unit tests.
type mockStore struct {
	mu sync.Mutex

	jobs        map[string]*Job
	jobOrder    []string
	assignments []*Assignment
	profiles    map[string]*TranslatorProfile
	customers   map[string]*Customer
	languages   map[string]string

	activeTranslators []string
	potentialJobs     map[string][]string // translator id -> job ids
	townMatches       map[string]bool     // customerID+"|"+translatorID

	createJobErr error
	jobByIDErr   error
	updateJobErr error
	listErr      error
}

func newMockStore() *mockStore {
	return &mockStore{
		jobs:          make(map[string]*Job),
		profiles:      make(map[string]*TranslatorProfile),
		customers:     make(map[string]*Customer),
		languages:     make(map[string]string),
		potentialJobs: make(map[string][]string),
		townMatches:   make(map[string]bool),
	}
}

func (m *mockStore) CreateJob(_ context.Context, job *Job) error {
	if m.createJobErr != nil {
		return m.createJobErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.jobs[job.ID] = &cp
	m.jobOrder = append(m.jobOrder, job.ID)
	return nil
}

func (m *mockStore) JobByID(_ context.Context, jobID string) (*Job, error) {
	if m.jobByIDErr != nil {
		return nil, m.jobByIDErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *mockStore) UpdateJob(_ context.Context, job *Job) error {
	if m.updateJobErr != nil {
		return m.updateJobErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return ErrJobNotFound
	}
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *mockStore) LanguageName(_ context.Context, languageID string) (string, error) {
	if name, ok := m.languages[languageID]; ok {
		return name, nil
	}
	return "", ErrJobNotFound
}

func (m *mockStore) CustomerByID(_ context.Context, customerID string) (*Customer, error) {
	if c, ok := m.customers[customerID]; ok {
		return c, nil
	}
	return nil, ErrCustomerNotFound
}

func (m *mockStore) CreateAssignment(_ context.Context, a *Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.assignments = append(m.assignments, &cp)
	return nil
}

func (m *mockStore) ActiveAssignment(_ context.Context, jobID string) (*Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assignments {
		if a.JobID == jobID && a.Active() {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrAssignmentNotFound
}

func (m *mockStore) UpdateAssignment(_ context.Context, a *Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.assignments {
		if existing.ID == a.ID {
			cp := *a
			m.assignments[i] = &cp
			return nil
		}
	}
	return ErrAssignmentNotFound
}

func (m *mockStore) CancelAssignments(_ context.Context, jobID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assignments {
		if a.JobID == jobID && a.CancelAt == nil {
			t := at
			a.CancelAt = &t
		}
	}
	return nil
}

func (m *mockStore) TranslatorProfile(_ context.Context, userID string) (*TranslatorProfile, error) {
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	return nil, ErrTranslatorNotFound
}

func (m *mockStore) ListActiveTranslatorIDs(_ context.Context, excludeUserID string) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var ids []string
	for _, id := range m.activeTranslators {
		if id != excludeUserID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockStore) PotentialJobIDs(_ context.Context, q PotentialJobsQuery) ([]string, error) {
	return m.potentialJobs[q.TranslatorID], nil
}

func (m *mockStore) TownsMatch(_ context.Context, customerID, translatorID string) (bool, error) {
	return m.townMatches[customerID+"|"+translatorID], nil
}

func (m *mockStore) InTx(_ context.Context, fn func(Store) error) error {
	return fn(m)
}

// assignmentsFor returns copies of all assignments on a job, in creation order.
func (m *mockStore) assignmentsFor(jobID string) []Assignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Assignment
	for _, a := range m.assignments {
		if a.JobID == jobID {
			out = append(out, *a)
		}
	}
	return out
}

// mockPublisher records lifecycle events.
type mockPublisher struct {
	created      []string
	reopened     []string
	sessionEnded []SessionEndedEvent
	err          error
}

func (p *mockPublisher) PublishJobCreated(_ context.Context, jobID string) error {
	if p.err != nil {
		return p.err
	}
	p.created = append(p.created, jobID)
	return nil
}

func (p *mockPublisher) PublishJobReopened(_ context.Context, jobID string) error {
	if p.err != nil {
		return p.err
	}
	p.reopened = append(p.reopened, jobID)
	return nil
}

func (p *mockPublisher) PublishSessionEnded(_ context.Context, ev SessionEndedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.sessionEnded = append(p.sessionEnded, ev)
	return nil
}

// mockNotifier records Send invocations.
type sendCall struct {
	UserIDs []string
	JobID   string
	Payload NotificationPayload
	Message string
	Delay   bool
}

type mockNotifier struct {
	mu    sync.Mutex
	calls []sendCall
	err   error
}

func (n *mockNotifier) Send(_ context.Context, userIDs []string, jobID string, payload NotificationPayload, message string, delay bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, sendCall{
		UserIDs: append([]string(nil), userIDs...),
		JobID:   jobID,
		Payload: payload,
		Message: message,
		Delay:   delay,
	})
	return n.err
}

// mockPolicy is a pluggable AssignmentPolicy.
type mockPolicy struct {
	assignedFn  func(translatorID, jobID string) (bool, error)
	canAcceptFn func(translatorID, jobID string) (bool, error)
}

func (p *mockPolicy) AssignedToParticular(_ context.Context, translatorID, jobID string) (bool, error) {
	if p.assignedFn == nil {
		return true, nil
	}
	return p.assignedFn(translatorID, jobID)
}

func (p *mockPolicy) CanAcceptParticular(_ context.Context, translatorID, jobID string) (bool, error) {
	if p.canAcceptFn == nil {
		return true, nil
	}
	return p.canAcceptFn(translatorID, jobID)
}

// allowAllPolicy approves every translator for every job.
func allowAllPolicy() *mockPolicy { return &mockPolicy{} }
