package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	emailAdapter "fieldops/internal/adapters/email"
	"fieldops/internal/adapters/storage"
	technicianStore "fieldops/internal/adapters/storage/technician"
	"fieldops/internal/domain/account"
	"fieldops/internal/domain/audit"
	"fieldops/internal/domain/outbox"
	"fieldops/internal/domain/team"
	"fieldops/internal/domain/technician"
)

// --- Mock technician store ---

type mockTechnicianStore struct {
	technicians map[string]technician.Technician
	replaceErr  error
}

func newMockTechnicianStore(ts ...technician.Technician) *mockTechnicianStore {
	m := &mockTechnicianStore{technicians: make(map[string]technician.Technician)}
	for _, t := range ts {
		m.technicians[t.ID] = t
	}
	return m
}

func (m *mockTechnicianStore) GetByID(_ context.Context, id string) (technician.Technician, error) {
	t, ok := m.technicians[id]
	if !ok {
		return technician.Technician{}, fmt.Errorf("technician %s: %w", id, storage.ErrNotFound)
	}
	t.Skills = slices.Clone(t.Skills)
	return t, nil
}

func (m *mockTechnicianStore) Save(_ context.Context, t technician.Technician) error {
	m.technicians[t.ID] = t
	return nil
}

func (m *mockTechnicianStore) ReplaceSkills(_ context.Context, id string, skills []string) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	t, ok := m.technicians[id]
	if !ok {
		return storage.ErrNotFound
	}
	t.Skills = slices.Clone(skills)
	m.technicians[id] = t
	return nil
}

func (m *mockTechnicianStore) List(_ context.Context, f technicianStore.ListFilter) ([]technician.Technician, error) {
	var out []technician.Technician
	for _, t := range m.technicians {
		if f.TeamID != "" && t.TeamID != f.TeamID {
			continue
		}
		if f.ActiveOnly && !t.Active {
			continue
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b technician.Technician) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return out, nil
}

func (m *mockTechnicianStore) Delete(_ context.Context, id string) error {
	delete(m.technicians, id)
	return nil
}

// --- Mock team store ---

type mockTeamStore struct {
	teams map[string]team.Team
}

func newMockTeamStore(ts ...team.Team) *mockTeamStore {
	m := &mockTeamStore{teams: make(map[string]team.Team)}
	for _, t := range ts {
		m.teams[t.ID] = t
	}
	return m
}

func (m *mockTeamStore) GetByID(_ context.Context, id string) (team.Team, error) {
	t, ok := m.teams[id]
	if !ok {
		return team.Team{}, fmt.Errorf("team %s: %w", id, storage.ErrNotFound)
	}
	t.Expertise = slices.Clone(t.Expertise)
	return t, nil
}

func (m *mockTeamStore) Save(_ context.Context, t team.Team) error {
	m.teams[t.ID] = t
	return nil
}

func (m *mockTeamStore) ReplaceExpertise(_ context.Context, id string, expertise []string) error {
	t, ok := m.teams[id]
	if !ok {
		return storage.ErrNotFound
	}
	t.Expertise = slices.Clone(expertise)
	m.teams[id] = t
	return nil
}

func (m *mockTeamStore) List(_ context.Context) ([]team.Team, error) {
	var out []team.Team
	for _, t := range m.teams {
		out = append(out, t)
	}
	return out, nil
}

// --- Mock audit store ---

type mockAuditStore struct {
	events []audit.Event
}

func (m *mockAuditStore) Save(_ context.Context, e audit.Event) error {
	m.events = append(m.events, e)
	return nil
}

// --- Mock account store ---

type mockAccountStore struct {
	accounts map[string]account.Account
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]account.Account)}
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, storage.ErrNotFound
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return account.Account{}, storage.ErrNotFound
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

// --- Recording email sender ---

type recordingSender struct {
	mu      sync.Mutex
	sent    []emailAdapter.SendRequest
	batches int
	fail    bool
}

func (s *recordingSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return emailAdapter.SendResult{}, errors.New("provider down")
	}
	s.sent = append(s.sent, req)
	return emailAdapter.SendResult{MessageID: "m", SentAt: time.Now()}, nil
}

func (s *recordingSender) SendBatch(_ context.Context, reqs []emailAdapter.SendRequest) ([]emailAdapter.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("provider down")
	}
	s.batches++
	results := make([]emailAdapter.SendResult, len(reqs))
	s.sent = append(s.sent, reqs...)
	return results, nil
}

// --- Mock outbox store ---

type mockOutboxStore struct {
	mu      sync.Mutex
	entries map[string]outbox.Entry
	order   []string
	saveErr error // returned by Save when set
}

func newMockOutboxStore() *mockOutboxStore {
	return &mockOutboxStore{entries: map[string]outbox.Entry{}}
}

func (m *mockOutboxStore) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return outbox.Entry{}, storage.ErrNotFound
	}
	return e, nil
}

func (m *mockOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.entries[e.ID]; !ok {
		m.order = append(m.order, e.ID)
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []outbox.Entry
	for _, id := range m.order {
		e := m.entries[id]
		if (e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockOutboxStore) all() []outbox.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]outbox.Entry, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.entries[id])
	}
	return out
}

// at returns a pointer to an op index.
func at(i int) *int { return &i }

// fixedNow returns a clock stuck at t.
func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// sequentialIDs returns an ID generator yielding prefix-1, prefix-2, ...
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
