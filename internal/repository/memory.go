package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-account-service/internal/model"
)

// MemoryStore keeps all entities in process memory. It backs the service and
// router tests and mirrors the PostgreSQL constraints: case-insensitive unique
// usernames and role names, cascading membership removal.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
}

type memoryState struct {
	accounts       map[string]model.Account
	roles          map[string]model.Role
	memberships    map[string]map[string]struct{}
	positions      map[int64]model.Position
	nextPositionID int64
	audit          []model.AuditEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memoryState{
		accounts:    map[string]model.Account{},
		roles:       map[string]model.Role{},
		memberships: map[string]map[string]struct{}{},
		positions:   map[int64]model.Position{},
	}}
}

func (s *MemoryStore) Accounts() IdentityStore { return &memoryAccounts{store: s} }

func (s *MemoryStore) Roles() RoleStore { return &memoryRoles{store: s} }

func (s *MemoryStore) Positions() PositionStore { return &memoryPositions{store: s} }

func (s *MemoryStore) Audit() AuditStore { return &memoryAudit{store: s} }

func (s *MemoryStore) do(fn func(st *memoryState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func (st *memoryState) clone() *memoryState {
	out := &memoryState{
		accounts:       make(map[string]model.Account, len(st.accounts)),
		roles:          make(map[string]model.Role, len(st.roles)),
		memberships:    make(map[string]map[string]struct{}, len(st.memberships)),
		positions:      make(map[int64]model.Position, len(st.positions)),
		nextPositionID: st.nextPositionID,
		audit:          append([]model.AuditEntry(nil), st.audit...),
	}
	for k, v := range st.accounts {
		out.accounts[k] = v
	}
	for k, v := range st.roles {
		out.roles[k] = v
	}
	for k, set := range st.memberships {
		copied := make(map[string]struct{}, len(set))
		for roleID := range set {
			copied[roleID] = struct{}{}
		}
		out.memberships[k] = copied
	}
	for k, v := range st.positions {
		out.positions[k] = v
	}
	return out
}

func (st *memoryState) accountByUsername(username string) (model.Account, bool) {
	key := strings.ToLower(strings.TrimSpace(username))
	for _, a := range st.accounts {
		if strings.ToLower(a.Username) == key {
			return a, true
		}
	}
	return model.Account{}, false
}

func (st *memoryState) roleByName(name string) (model.Role, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, r := range st.roles {
		if strings.ToLower(r.Name) == key {
			return r, true
		}
	}
	return model.Role{}, false
}

// --- accounts ---

type memoryAccounts struct {
	store *MemoryStore
	tx    *memoryState
}

func (m *memoryAccounts) do(fn func(st *memoryState) error) error {
	if m.tx != nil {
		return fn(m.tx)
	}
	return m.store.do(fn)
}

func (m *memoryAccounts) FindByUsername(_ context.Context, username string) (model.Account, error) {
	var out model.Account
	err := m.do(func(st *memoryState) error {
		a, ok := st.accountByUsername(username)
		if !ok {
			return model.ErrUserNotFound
		}
		out = a
		return nil
	})
	return out, err
}

func (m *memoryAccounts) FindByID(_ context.Context, id string) (model.Account, error) {
	var out model.Account
	err := m.do(func(st *memoryState) error {
		a, ok := st.accounts[id]
		if !ok {
			return model.ErrUserNotFound
		}
		out = a
		return nil
	})
	return out, err
}

func (m *memoryAccounts) List(_ context.Context) ([]model.Account, error) {
	out := make([]model.Account, 0)
	err := m.do(func(st *memoryState) error {
		for _, a := range st.accounts {
			out = append(out, a)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Username) < strings.ToLower(out[j].Username)
	})
	return out, err
}

func (m *memoryAccounts) Create(_ context.Context, a model.Account) error {
	return m.do(func(st *memoryState) error {
		if _, exists := st.accountByUsername(a.Username); exists {
			return model.ErrUserAlreadyExists
		}
		if _, exists := st.accounts[a.ID]; exists {
			return model.ErrUserAlreadyExists
		}
		st.accounts[a.ID] = a
		return nil
	})
}

func (m *memoryAccounts) Update(_ context.Context, a model.Account) error {
	return m.do(func(st *memoryState) error {
		if _, exists := st.accounts[a.ID]; !exists {
			return model.ErrUserNotFound
		}
		if other, exists := st.accountByUsername(a.Username); exists && other.ID != a.ID {
			return model.ErrUserAlreadyExists
		}
		st.accounts[a.ID] = a
		return nil
	})
}

func (m *memoryAccounts) Delete(_ context.Context, id string) error {
	return m.do(func(st *memoryState) error {
		if _, exists := st.accounts[id]; !exists {
			return model.ErrUserNotFound
		}
		delete(st.accounts, id)
		delete(st.memberships, id)
		return nil
	})
}

func (m *memoryAccounts) ListRoles(_ context.Context, accountID string) ([]string, error) {
	names := make([]string, 0)
	err := m.do(func(st *memoryState) error {
		for roleID := range st.memberships[accountID] {
			if role, ok := st.roles[roleID]; ok {
				names = append(names, role.Name)
			}
		}
		return nil
	})
	sort.Strings(names)
	return names, err
}

func (m *memoryAccounts) AddRole(_ context.Context, accountID string, roleName string) error {
	return m.do(func(st *memoryState) error {
		role, ok := st.roleByName(roleName)
		if !ok {
			return model.ErrRoleNotFound
		}
		if _, exists := st.accounts[accountID]; !exists {
			return model.ErrUserNotFound
		}
		if st.memberships[accountID] == nil {
			st.memberships[accountID] = map[string]struct{}{}
		}
		st.memberships[accountID][role.ID] = struct{}{}
		return nil
	})
}

func (m *memoryAccounts) RemoveRole(_ context.Context, accountID string, roleName string) error {
	return m.do(func(st *memoryState) error {
		role, ok := st.roleByName(roleName)
		if !ok {
			return model.ErrRoleNotFound
		}
		delete(st.memberships[accountID], role.ID)
		return nil
	})
}

func (m *memoryAccounts) WithinTx(_ context.Context, fn func(IdentityStore) error) error {
	if m.tx != nil {
		return fn(m)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	work := m.store.state.clone()
	if err := fn(&memoryAccounts{store: m.store, tx: work}); err != nil {
		return err
	}
	m.store.state = work
	return nil
}

// --- roles ---

type memoryRoles struct {
	store *MemoryStore
}

func (m *memoryRoles) List(_ context.Context) ([]model.Role, error) {
	out := make([]model.Role, 0)
	err := m.store.do(func(st *memoryState) error {
		for _, r := range st.roles {
			out = append(out, r)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (m *memoryRoles) FindByName(_ context.Context, name string) (model.Role, error) {
	var out model.Role
	err := m.store.do(func(st *memoryState) error {
		r, ok := st.roleByName(name)
		if !ok {
			return model.ErrRoleNotFound
		}
		out = r
		return nil
	})
	return out, err
}

func (m *memoryRoles) Create(_ context.Context, role model.Role) error {
	return m.store.do(func(st *memoryState) error {
		if _, exists := st.roleByName(role.Name); exists {
			return model.ErrRoleAlreadyExists
		}
		st.roles[role.ID] = role
		return nil
	})
}

func (m *memoryRoles) Delete(_ context.Context, id string) error {
	return m.store.do(func(st *memoryState) error {
		if _, exists := st.roles[id]; !exists {
			return model.ErrRoleNotFound
		}
		delete(st.roles, id)
		for _, set := range st.memberships {
			delete(set, id)
		}
		return nil
	})
}

// --- positions ---

type memoryPositions struct {
	store *MemoryStore
}

func (m *memoryPositions) List(_ context.Context) ([]model.Position, error) {
	out := make([]model.Position, 0)
	err := m.store.do(func(st *memoryState) error {
		for _, p := range st.positions {
			out = append(out, p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (m *memoryPositions) FindByID(_ context.Context, id int64) (model.Position, error) {
	var out model.Position
	err := m.store.do(func(st *memoryState) error {
		p, ok := st.positions[id]
		if !ok {
			return model.ErrPositionNotFound
		}
		out = p
		return nil
	})
	return out, err
}

func (m *memoryPositions) Create(_ context.Context, p model.Position) (model.Position, error) {
	err := m.store.do(func(st *memoryState) error {
		st.nextPositionID++
		p.ID = st.nextPositionID
		st.positions[p.ID] = p
		return nil
	})
	return p, err
}

func (m *memoryPositions) Update(_ context.Context, p model.Position) error {
	return m.store.do(func(st *memoryState) error {
		if _, ok := st.positions[p.ID]; !ok {
			return model.ErrPositionNotFound
		}
		st.positions[p.ID] = p
		return nil
	})
}

func (m *memoryPositions) Delete(_ context.Context, id int64) error {
	return m.store.do(func(st *memoryState) error {
		if _, ok := st.positions[id]; !ok {
			return model.ErrPositionNotFound
		}
		delete(st.positions, id)
		return nil
	})
}

// --- audit ---

type memoryAudit struct {
	store *MemoryStore
}

func (m *memoryAudit) Log(_ context.Context, entry model.AuditEntry) error {
	return m.store.do(func(st *memoryState) error {
		st.audit = append(st.audit, entry)
		return nil
	})
}

func (m *memoryAudit) Query(_ context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	normalizePage(&query)

	matched := make([]model.AuditEntry, 0)
	_ = m.store.do(func(st *memoryState) error {
		for i := len(st.audit) - 1; i >= 0; i-- {
			if auditMatches(st.audit[i], query) {
				matched = append(matched, st.audit[i])
			}
		}
		return nil
	})

	meta := pageMeta(query, len(matched))
	start := (query.Page - 1) * query.Limit
	if start >= len(matched) {
		return []model.AuditEntry{}, meta, nil
	}
	end := start + query.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], meta, nil
}

func auditMatches(e model.AuditEntry, q model.AuditQuery) bool {
	if q.Action != "" && !strings.EqualFold(e.Action, q.Action) {
		return false
	}
	if q.Username != "" && !strings.EqualFold(e.Actor.Username, q.Username) {
		return false
	}
	if q.Status != "" && !strings.EqualFold(e.Status, q.Status) {
		return false
	}
	if q.Resource != "" && !strings.Contains(strings.ToLower(e.Resource), strings.ToLower(q.Resource)) {
		return false
	}
	occurred, err := time.Parse(time.RFC3339Nano, e.OccurredAt)
	if err != nil {
		return q.From == "" && q.To == ""
	}
	if q.From != "" {
		if from, err := time.Parse(time.RFC3339, q.From); err == nil && occurred.Before(from) {
			return false
		}
	}
	if q.To != "" {
		if to, err := time.Parse(time.RFC3339, q.To); err == nil && occurred.After(to) {
			return false
		}
	}
	return true
}
