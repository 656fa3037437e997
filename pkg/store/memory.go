package store

import (
	"fmt"
	"sort"
	"sync"

	"tower-admin/pkg/model"
)

// MemoryStore keeps everything in process memory. Used by tests and the
// -store memory dev mode.
type MemoryStore struct {
	mu           sync.RWMutex
	instances    map[uint]model.Instance
	credTypes    map[uint]model.CredentialType
	credentials  map[uint]model.Credential
	environments map[uint]model.ExecutionEnvironment
	users        map[uint]model.User
	audit        []model.AuditEntry
	nextID       map[string]uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		instances:    map[uint]model.Instance{},
		credTypes:    map[uint]model.CredentialType{},
		credentials:  map[uint]model.Credential{},
		environments: map[uint]model.ExecutionEnvironment{},
		users:        map[uint]model.User{},
		nextID:       map[string]uint{},
	}
}

func (m *MemoryStore) seq(kind string) uint {
	m.nextID[kind]++
	return m.nextID[kind]
}

// --- instances ---

func (m *MemoryStore) CreateInstance(in model.Instance) (model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.instances {
		if existing.Name == in.Name {
			return model.Instance{}, fmt.Errorf("instance name %q already exists", in.Name)
		}
	}
	in.ID = m.seq("instance")
	m.instances[in.ID] = in
	return in, nil
}

func (m *MemoryStore) UpdateInstance(in model.Instance) (model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.instances[in.ID]; !ok {
		return model.Instance{}, fmt.Errorf("instance %d not found", in.ID)
	}
	m.instances[in.ID] = in
	return in, nil
}

func (m *MemoryStore) DeleteInstance(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.instances, id)
	return nil
}

func (m *MemoryStore) GetInstance(id uint) (model.Instance, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	in, ok := m.instances[id]
	return in, ok, nil
}

func (m *MemoryStore) GetInstanceByName(name string) (model.Instance, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, in := range m.instances {
		if in.Name == name {
			return in, true, nil
		}
	}
	return model.Instance{}, false, nil
}

func (m *MemoryStore) ListInstances() ([]model.Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Instance, 0, len(m.instances))
	for _, in := range m.instances {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- credential types ---

func (m *MemoryStore) CreateCredentialType(ct model.CredentialType) (model.CredentialType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ct.ID = m.seq("credtype")
	m.credTypes[ct.ID] = ct
	return ct, nil
}

func (m *MemoryStore) UpdateCredentialType(ct model.CredentialType) (model.CredentialType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.credTypes[ct.ID]; !ok {
		return model.CredentialType{}, fmt.Errorf("credential type %d not found", ct.ID)
	}
	m.credTypes[ct.ID] = ct
	return ct, nil
}

func (m *MemoryStore) DeleteCredentialType(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.credTypes, id)
	return nil
}

func (m *MemoryStore) GetCredentialType(id uint) (model.CredentialType, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ct, ok := m.credTypes[id]
	return ct, ok, nil
}

func (m *MemoryStore) ListCredentialTypes() ([]model.CredentialType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.CredentialType, 0, len(m.credTypes))
	for _, ct := range m.credTypes {
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- credentials ---

func (m *MemoryStore) CreateCredential(c model.Credential) (model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.seq("credential")
	m.credentials[c.ID] = c
	return c, nil
}

func (m *MemoryStore) UpdateCredential(c model.Credential) (model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.credentials[c.ID]; !ok {
		return model.Credential{}, fmt.Errorf("credential %d not found", c.ID)
	}
	m.credentials[c.ID] = c
	return c, nil
}

func (m *MemoryStore) DeleteCredential(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.credentials, id)
	return nil
}

func (m *MemoryStore) GetCredential(id uint) (model.Credential, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.credentials[id]
	return c, ok, nil
}

func (m *MemoryStore) ListCredentials() ([]model.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Credential, 0, len(m.credentials))
	for _, c := range m.credentials {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- execution environments ---

func (m *MemoryStore) CreateEnvironment(e model.ExecutionEnvironment) (model.ExecutionEnvironment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.seq("environment")
	m.environments[e.ID] = e
	return e, nil
}

func (m *MemoryStore) UpdateEnvironment(e model.ExecutionEnvironment) (model.ExecutionEnvironment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.environments[e.ID]; !ok {
		return model.ExecutionEnvironment{}, fmt.Errorf("environment %d not found", e.ID)
	}
	m.environments[e.ID] = e
	return e, nil
}

func (m *MemoryStore) DeleteEnvironment(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.environments, id)
	return nil
}

func (m *MemoryStore) GetEnvironment(id uint) (model.ExecutionEnvironment, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.environments[id]
	return e, ok, nil
}

func (m *MemoryStore) ListEnvironments() ([]model.ExecutionEnvironment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.ExecutionEnvironment, 0, len(m.environments))
	for _, e := range m.environments {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- users ---

func (m *MemoryStore) CreateUser(u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return model.User{}, fmt.Errorf("username %q already exists", u.Username)
		}
	}
	u.ID = m.seq("user")
	m.users[u.ID] = u
	return u, nil
}

func (m *MemoryStore) UpdateUser(u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return model.User{}, fmt.Errorf("user %d not found", u.ID)
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *MemoryStore) DeleteUser(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *MemoryStore) GetUser(id uint) (model.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) GetUserByName(username string) (model.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, true, nil
		}
	}
	return model.User{}, false, nil
}

func (m *MemoryStore) ListUsers() ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- audit ---

func (m *MemoryStore) AppendAudit(e model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.seq("audit")
	m.audit = append(m.audit, e)
	return nil
}

// ListAudit returns entries newest first.
func (m *MemoryStore) ListAudit(limit int) ([]model.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.AuditEntry, 0, len(m.audit))
	for i := len(m.audit) - 1; i >= 0; i-- {
		out = append(out, m.audit[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
