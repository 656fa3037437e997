//go:build consul

package consul

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"

	consulapi "github.com/hashicorp/consul/api"

	"tower-admin/pkg/model"
)

// Store is a Consul KV backed implementation of the persistence layer.
// Entities are stored as JSON blobs under per-kind prefixes; IDs come
// from CAS-incremented sequence keys.
type Store struct {
	cli *consulapi.Client
}

const (
	instancePrefix = "tower-admin/instances/"
	credTypePrefix = "tower-admin/credential-types/"
	credPrefix     = "tower-admin/credentials/"
	envPrefix      = "tower-admin/environments/"
	userPrefix     = "tower-admin/users/"
	auditPrefix    = "tower-admin/audit/"
	seqPrefix      = "tower-admin/seq/"
)

func NewStore(addr string) *Store {
	cfg := consulapi.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	cli, err := consulapi.NewClient(cfg)
	if err != nil {
		log.Fatalf("consul client init failed: %v", err)
	}
	return &Store{cli: cli}
}

func (s *Store) nextID(kind string) (uint, error) {
	key := seqPrefix + kind
	for {
		kv, _, err := s.cli.KV().Get(key, nil)
		if err != nil {
			return 0, err
		}
		var cur uint64
		var index uint64
		if kv != nil {
			cur, _ = strconv.ParseUint(string(kv.Value), 10, 64)
			index = kv.ModifyIndex
		}
		next := cur + 1
		ok, _, err := s.cli.KV().CAS(&consulapi.KVPair{
			Key:         key,
			Value:       []byte(strconv.FormatUint(next, 10)),
			ModifyIndex: index,
		}, nil)
		if err != nil {
			return 0, err
		}
		if ok {
			return uint(next), nil
		}
	}
}

func (s *Store) put(key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.cli.KV().Put(&consulapi.KVPair{Key: key, Value: b}, nil)
	return err
}

func (s *Store) get(key string, v interface{}) (bool, error) {
	kv, _, err := s.cli.KV().Get(key, nil)
	if err != nil || kv == nil {
		return false, err
	}
	return true, json.Unmarshal(kv.Value, v)
}

func (s *Store) list(prefix string, each func([]byte) error) error {
	pairs, _, err := s.cli.KV().List(prefix, nil)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if err := each(p.Value); err != nil {
			continue
		}
	}
	return nil
}

func (s *Store) delete(key string) error {
	_, err := s.cli.KV().Delete(key, nil)
	return err
}

func idKey(prefix string, id uint) string {
	return prefix + strconv.FormatUint(uint64(id), 10)
}

// --- instances ---

func (s *Store) CreateInstance(in model.Instance) (model.Instance, error) {
	existing, ok, err := s.GetInstanceByName(in.Name)
	if err != nil {
		return model.Instance{}, err
	}
	if ok {
		return model.Instance{}, fmt.Errorf("instance name %q already exists (id=%d)", in.Name, existing.ID)
	}
	id, err := s.nextID("instance")
	if err != nil {
		return model.Instance{}, err
	}
	in.ID = id
	return in, s.put(idKey(instancePrefix, id), in)
}

func (s *Store) UpdateInstance(in model.Instance) (model.Instance, error) {
	return in, s.put(idKey(instancePrefix, in.ID), in)
}

func (s *Store) DeleteInstance(id uint) error {
	return s.delete(idKey(instancePrefix, id))
}

func (s *Store) GetInstance(id uint) (model.Instance, bool, error) {
	var in model.Instance
	ok, err := s.get(idKey(instancePrefix, id), &in)
	return in, ok, err
}

func (s *Store) GetInstanceByName(name string) (model.Instance, bool, error) {
	all, err := s.ListInstances()
	if err != nil {
		return model.Instance{}, false, err
	}
	for _, in := range all {
		if in.Name == name {
			return in, true, nil
		}
	}
	return model.Instance{}, false, nil
}

func (s *Store) ListInstances() ([]model.Instance, error) {
	var out []model.Instance
	err := s.list(instancePrefix, func(b []byte) error {
		var in model.Instance
		if err := json.Unmarshal(b, &in); err != nil {
			return err
		}
		out = append(out, in)
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

// --- credential types ---

func (s *Store) CreateCredentialType(ct model.CredentialType) (model.CredentialType, error) {
	id, err := s.nextID("credtype")
	if err != nil {
		return model.CredentialType{}, err
	}
	ct.ID = id
	return ct, s.put(idKey(credTypePrefix, id), ct)
}

func (s *Store) UpdateCredentialType(ct model.CredentialType) (model.CredentialType, error) {
	return ct, s.put(idKey(credTypePrefix, ct.ID), ct)
}

func (s *Store) DeleteCredentialType(id uint) error {
	return s.delete(idKey(credTypePrefix, id))
}

func (s *Store) GetCredentialType(id uint) (model.CredentialType, bool, error) {
	var ct model.CredentialType
	ok, err := s.get(idKey(credTypePrefix, id), &ct)
	return ct, ok, err
}

func (s *Store) ListCredentialTypes() ([]model.CredentialType, error) {
	var out []model.CredentialType
	err := s.list(credTypePrefix, func(b []byte) error {
		var ct model.CredentialType
		if err := json.Unmarshal(b, &ct); err != nil {
			return err
		}
		out = append(out, ct)
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// --- credentials ---

func (s *Store) CreateCredential(c model.Credential) (model.Credential, error) {
	id, err := s.nextID("credential")
	if err != nil {
		return model.Credential{}, err
	}
	c.ID = id
	return c, s.put(idKey(credPrefix, id), c)
}

func (s *Store) UpdateCredential(c model.Credential) (model.Credential, error) {
	return c, s.put(idKey(credPrefix, c.ID), c)
}

func (s *Store) DeleteCredential(id uint) error {
	return s.delete(idKey(credPrefix, id))
}

func (s *Store) GetCredential(id uint) (model.Credential, bool, error) {
	var c model.Credential
	ok, err := s.get(idKey(credPrefix, id), &c)
	return c, ok, err
}

func (s *Store) ListCredentials() ([]model.Credential, error) {
	var out []model.Credential
	err := s.list(credPrefix, func(b []byte) error {
		var c model.Credential
		if err := json.Unmarshal(b, &c); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// --- execution environments ---

func (s *Store) CreateEnvironment(e model.ExecutionEnvironment) (model.ExecutionEnvironment, error) {
	id, err := s.nextID("environment")
	if err != nil {
		return model.ExecutionEnvironment{}, err
	}
	e.ID = id
	return e, s.put(idKey(envPrefix, id), e)
}

func (s *Store) UpdateEnvironment(e model.ExecutionEnvironment) (model.ExecutionEnvironment, error) {
	return e, s.put(idKey(envPrefix, e.ID), e)
}

func (s *Store) DeleteEnvironment(id uint) error {
	return s.delete(idKey(envPrefix, id))
}

func (s *Store) GetEnvironment(id uint) (model.ExecutionEnvironment, bool, error) {
	var e model.ExecutionEnvironment
	ok, err := s.get(idKey(envPrefix, id), &e)
	return e, ok, err
}

func (s *Store) ListEnvironments() ([]model.ExecutionEnvironment, error) {
	var out []model.ExecutionEnvironment
	err := s.list(envPrefix, func(b []byte) error {
		var e model.ExecutionEnvironment
		if err := json.Unmarshal(b, &e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// --- users ---

func (s *Store) CreateUser(u model.User) (model.User, error) {
	_, ok, err := s.GetUserByName(u.Username)
	if err != nil {
		return model.User{}, err
	}
	if ok {
		return model.User{}, fmt.Errorf("username %q already exists", u.Username)
	}
	id, err := s.nextID("user")
	if err != nil {
		return model.User{}, err
	}
	u.ID = id
	return u, s.put(idKey(userPrefix, id), u)
}

func (s *Store) UpdateUser(u model.User) (model.User, error) {
	return u, s.put(idKey(userPrefix, u.ID), u)
}

func (s *Store) DeleteUser(id uint) error {
	return s.delete(idKey(userPrefix, id))
}

func (s *Store) GetUser(id uint) (model.User, bool, error) {
	var u model.User
	ok, err := s.get(idKey(userPrefix, id), &u)
	return u, ok, err
}

func (s *Store) GetUserByName(username string) (model.User, bool, error) {
	all, err := s.ListUsers()
	if err != nil {
		return model.User{}, false, err
	}
	for _, u := range all {
		if u.Username == username {
			return u, true, nil
		}
	}
	return model.User{}, false, nil
}

func (s *Store) ListUsers() ([]model.User, error) {
	var out []model.User
	err := s.list(userPrefix, func(b []byte) error {
		var u model.User
		if err := json.Unmarshal(b, &u); err != nil {
			return err
		}
		out = append(out, u)
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// --- audit ---

func (s *Store) AppendAudit(e model.AuditEntry) error {
	id, err := s.nextID("audit")
	if err != nil {
		return err
	}
	e.ID = id
	return s.put(idKey(auditPrefix, id), e)
}

func (s *Store) ListAudit(limit int) ([]model.AuditEntry, error) {
	var out []model.AuditEntry
	err := s.list(auditPrefix, func(b []byte) error {
		var e model.AuditEntry
		if err := json.Unmarshal(b, &e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}
