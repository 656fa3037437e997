package store

import (
	"errors"

	"gorm.io/gorm"

	"tower-admin/pkg/model"
)

// GormStore is the MySQL-backed Store implementation.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateInstance(in model.Instance) (model.Instance, error) {
	err := s.db.Create(&in).Error
	return in, err
}

func (s *GormStore) UpdateInstance(in model.Instance) (model.Instance, error) {
	err := s.db.Save(&in).Error
	return in, err
}

func (s *GormStore) DeleteInstance(id uint) error {
	return s.db.Delete(&model.Instance{}, id).Error
}

func (s *GormStore) GetInstance(id uint) (model.Instance, bool, error) {
	var in model.Instance
	err := s.db.First(&in, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Instance{}, false, nil
	}
	return in, err == nil, err
}

func (s *GormStore) GetInstanceByName(name string) (model.Instance, bool, error) {
	var in model.Instance
	err := s.db.Where("name = ?", name).First(&in).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Instance{}, false, nil
	}
	return in, err == nil, err
}

func (s *GormStore) ListInstances() ([]model.Instance, error) {
	var out []model.Instance
	err := s.db.Order("name").Find(&out).Error
	return out, err
}

func (s *GormStore) CreateCredentialType(ct model.CredentialType) (model.CredentialType, error) {
	err := s.db.Create(&ct).Error
	return ct, err
}

func (s *GormStore) UpdateCredentialType(ct model.CredentialType) (model.CredentialType, error) {
	err := s.db.Save(&ct).Error
	return ct, err
}

func (s *GormStore) DeleteCredentialType(id uint) error {
	return s.db.Delete(&model.CredentialType{}, id).Error
}

func (s *GormStore) GetCredentialType(id uint) (model.CredentialType, bool, error) {
	var ct model.CredentialType
	err := s.db.First(&ct, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CredentialType{}, false, nil
	}
	return ct, err == nil, err
}

func (s *GormStore) ListCredentialTypes() ([]model.CredentialType, error) {
	var out []model.CredentialType
	err := s.db.Order("id").Find(&out).Error
	return out, err
}

func (s *GormStore) CreateCredential(c model.Credential) (model.Credential, error) {
	err := s.db.Create(&c).Error
	return c, err
}

func (s *GormStore) UpdateCredential(c model.Credential) (model.Credential, error) {
	err := s.db.Save(&c).Error
	return c, err
}

func (s *GormStore) DeleteCredential(id uint) error {
	return s.db.Delete(&model.Credential{}, id).Error
}

func (s *GormStore) GetCredential(id uint) (model.Credential, bool, error) {
	var c model.Credential
	err := s.db.First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Credential{}, false, nil
	}
	return c, err == nil, err
}

func (s *GormStore) ListCredentials() ([]model.Credential, error) {
	var out []model.Credential
	err := s.db.Order("id").Find(&out).Error
	return out, err
}

func (s *GormStore) CreateEnvironment(e model.ExecutionEnvironment) (model.ExecutionEnvironment, error) {
	err := s.db.Create(&e).Error
	return e, err
}

func (s *GormStore) UpdateEnvironment(e model.ExecutionEnvironment) (model.ExecutionEnvironment, error) {
	err := s.db.Save(&e).Error
	return e, err
}

func (s *GormStore) DeleteEnvironment(id uint) error {
	return s.db.Delete(&model.ExecutionEnvironment{}, id).Error
}

func (s *GormStore) GetEnvironment(id uint) (model.ExecutionEnvironment, bool, error) {
	var e model.ExecutionEnvironment
	err := s.db.First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ExecutionEnvironment{}, false, nil
	}
	return e, err == nil, err
}

func (s *GormStore) ListEnvironments() ([]model.ExecutionEnvironment, error) {
	var out []model.ExecutionEnvironment
	err := s.db.Order("id").Find(&out).Error
	return out, err
}

func (s *GormStore) CreateUser(u model.User) (model.User, error) {
	err := s.db.Create(&u).Error
	return u, err
}

func (s *GormStore) UpdateUser(u model.User) (model.User, error) {
	err := s.db.Save(&u).Error
	return u, err
}

func (s *GormStore) DeleteUser(id uint) error {
	return s.db.Delete(&model.User{}, id).Error
}

func (s *GormStore) GetUser(id uint) (model.User, bool, error) {
	var u model.User
	err := s.db.First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, false, nil
	}
	return u, err == nil, err
}

func (s *GormStore) GetUserByName(username string) (model.User, bool, error) {
	var u model.User
	err := s.db.Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, false, nil
	}
	return u, err == nil, err
}

func (s *GormStore) ListUsers() ([]model.User, error) {
	var out []model.User
	err := s.db.Order("id").Find(&out).Error
	return out, err
}

func (s *GormStore) AppendAudit(e model.AuditEntry) error {
	return s.db.Create(&e).Error
}

func (s *GormStore) ListAudit(limit int) ([]model.AuditEntry, error) {
	var out []model.AuditEntry
	q := s.db.Order("timestamp desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
