package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/acadverify/acadverify-api/internal/identity"
	"github.com/acadverify/acadverify-api/internal/models"
)

func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.PlatformAdminProfile{},
		&models.UniversityAdminProfile{},
		&models.StudentProfile{},
		&models.EmployerProfile{},
		&models.University{},
		&models.AcademicProgram{},
		&models.GraduateRecord{},
		&models.AuditLogEntry{},
	))
	return db
}

func seedUniversity(t *testing.T, db *gorm.DB, name, shortName string) models.University {
	t.Helper()

	university := models.University{
		ID:        uuid.NewString(),
		Name:      name,
		ShortName: shortName,
		Email:     strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@edu.example",
		Country:   "Kenya",
		City:      "Nairobi",
		IsActive:  true,
	}
	require.NoError(t, db.Create(&university).Error)
	return university
}

func seedProgram(t *testing.T, db *gorm.DB, universityID, name string) models.AcademicProgram {
	t.Helper()

	program := models.AcademicProgram{
		ID:           uuid.NewString(),
		UniversityID: universityID,
		Program:      name,
		Faculty:      "Engineering",
		IsActive:     true,
	}
	require.NoError(t, db.Create(&program).Error)
	return program
}

// fakeProvider is an in-memory identity.Provider double.
type fakeProvider struct {
	mu        sync.Mutex
	users     map[string]identity.User
	deleted   []string
	createErr error
	resetErr  error
	nextID    string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{users: map[string]identity.User{}}
}

func (p *fakeProvider) CreateUser(_ context.Context, req identity.CreateUserRequest) (identity.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.createErr != nil {
		return identity.User{}, p.createErr
	}
	for _, user := range p.users {
		if user.Email == req.Email {
			return identity.User{}, identity.ErrEmailExists
		}
	}

	id := p.nextID
	if id == "" {
		id = uuid.NewString()
	}
	user := identity.User{ID: id, Email: req.Email}
	p.users[id] = user
	return user, nil
}

func (p *fakeProvider) DeleteUser(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.users[id]; !ok {
		p.deleted = append(p.deleted, id)
		return identity.ErrUserNotFound
	}
	delete(p.users, id)
	p.deleted = append(p.deleted, id)
	return nil
}

func (p *fakeProvider) SignInWithPassword(_ context.Context, email, password string) (identity.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, user := range p.users {
		if user.Email == email && password == "correct-password" {
			return identity.Session{User: user, AccessToken: "provider-token"}, nil
		}
	}
	return identity.Session{}, identity.ErrInvalidCredentials
}

func (p *fakeProvider) SignOut(context.Context, string) error { return nil }

func (p *fakeProvider) ResetPasswordForEmail(context.Context, string, string) error {
	return p.resetErr
}

func (p *fakeProvider) UpdatePassword(context.Context, string, string) error { return nil }

// fakeStore is an in-memory storage.Store double.
type fakeStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	removed    []string
	uploadFail string // keys containing this substring fail to upload
	signedErr  error
	publicBase string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:    map[string][]byte{},
		publicBase: "https://cdn.example/graduate-record",
	}
}

func (s *fakeStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.uploadFail != "" && strings.Contains(key, s.uploadFail) {
		return "", fmt.Errorf("upload rejected")
	}
	s.objects[key] = data
	return s.publicBase + "/" + key, nil
}

func (s *fakeStore) Download(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s missing", key)
	}
	return data, nil
}

func (s *fakeStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removed = append(s.removed, key)
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) PublicURL(key string) string {
	if s.publicBase == "" {
		return ""
	}
	return s.publicBase + "/" + key
}

func (s *fakeStore) SignedURL(key string, ttl time.Duration) (string, error) {
	if s.signedErr != nil {
		return "", s.signedErr
	}
	return s.publicBase + "/" + key + "?signed=1", nil
}

func (s *fakeStore) Bucket() string { return "graduate-record" }
