package testutil

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"bucketlist/internal/models"
	"bucketlist/internal/repository"
)

// PutCall records one object storage upload.
type PutCall struct {
	Key         string
	ContentType string
	Size        int
}

// ObjectStoreStub is an in-memory object storage implementation for tests.
type ObjectStoreStub struct {
	mu    sync.Mutex
	Calls []PutCall
	// Err, when set, is returned by every Put.
	Err error
}

// NewObjectStoreStub creates an object storage stub.
func NewObjectStoreStub() *ObjectStoreStub {
	return &ObjectStoreStub{}
}

// Put records the upload, or fails with the configured error. The body is
// drained so callers see the same reader state a real upload would leave.
func (s *ObjectStoreStub) Put(_ context.Context, key, contentType string, body io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.Calls = append(s.Calls, PutCall{Key: key, ContentType: contentType, Size: len(b)})
	return nil
}

// UserRepoStub is an in-memory user repository enforcing the same uniqueness
// rules as the real one: email, session token and update token.
type UserRepoStub struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	nextID uint
	// UpdateErr, when set, is returned by every Update.
	UpdateErr error
}

// NewUserRepoStub creates an in-memory user repository stub.
func NewUserRepoStub() *UserRepoStub {
	return &UserRepoStub{users: make(map[uint]*models.User), nextID: 1}
}

func (s *UserRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	cp := *u
	return &cp, nil
}

func (s *UserRepoStub) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *UserRepoStub) GetBySessionToken(_ context.Context, token string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.SessionToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *UserRepoStub) GetByUpdateToken(_ context.Context, token string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.UpdateToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *UserRepoStub) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email ||
			(user.SessionToken != "" && u.SessionToken == user.SessionToken) ||
			(user.UpdateToken != "" && u.UpdateToken == user.UpdateToken) {
			return repository.ErrDuplicateKey
		}
	}
	if user.ID == 0 {
		user.ID = s.nextID
		s.nextID++
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *UserRepoStub) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	if _, ok := s.users[user.ID]; !ok {
		return models.NewNotFoundError("User", user.ID)
	}
	for id, u := range s.users {
		if id == user.ID {
			continue
		}
		if u.Email == user.Email ||
			(user.SessionToken != "" && u.SessionToken == user.SessionToken) ||
			(user.UpdateToken != "" && u.UpdateToken == user.UpdateToken) {
			return repository.ErrDuplicateKey
		}
	}
	user.UpdatedAt = time.Now().UTC()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *UserRepoStub) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return models.NewNotFoundError("User", id)
	}
	delete(s.users, id)
	return nil
}

// PhotoRepoStub is an in-memory photo repository enforcing salt uniqueness.
type PhotoRepoStub struct {
	mu     sync.Mutex
	photos map[uint]*models.Photo
	nextID uint
	// CreateErr, when set, is returned by every Create.
	CreateErr error
	// DuplicateSalts marks salts that collide on first insert.
	DuplicateSalts map[string]bool
}

// NewPhotoRepoStub creates an in-memory photo repository stub.
func NewPhotoRepoStub() *PhotoRepoStub {
	return &PhotoRepoStub{photos: make(map[uint]*models.Photo), nextID: 1}
}

func (s *PhotoRepoStub) Create(_ context.Context, photo *models.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if s.DuplicateSalts[photo.Salt] {
		delete(s.DuplicateSalts, photo.Salt)
		return repository.ErrDuplicateKey
	}
	for _, p := range s.photos {
		if p.Salt == photo.Salt {
			return repository.ErrDuplicateKey
		}
	}
	if photo.ID == 0 {
		photo.ID = s.nextID
		s.nextID++
	}
	photo.CreatedAt = time.Now().UTC()
	cp := *photo
	s.photos[photo.ID] = &cp
	return nil
}

func (s *PhotoRepoStub) GetByID(_ context.Context, id uint) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.photos[id]
	if !ok {
		return nil, models.NewNotFoundError("Photo", id)
	}
	cp := *p
	return &cp, nil
}

func (s *PhotoRepoStub) GetBySalt(_ context.Context, salt string) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.photos {
		if p.Salt == salt {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *PhotoRepoStub) GetByItemID(_ context.Context, itemID uint) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.photos {
		if p.ItemID != nil && *p.ItemID == itemID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *PhotoRepoStub) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.photos[id]; !ok {
		return models.NewNotFoundError("Photo", id)
	}
	delete(s.photos, id)
	return nil
}

// Count returns the number of stored photos.
func (s *PhotoRepoStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.photos)
}

// ErrStorageDown is a reusable storage failure for tests.
var ErrStorageDown = errors.New("storage down")
