package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/mock"

	"github.com/poolforyou/poolforyou-api/internal/model"
	"github.com/poolforyou/poolforyou-api/internal/repository"
)

// memUsers is an in-memory UserStore with the same sentinel errors as the
// MySQL repository.
type memUsers struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.User
}

func newMemUsers() *memUsers { return &memUsers{rows: map[uint64]model.User{}} }

func (m *memUsers) Create(_ context.Context, name, email string, role model.Role) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	m.nextID++
	u := model.User{ID: m.nextID, Name: name, Email: email, Role: role, IsActive: true, CreatedAt: time.Now().UTC()}
	m.rows[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memUsers) Activate(_ context.Context, id uint64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if u.PasswordHash != nil {
		return repository.ErrAlreadyActivated
	}
	u.PasswordHash = &hash
	u.EmailVerified = true
	m.rows[id] = u
	return nil
}

func (m *memUsers) count(email string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.rows {
		if u.Email == email {
			n++
		}
	}
	return n
}

// put stores u as is, for tests that need a specific state.
func (m *memUsers) put(u model.User) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	m.rows[u.ID] = u
	return u
}

// memReports is an in-memory ReportStore.  AppendPhotos is atomic per call
// under the mutex, mirroring the row lock of the MySQL repository.
type memReports struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.WorkReport

	// conflicts makes the next n AppendPhotos calls fail with ErrConflict.
	conflicts   int
	appendCalls int
	writes      int
}

func newMemReports() *memReports { return &memReports{rows: map[uint64]model.WorkReport{}} }

func (m *memReports) Create(_ context.Context, userID uint64, location string, data model.ReportData) (model.WorkReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.writes++
	r := model.WorkReport{ID: m.nextID, UserID: userID, Location: location, Data: data,
		Status: model.StatusPending, CreatedAt: time.Now().UTC()}
	m.rows[r.ID] = r
	return r, nil
}

func (m *memReports) GetByID(_ context.Context, id uint64) (model.WorkReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return model.WorkReport{}, repository.ErrNotFound
	}
	return r, nil
}

func (m *memReports) ListByUser(ctx context.Context, userID uint64) ([]model.WorkReport, error) {
	return m.List(ctx, model.ReportFilter{UserID: userID})
}

func (m *memReports) List(_ context.Context, f model.ReportFilter) ([]model.WorkReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.WorkReport{}
	for _, r := range m.rows {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.UserID != 0 && r.UserID != f.UserID {
			continue
		}
		if !f.CreatedFrom.IsZero() && r.CreatedAt.Before(f.CreatedFrom) {
			continue
		}
		if !f.CreatedBefore.IsZero() && !r.CreatedAt.Before(f.CreatedBefore) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memReports) UpdateStatus(_ context.Context, id uint64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.writes++
	r.Status = status
	m.rows[id] = r
	return nil
}

func (m *memReports) AppendPhotos(_ context.Context, id uint64, paths []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendCalls++
	if m.conflicts > 0 {
		m.conflicts--
		return fmt.Errorf("append: %w", repository.ErrConflict)
	}
	r, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.writes++
	r.Data.Photos = append(append([]string{}, r.Data.Photos...), paths...)
	m.rows[id] = r
	return nil
}

// put stores r as is, keeping its CreatedAt.
func (m *memReports) put(r model.WorkReport) model.WorkReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	if r.Data.Fields == nil {
		r.Data.Fields = map[string]json.RawMessage{}
	}
	m.rows[r.ID] = r
	return r
}

// memFiles records saved files.
type memFiles struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func newMemFiles() *memFiles { return &memFiles{files: map[string][]byte{}} }

func (m *memFiles) Save(_ context.Context, namespace, name string, r io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	p := "uploads/" + namespace + "/" + name
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.files[p]; dup {
		return "", errors.New("file exists")
	}
	m.files[p] = b
	return p, nil
}

// memRevoked is an in-memory RevocationList.
type memRevoked struct {
	mu  sync.Mutex
	ids map[string]time.Time
}

func newMemRevoked() *memRevoked { return &memRevoked{ids: map[string]time.Time{}} }

func (m *memRevoked) Revoke(_ context.Context, id string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[id] = exp
	return nil
}

func (m *memRevoked) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[id]
	return ok, nil
}

// MockNotifier records activation links.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendActivation(ctx context.Context, email, link string) error {
	args := m.Called(ctx, email, link)
	return args.Error(0)
}

func quietLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}
