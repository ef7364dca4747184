package router_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/poolforyou/poolforyou-api/internal/model"
	"github.com/poolforyou/poolforyou-api/internal/repository"
)

// memStore backs both store ports in memory for HTTP round trips.
type memStore struct {
	mu      sync.Mutex
	users   []model.User
	reports []model.WorkReport
}

func (m *memStore) Create(_ context.Context, name, email string, role model.Role) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	u := model.User{ID: uint64(len(m.users) + 1), Name: name, Email: email, Role: role, IsActive: true, CreatedAt: time.Now().UTC()}
	m.users = append(m.users, u)
	return u, nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memStore) Activate(_ context.Context, id uint64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range m.users {
		if u.ID != id {
			continue
		}
		if u.PasswordHash != nil {
			return repository.ErrAlreadyActivated
		}
		m.users[i].PasswordHash = &hash
		m.users[i].EmailVerified = true
		return nil
	}
	return repository.ErrNotFound
}

type memReports struct{ *memStore }

func (m memReports) Create(_ context.Context, userID uint64, location string, data model.ReportData) (model.WorkReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := model.WorkReport{ID: uint64(len(m.reports) + 1), UserID: userID, Location: location, Data: data,
		Status: model.StatusPending, CreatedAt: time.Now().UTC()}
	m.reports = append(m.reports, r)
	return r, nil
}

func (m memReports) GetByID(_ context.Context, id uint64) (model.WorkReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return model.WorkReport{}, repository.ErrNotFound
}

func (m memReports) ListByUser(ctx context.Context, userID uint64) ([]model.WorkReport, error) {
	return m.List(ctx, model.ReportFilter{UserID: userID})
}

func (m memReports) List(_ context.Context, f model.ReportFilter) ([]model.WorkReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.WorkReport{}
	for _, r := range m.reports {
		if (f.Status == "" || r.Status == f.Status) && (f.UserID == 0 || r.UserID == f.UserID) &&
			(f.CreatedFrom.IsZero() || !r.CreatedAt.Before(f.CreatedFrom)) &&
			(f.CreatedBefore.IsZero() || r.CreatedAt.Before(f.CreatedBefore)) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m memReports) UpdateStatus(_ context.Context, id uint64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.reports {
		if m.reports[i].ID == id {
			m.reports[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m memReports) AppendPhotos(_ context.Context, id uint64, paths []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.reports {
		if m.reports[i].ID == id {
			m.reports[i].Data.Photos = append(m.reports[i].Data.Photos, paths...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// outbox records activation links instead of mailing them.
type outbox struct {
	mu    sync.Mutex
	links map[string]string
}

func (o *outbox) SendActivation(_ context.Context, email, link string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.links[email] = link
	return nil
}

func (o *outbox) link(email string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.links[email]
}
