package service

import (
	"context"
	"io"
	"time"

	"github.com/poolforyou/poolforyou-api/internal/model"
)

// UserStore persists users.  Implementations return repository.ErrNotFound,
// repository.ErrEmailExists and repository.ErrAlreadyActivated.
type UserStore interface {
	Create(ctx context.Context, name, email string, role model.Role) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	// Activate sets the password hash and marks the email verified in one
	// statement, only if no password was set before.
	Activate(ctx context.Context, id uint64, passwordHash string) error
}

// ReportStore persists work reports.  Implementations return
// repository.ErrNotFound and, for transient lock conflicts on the photo
// append, repository.ErrConflict.
type ReportStore interface {
	Create(ctx context.Context, userID uint64, location string, data model.ReportData) (model.WorkReport, error)
	GetByID(ctx context.Context, id uint64) (model.WorkReport, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.WorkReport, error)
	List(ctx context.Context, f model.ReportFilter) ([]model.WorkReport, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
	// AppendPhotos atomically appends paths to data.photos.
	AppendPhotos(ctx context.Context, id uint64, paths []string) error
}

// Notifier delivers an activation link.  It may send mail, enqueue it or
// just log it; callers cannot tell the difference.
type Notifier interface {
	SendActivation(ctx context.Context, email, link string) error
}

// FileStore saves uploaded bytes and returns a path that can be served later.
type FileStore interface {
	Save(ctx context.Context, namespace, name string, r io.Reader) (string, error)
}

// RevocationList records revoked session token ids until their expiry.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, exp time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
