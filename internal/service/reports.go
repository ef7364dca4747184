package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/poolforyou/poolforyou-api/internal/form"
	"github.com/poolforyou/poolforyou-api/internal/model"
	"github.com/poolforyou/poolforyou-api/internal/repository"
)

// DefaultAppendAttempts bounds the retries of a photo append that keeps
// hitting lock conflicts.
const DefaultAppendAttempts = 3

// Upload is one file received for a report.
type Upload struct {
	Filename string
	Body     io.Reader
}

// ReportService covers the work report lifecycle.
type ReportService struct {
	store          ReportStore
	files          FileStore
	forms          *form.Registry
	appendAttempts int
}

// NewReportService wires the report lifecycle.
func NewReportService(store ReportStore, files FileStore, forms *form.Registry) *ReportService {
	return &ReportService{store: store, files: files, forms: forms, appendAttempts: DefaultAppendAttempts}
}

// CreateReport stores a new pending report owned by ownerID.
func (s *ReportService) CreateReport(ctx context.Context, ownerID uint64, location string, data model.ReportData) (model.WorkReport, error) {
	problems := s.forms.Active().Validate(data)
	if strings.TrimSpace(location) == "" {
		if problems == nil {
			problems = form.Problems{}
		}
		problems["location"] = "required"
	}
	if len(problems) > 0 {
		return model.WorkReport{}, &ValidationError{Fields: problems}
	}
	if data.Fields == nil {
		data.Fields = map[string]json.RawMessage{}
	}

	r, err := s.store.Create(ctx, ownerID, strings.TrimSpace(location), data)
	if err != nil {
		return model.WorkReport{}, storageFailure("create report", err)
	}
	return r, nil
}

// ListOwnReports returns the reports filed by ownerID, newest first.
func (s *ReportService) ListOwnReports(ctx context.Context, ownerID uint64) ([]model.WorkReport, error) {
	rs, err := s.store.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, storageFailure("list reports", err)
	}
	return rs, nil
}

// ListAllReports returns every report matching f, newest first.
func (s *ReportService) ListAllReports(ctx context.Context, f model.ReportFilter) ([]model.WorkReport, error) {
	rs, err := s.store.List(ctx, f)
	if err != nil {
		return nil, storageFailure("list reports", err)
	}
	return rs, nil
}

// UpdateStatus overwrites the status of a report.  Any non-blank label is
// accepted; there is no transition table.
func (s *ReportService) UpdateStatus(ctx context.Context, id uint64, status string) (model.WorkReport, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return model.WorkReport{}, invalid("status", "required")
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.WorkReport{}, ErrReportNotFound
		}
		return model.WorkReport{}, storageFailure("update status", err)
	}
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.WorkReport{}, ErrReportNotFound
		}
		return model.WorkReport{}, storageFailure("load report", err)
	}
	return r, nil
}

// AttachPhotos stores files under the report and appends their paths to
// data.photos.  Field staff may only attach to their own reports.
func (s *ReportService) AttachPhotos(ctx context.Context, caller model.User, id uint64, files []Upload) ([]string, error) {
	if len(files) == 0 {
		return nil, invalid("files", "at least one file is required")
	}
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, storageFailure("load report", err)
	}
	if caller.Role != model.RoleAdmin && r.UserID != caller.ID {
		return nil, ErrForbidden
	}

	namespace := fmt.Sprintf("work_reports/%d", id)
	paths := make([]string, 0, len(files))
	for _, f := range files {
		name := uuid.NewString() + filepath.Ext(filepath.Base(f.Filename))
		p, err := s.files.Save(ctx, namespace, name, f.Body)
		if err != nil {
			return nil, storageFailure("save photo", err)
		}
		paths = append(paths, p)
	}

	if err := s.appendPhotos(ctx, id, paths); err != nil {
		return nil, err
	}
	return paths, nil
}

func (s *ReportService) appendPhotos(ctx context.Context, id uint64, paths []string) error {
	var err error
	for attempt := 0; attempt < s.appendAttempts; attempt++ {
		err = s.store.AppendPhotos(ctx, id, paths)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repository.ErrNotFound):
			return ErrReportNotFound
		case errors.Is(err, repository.ErrConflict):
			continue
		default:
			return storageFailure("append photos", err)
		}
	}
	return storageFailure("append photos", err)
}
