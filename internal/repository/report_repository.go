package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/poolforyou/poolforyou-api/internal/model"
)

const reportColumns = "id,user_id,location,data,status,created_at"

// ReportRepo persists work reports.  data is a MySQL JSON column.
type ReportRepo struct{ db *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// Create inserts a pending report and returns the stored row.
func (r *ReportRepo) Create(ctx context.Context, userID uint64, location string, data model.ReportData) (model.WorkReport, error) {
	blob, err := json.Marshal(data)
	if err != nil {
		return model.WorkReport{}, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO work_reports (user_id, location, data, status) VALUES (?,?,?,?)",
		userID, location, blob, model.StatusPending)
	if err != nil {
		return model.WorkReport{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.WorkReport{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches one report.
func (r *ReportRepo) GetByID(ctx context.Context, id uint64) (model.WorkReport, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM work_reports WHERE id=? LIMIT 1", id)
	w, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WorkReport{}, ErrNotFound
	}
	return w, err
}

// ListByUser returns the reports of one owner, newest first.
func (r *ReportRepo) ListByUser(ctx context.Context, userID uint64) ([]model.WorkReport, error) {
	return r.List(ctx, model.ReportFilter{UserID: userID})
}

// List returns the reports matching f, newest first.
func (r *ReportRepo) List(ctx context.Context, f model.ReportFilter) ([]model.WorkReport, error) {
	query, args := buildReportListQuery(f)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.WorkReport{}
	for rows.Next() {
		w, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// buildReportListQuery turns the filter into a WHERE clause.  Bounds on
// created_at are [CreatedFrom, CreatedBefore).
func buildReportListQuery(f model.ReportFilter) (string, []any) {
	where := []string{}
	args := []any{}

	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if !f.CreatedFrom.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, f.CreatedFrom.UTC())
	}
	if !f.CreatedBefore.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, f.CreatedBefore.UTC())
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	return "SELECT " + reportColumns + " FROM work_reports WHERE " + cond +
		" ORDER BY created_at DESC, id DESC", args
}

// UpdateStatus overwrites the status.  A missing row is ErrNotFound.
func (r *ReportRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE work_reports SET status=? WHERE id=?", status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	// MySQL reports zero affected rows when the value is unchanged.
	var exists bool
	err = r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM work_reports WHERE id=?)", id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

// AppendPhotos reads data under a row lock, appends paths to data.photos
// and writes it back in the same transaction, so concurrent uploads to one
// report never overwrite each other.  Deadlocks and lock wait timeouts are
// returned as ErrConflict.
func (r *ReportRepo) AppendPhotos(ctx context.Context, id uint64, paths []string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			if isLockConflict(err) {
				err = errors.Join(ErrConflict, err)
			}
		}
	}()

	var blob []byte
	err = tx.QueryRowContext(ctx,
		"SELECT data FROM work_reports WHERE id=? FOR UPDATE", id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var data model.ReportData
	if err = json.Unmarshal(blob, &data); err != nil {
		return err
	}
	data.Photos = append(data.Photos, paths...)
	if blob, err = json.Marshal(data); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		"UPDATE work_reports SET data=? WHERE id=?", blob, id); err != nil {
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(s rowScanner) (model.WorkReport, error) {
	var (
		w    model.WorkReport
		blob []byte
	)
	if err := s.Scan(&w.ID, &w.UserID, &w.Location, &blob, &w.Status, &w.CreatedAt); err != nil {
		return model.WorkReport{}, err
	}
	if err := json.Unmarshal(blob, &w.Data); err != nil {
		return model.WorkReport{}, err
	}
	return w, nil
}
