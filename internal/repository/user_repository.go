package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/poolforyou/poolforyou-api/internal/model"
)

const userColumns = "id,name,email,role,password_hash,is_active,email_verified,created_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts an unactivated user and returns the stored row.
func (r *UserRepo) Create(ctx context.Context, name, email string, role model.Role) (model.User, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, role) VALUES (?,?,?)",
		name, email, string(role))
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a user by exact email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// Activate sets the first password and verifies the email.  The
// password_hash IS NULL guard makes a second activation a no-op, reported
// as ErrAlreadyActivated.
func (r *UserRepo) Activate(ctx context.Context, id uint64, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, email_verified=1 WHERE id=? AND password_hash IS NULL",
		passwordHash, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrAlreadyActivated
}

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u    model.User
		role string
		hash sql.NullString
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &hash, &u.IsActive, &u.EmailVerified, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	u.Role = model.Role(role)
	if hash.Valid {
		u.PasswordHash = &hash.String
	}
	return u, nil
}
