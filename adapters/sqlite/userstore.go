package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/openshelf/openshelf/domain/identity"
	"github.com/openshelf/openshelf/ports"
)

// UserStore implements ports.UserStore using SQLite.
type UserStore struct {
	db *DB
}

// NewUserStore creates a new SQLite user store.
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, email, full_name, phone, password_hash, user_type, permissions, is_active, created_at, updated_at`

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, id string) (identity.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = ?
	`, id)
	return scanUser(row)
}

// GetByEmail retrieves a user by normalized email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (identity.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = ?
	`, identity.NormalizeEmail(email))
	return scanUser(row)
}

// Create stores a new user.
func (s *UserStore) Create(ctx context.Context, u identity.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}

	perms, err := marshalPermissions(u.Permissions)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, identity.NormalizeEmail(u.Email), u.FullName, nullString(u.Phone),
		u.PasswordHash, string(u.Role), perms, u.IsActive, u.CreatedAt, u.UpdatedAt)

	if err != nil && isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return err
}

// Update modifies an existing user.
func (s *UserStore) Update(ctx context.Context, u identity.User) error {
	u.UpdatedAt = time.Now().UTC()

	perms, err := marshalPermissions(u.Permissions)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET email = ?, full_name = ?, phone = ?, password_hash = ?,
		    user_type = ?, permissions = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, identity.NormalizeEmail(u.Email), u.FullName, nullString(u.Phone),
		u.PasswordHash, string(u.Role), perms, u.IsActive, u.UpdatedAt, u.ID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete permanently removes a user.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns users with pagination.
func (s *UserStore) List(ctx context.Context, limit, offset int) ([]identity.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []identity.User
	for rows.Next() {
		u, err := scanUserRows(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Count returns total user count.
func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func scanUser(row *sql.Row) (identity.User, error) {
	var u identity.User
	var phone sql.NullString
	var role, perms string

	err := row.Scan(
		&u.ID, &u.Email, &u.FullName, &phone, &u.PasswordHash,
		&role, &perms, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return identity.User{}, ErrNotFound
	}
	if err != nil {
		return identity.User{}, err
	}
	return finishUser(u, phone, role, perms)
}

func scanUserRows(rows *sql.Rows) (identity.User, error) {
	var u identity.User
	var phone sql.NullString
	var role, perms string

	err := rows.Scan(
		&u.ID, &u.Email, &u.FullName, &phone, &u.PasswordHash,
		&role, &perms, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return identity.User{}, err
	}
	return finishUser(u, phone, role, perms)
}

func finishUser(u identity.User, phone sql.NullString, role, perms string) (identity.User, error) {
	if phone.Valid {
		u.Phone = phone.String
	}
	u.Role = identity.Role(role)
	if perms != "" {
		if err := json.Unmarshal([]byte(perms), &u.Permissions); err != nil {
			return identity.User{}, err
		}
	}
	return u, nil
}

func marshalPermissions(perms []string) (string, error) {
	if perms == nil {
		perms = []string{}
	}
	b, err := json.Marshal(perms)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Ensure interface compliance.
var _ ports.UserStore = (*UserStore)(nil)
