package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/ffx/internal/models"
	"github.com/desertthunder/ffx/internal/shared"
)

// Store implements the sync engine's persistence interface over SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store with the given database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// LoadUser retrieves the stored record for an email, excluding soft-deleted
// users. Returns an error wrapping [shared.ErrUserNotFound] when absent.
func (s *Store) LoadUser(ctx context.Context, email string) (*models.StoredUser, error) {
	query := `
		SELECT email, secret, device_id
		FROM users
		WHERE email = ? AND deleted_at IS NULL
	`

	var user models.StoredUser
	err := s.db.QueryRowContext(ctx, query, email).Scan(&user.Email, &user.Secret, &user.DeviceID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// CreateUser inserts a new user row and its empty task snapshot in one
// transaction. A soft-deleted row for the same email is reactivated with the
// new credentials and an empty snapshot.
func (s *Store) CreateUser(ctx context.Context, user *models.StoredUser) error {
	userSeq, err := NextSequence(s.db, "users")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	snapshotSeq, err := NextSequence(s.db, "task_snapshots")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	userQuery := `
		INSERT INTO users (id, sequence, email, secret, device_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			secret = excluded.secret,
			device_id = excluded.device_id,
			updated_at = excluded.updated_at,
			deleted_at = NULL
	`
	_, err = tx.ExecContext(ctx, userQuery, shared.GenerateID(), userSeq, user.Email, user.Secret, user.DeviceID, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	snapshotQuery := `
		INSERT INTO task_snapshots (id, sequence, user_email, tasks, created_at, updated_at)
		VALUES (?, ?, ?, '[]', ?, ?)
		ON CONFLICT(user_email) DO UPDATE SET
			tasks = '[]',
			fetched_at = NULL,
			updated_at = excluded.updated_at,
			deleted_at = NULL
	`
	_, err = tx.ExecContext(ctx, snapshotQuery, shared.GenerateID(), snapshotSeq, user.Email, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert task snapshot: %w", err)
	}

	return tx.Commit()
}

// UpdateSecret replaces the stored session secret for an email.
func (s *Store) UpdateSecret(ctx context.Context, email, secret string) error {
	query := `
		UPDATE users
		SET secret = ?, updated_at = ?
		WHERE email = ? AND deleted_at IS NULL
	`

	result, err := s.db.ExecContext(ctx, query, secret, time.Now(), email)
	if err != nil {
		return fmt.Errorf("failed to update secret: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, email)
	}

	return nil
}

// SaveTasks replaces the cached task snapshot for an email.
func (s *Store) SaveTasks(ctx context.Context, email string, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}

	now := time.Now()
	query := `
		UPDATE task_snapshots
		SET tasks = ?, fetched_at = ?, updated_at = ?
		WHERE user_email = ? AND deleted_at IS NULL
	`

	result, err := s.db.ExecContext(ctx, query, string(data), now, now, email)
	if err != nil {
		return fmt.Errorf("failed to update task snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, email)
	}

	return nil
}

// LoadTasks returns the cached task snapshot for an email.
func (s *Store) LoadTasks(ctx context.Context, email string) ([]models.Task, error) {
	query := `
		SELECT tasks
		FROM task_snapshots
		WHERE user_email = ? AND deleted_at IS NULL
	`

	var data string
	err := s.db.QueryRowContext(ctx, query, email).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task snapshot: %w", err)
	}

	var tasks []models.Task
	if err := json.Unmarshal([]byte(data), &tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task snapshot: %w", err)
	}

	return tasks, nil
}

// DeleteUser soft-deletes a user and their task snapshot.
func (s *Store) DeleteUser(ctx context.Context, email string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	result, err := tx.ExecContext(ctx, "UPDATE users SET deleted_at = ? WHERE email = ? AND deleted_at IS NULL", now, email)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, email)
	}

	_, err = tx.ExecContext(ctx, "UPDATE task_snapshots SET deleted_at = ? WHERE user_email = ? AND deleted_at IS NULL", now, email)
	if err != nil {
		return fmt.Errorf("failed to delete task snapshot: %w", err)
	}

	return tx.Commit()
}

// ListUsers returns all stored users ordered by sequence.
func (s *Store) ListUsers(ctx context.Context) ([]models.StoredUser, error) {
	query := `
		SELECT email, secret, device_id
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY sequence ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.StoredUser
	for rows.Next() {
		var user models.StoredUser
		if err := rows.Scan(&user.Email, &user.Secret, &user.DeviceID); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}
