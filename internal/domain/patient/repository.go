package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const userColumns = `uid, auth_id, email, name, role, is_verified, last_login, created_at, updated_at`

// Repository persists users and patient profiles in Postgres.
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{pool: pool, logger: logger}
}

// GetUserByAuthID looks up a user by their external identity id.
func (r *Repository) GetUserByAuthID(ctx context.Context, authID string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, authID))
}

// GetUserByUID looks up a user by portal id.
func (r *Repository) GetUserByUID(ctx context.Context, uid string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, uid))
}

// GetUserByPID resolves a patient id to its user account. The notifier uses
// this to find the recipient for event-driven email.
func (r *Repository) GetUserByPID(ctx context.Context, pid string) (*User, error) {
	query := `
		SELECT u.uid, u.auth_id, u.email, u.name, u.role, u.is_verified,
		       u.last_login, u.created_at, u.updated_at
		FROM users u
		JOIN patients p ON p.uid = u.uid
		WHERE p.pid = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, pid))
}

// CreateUser inserts a new user row.
func (r *Repository) CreateUser(ctx context.Context, user *User) error {
	if user.UID == "" {
		user.UID = uuid.New().String()
	}

	query := `
		INSERT INTO users (uid, auth_id, email, name, role, is_verified, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		user.UID, user.AuthID, user.Email, user.Name,
		user.Role, user.IsVerified, user.LastLogin,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// TouchLogin refreshes last_login and forces the role back to patient. The
// same account may have logged in through the doctor portal in between;
// entering through this portal always means patient.
func (r *Repository) TouchLogin(ctx context.Context, uid string) (*User, error) {
	query := `
		UPDATE users
		SET last_login = NOW(), role = 'patient', updated_at = NOW()
		WHERE uid = $1
		RETURNING ` + userColumns

	return r.scanUser(r.pool.QueryRow(ctx, query, uid))
}

// GetProfileByUID retrieves the patient profile for a user.
func (r *Repository) GetProfileByUID(ctx context.Context, uid string) (*Profile, error) {
	query := `SELECT pid, uid, created_at FROM patients WHERE uid = $1`

	p := &Profile{}
	err := r.pool.QueryRow(ctx, query, uid).Scan(&p.PID, &p.UID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get patient profile: %w", err)
	}
	return p, nil
}

// EnsureProfile creates the patient profile if it does not exist yet and
// returns it either way.
func (r *Repository) EnsureProfile(ctx context.Context, uid string) (*Profile, error) {
	query := `
		INSERT INTO patients (pid, uid)
		VALUES ($1, $2)
		ON CONFLICT (uid) DO UPDATE SET uid = EXCLUDED.uid
		RETURNING pid, uid, created_at
	`

	p := &Profile{}
	err := r.pool.QueryRow(ctx, query, uuid.New().String(), uid).Scan(&p.PID, &p.UID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ensure patient profile: %w", err)
	}
	return p, nil
}

func (r *Repository) scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.UID, &u.AuthID, &u.Email, &u.Name, &u.Role,
		&u.IsVerified, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
