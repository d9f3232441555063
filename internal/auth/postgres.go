package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"pennybook.org/internal/ids"
)

var _ UserStore = (*PGStore)(nil)

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// PGStore implements UserStore on PostgreSQL. The users.email unique index
// and the conditional update in ConsumeResetToken carry the atomicity
// guarantees the UserStore contract requires.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const userColumns = `id, name, email, password_hash, reset_token, reset_expires, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into users(id, name, email, password_hash) values($1,$2,$3,$4)`,
		u.ID, u.Name, u.Email, u.PasswordHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s *PGStore) Find(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id=$1`, id)
	return scanUser(row)
}

func (s *PGStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where email=$1`, email)
	return scanUser(row)
}

func (s *PGStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`update users set password_hash=$2, updated_at=now() where id=$1`,
		userID, passwordHash,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) SetResetToken(ctx context.Context, userID, token string, expires time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`update users set reset_token=$2, reset_expires=$3, updated_at=now() where id=$1`,
		userID, token, expires,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) ConsumeResetToken(ctx context.Context, token string, now time.Time) (*User, error) {
	// Compare-and-clear in one statement: two concurrent consumes of the
	// same token cannot both match.
	row := s.db.QueryRowContext(ctx,
		`update users set reset_token=null, reset_expires=null, updated_at=now()
		 where reset_token=$1 and reset_expires > $2
		 returning `+userColumns, token, now)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		u       User
		token   sql.NullString
		expires sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &token, &expires, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if token.Valid {
		u.ResetToken = token.String
	}
	if expires.Valid {
		u.ResetExpires = expires.Time
	}
	return &u, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
