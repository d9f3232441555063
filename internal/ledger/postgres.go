package ledger

import (
	"context"
	"database/sql"

	"pennybook.org/internal/ids"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store on PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Insert(ctx context.Context, tx *Transaction) error {
	if tx.ID == "" {
		tx.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into transactions(id, user_id, amount, type, category, created_at)
		 values($1,$2,$3,$4,$5,$6)`,
		tx.ID, tx.UserID, tx.Amount, tx.Type, tx.Category, tx.CreatedAt,
	)
	return err
}

func (s *PGStore) ListByUser(ctx context.Context, userID string) ([]Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, user_id, amount, type, category, created_at
		 from transactions where user_id=$1 order by created_at desc`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Transaction
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Type, &tx.Category, &tx.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, tx)
	}
	return res, rows.Err()
}

func (s *PGStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`delete from transactions where id=$1 and user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
