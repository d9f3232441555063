package ledger

import "context"

// Store persists transactions. Records are always scoped to a user; there
// is no cross-user read path.
type Store interface {
	Insert(ctx context.Context, tx *Transaction) error
	ListByUser(ctx context.Context, userID string) ([]Transaction, error)
	Delete(ctx context.Context, userID, id string) error
}
