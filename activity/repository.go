package activity

import (
	"context"
	"fmt"

	"notaryregistry/db"
)

// DefaultHistoryLimit bounds how many entries a history read returns.
const DefaultHistoryLimit = 50

// Repository reads and appends activity_log rows.
type Repository struct {
	db db.DBTX
}

// NewRepository wires a repository over a pool or any other DBTX.
func NewRepository(q db.DBTX) *Repository {
	return &Repository{db: q}
}

// Append writes e outside of any caller transaction.
func (r *Repository) Append(ctx context.Context, e Entry) error {
	return r.AppendTx(ctx, r.db, e)
}

// AppendTx writes e through q, which is normally the transaction of the
// write the entry describes.
func (r *Repository) AppendTx(ctx context.Context, q db.DBTX, e Entry) error {
	const insertSQL = `
		INSERT INTO activity_log (user_id, action_type, action_description, document_id)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := q.Exec(ctx, insertSQL, e.UserID, e.ActionType, e.Description, e.DocumentID); err != nil {
		return fmt.Errorf("activity: append: %w", err)
	}
	return nil
}

// ListForUser returns the newest entries of a user, up to limit.
func (r *Repository) ListForUser(ctx context.Context, userID int64, limit int) ([]Record, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}

	const query = `
		SELECT al.id, al.action_type, al.action_description, al.created_at, d.document_number
		FROM activity_log al
		LEFT JOIN documents d ON al.document_id = d.id
		WHERE al.user_id = $1
		ORDER BY al.created_at DESC, al.id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("activity: list: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.ActionType, &rec.Description, &rec.CreatedAt, &rec.DocumentNumber); err != nil {
			return nil, fmt.Errorf("activity: scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("activity: iterate: %w", err)
	}
	return records, nil
}
