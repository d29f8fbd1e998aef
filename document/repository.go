package document

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"notaryregistry/db"
)

// Repository reads and writes the documents table.
type Repository struct {
	db db.DBTX
}

// NewRepository creates a PostgreSQL-backed document repository.
func NewRepository(q db.DBTX) *Repository {
	return &Repository{db: q}
}

const listSQL = `
	SELECT d.id, d.document_number, d.document_type, d.document_date,
	       d.registration_date, d.status, d.party1_name, d.party1_passport,
	       d.party2_name, d.party2_passport, d.subject, d.notes,
	       u.full_name
	FROM documents d
	LEFT JOIN users u ON d.created_by = u.id
	WHERE 1=1`

// buildListQuery renders the listing query for f. Every filter value is a
// bound parameter.
func buildListQuery(f Filter) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(listSQL)

	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Search != "" {
		p := next(f.Search)
		fmt.Fprintf(&sb, `
	  AND (d.document_number ILIKE '%%' || %[1]s || '%%'
	       OR d.party1_name ILIKE '%%' || %[1]s || '%%'
	       OR d.party2_name ILIKE '%%' || %[1]s || '%%')`, p)
	}
	if f.Type != "" {
		fmt.Fprintf(&sb, "\n\t  AND d.document_type = %s", next(f.Type))
	}
	if f.Status != "" {
		fmt.Fprintf(&sb, "\n\t  AND d.status = %s", next(f.Status))
	}
	sb.WriteString("\n\tORDER BY d.registration_date DESC, d.id DESC")

	return sb.String(), args
}

// List returns documents matching f, newest registration first. f is used
// as given; Service.List normalizes it.
func (r *Repository) List(ctx context.Context, f Filter) ([]Document, error) {
	query, args := buildListQuery(f)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("document: list: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var d Document
		if err := rows.Scan(
			&d.ID,
			&d.Number,
			&d.Type,
			&d.Date,
			&d.RegistrationDate,
			&d.Status,
			&d.Party1Name,
			&d.Party1Passport,
			&d.Party2Name,
			&d.Party2Passport,
			&d.Subject,
			&d.Notes,
			&d.CreatedByName,
		); err != nil {
			return nil, fmt.Errorf("document: scan: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("document: iterate: %w", err)
	}
	return docs, nil
}

// Count locks the documents table against concurrent registrations and
// returns the number of rows. q must be a transaction; the lock is held until
// it ends. Plain reads are not blocked.
func (r *Repository) Count(ctx context.Context, q db.DBTX) (int64, error) {
	if _, err := q.Exec(ctx, `LOCK TABLE documents IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return 0, fmt.Errorf("document: lock: %w", err)
	}

	var n int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("document: count: %w", err)
	}
	return n, nil
}

// Insert writes p through q and returns the generated identity.
func (r *Repository) Insert(ctx context.Context, q db.DBTX, p InsertParams) (Created, error) {
	const insertSQL = `
		INSERT INTO documents (
			document_number, document_type, document_date, status,
			party1_name, party1_passport, party2_name, party2_passport,
			subject, notes, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, document_number, registration_date
	`

	var c Created
	err := q.QueryRow(ctx, insertSQL,
		p.Number, p.Type, p.Date, p.Status,
		p.Party1Name, p.Party1Passport, p.Party2Name, p.Party2Passport,
		p.Subject, p.Notes, p.CreatedBy,
	).Scan(&c.ID, &c.Number, &c.RegistrationDate)
	if err != nil {
		return Created{}, fmt.Errorf("document: insert: %w", err)
	}
	return c, nil
}
