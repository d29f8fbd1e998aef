package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notaryregistry/activity"
	"notaryregistry/db"
)

var (
	// ErrMissingField signals a registration without one of its required fields.
	ErrMissingField = errors.New("document: missing required field")
	// ErrInvalidDate signals a document_date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("document: invalid document_date")
)

// MissingFieldError names the first absent required field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// Store is the data access required by the service.
type Store interface {
	List(ctx context.Context, f Filter) ([]Document, error)
	Count(ctx context.Context, q db.DBTX) (int64, error)
	Insert(ctx context.Context, q db.DBTX, p InsertParams) (Created, error)
}

// AuditWriter appends activity entries inside a caller transaction.
type AuditWriter interface {
	AppendTx(ctx context.Context, q db.DBTX, e activity.Entry) error
}

type Service struct {
	pool  db.TxBeginner
	repo  Store
	audit AuditWriter
	now   func() time.Time
}

func NewService(pool db.TxBeginner, repo Store, audit AuditWriter) *Service {
	return &Service{
		pool:  pool,
		repo:  repo,
		audit: audit,
		now:   time.Now,
	}
}

// WithClock overrides the clock used for document numbers.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// List returns the documents matching f.
func (s *Service) List(ctx context.Context, f Filter) ([]Document, error) {
	return s.repo.List(ctx, f.normalize())
}

// FormatNumber renders the registry number of the seq-th document registered
// at t, e.g. "13N-0308/2024".
func FormatNumber(seq int64, t time.Time) string {
	return fmt.Sprintf("%dN-%s/%d", seq, t.Format("0102"), t.Year())
}

// Create registers a document and records the registration in the activity
// log. Both writes commit together or not at all.
func (s *Service) Create(ctx context.Context, p CreateParams) (Created, error) {
	date, err := validate(p)
	if err != nil {
		return Created{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Created{}, fmt.Errorf("document: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	count, err := s.repo.Count(ctx, tx)
	if err != nil {
		return Created{}, err
	}

	created, err := s.repo.Insert(ctx, tx, InsertParams{
		Number:         FormatNumber(count+1, s.now()),
		Type:           p.DocumentType,
		Date:           date,
		Status:         StatusRegistered,
		Party1Name:     p.Party1Name,
		Party1Passport: p.Party1Passport,
		Party2Name:     p.Party2Name,
		Party2Passport: p.Party2Passport,
		Subject:        p.Subject,
		Notes:          p.Notes,
		CreatedBy:      p.CreatedBy,
	})
	if err != nil {
		return Created{}, err
	}

	err = s.audit.AppendTx(ctx, tx, activity.Entry{
		UserID:      p.CreatedBy,
		ActionType:  activity.ActionRegister,
		Description: "Registered document " + created.Number,
		DocumentID:  &created.ID,
	})
	if err != nil {
		return Created{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Created{}, fmt.Errorf("document: commit: %w", err)
	}
	return created, nil
}

// validate checks required fields in the order clients expect errors for
// them and parses the document date.
func validate(p CreateParams) (time.Time, error) {
	required := []struct {
		name  string
		value string
	}{
		{"document_type", p.DocumentType},
		{"document_date", p.DocumentDate},
		{"party1_name", p.Party1Name},
		{"party1_passport", p.Party1Passport},
		{"subject", p.Subject},
	}
	for _, f := range required {
		if f.value == "" {
			return time.Time{}, &MissingFieldError{Field: f.name}
		}
	}

	date, err := time.Parse(time.DateOnly, p.DocumentDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, p.DocumentDate)
	}
	return date, nil
}
