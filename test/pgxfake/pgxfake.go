// Package pgxfake provides in-memory stand-ins for the pgx query surface so
// repositories and services can be tested without a database.
package pgxfake

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Call records one statement sent to a DB.
type Call struct {
	SQL  string
	Args []any
}

// DB implements db.DBTX. Unset funcs return empty results.
type DB struct {
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row

	Execs   []Call
	Queries []Call
}

func (d *DB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.Execs = append(d.Execs, Call{SQL: sql, Args: args})
	if d.ExecFunc == nil {
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return d.ExecFunc(ctx, sql, args...)
}

func (d *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	d.Queries = append(d.Queries, Call{SQL: sql, Args: args})
	if d.QueryFunc == nil {
		return NewRows(), nil
	}
	return d.QueryFunc(ctx, sql, args...)
}

func (d *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	d.Queries = append(d.Queries, Call{SQL: sql, Args: args})
	if d.QueryRowFunc == nil {
		return &Row{Err: pgx.ErrNoRows}
	}
	return d.QueryRowFunc(ctx, sql, args...)
}

// Pool implements db.TxBeginner, handing out Tx values that share DB.
type Pool struct {
	DB       *DB
	BeginErr error
	Tx       *Tx
}

func (p *Pool) Begin(context.Context) (pgx.Tx, error) {
	if p.BeginErr != nil {
		return nil, p.BeginErr
	}
	if p.DB == nil {
		p.DB = &DB{}
	}
	p.Tx = &Tx{DB: p.DB}
	return p.Tx, nil
}

// Tx is a pgx.Tx whose statements go to the embedded DB.
type Tx struct {
	*DB
	CommitErr  error
	Committed  bool
	RolledBack bool
}

func (t *Tx) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("pgxfake: nested transactions are not supported")
}

func (t *Tx) Commit(context.Context) error {
	if t.CommitErr != nil {
		return t.CommitErr
	}
	t.Committed = true
	return nil
}

// Rollback only counts when the transaction was not committed, mirroring
// the deferred-rollback idiom.
func (t *Tx) Rollback(context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

func (t *Tx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}

func (t *Tx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}

func (t *Tx) LargeObjects() pgx.LargeObjects {
	panic("not implemented")
}

func (t *Tx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}

func (t *Tx) Conn() *pgx.Conn {
	return nil
}

// Row is a pgx.Row holding a single set of values, or an error.
type Row struct {
	Values []any
	Err    error
}

// NewRow returns a Row yielding values.
func NewRow(values ...any) *Row {
	return &Row{Values: values}
}

func (r *Row) Scan(dest ...any) error {
	if r.Err != nil {
		return r.Err
	}
	return assign(r.Values, dest)
}

// Rows is a pgx.Rows over fixed data.
type Rows struct {
	data    [][]any
	pos     int
	IterErr error
	Closed  bool
}

// NewRows returns Rows yielding each element of data in order.
func NewRows(data ...[]any) *Rows {
	return &Rows{data: data}
}

func (r *Rows) Close() { r.Closed = true }

func (r *Rows) Err() error { return r.IterErr }

func (r *Rows) CommandTag() pgconn.CommandTag {
	return pgconn.NewCommandTag(fmt.Sprintf("SELECT %d", len(r.data)))
}

func (r *Rows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (r *Rows) Next() bool {
	if r.Closed || r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *Rows) Scan(dest ...any) error {
	if r.pos == 0 || r.pos > len(r.data) {
		return errors.New("pgxfake: scan called without a current row")
	}
	return assign(r.data[r.pos-1], dest)
}

func (r *Rows) Values() ([]any, error) {
	if r.pos == 0 || r.pos > len(r.data) {
		return nil, errors.New("pgxfake: no current row")
	}
	return r.data[r.pos-1], nil
}

func (r *Rows) RawValues() [][]byte { return nil }

func (r *Rows) Conn() *pgx.Conn { return nil }

func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("pgxfake: %d values for %d destinations", len(values), len(dest))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d)
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("pgxfake: destination %d is not a pointer", i)
		}
		elem := target.Elem()
		if values[i] == nil {
			elem.Set(reflect.Zero(elem.Type()))
			continue
		}
		v := reflect.ValueOf(values[i])
		switch {
		case v.Type().AssignableTo(elem.Type()):
			elem.Set(v)
		case elem.Kind() == reflect.Pointer && v.Type().AssignableTo(elem.Type().Elem()):
			p := reflect.New(elem.Type().Elem())
			p.Elem().Set(v)
			elem.Set(p)
		case v.Kind() == elem.Kind() && v.Type().ConvertibleTo(elem.Type()):
			elem.Set(v.Convert(elem.Type()))
		default:
			return fmt.Errorf("pgxfake: cannot assign %T to %s", values[i], elem.Type())
		}
	}
	return nil
}
