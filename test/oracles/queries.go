// Package oracles holds SQL invariants of the registry that must return no
// rows at any point in time.
package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Oracle struct {
	Name string
	SQL  string
}

func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_unique_document_number",
			SQL: `SELECT document_number, COUNT(*) FROM documents
                  GROUP BY document_number HAVING COUNT(*) > 1`,
		},
		{
			Name: "O2_dense_sequence",
			SQL: `WITH n AS (
                      SELECT id, split_part(document_number, 'N-', 1)::bigint AS seq,
                             row_number() OVER (ORDER BY id) AS rn
                      FROM documents)
                  SELECT id, seq, rn FROM n WHERE seq <> rn`,
		},
		{
			Name: "O3_registration_audited",
			SQL: `SELECT d.id, d.document_number FROM documents d
                  WHERE NOT EXISTS (
                      SELECT 1 FROM activity_log a
                      WHERE a.document_id = d.id AND a.action_type = 'register'
                        AND a.user_id = d.created_by)`,
		},
		{
			Name: "O4_audit_has_document",
			SQL: `SELECT id FROM activity_log
                  WHERE action_type = 'register' AND document_id IS NULL`,
		},
		{
			Name: "O5_login_has_no_document",
			SQL: `SELECT id FROM activity_log
                  WHERE action_type = 'login' AND document_id IS NOT NULL`,
		},
		{
			Name: "O6_registered_status",
			SQL:  `SELECT id, status FROM documents WHERE status <> 'Зарегистрирован'`,
		},
	}
}

// Run executes all oracles and returns the first failure (name and sample row text) or empty name if all pass.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		has := rows.Next()
		if has {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
	}
	return "", "", nil
}
