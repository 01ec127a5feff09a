package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidReference is returned when a write points at a row that does
// not exist (foreign key violation).
var ErrInvalidReference = errors.New("referenced record does not exist")

type scanner interface {
	Scan(dest ...any) error
}

// queryAll runs query and scans every row with scan.
func queryAll[T any](ctx context.Context, conn *sql.DB, scan func(scanner, *T) error, query string, args ...any) ([]T, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var v T
		if err := scan(rows, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// queryOne scans a single row. A missing row yields (nil, nil).
func queryOne[T any](ctx context.Context, conn *sql.DB, scan func(scanner, *T) error, query string, args ...any) (*T, error) {
	var v T
	err := scan(conn.QueryRowContext(ctx, query, args...), &v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// count runs a SELECT COUNT(*) style query.
func count(ctx context.Context, conn *sql.DB, query string, args ...any) (int, error) {
	var n int
	if err := conn.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// exec deletes or updates by id and reports whether a row was touched.
func execAffected(ctx context.Context, conn *sql.DB, query string, args ...any) (bool, error) {
	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// wrapWrite adds context to a write error and folds foreign key
// violations into ErrInvalidReference.
func wrapWrite(op string, err error) error {
	if IsForeignKeyViolation(err) {
		return fmt.Errorf("failed to %s: %w", op, ErrInvalidReference)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// updateSet accumulates "col = $n" assignments for a partial update.
type updateSet struct {
	cols []string
	args []any
}

// set adds col = v.
func (u *updateSet) set(col string, v any) {
	u.args = append(u.args, v)
	u.cols = append(u.cols, fmt.Sprintf("%s = $%d", col, len(u.args)))
}

func (u *updateSet) empty() bool {
	return len(u.cols) == 0
}

// build renders "UPDATE table SET ... WHERE id = $n" with id as the last
// argument.
func (u *updateSet) build(table string, id int) (string, []any) {
	args := append(u.args, id)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(u.cols, ", "), len(args))
	return q, args
}

// uniqueInts returns ids without duplicates, keeping first-seen order.
func uniqueInts(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
