package sqlite

import (
	"fmt"

	"github.com/sqltyped/sqlite/sqliteh"
)

// Rows iterates a statement's result set, decoding each row into a T.
//
// A Rows borrows its statement and must not outlive it. T may be a
// supported scalar type for single-column queries, or a struct whose
// fields map positionally onto the result columns; see decode rules
// in the package documentation.
type Rows[T any] struct {
	stmt *Stmt
}

// Iter binds args (if given, or if the statement is unbound) and
// returns an iterator over the statement's result set.
func Iter[T any](s *Stmt, args ...any) (*Rows[T], error) {
	if !s.bound || len(args) > 0 {
		if err := s.Bind(args...); err != nil {
			return nil, err
		}
	}
	return &Rows[T]{stmt: s}, nil
}

// Next advances the cursor one row and decodes it. ok reports whether
// a row was available; after ok is false the statement is exhausted.
func (r *Rows[T]) Next() (v T, ok bool, err error) {
	row, err := r.stmt.Step()
	if err != nil || !row {
		return v, false, err
	}
	if err := decodeRow(r.stmt, &v); err != nil {
		return v, false, err
	}
	return v, true, nil
}

// One executes the statement and decodes its single result row.
// It returns ErrNoRows if the query matches nothing.
func One[T any](s *Stmt, args ...any) (v T, err error) {
	rows, err := Iter[T](s, args...)
	if err != nil {
		return v, err
	}
	v, ok, err := rows.Next()
	if err != nil {
		return v, err
	}
	if !ok {
		return v, ErrNoRows
	}
	return v, nil
}

// All executes the statement and collects every result row.
//
// The returned slice is proportional to the result set size; callers
// with large or unbounded result sets should prefer Iter.
func All[T any](s *Stmt, args ...any) ([]T, error) {
	rows, err := Iter[T](s, args...)
	if err != nil {
		return nil, err
	}
	var out []T
	for {
		v, ok, err := rows.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

// QueryRow prepares query on c, binds args and decodes the single
// result row. It returns ErrNoRows if the query matches nothing.
func QueryRow[T any](c *Conn, query string, args ...any) (v T, err error) {
	s, err := c.Prepare(query)
	if err != nil {
		return v, err
	}
	defer s.Finalize()
	return One[T](s, args...)
}

// Query prepares query on c, binds args and collects every result
// row. See All for the memory caveat.
func Query[T any](c *Conn, query string, args ...any) ([]T, error) {
	s, err := c.Prepare(query)
	if err != nil {
		return nil, err
	}
	defer s.Finalize()
	return All[T](s, args...)
}

// Scan reads the current row's columns into dest pointers, one per
// column, without the typed decode path. The statement must be
// positioned on a row by a prior Step.
func (s *Stmt) Scan(dest ...any) error {
	if s.finalized {
		s.misuse("Scan")
	}
	if n := s.stmt.ColumnCount(); len(dest) != n {
		return fmt.Errorf("sqlite.Scan: %d columns, %d destinations (%s)", n, len(dest), s.query)
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = s.stmt.ColumnInt64(i)
		case *int:
			*p = int(s.stmt.ColumnInt64(i))
		case *float64:
			*p = s.stmt.ColumnDouble(i)
		case *bool:
			*p = s.stmt.ColumnInt64(i) > 0
		case *string:
			*p = s.stmt.ColumnText(i)
		case *[]byte:
			*p = append([]byte(nil), s.stmt.ColumnBlob(i)...)
		case *any:
			switch s.stmt.ColumnType(i) {
			case sqliteh.SQLITE_INTEGER:
				*p = s.stmt.ColumnInt64(i)
			case sqliteh.SQLITE_FLOAT:
				*p = s.stmt.ColumnDouble(i)
			case sqliteh.SQLITE_TEXT:
				*p = s.stmt.ColumnText(i)
			case sqliteh.SQLITE_BLOB:
				*p = append([]byte(nil), s.stmt.ColumnBlob(i)...)
			default:
				*p = nil
			}
		default:
			return fmt.Errorf("sqlite.Scan: unsupported destination type %T for column %d", d, i)
		}
	}
	return nil
}
