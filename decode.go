package sqlite

import (
	"encoding"
	"fmt"
	"reflect"

	"github.com/sqltyped/sqlite/sqliteh"
)

var (
	textType = reflect.TypeOf(Text{})
	blobType = reflect.TypeOf(Blob{})
)

// decodeRow decodes the statement's current row into *T.
//
// Struct targets map field i to column i and the field count must
// equal the column count. Any other supported target decodes a
// single-column row. All decoded byte data is an owned copy; nothing
// retains engine memory past the next Step.
func decodeRow(s *Stmt, dest any) error {
	rv := reflect.ValueOf(dest).Elem()
	rt := rv.Type()

	if rt.Kind() == reflect.Pointer && rt.Elem().Kind() == reflect.Struct && !isColumnTarget(rt.Elem()) {
		// read into a pointer to a struct
		rv.Set(reflect.New(rt.Elem()))
		return decodeStruct(s, rv.Elem())
	}
	if rt.Kind() == reflect.Struct && !isColumnTarget(rt) {
		return decodeStruct(s, rv)
	}
	if n := s.stmt.ColumnCount(); n != 1 {
		return fmt.Errorf("sqlite: decode: %d columns into single %s target (%s)", n, rt, s.query)
	}
	return decodeColumn(s, 0, rv, "")
}

func decodeStruct(s *Stmt, rv reflect.Value) error {
	rt := rv.Type()
	if n := s.stmt.ColumnCount(); n != rt.NumField() {
		return fmt.Errorf("sqlite: decode: %d columns into %d fields of %s (%s)", n, rt.NumField(), rt, s.query)
	}
	for i := 0; i < rt.NumField(); i++ {
		if err := decodeColumn(s, i, rv.Field(i), rt.Field(i).Tag.Get("sqlite")); err != nil {
			return fmt.Errorf("%w (field %s.%s)", err, rt.Name(), rt.Field(i).Name)
		}
	}
	return nil
}

// isColumnTarget reports whether a struct type decodes from a single
// column rather than field-by-field.
func isColumnTarget(rt reflect.Type) bool {
	if rt == textType || rt == blobType {
		return true
	}
	return reflect.PointerTo(rt).Implements(reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem())
}

func decodeColumn(s *Stmt, col int, field reflect.Value, tag string) error {
	rt := field.Type()

	// wrapper and unmarshaler targets first; they are struct kinds
	switch {
	case rt == textType:
		field.Set(reflect.ValueOf(TextString(s.stmt.ColumnText(col))))
		return nil
	case rt == blobType:
		field.Set(reflect.ValueOf(BlobBytes(append([]byte(nil), s.stmt.ColumnBlob(col)...))))
		return nil
	}
	if u, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
		if err := u.UnmarshalText([]byte(s.stmt.ColumnText(col))); err != nil {
			return fmt.Errorf("sqlite: decode column %d: %w", col, err)
		}
		return nil
	}

	switch rt.Kind() {
	case reflect.Pointer:
		// Optionals inspect the column's storage class directly:
		// accessor coercion would turn NULL into a zero value.
		if s.stmt.ColumnType(col) == sqliteh.SQLITE_NULL {
			field.Set(reflect.Zero(rt))
			return nil
		}
		field.Set(reflect.New(rt.Elem()))
		return decodeColumn(s, col, field.Elem(), tag)

	case reflect.Bool:
		field.SetBool(s.stmt.ColumnInt64(col) > 0)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := s.stmt.ColumnInt64(col)
		if field.OverflowInt(v) {
			return fmt.Errorf("sqlite: decode column %d: value %d overflows %s", col, v, rt)
		}
		field.SetInt(v)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := s.stmt.ColumnInt64(col)
		if v < 0 || field.OverflowUint(uint64(v)) {
			return fmt.Errorf("sqlite: decode column %d: value %d overflows %s", col, v, rt)
		}
		field.SetUint(uint64(v))
		return nil

	case reflect.Float32, reflect.Float64:
		v := s.stmt.ColumnDouble(col)
		if field.OverflowFloat(v) {
			return fmt.Errorf("sqlite: decode column %d: value %v overflows %s", col, v, rt)
		}
		field.SetFloat(v)
		return nil

	case reflect.String:
		field.SetString(s.stmt.ColumnText(col))
		return nil

	case reflect.Slice:
		if rt.Elem().Kind() != reflect.Uint8 {
			break
		}
		field.SetBytes(append([]byte(nil), s.stmt.ColumnBlob(col)...))
		return nil

	case reflect.Array:
		if rt.Elem().Kind() != reflect.Uint8 {
			break
		}
		return decodeByteArray(s, col, field, tag)
	}
	return fmt.Errorf("sqlite: decode column %d: unsupported target type %s", col, rt)
}

// decodeByteArray fills a fixed [N]byte field. Without the "nullterm"
// tag the column length must equal N exactly. With it, a shorter
// column is copied and terminated with a zero byte at its end;
// anything that leaves no room for the terminator is oversize.
func decodeByteArray(s *Stmt, col int, field reflect.Value, tag string) error {
	b := s.stmt.ColumnBlob(col)
	n := field.Len()
	if tag == "nullterm" {
		if len(b) >= n {
			return fmt.Errorf("sqlite: decode column %d: %d bytes do not fit [%d]byte with terminator", col, len(b), n)
		}
		reflect.Copy(field, reflect.ValueOf(b))
		field.Index(len(b)).SetUint(0)
		return nil
	}
	if len(b) != n {
		return fmt.Errorf("sqlite: decode column %d: %d bytes into [%d]byte", col, len(b), n)
	}
	reflect.Copy(field, reflect.ValueOf(b))
	return nil
}
