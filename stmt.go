package sqlite

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/sqltyped/sqlite/sqliteh"
)

// Stmt is a prepared statement. See Conn.Prepare.
//
// A Stmt is owned by its Conn and is not safe for concurrent use.
// The engine-side handle must be released exactly once: Finalize
// returns persistent statements to the connection's cache and frees
// one-off statements; any bind or step after that is a programming
// error and panics.
type Stmt struct {
	conn      *Conn
	stmt      sqliteh.Stmt
	query     string // original text, including type annotations
	params    []ParamInfo
	persist   bool // cached on the conn, survives Finalize
	bound     bool
	finalized bool
}

// Query returns the statement's original query text, including any
// placeholder type annotations.
func (s *Stmt) Query() string { return s.query }

// Params returns the statement's placeholder descriptors in ordinal
// order. The returned slice is shared; callers must not modify it.
func (s *Stmt) Params() []ParamInfo { return s.params }

func (s *Stmt) misuse(loc string) {
	UsesAfterClose.Add(loc, 1)
	panic(fmt.Sprintf("sqlite.%s: use of finalized statement (%s)", loc, s.query))
}

// Bind binds args to the statement's parameters in ordinal order.
// Repeated named placeholders are one parameter and take one value.
//
// The argument count must equal the parameter count, and each
// argument bound to an annotated placeholder must have exactly the
// annotated type; either violation panics before anything reaches
// the engine, since it is a disagreement between two pieces of
// program text. Engine-side bind failures return an error.
func (s *Stmt) Bind(args ...any) error {
	if s.finalized {
		s.misuse("Bind")
	}
	if len(args) != len(s.params) {
		panic(fmt.Sprintf("sqlite.Bind: statement has %d placeholders, got %d arguments (%s)", len(s.params), len(args), s.query))
	}
	for i, arg := range args {
		p := s.params[i]
		if p.Type != ParamAny {
			checkBindType(s.query, p, arg)
		}
		if err := s.bindValue(p.Ordinal, arg); err != nil {
			return err
		}
	}
	s.bound = true
	return nil
}

// BindNamed binds values to named placeholders. Every key must match
// the identifier of a named placeholder (any introducer); an unknown
// name is an error. Type annotations are enforced as in Bind.
func (s *Stmt) BindNamed(args map[string]any) error {
	if s.finalized {
		s.misuse("BindNamed")
	}
	for name, arg := range args {
		idx := s.stmt.BindParameterIndexSearch(name)
		if idx == 0 {
			return fmt.Errorf("sqlite.BindNamed: no parameter named %q in %q", name, s.query)
		}
		for _, p := range s.params {
			if p.Named && p.Name == name && p.Type != ParamAny {
				checkBindType(s.query, p, arg)
			}
		}
		if err := s.bindValue(idx, arg); err != nil {
			return err
		}
	}
	s.bound = true
	return nil
}

// checkBindType panics unless arg's type is exactly the placeholder's
// annotated type. A nil or single-level pointer argument is checked
// against its element type; nil binds NULL and is always permitted.
func checkBindType(query string, p ParamInfo, arg any) {
	if arg == nil {
		return
	}
	rv := reflect.ValueOf(arg)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
		arg = rv.Interface()
	}

	ok := false
	switch p.Type {
	case ParamBool:
		ok = rv.Kind() == reflect.Bool
	case ParamInt:
		ok = rv.Kind() == reflect.Int
	case ParamInt8:
		ok = rv.Kind() == reflect.Int8
	case ParamInt16:
		ok = rv.Kind() == reflect.Int16
	case ParamInt32:
		ok = rv.Kind() == reflect.Int32
	case ParamInt64:
		ok = rv.Kind() == reflect.Int64
	case ParamUint:
		ok = rv.Kind() == reflect.Uint
	case ParamUint8:
		ok = rv.Kind() == reflect.Uint8
	case ParamUint16:
		ok = rv.Kind() == reflect.Uint16
	case ParamUint32:
		ok = rv.Kind() == reflect.Uint32
	case ParamUint64:
		ok = rv.Kind() == reflect.Uint64
	case ParamFloat32:
		ok = rv.Kind() == reflect.Float32
	case ParamFloat64:
		ok = rv.Kind() == reflect.Float64
	case ParamText:
		// Named string kinds (string-backed enums) and
		// TextMarshalers store their text form.
		_, isText := arg.(Text)
		_, isMarshaler := arg.(encoding.TextMarshaler)
		ok = rv.Kind() == reflect.String || isText || isMarshaler
	case ParamBytes:
		ok = rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8
	case ParamBlob:
		_, isBlob := arg.(Blob)
		ok = isBlob || rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8
	}
	if !ok {
		panic(fmt.Sprintf("sqlite.Bind: placeholder %d declares %v, got %T (%s)", p.Ordinal, p.Type, arg, query))
	}
}

func (s *Stmt) bindValue(ordinal int, arg any) error {
	var err error
	switch v := arg.(type) {
	case nil:
		err = s.stmt.BindNull(ordinal)
	case bool:
		n := int64(0)
		if v {
			n = 1
		}
		err = s.stmt.BindInt64(ordinal, n)
	case int:
		err = s.stmt.BindInt64(ordinal, int64(v))
	case int8:
		err = s.stmt.BindInt64(ordinal, int64(v))
	case int16:
		err = s.stmt.BindInt64(ordinal, int64(v))
	case int32:
		err = s.stmt.BindInt64(ordinal, int64(v))
	case int64:
		err = s.stmt.BindInt64(ordinal, v)
	case uint:
		if uint64(v) > math.MaxInt64 {
			return fmt.Errorf("sqlite.Bind: uint %d overflows INTEGER column range", v)
		}
		err = s.stmt.BindInt64(ordinal, int64(v))
	case uint8:
		err = s.stmt.BindInt64(ordinal, int64(v))
	case uint16:
		err = s.stmt.BindInt64(ordinal, int64(v))
	case uint32:
		err = s.stmt.BindInt64(ordinal, int64(v))
	case uint64:
		if v > math.MaxInt64 {
			return fmt.Errorf("sqlite.Bind: uint64 %d overflows INTEGER column range", v)
		}
		err = s.stmt.BindInt64(ordinal, int64(v))
	case float32:
		err = s.stmt.BindDouble(ordinal, float64(v))
	case float64:
		err = s.stmt.BindDouble(ordinal, v)
	case string:
		err = s.stmt.BindText64(ordinal, v)
	case []byte:
		err = s.stmt.BindBlob64(ordinal, v)
	case Text:
		err = s.stmt.BindText64(ordinal, v.String())
	case Blob:
		err = s.stmt.BindBlob64(ordinal, v.Bytes())
	default:
		return s.bindReflect(ordinal, arg)
	}
	return s.conn.reserr("Bind", s.query, err)
}

// bindReflect handles the shapes the type switch cannot: pointers
// (optionals), named scalar kinds (enums), fixed byte arrays, and
// TextMarshalers.
func (s *Stmt) bindReflect(ordinal int, arg any) error {
	if m, ok := arg.(encoding.TextMarshaler); ok {
		text, err := m.MarshalText()
		if err != nil {
			return fmt.Errorf("sqlite.Bind: %T.MarshalText: %w", arg, err)
		}
		return s.conn.reserr("Bind", s.query, s.stmt.BindText64(ordinal, string(text)))
	}
	rv := reflect.ValueOf(arg)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return s.conn.reserr("Bind", s.query, s.stmt.BindNull(ordinal))
		}
		return s.bindValue(ordinal, rv.Elem().Interface())
	case reflect.Bool:
		return s.bindValue(ordinal, rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return s.bindValue(ordinal, rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return s.bindValue(ordinal, rv.Uint())
	case reflect.Float32, reflect.Float64:
		return s.bindValue(ordinal, rv.Float())
	case reflect.String:
		return s.bindValue(ordinal, rv.String())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return s.bindValue(ordinal, rv.Bytes())
		}
	case reflect.Array:
		// fixed byte arrays bind as TEXT
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return s.conn.reserr("Bind", s.query, s.stmt.BindText64(ordinal, string(b)))
		}
	}
	return fmt.Errorf("sqlite.Bind: unsupported value type %T", arg)
}

// Exec binds args and steps the statement exactly once, expecting it
// to produce no rows. A statement that produces a row returns
// ErrUnexpectedRow rather than discarding the row silently.
func (s *Stmt) Exec(args ...any) error {
	if s.finalized {
		s.misuse("Exec")
	}
	if !s.bound || len(args) > 0 {
		if err := s.Bind(args...); err != nil {
			return err
		}
	}
	start := time.Now()
	row, _, _, err := s.stmt.StepResult()
	err = s.conn.reserr("Exec", s.query, err)
	s.conn.tracedExec(s.query, start, err)
	if err != nil {
		return err
	}
	if row {
		return ErrUnexpectedRow
	}
	return nil
}

// Step advances the statement's cursor by one row. It reports true
// while a row is available and false once the statement is done.
func (s *Stmt) Step() (row bool, err error) {
	if s.finalized {
		s.misuse("Step")
	}
	row, err = s.stmt.Step()
	return row, s.conn.reserr("Step", s.query, err)
}

// Reset rewinds the statement's cursor and clears all bound
// parameters, readying it for a fresh Bind. Resetting and rebinding
// avoids re-parsing the query and is the main performance lever for
// bulk operations.
func (s *Stmt) Reset() error {
	if s.finalized {
		s.misuse("Reset")
	}
	s.bound = false
	return s.conn.reserr("Reset", s.query, s.stmt.ResetAndClear())
}

// Finalize releases the statement. Persistent statements (from
// Conn.Prepare) are reset and returned to the connection's cache;
// one-off statements release their engine handle and must not be
// used again.
func (s *Stmt) Finalize() error {
	if s.finalized {
		UsesAfterClose.Add("Finalize", 1)
		return nil
	}
	if s.persist {
		s.bound = false
		return s.conn.reserr("Finalize", s.query, s.stmt.ResetAndClear())
	}
	s.finalized = true
	return s.conn.reserr("Finalize", s.query, s.stmt.Finalize())
}
