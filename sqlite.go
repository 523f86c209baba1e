// Package sqlite provides a typed interface to SQLite databases.
//
// This driver requires a file: URI always be used to open a database.
// For details see https://sqlite.org/c3ref/open.html#urifilenames.
//
// # Typed placeholders
//
// Query text may annotate any placeholder with the Go type the bound
// value must have:
//
//	stmt, err := conn.Prepare("SELECT id, name, age FROM user WHERE id = ?{int64}")
//
// The annotation is stripped before the query reaches SQLite; the
// engine sees its native "?" (or ":name", "@name", "$name") syntax.
// Binding a value of any other type panics, as does an arity mismatch:
// queries are fixed program text, so a disagreement between a query
// and its arguments is a bug in the program, not a runtime condition.
// Bare placeholders carry no annotation and accept any supported value.
//
// # Typed rows
//
// Result rows decode positionally into Go values:
//
//	type user struct {
//		ID   int64
//		Name string
//		Age  uint8
//	}
//	u, err := sqlite.QueryRow[user](conn, "SELECT id, name, age FROM user WHERE id = ?{int64}", 20)
//
// Field i of the destination struct maps to column i of the result
// set. Pointer fields decode NULL to nil. See Iter, One and All for
// statement-level access, and Rows for the decoding rules.
//
// # Memory Mode
//
// In-memory databases are popular for tests.
// Use the "memdb" VFS (*not* the legacy in-memory modes):
//
//	file:/dbname?vfs=memdb
//
// Use a different dbname for each memory database opened.
package sqlite

import (
	"errors"
	"expvar"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sqltyped/sqlite/sqliteh"
)

// Open is the function used to connect to the SQLite engine.
// The cgosqlite implementation is installed by default when built
// with cgo. It is a variable so alternative engine bindings can be
// substituted.
var Open sqliteh.OpenFunc = func(string, sqliteh.OpenFlags, string) (sqliteh.DB, error) {
	return nil, fmt.Errorf("cgosqlite.Open is missing")
}

var maxConnID atomic.Int32

// UsesAfterClose is a metric that is incremented every time an operation is
// attempted on a connection or statement after Close/Finalize has already
// been called. The keys are internal identifiers for the code path that
// incremented a counter.
var UsesAfterClose expvar.Map

// ErrClosed is returned when an operation is attempted on a connection
// after Close has already been called.
var ErrClosed = errors.New("sqlite: already closed")

// ErrNoRows is returned by One and QueryRow when the query matches no rows.
var ErrNoRows = errors.New("sqlite: no rows in result set")

// ErrUnexpectedRow is returned by Exec when a statement expected to
// produce no rows produces one. The row is not consumed silently;
// callers wanting the row should use a query method.
var ErrUnexpectedRow = errors.New("sqlite: exec statement returned a row")

// Diagnostics is an optional out-of-band error channel.
//
// A sink attached with Conn.CollectDiagnostics is populated with the
// engine's extended result code and message on every failure path that
// reaches the engine. Purely local validation failures (arity or type
// mismatches) never reach the engine and leave the sink untouched.
// The sink is advisory, supplementary to the returned error.
type Diagnostics struct {
	Code sqliteh.Code // extended result code of the last engine failure
	Msg  string       // sqlite3_errmsg at the time of the failure
}

func (d *Diagnostics) String() string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%v: %s", d.Code, d.Msg)
}

// Error is an error produced by SQLite.
type Error struct {
	Code  sqliteh.Code // SQLite extended error code (SQLITE_OK is an invalid value)
	Loc   string       // method name that generated the error
	Query string       // original SQL query text
	Msg   string       // value of sqlite3_errmsg
}

func (err Error) Error() string {
	b := new(strings.Builder)
	b.WriteString("sqlite")
	if err.Loc != "" {
		b.WriteByte('.')
		b.WriteString(err.Loc)
	}
	b.WriteString(": ")
	b.WriteString(err.Code.String())
	if err.Msg != "" {
		b.WriteString(": ")
		b.WriteString(err.Msg)
	}
	if err.Query != "" {
		b.WriteString(" (")
		b.WriteString(err.Query)
		b.WriteByte(')')
	}
	return b.String()
}

// Conn is a single SQLite database connection.
//
// A Conn is not safe for concurrent use; either confine each Conn to
// one goroutine (see sqlitepool) or open the database in serialized
// threading mode and accept the engine's internal locking cost.
type Conn struct {
	db     sqliteh.DB
	id     sqliteh.TraceConnID
	tracer sqliteh.Tracer
	diags  *Diagnostics

	stmts  map[string]*Stmt // persistent statements, by original query text
	closed atomic.Bool
}

// OpenConn opens a connection to the database identified by the
// file: URI. With no flags, sqliteh.OpenFlagsDefault is used
// (read-write-create, WAL, URI parsing, per-connection threading).
func OpenConn(uri string, flags ...sqliteh.OpenFlags) (*Conn, error) {
	openFlags := sqliteh.OpenFlagsDefault
	if len(flags) > 0 {
		openFlags = 0
		for _, f := range flags {
			openFlags |= f
		}
	}
	db, err := Open(uri, openFlags, "")
	if err != nil {
		e := &Error{Loc: "OpenConn", Query: uri}
		if ec, ok := err.(sqliteh.ErrCode); ok {
			e.Code = sqliteh.Code(ec)
		}
		if db != nil {
			// Surprisingly, a failed open can return a handle.
			// It holds the error message; close it after reading.
			e.Msg = db.ErrMsg()
			db.Close()
		}
		return nil, e
	}
	return &Conn{
		db:    db,
		id:    sqliteh.TraceConnID(maxConnID.Add(1)),
		stmts: make(map[string]*Stmt),
	}, nil
}

// ID identifies the connection to a Tracer. IDs are unique within a
// process and stable for the life of the connection.
func (c *Conn) ID() sqliteh.TraceConnID { return c.id }

// SetTracer attaches t to the connection. Statement executions report
// their query text, duration and outcome to t. Passing nil removes
// the tracer.
func (c *Conn) SetTracer(t sqliteh.Tracer) { c.tracer = t }

// CollectDiagnostics attaches d to the connection. Subsequent engine
// failures on this connection populate d with the extended result
// code and error message. Passing nil detaches the sink.
func (c *Conn) CollectDiagnostics(d *Diagnostics) { c.diags = d }

// Close finalizes all persistent statements and closes the
// connection. Close is a no-op after the first call.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		UsesAfterClose.Add("Close", 1)
		return nil
	}
	for q, s := range c.stmts {
		s.stmt.Finalize()
		s.finalized = true
		delete(c.stmts, q)
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// reserr wraps an engine error with location and query context, and
// populates the connection's diagnostics sink if one is attached.
func (c *Conn) reserr(loc, query string, err error) error {
	if err == nil {
		return nil
	}
	ec, ok := err.(sqliteh.ErrCode)
	if !ok {
		// Engine bindings only produce sqliteh.ErrCode. Anything
		// else here is a version-compatibility bug in the mapping
		// tables, not a runtime condition.
		panic(fmt.Sprintf("sqlite.%s: non-engine error from engine call: %v", loc, err))
	}
	e := &Error{
		Code:  sqliteh.Code(ec),
		Loc:   loc,
		Query: query,
		Msg:   c.db.ErrMsg(),
	}
	if !e.Code.Known() {
		// A code missing from the result-code tables means this
		// package and the linked library disagree about the ABI.
		panic(fmt.Sprintf("sqlite.%s: unknown result code %d from engine: %s", loc, int(e.Code), e.Msg))
	}
	if c.diags != nil {
		c.diags.Code = e.Code
		c.diags.Msg = e.Msg
	}
	return e
}

// Prepare returns a prepared statement for query, parsing any
// placeholder type annotations. Statements are prepared with the
// persistent flag and cached on the connection by query text: a
// second Prepare of the same text returns the cached statement,
// reset and ready to bind. Finalize returns a cached statement to
// the cache; Conn.Close releases it.
//
// Because the cached statement is shared, preparing a query while an
// earlier statement for the same text is mid-iteration rewinds that
// iteration. Finish or Finalize a statement before re-preparing its
// query text on the same connection.
func (c *Conn) Prepare(query string) (*Stmt, error) {
	return c.prepare(query, true)
}

func (c *Conn) prepare(query string, persist bool) (*Stmt, error) {
	if c.closed.Load() {
		UsesAfterClose.Add("Prepare", 1)
		return nil, ErrClosed
	}
	if s, ok := c.stmts[query]; ok {
		if err := s.stmt.ResetAndClear(); err != nil {
			return nil, c.reserr("Prepare", query, err)
		}
		s.bound = false
		return s, nil
	}
	norm, params := parseQuery(query)
	var flags sqliteh.PrepareFlags
	if persist {
		flags = sqliteh.SQLITE_PREPARE_PERSISTENT
	}
	cs, rem, err := c.db.Prepare(norm, flags)
	if err != nil {
		return nil, c.reserr("Prepare", query, err)
	}
	if cs == nil {
		return nil, fmt.Errorf("sqlite.Prepare: query %q contains no statement", query)
	}
	if strings.TrimSpace(rem) != "" {
		cs.Finalize()
		return nil, fmt.Errorf("sqlite.Prepare: query has trailing text %q (use ExecScript for multiple statements)", rem)
	}
	s := &Stmt{
		conn:    c,
		stmt:    cs,
		query:   query,
		params:  params,
		persist: persist,
	}
	if persist {
		c.stmts[query] = s
	}
	return s, nil
}

// Exec executes a query that produces no result rows, such as INSERT,
// UPDATE or DDL. If the statement produces a row, Exec returns
// ErrUnexpectedRow.
func (c *Conn) Exec(query string, args ...any) error {
	s, err := c.Prepare(query)
	if err != nil {
		return err
	}
	defer s.Finalize()
	return s.Exec(args...)
}

// ExecScript executes all statements in queries, separated by
// semicolons, stopping at the first error. Placeholder annotations
// are not recognized in scripts; no values can be bound.
//
// It is recommended you wrap your script in a BEGIN; ... COMMIT; block.
func (c *Conn) ExecScript(queries string) error {
	if c.closed.Load() {
		UsesAfterClose.Add("ExecScript", 1)
		return ErrClosed
	}
	start := time.Now()
	err := c.execScript(queries)
	if c.tracer != nil {
		c.tracer.Query(c.id, queries, time.Since(start), err)
	}
	return err
}

func (c *Conn) execScript(queries string) error {
	for {
		queries = strings.TrimSpace(queries)
		if queries == "" {
			return nil
		}
		cs, rem, err := c.db.Prepare(queries, 0)
		if err != nil {
			return c.reserr("ExecScript", queries, err)
		}
		queries = rem
		if cs == nil {
			// comment or whitespace-only tail
			continue
		}
		_, err = cs.Step()
		cs.Finalize()
		if err != nil {
			return c.reserr("ExecScript", queries, err)
		}
	}
}

// LastInsertRowid reports the rowid of the most recent successful
// INSERT on this connection.
func (c *Conn) LastInsertRowid() int64 { return c.db.LastInsertRowid() }

// Changes reports the number of rows modified by the most recent
// statement on this connection.
func (c *Conn) Changes() int { return c.db.Changes() }

// TotalChanges reports the number of rows modified since the
// connection was opened.
func (c *Conn) TotalChanges() int { return c.db.TotalChanges() }

// BusyTimeout is sqlite3_busy_timeout. It bounds how long a step
// blocks on the engine's busy/lock conditions before it fails with a
// busy error kind; there is no automatic retry beyond it.
func (c *Conn) BusyTimeout(d time.Duration) {
	c.db.BusyTimeout(d)
}

// Pragma executes "PRAGMA name" and returns the single result value
// as text.
func (c *Conn) Pragma(name string) (string, error) {
	s, err := c.Prepare("PRAGMA " + name)
	if err != nil {
		return "", err
	}
	defer s.Finalize()
	row, err := s.Step()
	if err != nil {
		return "", err
	}
	if !row {
		return "", nil
	}
	return s.stmt.ColumnText(0), nil
}

// SetPragma executes "PRAGMA name = arg". Some pragmas echo a result
// row; it is discarded.
func (c *Conn) SetPragma(name, arg string) error {
	s, err := c.Prepare("PRAGMA " + name + " = " + arg)
	if err != nil {
		return err
	}
	defer s.Finalize()
	_, err = s.Step()
	return err
}

// CreateModule registers mod as a virtual table module under name.
// See the Module documentation for the table contract.
func (c *Conn) CreateModule(name string, mod Module) error {
	if c.closed.Load() {
		UsesAfterClose.Add("CreateModule", 1)
		return ErrClosed
	}
	return c.reserr("CreateModule", name, c.db.CreateModule(name, &moduleBridge{mod: mod, conn: c}))
}

// tracedExec reports one statement execution to the tracer, if any.
func (c *Conn) tracedExec(query string, start time.Time, err error) {
	if c.tracer != nil {
		c.tracer.Query(c.id, query, time.Since(start), err)
	}
}
