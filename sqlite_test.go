package sqlite

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sqltyped/sqlite/sqliteh"
)

func openTestConn(t testing.TB) *Conn {
	t.Helper()
	conn, err := OpenConn("file:" + t.TempDir() + "/test.db")
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.ExecScript("PRAGMA journal_mode=WAL; PRAGMA synchronous=OFF;"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestOpenConn(t *testing.T) {
	conn := openTestConn(t)
	journalMode, err := conn.Pragma("journal_mode")
	if err != nil {
		t.Fatal(err)
	}
	if want := "wal"; journalMode != want {
		t.Errorf("journal_mode=%q, want %q", journalMode, want)
	}
	if err := conn.Close(); err != nil {
		t.Fatal(err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestOpenConnMissingFile(t *testing.T) {
	var diags Diagnostics
	conn, err := OpenConn("file:"+t.TempDir()+"/does-not-exist.db", sqliteh.SQLITE_OPEN_READONLY|sqliteh.SQLITE_OPEN_URI)
	if err == nil {
		conn.CollectDiagnostics(&diags)
		conn.Close()
		t.Fatal("open of missing file with READONLY succeeded")
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("error %v is not *Error", err)
	}
	if e.Code.Primary() != sqliteh.SQLITE_CANTOPEN {
		t.Errorf("error code %v, want primary SQLITE_CANTOPEN", e.Code)
	}
	if e.Msg == "" {
		t.Error("diagnostic message is empty")
	}
}

func TestExec(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.Exec("CREATE TABLE t (c)"); err != nil {
		t.Fatal(err)
	}
	if err := conn.Exec("INSERT INTO t (c) VALUES (?{int64})", int64(7)); err != nil {
		t.Fatal(err)
	}
	if got := conn.LastInsertRowid(); got != 1 {
		t.Errorf("LastInsertRowid=%d, want 1", got)
	}
	if got := conn.Changes(); got != 1 {
		t.Errorf("Changes=%d, want 1", got)
	}

	// A statement that produces a row is the caller's error.
	err := conn.Exec("SELECT c FROM t")
	if !errors.Is(err, ErrUnexpectedRow) {
		t.Errorf("Exec of SELECT: err=%v, want ErrUnexpectedRow", err)
	}
}

func TestQueryRowScenario(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.ExecScript(`
		CREATE TABLE user (id INTEGER PRIMARY KEY, name TEXT, age INTEGER);
		INSERT INTO user VALUES (20, 'Vincent', 33);
		INSERT INTO user VALUES (21, 'Julien', 35);
	`); err != nil {
		t.Fatal(err)
	}

	type user struct {
		ID   uint
		Name string
		Age  uint8
	}
	u, err := QueryRow[user](conn, "SELECT id, name, age FROM user WHERE id = ?{usize}", uint(20))
	if err != nil {
		t.Fatal(err)
	}
	want := user{ID: 20, Name: "Vincent", Age: 33}
	if u != want {
		t.Errorf("row = %+v, want %+v", u, want)
	}

	users, err := Query[user](conn, "SELECT id, name, age FROM user ORDER BY id")
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || users[1].Name != "Julien" {
		t.Errorf("all rows = %+v", users)
	}

	_, err = QueryRow[user](conn, "SELECT id, name, age FROM user WHERE id = ?{usize}", uint(99))
	if !errors.Is(err, ErrNoRows) {
		t.Errorf("missing row: err=%v, want ErrNoRows", err)
	}
}

func TestUntypedPlaceholderUnchecked(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.Exec("CREATE TABLE t (c)"); err != nil {
		t.Fatal(err)
	}
	// A bare ? carries no annotation; any supported value binds.
	if err := conn.Exec("INSERT INTO t (c) VALUES (?)", "foobar"); err != nil {
		t.Fatal(err)
	}
	got, err := QueryRow[string](conn, "SELECT c FROM t")
	if err != nil {
		t.Fatal(err)
	}
	if got != "foobar" {
		t.Errorf("c=%q, want %q", got, "foobar")
	}
}

func TestBindArityPanics(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.Exec("CREATE TABLE t (a, b)"); err != nil {
		t.Fatal(err)
	}
	s, err := conn.Prepare("INSERT INTO t (a, b) VALUES (?{int64}, ?{string})")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Finalize()

	defer func() {
		if recover() == nil {
			t.Error("binding 1 argument to 2 placeholders did not panic")
		}
	}()
	s.Bind(int64(1))
}

func TestBindTypePanics(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.Exec("CREATE TABLE t (a)"); err != nil {
		t.Fatal(err)
	}
	s, err := conn.Prepare("INSERT INTO t (a) VALUES (?{int64})")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Finalize()

	defer func() {
		if recover() == nil {
			t.Error("binding string to ?{int64} did not panic")
		}
	}()
	s.Bind("not an int64")
}

func TestResetRebindIdempotent(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.ExecScript(`
		CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT);
		INSERT INTO t VALUES (1, 'one'), (2, 'two');
	`); err != nil {
		t.Fatal(err)
	}
	s, err := conn.Prepare("SELECT v FROM t WHERE id = ?{int64}")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Finalize()

	for i := 0; i < 3; i++ {
		v, err := One[string](s, int64(2))
		if err != nil {
			t.Fatal(err)
		}
		if v != "two" {
			t.Errorf("pass %d: v=%q, want %q", i, v, "two")
		}
		if err := s.Reset(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestPreparedStatementCache(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.Exec("CREATE TABLE t (c)"); err != nil {
		t.Fatal(err)
	}
	const q = "INSERT INTO t (c) VALUES (?{int})"
	s1, err := conn.Prepare(q)
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.Exec(1); err != nil {
		t.Fatal(err)
	}
	s1.Finalize()
	s2, err := conn.Prepare(q)
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Error("persistent statement was not reused from the cache")
	}
	if err := s2.Exec(2); err != nil {
		t.Fatal(err)
	}
	s2.Finalize()

	n, err := QueryRow[int64](conn, "SELECT count(*) FROM t")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("count=%d, want 2", n)
	}
}

func TestUseAfterCloseCounted(t *testing.T) {
	conn, err := OpenConn("file:" + t.TempDir() + "/test.db")
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.Close(); err != nil {
		t.Fatal(err)
	}
	if err := conn.Exec("SELECT 1"); !errors.Is(err, ErrClosed) {
		t.Errorf("Exec after Close: err=%v, want ErrClosed", err)
	}
	if UsesAfterClose.Get("Prepare") == nil {
		t.Error("UsesAfterClose has no Prepare counter")
	}
}

func TestNamedBinding(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.Exec("CREATE TABLE user (id INTEGER PRIMARY KEY, name TEXT)"); err != nil {
		t.Fatal(err)
	}
	s, err := conn.Prepare("INSERT INTO user (id, name) VALUES (:id{int64}, @name{string})")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Finalize()
	if err := s.BindNamed(map[string]any{"id": int64(3), "name": "Ada"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Exec(); err != nil {
		t.Fatal(err)
	}

	name, err := QueryRow[string](conn, "SELECT name FROM user WHERE id = ?{int64}", int64(3))
	if err != nil {
		t.Fatal(err)
	}
	if name != "Ada" {
		t.Errorf("name=%q, want %q", name, "Ada")
	}

	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	err = s.BindNamed(map[string]any{"nope": 1})
	if err == nil || !strings.Contains(err.Error(), "no parameter") {
		t.Errorf("unknown name: err=%v", err)
	}
}

func TestRepeatedNamedPlaceholderBind(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.ExecScript(`
		CREATE TABLE t (a INTEGER, b INTEGER);
		INSERT INTO t VALUES (3, 3), (3, 4);
	`); err != nil {
		t.Fatal(err)
	}
	s, err := conn.Prepare("SELECT a FROM t WHERE a = :v{int64} AND b = :v{int64}")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Finalize()

	// Both occurrences of :v are the engine's parameter 1, so the
	// statement takes a single positional value.
	if got := len(s.Params()); got != 1 {
		t.Fatalf("Params()=%d, want 1", got)
	}
	a, err := One[int64](s, int64(3))
	if err != nil {
		t.Fatal(err)
	}
	if a != 3 {
		t.Errorf("a=%d, want 3", a)
	}
}

func TestDiagnosticsSink(t *testing.T) {
	conn := openTestConn(t)
	var diags Diagnostics
	conn.CollectDiagnostics(&diags)

	_, err := conn.Prepare("SELECT * FROM no_such_table")
	if err == nil {
		t.Fatal("prepare of missing table succeeded")
	}
	if diags.Code == 0 || diags.Msg == "" {
		t.Errorf("diagnostics not populated: %+v", diags)
	}

	// Local validation failures never reach the engine and must
	// leave the sink untouched.
	diags = Diagnostics{}
	s, err := conn.Prepare("SELECT ?{int64}")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Finalize()
	func() {
		defer func() { recover() }()
		s.Bind("wrong type")
	}()
	if diags.Code != 0 || diags.Msg != "" {
		t.Errorf("diagnostics populated by local validation failure: %+v", diags)
	}
}

func TestTracerReportsQueries(t *testing.T) {
	conn := openTestConn(t)
	tr := &recordingTracer{}
	conn.SetTracer(tr)
	if err := conn.Exec("CREATE TABLE t (c)"); err != nil {
		t.Fatal(err)
	}
	if len(tr.queries) == 0 {
		t.Error("tracer saw no queries")
	}
}

type recordingTracer struct {
	queries []string
}

func (t *recordingTracer) Query(id sqliteh.TraceConnID, query string, d time.Duration, err error) {
	t.queries = append(t.queries, query)
}

func (t *recordingTracer) BeginTx(id sqliteh.TraceConnID, readOnly bool, err error) {}
func (t *recordingTracer) Commit(id sqliteh.TraceConnID, err error)                {}
func (t *recordingTracer) Rollback(id sqliteh.TraceConnID, err error)              {}
