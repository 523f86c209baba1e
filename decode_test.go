package sqlite

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestRoundTripScalars(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.Exec("CREATE TABLE t (c)"); err != nil {
		t.Fatal(err)
	}

	roundTrip := func(name, annot string, bind any, query func() (any, error)) {
		t.Run(name, func(t *testing.T) {
			if err := conn.Exec("DELETE FROM t"); err != nil {
				t.Fatal(err)
			}
			if err := conn.Exec("INSERT INTO t (c) VALUES (?{"+annot+"})", bind); err != nil {
				t.Fatal(err)
			}
			got, err := query()
			if err != nil {
				t.Fatal(err)
			}
			if got != bind {
				t.Errorf("got %v (%T), want %v (%T)", got, got, bind, bind)
			}
		})
	}

	const sel = "SELECT c FROM t"
	roundTrip("bool", "bool", true, func() (any, error) { return QueryRow[bool](conn, sel) })
	roundTrip("int", "int", int(-12), func() (any, error) { return QueryRow[int](conn, sel) })
	roundTrip("int8", "int8", int8(-128), func() (any, error) { return QueryRow[int8](conn, sel) })
	roundTrip("int64", "int64", int64(1<<62), func() (any, error) { return QueryRow[int64](conn, sel) })
	roundTrip("uint16", "uint16", uint16(65535), func() (any, error) { return QueryRow[uint16](conn, sel) })
	roundTrip("uint64", "uint64", uint64(1<<62), func() (any, error) { return QueryRow[uint64](conn, sel) })
	roundTrip("float32", "float32", float32(0.5), func() (any, error) { return QueryRow[float32](conn, sel) })
	roundTrip("float64", "float64", 3.140625, func() (any, error) { return QueryRow[float64](conn, sel) })
	roundTrip("string", "string", "héllo", func() (any, error) { return QueryRow[string](conn, sel) })
}

func TestRoundTripBytes(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.Exec("CREATE TABLE t (c)"); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x00, 0x01, 0xff, 0xfe}
	if err := conn.Exec("INSERT INTO t (c) VALUES (?{bytes})", want); err != nil {
		t.Fatal(err)
	}
	got, err := QueryRow[[]byte](conn, "SELECT c FROM t")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestRoundTripWrappers(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.Exec("CREATE TABLE t (a, b)"); err != nil {
		t.Fatal(err)
	}
	if err := conn.Exec("INSERT INTO t (a, b) VALUES (?{text}, ?{blob})",
		TextString("hello"), BlobBytes([]byte{1, 2, 3})); err != nil {
		t.Fatal(err)
	}

	type row struct {
		A Text
		B Blob
	}
	r, err := QueryRow[row](conn, "SELECT a, b FROM t")
	if err != nil {
		t.Fatal(err)
	}
	if r.A.String() != "hello" {
		t.Errorf("a=%q, want %q", r.A.String(), "hello")
	}
	if !bytes.Equal(r.B.Bytes(), []byte{1, 2, 3}) {
		t.Errorf("b=%x, want 010203", r.B.Bytes())
	}

	// TEXT binds through the text binder, BLOB through the blob
	// binder; the engine's storage classes must reflect that.
	type typeofRow struct {
		A string
		B string
	}
	tr, err := QueryRow[typeofRow](conn, "SELECT typeof(a), typeof(b) FROM t")
	if err != nil {
		t.Fatal(err)
	}
	if tr.A != "text" || tr.B != "blob" {
		t.Errorf("typeof = %+v, want text/blob", tr)
	}

	// NULL decodes to empty wrappers.
	if err := conn.Exec("DELETE FROM t"); err != nil {
		t.Fatal(err)
	}
	if err := conn.Exec("INSERT INTO t (a, b) VALUES (NULL, NULL)"); err != nil {
		t.Fatal(err)
	}
	r, err = QueryRow[row](conn, "SELECT a, b FROM t")
	if err != nil {
		t.Fatal(err)
	}
	if r.A.Len() != 0 || r.B.Len() != 0 {
		t.Errorf("NULL wrappers not empty: %d, %d", r.A.Len(), r.B.Len())
	}
}

func TestOptionalRoundTrip(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY, v INTEGER)"); err != nil {
		t.Fatal(err)
	}
	var absent *int64
	if err := conn.Exec("INSERT INTO t (id, v) VALUES (1, ?{int64})", absent); err != nil {
		t.Fatal(err)
	}
	seven := int64(7)
	if err := conn.Exec("INSERT INTO t (id, v) VALUES (2, ?{int64})", &seven); err != nil {
		t.Fatal(err)
	}

	got, err := QueryRow[*int64](conn, "SELECT v FROM t WHERE id = 1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("NULL decoded to %d, want nil", *got)
	}
	got, err = QueryRow[*int64](conn, "SELECT v FROM t WHERE id = 2")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || *got != 7 {
		t.Errorf("got %v, want 7", got)
	}

	// A zero INTEGER is distinct from NULL: storage class, not
	// value, decides presence.
	if err := conn.Exec("INSERT INTO t (id, v) VALUES (3, 0)"); err != nil {
		t.Fatal(err)
	}
	got, err = QueryRow[*int64](conn, "SELECT v FROM t WHERE id = 3")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || *got != 0 {
		t.Errorf("zero decoded to %v, want present 0", got)
	}
}

func TestByteArrayExact(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.ExecScript(`
		CREATE TABLE t (c);
		INSERT INTO t VALUES (x'0102030405060708');
	`); err != nil {
		t.Fatal(err)
	}

	got, err := QueryRow[[8]byte](conn, "SELECT c FROM t")
	if err != nil {
		t.Fatal(err)
	}
	if got != [8]byte{1, 2, 3, 4, 5, 6, 7, 8} {
		t.Errorf("got %x", got)
	}

	// Too small a target must fail, not truncate.
	if _, err := QueryRow[[4]byte](conn, "SELECT c FROM t"); err == nil {
		t.Error("8 bytes into [4]byte succeeded")
	}
	// Too large is equally a mismatch without a sentinel.
	if _, err := QueryRow[[16]byte](conn, "SELECT c FROM t"); err == nil {
		t.Error("8 bytes into [16]byte succeeded")
	}
}

func TestByteArraySentinel(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.ExecScript(`
		CREATE TABLE t (c);
		INSERT INTO t VALUES (x'01020304050607');
	`); err != nil {
		t.Fatal(err)
	}

	type row struct {
		C [8]byte `sqlite:"nullterm"`
	}
	// One byte shorter than the array: the sentinel lands on the
	// last slot.
	r, err := QueryRow[row](conn, "SELECT c FROM t")
	if err != nil {
		t.Fatal(err)
	}
	if want := [8]byte{1, 2, 3, 4, 5, 6, 7, 0}; r.C != want {
		t.Errorf("got %x, want %x", r.C, want)
	}

	type tight struct {
		C [7]byte `sqlite:"nullterm"`
	}
	if _, err := QueryRow[tight](conn, "SELECT c FROM t"); err == nil {
		t.Error("7 bytes into [7]byte with sentinel succeeded, no room for terminator")
	}
}

func TestDecodeNarrowingOverflow(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.ExecScript(`
		CREATE TABLE t (id INTEGER PRIMARY KEY, v);
		INSERT INTO t VALUES (1, 300);
		INSERT INTO t VALUES (2, -1);
	`); err != nil {
		t.Fatal(err)
	}

	if _, err := QueryRow[uint8](conn, "SELECT v FROM t WHERE id = 1"); err == nil {
		t.Error("300 into uint8 succeeded")
	}
	if _, err := QueryRow[int8](conn, "SELECT v FROM t WHERE id = 1"); err == nil {
		t.Error("300 into int8 succeeded")
	}
	if _, err := QueryRow[uint32](conn, "SELECT v FROM t WHERE id = 2"); err == nil {
		t.Error("-1 into uint32 succeeded")
	}
	if got, err := QueryRow[int16](conn, "SELECT v FROM t WHERE id = 1"); err != nil || got != 300 {
		t.Errorf("300 into int16: got %d, err %v", got, err)
	}
}

type mood int8

const (
	moodCalm mood = iota
	moodHappy
)

type color struct{ name string }

func (c color) MarshalText() ([]byte, error) { return []byte(c.name), nil }
func (c *color) UnmarshalText(b []byte) error {
	switch s := string(b); s {
	case "red", "green", "blue":
		c.name = s
		return nil
	default:
		return fmt.Errorf("unknown color %q", s)
	}
}

func TestEnumRoundTrip(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.Exec("CREATE TABLE t (m, c)"); err != nil {
		t.Fatal(err)
	}
	// int-backed enums store their ordinal, string-backed enums
	// their marshaled text.
	if err := conn.Exec("INSERT INTO t (m, c) VALUES (?{int8}, ?{string})",
		moodHappy, color{name: "green"}); err != nil {
		t.Fatal(err)
	}

	type row struct {
		M mood
		C color
	}
	r, err := QueryRow[row](conn, "SELECT m, c FROM t")
	if err != nil {
		t.Fatal(err)
	}
	if r.M != moodHappy || r.C.name != "green" {
		t.Errorf("got %+v", r)
	}
}

func TestEnumUnknownStoredValue(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.ExecScript(`
		CREATE TABLE t (c);
		INSERT INTO t VALUES ('chartreuse');
	`); err != nil {
		t.Fatal(err)
	}
	_, err := QueryRow[color](conn, "SELECT c FROM t")
	if err == nil || !strings.Contains(err.Error(), "unknown color") {
		t.Errorf("unknown stored enum value: err=%v", err)
	}
}

func TestPointerToStructTarget(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.ExecScript(`
		CREATE TABLE user (id INTEGER PRIMARY KEY, name TEXT);
		INSERT INTO user VALUES (1, 'Vincent');
	`); err != nil {
		t.Fatal(err)
	}
	type user struct {
		ID   int64
		Name string
	}
	u, err := QueryRow[*user](conn, "SELECT id, name FROM user")
	if err != nil {
		t.Fatal(err)
	}
	if u == nil || u.ID != 1 || u.Name != "Vincent" {
		t.Errorf("got %+v", u)
	}
}

func TestDecodeColumnCountMismatch(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.ExecScript(`
		CREATE TABLE t (a, b, c);
		INSERT INTO t VALUES (1, 2, 3);
	`); err != nil {
		t.Fatal(err)
	}
	type twoFields struct {
		A int64
		B int64
	}
	if _, err := QueryRow[twoFields](conn, "SELECT a, b, c FROM t"); err == nil {
		t.Error("3 columns into 2 fields succeeded")
	}
	if _, err := QueryRow[int64](conn, "SELECT a, b FROM t"); err == nil {
		t.Error("2 columns into scalar succeeded")
	}
}

func TestScan(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.ExecScript(`
		CREATE TABLE t (a, b, c, d);
		INSERT INTO t VALUES (42, 0.5, 'hi', x'ff00');
	`); err != nil {
		t.Fatal(err)
	}
	s, err := conn.Prepare("SELECT a, b, c, d FROM t")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Finalize()
	row, err := s.Step()
	if err != nil {
		t.Fatal(err)
	}
	if !row {
		t.Fatal("no row")
	}
	var (
		a int64
		b float64
		c string
		d []byte
	)
	if err := s.Scan(&a, &b, &c, &d); err != nil {
		t.Fatal(err)
	}
	if a != 42 || b != 0.5 || c != "hi" || !bytes.Equal(d, []byte{0xff, 0}) {
		t.Errorf("scanned %v %v %q %x", a, b, c, d)
	}
}

func TestIterLargeResult(t *testing.T) {
	conn := openTestConn(t)
	if err := conn.Exec("CREATE TABLE t (n INTEGER)"); err != nil {
		t.Fatal(err)
	}
	ins, err := conn.Prepare("INSERT INTO t (n) VALUES (?{int})")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 1000; i++ {
		if err := ins.Exec(i); err != nil {
			t.Fatal(err)
		}
		if err := ins.Reset(); err != nil {
			t.Fatal(err)
		}
	}
	ins.Finalize()

	s, err := conn.Prepare("SELECT n FROM t ORDER BY n")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Finalize()
	rows, err := Iter[int](s)
	if err != nil {
		t.Fatal(err)
	}
	want := 0
	for {
		n, ok, err := rows.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		if n != want {
			t.Fatalf("row %d: got %d", want, n)
		}
		want++
	}
	if want != 1000 {
		t.Errorf("iterated %d rows, want 1000", want)
	}
}
