// Package sqliteh defines the boundary with the SQLite C library:
// result codes, flag bitmasks, storage classes, and Go interfaces
// mirroring the sqlite3*, sqlite3_stmt*, and sqlite3_blob* objects.
//
// Constants keep their SQLITE_ names so they show up in search.
package sqliteh

import (
	"sync"
	"time"
)

// OpenFunc is sqlite3_open_v2.
//
// Surprisingly: an error opening the DB can return a non-nil handle.
// Call Close on it.
//
// https://sqlite.org/c3ref/open.html
type OpenFunc func(filename string, flags OpenFlags, vfs string) (DB, error)

// DB is an sqlite3* database connection object.
// https://sqlite.org/c3ref/sqlite3.html
type DB interface {
	// Close is sqlite3_close.
	// https://sqlite.org/c3ref/close.html
	Close() error
	// ErrMsg is sqlite3_errmsg.
	// https://sqlite.org/c3ref/errcode.html
	ErrMsg() string
	// ExtendedErrCode is sqlite3_extended_errcode.
	// https://sqlite.org/c3ref/errcode.html
	ExtendedErrCode() Code
	// Changes is sqlite3_changes.
	// https://sqlite.org/c3ref/changes.html
	Changes() int
	// TotalChanges is sqlite3_total_changes.
	// https://sqlite.org/c3ref/total_changes.html
	TotalChanges() int
	// LastInsertRowid is sqlite3_last_insert_rowid.
	// https://sqlite.org/c3ref/last_insert_rowid.html
	LastInsertRowid() int64
	// Prepare is sqlite3_prepare_v3.
	// https://www.sqlite.org/c3ref/prepare.html
	Prepare(query string, prepFlags PrepareFlags) (stmt Stmt, remainingQuery string, err error)
	// BusyTimeout is sqlite3_busy_timeout.
	// https://www.sqlite.org/c3ref/busy_timeout.html
	BusyTimeout(time.Duration)
	// OpenBlob is sqlite3_blob_open.
	// readWrite=false opens the handle for reading only.
	// https://sqlite.org/c3ref/blob_open.html
	OpenBlob(dbName, table, column string, rowid int64, readWrite bool) (Blob, error)
	// CreateModule is sqlite3_create_module_v2.
	// https://sqlite.org/c3ref/create_module.html
	CreateModule(name string, mod Module) error
}

// Stmt is an sqlite3_stmt* prepared statement object.
// https://sqlite.org/c3ref/stmt.html
type Stmt interface {
	// DBHandle is sqlite3_db_handle.
	// https://www.sqlite.org/c3ref/db_handle.html
	DBHandle() DB
	// SQL is sqlite3_sql.
	// https://www.sqlite.org/c3ref/expanded_sql.html
	SQL() string
	// Reset is sqlite3_reset.
	// https://www.sqlite.org/c3ref/reset.html
	Reset() error
	// ClearBindings is sqlite3_clear_bindings.
	// https://www.sqlite.org/c3ref/clear_bindings.html
	ClearBindings() error
	// ResetAndClear is sqlite3_reset + sqlite3_clear_bindings.
	ResetAndClear() error
	// Finalize is sqlite3_finalize.
	// https://sqlite.org/c3ref/finalize.html
	Finalize() error
	// Step is sqlite3_step.
	//	For SQLITE_ROW, Step returns (true, nil).
	//	For SQLITE_DONE, Step returns (false, nil).
	//	For any error, Step returns (false, err).
	// https://www.sqlite.org/c3ref/step.html
	Step() (row bool, err error)
	// StepResult is sqlite3_step + sqlite3_last_insert_rowid + sqlite3_changes.
	// Results follow the same convention as Step.
	StepResult() (row bool, lastInsertRowID, changes int64, err error)

	// BindInt64 is sqlite3_bind_int64.
	// https://sqlite.org/c3ref/bind_blob.html
	BindInt64(col int, val int64) error
	// BindDouble is sqlite3_bind_double.
	// https://sqlite.org/c3ref/bind_blob.html
	BindDouble(col int, val float64) error
	// BindNull is sqlite3_bind_null.
	// https://sqlite.org/c3ref/bind_blob.html
	BindNull(col int) error
	// BindText64 is sqlite3_bind_text64.
	// https://sqlite.org/c3ref/bind_blob.html
	BindText64(col int, val string) error
	// BindBlob64 is sqlite3_bind_blob64.
	// https://sqlite.org/c3ref/bind_blob.html
	BindBlob64(col int, val []byte) error
	// BindZeroBlob64 is sqlite3_bind_zeroblob64.
	// https://sqlite.org/c3ref/bind_blob.html
	BindZeroBlob64(col int, n uint64) error
	// BindParameterCount is sqlite3_bind_parameter_count.
	// https://sqlite.org/c3ref/bind_parameter_count.html
	BindParameterCount() int
	// BindParameterName is sqlite3_bind_parameter_name.
	// https://sqlite.org/c3ref/bind_parameter_count.html
	BindParameterName(col int) string
	// BindParameterIndex is sqlite3_bind_parameter_index.
	// Returns zero if no matching parameter is found.
	// https://sqlite.org/c3ref/bind_parameter_index.html
	BindParameterIndex(name string) int
	// BindParameterIndexSearch calls sqlite3_bind_parameter_index,
	// prepending ':', '@', and '$' until it finds a matching parameter.
	BindParameterIndexSearch(name string) int

	// ColumnCount is sqlite3_column_count.
	// https://sqlite.org/c3ref/column_count.html
	ColumnCount() int
	// ColumnName is sqlite3_column_name.
	// https://sqlite.org/c3ref/column_name.html
	ColumnName(col int) string
	// ColumnType is sqlite3_column_type.
	// It reports the native storage class of the current row's column,
	// before any accessor coercion.
	// https://www.sqlite.org/c3ref/column_blob.html
	ColumnType(col int) ColumnType
	// ColumnInt64 is sqlite3_column_int64.
	// https://sqlite.org/c3ref/column_blob.html
	ColumnInt64(col int) int64
	// ColumnDouble is sqlite3_column_double.
	// https://sqlite.org/c3ref/column_blob.html
	ColumnDouble(col int) float64
	// ColumnText is sqlite3_column_text.
	// https://sqlite.org/c3ref/column_blob.html
	ColumnText(col int) string
	// ColumnBlob is sqlite3_column_blob.
	//
	// WARNING: The returned memory is managed by C and is only valid
	//          until another call is made on this Stmt.
	//
	// https://sqlite.org/c3ref/column_blob.html
	ColumnBlob(col int) []byte
	// ColumnBytes is sqlite3_column_bytes.
	// https://sqlite.org/c3ref/column_blob.html
	ColumnBytes(col int) int
}

// Blob is an sqlite3_blob* incremental I/O handle.
// https://sqlite.org/c3ref/blob.html
type Blob interface {
	// Len is sqlite3_blob_bytes.
	// https://sqlite.org/c3ref/blob_bytes.html
	Len() int
	// ReadAt is sqlite3_blob_read.
	// https://sqlite.org/c3ref/blob_read.html
	ReadAt(p []byte, off int64) error
	// WriteAt is sqlite3_blob_write.
	// https://sqlite.org/c3ref/blob_write.html
	WriteAt(p []byte, off int64) error
	// Reopen is sqlite3_blob_reopen. It moves the handle to a different
	// row of the same table without reallocating engine resources.
	// https://sqlite.org/c3ref/blob_reopen.html
	Reopen(rowid int64) error
	// Close is sqlite3_blob_close.
	// https://sqlite.org/c3ref/blob_close.html
	Close() error
}

// ColumnType are constants for each of the SQLite datatypes.
// https://www.sqlite.org/c3ref/c_blob.html
type ColumnType int

const (
	SQLITE_INTEGER ColumnType = 1
	SQLITE_FLOAT   ColumnType = 2
	SQLITE_TEXT    ColumnType = 3
	SQLITE_BLOB    ColumnType = 4
	SQLITE_NULL    ColumnType = 5
)

var columnTypeStrings = map[ColumnType]string{
	SQLITE_INTEGER: "SQLITE_INTEGER",
	SQLITE_FLOAT:   "SQLITE_FLOAT",
	SQLITE_TEXT:    "SQLITE_TEXT",
	SQLITE_BLOB:    "SQLITE_BLOB",
	SQLITE_NULL:    "SQLITE_NULL",
}

func (t ColumnType) String() string {
	if s, ok := columnTypeStrings[t]; ok {
		return s
	}
	return "UNKNOWN_SQLITE_DATATYPE"
}

// PrepareFlags are flags for sqlite3_prepare_v3.
// https://www.sqlite.org/c3ref/c_prepare_normalize.html
type PrepareFlags int

const (
	SQLITE_PREPARE_PERSISTENT PrepareFlags = 0x01
	SQLITE_PREPARE_NORMALIZE  PrepareFlags = 0x02
	SQLITE_PREPARE_NO_VTAB    PrepareFlags = 0x04
)

// OpenFlags are flags used when opening a DB.
//
// https://www.sqlite.org/c3ref/c_open_autoproxy.html
type OpenFlags int

const (
	SQLITE_OPEN_READONLY     OpenFlags = 0x00000001
	SQLITE_OPEN_READWRITE    OpenFlags = 0x00000002
	SQLITE_OPEN_CREATE       OpenFlags = 0x00000004
	SQLITE_OPEN_URI          OpenFlags = 0x00000040
	SQLITE_OPEN_MEMORY       OpenFlags = 0x00000080
	SQLITE_OPEN_NOMUTEX      OpenFlags = 0x00008000
	SQLITE_OPEN_FULLMUTEX    OpenFlags = 0x00010000
	SQLITE_OPEN_SHAREDCACHE  OpenFlags = 0x00020000
	SQLITE_OPEN_PRIVATECACHE OpenFlags = 0x00040000
	SQLITE_OPEN_WAL          OpenFlags = 0x00080000
	SQLITE_OPEN_NOFOLLOW     OpenFlags = 0x00100000

	// OpenFlagsDefault is read-write-create with WAL, URI filenames,
	// and the one-connection-per-goroutine threading mode.
	OpenFlagsDefault = SQLITE_OPEN_READWRITE |
		SQLITE_OPEN_CREATE |
		SQLITE_OPEN_WAL |
		SQLITE_OPEN_URI |
		SQLITE_OPEN_NOMUTEX
)

var openFlagsStrings = []struct {
	flag OpenFlags
	name string
}{
	{SQLITE_OPEN_READONLY, "SQLITE_OPEN_READONLY"},
	{SQLITE_OPEN_READWRITE, "SQLITE_OPEN_READWRITE"},
	{SQLITE_OPEN_CREATE, "SQLITE_OPEN_CREATE"},
	{SQLITE_OPEN_URI, "SQLITE_OPEN_URI"},
	{SQLITE_OPEN_MEMORY, "SQLITE_OPEN_MEMORY"},
	{SQLITE_OPEN_NOMUTEX, "SQLITE_OPEN_NOMUTEX"},
	{SQLITE_OPEN_FULLMUTEX, "SQLITE_OPEN_FULLMUTEX"},
	{SQLITE_OPEN_SHAREDCACHE, "SQLITE_OPEN_SHAREDCACHE"},
	{SQLITE_OPEN_PRIVATECACHE, "SQLITE_OPEN_PRIVATECACHE"},
	{SQLITE_OPEN_WAL, "SQLITE_OPEN_WAL"},
	{SQLITE_OPEN_NOFOLLOW, "SQLITE_OPEN_NOFOLLOW"},
}

func (o OpenFlags) String() string {
	var flags []byte
	for _, fs := range openFlagsStrings {
		if o&fs.flag == 0 {
			continue
		}
		if len(flags) > 0 {
			flags = append(flags, '|')
		}
		flags = append(flags, fs.name...)
	}
	return string(flags)
}

// TraceConnID identifies a connection to a Tracer.
type TraceConnID int32

// Tracer reports statement and transaction events on a connection.
// Implementations must be safe for concurrent use by multiple connections.
type Tracer interface {
	Query(id TraceConnID, query string, duration time.Duration, err error)
	BeginTx(id TraceConnID, readOnly bool, err error)
	Commit(id TraceConnID, err error)
	Rollback(id TraceConnID, err error)
}

// ErrCode is an SQLite error code as a Go error.
// It must not be one of the status codes SQLITE_OK, SQLITE_ROW, or SQLITE_DONE.
type ErrCode Code

func (e ErrCode) Error() string {
	return Code(e).String()
}

// Code is an SQLite extended result code.
//
// The three status codes SQLITE_OK, SQLITE_ROW, and SQLITE_DONE are not
// errors and must not be wrapped in an ErrCode.
type Code int

// Primary reports the coarse top-level result code for an extended code.
// Codes the linked SQLite version does not refine pass through unchanged.
//
// https://sqlite.org/rescode.html
func (code Code) Primary() Code { return code & 0xff }

// Known reports whether code appears in the result-code table of the
// SQLite release this package was written against. An unknown code
// coming out of the engine means the mapping table and the linked
// library disagree; callers treat that as fatal.
func (code Code) Known() bool {
	_, ok := codeNames[code]
	return ok
}

func (code Code) String() string {
	if s, ok := codeNames[code]; ok {
		return s
	}
	var buf [20]byte
	return "SQLITE_UNKNOWN_ERR(" + string(itoa(buf[:], int64(code))) + ")"
}

const (
	SQLITE_OK         = Code(0) // not an error, do not use in ErrCode
	SQLITE_ERROR      = Code(1)
	SQLITE_INTERNAL   = Code(2)
	SQLITE_PERM       = Code(3)
	SQLITE_ABORT      = Code(4)
	SQLITE_BUSY       = Code(5)
	SQLITE_LOCKED     = Code(6)
	SQLITE_NOMEM      = Code(7)
	SQLITE_READONLY   = Code(8)
	SQLITE_INTERRUPT  = Code(9)
	SQLITE_IOERR      = Code(10)
	SQLITE_CORRUPT    = Code(11)
	SQLITE_NOTFOUND   = Code(12)
	SQLITE_FULL       = Code(13)
	SQLITE_CANTOPEN   = Code(14)
	SQLITE_PROTOCOL   = Code(15)
	SQLITE_EMPTY      = Code(16)
	SQLITE_SCHEMA     = Code(17)
	SQLITE_TOOBIG     = Code(18)
	SQLITE_CONSTRAINT = Code(19)
	SQLITE_MISMATCH   = Code(20)
	SQLITE_MISUSE     = Code(21)
	SQLITE_NOLFS      = Code(22)
	SQLITE_AUTH       = Code(23)
	SQLITE_FORMAT     = Code(24)
	SQLITE_RANGE      = Code(25)
	SQLITE_NOTADB     = Code(26)
	SQLITE_NOTICE     = Code(27)
	SQLITE_WARNING    = Code(28)
	SQLITE_ROW        = Code(100) // not an error, do not use in ErrCode
	SQLITE_DONE       = Code(101) // not an error, do not use in ErrCode

	// Extended result codes.
	// https://sqlite.org/rescode.html#extrc

	SQLITE_ERROR_MISSING_COLLSEQ   = Code(SQLITE_ERROR | (1 << 8))
	SQLITE_ERROR_RETRY             = Code(SQLITE_ERROR | (2 << 8))
	SQLITE_ERROR_SNAPSHOT          = Code(SQLITE_ERROR | (3 << 8))
	SQLITE_IOERR_READ              = Code(SQLITE_IOERR | (1 << 8))
	SQLITE_IOERR_SHORT_READ        = Code(SQLITE_IOERR | (2 << 8))
	SQLITE_IOERR_WRITE             = Code(SQLITE_IOERR | (3 << 8))
	SQLITE_IOERR_FSYNC             = Code(SQLITE_IOERR | (4 << 8))
	SQLITE_IOERR_DIR_FSYNC         = Code(SQLITE_IOERR | (5 << 8))
	SQLITE_IOERR_TRUNCATE          = Code(SQLITE_IOERR | (6 << 8))
	SQLITE_IOERR_FSTAT             = Code(SQLITE_IOERR | (7 << 8))
	SQLITE_IOERR_UNLOCK            = Code(SQLITE_IOERR | (8 << 8))
	SQLITE_IOERR_RDLOCK            = Code(SQLITE_IOERR | (9 << 8))
	SQLITE_IOERR_DELETE            = Code(SQLITE_IOERR | (10 << 8))
	SQLITE_IOERR_BLOCKED           = Code(SQLITE_IOERR | (11 << 8))
	SQLITE_IOERR_NOMEM             = Code(SQLITE_IOERR | (12 << 8))
	SQLITE_IOERR_ACCESS            = Code(SQLITE_IOERR | (13 << 8))
	SQLITE_IOERR_CHECKRESERVEDLOCK = Code(SQLITE_IOERR | (14 << 8))
	SQLITE_IOERR_LOCK              = Code(SQLITE_IOERR | (15 << 8))
	SQLITE_IOERR_CLOSE             = Code(SQLITE_IOERR | (16 << 8))
	SQLITE_IOERR_DIR_CLOSE         = Code(SQLITE_IOERR | (17 << 8))
	SQLITE_IOERR_SHMOPEN           = Code(SQLITE_IOERR | (18 << 8))
	SQLITE_IOERR_SHMSIZE           = Code(SQLITE_IOERR | (19 << 8))
	SQLITE_IOERR_SHMLOCK           = Code(SQLITE_IOERR | (20 << 8))
	SQLITE_IOERR_SHMMAP            = Code(SQLITE_IOERR | (21 << 8))
	SQLITE_IOERR_SEEK              = Code(SQLITE_IOERR | (22 << 8))
	SQLITE_IOERR_DELETE_NOENT      = Code(SQLITE_IOERR | (23 << 8))
	SQLITE_IOERR_MMAP              = Code(SQLITE_IOERR | (24 << 8))
	SQLITE_IOERR_GETTEMPPATH       = Code(SQLITE_IOERR | (25 << 8))
	SQLITE_IOERR_CONVPATH          = Code(SQLITE_IOERR | (26 << 8))
	SQLITE_IOERR_VNODE             = Code(SQLITE_IOERR | (27 << 8))
	SQLITE_IOERR_AUTH              = Code(SQLITE_IOERR | (28 << 8))
	SQLITE_IOERR_BEGIN_ATOMIC      = Code(SQLITE_IOERR | (29 << 8))
	SQLITE_IOERR_COMMIT_ATOMIC     = Code(SQLITE_IOERR | (30 << 8))
	SQLITE_IOERR_ROLLBACK_ATOMIC   = Code(SQLITE_IOERR | (31 << 8))
	SQLITE_IOERR_DATA              = Code(SQLITE_IOERR | (32 << 8))
	SQLITE_IOERR_CORRUPTFS         = Code(SQLITE_IOERR | (33 << 8))
	SQLITE_LOCKED_SHAREDCACHE      = Code(SQLITE_LOCKED | (1 << 8))
	SQLITE_LOCKED_VTAB             = Code(SQLITE_LOCKED | (2 << 8))
	SQLITE_BUSY_RECOVERY           = Code(SQLITE_BUSY | (1 << 8))
	SQLITE_BUSY_SNAPSHOT           = Code(SQLITE_BUSY | (2 << 8))
	SQLITE_BUSY_TIMEOUT            = Code(SQLITE_BUSY | (3 << 8))
	SQLITE_CANTOPEN_NOTEMPDIR      = Code(SQLITE_CANTOPEN | (1 << 8))
	SQLITE_CANTOPEN_ISDIR          = Code(SQLITE_CANTOPEN | (2 << 8))
	SQLITE_CANTOPEN_FULLPATH       = Code(SQLITE_CANTOPEN | (3 << 8))
	SQLITE_CANTOPEN_CONVPATH       = Code(SQLITE_CANTOPEN | (4 << 8))
	SQLITE_CANTOPEN_DIRTYWAL       = Code(SQLITE_CANTOPEN | (5 << 8)) /* Not Used */
	SQLITE_CANTOPEN_SYMLINK        = Code(SQLITE_CANTOPEN | (6 << 8))
	SQLITE_CORRUPT_VTAB            = Code(SQLITE_CORRUPT | (1 << 8))
	SQLITE_CORRUPT_SEQUENCE        = Code(SQLITE_CORRUPT | (2 << 8))
	SQLITE_CORRUPT_INDEX           = Code(SQLITE_CORRUPT | (3 << 8))
	SQLITE_READONLY_RECOVERY       = Code(SQLITE_READONLY | (1 << 8))
	SQLITE_READONLY_CANTLOCK       = Code(SQLITE_READONLY | (2 << 8))
	SQLITE_READONLY_ROLLBACK       = Code(SQLITE_READONLY | (3 << 8))
	SQLITE_READONLY_DBMOVED        = Code(SQLITE_READONLY | (4 << 8))
	SQLITE_READONLY_CANTINIT       = Code(SQLITE_READONLY | (5 << 8))
	SQLITE_READONLY_DIRECTORY      = Code(SQLITE_READONLY | (6 << 8))
	SQLITE_ABORT_ROLLBACK          = Code(SQLITE_ABORT | (2 << 8))
	SQLITE_CONSTRAINT_CHECK        = Code(SQLITE_CONSTRAINT | (1 << 8))
	SQLITE_CONSTRAINT_COMMITHOOK   = Code(SQLITE_CONSTRAINT | (2 << 8))
	SQLITE_CONSTRAINT_FOREIGNKEY   = Code(SQLITE_CONSTRAINT | (3 << 8))
	SQLITE_CONSTRAINT_FUNCTION     = Code(SQLITE_CONSTRAINT | (4 << 8))
	SQLITE_CONSTRAINT_NOTNULL      = Code(SQLITE_CONSTRAINT | (5 << 8))
	SQLITE_CONSTRAINT_PRIMARYKEY   = Code(SQLITE_CONSTRAINT | (6 << 8))
	SQLITE_CONSTRAINT_TRIGGER      = Code(SQLITE_CONSTRAINT | (7 << 8))
	SQLITE_CONSTRAINT_UNIQUE       = Code(SQLITE_CONSTRAINT | (8 << 8))
	SQLITE_CONSTRAINT_VTAB         = Code(SQLITE_CONSTRAINT | (9 << 8))
	SQLITE_CONSTRAINT_ROWID        = Code(SQLITE_CONSTRAINT | (10 << 8))
	SQLITE_CONSTRAINT_PINNED       = Code(SQLITE_CONSTRAINT | (11 << 8))
	SQLITE_NOTICE_RECOVER_WAL      = Code(SQLITE_NOTICE | (1 << 8))
	SQLITE_NOTICE_RECOVER_ROLLBACK = Code(SQLITE_NOTICE | (2 << 8))
	SQLITE_WARNING_AUTOINDEX       = Code(SQLITE_WARNING | (1 << 8))
	SQLITE_AUTH_USER               = Code(SQLITE_AUTH | (1 << 8))
	SQLITE_OK_LOAD_PERMANENTLY     = Code(SQLITE_OK | (1 << 8))
	SQLITE_OK_SYMLINK              = Code(SQLITE_OK | (2 << 8))
)

var codeNames = map[Code]string{
	SQLITE_OK:         "SQLITE_OK(not an error)",
	SQLITE_ROW:        "SQLITE_ROW(not an error)",
	SQLITE_DONE:       "SQLITE_DONE(not an error)",
	SQLITE_ERROR:      "SQLITE_ERROR",
	SQLITE_INTERNAL:   "SQLITE_INTERNAL",
	SQLITE_PERM:       "SQLITE_PERM",
	SQLITE_ABORT:      "SQLITE_ABORT",
	SQLITE_BUSY:       "SQLITE_BUSY",
	SQLITE_LOCKED:     "SQLITE_LOCKED",
	SQLITE_NOMEM:      "SQLITE_NOMEM",
	SQLITE_READONLY:   "SQLITE_READONLY",
	SQLITE_INTERRUPT:  "SQLITE_INTERRUPT",
	SQLITE_IOERR:      "SQLITE_IOERR",
	SQLITE_CORRUPT:    "SQLITE_CORRUPT",
	SQLITE_NOTFOUND:   "SQLITE_NOTFOUND",
	SQLITE_FULL:       "SQLITE_FULL",
	SQLITE_CANTOPEN:   "SQLITE_CANTOPEN",
	SQLITE_PROTOCOL:   "SQLITE_PROTOCOL",
	SQLITE_EMPTY:      "SQLITE_EMPTY",
	SQLITE_SCHEMA:     "SQLITE_SCHEMA",
	SQLITE_TOOBIG:     "SQLITE_TOOBIG",
	SQLITE_CONSTRAINT: "SQLITE_CONSTRAINT",
	SQLITE_MISMATCH:   "SQLITE_MISMATCH",
	SQLITE_MISUSE:     "SQLITE_MISUSE",
	SQLITE_NOLFS:      "SQLITE_NOLFS",
	SQLITE_AUTH:       "SQLITE_AUTH",
	SQLITE_FORMAT:     "SQLITE_FORMAT",
	SQLITE_RANGE:      "SQLITE_RANGE",
	SQLITE_NOTADB:     "SQLITE_NOTADB",
	SQLITE_NOTICE:     "SQLITE_NOTICE",
	SQLITE_WARNING:    "SQLITE_WARNING",

	SQLITE_ERROR_MISSING_COLLSEQ:   "SQLITE_ERROR_MISSING_COLLSEQ",
	SQLITE_ERROR_RETRY:             "SQLITE_ERROR_RETRY",
	SQLITE_ERROR_SNAPSHOT:          "SQLITE_ERROR_SNAPSHOT",
	SQLITE_IOERR_READ:              "SQLITE_IOERR_READ",
	SQLITE_IOERR_SHORT_READ:        "SQLITE_IOERR_SHORT_READ",
	SQLITE_IOERR_WRITE:             "SQLITE_IOERR_WRITE",
	SQLITE_IOERR_FSYNC:             "SQLITE_IOERR_FSYNC",
	SQLITE_IOERR_DIR_FSYNC:         "SQLITE_IOERR_DIR_FSYNC",
	SQLITE_IOERR_TRUNCATE:          "SQLITE_IOERR_TRUNCATE",
	SQLITE_IOERR_FSTAT:             "SQLITE_IOERR_FSTAT",
	SQLITE_IOERR_UNLOCK:            "SQLITE_IOERR_UNLOCK",
	SQLITE_IOERR_RDLOCK:            "SQLITE_IOERR_RDLOCK",
	SQLITE_IOERR_DELETE:            "SQLITE_IOERR_DELETE",
	SQLITE_IOERR_BLOCKED:           "SQLITE_IOERR_BLOCKED",
	SQLITE_IOERR_NOMEM:             "SQLITE_IOERR_NOMEM",
	SQLITE_IOERR_ACCESS:            "SQLITE_IOERR_ACCESS",
	SQLITE_IOERR_CHECKRESERVEDLOCK: "SQLITE_IOERR_CHECKRESERVEDLOCK",
	SQLITE_IOERR_LOCK:              "SQLITE_IOERR_LOCK",
	SQLITE_IOERR_CLOSE:             "SQLITE_IOERR_CLOSE",
	SQLITE_IOERR_DIR_CLOSE:         "SQLITE_IOERR_DIR_CLOSE",
	SQLITE_IOERR_SHMOPEN:           "SQLITE_IOERR_SHMOPEN",
	SQLITE_IOERR_SHMSIZE:           "SQLITE_IOERR_SHMSIZE",
	SQLITE_IOERR_SHMLOCK:           "SQLITE_IOERR_SHMLOCK",
	SQLITE_IOERR_SHMMAP:            "SQLITE_IOERR_SHMMAP",
	SQLITE_IOERR_SEEK:              "SQLITE_IOERR_SEEK",
	SQLITE_IOERR_DELETE_NOENT:      "SQLITE_IOERR_DELETE_NOENT",
	SQLITE_IOERR_MMAP:              "SQLITE_IOERR_MMAP",
	SQLITE_IOERR_GETTEMPPATH:       "SQLITE_IOERR_GETTEMPPATH",
	SQLITE_IOERR_CONVPATH:          "SQLITE_IOERR_CONVPATH",
	SQLITE_IOERR_VNODE:             "SQLITE_IOERR_VNODE",
	SQLITE_IOERR_AUTH:              "SQLITE_IOERR_AUTH",
	SQLITE_IOERR_BEGIN_ATOMIC:      "SQLITE_IOERR_BEGIN_ATOMIC",
	SQLITE_IOERR_COMMIT_ATOMIC:     "SQLITE_IOERR_COMMIT_ATOMIC",
	SQLITE_IOERR_ROLLBACK_ATOMIC:   "SQLITE_IOERR_ROLLBACK_ATOMIC",
	SQLITE_IOERR_DATA:              "SQLITE_IOERR_DATA",
	SQLITE_IOERR_CORRUPTFS:         "SQLITE_IOERR_CORRUPTFS",
	SQLITE_LOCKED_SHAREDCACHE:      "SQLITE_LOCKED_SHAREDCACHE",
	SQLITE_LOCKED_VTAB:             "SQLITE_LOCKED_VTAB",
	SQLITE_BUSY_RECOVERY:           "SQLITE_BUSY_RECOVERY",
	SQLITE_BUSY_SNAPSHOT:           "SQLITE_BUSY_SNAPSHOT",
	SQLITE_BUSY_TIMEOUT:            "SQLITE_BUSY_TIMEOUT",
	SQLITE_CANTOPEN_NOTEMPDIR:      "SQLITE_CANTOPEN_NOTEMPDIR",
	SQLITE_CANTOPEN_ISDIR:          "SQLITE_CANTOPEN_ISDIR",
	SQLITE_CANTOPEN_FULLPATH:       "SQLITE_CANTOPEN_FULLPATH",
	SQLITE_CANTOPEN_CONVPATH:       "SQLITE_CANTOPEN_CONVPATH",
	SQLITE_CANTOPEN_DIRTYWAL:       "SQLITE_CANTOPEN_DIRTYWAL",
	SQLITE_CANTOPEN_SYMLINK:        "SQLITE_CANTOPEN_SYMLINK",
	SQLITE_CORRUPT_VTAB:            "SQLITE_CORRUPT_VTAB",
	SQLITE_CORRUPT_SEQUENCE:        "SQLITE_CORRUPT_SEQUENCE",
	SQLITE_CORRUPT_INDEX:           "SQLITE_CORRUPT_INDEX",
	SQLITE_READONLY_RECOVERY:       "SQLITE_READONLY_RECOVERY",
	SQLITE_READONLY_CANTLOCK:       "SQLITE_READONLY_CANTLOCK",
	SQLITE_READONLY_ROLLBACK:       "SQLITE_READONLY_ROLLBACK",
	SQLITE_READONLY_DBMOVED:        "SQLITE_READONLY_DBMOVED",
	SQLITE_READONLY_CANTINIT:       "SQLITE_READONLY_CANTINIT",
	SQLITE_READONLY_DIRECTORY:      "SQLITE_READONLY_DIRECTORY",
	SQLITE_ABORT_ROLLBACK:          "SQLITE_ABORT_ROLLBACK",
	SQLITE_CONSTRAINT_CHECK:        "SQLITE_CONSTRAINT_CHECK",
	SQLITE_CONSTRAINT_COMMITHOOK:   "SQLITE_CONSTRAINT_COMMITHOOK",
	SQLITE_CONSTRAINT_FOREIGNKEY:   "SQLITE_CONSTRAINT_FOREIGNKEY",
	SQLITE_CONSTRAINT_FUNCTION:     "SQLITE_CONSTRAINT_FUNCTION",
	SQLITE_CONSTRAINT_NOTNULL:      "SQLITE_CONSTRAINT_NOTNULL",
	SQLITE_CONSTRAINT_PRIMARYKEY:   "SQLITE_CONSTRAINT_PRIMARYKEY",
	SQLITE_CONSTRAINT_TRIGGER:      "SQLITE_CONSTRAINT_TRIGGER",
	SQLITE_CONSTRAINT_UNIQUE:       "SQLITE_CONSTRAINT_UNIQUE",
	SQLITE_CONSTRAINT_VTAB:         "SQLITE_CONSTRAINT_VTAB",
	SQLITE_CONSTRAINT_ROWID:        "SQLITE_CONSTRAINT_ROWID",
	SQLITE_CONSTRAINT_PINNED:       "SQLITE_CONSTRAINT_PINNED",
	SQLITE_NOTICE_RECOVER_WAL:      "SQLITE_NOTICE_RECOVER_WAL",
	SQLITE_NOTICE_RECOVER_ROLLBACK: "SQLITE_NOTICE_RECOVER_ROLLBACK",
	SQLITE_WARNING_AUTOINDEX:       "SQLITE_WARNING_AUTOINDEX",
	SQLITE_AUTH_USER:               "SQLITE_AUTH_USER",
	SQLITE_OK_LOAD_PERMANENTLY:     "SQLITE_OK_LOAD_PERMANENTLY",
	SQLITE_OK_SYMLINK:              "SQLITE_OK_SYMLINK",
}

// CodeAsError is used to intern Codes into ErrCodes.
// SQLite non-error status codes return nil.
func CodeAsError(code Code) error {
	if code == SQLITE_OK || code == SQLITE_ROW || code == SQLITE_DONE {
		return nil
	}
	codeAsErrorInitOnce.Do(codeAsErrorInit)
	err := codeAsError[code]
	if err == nil {
		return ErrCode(code)
	}
	return err
}

var codeAsError map[Code]error

var codeAsErrorInitOnce sync.Once

func codeAsErrorInit() {
	codeAsError = make(map[Code]error, len(codeNames))
	for code := range codeNames {
		if code == SQLITE_OK || code == SQLITE_ROW || code == SQLITE_DONE {
			continue
		}
		codeAsError[code] = ErrCode(code)
	}
}

func itoa(buf []byte, val int64) []byte {
	i := len(buf) - 1
	neg := false
	if val < 0 {
		neg = true
		val = 0 - val
	}
	for val >= 10 {
		buf[i] = byte(val%10 + '0')
		i--
		val /= 10
	}
	buf[i] = byte(val + '0')
	if neg {
		i--
		buf[i] = '-'
	}
	return buf[i:]
}
