package sqliteh

// This file defines the virtual table callback contract.
// https://sqlite.org/vtab.html
//
// The C plugin ABI is a table of function pointers over raw pointers.
// Implementations here see only the small capability set below; all
// pointer plumbing lives in cgosqlite.

// Module creates virtual tables for one registered module name.
// https://sqlite.org/c3ref/module.html
type Module interface {
	// Connect is xConnect (and xCreate for eponymous use). args holds
	// the module arguments from the CREATE VIRTUAL TABLE statement,
	// already split from the raw argv (argv[0..2] are module, db, and
	// table name and are not included). Connect returns the table
	// implementation and the CREATE TABLE statement describing its
	// columns, passed to sqlite3_declare_vtab.
	Connect(args []ModuleArg) (VTab, string, error)
}

// ModuleArg is one CREATE VIRTUAL TABLE module argument, either a bare
// token (Key only) or a key=value pair split at the first '='.
type ModuleArg struct {
	Key    string
	Value  string
	HasVal bool
}

// VTab is a connected virtual table.
// Exactly one Cursor is open per logical scan.
type VTab interface {
	// BestIndex is xBestIndex. It may be called any number of times
	// between Connect and Disconnect and must not mutate table state.
	BestIndex(*IndexInfo) error
	// Open is xOpen.
	Open() (VTabCursor, error)
	// Disconnect is xDisconnect. The table is unusable afterwards.
	Disconnect() error
}

// VTabCursor is an open cursor over a virtual table scan.
type VTabCursor interface {
	// Filter is xFilter. It positions the cursor on the first row
	// matching the (idxNum, idxStr) identifier chosen by BestIndex,
	// with the constraint values BestIndex asked for in argv order.
	Filter(idxNum int, idxStr string, args []Value) error
	// Next is xNext. Only called while EOF reports false.
	Next() error
	// EOF is xEof.
	EOF() bool
	// Column is xColumn. It reports the value of column col
	// (0-based) for the current row.
	Column(col int) (Value, error)
	// Rowid is xRowid.
	Rowid() (int64, error)
	// Close is xClose. The cursor is unusable afterwards.
	Close() error
}

// ConstraintOp is a WHERE-clause constraint operator passed to xBestIndex.
// https://sqlite.org/c3ref/c_index_constraint_eq.html
type ConstraintOp int

const (
	SQLITE_INDEX_CONSTRAINT_EQ        ConstraintOp = 2
	SQLITE_INDEX_CONSTRAINT_GT        ConstraintOp = 4
	SQLITE_INDEX_CONSTRAINT_LE        ConstraintOp = 8
	SQLITE_INDEX_CONSTRAINT_LT        ConstraintOp = 16
	SQLITE_INDEX_CONSTRAINT_GE        ConstraintOp = 32
	SQLITE_INDEX_CONSTRAINT_MATCH     ConstraintOp = 64
	SQLITE_INDEX_CONSTRAINT_LIKE      ConstraintOp = 65
	SQLITE_INDEX_CONSTRAINT_GLOB      ConstraintOp = 66
	SQLITE_INDEX_CONSTRAINT_REGEXP    ConstraintOp = 67
	SQLITE_INDEX_CONSTRAINT_NE        ConstraintOp = 68
	SQLITE_INDEX_CONSTRAINT_ISNOT     ConstraintOp = 69
	SQLITE_INDEX_CONSTRAINT_ISNOTNULL ConstraintOp = 70
	SQLITE_INDEX_CONSTRAINT_ISNULL    ConstraintOp = 71
	SQLITE_INDEX_CONSTRAINT_IS        ConstraintOp = 72
	// LIMIT and OFFSET pseudo-constraints require SQLite >= 3.38.0;
	// older engines never produce them.
	SQLITE_INDEX_CONSTRAINT_LIMIT  ConstraintOp = 73
	SQLITE_INDEX_CONSTRAINT_OFFSET ConstraintOp = 74
)

var constraintOpStrings = map[ConstraintOp]string{
	SQLITE_INDEX_CONSTRAINT_EQ:        "EQ",
	SQLITE_INDEX_CONSTRAINT_GT:        "GT",
	SQLITE_INDEX_CONSTRAINT_LE:        "LE",
	SQLITE_INDEX_CONSTRAINT_LT:        "LT",
	SQLITE_INDEX_CONSTRAINT_GE:        "GE",
	SQLITE_INDEX_CONSTRAINT_MATCH:     "MATCH",
	SQLITE_INDEX_CONSTRAINT_LIKE:      "LIKE",
	SQLITE_INDEX_CONSTRAINT_GLOB:      "GLOB",
	SQLITE_INDEX_CONSTRAINT_REGEXP:    "REGEXP",
	SQLITE_INDEX_CONSTRAINT_NE:        "NE",
	SQLITE_INDEX_CONSTRAINT_ISNOT:     "ISNOT",
	SQLITE_INDEX_CONSTRAINT_ISNOTNULL: "ISNOTNULL",
	SQLITE_INDEX_CONSTRAINT_ISNULL:    "ISNULL",
	SQLITE_INDEX_CONSTRAINT_IS:        "IS",
	SQLITE_INDEX_CONSTRAINT_LIMIT:     "LIMIT",
	SQLITE_INDEX_CONSTRAINT_OFFSET:    "OFFSET",
}

func (op ConstraintOp) String() string {
	if s, ok := constraintOpStrings[op]; ok {
		return s
	}
	var buf [20]byte
	return "CONSTRAINT_OP(" + string(itoa(buf[:], int64(op))) + ")"
}

// IndexConstraint is one entry of sqlite3_index_info.aConstraint.
type IndexConstraint struct {
	// Column is the constrained column, 0-based, or -1 for rowid.
	Column int
	Op     ConstraintOp
	Usable bool
}

// ConstraintUsage is one entry of sqlite3_index_info.aConstraintUsage,
// filled in by BestIndex.
type ConstraintUsage struct {
	// ArgvIndex, when > 0, asks the engine to evaluate the constraint's
	// right-hand side and pass it to Filter as args[ArgvIndex-1].
	ArgvIndex int
	// Omit asks the engine to skip its own double-check of the
	// constraint. Leave false to have the engine verify anyway.
	Omit bool
}

// OrderBy is one entry of sqlite3_index_info.aOrderBy.
type OrderBy struct {
	Column int
	Desc   bool
}

// IndexInfo is the Go view of sqlite3_index_info: constraint inputs from
// the query planner plus the output slots BestIndex fills in. The
// (IdxNum, IdxStr) pair round-trips opaquely to Filter; the engine
// attaches no meaning to it.
// https://sqlite.org/c3ref/index_info.html
type IndexInfo struct {
	// Inputs.
	Constraints []IndexConstraint
	OrderBys    []OrderBy
	// ColUsed is a bitmask of the output columns the query actually
	// needs; bit 63 covers columns 63 and beyond.
	ColUsed uint64

	// Outputs. Usage must either be left nil or have exactly
	// len(Constraints) entries.
	Usage           []ConstraintUsage
	IdxNum          int
	IdxStr          string
	OrderByConsumed bool
	EstimatedCost   float64
	EstimatedRows   int64
	// IdxFlags set to SQLITE_INDEX_SCAN_UNIQUE declares at most one
	// row match.
	IdxFlags int
}

// SQLITE_INDEX_SCAN_UNIQUE is the only defined idxFlags bit.
const SQLITE_INDEX_SCAN_UNIQUE = 1

// Value is a dynamically typed SQLite value: a filter argument handed to
// VTabCursor.Filter, or a column result returned from VTabCursor.Column.
// The zero Value is NULL.
type Value struct {
	Type  ColumnType
	Int   int64
	Float float64
	Text  string
	Blob  []byte
}

// IntValue returns an INTEGER Value.
func IntValue(v int64) Value { return Value{Type: SQLITE_INTEGER, Int: v} }

// FloatValue returns a FLOAT Value.
func FloatValue(v float64) Value { return Value{Type: SQLITE_FLOAT, Float: v} }

// TextValue returns a TEXT Value.
func TextValue(v string) Value { return Value{Type: SQLITE_TEXT, Text: v} }

// BlobValue returns a BLOB Value.
func BlobValue(v []byte) Value { return Value{Type: SQLITE_BLOB, Blob: v} }

// NullValue returns a NULL Value.
func NullValue() Value { return Value{Type: SQLITE_NULL} }

// IsNull reports whether v holds SQL NULL.
func (v Value) IsNull() bool { return v.Type == SQLITE_NULL || v.Type == 0 }

// AsInt64 reports v coerced to an integer the way sqlite3_value_int64
// would: floats truncate, text and blobs are 0.
func (v Value) AsInt64() int64 {
	switch v.Type {
	case SQLITE_INTEGER:
		return v.Int
	case SQLITE_FLOAT:
		return int64(v.Float)
	}
	return 0
}

// AsFloat reports v coerced to a float.
func (v Value) AsFloat() float64 {
	switch v.Type {
	case SQLITE_FLOAT:
		return v.Float
	case SQLITE_INTEGER:
		return float64(v.Int)
	}
	return 0
}

// AsText reports v coerced to text.
func (v Value) AsText() string {
	switch v.Type {
	case SQLITE_TEXT:
		return v.Text
	case SQLITE_BLOB:
		return string(v.Blob)
	}
	return ""
}
