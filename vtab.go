package sqlite

import "github.com/sqltyped/sqlite/sqliteh"

// The virtual table planner and value types are defined next to the
// engine interfaces in sqliteh; they are aliased here so a table
// implementation needs only this package.
type (
	// ModuleArg is one argument from the CREATE VIRTUAL TABLE
	// statement, split at the first '=' when one is present.
	ModuleArg = sqliteh.ModuleArg
	// VTab is a connected virtual table.
	VTab = sqliteh.VTab
	// VTabCursor is one scan over a virtual table.
	VTabCursor = sqliteh.VTabCursor
	// IndexInfo carries one best-index planning exchange.
	IndexInfo = sqliteh.IndexInfo
	// IndexConstraint is one WHERE-clause constraint offered to
	// BestIndex.
	IndexConstraint = sqliteh.IndexConstraint
	// ConstraintUsage is BestIndex's answer for one constraint.
	ConstraintUsage = sqliteh.ConstraintUsage
	// OrderBy is one ORDER BY term offered to BestIndex.
	OrderBy = sqliteh.OrderBy
	// Value is a tagged engine value, one case per storage class.
	Value = sqliteh.Value
)

// Module is the capability set a virtual table provider implements.
//
// Connect is called once per CREATE VIRTUAL TABLE or re-attach. It
// returns the table implementation and the relation's schema as a
// CREATE TABLE statement; the engine adopts the column layout and
// ignores the table name. Table state lives from Connect until the
// engine calls VTab.Disconnect.
//
// The engine's callback protocol cannot carry typed errors: an error
// from any callback aborts the engine operation with a generic
// failure code, and the error text survives only through the
// connection's Diagnostics sink and the engine's own error message
// slot.
type Module interface {
	Connect(args []ModuleArg) (VTab, string, error)
}

// moduleBridge wraps a Module so every user-callback failure is
// mirrored into the connection's Diagnostics sink before it crosses
// into the engine as a bare result code.
type moduleBridge struct {
	mod  Module
	conn *Conn
}

func (m *moduleBridge) fail(err error) error {
	if err != nil && m.conn.diags != nil {
		m.conn.diags.Code = sqliteh.SQLITE_ERROR
		m.conn.diags.Msg = err.Error()
	}
	return err
}

func (m *moduleBridge) Connect(args []sqliteh.ModuleArg) (sqliteh.VTab, string, error) {
	vt, decl, err := m.mod.Connect(args)
	if err != nil {
		return nil, "", m.fail(err)
	}
	return &vtabBridge{vt: vt, mod: m}, decl, nil
}

type vtabBridge struct {
	vt  VTab
	mod *moduleBridge
}

func (v *vtabBridge) BestIndex(info *sqliteh.IndexInfo) error {
	return v.mod.fail(v.vt.BestIndex(info))
}

func (v *vtabBridge) Open() (sqliteh.VTabCursor, error) {
	cur, err := v.vt.Open()
	if err != nil {
		return nil, v.mod.fail(err)
	}
	return &cursorBridge{cur: cur, mod: v.mod}, nil
}

func (v *vtabBridge) Disconnect() error {
	return v.mod.fail(v.vt.Disconnect())
}

type cursorBridge struct {
	cur VTabCursor
	mod *moduleBridge
}

func (c *cursorBridge) Filter(idxNum int, idxStr string, args []sqliteh.Value) error {
	return c.mod.fail(c.cur.Filter(idxNum, idxStr, args))
}

func (c *cursorBridge) Next() error { return c.mod.fail(c.cur.Next()) }

func (c *cursorBridge) EOF() bool { return c.cur.EOF() }

func (c *cursorBridge) Column(col int) (sqliteh.Value, error) {
	v, err := c.cur.Column(col)
	return v, c.mod.fail(err)
}

func (c *cursorBridge) Rowid() (int64, error) {
	id, err := c.cur.Rowid()
	return id, c.mod.fail(err)
}

func (c *cursorBridge) Close() error { return c.mod.fail(c.cur.Close()) }
