package cgosqlite

// Virtual table bridge. The engine's plugin ABI is a C table of
// function pointers; vtab.c owns the sqlite3_module and forwards every
// callback here with a registry handle instead of a Go pointer.

// #include <stdint.h>
// #include <stdlib.h>
// #include <sqlite3.h>
// #include "vtab.h"
import "C"
import (
	"strings"
	"sync"
	"unsafe"

	"github.com/sqltyped/sqlite/sqliteh"
)

// handles maps the uintptr identifiers embedded in C wrapper structs to
// their Go implementations. Entries are registered on CONNECT/OPEN and
// removed on DISCONNECT/CLOSE; the ids mean nothing to the engine.
var handles = struct {
	mu   sync.Mutex
	next uintptr
	m    map[uintptr]any
}{m: make(map[uintptr]any)}

func registerHandle(v any) uintptr {
	handles.mu.Lock()
	defer handles.mu.Unlock()
	handles.next++
	id := handles.next
	handles.m[id] = v
	return id
}

func lookupHandle(id uintptr) any {
	handles.mu.Lock()
	defer handles.mu.Unlock()
	return handles.m[id]
}

func dropHandle(id uintptr) {
	handles.mu.Lock()
	defer handles.mu.Unlock()
	delete(handles.m, id)
}

// CreateModule is sqlite3_create_module_v2.
// https://sqlite.org/c3ref/create_module.html
func (db *DB) CreateModule(name string, mod sqliteh.Module) error {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	id := registerHandle(mod)
	res := C.go_create_module(db.db, cname, C.uintptr_t(id))
	if err := errCode(res); err != nil {
		dropHandle(id)
		return err
	}
	return nil
}

func setVTabErr(vtab *C.sqlite3_vtab, err error) {
	cmsg := C.CString(err.Error())
	C.vtab_set_err(vtab, cmsg)
	C.free(unsafe.Pointer(cmsg))
}

//export goVTabConnect
func goVTabConnect(modHandle C.uintptr_t, argc C.int, argv **C.char, outHandle *C.uintptr_t, outDecl **C.char, pzErr **C.char) C.int {
	mod, ok := lookupHandle(uintptr(modHandle)).(sqliteh.Module)
	if !ok {
		return C.SQLITE_INTERNAL
	}

	// argv[0..2] are module name, database name, and table name.
	raw := unsafe.Slice(argv, int(argc))
	var args []sqliteh.ModuleArg
	for _, carg := range raw[3:] {
		s := C.GoString(carg)
		k, v, found := strings.Cut(s, "=")
		args = append(args, sqliteh.ModuleArg{Key: k, Value: v, HasVal: found})
	}

	vt, decl, err := mod.Connect(args)
	if err != nil {
		cmsg := C.CString(err.Error())
		*pzErr = C.vtab_strdup(cmsg)
		C.free(unsafe.Pointer(cmsg))
		return C.SQLITE_ERROR
	}
	*outHandle = C.uintptr_t(registerHandle(vt))
	*outDecl = C.CString(decl) // freed by vtab.c
	return C.SQLITE_OK
}

//export goVTabDisconnect
func goVTabDisconnect(handle C.uintptr_t) C.int {
	vt, ok := lookupHandle(uintptr(handle)).(sqliteh.VTab)
	dropHandle(uintptr(handle))
	if !ok {
		return C.SQLITE_INTERNAL
	}
	if err := vt.Disconnect(); err != nil {
		return C.SQLITE_ERROR
	}
	return C.SQLITE_OK
}

//export goVTabBestIndex
func goVTabBestIndex(handle C.uintptr_t, cinfo *C.sqlite3_index_info, vtab *C.sqlite3_vtab) C.int {
	vt, ok := lookupHandle(uintptr(handle)).(sqliteh.VTab)
	if !ok {
		return C.SQLITE_INTERNAL
	}

	info := &sqliteh.IndexInfo{
		ColUsed: uint64(cinfo.colUsed),
	}
	ccons := unsafe.Slice(cinfo.aConstraint, int(cinfo.nConstraint))
	for _, cc := range ccons {
		info.Constraints = append(info.Constraints, sqliteh.IndexConstraint{
			Column: int(cc.iColumn),
			Op:     sqliteh.ConstraintOp(cc.op),
			Usable: cc.usable != 0,
		})
	}
	corder := unsafe.Slice(cinfo.aOrderBy, int(cinfo.nOrderBy))
	for _, co := range corder {
		info.OrderBys = append(info.OrderBys, sqliteh.OrderBy{
			Column: int(co.iColumn),
			Desc:   co.desc != 0,
		})
	}

	if err := vt.BestIndex(info); err != nil {
		setVTabErr(vtab, err)
		return C.SQLITE_ERROR
	}

	if info.Usage != nil {
		if len(info.Usage) != len(info.Constraints) {
			return C.SQLITE_MISUSE
		}
		cusage := unsafe.Slice(cinfo.aConstraintUsage, int(cinfo.nConstraint))
		for i, u := range info.Usage {
			cusage[i].argvIndex = C.int(u.ArgvIndex)
			if u.Omit {
				cusage[i].omit = 1
			} else {
				cusage[i].omit = 0
			}
		}
	}
	cinfo.idxNum = C.int(info.IdxNum)
	if info.IdxStr != "" {
		cstr := C.CString(info.IdxStr)
		cinfo.idxStr = C.vtab_strdup(cstr)
		cinfo.needToFreeIdxStr = 1
		C.free(unsafe.Pointer(cstr))
	}
	if info.OrderByConsumed {
		cinfo.orderByConsumed = 1
	}
	if info.EstimatedCost > 0 {
		cinfo.estimatedCost = C.double(info.EstimatedCost)
	}
	if info.EstimatedRows > 0 {
		cinfo.estimatedRows = C.sqlite3_int64(info.EstimatedRows)
	}
	cinfo.idxFlags = C.int(info.IdxFlags)
	return C.SQLITE_OK
}

//export goVTabOpen
func goVTabOpen(handle C.uintptr_t, outCursor *C.uintptr_t, vtab *C.sqlite3_vtab) C.int {
	vt, ok := lookupHandle(uintptr(handle)).(sqliteh.VTab)
	if !ok {
		return C.SQLITE_INTERNAL
	}
	cur, err := vt.Open()
	if err != nil {
		setVTabErr(vtab, err)
		return C.SQLITE_ERROR
	}
	*outCursor = C.uintptr_t(registerHandle(cur))
	return C.SQLITE_OK
}

//export goVTabCursorClose
func goVTabCursorClose(handle C.uintptr_t) C.int {
	cur, ok := lookupHandle(uintptr(handle)).(sqliteh.VTabCursor)
	dropHandle(uintptr(handle))
	if !ok {
		return C.SQLITE_INTERNAL
	}
	if err := cur.Close(); err != nil {
		return C.SQLITE_ERROR
	}
	return C.SQLITE_OK
}

//export goVTabFilter
func goVTabFilter(handle C.uintptr_t, idxNum C.int, idxStr *C.char, argc C.int, argv **C.sqlite3_value, vtab *C.sqlite3_vtab) C.int {
	cur, ok := lookupHandle(uintptr(handle)).(sqliteh.VTabCursor)
	if !ok {
		return C.SQLITE_INTERNAL
	}
	var args []sqliteh.Value
	if argc > 0 {
		for _, cv := range unsafe.Slice(argv, int(argc)) {
			args = append(args, valueFromC(cv))
		}
	}
	if err := cur.Filter(int(idxNum), C.GoString(idxStr), args); err != nil {
		setVTabErr(vtab, err)
		return C.SQLITE_ERROR
	}
	return C.SQLITE_OK
}

//export goVTabNext
func goVTabNext(handle C.uintptr_t, vtab *C.sqlite3_vtab) C.int {
	cur, ok := lookupHandle(uintptr(handle)).(sqliteh.VTabCursor)
	if !ok {
		return C.SQLITE_INTERNAL
	}
	if err := cur.Next(); err != nil {
		setVTabErr(vtab, err)
		return C.SQLITE_ERROR
	}
	return C.SQLITE_OK
}

//export goVTabEof
func goVTabEof(handle C.uintptr_t) C.int {
	cur, ok := lookupHandle(uintptr(handle)).(sqliteh.VTabCursor)
	if !ok {
		return 1
	}
	if cur.EOF() {
		return 1
	}
	return 0
}

//export goVTabColumn
func goVTabColumn(handle C.uintptr_t, ctx *C.sqlite3_context, col C.int, vtab *C.sqlite3_vtab) C.int {
	cur, ok := lookupHandle(uintptr(handle)).(sqliteh.VTabCursor)
	if !ok {
		return C.SQLITE_INTERNAL
	}
	v, err := cur.Column(int(col))
	if err != nil {
		setVTabErr(vtab, err)
		return C.SQLITE_ERROR
	}
	switch v.Type {
	case sqliteh.SQLITE_INTEGER:
		C.sqlite3_result_int64(ctx, C.sqlite3_int64(v.Int))
	case sqliteh.SQLITE_FLOAT:
		C.sqlite3_result_double(ctx, C.double(v.Float))
	case sqliteh.SQLITE_TEXT:
		cstr := C.CString(v.Text)
		C.result_text_transient(ctx, cstr, C.int(len(v.Text)))
		C.free(unsafe.Pointer(cstr))
	case sqliteh.SQLITE_BLOB:
		var p unsafe.Pointer
		if len(v.Blob) > 0 {
			p = unsafe.Pointer(&v.Blob[0])
		}
		C.result_blob_transient(ctx, p, C.int(len(v.Blob)))
	default:
		C.sqlite3_result_null(ctx)
	}
	return C.SQLITE_OK
}

//export goVTabRowid
func goVTabRowid(handle C.uintptr_t, rowid *C.sqlite3_int64, vtab *C.sqlite3_vtab) C.int {
	cur, ok := lookupHandle(uintptr(handle)).(sqliteh.VTabCursor)
	if !ok {
		return C.SQLITE_INTERNAL
	}
	id, err := cur.Rowid()
	if err != nil {
		setVTabErr(vtab, err)
		return C.SQLITE_ERROR
	}
	*rowid = C.sqlite3_int64(id)
	return C.SQLITE_OK
}

//export goModuleDestroy
func goModuleDestroy(modHandle C.uintptr_t) {
	dropHandle(uintptr(modHandle))
}

func valueFromC(cv *C.sqlite3_value) sqliteh.Value {
	switch C.sqlite3_value_type(cv) {
	case C.SQLITE_INTEGER:
		return sqliteh.IntValue(int64(C.sqlite3_value_int64(cv)))
	case C.SQLITE_FLOAT:
		return sqliteh.FloatValue(float64(C.sqlite3_value_double(cv)))
	case C.SQLITE_TEXT:
		p := (*C.char)(unsafe.Pointer(C.sqlite3_value_text(cv)))
		n := C.sqlite3_value_bytes(cv)
		if p == nil || n == 0 {
			return sqliteh.TextValue("")
		}
		return sqliteh.TextValue(C.GoStringN(p, n))
	case C.SQLITE_BLOB:
		p := C.sqlite3_value_blob(cv)
		n := C.sqlite3_value_bytes(cv)
		if p == nil || n == 0 {
			return sqliteh.BlobValue(nil)
		}
		return sqliteh.BlobValue(C.GoBytes(p, n))
	default:
		return sqliteh.NullValue()
	}
}
