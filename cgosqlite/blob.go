package cgosqlite

// #include <sqlite3.h>
// #include <stdlib.h>
import "C"
import (
	"unsafe"

	"github.com/sqltyped/sqlite/sqliteh"
)

// Blob implements sqliteh.Blob over an sqlite3_blob* handle.
type Blob struct {
	blob *C.sqlite3_blob
}

// OpenBlob is sqlite3_blob_open.
// https://sqlite.org/c3ref/blob_open.html
func (db *DB) OpenBlob(dbName, table, column string, rowid int64, readWrite bool) (sqliteh.Blob, error) {
	cdbName := C.CString(dbName)
	ctable := C.CString(table)
	ccolumn := C.CString(column)
	defer func() {
		C.free(unsafe.Pointer(cdbName))
		C.free(unsafe.Pointer(ctable))
		C.free(unsafe.Pointer(ccolumn))
	}()

	flags := C.int(0)
	if readWrite {
		flags = 1
	}
	var cblob *C.sqlite3_blob
	res := C.sqlite3_blob_open(db.db, cdbName, ctable, ccolumn, C.sqlite3_int64(rowid), flags, &cblob)
	if err := errCode(res); err != nil {
		return nil, err
	}
	return &Blob{blob: cblob}, nil
}

// Len is sqlite3_blob_bytes.
// https://sqlite.org/c3ref/blob_bytes.html
func (b *Blob) Len() int {
	return int(C.sqlite3_blob_bytes(b.blob))
}

// ReadAt is sqlite3_blob_read.
// https://sqlite.org/c3ref/blob_read.html
func (b *Blob) ReadAt(p []byte, off int64) error {
	if len(p) == 0 {
		return nil
	}
	return errCode(C.sqlite3_blob_read(b.blob, unsafe.Pointer(&p[0]), C.int(len(p)), C.int(off)))
}

// WriteAt is sqlite3_blob_write.
// https://sqlite.org/c3ref/blob_write.html
func (b *Blob) WriteAt(p []byte, off int64) error {
	if len(p) == 0 {
		return nil
	}
	return errCode(C.sqlite3_blob_write(b.blob, unsafe.Pointer(&p[0]), C.int(len(p)), C.int(off)))
}

// Reopen is sqlite3_blob_reopen.
// https://sqlite.org/c3ref/blob_reopen.html
func (b *Blob) Reopen(rowid int64) error {
	return errCode(C.sqlite3_blob_reopen(b.blob, C.sqlite3_int64(rowid)))
}

// Close is sqlite3_blob_close.
// https://sqlite.org/c3ref/blob_close.html
func (b *Blob) Close() error {
	err := errCode(C.sqlite3_blob_close(b.blob))
	b.blob = nil
	return err
}
