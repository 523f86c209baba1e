package sqlite

import (
	"fmt"
	"io"

	"github.com/sqltyped/sqlite/sqliteh"
)

// BlobIO is an incremental I/O handle onto one BLOB column cell,
// reading and writing ranges of the value without materializing the
// whole thing. It implements io.ReadWriteSeeker over the cell's
// bytes.
//
// Incremental writes cannot change a cell's size; create the cell at
// its final size first (for example with zeroblob(n)). A BlobIO must
// be explicitly closed, and any use after Close panics.
type BlobIO struct {
	conn   *Conn
	blob   sqliteh.Blob
	off    int64
	size   int64
	closed bool
}

// OpenBlob opens an incremental I/O handle on the cell at (table,
// column, rowid) in database dbName ("" means "main"). With
// readWrite false the handle is read-only.
func (c *Conn) OpenBlob(dbName, table, column string, rowid int64, readWrite bool) (*BlobIO, error) {
	if c.closed.Load() {
		UsesAfterClose.Add("OpenBlob", 1)
		return nil, ErrClosed
	}
	if dbName == "" {
		dbName = "main"
	}
	b, err := c.db.OpenBlob(dbName, table, column, rowid, readWrite)
	if err != nil {
		return nil, c.reserr("OpenBlob", table+"."+column, err)
	}
	return &BlobIO{conn: c, blob: b, size: int64(b.Len())}, nil
}

func (b *BlobIO) check(loc string) {
	if b.closed {
		UsesAfterClose.Add(loc, 1)
		panic("sqlite." + loc + ": use of closed blob handle")
	}
}

// Len reports the size of the underlying cell in bytes. The size is
// fixed for the life of the handle.
func (b *BlobIO) Len() int64 { return b.size }

// Read reads from the cell at the current offset, returning io.EOF
// at the end of the cell.
func (b *BlobIO) Read(p []byte) (int, error) {
	b.check("Blob.Read")
	if b.off >= b.size {
		return 0, io.EOF
	}
	if max := b.size - b.off; int64(len(p)) > max {
		p = p[:max]
	}
	if err := b.blob.ReadAt(p, b.off); err != nil {
		return 0, b.conn.reserr("Blob.Read", "", err)
	}
	b.off += int64(len(p))
	return len(p), nil
}

// Write writes to the cell at the current offset. Writing past the
// end of the cell is an error; the cell cannot grow.
func (b *BlobIO) Write(p []byte) (int, error) {
	b.check("Blob.Write")
	if b.off+int64(len(p)) > b.size {
		return 0, fmt.Errorf("sqlite.Blob.Write: write of %d bytes at offset %d exceeds blob size %d", len(p), b.off, b.size)
	}
	if err := b.blob.WriteAt(p, b.off); err != nil {
		return 0, b.conn.reserr("Blob.Write", "", err)
	}
	b.off += int64(len(p))
	return len(p), nil
}

// Seek sets the offset for the next Read or Write, interpreted
// according to whence as in io.Seeker.
func (b *BlobIO) Seek(offset int64, whence int) (int64, error) {
	b.check("Blob.Seek")
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.off + offset
	case io.SeekEnd:
		abs = b.size + offset
	default:
		return 0, fmt.Errorf("sqlite.Blob.Seek: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("sqlite.Blob.Seek: negative position %d", abs)
	}
	b.off = abs
	return abs, nil
}

// Reopen retargets the handle at the same column of a different row,
// keeping the engine-side resources. The offset resets to zero and
// the size is re-read.
func (b *BlobIO) Reopen(rowid int64) error {
	b.check("Blob.Reopen")
	if err := b.blob.Reopen(rowid); err != nil {
		return b.conn.reserr("Blob.Reopen", "", err)
	}
	b.off = 0
	b.size = int64(b.blob.Len())
	return nil
}

// Close releases the engine-side handle. Close is a no-op after the
// first call.
func (b *BlobIO) Close() error {
	if b.closed {
		UsesAfterClose.Add("Blob.Close", 1)
		return nil
	}
	b.closed = true
	return b.conn.reserr("Blob.Close", "", b.blob.Close())
}
