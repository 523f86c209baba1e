package sqlite

import "go4.org/mem"

// Text is an immutable TEXT value.
//
// It exists to make the TEXT/BLOB distinction explicit at bind and
// decode time: a Text always binds through the engine's text binder
// and a Blob through the blob binder, regardless of the byte content.
// The zero Text is empty and valid.
type Text struct {
	ro mem.RO
}

// TextString returns a Text viewing s. No copy is made.
func TextString(s string) Text { return Text{ro: mem.S(s)} }

// TextBytes returns a Text viewing b. No copy is made; the caller
// must not mutate b while the Text is in use.
func TextBytes(b []byte) Text { return Text{ro: mem.B(b)} }

// Len reports the value's length in bytes.
func (t Text) Len() int { return t.ro.Len() }

// String returns a copy of the value as a string.
func (t Text) String() string { return t.ro.StringCopy() }

// Append appends the value's bytes to dst and returns the result.
func (t Text) Append(dst []byte) []byte { return mem.Append(dst, t.ro) }

// Blob is an immutable BLOB value. See Text for why it exists.
// The zero Blob is empty and valid.
//
// For incremental I/O on large column cells without materializing
// the whole value, see Conn.OpenBlob.
type Blob struct {
	ro mem.RO
}

// BlobBytes returns a Blob viewing b. No copy is made; the caller
// must not mutate b while the Blob is in use.
func BlobBytes(b []byte) Blob { return Blob{ro: mem.B(b)} }

// BlobString returns a Blob viewing the bytes of s.
func BlobString(s string) Blob { return Blob{ro: mem.S(s)} }

// Len reports the value's length in bytes.
func (b Blob) Len() int { return b.ro.Len() }

// Bytes returns a copy of the value.
func (b Blob) Bytes() []byte { return mem.Append(nil, b.ro) }

// Append appends the value's bytes to dst and returns the result.
func (b Blob) Append(dst []byte) []byte { return mem.Append(dst, b.ro) }
