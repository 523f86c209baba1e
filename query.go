package sqlite

import (
	"fmt"
	"strings"
)

// ParamType is the host type a placeholder declares with a {typename}
// annotation, e.g. "?{int64}" or ":age{uint8}".
type ParamType int

const (
	ParamAny ParamType = iota // no annotation, any supported value binds
	ParamBool
	ParamInt
	ParamInt8
	ParamInt16
	ParamInt32
	ParamInt64
	ParamUint
	ParamUint8
	ParamUint16
	ParamUint32
	ParamUint64
	ParamFloat32
	ParamFloat64
	ParamText  // string or Text
	ParamBytes // []byte
	ParamBlob  // Blob
)

// paramTypeTokens maps annotation text to its ParamType.
// isize and usize are accepted as aliases for the platform-sized
// integer types.
var paramTypeTokens = map[string]ParamType{
	"bool":    ParamBool,
	"int":     ParamInt,
	"isize":   ParamInt,
	"int8":    ParamInt8,
	"int16":   ParamInt16,
	"int32":   ParamInt32,
	"int64":   ParamInt64,
	"uint":    ParamUint,
	"usize":   ParamUint,
	"uint8":   ParamUint8,
	"uint16":  ParamUint16,
	"uint32":  ParamUint32,
	"uint64":  ParamUint64,
	"float32": ParamFloat32,
	"float64": ParamFloat64,
	"string":  ParamText,
	"text":    ParamText,
	"bytes":   ParamBytes,
	"blob":    ParamBlob,
}

var paramTypeNames = map[ParamType]string{
	ParamAny:     "any",
	ParamBool:    "bool",
	ParamInt:     "int",
	ParamInt8:    "int8",
	ParamInt16:   "int16",
	ParamInt32:   "int32",
	ParamInt64:   "int64",
	ParamUint:    "uint",
	ParamUint8:   "uint8",
	ParamUint16:  "uint16",
	ParamUint32:  "uint32",
	ParamUint64:  "uint64",
	ParamFloat32: "float32",
	ParamFloat64: "float64",
	ParamText:    "string",
	ParamBytes:   "bytes",
	ParamBlob:    "blob",
}

func (t ParamType) String() string {
	if s, ok := paramTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ParamType(%d)", int(t))
}

// ParamInfo describes one placeholder in a query. Repeated named
// placeholders share a single engine parameter index and so a single
// descriptor; each bare "?" is its own parameter.
type ParamInfo struct {
	Ordinal int       // 1-based engine parameter index
	Name    string    // identifier following the introducer, if any
	Type    ParamType // declared type, or ParamAny
	Named   bool      // introduced by ':', '@' or '$' rather than '?'
}

func isIntroducer(c byte) bool {
	return c == '?' || c == ':' || c == '@' || c == '$'
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_'
}

// parseQuery splits query into the SQL the engine sees and the
// placeholder metadata the binder checks arguments against. The
// {typename} annotations are stripped; introducers and identifiers
// pass through verbatim so the engine sees its native syntax.
//
// Queries are fixed program text, so malformed placeholder syntax or
// an unknown type token is a programming error: parseQuery panics the
// first time the query is seen, before anything reaches the engine.
func parseQuery(query string) (norm string, params []ParamInfo) {
	var b strings.Builder
	b.Grow(len(query))

	// named placeholders may repeat; their annotations must agree
	namedTypes := map[string]ParamType{}

	for i := 0; i < len(query); {
		c := query[i]
		if !isIntroducer(c) {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 < len(query) && isIntroducer(query[i+1]) {
			panic(fmt.Sprintf("sqlite: adjacent placeholder introducers %q at offset %d in %q", query[i:i+2], i, query))
		}
		b.WriteByte(c)
		i++

		nameStart := i
		for i < len(query) && isIdentByte(query[i]) {
			i++
		}
		name := query[nameStart:i]
		b.WriteString(name)

		typ := ParamAny
		if i < len(query) && query[i] == '{' {
			end := strings.IndexByte(query[i:], '}')
			if end < 0 {
				panic(fmt.Sprintf("sqlite: unterminated type annotation at offset %d in %q", i, query))
			}
			token := query[i+1 : i+end]
			var ok bool
			typ, ok = paramTypeTokens[token]
			if !ok {
				panic(fmt.Sprintf("sqlite: unknown type %q in placeholder annotation in %q", token, query))
			}
			i += end + 1
		}

		named := c != '?'
		if named && name != "" {
			if prev, ok := namedTypes[name]; ok {
				if prev != typ {
					panic(fmt.Sprintf("sqlite: placeholder %c%s declared as both %v and %v in %q", c, name, prev, typ, query))
				}
				// The engine gives every occurrence of a name
				// the same parameter index; the first
				// occurrence's descriptor covers them all.
				continue
			}
			namedTypes[name] = typ
		}
		params = append(params, ParamInfo{
			Ordinal: len(params) + 1,
			Name:    name,
			Type:    typ,
			Named:   named,
		})
	}
	return b.String(), params
}
