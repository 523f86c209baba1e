package sqlite

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantNorm   string
		wantParams []ParamInfo
	}{
		{
			name:     "no placeholders",
			query:    "SELECT 1",
			wantNorm: "SELECT 1",
		},
		{
			name:     "bare positional",
			query:    "SELECT * FROM user WHERE id = ?",
			wantNorm: "SELECT * FROM user WHERE id = ?",
			wantParams: []ParamInfo{
				{Ordinal: 1},
			},
		},
		{
			name:     "typed positional",
			query:    "SELECT id, name, age FROM user WHERE id = ?{usize}",
			wantNorm: "SELECT id, name, age FROM user WHERE id = ?",
			wantParams: []ParamInfo{
				{Ordinal: 1, Type: ParamUint},
			},
		},
		{
			name:     "named with types",
			query:    "INSERT INTO user (id, name) VALUES (:id{int64}, :name{string})",
			wantNorm: "INSERT INTO user (id, name) VALUES (:id, :name)",
			wantParams: []ParamInfo{
				{Ordinal: 1, Name: "id", Type: ParamInt64, Named: true},
				{Ordinal: 2, Name: "name", Type: ParamText, Named: true},
			},
		},
		{
			name:     "all introducers",
			query:    "SELECT ?, :a, @b, $c",
			wantNorm: "SELECT ?, :a, @b, $c",
			wantParams: []ParamInfo{
				{Ordinal: 1},
				{Ordinal: 2, Name: "a", Named: true},
				{Ordinal: 3, Name: "b", Named: true},
				{Ordinal: 4, Name: "c", Named: true},
			},
		},
		{
			name:     "mixed typed and untyped",
			query:    "UPDATE t SET a = ?{int32}, b = ? WHERE c = ?{blob}",
			wantNorm: "UPDATE t SET a = ?, b = ? WHERE c = ?",
			wantParams: []ParamInfo{
				{Ordinal: 1, Type: ParamInt32},
				{Ordinal: 2},
				{Ordinal: 3, Type: ParamBlob},
			},
		},
		{
			name:     "trailing placeholder closes",
			query:    "SELECT * FROM t WHERE id = ?",
			wantNorm: "SELECT * FROM t WHERE id = ?",
			wantParams: []ParamInfo{
				{Ordinal: 1},
			},
		},
		{
			name:     "trailing typed placeholder closes",
			query:    "SELECT * FROM t WHERE id = ?{int}",
			wantNorm: "SELECT * FROM t WHERE id = ?",
			wantParams: []ParamInfo{
				{Ordinal: 1, Type: ParamInt},
			},
		},
		{
			name:     "repeated named placeholder is one parameter",
			query:    "SELECT * FROM t WHERE a = :v{int} OR b = :v{int}",
			wantNorm: "SELECT * FROM t WHERE a = :v OR b = :v",
			wantParams: []ParamInfo{
				{Ordinal: 1, Name: "v", Type: ParamInt, Named: true},
			},
		},
		{
			name:     "positional after repeated name",
			query:    "SELECT ?{int64}, :v{int64}, ?{int64}, :v{int64}",
			wantNorm: "SELECT ?, :v, ?, :v",
			wantParams: []ParamInfo{
				{Ordinal: 1, Type: ParamInt64},
				{Ordinal: 2, Name: "v", Type: ParamInt64, Named: true},
				{Ordinal: 3, Type: ParamInt64},
			},
		},
		{
			name:     "isize and usize aliases",
			query:    "SELECT ?{isize}, ?{usize}",
			wantNorm: "SELECT ?, ?",
			wantParams: []ParamInfo{
				{Ordinal: 1, Type: ParamInt},
				{Ordinal: 2, Type: ParamUint},
			},
		},
		{
			name:     "text and bytes tokens",
			query:    "SELECT ?{text}, ?{bytes}, ?{bool}, ?{float64}",
			wantNorm: "SELECT ?, ?, ?, ?",
			wantParams: []ParamInfo{
				{Ordinal: 1, Type: ParamText},
				{Ordinal: 2, Type: ParamBytes},
				{Ordinal: 3, Type: ParamBool},
				{Ordinal: 4, Type: ParamFloat64},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			norm, params := parseQuery(tt.query)
			if norm != tt.wantNorm {
				t.Errorf("normalized query = %q, want %q", norm, tt.wantNorm)
			}
			if diff := cmp.Diff(tt.wantParams, params); diff != "" {
				t.Errorf("params mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseQueryDenseOrdinals(t *testing.T) {
	query := "SELECT ?{int}, :a, ?{string}, @b{uint8}, ?, $c{blob}"
	_, params := parseQuery(query)
	if len(params) != 6 {
		t.Fatalf("got %d params, want 6", len(params))
	}
	for i, p := range params {
		if p.Ordinal != i+1 {
			t.Errorf("params[%d].Ordinal = %d, want %d", i, p.Ordinal, i+1)
		}
	}
}

func TestParseQueryPanics(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"unknown type token", "SELECT * FROM t WHERE id = ?{complex128}"},
		{"misspelled token", "SELECT ?{unit8}"},
		{"adjacent introducers", "SELECT * FROM t WHERE id = ??"},
		{"adjacent mixed introducers", "SELECT * FROM t WHERE id = ?:"},
		{"unterminated annotation", "SELECT * FROM t WHERE id = ?{int64"},
		{"conflicting named types", "SELECT :v{int} , :v{int64}"},
		{"named typed then untyped conflict", "SELECT :v{int} , :v"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("parseQuery(%q) did not panic", tt.query)
				}
			}()
			parseQuery(tt.query)
		})
	}
}
