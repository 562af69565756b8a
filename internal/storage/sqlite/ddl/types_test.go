package ddl

import (
	"testing"

	coreddl "nl2sql/internal/ddl"
)

// TestMapType verifies the logical-to-SQLite type mapping and the TEXT
// fallback.
func TestMapType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind coreddl.Type
		want string
	}{
		{coreddl.TypeInteger, "INTEGER"},
		{coreddl.TypeFloat, "REAL"},
		{coreddl.TypeBoolean, "BOOLEAN"},
		{coreddl.TypeTimestamp, "DATETIME"},
		{coreddl.TypeText, "TEXT"},
		{"", "TEXT"},
	}
	for _, tt := range tests {
		if got := (Renderer{}).MapType(tt.kind); got != tt.want {
			t.Errorf("MapType(%q) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	if got := (Renderer{}).QuoteIdent(`a"b`); got != `"a""b"` {
		t.Fatalf("QuoteIdent = %s", got)
	}
}
