package ddl

import (
	"testing"

	coreddl "nl2sql/internal/ddl"
)

func TestMapType(t *testing.T) {
	t.Parallel()

	tests := map[coreddl.Type]string{
		coreddl.TypeInteger:   "BIGINT",
		coreddl.TypeFloat:     "FLOAT",
		coreddl.TypeBoolean:   "BIT",
		coreddl.TypeTimestamp: "DATETIME2",
		coreddl.TypeText:      "NVARCHAR(MAX)",
		"":                    "NVARCHAR(MAX)",
	}
	for in, want := range tests {
		if got := (Renderer{}).MapType(in); got != want {
			t.Errorf("MapType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	if got := coreddl.QuoteFQN(Renderer{}, "dbo.a]b"); got != "[dbo].[a]]b]" {
		t.Fatalf("QuoteFQN = %s", got)
	}
}
