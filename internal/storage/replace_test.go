package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"nl2sql/internal/ddl"
)

// memStager keeps tables in memory and records the operations it saw.
type memStager struct {
	mu      sync.Mutex
	tables  map[string][][]any
	ops     []string
	copyErr error
	swapErr error
}

func newMemStager() *memStager { return &memStager{tables: map[string][][]any{}} }

func (m *memStager) CreateStage(_ context.Context, def ddl.TableDef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, "create")
	m.tables[def.FQN] = nil
	return nil
}

func (m *memStager) CopyFn(stage ddl.TableDef) CopyFn {
	return func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.copyErr != nil {
			return 0, m.copyErr
		}
		m.tables[stage.FQN] = append(m.tables[stage.FQN], rows...)
		return int64(len(rows)), nil
	}
}

func (m *memStager) Swap(_ context.Context, stage, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, "swap")
	if m.swapErr != nil {
		return m.swapErr
	}
	m.tables[target] = m.tables[stage]
	delete(m.tables, stage)
	return nil
}

func (m *memStager) DropStage(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, "drop")
	if ctx.Err() != nil {
		return ctx.Err()
	}
	delete(m.tables, name)
	return nil
}

func sampleDef() ddl.TableDef {
	return ddl.TableDef{FQN: "happiness_2015", Columns: []ddl.ColumnDef{
		{Name: "country", Type: ddl.TypeText},
		{Name: "happiness_rank", Type: ddl.TypeInteger},
	}}
}

func sampleRows(n int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{"c", int64(i)}
	}
	return rows
}

func TestReplace_SwapsStagedRows(t *testing.T) {
	quiet(t)
	m := newMemStager()
	m.tables["happiness_2015"] = sampleRows(2)

	n, err := Replace(context.Background(), m, sampleDef(), sampleRows(5), 2)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if n != 5 {
		t.Fatalf("rows = %d, want 5", n)
	}
	if got := len(m.tables["happiness_2015"]); got != 5 {
		t.Fatalf("target has %d rows, want 5", got)
	}
	if len(m.tables) != 1 {
		t.Fatalf("leftover tables: %v", m.tables)
	}
}

func TestReplace_CopyFailureKeepsTarget(t *testing.T) {
	quiet(t)
	m := newMemStager()
	m.tables["happiness_2015"] = sampleRows(3)
	m.copyErr = errors.New("disk full")

	_, err := Replace(context.Background(), m, sampleDef(), sampleRows(5), 2)
	if !errors.Is(err, m.copyErr) {
		t.Fatalf("want copy error, got %v", err)
	}
	if got := len(m.tables["happiness_2015"]); got != 3 {
		t.Fatalf("target changed to %d rows", got)
	}
	if len(m.tables) != 1 {
		t.Fatalf("stage not dropped: %v", m.tables)
	}
}

func TestReplace_SwapFailureDropsStage(t *testing.T) {
	quiet(t)
	m := newMemStager()
	m.swapErr = errors.New("lock timeout")

	if _, err := Replace(context.Background(), m, sampleDef(), sampleRows(1), 10); !errors.Is(err, m.swapErr) {
		t.Fatalf("want swap error, got %v", err)
	}
	if len(m.tables) != 0 {
		t.Fatalf("stage not dropped: %v", m.tables)
	}
	if got := strings.Join(m.ops, ","); got != "create,swap,drop" {
		t.Fatalf("ops = %s", got)
	}
}

func TestReplace_CanceledContextStillDropsStage(t *testing.T) {
	quiet(t)
	m := newMemStager()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Replace(ctx, m, sampleDef(), sampleRows(3), 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if len(m.tables) != 0 {
		t.Fatalf("stage not dropped after cancel: %v", m.tables)
	}
}

func TestStageName(t *testing.T) {
	a, b := StageName("public.crime_data"), StageName("public.crime_data")
	if a == b {
		t.Fatalf("stage names should be unique, got %q twice", a)
	}
	if !strings.HasPrefix(a, "public.crime_data__stage_") {
		t.Fatalf("unexpected stage name %q", a)
	}
	if LastSegment(a) == a || LastSegment("crime_data") != "crime_data" {
		t.Fatalf("LastSegment mismatch for %q", a)
	}
}

// quiet silences loader progress lines for the duration of the test.
func quiet(t *testing.T) {
	t.Helper()
	prev := Logf
	Logf = func(string, ...any) {}
	t.Cleanup(func() { Logf = prev })
}
