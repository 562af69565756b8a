package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"nl2sql/internal/dataset"
	"nl2sql/internal/ddl"
)

// fakeRepo is a minimal Repository implementation for tests.
type fakeRepo struct {
	closed bool
	cfg    Config
}

func (f *fakeRepo) ReplaceTable(_ context.Context, _ ddl.TableDef, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}
func (f *fakeRepo) Close() { f.closed = true }

func fakeBackend(open func(ctx context.Context, cfg Config) (Repository, error)) Backend {
	return Backend{Open: open}
}

// TestRegisterAndNew_Success verifies that registering a backend enables New()
// to return the corresponding repository.
func TestRegisterAndNew_Success(t *testing.T) {
	t.Parallel()

	kind := "fake"
	var got *fakeRepo
	Register(kind, fakeBackend(func(ctx context.Context, cfg Config) (Repository, error) {
		got = &fakeRepo{cfg: cfg}
		return got, nil
	}))

	repo, err := New(context.Background(), Config{Conn: dataset.Conn{Kind: kind}})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if repo == nil {
		t.Fatalf("New returned nil repo")
	}
	if got.cfg.BatchSize != DefaultBatchSize {
		t.Fatalf("BatchSize = %d, want default %d", got.cfg.BatchSize, DefaultBatchSize)
	}

	found := false
	for _, k := range ListKinds() {
		if k == kind {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("registered kind %q not present in ListKinds: %v", kind, ListKinds())
	}
}

// TestNew_Unsupported verifies that unsupported kinds wrap ErrUnknownBackend.
func TestNew_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Conn: dataset.Conn{Kind: "does-not-exist"}})
	if !errors.Is(err, dataset.ErrUnknownBackend) {
		t.Fatalf("want ErrUnknownBackend, got %v", err)
	}
	if _, err := NewAdmin(context.Background(), dataset.Conn{Kind: "nope"}); !errors.Is(err, dataset.ErrUnknownBackend) {
		t.Fatalf("NewAdmin: want ErrUnknownBackend, got %v", err)
	}
}

// TestRegister_Override verifies that re-registering a kind overrides the
// previous factory.
func TestRegister_Override(t *testing.T) {
	t.Parallel()

	kind := "override"
	calls := 0

	Register(kind, fakeBackend(func(ctx context.Context, cfg Config) (Repository, error) {
		calls++
		return &fakeRepo{}, nil
	}))
	Register(kind, fakeBackend(func(ctx context.Context, cfg Config) (Repository, error) {
		calls += 10
		return &fakeRepo{}, nil
	}))

	if _, err := New(context.Background(), Config{Conn: dataset.Conn{Kind: kind}}); err != nil {
		t.Fatalf("New error: %v", err)
	}
	if calls != 10 {
		t.Fatalf("factory call count = %d, want 10", calls)
	}
}

// TestListKinds_Snapshot checks that ListKinds returns a copy.
func TestListKinds_Snapshot(t *testing.T) {
	t.Parallel()

	Register("snap", fakeBackend(func(ctx context.Context, cfg Config) (Repository, error) { return &fakeRepo{}, nil }))

	a := ListKinds()
	if len(a) == 0 {
		t.Fatalf("ListKinds empty after registration")
	}
	a[0] = "mutated"

	b := ListKinds()
	if reflect.DeepEqual(a, b) {
		t.Fatalf("ListKinds returned same slice; want snapshot copy")
	}
}

// TestRegister_AllowsErrors shows factories can return errors that bubble up.
func TestRegister_AllowsErrors(t *testing.T) {
	t.Parallel()

	kind := "errkind"
	want := errors.New("boom")

	Register(kind, fakeBackend(func(ctx context.Context, cfg Config) (Repository, error) {
		return nil, want
	}))

	_, err := New(context.Background(), Config{Conn: dataset.Conn{Kind: kind}})
	if !errors.Is(err, want) {
		t.Fatalf("want %v, got %v", want, err)
	}
}
