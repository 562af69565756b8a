package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"nl2sql/internal/ddl"
)

// Stager is the backend half of a stage-and-swap replacement.
type Stager interface {
	// CreateStage creates the empty staging table def.FQN.
	CreateStage(ctx context.Context, def ddl.TableDef) error
	// CopyFn returns the bulk insert used to fill the staging table.
	CopyFn(stage ddl.TableDef) CopyFn
	// Swap atomically makes stage visible under target's name, discarding
	// any previous target.
	Swap(ctx context.Context, stage, target string) error
	// DropStage removes a staging table; it must succeed if the table is gone.
	DropStage(ctx context.Context, name string) error
}

// cleanupTimeout bounds the stage drop issued after a failed replacement.
const cleanupTimeout = 30 * time.Second

// StageName returns a unique staging name next to fqn, in the same schema.
func StageName(fqn string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fqn + "__stage_" + suffix
}

// Replace loads rows into a fresh staging table shaped like def and swaps it
// in place of def.FQN. The target is untouched unless the swap succeeds; on
// any failure the staging table is dropped, even when ctx is already
// canceled.
func Replace(ctx context.Context, s Stager, def ddl.TableDef, rows [][]any, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	stage := def.WithName(StageName(def.FQN))
	if err := s.CreateStage(ctx, stage); err != nil {
		dropStage(ctx, s, stage.FQN)
		return 0, fmt.Errorf("create stage %s: %w", stage.FQN, err)
	}

	feedCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	in := make(chan []any, batchSize)
	go func() {
		defer close(in)
		for _, r := range rows {
			select {
			case in <- r:
			case <-feedCtx.Done():
				return
			}
		}
	}()

	n, err := LoadBatches(feedCtx, stage.Names(), in, batchSize, s.CopyFn(stage))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		dropStage(ctx, s, stage.FQN)
		return n, fmt.Errorf("load stage %s: %w", stage.FQN, err)
	}
	if err := s.Swap(ctx, stage.FQN, def.FQN); err != nil {
		dropStage(ctx, s, stage.FQN)
		return n, fmt.Errorf("swap %s into %s: %w", stage.FQN, def.FQN, err)
	}
	return n, nil
}

// CleanupContext derives a context for cleanup statements that must run even
// after ctx is canceled. It keeps ctx's values and is bounded by a timeout.
func CleanupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
}

func dropStage(ctx context.Context, s Stager, name string) {
	cctx, cancel := CleanupContext(ctx)
	defer cancel()
	if err := s.DropStage(cctx, name); err != nil {
		Logf("storage: drop stage %s: %v", name, err)
	}
}

// LastSegment returns the unqualified table name of a dotted FQN.
func LastSegment(fqn string) string {
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[i+1:]
	}
	return fqn
}
