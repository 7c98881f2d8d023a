package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/madras-lab/motsmawon/apps/go-server/internal/game"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/wordsearch"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	s := game.New(wordsearch.Generate(nil, 4))

	if _, err := st.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Get(ctx, s.ID)
	if err != nil || got != s {
		t.Fatalf("get: %v %v", got, err)
	}
	if err := st.Delete(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("session survived delete: %v", err)
	}
	if err := st.Delete(ctx, "missing"); err != nil {
		t.Fatalf("delete unknown: %v", err)
	}
}

func TestMemoryStoreConcurrent(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := game.New(wordsearch.Generate([]string{"kay"}, 6))
			_ = st.Save(ctx, s)
			if _, err := st.Get(ctx, s.ID); err != nil {
				t.Errorf("get own session: %v", err)
			}
		}()
	}
	wg.Wait()
}
