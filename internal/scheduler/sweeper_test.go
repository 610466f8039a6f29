package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeEvicter struct {
	paths []string
	calls int
}

func (f *fakeEvicter) EvictExpired(ttl time.Duration) []string {
	f.calls++
	return f.paths
}

func TestSweeper_RemovesEvictedArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "report_x.csv")
	if err := os.WriteFile(artifact, []byte("store_id\n"), 0o644); err != nil {
		t.Fatalf("seed artifact: %v", err)
	}

	ev := &fakeEvicter{paths: []string{artifact, filepath.Join(dir, "already_gone.csv")}}
	s := NewSweeper(zap.NewNop(), ev, time.Hour, time.Minute)
	s.sweepOnce()

	if ev.calls != 1 {
		t.Fatalf("EvictExpired calls = %d", ev.calls)
	}
	if _, err := os.Stat(artifact); !os.IsNotExist(err) {
		t.Fatalf("artifact should be removed, stat err = %v", err)
	}
}

func TestSweeper_DisabledWithoutInterval(t *testing.T) {
	ev := &fakeEvicter{}
	s := NewSweeper(zap.NewNop(), ev, time.Hour, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper with zero interval should return immediately")
	}
	if ev.calls != 0 {
		t.Fatalf("disabled sweeper must not evict, calls = %d", ev.calls)
	}
}
