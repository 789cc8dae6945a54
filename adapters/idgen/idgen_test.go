package idgen_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cardbill/cardbill/adapters/clock"
	"github.com/cardbill/cardbill/adapters/idgen"
)

func fakeClock() *clock.Fake {
	return clock.NewFake(time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC))
}

func TestDated_Format(t *testing.T) {
	g := idgen.NewDated(fakeClock())

	id := g.New("INV")
	parts := strings.SplitN(id, "-", 3)
	if len(parts) != 3 {
		t.Fatalf("id %q, want PREFIX-YYYYMMDD-token", id)
	}
	if parts[0] != "INV" {
		t.Errorf("prefix = %s, want INV", parts[0])
	}
	if parts[1] != "20240401" {
		t.Errorf("date = %s, want 20240401", parts[1])
	}
	if parts[2] == "" {
		t.Error("token is empty")
	}
}

func TestDated_Unique(t *testing.T) {
	g := idgen.NewDated(fakeClock())

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.New("FEE")
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestDated_Concurrent(t *testing.T) {
	g := idgen.NewDated(fakeClock())

	const workers = 10
	const perWorker = 100

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := g.New("CLIENT")
				mu.Lock()
				if seen[id] {
					t.Errorf("duplicate id %q", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

func TestSequential(t *testing.T) {
	g := idgen.NewSequential(fakeClock())

	if got := g.New("INV"); got != "INV-20240401-1" {
		t.Errorf("first = %s, want INV-20240401-1", got)
	}
	if got := g.New("INV"); got != "INV-20240401-2" {
		t.Errorf("second = %s, want INV-20240401-2", got)
	}
	// Counters are per prefix.
	if got := g.New("FEE"); got != "FEE-20240401-1" {
		t.Errorf("other prefix = %s, want FEE-20240401-1", got)
	}
}
