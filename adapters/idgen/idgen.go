// Package idgen provides ID generation implementations.
package idgen

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cardbill/cardbill/ports"
	"github.com/google/uuid"
)

// Dated generates identifiers of the form <PREFIX>-<YYYYMMDD>-<token>.
// The date prefix keeps ids human-readable and sortable; the token is the
// leading segment of a UUIDv4, so concurrent creation cannot collide the
// way the old live-row-count scheme could.
type Dated struct {
	clock ports.Clock
}

// NewDated creates a dated generator using the given clock.
func NewDated(clock ports.Clock) *Dated {
	return &Dated{clock: clock}
}

// New generates a new identifier with the given prefix.
func (g *Dated) New(prefix string) string {
	token := strings.SplitN(uuid.New().String(), "-", 2)[0]
	return fmt.Sprintf("%s-%s-%s", prefix, g.clock.Now().Format("20060102"), token)
}

// Ensure interface compliance.
var _ ports.IDGenerator = (*Dated)(nil)

// Sequential generates deterministic per-prefix IDs (for testing).
type Sequential struct {
	mu       sync.Mutex
	clock    ports.Clock
	counters map[string]uint64
}

// NewSequential creates a sequential ID generator.
func NewSequential(clock ports.Clock) *Sequential {
	return &Sequential{clock: clock, counters: make(map[string]uint64)}
}

// New generates the next sequential ID for the prefix.
func (s *Sequential) New(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[prefix]++
	return fmt.Sprintf("%s-%s-%d", prefix, s.clock.Now().Format("20060102"), s.counters[prefix])
}

// Ensure interface compliance.
var _ ports.IDGenerator = (*Sequential)(nil)
