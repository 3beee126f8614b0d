package aggregate

import (
	"sync"
	"time"

	"github.com/printyx/printyx-monitor/internal/monitor/model"
)

// Store holds the most recent alert batch. Each poll replaces the prior batch
// wholesale; there is no merge and no cross-batch id uniqueness.
type Store struct {
	mu          sync.RWMutex
	batch       []model.AlertRecord
	seq         uint64
	fetchedAt   time.Time
	lastToastFP string
}

func NewStore() *Store { return &Store{} }

// Replace installs a new batch and returns its sequence number.
func (s *Store) Replace(batch []model.AlertRecord) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.batch = batch
	s.fetchedAt = time.Now().UTC()
	return s.seq
}

// Latest returns the current batch with its sequence and fetch time. The
// returned slice must not be mutated by callers.
func (s *Store) Latest() ([]model.AlertRecord, uint64, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batch, s.seq, s.fetchedAt
}

// View applies a filter spec to the current batch.
func (s *Store) View(spec FilterSpec) []model.AlertRecord {
	batch, _, _ := s.Latest()
	return Aggregate(batch, spec)
}

// claimFingerprint records fp as the last toasted batch. Returns false when fp
// matches the previous claim, i.e. the batch content is unchanged.
func (s *Store) claimFingerprint(fp string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastToastFP == fp {
		return false
	}
	s.lastToastFP = fp
	return true
}
