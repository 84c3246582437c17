package integration

import (
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
)

const jobLockStripes = 256

// JobLocker serializes dispatch and webhook handling per job inside one process.
// Across processes the repository's version check rejects stale writes.
type JobLocker struct {
	stripes [jobLockStripes]sync.Mutex
}

// NewJobLocker creates a striped job locker
func NewJobLocker() *JobLocker {
	return &JobLocker{}
}

// Lock blocks until the job's stripe is held and returns the unlock func
func (l *JobLocker) Lock(jobID uuid.UUID) func() {
	h := fnv.New32a()
	_, _ = h.Write(jobID[:])
	m := &l.stripes[h.Sum32()%jobLockStripes]
	m.Lock()
	return m.Unlock
}
