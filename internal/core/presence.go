package core

import (
	"math/rand"
	"sync"
)

// ActivityDetector decides which eligible participants are audibly active.
// The contract: an empty eligible set yields an empty result; a non-empty
// eligible set yields a non-empty subset of at most two ids. A production
// deployment substitutes an implementation fed by real audio levels; the
// session contract does not change.
type ActivityDetector interface {
	Detect(eligible []string) []string
}

// randomSampler is the simulation stand-in for audio level detection. It
// picks one or two eligible ids at random each cycle.
type randomSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSampler builds a seeded sampler. Sessions share one sampler, so
// access is locked; detection runs on each session's actor goroutine.
func NewRandomSampler(seed int64) ActivityDetector {
	return &randomSampler{rng: rand.New(rand.NewSource(seed))}
}

func (s *randomSampler) Detect(eligible []string) []string {
	if len(eligible) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 1 + s.rng.Intn(2)
	if n > len(eligible) {
		n = len(eligible)
	}
	picked := append([]string(nil), eligible...)
	s.rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:n]
}
