package logging

// ProgressSampler suppresses repetitive per-photo progress logs while keeping
// signal when a part changes or the percentage crosses a bucket boundary.
type ProgressSampler struct {
	bucketSize float64
	lastPart   int
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 5%) or when the part changes.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether progress for done of total photos in the given
// part should be logged. A non-positive total only reports part changes.
func (s *ProgressSampler) ShouldLog(part, done, total int) bool {
	if s == nil {
		return true
	}
	emit := false
	if part != s.lastPart {
		s.lastPart = part
		s.lastBucket = -1
		emit = true
	}
	if total > 0 {
		percent := float64(done) * 100 / float64(total)
		bucket := int(percent / s.bucketSize)
		if done >= total {
			bucket = int(100 / s.bucketSize)
		}
		if bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastPart = 0
	s.lastBucket = -1
}
