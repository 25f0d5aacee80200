package cache

import "sync/atomic"

// Statistics counts cache traffic. Counters are updated atomically.
type Statistics struct {
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// StatsSummary is a point-in-time view of cache statistics.
type StatsSummary struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size"`
	HitRatio  float64 `json:"hit_ratio"`
}

func (s *Statistics) summary(size, maxSize int) StatsSummary {
	hits, misses := s.hits.Load(), s.misses.Load()
	var ratio float64
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return StatsSummary{
		Hits:      hits,
		Misses:    misses,
		Evictions: s.evictions.Load(),
		Size:      size,
		MaxSize:   maxSize,
		HitRatio:  ratio,
	}
}
