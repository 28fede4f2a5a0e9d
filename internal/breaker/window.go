package breaker

import "time"

// window counts outcomes over a trailing period of size width*len(buckets).
// Bucket i holds the calls whose epoch (time since origin / width) is
// congruent to i; a bucket whose epoch falls out of the trailing range is
// stale and ignored until reused.
type window struct {
	origin  time.Time
	width   time.Duration
	buckets []bucket
}

type bucket struct {
	epoch     int64
	successes uint32
	failures  uint32
}

func newWindow(size time.Duration, n int, origin time.Time) *window {
	width := size / time.Duration(n)
	if width <= 0 {
		width = 1
	}
	w := &window{
		origin:  origin,
		width:   width,
		buckets: make([]bucket, n),
	}
	w.reset()
	return w
}

func (w *window) epoch(now time.Time) int64 {
	d := now.Sub(w.origin)
	if d < 0 {
		return 0
	}
	return int64(d / w.width)
}

func (w *window) add(now time.Time, failed bool) {
	e := w.epoch(now)
	b := &w.buckets[e%int64(len(w.buckets))]
	if b.epoch != e {
		*b = bucket{epoch: e}
	}
	if failed {
		b.failures++
	} else {
		b.successes++
	}
}

func (w *window) counts(now time.Time) Counts {
	cur := w.epoch(now)
	oldest := cur - int64(len(w.buckets)) + 1

	var c Counts
	for _, b := range w.buckets {
		if b.epoch < oldest || b.epoch > cur {
			continue
		}
		c.Successes += b.successes
		c.Failures += b.failures
	}
	c.Requests = c.Successes + c.Failures
	return c
}

// reset empties every bucket. Buckets are marked with an epoch that can
// never be current so they are recycled on first use.
func (w *window) reset() {
	for i := range w.buckets {
		w.buckets[i] = bucket{epoch: -1}
	}
}
