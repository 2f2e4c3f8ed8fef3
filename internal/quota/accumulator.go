package quota

// Item is a record that can be counted against a quota.
type Item interface {
	// Kind names the record's category.
	Kind() string
	// SetID assigns the record's sequence number within its bucket.
	SetID(id int)
}

// MergeStats summarises what happened to one batch.
type MergeStats struct {
	// Added counts accepted records per bucket.
	Added map[string]int
	// Overflow counts records beyond a bucket's ceiling in a seeded batch.
	Overflow map[string]int
	// Unmatched counts records whose kind belongs to no bucket.
	Unmatched int
}

// TotalAdded is the number of records accepted from the batch.
func (s MergeStats) TotalAdded() int {
	total := 0
	for _, n := range s.Added {
		total += n
	}
	return total
}

// Accumulator collects records for one generation session. It is not safe
// for concurrent use; a session owns its accumulator.
type Accumulator[T Item] struct {
	quota    Quota
	items    map[string][]T
	nextID   map[string]int
	overflow map[string]int
}

// NewAccumulator returns an empty accumulator for q.
func NewAccumulator[T Item](q Quota) *Accumulator[T] {
	return &Accumulator[T]{
		quota:    q,
		items:    make(map[string][]T),
		nextID:   make(map[string]int),
		overflow: make(map[string]int),
	}
}

// Quota returns the quota being filled.
func (a *Accumulator[T]) Quota() Quota { return a.quota }

// Seed accepts the first batch of a session. Each bucket keeps at most its
// ceiling, in batch order; anything beyond is counted as overflow.
func (a *Accumulator[T]) Seed(batch []T) MergeStats {
	return a.add(batch, true)
}

// Merge accepts records only into buckets that are below their ceiling,
// taking at most the shortfall from each, in batch order.
func (a *Accumulator[T]) Merge(batch []T) MergeStats {
	return a.add(batch, false)
}

func (a *Accumulator[T]) add(batch []T, seed bool) MergeStats {
	stats := MergeStats{
		Added:    make(map[string]int),
		Overflow: make(map[string]int),
	}

	for _, item := range batch {
		bucket, ok := a.quota.BucketFor(item.Kind())
		if !ok {
			stats.Unmatched++
			continue
		}
		if len(a.items[bucket.Name]) >= bucket.Required {
			if seed {
				stats.Overflow[bucket.Name]++
				a.overflow[bucket.Name]++
			}
			continue
		}
		a.nextID[bucket.Name]++
		item.SetID(a.nextID[bucket.Name])
		a.items[bucket.Name] = append(a.items[bucket.Name], item)
		stats.Added[bucket.Name]++
	}
	return stats
}

// Deficit returns the shortfall of every required bucket.
func (a *Accumulator[T]) Deficit() Deficit {
	var d Deficit
	for _, b := range a.quota.buckets {
		if b.Optional {
			continue
		}
		if missing := b.Required - len(a.items[b.Name]); missing > 0 {
			d = append(d, Shortfall{Bucket: b.Name, Missing: missing})
		}
	}
	return d
}

// Len is the number of accepted records.
func (a *Accumulator[T]) Len() int {
	total := 0
	for _, items := range a.items {
		total += len(items)
	}
	return total
}

// Overflow is the number of records dropped for exceeding a ceiling.
func (a *Accumulator[T]) Overflow() int {
	total := 0
	for _, n := range a.overflow {
		total += n
	}
	return total
}

// Overflowed reports whether any record has been dropped for exceeding a
// ceiling.
func (a *Accumulator[T]) Overflowed() bool {
	return a.Overflow() > 0
}

// Bucket returns a copy of the records accepted into the named bucket.
func (a *Accumulator[T]) Bucket(name string) []T {
	return append([]T(nil), a.items[name]...)
}

// Counts returns the number of accepted records per bucket.
func (a *Accumulator[T]) Counts() map[string]int {
	counts := make(map[string]int, len(a.quota.buckets))
	for _, b := range a.quota.buckets {
		counts[b.Name] = len(a.items[b.Name])
	}
	return counts
}

// Items returns every accepted record, grouped by bucket in quota order.
func (a *Accumulator[T]) Items() []T {
	out := make([]T, 0, a.Len())
	for _, b := range a.quota.buckets {
		out = append(out, a.items[b.Name]...)
	}
	return out
}
