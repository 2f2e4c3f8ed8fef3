package quota

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidQuota is returned when a quota definition is malformed.
var ErrInvalidQuota = errors.New("invalid quota")

// Bucket is one line of a quota.
type Bucket struct {
	// Name identifies the bucket.
	Name string
	// Required is the bucket's ceiling, and its target unless Optional.
	Required int
	// Kinds lists the record kinds counted here. Empty means just Name.
	Kinds []string
	// Optional buckets are filled when records arrive but never leave a
	// deficit.
	Optional bool
}

// Quota is an ordered set of buckets. The zero value has no buckets.
type Quota struct {
	buckets []Bucket
	byKind  map[string]int
}

// New validates buckets and builds a Quota. Bucket names must be unique,
// ceilings positive, and every kind must belong to exactly one bucket.
func New(buckets ...Bucket) (Quota, error) {
	if len(buckets) == 0 {
		return Quota{}, fmt.Errorf("%w: no buckets", ErrInvalidQuota)
	}

	q := Quota{
		buckets: make([]Bucket, 0, len(buckets)),
		byKind:  make(map[string]int),
	}
	names := make(map[string]struct{}, len(buckets))
	for i, b := range buckets {
		if strings.TrimSpace(b.Name) == "" {
			return Quota{}, fmt.Errorf("%w: bucket %d has no name", ErrInvalidQuota, i)
		}
		if _, dup := names[b.Name]; dup {
			return Quota{}, fmt.Errorf("%w: duplicate bucket %q", ErrInvalidQuota, b.Name)
		}
		names[b.Name] = struct{}{}
		if b.Required <= 0 {
			return Quota{}, fmt.Errorf("%w: bucket %q requires %d", ErrInvalidQuota, b.Name, b.Required)
		}

		kinds := b.Kinds
		if len(kinds) == 0 {
			kinds = []string{b.Name}
		}
		b.Kinds = append([]string(nil), kinds...)
		for _, k := range b.Kinds {
			if prev, dup := q.byKind[k]; dup {
				return Quota{}, fmt.Errorf("%w: kind %q in both %q and %q",
					ErrInvalidQuota, k, q.buckets[prev].Name, b.Name)
			}
			q.byKind[k] = i
		}
		q.buckets = append(q.buckets, b)
	}
	return q, nil
}

// MustNew is like New but panics on an invalid definition. It is meant for
// package-level quota variables.
func MustNew(buckets ...Bucket) Quota {
	q, err := New(buckets...)
	if err != nil {
		panic(err)
	}
	return q
}

// Buckets returns a copy of the buckets in order.
func (q Quota) Buckets() []Bucket {
	out := make([]Bucket, len(q.buckets))
	copy(out, q.buckets)
	return out
}

// BucketFor returns the bucket that counts kind.
func (q Quota) BucketFor(kind string) (Bucket, bool) {
	i, ok := q.byKind[kind]
	if !ok {
		return Bucket{}, false
	}
	return q.buckets[i], true
}

// Target is the number of records needed to satisfy every required bucket.
func (q Quota) Target() int {
	total := 0
	for _, b := range q.buckets {
		if !b.Optional {
			total += b.Required
		}
	}
	return total
}

// Ceiling is the largest number of records the quota can hold.
func (q Quota) Ceiling() int {
	total := 0
	for _, b := range q.buckets {
		total += b.Required
	}
	return total
}

// String renders the quota as "name:required" pairs.
func (q Quota) String() string {
	parts := make([]string, 0, len(q.buckets))
	for _, b := range q.buckets {
		s := fmt.Sprintf("%s:%d", b.Name, b.Required)
		if b.Optional {
			s += "?"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

// Shortfall is how many records one bucket still needs.
type Shortfall struct {
	Bucket  string
	Missing int
}

// Deficit lists the required buckets that are short, in quota order.
type Deficit []Shortfall

// Total is the number of records still needed.
func (d Deficit) Total() int {
	total := 0
	for _, s := range d {
		total += s.Missing
	}
	return total
}

// Empty reports whether every required bucket is full.
func (d Deficit) Empty() bool {
	return d.Total() == 0
}

// Missing returns the shortfall for bucket, or zero.
func (d Deficit) Missing(bucket string) int {
	for _, s := range d {
		if s.Bucket == bucket {
			return s.Missing
		}
	}
	return 0
}

// String renders the deficit for prompts and logs, e.g.
// "fill_blank: 2, free_recall: 1".
func (d Deficit) String() string {
	if d.Empty() {
		return "none"
	}
	parts := make([]string, 0, len(d))
	for _, s := range d {
		parts = append(parts, fmt.Sprintf("%s: %d", s.Bucket, s.Missing))
	}
	return strings.Join(parts, ", ")
}
