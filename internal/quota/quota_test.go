package quota

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	kind string
	name string
	id   int
}

func (r *record) Kind() string { return r.kind }
func (r *record) SetID(id int) { r.id = id }

func batch(kinds ...string) []*record {
	out := make([]*record, len(kinds))
	for i, k := range kinds {
		out[i] = &record{kind: k, name: k + "-" + string(rune('a'+i))}
	}
	return out
}

func TestNewRejectsBadQuotas(t *testing.T) {
	t.Parallel()

	tests := map[string][]Bucket{
		"empty":          nil,
		"no name":        {{Required: 1}},
		"duplicate name": {{Name: "a", Required: 1}, {Name: "a", Required: 2}},
		"zero required":  {{Name: "a"}},
		"shared kind":    {{Name: "a", Required: 1, Kinds: []string{"x"}}, {Name: "b", Required: 1, Kinds: []string{"x"}}},
	}
	for name, buckets := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New(buckets...)
			assert.ErrorIs(t, err, ErrInvalidQuota)
		})
	}
}

func TestFixedQuotas(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 8, Questions.Target())
	assert.Equal(t, 5, Challenges.Target())
	assert.Equal(t, 5, Report.Target())
	assert.Equal(t, 6, Report.Ceiling())

	b, ok := Questions.BucketFor("true_false")
	require.True(t, ok)
	assert.Equal(t, BucketChoice, b.Name)

	_, ok = Questions.BucketFor("essay")
	assert.False(t, ok)

	assert.Equal(t, "multiple_choice_or_true_false:3, fill_blank:2, short_answer:2, free_recall:1", Questions.String())
}

func TestSeedClampsAndRecordsOverflow(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator[*record](Questions)
	stats := acc.Seed(batch(
		"multiple_choice", "true_false", "multiple_choice", "true_false", "multiple_choice",
		"fill_blank",
		"free_recall", "free_recall",
		"essay",
	))

	assert.Equal(t, 3, stats.Added[BucketChoice])
	assert.Equal(t, 2, stats.Overflow[BucketChoice])
	assert.Equal(t, 1, stats.Overflow["free_recall"])
	assert.Equal(t, 1, stats.Unmatched)
	assert.Equal(t, 5, stats.TotalAdded())

	assert.Equal(t, 3, acc.Overflow())
	assert.True(t, acc.Overflowed())
	assert.Equal(t, 5, acc.Len())

	for _, b := range Questions.Buckets() {
		assert.LessOrEqual(t, len(acc.Bucket(b.Name)), b.Required, b.Name)
	}

	choice := acc.Bucket(BucketChoice)
	require.Len(t, choice, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{choice[0].id, choice[1].id, choice[2].id})
	assert.Equal(t, "multiple_choice-a", choice[0].name)
	assert.Equal(t, "multiple_choice-c", choice[2].name)

	assert.Equal(t, Deficit{{Bucket: "fill_blank", Missing: 1}, {Bucket: "short_answer", Missing: 2}}, acc.Deficit())
	assert.Equal(t, "fill_blank: 1, short_answer: 2", acc.Deficit().String())
}

func TestMergeFillsOnlyTheDeficit(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator[*record](Questions)
	acc.Seed(batch("multiple_choice", "fill_blank", "short_answer", "short_answer", "free_recall"))
	require.Equal(t, 3, acc.Deficit().Total())

	stats := acc.Merge(batch("true_false", "true_false", "true_false", "fill_blank", "fill_blank", "short_answer"))
	assert.Equal(t, 2, stats.Added[BucketChoice])
	assert.Equal(t, 1, stats.Added["fill_blank"])
	assert.Zero(t, stats.Added["short_answer"])
	assert.Empty(t, stats.Overflow, "merge never records overflow")
	assert.False(t, acc.Overflowed())

	assert.True(t, acc.Deficit().Empty())
	assert.Equal(t, 8, acc.Len())

	choice := acc.Bucket(BucketChoice)
	assert.Equal(t, 3, choice[2].id, "ids continue from the seed")
	fill := acc.Bucket("fill_blank")
	assert.Equal(t, []int{1, 2}, []int{fill[0].id, fill[1].id})

	items := acc.Items()
	require.Len(t, items, 8)
	assert.Equal(t, "multiple_choice", items[0].kind)
	assert.Equal(t, "free_recall", items[7].kind)
}

func TestOptionalBucketsNeverLeaveADeficit(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator[*record](Report)
	acc.Seed(batch("executive_summary", "findings", "progression", "recommendations", "priority_focus"))

	assert.True(t, acc.Deficit().Empty())
	assert.Equal(t, "none", acc.Deficit().String())
	assert.Equal(t, 0, acc.Counts()["notes"])

	acc.Merge(batch("notes", "notes"))
	assert.Equal(t, 1, acc.Counts()["notes"])
}
