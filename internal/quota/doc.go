// Package quota tracks how many records of each kind a generation session
// still needs.
//
// A Quota is an ordered, immutable list of buckets. An Accumulator collects
// accepted records per bucket and never lets a bucket grow past its ceiling:
// the first batch is clamped (the excess is remembered as overflow) and later
// batches only fill the remaining deficit.
package quota
