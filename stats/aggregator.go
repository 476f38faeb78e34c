package stats

import (
	"fmt"
	"math"
	"sort"
)

// An Aggregator summarizes a set of unsigned measurements.
type Aggregator struct {
	Count uint64
	Min   uint64
	Max   uint64
	Sum   uint64
}

// NewAggregator summarizes values.
func NewAggregator(values []uint64) Aggregator {
	a := Aggregator{}
	for _, v := range values {
		if a.Count == 0 || v < a.Min {
			a.Min = v
		}
		if v > a.Max {
			a.Max = v
		}
		a.Sum += v
		a.Count++
	}

	return a
}

// Mean returns the average of the aggregated values, or NaN when empty.
func (a Aggregator) Mean() float64 {
	if a.Count == 0 {
		return math.NaN()
	}

	return float64(a.Sum) / float64(a.Count)
}

func (a Aggregator) String() string {
	if a.Count == 0 {
		return "empty"
	}

	return fmt.Sprintf("n=%d min=%d max=%d mean=%.2f",
		a.Count, a.Min, a.Max, a.Mean())
}

// A Bucket is one value of a distribution and how often it occurred.
type Bucket struct {
	Value uint64
	Count uint64
}

// A Distribution is a histogram over exact values.
type Distribution struct {
	counts map[uint64]uint64
}

// NewDistribution builds a histogram of values.
func NewDistribution(values []uint64) Distribution {
	d := Distribution{counts: make(map[uint64]uint64)}
	for _, v := range values {
		d.counts[v]++
	}

	return d
}

// Count returns how many times v occurred.
func (d Distribution) Count(v uint64) uint64 {
	return d.counts[v]
}

// Buckets returns the histogram sorted by value.
func (d Distribution) Buckets() []Bucket {
	out := make([]Bucket, 0, len(d.counts))
	for v, c := range d.counts {
		out = append(out, Bucket{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })

	return out
}
