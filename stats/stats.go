// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package stats computes summary statistics over coverage profiles and
// read-length histograms.  Medians come from depth histograms rather than
// sorting, so genome-scale profiles never need an extra profile-sized
// allocation; standard deviations are single-pass (sample variance, n-1).
package stats

import (
	"fmt"
	"math"
	"sort"
)

// StatisticsError reports a statistic that cannot be computed from its
// inputs.
type StatisticsError struct {
	Msg string
}

func (e *StatisticsError) Error() string { return "stats: " + e.Msg }

// Depths below denseHistSize are counted in a flat array; anything at or
// above it (rare in practice) spills into a map.  Depth values are never
// clamped.
const denseHistSize = 65536

// CoverageStats summarizes the depth distribution of one or more profiles.
// CoveredLength is the number of positions included; with show-zeros off,
// zero-depth positions are excluded from every field.
type CoverageStats struct {
	Mean          float64
	Median        float64
	Stdev         float64
	Min           uint32
	Max           uint32
	CoveredLength int64
}

// CoverageAccum accumulates depth observations across any number of
// profiles.  The zero value is not usable; call NewCoverageAccum.
type CoverageAccum struct {
	dense  []int64
	sparse map[uint32]int64
	n      int64
	sum    float64
	sumSq  float64
	min    uint32
	max    uint32
}

func NewCoverageAccum() *CoverageAccum {
	return &CoverageAccum{
		dense:  make([]int64, denseHistSize),
		sparse: make(map[uint32]int64),
		min:    math.MaxUint32,
	}
}

// Add folds one profile into the accumulator.  With showZeros unset,
// zero-depth positions are ignored entirely.
func (a *CoverageAccum) Add(depths []uint32, showZeros bool) {
	for _, d := range depths {
		if (d == 0) && !showZeros {
			continue
		}
		if d < denseHistSize {
			a.dense[d]++
		} else {
			a.sparse[d]++
		}
		a.n++
		fd := float64(d)
		a.sum += fd
		a.sumSq += fd * fd
		if d < a.min {
			a.min = d
		}
		if d > a.max {
			a.max = d
		}
	}
}

// Stats computes the summary for everything added so far.  An empty
// accumulator yields all-zero stats.
func (a *CoverageAccum) Stats() CoverageStats {
	if a.n == 0 {
		return CoverageStats{}
	}
	s := CoverageStats{
		Mean:          a.sum / float64(a.n),
		Min:           a.min,
		Max:           a.max,
		CoveredLength: a.n,
	}
	if a.n > 1 {
		variance := (a.sumSq - float64(a.n)*s.Mean*s.Mean) / float64(a.n-1)
		if variance > 0 {
			s.Stdev = math.Sqrt(variance)
		}
	}
	s.Median = a.median()
	return s
}

// median walks the histogram in ascending depth order.  For an even
// observation count the two middle values are averaged.
func (a *CoverageAccum) median() float64 {
	lo := (a.n - 1) / 2
	hi := a.n / 2
	var loVal, hiVal uint32
	loSet, hiSet := false, false
	cum := int64(0)
	take := func(depth uint32, count int64) bool {
		cum += count
		if !loSet && cum > lo {
			loVal = depth
			loSet = true
		}
		if !hiSet && cum > hi {
			hiVal = depth
			hiSet = true
		}
		return hiSet
	}
	for depth, count := range a.dense {
		if count == 0 {
			continue
		}
		if take(uint32(depth), count) {
			return (float64(loVal) + float64(hiVal)) / 2
		}
	}
	sparseDepths := make([]uint32, 0, len(a.sparse))
	for depth := range a.sparse {
		sparseDepths = append(sparseDepths, depth)
	}
	sort.Slice(sparseDepths, func(i, j int) bool { return sparseDepths[i] < sparseDepths[j] })
	for _, depth := range sparseDepths {
		if take(depth, a.sparse[depth]) {
			return (float64(loVal) + float64(hiVal)) / 2
		}
	}
	// Unreachable when n matches the histogram contents.
	return (float64(loVal) + float64(hiVal)) / 2
}

// Coverage is the single-profile convenience form of CoverageAccum.
func Coverage(depths []uint32, showZeros bool) CoverageStats {
	a := NewCoverageAccum()
	a.Add(depths, showZeros)
	return a.Stats()
}

// GenomeMeanCoverage is yield divided by genome size, the denominator being
// either the analyzed-region size or a user-specified override.  It is
// reported separately from the profile-derived mean, which honors the
// show-zeros setting.
func GenomeMeanCoverage(yieldBases, genomeSize int64) (float64, error) {
	if genomeSize <= 0 {
		return 0, &StatisticsError{Msg: fmt.Sprintf("genome size must be positive (got %d)", genomeSize)}
	}
	return float64(yieldBases) / float64(genomeSize), nil
}
