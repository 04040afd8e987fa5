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

package stats

import (
	"sort"
)

// longReadThreshold is the minimum length, in bases, for a read to count
// toward the long-read yield.
const longReadThreshold = 25000

// ReadLengthStats summarizes a read-length histogram.
type ReadLengthStats struct {
	ReadCount     int64
	YieldBases    int64
	YieldOver25kb int64
	N50           int
	N75           int
	MeanLength    float64
	MedianLength  float64
}

// ReadLengths computes read-length statistics from a length->count
// histogram, typically merged across per-chunk results.  An empty histogram
// yields all-zero stats.
//
// N50 (N75) is the largest length L such that reads of length >= L together
// cover at least half (three quarters) of the yield; the thresholds use
// integer division of the yield, matching the usual long-read QC convention.
func ReadLengths(hist map[int]int64) ReadLengthStats {
	var s ReadLengthStats
	lengths := make([]int, 0, len(hist))
	for length, count := range hist {
		if count == 0 {
			continue
		}
		lengths = append(lengths, length)
		s.ReadCount += count
		s.YieldBases += int64(length) * count
		if length >= longReadThreshold {
			s.YieldOver25kb += int64(length) * count
		}
	}
	if s.ReadCount == 0 {
		return s
	}
	s.MeanLength = float64(s.YieldBases) / float64(s.ReadCount)
	sort.Ints(lengths)
	s.MedianLength = medianFromHist(hist, lengths, s.ReadCount)

	n50Threshold := s.YieldBases / 2
	n75Threshold := (s.YieldBases * 3) / 4
	cum := int64(0)
	for i := len(lengths) - 1; i >= 0; i-- {
		length := lengths[i]
		cum += int64(length) * hist[length]
		if (s.N50 == 0) && (cum >= n50Threshold) {
			s.N50 = length
		}
		if cum >= n75Threshold {
			s.N75 = length
			break
		}
	}
	return s
}

// medianFromHist walks the histogram in ascending length order; lengths must
// be the sorted keys of hist.  An even read count averages the two middle
// lengths.
func medianFromHist(hist map[int]int64, lengths []int, n int64) float64 {
	lo := (n - 1) / 2
	hi := n / 2
	var loVal, hiVal int
	loSet := false
	cum := int64(0)
	for _, length := range lengths {
		cum += hist[length]
		if !loSet && cum > lo {
			loVal = length
			loSet = true
		}
		if cum > hi {
			hiVal = length
			return (float64(loVal) + float64(hiVal)) / 2
		}
	}
	return 0
}
