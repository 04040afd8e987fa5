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

package stats_test

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/grailbio/coverage/stats"
	"github.com/stretchr/testify/assert"
	gostat "gonum.org/v1/gonum/stat"
)

func TestCoverageShowZeros(t *testing.T) {
	depths := []uint32{0, 0, 4, 6, 0, 2}

	s := stats.Coverage(depths, false)
	assert.EqualValues(t, 3, s.CoveredLength)
	assert.Equal(t, 4.0, s.Mean)
	assert.Equal(t, 4.0, s.Median)
	assert.EqualValues(t, 2, s.Min)
	assert.EqualValues(t, 6, s.Max)
	assert.InDelta(t, 2.0, s.Stdev, 1e-9) // sample stdev of {4, 6, 2}

	s = stats.Coverage(depths, true)
	assert.EqualValues(t, 6, s.CoveredLength)
	assert.Equal(t, 2.0, s.Mean)
	assert.Equal(t, 1.0, s.Median) // average of the two middle values 0 and 2
	assert.EqualValues(t, 0, s.Min)
}

func TestCoverageEmpty(t *testing.T) {
	assert.Equal(t, stats.CoverageStats{}, stats.Coverage(nil, true))
	assert.Equal(t, stats.CoverageStats{}, stats.Coverage([]uint32{0, 0}, false))
}

func TestCoverageSparseHistogram(t *testing.T) {
	// Depths beyond the dense histogram range must not be clamped.
	depths := []uint32{70000, 70000, 100000}
	s := stats.Coverage(depths, false)
	assert.EqualValues(t, 100000, s.Max)
	assert.Equal(t, 70000.0, s.Median)
	assert.Equal(t, 80000.0, s.Mean)
}

func TestCoverageMatchesGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 5; trial++ {
		n := 101 + rng.Intn(1000)*2 // odd length keeps both median definitions aligned
		depths := make([]uint32, n)
		vals := make([]float64, n)
		for i := range depths {
			d := uint32(rng.Intn(200)) + 1
			if rng.Intn(50) == 0 {
				d += 66000 // exercise the sparse spill
			}
			depths[i] = d
			vals[i] = float64(d)
		}
		s := stats.Coverage(depths, true)
		assert.InDelta(t, gostat.Mean(vals, nil), s.Mean, 1e-9)
		assert.InDelta(t, gostat.StdDev(vals, nil), s.Stdev, 1e-9)
		sort.Float64s(vals)
		assert.Equal(t, vals[n/2], s.Median)
	}
}

func TestCoverageAccumAcrossProfiles(t *testing.T) {
	a := stats.NewCoverageAccum()
	a.Add([]uint32{1, 2, 3}, true)
	a.Add([]uint32{0, 4}, true)
	s := a.Stats()
	assert.EqualValues(t, 5, s.CoveredLength)
	assert.Equal(t, 2.0, s.Mean)
	assert.Equal(t, 2.0, s.Median)
	assert.EqualValues(t, 0, s.Min)
	assert.EqualValues(t, 4, s.Max)
}

func TestReadLengths(t *testing.T) {
	hist := map[int]int64{1: 1, 2: 1, 3: 1, 4: 1}
	s := stats.ReadLengths(hist)
	assert.EqualValues(t, 4, s.ReadCount)
	assert.EqualValues(t, 10, s.YieldBases)
	assert.Equal(t, 3, s.N50)
	assert.Equal(t, 3, s.N75)
	assert.Equal(t, 2.5, s.MeanLength)
	assert.Equal(t, 2.5, s.MedianLength)
	assert.EqualValues(t, 0, s.YieldOver25kb)
}

func TestReadLengthsLongReads(t *testing.T) {
	hist := map[int]int64{10000: 2, 30000: 3}
	s := stats.ReadLengths(hist)
	assert.EqualValues(t, 5, s.ReadCount)
	assert.EqualValues(t, 110000, s.YieldBases)
	assert.EqualValues(t, 90000, s.YieldOver25kb)
	assert.Equal(t, 30000, s.N50)
	assert.Equal(t, 30000, s.N75) // 90000 >= 82500
	assert.Equal(t, 30000.0, s.MedianLength)
}

func TestReadLengthsEmpty(t *testing.T) {
	assert.Equal(t, stats.ReadLengthStats{}, stats.ReadLengths(nil))
	assert.Equal(t, stats.ReadLengthStats{}, stats.ReadLengths(map[int]int64{}))
}

func TestGenomeMeanCoverage(t *testing.T) {
	mean, err := stats.GenomeMeanCoverage(3000, 1000)
	assert.NoError(t, err)
	assert.Equal(t, 3.0, mean)

	_, err = stats.GenomeMeanCoverage(3000, 0)
	assert.Error(t, err)
	if _, ok := err.(*stats.StatisticsError); !ok {
		t.Fatalf("got %T, want *StatisticsError", err)
	}
}
