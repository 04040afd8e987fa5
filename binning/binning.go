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

// Package binning downsamples dense per-position coverage profiles into
// fixed-width bins so that a whole chromosome fits in a bounded number of
// plot points.
package binning

import (
	"sort"

	"github.com/grailbio/coverage/interval"
	"github.com/pkg/errors"
)

// Bin is one downsampled span: [Start, End) with the mean depth of its
// member positions.  Empty marks a bin with no contributing positions (only
// possible when zero-depth positions are being dropped).
type Bin struct {
	Start interval.PosType
	End   interval.PosType
	Depth float64
	Empty bool
}

// Binned is the downsampled form of one chromosome's profile.  Bins tile
// [0, Extent); every bin has width Width except possibly the last.
type Binned struct {
	Chrom  string
	Extent interval.PosType
	Width  interval.PosType
	Bins   []Bin
}

// BinProfile downsamples depths into roughly nMax bins.  The bin width is
// len(depths)/nMax (integer division), floored at 1, so a trailing short bin
// can push the count slightly past nMax.  With showZeros set, every member
// position contributes to its bin's mean; otherwise zero-depth positions are
// dropped from the mean and a bin with no nonzero member is marked Empty.
func BinProfile(chrom string, depths []uint32, nMax int, showZeros bool) (Binned, error) {
	if nMax < 1 {
		return Binned{}, errors.Errorf("binning: max point count must be at least 1 (got %d)", nMax)
	}
	extent := interval.PosType(len(depths))
	binned := Binned{Chrom: chrom, Extent: extent}
	if extent == 0 {
		binned.Width = 1
		return binned, nil
	}
	width := len(depths) / nMax
	if width < 1 {
		width = 1
	}
	binned.Width = interval.PosType(width)
	binned.Bins = make([]Bin, 0, (len(depths)+width-1)/width)
	for start := 0; start < len(depths); start += width {
		end := start + width
		if end > len(depths) {
			end = len(depths)
		}
		var sum uint64
		n := 0
		for _, d := range depths[start:end] {
			if (d == 0) && !showZeros {
				continue
			}
			sum += uint64(d)
			n++
		}
		bin := Bin{Start: interval.PosType(start), End: interval.PosType(end)}
		if n == 0 {
			bin.Empty = true
		} else {
			bin.Depth = float64(sum) / float64(n)
		}
		binned.Bins = append(binned.Bins, bin)
	}
	return binned, nil
}

// GenomeWide returns a copy of binned ordered by natural chromosome rank
// (numeric ascending, X, Y, MT, then others lexically), the order in which
// genome-wide concatenated series are presented.
func GenomeWide(binned []Binned) []Binned {
	ordered := make([]Binned, len(binned))
	copy(ordered, binned)
	sort.SliceStable(ordered, func(i, j int) bool {
		return interval.CompareRefNames(ordered[i].Chrom, ordered[j].Chrom) < 0
	})
	return ordered
}
