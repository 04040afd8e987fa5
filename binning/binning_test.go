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

package binning

import (
	"testing"

	"github.com/grailbio/coverage/interval"
	"github.com/grailbio/testutil/expect"
)

func TestBinProfileWidths(t *testing.T) {
	depths := make([]uint32, 1000)
	binned, err := BinProfile("chr1", depths, 100, true)
	expect.NoError(t, err)
	expect.EQ(t, binned.Width, interval.PosType(10))
	expect.EQ(t, len(binned.Bins), 100)

	depths = make([]uint32, 1005)
	binned, err = BinProfile("chr1", depths, 100, true)
	expect.NoError(t, err)
	expect.EQ(t, binned.Width, interval.PosType(10))
	expect.EQ(t, len(binned.Bins), 101)
	last := binned.Bins[len(binned.Bins)-1]
	expect.EQ(t, last.Start, interval.PosType(1000))
	expect.EQ(t, last.End, interval.PosType(1005))
}

func TestBinProfileShortExtent(t *testing.T) {
	// Extent below nMax: every position gets its own bin.
	depths := []uint32{3, 0, 7}
	binned, err := BinProfile("chr1", depths, 100, true)
	expect.NoError(t, err)
	expect.EQ(t, binned.Width, interval.PosType(1))
	expect.EQ(t, len(binned.Bins), 3)
	expect.EQ(t, binned.Bins[0].Depth, 3.0)
	expect.EQ(t, binned.Bins[2].Depth, 7.0)
}

func TestBinProfileShowZeros(t *testing.T) {
	depths := []uint32{0, 0, 4, 6, 0, 2}
	withZeros, err := BinProfile("chr1", depths, 1, true)
	expect.NoError(t, err)
	expect.EQ(t, len(withZeros.Bins), 1)
	expect.EQ(t, withZeros.Bins[0].Depth, 2.0)
	expect.False(t, withZeros.Bins[0].Empty)

	withoutZeros, err := BinProfile("chr1", depths, 1, false)
	expect.NoError(t, err)
	expect.EQ(t, withoutZeros.Bins[0].Depth, 4.0)

	allZero, err := BinProfile("chr1", []uint32{0, 0, 0}, 1, false)
	expect.NoError(t, err)
	expect.True(t, allZero.Bins[0].Empty)
}

func TestBinProfileEmptyAndInvalid(t *testing.T) {
	binned, err := BinProfile("chr1", nil, 10, true)
	expect.NoError(t, err)
	expect.EQ(t, len(binned.Bins), 0)
	expect.EQ(t, binned.Extent, interval.PosType(0))

	if _, err = BinProfile("chr1", []uint32{1}, 0, true); err == nil {
		t.Fatal("expected error for nMax < 1")
	}
}

func TestGenomeWideOrder(t *testing.T) {
	binned := []Binned{
		{Chrom: "chrX"},
		{Chrom: "chr10"},
		{Chrom: "chr2"},
		{Chrom: "chrMT"},
	}
	ordered := GenomeWide(binned)
	var chroms []string
	for _, b := range ordered {
		chroms = append(chroms, b.Chrom)
	}
	expect.EQ(t, chroms, []string{"chr2", "chr10", "chrX", "chrMT"})
	// Input order is untouched.
	expect.EQ(t, binned[0].Chrom, "chrX")
}
