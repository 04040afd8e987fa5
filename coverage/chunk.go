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

package coverage

import (
	"github.com/grailbio/coverage/interval"
)

// Chunk is the unit of parallel work: a half-open, 0-based span on a single
// chromosome.  A Chunk never crosses a RegionSet interval boundary, so the
// chunks of one interval tile it exactly.
type Chunk struct {
	RefID int
	Chrom string
	Start interval.PosType
	End   interval.PosType
}

// PartitionChunks tiles every interval of rs with chunks of at most
// chunkSize bases, in chromosome-rank-then-position order.  The final chunk
// of an interval may be short.  The output depends only on rs and chunkSize,
// never on worker count or timing.
func PartitionChunks(rs *interval.RegionSet, chunkSize int) ([]Chunk, error) {
	if chunkSize < 1 {
		return nil, configErrorf("chunk size must be at least 1 (got %d)", chunkSize)
	}
	var chunks []Chunk
	size := interval.PosType(chunkSize)
	for _, refID := range rs.AnalyzedRefIDs() {
		chrom := rs.Refs()[refID].Name
		ivs := rs.Intervals(refID)
		for i := 0; i < len(ivs); i += 2 {
			limit := ivs[i+1]
			for start := ivs[i]; start < limit; start += size {
				end := start + size
				if end > limit {
					end = limit
				}
				chunks = append(chunks, Chunk{RefID: refID, Chrom: chrom, Start: start, End: end})
			}
		}
	}
	return chunks, nil
}

// validateRefChunks verifies that chunks, ordered by start, exactly tile the
// intervals of one chromosome: no gap, no overlap, no stray span.  The
// aggregator runs this check over the chunk results it actually received
// before it hands a profile out.
func validateRefChunks(rs *interval.RegionSet, refID int, chunks []Chunk) error {
	chrom := rs.Refs()[refID].Name
	pos := 0
	ivs := rs.Intervals(refID)
	for i := 0; i < len(ivs); i += 2 {
		cursor, limit := ivs[i], ivs[i+1]
		for cursor < limit {
			if pos == len(chunks) {
				return aggregationErrorf(chrom, cursor, limit, "gap: no chunk covers this span")
			}
			c := chunks[pos]
			if (c.RefID != refID) || (c.Start != cursor) {
				return aggregationErrorf(c.Chrom, c.Start, c.End, "chunk out of place: expected %s:%d", chrom, cursor)
			}
			if c.End <= c.Start || c.End > limit {
				return aggregationErrorf(c.Chrom, c.Start, c.End, "chunk overruns interval end %d", limit)
			}
			cursor = c.End
			pos++
		}
	}
	if pos != len(chunks) {
		c := chunks[pos]
		return aggregationErrorf(c.Chrom, c.Start, c.End, "chunk outside every analyzed interval")
	}
	return nil
}

// validateChunks verifies that chunks, in the given order, exactly tile the
// intervals of rs.  PartitionChunks output always passes.
func validateChunks(rs *interval.RegionSet, chunks []Chunk) error {
	pos := 0
	for _, refID := range rs.AnalyzedRefIDs() {
		next := pos
		for next < len(chunks) && chunks[next].RefID == refID {
			next++
		}
		if err := validateRefChunks(rs, refID, chunks[pos:next]); err != nil {
			return err
		}
		pos = next
	}
	if pos != len(chunks) {
		c := chunks[pos]
		return aggregationErrorf(c.Chrom, c.Start, c.End, "chunk outside every analyzed interval")
	}
	return nil
}
